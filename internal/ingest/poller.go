package ingest

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/mkarpushin/procurement-backend/internal/goroutine"
	"github.com/mkarpushin/procurement-backend/internal/mail"
)

// ErrAlreadyPolling возвращается, когда цикл опроса уже выполняется.
var ErrAlreadyPolling = errors.New("poll already in progress")

// Poller периодически опрашивает почтовый ящик и скармливает
// непрочитанные письма конвейеру.
type Poller struct {
	dialer   mail.Dialer
	pipeline *Pipeline
	interval time.Duration
	log      *logrus.Logger

	// busy гарантирует не более одного цикла опроса одновременно:
	// долгая AI-экстракция легко переживает интервал таймера.
	busy atomic.Bool
}

// NewPoller создаёт поллер.
func NewPoller(dialer mail.Dialer, pipeline *Pipeline, interval time.Duration, log *logrus.Logger) *Poller {
	return &Poller{
		dialer:   dialer,
		pipeline: pipeline,
		interval: interval,
		log:      log,
	}
}

// Run выполняет немедленный цикл опроса и далее опрашивает ящик по таймеру
// до отмены контекста.
func (p *Poller) Run(ctx context.Context) {
	p.log.WithField("interval", p.interval).Info("опрос почтового ящика запущен")

	if err := p.Poll(ctx); err != nil && !errors.Is(err, ErrAlreadyPolling) {
		p.log.WithError(err).Error("цикл опроса завершился с ошибкой")
	}

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.log.Info("опрос почтового ящика остановлен")
			return
		case <-ticker.C:
			err := p.Poll(ctx)
			if errors.Is(err, ErrAlreadyPolling) {
				p.log.Debug("предыдущий цикл опроса ещё выполняется, пропуск")
				continue
			}
			if err != nil {
				p.log.WithError(err).Error("цикл опроса завершился с ошибкой")
			}
		}
	}
}

func (p *Poller) tryAcquire() bool { return p.busy.CompareAndSwap(false, true) }
func (p *Poller) release()         { p.busy.Store(false) }

// Poll выполняет один цикл опроса. Если другой цикл уже идёт,
// сразу возвращает ErrAlreadyPolling.
func (p *Poller) Poll(ctx context.Context) error {
	if !p.tryAcquire() {
		return ErrAlreadyPolling
	}
	defer p.release()

	return p.pollCycle(ctx)
}

// TryStartAsync запускает цикл опроса в фоне (ручной триггер из API).
// Возвращает false, если цикл уже выполняется.
func (p *Poller) TryStartAsync(ctx context.Context) bool {
	if !p.tryAcquire() {
		return false
	}

	goroutine.SafeGoWithContext(ctx, func(ctx context.Context) {
		defer p.release()
		if err := p.pollCycle(ctx); err != nil {
			p.log.WithError(err).Error("цикл опроса завершился с ошибкой")
		}
	})

	return true
}

func (p *Poller) pollCycle(ctx context.Context) error {
	transport, err := p.dialer.Dial(ctx)
	if err != nil {
		return err
	}
	defer transport.Close()

	messages, err := transport.ListUnseen(ctx)
	if err != nil {
		return err
	}
	if len(messages) == 0 {
		return nil
	}

	p.log.WithField("count", len(messages)).Info("получены непрочитанные письма")

	var created, skipped, failed int
	for _, msg := range messages {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		result := p.pipeline.Ingest(ctx, transport, msg)
		entry := p.log.WithFields(logrus.Fields{
			"uid":     msg.UID,
			"from":    msg.From,
			"subject": msg.Subject,
		})

		switch result.Outcome {
		case OutcomeCreated:
			created++
			entry.WithField("proposal_id", result.Proposal.ID).Info("письмо обработано")
		case OutcomeSkipped:
			skipped++
			entry.WithField("reason", result.Reason).Info("письмо пропущено")
		case OutcomeFailed:
			failed++
			entry.WithField("reason", result.Reason).Error("письмо не обработано")
		}
	}

	p.log.WithFields(logrus.Fields{
		"created": created,
		"skipped": skipped,
		"failed":  failed,
	}).Info("цикл опроса завершён")

	return nil
}
