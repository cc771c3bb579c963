package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx/types"
	"github.com/sirupsen/logrus"

	"github.com/mkarpushin/procurement-backend/internal/mail"
	"github.com/mkarpushin/procurement-backend/internal/models"
	"github.com/mkarpushin/procurement-backend/internal/repository"
)

// Узкие интерфейсы хранилищ: конвейеру нужна лишь малая часть репозиториев.
type RFPStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.RFP, error)
}

type VendorStore interface {
	GetByEmail(ctx context.Context, email string) (*models.Vendor, error)
}

type ProposalStore interface {
	GetByRFPAndVendor(ctx context.Context, rfpID, vendorID uuid.UUID) (*models.Proposal, error)
	Create(ctx context.Context, proposal *models.Proposal) error
	UpdateEvaluation(ctx context.Context, id uuid.UUID, score float64, summary string) error
}

type Extractor interface {
	ExtractProposal(ctx context.Context, emailContent string, rfp *models.RFP) (*models.ParsedProposal, error)
}

type Scorer interface {
	ScoreProposal(ctx context.Context, parsed *models.ParsedProposal, rfp *models.RFP) *models.ProposalEvaluation
}

// Outcome — итог обработки одного письма.
type Outcome string

const (
	OutcomeCreated Outcome = "created"
	OutcomeSkipped Outcome = "skipped"
	OutcomeFailed  Outcome = "failed"
)

// Result описывает, что случилось с письмом и почему.
type Result struct {
	Outcome  Outcome
	Reason   string
	Proposal *models.Proposal
}

// Pipeline превращает письмо поставщика в сохранённое предложение:
// корреляция -> идентификация отправителя -> проверка дубля -> экстракция ->
// сохранение -> оценка.
type Pipeline struct {
	rfps      RFPStore
	vendors   VendorStore
	proposals ProposalStore
	extractor Extractor
	scorer    Scorer
	log       *logrus.Logger
}

// NewPipeline создаёт конвейер обработки предложений.
func NewPipeline(rfps RFPStore, vendors VendorStore, proposals ProposalStore, extractor Extractor, scorer Scorer, log *logrus.Logger) *Pipeline {
	return &Pipeline{
		rfps:      rfps,
		vendors:   vendors,
		proposals: proposals,
		extractor: extractor,
		scorer:    scorer,
		log:       log,
	}
}

// Ingest обрабатывает одно входящее письмо. Письмо помечается прочитанным
// только после успешного сохранения предложения: пропущенные и упавшие
// письма остаются непрочитанными и будут видны следующему циклу.
func (p *Pipeline) Ingest(ctx context.Context, transport mail.Transport, msg mail.Message) Result {
	rfpID, ok := ExtractRFPID(msg.Subject)
	if !ok {
		return Result{Outcome: OutcomeSkipped, Reason: "тема без тега RFP"}
	}

	proposal, err := p.Submit(ctx, rfpID, msg.From, msg.Body)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrRFPNotFound):
			return Result{Outcome: OutcomeSkipped, Reason: "неизвестный RFP"}
		case errors.Is(err, repository.ErrVendorNotFound):
			return Result{Outcome: OutcomeSkipped, Reason: "неизвестный отправитель"}
		case errors.Is(err, repository.ErrProposalExists):
			return Result{Outcome: OutcomeSkipped, Reason: "дубль предложения"}
		default:
			return Result{Outcome: OutcomeFailed, Reason: err.Error()}
		}
	}

	if err := transport.MarkSeen(ctx, msg.UID); err != nil {
		// Предложение уже сохранено; дубль при повторной доставке
		// отсечёт идемпотентный шлюз.
		p.log.WithError(err).WithField("uid", msg.UID).Warn("не удалось пометить письмо прочитанным")
	}

	return Result{Outcome: OutcomeCreated, Proposal: proposal}
}

// Submit проводит текст предложения через конвейер. Используется и при
// приёме почты, и при ручной подаче через API.
//
// Возвращаемые ошибки: repository.ErrRFPNotFound, repository.ErrVendorNotFound,
// repository.ErrProposalExists, ai.ErrExtraction, либо ошибка хранилища.
func (p *Pipeline) Submit(ctx context.Context, rfpID, vendorEmail, content string) (*models.Proposal, error) {
	id, err := uuid.Parse(rfpID)
	if err != nil {
		return nil, repository.ErrRFPNotFound
	}

	rfp, err := p.rfps.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	vendor, err := p.vendors.GetByEmail(ctx, strings.ToLower(vendorEmail))
	if err != nil {
		return nil, err
	}

	// Дубль проверяется до экстракции, чтобы не жечь AI-запросы на повторы.
	if _, err := p.proposals.GetByRFPAndVendor(ctx, rfp.ID, vendor.ID); err == nil {
		return nil, repository.ErrProposalExists
	} else if !errors.Is(err, repository.ErrProposalNotFound) {
		return nil, err
	}

	parsed, err := p.extractor.ExtractProposal(ctx, content, rfp)
	if err != nil {
		return nil, err
	}

	parsedJSON, err := json.Marshal(parsed)
	if err != nil {
		return nil, fmt.Errorf("pipeline: сериализация разобранных данных: %w", err)
	}

	proposal := &models.Proposal{
		RFPID:           rfp.ID,
		VendorID:        vendor.ID,
		RawEmailContent: content,
		ParsedData:      types.JSONText(parsedJSON),
		TotalPrice:      parsed.TotalPrice,
		DeliveryTime:    parsed.DeliveryTime,
		Terms:           parsed.Terms,
		Status:          models.ProposalStatusReceived,
	}

	// Экстракция занимает секунды: за это время могла вклиниться
	// параллельная подача. Уникальный индекс решает гонку.
	if err := p.proposals.Create(ctx, proposal); err != nil {
		return nil, err
	}

	p.log.WithFields(logrus.Fields{
		"proposal_id": proposal.ID,
		"rfp_id":      rfp.ID,
		"vendor_id":   vendor.ID,
	}).Info("предложение сохранено")

	// Оценка — необязательный шаг: предложение уже сохранено,
	// сбой оценки не должен его потерять.
	evaluation := p.scorer.ScoreProposal(ctx, parsed, rfp)
	if err := p.proposals.UpdateEvaluation(ctx, proposal.ID, evaluation.Score, evaluation.Summary); err != nil {
		p.log.WithError(err).WithField("proposal_id", proposal.ID).Warn("не удалось записать оценку предложения")
	} else {
		proposal.Score = &evaluation.Score
		proposal.AISummary = &evaluation.Summary
	}

	return proposal, nil
}
