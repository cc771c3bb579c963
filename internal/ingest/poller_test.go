package ingest_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkarpushin/procurement-backend/internal/ingest"
	"github.com/mkarpushin/procurement-backend/internal/mail"
)

type fakeDialer struct {
	transport mail.Transport
	err       error
	dials     int
}

func (d *fakeDialer) Dial(ctx context.Context) (mail.Transport, error) {
	d.dials++
	if d.err != nil {
		return nil, d.err
	}
	return d.transport, nil
}

// blockingTransport держит ListUnseen до закрытия release.
type blockingTransport struct {
	started   chan struct{}
	release   chan struct{}
	startOnce sync.Once
}

func (t *blockingTransport) ListUnseen(ctx context.Context) ([]mail.Message, error) {
	t.startOnce.Do(func() { close(t.started) })
	<-t.release
	return nil, nil
}

func (t *blockingTransport) MarkSeen(ctx context.Context, uid uint32) error { return nil }
func (t *blockingTransport) Close() error                                   { return nil }

func newTestPoller(t *testing.T, dialer mail.Dialer) *ingest.Poller {
	t.Helper()
	f := newPipelineFixture(t)
	return ingest.NewPoller(dialer, f.pipeline, time.Minute, testLogger())
}

func TestPoller_Poll_EmptyInbox(t *testing.T) {
	dialer := &fakeDialer{transport: &fakeTransport{}}
	poller := newTestPoller(t, dialer)

	err := poller.Poll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, dialer.dials)
}

func TestPoller_Poll_DialErrorAbortsCycle(t *testing.T) {
	dialErr := errors.New("connection refused")
	poller := newTestPoller(t, &fakeDialer{err: dialErr})

	err := poller.Poll(context.Background())
	assert.ErrorIs(t, err, dialErr)

	// Флаг занятости снят, следующий цикл возможен.
	err = poller.Poll(context.Background())
	assert.ErrorIs(t, err, dialErr)
}

func TestPoller_Poll_OverlapRejected(t *testing.T) {
	transport := &blockingTransport{
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	poller := newTestPoller(t, &fakeDialer{transport: transport})

	done := make(chan error, 1)
	go func() {
		done <- poller.Poll(context.Background())
	}()

	<-transport.started

	// Пока первый цикл висит в ListUnseen, второй не стартует.
	err := poller.Poll(context.Background())
	assert.ErrorIs(t, err, ingest.ErrAlreadyPolling)

	close(transport.release)
	require.NoError(t, <-done)

	// После завершения цикла опрос снова доступен.
	err = poller.Poll(context.Background())
	require.NoError(t, err)
}

func TestPoller_TryStartAsync(t *testing.T) {
	transport := &blockingTransport{
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	poller := newTestPoller(t, &fakeDialer{transport: transport})

	require.True(t, poller.TryStartAsync(context.Background()))
	<-transport.started

	assert.False(t, poller.TryStartAsync(context.Background()))

	close(transport.release)
}

func TestPoller_ProcessesMessages(t *testing.T) {
	f := newPipelineFixture(t)
	transport := &fakeTransport{
		messages: []mail.Message{
			{
				UID:     1,
				Subject: "[RFP-" + f.rfp.ID.String() + "]",
				From:    f.vendor.Email,
				Body:    "offer one",
			},
			{
				UID:     2,
				Subject: "письмо без тега",
				From:    f.vendor.Email,
			},
		},
	}
	poller := ingest.NewPoller(&fakeDialer{transport: transport}, f.pipeline, time.Minute, testLogger())

	err := poller.Poll(context.Background())
	require.NoError(t, err)

	assert.Len(t, f.proposals.created, 1)
	assert.Equal(t, []uint32{1}, transport.seen)
}
