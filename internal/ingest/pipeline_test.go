package ingest_test

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx/types"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkarpushin/procurement-backend/internal/ai"
	"github.com/mkarpushin/procurement-backend/internal/ingest"
	"github.com/mkarpushin/procurement-backend/internal/mail"
	"github.com/mkarpushin/procurement-backend/internal/models"
	"github.com/mkarpushin/procurement-backend/internal/repository"
)

type stubRFPs struct {
	rfps map[uuid.UUID]*models.RFP
}

func (s *stubRFPs) GetByID(ctx context.Context, id uuid.UUID) (*models.RFP, error) {
	if rfp, ok := s.rfps[id]; ok {
		return rfp, nil
	}
	return nil, repository.ErrRFPNotFound
}

type stubVendors struct {
	vendors map[string]*models.Vendor
}

func (s *stubVendors) GetByEmail(ctx context.Context, email string) (*models.Vendor, error) {
	if vendor, ok := s.vendors[email]; ok {
		return vendor, nil
	}
	return nil, repository.ErrVendorNotFound
}

type stubProposals struct {
	existing    map[[2]uuid.UUID]*models.Proposal
	created     []*models.Proposal
	evaluations map[uuid.UUID]float64
	evalErr     error
}

func newStubProposals() *stubProposals {
	return &stubProposals{
		existing:    make(map[[2]uuid.UUID]*models.Proposal),
		evaluations: make(map[uuid.UUID]float64),
	}
}

func (s *stubProposals) GetByRFPAndVendor(ctx context.Context, rfpID, vendorID uuid.UUID) (*models.Proposal, error) {
	if p, ok := s.existing[[2]uuid.UUID{rfpID, vendorID}]; ok {
		return p, nil
	}
	return nil, repository.ErrProposalNotFound
}

func (s *stubProposals) Create(ctx context.Context, proposal *models.Proposal) error {
	key := [2]uuid.UUID{proposal.RFPID, proposal.VendorID}
	if _, ok := s.existing[key]; ok {
		return repository.ErrProposalExists
	}
	proposal.ID = uuid.New()
	s.existing[key] = proposal
	s.created = append(s.created, proposal)
	return nil
}

func (s *stubProposals) UpdateEvaluation(ctx context.Context, id uuid.UUID, score float64, summary string) error {
	if s.evalErr != nil {
		return s.evalErr
	}
	s.evaluations[id] = score
	return nil
}

type stubExtractor struct {
	parsed *models.ParsedProposal
	err    error
	calls  int
}

func (s *stubExtractor) ExtractProposal(ctx context.Context, emailContent string, rfp *models.RFP) (*models.ParsedProposal, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.parsed, nil
}

type stubScorer struct {
	evaluation *models.ProposalEvaluation
}

func (s *stubScorer) ScoreProposal(ctx context.Context, parsed *models.ParsedProposal, rfp *models.RFP) *models.ProposalEvaluation {
	return s.evaluation
}

type fakeTransport struct {
	messages []mail.Message
	seen     []uint32
	markErr  error
}

func (t *fakeTransport) ListUnseen(ctx context.Context) ([]mail.Message, error) {
	return t.messages, nil
}

func (t *fakeTransport) MarkSeen(ctx context.Context, uid uint32) error {
	if t.markErr != nil {
		return t.markErr
	}
	t.seen = append(t.seen, uid)
	return nil
}

func (t *fakeTransport) Close() error { return nil }

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

type pipelineFixture struct {
	pipeline  *ingest.Pipeline
	rfp       *models.RFP
	vendor    *models.Vendor
	proposals *stubProposals
	extractor *stubExtractor
}

func newPipelineFixture(t *testing.T) *pipelineFixture {
	t.Helper()

	rfp := &models.RFP{
		ID:           uuid.New(),
		Title:        "Office Chairs",
		Budget:       50000,
		Requirements: types.JSONText(`{}`),
		Status:       models.RFPStatusSent,
	}
	vendor := &models.Vendor{
		ID:    uuid.New(),
		Name:  "Acme Supplies",
		Email: "sales@acme.example",
	}

	price := 28750.0
	proposals := newStubProposals()
	extractor := &stubExtractor{parsed: &models.ParsedProposal{TotalPrice: &price}}
	scorer := &stubScorer{evaluation: &models.ProposalEvaluation{Summary: "solid offer", Score: 85}}

	pipeline := ingest.NewPipeline(
		&stubRFPs{rfps: map[uuid.UUID]*models.RFP{rfp.ID: rfp}},
		&stubVendors{vendors: map[string]*models.Vendor{vendor.Email: vendor}},
		proposals,
		extractor,
		scorer,
		testLogger(),
	)

	return &pipelineFixture{
		pipeline:  pipeline,
		rfp:       rfp,
		vendor:    vendor,
		proposals: proposals,
		extractor: extractor,
	}
}

func TestPipeline_Submit_Success(t *testing.T) {
	f := newPipelineFixture(t)

	proposal, err := f.pipeline.Submit(context.Background(), f.rfp.ID.String(), f.vendor.Email, "our offer: 28750")
	require.NoError(t, err)
	require.NotNil(t, proposal)

	assert.Equal(t, f.rfp.ID, proposal.RFPID)
	assert.Equal(t, f.vendor.ID, proposal.VendorID)
	assert.Equal(t, "our offer: 28750", proposal.RawEmailContent)
	assert.Equal(t, models.ProposalStatusReceived, proposal.Status)
	require.NotNil(t, proposal.TotalPrice)
	assert.Equal(t, 28750.0, *proposal.TotalPrice)

	require.NotNil(t, proposal.Score)
	assert.Equal(t, 85.0, *proposal.Score)
	assert.Equal(t, 85.0, f.proposals.evaluations[proposal.ID])
}

func TestPipeline_Submit_VendorEmailCaseInsensitive(t *testing.T) {
	f := newPipelineFixture(t)

	_, err := f.pipeline.Submit(context.Background(), f.rfp.ID.String(), "Sales@ACME.example", "offer")
	require.NoError(t, err)
}

func TestPipeline_Submit_UnknownRFP(t *testing.T) {
	f := newPipelineFixture(t)

	_, err := f.pipeline.Submit(context.Background(), uuid.NewString(), f.vendor.Email, "offer")
	assert.ErrorIs(t, err, repository.ErrRFPNotFound)

	// Невалидный идентификатор ведёт себя так же, как несуществующий.
	_, err = f.pipeline.Submit(context.Background(), "not-a-uuid", f.vendor.Email, "offer")
	assert.ErrorIs(t, err, repository.ErrRFPNotFound)
}

func TestPipeline_Submit_UnknownVendor(t *testing.T) {
	f := newPipelineFixture(t)

	_, err := f.pipeline.Submit(context.Background(), f.rfp.ID.String(), "stranger@example.com", "offer")
	assert.ErrorIs(t, err, repository.ErrVendorNotFound)
	assert.Zero(t, f.extractor.calls)
}

func TestPipeline_Submit_DuplicateSkipsExtraction(t *testing.T) {
	f := newPipelineFixture(t)

	_, err := f.pipeline.Submit(context.Background(), f.rfp.ID.String(), f.vendor.Email, "first offer")
	require.NoError(t, err)
	assert.Equal(t, 1, f.extractor.calls)

	_, err = f.pipeline.Submit(context.Background(), f.rfp.ID.String(), f.vendor.Email, "second offer")
	assert.ErrorIs(t, err, repository.ErrProposalExists)
	assert.Equal(t, 1, f.extractor.calls)
	assert.Len(t, f.proposals.created, 1)
}

func TestPipeline_Submit_ExtractionFailure(t *testing.T) {
	f := newPipelineFixture(t)
	f.extractor.err = ai.ErrExtraction

	_, err := f.pipeline.Submit(context.Background(), f.rfp.ID.String(), f.vendor.Email, "garbled")
	assert.ErrorIs(t, err, ai.ErrExtraction)
	assert.Empty(t, f.proposals.created)
}

func TestPipeline_Submit_EvaluationFailureKeepsProposal(t *testing.T) {
	f := newPipelineFixture(t)
	f.proposals.evalErr = errors.New("db down")

	proposal, err := f.pipeline.Submit(context.Background(), f.rfp.ID.String(), f.vendor.Email, "offer")
	require.NoError(t, err)

	// Предложение сохранено, но оценка не записана.
	assert.Len(t, f.proposals.created, 1)
	assert.Nil(t, proposal.Score)
}

func TestPipeline_Ingest_CreatedMarksSeen(t *testing.T) {
	f := newPipelineFixture(t)
	transport := &fakeTransport{}

	msg := mail.Message{
		UID:     7,
		Subject: "Re: RFP Invitation: Office Chairs [RFP-" + f.rfp.ID.String() + "]",
		From:    f.vendor.Email,
		Body:    "our offer: 28750",
	}

	result := f.pipeline.Ingest(context.Background(), transport, msg)

	assert.Equal(t, ingest.OutcomeCreated, result.Outcome)
	require.NotNil(t, result.Proposal)
	assert.Equal(t, []uint32{7}, transport.seen)
}

func TestPipeline_Ingest_NoTagLeavesUnseen(t *testing.T) {
	f := newPipelineFixture(t)
	transport := &fakeTransport{}

	result := f.pipeline.Ingest(context.Background(), transport, mail.Message{
		UID:     8,
		Subject: "Привет, это спам",
		From:    f.vendor.Email,
	})

	assert.Equal(t, ingest.OutcomeSkipped, result.Outcome)
	assert.Empty(t, transport.seen)
}

func TestPipeline_Ingest_UnknownSenderLeavesUnseen(t *testing.T) {
	f := newPipelineFixture(t)
	transport := &fakeTransport{}

	result := f.pipeline.Ingest(context.Background(), transport, mail.Message{
		UID:     9,
		Subject: "[RFP-" + f.rfp.ID.String() + "]",
		From:    "stranger@example.com",
		Body:    "offer",
	})

	assert.Equal(t, ingest.OutcomeSkipped, result.Outcome)
	assert.Equal(t, "неизвестный отправитель", result.Reason)
	assert.Empty(t, transport.seen)
}

func TestPipeline_Ingest_ExtractionFailureLeavesUnseen(t *testing.T) {
	f := newPipelineFixture(t)
	f.extractor.err = ai.ErrExtraction
	transport := &fakeTransport{}

	result := f.pipeline.Ingest(context.Background(), transport, mail.Message{
		UID:     10,
		Subject: "[RFP-" + f.rfp.ID.String() + "]",
		From:    f.vendor.Email,
		Body:    "garbled",
	})

	assert.Equal(t, ingest.OutcomeFailed, result.Outcome)
	assert.Empty(t, transport.seen)
	assert.Empty(t, f.proposals.created)
}
