package mail

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/mkarpushin/procurement-backend/internal/models"
)

func TestInvitationBody(t *testing.T) {
	deadline := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	rfp := &models.RFP{
		ID:          uuid.New(),
		Title:       "Office Chairs",
		Description: "100 ergonomic office chairs",
		Budget:      50000,
		Deadline:    &deadline,
	}
	vendor := &models.Vendor{Name: "Acme Supplies", Email: "sales@acme.example"}

	body := invitationBody(rfp, vendor)

	assert.Contains(t, body, "Dear Acme Supplies,")
	assert.Contains(t, body, "Title: Office Chairs")
	assert.Contains(t, body, "Budget: $50000.00")
	assert.Contains(t, body, "Deadline: 2026-10-01")
	assert.Contains(t, body, "Keep the subject line intact")
}

func TestInvitationBody_NoDeadline(t *testing.T) {
	rfp := &models.RFP{ID: uuid.New(), Title: "Office Chairs"}
	vendor := &models.Vendor{Name: "Acme Supplies"}

	body := invitationBody(rfp, vendor)
	assert.Contains(t, body, "Deadline: Not specified")
}

func TestInvitationSubjectCarriesRFPTag(t *testing.T) {
	// Формат темы обязан совпадать с тем, что ожидает корреляция входящих.
	rfp := &models.RFP{ID: uuid.MustParse("a1b2c3d4-e5f6-7890-abcd-ef1234567890"), Title: "Office Chairs"}

	subject := invitationSubject(rfp)
	assert.Equal(t, "RFP Invitation: Office Chairs [RFP-a1b2c3d4-e5f6-7890-abcd-ef1234567890]", subject)
}
