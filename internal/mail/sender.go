package mail

import (
	"fmt"
	"strings"
	"time"

	gomail "gopkg.in/gomail.v2"

	"github.com/mkarpushin/procurement-backend/internal/models"
)

// SMTPConfig — параметры отправки почты.
type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
}

// SendResult — итог отправки приглашения одному поставщику.
type SendResult struct {
	VendorID string `json:"vendorId"`
	Email    string `json:"email"`
	Sent     bool   `json:"sent"`
	Error    string `json:"error,omitempty"`
}

// Sender рассылает приглашения на участие в RFP по SMTP.
type Sender struct {
	cfg    SMTPConfig
	dialer *gomail.Dialer
}

// NewSender создаёт экземпляр.
func NewSender(cfg SMTPConfig) *Sender {
	return &Sender{
		cfg:    cfg,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password),
	}
}

// SendInvitations отправляет приглашение каждому поставщику.
// Ошибка одного адресата не прерывает рассылку остальным.
func (s *Sender) SendInvitations(rfp *models.RFP, vendors []models.Vendor) []SendResult {
	results := make([]SendResult, 0, len(vendors))

	for _, vendor := range vendors {
		err := s.sendOne(rfp, &vendor)
		result := SendResult{
			VendorID: vendor.ID.String(),
			Email:    vendor.Email,
			Sent:     err == nil,
		}
		if err != nil {
			result.Error = err.Error()
		}
		results = append(results, result)
	}

	return results
}

func (s *Sender) sendOne(rfp *models.RFP, vendor *models.Vendor) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", s.cfg.User)
	msg.SetHeader("To", vendor.Email)
	msg.SetHeader("Subject", invitationSubject(rfp))
	msg.SetBody("text/plain", invitationBody(rfp, vendor))

	if err := s.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("mail: отправка %s: %w", vendor.Email, err)
	}
	return nil
}

// invitationSubject строит тему приглашения. Тег [RFP-<id>] в теме —
// ключ корреляции для входящих ответов.
func invitationSubject(rfp *models.RFP) string {
	return fmt.Sprintf("RFP Invitation: %s [RFP-%s]", rfp.Title, rfp.ID)
}

func invitationBody(rfp *models.RFP, vendor *models.Vendor) string {
	deadline := "Not specified"
	if rfp.Deadline != nil {
		deadline = rfp.Deadline.Format(time.DateOnly)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Dear %s,\n\n", vendor.Name)
	fmt.Fprintf(&b, "You are invited to submit a proposal for the following Request for Proposal:\n\n")
	fmt.Fprintf(&b, "Title: %s\n", rfp.Title)
	fmt.Fprintf(&b, "Description: %s\n", rfp.Description)
	fmt.Fprintf(&b, "Budget: $%.2f\n", rfp.Budget)
	fmt.Fprintf(&b, "Deadline: %s\n\n", deadline)
	if len(rfp.Requirements) > 0 {
		fmt.Fprintf(&b, "Requirements:\n%s\n\n", string(rfp.Requirements))
	}
	fmt.Fprintf(&b, "Please reply to this email with your proposal. Keep the subject line intact so we can match your response to this RFP.\n\n")
	fmt.Fprintf(&b, "Best regards,\nProcurement Team\n")

	return b.String()
}
