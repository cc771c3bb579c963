package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx/types"
	"github.com/sirupsen/logrus"

	"github.com/mkarpushin/procurement-backend/internal/mail"
	"github.com/mkarpushin/procurement-backend/internal/models"
	"github.com/mkarpushin/procurement-backend/internal/repository"
)

// ErrEmailNotConfigured возвращается при попытке рассылки без настроенной почты.
var ErrEmailNotConfigured = errors.New("email is not configured")

// RFPExtractor — AI-зависимость сервиса: разбор свободного текста заявки.
type RFPExtractor interface {
	ExtractRFP(ctx context.Context, userInput string) (*models.ParsedRFP, error)
}

// InvitationSender рассылает приглашения поставщикам.
type InvitationSender interface {
	SendInvitations(rfp *models.RFP, vendors []models.Vendor) []mail.SendResult
}

// RFPService — бизнес-логика вокруг RFP: создание из свободного текста
// и рассылка приглашений.
type RFPService struct {
	rfps      *repository.RFPRepository
	vendors   *repository.VendorRepository
	extractor RFPExtractor
	sender    InvitationSender
	log       *logrus.Logger
}

// NewRFPService создаёт сервис. sender может быть nil, если почта не настроена.
func NewRFPService(rfps *repository.RFPRepository, vendors *repository.VendorRepository, extractor RFPExtractor, sender InvitationSender, log *logrus.Logger) *RFPService {
	return &RFPService{
		rfps:      rfps,
		vendors:   vendors,
		extractor: extractor,
		sender:    sender,
		log:       log,
	}
}

// CreateFromPrompt превращает свободный текст заявки в сохранённый RFP.
// Ошибка экстракции пробрасывается наверх: черновик с выдуманными
// полями хуже явного отказа.
func (s *RFPService) CreateFromPrompt(ctx context.Context, prompt string) (*models.RFP, error) {
	parsed, err := s.extractor.ExtractRFP(ctx, prompt)
	if err != nil {
		return nil, err
	}

	requirements, err := json.Marshal(parsed.Requirements)
	if err != nil {
		return nil, fmt.Errorf("rfp service: сериализация требований: %w", err)
	}

	rfp := &models.RFP{
		Title:          parsed.Title,
		Description:    parsed.Description,
		Budget:         parsed.Budget,
		Deadline:       parseDeadline(parsed.Deadline),
		Requirements:   types.JSONText(requirements),
		PaymentTerms:   parsed.PaymentTerms,
		WarrantyPeriod: parsed.WarrantyPeriod,
		Status:         models.RFPStatusDraft,
	}

	if err := s.rfps.Create(ctx, rfp); err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"rfp_id": rfp.ID,
		"title":  rfp.Title,
	}).Info("RFP создан из свободного текста")

	return rfp, nil
}

// SendToVendors рассылает приглашение по RFP указанным поставщикам,
// фиксирует адресатов и переводит RFP в статус sent, если хоть одно
// письмо ушло. Ошибка отдельного адресата не прерывает рассылку.
func (s *RFPService) SendToVendors(ctx context.Context, rfpID uuid.UUID, vendorIDs []uuid.UUID) ([]mail.SendResult, error) {
	if s.sender == nil {
		return nil, ErrEmailNotConfigured
	}

	rfp, err := s.rfps.GetByID(ctx, rfpID)
	if err != nil {
		return nil, err
	}

	vendors, err := s.vendors.GetByIDs(ctx, vendorIDs)
	if err != nil {
		return nil, err
	}
	if len(vendors) == 0 {
		return nil, repository.ErrVendorNotFound
	}

	results := s.sender.SendInvitations(rfp, vendors)

	now := time.Now()
	anySent := false
	for _, result := range results {
		status := models.InviteStatusSent
		if !result.Sent {
			status = models.InviteStatusFailed
		} else {
			anySent = true
		}

		vendorID, err := uuid.Parse(result.VendorID)
		if err != nil {
			continue
		}
		if err := s.rfps.UpsertRecipient(ctx, rfpID, vendorID, status, now); err != nil {
			s.log.WithError(err).WithField("vendor_id", vendorID).Warn("не удалось записать адресата рассылки")
		}
	}

	if anySent && rfp.Status == models.RFPStatusDraft {
		if err := s.rfps.UpdateStatus(ctx, rfpID, models.RFPStatusSent); err != nil {
			s.log.WithError(err).WithField("rfp_id", rfpID).Warn("не удалось обновить статус RFP")
		}
	}

	return results, nil
}

// parseDeadline разбирает дату YYYY-MM-DD; нераспознанная дата трактуется
// как отсутствующая.
func parseDeadline(deadline *string) *time.Time {
	if deadline == nil || *deadline == "" {
		return nil
	}
	t, err := time.Parse(time.DateOnly, *deadline)
	if err != nil {
		return nil
	}
	return &t
}
