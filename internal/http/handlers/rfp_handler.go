package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx/types"

	"github.com/mkarpushin/procurement-backend/internal/models"
	"github.com/mkarpushin/procurement-backend/internal/repository"
	"github.com/mkarpushin/procurement-backend/internal/service"
)

// RFPHandler отвечает за работу с запросами предложений.
type RFPHandler struct {
	rfps    *repository.RFPRepository
	service *service.RFPService
}

// NewRFPHandler создаёт экземпляр.
func NewRFPHandler(rfps *repository.RFPRepository, svc *service.RFPService) *RFPHandler {
	return &RFPHandler{rfps: rfps, service: svc}
}

// CreateRFP обрабатывает POST /api/rfps: создание RFP из свободного текста.
func (h *RFPHandler) CreateRFP(c *gin.Context) {
	var req struct {
		Prompt string `json:"prompt" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "поле prompt обязательно"})
		return
	}

	rfp, err := h.service.CreateFromPrompt(c.Request.Context(), req.Prompt)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, rfp)
}

// ListRFPs обрабатывает GET /api/rfps.
func (h *RFPHandler) ListRFPs(c *gin.Context) {
	rfps, err := h.rfps.List(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, rfps)
}

// GetRFP обрабатывает GET /api/rfps/:id.
func (h *RFPHandler) GetRFP(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	rfp, err := h.rfps.GetByID(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, rfp)
}

// UpdateRFP обрабатывает PUT /api/rfps/:id.
func (h *RFPHandler) UpdateRFP(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req struct {
		Title          string          `json:"title" binding:"required"`
		Description    string          `json:"description"`
		Budget         float64         `json:"budget"`
		Deadline       *string         `json:"deadline"`
		Requirements   json.RawMessage `json:"requirements"`
		PaymentTerms   *string         `json:"paymentTerms"`
		WarrantyPeriod *string         `json:"warrantyPeriod"`
		Status         string          `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "невалидное тело запроса"})
		return
	}
	if req.Status != "" && !models.IsValidRFPStatus(req.Status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "неверный статус RFP"})
		return
	}

	rfp, err := h.rfps.GetByID(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}

	rfp.Title = req.Title
	rfp.Description = req.Description
	rfp.Budget = req.Budget
	rfp.PaymentTerms = req.PaymentTerms
	rfp.WarrantyPeriod = req.WarrantyPeriod
	if req.Status != "" {
		rfp.Status = req.Status
	}
	if req.Deadline != nil {
		if t, err := time.Parse(time.DateOnly, *req.Deadline); err == nil {
			rfp.Deadline = &t
		} else {
			rfp.Deadline = nil
		}
	}
	if req.Requirements != nil {
		rfp.Requirements = types.JSONText(req.Requirements)
	}

	if err := h.rfps.Update(c.Request.Context(), rfp); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, rfp)
}

// DeleteRFP обрабатывает DELETE /api/rfps/:id.
func (h *RFPHandler) DeleteRFP(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.rfps.Delete(c.Request.Context(), id); err != nil {
		c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

// SendRFP обрабатывает POST /api/rfps/:id/send: рассылка приглашений поставщикам.
func (h *RFPHandler) SendRFP(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req struct {
		VendorIDs []string `json:"vendorIds" binding:"required,min=1"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "поле vendorIds обязательно"})
		return
	}

	vendorIDs := make([]uuid.UUID, 0, len(req.VendorIDs))
	for _, raw := range req.VendorIDs {
		vendorID, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "vendorIds содержит невалидный UUID"})
			return
		}
		vendorIDs = append(vendorIDs, vendorID)
	}

	results, err := h.service.SendToVendors(c.Request.Context(), id, vendorIDs)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"results": results})
}

// ListRecipients обрабатывает GET /api/rfps/:id/recipients.
func (h *RFPHandler) ListRecipients(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if _, err := h.rfps.GetByID(c.Request.Context(), id); err != nil {
		c.Error(err)
		return
	}

	recipients, err := h.rfps.ListRecipients(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, recipients)
}
