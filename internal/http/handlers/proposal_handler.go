package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mkarpushin/procurement-backend/internal/ingest"
	"github.com/mkarpushin/procurement-backend/internal/models"
	"github.com/mkarpushin/procurement-backend/internal/repository"
)

// ProposalHandler отвечает за предложения поставщиков.
type ProposalHandler struct {
	proposals *repository.ProposalRepository
	pipeline  *ingest.Pipeline
}

// NewProposalHandler создаёт экземпляр.
func NewProposalHandler(proposals *repository.ProposalRepository, pipeline *ingest.Pipeline) *ProposalHandler {
	return &ProposalHandler{proposals: proposals, pipeline: pipeline}
}

// SubmitProposal обрабатывает POST /api/proposals: ручная подача предложения
// мимо почтового ящика. Текст проходит тот же конвейер, что и письма.
func (h *ProposalHandler) SubmitProposal(c *gin.Context) {
	var req struct {
		RFPID       string `json:"rfpId" binding:"required,uuid"`
		VendorEmail string `json:"vendorEmail" binding:"required,email"`
		Content     string `json:"content" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "поля rfpId, vendorEmail и content обязательны"})
		return
	}

	proposal, err := h.pipeline.Submit(c.Request.Context(), req.RFPID, req.VendorEmail, req.Content)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, proposal)
}

// ListProposals обрабатывает GET /api/proposals: последние предложения по всем RFP.
func (h *ProposalHandler) ListProposals(c *gin.Context) {
	proposals, err := h.proposals.ListRecent(c.Request.Context(), 100)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, proposals)
}

// ListByRFP обрабатывает GET /api/rfps/:id/proposals.
func (h *ProposalHandler) ListByRFP(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	proposals, err := h.proposals.ListByRFP(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, proposals)
}

// GetProposal обрабатывает GET /api/proposals/:id.
func (h *ProposalHandler) GetProposal(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	proposal, err := h.proposals.GetByID(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, proposal)
}

// UpdateStatus обрабатывает PUT /api/proposals/:id/status.
func (h *ProposalHandler) UpdateStatus(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "поле status обязательно"})
		return
	}
	if !models.IsValidProposalStatus(req.Status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "неверный статус предложения"})
		return
	}

	proposal, err := h.proposals.UpdateStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, proposal)
}

// DeleteProposal обрабатывает DELETE /api/proposals/:id.
func (h *ProposalHandler) DeleteProposal(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.proposals.Delete(c.Request.Context(), id); err != nil {
		c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}
