package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mkarpushin/procurement-backend/internal/models"
	"github.com/mkarpushin/procurement-backend/internal/repository"
)

// VendorHandler отвечает за справочник поставщиков.
type VendorHandler struct {
	vendors *repository.VendorRepository
}

// NewVendorHandler создаёт экземпляр.
func NewVendorHandler(vendors *repository.VendorRepository) *VendorHandler {
	return &VendorHandler{vendors: vendors}
}

type vendorRequest struct {
	Name          string  `json:"name" binding:"required"`
	Email         string  `json:"email" binding:"required,email"`
	Category      *string `json:"category"`
	ContactPerson *string `json:"contactPerson"`
	Phone         *string `json:"phone"`
}

// CreateVendor обрабатывает POST /api/vendors.
func (h *VendorHandler) CreateVendor(c *gin.Context) {
	var req vendorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "поля name и email обязательны"})
		return
	}

	vendor := &models.Vendor{
		Name:          req.Name,
		Email:         req.Email,
		Category:      req.Category,
		ContactPerson: req.ContactPerson,
		Phone:         req.Phone,
	}
	if err := h.vendors.Create(c.Request.Context(), vendor); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, vendor)
}

// ListVendors обрабатывает GET /api/vendors.
func (h *VendorHandler) ListVendors(c *gin.Context) {
	vendors, err := h.vendors.List(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, vendors)
}

// GetVendor обрабатывает GET /api/vendors/:id.
func (h *VendorHandler) GetVendor(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	vendor, err := h.vendors.GetByID(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, vendor)
}

// UpdateVendor обрабатывает PUT /api/vendors/:id.
func (h *VendorHandler) UpdateVendor(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req vendorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "поля name и email обязательны"})
		return
	}

	vendor, err := h.vendors.GetByID(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}

	vendor.Name = req.Name
	vendor.Email = req.Email
	vendor.Category = req.Category
	vendor.ContactPerson = req.ContactPerson
	vendor.Phone = req.Phone

	if err := h.vendors.Update(c.Request.Context(), vendor); err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, vendor)
}

// DeleteVendor обрабатывает DELETE /api/vendors/:id.
func (h *VendorHandler) DeleteVendor(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.vendors.Delete(c.Request.Context(), id); err != nil {
		c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}
