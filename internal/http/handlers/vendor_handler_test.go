package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/mkarpushin/procurement-backend/internal/http/middleware"
)

func TestVendorHandler_CreateVendor_MissingFields(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := &VendorHandler{vendors: nil}
	r.POST("/vendors", handler.CreateVendor)

	req, _ := http.NewRequest("POST", "/vendors", strings.NewReader(`{"name":"Acme"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestVendorHandler_CreateVendor_InvalidEmail(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := &VendorHandler{vendors: nil}
	r.POST("/vendors", handler.CreateVendor)

	req, _ := http.NewRequest("POST", "/vendors", strings.NewReader(`{"name":"Acme","email":"not-an-email"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestVendorHandler_GetVendor_InvalidUUID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := &VendorHandler{vendors: nil}
	r.GET("/vendors/:id", middleware.UUIDValidator("id"), handler.GetVendor)

	req, _ := http.NewRequest("GET", "/vendors/invalid-uuid", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
