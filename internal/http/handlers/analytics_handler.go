package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mkarpushin/procurement-backend/internal/service"
)

// AnalyticsHandler отдаёт сводную аналитику.
type AnalyticsHandler struct {
	analytics *service.AnalyticsService
}

// NewAnalyticsHandler создаёт экземпляр.
func NewAnalyticsHandler(analytics *service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics}
}

// GetDashboard обрабатывает GET /api/analytics/dashboard.
func (h *AnalyticsHandler) GetDashboard(c *gin.Context) {
	dashboard, err := h.analytics.GetDashboard(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, dashboard)
}

// GetRFPAnalytics обрабатывает GET /api/analytics/rfps/:id:
// сравнение предложений по одному RFP.
func (h *AnalyticsHandler) GetRFPAnalytics(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	result, err := h.analytics.GetRFPAnalytics(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, result)
}
