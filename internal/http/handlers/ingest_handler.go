package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mkarpushin/procurement-backend/internal/ingest"
)

// IngestHandler управляет опросом почтового ящика.
type IngestHandler struct {
	poller *ingest.Poller
}

// NewIngestHandler создаёт экземпляр. poller может быть nil,
// если почта не настроена.
func NewIngestHandler(poller *ingest.Poller) *IngestHandler {
	return &IngestHandler{poller: poller}
}

// TriggerPoll обрабатывает POST /api/ingest/poll: ручной запуск цикла опроса.
// Цикл выполняется в фоне; если опрос уже идёт, новый не запускается.
func (h *IngestHandler) TriggerPoll(c *gin.Context) {
	if h.poller == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "почтовый сервис не настроен"})
		return
	}

	// Контекст запроса не подходит: цикл живёт дольше самого запроса.
	if !h.poller.TryStartAsync(context.Background()) {
		c.JSON(http.StatusConflict, gin.H{"status": "already_running"})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"status": "started"})
}
