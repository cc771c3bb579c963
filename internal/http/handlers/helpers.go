package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// pathID извлекает UUID из параметра пути. При невалидном значении
// пишет 400 и возвращает ok=false.
func pathID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "неверный идентификатор"})
		return uuid.Nil, false
	}
	return id, true
}
