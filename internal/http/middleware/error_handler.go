package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/mkarpushin/procurement-backend/internal/ai"
	"github.com/mkarpushin/procurement-backend/internal/logger"
	"github.com/mkarpushin/procurement-backend/internal/repository"
	"github.com/mkarpushin/procurement-backend/internal/service"
)

// ErrorHandler обрабатывает ошибки централизованно.
// Маскирует внутренние ошибки и возвращает понятные сообщения клиенту.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		// Проверяем, не был ли уже отправлен ответ
		if c.Writer.Written() {
			return
		}

		if len(c.Errors) > 0 {
			err := c.Errors.Last()

			statusCode := http.StatusInternalServerError
			message := "внутренняя ошибка сервера"

			if logger.Log != nil {
				logger.Log.WithFields(logrus.Fields{
					"error":  err.Error(),
					"path":   c.Request.URL.Path,
					"method": c.Request.Method,
				}).Error("Request error")
			}

			// Обрабатываем известные типы ошибок
			switch {
			case errors.Is(err.Err, repository.ErrRFPNotFound):
				statusCode = http.StatusNotFound
				message = "RFP не найден"
			case errors.Is(err.Err, repository.ErrVendorNotFound):
				statusCode = http.StatusNotFound
				message = "поставщик не найден"
			case errors.Is(err.Err, repository.ErrProposalNotFound):
				statusCode = http.StatusNotFound
				message = "предложение не найдено"
			case errors.Is(err.Err, repository.ErrVendorExists):
				statusCode = http.StatusConflict
				message = "поставщик с таким email уже существует"
			case errors.Is(err.Err, repository.ErrProposalExists):
				statusCode = http.StatusConflict
				message = "предложение от этого поставщика уже получено"
			case errors.Is(err.Err, ai.ErrExtraction):
				statusCode = http.StatusBadGateway
				message = "не удалось разобрать текст через AI"
			case errors.Is(err.Err, service.ErrEmailNotConfigured):
				statusCode = http.StatusServiceUnavailable
				message = "почтовый сервис не настроен"
			default:
				if errStr := err.Error(); errStr != "" && !containsInternalKeywords(errStr) {
					message = errStr
					if contains(errStr, "неверный") || contains(errStr, "невалид") || contains(errStr, "обязателен") {
						statusCode = http.StatusBadRequest
					}
				}
			}

			c.JSON(statusCode, gin.H{"error": message})
		}
	}
}

// containsInternalKeywords проверяет, содержит ли строка ключевые слова внутренних ошибок.
func containsInternalKeywords(s string) bool {
	keywords := []string{
		"sql:",
		"database",
		"connection",
		"timeout",
		"internal",
		"panic",
		"runtime",
	}

	for _, keyword := range keywords {
		if contains(s, keyword) {
			return true
		}
	}
	return false
}

// contains проверяет, содержит ли строка подстроку (case-insensitive).
func contains(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
