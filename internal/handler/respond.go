package handler

import (
	"errors"
	"net/http"

	"tutorhub/internal/domain"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// respondError maps a domain error category to an HTTP status and writes the
// structured payload. Unknown errors are wrapped as internal with the
// original message preserved.
func respondError(c *gin.Context, err error) {
	de := domain.AsError(err)
	c.JSON(statusFor(de.Code), gin.H{"error": de})
}

func isGormNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

func statusFor(code string) int {
	switch code {
	case domain.CodeValidation:
		return http.StatusBadRequest
	case domain.CodeNotFound:
		return http.StatusNotFound
	case domain.CodeConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
