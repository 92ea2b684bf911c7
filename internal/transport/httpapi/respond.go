package httpapi

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vladislavdragonenkov/backoffice/internal/domain"
)

// Коды ошибок в ответах API.
const (
	CodeValidation      = "VALIDATION_ERROR"
	CodeInvalidArgument = "INVALID_ARGUMENT"
	CodeNotFound        = "ORDER_NOT_FOUND"
	CodeConflict        = "ORDER_NOT_HISTORICAL"
	CodeStoreError      = "ORDER_STORE_ERROR"
	CodeTimeout         = "TIMEOUT"
	CodeInternal        = "INTERNAL_ERROR"
)

func respondOK(c *gin.Context, status int, data interface{}) {
	c.JSON(status, gin.H{
		"success": true,
		"data":    data,
	})
}

func respondError(c *gin.Context, status int, code, message string, details interface{}) {
	body := gin.H{
		"code":    code,
		"message": message,
	}
	if details != nil {
		body["details"] = details
	}
	c.AbortWithStatusJSON(status, gin.H{
		"success": false,
		"error":   body,
	})
}

// respondValidation — тело или параметры запроса не разобраны.
func respondValidation(c *gin.Context, err error) {
	respondError(c, http.StatusBadRequest, CodeValidation, "Invalid request data", err.Error())
}

// respondDomainError переводит ошибку ядра в HTTP-ответ.
func respondDomainError(c *gin.Context, err error) {
	status, code := classify(err)
	_ = c.Error(err)
	respondError(c, status, code, err.Error(), nil)
}

func classify(err error) (int, string) {
	switch {
	case domain.IsInvalidArgument(err):
		return http.StatusUnprocessableEntity, CodeInvalidArgument
	case errors.Is(err, domain.ErrOrderNotHistorical):
		return http.StatusConflict, CodeConflict
	case domain.IsNotFound(err):
		return http.StatusNotFound, CodeNotFound
	case errors.Is(err, domain.ErrRemoteStore):
		return http.StatusBadGateway, CodeStoreError
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return http.StatusGatewayTimeout, CodeTimeout
	default:
		return http.StatusInternalServerError, CodeInternal
	}
}
