package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"patient-portal-server/internal/apperr"
)

// ResponseData represents the structure of a standard API response.
type ResponseData struct {
	Status    int               `json:"status"`
	Message   string            `json:"message"`
	Data      interface{}       `json:"data,omitempty"`
	Error     string            `json:"error,omitempty"`
	Kind      apperr.Kind       `json:"kind,omitempty"`
	Fields    map[string]string `json:"fields,omitempty"`
	Retryable bool              `json:"retryable,omitempty"`
}

// Success sends a standard success response.
func Success(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, ResponseData{
		Status:  http.StatusOK,
		Message: message,
		Data:    data,
	})
}

// Created sends a standard resource created response.
func Created(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusCreated, ResponseData{
		Status:  http.StatusCreated,
		Message: message,
		Data:    data,
	})
}

// Error sends a standard error response.
func Error(c *gin.Context, statusCode int, errorMessage string) {
	c.JSON(statusCode, ResponseData{
		Status:  statusCode,
		Message: "An error occurred",
		Error:   errorMessage,
	})
}

// RespondError sends err through the standard envelope, classified by kind.
// Unclassified errors are reported as retryable backend failures; their
// details stay in the server log.
func RespondError(c *gin.Context, err error) {
	appErr := apperr.From(err)
	_ = c.Error(err)

	c.JSON(appErr.Status(), ResponseData{
		Status:    appErr.Status(),
		Message:   "An error occurred",
		Error:     appErr.Message,
		Kind:      appErr.Kind,
		Fields:    appErr.Fields,
		Retryable: appErr.Retryable,
	})
}

// Unauthorized sends a 401 Unauthorized error response.
func Unauthorized(c *gin.Context, errorMessage string) {
	RespondError(c, apperr.Unauthorized(errorMessage))
}

// InternalServerError sends a 500 Internal Server Error response.
func InternalServerError(c *gin.Context, errorMessage string) {
	RespondError(c, apperr.Internal(errorMessage, nil))
}
