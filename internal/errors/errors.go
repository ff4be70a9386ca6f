package errors

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

// Error codes
const (
	// Validation errors
	ErrCodeInvalidInput = "INVALID_INPUT"

	// Resource errors
	ErrCodeNotFound = "NOT_FOUND"

	// Rate limiting
	ErrCodeTooManyRequests = "TOO_MANY_REQUESTS"

	// Service errors
	ErrCodeInternalError = "INTERNAL_ERROR"
)

// AppError is a terminal error response, rendered as the error page for
// browsers and as JSON for clients that ask for it.
type AppError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	return e.Message
}

// NewAppError creates a new AppError
func NewAppError(status int, code, message string) *AppError {
	return &AppError{
		Status:  status,
		Code:    code,
		Message: message,
	}
}

// RespondWithError sends an error response and aborts the handler chain
func RespondWithError(c *gin.Context, err *AppError) {
	c.Negotiate(err.Status, gin.Negotiate{
		Offered:  []string{binding.MIMEHTML, binding.MIMEJSON},
		HTMLName: "error.html",
		HTMLData: gin.H{
			"Title": http.StatusText(err.Status),
			"Error": err,
		},
		JSONData: err,
	})
	c.Abort()
}

// Helper functions for common error responses

// NotFound sends a 404 response
func NotFound(c *gin.Context, message string) {
	if message == "" {
		message = "Resource not found"
	}
	RespondWithError(c, NewAppError(http.StatusNotFound, ErrCodeNotFound, message))
}

// BadRequest sends a 400 response
func BadRequest(c *gin.Context, message string) {
	if message == "" {
		message = "Invalid request"
	}
	RespondWithError(c, NewAppError(http.StatusBadRequest, ErrCodeInvalidInput, message))
}

// TooManyRequests sends a 429 response
func TooManyRequests(c *gin.Context, message string) {
	if message == "" {
		message = "Too many requests, try again later"
	}
	RespondWithError(c, NewAppError(http.StatusTooManyRequests, ErrCodeTooManyRequests, message))
}

// InternalError sends a 500 response
func InternalError(c *gin.Context, message string) {
	if message == "" {
		message = "Internal server error"
	}
	RespondWithError(c, NewAppError(http.StatusInternalServerError, ErrCodeInternalError, message))
}
