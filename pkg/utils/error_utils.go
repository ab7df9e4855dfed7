package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// APIError is the standardized error payload returned inside the failure envelope.
type APIError struct {
	StatusCode int    `json:"-"` // HTTP status, not serialized in the body
	Code       string `json:"code,omitempty"`
	Message    string `json:"message"`
	Details    string `json:"details,omitempty"`
}

// NewAPIError creates a new APIError instance.
func NewAPIError(statusCode int, code string, message string, details string) *APIError {
	return &APIError{
		StatusCode: statusCode,
		Code:       code,
		Message:    message,
		Details:    details,
	}
}

// RespondWithError sends the standardized failure envelope:
// {"success": false, "error": {...}}.
func RespondWithError(c *gin.Context, err *APIError) {
	c.JSON(err.StatusCode, gin.H{"success": false, "error": err})
	c.Abort()
}

// RespondWithData sends the standardized success envelope:
// {"success": true, "data": {...}, "message": ...}.
func RespondWithData(c *gin.Context, statusCode int, data interface{}, message string) {
	body := gin.H{"success": true, "data": data}
	if message != "" {
		body["message"] = message
	}
	c.JSON(statusCode, body)
}

// Application error codes. The SESSION_*/ACCOUNT_* codes are distinct
// unauthenticated sub-reasons so clients can branch UX (re-login vs
// re-scan QR) without parsing message text.
const (
	ErrCodeBadRequest          = "BAD_REQUEST"
	ErrCodeValidationFailed    = "VALIDATION_FAILED"
	ErrCodeUnauthorized        = "UNAUTHORIZED"
	ErrCodeForbidden           = "FORBIDDEN"
	ErrCodeNotFound            = "NOT_FOUND"
	ErrCodeConflict            = "CONFLICT"
	ErrCodeStateError          = "STATE_ERROR"
	ErrCodeInternalServerError = "INTERNAL_SERVER_ERROR"
	ErrCodeSessionExpired      = "SESSION_EXPIRED"
	ErrCodeSessionInactive     = "SESSION_INACTIVE"
	ErrCodeAccountLocked       = "ACCOUNT_LOCKED"
	ErrCodeTokenInvalid        = "TOKEN_INVALID"
)

// RespondValidationFailed is a shorthand for the common 400 validation failure.
func RespondValidationFailed(c *gin.Context, details string) {
	RespondWithError(c, NewAPIError(http.StatusBadRequest, ErrCodeValidationFailed, "Input validation failed", details))
}
