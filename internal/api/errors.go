package api

import (
	"github.com/gin-gonic/gin"

	"github.com/graphstudio/studio/internal/httputil"
	"github.com/graphstudio/studio/internal/metrics"
)

// Error code constants for standardized API responses.
const (
	ErrCodeInvalidRequest    = "invalid_request"
	ErrCodeNotFound          = "not_found"
	ErrCodeConflict          = "conflict"
	ErrCodeInternalError     = "internal_error"
	ErrCodeUnauthorized      = "unauthorized"
	ErrCodeRateLimited       = "rate_limited"
	ErrCodeValidationError   = "validation_error"
	ErrCodeTooManySessions   = "too_many_sessions"
	ErrCodeHistoryDisabled   = "history_disabled"
	ErrCodeUpstreamError     = "upstream_error"
	ErrCodeUnsupportedFormat = "unsupported_format"
)

// respondError writes a standardized JSON error response, pulling the request
// ID from the Gin context (set by the request ID middleware).
func respondError(c *gin.Context, status int, code, message string) {
	metrics.ErrorsTotal.WithLabelValues(code).Inc()
	httputil.RespondError(c, status, code, message)
}
