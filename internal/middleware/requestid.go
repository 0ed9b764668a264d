package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	// RequestIDKey is the gin context key for the request ID.
	RequestIDKey = "request_id"

	// ClientRequestIDKey holds the caller's own X-Request-ID, when usable.
	ClientRequestIDKey = "client_request_id"

	// RequestIDHeader is the HTTP header used to propagate the request ID.
	RequestIDHeader = "X-Request-ID"

	maxClientRequestID = 128
)

// RequestID gives every request a server UUID, echoed in X-Request-ID. The
// caller's header is never trusted as the ID; a printable one is truncated and
// kept under ClientRequestIDKey for correlation.
func RequestID(log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := uuid.NewString()
		c.Set(RequestIDKey, id)
		c.Header(RequestIDHeader, id)

		if clientID := sanitizeClientID(c.GetHeader(RequestIDHeader)); clientID != "" {
			c.Set(ClientRequestIDKey, clientID)
			log.WithFields(logrus.Fields{
				RequestIDKey:       id,
				ClientRequestIDKey: clientID,
			}).Debug("correlating client request id")
		}

		c.Next()
	}
}

// sanitizeClientID truncates raw and rejects it if it holds anything other
// than printable ASCII.
func sanitizeClientID(raw string) string {
	if len(raw) > maxClientRequestID {
		raw = raw[:maxClientRequestID]
	}
	if strings.IndexFunc(raw, func(r rune) bool { return r < 0x20 || r > 0x7e }) >= 0 {
		return ""
	}
	return raw
}
