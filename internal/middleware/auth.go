package middleware

import (
	"crypto/sha256"
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/graphstudio/studio/internal/security"
)

// authTimingFloor is the minimum response time for rejected requests so
// failures cannot be told apart by latency.
const authTimingFloor = 50 * time.Millisecond

// AuthenticatedKey is the gin context key set once a request passed key auth.
const AuthenticatedKey = "authenticated"

// truncateKey returns at most the first 4 characters of key followed by "...".
func truncateKey(key string) string {
	if len(key) > 4 {
		return key[:4] + "..."
	}
	return key
}

// enforceTimingFloor sleeps if needed so the response takes at least authTimingFloor.
func enforceTimingFloor(start time.Time) {
	if elapsed := time.Since(start); elapsed < authTimingFloor {
		time.Sleep(authTimingFloor - elapsed)
	}
}

// keysEqual compares digests so the comparison time does not depend on key length.
func keysEqual(given, want string) bool {
	a := sha256.Sum256([]byte(given))
	b := sha256.Sum256([]byte(want))
	return subtle.ConstantTimeCompare(a[:], b[:]) == 1
}

// StaticKeyAuth returns Gin middleware that requires the configured API key as
// a Bearer token. Clients with repeated failures are locked out by guard.
// An empty key disables authentication.
func StaticKeyAuth(key string, guard *security.BruteForceGuard, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if key == "" {
			c.Next()
			return
		}

		client := c.ClientIP()
		if guard != nil && guard.IsBlocked(client) {
			respondError(c, http.StatusTooManyRequests, "rate_limited", "too many failed authentication attempts")
			return
		}

		start := time.Now()
		defer func() {
			if c.Writer.Status() == http.StatusUnauthorized {
				enforceTimingFloor(start)
			}
		}()

		apiKey := ExtractBearerToken(c)
		if apiKey == "" {
			respondError(c, http.StatusUnauthorized, "unauthorized", "missing or invalid authorization header")
			return
		}

		if !keysEqual(apiKey, key) {
			logAuthFailure(log, c, apiKey)

			if guard != nil {
				guard.RecordFailure(client)
			}

			respondError(c, http.StatusUnauthorized, "unauthorized", "invalid api key")
			return
		}

		if guard != nil {
			guard.Reset(client)
		}

		c.Set(AuthenticatedKey, true)
		c.Next()
	}
}

// ExtractBearerToken extracts the API key from the Authorization header.
// WebSocket upgrades may pass it as the access_token query parameter since
// browsers cannot set headers on them.
func ExtractBearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}

	if header == "" && strings.EqualFold(c.GetHeader("Upgrade"), "websocket") {
		return c.Query("access_token")
	}

	return ""
}

// logAuthFailure logs a failed authentication attempt.
func logAuthFailure(log *logrus.Logger, c *gin.Context, apiKey string) {
	log.WithFields(logrus.Fields{
		"client_ip":  c.ClientIP(),
		"method":     c.Request.Method,
		"path":       c.Request.URL.Path,
		"user_agent": c.Request.UserAgent(),
		"request_id": c.GetString(RequestIDKey),
		"key_prefix": truncateKey(apiKey),
	}).Warn("authentication failed: invalid api key")
}
