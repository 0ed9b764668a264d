package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/coder/websocket"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/graphstudio/studio/internal/middleware"
	"github.com/graphstudio/studio/internal/ws"
)

// wsHandler upgrades GET /queries/:id/ws to a WebSocket subscribed to the
// session's graph, frame and status events.
func wsHandler(appCtx context.Context, log *logrus.Logger, hub *ws.Hub, sessions SessionService, corsOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := sessionID(c)
		if !ok {
			return
		}
		if !sessions.SessionActive(c.Request.Context(), id.String()) {
			respondError(c, http.StatusNotFound, ErrCodeNotFound, "session not found")

			return
		}

		conn, err := websocket.Accept(c.Writer, c.Request, &websocket.AcceptOptions{
			OriginPatterns:       corsOrigins,
			CompressionMode:      websocket.CompressionContextTakeover,
			CompressionThreshold: 256,
		})
		if err != nil {
			log.WithError(err).WithField("session_id", id).Warn("websocket upgrade failed")

			return
		}

		client := ws.NewClient(hub, conn, id.String(), sessions)
		hub.Register(client)

		// The pumps stop on server shutdown or when the request goes away.
		ctx, cancel := context.WithCancel(appCtx)
		defer cancel()
		stop := context.AfterFunc(c.Request.Context(), cancel)
		defer stop()

		go client.WritePump(ctx)
		client.ReadPump(ctx)
	}
}

// ginLogger writes one access log line per request. WebSocket upgrades are
// logged when the connection closes.
func ginLogger(log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		entry := log.WithFields(logrus.Fields{
			"method":     c.Request.Method,
			"route":      c.FullPath(),
			"path":       c.Request.URL.Path,
			"status":     c.Writer.Status(),
			"bytes":      c.Writer.Size(),
			"latency_ms": time.Since(start).Milliseconds(),
			"client":     c.ClientIP(),
		})
		if rid, ok := c.Get(middleware.RequestIDKey); ok {
			entry = entry.WithField("request_id", rid)
		}
		if c.GetBool(middleware.AuthenticatedKey) {
			entry = entry.WithField("authenticated", true)
		}

		switch status := c.Writer.Status(); {
		case status >= http.StatusInternalServerError:
			entry.Error("request")
		case status >= http.StatusBadRequest:
			entry.Warn("request")
		default:
			entry.Info("request")
		}
	}
}

// Page bounds for listing endpoints.
const (
	defaultPageSize = 50
	maxPageSize     = 1000
	maxPageOffset   = 100000
)

// pageParams reads ?limit= and ?offset=. Bad or out-of-range values fall back
// to the default or are clamped, never rejected.
func pageParams(c *gin.Context) (limit, offset int) {
	limit = defaultPageSize
	if v, err := strconv.Atoi(c.Query("limit")); err == nil && v > 0 {
		limit = min(v, maxPageSize)
	}
	if v, err := strconv.Atoi(c.Query("offset")); err == nil && v > 0 {
		offset = min(v, maxPageOffset)
	}
	return limit, offset
}
