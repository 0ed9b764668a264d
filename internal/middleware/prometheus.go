package middleware

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/graphstudio/studio/internal/metrics"
)

// PrometheusMiddleware records HTTP request duration and count. WebSocket
// upgrades are counted but kept out of the duration histogram.
func PrometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		upgrade := strings.EqualFold(c.GetHeader("Upgrade"), "websocket")
		c.Next()

		status := strconv.Itoa(c.Writer.Status())
		path := c.FullPath() // route pattern keeps label cardinality bounded
		if path == "" {
			path = "unknown"
		}

		if !upgrade {
			metrics.RequestDuration.WithLabelValues(c.Request.Method, path, status).Observe(time.Since(start).Seconds())
		}
		metrics.RequestsTotal.WithLabelValues(c.Request.Method, path, status).Inc()
	}
}
