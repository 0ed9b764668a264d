// Package api provides HTTP handlers for the studio server.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/graphstudio/studio/internal/db"
)

// HealthHandler serves health check endpoints.
type HealthHandler struct {
	typedb    ServerChecker
	historyDB HistoryDB
	sessions  SessionService
	log       *logrus.Logger
	version   string
	startTime time.Time
}

// NewHealthHandler creates a HealthHandler. historyDB may be nil when query
// history is disabled.
func NewHealthHandler(typedb ServerChecker, historyDB HistoryDB, sessions SessionService, log *logrus.Logger, version string) *HealthHandler {
	return &HealthHandler{
		typedb:    typedb,
		historyDB: historyDB,
		sessions:  sessions,
		log:       log,
		version:   version,
		startTime: time.Now(),
	}
}

// readinessResponse is the JSON payload returned by the readiness endpoint.
type readinessResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// healthResponse is the JSON payload returned by the health/liveness endpoint.
type healthResponse struct {
	Status        string  `json:"status"`
	Version       string  `json:"version"`
	Sessions      int     `json:"sessions"`
	History       string  `json:"history"`
	UptimeSeconds float64 `json:"uptime_seconds"`
}

// Liveness handles GET /api/v1/health. It never calls TypeDB.
func (h *HealthHandler) Liveness(c *gin.Context) {
	resp := healthResponse{
		Status:        "ok",
		Version:       h.version,
		History:       "disabled",
		UptimeSeconds: time.Since(h.startTime).Seconds(),
	}

	if h.sessions != nil {
		resp.Sessions = len(h.sessions.List())
	}

	if h.historyDB != nil {
		resp.History = "enabled"
	}

	c.JSON(http.StatusOK, resp)
}

// Readiness handles GET /api/v1/ready. TypeDB must answer; the history
// database is checked only when configured.
func (h *HealthHandler) Readiness(c *gin.Context) {
	checks := map[string]string{"typedb": "ok"}
	status := "ready"
	statusCode := http.StatusOK

	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	if err := h.typedb.Health(ctx); err != nil {
		h.log.WithError(err).Error("readiness: typedb health check failed")
		checks["typedb"] = "error"
		status = "not_ready"
		statusCode = http.StatusServiceUnavailable
	}

	if h.historyDB != nil {
		checks["database"] = "ok"
		checks["schema"] = "ok"

		if err := h.historyDB.HealthCheck(ctx); err != nil {
			h.log.WithError(err).Error("readiness: database health check failed")
			checks["database"] = "error"
			checks["schema"] = "unknown"
			status = "not_ready"
			statusCode = http.StatusServiceUnavailable
		} else if err := h.checkSchema(ctx); err != nil {
			h.log.WithError(err).Error("readiness: schema check failed")
			checks["schema"] = "error"
			status = "not_ready"
			statusCode = http.StatusServiceUnavailable
		}
	}

	c.JSON(statusCode, readinessResponse{
		Status: status,
		Checks: checks,
	})
}

// checkSchema verifies that every embedded migration has been applied.
func (h *HealthHandler) checkSchema(ctx context.Context) error {
	var applied int64
	err := h.historyDB.QueryRow(ctx, "SELECT COALESCE(MAX(version_id), 0) FROM goose_db_version WHERE is_applied").Scan(&applied)
	if err != nil {
		return fmt.Errorf("schema check: %w", err)
	}

	if want := db.SchemaVersion(); applied < want {
		return fmt.Errorf("schema check: version %d applied, %d embedded", applied, want)
	}

	return nil
}
