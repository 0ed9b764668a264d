package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/graphstudio/studio/internal/models"
	"github.com/graphstudio/studio/internal/service"
)

// HistoryHandler serves the recorded query run endpoints.
type HistoryHandler struct {
	history HistoryService
	log     *logrus.Logger
}

// NewHistoryHandler creates a HistoryHandler with the given service and logger.
func NewHistoryHandler(history HistoryService, log *logrus.Logger) *HistoryHandler {
	return &HistoryHandler{history: history, log: log}
}

// List handles GET /api/v1/history?database=&since=&limit=&offset=.
func (h *HistoryHandler) List(c *gin.Context) {
	limit, offset := pageParams(c)
	opts := models.HistoryQueryOpts{
		Database: c.Query("database"),
		Limit:    limit,
		Offset:   offset,
	}

	if raw := c.Query("since"); raw != "" {
		since, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "since must be an RFC3339 timestamp")

			return
		}
		opts.Since = &since
	}

	runs, hasMore, err := h.history.List(c.Request.Context(), opts)
	if err != nil {
		h.historyError(c, err, "listing query history")

		return
	}

	if runs == nil {
		runs = []models.QueryRun{}
	}

	c.JSON(http.StatusOK, gin.H{"runs": runs, "has_more": hasMore})
}

// Purge handles DELETE /api/v1/history?before=.
func (h *HistoryHandler) Purge(c *gin.Context) {
	raw := c.Query("before")
	if raw == "" {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "before is required")

		return
	}

	before, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "before must be an RFC3339 timestamp")

		return
	}

	deleted, err := h.history.Purge(c.Request.Context(), before)
	if err != nil {
		h.historyError(c, err, "purging query history")

		return
	}

	h.log.WithFields(logrus.Fields{"action": "history.purge", "before": before, "deleted": deleted}).Info("audit")

	c.JSON(http.StatusOK, gin.H{"deleted": deleted})
}

func (h *HistoryHandler) historyError(c *gin.Context, err error, action string) {
	if errors.Is(err, service.ErrHistoryDisabled) {
		respondError(c, http.StatusNotFound, ErrCodeHistoryDisabled, err.Error())

		return
	}

	h.log.WithError(err).Error(action)
	respondError(c, http.StatusInternalServerError, ErrCodeInternalError, "internal server error")
}
