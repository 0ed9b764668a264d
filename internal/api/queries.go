package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/graphstudio/studio/internal/models"
	"github.com/graphstudio/studio/internal/render"
)

// QueryHandler serves visualised query session endpoints.
type QueryHandler struct {
	sessions SessionService
	log      *logrus.Logger
}

// NewQueryHandler creates a QueryHandler with the given session service and logger.
func NewQueryHandler(sessions SessionService, log *logrus.Logger) *QueryHandler {
	return &QueryHandler{sessions: sessions, log: log}
}

// Start handles POST /api/v1/queries. The session runs in the background;
// the response carries its id for polling and streaming.
func (h *QueryHandler) Start(c *gin.Context) {
	var req models.QueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid request body")

		return
	}

	if err := req.Validate(); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeValidationError, err.Error())

		return
	}

	info, err := h.sessions.Open(req)
	if err != nil {
		if errors.Is(err, models.ErrTooManySessions) {
			respondError(c, http.StatusTooManyRequests, ErrCodeTooManySessions, err.Error())

			return
		}

		h.log.WithError(err).Error("starting query session")
		respondError(c, http.StatusInternalServerError, ErrCodeInternalError, "internal server error")

		return
	}

	h.log.WithFields(logrus.Fields{"action": "query.start", "session_id": info.ID, "database": info.Database}).Info("audit")

	c.Header("Location", "/api/v1/queries/"+info.ID.String())
	c.JSON(http.StatusAccepted, info)
}

// List handles GET /api/v1/queries.
func (h *QueryHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"sessions": h.sessions.List()})
}

// Get handles GET /api/v1/queries/:id.
func (h *QueryHandler) Get(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}

	info, err := h.sessions.Info(id)
	if err != nil {
		h.sessionError(c, err, "getting session")

		return
	}

	c.JSON(http.StatusOK, info)
}

// Graph handles GET /api/v1/queries/:id/graph?format=json|d3|dot|mermaid.
func (h *QueryHandler) Graph(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}

	format, err := render.ParseFormat(c.DefaultQuery("format", string(render.FormatJSON)))
	if err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeUnsupportedFormat, err.Error())

		return
	}

	snap, err := h.sessions.Snapshot(id)
	if err != nil {
		h.sessionError(c, err, "snapshotting session")

		return
	}

	body, err := render.Export(snap, format)
	if err != nil {
		h.log.WithError(err).WithField("session_id", id).Error("exporting graph")
		respondError(c, http.StatusInternalServerError, ErrCodeInternalError, "internal server error")

		return
	}

	c.Data(http.StatusOK, format.ContentType(), body)
}

// Stop handles DELETE /api/v1/queries/:id.
func (h *QueryHandler) Stop(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}

	if err := h.sessions.Stop(id); err != nil {
		h.sessionError(c, err, "stopping session")

		return
	}

	h.log.WithFields(logrus.Fields{"action": "query.stop", "session_id": id}).Info("audit")

	c.Status(http.StatusNoContent)
}

func (h *QueryHandler) sessionError(c *gin.Context, err error, action string) {
	if errors.Is(err, models.ErrSessionNotFound) {
		respondError(c, http.StatusNotFound, ErrCodeNotFound, "session not found")

		return
	}

	h.log.WithError(err).Error(action)
	respondError(c, http.StatusInternalServerError, ErrCodeInternalError, "internal server error")
}

// sessionID parses the :id path parameter, responding 400 when it is not a UUID.
func sessionID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid session id")

		return uuid.Nil, false
	}

	return id, true
}
