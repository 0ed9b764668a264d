package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/graphstudio/studio/driver"
	"github.com/graphstudio/studio/internal/models"
)

// DatabaseHandler serves TypeDB database management endpoints.
type DatabaseHandler struct {
	dbs DatabaseService
	log *logrus.Logger
}

// NewDatabaseHandler creates a DatabaseHandler with the given service and logger.
func NewDatabaseHandler(dbs DatabaseService, log *logrus.Logger) *DatabaseHandler {
	return &DatabaseHandler{dbs: dbs, log: log}
}

// List handles GET /api/v1/databases.
func (h *DatabaseHandler) List(c *gin.Context) {
	dbs, err := h.dbs.List(c.Request.Context())
	if err != nil {
		h.upstreamError(c, err, "listing databases")

		return
	}

	if dbs == nil {
		dbs = []driver.Database{}
	}

	c.JSON(http.StatusOK, gin.H{"databases": dbs})
}

// Create handles POST /api/v1/databases.
func (h *DatabaseHandler) Create(c *gin.Context) {
	var req models.CreateDatabaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid request body")

		return
	}

	if err := req.Validate(); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeValidationError, err.Error())

		return
	}

	if err := h.dbs.Create(c.Request.Context(), req.Name); err != nil {
		if driver.IsConflict(err) {
			respondError(c, http.StatusConflict, ErrCodeConflict, "database already exists")

			return
		}

		h.upstreamError(c, err, "creating database")

		return
	}

	h.log.WithFields(logrus.Fields{"action": "database.create", "database": req.Name}).Info("audit")

	c.JSON(http.StatusCreated, driver.Database{Name: req.Name})
}

// Delete handles DELETE /api/v1/databases/:name.
func (h *DatabaseHandler) Delete(c *gin.Context) {
	name := c.Param("name")
	if err := models.ValidateDatabaseName(name); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeValidationError, err.Error())

		return
	}

	if err := h.dbs.Delete(c.Request.Context(), name); err != nil {
		if driver.IsNotFound(err) {
			respondError(c, http.StatusNotFound, ErrCodeNotFound, "database not found")

			return
		}

		h.upstreamError(c, err, "deleting database")

		return
	}

	h.log.WithFields(logrus.Fields{"action": "database.delete", "database": name}).Info("audit")

	c.Status(http.StatusNoContent)
}

// upstreamError reports a TypeDB failure as a bad gateway.
func (h *DatabaseHandler) upstreamError(c *gin.Context, err error, action string) {
	h.log.WithError(err).Error(action)
	respondError(c, http.StatusBadGateway, ErrCodeUpstreamError, "typedb request failed")
}
