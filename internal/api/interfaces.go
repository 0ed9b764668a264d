package api

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/graphstudio/studio/driver"
	"github.com/graphstudio/studio/internal/models"
	"github.com/graphstudio/studio/internal/render"
)

// SessionService manages visualised query sessions.
type SessionService interface {
	Open(req models.QueryRequest) (models.SessionInfo, error)
	Info(id uuid.UUID) (models.SessionInfo, error)
	List() []models.SessionInfo
	Snapshot(id uuid.UUID) (render.Snapshot, error)
	Stop(id uuid.UUID) error
	SessionActive(ctx context.Context, sessionID string) bool
}

// DatabaseService lists and manages TypeDB databases.
type DatabaseService interface {
	List(ctx context.Context) ([]driver.Database, error)
	Create(ctx context.Context, name string) error
	Delete(ctx context.Context, name string) error
}

// ServerChecker reports whether the TypeDB server is reachable.
type ServerChecker interface {
	Health(ctx context.Context) error
}

// HistoryService reads and purges recorded query runs.
type HistoryService interface {
	Enabled() bool
	List(ctx context.Context, opts models.HistoryQueryOpts) ([]models.QueryRun, bool, error)
	Purge(ctx context.Context, before time.Time) (int64, error)
}

// HistoryDB is the slice of the history database the readiness probe uses.
type HistoryDB interface {
	HealthCheck(ctx context.Context) error
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}
