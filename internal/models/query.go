package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	maxQueryLen    = 65536
	maxDatabaseLen = 255
)

// QueryRequest is the payload for starting a visualised query.
type QueryRequest struct {
	Database string `json:"database"`
	Query    string `json:"query"`
	// Explore enables follow-up lookups of owned attributes, role players and type edges.
	Explore bool `json:"explore"`
}

// Validate checks required fields and limits on QueryRequest.
func (r *QueryRequest) Validate() error {
	r.Database = strings.TrimSpace(r.Database)
	if r.Database == "" {
		return ErrMissingDatabase
	}
	if len(r.Database) > maxDatabaseLen {
		return ErrFieldTooLong("database", maxDatabaseLen)
	}
	if strings.TrimSpace(r.Query) == "" {
		return ErrMissingQuery
	}
	if len(r.Query) > maxQueryLen {
		return ErrFieldTooLong("query", maxQueryLen)
	}
	return nil
}

// SessionStatus is the lifecycle phase of a query session.
type SessionStatus string

// Session statuses.
const (
	StatusRunning   SessionStatus = "running"
	StatusCompleted SessionStatus = "completed"
	StatusFailed    SessionStatus = "failed"
	StatusStopped   SessionStatus = "stopped"
)

// SessionInfo describes a query session to API callers. A completed session
// is only fully visible through /graph once Drained is true.
type SessionInfo struct {
	ID        uuid.UUID     `json:"id"`
	Database  string        `json:"database"`
	Query     string        `json:"query"`
	Status    SessionStatus `json:"status"`
	Vertices  int           `json:"vertices"`
	Edges     int           `json:"edges"`
	Alpha     float64       `json:"alpha"`
	Drained   bool          `json:"drained"`
	Error     string        `json:"error,omitempty"`
	StartedAt time.Time     `json:"started_at"`
}

// QueryRun is one finished query session as recorded in history.
type QueryRun struct {
	ID         int64      `json:"id"`
	SessionID  uuid.UUID  `json:"session_id"`
	Database   string     `json:"database"`
	Query      string     `json:"query"`
	Vertices   int        `json:"vertices"`
	Edges      int        `json:"edges"`
	Error      *string    `json:"error,omitempty"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

// HistoryQueryOpts holds filters for listing query history.
type HistoryQueryOpts struct {
	Database string
	Since    *time.Time
	Limit    int
	Offset   int
}
