// Package service holds the query history business logic between the API,
// the session manager and the store.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/graphstudio/studio/internal/models"
)

// ErrHistoryDisabled is returned when no history store is configured.
var ErrHistoryDisabled = errors.New("query history is not enabled")

// HistoryStore persists and queries finished query runs.
type HistoryStore interface {
	RecordRun(ctx context.Context, run models.QueryRun) error
	ListRuns(ctx context.Context, opts models.HistoryQueryOpts) ([]models.QueryRun, bool, error)
	DeleteRuns(ctx context.Context, before time.Time) (int64, error)
}

// HistoryService exposes query history to the API.
type HistoryService struct {
	store HistoryStore
}

// NewHistoryService creates a HistoryService. A nil store disables history.
func NewHistoryService(store HistoryStore) *HistoryService {
	return &HistoryService{store: store}
}

// Enabled reports whether history is backed by a store.
func (s *HistoryService) Enabled() bool {
	return s.store != nil
}

// List returns runs matching opts, newest first.
func (s *HistoryService) List(ctx context.Context, opts models.HistoryQueryOpts) ([]models.QueryRun, bool, error) {
	if s.store == nil {
		return nil, false, ErrHistoryDisabled
	}
	return s.store.ListRuns(ctx, opts)
}

// Purge deletes runs that started before the cutoff.
func (s *HistoryService) Purge(ctx context.Context, before time.Time) (int64, error) {
	if s.store == nil {
		return 0, ErrHistoryDisabled
	}
	return s.store.DeleteRuns(ctx, before)
}
