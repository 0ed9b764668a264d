package service

import (
	"context"
	"sync"
	"time"

	"github.com/graphstudio/studio/internal/models"
)

// mockHistoryStore records calls and returns configured responses.
type mockHistoryStore struct {
	mu   sync.Mutex
	runs []models.QueryRun

	recordErr  error
	listRuns   func(ctx context.Context, opts models.HistoryQueryOpts) ([]models.QueryRun, bool, error)
	deleteRuns func(ctx context.Context, before time.Time) (int64, error)
}

func (m *mockHistoryStore) RecordRun(_ context.Context, run models.QueryRun) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs = append(m.runs, run)
	return m.recordErr
}

func (m *mockHistoryStore) ListRuns(ctx context.Context, opts models.HistoryQueryOpts) ([]models.QueryRun, bool, error) {
	return m.listRuns(ctx, opts)
}

func (m *mockHistoryStore) DeleteRuns(ctx context.Context, before time.Time) (int64, error) {
	return m.deleteRuns(ctx, before)
}

func (m *mockHistoryStore) getRuns() []models.QueryRun {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make([]models.QueryRun, len(m.runs))
	copy(cp, m.runs)
	return cp
}
