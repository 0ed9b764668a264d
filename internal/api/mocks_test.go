package api_test

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/graphstudio/studio/driver"
	"github.com/graphstudio/studio/internal/models"
	"github.com/graphstudio/studio/internal/render"
)

// mockSessions implements api.SessionService for testing.
type mockSessions struct {
	openFn     func(req models.QueryRequest) (models.SessionInfo, error)
	infoFn     func(id uuid.UUID) (models.SessionInfo, error)
	listFn     func() []models.SessionInfo
	snapshotFn func(id uuid.UUID) (render.Snapshot, error)
	stopFn     func(id uuid.UUID) error
}

func (m *mockSessions) Open(req models.QueryRequest) (models.SessionInfo, error) {
	return m.openFn(req)
}

func (m *mockSessions) Info(id uuid.UUID) (models.SessionInfo, error) {
	return m.infoFn(id)
}

func (m *mockSessions) List() []models.SessionInfo {
	if m.listFn == nil {
		return []models.SessionInfo{}
	}
	return m.listFn()
}

func (m *mockSessions) Snapshot(id uuid.UUID) (render.Snapshot, error) {
	return m.snapshotFn(id)
}

func (m *mockSessions) Stop(id uuid.UUID) error {
	return m.stopFn(id)
}

func (m *mockSessions) SessionActive(_ context.Context, sessionID string) bool {
	id, err := uuid.Parse(sessionID)
	if err != nil || m.infoFn == nil {
		return false
	}
	_, err = m.infoFn(id)
	return err == nil
}

// mockDatabases implements api.DatabaseService for testing.
type mockDatabases struct {
	listFn   func(ctx context.Context) ([]driver.Database, error)
	createFn func(ctx context.Context, name string) error
	deleteFn func(ctx context.Context, name string) error
}

func (m *mockDatabases) List(ctx context.Context) ([]driver.Database, error) {
	return m.listFn(ctx)
}

func (m *mockDatabases) Create(ctx context.Context, name string) error {
	return m.createFn(ctx, name)
}

func (m *mockDatabases) Delete(ctx context.Context, name string) error {
	return m.deleteFn(ctx, name)
}

// mockServer implements api.ServerChecker for testing.
type mockServer struct {
	err error
}

func (m *mockServer) Health(context.Context) error { return m.err }

// mockHistory implements api.HistoryService for testing.
type mockHistory struct {
	enabled bool
	listFn  func(ctx context.Context, opts models.HistoryQueryOpts) ([]models.QueryRun, bool, error)
	purgeFn func(ctx context.Context, before time.Time) (int64, error)
}

func (m *mockHistory) Enabled() bool { return m.enabled }

func (m *mockHistory) List(ctx context.Context, opts models.HistoryQueryOpts) ([]models.QueryRun, bool, error) {
	return m.listFn(ctx, opts)
}

func (m *mockHistory) Purge(ctx context.Context, before time.Time) (int64, error) {
	return m.purgeFn(ctx, before)
}

// mockHistoryDB implements api.HistoryDB for testing.
type mockHistoryDB struct {
	pingErr error
	version int64
}

func (m *mockHistoryDB) HealthCheck(context.Context) error { return m.pingErr }

func (m *mockHistoryDB) QueryRow(context.Context, string, ...any) pgx.Row {
	return versionRow{version: m.version}
}

type versionRow struct {
	version int64
}

func (r versionRow) Scan(dest ...any) error {
	if len(dest) != 1 {
		return errors.New("unexpected scan arity")
	}
	p, ok := dest[0].(*int64)
	if !ok {
		return errors.New("unexpected scan type")
	}
	*p = r.version
	return nil
}
