package store_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/graphstudio/studio/internal/db"
	"github.com/graphstudio/studio/internal/db/migrations"
	"github.com/graphstudio/studio/internal/dbpool"
	"github.com/graphstudio/studio/internal/models"
	"github.com/graphstudio/studio/internal/store"
)

// testEnv holds shared test infrastructure (single pool across all tests).
type testEnv struct {
	pool *dbpool.Pool
	log  *logrus.Logger
}

var sharedEnv *testEnv

func getTestEnv(t *testing.T) *testEnv {
	t.Helper()

	if sharedEnv != nil {
		return sharedEnv
	}

	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()

	pool, err := dbpool.NewPool(ctx, dbURL, 2)
	if err != nil {
		t.Fatalf("connecting to test DB: %v", err)
	}

	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)

	if err := db.RunMigrations(ctx, pool, log, migrations.FS); err != nil {
		t.Fatalf("migrating test DB: %v", err)
	}

	sharedEnv = &testEnv{pool: pool, log: log}

	return sharedEnv
}

func newHistoryStore(t *testing.T) (*store.HistoryStore, string) {
	t.Helper()

	env := getTestEnv(t)
	database := "test_" + uuid.NewString()[:8]

	t.Cleanup(func() {
		_, _ = env.pool.Exec(context.Background(), "DELETE FROM query_runs WHERE database = $1", database)
	})

	return store.NewHistoryStore(store.Base{Pool: env.pool, Log: env.log}), database
}

func TestHistoryStore_RecordAndList(t *testing.T) {
	s, database := newHistoryStore(t)
	ctx := context.Background()

	started := time.Now().Add(-time.Minute).UTC().Truncate(time.Microsecond)
	finished := started.Add(2 * time.Second)
	msg := "boom"

	first := models.QueryRun{
		SessionID: uuid.New(), Database: database, Query: "match $x isa person;",
		Vertices: 3, Edges: 2, StartedAt: started, FinishedAt: &finished,
	}
	second := models.QueryRun{
		SessionID: uuid.New(), Database: database, Query: "match $y isa company;",
		Error: &msg, StartedAt: started.Add(time.Second),
	}

	for _, run := range []models.QueryRun{first, second} {
		if err := s.RecordRun(ctx, run); err != nil {
			t.Fatalf("RecordRun: %v", err)
		}
	}

	runs, hasMore, err := s.ListRuns(ctx, models.HistoryQueryOpts{Database: database, Limit: 1})
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if !hasMore || len(runs) != 1 {
		t.Fatalf("expected 1 run with more available, got %d (hasMore=%v)", len(runs), hasMore)
	}
	if runs[0].SessionID != second.SessionID || runs[0].Error == nil || *runs[0].Error != "boom" {
		t.Errorf("expected newest run first, got %+v", runs[0])
	}

	runs, _, err = s.ListRuns(ctx, models.HistoryQueryOpts{Database: database, Offset: 1})
	if err != nil {
		t.Fatalf("ListRuns offset: %v", err)
	}
	if len(runs) != 1 || runs[0].Vertices != 3 || runs[0].FinishedAt == nil {
		t.Errorf("unexpected second page: %+v", runs)
	}
}

func TestHistoryStore_RecordRunUpserts(t *testing.T) {
	s, database := newHistoryStore(t)
	ctx := context.Background()

	run := models.QueryRun{SessionID: uuid.New(), Database: database, Query: "match $x;", StartedAt: time.Now()}
	if err := s.RecordRun(ctx, run); err != nil {
		t.Fatalf("RecordRun: %v", err)
	}

	run.Vertices = 7
	if err := s.RecordRun(ctx, run); err != nil {
		t.Fatalf("RecordRun again: %v", err)
	}

	runs, _, err := s.ListRuns(ctx, models.HistoryQueryOpts{Database: database})
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 1 || runs[0].Vertices != 7 {
		t.Errorf("expected one updated run, got %+v", runs)
	}
}

func TestHistoryStore_DeleteRuns(t *testing.T) {
	s, database := newHistoryStore(t)
	ctx := context.Background()

	old := models.QueryRun{SessionID: uuid.New(), Database: database, Query: "q", StartedAt: time.Now().Add(-48 * time.Hour)}
	recent := models.QueryRun{SessionID: uuid.New(), Database: database, Query: "q", StartedAt: time.Now()}
	for _, run := range []models.QueryRun{old, recent} {
		if err := s.RecordRun(ctx, run); err != nil {
			t.Fatalf("RecordRun: %v", err)
		}
	}

	if _, err := s.DeleteRuns(ctx, time.Now().Add(-24*time.Hour)); err != nil {
		t.Fatalf("DeleteRuns: %v", err)
	}

	runs, _, err := s.ListRuns(ctx, models.HistoryQueryOpts{Database: database})
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 1 || runs[0].SessionID != recent.SessionID {
		t.Errorf("expected only the recent run, got %+v", runs)
	}
}
