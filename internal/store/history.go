package store

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/graphstudio/studio/internal/models"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 1000
)

// HistoryStore provides data access for the query_runs table.
type HistoryStore struct {
	Base
}

// NewHistoryStore creates a HistoryStore.
func NewHistoryStore(base Base) *HistoryStore {
	return &HistoryStore{Base: base}
}

// RecordRun inserts a finished query run. A second record for the same
// session updates the first.
func (s *HistoryStore) RecordRun(ctx context.Context, run models.QueryRun) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	_, err := s.Pool.Exec(ctx, `
		INSERT INTO query_runs (session_id, database, query, vertices, edges, error, started_at, finished_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (session_id) DO UPDATE SET
			vertices = EXCLUDED.vertices,
			edges = EXCLUDED.edges,
			error = EXCLUDED.error,
			finished_at = EXCLUDED.finished_at`,
		run.SessionID, run.Database, run.Query, run.Vertices, run.Edges, run.Error, run.StartedAt, run.FinishedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting query run: %w", err)
	}

	return nil
}

// buildHistoryFilter builds WHERE clause and args from HistoryQueryOpts.
func buildHistoryFilter(opts models.HistoryQueryOpts) (where string, args []any, nextArg int) {
	var conditions []string
	argIdx := 1

	if opts.Database != "" {
		conditions = append(conditions, "database = $"+strconv.Itoa(argIdx))
		args = append(args, opts.Database)
		argIdx++
	}
	if opts.Since != nil {
		conditions = append(conditions, "started_at >= $"+strconv.Itoa(argIdx))
		args = append(args, *opts.Since)
		argIdx++
	}

	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	return where, args, argIdx
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		return maxHistoryLimit
	}
	return limit
}

// ListRuns returns query runs matching the filters, newest first.
// Returns runs, hasMore flag, and any error.
func (s *HistoryStore) ListRuns(ctx context.Context, opts models.HistoryQueryOpts) ([]models.QueryRun, bool, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	where, args, argIdx := buildHistoryFilter(opts)
	limit := clampLimit(opts.Limit)

	query := fmt.Sprintf(
		"SELECT id, session_id, database, query, vertices, edges, error, started_at, finished_at FROM query_runs %s ORDER BY started_at DESC, id DESC LIMIT $%d OFFSET $%d",
		where, argIdx, argIdx+1,
	)
	args = append(args, limit+1, opts.Offset)

	rows, err := s.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, false, fmt.Errorf("querying query runs: %w", err)
	}

	runs, err := pgx.CollectRows(rows, scanRun)
	if err != nil {
		return nil, false, fmt.Errorf("scanning query runs: %w", err)
	}

	hasMore := len(runs) > limit
	if hasMore {
		runs = runs[:limit]
	}

	return runs, hasMore, nil
}

func scanRun(row pgx.CollectableRow) (models.QueryRun, error) {
	var r models.QueryRun
	err := row.Scan(&r.ID, &r.SessionID, &r.Database, &r.Query, &r.Vertices, &r.Edges, &r.Error, &r.StartedAt, &r.FinishedAt)
	return r, err
}

// DeleteRuns removes runs that started before the cutoff and returns how many were deleted.
func (s *HistoryStore) DeleteRuns(ctx context.Context, before time.Time) (int64, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	tag, err := s.Pool.Exec(ctx, "DELETE FROM query_runs WHERE started_at < $1", before)
	if err != nil {
		return 0, fmt.Errorf("deleting query runs: %w", err)
	}

	s.Log.WithField("deleted", tag.RowsAffected()).Debug("purged query history")

	return tag.RowsAffected(), nil
}
