// Package db applies the embedded query history schema with goose.
package db

import (
	"context"
	"fmt"
	"io/fs"

	"github.com/pressly/goose/v3"
	"github.com/sirupsen/logrus"

	"github.com/graphstudio/studio/internal/dbpool"
)

// RunMigrations applies every pending goose migration in fsys.
func RunMigrations(ctx context.Context, pool *dbpool.Pool, log *logrus.Logger, fsys fs.FS) error {
	sqlDB := pool.SQL()
	defer sqlDB.Close()

	provider, err := goose.NewProvider(goose.DialectPostgres, sqlDB, fsys)
	if err != nil {
		return fmt.Errorf("creating goose provider: %w", err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("applying migrations: %w", err)
	}
	if len(results) == 0 {
		log.Debug("history schema up to date")
		return nil
	}

	for _, r := range results {
		log.WithFields(logrus.Fields{
			"version":     r.Source.Version,
			"file":        r.Source.Path,
			"duration_ms": r.Duration.Milliseconds(),
		}).Info("history migration applied")
	}
	return nil
}
