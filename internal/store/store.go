// Package store provides data access for the query history kept in PostgreSQL.
package store

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/graphstudio/studio/internal/dbpool"
)

const defaultQueryTimeout = 30 * time.Second

// Base contains shared dependencies for all stores.
type Base struct {
	Pool *dbpool.Pool
	Log  *logrus.Logger
}

// withTimeout creates a context with the default query timeout.
func withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, defaultQueryTimeout)
}
