package loader

import (
	"context"

	"github.com/graphstudio/studio/driver"
)

// Transaction runs queries within one server transaction.
type Transaction interface {
	Query(ctx context.Context, query string) (*driver.QueryResponse, error)
	Close(ctx context.Context) error
}

// Opener opens read transactions on a database.
type Opener interface {
	Open(ctx context.Context, database string) (Transaction, error)
}

// DriverOpener opens read transactions through a TypeDB driver.
type DriverOpener struct {
	d *driver.Driver
}

// NewDriverOpener wraps d as an Opener.
func NewDriverOpener(d *driver.Driver) *DriverOpener {
	return &DriverOpener{d: d}
}

// Open implements Opener.
func (o *DriverOpener) Open(ctx context.Context, database string) (Transaction, error) {
	tx, err := o.d.Transactions.Open(ctx, database, driver.TransactionRead)
	if err != nil {
		return nil, err
	}
	return tx, nil
}
