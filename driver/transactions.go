package driver

import (
	"context"
	"fmt"
	"net/url"
)

// TransactionService opens transactions.
type TransactionService struct{ d *Driver }

// Transaction is an open server-side transaction.
type Transaction struct {
	ID   string
	Type TransactionType
	d    *Driver
}

// Open starts a transaction of the given type on a database.
func (s *TransactionService) Open(ctx context.Context, database string, txType TransactionType) (*Transaction, error) {
	var resp openTransactionResponse
	body := openTransactionRequest{DatabaseName: database, TransactionType: txType}
	if err := s.d.post(ctx, "/v1/transactions/open", body, &resp); err != nil {
		return nil, err
	}
	if resp.TransactionID == "" {
		return nil, fmt.Errorf("open transaction: server returned no transaction id")
	}
	return &Transaction{ID: resp.TransactionID, Type: txType, d: s.d}, nil
}

// Query runs a query inside the transaction.
func (t *Transaction) Query(ctx context.Context, query string) (*QueryResponse, error) {
	var resp QueryResponse
	if err := t.d.post(ctx, t.path("query"), queryRequest{Query: query}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Commit commits the transaction. The server closes it afterwards.
func (t *Transaction) Commit(ctx context.Context) error {
	return t.d.post(ctx, t.path("commit"), nil, nil)
}

// Close closes the transaction without committing.
func (t *Transaction) Close(ctx context.Context) error {
	return t.d.post(ctx, t.path("close"), nil, nil)
}

func (t *Transaction) path(action string) string {
	return "/v1/transactions/" + url.PathEscape(t.ID) + "/" + action
}
