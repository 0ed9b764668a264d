package driver

import (
	"context"
	"net/url"
)

// DatabaseService handles database operations.
type DatabaseService struct{ d *Driver }

// List returns all databases on the server.
func (s *DatabaseService) List(ctx context.Context) ([]Database, error) {
	var resp databasesResponse
	if err := s.d.get(ctx, "/v1/databases", &resp); err != nil {
		return nil, err
	}
	return resp.Databases, nil
}

// Create creates a database with the given name.
func (s *DatabaseService) Create(ctx context.Context, name string) error {
	return s.d.post(ctx, "/v1/databases/"+url.PathEscape(name), nil, nil)
}

// Delete removes the named database.
func (s *DatabaseService) Delete(ctx context.Context, name string) error {
	return s.d.del(ctx, "/v1/databases/"+url.PathEscape(name))
}
