package models

import (
	"errors"
	"strings"
)

// ErrInvalidDatabaseName is returned for names the TypeDB server would reject.
var ErrInvalidDatabaseName = errors.New("database name may only contain letters, digits, '-' and '_'")

// CreateDatabaseRequest is the payload for creating a TypeDB database.
type CreateDatabaseRequest struct {
	Name string `json:"name"`
}

// Validate trims and checks the database name.
func (r *CreateDatabaseRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	return ValidateDatabaseName(r.Name)
}

// ValidateDatabaseName checks that name is non-empty, bounded and made of safe characters.
func ValidateDatabaseName(name string) error {
	if name == "" {
		return ErrMissingDatabase
	}
	if len(name) > maxDatabaseLen {
		return ErrFieldTooLong("database", maxDatabaseLen)
	}
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return ErrInvalidDatabaseName
		}
	}
	return nil
}
