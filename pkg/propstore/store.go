// Package propstore persists string properties, such as the rules of a name
// processor, in a key/value table.
package propstore

import (
	"context"
	"fmt"
)

// Property is one stored key/value row.
type Property struct {
	Key       string
	Value     string
	UpdatedAt int64
}

// Store is a property table.
type Store interface {
	Property(ctx context.Context, key string) (string, bool, error)
	SetProperty(ctx context.Context, key, value string) error
	List(ctx context.Context) ([]Property, error)
	Close() error
}

// Open returns the store for driver: "sqlite" (dsn is a file path),
// "postgres" (dsn is a connection string) or "memory".
func Open(ctx context.Context, driver, dsn string) (Store, error) {
	switch driver {
	case "sqlite", "":
		s, err := OpenSQLite(dsn)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "postgres", "postgresql":
		p, err := OpenPostgres(ctx, dsn)
		if err != nil {
			return nil, err
		}
		return p, nil
	case "memory":
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown property store driver %q", driver)
	}
}
