package propstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const postgresDDL = `CREATE TABLE IF NOT EXISTS properties (
	property   TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	updated_at BIGINT NOT NULL DEFAULT extract(epoch from now())::bigint
)`

// Postgres stores properties in a PostgreSQL table.
type Postgres struct {
	pool *pgxpool.Pool
}

// OpenPostgres connects to dsn and ensures the properties table exists.
func OpenPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	if _, err := pool.Exec(ctx, postgresDDL); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create properties table: %w", err)
	}
	return &Postgres{pool: pool}, nil
}

// Close releases the connection pool.
func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}

// Property returns the value stored under key.
func (p *Postgres) Property(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := p.pool.QueryRow(ctx, `SELECT value FROM properties WHERE property = $1`, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get property %s: %w", key, err)
	}
	return value, true, nil
}

// SetProperty inserts or replaces the value under key.
func (p *Postgres) SetProperty(ctx context.Context, key, value string) error {
	_, err := p.pool.Exec(ctx,
		`INSERT INTO properties (property, value, updated_at)
		 VALUES ($1, $2, extract(epoch from now())::bigint)
		 ON CONFLICT (property) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("set property %s: %w", key, err)
	}
	return nil
}

// List returns all properties ordered by key.
func (p *Postgres) List(ctx context.Context) ([]Property, error) {
	rows, err := p.pool.Query(ctx, `SELECT property, value, updated_at FROM properties ORDER BY property`)
	if err != nil {
		return nil, fmt.Errorf("list properties: %w", err)
	}
	props, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Property, error) {
		var prop Property
		err := row.Scan(&prop.Key, &prop.Value, &prop.UpdatedAt)
		return prop, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan property: %w", err)
	}
	return props, nil
}
