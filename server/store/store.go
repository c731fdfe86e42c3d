package store

import (
	"context"
	"embed"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed schema.sql
var schema embed.FS

var ErrNotFound = errors.New("not found")

// KV is the persistence surface: opaque values under string keys.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context, prefix string) ([]string, error)
	Close() error
}

// Connect opens the backend named by driver: memory, sqlite or postgres.
func Connect(driver, dsn, sqlitePath string) (KV, error) {
	switch driver {
	case "", "memory":
		return NewMemory(), nil
	case "sqlite":
		return OpenSQLite(sqlitePath)
	case "postgres":
		return Open(dsn)
	}
	return nil, fmt.Errorf("unknown store driver %q", driver)
}

// DB is the Postgres backend.
type DB struct{ *pgxpool.Pool }

func Open(dsn string) (*DB, error) {
	p, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		return nil, err
	}
	db := &DB{p}
	if err := db.Ping(context.Background()); err != nil {
		p.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

func (db *DB) Close() error                   { db.Pool.Close(); return nil }
func (db *DB) Ping(ctx context.Context) error { return db.Pool.Ping(ctx) }

func Migrate(ctx context.Context, db *DB) error {
	sqlBytes, err := schema.ReadFile("schema.sql")
	if err != nil {
		return err
	}
	_, err = db.Exec(ctx, string(sqlBytes))
	return err
}

func (db *DB) Get(ctx context.Context, key string) ([]byte, error) {
	var v []byte
	err := db.QueryRow(ctx, `SELECT value FROM kv WHERE key = $1`, key).Scan(&v)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", key, ErrNotFound)
	}
	return v, err
}

func (db *DB) Put(ctx context.Context, key string, value []byte) error {
	_, err := db.Exec(ctx, `
        INSERT INTO kv(key, value) VALUES ($1, $2)
        ON CONFLICT (key) DO UPDATE
          SET value = EXCLUDED.value,
              updated_at = now()
    `, key, value)
	return err
}

func (db *DB) Delete(ctx context.Context, key string) error {
	_, err := db.Exec(ctx, `DELETE FROM kv WHERE key = $1`, key)
	return err
}

func (db *DB) List(ctx context.Context, prefix string) ([]string, error) {
	rows, err := db.Query(ctx, `SELECT key FROM kv WHERE starts_with(key, $1) ORDER BY key`, prefix)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}
