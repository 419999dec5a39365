// File: internal/store/store.go
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"
)

// ErrStoreUnavailable wraps driver-level failures the adapter cannot
// recover from on its own; the pool's factory and the handler both
// surface it as a 500 whose body carries the error text.
var ErrStoreUnavailable = errors.New("store: backend unavailable")

const schema = `CREATE TABLE IF NOT EXISTS key_value (key INTEGER PRIMARY KEY, value TEXT NOT NULL)`

// OpenDB opens the backing database/sql handle and ensures the
// key_value table exists. It is called once at startup, before the
// connection pool's factory starts checking out *sql.Conn values from
// it; database/sql's own pooling is pinned to one connection apiece
// (see NewConnFactory) so the resource pool above it remains the
// single point of bounded concurrency.
func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("store: open %q: %w", dsn, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: create schema: %w", err)
	}
	return db, nil
}

// NewConnFactory returns a pool.Factory that checks one *sql.Conn out
// of db. Each pooled resource thereafter owns exactly one logical
// connection for the lifetime it spends outside the pool's idle queue.
func NewConnFactory(db *sql.DB) func() (*Adapter, error) {
	return func() (*Adapter, error) {
		conn, err := db.Conn(context.Background())
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}
		return &Adapter{conn: conn}, nil
	}
}

// Adapter is the thin contract over the backing store the handler
// requires: Get, Upsert, Delete. It owns a single *sql.Conn for its
// entire lifetime; concurrency safety comes from never sharing an
// Adapter across goroutines without funneling access through the
// connection pool.
type Adapter struct {
	conn *sql.Conn
}

// Close releases the underlying *sql.Conn back to database/sql's own
// pool. The resource pool (internal/pool) never calls this directly —
// it only recycles Adapters into its idle queue — but a future health
// check or shutdown path can use it to actually tear a connection down.
func (a *Adapter) Close() error {
	return a.conn.Close()
}

// Get returns the current value for key, or ok=false if no row exists.
func (a *Adapter) Get(ctx context.Context, key int32) (value string, ok bool, err error) {
	row := a.conn.QueryRowContext(ctx, `SELECT value FROM key_value WHERE key = ?`, key)
	if err := row.Scan(&value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("%w: get %d: %v", ErrStoreUnavailable, key, err)
	}
	return value, true, nil
}

// Upsert atomically inserts or replaces the value for key.
func (a *Adapter) Upsert(ctx context.Context, key int32, value string) error {
	_, err := a.conn.ExecContext(ctx,
		`INSERT INTO key_value(key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value)
	if err != nil {
		return fmt.Errorf("%w: upsert %d: %v", ErrStoreUnavailable, key, err)
	}
	return nil
}

// Delete removes the row for key. A missing key is a no-op, not a
// failure.
func (a *Adapter) Delete(ctx context.Context, key int32) error {
	_, err := a.conn.ExecContext(ctx, `DELETE FROM key_value WHERE key = ?`, key)
	if err != nil {
		return fmt.Errorf("%w: delete %d: %v", ErrStoreUnavailable, key, err)
	}
	return nil
}
