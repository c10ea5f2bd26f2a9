// Package store is the relational storage adapter spec'd in spec.md §4.7 and
// §6: a SQLite-backed connection providing durable tables for nodes, edges,
// settings, cache and changes, optional FTS5 virtual tables, and raw cursor
// access for the pattern compiler. It is the only package in this module
// that imports database/sql or the sqlite driver.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

// DefaultBusyTimeout is used when Config.BusyTimeout is zero.
const DefaultBusyTimeout = 30 * time.Second

// Config controls how an Adapter opens its connection.
type Config struct {
	// Path is a filesystem path or ":memory:" for an ephemeral database.
	Path string
	// BusyTimeout bounds how long a write waits on a locked database
	// before returning SQLITE_BUSY. Zero uses DefaultBusyTimeout.
	BusyTimeout time.Duration
}

// Queryer is the common subset of *sql.DB and *sql.Tx the rest of the module
// needs. Packages above store receive a Queryer so the same code path
// works whether or not it's running inside WithTx.
type Queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Adapter owns the single connection to the graph's backing store. Per
// spec.md §5, the connection is owned by the graph handle and released when
// the handle is dropped.
type Adapter struct {
	db   *sql.DB
	path string
}

// Open opens (creating if absent) the SQLite database at cfg.Path and
// returns an Adapter wrapping it. Base tables are NOT created here; call
// Reset to create them, matching spec.md §4.7's separation of connect vs.
// schema creation.
func Open(cfg Config) (*Adapter, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("store: empty path")
	}
	busy := cfg.BusyTimeout
	if busy == 0 {
		busy = DefaultBusyTimeout
	}

	db, err := sql.Open("sqlite3", connString(cfg.Path, busy))
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", cfg.Path, err)
	}
	// A single logical writer per spec.md §5: one connection avoids
	// SQLite's single-writer semantics turning into driver-level pool
	// contention.
	db.SetMaxOpenConns(1)

	return &Adapter{db: db, path: cfg.Path}, nil
}

// DB exposes the raw *sql.DB for the pattern compiler's cursor access
// (spec.md §4.7 "Exposes raw cursor access for query execution").
func (a *Adapter) DB() *sql.DB {
	return a.db
}

// Close releases the underlying connection.
func (a *Adapter) Close() error {
	return a.db.Close()
}

// Path returns the path the adapter was opened with.
func (a *Adapter) Path() string {
	return a.path
}

// ctx is used internally by Reset, which has no caller-supplied context in
// its exported signature (schema creation is a one-shot setup call).
func (a *Adapter) ctx() context.Context {
	return context.Background()
}

// retryBackoff bounds how long WithTx retries a transient SQLITE_BUSY before
// giving up, mirroring the teacher's internal/storage/dolt/store.go
// newServerRetryBackoff helper.
func retryBackoff() backoff.BackOff {
	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = 5 * time.Second
	return bo
}

func isBusyErr(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "database is locked") ||
		strings.Contains(msg, "SQLITE_BUSY") ||
		strings.Contains(msg, "busy")
}

// WithTx runs fn inside a transaction, committing on success and rolling
// back on error. Per spec.md §5 "a full save/delete plus its change record
// should occur atomically", every multi-statement mutation in the item and
// journal packages goes through WithTx rather than issuing separate
// top-level Exec calls. Commit is retried with a short bounded backoff on a
// transient busy error even though busy_timeout is already configured,
// following the teacher's backoff.Retry wrapping around transaction commits.
func (a *Adapter) WithTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	return backoff.Retry(func() error {
		tx, err := a.db.BeginTx(ctx, nil)
		if err != nil {
			if isBusyErr(err) {
				return err
			}
			return backoff.Permanent(fmt.Errorf("store: begin tx: %w", err))
		}
		if err := fn(tx); err != nil {
			_ = tx.Rollback()
			if isBusyErr(err) {
				return err
			}
			return backoff.Permanent(err)
		}
		if err := tx.Commit(); err != nil {
			if isBusyErr(err) {
				return err
			}
			return backoff.Permanent(fmt.Errorf("store: commit: %w", err))
		}
		return nil
	}, backoff.WithContext(retryBackoff(), ctx))
}
