// Package storage defines the backend-agnostic contract for database
// destinations of the cleaned orders dataset, plus a small factory keyed by
// storage kind. Concrete backends (sqlite, postgres) register themselves at
// init time; callers open repositories through New without importing any
// backend directly.
package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Repository is the write surface a database backend must provide.
type Repository interface {
	// CopyFrom bulk-inserts rows (aligned to the columns order) into the
	// configured table and returns the number of rows written.
	CopyFrom(ctx context.Context, columns []string, rows [][]any) (int64, error)

	// Exec runs an arbitrary SQL statement, typically DDL.
	Exec(ctx context.Context, sql string) error

	// Close releases the underlying connection or pool.
	Close()
}

// Config carries everything a backend factory needs to open a Repository.
type Config struct {
	// Kind selects the registered backend, e.g. "sqlite" or "postgres".
	Kind string

	// DSN is the backend connection string (database/sql DSN for sqlite,
	// pgxpool DSN for postgres).
	DSN string

	// Table is the destination table name; postgres accepts a schema-qualified
	// form such as "public.orders_clean".
	Table string

	// Columns is the ordered list of destination columns.
	Columns []string
}

// Factory opens a backend-specific Repository.
type Factory func(ctx context.Context, cfg Config) (Repository, error)

var (
	regMu     sync.RWMutex
	factories = map[string]Factory{}
)

// Register registers (or replaces) a factory for the given storage kind. It
// is typically called from backend packages' init() functions.
func Register(kind string, fn Factory) {
	regMu.Lock()
	defer regMu.Unlock()
	factories[kind] = fn
}

// New opens a Repository for cfg.Kind using the registered factory.
func New(ctx context.Context, cfg Config) (Repository, error) {
	regMu.RLock()
	fn, ok := factories[cfg.Kind]
	regMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unsupported storage.kind=%s", cfg.Kind)
	}
	return fn(ctx, cfg)
}

// ListKinds returns a sorted snapshot of the registered storage kinds.
func ListKinds() []string {
	regMu.RLock()
	defer regMu.RUnlock()
	kinds := make([]string, 0, len(factories))
	for k := range factories {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}
