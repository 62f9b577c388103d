// Package load persists the cleaned orders dataset. The primary destination
// is a columnar parquet file; CSV and JSON file formats and database sinks
// (sqlite, postgres) are also supported. Destinations are overwritten in
// full on every run, so reloading the same batch is idempotent.
package load

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"strings"

	"orderetl/internal/config"
	"orderetl/internal/storage"
	"orderetl/pkg/records"
)

// ErrWriteFailure classifies any failure to persist the cleaned dataset:
// destination not writable, serialization error, or database rejection.
// Write failures are fatal; callers match with errors.Is.
var ErrWriteFailure = errors.New("write failure")

// Stats summarizes one load for the run report.
type Stats struct {
	// OutputPath identifies the destination: the file path for file sinks,
	// or kind://table for database sinks.
	OutputPath string `json:"output_path"`

	// LoadedRecords is the number of cleaned records persisted.
	LoadedRecords int `json:"loaded_records"`
}

// dbBatchSize is the chunk size for database inserts.
const dbBatchSize = 500

// Loader writes cleaned records to the destination selected by cfg.
type Loader struct {
	cfg config.Load
}

// New returns a Loader for the given destination configuration.
func New(cfg config.Load) *Loader { return &Loader{cfg: cfg} }

// Load persists recs to the configured destination and returns load Stats.
// An empty batch is valid: file sinks still produce a well-formed (empty)
// dataset and database sinks insert nothing.
func (l *Loader) Load(ctx context.Context, recs []records.Cleaned) (Stats, error) {
	kind := l.cfg.Kind
	if kind == "" {
		kind = "file"
	}

	switch kind {
	case "file":
		return l.loadFile(recs)
	default:
		return l.loadDB(ctx, kind, recs)
	}
}

func (l *Loader) loadFile(recs []records.Cleaned) (Stats, error) {
	path := l.cfg.File.Path
	if path == "" {
		return Stats{}, fmt.Errorf("%w: file destination requires a path", ErrWriteFailure)
	}

	format := detectFormat(path, l.cfg.File.Format)
	var err error
	switch format {
	case "csv":
		err = writeCSV(path, recs)
	case "json":
		err = writeJSON(path, recs)
	default:
		format = "parquet"
		err = writeParquet(path, recs)
	}
	if err != nil {
		return Stats{}, fmt.Errorf("%w: %v", ErrWriteFailure, err)
	}

	log.Printf("load: kind=file format=%s path=%s records=%d", format, path, len(recs))
	return Stats{OutputPath: path, LoadedRecords: len(recs)}, nil
}

func (l *Loader) loadDB(ctx context.Context, kind string, recs []records.Cleaned) (Stats, error) {
	repo, err := storage.New(ctx, storage.Config{
		Kind:    kind,
		DSN:     l.cfg.DB.DSN,
		Table:   l.cfg.DB.Table,
		Columns: records.OutputColumns(),
	})
	if err != nil {
		return Stats{}, fmt.Errorf("%w: %v", ErrWriteFailure, err)
	}
	defer repo.Close()

	if l.cfg.DB.AutoCreateTable {
		if err := storage.EnsureTable(ctx, kind, l.cfg.DB.Table, repo); err != nil {
			return Stats{}, fmt.Errorf("%w: %v", ErrWriteFailure, err)
		}
	}

	// A rerun replaces the table contents, never appends.
	if err := repo.Exec(ctx, "DELETE FROM "+l.cfg.DB.Table); err != nil {
		return Stats{}, fmt.Errorf("%w: %v", ErrWriteFailure, err)
	}

	total, err := storage.LoadBatches(ctx, records.OutputColumns(), tableRows(recs), dbBatchSize, repo.CopyFrom)
	if err != nil {
		return Stats{}, fmt.Errorf("%w: %v", ErrWriteFailure, err)
	}

	dest := kind + "://" + l.cfg.DB.Table
	log.Printf("load: kind=%s table=%s records=%d", kind, l.cfg.DB.Table, total)
	return Stats{OutputPath: dest, LoadedRecords: int(total)}, nil
}

// tableRows converts cleaned records into column-aligned rows for
// Repository.CopyFrom. The order matches records.OutputColumns.
func tableRows(recs []records.Cleaned) [][]any {
	rows := make([][]any, 0, len(recs))
	for _, r := range recs {
		rows = append(rows, []any{
			r.OrderID,
			r.OrderDate,
			r.CustomerID,
			r.Product,
			r.Quantity,
			float64(r.UnitPrice),
			r.OrderMonth,
			float64(r.LineTotal),
		})
	}
	return rows
}

// detectFormat resolves the output format from an explicit setting or the
// destination extension, defaulting to parquet.
func detectFormat(path, explicit string) string {
	if explicit != "" {
		return explicit
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return "csv"
	case ".json", ".ndjson":
		return "json"
	default:
		return "parquet"
	}
}
