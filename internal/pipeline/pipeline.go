// Package pipeline wires the orders ETL end-to-end: extract raw rows from
// the configured source, clean and repair them in the transformer, and load
// the result into the configured sink. One call processes one bounded batch
// strictly in stage order; a fatal stage error aborts the run with no report
// and nothing written.
//
// The package depends only on the stage packages and storage-agnostic
// interfaces; it never imports database drivers or backend-specific packages
// directly.
package pipeline

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"orderetl/internal/config"
	"orderetl/internal/datasource"
	"orderetl/internal/datasource/file"
	"orderetl/internal/datasource/httpds"
	"orderetl/internal/extract"
	"orderetl/internal/load"
	"orderetl/internal/metrics"
	"orderetl/internal/transform"
	"orderetl/pkg/records"
)

// Function variables used to introduce test seams.
// In production these point to real implementations; tests can override them.
var (
	newSourceFn = newSource

	extractFn = func(ctx context.Context, cfg config.Source, src datasource.Source) ([]records.Raw, extract.Stats, error) {
		return extract.New(cfg.Format, cfg.Options).Extract(ctx, src)
	}

	loadFn = func(ctx context.Context, cfg config.Load, recs []records.Cleaned) (load.Stats, error) {
		return load.New(cfg).Load(ctx, recs)
	}
)

// StageLogger is a transform observer that logs a snapshot after every
// transformer stage. Attach it via RunWithObserver for debug runs.
type StageLogger struct{}

// StageDone implements transform.Observer.
func (StageLogger) StageDone(stage string, n int) {
	log.Printf("transform: stage=%s records=%d", stage, n)
}

// Run executes one full extract → transform → load pass described by cfg and
// returns the run report. On any stage failure the error propagates and the
// report is nil.
func Run(ctx context.Context, cfg config.Pipeline) (*Report, error) {
	return RunWithObserver(ctx, cfg, nil)
}

// RunWithObserver is Run with a transform observer attached; obs may be nil.
// The CLI uses it to plug in StageLogger when debug logging is requested.
func RunWithObserver(ctx context.Context, cfg config.Pipeline, obs transform.Observer) (*Report, error) {
	if err := checkConfig(cfg); err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	job := cfg.Job

	loadKind := cfg.Load.Kind
	if loadKind == "" {
		loadKind = "file"
	}
	log.Printf("pipeline: run=%s job=%s source.kind=%s load.kind=%s",
		runID, job, cfg.Source.Kind, loadKind)

	src, err := newSourceFn(cfg.Source)
	if err != nil {
		return nil, err
	}

	// Extract.
	start := time.Now()
	raws, exStats, err := extractFn(ctx, cfg.Source, src)
	metrics.RecordStep(job, "extract", err, time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("extract: %w", err)
	}
	metrics.RecordRow(job, "input", int64(exStats.InputRecords))
	log.Printf("pipeline: run=%s step=extract records=%d elapsed=%s",
		runID, exStats.InputRecords, time.Since(start).Truncate(time.Millisecond))

	// Transform. The transformer cannot fail; dirty rows are repaired or
	// dropped and tallied in its stats.
	start = time.Now()
	cleaned, tfStats := transform.New(obs).Transform(raws)
	metrics.RecordStep(job, "transform", nil, time.Since(start))
	metrics.RecordRow(job, "transformed", int64(tfStats.TransformedRecords))
	metrics.RecordRow(job, "dropped_invalid_order_date", int64(tfStats.DroppedInvalidOrderDateCount))
	metrics.RecordRow(job, "filled_customer_id", int64(tfStats.FilledCustomerIDCount))
	metrics.RecordRow(job, "filled_quantity", int64(tfStats.FilledQuantityCount))
	metrics.RecordRow(job, "filled_unit_price", int64(tfStats.FilledUnitPriceCount))
	log.Printf("pipeline: run=%s step=transform kept=%d dropped=%d elapsed=%s",
		runID, tfStats.TransformedRecords, tfStats.DroppedInvalidOrderDateCount,
		time.Since(start).Truncate(time.Millisecond))

	// Load.
	start = time.Now()
	ldStats, err := loadFn(ctx, cfg.Load, cleaned)
	metrics.RecordStep(job, "load", err, time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	metrics.RecordRow(job, "loaded", int64(ldStats.LoadedRecords))
	log.Printf("pipeline: run=%s step=load dest=%s records=%d elapsed=%s",
		runID, ldStats.OutputPath, ldStats.LoadedRecords, time.Since(start).Truncate(time.Millisecond))

	metrics.RecordRun(job)
	logRunSummary(runID, exStats, tfStats, ldStats)

	return newReport(exStats, tfStats, ldStats, cleaned), nil
}

// checkConfig runs static validation over the pipeline config. Warnings are
// logged; error-severity issues abort the run before any stage executes.
func checkConfig(cfg config.Pipeline) error {
	var fatal []string
	for _, iss := range config.ValidatePipeline(cfg) {
		if iss.Severity == config.SeverityError {
			fatal = append(fatal, iss.Error())
			continue
		}
		log.Printf("pipeline: config warning: %v", iss)
	}
	if len(fatal) > 0 {
		return fmt.Errorf("invalid pipeline config: %s", strings.Join(fatal, "; "))
	}
	return nil
}

// newSource maps source configuration onto a concrete datasource.
func newSource(cfg config.Source) (datasource.Source, error) {
	switch cfg.Kind {
	case "file":
		return file.NewLocal(cfg.File.Path), nil
	case "http":
		client := httpds.NewClient(httpds.Config{
			Timeout:        60 * time.Second,
			MaxRetries:     2,
			InitialBackoff: 500 * time.Millisecond,
			MaxBackoff:     5 * time.Second,
		})
		return httpds.NewRemote(client, cfg.HTTP.URL), nil
	default:
		return nil, fmt.Errorf("unsupported source.kind=%s", cfg.Kind)
	}
}

// logRunSummary prints final aggregated statistics for the run.
//
// The invariant for data rows is:
//
//	input == transformed + dropped_invalid_order_date
//
// Every input row is either cleaned and kept or dropped for an unparseable
// order date; there is no third outcome.
func logRunSummary(runID string, ex extract.Stats, tf transform.Stats, ld load.Stats) {
	log.Printf(
		"summary: run=%s input=%d transformed=%d dropped_invalid_order_date=%d filled_customer_id=%d filled_quantity=%d filled_unit_price=%d loaded=%d",
		runID,
		ex.InputRecords,
		tf.TransformedRecords,
		tf.DroppedInvalidOrderDateCount,
		tf.FilledCustomerIDCount,
		tf.FilledQuantityCount,
		tf.FilledUnitPriceCount,
		ld.LoadedRecords,
	)

	accounted := tf.TransformedRecords + tf.DroppedInvalidOrderDateCount
	if accounted != ex.InputRecords {
		log.Printf(
			"WARNING: row accounting mismatch: input=%d accounted=%d (delta=%d)",
			ex.InputRecords,
			accounted,
			ex.InputRecords-accounted,
		)
	}
}
