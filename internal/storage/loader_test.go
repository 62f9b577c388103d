package storage

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
)

func testRows(n int) [][]any {
	rows := make([][]any, 0, n)
	for i := 0; i < n; i++ {
		rows = append(rows, []any{i, "x"})
	}
	return rows
}

// TestLoadBatches_Basic verifies rows are grouped into batches and copyFn is
// called with the expected counts. It also checks the total equals the sum of
// all successful copyFn returns.
func TestLoadBatches_Basic(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	columns := []string{"c1", "c2"}

	var calls int32
	copyFn := func(_ context.Context, _ []string, rows [][]any) (int64, error) {
		atomic.AddInt32(&calls, 1)
		return int64(len(rows)), nil
	}

	total, err := LoadBatches(ctx, columns, testRows(7), 3, copyFn)
	if err != nil {
		t.Fatalf("LoadBatches error: %v", err)
	}
	if total != 7 {
		t.Fatalf("total rows %d, want 7", total)
	}
	if got := atomic.LoadInt32(&calls); got != 3 {
		t.Fatalf("copyFn calls %d, want 3 (3+3+1)", got)
	}
}

// TestLoadBatches_Empty verifies a zero-row load succeeds without ever
// invoking copyFn.
func TestLoadBatches_Empty(t *testing.T) {
	t.Parallel()

	copyFn := func(_ context.Context, _ []string, rows [][]any) (int64, error) {
		t.Fatal("copyFn invoked for empty input")
		return 0, nil
	}

	total, err := LoadBatches(context.Background(), []string{"c"}, nil, 3, copyFn)
	if err != nil {
		t.Fatalf("LoadBatches error: %v", err)
	}
	if total != 0 {
		t.Fatalf("total rows %d, want 0", total)
	}
}

// TestLoadBatches_ErrorPropagation ensures the first copy error is propagated
// and processing stops after that batch.
func TestLoadBatches_ErrorPropagation(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	columns := []string{"c"}

	wantErr := errors.New("copy failed")
	var batches int
	copyFn := func(_ context.Context, _ []string, rows [][]any) (int64, error) {
		batches++
		if batches == 2 {
			return int64(len(rows)), wantErr
		}
		return int64(len(rows)), nil
	}

	total, err := LoadBatches(ctx, columns, testRows(5), 2, copyFn)
	if !errors.Is(err, wantErr) {
		t.Fatalf("want error %v, got %v", wantErr, err)
	}
	if batches != 2 {
		t.Fatalf("copyFn calls %d, want 2 (stop on first error)", batches)
	}
	// Total must include rows from both reported batches (2 + 2).
	if total != 4 {
		t.Fatalf("total rows %d, want 4", total)
	}
}

// TestLoadBatches_ContextCancel checks the loader exits between batches on
// context cancellation without calling copyFn again.
func TestLoadBatches_ContextCancel(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var calls int32
	copyFn := func(ctx context.Context, _ []string, rows [][]any) (int64, error) {
		atomic.AddInt32(&calls, 1)
		cancel() // cancel after the first flush
		return int64(len(rows)), nil
	}

	total, err := LoadBatches(ctx, []string{"c"}, testRows(6), 2, copyFn)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("want context.Canceled, got %v", err)
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Fatalf("copyFn calls %d, want 1", got)
	}
	if total != 2 {
		t.Fatalf("total rows %d, want 2", total)
	}
}

// TestLoadBatches_BadArgs validates argument checking.
func TestLoadBatches_BadArgs(t *testing.T) {
	t.Parallel()

	copyFn := func(_ context.Context, _ []string, rows [][]any) (int64, error) {
		return int64(len(rows)), nil
	}

	if _, err := LoadBatches(context.Background(), nil, testRows(1), 0, copyFn); err == nil {
		t.Fatal("expected error for batchSize=0")
	}
	if _, err := LoadBatches(context.Background(), nil, testRows(1), 1, nil); err == nil {
		t.Fatal("expected error for nil copyFn")
	}
}
