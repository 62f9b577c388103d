package config

import (
	"encoding/json"
	"reflect"
	"testing"
	"unicode/utf8"
)

// These tests validate that the top-level Pipeline JSON structure decodes into
// the intended Go struct graph, so that pipeline files under
// configs/pipelines/*.json map cleanly to the Go types. JSON strings keep the
// tests hermetic and focused on the API surface rather than filesystem wiring.

func TestPipeline_DecodeRoundTrip(t *testing.T) {
	t.Parallel()

	const js = `{
	  "job": "orders_daily",
	  "source": {
	    "kind": "file",
	    "file": { "path": "testdata/orders.csv" },
	    "format": "csv",
	    "options": { "comma": ";", "lazy_quotes": true }
	  },
	  "load": {
	    "kind": "sqlite",
	    "file": { "path": "output/cleaned_orders.parquet", "format": "parquet" },
	    "db": { "dsn": "file:orders.db", "table": "cleaned_orders", "auto_create_table": true }
	  }
	}`

	var p Pipeline
	if err := json.Unmarshal([]byte(js), &p); err != nil {
		t.Fatalf("json.Unmarshal(Pipeline): %v", err)
	}

	if p.Job != "orders_daily" {
		t.Fatalf("job = %q, want orders_daily", p.Job)
	}
	if p.Source.Kind != "file" || p.Source.File.Path != "testdata/orders.csv" {
		t.Fatalf("source decoded = %#v, want kind=file path=testdata/orders.csv", p.Source)
	}
	if p.Source.Format != "csv" {
		t.Fatalf("source.format = %q, want csv", p.Source.Format)
	}
	if got := p.Source.Options.Rune("comma", ','); got != ';' {
		t.Fatalf("source.options.comma = %q, want ';'", got)
	}
	if !p.Source.Options.Bool("lazy_quotes", false) {
		t.Fatalf("source.options.lazy_quotes = false, want true")
	}

	if p.Load.Kind != "sqlite" {
		t.Fatalf("load.kind = %q, want sqlite", p.Load.Kind)
	}
	if p.Load.File.Path != "output/cleaned_orders.parquet" || p.Load.File.Format != "parquet" {
		t.Fatalf("load.file decoded = %#v", p.Load.File)
	}
	if p.Load.DB.DSN != "file:orders.db" || p.Load.DB.Table != "cleaned_orders" || !p.Load.DB.AutoCreateTable {
		t.Fatalf("load.db decoded = %#v", p.Load.DB)
	}
}

// Options helper tests: validate minimal, deliberate coercion behavior and
// defaults. This protects against accidental changes in helper semantics that
// would silently alter pipeline behavior across the application.

func TestOptions_TypedGetters(t *testing.T) {
	t.Parallel()

	o := Options{
		"s":  "hello",
		"b":  true,
		"i":  float64(42), // encoding/json decodes numbers as float64
		"r":  ",",
		"m":  map[string]any{"A": "a", "X": 1}, // non-string value must be ignored
		"s1": []any{"alpha", "beta", 3},
		"s2": []string{"gamma", "delta"},
	}

	if got := o.String("s", "def"); got != "hello" {
		t.Fatalf("String(s) = %q, want hello", got)
	}
	if got := o.String("missing", "def"); got != "def" {
		t.Fatalf("String(missing) = %q, want def", got)
	}
	if got := o.Bool("b", false); !got {
		t.Fatalf("Bool(b) = %v, want true", got)
	}
	if got := o.Int("i", 0); got != 42 {
		t.Fatalf("Int(i) = %d, want 42", got)
	}
	if got := o.Int("missing", 7); got != 7 {
		t.Fatalf("Int(missing) = %d, want 7", got)
	}
	if got := o.Rune("r", ';'); got != ',' {
		t.Fatalf("Rune(r) = %q, want ','", got)
	}

	// Rune picks the first RUNE, not the first byte, for multi-byte input.
	o["r2"] = "ž"
	r := o.Rune("r2", 'x')
	if !utf8.ValidRune(r) || string(r) != "ž" {
		t.Fatalf("Rune(r2) = %#U, want ž", r)
	}

	if sm := o.StringMap("m"); !reflect.DeepEqual(sm, map[string]string{"A": "a"}) {
		t.Fatalf("StringMap(m) = %#v, want {A:a}", sm)
	}
	if sm := o.StringMap("missing"); sm == nil || len(sm) != 0 {
		t.Fatalf("StringMap(missing) = %#v, want empty map", sm)
	}
	if ss := o.StringSlice("s1"); !reflect.DeepEqual(ss, []string{"alpha", "beta"}) {
		t.Fatalf("StringSlice(s1) = %#v, want [alpha beta]", ss)
	}
	if ss := o.StringSlice("s2"); !reflect.DeepEqual(ss, []string{"gamma", "delta"}) {
		t.Fatalf("StringSlice(s2) = %#v, want [gamma delta]", ss)
	}
	if got := o.StringSlice("missing"); got != nil {
		t.Fatalf("StringSlice(missing) = %#v, want nil", got)
	}
	if o.Any("missing") != nil {
		t.Fatalf("Any(missing) should be nil when key absent")
	}
}

// Decoding Options from JSON must yield a non-nil, empty map when the field is
// missing or explicitly null. This avoids nil-checks at call sites.

func TestOptions_UnmarshalJSON(t *testing.T) {
	t.Parallel()

	type wrapper struct {
		Opts Options `json:"options"`
	}

	for _, js := range []string{`{"options": null}`, `{}`} {
		var w wrapper
		if err := json.Unmarshal([]byte(js), &w); err != nil {
			t.Fatalf("unmarshal %s: %v", js, err)
		}
		if w.Opts == nil || len(w.Opts) != 0 {
			t.Fatalf("Opts after %s = %#v, want non-nil empty map", js, w.Opts)
		}
	}

	var w wrapper
	if err := json.Unmarshal([]byte(`{"options": {"a":"x","n":3}}`), &w); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if w.Opts.String("a", "") != "x" || w.Opts.Int("n", 0) != 3 {
		t.Fatalf("Opts decoded = %#v", w.Opts)
	}
}
