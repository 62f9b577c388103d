// Package config defines the canonical, JSON-serializable configuration model
// for the orders ETL pipeline. It is intentionally small, explicit, and
// dependency-free so that pipelines can be loaded from disk (or assembled from
// CLI flags) and passed through the program without additional glue code.
//
// Design goals:
//
//  1. Stability: Changes to this package should be additive and backwards-
//     compatible whenever possible.
//  2. Clarity: Field names in Go mirror the JSON structure used in pipeline
//     files under configs/pipelines/*.json.
//  3. Minimalism: No third-party config libraries; decoding is performed by the
//     standard library, with a light Options helper for typed access.
//
// Example (trimmed):
//
//	{
//	  "job":    "orders_daily",
//	  "source": { "kind": "file", "file": { "path": "testdata/orders.csv" } },
//	  "load":   { "kind": "file", "file": { "path": "output/cleaned_orders.parquet" } }
//	}
package config

import "encoding/json"

// Pipeline describes one full ETL run in JSON. It is the top-level object
// decoded from a pipeline file (e.g., configs/pipelines/*.json).
type Pipeline struct {
	// Job names the run for metrics labeling and log identification.
	Job string `json:"job"`

	// Source describes where raw order rows come from.
	Source Source `json:"source"`

	// Load describes where the cleaned dataset is written.
	Load Load `json:"load"`
}

// Source identifies the data source. Additional kinds can be added over time.
type Source struct {
	// Kind selects the source implementation: "file" or "http".
	Kind string `json:"kind"`

	// File carries options for the "file" source kind.
	File SourceFile `json:"file"`

	// HTTP carries options for the "http" source kind.
	HTTP SourceHTTP `json:"http"`

	// Format forces the input format: "csv", "json", or "xlsx". Empty means
	// detect from the path/URL extension, defaulting to CSV.
	Format string `json:"format"`

	// Options is a free-form map interpreted by the format reader. For CSV the
	// supported keys are "comma" (string, first rune used) and "lazy_quotes"
	// (bool).
	Options Options `json:"options"`
}

// SourceFile holds configuration for the "file" source kind.
type SourceFile struct {
	// Path is the local filesystem path to the input file.
	Path string `json:"path"`
}

// SourceHTTP holds configuration for the "http" source kind.
type SourceHTTP struct {
	// URL is the http(s) location of the input file.
	URL string `json:"url"`
}

// Load selects the sink used to persist the cleaned dataset.
type Load struct {
	// Kind selects the destination implementation: "file" (default), "sqlite",
	// or "postgres".
	Kind string `json:"kind"`

	// File carries options for the "file" destination kind.
	File LoadFile `json:"file"`

	// DB carries options for database destination kinds.
	DB DBConfig `json:"db"`
}

// LoadFile holds configuration for the "file" destination kind.
type LoadFile struct {
	// Path is the destination file. Missing parent directories are created.
	Path string `json:"path"`

	// Format forces the output format: "parquet", "csv", or "json". Empty
	// means detect from the path extension, defaulting to parquet.
	Format string `json:"format"`
}

// DBConfig configures a database sink.
type DBConfig struct {
	// DSN is the connection string for the selected backend (database/sql DSN
	// for sqlite, pgx pool DSN for postgres).
	DSN string `json:"dsn"`

	// Table is the destination table name (schema-qualified for postgres).
	Table string `json:"table"`

	// AutoCreateTable creates the cleaned-orders table before loading. The
	// schema is fixed; nothing is inferred from data.
	AutoCreateTable bool `json:"auto_create_table"`
}

// Options is a small helper to fetch typed values from arbitrary JSON maps
// without introducing third-party configuration libraries. It purposefully
// performs only minimal type coercion and returns provided defaults when a key
// is absent or of an unexpected type.
type Options map[string]any

// String returns the string value for key or def if key is missing or not a string.
func (o Options) String(key, def string) string {
	if v, ok := o[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return def
}

// Bool returns the bool value for key or def if key is missing or not a bool.
func (o Options) Bool(key string, def bool) bool {
	if v, ok := o[key]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return def
}

// Int returns the int value for key or def. JSON numbers are decoded as
// float64 by encoding/json, so this method accepts float64 and casts to int.
// If the value is neither float64 nor int, def is returned.
func (o Options) Int(key string, def int) int {
	if v, ok := o[key]; ok {
		switch n := v.(type) {
		case float64:
			return int(n)
		case int:
			return n
		}
	}
	return def
}

// Rune returns the first rune of a string value for key, or def if key is
// missing or empty. This is useful for single-character reader settings such
// as a CSV delimiter.
func (o Options) Rune(key string, def rune) rune {
	if v, ok := o[key]; ok {
		if s, ok := v.(string); ok && len(s) > 0 {
			return []rune(s)[0]
		}
	}
	return def
}

// StringMap returns a map[string]string for key when the value is an object
// whose values are strings. Non-string values are ignored. Returns an empty map
// when the key is missing or the value is not an object.
func (o Options) StringMap(key string) map[string]string {
	res := map[string]string{}
	if v, ok := o[key]; ok {
		if m, ok := v.(map[string]any); ok {
			for k, vv := range m {
				if s, ok := vv.(string); ok {
					res[k] = s
				}
			}
		}
	}
	return res
}

// StringSlice returns a []string for key when the value is an array of strings
// (or an array of interface values containing strings). Returns nil when the
// key is missing or the value is not an array.
func (o Options) StringSlice(key string) []string {
	if v, ok := o[key]; ok {
		switch vv := v.(type) {
		case []any:
			out := make([]string, 0, len(vv))
			for _, x := range vv {
				if s, ok := x.(string); ok {
					out = append(out, s)
				}
			}
			return out
		case []string:
			return vv
		}
	}
	return nil
}

// Any returns the raw value for key (which may itself be a nested
// map[string]any, []any, or primitive). This is useful for retrieving nested
// configuration blocks that will be unmarshaled into a typed struct by the
// caller.
func (o Options) Any(key string) any {
	if v, ok := o[key]; ok {
		return v
	}
	return nil
}

// UnmarshalJSON implements json.Unmarshaler so that a missing or null "options"
// object in JSON decodes to a non-nil, empty Options map. This simplifies call
// sites by removing the need to nil-check Options values.
func (o *Options) UnmarshalJSON(b []byte) error {
	var tmp map[string]any
	if len(b) == 0 || string(b) == "null" {
		*o = Options{}
		return nil
	}
	if err := json.Unmarshal(b, &tmp); err != nil {
		return err
	}
	*o = Options(tmp)
	return nil
}
