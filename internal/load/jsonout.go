package load

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"orderetl/pkg/records"
)

// writeJSON writes recs as one JSON array of cleaned-order objects, creating
// parent directories and replacing any previous file at path. An empty batch
// yields a literal [] so downstream readers always get valid JSON.
func writeJSON(path string, recs []records.Cleaned) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", filepath.Dir(path), err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	if recs == nil {
		recs = []records.Cleaned{}
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(recs); err != nil {
		f.Close()
		return fmt.Errorf("encode json %s: %w", path, err)
	}
	return f.Close()
}
