package load

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"orderetl/pkg/records"
)

// writeCSV writes recs as a CSV file with a header row, creating parent
// directories and replacing any previous file at path. Numeric cells use the
// shared rendering contract, so a reloaded file round-trips byte for byte.
func writeCSV(path string, recs []records.Cleaned) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", filepath.Dir(path), err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	cw := csv.NewWriter(f)
	if err := cw.Write(records.OutputColumns()); err != nil {
		f.Close()
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, r := range recs {
		row := []string{
			r.OrderID,
			r.OrderDate,
			r.CustomerID,
			r.Product,
			strconv.Itoa(r.Quantity),
			r.UnitPrice.String(),
			r.OrderMonth,
			r.LineTotal.String(),
		}
		if err := cw.Write(row); err != nil {
			f.Close()
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		f.Close()
		return fmt.Errorf("flush csv %s: %w", path, err)
	}
	return f.Close()
}
