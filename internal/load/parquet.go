package load

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/parquet-go/parquet-go"

	"orderetl/pkg/records"
)

// tableRow is the parquet row model for the cleaned orders table. Field order
// defines the file schema and matches records.OutputColumns.
type tableRow struct {
	OrderID    string  `parquet:"order_id"`
	OrderDate  string  `parquet:"order_date"`
	CustomerID string  `parquet:"customer_id"`
	Product    string  `parquet:"product"`
	Quantity   int32   `parquet:"quantity"`
	UnitPrice  float64 `parquet:"unit_price"`
	OrderMonth string  `parquet:"order_month"`
	LineTotal  float64 `parquet:"line_total"`
}

func toTableRow(r records.Cleaned) tableRow {
	return tableRow{
		OrderID:    r.OrderID,
		OrderDate:  r.OrderDate,
		CustomerID: r.CustomerID,
		Product:    r.Product,
		Quantity:   int32(r.Quantity),
		UnitPrice:  float64(r.UnitPrice),
		OrderMonth: r.OrderMonth,
		LineTotal:  float64(r.LineTotal),
	}
}

// writeParquet writes recs as a snappy-compressed parquet file, creating
// parent directories and replacing any previous file at path. A zero-record
// batch produces a valid file carrying only the schema.
func writeParquet(path string, recs []records.Cleaned) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", filepath.Dir(path), err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	w := parquet.NewGenericWriter[tableRow](f, parquet.Compression(&parquet.Snappy))
	rows := make([]tableRow, 0, len(recs))
	for _, r := range recs {
		rows = append(rows, toTableRow(r))
	}
	if len(rows) > 0 {
		if _, err := w.Write(rows); err != nil {
			f.Close()
			return fmt.Errorf("write parquet %s: %w", path, err)
		}
	}
	if err := w.Close(); err != nil {
		f.Close()
		return fmt.Errorf("close parquet %s: %w", path, err)
	}
	return f.Close()
}
