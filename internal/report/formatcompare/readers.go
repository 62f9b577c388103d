package formatcompare

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/parquet-go/parquet-go"
	"golang.org/x/sync/errgroup"

	"orderetl/pkg/records"
)

// tableRow mirrors the loader's parquet schema for the cleaned orders table.
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

// CompareFiles reads both serializations concurrently and compares them.
func CompareFiles(jsonPath, parquetPath string) (Result, error) {
	var jsonRecs, parquetRecs []records.Cleaned

	var g errgroup.Group
	g.Go(func() error {
		recs, err := ReadJSONFile(jsonPath)
		if err != nil {
			return fmt.Errorf("read json side: %w", err)
		}
		jsonRecs = recs
		return nil
	})
	g.Go(func() error {
		recs, err := ReadParquetFile(parquetPath)
		if err != nil {
			return fmt.Errorf("read parquet side: %w", err)
		}
		parquetRecs = recs
		return nil
	})
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	return Compare(jsonRecs, parquetRecs), nil
}

// ReadJSONFile decodes a cleaned-orders JSON array as the loader writes it.
func ReadJSONFile(path string) ([]records.Cleaned, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	var recs []records.Cleaned
	if err := json.NewDecoder(f).Decode(&recs); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return recs, nil
}

// ReadParquetFile reads a cleaned-orders parquet file as the loader writes
// it.
func ReadParquetFile(path string) ([]records.Cleaned, error) {
	rows, err := parquet.ReadFile[tableRow](path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	recs := make([]records.Cleaned, 0, len(rows))
	for _, r := range rows {
		recs = append(recs, records.Cleaned{
			OrderID:    r.OrderID,
			OrderDate:  r.OrderDate,
			CustomerID: r.CustomerID,
			Product:    r.Product,
			Quantity:   int(r.Quantity),
			UnitPrice:  records.Number(r.UnitPrice),
			OrderMonth: r.OrderMonth,
			LineTotal:  records.Number(r.LineTotal),
		})
	}
	return recs, nil
}
