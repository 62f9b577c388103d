package extract

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"orderetl/internal/config"
	"orderetl/internal/schema"
	"orderetl/pkg/records"
)

// utf8BOM is stripped from the first header cell if present.
const utf8BOM = "\ufeff"

// readCSV decodes an entire CSV export. The first row must be a header
// carrying every required column; matching is exact and case sensitive after
// trimming cell whitespace. Unknown columns are ignored. Rows whose width
// differs from the header are rejected as malformed.
func readCSV(r io.Reader, opts config.Options) ([]records.Raw, error) {
	cr := csv.NewReader(r)
	cr.Comma = opts.Rune("comma", ',')
	cr.LazyQuotes = opts.Bool("lazy_quotes", false)

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%w: empty input, no header row", ErrMalformedSource)
	}
	if err != nil {
		return nil, classifyCSVErr(err)
	}

	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}
	header[0] = strings.TrimPrefix(header[0], utf8BOM)

	if missing := schema.Orders().Missing(header); len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing required columns %v", ErrMalformedSource, missing)
	}
	idx := columnIndex(header)

	var out []records.Raw
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, classifyCSVErr(err)
		}
		out = append(out, rawFromRow(row, idx))
	}
	return out, nil
}

// columnIndex maps each header name to its first position. Duplicate headers
// resolve to the leftmost occurrence.
func columnIndex(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, name := range header {
		if _, ok := idx[name]; !ok {
			idx[name] = i
		}
	}
	return idx
}

// rawFromRow picks the six contract columns out of a positional row. Columns
// beyond the contract are ignored; a position past the row's end (possible
// for padded XLSX rows) yields an empty value.
func rawFromRow(row []string, idx map[string]int) records.Raw {
	cell := func(col string) string {
		i, ok := idx[col]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}
	return records.Raw{
		OrderID:    cell(records.ColOrderID),
		OrderDate:  cell(records.ColOrderDate),
		CustomerID: cell(records.ColCustomerID),
		Product:    cell(records.ColProduct),
		Quantity:   cell(records.ColQuantity),
		UnitPrice:  cell(records.ColUnitPrice),
	}
}

// classifyCSVErr maps reader failures onto the extraction taxonomy: parse
// errors mean the payload is malformed, anything else means the underlying
// stream failed.
func classifyCSVErr(err error) error {
	var perr *csv.ParseError
	if errors.As(err, &perr) {
		return fmt.Errorf("%w: %v", ErrMalformedSource, err)
	}
	return fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
}
