package extract

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"orderetl/internal/schema"
	"orderetl/pkg/records"
)

// readXLSX decodes the first sheet of a workbook. The first row is the
// header and must satisfy the same contract as a CSV header. Excelize trims
// trailing empty cells per row, so short rows are padded rather than
// rejected; fully empty rows are skipped.
func readXLSX(r io.Reader) ([]records.Raw, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedSource, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: workbook has no sheets", ErrMalformedSource)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("%w: read sheet %s: %v", ErrMalformedSource, sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: sheet %s has no header row", ErrMalformedSource, sheets[0])
	}

	header := rows[0]
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}
	if missing := schema.Orders().Missing(header); len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing required columns %v", ErrMalformedSource, missing)
	}
	idx := columnIndex(header)

	var out []records.Raw
	for _, row := range rows[1:] {
		if emptyRow(row) {
			continue
		}
		out = append(out, rawFromRow(row, idx))
	}
	return out, nil
}

// emptyRow reports whether every cell is blank after trimming.
func emptyRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
