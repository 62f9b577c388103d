package pipeline

import (
	"encoding/json"

	"orderetl/internal/extract"
	"orderetl/internal/load"
	"orderetl/internal/transform"
	"orderetl/pkg/records"
)

// sampleRows caps how many cleaned rows the report carries as a preview.
const sampleRows = 3

// Report is the JSON document one pipeline run produces. The CLI prints it
// to stdout and the HTTP server returns it from the run endpoint.
type Report struct {
	Summary           Summary           `json:"summary"`
	SampleCleanedRows []records.Cleaned `json:"sample_cleaned_rows"`
}

// Summary aggregates the per-stage stats plus the revenue total for the batch.
type Summary struct {
	Extract   extract.Stats   `json:"extract"`
	Transform transform.Stats `json:"transform"`
	Load      load.Stats      `json:"load"`

	// TotalSales is the sum of all cleaned line totals, rounded to cents.
	TotalSales records.Number `json:"total_sales"`
}

// newReport assembles the run report from stage stats and the cleaned batch.
// The sample keeps the batch's sort order and is never null in JSON.
func newReport(ex extract.Stats, tf transform.Stats, ld load.Stats, cleaned []records.Cleaned) *Report {
	var total float64
	for _, r := range cleaned {
		total += float64(r.LineTotal)
	}

	n := len(cleaned)
	if n > sampleRows {
		n = sampleRows
	}
	sample := make([]records.Cleaned, 0, sampleRows)
	sample = append(sample, cleaned[:n]...)

	return &Report{
		Summary: Summary{
			Extract:    ex,
			Transform:  tf,
			Load:       ld,
			TotalSales: records.Number(records.Round2(total)),
		},
		SampleCleanedRows: sample,
	}
}

// Render marshals the report as two-space indented JSON.
func (r *Report) Render() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}
