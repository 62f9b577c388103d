package probe

import (
	"bytes"
	"encoding/csv"
	"io"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"orderetl/internal/schema"
	"orderetl/pkg/records"
)

// maxSampleRows caps how many data rows feed the row-level statistics.
const maxSampleRows = 10000

// readSample parses the sampled bytes best-effort: variable field counts
// are tolerated, unreadable lines are skipped, and rows whose width differs
// from the header are skipped and counted. The pipeline extractor is strict
// about all of this; the probe's job is to report the damage, not fail on
// it.
func readSample(data []byte, delim rune) (header []string, rows [][]string, skipped int) {
	cr := csv.NewReader(bytes.NewReader(data))
	cr.Comma = delim
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	for {
		rec, err := cr.Read()
		if err == io.EOF {
			return nil, nil, 0
		}
		if err != nil || len(rec) == 0 {
			continue
		}
		header = rec
		break
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}
	header[0] = strings.TrimPrefix(header[0], "\ufeff")

	for len(rows) < maxSampleRows {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			skipped++
			continue
		}
		if len(rec) == 0 {
			continue
		}
		if len(rec) != len(header) {
			skipped++
			continue
		}
		rows = append(rows, rec)
	}
	return header, rows, skipped
}

// normalizeFieldName converts arbitrary header text into a lowercase ASCII
// identifier: accents are stripped (NFD, drop nonspacing marks, NFC),
// space/dash/dot become single underscores, and anything else outside
// [a-z0-9_] is dropped. Empty results fall back to "col".
func normalizeFieldName(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))

	t := transform.Chain(
		norm.NFD,
		runes.Remove(runes.In(unicode.Mn)),
		norm.NFC,
	)
	ascii, _, _ := transform.String(t, s)

	var b strings.Builder
	prevUnderscore := false
	for _, r := range ascii {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			prevUnderscore = false
		case r == '_' || r == ' ' || r == '-' || r == '.':
			if !prevUnderscore {
				b.WriteRune('_')
				prevUnderscore = true
			}
		}
	}
	name := strings.Trim(b.String(), "_")
	if name == "" {
		return "col"
	}
	return name
}

// columnIndex maps each normalized header name to its first position, so a
// duplicated column reads from the leftmost occurrence, the same way the
// extractor resolves duplicates.
func columnIndex(normalized []string) map[string]int {
	idx := make(map[string]int, len(normalized))
	for i, name := range normalized {
		if _, ok := idx[name]; !ok {
			idx[name] = i
		}
	}
	return idx
}

// checkContract verifies the normalized header against the orders contract
// and lists whatever extra columns ride along.
func checkContract(normalized []string) ContractCheck {
	missing := schema.Orders().Missing(normalized)
	if missing == nil {
		missing = []string{}
	}

	required := make(map[string]struct{})
	for _, c := range records.InputColumns() {
		required[c] = struct{}{}
	}
	extra := []string{}
	seen := make(map[string]struct{})
	for _, n := range normalized {
		if _, ok := required[n]; ok {
			continue
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		extra = append(extra, n)
	}

	return ContractCheck{
		OK:             len(missing) == 0,
		MissingColumns: missing,
		ExtraColumns:   extra,
	}
}

// fillRates computes the non-empty share per required column over the
// sampled rows, in contract order.
func fillRates(rows [][]string, idx map[string]int) []FillRate {
	cols := records.InputColumns()
	out := make([]FillRate, 0, len(cols))
	for _, col := range cols {
		rate := 0.0
		if i, ok := idx[col]; ok && len(rows) > 0 {
			n := 0
			for _, r := range rows {
				if i < len(r) && strings.TrimSpace(r[i]) != "" {
					n++
				}
			}
			rate = float64(n) / float64(len(rows))
		}
		out = append(out, FillRate{Column: col, Rate: records.Number(records.Round2(rate))})
	}
	return out
}

// scoreOrderDate collects the non-empty order_date samples and scores the
// date layouts against them.
func scoreOrderDate(rows [][]string, idx map[string]int) LayoutScore {
	i, ok := idx[records.ColOrderDate]
	if !ok {
		return LayoutScore{}
	}
	var samples []string
	for _, r := range rows {
		if i >= len(r) {
			continue
		}
		if v := strings.TrimSpace(r[i]); v != "" {
			samples = append(samples, v)
		}
	}
	layout, matched := bestLayout(samples)
	return LayoutScore{Layout: layout, Matched: matched, Sampled: len(samples)}
}

// dateLayouts mirrors the order-date forms the transformer's date filter
// accepts, in the same trial order, so the probe reports the layout a run
// would resolve ambiguous dates to.
var dateLayouts = []string{
	"2006-01-02", // ISO
	"2006/01/02",
	"01/02/2006", // MDY slash
	"02/01/2006", // DMY slash
	"02.01.2006", // DMY dot
	"01.02.2006", // MDY dot
	"2 Jan 2006",
	"02-Jan-2006",
	"Jan 2, 2006",
	"20060102", // basic ISO
	time.RFC3339,
	"2006-01-02 15:04:05",
}

// bestLayout scores every layout by how many samples it parses and returns
// the winner with its match count. Ties resolve to the earlier layout, the
// same precedence the date filter uses. No matches at all yields "".
func bestLayout(samples []string) (string, int) {
	if len(samples) == 0 {
		return "", 0
	}
	scores := make([]int, len(dateLayouts))
	for _, s := range samples {
		for i, layout := range dateLayouts {
			if _, err := time.Parse(layout, s); err == nil {
				scores[i]++
			}
		}
	}
	bestIdx, bestScore := -1, 0
	for i, sc := range scores {
		if sc > bestScore {
			bestIdx, bestScore = i, sc
		}
	}
	if bestIdx < 0 {
		return "", 0
	}
	return dateLayouts[bestIdx], bestScore
}
