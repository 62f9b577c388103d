// Package logclean normalizes JSON Lines access logs and flags suspicious
// entries. The stage order is fixed: parse, convert types, fill gaps, apply
// the business anomaly rules, derive IQR outlier bounds, render. Rows whose
// timestamp cannot be parsed are dropped and counted; every other defect is
// repaired in place.
//
// Anomalies and outliers are separate ideas: an anomaly breaks a business
// rule (negative response time, status outside the HTTP range), an outlier
// merely sits far out in the response time distribution.
package logclean

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"orderetl/pkg/records"
)

// Fill values for missing fields.
const (
	UnknownEndpoint = "/unknown"
	UnknownMethod   = "UNKNOWN"
)

// timestampFormat is the canonical rendering; parsed times are normalized
// to UTC first, so the literal Z suffix is always truthful.
const timestampFormat = "2006-01-02T15:04:05Z"

// Entry is one cleaned log line.
type Entry struct {
	Timestamp      string         `json:"timestamp"`
	Endpoint       string         `json:"endpoint"`
	Method         string         `json:"method"`
	Status         int            `json:"status"`
	ResponseTimeMS records.Number `json:"response_time_ms"`
	IsAnomaly      bool           `json:"is_anomaly"`
	IsOutlier      bool           `json:"is_outlier"`
}

// Summary counts what the cleaning did.
type Summary struct {
	TotalRecords                 int `json:"total_records"`
	DroppedInvalidTimestampCount int `json:"dropped_invalid_timestamp_count"`
	FilledResponseTimeCount      int `json:"filled_response_time_count"`
	FilledStatusCount            int `json:"filled_status_count"`
	FilledEndpointCount          int `json:"filled_endpoint_count"`
	FilledMethodCount            int `json:"filled_method_count"`
	AnomalyCount                 int `json:"anomaly_count"`
	OutlierCount                 int `json:"outlier_count"`
}

// Bounds is the IQR outlier window for response times.
type Bounds struct {
	Lower records.Number `json:"lower"`
	Upper records.Number `json:"upper"`
}

// Result is the full cleaning document. Anomalies and Outliers are filtered
// views of CleanedLogs in the same order.
type Result struct {
	Summary            Summary `json:"summary"`
	ResponseTimeBounds Bounds  `json:"response_time_bounds"`
	CleanedLogs        []Entry `json:"cleaned_logs"`
	Anomalies          []Entry `json:"anomalies"`
	Outliers           []Entry `json:"outliers"`
}

// rawEntry is one JSONL line before any typing. Fields stay loose because
// real logs mix numbers, numeric strings and nulls freely.
type rawEntry struct {
	Timestamp      any `json:"timestamp"`
	Endpoint       any `json:"endpoint"`
	Method         any `json:"method"`
	Status         any `json:"status"`
	ResponseTimeMS any `json:"response_time_ms"`
}

// row is a typed line with per-field presence, pre-fill.
type row struct {
	ts              time.Time
	endpoint        string
	endpointMissing bool
	method          string
	methodMissing   bool
	status          float64
	statusMissing   bool
	respTime        float64
	respMissing     bool
}

// Process reads JSON Lines from r and cleans them. Blank lines are skipped;
// a line that is not a JSON object is a fatal error. An input with no
// usable rows yields a zero result, not an error.
func Process(r io.Reader) (Result, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var rows []row
	dropped := 0
	for line := 1; sc.Scan(); line++ {
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		var re rawEntry
		if err := json.Unmarshal([]byte(text), &re); err != nil {
			return Result{}, fmt.Errorf("line %d: %w", line, err)
		}

		ts, ok := parseTime(re.Timestamp)
		if !ok {
			dropped++
			continue
		}
		rw := row{ts: ts}
		rw.endpoint, rw.endpointMissing = textField(re.Endpoint)
		rw.method, rw.methodMissing = textField(re.Method)
		rw.status, rw.statusMissing = numField(re.Status)
		rw.respTime, rw.respMissing = numField(re.ResponseTimeMS)
		rows = append(rows, rw)
	}
	if err := sc.Err(); err != nil {
		return Result{}, fmt.Errorf("read input: %w", err)
	}

	sum := Summary{
		TotalRecords:                 len(rows),
		DroppedInvalidTimestampCount: dropped,
	}

	// Fill gaps. The response time fill is the median of the values that
	// were actually present; with nothing present it falls back to 0.
	present := make([]float64, 0, len(rows))
	for _, rw := range rows {
		if !rw.respMissing {
			present = append(present, rw.respTime)
		}
	}
	sort.Float64s(present)
	median := quantile(present, 0.5)

	for i := range rows {
		if rows[i].respMissing {
			rows[i].respTime = median
			sum.FilledResponseTimeCount++
		}
		if rows[i].statusMissing {
			rows[i].status = 0
			sum.FilledStatusCount++
		}
		if rows[i].endpointMissing {
			rows[i].endpoint = UnknownEndpoint
			sum.FilledEndpointCount++
		}
		if rows[i].methodMissing {
			rows[i].method = UnknownMethod
			sum.FilledMethodCount++
		}
	}

	// Outlier bounds come from the filled distribution. Status 0 marks a
	// filled value and is exempt from the range rule.
	filled := make([]float64, len(rows))
	for i, rw := range rows {
		filled[i] = rw.respTime
	}
	sort.Float64s(filled)
	q1 := quantile(filled, 0.25)
	q3 := quantile(filled, 0.75)
	iqr := q3 - q1
	lower := q1 - 1.5*iqr
	upper := q3 + 1.5*iqr

	sort.SliceStable(rows, func(i, j int) bool { return rows[i].ts.Before(rows[j].ts) })

	cleaned := make([]Entry, 0, len(rows))
	anomalies := make([]Entry, 0)
	outliers := make([]Entry, 0)
	for _, rw := range rows {
		e := Entry{
			Timestamp:      rw.ts.Format(timestampFormat),
			Endpoint:       rw.endpoint,
			Method:         rw.method,
			Status:         int(rw.status),
			ResponseTimeMS: records.Number(records.Round2(rw.respTime)),
			IsAnomaly:      rw.respTime < 0 || (rw.status != 0 && (rw.status < 100 || rw.status > 599)),
			IsOutlier:      rw.respTime < lower || rw.respTime > upper,
		}
		cleaned = append(cleaned, e)
		if e.IsAnomaly {
			anomalies = append(anomalies, e)
		}
		if e.IsOutlier {
			outliers = append(outliers, e)
		}
	}
	sum.AnomalyCount = len(anomalies)
	sum.OutlierCount = len(outliers)

	return Result{
		Summary: sum,
		ResponseTimeBounds: Bounds{
			Lower: records.Number(records.Round2(lower)),
			Upper: records.Number(records.Round2(upper)),
		},
		CleanedLogs: cleaned,
		Anomalies:   anomalies,
		Outliers:    outliers,
	}, nil
}

// timeLayouts are tried in order. Layouts without a zone are read as UTC.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseTime(v any) (time.Time, bool) {
	s, ok := v.(string)
	if !ok {
		return time.Time{}, false
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// textField keeps the original string when it has any visible content;
// non-strings and blank strings count as missing.
func textField(v any) (string, bool) {
	s, ok := v.(string)
	if !ok || strings.TrimSpace(s) == "" {
		return "", true
	}
	return s, false
}

// numField accepts JSON numbers and numeric strings. Anything else, and
// non-finite values, count as missing.
func numField(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return 0, true
		}
		return t, false
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return 0, true
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, true
		}
		return f, false
	}
	return 0, true
}

// quantile returns the linearly interpolated q-quantile of sorted values,
// so quantile(v, 0.5) is the classic median. An empty input yields 0.
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if len(sorted) == 1 {
		return sorted[0]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}
