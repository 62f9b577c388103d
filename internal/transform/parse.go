package transform

import (
	"math"
	"strconv"
	"strings"
	"time"

	"orderetl/pkg/records"
)

// trimRaw strips leading/trailing whitespace from every field. Extracted
// values are never nil (absent source values arrive as ""), so trimming is
// the whole normalization.
func trimRaw(r records.Raw) records.Raw {
	r.OrderID = strings.TrimSpace(r.OrderID)
	r.OrderDate = strings.TrimSpace(r.OrderDate)
	r.CustomerID = strings.TrimSpace(r.CustomerID)
	r.Product = strings.TrimSpace(r.Product)
	r.Quantity = strings.TrimSpace(r.Quantity)
	r.UnitPrice = strings.TrimSpace(r.UnitPrice)
	return r
}

// dateLayouts are the accepted order-date forms, tried in order. ISO first
// (the dominant export format), then slashed forms with month-first ahead of
// day-first (so ambiguous dates resolve month-first while day>12 still
// parses), then dotted, textual, and timestamp forms. A timestamp match
// keeps only the date part.
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

// parseDate attempts to read s as a calendar date using the permissive
// layout list. It returns the date formatted as YYYY-MM-DD and whether any
// layout matched. Errors are captured, never raised; a failed parse means
// the record is dropped by the date filter.
func parseDate(s string) (string, bool) {
	if s == "" {
		return "", false
	}
	for _, layout := range dateLayouts {
		if d, err := time.Parse(layout, s); err == nil {
			return d.Format("2006-01-02"), true
		}
	}
	return "", false
}

// parseNumber attempts to read s as a finite number. NaN and infinities
// count as unparseable: they carry no usable magnitude, so they fall into
// the missing state and get repaired like any other corrupt value.
func parseNumber(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
