// Package sqlreport re-aggregates the sales_orders table into a revenue
// report: daily totals, segment and payment-method rollups, and the
// high-value order list. The aggregation is pure and works on rows a caller
// provides; Fetch is the only path that talks to PostgreSQL. Rankings are
// decided on exact sums, amounts rounded only after ordering.
package sqlreport

import (
	"errors"
	"sort"

	"orderetl/pkg/records"
)

// DefaultHighValueThreshold is the order amount from which an order counts
// as high value when the caller does not pick a threshold.
const DefaultHighValueThreshold = 500

// ErrNoRows reports an empty sales_orders result set. The table must be
// seeded before the report can run.
var ErrNoRows = errors.New("sales_orders returned no rows")

// Row is one sales_orders line as the report query returns it: the date is
// ISO text and the amount is numeric.
type Row struct {
	OrderID       string
	OrderDate     string
	Segment       string
	PaymentMethod string
	Amount        float64
}

// DailySales is the revenue total for one date.
type DailySales struct {
	Date  string         `json:"date"`
	Sales records.Number `json:"sales"`
}

// SegmentSales is the revenue rollup for one customer segment.
type SegmentSales struct {
	Segment        string         `json:"segment"`
	TotalSales     records.Number `json:"total_sales"`
	OrderCount     int            `json:"order_count"`
	AvgOrderAmount records.Number `json:"avg_order_amount"`
}

// PaymentMethodSales is the revenue rollup for one payment method.
type PaymentMethodSales struct {
	PaymentMethod  string         `json:"payment_method"`
	TotalSales     records.Number `json:"total_sales"`
	OrderCount     int            `json:"order_count"`
	AvgOrderAmount records.Number `json:"avg_order_amount"`
}

// HighValueOrder is one order at or above the high-value threshold.
type HighValueOrder struct {
	OrderID       string         `json:"order_id"`
	OrderDate     string         `json:"order_date"`
	Segment       string         `json:"segment"`
	PaymentMethod string         `json:"payment_method"`
	OrderAmount   records.Number `json:"order_amount"`
}

// Summary carries the row count, covered date range and revenue totals.
type Summary struct {
	TotalRows           int            `json:"total_rows"`
	DateRangeStart      string         `json:"date_range_start"`
	DateRangeEnd        string         `json:"date_range_end"`
	TotalRevenue        records.Number `json:"total_revenue"`
	HighValueOrderCount int            `json:"high_value_order_count"`
}

// Result is the full report document.
type Result struct {
	Summary            Summary              `json:"summary"`
	DailySales         []DailySales         `json:"daily_sales"`
	SegmentSales       []SegmentSales       `json:"segment_sales"`
	PaymentMethodSales []PaymentMethodSales `json:"payment_method_sales"`
	HighValueOrders    []HighValueOrder     `json:"high_value_orders"`
}

// Build aggregates rows into the report. Returns ErrNoRows for an empty
// input; every other input succeeds.
func Build(rows []Row, threshold float64) (Result, error) {
	if len(rows) == 0 {
		return Result{}, ErrNoRows
	}

	daily := make(map[string]float64, 32)
	var revenue float64
	minDate, maxDate := rows[0].OrderDate, rows[0].OrderDate
	for _, r := range rows {
		daily[r.OrderDate] += r.Amount
		revenue += r.Amount
		if r.OrderDate < minDate {
			minDate = r.OrderDate
		}
		if r.OrderDate > maxDate {
			maxDate = r.OrderDate
		}
	}

	dates := make([]string, 0, len(daily))
	for d := range daily {
		dates = append(dates, d)
	}
	sort.Strings(dates)
	dailyOut := make([]DailySales, 0, len(dates))
	for _, d := range dates {
		dailyOut = append(dailyOut, DailySales{Date: d, Sales: records.Number(records.Round2(daily[d]))})
	}

	segments := keyedSales(rows, func(r Row) string { return r.Segment })
	segmentOut := make([]SegmentSales, 0, len(segments))
	for _, a := range segments {
		segmentOut = append(segmentOut, SegmentSales{
			Segment:        a.key,
			TotalSales:     records.Number(records.Round2(a.total)),
			OrderCount:     a.count,
			AvgOrderAmount: records.Number(records.Round2(a.total / float64(a.count))),
		})
	}

	payments := keyedSales(rows, func(r Row) string { return r.PaymentMethod })
	paymentOut := make([]PaymentMethodSales, 0, len(payments))
	for _, a := range payments {
		paymentOut = append(paymentOut, PaymentMethodSales{
			PaymentMethod:  a.key,
			TotalSales:     records.Number(records.Round2(a.total)),
			OrderCount:     a.count,
			AvgOrderAmount: records.Number(records.Round2(a.total / float64(a.count))),
		})
	}

	var high []Row
	for _, r := range rows {
		if r.Amount >= threshold {
			high = append(high, r)
		}
	}
	sort.Slice(high, func(i, j int) bool {
		if high[i].Amount != high[j].Amount {
			return high[i].Amount > high[j].Amount
		}
		return high[i].OrderID < high[j].OrderID
	})
	highOut := make([]HighValueOrder, 0, len(high))
	for _, r := range high {
		highOut = append(highOut, HighValueOrder{
			OrderID:       r.OrderID,
			OrderDate:     r.OrderDate,
			Segment:       r.Segment,
			PaymentMethod: r.PaymentMethod,
			OrderAmount:   records.Number(records.Round2(r.Amount)),
		})
	}

	return Result{
		Summary: Summary{
			TotalRows:           len(rows),
			DateRangeStart:      minDate,
			DateRangeEnd:        maxDate,
			TotalRevenue:        records.Number(records.Round2(revenue)),
			HighValueOrderCount: len(high),
		},
		DailySales:         dailyOut,
		SegmentSales:       segmentOut,
		PaymentMethodSales: paymentOut,
		HighValueOrders:    highOut,
	}, nil
}

// keyedAgg is a raw rollup for one grouping key.
type keyedAgg struct {
	key   string
	total float64
	count int
}

// keyedSales groups rows by key and orders the groups by total desc with
// the key name breaking ties.
func keyedSales(rows []Row, key func(Row) string) []keyedAgg {
	totals := make(map[string]float64, 8)
	counts := make(map[string]int, 8)
	for _, r := range rows {
		k := key(r)
		totals[k] += r.Amount
		counts[k]++
	}
	out := make([]keyedAgg, 0, len(totals))
	for k := range totals {
		out = append(out, keyedAgg{key: k, total: totals[k], count: counts[k]})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].total != out[j].total {
			return out[i].total > out[j].total
		}
		return out[i].key < out[j].key
	})
	return out
}
