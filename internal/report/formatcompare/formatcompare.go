// Package formatcompare checks that two serializations of the cleaned
// orders dataset carry the same data. It reads the loader's JSON array and
// parquet file, aggregates both sides identically, and reports index-level
// differences per aggregation axis. Equal inputs yield an equivalent
// verdict regardless of the container format.
package formatcompare

import (
	"sort"

	"orderetl/pkg/records"
)

// topProductCount caps the product ranking on each side.
const topProductCount = 3

// DailySales is the revenue total for one order date.
type DailySales struct {
	Date  string         `json:"date"`
	Sales records.Number `json:"sales"`
}

// MonthlySales is the revenue total for one order month.
type MonthlySales struct {
	Month string         `json:"month"`
	Sales records.Number `json:"sales"`
}

// TopProduct is one entry of the product ranking.
type TopProduct struct {
	Product  string         `json:"product"`
	Sales    records.Number `json:"sales"`
	Quantity int            `json:"quantity"`
}

// Aggregations is one side's view of the dataset.
type Aggregations struct {
	TotalRevenue records.Number `json:"total_revenue"`
	DailySales   []DailySales   `json:"daily_sales"`
	MonthlySales []MonthlySales `json:"monthly_sales"`
	TopProducts  []TopProduct   `json:"top_products"`
}

// DifferenceItem is one index where the two sides disagree. A side missing
// the index entirely reports null.
type DifferenceItem struct {
	Index        int `json:"index"`
	JSONValue    any `json:"json_value"`
	ParquetValue any `json:"parquet_value"`
}

// Differences lists the disagreements per aggregation axis.
type Differences struct {
	DailySales   []DifferenceItem `json:"daily_sales"`
	MonthlySales []DifferenceItem `json:"monthly_sales"`
	TopProducts  []DifferenceItem `json:"top_products"`
}

// Summary carries the record counts and the equivalence verdict.
type Summary struct {
	JSONRecordCount    int  `json:"json_record_count"`
	ParquetRecordCount int  `json:"parquet_record_count"`
	IsEquivalent       bool `json:"is_equivalent"`
}

// Result is the full comparison document.
type Result struct {
	Summary             Summary      `json:"summary"`
	JSONAggregations    Aggregations `json:"json_aggregations"`
	ParquetAggregations Aggregations `json:"parquet_aggregations"`
	Differences         Differences  `json:"differences"`
}

// Compare aggregates both record sets and diffs the aggregations. The
// inputs are equivalent when every axis matches index by index and the
// revenue totals agree.
func Compare(jsonRecs, parquetRecs []records.Cleaned) Result {
	jsonAgg := aggregate(jsonRecs)
	parquetAgg := aggregate(parquetRecs)

	diffs := Differences{
		DailySales:   compareItems(jsonAgg.DailySales, parquetAgg.DailySales),
		MonthlySales: compareItems(jsonAgg.MonthlySales, parquetAgg.MonthlySales),
		TopProducts:  compareItems(jsonAgg.TopProducts, parquetAgg.TopProducts),
	}
	equivalent := len(diffs.DailySales) == 0 &&
		len(diffs.MonthlySales) == 0 &&
		len(diffs.TopProducts) == 0 &&
		jsonAgg.TotalRevenue == parquetAgg.TotalRevenue

	return Result{
		Summary: Summary{
			JSONRecordCount:    len(jsonRecs),
			ParquetRecordCount: len(parquetRecs),
			IsEquivalent:       equivalent,
		},
		JSONAggregations:    jsonAgg,
		ParquetAggregations: parquetAgg,
		Differences:         diffs,
	}
}

// aggregate rolls one side up by date, month and product. Line totals are
// already rounded per record; the sums are re-rounded only at the rendering
// boundary. Rankings are decided on exact sums.
func aggregate(recs []records.Cleaned) Aggregations {
	dailySum := make(map[string]float64, 32)
	monthlySum := make(map[string]float64, 12)
	productSum := make(map[string]float64, 32)
	productQty := make(map[string]int, 32)
	var revenue float64
	for _, r := range recs {
		lt := float64(r.LineTotal)
		dailySum[r.OrderDate] += lt
		monthlySum[r.OrderMonth] += lt
		productSum[r.Product] += lt
		productQty[r.Product] += r.Quantity
		revenue += lt
	}

	dates := sortedKeys(dailySum)
	daily := make([]DailySales, 0, len(dates))
	for _, d := range dates {
		daily = append(daily, DailySales{Date: d, Sales: records.Number(records.Round2(dailySum[d]))})
	}

	months := sortedKeys(monthlySum)
	monthly := make([]MonthlySales, 0, len(months))
	for _, m := range months {
		monthly = append(monthly, MonthlySales{Month: m, Sales: records.Number(records.Round2(monthlySum[m]))})
	}

	top := make([]TopProduct, 0, len(productSum))
	for name := range productSum {
		top = append(top, TopProduct{Product: name, Quantity: productQty[name]})
	}
	sort.Slice(top, func(i, j int) bool {
		a, b := productSum[top[i].Product], productSum[top[j].Product]
		if a != b {
			return a > b
		}
		return top[i].Product < top[j].Product
	})
	if len(top) > topProductCount {
		top = top[:topProductCount]
	}
	for i := range top {
		top[i].Sales = records.Number(records.Round2(productSum[top[i].Product]))
	}

	return Aggregations{
		TotalRevenue: records.Number(records.Round2(revenue)),
		DailySales:   daily,
		MonthlySales: monthly,
		TopProducts:  top,
	}
}

// sortedKeys returns the map keys in ascending order.
func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// compareItems diffs two slices index by index, reporting only positions
// where the sides disagree.
func compareItems[T comparable](jsonItems, parquetItems []T) []DifferenceItem {
	diffs := make([]DifferenceItem, 0)
	n := len(jsonItems)
	if len(parquetItems) > n {
		n = len(parquetItems)
	}
	for i := 0; i < n; i++ {
		var jv, pv any
		if i < len(jsonItems) {
			jv = jsonItems[i]
		}
		if i < len(parquetItems) {
			pv = parquetItems[i]
		}
		if jv != pv {
			diffs = append(diffs, DifferenceItem{Index: i, JSONValue: jv, ParquetValue: pv})
		}
	}
	return diffs
}
