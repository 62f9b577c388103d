// Package salesagg aggregates raw sales order lines into the daily,
// per-category, and top-product views plus a batch summary. Sales values are
// summed unrounded and rendered through records.Number, so ties are decided
// on exact sums and the JSON carries at most two decimals.
package salesagg

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"orderetl/pkg/records"
)

// topProductCount caps the top-product listing.
const topProductCount = 3

// Row is one sales order line as the reporting CSV carries it.
type Row struct {
	Date     string
	Category string
	Product  string
	Quantity int
	Price    float64
}

// DailySales is the revenue of one calendar day.
type DailySales struct {
	Date  string         `json:"date"`
	Sales records.Number `json:"sales"`
}

// CategorySales is the revenue of one product category.
type CategorySales struct {
	Category string         `json:"category"`
	Sales    records.Number `json:"sales"`
}

// TopProduct is one of the highest-revenue products with its unit volume.
type TopProduct struct {
	Product  string         `json:"product"`
	Sales    records.Number `json:"sales"`
	Quantity int            `json:"quantity"`
}

// Summary carries the whole-batch figures.
type Summary struct {
	TotalOrders       int            `json:"total_orders"`
	TotalRevenue      records.Number `json:"total_revenue"`
	AverageOrderValue records.Number `json:"average_order_value"`
	BestSalesDay      string         `json:"best_sales_day"`
	BestSalesAmount   records.Number `json:"best_sales_amount"`
}

// Result is the full aggregation document.
type Result struct {
	Summary       Summary         `json:"summary"`
	DailySales    []DailySales    `json:"daily_sales"`
	CategorySales []CategorySales `json:"category_sales"`
	TopProducts   []TopProduct    `json:"top_products"`
}

// salesColumns is the required reporting CSV header.
var salesColumns = []string{"date", "category", "product", "quantity", "price"}

// ReadCSV decodes sales order lines from r. Columns are located by header
// name, so column order in the file does not matter; all five are required.
func ReadCSV(r io.Reader) ([]Row, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[strings.TrimSpace(name)] = i
	}
	for _, want := range salesColumns {
		if _, ok := idx[want]; !ok {
			return nil, fmt.Errorf("missing column %q in header %v", want, header)
		}
	}

	var rows []Row
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", line, err)
		}

		qty, err := strconv.Atoi(strings.TrimSpace(rec[idx["quantity"]]))
		if err != nil {
			return nil, fmt.Errorf("row %d: quantity %q: %w", line, rec[idx["quantity"]], err)
		}
		price, err := strconv.ParseFloat(strings.TrimSpace(rec[idx["price"]]), 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: price %q: %w", line, rec[idx["price"]], err)
		}

		rows = append(rows, Row{
			Date:     strings.TrimSpace(rec[idx["date"]]),
			Category: strings.TrimSpace(rec[idx["category"]]),
			Product:  strings.TrimSpace(rec[idx["product"]]),
			Quantity: qty,
			Price:    price,
		})
	}
	return rows, nil
}

// Aggregate computes the three groupings and the batch summary. An empty
// input yields empty (non-nil) groupings and a zero summary.
func Aggregate(rows []Row) Result {
	dailySum := map[string]float64{}
	categorySum := map[string]float64{}
	productSum := map[string]float64{}
	productQty := map[string]int{}

	for _, r := range rows {
		lineTotal := float64(r.Quantity) * r.Price
		dailySum[r.Date] += lineTotal
		categorySum[r.Category] += lineTotal
		productSum[r.Product] += lineTotal
		productQty[r.Product] += r.Quantity
	}

	daily := make([]DailySales, 0, len(dailySum))
	for date, sum := range dailySum {
		daily = append(daily, DailySales{Date: date, Sales: records.Number(records.Round2(sum))})
	}
	sort.Slice(daily, func(i, j int) bool { return daily[i].Date < daily[j].Date })

	categories := make([]CategorySales, 0, len(categorySum))
	for cat := range categorySum {
		categories = append(categories, CategorySales{Category: cat})
	}
	sort.Slice(categories, func(i, j int) bool {
		a, b := categorySum[categories[i].Category], categorySum[categories[j].Category]
		if a != b {
			return a > b
		}
		return categories[i].Category < categories[j].Category
	})
	for i := range categories {
		categories[i].Sales = records.Number(records.Round2(categorySum[categories[i].Category]))
	}

	products := make([]TopProduct, 0, len(productSum))
	for name := range productSum {
		products = append(products, TopProduct{Product: name, Quantity: productQty[name]})
	}
	sort.Slice(products, func(i, j int) bool {
		a, b := productSum[products[i].Product], productSum[products[j].Product]
		if a != b {
			return a > b
		}
		return products[i].Product < products[j].Product
	})
	if len(products) > topProductCount {
		products = products[:topProductCount]
	}
	for i := range products {
		products[i].Sales = records.Number(records.Round2(productSum[products[i].Product]))
	}

	return Result{
		Summary:       buildSummary(len(rows), daily),
		DailySales:    daily,
		CategorySales: categories,
		TopProducts:   products,
	}
}

// buildSummary derives the whole-batch figures from the rounded daily view.
// Revenue sums the rounded per-day values and the best day is the first
// strict maximum in date order, matching the rendered numbers a reader
// compares against.
func buildSummary(orders int, daily []DailySales) Summary {
	if orders == 0 || len(daily) == 0 {
		return Summary{}
	}

	var total float64
	best := daily[0]
	for _, d := range daily {
		total += float64(d.Sales)
		if float64(d.Sales) > float64(best.Sales) {
			best = d
		}
	}

	return Summary{
		TotalOrders:       orders,
		TotalRevenue:      records.Number(records.Round2(total)),
		AverageOrderValue: records.Number(records.Round2(total / float64(orders))),
		BestSalesDay:      best.Date,
		BestSalesAmount:   best.Sales,
	}
}
