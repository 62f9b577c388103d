// Package custjoin joins a customer master against order lines and reports
// purchasing behavior per customer segment. The join is a hash lookup on
// customer_id with two variants: inner keeps only orders whose customer is
// in the master, left keeps every order and files unmatched ones under the
// Unknown segment. Rankings are decided on exact sums; amounts are rounded
// to the 2-decimal rendering contract only after ordering.
package custjoin

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"orderetl/pkg/records"
)

// UnknownSegment labels orders whose customer_id is not in the master.
const UnknownSegment = "Unknown"

// Customer is one master row.
type Customer struct {
	ID      string `json:"customer_id"`
	Name    string `json:"customer_name"`
	Segment string `json:"segment"`
}

// Order is one order line. LineTotal is derived, not read.
type Order struct {
	OrderID    string
	OrderDate  string
	CustomerID string
	Product    string
	Quantity   int
	UnitPrice  float64
}

// SegmentSales is the revenue rollup for one segment.
type SegmentSales struct {
	Segment         string         `json:"segment"`
	TotalSales      records.Number `json:"total_sales"`
	OrderCount      int            `json:"order_count"`
	AvgOrderAmount  records.Number `json:"avg_order_amount"`
	UniqueCustomers int            `json:"unique_customers"`
}

// SegmentTopProduct is the best selling product within one segment.
type SegmentTopProduct struct {
	Segment       string         `json:"segment"`
	Product       string         `json:"product"`
	TotalSales    records.Number `json:"total_sales"`
	TotalQuantity int            `json:"total_quantity"`
}

// OrphanOrder is an order line with no master customer, kept for audit.
type OrphanOrder struct {
	OrderID    string         `json:"order_id"`
	OrderDate  string         `json:"order_date"`
	CustomerID string         `json:"customer_id"`
	Product    string         `json:"product"`
	LineTotal  records.Number `json:"line_total"`
}

// Summary carries the row counts of both join variants.
type Summary struct {
	CustomersCount   int `json:"customers_count"`
	OrdersCount      int `json:"orders_count"`
	InnerJoinRows    int `json:"inner_join_rows"`
	LeftJoinRows     int `json:"left_join_rows"`
	OrphanOrderCount int `json:"orphan_order_count"`
}

// Result is the full join analysis document.
type Result struct {
	Summary              Summary             `json:"summary"`
	SegmentSalesInner    []SegmentSales      `json:"segment_sales_inner"`
	SegmentSalesLeft     []SegmentSales      `json:"segment_sales_left"`
	TopProductsBySegment []SegmentTopProduct `json:"top_products_by_segment_inner"`
	OrphanOrders         []OrphanOrder       `json:"orphan_orders"`
}

// joined is an order annotated with its resolved segment and line total.
type joined struct {
	Order
	segment   string
	lineTotal float64
}

// Join matches orders against the customer master and aggregates both join
// variants. Duplicate customer ids in the master keep the first row; rows
// with an empty id cannot match anything. Empty inputs yield empty (non-nil)
// slices and a zero summary.
func Join(customers []Customer, orders []Order) Result {
	byID := make(map[string]Customer, len(customers))
	for _, c := range customers {
		if c.ID == "" {
			continue
		}
		if _, ok := byID[c.ID]; !ok {
			byID[c.ID] = c
		}
	}

	inner := make([]joined, 0, len(orders))
	left := make([]joined, 0, len(orders))
	var orphans []joined
	for _, o := range orders {
		j := joined{Order: o, lineTotal: float64(o.Quantity) * o.UnitPrice}
		if c, ok := byID[o.CustomerID]; ok {
			j.segment = c.Segment
			inner = append(inner, j)
			left = append(left, j)
			continue
		}
		j.segment = UnknownSegment
		left = append(left, j)
		orphans = append(orphans, j)
	}

	sort.Slice(orphans, func(i, j int) bool {
		if orphans[i].OrderDate != orphans[j].OrderDate {
			return orphans[i].OrderDate < orphans[j].OrderDate
		}
		return orphans[i].OrderID < orphans[j].OrderID
	})
	orphanOut := make([]OrphanOrder, 0, len(orphans))
	for _, o := range orphans {
		orphanOut = append(orphanOut, OrphanOrder{
			OrderID:    o.OrderID,
			OrderDate:  o.OrderDate,
			CustomerID: o.CustomerID,
			Product:    o.Product,
			LineTotal:  records.Number(records.Round2(o.lineTotal)),
		})
	}

	return Result{
		Summary: Summary{
			CustomersCount:   len(customers),
			OrdersCount:      len(orders),
			InnerJoinRows:    len(inner),
			LeftJoinRows:     len(left),
			OrphanOrderCount: len(orphans),
		},
		SegmentSalesInner:    segmentSales(inner),
		SegmentSalesLeft:     segmentSales(left),
		TopProductsBySegment: topProductsBySegment(inner),
		OrphanOrders:         orphanOut,
	}
}

// segmentSales rolls revenue up per segment, ordered by total sales desc
// with segment name breaking ties. Orders with an empty customer_id stay
// out of the distinct buyer count.
func segmentSales(rows []joined) []SegmentSales {
	sums := make(map[string]float64, 8)
	counts := make(map[string]int, 8)
	buyers := make(map[string]map[string]struct{}, 8)
	for _, r := range rows {
		sums[r.segment] += r.lineTotal
		counts[r.segment]++
		if r.CustomerID != "" {
			set := buyers[r.segment]
			if set == nil {
				set = make(map[string]struct{})
				buyers[r.segment] = set
			}
			set[r.CustomerID] = struct{}{}
		}
	}

	segments := make([]string, 0, len(sums))
	for seg := range sums {
		segments = append(segments, seg)
	}
	sort.Slice(segments, func(i, j int) bool {
		a, b := segments[i], segments[j]
		if sums[a] != sums[b] {
			return sums[a] > sums[b]
		}
		return a < b
	})

	out := make([]SegmentSales, 0, len(segments))
	for _, seg := range segments {
		n := counts[seg]
		out = append(out, SegmentSales{
			Segment:         seg,
			TotalSales:      records.Number(records.Round2(sums[seg])),
			OrderCount:      n,
			AvgOrderAmount:  records.Number(records.Round2(sums[seg] / float64(n))),
			UniqueCustomers: len(buyers[seg]),
		})
	}
	return out
}

type segProductKey struct {
	segment string
	product string
}

// topProductsBySegment picks each segment's best selling product from the
// inner join: within a segment higher sales win and the product name breaks
// ties; the winners are then ordered by sales desc, segment asc.
func topProductsBySegment(rows []joined) []SegmentTopProduct {
	sums := make(map[segProductKey]float64, 16)
	qtys := make(map[segProductKey]int, 16)
	for _, r := range rows {
		k := segProductKey{segment: r.segment, product: r.Product}
		sums[k] += r.lineTotal
		qtys[k] += r.Quantity
	}

	keys := make([]segProductKey, 0, len(sums))
	for k := range sums {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, b := keys[i], keys[j]
		if a.segment != b.segment {
			return a.segment < b.segment
		}
		if sums[a] != sums[b] {
			return sums[a] > sums[b]
		}
		return a.product < b.product
	})

	var winners []segProductKey
	seen := make(map[string]bool, len(keys))
	for _, k := range keys {
		if seen[k.segment] {
			continue
		}
		seen[k.segment] = true
		winners = append(winners, k)
	}
	sort.Slice(winners, func(i, j int) bool {
		a, b := winners[i], winners[j]
		if sums[a] != sums[b] {
			return sums[a] > sums[b]
		}
		return a.segment < b.segment
	})

	out := make([]SegmentTopProduct, 0, len(winners))
	for _, k := range winners {
		out = append(out, SegmentTopProduct{
			Segment:       k.segment,
			Product:       k.product,
			TotalSales:    records.Number(records.Round2(sums[k])),
			TotalQuantity: qtys[k],
		})
	}
	return out
}

// customerColumns is the required customer master CSV header.
var customerColumns = []string{"customer_id", "customer_name", "segment"}

// headerIndex reads the header row and locates every required column by
// name, so column order in the file does not matter.
func headerIndex(cr *csv.Reader, required []string) (map[string]int, error) {
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
	for _, want := range required {
		if _, ok := idx[want]; !ok {
			return nil, fmt.Errorf("missing column %q in header %v", want, header)
		}
	}
	return idx, nil
}

// ReadCustomersCSV decodes the customer master from r.
func ReadCustomersCSV(r io.Reader) ([]Customer, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	idx, err := headerIndex(cr, customerColumns)
	if err != nil {
		return nil, err
	}

	var out []Customer
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", line, err)
		}
		out = append(out, Customer{
			ID:      strings.TrimSpace(rec[idx["customer_id"]]),
			Name:    strings.TrimSpace(rec[idx["customer_name"]]),
			Segment: strings.TrimSpace(rec[idx["segment"]]),
		})
	}
	return out, nil
}

// ReadOrdersCSV decodes order lines from r. The header must carry the six
// order input columns; quantity and unit_price must parse.
func ReadOrdersCSV(r io.Reader) ([]Order, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	idx, err := headerIndex(cr, records.InputColumns())
	if err != nil {
		return nil, err
	}

	var out []Order
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", line, err)
		}

		qty, err := strconv.Atoi(strings.TrimSpace(rec[idx[records.ColQuantity]]))
		if err != nil {
			return nil, fmt.Errorf("row %d: quantity %q: %w", line, rec[idx[records.ColQuantity]], err)
		}
		price, err := strconv.ParseFloat(strings.TrimSpace(rec[idx[records.ColUnitPrice]]), 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: unit_price %q: %w", line, rec[idx[records.ColUnitPrice]], err)
		}

		out = append(out, Order{
			OrderID:    strings.TrimSpace(rec[idx[records.ColOrderID]]),
			OrderDate:  strings.TrimSpace(rec[idx[records.ColOrderDate]]),
			CustomerID: strings.TrimSpace(rec[idx[records.ColCustomerID]]),
			Product:    strings.TrimSpace(rec[idx[records.ColProduct]]),
			Quantity:   qty,
			UnitPrice:  price,
		})
	}
	return out, nil
}
