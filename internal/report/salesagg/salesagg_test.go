package salesagg_test

import (
	"encoding/json"
	"strings"
	"testing"

	"orderetl/internal/report/salesagg"
)

func sampleRows() []salesagg.Row {
	return []salesagg.Row{
		{Date: "2024-01-01", Category: "Food", Product: "Apple", Quantity: 10, Price: 1.2},
		{Date: "2024-01-01", Category: "Food", Product: "Banana", Quantity: 5, Price: 0.8},
		{Date: "2024-01-01", Category: "Stationery", Product: "Pen", Quantity: 3, Price: 1.5},
		{Date: "2024-01-02", Category: "Food", Product: "Apple", Quantity: 4, Price: 1.2},
		{Date: "2024-01-02", Category: "Gadgets", Product: "Cable", Quantity: 2, Price: 12.5},
		{Date: "2024-01-03", Category: "Stationery", Product: "Pen", Quantity: 10, Price: 1.5},
		{Date: "2024-01-03", Category: "Stationery", Product: "Notebook", Quantity: 2, Price: 3.25},
	}
}

func TestAggregate_Groupings(t *testing.T) {
	t.Parallel()

	res := salesagg.Aggregate(sampleRows())

	wantDaily := []salesagg.DailySales{
		{Date: "2024-01-01", Sales: 20.5},
		{Date: "2024-01-02", Sales: 29.8},
		{Date: "2024-01-03", Sales: 21.5},
	}
	if len(res.DailySales) != len(wantDaily) {
		t.Fatalf("daily = %v, want %v", res.DailySales, wantDaily)
	}
	for i, want := range wantDaily {
		if res.DailySales[i] != want {
			t.Fatalf("daily[%d] = %v, want %v", i, res.DailySales[i], want)
		}
	}

	wantCats := []salesagg.CategorySales{
		{Category: "Stationery", Sales: 26},
		{Category: "Gadgets", Sales: 25},
		{Category: "Food", Sales: 20.8},
	}
	for i, want := range wantCats {
		if res.CategorySales[i] != want {
			t.Fatalf("category[%d] = %v, want %v", i, res.CategorySales[i], want)
		}
	}

	wantTop := []salesagg.TopProduct{
		{Product: "Cable", Sales: 25, Quantity: 2},
		{Product: "Pen", Sales: 19.5, Quantity: 13},
		{Product: "Apple", Sales: 16.8, Quantity: 14},
	}
	if len(res.TopProducts) != len(wantTop) {
		t.Fatalf("top products = %v, want %v", res.TopProducts, wantTop)
	}
	for i, want := range wantTop {
		if res.TopProducts[i] != want {
			t.Fatalf("top[%d] = %v, want %v", i, res.TopProducts[i], want)
		}
	}
}

func TestAggregate_Summary(t *testing.T) {
	t.Parallel()

	res := salesagg.Aggregate(sampleRows())

	want := salesagg.Summary{
		TotalOrders:       7,
		TotalRevenue:      71.8,
		AverageOrderValue: 10.26,
		BestSalesDay:      "2024-01-02",
		BestSalesAmount:   29.8,
	}
	if res.Summary != want {
		t.Fatalf("summary = %+v, want %+v", res.Summary, want)
	}
}

// Equal sales resolve alphabetically, and the best day keeps the earliest
// date on a revenue tie.
func TestAggregate_TieBreaks(t *testing.T) {
	t.Parallel()

	rows := []salesagg.Row{
		{Date: "2024-02-02", Category: "Food", Product: "B", Quantity: 2, Price: 5},
		{Date: "2024-02-01", Category: "Drinks", Product: "A", Quantity: 1, Price: 10},
	}
	res := salesagg.Aggregate(rows)

	if res.CategorySales[0].Category != "Drinks" || res.CategorySales[1].Category != "Food" {
		t.Fatalf("categories = %v, want Drinks then Food", res.CategorySales)
	}
	if res.TopProducts[0].Product != "A" || res.TopProducts[1].Product != "B" {
		t.Fatalf("top products = %v, want A then B", res.TopProducts)
	}
	if res.Summary.BestSalesDay != "2024-02-01" {
		t.Fatalf("best day = %q, want 2024-02-01", res.Summary.BestSalesDay)
	}
}

func TestAggregate_Empty(t *testing.T) {
	t.Parallel()

	res := salesagg.Aggregate(nil)

	if res.Summary != (salesagg.Summary{}) {
		t.Fatalf("summary = %+v, want zero", res.Summary)
	}
	if res.DailySales == nil || res.CategorySales == nil || res.TopProducts == nil {
		t.Fatalf("groupings must be empty, not nil: %+v", res)
	}
	if len(res.DailySales)+len(res.CategorySales)+len(res.TopProducts) != 0 {
		t.Fatalf("groupings not empty: %+v", res)
	}
}

// TestResult_JSONShape pins key order and the money rendering (two decimals
// max, integral values as plain integers).
func TestResult_JSONShape(t *testing.T) {
	t.Parallel()

	res := salesagg.Result{
		Summary: salesagg.Summary{
			TotalOrders:       2,
			TotalRevenue:      30,
			AverageOrderValue: 15,
			BestSalesDay:      "2024-01-01",
			BestSalesAmount:   20.5,
		},
		DailySales:    []salesagg.DailySales{{Date: "2024-01-01", Sales: 20.5}},
		CategorySales: []salesagg.CategorySales{{Category: "Food", Sales: 30}},
		TopProducts:   []salesagg.TopProduct{{Product: "Apple", Sales: 30, Quantity: 12}},
	}

	got, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	want := `{
  "summary": {
    "total_orders": 2,
    "total_revenue": 30,
    "average_order_value": 15,
    "best_sales_day": "2024-01-01",
    "best_sales_amount": 20.5
  },
  "daily_sales": [
    {
      "date": "2024-01-01",
      "sales": 20.5
    }
  ],
  "category_sales": [
    {
      "category": "Food",
      "sales": 30
    }
  ],
  "top_products": [
    {
      "product": "Apple",
      "sales": 30,
      "quantity": 12
    }
  ]
}`
	if string(got) != want {
		t.Fatalf("JSON mismatch:\ngot:\n%s\nwant:\n%s", got, want)
	}
}

func TestReadCSV(t *testing.T) {
	t.Parallel()

	// Columns deliberately out of canonical order, with a BOM.
	in := "\ufeffproduct,price,quantity,date,category\n" +
		"Apple,1.2,10,2024-01-01,Food\n" +
		"Pen, 1.5 ,3,2024-01-01,Stationery\n"

	rows, err := salesagg.ReadCSV(strings.NewReader(in))
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	want := salesagg.Row{Date: "2024-01-01", Category: "Food", Product: "Apple", Quantity: 10, Price: 1.2}
	if rows[0] != want {
		t.Fatalf("rows[0] = %+v, want %+v", rows[0], want)
	}
	if rows[1].Price != 1.5 {
		t.Fatalf("rows[1].Price = %v, want 1.5 (whitespace trimmed)", rows[1].Price)
	}
}

func TestReadCSV_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		in      string
		wantSub string
	}{
		{
			name:    "missing column",
			in:      "date,category,product,quantity\n2024-01-01,Food,Apple,1\n",
			wantSub: `missing column "price"`,
		},
		{
			name:    "bad quantity",
			in:      "date,category,product,quantity,price\n2024-01-01,Food,Apple,many,1.2\n",
			wantSub: "row 2: quantity",
		},
		{
			name:    "bad price",
			in:      "date,category,product,quantity,price\n2024-01-01,Food,Apple,1,free\n",
			wantSub: "row 2: price",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := salesagg.ReadCSV(strings.NewReader(tt.in))
			if err == nil {
				t.Fatalf("ReadCSV(%q): error = nil, want non-nil", tt.in)
			}
			if !strings.Contains(err.Error(), tt.wantSub) {
				t.Fatalf("error %q does not contain %q", err, tt.wantSub)
			}
		})
	}
}

func BenchmarkAggregate(b *testing.B) {
	rows := make([]salesagg.Row, 0, 5000)
	for i := 0; i < 5000; i++ {
		rows = append(rows, salesagg.Row{
			Date:     "2024-01-0" + string(rune('1'+i%9)),
			Category: []string{"Food", "Stationery", "Gadgets"}[i%3],
			Product:  []string{"Apple", "Pen", "Cable", "Notebook"}[i%4],
			Quantity: 1 + i%7,
			Price:    9.99,
		})
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		res := salesagg.Aggregate(rows)
		if res.Summary.TotalOrders != len(rows) {
			b.Fatalf("total orders = %d", res.Summary.TotalOrders)
		}
	}
}
