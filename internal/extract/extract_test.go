package extract_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"orderetl/internal/config"
	"orderetl/internal/datasource/file"
	"orderetl/internal/extract"
	"orderetl/pkg/records"
)

// writeSource drops contents into a fresh temp file and returns a local
// source bound to it.
func writeSource(t *testing.T, name, contents string) *file.Local {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, []byte(contents), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return file.NewLocal(p)
}

/*
TestExtractCSV_Happy verifies the common path: a well-formed CSV with the six
required columns yields one Raw per body row, field values untouched
(whitespace and all), and Stats counting every row.
*/
func TestExtractCSV_Happy(t *testing.T) {
	t.Parallel()

	src := writeSource(t, "orders.csv",
		"order_id,order_date,customer_id,product,quantity,unit_price\n"+
			"SO-1001,2024-01-15,CUST-7,Widget,2,19.99\n"+
			"SO-1002,2024-01-16,  CUST-8  ,Gadget,,5\n")

	rows, stats, err := extract.New("", nil).Extract(context.Background(), src)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if stats.InputRecords != 2 {
		t.Fatalf("InputRecords = %d, want 2", stats.InputRecords)
	}

	want := records.Raw{
		OrderID:    "SO-1001",
		OrderDate:  "2024-01-15",
		CustomerID: "CUST-7",
		Product:    "Widget",
		Quantity:   "2",
		UnitPrice:  "19.99",
	}
	if rows[0] != want {
		t.Fatalf("rows[0] = %+v, want %+v", rows[0], want)
	}

	// Values come through raw: nothing trims them here.
	if rows[1].CustomerID != "  CUST-8  " {
		t.Fatalf("rows[1].CustomerID = %q, want untrimmed value", rows[1].CustomerID)
	}
	if rows[1].Quantity != "" {
		t.Fatalf("rows[1].Quantity = %q, want empty", rows[1].Quantity)
	}
}

/*
TestExtractCSV_HeaderContract covers the malformed-header cases: a required
column absent and a required column present only with the wrong case. Both
must fail with ErrMalformedSource before any rows are produced.
*/
func TestExtractCSV_HeaderContract(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		header string
	}{
		{"missing_column", "order_id,order_date,customer_id,product,quantity"},
		{"wrong_case", "Order_ID,order_date,customer_id,product,quantity,unit_price"},
	}

	for _, c := range cases {
		c := c
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()

			src := writeSource(t, "orders.csv", c.header+"\nx,2024-01-01,y,z,1,2\n")
			_, _, err := extract.New("csv", nil).Extract(context.Background(), src)
			if !errors.Is(err, extract.ErrMalformedSource) {
				t.Fatalf("err = %v, want ErrMalformedSource", err)
			}
		})
	}
}

/*
TestExtractCSV_RaggedRow verifies that a body row whose width differs from
the header aborts the extraction as malformed rather than being repaired or
skipped.
*/
func TestExtractCSV_RaggedRow(t *testing.T) {
	t.Parallel()

	src := writeSource(t, "orders.csv",
		"order_id,order_date,customer_id,product,quantity,unit_price\n"+
			"SO-1001,2024-01-15,CUST-7,Widget,2\n")

	_, _, err := extract.New("csv", nil).Extract(context.Background(), src)
	if !errors.Is(err, extract.ErrMalformedSource) {
		t.Fatalf("err = %v, want ErrMalformedSource", err)
	}
}

/*
TestExtractCSV_BOMAndExtraColumns checks two permissive behaviors: a UTF-8
BOM on the first header cell is stripped, and columns outside the contract
ride along ignored.
*/
func TestExtractCSV_BOMAndExtraColumns(t *testing.T) {
	t.Parallel()

	src := writeSource(t, "orders.csv",
		"\ufefforder_id,order_date,customer_id,product,quantity,unit_price,warehouse\n"+
			"SO-1001,2024-01-15,CUST-7,Widget,2,19.99,EAST\n")

	rows, _, err := extract.New("csv", nil).Extract(context.Background(), src)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(rows) != 1 || rows[0].OrderID != "SO-1001" {
		t.Fatalf("rows = %+v, want one row with OrderID SO-1001", rows)
	}
}

/*
TestExtractCSV_CustomComma verifies that the "comma" option reaches the CSV
reader.
*/
func TestExtractCSV_CustomComma(t *testing.T) {
	t.Parallel()

	src := writeSource(t, "orders.csv",
		"order_id;order_date;customer_id;product;quantity;unit_price\n"+
			"SO-1001;2024-01-15;CUST-7;Widget;2;19.99\n")

	opts := config.Options{"comma": ";"}
	rows, _, err := extract.New("csv", opts).Extract(context.Background(), src)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(rows) != 1 || rows[0].UnitPrice != "19.99" {
		t.Fatalf("rows = %+v, want one row with UnitPrice 19.99", rows)
	}
}

/*
TestExtract_MissingFile verifies that a nonexistent path surfaces as
ErrSourceUnavailable; the sentinel is the classification contract callers
rely on.
*/
func TestExtract_MissingFile(t *testing.T) {
	t.Parallel()

	src := file.NewLocal(filepath.Join(t.TempDir(), "nope.csv"))
	_, _, err := extract.New("", nil).Extract(context.Background(), src)
	if !errors.Is(err, extract.ErrSourceUnavailable) {
		t.Fatalf("err = %v, want ErrSourceUnavailable", err)
	}
}

/*
TestExtractJSON_ArrayExport verifies JSON array decoding: numbers keep their
literal text, nulls and missing keys become empty strings, and the format is
detected from the .json extension.
*/
func TestExtractJSON_ArrayExport(t *testing.T) {
	t.Parallel()

	src := writeSource(t, "orders.json",
		`[
		  {"order_id":"SO-1","order_date":"2024-02-01","customer_id":"C1","product":"Widget","quantity":2,"unit_price":19.99},
		  {"order_id":"SO-2","order_date":"2024-02-02","customer_id":null,"product":"Gadget","quantity":"3"}
		]`)

	rows, stats, err := extract.New("", nil).Extract(context.Background(), src)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if stats.InputRecords != 2 {
		t.Fatalf("InputRecords = %d, want 2", stats.InputRecords)
	}
	if rows[0].Quantity != "2" || rows[0].UnitPrice != "19.99" {
		t.Fatalf("rows[0] numbers = (%q, %q), want literal text", rows[0].Quantity, rows[0].UnitPrice)
	}
	if rows[1].CustomerID != "" || rows[1].UnitPrice != "" {
		t.Fatalf("rows[1] = %+v, want empty customer_id (null) and unit_price (missing)", rows[1])
	}
}

/*
TestExtractJSON_NDJSON verifies the newline-delimited variant used by some
exporters.
*/
func TestExtractJSON_NDJSON(t *testing.T) {
	t.Parallel()

	src := writeSource(t, "orders.ndjson",
		`{"order_id":"SO-1","order_date":"2024-02-01","customer_id":"C1","product":"W","quantity":1,"unit_price":5}
{"order_id":"SO-2","order_date":"2024-02-02","customer_id":"C2","product":"W","quantity":2,"unit_price":5}
`)

	rows, _, err := extract.New("", nil).Extract(context.Background(), src)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(rows) != 2 || rows[1].OrderID != "SO-2" {
		t.Fatalf("rows = %+v, want 2 rows ending with SO-2", rows)
	}
}

/*
TestExtractJSON_Malformed covers broken payloads: a non-object array element
and cut-off syntax both classify as ErrMalformedSource.
*/
func TestExtractJSON_Malformed(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		payload string
	}{
		{"non_object_element", `[{"order_id":"SO-1"}, 42]`},
		{"truncated", `[{"order_id":"SO-1"`},
		{"primitive_root", `42`},
	}

	for _, c := range cases {
		c := c
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()

			src := writeSource(t, "orders.json", c.payload)
			_, _, err := extract.New("json", nil).Extract(context.Background(), src)
			if !errors.Is(err, extract.ErrMalformedSource) {
				t.Fatalf("err = %v, want ErrMalformedSource", err)
			}
		})
	}
}

/*
TestExtractXLSX_Workbook builds a real workbook and verifies header contract
checking, row padding for trailing empty cells, and empty-row skipping.
*/
func TestExtractXLSX_Workbook(t *testing.T) {
	t.Parallel()

	p := filepath.Join(t.TempDir(), "orders.xlsx")

	f := excelize.NewFile()
	defer f.Close()

	header := []string{"order_id", "order_date", "customer_id", "product", "quantity", "unit_price"}
	for i, h := range header {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue("Sheet1", cell, h); err != nil {
			t.Fatalf("set header cell: %v", err)
		}
	}
	// Row with a trailing empty unit_price (excelize drops trailing blanks).
	body := []any{"SO-1001", "2024-01-15", "CUST-7", "Widget", 2}
	for i, v := range body {
		cell, _ := excelize.CoordinatesToCellName(i+1, 2)
		if err := f.SetCellValue("Sheet1", cell, v); err != nil {
			t.Fatalf("set body cell: %v", err)
		}
	}
	if err := f.SaveAs(p); err != nil {
		t.Fatalf("save workbook: %v", err)
	}

	rows, stats, err := extract.New("", nil).Extract(context.Background(), file.NewLocal(p))
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if stats.InputRecords != 1 {
		t.Fatalf("InputRecords = %d, want 1", stats.InputRecords)
	}
	if rows[0].OrderID != "SO-1001" || rows[0].Quantity != "2" {
		t.Fatalf("rows[0] = %+v", rows[0])
	}
	if rows[0].UnitPrice != "" {
		t.Fatalf("rows[0].UnitPrice = %q, want empty for padded short row", rows[0].UnitPrice)
	}
}

/*
TestExtractXLSX_MissingColumn verifies the workbook header contract.
*/
func TestExtractXLSX_MissingColumn(t *testing.T) {
	t.Parallel()

	p := filepath.Join(t.TempDir(), "orders.xlsx")

	f := excelize.NewFile()
	defer f.Close()
	for i, h := range []string{"order_id", "order_date", "customer_id"} {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue("Sheet1", cell, h); err != nil {
			t.Fatalf("set header cell: %v", err)
		}
	}
	if err := f.SaveAs(p); err != nil {
		t.Fatalf("save workbook: %v", err)
	}

	_, _, err := extract.New("", nil).Extract(context.Background(), file.NewLocal(p))
	if !errors.Is(err, extract.ErrMalformedSource) {
		t.Fatalf("err = %v, want ErrMalformedSource", err)
	}
}

// BenchmarkExtractCSV measures decode throughput on a synthetic batch.
func BenchmarkExtractCSV(b *testing.B) {
	p := filepath.Join(b.TempDir(), "orders.csv")
	var buf []byte
	buf = append(buf, "order_id,order_date,customer_id,product,quantity,unit_price\n"...)
	for i := 0; i < 5000; i++ {
		buf = append(buf, fmt.Sprintf("SO-%d,2024-01-15,CUST-%d,Widget,%d,19.99\n", i, i%100, i%7)...)
	}
	if err := os.WriteFile(p, buf, 0o644); err != nil {
		b.Fatalf("write: %v", err)
	}

	src := file.NewLocal(p)
	ex := extract.New("csv", nil)
	ctx := context.Background()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		rows, _, err := ex.Extract(ctx, src)
		if err != nil {
			b.Fatal(err)
		}
		if len(rows) != 5000 {
			b.Fatalf("rows = %d", len(rows))
		}
	}
}
