// Package records defines the row types that flow through the orders ETL
// pipeline: raw rows as read from a source, cleaned rows as produced by the
// transformer, and the numeric rendering contract shared by every component
// that emits values across the system boundary.
package records

// Input column names. Header names are fixed and case-sensitive; a source
// must expose all six, in any order, and may carry extra columns (ignored).
const (
	ColOrderID    = "order_id"
	ColOrderDate  = "order_date"
	ColCustomerID = "customer_id"
	ColProduct    = "product"
	ColQuantity   = "quantity"
	ColUnitPrice  = "unit_price"
)

// Derived output column names.
const (
	ColOrderMonth = "order_month"
	ColLineTotal  = "line_total"
)

// InputColumns returns the required input column names in declared order.
func InputColumns() []string {
	return []string{ColOrderID, ColOrderDate, ColCustomerID, ColProduct, ColQuantity, ColUnitPrice}
}

// OutputColumns returns the cleaned-table column names in declared order.
// This is the schema of the columnar destination written by the loader.
func OutputColumns() []string {
	return []string{ColOrderID, ColOrderDate, ColCustomerID, ColProduct, ColQuantity, ColUnitPrice, ColOrderMonth, ColLineTotal}
}

// Raw is one input row exactly as present in the source. All fields are
// opaque text; no trimming or type coercion has been applied. Raw values are
// produced by the extractor and consumed only by the transformer.
type Raw struct {
	OrderID    string
	OrderDate  string
	CustomerID string
	Product    string
	Quantity   string
	UnitPrice  string
}

// Cleaned is one validated, repaired output row.
//
// Invariants: OrderDate parses as a calendar date and is formatted
// YYYY-MM-DD; CustomerID is never empty; Quantity > 0; UnitPrice >= 0;
// OrderMonth equals the first 7 characters of OrderDate; LineTotal equals
// Quantity * UnitPrice rounded to 2 decimals.
type Cleaned struct {
	OrderID    string `json:"order_id"`
	OrderDate  string `json:"order_date"`
	CustomerID string `json:"customer_id"`
	Product    string `json:"product"`
	Quantity   int    `json:"quantity"`
	UnitPrice  Number `json:"unit_price"`
	OrderMonth string `json:"order_month"`
	LineTotal  Number `json:"line_total"`
}
