// Package schema declares the fixed input contract of the orders pipeline.
// There is deliberately no inference here: the pipeline accepts exactly one
// shape of input, and tools like the source probe validate candidates against
// this contract instead of guessing a schema.
package schema

import "orderetl/pkg/records"

// Field describes one column of a tabular contract.
type Field struct {
	Name     string `json:"name"`
	Type     string `json:"type"` // "text" | "date" | "number"
	Required bool   `json:"required,omitempty"`
}

// Contract is a named set of expected columns.
type Contract struct {
	Name   string  `json:"name"`
	Fields []Field `json:"fields"`
}

// Orders returns the input contract of the ETL pipeline: the six raw order
// columns, all required, with the loose types the transformer starts from.
// Dates and numbers arrive as text; their validity is the transformer's
// business, so the contract only pins names and presence.
func Orders() Contract {
	return Contract{
		Name: "orders",
		Fields: []Field{
			{Name: records.ColOrderID, Type: "text", Required: true},
			{Name: records.ColOrderDate, Type: "date", Required: true},
			{Name: records.ColCustomerID, Type: "text", Required: true},
			{Name: records.ColProduct, Type: "text", Required: true},
			{Name: records.ColQuantity, Type: "number", Required: true},
			{Name: records.ColUnitPrice, Type: "number", Required: true},
		},
	}
}

// RequiredNames returns the names of all required fields in declared order.
func (c Contract) RequiredNames() []string {
	var out []string
	for _, f := range c.Fields {
		if f.Required {
			out = append(out, f.Name)
		}
	}
	return out
}

// Missing reports which required fields are absent from the given header
// names. Comparison is exact: header names are fixed and case-sensitive.
func (c Contract) Missing(headers []string) []string {
	present := make(map[string]struct{}, len(headers))
	for _, h := range headers {
		present[h] = struct{}{}
	}
	var missing []string
	for _, f := range c.Fields {
		if !f.Required {
			continue
		}
		if _, ok := present[f.Name]; !ok {
			missing = append(missing, f.Name)
		}
	}
	return missing
}
