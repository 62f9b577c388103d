package sqlite

import (
	"fmt"
	"strings"
)

// CreateTableSQL returns the CREATE TABLE statement for the cleaned orders
// table in SQLite dialect. The schema is fixed and mirrors the cleaned record
// columns; nothing is inferred from data. Dates are stored as ISO-8601 text
// (YYYY-MM-DD), exactly as the transformer emits them.
func CreateTableSQL(table string) string {
	return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
  "order_id" TEXT NOT NULL,
  "order_date" TEXT NOT NULL,
  "customer_id" TEXT NOT NULL,
  "product" TEXT,
  "quantity" INTEGER NOT NULL,
  "unit_price" REAL NOT NULL,
  "order_month" TEXT NOT NULL,
  "line_total" REAL NOT NULL
);`, sqlFQN(table))
}

// sqlIdent quotes a single identifier segment: "col", with embedded double
// quotes doubled.
func sqlIdent(id string) string {
	return `"` + strings.ReplaceAll(id, `"`, `""`) + `"`
}

// sqlFQN quotes a possibly dotted name like "main.orders_clean" segment by
// segment. Empty segments are ignored.
func sqlFQN(name string) string {
	parts := strings.Split(name, ".")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p == "" {
			continue
		}
		out = append(out, sqlIdent(p))
	}
	return strings.Join(out, ".")
}
