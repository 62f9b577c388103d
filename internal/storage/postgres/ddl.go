package postgres

import "fmt"

// CreateTableSQL returns the CREATE TABLE statement for the cleaned orders
// table in Postgres dialect. The schema is fixed and mirrors the cleaned
// record columns; nothing is inferred from data. Dates are stored as ISO-8601
// text (YYYY-MM-DD), exactly as the transformer emits them, so every sink
// carries identical values.
func CreateTableSQL(table string) string {
	return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
  "order_id" text NOT NULL,
  "order_date" text NOT NULL,
  "customer_id" text NOT NULL,
  "product" text,
  "quantity" integer NOT NULL,
  "unit_price" double precision NOT NULL,
  "order_month" text NOT NULL,
  "line_total" double precision NOT NULL
);`, pgFQN(table))
}
