package sqlreport

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// salesQuery pulls the report rows in a stable order. The date is cast to
// text server-side so the report never depends on session date formatting.
const salesQuery = `
SELECT
  order_id,
  order_date::text AS order_date,
  customer_segment,
  payment_method,
  order_amount
FROM sales_orders
ORDER BY order_date, order_id
`

// Fetch reads the report rows from a PostgreSQL database.
func Fetch(ctx context.Context, dbURL string) ([]Row, error) {
	conn, err := pgx.Connect(ctx, dbURL)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	defer conn.Close(ctx)

	rows, err := conn.Query(ctx, salesQuery)
	if err != nil {
		return nil, fmt.Errorf("query sales_orders: %w", err)
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		var r Row
		if err := rows.Scan(&r.OrderID, &r.OrderDate, &r.Segment, &r.PaymentMethod, &r.Amount); err != nil {
			return nil, fmt.Errorf("scan sales_orders row: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sales_orders: %w", err)
	}
	return out, nil
}
