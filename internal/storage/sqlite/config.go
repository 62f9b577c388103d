// Package sqlite implements a SQLite-backed storage.Repository.
package sqlite

// Config holds SQLite repository configuration derived from storage.Config.
type Config struct {
	// DSN is a SQLite connection string or file path, e.g.:
	//   "file:orders.db?cache=shared"
	//   "orders.db" (interpreted by the driver)
	DSN string

	// Table is the target table name for inserts, e.g. "orders_clean".
	// SQLite does not use schemas in the same way as Postgres; FQN values
	// such as "main.orders_clean" are still accepted and passed through.
	Table string

	// Columns is the ordered list of destination columns.
	Columns []string
}
