package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"orderetl/internal/report/sqlreport"
)

// main is the entrypoint for the sales report CLI. It queries the
// sales_orders table in PostgreSQL, aggregates revenue by day, segment and
// payment method, lists the high-value orders, and prints the report as JSON.
func main() {
	var (
		dbURLFlg  string
		threshold float64
		debug     bool
		pretty    bool
	)

	flag.StringVar(&dbURLFlg, "db-url", "", "PostgreSQL connection URL (overrides env DATABASE_URL)")
	flag.Float64Var(&threshold, "high-value-threshold", sqlreport.DefaultHighValueThreshold, "order amount from which an order counts as high value")
	flag.BoolVar(&debug, "debug", false, "enable verbose logs")
	flag.BoolVar(&pretty, "pretty", true, "pretty-print JSON output")

	flag.Parse()

	// stdout carries only the report JSON; all logging goes to stderr.
	log.SetOutput(os.Stderr)

	// Decide database URL: flag → env.
	dbURL := dbURLFlg
	if dbURL == "" {
		dbURL = os.Getenv("DATABASE_URL")
	}
	if dbURL == "" {
		fmt.Fprintln(os.Stderr, "missing -db-url (or env DATABASE_URL)")
		flag.Usage()
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	start := time.Now()
	rows, err := sqlreport.Fetch(ctx, dbURL)
	if err != nil {
		fatalf("fetch: %v", err)
	}
	if debug {
		log.Printf("salesreport: rows=%d threshold=%.2f elapsed=%s",
			len(rows), threshold, time.Since(start).Truncate(time.Millisecond))
	}

	res, err := sqlreport.Build(rows, threshold)
	if err != nil {
		fatalf("report: %v", err)
	}

	enc := json.NewEncoder(os.Stdout)
	if pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(res); err != nil {
		fatalf("encode: %v", err)
	}

	if debug {
		log.Printf("salesreport: dates=%d segments=%d payment_methods=%d high_value=%d",
			len(res.DailySales), len(res.SegmentSales), len(res.PaymentMethodSales), len(res.HighValueOrders))
	}
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}
