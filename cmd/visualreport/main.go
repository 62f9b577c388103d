package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"orderetl/internal/report/salesagg"
	"orderetl/internal/report/visual"
)

// main is the entrypoint for the visual sales report CLI. It aggregates a
// sales CSV, renders the three SVG charts plus the markdown decision report
// into the output directory, and prints the aggregation with insights as
// JSON.
func main() {
	var (
		inputFlg string
		outDir   string
		pretty   bool
	)

	flag.StringVar(&inputFlg, "input", "", "sales CSV path (date, category, product, quantity, price)")
	flag.StringVar(&outDir, "out-dir", "output/visual", "directory for the generated charts and report")
	flag.BoolVar(&pretty, "pretty", true, "pretty-print JSON output")
	verbose := flag.Bool("v", false, "enable verbose logs")

	flag.Parse()

	// stdout carries only the result JSON; all logging goes to stderr.
	log.SetOutput(os.Stderr)

	if inputFlg == "" {
		fmt.Fprintln(os.Stderr, "missing -input")
		flag.Usage()
		os.Exit(2)
	}

	f, err := os.Open(inputFlg)
	if err != nil {
		fatalf("open input: %v", err)
	}

	start := time.Now()
	rows, err := salesagg.ReadCSV(f)
	f.Close()
	if err != nil {
		fatalf("read sales csv: %s: %v", inputFlg, err)
	}

	agg := salesagg.Aggregate(rows)
	res, err := visual.Build(agg, outDir)
	if err != nil {
		fatalf("%v", err)
	}

	log.Printf("visualreport: input=%s rows=%d out_dir=%s artifacts=4",
		inputFlg, len(rows), outDir)

	enc := json.NewEncoder(os.Stdout)
	if pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(res); err != nil {
		fatalf("encode: %v", err)
	}

	if *verbose {
		log.Printf("completed in %s", time.Since(start).Truncate(time.Millisecond))
	}
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}
