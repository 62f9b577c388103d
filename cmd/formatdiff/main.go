package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"orderetl/internal/report/formatcompare"
)

// main is the entrypoint for the format comparison CLI. It reads the same
// cleaned orders dataset from a JSON file and a Parquet file, aggregates both
// sides identically, and prints the per-axis differences plus an equivalence
// verdict as JSON.
//
// The exit code reflects the verdict: 0 when the two serializations are
// equivalent, 1 when they disagree.
func main() {
	var (
		jsonPath    string
		parquetPath string
		pretty      bool
	)

	flag.StringVar(&jsonPath, "json", "", "cleaned orders JSON file path")
	flag.StringVar(&parquetPath, "parquet", "", "cleaned orders Parquet file path")
	flag.BoolVar(&pretty, "pretty", true, "pretty-print JSON output")
	verbose := flag.Bool("v", false, "enable verbose logs")

	flag.Parse()

	// stdout carries only the comparison JSON; all logging goes to stderr.
	log.SetOutput(os.Stderr)

	if jsonPath == "" || parquetPath == "" {
		fmt.Fprintln(os.Stderr, "missing -json or -parquet")
		flag.Usage()
		os.Exit(2)
	}

	start := time.Now()
	res, err := formatcompare.CompareFiles(jsonPath, parquetPath)
	if err != nil {
		fatalf("compare: %v", err)
	}

	log.Printf("formatdiff: json=%s parquet=%s json_records=%d parquet_records=%d equivalent=%v",
		jsonPath, parquetPath,
		res.Summary.JSONRecordCount, res.Summary.ParquetRecordCount, res.Summary.IsEquivalent)

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

	if !res.Summary.IsEquivalent {
		os.Exit(1)
	}
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}
