package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"orderetl/internal/logclean"
)

// main is the entrypoint for the access-log preprocessing CLI. It reads a
// JSON Lines log file, repairs and flags the entries, and prints the cleaned
// document (summary, outlier bounds, sorted entries) as JSON.
func main() {
	var (
		inputFlg  string
		outputFlg string
		pretty    bool
	)

	flag.StringVar(&inputFlg, "input", "", "JSONL access log path")
	flag.StringVar(&outputFlg, "output", "", "write the cleaned document here instead of stdout")
	flag.BoolVar(&pretty, "pretty", true, "pretty-print JSON output")
	verbose := flag.Bool("v", false, "enable verbose logs")

	flag.Parse()

	// stdout carries only the cleaned document; all logging goes to stderr.
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
	res, err := logclean.Process(f)
	f.Close()
	if err != nil {
		fatalf("logclean: %s: %v", inputFlg, err)
	}

	s := res.Summary
	log.Printf("logclean: input=%s total=%d dropped_invalid_timestamp=%d filled_response_time=%d filled_status=%d filled_endpoint=%d filled_method=%d anomalies=%d outliers=%d",
		inputFlg,
		s.TotalRecords,
		s.DroppedInvalidTimestampCount,
		s.FilledResponseTimeCount,
		s.FilledStatusCount,
		s.FilledEndpointCount,
		s.FilledMethodCount,
		s.AnomalyCount,
		s.OutlierCount,
	)

	out := os.Stdout
	if outputFlg != "" {
		of, err := os.Create(outputFlg)
		if err != nil {
			fatalf("create output: %v", err)
		}
		defer of.Close()
		out = of
	}

	enc := json.NewEncoder(out)
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
