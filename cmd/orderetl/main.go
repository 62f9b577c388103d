package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"orderetl/internal/config"
	"orderetl/internal/metrics"
	"orderetl/internal/metrics/datadog"
	"orderetl/internal/metrics/prompush"
	"orderetl/internal/pipeline"
	"orderetl/internal/transform"

	// register all database load backends with the storage factory.
	// config selects which to use but the binary supports all of them.
	_ "orderetl/internal/storage/all"
)

// main is the entry point for the orders pipeline binary. It assembles the
// pipeline config from a JSON file plus flag overrides, optionally initializes
// a metrics backend, executes one extract-transform-load pass, and prints the
// run report as indented JSON on stdout.
func main() {
	var (
		cfgPath           string
		inputFlg          string
		outputFlg         string
		metricsBackendFlg string
		pushGatewayURLFlg string
		datadogAddrFlg    string
		validate          bool
		debug             bool
	)

	flag.StringVar(&cfgPath, "config", "configs/pipelines/sample.json", "pipeline config JSON path")
	flag.StringVar(&inputFlg, "input", "", "input file path or http(s) URL; overrides the config source")
	flag.StringVar(&outputFlg, "output", "", "output file path; overrides the config destination")
	flag.StringVar(&metricsBackendFlg, "metrics-backend", "pushgateway", "metrics backend to use (pushgateway, datadog, none)")
	flag.StringVar(&pushGatewayURLFlg, "pushgateway-url", "http://localhost:9091", "Pushgateway base URL (overrides env PUSHGATEWAY_URL)")
	flag.StringVar(&datadogAddrFlg, "datadog-addr", "127.0.0.1:8125", "DogStatsD address (overrides env DOGSTATSD_ADDR)")
	flag.BoolVar(&validate, "validate", false, "validate the configuration and exit")
	flag.BoolVar(&debug, "debug", false, "log the record count after every transformer stage")
	verbose := flag.Bool("v", false, "enable verbose logs")

	flag.Parse()

	// stdout carries only the report JSON; all logging goes to stderr.
	log.SetOutput(os.Stderr)

	p, err := loadPipeline(cfgPath, inputFlg, outputFlg, *verbose)
	if err != nil {
		fatalf("%v", err)
	}

	// Validate pipeline config.
	issues := config.ValidatePipeline(p)
	hasError := false
	for _, iss := range issues {
		fmt.Fprintf(os.Stderr, "%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
		if iss.Severity == config.SeverityError {
			hasError = true
		}
	}
	if hasError {
		log.Printf("Configuration is invalid: %v", cfgPath)
		os.Exit(1)
	}

	// If validate flag is set, only validate the configuration and exit.
	if validate {
		log.Printf("Configuration is valid: %v", cfgPath)
		os.Exit(0)
	}

	// Decide metrics backend: flag → env → default.
	backendName := metricsBackendFlg
	if backendName == "" {
		backendName = os.Getenv("METRICS_BACKEND")
	}
	switch backendName {
	case "pushgateway":
		// Decide Pushgateway URL: flag → env → default.
		gwURL := pushGatewayURLFlg
		if gwURL == "" {
			gwURL = os.Getenv("PUSHGATEWAY_URL")
		}
		if gwURL == "" {
			gwURL = "http://localhost:9091"
		}

		b, err := prompush.NewBackend(jobName(p), gwURL)
		if err != nil {
			log.Printf("metrics: failed to init prom push backend: %v; using nop", err)
		} else {
			log.Printf("metrics: backend=%v url=%v job=%v", backendName, gwURL, jobName(p))
			metrics.SetBackend(b)
			defer func() {
				if err := metrics.Flush(); err != nil {
					log.Printf("metrics: flush error: %v", err)
				}
			}()
		}

	case "datadog":
		addr := datadogAddrFlg
		if addr == "" {
			addr = os.Getenv("DOGSTATSD_ADDR")
		}
		if addr == "" {
			addr = "127.0.0.1:8125"
		}

		b, err := datadog.NewBackend(datadog.Config{Addr: addr})
		if err != nil {
			log.Printf("metrics: failed to init datadog backend: %v; using nop", err)
		} else {
			log.Printf("metrics: backend=%v addr=%v job=%v", backendName, addr, jobName(p))
			metrics.SetBackend(b)
			defer func() {
				if err := metrics.Flush(); err != nil {
					log.Printf("metrics: flush error: %v", err)
				}
			}()
		}

	case "none":
		// metrics disabled; nop backend remains
		if *verbose {
			log.Printf("metrics: disabled (backend=%q)", backendName)
		}

	default:
		log.Printf("metrics: unknown backend %q; metrics disabled", backendName)
	}

	ctx := context.Background()
	start := time.Now()

	if *verbose {
		log.Printf("pipeline: job=%s source.kind=%s load.kind=%s",
			p.Job, p.Source.Kind, p.Load.Kind)
	}

	var obs transform.Observer
	if debug {
		obs = pipeline.StageLogger{}
	}

	rep, err := pipeline.RunWithObserver(ctx, p, obs)
	if err != nil {
		log.Fatalf("%v", err)
	}

	out, err := rep.Render()
	if err != nil {
		log.Fatalf("render report: %v", err)
	}
	fmt.Printf("%s\n", out)

	if *verbose {
		log.Printf("completed in %s", time.Since(start).Truncate(time.Millisecond))
	}
}

// loadPipeline decodes the config file and applies the -input/-output flag
// overrides. A missing config file is tolerated when -input names the source
// directly; in that flags-only mode the job and destination get usable
// defaults so `orderetl -input orders.csv` works with zero setup.
func loadPipeline(cfgPath, input, output string, verbose bool) (config.Pipeline, error) {
	var p config.Pipeline

	f, err := os.Open(cfgPath)
	switch {
	case err == nil:
		derr := json.NewDecoder(f).Decode(&p)
		f.Close()
		if derr != nil {
			return p, fmt.Errorf("decode config: %w", derr)
		}
	case input != "":
		if verbose {
			log.Printf("config: %s not read (%v); building pipeline from flags", cfgPath, err)
		}
		p.Job = "orders"
		p.Load.Kind = "file"
		p.Load.File.Path = "output/cleaned_orders.parquet"
	default:
		return p, fmt.Errorf("open config: %w", err)
	}

	if input != "" {
		if strings.HasPrefix(input, "http://") || strings.HasPrefix(input, "https://") {
			p.Source.Kind = "http"
			p.Source.HTTP.URL = input
			p.Source.File = config.SourceFile{}
		} else {
			p.Source.Kind = "file"
			p.Source.File.Path = input
			p.Source.HTTP = config.SourceHTTP{}
		}
	}
	if output != "" {
		p.Load.Kind = "file"
		p.Load.File.Path = output
		p.Load.DB = config.DBConfig{}
	}
	return p, nil
}

// jobName returns the metrics job label, falling back when the config
// carries no job name.
func jobName(p config.Pipeline) string {
	if p.Job == "" {
		return "orders"
	}
	return p.Job
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}
