package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"orderetl/internal/datasource/file"
	"orderetl/internal/probe"
)

// main is the entrypoint for the source diagnostics CLI. It samples the first
// bytes of a candidate orders file or URL, checks the sample against the fixed
// input contract, and prints the diagnostic report as JSON together with a
// starter pipeline config for cmd/orderetl.
//
// With -list the same diagnostics run over every source named in a list file;
// reports stream to stdout as one JSON object per line and failures go to
// stderr without stopping the batch.
func main() {
	var (
		flagList = flag.String(
			"list",
			"",
			"Path to a text file of sources to probe, one per line ('#' comments allowed)",
		)
		flagBytes = flag.Int(
			"bytes",
			probe.DefaultMaxBytes,
			"Number of bytes to sample from the start of each source",
		)
		flagDelimiter = flag.String(
			"delimiter",
			"",
			"Field delimiter override (e.g. ';'); auto-detected when empty",
		)
		flagName = flag.String(
			"name",
			"",
			"Job name for the generated pipeline config; derived from the source when empty",
		)
		flagSave = flag.Bool(
			"save",
			false,
			"Write the sampled bytes to <job>_sample.csv",
		)
		flagSampleDir = flag.String(
			"sample-dir",
			".",
			"Directory for saved samples",
		)
		flagInsecure = flag.Bool(
			"insecure",
			false,
			"Skip TLS certificate verification for https sources",
		)
		flagPretty = flag.Bool(
			"pretty",
			true,
			"Pretty-print JSON output (single source mode only)",
		)
	)
	flag.Parse()

	opt := probe.Options{
		MaxBytes:         *flagBytes,
		Delimiter:        probe.DecodeDelimiter(*flagDelimiter),
		Name:             *flagName,
		SaveSample:       *flagSave,
		SampleDir:        *flagSampleDir,
		AllowInsecureTLS: *flagInsecure,
	}

	if *flagList != "" {
		sources, err := file.ReadList(*flagList)
		if err != nil {
			fatalf("read list: %v", err)
		}
		if len(sources) == 0 {
			fatalf("list %s names no sources", *flagList)
		}

		enc := json.NewEncoder(os.Stdout)
		failed := 0
		for _, src := range sources {
			rep, err := probeOne(src, opt)
			if err != nil {
				fmt.Fprintf(os.Stderr, "probe: source=%s error=%v\n", src, err)
				failed++
				continue
			}
			if err := enc.Encode(rep); err != nil {
				fatalf("encode report: %v", err)
			}
		}
		if failed > 0 {
			fmt.Fprintf(os.Stderr, "probe: %d of %d sources failed\n", failed, len(sources))
			os.Exit(1)
		}
		return
	}

	src := flag.Arg(0)
	if src == "" {
		fmt.Fprintln(os.Stderr, "missing source argument (file path or URL)")
		flag.Usage()
		os.Exit(2)
	}

	rep, err := probeOne(src, opt)
	if err != nil {
		fatalf("probe: %v", err)
	}

	enc := json.NewEncoder(os.Stdout)
	if *flagPretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(rep); err != nil {
		fatalf("encode report: %v", err)
	}
}

// probeOne samples a single source under its own timeout so one slow host
// cannot stall a whole list run.
func probeOne(source string, opt probe.Options) (probe.Report, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()
	return probe.Probe(ctx, source, opt)
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}
