// Package config provides configuration models and helpers for ETL pipelines.
//
// This file adds a lightweight linter/validator for Pipeline values. It
// performs static checks over a decoded Pipeline and returns a list of issues
// (errors and warnings) that callers can surface in a CLI or tests.
package config

import (
	"fmt"
	"strings"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError indicates a configuration error that should block execution.
	SeverityError IssueSeverity = "error"
	// SeverityWarning indicates a configuration warning that should be surfaced
	// to users but may not necessarily block execution.
	SeverityWarning IssueSeverity = "warning"
)

// Issue describes a single validation/lint finding for a Pipeline.
//
// Path is a dotted path into the config (e.g. "source.kind",
// "load.file.path"). Message is human-readable.
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

// Error implements the error interface so an Issue can be treated as a single
// error in contexts that expect error.
func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// ValidatePipeline performs static validation / linting of a Pipeline.
//
// It does not mutate the pipeline. Instead it returns a slice of Issue values.
// Callers may decide whether to treat warnings as fatal or not.
//
// Example:
//
//	var p config.Pipeline
//	if err := json.NewDecoder(r).Decode(&p); err != nil { ... }
//	issues := config.ValidatePipeline(p)
//	for _, iss := range issues {
//	    fmt.Printf("%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
//	}
func ValidatePipeline(p Pipeline) []Issue {
	var issues []Issue

	if strings.TrimSpace(p.Job) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "job",
			Message:  "job must not be empty; it is used for metrics labeling and identifying runs",
		})
	}
	issues = append(issues, validateSource(p.Source)...)
	issues = append(issues, validateLoad(p.Load)...)

	return issues
}

// sourceFormats are the input formats the extractor understands. Empty means
// detect from the extension.
var sourceFormats = map[string]struct{}{
	"": {}, "csv": {}, "json": {}, "xlsx": {},
}

// loadFormats are the file destination formats the loader understands.
var loadFormats = map[string]struct{}{
	"": {}, "parquet": {}, "csv": {}, "json": {},
}

// validateSource validates Source configuration.
func validateSource(s Source) []Issue {
	var issues []Issue

	if strings.TrimSpace(s.Kind) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "source.kind",
			Message:  "source.kind must not be empty",
		})
		return issues
	}

	known := map[string]struct{}{
		"file": {},
		"http": {},
	}
	if _, ok := known[s.Kind]; !ok {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "source.kind",
			Message:  fmt.Sprintf("unknown source kind %q; ensure a matching implementation exists", s.Kind),
		})
	}

	switch s.Kind {
	case "file":
		if strings.TrimSpace(s.File.Path) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "source.file.path",
				Message:  "file source requires a non-empty path",
			})
		}
	case "http":
		if strings.TrimSpace(s.HTTP.URL) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "source.http.url",
				Message:  "http source requires a non-empty url",
			})
		} else if !strings.HasPrefix(s.HTTP.URL, "http://") && !strings.HasPrefix(s.HTTP.URL, "https://") {
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Path:     "source.http.url",
				Message:  "url does not look like http(s); the source open will likely fail",
			})
		}
	}

	if _, ok := sourceFormats[s.Format]; !ok {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "source.format",
			Message:  fmt.Sprintf("unknown source format %q (expected csv, json, or xlsx)", s.Format),
		})
	}

	if comma := s.Options.String("comma", ","); len([]rune(comma)) != 1 {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "source.options.comma",
			Message:  fmt.Sprintf("comma %q is not a single character; only its first rune is used", comma),
		})
	}

	return issues
}

// validateLoad validates destination configuration.
func validateLoad(l Load) []Issue {
	var issues []Issue

	kind := l.Kind
	if kind == "" {
		kind = "file"
	}

	known := map[string]struct{}{
		"file":     {},
		"sqlite":   {},
		"postgres": {},
	}
	if _, ok := known[kind]; !ok {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "load.kind",
			Message:  fmt.Sprintf("unknown load kind %q; ensure a matching backend is registered", kind),
		})
	}

	switch kind {
	case "file":
		if strings.TrimSpace(l.File.Path) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "load.file.path",
				Message:  "file destination requires a non-empty path",
			})
		}
		if _, ok := loadFormats[l.File.Format]; !ok {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "load.file.format",
				Message:  fmt.Sprintf("unknown load format %q (expected parquet, csv, or json)", l.File.Format),
			})
		}
	default:
		if strings.TrimSpace(l.DB.DSN) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "load.db.dsn",
				Message:  "load.db.dsn must not be empty",
			})
		}
		if strings.TrimSpace(l.DB.Table) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "load.db.table",
				Message:  "load.db.table must not be empty",
			})
		}
	}

	return issues
}
