// Package server exposes the orders pipeline over HTTP: health and version
// probes plus a synchronous run endpoint that accepts a source/destination
// pair and responds with the run report.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"orderetl/internal/config"
	"orderetl/internal/extract"
	"orderetl/internal/pipeline"
	"orderetl/internal/settings"
)

// Server wires the HTTP handlers around the pipeline.
type Server struct {
	settings settings.Settings
	logger   *slog.Logger
	validate *validator.Validate

	// runFn is a seam for tests; production points at pipeline.Run.
	runFn func(ctx context.Context, cfg config.Pipeline) (*pipeline.Report, error)
}

// New builds a Server for the given settings. The logger must not be nil.
func New(st settings.Settings, logger *slog.Logger) *Server {
	v := validator.New()
	// Error messages name fields by their JSON tags.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &Server{
		settings: st,
		logger:   logger,
		validate: v,
		runFn:    pipeline.Run,
	}
}

// Router assembles the chi router with the service middleware chain.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(RequestLogger(s.logger))
	r.Use(Recoverer(s.logger))

	r.Route(s.settings.APIPrefix, func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))

		r.Get("/health", s.handleHealth)
		r.Get("/health/live", s.handleHealthLive)
		r.Get("/health/ready", s.handleHealthReady)
		r.Get("/version", s.handleVersion)

		r.Post("/pipeline/run", s.handlePipelineRun)
	})

	return r
}

// handleHealth handles GET {prefix}/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]string{"status": "ok"})
}

// handleHealthLive handles GET {prefix}/health/live.
func (s *Server) handleHealthLive(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]string{"status": "alive"})
}

// handleHealthReady handles GET {prefix}/health/ready. The service holds no
// connections open between runs, so it is ready as soon as it serves.
func (s *Server) handleHealthReady(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]string{"status": "ready"})
}

// handleVersion handles GET {prefix}/version.
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]string{
		"app":     s.settings.AppName,
		"version": s.settings.AppVersion,
	})
}

// RunRequest is the body of POST {prefix}/pipeline/run.
type RunRequest struct {
	Input  string `json:"input" validate:"required"`
	Output string `json:"output" validate:"required"`
	Format string `json:"format" validate:"omitempty,oneof=parquet csv json"`
}

// Pipeline converts the request into a pipeline config. HTTP(S) inputs
// become http sources, anything else is a local file path; the destination
// is always a file.
func (rr RunRequest) Pipeline(job string) config.Pipeline {
	p := config.Pipeline{Job: job}
	if strings.HasPrefix(rr.Input, "http://") || strings.HasPrefix(rr.Input, "https://") {
		p.Source.Kind = "http"
		p.Source.HTTP.URL = rr.Input
	} else {
		p.Source.Kind = "file"
		p.Source.File.Path = rr.Input
	}
	p.Load.Kind = "file"
	p.Load.File.Path = rr.Output
	p.Load.File.Format = rr.Format
	return p
}

// handlePipelineRun handles POST {prefix}/pipeline/run. The run is
// synchronous; the response is the full run report. Source problems map to
// 422, everything else to 500.
func (s *Server) handlePipelineRun(w http.ResponseWriter, r *http.Request) {
	var req RunRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		s.badRequest(w, r, fmt.Sprintf("decode request: %v", err))
		return
	}
	if err := s.validate.Struct(req); err != nil {
		s.badRequest(w, r, validationMessage(err))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.settings.RunTimeout)
	defer cancel()

	s.logger.InfoContext(r.Context(), "pipeline run requested",
		slog.String("request_id", RequestIDFrom(r.Context())),
		slog.String("input", req.Input),
		slog.String("output", req.Output),
	)

	rep, err := s.runFn(ctx, req.Pipeline(s.settings.AppName))
	if err != nil {
		s.logger.ErrorContext(r.Context(), "pipeline run failed",
			slog.String("request_id", RequestIDFrom(r.Context())),
			slog.String("input", req.Input),
			slog.String("error", err.Error()),
		)

		status := http.StatusInternalServerError
		if errors.Is(err, extract.ErrSourceUnavailable) || errors.Is(err, extract.ErrMalformedSource) {
			status = http.StatusUnprocessableEntity
		}
		render.Status(r, status)
		render.JSON(w, r, map[string]string{"error": err.Error()})
		return
	}

	render.JSON(w, r, rep)
}

// badRequest writes a 400 with a single error message.
func (s *Server) badRequest(w http.ResponseWriter, r *http.Request, msg string) {
	render.Status(r, http.StatusBadRequest)
	render.JSON(w, r, map[string]string{"error": msg})
}

// validationMessage flattens validator errors into one readable line.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			parts = append(parts, fmt.Sprintf("%s is required", fe.Field()))
		case "oneof":
			parts = append(parts, fmt.Sprintf("%s must be one of: %s", fe.Field(), strings.ReplaceAll(fe.Param(), " ", ", ")))
		default:
			parts = append(parts, fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag()))
		}
	}
	return strings.Join(parts, "; ")
}
