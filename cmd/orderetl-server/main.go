package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"orderetl/internal/server"
	"orderetl/internal/settings"
)

// main is the entrypoint for the pipeline HTTP service. Configuration comes
// from ORDERETL_* environment variables; logs are JSON lines on stdout.
func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	st, err := settings.Load()
	if err != nil {
		logger.Error("load settings", slog.String("error", err.Error()))
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:         st.Addr(),
		Handler:      server.New(st, logger).Router(),
		ReadTimeout:  st.ReadTimeout,
		WriteTimeout: st.WriteTimeout,
		IdleTimeout:  st.IdleTimeout,
	}

	go func() {
		logger.Info("server listening",
			slog.String("addr", srv.Addr),
			slog.String("app", st.AppName),
			slog.String("version", st.AppVersion),
			slog.String("api_prefix", st.APIPrefix),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	logger.Info("server shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), st.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("shutdown", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("server stopped")
}
