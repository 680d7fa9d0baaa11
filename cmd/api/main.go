package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	nethttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"geekqa/internal/bootstrap"
	"geekqa/internal/config"
	"geekqa/internal/http"
)

//go:generate swagger generate spec -o swagger.json

// General API information
//
// This API answers questions about Akihabara as the mascot "Geek-kun", using documents
// retrieved from a search index, and keeps a small list of greetings.
//
// swagger:meta
//
// ---
// swagger: '2.0'
// info:
//   title: GeekQA API
//   description: |
//     Retrieval-augmented question answering over a managed search index, plus a
//     password-gated greeting list.
//   version: 1.0.0
// schemes:
//   - http
//   - https
// consumes:
//   - application/json
// produces:
//   - application/json
// securityDefinitions:
//   basic:
//     type: basic

func main() {
	// Load configuration first (needed for log level)
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	bootstrap.SetupLogger(cfg, os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}
	defer func() {
		if err := app.Close(); err != nil {
			slog.Error("Failed to release resources", "error", err)
		}
	}()
	slog.Info("Application initialized",
		"environment", cfg.Environment,
		"db_driver", cfg.DBDriver,
		"retrieval_backend", cfg.RetrievalBackend,
		"generation_backend", cfg.GenerationBackend,
		"qa_require_auth", cfg.QARequireAuth,
	)

	router := http.NewRouter(&http.Deps{
		QA:            app.QA,
		Greetings:     app.Greetings,
		DB:            app.GreetingDB,
		Retrieval:     app.Retrieval,
		Auth:          app.Credentials.Auth,
		QARequireAuth: cfg.QARequireAuth,
	})

	srv := &nethttp.Server{
		Addr:              ":" + cfg.APIPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		// Generation may run for GenerationTimeout after retrieval finished.
		WriteTimeout: cfg.RetrievalTimeout + cfg.GenerationTimeout + 10*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Starting API server", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			slog.Error("API server failed", "error", err)
			return
		}
	case <-ctx.Done():
		slog.Info("Shutting down API server", "timeout", cfg.ShutdownTimeout)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Graceful shutdown failed", "error", err)
	}
}
