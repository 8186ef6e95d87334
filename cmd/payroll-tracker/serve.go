package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/peterbourgon/ff/v4"

	"github.com/zombor/payroll-tracker/internal/batch"
)

func newServeCommand(parent *ff.FlagSet, cfg *rootConfig) *ff.Command {
	fs := ff.NewFlagSet("serve").SetParent(parent)
	var (
		port        = fs.IntLong("port", 8080, "HTTP server port")
		dbPath      = fs.StringLong("db", "payroll-tracker.db", "Database file path")
		storagePath = fs.StringLong("storage", "./recibos", "Storage directory path")
		authUser    = fs.StringLong("auth-user", "", "Basic auth username (optional)")
		authPass    = fs.StringLong("auth-pass", "", "Basic auth password (optional)")
	)

	return &ff.Command{
		Name:      "serve",
		Usage:     "payroll-tracker serve [FLAGS]",
		ShortHelp: "run the web interface and batch API",
		Flags:     fs,
		Exec: func(ctx context.Context, args []string) error {
			cfg.setupLogging()

			// Initialize database
			slog.Info("Initializing database...", "path", *dbPath)
			db, err := batch.NewBoltDB(*dbPath)
			if err != nil {
				return fmt.Errorf("initializing database: %w", err)
			}
			defer db.Close()

			renderer, err := cfg.newRenderer()
			if err != nil {
				return err
			}
			defer renderer.Close()

			// Initialize storage
			slog.Info("Initializing storage...", "path", *storagePath)
			store, err := batch.NewLocalStorage(*storagePath)
			if err != nil {
				return fmt.Errorf("initializing storage: %w", err)
			}

			service := batch.NewService(db, renderer, store, *cfg.workers)
			server := batch.NewServer(service, batch.BasicAuth{
				Username: *authUser,
				Password: *authPass,
			})

			addr := fmt.Sprintf(":%d", *port)
			httpServer := &http.Server{
				Addr:              addr,
				Handler:           server.Handler(),
				ReadHeaderTimeout: 10 * time.Second,
			}

			errc := make(chan error, 1)
			go func() {
				slog.Info("Server started", "address", fmt.Sprintf("http://localhost%s", addr))
				errc <- httpServer.ListenAndServe()
			}()
			if *authUser != "" || *authPass != "" {
				slog.Info("Basic auth enabled", "user", *authUser)
			}

			select {
			case err := <-errc:
				return fmt.Errorf("server error: %w", err)
			case <-ctx.Done():
			}

			slog.Info("Shutting down...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := httpServer.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("shutting down: %w", err)
			}
			return nil
		},
	}
}
