package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/exedev/ticketmd/internal/config"
	"github.com/exedev/ticketmd/internal/db"
	"github.com/exedev/ticketmd/internal/entries"
	"github.com/exedev/ticketmd/internal/web"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	var (
		store   config.Store
		formats entries.FormatStore
	)

	if cfg.DatabaseURL != "" {
		if err := db.RunMigrations(cfg.DatabaseURL); err != nil {
			slog.Error("failed to run migrations", "error", err)
			os.Exit(1)
		}

		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			slog.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()

		store = config.NewPgStore(pool)
		formats = entries.NewRepository(pool)
	} else {
		// The core is DB-free; Postgres only backs the settings and
		// entry-format glue, so a missing DATABASE_URL is not fatal.
		slog.Warn("DATABASE_URL not set; settings and entry formats are in-memory only")
		store = config.NewMemStore()
		formats = entries.NewMemFormatStore()
	}

	handler := web.NewRouter(cfg, store, formats)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	slog.Info("listening", "addr", srv.Addr, "env", cfg.Env)
	if err := srv.ListenAndServe(); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
