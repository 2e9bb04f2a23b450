// Command cleanup purges sessions idle longer than session.idle_ttl from the
// configured backing store. It is intended to be invoked by an external cron
// job; the server's own janitor covers the in-process case.
//
// Exit codes: 0 = success, 1 = error.
package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/heartmarshall/wordbook/internal/app"
	"github.com/heartmarshall/wordbook/internal/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := app.NewLogger(cfg.Log)

	if cfg.Storage.Driver == config.DriverMemory {
		logger.Info("memory storage has nothing to purge")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	backend, err := app.OpenBackend(ctx, cfg, logger)
	if err != nil {
		logger.Error("open backing store", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer backend.Close()

	threshold := time.Now().Add(-cfg.Session.IdleTTL)

	purged, err := backend.PurgeIdle(ctx, threshold)
	if err != nil {
		logger.Error("purge failed",
			slog.String("error", err.Error()),
			slog.Time("threshold", threshold),
		)
		backend.Close()
		os.Exit(1)
	}

	logger.Info("purge completed",
		slog.Int64("purged", purged),
		slog.Time("threshold", threshold),
	)
}
