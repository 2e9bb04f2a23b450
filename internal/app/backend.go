package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/heartmarshall/wordbook/internal/adapter/memory"
	"github.com/heartmarshall/wordbook/internal/adapter/postgres"
	"github.com/heartmarshall/wordbook/internal/adapter/postgres/sessionkv"
	"github.com/heartmarshall/wordbook/internal/adapter/sqlite"
	"github.com/heartmarshall/wordbook/internal/config"
	"github.com/heartmarshall/wordbook/internal/session"
)

// Backend is an opened per-session backing store.
type Backend interface {
	session.Backend
	Ping(ctx context.Context) error
	Close() error
}

// OpenBackend opens the store selected by cfg.Storage.Driver, applying
// migrations first when AutoMigrate is set.
func OpenBackend(ctx context.Context, cfg *config.Config, logger *slog.Logger) (Backend, error) {
	log := logger.With("adapter", cfg.Storage.Driver)

	switch cfg.Storage.Driver {
	case config.DriverMemory:
		log.Warn("using in-memory storage; favorites are lost on restart")
		return memoryBackend{Store: memory.NewStore()}, nil

	case config.DriverPostgres:
		if cfg.Storage.AutoMigrate {
			if err := postgres.Migrate(ctx, cfg.Database.DSN, log); err != nil {
				return nil, fmt.Errorf("migrate postgres: %w", err)
			}
		}
		pool, err := postgres.NewPool(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
		log.Info("connected to database",
			slog.Int("max_conns", int(pool.Config().MaxConns)),
		)
		return postgresBackend{Repo: sessionkv.New(pool), close: pool.Close}, nil

	case config.DriverSQLite:
		store, err := sqlite.Open(ctx, cfg.SQLite.Path, cfg.Storage.AutoMigrate, log)
		if err != nil {
			return nil, err
		}
		log.Info("opened sqlite database", slog.String("path", cfg.SQLite.Path))
		return store, nil
	}

	return nil, fmt.Errorf("unsupported storage driver %q", cfg.Storage.Driver)
}

type memoryBackend struct {
	*memory.Store
}

func (memoryBackend) Close() error { return nil }

type postgresBackend struct {
	*sessionkv.Repo
	close func()
}

func (b postgresBackend) Close() error {
	b.close()
	return nil
}
