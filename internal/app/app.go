package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"

	"golang.org/x/sync/errgroup"

	"github.com/heartmarshall/wordbook/internal/adapter/provider/freedict"
	"github.com/heartmarshall/wordbook/internal/config"
	"github.com/heartmarshall/wordbook/internal/session"
	"github.com/heartmarshall/wordbook/internal/transport/middleware"
	"github.com/heartmarshall/wordbook/internal/transport/rest"
)

// Run is the application entry point. It loads configuration, opens the
// backing store, and serves HTTP until ctx is cancelled.
func Run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := NewLogger(cfg.Log)

	logger.Info("starting application",
		slog.String("version", BuildVersion()),
		slog.String("log_level", cfg.Log.Level),
		slog.String("storage", cfg.Storage.Driver),
	)

	backend, err := OpenBackend(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := backend.Close(); err != nil {
			logger.Error("close backing store", slog.String("error", err.Error()))
		}
	}()

	return Serve(ctx, cfg, logger, backend)
}

// Serve wires handlers over backend and runs the HTTP server and the session
// janitor until ctx is cancelled, then shuts the server down gracefully.
func Serve(ctx context.Context, cfg *config.Config, logger *slog.Logger, backend Backend) error {
	provider := freedict.NewProvider(cfg.Lookup, logger)
	reg := session.NewRegistry(logger, backend, provider, session.Options{
		FavoritesKey: cfg.Storage.FavoritesKey,
		IdleTTL:      cfg.Session.IdleTTL,
	})

	rl := middleware.NewRateLimiter(cfg.RateLimit.CleanupInterval)
	defer rl.Stop()

	srv := &http.Server{
		Addr:         net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port)),
		Handler:      NewRouter(cfg, logger, reg, backend, rl),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("http server listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		reg.RunJanitor(gctx, cfg.Session.JanitorInterval)
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down", slog.Duration("timeout", cfg.Server.ShutdownTimeout))

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("server stopped")
	return nil
}

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// NewRouter builds the HTTP handler tree with the full middleware chain.
func NewRouter(cfg *config.Config, logger *slog.Logger, reg *session.Registry, storage Pinger, rl *middleware.RateLimiter) http.Handler {
	lookupH := rest.NewLookupHandler(reg, logger)
	favoritesH := rest.NewFavoritesHandler(reg, logger)
	healthH := rest.NewHealthHandler(storage, cfg.Storage.Driver, reg, Version)

	mux := http.NewServeMux()

	mux.Handle("POST /api/search", middleware.Wrap(lookupH.Search, rl.Limit(cfg.RateLimit.SearchPerMinute)))
	mux.HandleFunc("GET /api/result", lookupH.Result)

	mux.HandleFunc("GET /api/favorites", favoritesH.List)
	mux.HandleFunc("POST /api/favorites", favoritesH.Save)
	mux.HandleFunc("POST /api/favorites/current", favoritesH.SaveCurrent)
	mux.HandleFunc("DELETE /api/favorites/{word}", favoritesH.Remove)

	mux.HandleFunc("GET /live", healthH.Live)
	mux.HandleFunc("GET /ready", healthH.Ready)
	mux.HandleFunc("GET /health", healthH.Health)

	chain := middleware.Chain(
		middleware.Recovery(logger),
		middleware.RequestID,
		middleware.Session(cfg.Session, logger),
		middleware.Logger(logger),
		middleware.CORS(cfg.CORS),
	)
	return chain(mux)
}
