// Package session keeps one result store and one favorites store per browser
// session and expires them when the session goes idle.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/wordbook/internal/domain"
	"github.com/heartmarshall/wordbook/internal/service/favorites"
	"github.com/heartmarshall/wordbook/internal/service/lookup"
)

// Backend is the shared key-value store every session persists into.
type Backend interface {
	Touch(ctx context.Context, sessionID uuid.UUID) error
	Get(ctx context.Context, sessionID uuid.UUID, key string) (string, bool, error)
	Set(ctx context.Context, sessionID uuid.UUID, key, value string) error
	PurgeIdle(ctx context.Context, before time.Time) (int64, error)
}

type entryProvider interface {
	FetchEntries(ctx context.Context, word string) ([]domain.LookupResult, error)
}

// Workspace is the state owned by one browser session.
type Workspace struct {
	Results   *lookup.ResultStore
	Favorites *favorites.Store
}

type slot struct {
	once     sync.Once
	ws       *Workspace
	lastUsed time.Time // guarded by Registry.mu
}

// Options tunes a Registry.
type Options struct {
	FavoritesKey string
	IdleTTL      time.Duration
}

// Registry maps session IDs to workspaces, creating them on first use.
type Registry struct {
	backend  Backend
	provider entryProvider
	opts     Options
	log      *slog.Logger
	base     *slog.Logger // handed to per-session stores
	now      func() time.Time

	mu    sync.Mutex
	slots map[uuid.UUID]*slot
}

// NewRegistry creates an empty Registry.
func NewRegistry(logger *slog.Logger, backend Backend, provider entryProvider, opts Options) *Registry {
	return &Registry{
		backend:  backend,
		provider: provider,
		opts:     opts,
		log:      logger.With("service", "session"),
		base:     logger,
		now:      time.Now,
		slots:    make(map[uuid.UUID]*slot),
	}
}

// Workspace returns the workspace for id, creating and hydrating it on
// first use. Concurrent first calls for the same id hydrate once.
func (r *Registry) Workspace(ctx context.Context, id uuid.UUID) *Workspace {
	r.mu.Lock()
	sl, ok := r.slots[id]
	if !ok {
		sl = &slot{}
		r.slots[id] = sl
	}
	sl.lastUsed = r.now()
	r.mu.Unlock()

	sl.once.Do(func() {
		// A cancelled request must not leave the session hydrated empty.
		sl.ws = r.open(context.WithoutCancel(ctx), id)
	})

	// A failed read at open time is retried on every later access.
	if !sl.ws.Favorites.Loaded() {
		if err := sl.ws.Favorites.EnsureLoaded(context.WithoutCancel(ctx)); err != nil {
			r.log.WarnContext(ctx, "favorites still unloaded",
				slog.String("session_id", id.String()),
				slog.String("error", err.Error()),
			)
		}
	}
	return sl.ws
}

func (r *Registry) open(ctx context.Context, id uuid.UUID) *Workspace {
	if err := r.backend.Touch(ctx, id); err != nil {
		r.log.WarnContext(ctx, "session touch failed",
			slog.String("session_id", id.String()),
			slog.String("error", err.Error()),
		)
	}

	r.log.DebugContext(ctx, "session opened", slog.String("session_id", id.String()))

	log := r.base.With("session_id", id.String())
	return &Workspace{
		Results:   lookup.NewResultStore(log, r.provider),
		Favorites: favorites.NewStore(ctx, log, scoped{backend: r.backend, id: id}, r.opts.FavoritesKey),
	}
}

// Len returns the number of live workspaces.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.slots)
}

// Sweep evicts workspaces idle longer than the TTL, refreshes the backing
// rows of the survivors, and purges expired sessions from the backend.
func (r *Registry) Sweep(ctx context.Context) (evicted int, purged int64, err error) {
	cutoff := r.now().Add(-r.opts.IdleTTL)

	var live []uuid.UUID
	r.mu.Lock()
	for id, sl := range r.slots {
		if sl.lastUsed.Before(cutoff) {
			delete(r.slots, id)
			evicted++
			continue
		}
		live = append(live, id)
	}
	r.mu.Unlock()

	for _, id := range live {
		if err := r.backend.Touch(ctx, id); err != nil {
			return evicted, 0, fmt.Errorf("touch session %s: %w", id, err)
		}
	}

	purged, err = r.backend.PurgeIdle(ctx, cutoff)
	if err != nil {
		return evicted, 0, fmt.Errorf("purge idle sessions: %w", err)
	}
	return evicted, purged, nil
}

// RunJanitor sweeps every interval until ctx is cancelled. Sweep failures
// are logged and retried on the next tick.
func (r *Registry) RunJanitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			evicted, purged, err := r.Sweep(ctx)
			if err != nil {
				r.log.ErrorContext(ctx, "session sweep failed", slog.String("error", err.Error()))
				continue
			}
			if evicted > 0 || purged > 0 {
				r.log.InfoContext(ctx, "session sweep",
					slog.Int("evicted", evicted),
					slog.Int64("purged", purged),
					slog.Int("live", r.Len()),
				)
			}
		}
	}
}

// scoped binds a Backend to one session so it satisfies favorites.BackingStore.
type scoped struct {
	backend Backend
	id      uuid.UUID
}

func (s scoped) Get(ctx context.Context, key string) (string, bool, error) {
	return s.backend.Get(ctx, s.id, key)
}

func (s scoped) Set(ctx context.Context, key, value string) error {
	return s.backend.Set(ctx, s.id, key, value)
}
