package favorites

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/heartmarshall/wordbook/internal/domain"
)

// DefaultKey is the backing-store key the collection is persisted under.
const DefaultKey = "savedWords"

// BackingStore is a session-scoped key-value store.
type BackingStore interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key, value string) error
}

// Store holds the deduplicated, insertion-ordered favorites collection and
// mirrors it to a BackingStore after every change. Safe for concurrent use.
//
// A failed read leaves the store unloaded: it reads as empty, and every
// mutation first retries the read. A mutation never overwrites stored data
// that was not loaded.
type Store struct {
	backing BackingStore
	key     string
	log     *slog.Logger

	mu       sync.Mutex
	items    []domain.LookupResult
	hydrated bool
}

// NewStore hydrates a Store from backing. A missing key or a value that does
// not decode yields an empty collection. A read error also starts empty but
// leaves the store unloaded until EnsureLoaded succeeds.
func NewStore(ctx context.Context, log *slog.Logger, backing BackingStore, key string) *Store {
	if key == "" {
		key = DefaultKey
	}
	s := &Store{
		backing: backing,
		key:     key,
		log:     log.With("service", "favorites"),
		items:   []domain.LookupResult{},
	}

	_ = s.ensureLoaded(ctx) // logged, and retried before the next mutation
	return s
}

// Loaded reports whether the stored collection has been read.
func (s *Store) Loaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hydrated
}

// EnsureLoaded retries the read if an earlier one failed. It is a no-op once
// the collection is loaded.
func (s *Store) EnsureLoaded(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ensureLoaded(ctx)
}

// ensureLoaded must be called with mu held.
func (s *Store) ensureLoaded(ctx context.Context) error {
	if s.hydrated {
		return nil
	}

	items, err := s.read(ctx)
	if err != nil {
		s.log.WarnContext(ctx, "favorites read failed, holding empty until retried",
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("load favorites: %w", err)
	}
	s.items = items
	s.hydrated = true
	return nil
}

// read returns the stored collection. Absent or undecodable data is an empty
// collection; only a backing-store failure is an error.
func (s *Store) read(ctx context.Context) ([]domain.LookupResult, error) {
	raw, found, err := s.backing.Get(ctx, s.key)
	if err != nil {
		return nil, err
	}
	items := []domain.LookupResult{}
	if !found {
		return items, nil
	}

	var stored []domain.LookupResult
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		s.log.WarnContext(ctx, "favorites unparsable, starting empty",
			slog.String("error", err.Error()),
		)
		return items, nil
	}

	seen := make(map[string]struct{}, len(stored))
	for _, it := range stored {
		if _, dup := seen[it.Word]; dup {
			continue
		}
		seen[it.Word] = struct{}{}
		items = append(items, it.Normalize())
	}
	return items, nil
}

// Save appends entry unless an entry with the same word is already present.
// A duplicate is a no-op and nothing is written.
func (s *Store) Save(ctx context.Context, entry domain.LookupResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(ctx); err != nil {
		return fmt.Errorf("save favorite %q: %w", entry.Word, err)
	}
	if s.indexOf(entry.Word) >= 0 {
		return nil
	}

	next := make([]domain.LookupResult, len(s.items), len(s.items)+1)
	copy(next, s.items)
	next = append(next, entry.Normalize())

	if err := s.persist(ctx, next); err != nil {
		return fmt.Errorf("save favorite %q: %w", entry.Word, err)
	}
	s.items = next

	s.log.InfoContext(ctx, "favorite saved",
		slog.String("word", entry.Word),
		slog.Int("count", len(next)),
	)
	return nil
}

// Remove drops the entry for word. Removing an absent word is a no-op and
// nothing is written.
func (s *Store) Remove(ctx context.Context, word string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(ctx); err != nil {
		return fmt.Errorf("remove favorite %q: %w", word, err)
	}
	i := s.indexOf(word)
	if i < 0 {
		return nil
	}

	next := make([]domain.LookupResult, 0, len(s.items)-1)
	next = append(next, s.items[:i]...)
	next = append(next, s.items[i+1:]...)

	if err := s.persist(ctx, next); err != nil {
		return fmt.Errorf("remove favorite %q: %w", word, err)
	}
	s.items = next

	s.log.InfoContext(ctx, "favorite removed",
		slog.String("word", word),
		slog.Int("count", len(next)),
	)
	return nil
}

// Current returns a deep copy of the collection in insertion order.
func (s *Store) Current() []domain.LookupResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := domain.CloneResults(s.items)
	if out == nil {
		out = []domain.LookupResult{}
	}
	return out
}

// Contains reports whether word is in the collection.
func (s *Store) Contains(word string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.indexOf(word) >= 0
}

// indexOf must be called with mu held.
func (s *Store) indexOf(word string) int {
	for i, it := range s.items {
		if it.Word == word {
			return i
		}
	}
	return -1
}

func (s *Store) persist(ctx context.Context, items []domain.LookupResult) error {
	raw, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode favorites: %w", err)
	}
	if err := s.backing.Set(ctx, s.key, string(raw)); err != nil {
		return fmt.Errorf("write favorites: %w", err)
	}
	return nil
}
