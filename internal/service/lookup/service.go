package lookup

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/heartmarshall/wordbook/internal/domain"
)

type entryProvider interface {
	FetchEntries(ctx context.Context, word string) ([]domain.LookupResult, error)
}

// ResultStore holds the outcome of the most recent lookup and performs the
// remote fetch. Safe for concurrent use.
type ResultStore struct {
	provider entryProvider
	log      *slog.Logger

	mu      sync.Mutex
	issued  uint64
	outcome domain.SearchOutcome
}

// NewResultStore creates a ResultStore in the NotSearched state.
func NewResultStore(log *slog.Logger, provider entryProvider) *ResultStore {
	return &ResultStore{
		provider: provider,
		log:      log.With("service", "lookup"),
		outcome:  domain.NotSearched(),
	}
}

// Search fetches word and replaces the held outcome. Every failure becomes
// NotFound and is only logged. When a newer Search was issued while this one
// was in flight, the response is discarded.
//
// The returned outcome is the one held after the call, which may belong to a
// newer search.
func (s *ResultStore) Search(ctx context.Context, word string) domain.SearchOutcome {
	s.mu.Lock()
	s.issued++
	seq := s.issued
	s.mu.Unlock()

	// The lookup outlives a disconnected caller; the provider timeout bounds it.
	results, err := s.provider.FetchEntries(context.WithoutCancel(ctx), word)

	next := domain.Found(results)
	if err != nil {
		next = domain.NotFound()
		if errors.Is(err, domain.ErrNotFound) {
			s.log.DebugContext(ctx, "word not found", slog.String("word", word))
		} else {
			s.log.WarnContext(ctx, "lookup failed",
				slog.String("word", word),
				slog.String("error", err.Error()),
			)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if seq != s.issued {
		s.log.DebugContext(ctx, "stale lookup discarded",
			slog.String("word", word),
			slog.Uint64("seq", seq),
			slog.Uint64("latest", s.issued),
		)
		return s.outcome
	}

	s.outcome = next
	return s.outcome
}

// CurrentOutcome returns the held outcome. It has no side effects.
func (s *ResultStore) CurrentOutcome() domain.SearchOutcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.outcome
}
