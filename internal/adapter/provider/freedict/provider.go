// Package freedict fetches dictionary entries from the Free Dictionary API
// (https://dictionaryapi.dev) or any service speaking the same wire format.
package freedict

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/heartmarshall/wordbook/internal/config"
	"github.com/heartmarshall/wordbook/internal/domain"
)

// maxBodyBytes caps how much of a response body is read.
const maxBodyBytes = 4 << 20

// Provider fetches dictionary data from the FreeDictionary API.
type Provider struct {
	baseURL    string
	httpClient *http.Client
	retries    int
	retryDelay time.Duration
	log        *slog.Logger
}

// NewProvider creates a Provider from the lookup configuration.
func NewProvider(cfg config.LookupConfig, logger *slog.Logger) *Provider {
	return &Provider{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: cfg.Timeout},
		retries:    cfg.Retries,
		retryDelay: cfg.RetryDelay,
		log:        logger.With("adapter", "freedict"),
	}
}

// NewProviderWithURL creates a Provider with a custom base URL, no timeout and
// no retries (for testing).
func NewProviderWithURL(baseURL string, logger *slog.Logger) *Provider {
	return NewProvider(config.LookupConfig{BaseURL: baseURL}, logger)
}

// StatusError reports a non-2xx response from the dictionary service.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d", e.Code)
}

// Unwrap maps 404 to domain.ErrNotFound so callers can tell a missing word
// from a failing service in logs.
func (e *StatusError) Unwrap() error {
	if e.Code == http.StatusNotFound {
		return domain.ErrNotFound
	}
	return nil
}

// FetchEntries fetches every dictionary entry for the given word, in the
// order the service returned them. Any non-2xx status is returned as a
// *StatusError; a 404 additionally matches domain.ErrNotFound.
func (p *Provider) FetchEntries(ctx context.Context, word string) ([]domain.LookupResult, error) {
	reqURL := p.baseURL + "/" + url.PathEscape(word)

	p.log.DebugContext(ctx, "freedict request", slog.String("word", word))

	resp, err := p.doWithRetry(ctx, reqURL, word)
	if err != nil {
		return nil, fmt.Errorf("freedict: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return nil, fmt.Errorf("freedict: %w", &StatusError{Code: resp.StatusCode})
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("freedict: read body: %w", err)
	}

	var entries []domain.LookupResult
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, fmt.Errorf("freedict: decode json: %w", err)
	}

	results := make([]domain.LookupResult, len(entries))
	for i, e := range entries {
		results[i] = e.Normalize()
	}

	p.log.DebugContext(ctx, "freedict response",
		slog.String("word", word),
		slog.Int("status", resp.StatusCode),
		slog.Int("entries", len(results)),
	)

	return results, nil
}

// doWithRetry executes the request, retrying up to p.retries times on 5xx or
// network errors. Each attempt builds a fresh request.
func (p *Provider) doWithRetry(ctx context.Context, reqURL, word string) (*http.Response, error) {
	for attempt := 0; ; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Accept", "application/json")

		resp, err := p.httpClient.Do(req)

		shouldRetry := err != nil || resp.StatusCode >= 500
		if !shouldRetry || attempt >= p.retries || ctx.Err() != nil {
			return resp, err
		}

		reason := "network error"
		if err == nil {
			reason = fmt.Sprintf("status %d", resp.StatusCode)
			resp.Body.Close()
		}
		p.log.WarnContext(ctx, "freedict retry",
			slog.String("word", word),
			slog.String("reason", reason),
			slog.Int("attempt", attempt+1),
		)

		if err := sleepCtx(ctx, p.retryDelay); err != nil {
			return nil, errors.Join(err, fmt.Errorf("retry aborted after %s", reason))
		}
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
