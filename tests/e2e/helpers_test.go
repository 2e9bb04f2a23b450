//go:build e2e

package e2e_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/wordbook/internal/adapter/postgres/sessionkv"
	"github.com/heartmarshall/wordbook/internal/adapter/postgres/testhelper"
	"github.com/heartmarshall/wordbook/internal/adapter/provider/freedict"
	"github.com/heartmarshall/wordbook/internal/app"
	"github.com/heartmarshall/wordbook/internal/config"
	"github.com/heartmarshall/wordbook/internal/session"
	"github.com/heartmarshall/wordbook/internal/transport/middleware"
)

// ---------------------------------------------------------------------------
// Dictionary mock: serves canned entries keyed by word, 404 otherwise.
// ---------------------------------------------------------------------------

var dictionary = map[string]string{
	"test": `[{"word":"test","phonetic":"/test/","phonetics":[{"text":"/tɛst/","audio":"https://audio.example/test-uk.mp3"}],"meanings":[{"partOfSpeech":"noun","definitions":[{"definition":"A challenge, trial.","synonyms":[],"antonyms":[]}],"synonyms":["trial"],"antonyms":[]}],"license":{"name":"CC BY-SA 3.0","url":"https://creativecommons.org/licenses/by-sa/3.0"},"sourceUrls":["https://en.wiktionary.org/wiki/test"]}]`,
	"hello": `[{"word":"hello","phonetics":[{"text":"","audio":""},{"text":"/həˈləʊ/","audio":""}],"meanings":[{"partOfSpeech":"interjection","definitions":[{"definition":"A greeting."}]}],"license":{"name":"CC","url":"https://cc.example"},"sourceUrls":[]}]`,
}

func newDictionaryServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := dictionary[r.URL.Path[1:]]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			io.WriteString(w, `{"title":"No Definitions Found"}`) //nolint:errcheck
			return
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, body) //nolint:errcheck
	}))
	t.Cleanup(srv.Close)
	return srv
}

// ---------------------------------------------------------------------------
// testServer wraps the full-stack HTTP server for E2E tests.
// ---------------------------------------------------------------------------

type testServer struct {
	URL    string
	Pool   *pgxpool.Pool
	Repo   *sessionkv.Repo
	Config *config.Config
}

// testLogWriter adapts testing.T to io.Writer for slog.
type testLogWriter struct{ t *testing.T }

func (w testLogWriter) Write(p []byte) (int, error) {
	w.t.Helper()
	w.t.Log(string(p))
	return len(p), nil
}

// setupTestServer bootstraps the full application stack backed by a real
// PostgreSQL container (shared via testhelper) and a mock dictionary.
func setupTestServer(t *testing.T) *testServer {
	t.Helper()

	pool := testhelper.SetupTestDB(t)
	logger := slog.New(slog.NewTextHandler(testLogWriter{t}, &slog.HandlerOptions{Level: slog.LevelDebug}))

	dict := newDictionaryServer(t)

	cfg := &config.Config{
		Lookup:    config.LookupConfig{BaseURL: dict.URL, Timeout: 5 * time.Second},
		Session:   config.SessionConfig{CookieName: "wordbook_session", IdleTTL: time.Hour, JanitorInterval: time.Minute},
		Storage:   config.StorageConfig{Driver: config.DriverPostgres, FavoritesKey: "savedWords"},
		CORS:      config.CORSConfig{AllowedOrigins: "*", AllowedMethods: "GET,POST,DELETE,OPTIONS", AllowedHeaders: "Content-Type"},
		RateLimit: config.RateLimitConfig{SearchPerMinute: 0, CleanupInterval: time.Minute},
	}

	repo := sessionkv.New(pool)
	reg := session.NewRegistry(logger, repo, freedict.NewProvider(cfg.Lookup, logger), session.Options{
		FavoritesKey: cfg.Storage.FavoritesKey,
		IdleTTL:      cfg.Session.IdleTTL,
	})

	rl := middleware.NewRateLimiter(cfg.RateLimit.CleanupInterval)
	t.Cleanup(rl.Stop)

	srv := httptest.NewServer(app.NewRouter(cfg, logger, reg, repo, rl))
	t.Cleanup(srv.Close)

	return &testServer{URL: srv.URL, Pool: pool, Repo: repo, Config: cfg}
}

// newBrowser returns a client with its own cookie jar, i.e. its own session.
func newBrowser(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{Jar: jar, Timeout: 10 * time.Second}
}

// doJSON sends a request and decodes the JSON response body.
func doJSON(t *testing.T, client *http.Client, method, url string, body any) (int, map[string]any) {
	t.Helper()

	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, url, r)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

// sessionID returns the session cookie value the browser holds for ts.
func sessionID(t *testing.T, client *http.Client, ts *testServer) string {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, ts.URL, nil)
	require.NoError(t, err)
	for _, c := range client.Jar.Cookies(req.URL) {
		if c.Name == ts.Config.Session.CookieName {
			return c.Value
		}
	}
	t.Fatal("browser has no session cookie")
	return ""
}

// favoriteWords extracts the word of each entry in a favorites response.
func favoriteWords(t *testing.T, body map[string]any) []string {
	t.Helper()
	items, ok := body["favorites"].([]any)
	require.True(t, ok, "expected favorites array, got %v", body)

	words := make([]string, 0, len(items))
	for _, it := range items {
		m, ok := it.(map[string]any)
		require.True(t, ok)
		words = append(words, m["word"].(string))
	}
	return words
}
