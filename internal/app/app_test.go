package app

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/wordbook/internal/adapter/memory"
	"github.com/heartmarshall/wordbook/internal/adapter/provider/freedict"
	"github.com/heartmarshall/wordbook/internal/config"
	"github.com/heartmarshall/wordbook/internal/session"
	"github.com/heartmarshall/wordbook/internal/transport/middleware"
)

const dictionaryBody = `[{"word":"test","phonetics":[{"text":"/tɛst/","audio":"https://audio.example/test.mp3"}],"meanings":[{"partOfSpeech":"noun","definitions":[{"definition":"A trial."}]}],"license":{"name":"CC","url":"https://cc.example"},"sourceUrls":["https://src.example/test"]}]`

func testConfig(dictURL string) *config.Config {
	return &config.Config{
		Lookup:    config.LookupConfig{BaseURL: dictURL, Timeout: 2 * time.Second},
		Session:   config.SessionConfig{CookieName: "wordbook_session", IdleTTL: time.Hour, JanitorInterval: time.Minute},
		Storage:   config.StorageConfig{Driver: config.DriverMemory, FavoritesKey: "savedWords"},
		CORS:      config.CORSConfig{AllowedOrigins: "http://app.local", AllowedMethods: "GET,POST,DELETE,OPTIONS", AllowedHeaders: "Content-Type", AllowCredentials: true, MaxAge: 60},
		RateLimit: config.RateLimitConfig{SearchPerMinute: 2, CleanupInterval: time.Minute},
	}
}

type testServer struct {
	srv     *httptest.Server
	client  *http.Client
	backend *memory.Store
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	dict := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/test" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, dictionaryBody) //nolint:errcheck
	}))
	t.Cleanup(dict.Close)

	cfg := testConfig(dict.URL)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := memory.NewStore()
	backend := memoryBackend{Store: store}

	reg := session.NewRegistry(logger, backend, freedict.NewProvider(cfg.Lookup, logger), session.Options{
		FavoritesKey: cfg.Storage.FavoritesKey,
		IdleTTL:      cfg.Session.IdleTTL,
	})
	rl := middleware.NewRateLimiter(cfg.RateLimit.CleanupInterval)
	t.Cleanup(rl.Stop)

	srv := httptest.NewServer(NewRouter(cfg, logger, reg, backend, rl))
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	return &testServer{srv: srv, client: &http.Client{Jar: jar}, backend: store}
}

func (s *testServer) do(t *testing.T, method, path, body string) (*http.Response, map[string]any) {
	t.Helper()

	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, s.srv.URL+path, r)
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]any
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &out), "body: %s", raw)
	}
	return resp, out
}

func TestRouter_SearchSaveAndPersist(t *testing.T) {
	ts := newTestServer(t)

	resp, body := ts.do(t, http.MethodGet, "/api/result", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "not_searched", body["status"])
	require.NotEmpty(t, resp.Header.Get(middleware.RequestIDHeader))

	var cookie *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == "wordbook_session" {
			cookie = c
		}
	}
	require.NotNil(t, cookie, "session cookie not set")
	assert.True(t, cookie.HttpOnly)
	assert.Zero(t, cookie.MaxAge)
	assert.True(t, cookie.Expires.IsZero())

	resp, body = ts.do(t, http.MethodPost, "/api/search", `{"word":"test"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "found", body["status"])
	assert.Equal(t, "https://audio.example/test.mp3", body["audioUrl"])
	assert.Equal(t, "/tɛst/", body["phonetic"])

	resp, body = ts.do(t, http.MethodPost, "/api/favorites/current", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, body["favorites"], 1)

	_, body = ts.do(t, http.MethodGet, "/api/result", "")
	assert.Equal(t, true, body["saved"])

	sessions := ts.backend.Sessions()
	require.Len(t, sessions, 1)
	raw, ok, err := ts.backend.Get(context.Background(), sessions[0], "savedWords")
	require.NoError(t, err)
	require.True(t, ok)

	var stored []map[string]any
	require.NoError(t, json.Unmarshal([]byte(raw), &stored))
	require.Len(t, stored, 1)
	assert.Equal(t, "test", stored[0]["word"])
}

func TestRouter_SearchNotFound(t *testing.T) {
	ts := newTestServer(t)

	resp, body := ts.do(t, http.MethodPost, "/api/search", `{"word":"qwxz"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "not_found", body["status"])
	assert.Equal(t, "Sorry, your word doesn't exist in the English language.", body["message"])

	resp, _ = ts.do(t, http.MethodPost, "/api/favorites/current", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRouter_SearchIsRateLimited(t *testing.T) {
	ts := newTestServer(t)

	for range 2 {
		resp, _ := ts.do(t, http.MethodPost, "/api/search", `{"word":"test"}`)
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}

	resp, _ := ts.do(t, http.MethodPost, "/api/search", `{"word":"test"}`)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("Retry-After"))

	// Reads are not limited.
	resp, _ = ts.do(t, http.MethodGet, "/api/result", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRouter_Preflight(t *testing.T) {
	ts := newTestServer(t)

	req, err := http.NewRequest(http.MethodOptions, ts.srv.URL+"/api/search", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://app.local")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "http://app.local", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.Empty(t, resp.Cookies())
}

func TestRouter_Health(t *testing.T) {
	ts := newTestServer(t)

	for _, path := range []string{"/live", "/ready", "/health"} {
		resp, body := ts.do(t, http.MethodGet, path, "")
		assert.Equal(t, http.StatusOK, resp.StatusCode, path)
		assert.Equal(t, "ok", body["status"], path)
	}
}

func TestOpenBackend_SQLite(t *testing.T) {
	cfg := testConfig("http://unused")
	cfg.Storage.Driver = config.DriverSQLite
	cfg.Storage.AutoMigrate = true
	cfg.SQLite.Path = t.TempDir() + "/wordbook.db"

	backend, err := OpenBackend(context.Background(), cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	t.Cleanup(func() { backend.Close() })

	require.NoError(t, backend.Ping(context.Background()))
}

func TestOpenBackend_Unsupported(t *testing.T) {
	cfg := testConfig("http://unused")
	cfg.Storage.Driver = "redis"

	_, err := OpenBackend(context.Background(), cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.Error(t, err)
}
