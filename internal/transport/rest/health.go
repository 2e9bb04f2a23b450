package rest

import (
	"context"
	"net/http"
	"time"
)

const probeTimeout = 3 * time.Second

// storagePinger is the readiness check for the session backing store.
type storagePinger interface {
	Ping(ctx context.Context) error
}

// sessionCounter reports how many browser sessions hold live state.
type sessionCounter interface {
	Len() int
}

// HealthHandler serves liveness, readiness and full health endpoints.
type HealthHandler struct {
	storage  storagePinger
	driver   string
	sessions sessionCounter
	version  string
}

// NewHealthHandler creates a HealthHandler. driver names the backing store
// in the health report.
func NewHealthHandler(storage storagePinger, driver string, sessions sessionCounter, version string) *HealthHandler {
	return &HealthHandler{storage: storage, driver: driver, sessions: sessions, version: version}
}

// HealthResponse is the JSON response for /live, /ready and /health.
type HealthResponse struct {
	Status     string                `json:"status"`
	Version    string                `json:"version,omitempty"`
	Sessions   *int                  `json:"sessions,omitempty"`
	Components map[string]CompStatus `json:"components,omitempty"`
	Timestamp  time.Time             `json:"timestamp"`
}

// CompStatus is the status of one dependency.
type CompStatus struct {
	Status  string `json:"status"`
	Driver  string `json:"driver,omitempty"`
	Latency string `json:"latency,omitempty"`
}

// Live is the liveness probe. Always 200.
func (h *HealthHandler) Live(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok", Timestamp: time.Now()})
}

// Ready is the readiness probe: 200 when the backing store answers, 503 otherwise.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), probeTimeout)
	defer cancel()

	if err := h.storage.Ping(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, HealthResponse{Status: "down", Timestamp: time.Now()})
		return
	}
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok", Timestamp: time.Now()})
}

// Health reports storage status with latency, the live session count and the
// build version.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), probeTimeout)
	defer cancel()

	start := time.Now()
	err := h.storage.Ping(ctx)
	latency := time.Since(start)

	storage := CompStatus{Status: "ok", Driver: h.driver, Latency: latency.String()}
	overall, code := "ok", http.StatusOK
	if err != nil {
		storage = CompStatus{Status: "down", Driver: h.driver}
		overall, code = "down", http.StatusServiceUnavailable
	}

	live := h.sessions.Len()
	writeJSON(w, code, HealthResponse{
		Status:     overall,
		Version:    h.version,
		Sessions:   &live,
		Components: map[string]CompStatus{"storage": storage},
		Timestamp:  time.Now(),
	})
}
