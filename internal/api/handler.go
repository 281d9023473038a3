package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/eugenenazirov/envyaml/internal/report"
	"github.com/eugenenazirov/envyaml/internal/storage"
)

type contextKey string

const requestIDContextKey contextKey = "requestID"

// Handler serves the stored configuration snapshot over HTTP.
type Handler struct {
	storage storage.Storage
	clock   func() time.Time
}

// HandlerOption configures Handler behaviour.
type HandlerOption func(*Handler)

// WithClock overrides the time source, primarily for tests.
func WithClock(clock func() time.Time) HandlerOption {
	return func(h *Handler) {
		h.clock = clock
	}
}

// NewHandler constructs a Handler reading from store.
func NewHandler(store storage.Storage, opts ...HandlerOption) *Handler {
	h := &Handler{
		storage: store,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	_ = r
	resp := healthResponse{
		Status:    "ok",
		Timestamp: h.clock(),
	}
	if snapshot, err := h.storage.Get(); err == nil {
		resp.ConfigLoadedAt = &snapshot.LoadedAt
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	snapshot, ok := h.snapshot(w, r)
	if !ok {
		return
	}

	known := snapshot.Config.Known()
	resp := configResponse{
		Path:     snapshot.Config.Path,
		LoadedAt: snapshot.LoadedAt,
		Known: knownFields{
			DatabaseURL: known.Database.URL,
			APIBaseURL:  known.API.BaseURL,
			LogLevel:    known.Logging.Level,
		},
		Values: report.Redact(snapshot.Config.Values),
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleGetValue(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimSpace(r.URL.Query().Get("path"))
	if path == "" {
		writeError(w, http.StatusBadRequest, "Invalid request", "path query parameter is required")
		return
	}

	snapshot, ok := h.snapshot(w, r)
	if !ok {
		return
	}

	value, found := snapshot.Config.Get(path)
	if !found {
		writeError(w, http.StatusNotFound, "Not found", "no value at "+path)
		return
	}

	key := path
	if idx := strings.LastIndex(path, "."); idx >= 0 {
		key = path[idx+1:]
	}
	writeJSON(w, http.StatusOK, valueResponse{
		Path:  path,
		Value: report.RedactValue(key, value),
	})
}

func (h *Handler) handleGetPlaceholders(w http.ResponseWriter, r *http.Request) {
	snapshot, ok := h.snapshot(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, snapshot.Summary)
}

func (h *Handler) snapshot(w http.ResponseWriter, r *http.Request) (storage.Snapshot, bool) {
	_ = r
	snapshot, err := h.storage.Get()
	if err != nil {
		if errors.Is(err, storage.ErrEmpty) {
			writeError(w, http.StatusServiceUnavailable, "Not ready", err.Error())
			return storage.Snapshot{}, false
		}
		writeInternalError(w, err)
		return storage.Snapshot{}, false
	}
	return snapshot, true
}

func requestIDFromContext(ctx context.Context) string {
	if v := ctx.Value(requestIDContextKey); v != nil {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

type knownFields struct {
	DatabaseURL string `json:"databaseUrl"`
	APIBaseURL  string `json:"apiBaseUrl"`
	LogLevel    string `json:"logLevel"`
}

type configResponse struct {
	Path     string         `json:"path"`
	LoadedAt time.Time      `json:"loadedAt"`
	Known    knownFields    `json:"known"`
	Values   map[string]any `json:"values"`
}

type valueResponse struct {
	Path  string `json:"path"`
	Value any    `json:"value"`
}

type healthResponse struct {
	Status         string     `json:"status"`
	Timestamp      time.Time  `json:"timestamp"`
	ConfigLoadedAt *time.Time `json:"configLoadedAt,omitempty"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if status != 0 {
		w.WriteHeader(status)
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message, details string) {
	writeJSON(w, status, errorResponse{
		Error:   message,
		Details: details,
	})
}

func writeInternalError(w http.ResponseWriter, err error) {
	writeError(w, http.StatusInternalServerError, "Internal error", err.Error())
}
