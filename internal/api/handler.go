package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/archesproject/arches-rdm-example-project/internal/config"
	"github.com/archesproject/arches-rdm-example-project/internal/env"
)

type contextKey string

const requestIDContextKey contextKey = "requestID"

// Handler serves a resolved settings namespace. The result is never modified
// after construction.
type Handler struct {
	result   *config.Result
	redacted config.Namespace
	sources  []env.Value
	webpack  config.WebpackConfig

	clock    func() time.Time
	loadedAt time.Time
}

// HandlerOption configures Handler behaviour.
type HandlerOption func(*Handler)

// WithClock overrides the time source, primarily for tests.
func WithClock(clock func() time.Time) HandlerOption {
	return func(h *Handler) {
		h.clock = clock
	}
}

// NewHandler constructs a Handler over a resolution result. Credentials are
// redacted once, up front.
func NewHandler(result *config.Result, opts ...HandlerOption) *Handler {
	h := &Handler{
		result:   result,
		redacted: config.Redact(result.Namespace),
		sources:  config.RedactSources(result.Sources),
		webpack:  config.Webpack(result.Settings),
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
	for _, opt := range opts {
		opt(h)
	}
	h.loadedAt = h.clock()
	return h
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	resp := healthResponse{
		Status:    "ok",
		Timestamp: h.clock(),
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleGetSettings(w http.ResponseWriter, _ *http.Request) {
	resp := settingsResponse{
		Layers:   h.result.Layers,
		LoadedAt: h.loadedAt,
		Settings: h.redacted,
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleGetSetting(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	value, ok := h.redacted[name]
	if !ok {
		writeError(w, http.StatusNotFound, "Unknown setting", name+" is not defined")
		return
	}
	writeJSON(w, http.StatusOK, settingResponse{Name: name, Value: value})
}

func (h *Handler) handleGetSources(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, sourcesResponse{Sources: h.sources})
}

func (h *Handler) handleGetWebpack(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.webpack)
}

func requestIDFromContext(ctx context.Context) string {
	if v := ctx.Value(requestIDContextKey); v != nil {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

type healthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

type settingsResponse struct {
	Layers   []string         `json:"layers"`
	LoadedAt time.Time        `json:"loadedAt"`
	Settings config.Namespace `json:"settings"`
}

type settingResponse struct {
	Name  string `json:"name"`
	Value any    `json:"value"`
}

type sourcesResponse struct {
	Sources []env.Value `json:"sources"`
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
