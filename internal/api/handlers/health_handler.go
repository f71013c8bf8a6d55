package handlers

import (
	"context"
	"net/http"
	"time"
)

// Pinger is a dependency the health check probes
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler reports liveness and dependency status.
type HealthHandler struct {
	sessions func() int
	streams  func() int
	deps     map[string]Pinger
}

func NewHealthHandler(sessions, streams func() int, deps map[string]Pinger) *HealthHandler {
	return &HealthHandler{sessions: sessions, streams: streams, deps: deps}
}

type healthResponse struct {
	Status       string            `json:"status"`
	Sessions     int               `json:"sessions"`
	Streams      int               `json:"streams"`
	Dependencies map[string]string `json:"dependencies,omitempty"`
}

// Health returns 503 when any dependency fails its ping.
// GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{Status: "ok"}
	if h.sessions != nil {
		resp.Sessions = h.sessions()
	}
	if h.streams != nil {
		resp.Streams = h.streams()
	}

	status := http.StatusOK
	if len(h.deps) > 0 {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		resp.Dependencies = make(map[string]string, len(h.deps))
		for name, dep := range h.deps {
			if err := dep.Ping(ctx); err != nil {
				resp.Dependencies[name] = err.Error()
				resp.Status = "degraded"
				status = http.StatusServiceUnavailable
				continue
			}
			resp.Dependencies[name] = "ok"
		}
	}
	respondWithJSON(w, status, resp)
}
