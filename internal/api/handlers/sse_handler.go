package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/zatekoja/wayfinder/internal/application/services"
	"github.com/zatekoja/wayfinder/internal/domain/entities"
	"github.com/zatekoja/wayfinder/internal/domain/providers"
)

const defaultHeartbeatInterval = 30 * time.Second

// SSEHandler streams a session's render commands to the browser
type SSEHandler struct {
	eventBus  providers.EventBus
	registry  *services.SessionRegistry
	heartbeat time.Duration

	clients map[string]map[chan *entities.MapEvent]bool // channel -> clients
	mu      sync.RWMutex
}

// NewSSEHandler creates a new SSE handler
func NewSSEHandler(eventBus providers.EventBus, registry *services.SessionRegistry) *SSEHandler {
	return &SSEHandler{
		eventBus:  eventBus,
		registry:  registry,
		heartbeat: defaultHeartbeatInterval,
		clients:   make(map[string]map[chan *entities.MapEvent]bool),
	}
}

// WithHeartbeat overrides the heartbeat interval
func (h *SSEHandler) WithHeartbeat(interval time.Duration) *SSEHandler {
	if interval > 0 {
		h.heartbeat = interval
	}
	return h
}

// StreamSession handles the SSE connection of one map session. The first
// event carries the current snapshot so a reconnecting client can resync.
// GET /api/stream/sessions/{id}
func (h *SSEHandler) StreamSession(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")
	session, err := h.registry.Get(sessionID)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		respondWithError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	channel := providers.GetSessionChannel(sessionID)
	eventChan, err := h.eventBus.Subscribe(ctx, channel)
	if err != nil {
		log.Error().Err(err).Str("channel", channel).Msg("Failed to subscribe to session channel")
		respondWithError(w, http.StatusServiceUnavailable, "event stream unavailable")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	clientChan := make(chan *entities.MapEvent, 64)
	h.registerClient(channel, clientChan)
	defer h.unregisterClient(channel, clientChan)

	view, err := session.View()
	if err != nil {
		// session closed between lookup and subscribe
		h.sendEvent(w, "closed", map[string]interface{}{"session_id": sessionID})
		flusher.Flush()
		return
	}
	h.sendEvent(w, "connected", view)
	flusher.Flush()

	go h.forwardEvents(ctx, eventChan, clientChan)

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Debug().Str("session_id", sessionID).Msg("Client disconnected from session stream")
			return
		case <-ticker.C:
			session.Touch()
			h.sendEvent(w, "heartbeat", map[string]interface{}{
				"timestamp": time.Now(),
			})
			flusher.Flush()
		case event := <-clientChan:
			if event == nil {
				continue
			}
			h.sendEvent(w, string(event.Type), event)
			flusher.Flush()
			if event.Type == entities.MapEventTypeDestroyed {
				return
			}
		}
	}
}

func (h *SSEHandler) forwardEvents(ctx context.Context, eventChan <-chan *entities.MapEvent, clientChan chan<- *entities.MapEvent) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-eventChan:
			if !ok {
				return
			}
			select {
			case clientChan <- event:
			default:
				log.Warn().Str("event_id", event.ID).Str("type", string(event.Type)).Msg("Stream client lagging, dropping event")
			}
		}
	}
}

func (h *SSEHandler) registerClient(channel string, clientChan chan *entities.MapEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.clients[channel] == nil {
		h.clients[channel] = make(map[chan *entities.MapEvent]bool)
	}
	h.clients[channel][clientChan] = true
}

func (h *SSEHandler) unregisterClient(channel string, clientChan chan *entities.MapEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if clients, exists := h.clients[channel]; exists {
		delete(clients, clientChan)
		if len(clients) == 0 {
			delete(h.clients, channel)
		}
	}
}

func (h *SSEHandler) sendEvent(w http.ResponseWriter, eventType string, data interface{}) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		log.Error().Err(err).Str("type", eventType).Msg("Failed to marshal event data")
		return
	}

	fmt.Fprintf(w, "event: %s\n", eventType)
	fmt.Fprintf(w, "data: %s\n\n", jsonData)
}

// GetClientCount returns the number of connected stream clients
func (h *SSEHandler) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	count := 0
	for _, clients := range h.clients {
		count += len(clients)
	}
	return count
}
