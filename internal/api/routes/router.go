package routes

import (
	"net/http"

	"github.com/zatekoja/wayfinder/internal/api/handlers"
	"github.com/zatekoja/wayfinder/internal/api/middleware"
	"github.com/zatekoja/wayfinder/internal/infrastructure/observability"
)

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	sessionHandler *handlers.SessionHandler
	sseHandler     *handlers.SSEHandler
	healthHandler  *handlers.HealthHandler

	allowedOrigins []string
	metrics        *observability.Metrics
}

// NewRouter creates a new router
func NewRouter(
	sessionHandler *handlers.SessionHandler,
	sseHandler *handlers.SSEHandler,
	healthHandler *handlers.HealthHandler,
	allowedOrigins []string,
	metrics *observability.Metrics,
) *Router {
	return &Router{
		mux:            http.NewServeMux(),
		sessionHandler: sessionHandler,
		sseHandler:     sseHandler,
		healthHandler:  healthHandler,
		allowedOrigins: allowedOrigins,
		metrics:        metrics,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {
	r.mux.HandleFunc("GET /health", r.healthHandler.Health)

	// Session lifecycle
	r.mux.HandleFunc("POST /api/sessions", r.sessionHandler.CreateSession)
	r.mux.HandleFunc("GET /api/sessions/{id}", r.sessionHandler.GetSession)
	r.mux.HandleFunc("DELETE /api/sessions/{id}", r.sessionHandler.DeleteSession)
	r.mux.HandleFunc("POST /api/sessions/{id}/map/loaded", r.sessionHandler.MapLoaded)

	// Results and pagination
	r.mux.HandleFunc("POST /api/sessions/{id}/search", r.sessionHandler.Search)
	r.mux.HandleFunc("POST /api/sessions/{id}/saved", r.sessionHandler.SavedPlaces)
	r.mux.HandleFunc("POST /api/sessions/{id}/page", r.sessionHandler.SetPage)

	// Selection
	r.mux.HandleFunc("POST /api/sessions/{id}/select", r.sessionHandler.Select)
	r.mux.HandleFunc("POST /api/sessions/{id}/dismiss", r.sessionHandler.Dismiss)
	r.mux.HandleFunc("POST /api/sessions/{id}/markers/{placeID}/click", r.sessionHandler.ClickMarker)
	r.mux.HandleFunc("POST /api/sessions/{id}/map/click", r.sessionHandler.ClickMap)

	// Route overlay
	r.mux.HandleFunc("POST /api/sessions/{id}/route/origin", r.sessionHandler.SetOrigin)
	r.mux.HandleFunc("POST /api/sessions/{id}/route/destination", r.sessionHandler.SetDestination)
	r.mux.HandleFunc("POST /api/sessions/{id}/route/origin/focus", r.sessionHandler.FocusOrigin)
	r.mux.HandleFunc("POST /api/sessions/{id}/route/destination/focus", r.sessionHandler.FocusDestination)
	r.mux.HandleFunc("POST /api/sessions/{id}/route/swap", r.sessionHandler.SwapRoute)
	r.mux.HandleFunc("DELETE /api/sessions/{id}/route", r.sessionHandler.ResetRoute)

	// Render command stream
	r.mux.HandleFunc("GET /api/stream/sessions/{id}", r.sseHandler.StreamSession)

	// Apply middleware in reverse order (last middleware wraps first)
	var handler http.Handler = r.mux
	handler = middleware.NoStore(handler)
	handler = middleware.LoggingMiddleware(handler)
	handler = middleware.ObservabilityMiddleware(r.metrics)(handler)
	handler = middleware.Compression(handler)
	handler = middleware.Recoverer(handler)
	handler = middleware.CORSMiddleware(r.allowedOrigins)(handler)

	return handler
}
