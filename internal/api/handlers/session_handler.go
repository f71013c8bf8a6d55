package handlers

import (
	"net/http"
	"strings"

	"github.com/zatekoja/wayfinder/internal/application/services"
	"github.com/zatekoja/wayfinder/internal/domain/entities"
	"github.com/zatekoja/wayfinder/internal/infrastructure/observability"
)

const defaultMapContainer = "map"

// SessionHandler exposes map session operations to the browser client.
type SessionHandler struct {
	registry *services.SessionRegistry
}

func NewSessionHandler(registry *services.SessionRegistry) *SessionHandler {
	return &SessionHandler{registry: registry}
}

type createSessionRequest struct {
	Container string `json:"container" validate:"omitempty,max=64"`
}

type searchRequest struct {
	Keyword  string `json:"keyword" validate:"required_without=Region,omitempty,max=100"`
	Region   string `json:"region" validate:"required_without=Keyword,omitempty,max=50"`
	Category string `json:"category" validate:"required_with=Region,omitempty,oneof=food sights"`
}

type savedPlacesRequest struct {
	CategoryID string `json:"category_id" validate:"required,max=64"`
}

type pageRequest struct {
	Page int `json:"page" validate:"gte=1"`
}

type placeRequest struct {
	PlaceID string `json:"place_id" validate:"required,max=64"`
}

type routeEndpointRequest struct {
	// empty clears the endpoint
	PlaceID string `json:"place_id" validate:"omitempty,max=64"`
}

type searchResponse struct {
	Count   int                  `json:"count"`
	Session services.SessionView `json:"session"`
}

// CreateSession opens a map session and queues map creation in the container.
// POST /api/sessions
func (h *SessionHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := decodeJSON(r, &req, true); err != nil {
		respondWithAppError(w, r, err)
		return
	}
	container := req.Container
	if container == "" {
		container = defaultMapContainer
	}

	session := h.registry.Create(r.Context())
	if err := session.InitializeMap(container); err != nil {
		respondWithAppError(w, r, err)
		return
	}
	h.respondWithView(w, r, http.StatusCreated, session)
}

// GetSession returns the session snapshot.
// GET /api/sessions/{id}
func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	h.respondWithView(w, r, http.StatusOK, session)
}

// DeleteSession destroys the session's map.
// DELETE /api/sessions/{id}
func (h *SessionHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := h.registry.Close(r.Context(), r.PathValue("id")); err != nil {
		respondWithAppError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// MapLoaded acknowledges that the browser loaded the map script.
// POST /api/sessions/{id}/map/loaded
func (h *SessionHandler) MapLoaded(w http.ResponseWriter, r *http.Request) {
	h.apply(w, r, func(s *services.MapSession) error {
		return s.WidgetLoaded()
	})
}

// Search runs a keyword or wizard search and shows its first page.
// POST /api/sessions/{id}/search
func (h *SessionHandler) Search(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	var req searchRequest
	if err := decodeJSON(r, &req, false); err != nil {
		respondWithAppError(w, r, err)
		return
	}

	ctx := observability.WithSessionID(r.Context(), session.ID())
	var (
		count int
		err   error
	)
	if keyword := strings.TrimSpace(req.Keyword); keyword != "" {
		count, err = session.Search(ctx, keyword)
	} else {
		count, err = session.SearchWizard(ctx, req.Region, entities.PlaceCategory(req.Category))
	}
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	h.respondWithCount(w, r, session, count)
}

// SavedPlaces shows a saved category. The caller's bearer token is forwarded.
// POST /api/sessions/{id}/saved
func (h *SessionHandler) SavedPlaces(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	var req savedPlacesRequest
	if err := decodeJSON(r, &req, false); err != nil {
		respondWithAppError(w, r, err)
		return
	}

	ctx := observability.WithSessionID(r.Context(), session.ID())
	count, err := session.LoadSavedPlaces(ctx, bearerToken(r), req.CategoryID)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	h.respondWithCount(w, r, session, count)
}

// SetPage switches the visible page.
// POST /api/sessions/{id}/page
func (h *SessionHandler) SetPage(w http.ResponseWriter, r *http.Request) {
	var req pageRequest
	h.applyWithBody(w, r, &req, func(s *services.MapSession) error {
		return s.GoToPage(req.Page)
	})
}

// Select selects a place from the list.
// POST /api/sessions/{id}/select
func (h *SessionHandler) Select(w http.ResponseWriter, r *http.Request) {
	var req placeRequest
	h.applyWithBody(w, r, &req, func(s *services.MapSession) error {
		return s.Select(req.PlaceID)
	})
}

// Dismiss closes the detail view.
// POST /api/sessions/{id}/dismiss
func (h *SessionHandler) Dismiss(w http.ResponseWriter, r *http.Request) {
	h.apply(w, r, func(s *services.MapSession) error {
		return s.Dismiss()
	})
}

// ClickMarker forwards a marker click.
// POST /api/sessions/{id}/markers/{placeID}/click
func (h *SessionHandler) ClickMarker(w http.ResponseWriter, r *http.Request) {
	placeID := r.PathValue("placeID")
	h.apply(w, r, func(s *services.MapSession) error {
		return s.ClickMarker(placeID)
	})
}

// ClickMap forwards a click on an empty map area.
// POST /api/sessions/{id}/map/click
func (h *SessionHandler) ClickMap(w http.ResponseWriter, r *http.Request) {
	h.apply(w, r, func(s *services.MapSession) error {
		return s.ClickMap()
	})
}

// SetOrigin sets or clears the route origin.
// POST /api/sessions/{id}/route/origin
func (h *SessionHandler) SetOrigin(w http.ResponseWriter, r *http.Request) {
	var req routeEndpointRequest
	h.applyWithBody(w, r, &req, func(s *services.MapSession) error {
		return s.SetOrigin(req.PlaceID)
	})
}

// SetDestination sets or clears the route destination.
// POST /api/sessions/{id}/route/destination
func (h *SessionHandler) SetDestination(w http.ResponseWriter, r *http.Request) {
	var req routeEndpointRequest
	h.applyWithBody(w, r, &req, func(s *services.MapSession) error {
		return s.SetDestination(req.PlaceID)
	})
}

// SwapRoute exchanges origin and destination.
// POST /api/sessions/{id}/route/swap
func (h *SessionHandler) SwapRoute(w http.ResponseWriter, r *http.Request) {
	h.apply(w, r, func(s *services.MapSession) error {
		return s.SwapRoute()
	})
}

// ResetRoute clears both endpoints.
// DELETE /api/sessions/{id}/route
func (h *SessionHandler) ResetRoute(w http.ResponseWriter, r *http.Request) {
	h.apply(w, r, func(s *services.MapSession) error {
		return s.ResetRoute()
	})
}

// FocusOrigin selects the route origin in the list and on the map.
// POST /api/sessions/{id}/route/origin/focus
func (h *SessionHandler) FocusOrigin(w http.ResponseWriter, r *http.Request) {
	h.apply(w, r, func(s *services.MapSession) error {
		return s.JumpToOrigin()
	})
}

// FocusDestination selects the route destination in the list and on the map.
// POST /api/sessions/{id}/route/destination/focus
func (h *SessionHandler) FocusDestination(w http.ResponseWriter, r *http.Request) {
	h.apply(w, r, func(s *services.MapSession) error {
		return s.JumpToDestination()
	})
}

func (h *SessionHandler) session(w http.ResponseWriter, r *http.Request) (*services.MapSession, bool) {
	session, err := h.registry.Get(r.PathValue("id"))
	if err != nil {
		respondWithAppError(w, r, err)
		return nil, false
	}
	return session, true
}

func (h *SessionHandler) apply(w http.ResponseWriter, r *http.Request, fn func(*services.MapSession) error) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	if err := fn(session); err != nil {
		respondWithAppError(w, r, err)
		return
	}
	h.respondWithView(w, r, http.StatusOK, session)
}

func (h *SessionHandler) applyWithBody(w http.ResponseWriter, r *http.Request, req interface{}, fn func(*services.MapSession) error) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	if err := decodeJSON(r, req, false); err != nil {
		respondWithAppError(w, r, err)
		return
	}
	if err := fn(session); err != nil {
		respondWithAppError(w, r, err)
		return
	}
	h.respondWithView(w, r, http.StatusOK, session)
}

func (h *SessionHandler) respondWithView(w http.ResponseWriter, r *http.Request, status int, session *services.MapSession) {
	view, err := session.View()
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, status, view)
}

func (h *SessionHandler) respondWithCount(w http.ResponseWriter, r *http.Request, session *services.MapSession, count int) {
	view, err := session.View()
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, searchResponse{Count: count, Session: view})
}

func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if len(auth) > 7 && strings.EqualFold(auth[:7], "Bearer ") {
		return strings.TrimSpace(auth[7:])
	}
	return ""
}
