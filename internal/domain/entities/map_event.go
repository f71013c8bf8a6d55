package entities

import (
	"time"

	"github.com/google/uuid"
)

// MapEventType represents the type of render command sent to the browser
type MapEventType string

const (
	MapEventTypeReady            MapEventType = "map.ready"
	MapEventTypeMarkers          MapEventType = "map.markers"
	MapEventTypeFitBounds        MapEventType = "map.fit_bounds"
	MapEventTypeOverlayOpened    MapEventType = "map.overlay_opened"
	MapEventTypeOverlayClosed    MapEventType = "map.overlay_closed"
	MapEventTypeHighlight        MapEventType = "map.highlight"
	MapEventTypeHighlightCleared MapEventType = "map.highlight_cleared"
	MapEventTypePolylineDrawn    MapEventType = "map.polyline_drawn"
	MapEventTypePolylineRemoved  MapEventType = "map.polyline_removed"
	MapEventTypeDestroyed        MapEventType = "map.destroyed"
	MapEventTypeListPage         MapEventType = "list.page"
	MapEventTypeListExpanded     MapEventType = "list.expanded"
	MapEventTypeListScroll       MapEventType = "list.scroll"
	MapEventTypeRouteUpdated     MapEventType = "route.updated"
	MapEventTypeSearchCompleted  MapEventType = "search.completed"
)

// MapEvent is a render command for the browser of one map session
type MapEvent struct {
	ID        string                 `json:"id"`
	SessionID string                 `json:"session_id"`
	Type      MapEventType           `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Payload   map[string]interface{} `json:"payload,omitempty"`
}

// NewMapEvent creates a new map event
func NewMapEvent(sessionID string, eventType MapEventType, payload map[string]interface{}) *MapEvent {
	return &MapEvent{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		Type:      eventType,
		Timestamp: time.Now(),
		Payload:   payload,
	}
}
