package widget

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/zatekoja/wayfinder/internal/domain/entities"
	"github.com/zatekoja/wayfinder/internal/domain/providers"
)

const defaultPublishTimeout = 2 * time.Second

// StreamWidget implements MapWidget by publishing render commands for the
// browser on the session's event channel. It becomes ready once the browser
// reports that its map script has loaded.
type StreamWidget struct {
	sessionID string
	channel   string
	bus       providers.EventBus
	timeout   time.Duration

	ready  bool
	onLoad []func()
	nextID int
}

var (
	_ providers.MapWidget    = (*StreamWidget)(nil)
	_ providers.LoadNotifier = (*StreamWidget)(nil)
)

// NewStreamWidget creates a widget publishing to the session channel
func NewStreamWidget(sessionID string, bus providers.EventBus) *StreamWidget {
	return &StreamWidget{
		sessionID: sessionID,
		channel:   providers.GetSessionChannel(sessionID),
		bus:       bus,
		timeout:   defaultPublishTimeout,
	}
}

// Ready reports whether the browser has loaded the map script.
func (w *StreamWidget) Ready() bool {
	return w.ready
}

// OnLoad registers a callback for the load acknowledgement.
func (w *StreamWidget) OnLoad(fn func()) {
	if w.ready {
		fn()
		return
	}
	w.onLoad = append(w.onLoad, fn)
}

// MarkLoaded records the load acknowledgement and fires pending callbacks.
func (w *StreamWidget) MarkLoaded() {
	if w.ready {
		return
	}
	w.ready = true
	callbacks := w.onLoad
	w.onLoad = nil
	for _, fn := range callbacks {
		fn()
	}
}

// CreateMap asks the browser to mount the map in the container.
func (w *StreamWidget) CreateMap(container string) error {
	if !w.ready {
		return fmt.Errorf("map widget not loaded")
	}
	w.publish(entities.MapEventTypeReady, map[string]interface{}{"container": container})
	return nil
}

// AddMarker places a marker and returns its handle.
func (w *StreamWidget) AddMarker(marker entities.MarkerDescriptor) providers.MarkerHandle {
	handle := w.newHandle("marker")
	w.publish(entities.MapEventTypeMarkers, map[string]interface{}{
		"op":     "add",
		"handle": handle,
		"marker": marker,
	})
	return providers.MarkerHandle(handle)
}

// RemoveMarker removes a marker.
func (w *StreamWidget) RemoveMarker(handle providers.MarkerHandle) {
	w.publish(entities.MapEventTypeMarkers, map[string]interface{}{
		"op":     "remove",
		"handle": string(handle),
	})
}

// OpenInfoOverlay opens the detail overlay above a marker.
func (w *StreamWidget) OpenInfoOverlay(handle providers.MarkerHandle, marker entities.MarkerDescriptor) {
	w.publish(entities.MapEventTypeOverlayOpened, map[string]interface{}{
		"handle":   string(handle),
		"place_id": marker.PlaceID,
		"label":    marker.Label,
	})
}

// CloseInfoOverlay closes the overlay of a marker.
func (w *StreamWidget) CloseInfoOverlay(handle providers.MarkerHandle) {
	w.publish(entities.MapEventTypeOverlayClosed, map[string]interface{}{"handle": string(handle)})
}

// SetHighlight starts or stops the marker animation.
func (w *StreamWidget) SetHighlight(handle providers.MarkerHandle, on bool) {
	eventType := entities.MapEventTypeHighlightCleared
	if on {
		eventType = entities.MapEventTypeHighlight
	}
	w.publish(eventType, map[string]interface{}{"handle": string(handle)})
}

// FitBounds moves the viewport over the bounds.
func (w *StreamWidget) FitBounds(bounds entities.Bounds) {
	w.publish(entities.MapEventTypeFitBounds, map[string]interface{}{"bounds": bounds})
}

// DrawPolyline draws a route line and returns its handle.
func (w *StreamWidget) DrawPolyline(path []entities.Coordinates) providers.PolylineHandle {
	handle := w.newHandle("polyline")
	w.publish(entities.MapEventTypePolylineDrawn, map[string]interface{}{
		"handle": handle,
		"path":   path,
	})
	return providers.PolylineHandle(handle)
}

// RemovePolyline removes a route line.
func (w *StreamWidget) RemovePolyline(handle providers.PolylineHandle) {
	w.publish(entities.MapEventTypePolylineRemoved, map[string]interface{}{"handle": string(handle)})
}

// Destroy tears the browser map down.
func (w *StreamWidget) Destroy() {
	w.onLoad = nil
	w.publish(entities.MapEventTypeDestroyed, nil)
}

func (w *StreamWidget) newHandle(kind string) string {
	w.nextID++
	return fmt.Sprintf("%s-%d", kind, w.nextID)
}

func (w *StreamWidget) publish(eventType entities.MapEventType, payload map[string]interface{}) {
	publish(w.bus, w.channel, w.sessionID, w.timeout, eventType, payload)
}

func publish(bus providers.EventBus, channel, sessionID string, timeout time.Duration, eventType entities.MapEventType, payload map[string]interface{}) {
	if bus == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := bus.Publish(ctx, channel, entities.NewMapEvent(sessionID, eventType, payload)); err != nil {
		log.Warn().Err(err).Str("session_id", sessionID).Str("event", string(eventType)).Msg("Failed to publish map event")
	}
}
