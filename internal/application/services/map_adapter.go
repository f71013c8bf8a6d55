package services

import (
	"time"

	"github.com/rs/zerolog/log"
	"github.com/zatekoja/wayfinder/internal/domain/entities"
	"github.com/zatekoja/wayfinder/internal/domain/providers"
)

// DefaultHighlightDuration is how long a marker stays highlighted after it is opened.
const DefaultHighlightDuration = 700 * time.Millisecond

type placedMarker struct {
	handle     providers.MarkerHandle
	descriptor entities.MarkerDescriptor
}

// MapAdapter owns the map widget and its markers, overlay and route line.
//
// Until the widget has loaded and Initialize has completed, every operation
// other than Initialize is a silent no-op. The adapter is not safe for
// concurrent use; callers serialize through the session EventLoop, which is
// also where highlight timers re-enter.
type MapAdapter struct {
	widget providers.MapWidget
	loop   *EventLoop

	highlightDuration time.Duration

	initialized bool
	initPending bool
	destroyed   bool

	markers map[string]placedMarker
	placed  []entities.MarkerDescriptor

	openID         string
	highlightedID  string
	highlightTimer *time.Timer
	highlightGen   uint64

	polyline    providers.PolylineHandle
	hasPolyline bool

	onReady   []func()
	onSelect  func(placeID string)
	onDismiss func(placeID string)
}

// NewMapAdapter creates an adapter over the widget
func NewMapAdapter(widget providers.MapWidget, loop *EventLoop, highlightDuration time.Duration) *MapAdapter {
	if highlightDuration <= 0 {
		highlightDuration = DefaultHighlightDuration
	}
	if loop == nil {
		loop = NewEventLoop()
	}
	return &MapAdapter{
		widget:            widget,
		loop:              loop,
		highlightDuration: highlightDuration,
		markers:           make(map[string]placedMarker),
	}
}

// OnReady registers a callback fired once initialization completes.
func (a *MapAdapter) OnReady(fn func()) {
	a.onReady = append(a.onReady, fn)
}

// OnMarkerSelected registers the listener for a marker click that opened an overlay.
func (a *MapAdapter) OnMarkerSelected(fn func(placeID string)) {
	a.onSelect = fn
}

// OnOverlayDismissed registers the listener for a marker click that closed its own overlay.
func (a *MapAdapter) OnOverlayDismissed(fn func(placeID string)) {
	a.onDismiss = fn
}

// Initialize creates the map in the container. A second call is a no-op. When
// the widget is not loaded yet, creation is deferred to its load callback.
func (a *MapAdapter) Initialize(container string) {
	if a.destroyed || a.initialized || a.initPending {
		return
	}
	if !a.widget.Ready() {
		a.initPending = true
		a.widget.OnLoad(func() {
			if a.destroyed {
				return
			}
			a.createMap(container)
		})
		return
	}
	a.createMap(container)
}

func (a *MapAdapter) createMap(container string) {
	a.initPending = false
	if err := a.widget.CreateMap(container); err != nil {
		log.Warn().Err(err).Str("container", container).Msg("Failed to create map")
		return
	}
	a.initialized = true
	for _, fn := range a.onReady {
		fn()
	}
}

// Initialized reports whether the map exists.
func (a *MapAdapter) Initialized() bool {
	return a.initialized
}

// SetMarkers replaces every marker. The viewport is fitted to the new markers
// only when the set is non-empty and differs from the previous one.
func (a *MapAdapter) SetMarkers(descriptors []entities.MarkerDescriptor) {
	if !a.initialized {
		return
	}

	changed := !sameMarkerSet(a.placed, descriptors)
	openID := a.openID

	a.cancelHighlight()
	for id, m := range a.markers {
		if id == a.openID {
			a.widget.CloseInfoOverlay(m.handle)
		}
		a.widget.RemoveMarker(m.handle)
	}
	a.markers = make(map[string]placedMarker, len(descriptors))
	a.openID = ""

	for _, d := range descriptors {
		a.markers[d.PlaceID] = placedMarker{handle: a.widget.AddMarker(d), descriptor: d}
	}
	a.placed = append(a.placed[:0:0], descriptors...)

	if m, ok := a.markers[openID]; ok {
		a.widget.OpenInfoOverlay(m.handle, m.descriptor)
		a.openID = openID
	}

	if changed {
		if bounds, ok := entities.BoundsOf(descriptors); ok {
			a.widget.FitBounds(bounds)
		}
	}
}

// MarkerCount returns the number of markers on the map.
func (a *MapAdapter) MarkerCount() int {
	return len(a.markers)
}

// HasMarker reports whether a marker for the place is on the map.
func (a *MapAdapter) HasMarker(placeID string) bool {
	_, ok := a.markers[placeID]
	return ok
}

// OpenOverlayID returns the place whose overlay is open, or "".
func (a *MapAdapter) OpenOverlayID() string {
	return a.openID
}

// HighlightedID returns the place whose marker is animating, or "".
func (a *MapAdapter) HighlightedID() string {
	return a.highlightedID
}

// HandleMarkerClick toggles the clicked marker's overlay. Opening notifies
// the selection listener; closing the already open overlay notifies the
// dismiss listener.
func (a *MapAdapter) HandleMarkerClick(placeID string) {
	if !a.initialized {
		return
	}
	if _, ok := a.markers[placeID]; !ok {
		return
	}

	if a.openID == placeID {
		a.closeOverlay()
		a.cancelHighlight()
		if a.onDismiss != nil {
			a.onDismiss(placeID)
		}
		return
	}

	a.open(placeID)
	if a.onSelect != nil {
		a.onSelect(placeID)
	}
}

// HandleMapClick closes any open overlay and stops the highlight.
func (a *MapAdapter) HandleMapClick() {
	if !a.initialized {
		return
	}
	a.closeOverlay()
	a.cancelHighlight()
}

// Focus opens the place's overlay and highlights its marker. Focusing the
// place whose overlay is already open does nothing.
func (a *MapAdapter) Focus(placeID string) {
	if !a.initialized || a.openID == placeID {
		return
	}
	if _, ok := a.markers[placeID]; !ok {
		return
	}
	a.open(placeID)
}

// ClearFocus closes the overlay and stops the highlight.
func (a *MapAdapter) ClearFocus() {
	if !a.initialized {
		return
	}
	a.closeOverlay()
	a.cancelHighlight()
}

// DrawRoute replaces the route line with one through path.
func (a *MapAdapter) DrawRoute(path []entities.Coordinates) {
	if !a.initialized {
		return
	}
	a.ClearRoute()
	a.polyline = a.widget.DrawPolyline(path)
	a.hasPolyline = true
}

// ClearRoute removes the route line if one is drawn.
func (a *MapAdapter) ClearRoute() {
	if !a.initialized || !a.hasPolyline {
		return
	}
	a.widget.RemovePolyline(a.polyline)
	a.polyline = ""
	a.hasPolyline = false
}

// HasRoute reports whether a route line is drawn.
func (a *MapAdapter) HasRoute() bool {
	return a.hasPolyline
}

// Destroy releases markers, route line, timers and listeners.
func (a *MapAdapter) Destroy() {
	if a.destroyed {
		return
	}
	a.destroyed = true
	a.cancelHighlight()
	if a.initialized {
		a.closeOverlay()
		for _, m := range a.markers {
			a.widget.RemoveMarker(m.handle)
		}
		a.ClearRoute()
		a.widget.Destroy()
	}
	a.markers = make(map[string]placedMarker)
	a.placed = nil
	a.initialized = false
	a.onReady = nil
	a.onSelect = nil
	a.onDismiss = nil
}

func (a *MapAdapter) open(placeID string) {
	a.closeOverlay()
	m := a.markers[placeID]
	a.widget.OpenInfoOverlay(m.handle, m.descriptor)
	a.openID = placeID
	a.highlight(placeID)
}

func (a *MapAdapter) closeOverlay() {
	if a.openID == "" {
		return
	}
	if m, ok := a.markers[a.openID]; ok {
		a.widget.CloseInfoOverlay(m.handle)
	}
	a.openID = ""
}

func (a *MapAdapter) highlight(placeID string) {
	a.cancelHighlight()
	m := a.markers[placeID]
	a.widget.SetHighlight(m.handle, true)
	a.highlightedID = placeID

	a.highlightGen++
	gen := a.highlightGen
	a.highlightTimer = time.AfterFunc(a.highlightDuration, func() {
		a.loop.Do(func() {
			if a.highlightGen == gen {
				a.cancelHighlight()
			}
		})
	})
}

func (a *MapAdapter) cancelHighlight() {
	if a.highlightTimer != nil {
		a.highlightTimer.Stop()
		a.highlightTimer = nil
	}
	a.highlightGen++
	if a.highlightedID == "" {
		return
	}
	if m, ok := a.markers[a.highlightedID]; ok {
		a.widget.SetHighlight(m.handle, false)
	}
	a.highlightedID = ""
}

func sameMarkerSet(prev, next []entities.MarkerDescriptor) bool {
	if len(prev) != len(next) {
		return false
	}
	for i := range prev {
		if prev[i].PlaceID != next[i].PlaceID || prev[i].Position != next[i].Position {
			return false
		}
	}
	return true
}
