package providers

import (
	"github.com/zatekoja/wayfinder/internal/domain/entities"
)

// MarkerHandle identifies a marker placed on a widget.
type MarkerHandle string

// PolylineHandle identifies a polyline drawn on a widget.
type PolylineHandle string

// MapWidget is the rendering surface behind the map adapter. Only the adapter
// holds a widget; every other component goes through the adapter.
type MapWidget interface {
	// Ready reports whether the widget script has finished loading.
	Ready() bool
	// OnLoad registers a callback fired once when the widget becomes ready.
	OnLoad(fn func())

	CreateMap(container string) error
	AddMarker(marker entities.MarkerDescriptor) MarkerHandle
	RemoveMarker(handle MarkerHandle)
	OpenInfoOverlay(handle MarkerHandle, place entities.MarkerDescriptor)
	CloseInfoOverlay(handle MarkerHandle)
	SetHighlight(handle MarkerHandle, on bool)
	FitBounds(bounds entities.Bounds)
	DrawPolyline(path []entities.Coordinates) PolylineHandle
	RemovePolyline(handle PolylineHandle)
	Destroy()
}

// ListView receives list-side render commands from the map session.
type ListView interface {
	ShowPage(page entities.Page)
	SetExpanded(placeID string, expanded bool)
	ScrollIntoView(placeID string)
	ResetScroll()
	ShowRoute(route entities.RoutePair)
}

// LoadNotifier is implemented by widgets whose script load is signalled from
// outside, e.g. by the browser acknowledging it.
type LoadNotifier interface {
	MarkLoaded()
}
