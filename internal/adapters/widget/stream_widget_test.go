package widget

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zatekoja/wayfinder/internal/adapters/events"
	"github.com/zatekoja/wayfinder/internal/domain/entities"
	"github.com/zatekoja/wayfinder/internal/domain/providers"
)

func subscribe(t *testing.T, bus providers.EventBus, sessionID string) <-chan *entities.MapEvent {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	ch, err := bus.Subscribe(ctx, providers.GetSessionChannel(sessionID))
	require.NoError(t, err)
	return ch
}

func next(t *testing.T, ch <-chan *entities.MapEvent) *entities.MapEvent {
	t.Helper()
	select {
	case e := <-ch:
		return e
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return nil
	}
}

func TestStreamWidget_LoadLifecycle(t *testing.T) {
	bus := events.NewMemoryEventBus()
	defer bus.Close()
	w := NewStreamWidget("s1", bus)

	assert.False(t, w.Ready())
	assert.Error(t, w.CreateMap("map"))

	fired := 0
	w.OnLoad(func() { fired++ })
	w.MarkLoaded()
	w.MarkLoaded()
	assert.True(t, w.Ready())
	assert.Equal(t, 1, fired)

	w.OnLoad(func() { fired++ })
	assert.Equal(t, 2, fired, "callbacks registered after load run immediately")
}

func TestStreamWidget_PublishesRenderCommands(t *testing.T) {
	bus := events.NewMemoryEventBus()
	defer bus.Close()
	ch := subscribe(t, bus, "s1")
	w := NewStreamWidget("s1", bus)
	w.MarkLoaded()

	require.NoError(t, w.CreateMap("map"))
	e := next(t, ch)
	assert.Equal(t, entities.MapEventTypeReady, e.Type)
	assert.Equal(t, "s1", e.SessionID)
	assert.Equal(t, "map", e.Payload["container"])

	marker := entities.MarkerDescriptor{PlaceID: "p1", Label: "Cafe", Position: entities.Coordinates{Lat: 37, Lng: 127}}
	handle := w.AddMarker(marker)
	e = next(t, ch)
	assert.Equal(t, entities.MapEventTypeMarkers, e.Type)
	assert.Equal(t, "add", e.Payload["op"])
	assert.Equal(t, string(handle), e.Payload["handle"])

	w.OpenInfoOverlay(handle, marker)
	e = next(t, ch)
	assert.Equal(t, entities.MapEventTypeOverlayOpened, e.Type)
	assert.Equal(t, "p1", e.Payload["place_id"])

	w.SetHighlight(handle, true)
	assert.Equal(t, entities.MapEventTypeHighlight, next(t, ch).Type)
	w.SetHighlight(handle, false)
	assert.Equal(t, entities.MapEventTypeHighlightCleared, next(t, ch).Type)

	line := w.DrawPolyline([]entities.Coordinates{{Lat: 37, Lng: 127}, {Lat: 37.1, Lng: 127.1}})
	assert.NotEqual(t, string(handle), string(line))
	assert.Equal(t, entities.MapEventTypePolylineDrawn, next(t, ch).Type)

	w.RemovePolyline(line)
	assert.Equal(t, entities.MapEventTypePolylineRemoved, next(t, ch).Type)

	w.Destroy()
	assert.Equal(t, entities.MapEventTypeDestroyed, next(t, ch).Type)
}

func TestStreamListView_PublishesListCommands(t *testing.T) {
	bus := events.NewMemoryEventBus()
	defer bus.Close()
	ch := subscribe(t, bus, "s1")
	v := NewStreamListView("s1", bus)

	v.ShowPage(entities.Page{Number: 1, Size: 10, TotalPages: 3, Total: 23})
	e := next(t, ch)
	assert.Equal(t, entities.MapEventTypeListPage, e.Type)
	assert.Equal(t, true, e.Payload["needs_pagination"])

	v.SetExpanded("p1", true)
	e = next(t, ch)
	assert.Equal(t, entities.MapEventTypeListExpanded, e.Type)
	assert.Equal(t, true, e.Payload["expanded"])

	v.ScrollIntoView("p1")
	assert.Equal(t, "p1", next(t, ch).Payload["place_id"])
	v.ResetScroll()
	assert.Equal(t, true, next(t, ch).Payload["top"])

	v.ShowRoute(entities.RoutePair{RouteInfo: &entities.RouteInfo{DistanceMeters: 800, DurationSeconds: 600}})
	e = next(t, ch)
	assert.Equal(t, entities.MapEventTypeRouteUpdated, e.Type)
	summary, ok := e.Payload["summary"].(*entities.RouteSummaryView)
	require.True(t, ok)
	assert.Equal(t, 10, summary.WalkingMinutes)
}

func TestStreamWidget_NilBusIsSilent(t *testing.T) {
	w := NewStreamWidget("s1", nil)
	w.MarkLoaded()
	assert.NoError(t, w.CreateMap("map"))
	w.Destroy()
}
