package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/zatekoja/wayfinder/internal/domain/entities"
	"github.com/zatekoja/wayfinder/internal/domain/providers"
)

// fakeWidget records every call the adapter makes.
type fakeWidget struct {
	mu sync.Mutex

	ready   bool
	onLoad  []func()
	created []string
	calls   []string

	nextHandle  int
	markers     map[providers.MarkerHandle]string
	polylines   map[providers.PolylineHandle][]entities.Coordinates
	overlays    []string
	highlighted map[string]bool
	fits        []entities.Bounds
	destroyed   bool
}

func newFakeWidget(ready bool) *fakeWidget {
	return &fakeWidget{
		ready:       ready,
		markers:     make(map[providers.MarkerHandle]string),
		polylines:   make(map[providers.PolylineHandle][]entities.Coordinates),
		highlighted: make(map[string]bool),
	}
}

func (w *fakeWidget) record(call string) {
	w.calls = append(w.calls, call)
}

func (w *fakeWidget) Ready() bool { return w.ready }

func (w *fakeWidget) OnLoad(fn func()) { w.onLoad = append(w.onLoad, fn) }

func (w *fakeWidget) MarkLoaded() {
	w.ready = true
	for _, fn := range w.onLoad {
		fn()
	}
	w.onLoad = nil
}

func (w *fakeWidget) CreateMap(container string) error {
	w.record("create")
	w.created = append(w.created, container)
	return nil
}

func (w *fakeWidget) AddMarker(m entities.MarkerDescriptor) providers.MarkerHandle {
	w.record("add:" + m.PlaceID)
	w.nextHandle++
	h := providers.MarkerHandle(fmt.Sprintf("m%d", w.nextHandle))
	w.markers[h] = m.PlaceID
	return h
}

func (w *fakeWidget) RemoveMarker(h providers.MarkerHandle) {
	w.record("remove:" + w.markers[h])
	delete(w.markers, h)
}

func (w *fakeWidget) OpenInfoOverlay(h providers.MarkerHandle, m entities.MarkerDescriptor) {
	w.record("open:" + m.PlaceID)
	w.overlays = append(w.overlays, m.PlaceID)
}

func (w *fakeWidget) CloseInfoOverlay(h providers.MarkerHandle) {
	w.record("close:" + w.markers[h])
}

func (w *fakeWidget) SetHighlight(h providers.MarkerHandle, on bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.highlighted[w.markers[h]] = on
}

func (w *fakeWidget) isHighlighted(placeID string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.highlighted[placeID]
}

func (w *fakeWidget) FitBounds(b entities.Bounds) {
	w.record("fit")
	w.fits = append(w.fits, b)
}

func (w *fakeWidget) DrawPolyline(path []entities.Coordinates) providers.PolylineHandle {
	w.record("draw")
	w.nextHandle++
	h := providers.PolylineHandle(fmt.Sprintf("p%d", w.nextHandle))
	w.polylines[h] = path
	return h
}

func (w *fakeWidget) RemovePolyline(h providers.PolylineHandle) {
	w.record("erase")
	delete(w.polylines, h)
}

func (w *fakeWidget) Destroy() {
	w.record("destroy")
	w.destroyed = true
}

func (w *fakeWidget) markerCount() int { return len(w.markers) }

func (w *fakeWidget) polylineCount() int { return len(w.polylines) }

func (w *fakeWidget) resetCalls() { w.calls = nil }

// fakeList records list render commands.
type fakeList struct {
	pages    []entities.Page
	expanded map[string]bool
	scrolled []string
	resets   int
	routes   []entities.RoutePair
}

func newFakeList() *fakeList {
	return &fakeList{expanded: make(map[string]bool)}
}

func (l *fakeList) ShowPage(page entities.Page) { l.pages = append(l.pages, page) }

func (l *fakeList) SetExpanded(placeID string, expanded bool) { l.expanded[placeID] = expanded }

func (l *fakeList) ScrollIntoView(placeID string) { l.scrolled = append(l.scrolled, placeID) }

func (l *fakeList) ResetScroll() { l.resets++ }

func (l *fakeList) ShowRoute(route entities.RoutePair) { l.routes = append(l.routes, route) }

func (l *fakeList) lastPage() entities.Page {
	if len(l.pages) == 0 {
		return entities.Page{}
	}
	return l.pages[len(l.pages)-1]
}

// MockDirectionsProvider is a testify mock of providers.DirectionsProvider.
type MockDirectionsProvider struct {
	mock.Mock
}

func (m *MockDirectionsProvider) Directions(ctx context.Context, origin, destination entities.Coordinates) (*entities.RouteResult, error) {
	args := m.Called(ctx, origin, destination)
	result, _ := args.Get(0).(*entities.RouteResult)
	return result, args.Error(1)
}

// gatedDirections blocks each call until its origin is released.
type gatedDirections struct {
	mu      sync.Mutex
	gates   map[entities.Coordinates]chan struct{}
	results map[entities.Coordinates]*entities.RouteResult
}

func newGatedDirections() *gatedDirections {
	return &gatedDirections{
		gates:   make(map[entities.Coordinates]chan struct{}),
		results: make(map[entities.Coordinates]*entities.RouteResult),
	}
}

func (g *gatedDirections) gate(origin entities.Coordinates, result *entities.RouteResult) chan struct{} {
	g.mu.Lock()
	defer g.mu.Unlock()
	ch := make(chan struct{})
	g.gates[origin] = ch
	g.results[origin] = result
	return ch
}

func (g *gatedDirections) answer(origin entities.Coordinates, result *entities.RouteResult) {
	close(g.gate(origin, result))
}

func (g *gatedDirections) Directions(ctx context.Context, origin, _ entities.Coordinates) (*entities.RouteResult, error) {
	g.mu.Lock()
	ch := g.gates[origin]
	result := g.results[origin]
	g.mu.Unlock()
	if ch != nil {
		<-ch
	}
	return result, nil
}

// MockPlaceSearchProvider is a testify mock of providers.PlaceSearchProvider.
type MockPlaceSearchProvider struct {
	mock.Mock
}

func (m *MockPlaceSearchProvider) SearchKeyword(ctx context.Context, keyword, cursor string) (*providers.KeywordSearchPage, error) {
	args := m.Called(ctx, keyword, cursor)
	page, _ := args.Get(0).(*providers.KeywordSearchPage)
	return page, args.Error(1)
}

// MockSavedPlaceRepository is a testify mock of repositories.SavedPlaceRepository.
type MockSavedPlaceRepository struct {
	mock.Mock
}

func (m *MockSavedPlaceRepository) ListByCategory(ctx context.Context, token, categoryID string) ([]entities.SavedPlacePayload, error) {
	args := m.Called(ctx, token, categoryID)
	payloads, _ := args.Get(0).([]entities.SavedPlacePayload)
	return payloads, args.Error(1)
}

// MockTranslationProvider is a testify mock of providers.TranslationProvider.
type MockTranslationProvider struct {
	mock.Mock
}

func (m *MockTranslationProvider) Translate(ctx context.Context, texts []string, targetLang string) ([]string, error) {
	args := m.Called(ctx, texts, targetLang)
	out, _ := args.Get(0).([]string)
	return out, args.Error(1)
}

func place(id string, lat, lng float64) entities.PlaceRecord {
	return entities.PlaceRecord{
		ID:          id,
		DisplayName: "Place " + id,
		Coordinates: &entities.Coordinates{Lat: lat, Lng: lng},
	}
}

func listOnlyPlace(id string) entities.PlaceRecord {
	return entities.PlaceRecord{ID: id, DisplayName: "Place " + id}
}

// places builds n mappable records with ids p0..p(n-1).
func places(n int) []entities.PlaceRecord {
	out := make([]entities.PlaceRecord, n)
	for i := range out {
		out[i] = place(fmt.Sprintf("p%d", i), 37.5+float64(i)*0.001, 127.0+float64(i)*0.001)
	}
	return out
}
