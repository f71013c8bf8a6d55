package services

import (
	"context"
	"sync"
	"time"

	"github.com/zatekoja/wayfinder/internal/domain/entities"
	"github.com/zatekoja/wayfinder/internal/domain/providers"
	"github.com/zatekoja/wayfinder/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/wayfinder/pkg/errors"
)

// MapSessionDeps are the collaborators of one map session
type MapSessionDeps struct {
	Widget            providers.MapWidget
	List              providers.ListView
	Directions        providers.DirectionsProvider
	Search            *PlaceSearchService
	Metrics           *observability.Metrics
	PageSize          int
	HighlightDuration time.Duration
	RouteTimeout      time.Duration
}

// SessionView is a snapshot of a session's state
type SessionView struct {
	ID              string                     `json:"id"`
	MapReady        bool                       `json:"map_ready"`
	Page            entities.Page              `json:"page"`
	NeedsPagination bool                       `json:"needs_pagination"`
	SelectedID      string                     `json:"selected_id,omitempty"`
	ExpandedID      string                     `json:"expanded_id,omitempty"`
	OpenOverlayID   string                     `json:"open_overlay_id,omitempty"`
	MarkerCount     int                        `json:"marker_count"`
	Route           entities.RoutePair         `json:"route"`
	RouteSummary    *entities.RouteSummaryView `json:"route_summary,omitempty"`
}

// MapSession keeps the result list, the markers, the selection and the
// route of one browser map consistent. Every exported method is safe for
// concurrent use; all state changes run on the session's event loop.
type MapSession struct {
	id   string
	loop *EventLoop

	pager       *PaginationController
	projector   *MarkerProjector
	adapter     *MapAdapter
	coordinator *SelectionCoordinator
	routes      *RouteOverlayManager
	search      *PlaceSearchService
	list        providers.ListView
	loader      providers.LoadNotifier
	metrics     *observability.Metrics

	searchGen uint64
	searches  sync.WaitGroup

	lastSeenMu sync.Mutex
	lastSeen   time.Time
}

// NewMapSession wires the session components together
func NewMapSession(id string, deps MapSessionDeps) *MapSession {
	loop := NewEventLoop()
	pager := NewPaginationController(deps.PageSize)
	adapter := NewMapAdapter(deps.Widget, loop, deps.HighlightDuration)

	s := &MapSession{
		id:        id,
		loop:      loop,
		pager:     pager,
		projector: NewMarkerProjector(),
		adapter:   adapter,
		search:    deps.Search,
		list:      deps.List,
		metrics:   deps.Metrics,
		lastSeen:  time.Now(),
	}
	if loader, ok := deps.Widget.(providers.LoadNotifier); ok {
		s.loader = loader
	}

	// Rendering must run before the coordinator clears the selection so the
	// new page's markers exist when a selection is re-established.
	pager.OnPageChange(s.renderPage)
	s.coordinator = NewSelectionCoordinator(pager, adapter, deps.List)
	s.routes = NewRouteOverlayManager(deps.Directions, adapter, s.coordinator, loop, deps.Metrics, deps.RouteTimeout)
	s.routes.OnChange(func(pair entities.RoutePair) {
		if s.list != nil {
			s.list.ShowRoute(pair)
		}
	})
	adapter.OnReady(func() {
		adapter.SetMarkers(s.projector.Project(pager.Page().Records))
		s.routes.Redraw()
	})
	return s
}

// ID returns the session id.
func (s *MapSession) ID() string {
	return s.id
}

// Touch records activity for idle expiry.
func (s *MapSession) Touch() {
	s.lastSeenMu.Lock()
	s.lastSeen = time.Now()
	s.lastSeenMu.Unlock()
}

// LastSeen returns the time of the last activity.
func (s *MapSession) LastSeen() time.Time {
	s.lastSeenMu.Lock()
	defer s.lastSeenMu.Unlock()
	return s.lastSeen
}

// InitializeMap creates the map in the container, deferred until the widget loads.
func (s *MapSession) InitializeMap(container string) error {
	return s.do(func() error {
		s.adapter.Initialize(container)
		return nil
	})
}

// WidgetLoaded signals that the widget script finished loading.
func (s *MapSession) WidgetLoaded() error {
	return s.do(func() error {
		if s.loader != nil {
			s.loader.MarkLoaded()
		}
		return nil
	})
}

// SetResults replaces the result set and shows its first page.
func (s *MapSession) SetResults(records []entities.PlaceRecord) error {
	return s.do(func() error {
		s.searchGen++
		s.pager.SetRecords(records)
		return nil
	})
}

// Search runs a keyword search and shows the result unless a newer search
// was started meanwhile. It returns the number of places found.
func (s *MapSession) Search(ctx context.Context, keyword string) (int, error) {
	return s.runSearch(ctx, func(ctx context.Context) ([]entities.PlaceRecord, error) {
		return s.search.SearchAll(ctx, keyword)
	})
}

// SearchWizard searches the wizard's region and category.
func (s *MapSession) SearchWizard(ctx context.Context, region string, category entities.PlaceCategory) (int, error) {
	return s.runSearch(ctx, func(ctx context.Context) ([]entities.PlaceRecord, error) {
		return s.search.SearchWizard(ctx, region, category)
	})
}

// LoadSavedPlaces shows the places of a saved category.
func (s *MapSession) LoadSavedPlaces(ctx context.Context, token, categoryID string) (int, error) {
	return s.runSearch(ctx, func(ctx context.Context) ([]entities.PlaceRecord, error) {
		return s.search.SavedPlaces(ctx, token, categoryID)
	})
}

func (s *MapSession) runSearch(ctx context.Context, fetch func(context.Context) ([]entities.PlaceRecord, error)) (int, error) {
	if s.search == nil {
		return 0, apperrors.NewInternalError("place search not configured", nil)
	}

	var gen uint64
	if err := s.do(func() error {
		s.searchGen++
		gen = s.searchGen
		return nil
	}); err != nil {
		return 0, err
	}

	s.searches.Add(1)
	defer s.searches.Done()

	records, err := fetch(ctx)
	if err != nil {
		return 0, err
	}

	applied := false
	if err := s.do(func() error {
		if gen != s.searchGen {
			return nil
		}
		applied = true
		s.pager.SetRecords(records)
		return nil
	}); err != nil {
		return 0, err
	}
	if !applied {
		observability.LoggerFromContext(ctx).Debug().Str("session_id", s.id).Msg("Discarding superseded search result")
	}
	return len(records), nil
}

// GoToPage switches to the page, clamped to the available range.
func (s *MapSession) GoToPage(page int) error {
	return s.do(func() error {
		s.pager.SetPage(ClampPage(page, s.pager.TotalPages()))
		return nil
	})
}

// Select selects a place from the list.
func (s *MapSession) Select(placeID string) error {
	return s.do(func() error {
		if !s.coordinator.Select(placeID, SelectionSourceList) {
			return apperrors.NewNotFoundError("place not in results: " + placeID)
		}
		return nil
	})
}

// Dismiss closes the detail view.
func (s *MapSession) Dismiss() error {
	return s.do(func() error {
		s.coordinator.Clear()
		return nil
	})
}

// ClickMarker forwards a marker click from the map.
func (s *MapSession) ClickMarker(placeID string) error {
	return s.do(func() error {
		s.adapter.HandleMarkerClick(placeID)
		return nil
	})
}

// ClickMap forwards a click on an empty map area.
func (s *MapSession) ClickMap() error {
	return s.do(func() error {
		s.adapter.HandleMapClick()
		return nil
	})
}

// SetOrigin sets the route origin to a place of the results; "" clears it.
func (s *MapSession) SetOrigin(placeID string) error {
	return s.do(func() error {
		place, err := s.lookup(placeID)
		if err != nil {
			return err
		}
		s.routes.SetOrigin(place)
		return nil
	})
}

// SetDestination sets the route destination to a place of the results; "" clears it.
func (s *MapSession) SetDestination(placeID string) error {
	return s.do(func() error {
		place, err := s.lookup(placeID)
		if err != nil {
			return err
		}
		s.routes.SetDestination(place)
		return nil
	})
}

// SwapRoute exchanges origin and destination.
func (s *MapSession) SwapRoute() error {
	return s.do(func() error {
		s.routes.Swap()
		return nil
	})
}

// ResetRoute clears both route endpoints.
func (s *MapSession) ResetRoute() error {
	return s.do(func() error {
		s.routes.Reset()
		return nil
	})
}

// JumpToOrigin selects the route origin.
func (s *MapSession) JumpToOrigin() error {
	return s.do(func() error {
		set := s.routes.Pair().Origin != nil
		return jumpError("origin", set, s.routes.JumpToOrigin())
	})
}

// JumpToDestination selects the route destination.
func (s *MapSession) JumpToDestination() error {
	return s.do(func() error {
		set := s.routes.Pair().Destination != nil
		return jumpError("destination", set, s.routes.JumpToDestination())
	})
}

// jumpError tells an unset endpoint apart from one that a newer result set
// no longer contains.
func jumpError(endpoint string, set, selected bool) error {
	switch {
	case selected:
		return nil
	case !set:
		return apperrors.NewNotFoundError(endpoint + " not set")
	default:
		return apperrors.NewNotFoundError(endpoint + " not in current results")
	}
}

// View returns a snapshot of the session.
func (s *MapSession) View() (SessionView, error) {
	var view SessionView
	err := s.do(func() error {
		pair := s.routes.Pair()
		view = SessionView{
			ID:              s.id,
			MapReady:        s.adapter.Initialized(),
			Page:            s.pager.Page(),
			NeedsPagination: s.pager.NeedsPagination(),
			SelectedID:      s.coordinator.SelectedID(),
			ExpandedID:      s.coordinator.ExpandedID(),
			OpenOverlayID:   s.adapter.OpenOverlayID(),
			MarkerCount:     s.adapter.MarkerCount(),
			Route:           pair,
			RouteSummary:    pair.Summary(),
		}
		return nil
	})
	return view, err
}

// Wait blocks until in-flight searches and route requests have completed.
func (s *MapSession) Wait() {
	s.searches.Wait()
	s.routes.Wait()
}

// Close destroys the map. Later calls on the session fail with NOT_FOUND and
// late network completions are dropped.
func (s *MapSession) Close() {
	s.loop.Close(s.adapter.Destroy)
}

func (s *MapSession) renderPage(page entities.Page) {
	if s.list != nil {
		s.list.ResetScroll()
		s.list.ShowPage(page)
	}
	s.adapter.SetMarkers(s.projector.Project(page.Records))
}

func (s *MapSession) lookup(placeID string) (*entities.PlaceRecord, error) {
	if placeID == "" {
		return nil, nil
	}
	place, ok := s.pager.Find(placeID)
	if !ok {
		return nil, apperrors.NewNotFoundError("place not in results: " + placeID)
	}
	return &place, nil
}

func (s *MapSession) do(fn func() error) error {
	s.Touch()
	var err error
	if !s.loop.Do(func() { err = fn() }) {
		return apperrors.NewNotFoundError("session closed: " + s.id)
	}
	return err
}
