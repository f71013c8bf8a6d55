package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/zatekoja/wayfinder/internal/domain/entities"
	"github.com/zatekoja/wayfinder/internal/domain/providers"
	"github.com/zatekoja/wayfinder/internal/infrastructure/observability"
)

const defaultRouteTimeout = 10 * time.Second

// RouteOverlayManager keeps the origin/destination pair, fetches a route when
// both are set and keeps exactly one route line on the map.
//
// Every endpoint change clears the drawn line and the previous result before a
// new request is issued. Each request carries a generation; a completion from
// a superseded generation is dropped.
type RouteOverlayManager struct {
	provider    providers.DirectionsProvider
	adapter     *MapAdapter
	coordinator *SelectionCoordinator
	loop        *EventLoop
	metrics     *observability.Metrics
	timeout     time.Duration

	pair       entities.RoutePair
	path       []entities.Coordinates
	generation uint64
	inflight   sync.WaitGroup

	onChange func(entities.RoutePair)
}

// NewRouteOverlayManager creates a route manager. A nil provider disables fetching.
func NewRouteOverlayManager(
	provider providers.DirectionsProvider,
	adapter *MapAdapter,
	coordinator *SelectionCoordinator,
	loop *EventLoop,
	metrics *observability.Metrics,
	timeout time.Duration,
) *RouteOverlayManager {
	if timeout <= 0 {
		timeout = defaultRouteTimeout
	}
	return &RouteOverlayManager{
		provider:    provider,
		adapter:     adapter,
		coordinator: coordinator,
		loop:        loop,
		metrics:     metrics,
		timeout:     timeout,
	}
}

// OnChange registers the listener notified whenever the pair changes.
func (m *RouteOverlayManager) OnChange(fn func(entities.RoutePair)) {
	m.onChange = fn
}

// Pair returns the current origin/destination pair.
func (m *RouteOverlayManager) Pair() entities.RoutePair {
	return m.pair
}

// SetOrigin sets or clears (nil) the origin.
func (m *RouteOverlayManager) SetOrigin(place *entities.PlaceRecord) {
	m.pair.Origin = place
	m.refresh()
}

// SetDestination sets or clears (nil) the destination.
func (m *RouteOverlayManager) SetDestination(place *entities.PlaceRecord) {
	m.pair.Destination = place
	m.refresh()
}

// Swap exchanges origin and destination.
func (m *RouteOverlayManager) Swap() {
	m.pair.Origin, m.pair.Destination = m.pair.Destination, m.pair.Origin
	m.refresh()
}

// Reset clears both endpoints.
func (m *RouteOverlayManager) Reset() {
	m.pair.Origin = nil
	m.pair.Destination = nil
	m.refresh()
}

// Redraw draws the current route again, used once the map becomes ready.
func (m *RouteOverlayManager) Redraw() {
	if m.pair.RouteInfo != nil && len(m.path) > 0 {
		m.adapter.DrawRoute(m.path)
	}
}

// JumpToOrigin selects the origin place.
func (m *RouteOverlayManager) JumpToOrigin() bool {
	if m.pair.Origin == nil || m.coordinator == nil {
		return false
	}
	return m.coordinator.Select(m.pair.Origin.ID, SelectionSourceRoute)
}

// JumpToDestination selects the destination place.
func (m *RouteOverlayManager) JumpToDestination() bool {
	if m.pair.Destination == nil || m.coordinator == nil {
		return false
	}
	return m.coordinator.Select(m.pair.Destination.ID, SelectionSourceRoute)
}

// Wait blocks until in-flight requests have completed. It must not be called
// from inside the event loop.
func (m *RouteOverlayManager) Wait() {
	m.inflight.Wait()
}

func (m *RouteOverlayManager) refresh() {
	m.generation++
	m.adapter.ClearRoute()
	m.pair.RouteInfo = nil
	m.pair.ErrorMessage = ""
	m.path = nil
	m.notify()

	if !m.pair.Complete() || m.provider == nil {
		return
	}
	origin, destination := m.pair.Origin, m.pair.Destination
	if !origin.Mappable() || !destination.Mappable() {
		observability.ComponentLogger("routes").Debug().
			Str("origin", origin.ID).
			Str("destination", destination.ID).
			Msg("Skipping route for place without coordinates")
		return
	}

	gen := m.generation
	from, to := *origin.Coordinates, *destination.Coordinates
	m.inflight.Add(1)
	go func() {
		defer m.inflight.Done()
		ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
		defer cancel()

		ctx, span := observability.StartSpan(ctx, "route.fetch")
		defer span.End()

		observability.RecordRouteRequest(ctx, m.metrics)
		result, err := m.provider.Directions(ctx, from, to)
		observability.RecordError(span, err)

		m.loop.Do(func() {
			m.apply(ctx, gen, result, err)
		})
	}()
}

func (m *RouteOverlayManager) apply(ctx context.Context, gen uint64, result *entities.RouteResult, err error) {
	logger := observability.LoggerFromContext(ctx)
	if gen != m.generation {
		logger.Debug().Uint64("generation", gen).Msg("Discarding superseded route response")
		return
	}

	if err != nil {
		var failure *entities.RouteFailure
		if errors.As(err, &failure) {
			m.pair.ErrorMessage = RouteErrorMessage(failure.Code)
			observability.RecordRouteFailure(ctx, m.metrics, "provider")
			m.notify()
			return
		}
		// Transport failures only reach the log; the UI shows no route.
		logger.Warn().Err(err).Msg("Directions request failed")
		observability.RecordRouteFailure(ctx, m.metrics, "transport")
		return
	}

	if result == nil || len(result.Path) == 0 {
		m.pair.ErrorMessage = RouteErrorMessage(0)
		observability.RecordRouteFailure(ctx, m.metrics, "empty")
		m.notify()
		return
	}

	m.adapter.DrawRoute(result.Path)
	info := result.Summary
	m.pair.RouteInfo = &info
	m.path = result.Path
	m.notify()
}

func (m *RouteOverlayManager) notify() {
	if m.onChange != nil {
		m.onChange(m.pair)
	}
}
