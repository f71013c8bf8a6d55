package widget

import (
	"time"

	"github.com/zatekoja/wayfinder/internal/domain/entities"
	"github.com/zatekoja/wayfinder/internal/domain/providers"
)

// StreamListView implements ListView by publishing list commands on the
// session's event channel.
type StreamListView struct {
	sessionID string
	channel   string
	bus       providers.EventBus
	timeout   time.Duration
}

var _ providers.ListView = (*StreamListView)(nil)

// NewStreamListView creates a list view publishing to the session channel
func NewStreamListView(sessionID string, bus providers.EventBus) *StreamListView {
	return &StreamListView{
		sessionID: sessionID,
		channel:   providers.GetSessionChannel(sessionID),
		bus:       bus,
		timeout:   defaultPublishTimeout,
	}
}

// ShowPage renders a page of the list.
func (v *StreamListView) ShowPage(page entities.Page) {
	v.publish(entities.MapEventTypeListPage, map[string]interface{}{
		"page":             page,
		"needs_pagination": page.TotalPages > 1,
	})
}

// SetExpanded expands or collapses a list entry.
func (v *StreamListView) SetExpanded(placeID string, expanded bool) {
	v.publish(entities.MapEventTypeListExpanded, map[string]interface{}{
		"place_id": placeID,
		"expanded": expanded,
	})
}

// ScrollIntoView scrolls a list entry into view.
func (v *StreamListView) ScrollIntoView(placeID string) {
	v.publish(entities.MapEventTypeListScroll, map[string]interface{}{"place_id": placeID})
}

// ResetScroll scrolls the list back to the top.
func (v *StreamListView) ResetScroll() {
	v.publish(entities.MapEventTypeListScroll, map[string]interface{}{"top": true})
}

// ShowRoute renders the route pair and its derived summary.
func (v *StreamListView) ShowRoute(route entities.RoutePair) {
	v.publish(entities.MapEventTypeRouteUpdated, map[string]interface{}{
		"route":   route,
		"summary": route.Summary(),
	})
}

func (v *StreamListView) publish(eventType entities.MapEventType, payload map[string]interface{}) {
	publish(v.bus, v.channel, v.sessionID, v.timeout, eventType, payload)
}
