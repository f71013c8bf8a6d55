package providers

import (
	"context"

	"github.com/zatekoja/wayfinder/internal/domain/entities"
)

// EventBus defines the interface for publishing and subscribing to map events
type EventBus interface {
	// Publish publishes an event to all subscribers
	Publish(ctx context.Context, channel string, event *entities.MapEvent) error

	// Subscribe subscribes to events on a channel
	Subscribe(ctx context.Context, channel string) (<-chan *entities.MapEvent, error)

	// Unsubscribe unsubscribes from a channel
	Unsubscribe(ctx context.Context, channel string) error

	// Close closes the event bus and all subscriptions
	Close() error
}

// EventChannelSessionPrefix is the prefix for per-session render channels
const EventChannelSessionPrefix = "session:"

// GetSessionChannel returns the channel name for a specific map session
func GetSessionChannel(sessionID string) string {
	return EventChannelSessionPrefix + sessionID
}
