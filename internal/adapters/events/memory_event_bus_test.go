package events

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zatekoja/wayfinder/internal/domain/entities"
	"github.com/zatekoja/wayfinder/internal/domain/providers"
)

func receive(t *testing.T, ch <-chan *entities.MapEvent) *entities.MapEvent {
	t.Helper()
	select {
	case event, ok := <-ch:
		require.True(t, ok, "channel closed")
		return event
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return nil
	}
}

func TestMemoryEventBus_PublishSubscribe(t *testing.T) {
	bus := NewMemoryEventBus()
	defer bus.Close()
	ctx := context.Background()
	channel := providers.GetSessionChannel("s1")

	first, err := bus.Subscribe(ctx, channel)
	require.NoError(t, err)
	second, err := bus.Subscribe(ctx, channel)
	require.NoError(t, err)
	other, err := bus.Subscribe(ctx, providers.GetSessionChannel("s2"))
	require.NoError(t, err)

	event := entities.NewMapEvent("s1", entities.MapEventTypeReady, map[string]interface{}{"container": "map"})
	require.NoError(t, bus.Publish(ctx, channel, event))

	assert.Equal(t, event.ID, receive(t, first).ID)
	assert.Equal(t, event.ID, receive(t, second).ID)
	select {
	case e := <-other:
		t.Fatalf("unexpected event on other channel: %v", e)
	default:
	}
}

func TestMemoryEventBus_ContextCancelRemovesSubscriber(t *testing.T) {
	bus := NewMemoryEventBus()
	defer bus.Close()
	ctx, cancel := context.WithCancel(context.Background())

	ch, err := bus.Subscribe(ctx, "c")
	require.NoError(t, err)
	cancel()

	assert.Eventually(t, func() bool {
		select {
		case _, ok := <-ch:
			return !ok
		default:
			return false
		}
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, bus.Publish(context.Background(), "c", entities.NewMapEvent("s", entities.MapEventTypeReady, nil)))
}

func TestMemoryEventBus_CloseEndsSubscriptions(t *testing.T) {
	bus := NewMemoryEventBus()
	ch, err := bus.Subscribe(context.Background(), "c")
	require.NoError(t, err)

	require.NoError(t, bus.Close())
	_, ok := <-ch
	assert.False(t, ok)

	late, err := bus.Subscribe(context.Background(), "c")
	require.NoError(t, err)
	_, ok = <-late
	assert.False(t, ok)
}

func TestMemoryEventBus_Unsubscribe(t *testing.T) {
	bus := NewMemoryEventBus()
	defer bus.Close()
	ch, err := bus.Subscribe(context.Background(), "c")
	require.NoError(t, err)

	require.NoError(t, bus.Unsubscribe(context.Background(), "c"))
	_, ok := <-ch
	assert.False(t, ok)
}
