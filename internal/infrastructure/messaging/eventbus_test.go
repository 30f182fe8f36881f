package messaging

import (
	"errors"
	"testing"

	"github.com/dojo-hub/dojo-community-hub/internal/domain/shared"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSyncBus() *InMemoryEventBus {
	return NewInMemoryEventBus(InMemoryEventBusConfig{
		AsyncMode:     false,
		EnableMetrics: true,
	})
}

func TestPublishRoutesByEventType(t *testing.T) {
	bus := newSyncBus()

	var promoted, cancelled int
	require.NoError(t, bus.Subscribe(shared.EventBeltPromoted, func(e shared.Event) error {
		promoted++
		return nil
	}))
	require.NoError(t, bus.Subscribe(shared.EventDayCancelled, func(e shared.Event) error {
		cancelled++
		return nil
	}))

	require.NoError(t, bus.Publish(shared.NewBeltPromotedEvent("s-1", "Branca", "Cinza", 0, 1)))
	require.NoError(t, bus.Publish(shared.NewBeltPromotedEvent("s-2", "Cinza", "Amarela", 1, 2)))

	assert.Equal(t, 2, promoted)
	assert.Equal(t, 0, cancelled)
}

func TestSubscribeAllSeesEveryEvent(t *testing.T) {
	bus := newSyncBus()

	var seen []shared.EventType
	require.NoError(t, bus.SubscribeAll(func(e shared.Event) error {
		seen = append(seen, e.EventType())
		return nil
	}))

	require.NoError(t, bus.Publish(shared.NewDayCancelledEvent("springfield", "2099-03-02", "feriado")))
	require.NoError(t, bus.Publish(shared.NewAchievementUnlockedEvent("s-1", "first-class")))

	assert.Equal(t, []shared.EventType{shared.EventDayCancelled, shared.EventAchievementUnlocked}, seen)
}

func TestHandlerFailureDoesNotFailPublish(t *testing.T) {
	bus := newSyncBus()

	require.NoError(t, bus.Subscribe(shared.EventDayCancelled, func(e shared.Event) error {
		return errors.New("delivery down")
	}))

	err := bus.Publish(shared.NewDayCancelledEvent("springfield", "2099-03-02", ""))
	assert.NoError(t, err)

	snap := bus.Metrics().Snapshot()
	assert.Equal(t, int64(1), snap.TotalPublished)
	assert.Equal(t, int64(1), snap.TotalHandlerExecs)
	assert.Less(t, snap.HandlerSuccessRate, 1.0)
}

func TestHandlerPanicIsRecovered(t *testing.T) {
	bus := newSyncBus()

	require.NoError(t, bus.Subscribe(shared.EventBeltPromoted, func(e shared.Event) error {
		panic("boom")
	}))

	assert.NotPanics(t, func() {
		_ = bus.Publish(shared.NewBeltPromotedEvent("s-1", "Branca", "Cinza", 0, 1))
	})
}

func TestClosedBusRejectsPublish(t *testing.T) {
	bus := newSyncBus()
	require.NoError(t, bus.Close())

	err := bus.Publish(shared.NewAchievementUnlockedEvent("s-1", "first-class"))
	assert.ErrorIs(t, err, ErrEventBusClosed)

	err = bus.Subscribe(shared.EventBeltPromoted, func(e shared.Event) error { return nil })
	assert.ErrorIs(t, err, ErrEventBusClosed)
}
