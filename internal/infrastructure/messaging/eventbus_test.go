package messaging

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/peerlink-hub/peerlink-sessions/internal/domain/shared"
)

func TestEventBus_DeliversToTypedAndAllHandlers(t *testing.T) {
	bus := NewInMemoryEventBus(nil)

	var typed, all []shared.EventType
	assert.NoError(t, bus.Subscribe(shared.EventSessionCreated, func(e shared.Event) error {
		typed = append(typed, e.EventType())
		return nil
	}))
	assert.NoError(t, bus.SubscribeAll(func(e shared.Event) error {
		all = append(all, e.EventType())
		return nil
	}))

	assert.NoError(t, bus.Publish(shared.NewBaseEvent(shared.EventSessionCreated, "sess-1", nil)))
	assert.NoError(t, bus.Publish(shared.NewBaseEvent(shared.EventSessionRated, "sess-1", nil)))

	assert.Equal(t, []shared.EventType{shared.EventSessionCreated}, typed)
	assert.Equal(t, []shared.EventType{shared.EventSessionCreated, shared.EventSessionRated}, all)
}

func TestEventBus_FailingHandlerDoesNotStopOthers(t *testing.T) {
	bus := NewInMemoryEventBus(nil)

	delivered := 0
	assert.NoError(t, bus.Subscribe(shared.EventRewardClaimed, func(shared.Event) error {
		return errors.New("handler broke")
	}))
	assert.NoError(t, bus.Subscribe(shared.EventRewardClaimed, func(shared.Event) error {
		delivered++
		return nil
	}))

	assert.NoError(t, bus.Publish(shared.NewBaseEvent(shared.EventRewardClaimed, "sess-1", nil)))
	assert.Equal(t, 1, delivered)
}

func TestEventBus_ClosedBusRejectsPublishAndSubscribe(t *testing.T) {
	bus := NewInMemoryEventBus(nil)
	bus.Close()

	err := bus.Publish(shared.NewBaseEvent(shared.EventSessionCreated, "sess-1", nil))
	assert.ErrorIs(t, err, ErrEventBusClosed)

	err = bus.Subscribe(shared.EventSessionCreated, func(shared.Event) error { return nil })
	assert.ErrorIs(t, err, ErrEventBusClosed)
}

func TestEventBus_NilHandlerRejected(t *testing.T) {
	bus := NewInMemoryEventBus(nil)
	assert.Error(t, bus.Subscribe(shared.EventSessionCreated, nil))
	assert.Error(t, bus.SubscribeAll(nil))
}
