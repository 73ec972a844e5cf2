package eventbus

import (
	"context"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sentinelsec/responder/pkg/channels/gochannel"
	"github.com/sentinelsec/responder/pkg/events"
)

func newTestBus(t *testing.T) EventBus {
	t.Helper()

	pub, sub, err := gochannel.CreateTestChannel(watermill.NopLogger{})
	require.NoError(t, err)

	bus := NewWatermillEventBus(pub, sub)
	t.Cleanup(func() { _ = bus.Close() })

	return bus
}

func TestWatermillEventBus_PublishSubscribe(t *testing.T) {
	bus := newTestBus(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	received := make(chan *events.ExecutionCompleted, 1)

	err := bus.Handle(events.ExecutionCompletedEvent, func(_ context.Context, event any) error {
		completed, ok := event.(*events.ExecutionCompleted)
		if ok {
			received <- completed
		}

		return nil
	})
	require.NoError(t, err)
	require.NoError(t, bus.Subscribe(ctx))

	published := events.ExecutionCompleted{
		BaseEvent: events.BaseEvent{
			ID:          bus.GenerateID(),
			Type:        events.ExecutionCompletedEvent,
			Timestamp:   time.Now().UTC(),
			WorkflowID:  "wf-1",
			ExecutionID: "ex-1",
		},
		Duration: 1500 * time.Millisecond,
	}

	require.NoError(t, bus.Publish(ctx, "wf-1", published))

	select {
	case event := <-received:
		assert.Equal(t, "ex-1", event.ExecutionID)
		assert.Equal(t, published.Duration, event.Duration)
	case <-time.After(2 * time.Second):
		t.Fatal("event was not delivered")
	}
}

func TestWatermillEventBus_UnhandledTypeIsAcked(t *testing.T) {
	bus := newTestBus(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Only failures are handled; a completed event must not wedge delivery.
	received := make(chan struct{}, 1)

	err := bus.Handle(events.ExecutionFailedEvent, func(_ context.Context, _ any) error {
		received <- struct{}{}

		return nil
	})
	require.NoError(t, err)
	require.NoError(t, bus.Subscribe(ctx))

	base := events.BaseEvent{ID: bus.GenerateID(), WorkflowID: "wf-1", ExecutionID: "ex-1"}

	require.NoError(t, bus.Publish(ctx, "wf-1", events.ExecutionCompleted{BaseEvent: base}))
	require.NoError(t, bus.Publish(ctx, "wf-1", events.ExecutionFailed{BaseEvent: base, Error: "boom"}))

	select {
	case <-received:
	case <-time.After(2 * time.Second):
		t.Fatal("failed event was not delivered after an unhandled one")
	}
}

func TestWatermillEventBus_GenerateID(t *testing.T) {
	bus := newTestBus(t)

	first := bus.GenerateID()
	second := bus.GenerateID()

	assert.NotEmpty(t, first)
	assert.NotEqual(t, first, second)
}
