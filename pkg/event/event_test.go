package event

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishReachesSubscriber(t *testing.T) {
	bus := New()
	got := make(chan any, 1)

	bus.Subscribe(TopicNetworkFound, func(_ context.Context, data any) {
		got <- data
	})
	bus.Publish(context.Background(), TopicNetworkFound, "payload")

	select {
	case data := <-got:
		assert.Equal(t, "payload", data)
	case <-time.After(time.Second):
		t.Fatal("handler was never invoked")
	}
}

func TestPublishFansOut(t *testing.T) {
	bus := New()
	got := make(chan int, 2)

	bus.Subscribe("topic", func(context.Context, any) { got <- 1 })
	bus.Subscribe("topic", func(context.Context, any) { got <- 2 })
	bus.Publish(context.Background(), "topic", nil)

	seen := map[int]bool{}
	for i := 0; i < 2; i++ {
		select {
		case n := <-got:
			seen[n] = true
		case <-time.After(time.Second):
			t.Fatal("missing handler invocation")
		}
	}
	assert.True(t, seen[1] && seen[2], "both handlers fire")
}

func TestPublishWithoutSubscribers(t *testing.T) {
	bus := New()
	require.NotPanics(t, func() {
		bus.Publish(context.Background(), "nobody.listens", 42)
	})
}

func TestTopicsAreIsolated(t *testing.T) {
	bus := New()
	got := make(chan any, 1)

	bus.Subscribe(TopicScanStarted, func(_ context.Context, data any) {
		got <- data
	})
	bus.Publish(context.Background(), TopicScanCompleted, "wrong topic")

	select {
	case <-got:
		t.Fatal("handler fired for a different topic")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	bus := New()
	got := make(chan int, 2)

	sub := bus.Subscribe("topic", func(context.Context, any) { got <- 1 })
	bus.Subscribe("topic", func(context.Context, any) { got <- 2 })
	bus.Unsubscribe(sub)
	bus.Publish(context.Background(), "topic", nil)

	select {
	case n := <-got:
		assert.Equal(t, 2, n, "only the remaining handler fires")
	case <-time.After(time.Second):
		t.Fatal("remaining handler was never invoked")
	}

	select {
	case n := <-got:
		t.Fatalf("removed handler fired: %d", n)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestUnsubscribeNilAndTwice(t *testing.T) {
	bus := New()
	sub := bus.Subscribe("topic", func(context.Context, any) {})

	require.NotPanics(t, func() {
		bus.Unsubscribe(nil)
		bus.Unsubscribe(sub)
		bus.Unsubscribe(sub)
	})
}

func TestSubscribeFromHandler(t *testing.T) {
	bus := New()
	done := make(chan struct{})

	bus.Subscribe("topic", func(context.Context, any) {
		bus.Subscribe("other", func(context.Context, any) {})
		close(done)
	})
	bus.Publish(context.Background(), "topic", nil)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("subscribing from inside a handler deadlocked")
	}
}
