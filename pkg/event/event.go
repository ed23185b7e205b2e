// Package event provides the publish-subscribe bus that decouples scan
// and audit producers from their consumers. Handlers run asynchronously;
// publishers never block on slow subscribers.
package event

import (
	"context"
	"sync"
)

// Topics published by the session layer. Payload types are documented on
// the publishing side.
const (
	TopicScanStarted      = "scan.started"
	TopicScanCompleted    = "scan.completed"
	TopicNetworkFound     = "network.found"
	TopicNetworkUpdated   = "network.updated"
	TopicNetworkLost      = "network.lost"
	TopicInterfaceChanged = "interface.changed"
	TopicMonitorEnabled   = "monitor.enabled"
	TopicMonitorDisabled  = "monitor.disabled"
	TopicAuditCompleted   = "audit.completed"
)

// Handler is a function that handles a published event.
type Handler func(ctx context.Context, data any)

// Subscription identifies one registered handler so it can be removed.
// A nil Subscription is safe to pass to Unsubscribe.
type Subscription struct {
	topic string
	id    uint64
}

// EventBus defines the interface for an event system.
type EventBus interface {
	Subscribe(topic string, handler Handler) *Subscription
	Unsubscribe(sub *Subscription)
	Publish(ctx context.Context, topic string, data any)
}

// Bus is the in-process event bus. Handlers are keyed per topic so a
// finite consumer (a CLI command, a test) can detach before the session
// outlives it.
type Bus struct {
	mu          sync.RWMutex
	nextID      uint64
	subscribers map[string]map[uint64]Handler
}

// New creates a new event bus.
func New() *Bus {
	return &Bus{
		subscribers: make(map[string]map[uint64]Handler),
	}
}

// Subscribe adds a handler for a topic and returns its subscription.
func (b *Bus) Subscribe(topic string, handler Handler) *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	if b.subscribers[topic] == nil {
		b.subscribers[topic] = make(map[uint64]Handler)
	}
	b.subscribers[topic][b.nextID] = handler
	return &Subscription{topic: topic, id: b.nextID}
}

// Unsubscribe removes a previously registered handler. Events already
// dispatched to the handler may still be in flight.
func (b *Bus) Unsubscribe(sub *Subscription) {
	if sub == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.subscribers[sub.topic], sub.id)
}

// Publish triggers all handlers subscribed to the topic. The handler
// set is copied under the read lock, then each handler runs on its
// own goroutine, so a handler that subscribes or publishes cannot
// deadlock the bus.
func (b *Bus) Publish(ctx context.Context, topic string, data any) {
	b.mu.RLock()
	handlers := make([]Handler, 0, len(b.subscribers[topic]))
	for _, h := range b.subscribers[topic] {
		handlers = append(handlers, h)
	}
	b.mu.RUnlock()

	for _, handler := range handlers {
		go handler(ctx, data)
	}
}
