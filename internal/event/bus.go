// Package event provides the in-process publish/subscribe bus that carries
// entity-change events from the API handlers to the websocket change feed.
package event

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Topics published by the API handlers.
const (
	TopicBeerChanged     = "beer.changed"
	TopicCustomerChanged = "customer.changed"
	TopicOrderChanged    = "order.changed"
	TopicShipmentChanged = "shipment.changed"
)

// Event is a single change notification.
type Event struct {
	ID        string    `json:"id"`
	Topic     string    `json:"topic"`
	Source    string    `json:"source"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload,omitempty"`
}

// Handler processes a delivered event.
type Handler func(ctx context.Context, e Event)

// EventBus is the publishing surface handed to components that raise events.
type EventBus interface {
	Publish(ctx context.Context, event Event) error
	PublishAsync(ctx context.Context, event Event)
	Subscribe(topic string, handler Handler) func()
	SubscribeAll(handler Handler) func()
}

// Compile-time interface guard.
var _ EventBus = (*Bus)(nil)

type subscription struct {
	id      int
	handler Handler
}

// Bus is a thread-safe in-process event bus. Publish delivers synchronously
// in subscription order; PublishAsync delivers on a new goroutine.
type Bus struct {
	logger *zap.Logger

	mu     sync.RWMutex
	nextID int
	topics map[string][]subscription
	all    []subscription
}

// NewBus creates an event bus.
func NewBus(logger *zap.Logger) *Bus {
	return &Bus{
		logger: logger,
		topics: make(map[string][]subscription),
	}
}

// Subscribe registers a handler for one topic and returns an unsubscribe
// function.
func (b *Bus) Subscribe(topic string, handler Handler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	b.topics[topic] = append(b.topics[topic], subscription{id: id, handler: handler})

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		b.topics[topic] = removeSub(b.topics[topic], id)
	}
}

// SubscribeAll registers a handler for every topic and returns an
// unsubscribe function.
func (b *Bus) SubscribeAll(handler Handler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	b.all = append(b.all, subscription{id: id, handler: handler})

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		b.all = removeSub(b.all, id)
	}
}

// Publish delivers the event synchronously to topic subscribers and
// subscribe-all handlers. Handler panics are recovered and logged so one
// misbehaving subscriber cannot take down the publisher.
func (b *Bus) Publish(ctx context.Context, event Event) error {
	for _, sub := range b.snapshot(event.Topic) {
		b.deliver(ctx, sub, event)
	}
	return nil
}

// PublishAsync delivers the event on a separate goroutine.
func (b *Bus) PublishAsync(ctx context.Context, event Event) {
	subs := b.snapshot(event.Topic)
	go func() {
		for _, sub := range subs {
			b.deliver(ctx, sub, event)
		}
	}()
}

func (b *Bus) snapshot(topic string) []subscription {
	b.mu.RLock()
	defer b.mu.RUnlock()

	subs := make([]subscription, 0, len(b.topics[topic])+len(b.all))
	subs = append(subs, b.topics[topic]...)
	subs = append(subs, b.all...)
	return subs
}

func (b *Bus) deliver(ctx context.Context, sub subscription, event Event) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("event handler panicked",
				zap.String("topic", event.Topic),
				zap.Any("panic", r),
			)
		}
	}()
	sub.handler(ctx, event)
}

func removeSub(subs []subscription, id int) []subscription {
	for i, s := range subs {
		if s.id == id {
			return append(subs[:i:i], subs[i+1:]...)
		}
	}
	return subs
}
