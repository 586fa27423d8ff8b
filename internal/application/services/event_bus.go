package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/appcanvas/builder/internal/domain/events"
	"github.com/appcanvas/builder/internal/domain/ports"
	"github.com/appcanvas/builder/pkg/logutils"
)

// EventType is an alias to the domain type
type EventType = events.EventType

// EventHandler is a function that handles an event
type EventHandler = ports.EventHandler

type subscription struct {
	id      uint64
	handler EventHandler
}

// EventBus manages publish-subscribe events. Handlers of one event type run
// in subscription order on the publishing goroutine.
type EventBus struct {
	handlers map[EventType][]subscription
	nextID   uint64
	mu       sync.RWMutex
}

// Ensure EventBus implements ports.EventPublisher at compile time
var _ ports.EventPublisher = (*EventBus)(nil)

// NewEventBus creates a new EventBus instance
func NewEventBus() *EventBus {
	return &EventBus{
		handlers: make(map[EventType][]subscription),
	}
}

// Subscribe registers a handler for a specific event type and returns its
// unsubscribe function. Unsubscribing twice is a no-op.
func (eb *EventBus) Subscribe(eventType EventType, handler EventHandler) func() {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	eb.nextID++
	id := eb.nextID
	eb.handlers[eventType] = append(eb.handlers[eventType], subscription{id: id, handler: handler})

	return func() {
		eb.mu.Lock()
		defer eb.mu.Unlock()

		subs := eb.handlers[eventType]
		for i, s := range subs {
			if s.id == id {
				eb.handlers[eventType] = append(subs[:i:i], subs[i+1:]...)
				return
			}
		}
	}
}

// Publish runs every handler for eventType in order and stops at the first error
func (eb *EventBus) Publish(ctx context.Context, eventType EventType, payload interface{}) error {
	eb.mu.RLock()
	subs := append([]subscription(nil), eb.handlers[eventType]...)
	eb.mu.RUnlock()

	for _, s := range subs {
		if err := s.handler(ctx, payload); err != nil {
			return fmt.Errorf("EventBus handler error for %s: %w", eventType, err)
		}
	}
	return nil
}

// PublishAsync publishes an event on a new goroutine and logs failures
func (eb *EventBus) PublishAsync(eventType EventType, payload interface{}) {
	go func() {
		if err := eb.Publish(context.Background(), eventType, payload); err != nil {
			logutils.Log.Errorf("EventBus async publish error: %v", err)
		}
	}()
}

// HandlerCount reports the handlers registered for eventType
func (eb *EventBus) HandlerCount(eventType EventType) int {
	eb.mu.RLock()
	defer eb.mu.RUnlock()
	return len(eb.handlers[eventType])
}

// Clear removes all handlers
func (eb *EventBus) Clear() {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	eb.handlers = make(map[EventType][]subscription)
}
