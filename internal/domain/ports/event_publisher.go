package ports

import (
	"context"

	"github.com/appcanvas/builder/internal/domain/events"
)

// EventHandler is a function that handles an event
type EventHandler func(ctx context.Context, payload interface{}) error

// EventPublisher provides event publishing capabilities.
type EventPublisher interface {
	// Subscribe registers a handler and returns its unsubscribe function.
	Subscribe(eventType events.EventType, handler EventHandler) func()

	// Publish dispatches an event to all registered handlers in order.
	Publish(ctx context.Context, eventType events.EventType, payload interface{}) error
}
