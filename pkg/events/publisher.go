package events

import "context"

// Publisher is implemented by the NATS publisher and by test recorders.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// Handler processes one delivered event. A non-nil error asks for redelivery.
type Handler func(ctx context.Context, event Event) error

type Subscriber interface {
	Subscribe(ctx context.Context, eventType string, durableName string, handler Handler) error
}
