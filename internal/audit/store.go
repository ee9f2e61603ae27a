package audit

import "context"

// Store persists audit events. Append-only: nothing in this interface can
// modify or remove an event once written.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListByContentHash(ctx context.Context, contentHash string) ([]Event, error)
}

// Sink receives every event in addition to the store, e.g. a Kafka producer.
// Sink failures are logged but never fail the emitting operation.
type Sink interface {
	Publish(ctx context.Context, event Event) error
}
