// Package messaging defines the queue abstraction carrying kernel events to
// observers.
package messaging

import (
	"context"
)

// Vendor represents the name of a messaging vendor
type Vendor string

// Queue represents an abstract message queue for any payload type
type Queue[T any] interface {
	// Publish adds a message, waiting for room until ctx is done.
	Publish(ctx context.Context, t *T) error

	// TryPublish adds a message without waiting; false means it was dropped.
	TryPublish(t *T) bool

	// Consume retrieves a single message from the queue
	Consume(ctx context.Context) (Message[T], error)
}

// Message represents a message retrieved from a queue
type Message[T any] interface {
	// T returns the payload of this message
	T() *T

	// Ack acknowledges successful processing of this message
	Ack() error

	// Nack indicates failure in processing this message
	Nack(err error) error
}
