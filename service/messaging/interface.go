package messaging

import "context"

// Vendor names a queue implementation (memory, fs).
type Vendor string

const (
	// VendorMemory is the channel-backed in-process queue.
	VendorMemory Vendor = "memory"
	// VendorFs is the file-system backed queue.
	VendorFs Vendor = "fs"
)

// Queue is an abstract message queue for any payload type.
type Queue[T any] interface {
	// Publish adds a new message with the payload to the queue.
	Publish(ctx context.Context, t *T) error

	// Consume retrieves a single message from the queue.
	Consume(ctx context.Context) (Message[T], error)
}

// Message is a single message retrieved from a queue.
type Message[T any] interface {
	// T returns the payload of this message.
	T() *T

	// Ack acknowledges successful processing.
	Ack() error

	// Nack reports a processing failure; the queue may retry the message.
	Nack(err error) error
}
