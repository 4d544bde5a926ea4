package broker

import "github.com/jdziat/simple-message-broker/pkg/core"

// Type aliases re-exported for a clean API surface.
type (
	// Envelope wraps a caller-supplied payload stored in a queue.
	Envelope = core.Envelope

	// Event is the interface for all broker events.
	Event = core.Event

	// MessageEnqueued is emitted when a message is accepted into a queue.
	MessageEnqueued = core.MessageEnqueued

	// MessageDelivered is emitted when a message is handed to a dequeue caller.
	MessageDelivered = core.MessageDelivered

	// WaitExpired is emitted when a blocked dequeue gives up without a message.
	WaitExpired = core.WaitExpired
)

// Errors re-exported from pkg/core.
var (
	ErrNoMessage        = core.ErrNoMessage
	ErrInvalidQueueName = core.ErrInvalidQueueName
	ErrQueueNameTooLong = core.ErrQueueNameTooLong
	ErrPayloadTooLarge  = core.ErrPayloadTooLarge
	ErrInvalidPayload   = core.ErrInvalidPayload
	ErrInvalidWait      = core.ErrInvalidWait
	ErrTooManyQueues    = core.ErrTooManyQueues
	ErrQueueFull        = core.ErrQueueFull
	ErrQueueClosed      = core.ErrQueueClosed
	ErrBrokerClosed     = core.ErrBrokerClosed
)
