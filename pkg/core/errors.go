package core

import "errors"

// Validation errors
var (
	ErrInvalidQueueName = errors.New("broker: invalid queue name (must be alphanumeric, start with letter)")
	ErrQueueNameTooLong = errors.New("broker: queue name too long")
	ErrPayloadTooLarge  = errors.New("broker: payload exceeds size limit")
	ErrInvalidPayload   = errors.New("broker: payload is not valid JSON")
	ErrInvalidWait      = errors.New("broker: wait duration must not be negative")
)

// Outcome and limit errors
var (
	// ErrNoMessage reports that no message became available within the
	// allotted wait. It is a normal outcome, not a failure.
	ErrNoMessage = errors.New("broker: no message available")

	// ErrTooManyQueues reports that creating one more queue would exceed
	// the broker's queue limit.
	ErrTooManyQueues = errors.New("broker: queue limit reached")

	// ErrQueueFull reports that the queue holds its maximum number of
	// undelivered messages.
	ErrQueueFull = errors.New("broker: queue message limit reached")
)

// Lifecycle errors
var (
	ErrQueueClosed  = errors.New("broker: queue closed")
	ErrBrokerClosed = errors.New("broker: broker closed")
)
