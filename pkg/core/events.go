package core

import "time"

// Event is the interface for all broker events.
type Event interface {
	eventMarker()
}

// MessageEnqueued is emitted when a message is accepted into a queue.
type MessageEnqueued struct {
	Queue     string
	MessageID string
	Timestamp time.Time
}

func (*MessageEnqueued) eventMarker() {}

// MessageDelivered is emitted when a message is handed to a dequeue caller.
// Waited is how long the caller was blocked; zero for immediate delivery.
type MessageDelivered struct {
	Queue     string
	MessageID string
	Waited    time.Duration
	Timestamp time.Time
}

func (*MessageDelivered) eventMarker() {}

// WaitExpired is emitted when a blocked dequeue gives up without a message.
type WaitExpired struct {
	Queue     string
	Waited    time.Duration
	Timestamp time.Time
}

func (*WaitExpired) eventMarker() {}
