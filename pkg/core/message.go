// Package core provides the domain models and error taxonomy for the broker.
package core

import (
	"encoding/json"
	"time"
)

// Envelope wraps a caller-supplied payload stored in a queue.
//
// The payload is opaque to the broker: it is stored and returned verbatim,
// never inspected or transformed. EnqueuedAt exists for diagnostics only.
type Envelope struct {
	ID         string
	Payload    json.RawMessage
	EnqueuedAt time.Time
}
