// Package security provides validation and limits for the broker package.
package security

import (
	"encoding/json"
	"regexp"
	"time"

	"github.com/jdziat/simple-message-broker/pkg/core"
)

// Security limits and configuration
const (
	// MaxQueueNameLength is the maximum length for queue names
	MaxQueueNameLength = 255

	// MaxPayloadSize is the maximum size in bytes for a message payload (1MB)
	MaxPayloadSize = 1 << 20

	// MaxWait is the hard limit on how long a dequeue may block
	MaxWait = 5 * time.Minute
)

// validQueueName matches alphanumeric, hyphens, underscores, and dots
var validQueueName = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_\-\.]*$`)

// ValidateQueueName validates a queue name
func ValidateQueueName(name string) error {
	if name == "" {
		return core.ErrInvalidQueueName
	}
	if len(name) > MaxQueueNameLength {
		return core.ErrQueueNameTooLong
	}
	if !validQueueName.MatchString(name) {
		return core.ErrInvalidQueueName
	}
	return nil
}

// ValidatePayload checks that a payload is well-formed JSON within the
// size limit. The broker never interprets the payload beyond this check.
func ValidatePayload(payload json.RawMessage) error {
	if len(payload) > MaxPayloadSize {
		return core.ErrPayloadTooLarge
	}
	if !json.Valid(payload) {
		return core.ErrInvalidPayload
	}
	return nil
}

// ValidateWait rejects negative wait durations. Zero means a
// non-blocking poll and is valid.
func ValidateWait(d time.Duration) error {
	if d < 0 {
		return core.ErrInvalidWait
	}
	return nil
}

// ClampWait ensures a wait duration is within [0, MaxWait]
func ClampWait(d time.Duration) time.Duration {
	if d < 0 {
		return 0
	}
	if d > MaxWait {
		return MaxWait
	}
	return d
}
