// Package queue provides the per-queue engine: FIFO message storage plus
// waiter coordination for long-poll dequeues.
//
// This package includes:
//   - Queue: ordered envelope storage with blocking timed dequeue
//   - Option: construction-time configuration
//
// Most users should import the root package
// github.com/jdziat/simple-message-broker, which resolves queues by name.
package queue
