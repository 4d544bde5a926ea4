package queue

import (
	"container/list"

	"github.com/jdziat/simple-message-broker/pkg/core"
)

// waiter is one blocked dequeue call registered on a queue.
//
// A waiter moves through exactly one of two lives: delivered (an envelope
// arrives on ch) or resolved with an error (errCh, used for expiry losing
// the race and for queue close). Both channels have capacity 1 so the
// resolving side never blocks, even if the waiter has already departed.
type waiter struct {
	ch    chan *core.Envelope
	errCh chan error

	// elem and done are guarded by the owning queue's mu.
	elem *list.Element
	done bool
}

func newWaiter() *waiter {
	return &waiter{
		ch:    make(chan *core.Envelope, 1),
		errCh: make(chan error, 1),
	}
}
