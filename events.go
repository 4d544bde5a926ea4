package broker

import (
	"sync"

	"github.com/jdziat/simple-message-broker/pkg/core"
)

// eventBus fans broker events out to subscribers. Delivery is best-effort:
// a subscriber that falls behind loses events rather than blocking the
// broker's hot path.
type eventBus struct {
	mu   sync.RWMutex
	subs []chan core.Event
}

func newEventBus() *eventBus {
	return &eventBus{}
}

func (e *eventBus) subscribe() chan core.Event {
	ch := make(chan core.Event, 100)
	e.mu.Lock()
	e.subs = append(e.subs, ch)
	e.mu.Unlock()
	return ch
}

func (e *eventBus) unsubscribe(ch <-chan core.Event) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for i, sub := range e.subs {
		if sub == ch {
			e.subs = append(e.subs[:i], e.subs[i+1:]...)
			return
		}
	}
}

func (e *eventBus) emit(ev core.Event) {
	e.mu.RLock()
	// Copy so a concurrent subscribe can't shift the slice under us.
	subs := make([]chan core.Event, len(e.subs))
	copy(subs, e.subs)
	e.mu.RUnlock()

	for _, ch := range subs {
		select {
		case ch <- ev:
		default:
			// Drop if full - this prevents blocking on slow consumers
		}
	}
}
