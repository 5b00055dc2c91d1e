package renderer

import (
	"sync"

	"github.com/achilleasa/raylive/input"
)

// An unbounded FIFO of input events. Surfaces push from their own
// go-routines; the tick loop drains it in arrival order.
type eventQueue struct {
	mu     sync.Mutex
	events []input.Event

	// Signaled (without blocking) whenever an event is pushed.
	notify chan struct{}
}

func newEventQueue() *eventQueue {
	return &eventQueue{
		notify: make(chan struct{}, 1),
	}
}

func (q *eventQueue) push(ev input.Event) {
	q.mu.Lock()
	q.events = append(q.events, ev)
	q.mu.Unlock()

	select {
	case q.notify <- struct{}{}:
	default:
	}
}

func (q *eventQueue) drain() []input.Event {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.events
	q.events = nil
	return out
}
