package engine

import "github.com/saltmarsh/skirmish/event"

// eventQueue is the FIFO work queue for derived events. Apply hooks push
// children; the processor drains the queue breadth-first, so siblings commit
// before grandchildren.
type eventQueue struct {
	items []event.Event
}

func (q *eventQueue) push(evs ...event.Event) {
	q.items = append(q.items, evs...)
}

func (q *eventQueue) pop() (event.Event, bool) {
	if len(q.items) == 0 {
		return event.Event{}, false
	}
	head := q.items[0]
	q.items = q.items[1:]
	return head, true
}

func (q *eventQueue) len() int { return len(q.items) }
