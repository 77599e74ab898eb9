package engine

import (
	"fmt"
	"log/slog"

	"github.com/saltmarsh/skirmish/event"
)

// Sink receives every committed timeline entry, in order. Implementations
// must not call back into the processor from Notify.
//
// A sink error never rolls back the entry; the processor logs it and keeps
// notifying the remaining sinks.
type Sink interface {
	Notify(e Entry) error
}

// TruncatingSink is a Sink that keeps its own copy of the timeline, such as
// a persistence sink. The server calls Truncate during a rollback so the
// copy drops the undone suffix too; entries with ids greater than after must
// be discarded. Unlike Notify, a Truncate error aborts the rollback.
type TruncatingSink interface {
	Sink
	Truncate(after event.ID) error
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(e Entry) error

// Notify implements Sink.
func (f SinkFunc) Notify(e Entry) error { return f(e) }

// sinkRegistry holds registered sinks in registration order.
type sinkRegistry struct {
	order []string
	sinks map[string]Sink
	log   *slog.Logger
}

func newSinkRegistry(log *slog.Logger) *sinkRegistry {
	return &sinkRegistry{sinks: make(map[string]Sink), log: log}
}

func (r *sinkRegistry) add(id string, s Sink) error {
	if _, ok := r.sinks[id]; ok {
		return fmt.Errorf("sink %q already registered", id)
	}
	r.sinks[id] = s
	r.order = append(r.order, id)
	return nil
}

func (r *sinkRegistry) remove(id string) {
	if _, ok := r.sinks[id]; !ok {
		return
	}
	delete(r.sinks, id)
	for i, existing := range r.order {
		if existing == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

func (r *sinkRegistry) notify(e Entry) {
	for _, id := range r.order {
		if err := r.sinks[id].Notify(e); err != nil {
			r.log.Warn("sink notification failed",
				"sink", id,
				"event", e.Event.String(),
				"error", err,
			)
		}
	}
}
