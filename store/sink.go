package store

import (
	"context"

	"github.com/saltmarsh/skirmish/battle"
	"github.com/saltmarsh/skirmish/engine"
)

// Sink adapts a Store to the engine's sink interface, persisting every
// committed entry as it lands.
type Sink struct {
	store *Store
	ctx   context.Context
}

// NewSink creates a persistence sink. The context bounds every write issued
// through Notify.
func NewSink(ctx context.Context, s *Store) *Sink {
	return &Sink{store: s, ctx: ctx}
}

// Notify implements engine.Sink.
func (s *Sink) Notify(e engine.Entry) error {
	return s.store.WriteEntry(s.ctx, e)
}

// Truncate implements engine.TruncatingSink, mirroring a timeline rollback
// into the database so undone ids can be rewritten.
func (s *Sink) Truncate(after battle.EventID) error {
	return s.store.TruncateAfter(s.ctx, after)
}
