package battle

// Rounds is the round cursor: the number of completed rounds, the entity
// currently acting (if any) and the initiative ordering computed by the
// rounds rules.
type Rounds struct {
	completed int64
	acting    bool
	actor     EntityID
	order     []EntityID
	step      int
}

// NewRounds creates a cursor with zero completed rounds and no actor.
func NewRounds() *Rounds {
	return &Rounds{}
}

// Completed returns the number of completed rounds.
func (r *Rounds) Completed() int64 { return r.completed }

// Acting reports whether a round is in progress and, if so, which entity is
// acting.
func (r *Rounds) Acting() (EntityID, bool) { return r.actor, r.acting }

// IsActing reports whether the given entity is the current actor.
func (r *Rounds) IsActing(id EntityID) bool { return r.acting && r.actor == id }

// Order returns the initiative ordering, empty if none was computed.
func (r *Rounds) Order() []EntityID {
	out := make([]EntityID, len(r.order))
	copy(out, r.order)
	return out
}

// Next returns the entity expected to act next according to the initiative
// ordering. ok is false when no ordering is set.
func (r *Rounds) Next() (EntityID, bool) {
	if len(r.order) == 0 {
		return EntityID{}, false
	}
	return r.order[r.step%len(r.order)], true
}

// Start marks the beginning of an entity's round. Called by the processor
// while applying a round start event.
func (r *Rounds) Start(actor EntityID) {
	r.acting = true
	r.actor = actor
}

// End marks the end of the current round and advances the cursor. Called by
// the processor while applying a round end event.
func (r *Rounds) End() {
	r.acting = false
	r.actor = EntityID{}
	r.completed++
	if len(r.order) > 0 {
		r.step = (r.step + 1) % len(r.order)
	}
}

// Reset installs a new initiative ordering and rewinds the step cursor.
// Called by the processor while applying a rounds reset event.
func (r *Rounds) Reset(order []EntityID) {
	r.order = make([]EntityID, len(order))
	copy(r.order, order)
	r.step = 0
}

// DropActor removes an entity from the initiative ordering, keeping the
// relative order of the remaining actors.
func (r *Rounds) DropActor(id EntityID) {
	for i, actor := range r.order {
		if actor == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			if r.step > i {
				r.step--
			}
			if len(r.order) > 0 {
				r.step %= len(r.order)
			} else {
				r.step = 0
			}
			return
		}
	}
}
