package engine

import (
	"github.com/saltmarsh/skirmish/battle"
	"github.com/saltmarsh/skirmish/event"
)

// Entry is one committed timeline slot: the applied event plus the checksum
// of the state that resulted from applying it.
type Entry struct {
	Event    event.Event
	Checksum Checksum
}

// Timeline is the append-only ordered log of applied events.
//
// Event ids are timeline positions: the timeline accepts only monotonically
// increasing ids with no gaps, so history forms a single consistent line. A
// gap or repeat is an integrity violation, never a recoverable rejection.
//
// The log grows monotonically except through TruncateAfter, which backs an
// explicit rollback (undo) and returns the removed suffix for redo.
type Timeline struct {
	entries []Entry
}

// NewTimeline creates an empty timeline.
func NewTimeline() *Timeline {
	return &Timeline{}
}

// Len returns the number of committed entries.
func (t *Timeline) Len() int { return len(t.entries) }

// NextID returns the id the next appended event must carry.
func (t *Timeline) NextID() event.ID { return event.ID(len(t.entries)) }

// Append commits an entry. The event's id must equal NextID.
func (t *Timeline) Append(e Entry) error {
	if e.Event.ID != t.NextID() {
		return integrityf("non-contiguous event id %d, expected %d", e.Event.ID, t.NextID())
	}
	t.entries = append(t.entries, e)
	return nil
}

// Entries returns a copy of all committed entries in order.
func (t *Timeline) Entries() []Entry {
	out := make([]Entry, len(t.entries))
	copy(out, t.entries)
	return out
}

// EntriesAfter returns a copy of the entries with id greater than after.
// Used to bring a reconnecting client from a known position to the head.
func (t *Timeline) EntriesAfter(after event.ID) []Entry {
	start := int(after) + 1
	if start < 0 {
		start = 0
	}
	if start >= len(t.entries) {
		return nil
	}
	out := make([]Entry, len(t.entries)-start)
	copy(out, t.entries[start:])
	return out
}

// Events returns a copy of all committed events in order.
func (t *Timeline) Events() []event.Event {
	out := make([]event.Event, len(t.entries))
	for i, e := range t.entries {
		out[i] = e.Event
	}
	return out
}

// Entry returns the entry holding the event with the given id.
func (t *Timeline) Entry(id event.ID) (Entry, bool) {
	if id < 0 || int(id) >= len(t.entries) {
		return Entry{}, false
	}
	return t.entries[id], true
}

// Head returns the last committed entry.
func (t *Timeline) Head() (Entry, bool) {
	if len(t.entries) == 0 {
		return Entry{}, false
	}
	return t.entries[len(t.entries)-1], true
}

// TruncateAfter discards every entry with id greater than id and returns the
// removed suffix in order. Pass battle.NoEvent to clear the whole log.
func (t *Timeline) TruncateAfter(id event.ID) []Entry {
	keep := int(id) + 1
	if keep < 0 {
		keep = 0
	}
	if keep >= len(t.entries) {
		return nil
	}
	removed := make([]Entry, len(t.entries)-keep)
	copy(removed, t.entries[keep:])
	t.entries = t.entries[:keep]
	return removed
}

// LastCheckpoint returns the id of the latest entry of the given kind at or
// before the given id, or battle.NoEvent if there is none. Undo uses it to
// find round boundaries so truncation never splits a round.
func (t *Timeline) LastCheckpoint(kind event.Kind, before event.ID) event.ID {
	limit := int(before)
	if limit >= len(t.entries) {
		limit = len(t.entries) - 1
	}
	for i := limit; i >= 0; i-- {
		if t.entries[i].Event.Kind == kind {
			return event.ID(i)
		}
	}
	return battle.NoEvent
}
