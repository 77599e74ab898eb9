package event

import (
	"fmt"
	"strings"

	"github.com/saltmarsh/skirmish/battle"
)

// ID is the position of an event in the timeline.
type ID = battle.EventID

// Kind identifies the type of an event. Built-in kinds use dotted names;
// user-defined kinds must carry the "user." prefix.
type Kind string

// Entity lifecycle events.
const (
	// KindCreateTeam creates a new team.
	KindCreateTeam Kind = "team.create"
	// KindRemoveTeam removes an existing team.
	KindRemoveTeam Kind = "team.remove"
	// KindCreateCreature creates a new creature on a team.
	KindCreateCreature Kind = "creature.create"
	// KindRemoveCreature removes an existing creature.
	KindRemoveCreature Kind = "creature.remove"
	// KindCreateObject creates a new inanimate object.
	KindCreateObject Kind = "object.create"
	// KindRemoveObject removes an existing object.
	KindRemoveObject Kind = "object.remove"
)

// Space events.
const (
	// KindMoveEntity moves an entity to a new position.
	KindMoveEntity Kind = "entity.move"
)

// Character events.
const (
	// KindAlterStatistics applies a statistics alteration to an entity.
	KindAlterStatistics Kind = "entity.alter_statistics"
	// KindAlterAbilities applies an abilities alteration to a creature.
	KindAlterAbilities Kind = "entity.alter_abilities"
	// KindActivateAbility activates one of a creature's abilities.
	KindActivateAbility Kind = "ability.activate"
	// KindInflictStatus inflicts a status effect on an entity.
	KindInflictStatus Kind = "status.inflict"
	// KindClearStatus removes a status effect from an entity.
	KindClearStatus Kind = "status.clear"
)

// Round events.
const (
	// KindStartRound begins an entity's round.
	KindStartRound Kind = "round.start"
	// KindEndRound ends the round in progress and advances the cursor.
	KindEndRound Kind = "round.end"
	// KindResetRounds recomputes the initiative ordering.
	KindResetRounds Kind = "rounds.reset"
)

// Battle lifecycle events.
const (
	// KindEndBattle concludes the battle.
	KindEndBattle Kind = "battle.end"
	// KindDummy does nothing. Useful for tests and for rules that need a
	// placeholder derivation.
	KindDummy Kind = "dummy"
)

// UserKindPrefix is the mandatory prefix of user-defined event kinds.
const UserKindPrefix = "user."

// IsUser reports whether the kind is user-defined.
func (k Kind) IsUser() bool { return strings.HasPrefix(string(k), UserKindPrefix) }

// IsValid reports whether the kind is usable.
func (k Kind) IsValid() bool { return strings.TrimSpace(string(k)) != "" }

// OriginKind discriminates the causal source of an event.
type OriginKind uint8

const (
	// OriginNone means the origin has not been stamped yet. The processor
	// stamps it with the submitter's identity during submit.
	OriginNone OriginKind = iota
	// OriginSubmitter marks a player-initiated event.
	OriginSubmitter
	// OriginEvent marks an event derived from another event.
	OriginEvent
)

// Origin is the causal predecessor recorded on an event: either a submitter
// identity or the id of the causing event.
type Origin struct {
	Kind      OriginKind `json:"kind"`
	Event     ID         `json:"event,omitempty"`
	Submitter string     `json:"submitter,omitempty"`
}

// BySubmitter returns a player-initiated origin.
func BySubmitter(submitter string) Origin {
	return Origin{Kind: OriginSubmitter, Submitter: submitter}
}

// ByEvent returns an origin pointing at the causing event.
func ByEvent(id ID) Origin {
	return Origin{Kind: OriginEvent, Event: id}
}

// IsSet reports whether the origin has been stamped.
func (o Origin) IsSet() bool { return o.Kind != OriginNone }

// String renders the origin for logs and traces.
func (o Origin) String() string {
	switch o.Kind {
	case OriginSubmitter:
		return "submitter:" + o.Submitter
	case OriginEvent:
		return fmt.Sprintf("event:%d", o.Event)
	default:
		return "none"
	}
}

// Payload carries the kind-specific data of an event.
//
// Built-in payloads live in this package; integrators define their own by
// implementing Payload with a kind under "user." and registering a decoder
// via RegisterPayload.
type Payload interface {
	Kind() Kind
}

// Event is an immutable description of one intended state transition.
//
// ID is battle.NoEvent until the processor appends the event to a timeline.
// Kind always matches Payload.Kind(); construct events with New to keep the
// two in sync.
type Event struct {
	ID      ID
	Kind    Kind
	Origin  Origin
	Payload Payload
}

// New wraps a payload into an unappended event with an unset origin.
func New(p Payload) Event {
	return Event{ID: battle.NoEvent, Kind: p.Kind(), Payload: p}
}

// WithOrigin returns a copy of the event carrying an explicit origin.
// The processor preserves explicit origins instead of stamping its own.
func (e Event) WithOrigin(o Origin) Event {
	e.Origin = o
	return e
}

// Appended reports whether the event has been appended to a timeline.
func (e Event) Appended() bool { return e.ID >= 0 }

// String renders the event for logs.
func (e Event) String() string {
	if e.Appended() {
		return fmt.Sprintf("%s#%d", e.Kind, e.ID)
	}
	return string(e.Kind)
}
