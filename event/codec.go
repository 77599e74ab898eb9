package event

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/saltmarsh/skirmish/battle"
)

// DecodeFunc turns a raw payload back into a typed Payload.
type DecodeFunc func(data []byte) (Payload, error)

var (
	decodersMu sync.RWMutex
	decoders   = map[Kind]DecodeFunc{
		KindCreateTeam:      decodeInto[CreateTeam],
		KindRemoveTeam:      decodeInto[RemoveTeam],
		KindCreateCreature:  decodeInto[CreateCreature],
		KindRemoveCreature:  decodeInto[RemoveCreature],
		KindCreateObject:    decodeInto[CreateObject],
		KindRemoveObject:    decodeInto[RemoveObject],
		KindMoveEntity:      decodeInto[MoveEntity],
		KindAlterStatistics: decodeInto[AlterStatistics],
		KindAlterAbilities:  decodeInto[AlterAbilities],
		KindActivateAbility: decodeInto[ActivateAbility],
		KindInflictStatus:   decodeInto[InflictStatus],
		KindClearStatus:     decodeInto[ClearStatus],
		KindStartRound:      decodeInto[StartRound],
		KindEndRound:        decodeInto[EndRound],
		KindResetRounds:     decodeInto[ResetRounds],
		KindEndBattle:       decodeInto[EndBattle],
		KindDummy:           decodeInto[Dummy],
	}
)

func decodeInto[T Payload](data []byte) (Payload, error) {
	var p T
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, err
	}
	return p, nil
}

// RegisterPayload registers the decoder for a user-defined payload type.
// The kind must carry the "user." prefix and must not collide with an
// already registered kind.
//
// Registration typically happens from the integrator's package init, before
// any timeline is loaded.
func RegisterPayload[T Payload](kind Kind) error {
	if !kind.IsUser() {
		return fmt.Errorf("register payload: kind %q must start with %q", kind, UserKindPrefix)
	}
	decodersMu.Lock()
	defer decodersMu.Unlock()
	if _, exists := decoders[kind]; exists {
		return fmt.Errorf("register payload: kind %q already registered", kind)
	}
	decoders[kind] = decodeInto[T]
	return nil
}

// envelope is the wire form of an event. The payload is kept as raw JSON so
// the envelope round-trips losslessly regardless of payload type.
type envelope struct {
	ID      int64           `json:"id"`
	Kind    Kind            `json:"kind"`
	Origin  Origin          `json:"origin"`
	Payload json.RawMessage `json:"payload"`
}

// Marshal serializes an event to JSON.
func Marshal(e Event) ([]byte, error) {
	raw, err := json.Marshal(e.Payload)
	if err != nil {
		return nil, fmt.Errorf("marshal event %s: %w", e.Kind, err)
	}
	return json.Marshal(envelope{
		ID:      int64(e.ID),
		Kind:    e.Kind,
		Origin:  e.Origin,
		Payload: raw,
	})
}

// Unmarshal deserializes an event from JSON. The event's kind must have a
// registered decoder.
func Unmarshal(data []byte) (Event, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Event{}, fmt.Errorf("unmarshal event: %w", err)
	}
	decodersMu.RLock()
	decode, ok := decoders[env.Kind]
	decodersMu.RUnlock()
	if !ok {
		return Event{}, fmt.Errorf("unmarshal event: no decoder for kind %q", env.Kind)
	}
	payload, err := decode(env.Payload)
	if err != nil {
		return Event{}, fmt.Errorf("unmarshal event %s: %w", env.Kind, err)
	}
	return Event{
		ID:      battle.EventID(env.ID),
		Kind:    env.Kind,
		Origin:  env.Origin,
		Payload: payload,
	}, nil
}
