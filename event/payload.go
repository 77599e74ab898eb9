package event

import "github.com/saltmarsh/skirmish/battle"

// CreateTeam creates a new team.
type CreateTeam struct {
	Team battle.TeamID `json:"team"`
}

// Kind implements Payload.
func (CreateTeam) Kind() Kind { return KindCreateTeam }

// RemoveTeam removes an existing team.
type RemoveTeam struct {
	Team battle.TeamID `json:"team"`
}

// Kind implements Payload.
func (RemoveTeam) Kind() Kind { return KindRemoveTeam }

// CreateCreature creates a new creature on a team at a starting position.
// Statistics and abilities are generated by the character rules at apply
// time, so replays regenerate them identically.
type CreateCreature struct {
	Creature battle.CreatureID `json:"creature"`
	Team     battle.TeamID     `json:"team"`
	Position battle.Position   `json:"position"`
}

// Kind implements Payload.
func (CreateCreature) Kind() Kind { return KindCreateCreature }

// RemoveCreature removes an existing creature, freeing its position.
type RemoveCreature struct {
	Creature battle.CreatureID `json:"creature"`
}

// Kind implements Payload.
func (RemoveCreature) Kind() Kind { return KindRemoveCreature }

// CreateObject creates a new inanimate object at a starting position.
type CreateObject struct {
	Object   battle.ObjectID `json:"object"`
	Position battle.Position `json:"position"`
}

// Kind implements Payload.
func (CreateObject) Kind() Kind { return KindCreateObject }

// RemoveObject removes an existing object, freeing its position.
type RemoveObject struct {
	Object battle.ObjectID `json:"object"`
}

// Kind implements Payload.
func (RemoveObject) Kind() Kind { return KindRemoveObject }

// MoveEntity moves an entity to a new position.
type MoveEntity struct {
	Entity   battle.EntityID `json:"entity"`
	Position battle.Position `json:"position"`
}

// Kind implements Payload.
func (MoveEntity) Kind() Kind { return KindMoveEntity }

// AlterStatistics applies a statistics alteration to a character entity.
type AlterStatistics struct {
	Entity     battle.EntityID             `json:"entity"`
	Alteration battle.StatisticsAlteration `json:"alteration"`
}

// Kind implements Payload.
func (AlterStatistics) Kind() Kind { return KindAlterStatistics }

// AlterAbilities applies an abilities alteration to a creature.
type AlterAbilities struct {
	Entity     battle.EntityID           `json:"entity"`
	Alteration battle.AbilitiesAlteration `json:"alteration"`
}

// Kind implements Payload.
func (AlterAbilities) Kind() Kind { return KindAlterAbilities }

// ActivateAbility activates one of a creature's abilities. What activation
// costs and produces is decided by the character rules; derived events carry
// the outcome.
type ActivateAbility struct {
	Entity  battle.EntityID `json:"entity"`
	Ability string          `json:"ability"`
}

// Kind implements Payload.
func (ActivateAbility) Kind() Kind { return KindActivateAbility }

// InflictStatus inflicts a status effect on a character entity. The
// processor stamps Status.InflictedBy with the applied event's id.
type InflictStatus struct {
	Entity battle.EntityID `json:"entity"`
	Status battle.Status   `json:"status"`
}

// Kind implements Payload.
func (InflictStatus) Kind() Kind { return KindInflictStatus }

// ClearStatus removes a status effect from a character entity.
type ClearStatus struct {
	Entity battle.EntityID `json:"entity"`
	Status string          `json:"status"`
}

// Kind implements Payload.
func (ClearStatus) Kind() Kind { return KindClearStatus }

// StartRound begins the given entity's round. Eligibility is decided by the
// rounds rules.
type StartRound struct {
	Actor battle.EntityID `json:"actor"`
}

// Kind implements Payload.
func (StartRound) Kind() Kind { return KindStartRound }

// EndRound ends the round in progress. Statuses tick and rules may emit
// round-end derived events.
type EndRound struct{}

// Kind implements Payload.
func (EndRound) Kind() Kind { return KindEndRound }

// ResetRounds asks the rounds rules for a fresh initiative ordering.
type ResetRounds struct{}

// Kind implements Payload.
func (ResetRounds) Kind() Kind { return KindResetRounds }

// EndBattle concludes the battle. After it applies, every further event is
// rejected.
type EndBattle struct{}

// Kind implements Payload.
func (EndBattle) Kind() Kind { return KindEndBattle }

// Dummy does nothing.
type Dummy struct{}

// Kind implements Payload.
func (Dummy) Kind() Kind { return KindDummy }
