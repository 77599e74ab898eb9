// Package rules defines the capability contracts that parameterize the
// engine. A Bundle composes one implementation per capability; the engine
// consults the bundle on every event it processes.
//
// Contract shared by all capabilities:
//
//   - Check* methods run during validation. They must be side-effect free
//     and return nil to accept or a descriptive error to reject; the engine
//     wraps rejections into a typed ValidationRejected result. They never
//     return bare booleans.
//   - Apply/On* methods run during application, after validation passed.
//     They may mutate the state through its exported mutators and may return
//     derived events, which the processor submits through the same pipeline
//     with the applied event as origin. They should be infallible by
//     construction: anything that can fail belongs in the matching Check.
//
// All rules must be deterministic. Randomness, wall clocks or iteration over
// unordered maps inside a rule breaks replay.
package rules

import (
	"fmt"

	"github.com/saltmarsh/skirmish/battle"
	"github.com/saltmarsh/skirmish/event"
)

// TeamRules governs team and creature lifecycle decisions.
type TeamRules interface {
	// CheckNewTeam decides whether a new team may be created.
	CheckNewTeam(s *battle.State, id battle.TeamID) error
	// CheckNewCreature decides whether a creature may join the team.
	CheckNewCreature(s *battle.State, team battle.TeamID, id battle.CreatureID) error
	// CheckRemoveTeam decides whether a team may be removed.
	CheckRemoveTeam(s *battle.State, id battle.TeamID) error
}

// CharacterRules governs statistics, abilities and status effects.
//
// Potency is the intensity of a status; its interpretation (flat delta,
// percentage, damage per round) belongs entirely to the implementation.
type CharacterRules interface {
	// GenerateCreature produces the starting statistics and abilities of
	// a new creature.
	GenerateCreature(s *battle.State, id battle.CreatureID) ([]battle.Statistic, []battle.Ability)
	// GenerateObject produces the starting statistics of a new object.
	GenerateObject(s *battle.State, id battle.ObjectID) []battle.Statistic
	// CheckAlterStatistics decides whether an alteration may be applied.
	CheckAlterStatistics(s *battle.State, id battle.EntityID, alt battle.StatisticsAlteration) error
	// AlterStatistics commits an alteration to the entity's statistics.
	AlterStatistics(s *battle.State, id battle.EntityID, alt battle.StatisticsAlteration) []event.Event
	// CheckAlterAbilities decides whether an abilities alteration may be
	// applied.
	CheckAlterAbilities(s *battle.State, id battle.EntityID, alt battle.AbilitiesAlteration) error
	// AlterAbilities commits an alteration to the creature's abilities.
	AlterAbilities(s *battle.State, id battle.EntityID, alt battle.AbilitiesAlteration) []event.Event
	// CheckActivateAbility decides whether the creature may activate the
	// ability now.
	CheckActivateAbility(s *battle.State, id battle.EntityID, abilityID string) error
	// ActivateAbility commits an activation: it pays whatever the ability
	// costs and emits the derived events carrying its effect.
	ActivateAbility(s *battle.State, id battle.EntityID, abilityID string) []event.Event
	// CheckInflictStatus decides whether a status may be inflicted.
	CheckInflictStatus(s *battle.State, id battle.EntityID, st battle.Status) error
	// InflictStatus commits a status and its immediate effect.
	InflictStatus(s *battle.State, id battle.EntityID, st battle.Status) []event.Event
	// CheckClearStatus decides whether a status may be removed.
	CheckClearStatus(s *battle.State, id battle.EntityID, statusID string) error
	// ClearStatus removes a status, reverting whatever it altered.
	ClearStatus(s *battle.State, id battle.EntityID, statusID string) []event.Event
	// UpdateStatuses ticks the statuses of one entity at round end. It
	// may mutate counters and emit derived events such as status.clear.
	UpdateStatuses(s *battle.State, id battle.EntityID) []event.Event
}

// SpaceRules governs the space layout.
//
// The engine keeps the committed position assignments itself; space rules
// veto claims and maintain any additional topology model they need.
type SpaceRules interface {
	// CheckClaim decides whether a spawn, move or free claim is legal.
	CheckClaim(s *battle.State, c battle.Claim) error
	// ApplyClaim commits a validated claim to the rules' own layout
	// bookkeeping. The engine updates the position assignments.
	ApplyClaim(s *battle.State, c battle.Claim)
}

// RoundsRules governs initiative and round flow.
type RoundsRules interface {
	// CheckStartRound decides whether the actor may begin a round now.
	CheckStartRound(s *battle.State, actor battle.EntityID) error
	// Initiative computes the acting order for rounds.reset.
	Initiative(s *battle.State) []battle.EntityID
	// OnRoundStart reacts to a round starting.
	OnRoundStart(s *battle.State, actor battle.EntityID) []event.Event
	// OnRoundEnd reacts to a round ending.
	OnRoundEnd(s *battle.State) []event.Event
	// OnActorAdded reacts to a new actor entering the battle.
	OnActorAdded(s *battle.State, actor battle.EntityID) []event.Event
	// OnActorRemoved reacts to an actor leaving the battle.
	OnActorRemoved(s *battle.State, actor battle.EntityID) []event.Event
}

// UserRules is the escape hatch for integrator-defined event kinds and
// derived metrics.
type UserRules interface {
	// CheckUserEvent decides whether a user event is legal.
	CheckUserEvent(s *battle.State, p event.Payload) error
	// ApplyUserEvent commits a user event.
	ApplyUserEvent(s *battle.State, p event.Payload) []event.Event
	// Metric computes a named derived value on demand. ok is false for
	// unknown metric ids.
	Metric(s *battle.State, id string) (value int64, ok bool)
}

// Bundle composes one implementation per capability. Capabilities are
// independent; mixing implementations from different rulesets is fine as
// long as each is deterministic.
type Bundle struct {
	Team      TeamRules
	Character CharacterRules
	Space     SpaceRules
	Rounds    RoundsRules
	User      UserRules
}

// Validate reports the first missing capability, if any.
func (b Bundle) Validate() error {
	switch {
	case b.Team == nil:
		return fmt.Errorf("rules bundle: missing team rules")
	case b.Character == nil:
		return fmt.Errorf("rules bundle: missing character rules")
	case b.Space == nil:
		return fmt.Errorf("rules bundle: missing space rules")
	case b.Rounds == nil:
		return fmt.Errorf("rules bundle: missing rounds rules")
	case b.User == nil:
		return fmt.Errorf("rules bundle: missing user rules")
	default:
		return nil
	}
}
