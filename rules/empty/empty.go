// Package empty provides rules that accept everything and do nothing.
// Useful as a starting point for custom bundles and for tests that only
// exercise the engine pipeline.
package empty

import (
	"github.com/saltmarsh/skirmish/battle"
	"github.com/saltmarsh/skirmish/event"
	"github.com/saltmarsh/skirmish/rules"
)

// Bundle returns a bundle composed entirely of no-op rules.
func Bundle() rules.Bundle {
	return rules.Bundle{
		Team:      Team{},
		Character: Character{},
		Space:     Space{},
		Rounds:    Rounds{},
		User:      User{},
	}
}

// Team accepts every team decision.
type Team struct{}

// CheckNewTeam implements rules.TeamRules.
func (Team) CheckNewTeam(*battle.State, battle.TeamID) error { return nil }

// CheckNewCreature implements rules.TeamRules.
func (Team) CheckNewCreature(*battle.State, battle.TeamID, battle.CreatureID) error { return nil }

// CheckRemoveTeam implements rules.TeamRules.
func (Team) CheckRemoveTeam(*battle.State, battle.TeamID) error { return nil }

// Character generates nothing and accepts every alteration.
type Character struct{}

// GenerateCreature implements rules.CharacterRules.
func (Character) GenerateCreature(*battle.State, battle.CreatureID) ([]battle.Statistic, []battle.Ability) {
	return nil, nil
}

// GenerateObject implements rules.CharacterRules.
func (Character) GenerateObject(*battle.State, battle.ObjectID) []battle.Statistic { return nil }

// CheckAlterStatistics implements rules.CharacterRules.
func (Character) CheckAlterStatistics(*battle.State, battle.EntityID, battle.StatisticsAlteration) error {
	return nil
}

// AlterStatistics implements rules.CharacterRules.
func (Character) AlterStatistics(*battle.State, battle.EntityID, battle.StatisticsAlteration) []event.Event {
	return nil
}

// CheckAlterAbilities implements rules.CharacterRules.
func (Character) CheckAlterAbilities(*battle.State, battle.EntityID, battle.AbilitiesAlteration) error {
	return nil
}

// AlterAbilities implements rules.CharacterRules.
func (Character) AlterAbilities(*battle.State, battle.EntityID, battle.AbilitiesAlteration) []event.Event {
	return nil
}

// CheckActivateAbility implements rules.CharacterRules.
func (Character) CheckActivateAbility(*battle.State, battle.EntityID, string) error { return nil }

// ActivateAbility implements rules.CharacterRules.
func (Character) ActivateAbility(*battle.State, battle.EntityID, string) []event.Event { return nil }

// CheckInflictStatus implements rules.CharacterRules.
func (Character) CheckInflictStatus(*battle.State, battle.EntityID, battle.Status) error { return nil }

// InflictStatus stores the status without any effect.
func (Character) InflictStatus(s *battle.State, id battle.EntityID, st battle.Status) []event.Event {
	s.AddStatus(id, st)
	return nil
}

// CheckClearStatus implements rules.CharacterRules.
func (Character) CheckClearStatus(*battle.State, battle.EntityID, string) error { return nil }

// ClearStatus drops the status without any effect.
func (Character) ClearStatus(s *battle.State, id battle.EntityID, statusID string) []event.Event {
	s.RemoveStatus(id, statusID)
	return nil
}

// UpdateStatuses implements rules.CharacterRules.
func (Character) UpdateStatuses(*battle.State, battle.EntityID) []event.Event { return nil }

// Space accepts every claim.
type Space struct{}

// CheckClaim implements rules.SpaceRules.
func (Space) CheckClaim(*battle.State, battle.Claim) error { return nil }

// ApplyClaim implements rules.SpaceRules.
func (Space) ApplyClaim(*battle.State, battle.Claim) {}

// Rounds lets anyone act and keeps no ordering.
type Rounds struct{}

// CheckStartRound implements rules.RoundsRules.
func (Rounds) CheckStartRound(*battle.State, battle.EntityID) error { return nil }

// Initiative implements rules.RoundsRules.
func (Rounds) Initiative(*battle.State) []battle.EntityID { return nil }

// OnRoundStart implements rules.RoundsRules.
func (Rounds) OnRoundStart(*battle.State, battle.EntityID) []event.Event { return nil }

// OnRoundEnd implements rules.RoundsRules.
func (Rounds) OnRoundEnd(*battle.State) []event.Event { return nil }

// OnActorAdded implements rules.RoundsRules.
func (Rounds) OnActorAdded(*battle.State, battle.EntityID) []event.Event { return nil }

// OnActorRemoved implements rules.RoundsRules.
func (Rounds) OnActorRemoved(*battle.State, battle.EntityID) []event.Event { return nil }

// User accepts every user event and knows no metrics.
type User struct{}

// CheckUserEvent implements rules.UserRules.
func (User) CheckUserEvent(*battle.State, event.Payload) error { return nil }

// ApplyUserEvent implements rules.UserRules.
func (User) ApplyUserEvent(*battle.State, event.Payload) []event.Event { return nil }

// Metric implements rules.UserRules.
func (User) Metric(*battle.State, string) (int64, bool) { return 0, false }
