// Package grid provides a reference ruleset on a square grid: exclusive
// occupancy, statistic-driven initiative and round-scoped status effects.
//
// It is deliberately small. Real games are expected to write their own
// bundle; grid exists to exercise every capability contract and to give the
// scenario runner and the tests something concrete to battle with.
package grid

import (
	"fmt"
	"sort"

	"github.com/saltmarsh/skirmish/battle"
	"github.com/saltmarsh/skirmish/event"
	"github.com/saltmarsh/skirmish/rules"
)

// Config parameterizes the grid ruleset.
type Config struct {
	// Width and Height bound the grid. Zero means unbounded on that axis.
	Width  int
	Height int
	// CreatureStatistics seeds every new creature. Base and Value are
	// both taken from Base.
	CreatureStatistics []battle.Statistic
	// CreatureAbilities seeds every new creature.
	CreatureAbilities []battle.Ability
	// ObjectStatistics seeds every new object.
	ObjectStatistics []battle.Statistic
	// InitiativeStatistic names the statistic that orders actors, highest
	// first. Empty disables statistic ordering (registry order is used).
	InitiativeStatistic string
}

// Bundle assembles a grid rules bundle from the config.
func Bundle(cfg Config) rules.Bundle {
	return rules.Bundle{
		Team:      Team{},
		Character: Character{cfg: cfg},
		Space:     Space{cfg: cfg},
		Rounds:    Rounds{cfg: cfg},
		User:      User{},
	}
}

// Team allows any team but refuses to remove one that still has members.
type Team struct{}

// CheckNewTeam implements rules.TeamRules.
func (Team) CheckNewTeam(*battle.State, battle.TeamID) error { return nil }

// CheckNewCreature implements rules.TeamRules.
func (Team) CheckNewCreature(*battle.State, battle.TeamID, battle.CreatureID) error { return nil }

// CheckRemoveTeam implements rules.TeamRules.
func (Team) CheckRemoveTeam(s *battle.State, id battle.TeamID) error {
	team, ok := s.Entities().Team(id)
	if ok && len(team.Members) > 0 {
		return fmt.Errorf("team %q is not empty", id)
	}
	return nil
}

// Space enforces grid bounds and exclusive occupancy.
type Space struct {
	cfg Config
}

// CheckClaim implements rules.SpaceRules.
func (r Space) CheckClaim(s *battle.State, c battle.Claim) error {
	if c.Kind == battle.ClaimFree {
		return nil
	}
	if err := r.checkBounds(c.To); err != nil {
		return err
	}
	// Exclusive occupancy: registry order scan keeps the check deterministic.
	for _, id := range s.Entities().All() {
		if id == c.Entity {
			continue
		}
		if pos, ok := s.Space().At(id); ok && pos == c.To {
			return fmt.Errorf("position %s occupied by %s", c.To, id)
		}
	}
	return nil
}

// ApplyClaim implements rules.SpaceRules. The engine's position assignments
// are the only layout model the grid needs.
func (Space) ApplyClaim(*battle.State, battle.Claim) {}

func (r Space) checkBounds(p battle.Position) error {
	if p.X < 0 || p.Y < 0 {
		return fmt.Errorf("position %s out of bounds", p)
	}
	if r.cfg.Width > 0 && p.X >= r.cfg.Width {
		return fmt.Errorf("position %s out of bounds", p)
	}
	if r.cfg.Height > 0 && p.Y >= r.cfg.Height {
		return fmt.Errorf("position %s out of bounds", p)
	}
	return nil
}

// Character seeds statistics from the config and maps each status onto the
// statistic sharing its id: potency is added while the status lasts.
//
// RoundsLeft semantics: zero means permanent; a positive count ticks down on
// every round end, and a status reaching zero is cleared through a derived
// status.clear event.
type Character struct {
	cfg Config
}

// GenerateCreature implements rules.CharacterRules.
func (r Character) GenerateCreature(*battle.State, battle.CreatureID) ([]battle.Statistic, []battle.Ability) {
	return cloneStatistics(r.cfg.CreatureStatistics), append([]battle.Ability(nil), r.cfg.CreatureAbilities...)
}

// GenerateObject implements rules.CharacterRules.
func (r Character) GenerateObject(*battle.State, battle.ObjectID) []battle.Statistic {
	return cloneStatistics(r.cfg.ObjectStatistics)
}

// CheckAlterStatistics implements rules.CharacterRules.
func (Character) CheckAlterStatistics(s *battle.State, id battle.EntityID, alt battle.StatisticsAlteration) error {
	for statID := range alt {
		if _, ok := s.Statistic(id, statID); !ok {
			return fmt.Errorf("%s has no statistic %q", id, statID)
		}
	}
	return nil
}

// AlterStatistics implements rules.CharacterRules.
func (Character) AlterStatistics(s *battle.State, id battle.EntityID, alt battle.StatisticsAlteration) []event.Event {
	// Deterministic order: deltas are commutative, but walk sorted ids anyway.
	ids := make([]string, 0, len(alt))
	for statID := range alt {
		ids = append(ids, statID)
	}
	sort.Strings(ids)
	for _, statID := range ids {
		if stat, ok := s.Statistic(id, statID); ok {
			stat.Value += alt[statID]
		}
	}
	return nil
}

// CheckAlterAbilities implements rules.CharacterRules.
func (Character) CheckAlterAbilities(s *battle.State, id battle.EntityID, alt battle.AbilitiesAlteration) error {
	for abilityID := range alt {
		if _, ok := s.Ability(id, abilityID); !ok {
			return fmt.Errorf("%s has no ability %q", id, abilityID)
		}
	}
	return nil
}

// AlterAbilities implements rules.CharacterRules.
func (Character) AlterAbilities(s *battle.State, id battle.EntityID, alt battle.AbilitiesAlteration) []event.Event {
	ids := make([]string, 0, len(alt))
	for abilityID := range alt {
		ids = append(ids, abilityID)
	}
	sort.Strings(ids)
	for _, abilityID := range ids {
		if ability, ok := s.Ability(id, abilityID); ok {
			ability.Power += alt[abilityID]
		}
	}
	return nil
}

// CheckActivateAbility implements rules.CharacterRules. Power is the number
// of charges left; an ability at zero cannot fire until something alters it
// back up.
func (Character) CheckActivateAbility(s *battle.State, id battle.EntityID, abilityID string) error {
	ability, ok := s.Ability(id, abilityID)
	if !ok {
		return fmt.Errorf("%s has no ability %q", id, abilityID)
	}
	if ability.Power <= 0 {
		return fmt.Errorf("ability %q on %s is exhausted", abilityID, id)
	}
	return nil
}

// ActivateAbility implements rules.CharacterRules. Activation spends one
// charge; the effect of firing the ability belongs to the game on top.
func (Character) ActivateAbility(s *battle.State, id battle.EntityID, abilityID string) []event.Event {
	if ability, ok := s.Ability(id, abilityID); ok {
		ability.Power--
	}
	return nil
}

// CheckInflictStatus implements rules.CharacterRules.
func (Character) CheckInflictStatus(s *battle.State, id battle.EntityID, st battle.Status) error {
	statuses, ok := s.Statuses(id)
	if !ok {
		return fmt.Errorf("%s cannot carry statuses", id)
	}
	for _, existing := range statuses {
		if existing.ID == st.ID {
			return fmt.Errorf("status %q already present on %s", st.ID, id)
		}
	}
	if _, ok := s.Statistic(id, st.ID); !ok {
		return fmt.Errorf("%s has no statistic %q for status to alter", id, st.ID)
	}
	return nil
}

// InflictStatus implements rules.CharacterRules.
func (Character) InflictStatus(s *battle.State, id battle.EntityID, st battle.Status) []event.Event {
	s.AddStatus(id, st)
	if stat, ok := s.Statistic(id, st.ID); ok {
		stat.Value += st.Potency
	}
	return nil
}

// CheckClearStatus implements rules.CharacterRules.
func (Character) CheckClearStatus(s *battle.State, id battle.EntityID, statusID string) error {
	statuses, ok := s.Statuses(id)
	if !ok {
		return fmt.Errorf("%s cannot carry statuses", id)
	}
	for _, existing := range statuses {
		if existing.ID == statusID {
			return nil
		}
	}
	return fmt.Errorf("status %q already absent on %s", statusID, id)
}

// ClearStatus implements rules.CharacterRules.
func (Character) ClearStatus(s *battle.State, id battle.EntityID, statusID string) []event.Event {
	statuses, _ := s.Statuses(id)
	for _, st := range statuses {
		if st.ID == statusID {
			if stat, ok := s.Statistic(id, st.ID); ok {
				stat.Value -= st.Potency
			}
			break
		}
	}
	s.RemoveStatus(id, statusID)
	return nil
}

// UpdateStatuses implements rules.CharacterRules. Counters tick during the
// apply phase so replay reproduces them; expiry goes through a derived
// status.clear event so it lands in the timeline.
func (Character) UpdateStatuses(s *battle.State, id battle.EntityID) []event.Event {
	statuses, ok := s.Statuses(id)
	if !ok {
		return nil
	}
	var derived []event.Event
	for i := range statuses {
		if statuses[i].RoundsLeft <= 0 {
			continue // permanent
		}
		statuses[i].RoundsLeft--
		if statuses[i].RoundsLeft == 0 {
			derived = append(derived, event.New(event.ClearStatus{
				Entity: id,
				Status: statuses[i].ID,
			}))
		}
	}
	return derived
}

// Rounds orders creatures by the initiative statistic, highest first, and
// enforces the ordering once one has been computed.
type Rounds struct {
	cfg Config
}

// CheckStartRound implements rules.RoundsRules.
func (Rounds) CheckStartRound(s *battle.State, actor battle.EntityID) error {
	if actor.Kind != battle.KindCreature {
		return fmt.Errorf("%s is not an actor", actor)
	}
	if next, ok := s.Rounds().Next(); ok && next != actor {
		return fmt.Errorf("not %s's turn", actor)
	}
	return nil
}

// Initiative implements rules.RoundsRules.
func (r Rounds) Initiative(s *battle.State) []battle.EntityID {
	creatures := s.Entities().Creatures()
	order := make([]battle.EntityID, 0, len(creatures))
	for _, c := range creatures {
		order = append(order, battle.CreatureEntity(c.ID))
	}
	if r.cfg.InitiativeStatistic == "" {
		return order
	}
	value := func(id battle.EntityID) int64 {
		if stat, ok := s.Statistic(id, r.cfg.InitiativeStatistic); ok {
			return stat.Value
		}
		return 0
	}
	// Stable sort: ties keep registry insertion order.
	sort.SliceStable(order, func(i, j int) bool { return value(order[i]) > value(order[j]) })
	return order
}

// OnRoundStart implements rules.RoundsRules.
func (Rounds) OnRoundStart(*battle.State, battle.EntityID) []event.Event { return nil }

// OnRoundEnd implements rules.RoundsRules.
func (Rounds) OnRoundEnd(*battle.State) []event.Event { return nil }

// OnActorAdded implements rules.RoundsRules. The ordering stays fixed until
// the next rounds.reset; late joiners act from the following reset onwards.
func (Rounds) OnActorAdded(*battle.State, battle.EntityID) []event.Event { return nil }

// OnActorRemoved implements rules.RoundsRules. Removing the acting creature
// ends its round; the ordering drops the actor either way.
func (Rounds) OnActorRemoved(s *battle.State, actor battle.EntityID) []event.Event {
	acting := s.Rounds().IsActing(actor)
	s.Rounds().DropActor(actor)
	if acting {
		return []event.Event{event.New(event.EndRound{})}
	}
	return nil
}

// User rejects unknown user events and exposes a couple of derived metrics.
type User struct{}

// CheckUserEvent implements rules.UserRules.
func (User) CheckUserEvent(_ *battle.State, p event.Payload) error {
	return fmt.Errorf("unsupported user event %q", p.Kind())
}

// ApplyUserEvent implements rules.UserRules.
func (User) ApplyUserEvent(*battle.State, event.Payload) []event.Event { return nil }

// Metric implements rules.UserRules.
func (User) Metric(s *battle.State, id string) (int64, bool) {
	switch id {
	case "grid.creatures":
		return int64(len(s.Entities().Creatures())), true
	case "grid.teams":
		return int64(len(s.Entities().Teams())), true
	default:
		return 0, false
	}
}

func cloneStatistics(stats []battle.Statistic) []battle.Statistic {
	out := make([]battle.Statistic, len(stats))
	for i, st := range stats {
		out[i] = battle.Statistic{ID: st.ID, Base: st.Base, Value: st.Base}
	}
	return out
}
