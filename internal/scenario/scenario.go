// Package scenario runs YAML-described battles for conformance testing. A
// scenario names a ruleset, lists the events to submit and states what each
// submission should do; the runner executes it on a fresh engine and captures
// the trace and the final snapshot for golden comparison.
package scenario

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/saltmarsh/skirmish/battle"
)

// Scenario defines one conformance scenario.
type Scenario struct {
	// Name uniquely identifies the scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what the scenario validates.
	Description string `yaml:"description"`

	// Rules selects the bundle: "empty" or "grid".
	Rules string `yaml:"rules"`

	// Grid parameterizes the grid bundle. Ignored for "empty".
	Grid *GridConfig `yaml:"grid,omitempty"`

	// Flow lists the events to submit, in order.
	Flow []Step `yaml:"flow"`
}

// GridConfig mirrors the grid ruleset configuration in YAML form.
type GridConfig struct {
	Width               int             `yaml:"width,omitempty"`
	Height              int             `yaml:"height,omitempty"`
	CreatureStatistics  []StatisticSeed `yaml:"creature_statistics,omitempty"`
	CreatureAbilities   []AbilitySeed   `yaml:"creature_abilities,omitempty"`
	ObjectStatistics    []StatisticSeed `yaml:"object_statistics,omitempty"`
	InitiativeStatistic string          `yaml:"initiative_statistic,omitempty"`
}

// StatisticSeed is one seeded statistic.
type StatisticSeed struct {
	ID   string `yaml:"id"`
	Base int64  `yaml:"base"`
}

// AbilitySeed is one seeded ability.
type AbilitySeed struct {
	ID    string `yaml:"id"`
	Power int64  `yaml:"power"`
}

// Step is one submission. The event kind selects which of the remaining
// fields apply; unused fields stay zero.
type Step struct {
	// Event is the event kind, e.g. "creature.create".
	Event string `yaml:"event"`

	Team     string `yaml:"team,omitempty"`
	Creature string `yaml:"creature,omitempty"`
	Object   string `yaml:"object,omitempty"`

	// Entity and Actor use the kind:id form, e.g. "creature:hero".
	Entity string `yaml:"entity,omitempty"`
	Actor  string `yaml:"actor,omitempty"`

	X int `yaml:"x,omitempty"`
	Y int `yaml:"y,omitempty"`

	// Status fields for status.inflict and status.clear.
	Status  string `yaml:"status,omitempty"`
	Potency int64  `yaml:"potency,omitempty"`
	Rounds  int    `yaml:"rounds,omitempty"`

	// Ability for ability.activate.
	Ability string `yaml:"ability,omitempty"`

	// Alterations for entity.alter_statistics and entity.alter_abilities.
	Alterations map[string]int64 `yaml:"alterations,omitempty"`

	// Expect names the rejection code this step should fail with, e.g.
	// "VALIDATION_REJECTED". Empty means the step must apply.
	Expect string `yaml:"expect,omitempty"`
}

// Load reads and parses a scenario file, rejecting unknown fields.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}
	var s Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&s); err != nil {
		return nil, fmt.Errorf("parse scenario: %w", err)
	}
	if err := s.validate(); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &s, nil
}

func (s *Scenario) validate() error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Rules != "empty" && s.Rules != "grid" {
		return fmt.Errorf("rules must be \"empty\" or \"grid\", got %q", s.Rules)
	}
	if len(s.Flow) == 0 {
		return fmt.Errorf("flow list is required and must be non-empty")
	}
	for i, step := range s.Flow {
		if step.Event == "" {
			return fmt.Errorf("flow[%d]: event is required", i)
		}
	}
	return nil
}

// parseEntity resolves the kind:id form used by entity and actor fields.
func parseEntity(s string) (battle.EntityID, error) {
	kind, id, ok := strings.Cut(s, ":")
	if !ok {
		return battle.EntityID{}, fmt.Errorf("entity %q: want kind:id", s)
	}
	switch kind {
	case "team":
		return battle.TeamEntity(battle.TeamID(id)), nil
	case "creature":
		return battle.CreatureEntity(battle.CreatureID(id)), nil
	case "object":
		return battle.ObjectEntity(battle.ObjectID(id)), nil
	default:
		return battle.EntityID{}, fmt.Errorf("entity %q: unknown kind %q", s, kind)
	}
}
