package scenario

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/saltmarsh/skirmish/battle"
	"github.com/saltmarsh/skirmish/engine"
	"github.com/saltmarsh/skirmish/event"
	"github.com/saltmarsh/skirmish/rules"
	"github.com/saltmarsh/skirmish/rules/empty"
	"github.com/saltmarsh/skirmish/rules/grid"
)

// TraceEvent is one committed entry in the result trace. Derived events
// appear with their parent's id in the origin, so the causal chain is
// readable straight off the trace.
type TraceEvent struct {
	ID     int64  `json:"id"`
	Kind   string `json:"kind"`
	Origin string `json:"origin"`
}

// RejectedStep records one expected rejection.
type RejectedStep struct {
	Step   int    `json:"step"`
	Kind   string `json:"kind"`
	Code   string `json:"code"`
	Reason string `json:"reason"`
}

// Result captures a scenario execution.
type Result struct {
	ScenarioName string          `json:"scenario_name"`
	Trace        []TraceEvent    `json:"trace"`
	Rejected     []RejectedStep  `json:"rejected,omitempty"`
	Final        battle.Snapshot `json:"final"`
}

// Run executes the scenario on a fresh engine. A step that behaves
// differently than its expect clause fails the run.
func Run(s *Scenario) (*Result, error) {
	return RunWithSink(s, nil)
}

// RunWithSink executes the scenario with a sink subscribed to the committed
// entries, so a run can be persisted or streamed while it executes.
func RunWithSink(s *Scenario, sink engine.Sink) (*Result, error) {
	bundle, err := s.Bundle()
	if err != nil {
		return nil, err
	}
	// Scenario runs are quiet; the trace is the output.
	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
	proc, err := engine.New(bundle, engine.WithLogger(quiet))
	if err != nil {
		return nil, err
	}
	if sink != nil {
		if err := proc.RegisterSink("scenario.sink", sink); err != nil {
			return nil, err
		}
	}

	result := &Result{ScenarioName: s.Name}
	for i, step := range s.Flow {
		ev, err := buildEvent(step)
		if err != nil {
			return nil, fmt.Errorf("flow[%d]: %w", i, err)
		}
		entries, err := proc.Submit(ev)
		if err != nil {
			var typed *engine.Error
			if !errors.As(err, &typed) {
				return nil, fmt.Errorf("flow[%d] %s: %w", i, step.Event, err)
			}
			if step.Expect == "" {
				return nil, fmt.Errorf("flow[%d] %s: unexpected rejection: %w", i, step.Event, err)
			}
			if string(typed.Code) != step.Expect {
				return nil, fmt.Errorf("flow[%d] %s: rejected with %s, expected %s",
					i, step.Event, typed.Code, step.Expect)
			}
			result.Rejected = append(result.Rejected, RejectedStep{
				Step:   i,
				Kind:   step.Event,
				Code:   string(typed.Code),
				Reason: typed.Reason,
			})
			continue
		}
		if step.Expect != "" {
			return nil, fmt.Errorf("flow[%d] %s: applied, expected rejection %s", i, step.Event, step.Expect)
		}
		for _, e := range entries {
			result.Trace = append(result.Trace, TraceEvent{
				ID:     int64(e.Event.ID),
				Kind:   string(e.Event.Kind),
				Origin: e.Event.Origin.String(),
			})
		}
	}
	result.Final = proc.State().Snapshot()
	return result, nil
}

// Bundle assembles the rules bundle the scenario names.
func (s *Scenario) Bundle() (rules.Bundle, error) {
	switch s.Rules {
	case "empty":
		return empty.Bundle(), nil
	case "grid":
		cfg := grid.Config{}
		if s.Grid != nil {
			cfg.Width = s.Grid.Width
			cfg.Height = s.Grid.Height
			cfg.InitiativeStatistic = s.Grid.InitiativeStatistic
			for _, seed := range s.Grid.CreatureStatistics {
				cfg.CreatureStatistics = append(cfg.CreatureStatistics,
					battle.Statistic{ID: seed.ID, Base: seed.Base, Value: seed.Base})
			}
			for _, seed := range s.Grid.CreatureAbilities {
				cfg.CreatureAbilities = append(cfg.CreatureAbilities,
					battle.Ability{ID: seed.ID, Power: seed.Power})
			}
			for _, seed := range s.Grid.ObjectStatistics {
				cfg.ObjectStatistics = append(cfg.ObjectStatistics,
					battle.Statistic{ID: seed.ID, Base: seed.Base, Value: seed.Base})
			}
		}
		return grid.Bundle(cfg), nil
	default:
		return rules.Bundle{}, fmt.Errorf("unknown rules %q", s.Rules)
	}
}

func buildEvent(step Step) (event.Event, error) {
	switch event.Kind(step.Event) {
	case event.KindCreateTeam:
		return event.New(event.CreateTeam{Team: battle.TeamID(step.Team)}), nil
	case event.KindRemoveTeam:
		return event.New(event.RemoveTeam{Team: battle.TeamID(step.Team)}), nil
	case event.KindCreateCreature:
		return event.New(event.CreateCreature{
			Creature: battle.CreatureID(step.Creature),
			Team:     battle.TeamID(step.Team),
			Position: battle.Position{X: step.X, Y: step.Y},
		}), nil
	case event.KindRemoveCreature:
		return event.New(event.RemoveCreature{Creature: battle.CreatureID(step.Creature)}), nil
	case event.KindCreateObject:
		return event.New(event.CreateObject{
			Object:   battle.ObjectID(step.Object),
			Position: battle.Position{X: step.X, Y: step.Y},
		}), nil
	case event.KindRemoveObject:
		return event.New(event.RemoveObject{Object: battle.ObjectID(step.Object)}), nil
	case event.KindMoveEntity:
		id, err := parseEntity(step.Entity)
		if err != nil {
			return event.Event{}, err
		}
		return event.New(event.MoveEntity{Entity: id, Position: battle.Position{X: step.X, Y: step.Y}}), nil
	case event.KindAlterStatistics:
		id, err := parseEntity(step.Entity)
		if err != nil {
			return event.Event{}, err
		}
		return event.New(event.AlterStatistics{Entity: id, Alteration: step.Alterations}), nil
	case event.KindAlterAbilities:
		id, err := parseEntity(step.Entity)
		if err != nil {
			return event.Event{}, err
		}
		return event.New(event.AlterAbilities{Entity: id, Alteration: step.Alterations}), nil
	case event.KindActivateAbility:
		id, err := parseEntity(step.Entity)
		if err != nil {
			return event.Event{}, err
		}
		return event.New(event.ActivateAbility{Entity: id, Ability: step.Ability}), nil
	case event.KindInflictStatus:
		id, err := parseEntity(step.Entity)
		if err != nil {
			return event.Event{}, err
		}
		return event.New(event.InflictStatus{
			Entity: id,
			Status: battle.Status{
				ID:          step.Status,
				Potency:     step.Potency,
				RoundsLeft:  step.Rounds,
				InflictedBy: battle.NoEvent,
			},
		}), nil
	case event.KindClearStatus:
		id, err := parseEntity(step.Entity)
		if err != nil {
			return event.Event{}, err
		}
		return event.New(event.ClearStatus{Entity: id, Status: step.Status}), nil
	case event.KindStartRound:
		id, err := parseEntity(step.Actor)
		if err != nil {
			return event.Event{}, err
		}
		return event.New(event.StartRound{Actor: id}), nil
	case event.KindEndRound:
		return event.New(event.EndRound{}), nil
	case event.KindResetRounds:
		return event.New(event.ResetRounds{}), nil
	case event.KindEndBattle:
		return event.New(event.EndBattle{}), nil
	case event.KindDummy:
		return event.New(event.Dummy{}), nil
	default:
		return event.Event{}, fmt.Errorf("unknown event kind %q", step.Event)
	}
}
