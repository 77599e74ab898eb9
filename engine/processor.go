package engine

import (
	"log/slog"
	"sync"

	"github.com/saltmarsh/skirmish/battle"
	"github.com/saltmarsh/skirmish/event"
	"github.com/saltmarsh/skirmish/rules"
)

// defaultMaxDerived bounds the derived event cascade of a single submission.
const defaultMaxDerived = 1000

// defaultSubmitter is stamped on events submitted with an unset origin.
const defaultSubmitter = "local"

// Authorizer decides whether an event may enter the pipeline. A non-nil
// error blocks the event before validation; the processor reports it as a
// permission denial unless the authorizer already returned a typed *Error.
type Authorizer func(ev event.Event) error

// Option configures a Processor.
type Option func(*Processor)

// WithLogger sets the structured logger.
func WithLogger(log *slog.Logger) Option {
	return func(p *Processor) { p.log = log }
}

// WithMaxDerived bounds the derived event cascade per submission.
func WithMaxDerived(n int) Option {
	return func(p *Processor) { p.maxDerived = n }
}

// WithSubmitter sets the identity stamped on events whose origin is unset.
func WithSubmitter(id string) Option {
	return func(p *Processor) { p.submitter = id }
}

// WithAuthorizer installs a permission hook ahead of validation.
func WithAuthorizer(a Authorizer) Option {
	return func(p *Processor) { p.authorize = a }
}

// Processor owns one battle: its state, its timeline and the rules bundle
// that parameterizes every decision. It is the single writer; Submit holds an
// internal mutex, so concurrent submitters serialize and each event sees the
// state left by the previous one.
type Processor struct {
	mu         sync.Mutex
	rules      rules.Bundle
	state      *battle.State
	timeline   *Timeline
	sinks      *sinkRegistry
	log        *slog.Logger
	maxDerived int
	submitter  string
	authorize  Authorizer
}

// New creates a processor with an empty state and timeline.
func New(bundle rules.Bundle, opts ...Option) (*Processor, error) {
	if err := bundle.Validate(); err != nil {
		return nil, err
	}
	p := &Processor{
		rules:      bundle,
		state:      battle.NewState(),
		timeline:   NewTimeline(),
		log:        slog.Default(),
		maxDerived: defaultMaxDerived,
		submitter:  defaultSubmitter,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.sinks = newSinkRegistry(p.log)
	return p, nil
}

// State returns the battle state. Callers must treat it as read-only; all
// mutation goes through Submit.
func (p *Processor) State() *battle.State { return p.state }

// Timeline returns the event log.
func (p *Processor) Timeline() *Timeline { return p.timeline }

// RegisterSink subscribes a sink to committed entries under a unique id.
func (p *Processor) RegisterSink(id string, s Sink) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.sinks.add(id, s)
}

// RemoveSink unsubscribes a sink. Unknown ids are ignored.
func (p *Processor) RemoveSink(id string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sinks.remove(id)
}

// Metric resolves a metric id: system metrics first, then user metrics, then
// the bundle's on-demand metrics.
func (p *Processor) Metric(id string) (int64, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if v, ok := p.state.Metrics().System(id); ok {
		return v, true
	}
	if v, ok := p.state.Metrics().User(id); ok {
		return v, true
	}
	return p.rules.User.Metric(p.state, id)
}

// Submit runs one event through the full pipeline: origin resolution,
// permission check, rules validation, transactional apply, timeline append
// and sink notification, then drains the derived events the apply produced
// through the same pipeline.
//
// On success it returns every entry the submission committed, the root event
// first. On rejection it returns a typed *Error and the state is untouched.
// A derived event failing validation does not undo its ancestors; the
// failure is logged and the rest of the cascade continues.
func (p *Processor) Submit(ev event.Event) ([]Entry, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !ev.Origin.IsSet() {
		ev = ev.WithOrigin(event.BySubmitter(p.submitter))
	}
	if p.authorize != nil {
		if err := p.authorize(ev); err != nil {
			if typed, ok := err.(*Error); ok {
				return nil, typed
			}
			return nil, denied(ev, err.Error())
		}
	}

	root, derived, err := p.process(ev)
	if err != nil {
		p.log.Debug("event rejected",
			"kind", ev.Kind,
			"origin", ev.Origin.String(),
			"error", err,
		)
		return nil, err
	}
	committed := []Entry{root}

	var queue eventQueue
	queue.push(stampDerived(derived, root.Event.ID)...)
	steps := 0
	for {
		child, ok := queue.pop()
		if !ok {
			break
		}
		steps++
		if steps > p.maxDerived {
			// State mutations up to this point are committed; a cascade
			// this deep means a rules bug, not a recoverable rejection.
			return committed, integrityf("derived event cascade exceeded %d events", p.maxDerived)
		}
		entry, grandchildren, err := p.process(child)
		if err != nil {
			p.log.Warn("derived event rejected",
				"kind", child.Kind,
				"origin", child.Origin.String(),
				"error", err,
			)
			continue
		}
		committed = append(committed, entry)
		queue.push(stampDerived(grandchildren, entry.Event.ID)...)
	}
	return committed, nil
}

// process validates, applies and commits a single event. It returns the
// committed entry and the derived events its application produced.
func (p *Processor) process(ev event.Event) (Entry, []event.Event, error) {
	if err := p.validate(ev); err != nil {
		return Entry{}, nil, err
	}
	ev.ID = p.timeline.NextID()
	derived, err := p.apply(ev)
	if err != nil {
		return Entry{}, nil, err
	}
	p.state.Metrics().AddSystem(battle.MetricEventsProcessed, 1)
	sum, err := StateChecksum(p.state)
	if err != nil {
		return Entry{}, nil, integrityf("checksum after %s: %v", ev.String(), err)
	}
	entry := Entry{Event: ev, Checksum: sum}
	if err := p.timeline.Append(entry); err != nil {
		return Entry{}, nil, err
	}
	p.log.Debug("event applied",
		"kind", ev.Kind,
		"id", int64(ev.ID),
		"origin", ev.Origin.String(),
		"checksum", sum.String(),
	)
	p.sinks.notify(entry)
	return entry, derived, nil
}

// stampDerived links derived events to the applied parent. Events carrying an
// explicit origin already (a rule forwarding causality) keep it.
func stampDerived(evs []event.Event, parent event.ID) []event.Event {
	for i := range evs {
		if !evs[i].Origin.IsSet() {
			evs[i] = evs[i].WithOrigin(event.ByEvent(parent))
		}
	}
	return evs
}

// validate runs the engine invariants and the bundle checks for one event.
// It never mutates the state.
func (p *Processor) validate(ev event.Event) error {
	if !ev.Kind.IsValid() {
		return rejectf(ev, "empty event kind")
	}
	// A derived origin must name a committed predecessor. Committed ids are
	// monotonic, so a forward reference is the only way a causality cycle
	// could enter the timeline.
	if ev.Origin.Kind == event.OriginEvent &&
		(ev.Origin.Event < 0 || ev.Origin.Event >= p.timeline.NextID()) {
		return rejectf(ev, "origin event %d is not in the timeline", ev.Origin.Event)
	}
	if p.state.Phase() == battle.PhaseEnded {
		return rejectf(ev, "battle already ended")
	}
	entities := p.state.Entities()

	switch payload := ev.Payload.(type) {
	case event.CreateTeam:
		if err := p.checkFreshEntity(ev, battle.TeamEntity(payload.Team)); err != nil {
			return err
		}
		if err := p.rules.Team.CheckNewTeam(p.state, payload.Team); err != nil {
			return reject(ev, err)
		}

	case event.RemoveTeam:
		team, ok := entities.Team(payload.Team)
		if !ok {
			return rejectf(ev, "team %q not found", payload.Team)
		}
		if len(team.Members) > 0 {
			return rejectf(ev, "team %q still has %d members", payload.Team, len(team.Members))
		}
		if err := p.rules.Team.CheckRemoveTeam(p.state, payload.Team); err != nil {
			return reject(ev, err)
		}

	case event.CreateCreature:
		if _, ok := entities.Team(payload.Team); !ok {
			return rejectf(ev, "team %q not found", payload.Team)
		}
		if err := p.checkFreshEntity(ev, battle.CreatureEntity(payload.Creature)); err != nil {
			return err
		}
		if err := p.rules.Team.CheckNewCreature(p.state, payload.Team, payload.Creature); err != nil {
			return reject(ev, err)
		}
		claim := battle.Claim{
			Kind:   battle.ClaimSpawn,
			Entity: battle.CreatureEntity(payload.Creature),
			To:     payload.Position,
		}
		if err := p.rules.Space.CheckClaim(p.state, claim); err != nil {
			return reject(ev, err)
		}

	case event.RemoveCreature:
		if _, ok := entities.Creature(payload.Creature); !ok {
			return rejectf(ev, "creature %q not found", payload.Creature)
		}
		if err := p.rules.Space.CheckClaim(p.state, p.freeClaim(battle.CreatureEntity(payload.Creature))); err != nil {
			return reject(ev, err)
		}

	case event.CreateObject:
		if err := p.checkFreshEntity(ev, battle.ObjectEntity(payload.Object)); err != nil {
			return err
		}
		claim := battle.Claim{
			Kind:   battle.ClaimSpawn,
			Entity: battle.ObjectEntity(payload.Object),
			To:     payload.Position,
		}
		if err := p.rules.Space.CheckClaim(p.state, claim); err != nil {
			return reject(ev, err)
		}

	case event.RemoveObject:
		if _, ok := entities.Object(payload.Object); !ok {
			return rejectf(ev, "object %q not found", payload.Object)
		}
		if err := p.rules.Space.CheckClaim(p.state, p.freeClaim(battle.ObjectEntity(payload.Object))); err != nil {
			return reject(ev, err)
		}

	case event.MoveEntity:
		from, ok := p.state.Entity(payload.Entity)
		if !ok {
			return rejectf(ev, "entity %s not found", payload.Entity)
		}
		claim := battle.Claim{
			Kind:   battle.ClaimMove,
			Entity: payload.Entity,
			From:   from,
			To:     payload.Position,
		}
		if err := p.rules.Space.CheckClaim(p.state, claim); err != nil {
			return reject(ev, err)
		}

	case event.AlterStatistics:
		if _, ok := p.state.Entity(payload.Entity); !ok {
			return rejectf(ev, "entity %s not found", payload.Entity)
		}
		if err := p.rules.Character.CheckAlterStatistics(p.state, payload.Entity, payload.Alteration); err != nil {
			return reject(ev, err)
		}

	case event.AlterAbilities:
		if _, ok := p.state.Entity(payload.Entity); !ok {
			return rejectf(ev, "entity %s not found", payload.Entity)
		}
		if err := p.rules.Character.CheckAlterAbilities(p.state, payload.Entity, payload.Alteration); err != nil {
			return reject(ev, err)
		}

	case event.ActivateAbility:
		if _, ok := p.state.Entity(payload.Entity); !ok {
			return rejectf(ev, "entity %s not found", payload.Entity)
		}
		if err := p.rules.Character.CheckActivateAbility(p.state, payload.Entity, payload.Ability); err != nil {
			return reject(ev, err)
		}

	case event.InflictStatus:
		if _, ok := p.state.Entity(payload.Entity); !ok {
			return rejectf(ev, "entity %s not found", payload.Entity)
		}
		if err := p.rules.Character.CheckInflictStatus(p.state, payload.Entity, payload.Status); err != nil {
			return reject(ev, err)
		}

	case event.ClearStatus:
		if _, ok := p.state.Entity(payload.Entity); !ok {
			return rejectf(ev, "entity %s not found", payload.Entity)
		}
		if err := p.rules.Character.CheckClearStatus(p.state, payload.Entity, payload.Status); err != nil {
			return reject(ev, err)
		}

	case event.StartRound:
		if actor, acting := p.state.Rounds().Acting(); acting {
			return rejectf(ev, "round of %s already in progress", actor)
		}
		if !entities.Contains(payload.Actor) {
			return rejectf(ev, "entity %s not found", payload.Actor)
		}
		if err := p.rules.Rounds.CheckStartRound(p.state, payload.Actor); err != nil {
			return reject(ev, err)
		}

	case event.EndRound:
		if _, acting := p.state.Rounds().Acting(); !acting {
			return rejectf(ev, "no round in progress")
		}

	case event.ResetRounds:
		if actor, acting := p.state.Rounds().Acting(); acting {
			return rejectf(ev, "round of %s in progress", actor)
		}

	case event.EndBattle, event.Dummy:
		// Always legal while the battle is started.

	default:
		if !ev.Kind.IsUser() {
			return rejectf(ev, "unknown event kind %q", ev.Kind)
		}
		if err := p.rules.User.CheckUserEvent(p.state, ev.Payload); err != nil {
			return generic(ev, err)
		}
	}
	return nil
}

func (p *Processor) checkFreshEntity(ev event.Event, id battle.EntityID) error {
	if p.state.Entities().Contains(id) {
		return rejectf(ev, "duplicated %s id %q", id.Kind, id.ID)
	}
	if p.state.Entities().Retired(id) {
		return rejectf(ev, "%s id %q was retired and cannot be reused", id.Kind, id.ID)
	}
	return nil
}

func (p *Processor) freeClaim(id battle.EntityID) battle.Claim {
	from, _ := p.state.Space().At(id)
	return battle.Claim{Kind: battle.ClaimFree, Entity: id, From: from}
}

// apply commits one validated event to the state and returns the derived
// events produced by the rules hooks. Errors here are integrity violations;
// validation has already accepted the event.
func (p *Processor) apply(ev event.Event) ([]event.Event, error) {
	entities := p.state.Entities()
	metrics := p.state.Metrics()

	switch payload := ev.Payload.(type) {
	case event.CreateTeam:
		if err := entities.AddTeam(&battle.Team{ID: payload.Team}); err != nil {
			return nil, integrityf("apply %s: %v", ev.String(), err)
		}
		metrics.AddSystem(battle.MetricTeamsCreated, 1)
		return nil, nil

	case event.RemoveTeam:
		if err := entities.RemoveTeam(payload.Team); err != nil {
			return nil, integrityf("apply %s: %v", ev.String(), err)
		}
		return nil, nil

	case event.CreateCreature:
		stats, abilities := p.rules.Character.GenerateCreature(p.state, payload.Creature)
		creature := &battle.Creature{
			ID:         payload.Creature,
			Team:       payload.Team,
			Statistics: stats,
			Abilities:  abilities,
		}
		if err := entities.AddCreature(creature); err != nil {
			return nil, integrityf("apply %s: %v", ev.String(), err)
		}
		id := battle.CreatureEntity(payload.Creature)
		p.state.SetPosition(id, payload.Position)
		p.rules.Space.ApplyClaim(p.state, battle.Claim{Kind: battle.ClaimSpawn, Entity: id, To: payload.Position})
		metrics.AddSystem(battle.MetricCreaturesCreated, 1)
		return p.rules.Rounds.OnActorAdded(p.state, id), nil

	case event.RemoveCreature:
		id := battle.CreatureEntity(payload.Creature)
		derived := p.rules.Rounds.OnActorRemoved(p.state, id)
		p.rules.Space.ApplyClaim(p.state, p.freeClaim(id))
		p.state.Space().Vacate(id)
		if err := entities.RemoveCreature(payload.Creature); err != nil {
			return nil, integrityf("apply %s: %v", ev.String(), err)
		}
		return derived, nil

	case event.CreateObject:
		object := &battle.Object{
			ID:         payload.Object,
			Statistics: p.rules.Character.GenerateObject(p.state, payload.Object),
		}
		if err := entities.AddObject(object); err != nil {
			return nil, integrityf("apply %s: %v", ev.String(), err)
		}
		id := battle.ObjectEntity(payload.Object)
		p.state.SetPosition(id, payload.Position)
		p.rules.Space.ApplyClaim(p.state, battle.Claim{Kind: battle.ClaimSpawn, Entity: id, To: payload.Position})
		metrics.AddSystem(battle.MetricObjectsCreated, 1)
		return nil, nil

	case event.RemoveObject:
		id := battle.ObjectEntity(payload.Object)
		p.rules.Space.ApplyClaim(p.state, p.freeClaim(id))
		p.state.Space().Vacate(id)
		if err := entities.RemoveObject(payload.Object); err != nil {
			return nil, integrityf("apply %s: %v", ev.String(), err)
		}
		return nil, nil

	case event.MoveEntity:
		from, _ := p.state.Entity(payload.Entity)
		claim := battle.Claim{Kind: battle.ClaimMove, Entity: payload.Entity, From: from, To: payload.Position}
		p.rules.Space.ApplyClaim(p.state, claim)
		p.state.SetPosition(payload.Entity, payload.Position)
		return nil, nil

	case event.AlterStatistics:
		return p.rules.Character.AlterStatistics(p.state, payload.Entity, payload.Alteration), nil

	case event.AlterAbilities:
		return p.rules.Character.AlterAbilities(p.state, payload.Entity, payload.Alteration), nil

	case event.ActivateAbility:
		return p.rules.Character.ActivateAbility(p.state, payload.Entity, payload.Ability), nil

	case event.InflictStatus:
		status := payload.Status
		status.InflictedBy = ev.ID
		return p.rules.Character.InflictStatus(p.state, payload.Entity, status), nil

	case event.ClearStatus:
		return p.rules.Character.ClearStatus(p.state, payload.Entity, payload.Status), nil

	case event.StartRound:
		p.state.Rounds().Start(payload.Actor)
		return p.rules.Rounds.OnRoundStart(p.state, payload.Actor), nil

	case event.EndRound:
		// Status counters tick for every entity, registry order, before the
		// cursor advances.
		var derived []event.Event
		for _, id := range entities.All() {
			derived = append(derived, p.rules.Character.UpdateStatuses(p.state, id)...)
		}
		p.state.Rounds().End()
		metrics.AddSystem(battle.MetricRoundsCompleted, 1)
		return append(derived, p.rules.Rounds.OnRoundEnd(p.state)...), nil

	case event.ResetRounds:
		p.state.Rounds().Reset(p.rules.Rounds.Initiative(p.state))
		return nil, nil

	case event.EndBattle:
		p.state.End()
		return nil, nil

	case event.Dummy:
		return nil, nil

	default:
		return p.rules.User.ApplyUserEvent(p.state, ev.Payload), nil
	}
}
