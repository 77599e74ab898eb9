package engine

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/saltmarsh/skirmish/battle"
	"github.com/saltmarsh/skirmish/event"
	"github.com/saltmarsh/skirmish/rules"
)

// PlayerID identifies a connected player on the authoritative server.
type PlayerID string

// Server wraps a processor with the authoritative side of the client-server
// protocol: per-player team rights, undo and redo over round checkpoints and
// rebuild-by-replay.
//
// The server is the only writer of its processor. Clients never mutate state
// directly; they send intents, the server verifies and either commits or
// answers with the typed rejection.
type Server struct {
	mu      sync.Mutex
	proc    *Processor
	bundle  rules.Bundle
	opts    []Option
	log     *slog.Logger
	auth    bool
	rights  map[PlayerID]map[battle.TeamID]bool
	sinks   map[string]Sink
	sinkIDs []string
	redo    []Entry
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithAuthentication toggles right checks on client submissions. Disabled,
// every registered player may submit any non-reserved event.
func WithAuthentication(enabled bool) ServerOption {
	return func(s *Server) { s.auth = enabled }
}

// WithServerLogger sets the structured logger.
func WithServerLogger(log *slog.Logger) ServerOption {
	return func(s *Server) { s.log = log }
}

// NewServer creates an authoritative server over a fresh battle.
// The processor options are retained so undo can rebuild with them.
func NewServer(bundle rules.Bundle, procOpts []Option, opts ...ServerOption) (*Server, error) {
	s := &Server{
		bundle: bundle,
		opts:   procOpts,
		log:    slog.Default(),
		auth:   true,
		rights: make(map[PlayerID]map[battle.TeamID]bool),
		sinks:  make(map[string]Sink),
	}
	for _, opt := range opts {
		opt(s)
	}
	proc, err := New(bundle, append(procOpts, WithSubmitter("server"))...)
	if err != nil {
		return nil, err
	}
	s.proc = proc
	return s, nil
}

// Processor exposes the underlying processor for reads and server-side
// submissions. Undo replaces it; do not retain the pointer across calls.
func (s *Server) Processor() *Processor {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.proc
}

// AddPlayer registers a new player and returns its generated id.
func (s *Server) AddPlayer() PlayerID {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := PlayerID(uuid.NewString())
	s.rights[id] = make(map[battle.TeamID]bool)
	return id
}

// RemovePlayer drops a player and all its rights.
func (s *Server) RemovePlayer(id PlayerID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rights, id)
}

// HasPlayer reports whether the player is registered.
func (s *Server) HasPlayer(id PlayerID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.rights[id]
	return ok
}

// GrantTeam gives a player the right to act for a team.
func (s *Server) GrantTeam(player PlayerID, team battle.TeamID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if teams, ok := s.rights[player]; ok {
		teams[team] = true
	}
}

// RevokeTeam removes a player's right to act for a team.
func (s *Server) RevokeTeam(player PlayerID, team battle.TeamID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if teams, ok := s.rights[player]; ok {
		delete(teams, team)
	}
}

// Rights returns the teams a player may act for.
func (s *Server) Rights(player PlayerID) []battle.TeamID {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []battle.TeamID
	for team := range s.rights[player] {
		out = append(out, team)
	}
	return out
}

// RegisterSink subscribes a sink to committed entries. The server remembers
// the registration so undo's rebuild re-subscribes it.
func (s *Server) RegisterSink(id string, sink Sink) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.proc.RegisterSink(id, sink); err != nil {
		return err
	}
	s.sinks[id] = sink
	s.sinkIDs = append(s.sinkIDs, id)
	return nil
}

// RemoveSink unsubscribes a sink.
func (s *Server) RemoveSink(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.proc.RemoveSink(id)
	delete(s.sinks, id)
	for i, existing := range s.sinkIDs {
		if existing == id {
			s.sinkIDs = append(s.sinkIDs[:i], s.sinkIDs[i+1:]...)
			break
		}
	}
}

// Submit commits a server-originated event. Reserved kinds are allowed.
func (s *Server) Submit(ev event.Event) ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries, err := s.proc.Submit(ev)
	if len(entries) > 0 {
		s.redo = nil
	}
	return entries, err
}

// SubmitClient verifies a player's intent and commits it on success. The
// event's origin is stamped with the player id; an explicit origin on a
// client submission is refused, clients do not speak for others.
func (s *Server) SubmitClient(player PlayerID, ev event.Event) ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ev.Origin.IsSet() {
		return nil, denied(ev, "client submissions cannot carry an explicit origin")
	}
	if _, ok := s.rights[player]; !ok {
		return nil, denied(ev, "unknown player")
	}
	ev = ev.WithOrigin(event.BySubmitter(string(player)))
	if err := s.checkRights(player, ev); err != nil {
		return nil, err
	}
	entries, err := s.proc.Submit(ev)
	if len(entries) > 0 {
		s.redo = nil
	}
	return entries, err
}

// checkRights enforces the permission model: battle and team lifecycle plus
// initiative resets stay server-side; everything else needs the right over
// the team the event acts for.
func (s *Server) checkRights(player PlayerID, ev event.Event) error {
	switch payload := ev.Payload.(type) {
	case event.CreateTeam, event.RemoveTeam, event.ResetRounds, event.EndBattle,
		event.CreateObject, event.RemoveObject:
		return denied(ev, "reserved for the server")
	case event.CreateCreature:
		return s.requireTeam(player, ev, payload.Team)
	case event.RemoveCreature:
		return s.requireEntityTeam(player, ev, battle.CreatureEntity(payload.Creature))
	case event.MoveEntity:
		return s.requireEntityTeam(player, ev, payload.Entity)
	case event.AlterStatistics:
		return s.requireEntityTeam(player, ev, payload.Entity)
	case event.AlterAbilities:
		return s.requireEntityTeam(player, ev, payload.Entity)
	case event.ActivateAbility:
		return s.requireEntityTeam(player, ev, payload.Entity)
	case event.InflictStatus:
		return s.requireEntityTeam(player, ev, payload.Entity)
	case event.ClearStatus:
		return s.requireEntityTeam(player, ev, payload.Entity)
	case event.StartRound:
		return s.requireEntityTeam(player, ev, payload.Actor)
	case event.EndRound:
		actor, acting := s.proc.State().Rounds().Acting()
		if !acting {
			// Nothing to end; let validation produce the precise rejection.
			return nil
		}
		return s.requireEntityTeam(player, ev, actor)
	default:
		// User events are open to any registered player; user rules decide.
		return nil
	}
}

func (s *Server) requireTeam(player PlayerID, ev event.Event, team battle.TeamID) error {
	if !s.auth {
		return nil
	}
	if s.rights[player][team] {
		return nil
	}
	return denied(ev, "no rights over team "+string(team))
}

func (s *Server) requireEntityTeam(player PlayerID, ev event.Event, id battle.EntityID) error {
	if !s.auth {
		return nil
	}
	if id.Kind != battle.KindCreature {
		return denied(ev, "no rights over "+id.String())
	}
	creature, ok := s.proc.State().Entities().Creature(battle.CreatureID(id.ID))
	if !ok {
		// Let validation report the missing entity.
		return nil
	}
	return s.requireTeam(player, ev, creature.Team)
}

// Undo rolls the battle back to the latest round boundary before the head
// and rebuilds the state by replay. The removed suffix is retained for Redo
// until the next successful submission.
func (s *Server) Undo() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	head, ok := s.proc.Timeline().Head()
	if !ok {
		return integrityf("undo: timeline is empty")
	}
	checkpoint := s.proc.Timeline().LastCheckpoint(event.KindEndRound, head.Event.ID-1)
	removed := s.proc.Timeline().TruncateAfter(checkpoint)
	// Sinks mirroring the timeline must drop the suffix too, or their copy
	// keeps the undone history under ids the battle will reuse.
	for _, id := range s.sinkIDs {
		ts, ok := s.sinks[id].(TruncatingSink)
		if !ok {
			continue
		}
		if err := ts.Truncate(checkpoint); err != nil {
			return integrityf("undo: sink %q truncate: %v", id, err)
		}
	}
	rebuilt, err := Replay(s.bundle, s.proc.Timeline().Entries(), append(s.opts, WithSubmitter("server"))...)
	if err != nil {
		return err
	}
	for _, id := range s.sinkIDs {
		if err := rebuilt.RegisterSink(id, s.sinks[id]); err != nil {
			return err
		}
	}
	s.proc = rebuilt
	s.redo = append(removed, s.redo...)
	s.log.Info("timeline rolled back",
		"checkpoint", int64(checkpoint),
		"removed", len(removed),
	)
	return nil
}

// Redo re-applies the oldest undone round from the redo buffer. Fails when
// there is nothing to redo.
func (s *Server) Redo() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.redo) == 0 {
		return integrityf("redo: nothing to redo")
	}
	// Replay up to and including the next round boundary, or the whole
	// buffer when no boundary remains.
	cut := len(s.redo)
	for i, e := range s.redo {
		if e.Event.Kind == event.KindEndRound {
			cut = i + 1
			break
		}
	}
	for _, e := range s.redo[:cut] {
		if err := s.proc.replayEntry(e); err != nil {
			return err
		}
	}
	s.redo = s.redo[cut:]
	s.log.Info("timeline rolled forward", "restored", cut)
	return nil
}

// CanRedo reports whether undone entries are available.
func (s *Server) CanRedo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.redo) > 0
}
