package battle

// Phase describes whether the battle is still accepting gameplay events.
type Phase uint8

const (
	// PhaseStarted is the initial phase.
	PhaseStarted Phase = iota + 1
	// PhaseEnded means the battle has concluded; only replay may rebuild
	// an ended battle.
	PhaseEnded
)

// String returns the lowercase name of the phase.
func (p Phase) String() string {
	if p == PhaseEnded {
		return "ended"
	}
	return "started"
}

// State is the mutable battle aggregate: entities, space, round cursor and
// metrics. See the package documentation for the mutation contract.
type State struct {
	entities *Entities
	space    *Space
	rounds   *Rounds
	metrics  *Metrics
	phase    Phase
}

// NewState creates an empty battle state in the started phase.
func NewState() *State {
	return &State{
		entities: NewEntities(),
		space:    NewSpace(),
		rounds:   NewRounds(),
		metrics:  NewMetrics(),
		phase:    PhaseStarted,
	}
}

// Entities returns the entity registry.
func (s *State) Entities() *Entities { return s.entities }

// Space returns the space layout.
func (s *State) Space() *Space { return s.space }

// Rounds returns the round cursor.
func (s *State) Rounds() *Rounds { return s.rounds }

// Metrics returns the metrics storage.
func (s *State) Metrics() *Metrics { return s.metrics }

// Phase returns the current battle phase.
func (s *State) Phase() Phase { return s.phase }

// End moves the battle to the ended phase. Called by the processor while
// applying an end battle event.
func (s *State) End() { s.phase = PhaseEnded }

// Snapshot captures the full state in a deterministic, serializable form.
// Two states with the same history produce byte-identical snapshots, which
// is what the timeline checksums and the golden tests rely on.
type Snapshot struct {
	Phase     string             `json:"phase"`
	Round     int64              `json:"round"`
	Acting    string             `json:"acting,omitempty"`
	Teams     []TeamSnapshot     `json:"teams"`
	Creatures []CreatureSnapshot `json:"creatures"`
	Objects   []ObjectSnapshot   `json:"objects"`
	Metrics   []metricSnapshot   `json:"metrics,omitempty"`
}

// TeamSnapshot is the serializable view of a team.
type TeamSnapshot struct {
	ID      string   `json:"id"`
	Members []string `json:"members,omitempty"`
}

// CreatureSnapshot is the serializable view of a creature.
type CreatureSnapshot struct {
	ID         string      `json:"id"`
	Team       string      `json:"team"`
	Position   Position    `json:"position"`
	Statistics []Statistic `json:"statistics,omitempty"`
	Abilities  []Ability   `json:"abilities,omitempty"`
	Statuses   []Status    `json:"statuses,omitempty"`
}

// ObjectSnapshot is the serializable view of an object.
type ObjectSnapshot struct {
	ID         string      `json:"id"`
	Position   Position    `json:"position"`
	Statistics []Statistic `json:"statistics,omitempty"`
	Statuses   []Status    `json:"statuses,omitempty"`
}

// Snapshot returns a deterministic snapshot of the state. Entities appear in
// registry insertion order; metrics are sorted by id.
func (s *State) Snapshot() Snapshot {
	snap := Snapshot{
		Phase:     s.phase.String(),
		Round:     s.rounds.Completed(),
		Teams:     []TeamSnapshot{},
		Creatures: []CreatureSnapshot{},
		Objects:   []ObjectSnapshot{},
		Metrics:   s.metrics.snapshot(),
	}
	if actor, ok := s.rounds.Acting(); ok {
		snap.Acting = actor.String()
	}
	for _, id := range s.entities.All() {
		switch id.Kind {
		case KindTeam:
			t, _ := s.entities.Team(TeamID(id.ID))
			ts := TeamSnapshot{ID: string(t.ID)}
			for _, m := range t.Members {
				ts.Members = append(ts.Members, string(m))
			}
			snap.Teams = append(snap.Teams, ts)
		case KindCreature:
			c, _ := s.entities.Creature(CreatureID(id.ID))
			snap.Creatures = append(snap.Creatures, CreatureSnapshot{
				ID:         string(c.ID),
				Team:       string(c.Team),
				Position:   c.Position,
				Statistics: append([]Statistic(nil), c.Statistics...),
				Abilities:  append([]Ability(nil), c.Abilities...),
				Statuses:   append([]Status(nil), c.Statuses...),
			})
		case KindObject:
			o, _ := s.entities.Object(ObjectID(id.ID))
			snap.Objects = append(snap.Objects, ObjectSnapshot{
				ID:         string(o.ID),
				Position:   o.Position,
				Statistics: append([]Statistic(nil), o.Statistics...),
				Statuses:   append([]Status(nil), o.Statuses...),
			})
		}
	}
	return snap
}

// Entity resolves an EntityID to its position-bearing payload, reporting
// whether it is live. Teams are valid entities but carry no position.
func (s *State) Entity(id EntityID) (position Position, ok bool) {
	switch id.Kind {
	case KindCreature:
		if c, found := s.entities.Creature(CreatureID(id.ID)); found {
			return c.Position, true
		}
	case KindObject:
		if o, found := s.entities.Object(ObjectID(id.ID)); found {
			return o.Position, true
		}
	}
	return Position{}, false
}

// SetPosition commits a position on both the entity and the space layout.
// Called by the processor while applying spawn and move events.
func (s *State) SetPosition(id EntityID, p Position) {
	switch id.Kind {
	case KindCreature:
		if c, ok := s.entities.Creature(CreatureID(id.ID)); ok {
			c.Position = p
		}
	case KindObject:
		if o, ok := s.entities.Object(ObjectID(id.ID)); ok {
			o.Position = p
		}
	}
	s.space.Place(id, p)
}

// Statuses returns the statuses of a character entity. ok is false for
// teams and unknown entities.
func (s *State) Statuses(id EntityID) ([]Status, bool) {
	switch id.Kind {
	case KindCreature:
		if c, ok := s.entities.Creature(CreatureID(id.ID)); ok {
			return c.Statuses, true
		}
	case KindObject:
		if o, ok := s.entities.Object(ObjectID(id.ID)); ok {
			return o.Statuses, true
		}
	}
	return nil, false
}

// AddStatus appends a status to a character entity.
func (s *State) AddStatus(id EntityID, st Status) bool {
	switch id.Kind {
	case KindCreature:
		if c, ok := s.entities.Creature(CreatureID(id.ID)); ok {
			c.Statuses = append(c.Statuses, st)
			return true
		}
	case KindObject:
		if o, ok := s.entities.Object(ObjectID(id.ID)); ok {
			o.Statuses = append(o.Statuses, st)
			return true
		}
	}
	return false
}

// RemoveStatus deletes a status from a character entity by status id.
func (s *State) RemoveStatus(id EntityID, statusID string) bool {
	remove := func(statuses []Status) ([]Status, bool) {
		for i := range statuses {
			if statuses[i].ID == statusID {
				return append(statuses[:i], statuses[i+1:]...), true
			}
		}
		return statuses, false
	}
	switch id.Kind {
	case KindCreature:
		if c, ok := s.entities.Creature(CreatureID(id.ID)); ok {
			var removed bool
			c.Statuses, removed = remove(c.Statuses)
			return removed
		}
	case KindObject:
		if o, ok := s.entities.Object(ObjectID(id.ID)); ok {
			var removed bool
			o.Statuses, removed = remove(o.Statuses)
			return removed
		}
	}
	return false
}

// Ability returns a mutable reference to an ability of a creature, for rules
// apply hooks. Only creatures carry abilities.
func (s *State) Ability(id EntityID, abilityID string) (*Ability, bool) {
	if id.Kind != KindCreature {
		return nil, false
	}
	if c, ok := s.entities.Creature(CreatureID(id.ID)); ok {
		return c.Ability(abilityID)
	}
	return nil, false
}

// Statistic returns a mutable reference to a statistic of a character
// entity, for rules apply hooks.
func (s *State) Statistic(id EntityID, statID string) (*Statistic, bool) {
	switch id.Kind {
	case KindCreature:
		if c, ok := s.entities.Creature(CreatureID(id.ID)); ok {
			return c.Statistic(statID)
		}
	case KindObject:
		if o, ok := s.entities.Object(ObjectID(id.ID)); ok {
			return o.Statistic(statID)
		}
	}
	return nil, false
}
