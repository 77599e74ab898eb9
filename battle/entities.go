package battle

import "fmt"

// Entities is the registry of all live entities, preserving insertion order
// for deterministic iteration.
//
// Identifiers are never reused: removing an entity retires its id, and the
// registry refuses to register a retired id again. Replaying a timeline that
// removes and recreates an entity therefore needs distinct ids, which keeps
// every historical event resolvable.
type Entities struct {
	order     []EntityID
	teams     map[TeamID]*Team
	creatures map[CreatureID]*Creature
	objects   map[ObjectID]*Object
	retired   map[EntityID]bool
}

// NewEntities creates an empty registry.
func NewEntities() *Entities {
	return &Entities{
		teams:     make(map[TeamID]*Team),
		creatures: make(map[CreatureID]*Creature),
		objects:   make(map[ObjectID]*Object),
		retired:   make(map[EntityID]bool),
	}
}

// Len returns the number of live entities.
func (e *Entities) Len() int { return len(e.order) }

// All returns the ids of all live entities in insertion order.
func (e *Entities) All() []EntityID {
	out := make([]EntityID, len(e.order))
	copy(out, e.order)
	return out
}

// Contains reports whether the entity is live.
func (e *Entities) Contains(id EntityID) bool {
	switch id.Kind {
	case KindTeam:
		_, ok := e.teams[TeamID(id.ID)]
		return ok
	case KindCreature:
		_, ok := e.creatures[CreatureID(id.ID)]
		return ok
	case KindObject:
		_, ok := e.objects[ObjectID(id.ID)]
		return ok
	default:
		return false
	}
}

// Retired reports whether the id belonged to a removed entity.
func (e *Entities) Retired(id EntityID) bool { return e.retired[id] }

// Team returns a live team by id.
func (e *Entities) Team(id TeamID) (*Team, bool) {
	t, ok := e.teams[id]
	return t, ok
}

// Creature returns a live creature by id.
func (e *Entities) Creature(id CreatureID) (*Creature, bool) {
	c, ok := e.creatures[id]
	return c, ok
}

// Object returns a live object by id.
func (e *Entities) Object(id ObjectID) (*Object, bool) {
	o, ok := e.objects[id]
	return o, ok
}

// Teams returns all live teams in insertion order.
func (e *Entities) Teams() []*Team {
	var out []*Team
	for _, id := range e.order {
		if id.Kind == KindTeam {
			out = append(out, e.teams[TeamID(id.ID)])
		}
	}
	return out
}

// Creatures returns all live creatures in insertion order.
func (e *Entities) Creatures() []*Creature {
	var out []*Creature
	for _, id := range e.order {
		if id.Kind == KindCreature {
			out = append(out, e.creatures[CreatureID(id.ID)])
		}
	}
	return out
}

// Objects returns all live objects in insertion order.
func (e *Entities) Objects() []*Object {
	var out []*Object
	for _, id := range e.order {
		if id.Kind == KindObject {
			out = append(out, e.objects[ObjectID(id.ID)])
		}
	}
	return out
}

// AddTeam registers a new team. The id must be unused and not retired.
func (e *Entities) AddTeam(t *Team) error {
	id := TeamEntity(t.ID)
	if err := e.checkFresh(id); err != nil {
		return err
	}
	e.teams[t.ID] = t
	e.order = append(e.order, id)
	return nil
}

// AddCreature registers a new creature and records its team membership.
// The creature id must be unused and not retired; the team must be live.
func (e *Entities) AddCreature(c *Creature) error {
	id := CreatureEntity(c.ID)
	if err := e.checkFresh(id); err != nil {
		return err
	}
	team, ok := e.teams[c.Team]
	if !ok {
		return fmt.Errorf("team %q not found", c.Team)
	}
	e.creatures[c.ID] = c
	e.order = append(e.order, id)
	team.Members = append(team.Members, c.ID)
	return nil
}

// AddObject registers a new object. The id must be unused and not retired.
func (e *Entities) AddObject(o *Object) error {
	id := ObjectEntity(o.ID)
	if err := e.checkFresh(id); err != nil {
		return err
	}
	e.objects[o.ID] = o
	e.order = append(e.order, id)
	return nil
}

// RemoveTeam removes a live team and retires its id.
func (e *Entities) RemoveTeam(id TeamID) error {
	if _, ok := e.teams[id]; !ok {
		return fmt.Errorf("team %q not found", id)
	}
	delete(e.teams, id)
	e.retire(TeamEntity(id))
	return nil
}

// RemoveCreature removes a live creature, drops its team membership and
// retires its id.
func (e *Entities) RemoveCreature(id CreatureID) error {
	c, ok := e.creatures[id]
	if !ok {
		return fmt.Errorf("creature %q not found", id)
	}
	if team, ok := e.teams[c.Team]; ok {
		for i, member := range team.Members {
			if member == id {
				team.Members = append(team.Members[:i], team.Members[i+1:]...)
				break
			}
		}
	}
	delete(e.creatures, id)
	e.retire(CreatureEntity(id))
	return nil
}

// RemoveObject removes a live object and retires its id.
func (e *Entities) RemoveObject(id ObjectID) error {
	if _, ok := e.objects[id]; !ok {
		return fmt.Errorf("object %q not found", id)
	}
	delete(e.objects, id)
	e.retire(ObjectEntity(id))
	return nil
}

func (e *Entities) checkFresh(id EntityID) error {
	if e.Contains(id) {
		return fmt.Errorf("duplicated %s id %q", id.Kind, id.ID)
	}
	if e.retired[id] {
		return fmt.Errorf("%s id %q was retired and cannot be reused", id.Kind, id.ID)
	}
	return nil
}

func (e *Entities) retire(id EntityID) {
	for i, existing := range e.order {
		if existing == id {
			e.order = append(e.order[:i], e.order[i+1:]...)
			break
		}
	}
	e.retired[id] = true
}
