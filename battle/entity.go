package battle

import "fmt"

// EventID is the position of an event in the timeline. Identifiers below
// zero mean "not yet appended".
type EventID int64

// NoEvent is the EventID of an event that has not been appended yet.
const NoEvent EventID = -1

// TeamID identifies a team.
type TeamID string

// CreatureID identifies a creature.
type CreatureID string

// ObjectID identifies an inanimate object.
type ObjectID string

// EntityKind discriminates the entity variants.
type EntityKind uint8

const (
	// KindTeam is the team entity kind.
	KindTeam EntityKind = iota + 1
	// KindCreature is the creature entity kind.
	KindCreature
	// KindObject is the inanimate object entity kind.
	KindObject
)

// String returns the lowercase name of the kind.
func (k EntityKind) String() string {
	switch k {
	case KindTeam:
		return "team"
	case KindCreature:
		return "creature"
	case KindObject:
		return "object"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// EntityID is a unique identifier scoped to one entity kind.
//
// EntityID is a small comparable value type, usable as a map key. Uniqueness
// holds per kind among live entities; identifiers of removed entities are
// retired and never handed out again, so historical events stay resolvable.
type EntityID struct {
	Kind EntityKind
	ID   string
}

// TeamEntity returns the EntityID for a team.
func TeamEntity(id TeamID) EntityID { return EntityID{Kind: KindTeam, ID: string(id)} }

// CreatureEntity returns the EntityID for a creature.
func CreatureEntity(id CreatureID) EntityID { return EntityID{Kind: KindCreature, ID: string(id)} }

// ObjectEntity returns the EntityID for an object.
func ObjectEntity(id ObjectID) EntityID { return EntityID{Kind: KindObject, ID: string(id)} }

// String renders the id as kind:id.
func (e EntityID) String() string { return e.Kind.String() + ":" + e.ID }

// IsZero reports whether the id is unset.
func (e EntityID) IsZero() bool { return e.Kind == 0 && e.ID == "" }

// Statistic is a named numeric property of a character.
//
// Base is the rules-generated baseline; Value is the current value after
// status effects and alterations.
type Statistic struct {
	ID    string `json:"id"`
	Base  int64  `json:"base"`
	Value int64  `json:"value"`
}

// Ability is a named capability of a creature. Power feeds rules-defined
// activation math; the engine stores abilities opaquely.
type Ability struct {
	ID    string `json:"id"`
	Power int64  `json:"power"`
}

// Status is a long lasting effect altering an entity's condition.
//
// Potency is the intensity used by rules-defined status math. RoundsLeft is
// a rules-maintained counter; the engine never interprets it. InflictedBy
// links the status back to the event that created it.
type Status struct {
	ID          string  `json:"id"`
	Potency     int64   `json:"potency"`
	RoundsLeft  int     `json:"rounds_left"`
	InflictedBy EventID `json:"inflicted_by"`
}

// StatisticsAlteration is a set of deltas keyed by statistic id.
type StatisticsAlteration map[string]int64

// AbilitiesAlteration is a set of power deltas keyed by ability id.
type AbilitiesAlteration map[string]int64

// Team is the team entity variant. Members are kept in insertion order.
type Team struct {
	ID      TeamID
	Members []CreatureID
}

// Creature is an actor entity: it belongs to a team, occupies a position and
// carries statistics, abilities and statuses.
type Creature struct {
	ID         CreatureID
	Team       TeamID
	Position   Position
	Statistics []Statistic
	Abilities  []Ability
	Statuses   []Status
}

// Object is an inanimate entity: it occupies a position and may carry
// statistics and statuses, but never acts and has no team.
type Object struct {
	ID         ObjectID
	Position   Position
	Statistics []Statistic
	Statuses   []Status
}

// Statistic returns the creature's statistic with the given id, if present.
func (c *Creature) Statistic(id string) (*Statistic, bool) { return findStatistic(c.Statistics, id) }

// Ability returns the creature's ability with the given id, if present.
func (c *Creature) Ability(id string) (*Ability, bool) {
	for i := range c.Abilities {
		if c.Abilities[i].ID == id {
			return &c.Abilities[i], true
		}
	}
	return nil, false
}

// Status returns the creature's status with the given id, if present.
func (c *Creature) Status(id string) (*Status, bool) { return findStatus(c.Statuses, id) }

// Statistic returns the object's statistic with the given id, if present.
func (o *Object) Statistic(id string) (*Statistic, bool) { return findStatistic(o.Statistics, id) }

// Status returns the object's status with the given id, if present.
func (o *Object) Status(id string) (*Status, bool) { return findStatus(o.Statuses, id) }

func findStatistic(stats []Statistic, id string) (*Statistic, bool) {
	for i := range stats {
		if stats[i].ID == id {
			return &stats[i], true
		}
	}
	return nil, false
}

func findStatus(statuses []Status, id string) (*Status, bool) {
	for i := range statuses {
		if statuses[i].ID == id {
			return &statuses[i], true
		}
	}
	return nil, false
}
