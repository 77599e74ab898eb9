package battle

import "fmt"

// Position is a point in the battle's space layout.
//
// The engine treats positions as opaque coordinates; what a coordinate means
// (square grid, hex ring, abstract zones using only X) is defined by the
// space rules of the bundle in play.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// String renders the position as (x,y).
func (p Position) String() string { return fmt.Sprintf("(%d,%d)", p.X, p.Y) }

// ClaimKind discriminates the position claim variants.
type ClaimKind uint8

const (
	// ClaimSpawn claims a starting position for a new entity.
	ClaimSpawn ClaimKind = iota + 1
	// ClaimMove claims a new position for an existing entity.
	ClaimMove
	// ClaimFree releases the position of a removed entity.
	ClaimFree
)

// String returns the lowercase name of the claim kind.
func (k ClaimKind) String() string {
	switch k {
	case ClaimSpawn:
		return "spawn"
	case ClaimMove:
		return "move"
	case ClaimFree:
		return "free"
	default:
		return fmt.Sprintf("claim(%d)", uint8(k))
	}
}

// Claim describes one intended change to the space layout. The same claim
// shape serves entity creation (spawn), movement (move) and removal (free),
// so space rules validate all three through a single path.
type Claim struct {
	Kind   ClaimKind
	Entity EntityID
	From   Position // valid for move and free
	To     Position // valid for spawn and move
}

// Space tracks the committed position of every placed entity.
type Space struct {
	positions map[EntityID]Position
}

// NewSpace creates an empty space.
func NewSpace() *Space {
	return &Space{positions: make(map[EntityID]Position)}
}

// At returns the committed position of an entity.
func (s *Space) At(id EntityID) (Position, bool) {
	p, ok := s.positions[id]
	return p, ok
}

// Place commits a position for an entity. Called by the processor while
// applying spawn and move events.
func (s *Space) Place(id EntityID, p Position) {
	s.positions[id] = p
}

// Vacate releases an entity's position. Called by the processor while
// applying removal events.
func (s *Space) Vacate(id EntityID) {
	delete(s.positions, id)
}
