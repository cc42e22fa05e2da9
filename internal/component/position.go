package component

import (
	"math"

	"github.com/Justash01/inventory-saver/internal/ecs"
)

const CPosition ecs.ComponentType = 1

// Realm names one world dimension.
type Realm string

// Position places an entity in a realm. Coordinates are continuous; entity
// lookups compare the containing block.
type Position struct {
	Realm   Realm
	X, Y, Z float64
}

func (Position) Type() ecs.ComponentType { return CPosition }

// Block returns the integer block coordinates containing the position.
func (p Position) Block() (x, y, z int) {
	return int(math.Floor(p.X)), int(math.Floor(p.Y)), int(math.Floor(p.Z))
}

// SameBlock reports whether p and o are in the same realm and block.
func (p Position) SameBlock(o Position) bool {
	if p.Realm != o.Realm {
		return false
	}
	px, py, pz := p.Block()
	ox, oy, oz := o.Block()
	return px == ox && py == oy && pz == oz
}
