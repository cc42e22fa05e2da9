// Package world is the in-process host: it owns the ECS world, the entity type
// registry and the realm layout. Workflows only reach it through the narrow
// interfaces declared by the carrier and snapshot packages.
package world

import (
	"errors"
	"fmt"

	"github.com/Justash01/inventory-saver/internal/component"
	"github.com/Justash01/inventory-saver/internal/ecs"
)

// Known realms.
const (
	Overworld component.Realm = "overworld"
	Nether    component.Realm = "nether"
	TheEnd    component.Realm = "the_end"
)

// PlayerInventorySize is the general slot count of a player inventory.
const PlayerInventorySize = 36

// MaxContainerSize bounds the slot count of any spawned or restored container.
const MaxContainerSize = 256

// DefaultCarrierType is the built-in storage entity. It has room for a full
// player inventory plus the five equipment positions.
const DefaultCarrierType = "storage:entity"

// ErrUnknownType is returned when spawning an unregistered entity type.
var ErrUnknownType = errors.New("unknown entity type")

// EntityType describes a spawnable entity.
type EntityType struct {
	ID    string
	Slots int // container size; 0 means no container
}

// World wraps the ECS store with spawning and lookup by type and location.
type World struct {
	ecs   *ecs.World
	types map[string]EntityType
}

// New returns an empty world with the default carrier type registered.
func New() *World {
	w := &World{
		ecs:   ecs.NewWorld(),
		types: make(map[string]EntityType),
	}
	w.RegisterType(EntityType{ID: DefaultCarrierType, Slots: PlayerInventorySize + component.EquipSlotCount})
	return w
}

// RegisterType adds or replaces a spawnable entity type.
func (w *World) RegisterType(t EntityType) { w.types[t.ID] = t }

// LookupType returns the registered type with the given id.
func (w *World) LookupType(id string) (EntityType, bool) {
	t, ok := w.types[id]
	return t, ok
}

// Spawn creates an entity of typeID at pos.
func (w *World) Spawn(typeID string, pos component.Position) (ecs.EntityID, error) {
	t, ok := w.types[typeID]
	if !ok {
		return ecs.NilEntity, fmt.Errorf("spawn %q: %w", typeID, ErrUnknownType)
	}
	id := w.ecs.CreateEntity()
	w.ecs.Add(id, pos)
	w.ecs.Add(id, component.Kind{TypeID: t.ID})
	if t.Slots > 0 {
		w.ecs.Add(id, component.NewContainer(t.Slots))
	}
	return id, nil
}

// SpawnPlayer creates a player entity with an empty inventory and no gear.
func (w *World) SpawnPlayer(pos component.Position) ecs.EntityID {
	id := w.ecs.CreateEntity()
	w.ecs.Add(id, pos)
	w.ecs.Add(id, component.Kind{TypeID: "player"})
	w.ecs.Add(id, component.NewContainer(PlayerInventorySize))
	w.ecs.Add(id, component.NewEquipment())
	w.ecs.Add(id, component.TagPlayer{})
	return id
}

// EntitiesAt returns the non-player entities of typeID whose position falls in
// the same block as pos, oldest first.
func (w *World) EntitiesAt(typeID string, pos component.Position) []ecs.EntityID {
	var out []ecs.EntityID
	for _, id := range w.ecs.Query(component.CPosition, component.CKind) {
		if w.ecs.Has(id, component.CTagPlayer) {
			continue
		}
		kind, _ := ecs.As[component.Kind](w.ecs, id, component.CKind)
		if kind.TypeID != typeID {
			continue
		}
		if at, _ := ecs.As[component.Position](w.ecs, id, component.CPosition); at.SameBlock(pos) {
			out = append(out, id)
		}
	}
	return out
}

// Remove destroys an entity. Removing a missing entity is a no-op.
func (w *World) Remove(id ecs.EntityID) { w.ecs.DestroyEntity(id) }

// Alive reports whether id still exists.
func (w *World) Alive(id ecs.EntityID) bool { return w.ecs.Alive(id) }

// Len returns the number of live entities, players included.
func (w *World) Len() int { return w.ecs.Len() }

// Container returns the entity's slot container, or nil.
func (w *World) Container(id ecs.EntityID) *component.Container {
	c, _ := ecs.As[*component.Container](w.ecs, id, component.CContainer)
	return c
}

// Equipment returns the entity's worn gear, or nil.
func (w *World) Equipment(id ecs.EntityID) *component.Equipment {
	e, _ := ecs.As[*component.Equipment](w.ecs, id, component.CEquipment)
	return e
}

// Position returns the entity's position.
func (w *World) Position(id ecs.EntityID) (component.Position, bool) {
	return ecs.As[component.Position](w.ecs, id, component.CPosition)
}

// Move sets the entity's position.
func (w *World) Move(id ecs.EntityID, pos component.Position) {
	w.ecs.Add(id, pos)
}
