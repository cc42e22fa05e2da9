package world

import (
	"fmt"
	"math"

	"github.com/Justash01/inventory-saver/internal/component"
	"github.com/Justash01/inventory-saver/internal/ecs"
)

// Region is an inclusive box of blocks in one realm.
type Region struct {
	Realm    component.Realm
	Min, Max [3]int
}

// RegionAt returns the single-block region containing pos.
func RegionAt(pos component.Position) Region {
	x, y, z := pos.Block()
	return Region{Realm: pos.Realm, Min: [3]int{x, y, z}, Max: [3]int{x, y, z}}
}

// Contains reports whether pos lies inside the region.
func (r Region) Contains(pos component.Position) bool {
	if pos.Realm != r.Realm {
		return false
	}
	x, y, z := pos.Block()
	b := [3]int{x, y, z}
	for i := range b {
		if b[i] < r.Min[i] || b[i] > r.Max[i] {
			return false
		}
	}
	return true
}

// SlotState is one occupied slot of a captured entity.
type SlotState struct {
	Slot int                 `json:"slot"`
	Item component.ItemStack `json:"item"`
}

// EntityState is the full captured state of one entity.
type EntityState struct {
	TypeID    string      `json:"type"`
	Offset    [3]float64  `json:"offset"` // relative to the region's minimum corner
	Size      int         `json:"size"`
	Slots     []SlotState `json:"slots,omitempty"`
	Equipment []SlotState `json:"equipment,omitempty"`
}

// Capture records every non-player entity inside r. Blocks are not captured.
func (w *World) Capture(r Region) []EntityState {
	var out []EntityState
	for _, id := range w.ecs.Query(component.CPosition, component.CKind) {
		if w.ecs.Has(id, component.CTagPlayer) {
			continue
		}
		pos, _ := ecs.As[component.Position](w.ecs, id, component.CPosition)
		if !r.Contains(pos) {
			continue
		}
		kind, _ := ecs.As[component.Kind](w.ecs, id, component.CKind)
		st := EntityState{
			TypeID: kind.TypeID,
			Offset: [3]float64{
				pos.X - float64(r.Min[0]),
				pos.Y - float64(r.Min[1]),
				pos.Z - float64(r.Min[2]),
			},
		}
		if c := w.Container(id); c != nil {
			st.Size = c.Size()
			for _, slot := range c.Occupied() {
				item, _ := c.Item(slot)
				st.Slots = append(st.Slots, SlotState{Slot: slot, Item: item})
			}
		}
		if e := w.Equipment(id); e != nil {
			for _, slot := range component.EquipSlots {
				if item, ok := e.Worn(slot); ok {
					st.Equipment = append(st.Equipment, SlotState{Slot: int(slot), Item: item})
				}
			}
		}
		out = append(out, st)
	}
	return out
}

// Restore materializes captured entities with the region's minimum corner at
// the block containing at. It returns the ids it created; on error nothing is
// left behind.
func (w *World) Restore(at component.Position, states []EntityState) ([]ecs.EntityID, error) {
	bx, by, bz := at.Block()
	ids := make([]ecs.EntityID, 0, len(states))
	for _, st := range states {
		if st.TypeID == "" {
			w.removeAll(ids)
			return nil, fmt.Errorf("restore: entity without type: %w", ErrUnknownType)
		}
		if st.Size > MaxContainerSize {
			w.removeAll(ids)
			return nil, fmt.Errorf("restore %s: %d slots exceeds %d", st.TypeID, st.Size, MaxContainerSize)
		}
		id := w.ecs.CreateEntity()
		ids = append(ids, id)
		w.ecs.Add(id, component.Position{
			Realm: at.Realm,
			X:     float64(bx) + clampOffset(st.Offset[0]),
			Y:     float64(by) + clampOffset(st.Offset[1]),
			Z:     float64(bz) + clampOffset(st.Offset[2]),
		})
		w.ecs.Add(id, component.Kind{TypeID: st.TypeID})
		if st.Size > 0 {
			c := component.NewContainer(st.Size)
			for _, s := range st.Slots {
				c.SetItem(s.Slot, s.Item)
			}
			w.ecs.Add(id, c)
		}
		if len(st.Equipment) > 0 {
			e := component.NewEquipment()
			for _, s := range st.Equipment {
				e.SetWorn(component.EquipSlot(s.Slot), s.Item)
			}
			w.ecs.Add(id, e)
		}
	}
	return ids, nil
}

func (w *World) removeAll(ids []ecs.EntityID) {
	for _, id := range ids {
		w.ecs.DestroyEntity(id)
	}
}

// clampOffset guards against NaN/Inf offsets from a corrupt snapshot.
func clampOffset(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
