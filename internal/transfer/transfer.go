// Package transfer copies item stacks between slot-addressable containers and
// between worn gear and a container's reserved equipment slots.
package transfer

import "github.com/Justash01/inventory-saver/internal/component"

// Container is a slot-addressable item store.
type Container interface {
	Size() int
	Item(slot int) (component.ItemStack, bool)
	SetItem(slot int, s component.ItemStack) bool
	Clear(slot int)
}

// Wearer exposes worn gear by position.
type Wearer interface {
	Worn(slot component.EquipSlot) (component.ItemStack, bool)
	SetWorn(slot component.EquipSlot, s component.ItemStack)
	ClearWorn(slot component.EquipSlot)
}

// Direction selects which side of an equipment transfer is the source.
type Direction uint8

const (
	Saving  Direction = iota // worn gear → container
	Loading                  // container → worn gear
)

// Items copies every occupied slot in [0, slotCount) of src into the same slot
// of dst, overwriting whatever is there. No stacking or merging is attempted.
// When clearSource is set each copied slot is emptied in src. Slots dst cannot
// hold are left in src. It returns the number of stacks copied.
func Items(src, dst Container, slotCount int, clearSource bool) int {
	moved := 0
	for slot := range slotCount {
		item, ok := src.Item(slot)
		if !ok {
			continue
		}
		if !dst.SetItem(slot, item) {
			continue
		}
		if clearSource {
			src.Clear(slot)
		}
		moved++
	}
	return moved
}

// Equipment moves worn gear to or from the container slots base..base+4,
// visiting positions in canonical order (head, chest, legs, feet, offhand).
// Gear whose slot lies past the end of c stays worn. It returns the number
// of stacks copied.
func Equipment(w Wearer, c Container, base int, dir Direction, clearSource bool) int {
	moved := 0
	for i, slot := range component.EquipSlots {
		switch dir {
		case Saving:
			item, ok := w.Worn(slot)
			if !ok {
				continue
			}
			if !c.SetItem(base+i, item) {
				continue
			}
			if clearSource {
				w.ClearWorn(slot)
			}
		case Loading:
			item, ok := c.Item(base + i)
			if !ok {
				continue
			}
			w.SetWorn(slot, item)
			if clearSource {
				c.Clear(base + i)
			}
		}
		moved++
	}
	return moved
}
