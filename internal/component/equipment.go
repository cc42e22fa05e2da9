package component

import (
	"fmt"
	"strings"

	"github.com/Justash01/inventory-saver/internal/ecs"
)

const CEquipment ecs.ComponentType = 4

// EquipSlot is one worn-gear position.
type EquipSlot uint8

const (
	EquipHead EquipSlot = iota // 0
	EquipChest                 // 1
	EquipLegs                  // 2
	EquipFeet                  // 3
	EquipOffhand               // 4
)

// EquipSlotCount is the number of worn-gear positions.
const EquipSlotCount = 5

// EquipSlots lists every position in canonical order. Saved inventories map
// position i to carrier slot base+i, so this order must never change.
var EquipSlots = [EquipSlotCount]EquipSlot{EquipHead, EquipChest, EquipLegs, EquipFeet, EquipOffhand}

var equipSlotNames = [EquipSlotCount]string{"head", "chest", "legs", "feet", "offhand"}

func (s EquipSlot) String() string {
	if int(s) < len(equipSlotNames) {
		return equipSlotNames[s]
	}
	return fmt.Sprintf("EquipSlot(%d)", uint8(s))
}

// ParseEquipSlot maps a slot name ("head", "offhand", ...) to its EquipSlot.
func ParseEquipSlot(name string) (EquipSlot, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range equipSlotNames {
		if n == name {
			return EquipSlot(i), true
		}
	}
	return 0, false
}

// Equipment holds the gear worn by an entity.
type Equipment struct {
	worn [EquipSlotCount]ItemStack
}

// NewEquipment returns an Equipment with every position empty.
func NewEquipment() *Equipment { return &Equipment{} }

func (*Equipment) Type() ecs.ComponentType { return CEquipment }

// Worn returns the item in slot, and false when nothing is worn there.
func (e *Equipment) Worn(slot EquipSlot) (ItemStack, bool) {
	if int(slot) >= EquipSlotCount || e.worn[slot].IsEmpty() {
		return ItemStack{}, false
	}
	return e.worn[slot], true
}

// SetWorn puts s into slot.
func (e *Equipment) SetWorn(slot EquipSlot, s ItemStack) {
	if int(slot) < EquipSlotCount {
		e.worn[slot] = s
	}
}

// ClearWorn empties slot.
func (e *Equipment) ClearWorn(slot EquipSlot) { e.SetWorn(slot, ItemStack{}) }

// Empty reports whether nothing is worn.
func (e *Equipment) Empty() bool {
	for _, s := range e.worn {
		if !s.IsEmpty() {
			return false
		}
	}
	return true
}
