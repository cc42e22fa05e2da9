package component

import "github.com/Justash01/inventory-saver/internal/ecs"

const CContainer ecs.ComponentType = 3

// Container is a fixed-size, slot-addressable item store. It is stored as a
// pointer so slot writes are visible without re-adding the component.
type Container struct {
	slots []ItemStack
}

// NewContainer allocates an empty container with size slots.
func NewContainer(size int) *Container {
	return &Container{slots: make([]ItemStack, max(size, 0))}
}

func (*Container) Type() ecs.ComponentType { return CContainer }

// Size returns the number of slots.
func (c *Container) Size() int { return len(c.slots) }

// Item returns the stack in slot, and false when the slot is empty or out of range.
func (c *Container) Item(slot int) (ItemStack, bool) {
	if slot < 0 || slot >= len(c.slots) || c.slots[slot].IsEmpty() {
		return ItemStack{}, false
	}
	return c.slots[slot], true
}

// SetItem overwrites slot. Writes outside the container are dropped and
// reported as false.
func (c *Container) SetItem(slot int, s ItemStack) bool {
	if slot < 0 || slot >= len(c.slots) {
		return false
	}
	c.slots[slot] = s
	return true
}

// Clear empties slot.
func (c *Container) Clear(slot int) { c.SetItem(slot, ItemStack{}) }

// Occupied returns the indices of non-empty slots in ascending order.
func (c *Container) Occupied() []int {
	var out []int
	for i, s := range c.slots {
		if !s.IsEmpty() {
			out = append(out, i)
		}
	}
	return out
}

// Empty reports whether no slot holds an item.
func (c *Container) Empty() bool {
	for _, s := range c.slots {
		if !s.IsEmpty() {
			return false
		}
	}
	return true
}
