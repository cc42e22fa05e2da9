package component

import "fmt"

// ItemStack is a plain value describing one occupied slot.
// The zero value is an empty slot.
type ItemStack struct {
	TypeID string `json:"type"`
	Amount int    `json:"amount"`
	Name   string `json:"name,omitempty"` // custom display name, optional
}

// IsEmpty returns true when the stack holds nothing.
func (s ItemStack) IsEmpty() bool { return s.TypeID == "" || s.Amount <= 0 }

// String formats the stack as "x<amount> <type>".
func (s ItemStack) String() string {
	return fmt.Sprintf("x%d %s", s.Amount, s.TypeID)
}
