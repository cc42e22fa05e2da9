package server

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Justash01/inventory-saver/internal/component"
	"github.com/Justash01/inventory-saver/internal/vault"
	"github.com/Justash01/inventory-saver/internal/world"
)

// maxGiveAmount caps one give command.
const maxGiveAmount = 64

// Command is one parsed input line.
type Command struct {
	Verb string // lower-cased first word, inventory verbs normalized
	Arg  string // remainder of the line, untouched apart from outer spaces
}

// ParseCommand splits line into a verb and its argument. A leading slash is
// ignored, and "scriptevent <verb> <arg>" is unwrapped to "<verb> <arg>".
func ParseCommand(line string) (Command, bool) {
	line = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), "/"))
	if line == "" {
		return Command{}, false
	}
	verb, arg, _ := strings.Cut(line, " ")
	verb = strings.ToLower(verb)
	if verb == "scriptevent" {
		return ParseCommand(arg)
	}
	return Command{Verb: vault.NormalizeVerb(verb), Arg: strings.TrimSpace(arg)}, true
}

// Inventory reports whether the command belongs to the vault router. This
// includes unknown inventory: verbs, which the router ignores.
func (c Command) Inventory() bool { return strings.HasPrefix(c.Verb, "inventory:") }

const helpText = `Inventory commands:
  save <id>       save your inventory and gear under <id>
  load <id>       restore the inventory saved under <id>
  delete <id>     forget the inventory saved under <id>
  list            show your saved inventories
  config          open the settings form
Host commands:
  give <item> [amount]   put an item in your first free slot
  wear <slot> <item>     wear an item (head, chest, legs, feet, offhand)
  realm <name>           move to overworld, nether or the_end
  inv                    show your inventory
  clear                  empty your inventory and gear
  quit                   disconnect`

// hostCommandLocked runs the commands that manipulate the player directly.
// Caller must hold s.mu.
func (s *Server) hostCommandLocked(sess *Session, cmd Command) Result {
	id := sess.Player.Entity
	reply := func(tone vault.Tone, format string, args ...any) {
		sess.AddMessage(tone, fmt.Sprintf(format, args...))
	}

	switch cmd.Verb {
	case "help", "?":
		reply(vault.ToneInfo, "%s", helpText)

	case "quit", "exit":
		return Result{Quit: true}

	case "give":
		fields := strings.Fields(cmd.Arg)
		if len(fields) == 0 || len(fields) > 2 {
			reply(vault.ToneFailure, "Usage: give <item> [amount]")
			break
		}
		amount := 1
		if len(fields) == 2 {
			n, err := strconv.Atoi(fields[1])
			if err != nil || n < 1 || n > maxGiveAmount {
				reply(vault.ToneFailure, "Amount must be between 1 and %d.", maxGiveAmount)
				break
			}
			amount = n
		}
		inv := s.world.Container(id)
		slot := firstFreeSlot(inv)
		if slot < 0 {
			reply(vault.ToneFailure, "Your inventory is full.")
			break
		}
		item := component.ItemStack{TypeID: qualify(fields[0]), Amount: amount}
		inv.SetItem(slot, item)
		reply(vault.ToneSuccess, "Gave %s in slot %d.", item, slot)

	case "wear":
		fields := strings.Fields(cmd.Arg)
		if len(fields) != 2 {
			reply(vault.ToneFailure, "Usage: wear <slot> <item>")
			break
		}
		slot, ok := component.ParseEquipSlot(fields[0])
		if !ok {
			reply(vault.ToneFailure, "Unknown slot %q. Use head, chest, legs, feet or offhand.", fields[0])
			break
		}
		item := component.ItemStack{TypeID: qualify(fields[1]), Amount: 1}
		s.world.Equipment(id).SetWorn(slot, item)
		reply(vault.ToneSuccess, "Now wearing %s on %s.", item.TypeID, slot)

	case "realm":
		realm, ok := parseRealm(cmd.Arg)
		if !ok {
			reply(vault.ToneFailure, "Unknown realm %q. Use overworld, nether or the_end.", cmd.Arg)
			break
		}
		pos, _ := s.world.Position(id)
		pos.Realm = realm
		s.world.Move(id, pos)
		reply(vault.ToneSuccess, "You are now in the %s.", realm)

	case "inv", "inventory":
		reply(vault.ToneInfo, "%s", describeInventory(s.world.Container(id), s.world.Equipment(id)))

	case "clear":
		inv := s.world.Container(id)
		for _, slot := range inv.Occupied() {
			inv.Clear(slot)
		}
		gear := s.world.Equipment(id)
		for _, slot := range component.EquipSlots {
			gear.ClearWorn(slot)
		}
		reply(vault.ToneSuccess, "Inventory cleared.")

	default:
		reply(vault.ToneFailure, "Unknown command %q. Type help for a list.", cmd.Verb)
	}
	return Result{}
}

func firstFreeSlot(c *component.Container) int {
	for slot := range c.Size() {
		if _, ok := c.Item(slot); !ok {
			return slot
		}
	}
	return -1
}

// qualify adds the minecraft: namespace to bare item ids.
func qualify(typeID string) string {
	if strings.Contains(typeID, ":") {
		return typeID
	}
	return "minecraft:" + typeID
}

func parseRealm(s string) (component.Realm, bool) {
	s = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), "minecraft:")
	switch component.Realm(s) {
	case world.Overworld, world.Nether, world.TheEnd:
		return component.Realm(s), true
	case "end":
		return world.TheEnd, true
	}
	return "", false
}

func describeInventory(inv *component.Container, gear *component.Equipment) string {
	var b strings.Builder
	b.WriteString("Inventory:")
	occupied := inv.Occupied()
	if len(occupied) == 0 {
		b.WriteString(" empty")
	}
	for _, slot := range occupied {
		item, _ := inv.Item(slot)
		fmt.Fprintf(&b, "\n  %2d  %s", slot, item)
	}
	b.WriteString("\nGear:")
	if gear.Empty() {
		b.WriteString(" none")
	}
	for _, slot := range component.EquipSlots {
		if item, ok := gear.Worn(slot); ok {
			fmt.Fprintf(&b, "\n  %-7s %s", slot, item.TypeID)
		}
	}
	return b.String()
}
