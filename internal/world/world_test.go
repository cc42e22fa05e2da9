package world

import (
	"errors"
	"testing"

	"github.com/Justash01/inventory-saver/internal/component"
)

func at(x, y, z float64) component.Position {
	return component.Position{Realm: Overworld, X: x, Y: y, Z: z}
}

func TestSpawnDefaultCarrier(t *testing.T) {
	w := New()
	id, err := w.Spawn(DefaultCarrierType, at(4.5, 319, -2.5))
	if err != nil {
		t.Fatalf("Spawn: %v", err)
	}
	c := w.Container(id)
	if c == nil {
		t.Fatal("carrier must have a container")
	}
	if c.Size() != PlayerInventorySize+component.EquipSlotCount {
		t.Errorf("carrier size = %d, want %d", c.Size(), PlayerInventorySize+component.EquipSlotCount)
	}
}

func TestSpawnUnknownType(t *testing.T) {
	w := New()
	_, err := w.Spawn("custom:missing", at(0, 0, 0))
	if !errors.Is(err, ErrUnknownType) {
		t.Fatalf("err = %v, want ErrUnknownType", err)
	}
	if w.Len() != 0 {
		t.Fatalf("failed spawn left %d entities", w.Len())
	}
}

func TestEntitiesAtMatchesTypeAndBlock(t *testing.T) {
	w := New()
	w.RegisterType(EntityType{ID: "custom:chest", Slots: 54})
	here, _ := w.Spawn(DefaultCarrierType, at(1.2, 319, 1.2))
	_, _ = w.Spawn("custom:chest", at(1.3, 319, 1.3))
	_, _ = w.Spawn(DefaultCarrierType, at(2.1, 319, 1.2))
	w.SpawnPlayer(at(1.5, 319, 1.5))

	got := w.EntitiesAt(DefaultCarrierType, at(1.9, 319.4, 1.0))
	if len(got) != 1 || got[0] != here {
		t.Fatalf("EntitiesAt = %v, want [%v]", got, here)
	}
}

func TestPlayerHasInventoryAndEquipment(t *testing.T) {
	w := New()
	p := w.SpawnPlayer(at(0, 64, 0))
	if c := w.Container(p); c == nil || c.Size() != PlayerInventorySize {
		t.Fatalf("player container = %v", c)
	}
	if w.Equipment(p) == nil {
		t.Fatal("player must have equipment")
	}
}

func TestCaptureRestoreRoundTrip(t *testing.T) {
	w := New()
	origin := at(10.25, 319, -7.75)
	id, _ := w.Spawn(DefaultCarrierType, origin)
	c := w.Container(id)
	c.SetItem(0, component.ItemStack{TypeID: "minecraft:bread", Amount: 16})
	c.SetItem(38, component.ItemStack{TypeID: "minecraft:iron_leggings", Amount: 1})

	states := w.Capture(RegionAt(origin))
	if len(states) != 1 {
		t.Fatalf("captured %d entities, want 1", len(states))
	}
	w.Remove(id)

	dest := component.Position{Realm: Nether, X: -3.5, Y: 127, Z: 2.5}
	ids, err := w.Restore(dest, states)
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if len(ids) != 1 {
		t.Fatalf("restored %d entities, want 1", len(ids))
	}
	found := w.EntitiesAt(DefaultCarrierType, dest)
	if len(found) != 1 || found[0] != ids[0] {
		t.Fatalf("restored carrier not found at destination: %v", found)
	}
	rc := w.Container(ids[0])
	if got, ok := rc.Item(0); !ok || got.Amount != 16 {
		t.Errorf("slot 0 = %+v, %v", got, ok)
	}
	if got, ok := rc.Item(38); !ok || got.TypeID != "minecraft:iron_leggings" {
		t.Errorf("slot 38 = %+v, %v", got, ok)
	}
}

func TestCaptureSkipsPlayersAndOutsiders(t *testing.T) {
	w := New()
	pos := at(0, 319, 0)
	w.SpawnPlayer(pos)
	_, _ = w.Spawn(DefaultCarrierType, at(5, 319, 5))
	if got := w.Capture(RegionAt(pos)); len(got) != 0 {
		t.Fatalf("Capture = %+v, want nothing", got)
	}
}

func TestRestoreRejectsUntypedEntity(t *testing.T) {
	w := New()
	_, err := w.Restore(at(0, 0, 0), []EntityState{{TypeID: DefaultCarrierType, Size: 41}, {}})
	if !errors.Is(err, ErrUnknownType) {
		t.Fatalf("err = %v, want ErrUnknownType", err)
	}
	if w.Len() != 0 {
		t.Fatalf("failed restore left %d entities", w.Len())
	}
}

func TestRestoreRejectsOversizedContainer(t *testing.T) {
	w := New()
	_, err := w.Restore(at(0, 0, 0), []EntityState{
		{TypeID: DefaultCarrierType, Size: 41},
		{TypeID: DefaultCarrierType, Size: MaxContainerSize + 1},
	})
	if err == nil {
		t.Fatal("expected an error for an oversized container")
	}
	if w.Len() != 0 {
		t.Fatalf("failed restore left %d entities", w.Len())
	}
}
