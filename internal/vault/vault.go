// Package vault implements the save, load, delete, list and configure
// workflows for labelled inventories, and the router that dispatches player
// commands to them.
package vault

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Justash01/inventory-saver/internal/carrier"
	"github.com/Justash01/inventory-saver/internal/component"
	"github.com/Justash01/inventory-saver/internal/ecs"
	"github.com/Justash01/inventory-saver/internal/settings"
	"github.com/Justash01/inventory-saver/internal/snapshot"
	"github.com/Justash01/inventory-saver/internal/transfer"
	"github.com/Justash01/inventory-saver/internal/world"
)

// NoItems is the preview shown for a snapshot without readable items.
const NoItems = "No items"

// previewLimit caps how many stacks a preview lists.
const previewLimit = 3

// Host exposes the acting player's state.
type Host interface {
	Position(id ecs.EntityID) (component.Position, bool)
	Container(id ecs.EntityID) *component.Container
	Equipment(id ecs.EntityID) *component.Equipment
}

// Snapshots is the named-snapshot capability.
type Snapshots interface {
	Exists(ctx context.Context, key string) (bool, error)
	Keys(ctx context.Context, prefix string) ([]string, error)
	Create(ctx context.Context, key string, r world.Region, mode snapshot.Mode) error
	Place(ctx context.Context, key string, pos component.Position) ([]ecs.EntityID, error)
	Delete(ctx context.Context, key string) error
}

// Player identifies who a command acts for.
type Player struct {
	ID     string // stable identity, never contains the key separator
	Entity ecs.EntityID
}

// Entry is one line of a listing.
type Entry struct {
	Label   string
	Preview string
}

// Service runs the workflows. It holds no per-command state; settings are
// passed into every call.
type Service struct {
	host           Host
	snapshots      Snapshots
	carriers       *carrier.Manager
	layout         Layout
	heights        map[component.Realm]float64
	fallbackHeight float64
	logger         *slog.Logger
}

// NewService wires a Service.
func NewService(host Host, snapshots Snapshots, carriers *carrier.Manager, opts ...Option) *Service {
	s := &Service{
		host:           host,
		snapshots:      snapshots,
		carriers:       carriers,
		layout:         DefaultLayout(),
		heights:        DefaultHeights(),
		fallbackHeight: DefaultHeights()[world.Overworld],
		logger:         slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SpawnPosition is where carriers for p are created: the player's X and Z at
// the realm's fixed height.
func (s *Service) SpawnPosition(p Player) (component.Position, error) {
	pos, ok := s.host.Position(p.Entity)
	if !ok {
		return component.Position{}, fmt.Errorf("player %s has no position", p.ID)
	}
	y, ok := s.heights[pos.Realm]
	if !ok {
		y = s.fallbackHeight
	}
	return component.Position{Realm: pos.Realm, X: pos.X, Y: y, Z: pos.Z}, nil
}

// Save moves the player's inventory and gear into a carrier and stores it
// under label.
func (s *Service) Save(ctx context.Context, p Player, label string, cfg settings.Settings) error {
	key := snapshot.NewKey(p.ID, label).String()
	exists, err := s.snapshots.Exists(ctx, key)
	if err != nil {
		return fmt.Errorf("save %s: %w", label, err)
	}
	if exists {
		return ErrDuplicateLabel
	}

	inv := s.host.Container(p.Entity)
	if inv == nil {
		return ErrNoInventory
	}
	gear := s.host.Equipment(p.Entity)
	if inv.Empty() && (gear == nil || gear.Empty()) {
		return ErrEmptySource
	}

	at, err := s.SpawnPosition(p)
	if err != nil {
		return err
	}
	h, err := s.carriers.Acquire(cfg.CarrierType, at)
	if err != nil {
		return errors.Join(ErrCarrierUnavailable, err)
	}
	defer h.Release()

	c := h.Container()
	if need := s.capacity(inv); c.Size() < need {
		return fmt.Errorf("%w: %s has %d slots, need %d", ErrCarrierTooSmall, cfg.CarrierType, c.Size(), need)
	}
	moved := transfer.Items(inv, c, inv.Size(), cfg.ClearAfterSave)
	if gear != nil {
		moved += transfer.Equipment(gear, c, s.layout.EquipmentBase, transfer.Saving, cfg.ClearAfterSave)
	}

	if err := s.snapshots.Create(ctx, key, world.RegionAt(at), cfg.Retention); err != nil {
		if cfg.ClearAfterSave {
			// Hand the stacks back before the carrier goes away.
			transfer.Items(c, inv, inv.Size(), true)
			if gear != nil {
				transfer.Equipment(gear, c, s.layout.EquipmentBase, transfer.Loading, true)
			}
		}
		if errors.Is(err, snapshot.ErrExists) {
			return ErrDuplicateLabel
		}
		return fmt.Errorf("save %s: %w", label, err)
	}

	s.logger.Info("inventory saved", "player", p.ID, "label", label, "carrier", h.ID(), "stacks", moved, "mode", cfg.Retention.String())
	return nil
}

// Load restores the inventory saved under label into the player.
func (s *Service) Load(ctx context.Context, p Player, label string, cfg settings.Settings) error {
	key := snapshot.NewKey(p.ID, label).String()
	exists, err := s.snapshots.Exists(ctx, key)
	if err != nil {
		return fmt.Errorf("load %s: %w", label, err)
	}
	if !exists {
		return ErrNotFound
	}

	inv := s.host.Container(p.Entity)
	if inv == nil {
		return ErrNoInventory
	}
	at, err := s.SpawnPosition(p)
	if err != nil {
		return err
	}
	h, err := s.placeCarrier(ctx, key, at, cfg.CarrierType)
	if err != nil {
		return err
	}
	defer h.Release()

	c := h.Container()
	for _, slot := range c.Occupied() {
		if slot < s.layout.RestoreSlots && slot >= inv.Size() {
			return fmt.Errorf("%w: slot %d, inventory has %d", ErrNoRoom, slot, inv.Size())
		}
	}
	moved := transfer.Items(c, inv, s.layout.RestoreSlots, cfg.ClearAfterSave)
	if gear := s.host.Equipment(p.Entity); gear != nil {
		moved += transfer.Equipment(gear, c, s.layout.EquipmentBase, transfer.Loading, cfg.ClearAfterSave)
	}
	h.Release()

	if cfg.ClearAfterLoad {
		if err := s.snapshots.Delete(ctx, key); err != nil {
			return fmt.Errorf("load %s: remove snapshot: %w", label, err)
		}
	}
	s.logger.Info("inventory loaded", "player", p.ID, "label", label, "stacks", moved, "kept", !cfg.ClearAfterLoad)
	return nil
}

// Delete removes the snapshot saved under label.
func (s *Service) Delete(ctx context.Context, p Player, label string) error {
	key := snapshot.NewKey(p.ID, label).String()
	exists, err := s.snapshots.Exists(ctx, key)
	if err != nil {
		return fmt.Errorf("delete %s: %w", label, err)
	}
	if !exists {
		return ErrNotFound
	}
	if err := s.snapshots.Delete(ctx, key); err != nil {
		if errors.Is(err, snapshot.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("delete %s: %w", label, err)
	}
	s.logger.Info("inventory deleted", "player", p.ID, "label", label)
	return nil
}

// List returns one entry per saved label of p, sorted by label.
func (s *Service) List(ctx context.Context, p Player, cfg settings.Settings) ([]Entry, error) {
	keys, err := s.snapshots.Keys(ctx, snapshot.Prefix(p.ID))
	if err != nil {
		return nil, fmt.Errorf("list: %w", err)
	}
	if len(keys) == 0 {
		return nil, nil
	}
	at, err := s.SpawnPosition(p)
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(keys))
	for _, raw := range keys {
		k, ok := snapshot.ParseKey(raw)
		if !ok {
			continue
		}
		entries = append(entries, Entry{Label: k.Label, Preview: s.Preview(ctx, raw, at, cfg)})
	}
	return entries, nil
}

// Preview summarizes up to three stacks of the snapshot under key. It places
// the snapshot at at and removes everything it placed before returning; the
// snapshot itself is kept.
func (s *Service) Preview(ctx context.Context, key string, at component.Position, cfg settings.Settings) string {
	placed, err := s.snapshots.Place(ctx, key, at)
	if err != nil {
		s.logger.Warn("preview: place failed", "key", key, "error", err)
		return NoItems
	}
	h, err := s.carriers.Locate(cfg.CarrierType, at, placed)
	if err != nil {
		s.logger.Warn("preview: carrier missing", "key", key, "error", err)
		return NoItems
	}
	defer h.Release()

	c := h.Container()
	var parts []string
	for _, slot := range c.Occupied() {
		if len(parts) == previewLimit {
			break
		}
		item, _ := c.Item(slot)
		parts = append(parts, item.String())
	}
	if len(parts) == 0 {
		return NoItems
	}
	return strings.Join(parts, ", ")
}

// capacity is the carrier size a save of inv needs: every inventory slot and
// the five gear slots from the equipment base.
func (s *Service) capacity(inv *component.Container) int {
	return max(inv.Size(), s.layout.EquipmentBase+component.EquipSlotCount)
}

// placeCarrier places the snapshot and locates its carrier, retrying the
// placement once.
func (s *Service) placeCarrier(ctx context.Context, key string, at component.Position, carrierType string) (*carrier.Handle, error) {
	var lastErr error
	for attempt := 1; attempt <= 2; attempt++ {
		placed, err := s.snapshots.Place(ctx, key, at)
		if err != nil {
			if errors.Is(err, snapshot.ErrNotFound) {
				return nil, ErrNotFound
			}
			return nil, fmt.Errorf("place %s: %w", key, err)
		}
		h, err := s.carriers.Locate(carrierType, at, placed)
		if err == nil {
			return h, nil
		}
		lastErr = err
		s.logger.Warn("carrier not located after placement", "key", key, "attempt", attempt, "error", err)
	}
	return nil, errors.Join(ErrCarrierUnavailable, lastErr)
}
