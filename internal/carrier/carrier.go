// Package carrier manages the disposable entity that shuttles item stacks
// between a player and a snapshot.
package carrier

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/Justash01/inventory-saver/internal/component"
	"github.com/Justash01/inventory-saver/internal/ecs"
)

// ErrUnavailable is returned when no carrier could be found at the expected
// position after spawning or placing one.
var ErrUnavailable = errors.New("carrier unavailable")

// spawnAttempts bounds Acquire; a miss is retried once.
const spawnAttempts = 2

// Host is the part of the world a carrier lives in.
type Host interface {
	Spawn(typeID string, pos component.Position) (ecs.EntityID, error)
	EntitiesAt(typeID string, pos component.Position) []ecs.EntityID
	Container(id ecs.EntityID) *component.Container
	Remove(id ecs.EntityID)
}

// Manager hands out carriers and guarantees their removal.
type Manager struct {
	host     Host
	logger   *slog.Logger
	minSlots int
}

// NewManager returns a Manager. Carriers with fewer than minSlots slots are
// still used, but a warning is logged.
func NewManager(host Host, logger *slog.Logger, minSlots int) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{host: host, logger: logger, minSlots: minSlots}
}

// Handle is one acquired carrier. Release it exactly once; extra calls are no-ops.
type Handle struct {
	m         *Manager
	id        ecs.EntityID
	container *component.Container
	owned     []ecs.EntityID // everything removed on release
	released  bool
}

// ID returns the carrier entity.
func (h *Handle) ID() ecs.EntityID { return h.id }

// Container returns the carrier's slot container.
func (h *Handle) Container() *component.Container { return h.container }

// Release removes the carrier and anything placed alongside it.
func (h *Handle) Release() {
	if h == nil || h.released {
		return
	}
	h.released = true
	for _, id := range h.owned {
		h.m.host.Remove(id)
	}
}

// Acquire spawns a carrier of typeID at pos and locates it.
func (m *Manager) Acquire(typeID string, pos component.Position) (*Handle, error) {
	var lastErr error
	for attempt := 1; attempt <= spawnAttempts; attempt++ {
		id, err := m.host.Spawn(typeID, pos)
		if err != nil {
			lastErr = err
			m.logger.Warn("carrier spawn failed", "type", typeID, "attempt", attempt, "error", err)
			continue
		}
		found := m.host.EntitiesAt(typeID, pos)
		if !slices.Contains(found, id) {
			// The host may have rejected or moved the entity; do not leave it behind.
			m.host.Remove(id)
			lastErr = fmt.Errorf("spawned %s not found at %v", typeID, pos)
			m.logger.Warn("carrier not located after spawn", "type", typeID, "attempt", attempt)
			continue
		}
		h, err := m.handle(id, []ecs.EntityID{id})
		if err != nil {
			return nil, err
		}
		return h, nil
	}
	return nil, errors.Join(ErrUnavailable, lastErr)
}

// Locate finds the carrier of typeID at pos among entities a snapshot
// placement just created. All placed entities belong to the handle; if no
// carrier is found they are removed immediately.
func (m *Manager) Locate(typeID string, pos component.Position, placed []ecs.EntityID) (*Handle, error) {
	for _, id := range m.host.EntitiesAt(typeID, pos) {
		if !slices.Contains(placed, id) {
			continue
		}
		return m.handle(id, placed)
	}
	for _, id := range placed {
		m.host.Remove(id)
	}
	return nil, fmt.Errorf("locate %s at %v: %w", typeID, pos, ErrUnavailable)
}

func (m *Manager) handle(id ecs.EntityID, owned []ecs.EntityID) (*Handle, error) {
	c := m.host.Container(id)
	if c == nil {
		for _, o := range owned {
			m.host.Remove(o)
		}
		return nil, fmt.Errorf("carrier %d has no container: %w", id, ErrUnavailable)
	}
	if c.Size() < m.minSlots {
		m.logger.Warn("carrier smaller than a full inventory", "entity", id, "slots", c.Size(), "want", m.minSlots)
	}
	return &Handle{m: m, id: id, container: c, owned: owned}, nil
}
