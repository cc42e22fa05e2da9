package vault

import (
	"log/slog"

	"github.com/Justash01/inventory-saver/internal/component"
	"github.com/Justash01/inventory-saver/internal/world"
)

// Layout fixes how a player inventory maps onto carrier slots.
type Layout struct {
	// EquipmentBase is the first of the five reserved gear slots.
	EquipmentBase int
	// RestoreSlots is how many general slots a load copies back, starting at 0.
	RestoreSlots int
}

// DefaultLayout matches a 36-slot player inventory: gear in 36..40, and
// only slots 0..34 restored on load.
func DefaultLayout() Layout {
	return Layout{
		EquipmentBase: world.PlayerInventorySize,
		RestoreSlots:  world.PlayerInventorySize - 1,
	}
}

// DefaultHeights is the carrier height per realm. Unknown realms use the
// overworld height.
func DefaultHeights() map[component.Realm]float64 {
	return map[component.Realm]float64{
		world.Overworld: 319,
		world.Nether:    127,
		world.TheEnd:    254,
	}
}

// Option configures a Service.
type Option func(*Service)

// WithLayout overrides the slot layout.
func WithLayout(l Layout) Option {
	return func(s *Service) { s.layout = l }
}

// WithHeights overrides the per-realm carrier heights. fallback is used for
// realms missing from the map.
func WithHeights(heights map[component.Realm]float64, fallback float64) Option {
	return func(s *Service) {
		s.heights = heights
		s.fallbackHeight = fallback
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}
