// Package settings holds the four process-wide options that steer every
// workflow. They are read once per command dispatch into a Settings value.
package settings

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/Justash01/inventory-saver/internal/snapshot"
	"github.com/Justash01/inventory-saver/internal/world"
)

// Property keys. An absent property means the default.
const (
	KeySaveInRAM     = "inventory_tools:save_in_ram"
	KeyKeepItems     = "inventory_tools:keep_items"
	KeyKeepInventory = "inventory_tools:keep_inventory"
	KeyStorageEntity = "inventory_tools:storage_entity"
)

const propertyTrue = "true"

// Settings is a snapshot of the options for one command.
type Settings struct {
	// Retention decides whether new snapshots survive a restart.
	Retention snapshot.Mode
	// ClearAfterSave empties the transferred source slots. The same flag
	// governs the carrier side of a load.
	ClearAfterSave bool
	// ClearAfterLoad deletes the snapshot once it has been loaded.
	ClearAfterLoad bool
	// CarrierType is the entity type used as the carrier.
	CarrierType string
}

// Defaults returns the built-in settings.
func Defaults() Settings {
	return Settings{
		Retention:      snapshot.Durable,
		ClearAfterSave: true,
		ClearAfterLoad: true,
		CarrierType:    world.DefaultCarrierType,
	}
}

// PropertyStore is the host's process-wide key/value property store.
type PropertyStore interface {
	Property(ctx context.Context, key string) (string, bool, error)
	SetProperty(ctx context.Context, key, value string) error
	DeleteProperty(ctx context.Context, key string) error
}

// Store reads and writes Settings through a PropertyStore.
type Store struct {
	props          PropertyStore
	defaultCarrier string
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithDefaultCarrier sets the carrier type used while no override is stored.
func WithDefaultCarrier(typeID string) StoreOption {
	return func(s *Store) {
		if typeID = strings.TrimSpace(typeID); typeID != "" {
			s.defaultCarrier = typeID
		}
	}
}

// NewStore returns a Store backed by props.
func NewStore(props PropertyStore, opts ...StoreOption) *Store {
	s := &Store{props: props, defaultCarrier: world.DefaultCarrierType}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load reads the current settings, filling defaults for absent properties.
func (s *Store) Load(ctx context.Context) (Settings, error) {
	out := Defaults()
	out.CarrierType = s.defaultCarrier
	ram, err := s.flag(ctx, KeySaveInRAM)
	if err != nil {
		return Settings{}, err
	}
	if ram {
		out.Retention = snapshot.Transient
	}
	keepItems, err := s.flag(ctx, KeyKeepItems)
	if err != nil {
		return Settings{}, err
	}
	out.ClearAfterSave = !keepItems
	keepInventory, err := s.flag(ctx, KeyKeepInventory)
	if err != nil {
		return Settings{}, err
	}
	out.ClearAfterLoad = !keepInventory

	carrier, ok, err := s.props.Property(ctx, KeyStorageEntity)
	if err != nil {
		return Settings{}, fmt.Errorf("read %s: %w", KeyStorageEntity, err)
	}
	if ok && strings.TrimSpace(carrier) != "" {
		out.CarrierType = strings.TrimSpace(carrier)
	}
	return out, nil
}

// Save persists v. Default values are stored as absent properties; an empty
// carrier type means the store's default.
func (s *Store) Save(ctx context.Context, v Settings) error {
	if err := s.setFlag(ctx, KeySaveInRAM, v.Retention == snapshot.Transient); err != nil {
		return err
	}
	if err := s.setFlag(ctx, KeyKeepItems, !v.ClearAfterSave); err != nil {
		return err
	}
	if err := s.setFlag(ctx, KeyKeepInventory, !v.ClearAfterLoad); err != nil {
		return err
	}
	carrier := strings.TrimSpace(v.CarrierType)
	if carrier == "" || carrier == s.defaultCarrier {
		return s.clear(ctx, KeyStorageEntity)
	}
	if err := s.props.SetProperty(ctx, KeyStorageEntity, carrier); err != nil {
		return fmt.Errorf("write %s: %w", KeyStorageEntity, err)
	}
	return nil
}

func (s *Store) flag(ctx context.Context, key string) (bool, error) {
	v, ok, err := s.props.Property(ctx, key)
	if err != nil {
		return false, fmt.Errorf("read %s: %w", key, err)
	}
	return ok && v == propertyTrue, nil
}

func (s *Store) setFlag(ctx context.Context, key string, on bool) error {
	if !on {
		return s.clear(ctx, key)
	}
	if err := s.props.SetProperty(ctx, key, propertyTrue); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

func (s *Store) clear(ctx context.Context, key string) error {
	if err := s.props.DeleteProperty(ctx, key); err != nil {
		return fmt.Errorf("clear %s: %w", key, err)
	}
	return nil
}

// MemoryProperties is a PropertyStore that lives in process memory.
type MemoryProperties struct {
	mu    sync.Mutex
	props map[string]string
}

// NewMemoryProperties returns an empty MemoryProperties.
func NewMemoryProperties() *MemoryProperties {
	return &MemoryProperties{props: make(map[string]string)}
}

func (m *MemoryProperties) Property(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.props[key]
	return v, ok, nil
}

func (m *MemoryProperties) SetProperty(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.props[key] = value
	return nil
}

func (m *MemoryProperties) DeleteProperty(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.props, key)
	return nil
}
