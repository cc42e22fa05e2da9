package snapshot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/Justash01/inventory-saver/internal/component"
	"github.com/Justash01/inventory-saver/internal/ecs"
	"github.com/Justash01/inventory-saver/internal/world"
)

// Stage is the part of the host a snapshot is captured from and placed into.
type Stage interface {
	Capture(r world.Region) []world.EntityState
	Restore(at component.Position, states []world.EntityState) ([]ecs.EntityID, error)
}

// Store is the named-snapshot capability: create, place, delete and
// enumerate, spread over a durable and a transient backend.
type Store struct {
	stage     Stage
	durable   Backend
	transient Backend
	logger    *slog.Logger
	now       func() time.Time
}

// NewStore wires a Store. A nil transient backend gets an in-memory one.
func NewStore(stage Stage, durable, transient Backend, logger *slog.Logger) *Store {
	if transient == nil {
		transient = NewMemoryBackend()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		stage:     stage,
		durable:   durable,
		transient: transient,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *Store) backends() []Backend {
	if s.durable == nil {
		return []Backend{s.transient}
	}
	return []Backend{s.durable, s.transient}
}

func (s *Store) backend(m Mode) (Backend, error) {
	if m == Transient {
		return s.transient, nil
	}
	if s.durable == nil {
		return nil, errors.New("no durable snapshot backend configured")
	}
	return s.durable, nil
}

// Exists reports whether key is stored in either backend.
func (s *Store) Exists(ctx context.Context, key string) (bool, error) {
	_, _, err := s.get(ctx, key)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, ErrNotFound):
		return false, nil
	default:
		return false, err
	}
}

// Keys enumerates the keys starting with prefix across both backends, sorted.
func (s *Store) Keys(ctx context.Context, prefix string) ([]string, error) {
	var out []string
	for _, b := range s.backends() {
		keys, err := b.Keys(ctx, prefix)
		if err != nil {
			return nil, fmt.Errorf("list snapshots %q: %w", prefix, err)
		}
		out = append(out, keys...)
	}
	slices.Sort(out)
	return slices.Compact(out), nil
}

// Create captures the entities inside r and stores them under key.
func (s *Store) Create(ctx context.Context, key string, r world.Region, mode Mode) error {
	exists, err := s.Exists(ctx, key)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("create snapshot %s: %w", key, ErrExists)
	}
	b, err := s.backend(mode)
	if err != nil {
		return fmt.Errorf("create snapshot %s: %w", key, err)
	}
	blob, err := Encode(Snapshot{
		Key:   key,
		Realm: r.Realm,
		Size: [3]int{
			r.Max[0] - r.Min[0] + 1,
			r.Max[1] - r.Min[1] + 1,
			r.Max[2] - r.Min[2] + 1,
		},
		Entities:  s.stage.Capture(r),
		CreatedAt: s.now().UTC(),
	})
	if err != nil {
		return err
	}
	if err := b.Put(ctx, key, blob); err != nil {
		return fmt.Errorf("create snapshot %s: %w", key, err)
	}
	s.logger.Debug("snapshot created", "key", key, "mode", mode.String(), "bytes", len(blob))
	return nil
}

// Place materializes the snapshot under key at pos and returns the entities
// it created.
func (s *Store) Place(ctx context.Context, key string, pos component.Position) ([]ecs.EntityID, error) {
	blob, _, err := s.get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("place snapshot %s: %w", key, err)
	}
	snap, err := Decode(blob)
	if err != nil {
		return nil, fmt.Errorf("place snapshot %s: %w", key, err)
	}
	ids, err := s.stage.Restore(pos, snap.Entities)
	if err != nil {
		return nil, fmt.Errorf("place snapshot %s: %w", key, err)
	}
	return ids, nil
}

// Delete removes key from whichever backend holds it.
func (s *Store) Delete(ctx context.Context, key string) error {
	_, b, err := s.get(ctx, key)
	if err != nil {
		return fmt.Errorf("delete snapshot %s: %w", key, err)
	}
	if err := b.Delete(ctx, key); err != nil {
		return fmt.Errorf("delete snapshot %s: %w", key, err)
	}
	s.logger.Debug("snapshot deleted", "key", key)
	return nil
}

func (s *Store) get(ctx context.Context, key string) ([]byte, Backend, error) {
	for _, b := range s.backends() {
		blob, err := b.Get(ctx, key)
		if err == nil {
			return blob, b, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return nil, nil, err
		}
	}
	return nil, nil, ErrNotFound
}
