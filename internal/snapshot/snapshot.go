// Package snapshot persists captured carrier state under a per-player,
// per-label key. Blobs are versioned JSON; durable and transient backends sit
// behind one Backend interface.
package snapshot

import (
	"errors"
	"fmt"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/Justash01/inventory-saver/internal/component"
	"github.com/Justash01/inventory-saver/internal/world"
)

// FormatVersion is written into every blob. Decoding rejects other versions.
const FormatVersion = 1

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var (
	// ErrExists is returned when creating a snapshot under a taken key.
	ErrExists = errors.New("snapshot already exists")

	// ErrNotFound is returned when a key has no snapshot.
	ErrNotFound = errors.New("snapshot not found")

	// ErrInvalidBlob is returned when a stored blob cannot be decoded.
	ErrInvalidBlob = errors.New("snapshot blob is not valid")

	// ErrUnsupportedVersion is returned for blobs written by another format version.
	ErrUnsupportedVersion = errors.New("snapshot format version is not supported")
)

// Mode selects where a snapshot lives.
type Mode uint8

const (
	Durable   Mode = iota // survives restarts
	Transient             // process lifetime only
)

func (m Mode) String() string {
	if m == Transient {
		return "transient"
	}
	return "durable"
}

// Snapshot is the decoded content of one blob.
type Snapshot struct {
	Version   int                 `json:"version"`
	Key       string              `json:"key"`
	Realm     component.Realm     `json:"realm"`
	Size      [3]int              `json:"size"` // region extent in blocks
	Entities  []world.EntityState `json:"entities"`
	CreatedAt time.Time           `json:"created_at"`
}

// Encode marshals s, stamping the current format version.
func Encode(s Snapshot) ([]byte, error) {
	s.Version = FormatVersion
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot %s: %w", s.Key, err)
	}
	return data, nil
}

// Decode unmarshals a blob written by Encode.
func Decode(data []byte) (Snapshot, error) {
	if !jsoniter.ConfigFastest.Valid(data) {
		return Snapshot{}, ErrInvalidBlob
	}
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return Snapshot{}, errors.Join(ErrInvalidBlob, err)
	}
	if s.Version != FormatVersion {
		return Snapshot{}, fmt.Errorf("%w: %d", ErrUnsupportedVersion, s.Version)
	}
	for _, e := range s.Entities {
		if e.Size < 0 || e.Size > world.MaxContainerSize {
			return Snapshot{}, fmt.Errorf("%w: %s has %d slots", ErrInvalidBlob, e.TypeID, e.Size)
		}
	}
	return s, nil
}
