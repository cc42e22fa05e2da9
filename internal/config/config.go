// Package config loads the server configuration from INVENTORY_* environment
// variables.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"slices"

	"github.com/caarlos0/env/v11"

	"github.com/Justash01/inventory-saver/internal/world"
)

// AppName names the data directory under $XDG_DATA_HOME.
const AppName = "inventory-saver"

// DBFile is the sqlite file inside the data directory.
const DBFile = "inventory.db"

// Server is the configuration of cmd/server.
type Server struct {
	Port    int        `env:"INVENTORY_PORT"      envDefault:"2222"`
	HostKey string     `env:"INVENTORY_HOST_KEY"  envDefault:"server_host_key"`
	DataDir string     `env:"INVENTORY_DATA_DIR"`
	Level   slog.Level `env:"INVENTORY_LOG_LEVEL" envDefault:"INFO"`

	// CarrierSlots is the slot count of the built-in storage:entity type.
	CarrierSlots int `env:"INVENTORY_CARRIER_SLOTS" envDefault:"41"`
	// CarrierTypes registers extra carrier types as id=slots pairs, e.g.
	// "mod:chest=54,mod:barrel=45". Ids may contain ':'.
	CarrierTypes map[string]int `env:"INVENTORY_CARRIER_TYPES" envSeparator:"," envKeyValSeparator:"="`
	// CarrierType is the carrier used while no player has picked one.
	CarrierType string `env:"INVENTORY_CARRIER_TYPE" envDefault:"storage:entity"`
}

// Load parses the process environment.
func Load() (Server, error) {
	return parse(env.Options{}, os.Getenv)
}

// LoadFrom parses environ instead of the process environment.
func LoadFrom(environ map[string]string) (Server, error) {
	return parse(env.Options{Environment: environ}, func(k string) string { return environ[k] })
}

func parse(opts env.Options, getenv func(string) string) (Server, error) {
	var cfg Server
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Server{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.DataDir == "" {
		dir, err := dataDir(getenv)
		if err != nil {
			return Server{}, err
		}
		cfg.DataDir = dir
	}
	if err := cfg.Validate(); err != nil {
		return Server{}, err
	}
	return cfg, nil
}

// Validate checks ranges the env parser cannot.
func (c Server) Validate() error {
	var errs []error
	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d out of range", c.Port))
	}
	if c.HostKey == "" {
		errs = append(errs, errors.New("host key path is empty"))
	}
	if c.CarrierSlots < 1 || c.CarrierSlots > world.MaxContainerSize {
		errs = append(errs, fmt.Errorf("carrier slots %d must be in 1..%d", c.CarrierSlots, world.MaxContainerSize))
	}
	for id, slots := range c.CarrierTypes {
		if id == "" {
			errs = append(errs, errors.New("carrier type with an empty id"))
		}
		if slots < 1 || slots > world.MaxContainerSize {
			errs = append(errs, fmt.Errorf("carrier type %s: slots %d must be in 1..%d", id, slots, world.MaxContainerSize))
		}
	}
	if _, ok := c.CarrierTypes[c.CarrierType]; !ok && c.CarrierType != world.DefaultCarrierType {
		errs = append(errs, fmt.Errorf("default carrier type %q is not registered", c.CarrierType))
	}
	return errors.Join(errs...)
}

// EntityTypes lists every carrier type to register, the built-in one first
// and the rest sorted by id.
func (c Server) EntityTypes() []world.EntityType {
	out := []world.EntityType{{ID: world.DefaultCarrierType, Slots: c.CarrierSlots}}
	for _, id := range slices.Sorted(maps.Keys(c.CarrierTypes)) {
		if id == world.DefaultCarrierType {
			out[0].Slots = c.CarrierTypes[id]
			continue
		}
		out = append(out, world.EntityType{ID: id, Slots: c.CarrierTypes[id]})
	}
	return out
}

// DBPath is the sqlite database location.
func (c Server) DBPath() string { return filepath.Join(c.DataDir, DBFile) }

// dataDir follows the XDG base directory rule: $XDG_DATA_HOME/inventory-saver,
// falling back to ~/.local/share/inventory-saver.
func dataDir(getenv func(string) string) (string, error) {
	dataHome := getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("data dir: %w", err)
		}
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, AppName), nil
}
