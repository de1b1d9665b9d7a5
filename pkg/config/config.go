// Package config loads keyreg settings in layers: built-in defaults, then an
// optional keyreg.toml file, then KEYREG_* environment variables. Later
// layers win.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/arthur-debert/keyreg/pkg/errors"
)

const envPrefix = "KEYREG_"

// Config holds host-side settings for registry instances. These are purely
// operational hints; none of them change what keys a registry produces.
type Config struct {
	// DefaultCapacity is the initial storage hint for registries that have
	// no entry in Capacities.
	DefaultCapacity int `koanf:"default_capacity"`

	// StrictIdents, when true, makes hub-owned registries reject duplicate
	// identifiers at insert time.
	StrictIdents bool `koanf:"strict_idents"`

	// Verbosity feeds the logging setup: 0 warn, 1 info, 2 debug, 3+ trace.
	Verbosity int `koanf:"verbosity"`

	// Capacities maps a registry name to its capacity hint.
	Capacities map[string]int `koanf:"capacities"`
}

// CapacityFor returns the capacity hint for a named registry, falling back
// to DefaultCapacity.
func (c *Config) CapacityFor(name string) int {
	if n, ok := c.Capacities[name]; ok {
		return n
	}
	return c.DefaultCapacity
}

// DefaultPath returns the standard location of the user config file,
// $XDG_CONFIG_HOME/keyreg/keyreg.toml.
func DefaultPath() string {
	return filepath.Join(xdg.ConfigHome, "keyreg", "keyreg.toml")
}

// Load reads configuration. path selects the config file; an empty path
// means DefaultPath, and a missing file at either location is not an error
// (defaults plus environment still apply). A file that exists but fails to
// parse is an error.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	// 1. Built-in defaults
	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load built-in defaults")
	}

	// 2. User config file, if present
	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
			return nil, errors.Wrapf(err, errors.ErrConfigParse, "failed to load config from %s", path)
		}
	} else if explicit {
		return nil, errors.Wrapf(err, errors.ErrConfigLoad, "config file %s not readable", path)
	}

	// 3. Environment variables. KEYREG_DEFAULT_CAPACITY=128 maps onto the
	// default_capacity key; nested keys are not addressable from the
	// environment, which keeps the mapping unambiguous for snake_case names.
	err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, envPrefix))
	}), nil)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load env vars")
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to unmarshal configuration")
	}

	if cfg.DefaultCapacity < 0 {
		return nil, errors.Newf(errors.ErrConfigValid,
			"default_capacity must be non-negative, got %d", cfg.DefaultCapacity)
	}
	for name, n := range cfg.Capacities {
		if n < 0 {
			return nil, errors.Newf(errors.ErrConfigValid,
				"capacity for %q must be non-negative, got %d", name, n)
		}
	}

	return &cfg, nil
}
