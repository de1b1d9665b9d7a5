// Package manifest loads registry entries from human-edited YAML or TOML
// files. A manifest lists items by identifier, each with an arbitrary
// payload table and an optional pinned global key used to catch identifier
// renames that would silently change persisted keys.
package manifest

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/arthur-debert/keyreg/pkg/errors"
	"github.com/arthur-debert/keyreg/pkg/logging"
	"github.com/arthur-debert/keyreg/pkg/registry"
)

// Payload is the element type manifests load into a registry.
type Payload = map[string]interface{}

// Item is one manifest entry.
type Item struct {
	// Ident is the identifier the item registers under. Required.
	Ident string `yaml:"ident" toml:"ident"`

	// Key optionally pins the expected global key. It accepts the wire
	// forms of a global key: an integer hash, a string identifier, or a
	// {hash: n} / {ident: s} mapping. Load fails when the pin does not
	// match the hash of Ident.
	Key *registry.GlobalKey `yaml:"key,omitempty" toml:"-"`

	// Payload is the item's value, carried as-is.
	Payload Payload `yaml:"payload,omitempty" toml:"payload,omitempty"`
}

// Manifest is a parsed manifest file.
type Manifest struct {
	// Name optionally names the registry this manifest feeds; the hub and
	// config layers use it to pick a capacity hint.
	Name  string `yaml:"name,omitempty" toml:"name,omitempty"`
	Items []Item `yaml:"items" toml:"items"`
}

// tomlItem mirrors Item for TOML decoding. go-toml has no equivalent of
// yaml.Node for multi-form fields, so the key is decoded as a plain value
// and converted afterwards.
type tomlItem struct {
	Ident   string      `toml:"ident"`
	Key     interface{} `toml:"key"`
	Payload Payload     `toml:"payload"`
}

type tomlManifest struct {
	Name  string     `toml:"name"`
	Items []tomlItem `toml:"items"`
}

// Load reads and validates a manifest file. The format is chosen by
// extension: .yaml/.yml or .toml.
func Load(path string) (*Manifest, error) {
	logger := logging.GetLogger("manifest")

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrManifestLoad, "failed to read manifest %s", path)
	}

	var m *Manifest
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		m, err = parseYAML(data)
	case ".toml":
		m, err = parseTOML(data)
	default:
		return nil, errors.Newf(errors.ErrManifestLoad,
			"unsupported manifest format %q (want .yaml, .yml or .toml)", ext)
	}
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrManifestParse, "failed to parse manifest %s", path)
	}

	if err := m.validate(); err != nil {
		return nil, err
	}

	logger.Debug().Str("path", path).Int("items", len(m.Items)).Msg("Manifest loaded")
	return m, nil
}

func parseYAML(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

func parseTOML(data []byte) (*Manifest, error) {
	var raw tomlManifest
	if err := toml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	m := Manifest{Name: raw.Name, Items: make([]Item, 0, len(raw.Items))}
	for _, it := range raw.Items {
		key, err := keyFromValue(it.Key)
		if err != nil {
			return nil, err
		}
		m.Items = append(m.Items, Item{Ident: it.Ident, Key: key, Payload: it.Payload})
	}
	return &m, nil
}

// keyFromValue converts a decoded TOML value into a GlobalKey, accepting
// the same forms as the JSON and YAML unmarshalers.
func keyFromValue(v interface{}) (*registry.GlobalKey, error) {
	switch val := v.(type) {
	case nil:
		return nil, nil
	case int64:
		if val < 0 {
			return nil, errors.Newf(errors.ErrKeyUnmarshal, "global key must be non-negative, got %d", val)
		}
		k := registry.GlobalKey(val)
		return &k, nil
	case uint64:
		k := registry.GlobalKey(val)
		return &k, nil
	case string:
		k := registry.GlobalKeyOf(val)
		return &k, nil
	case map[string]interface{}:
		hash, hasHash := val["hash"]
		ident, hasIdent := val["ident"]
		switch {
		case hasHash && !hasIdent && len(val) == 1:
			return keyFromValue(hash)
		case hasIdent && !hasHash && len(val) == 1:
			s, ok := ident.(string)
			if !ok {
				return nil, errors.Newf(errors.ErrKeyUnmarshal, "key ident must be a string, got %T", ident)
			}
			k := registry.GlobalKeyOf(s)
			return &k, nil
		default:
			return nil, errors.New(errors.ErrKeyUnmarshal,
				"key table must carry exactly one of 'hash' or 'ident'")
		}
	default:
		return nil, errors.Newf(errors.ErrKeyUnmarshal, "unsupported key value of type %T", v)
	}
}

// validate checks structural requirements and key pins.
func (m *Manifest) validate() error {
	for i, item := range m.Items {
		if item.Ident == "" {
			return errors.Newf(errors.ErrManifestInvalid, "item %d has no ident", i)
		}
		if item.Key != nil && *item.Key != registry.GlobalKeyOf(item.Ident) {
			return errors.Newf(errors.ErrManifestInvalid,
				"item %q pins key %d but its ident hashes to %d",
				item.Ident, *item.Key, registry.GlobalKeyOf(item.Ident)).
				WithDetail("ident", item.Ident)
		}
	}
	return nil
}

// Apply inserts every item into reg in manifest order and returns the local
// keys assigned. With a strict registry the first duplicate or collision
// aborts the load; entries inserted before it remain (registries cannot
// remove).
func (m *Manifest) Apply(reg *registry.Registry[Payload]) ([]registry.LocalKey, error) {
	logger := logging.GetLogger("manifest")

	keys := make([]registry.LocalKey, 0, len(m.Items))
	for _, item := range m.Items {
		key, err := reg.Add(item.Ident, item.Payload)
		if err != nil {
			return keys, errors.Wrapf(err, errors.ErrKeyCollision,
				"manifest item %q could not be registered", item.Ident)
		}
		keys = append(keys, key)
	}

	logger.Debug().Str("name", m.Name).Int("items", len(keys)).Msg("Manifest applied")
	return keys, nil
}

// Verify loads the manifest into a fresh strict registry, surfacing
// duplicate identifiers and hash collisions without touching any caller
// state. It returns the populated registry for further inspection.
func (m *Manifest) Verify() (*registry.Registry[Payload], error) {
	reg := registry.New[Payload](
		registry.WithCapacity(len(m.Items)),
		registry.WithStrictIdents(),
	)
	if _, err := m.Apply(reg); err != nil {
		return nil, err
	}
	return reg, nil
}
