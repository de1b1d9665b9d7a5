package registry

import (
	"bytes"
	"encoding/json"
	"strconv"

	"github.com/cespare/xxhash/v2"
	"gopkg.in/yaml.v3"

	"github.com/arthur-debert/keyreg/pkg/errors"
)

// hashSeed is fixed so that GlobalKeys compare equal across processes,
// versions and platforms. Changing it invalidates every persisted key.
const hashSeed uint64 = 123456789123456789

// GlobalKey is the xxh64 hash of an entry's identifier string. It is stable
// across runs and platforms and is the only key type that may be persisted
// or transmitted.
//
// On the wire a GlobalKey is a plain unsigned integer. It additionally
// accepts two human-friendly input forms when decoding from JSON or YAML:
// a bare string (the identifier, re-hashed) and a one-field object, either
// {"hash": 1234} or {"ident": "ns:name"}.
type GlobalKey uint64

// GlobalKeyOf returns the key for an identifier string. Two equal
// identifiers always produce the same key; the registry does not guard
// against two different identifiers hashing to the same value.
func GlobalKeyOf(ident string) GlobalKey {
	d := xxhash.NewWithSeed(hashSeed)
	_, _ = d.WriteString(ident)
	return GlobalKey(d.Sum64())
}

// ParseGlobalKey interprets a command-line style key argument. A string of
// decimal digits is taken as a literal hash value; anything else is hashed
// as an identifier. Identifiers that consist only of digits must therefore
// be passed pre-hashed.
func ParseGlobalKey(s string) GlobalKey {
	if n, err := strconv.ParseUint(s, 10, 64); err == nil {
		return GlobalKey(n)
	}
	return GlobalKeyOf(s)
}

// keyWrapper is the tagged single-field object form of a GlobalKey.
type keyWrapper struct {
	Hash  *uint64 `json:"hash" yaml:"hash"`
	Ident *string `json:"ident" yaml:"ident"`
}

func (w keyWrapper) resolve() (GlobalKey, error) {
	switch {
	case w.Hash != nil && w.Ident == nil:
		return GlobalKey(*w.Hash), nil
	case w.Ident != nil && w.Hash == nil:
		return GlobalKeyOf(*w.Ident), nil
	default:
		return 0, errors.New(errors.ErrKeyUnmarshal,
			"key object must carry exactly one of 'hash' or 'ident'")
	}
}

// MarshalJSON encodes the key as a bare unsigned integer.
func (k GlobalKey) MarshalJSON() ([]byte, error) {
	return strconv.AppendUint(nil, uint64(k), 10), nil
}

// UnmarshalJSON decodes a number (the literal hash), a string (an
// identifier to re-hash), or a tagged object {"hash": n} / {"ident": s}.
func (k *GlobalKey) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return errors.New(errors.ErrKeyUnmarshal, "empty global key")
	}

	switch data[0] {
	case '"':
		var ident string
		if err := json.Unmarshal(data, &ident); err != nil {
			return errors.Wrap(err, errors.ErrKeyUnmarshal, "invalid global key string")
		}
		*k = GlobalKeyOf(ident)
		return nil
	case '{':
		var w keyWrapper
		if err := json.Unmarshal(data, &w); err != nil {
			return errors.Wrap(err, errors.ErrKeyUnmarshal, "invalid global key object")
		}
		key, err := w.resolve()
		if err != nil {
			return err
		}
		*k = key
		return nil
	default:
		var hash uint64
		if err := json.Unmarshal(data, &hash); err != nil {
			return errors.Wrap(err, errors.ErrKeyUnmarshal, "invalid global key value")
		}
		*k = GlobalKey(hash)
		return nil
	}
}

// MarshalYAML encodes the key as a bare unsigned integer.
func (k GlobalKey) MarshalYAML() (interface{}, error) {
	return uint64(k), nil
}

// UnmarshalYAML accepts the same three forms as UnmarshalJSON.
func (k *GlobalKey) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		if value.Tag == "!!int" {
			hash, err := strconv.ParseUint(value.Value, 10, 64)
			if err != nil {
				return errors.Wrapf(err, errors.ErrKeyUnmarshal,
					"invalid global key value %q", value.Value)
			}
			*k = GlobalKey(hash)
			return nil
		}
		var ident string
		if err := value.Decode(&ident); err != nil {
			return errors.Wrap(err, errors.ErrKeyUnmarshal, "invalid global key scalar")
		}
		*k = GlobalKeyOf(ident)
		return nil
	case yaml.MappingNode:
		var w keyWrapper
		if err := value.Decode(&w); err != nil {
			return errors.Wrap(err, errors.ErrKeyUnmarshal, "invalid global key mapping")
		}
		key, err := w.resolve()
		if err != nil {
			return err
		}
		*k = key
		return nil
	default:
		return errors.Newf(errors.ErrKeyUnmarshal,
			"global key must be a scalar or a mapping, got %v", value.Kind)
	}
}

// MarshalText encodes the key as decimal digits, for formats that only
// support string keys (TOML, koanf).
func (k GlobalKey) MarshalText() ([]byte, error) {
	return strconv.AppendUint(nil, uint64(k), 10), nil
}

// UnmarshalText decodes either decimal digits or an identifier, with the
// same digit ambiguity as ParseGlobalKey.
func (k *GlobalKey) UnmarshalText(text []byte) error {
	*k = ParseGlobalKey(string(text))
	return nil
}

// LocalKey is the insertion-order position of an entry within one Registry
// instance. It is only meaningful for the lifetime of the registry that
// produced it: comparing or using LocalKeys across registry instances is a
// logic error the type cannot catch.
//
// LocalKeys have no wire representation. Marshal attempts fail so that one
// cannot leak into a config file or network payload by accident.
type LocalKey int

var errLocalKeyNotPortable = errors.New(errors.ErrKeyNotPortable,
	"local keys are scoped to one registry instance and cannot be serialized")

// MarshalJSON always fails; see LocalKey.
func (k LocalKey) MarshalJSON() ([]byte, error) { return nil, errLocalKeyNotPortable }

// UnmarshalJSON always fails; see LocalKey.
func (k *LocalKey) UnmarshalJSON([]byte) error { return errLocalKeyNotPortable }

// MarshalYAML always fails; see LocalKey.
func (k LocalKey) MarshalYAML() (interface{}, error) { return nil, errLocalKeyNotPortable }

// UnmarshalYAML always fails; see LocalKey.
func (k *LocalKey) UnmarshalYAML(*yaml.Node) error { return errLocalKeyNotPortable }
