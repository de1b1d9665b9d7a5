package registry

import (
	"github.com/arthur-debert/keyreg/pkg/errors"
)

// DefaultCapacity is the initial storage hint used by New when no
// WithCapacity option is given.
const DefaultCapacity = 64

// Options control registry behavior.
type Options struct {
	// Capacity pre-allocates storage for that many entries. It is purely a
	// performance hint; the registry grows without bound beyond it.
	Capacity int

	// Strict makes Add reject an identifier whose hash is already present,
	// instead of the default last-write-wins overwrite of the lookup table.
	Strict bool
}

// Option modifies Options.
type Option func(*Options)

// WithCapacity sets the initial storage hint, to avoid reallocation churn
// during bulk insertion.
func WithCapacity(n int) Option { return func(o *Options) { o.Capacity = n } }

// WithStrictIdents rejects duplicate identifiers and hash collisions at Add
// time rather than silently shadowing the earlier entry.
func WithStrictIdents() Option { return func(o *Options) { o.Strict = true } }

// Registry is a growable, insert-only collection of entries of type I. See
// the package documentation for the key model and the ownership contract.
//
// The zero value is not usable; construct with New.
type Registry[I any] struct {
	// entries hold pointers so that growth of the slice never moves an
	// entry: a *Entry handed out by Search or At stays valid, and payload
	// mutation through it is seen by every later lookup.
	entries []*Entry[I]
	table   map[GlobalKey]LocalKey
	opt     Options
}

// New creates an empty registry.
func New[I any](opts ...Option) *Registry[I] {
	o := Options{Capacity: DefaultCapacity}
	for _, fn := range opts {
		fn(&o)
	}
	if o.Capacity < 0 {
		o.Capacity = 0
	}
	return &Registry[I]{
		entries: make([]*Entry[I], 0, o.Capacity),
		table:   make(map[GlobalKey]LocalKey, o.Capacity),
		opt:     o,
	}
}

// Add inserts a new entry and returns its LocalKey, which equals the number
// of entries inserted before it. Previously returned keys and entry
// pointers all remain valid.
//
// In the default mode Add never fails: a duplicate identifier, or a distinct
// identifier whose hash collides with an earlier one, is accepted and the
// lookup table is overwritten so that Search resolves to the newest entry
// (the earlier entry stays reachable by its LocalKey). Under
// WithStrictIdents that situation returns ErrAlreadyExists and nothing is
// inserted.
func (r *Registry[I]) Add(ident string, item I) (LocalKey, error) {
	global := GlobalKeyOf(ident)
	local := LocalKey(len(r.entries))

	if prev, exists := r.table[global]; exists && r.opt.Strict {
		return 0, errors.Newf(errors.ErrAlreadyExists,
			"ident %q hashes to the same global key as existing entry %q",
			ident, r.entries[prev].ident).
			WithDetail("ident", ident).
			WithDetail("existing", r.entries[prev].ident)
	}

	r.entries = append(r.entries, &Entry[I]{
		ident:  ident,
		local:  local,
		global: global,
		Item:   item,
	})
	r.table[global] = local
	return local, nil
}

// MustAdd inserts an entry and panics on error. Only strict-mode registries
// can make it panic; it exists for init-time registration where a duplicate
// is a programming error.
func MustAdd[I any](r *Registry[I], ident string, item I) LocalKey {
	key, err := r.Add(ident, item)
	if err != nil {
		panic(err)
	}
	return key
}

// Search resolves a GlobalKey to its entry. A miss returns (nil, false);
// it is never a panic. The returned pointer stays valid for the registry's
// lifetime and may be used to mutate the payload in place.
func (r *Registry[I]) Search(key GlobalKey) (*Entry[I], bool) {
	local, ok := r.table[key]
	if !ok {
		return nil, false
	}
	return r.entries[local], true
}

// At returns the entry at a LocalKey previously obtained from Add or from
// an entry's own LocalKey accessor. A key outside [0, Len) panics: a valid
// LocalKey is only ever produced by this registry, so an out-of-range value
// is a caller bug, not a recoverable condition. At cannot detect a key that
// happens to be in range but came from a different registry instance.
func (r *Registry[I]) At(key LocalKey) *Entry[I] {
	return r.entries[key]
}

// Len returns the number of entries. It never decreases.
func (r *Registry[I]) Len() int { return len(r.entries) }

// Reserve grows the storage hint by n additional entries.
func (r *Registry[I]) Reserve(n int) {
	if n <= 0 || cap(r.entries)-len(r.entries) >= n {
		return
	}
	grown := make([]*Entry[I], len(r.entries), len(r.entries)+n)
	copy(grown, r.entries)
	r.entries = grown
}

// Entries returns the entries in insertion order. The slice is a snapshot;
// the entries it points at are live, so payload mutation through them is
// visible to the registry.
func (r *Registry[I]) Entries() []*Entry[I] {
	out := make([]*Entry[I], len(r.entries))
	copy(out, r.entries)
	return out
}
