// Package hub gives an application one place to own its registries. A Hub
// holds at most one registry per element type, hands out typed handles, and
// serializes writers against readers so that the lock-free registry core
// can be shared safely.
//
// A Hub is plain value-style state: construct one, pass it around. There is
// deliberately no package-level default hub.
package hub

import (
	"reflect"
	"sync"

	"github.com/rs/zerolog"

	"github.com/arthur-debert/keyreg/pkg/config"
	"github.com/arthur-debert/keyreg/pkg/errors"
	"github.com/arthur-debert/keyreg/pkg/logging"
	"github.com/arthur-debert/keyreg/pkg/registry"
)

// Hub owns one registry per element type.
type Hub struct {
	mu     sync.RWMutex
	cfg    *config.Config
	logger zerolog.Logger
	regs   map[reflect.Type]interface{}
}

// New creates a hub. cfg supplies capacity hints and the strict-idents
// default for registries initialized through Register; nil means built-in
// defaults.
func New(cfg *config.Config) *Hub {
	if cfg == nil {
		cfg = &config.Config{DefaultCapacity: registry.DefaultCapacity}
	}
	return &Hub{
		cfg:    cfg,
		logger: logging.GetLogger("hub"),
		regs:   make(map[reflect.Type]interface{}),
	}
}

func typeOf[I any]() reflect.Type {
	return reflect.TypeOf((*I)(nil)).Elem()
}

// Register initializes the hub's registry for element type I, configured
// from the hub's config under the given name (capacity hint, strict mode).
// Extra options override the config. Registering the same element type
// twice returns ErrAlreadyExists.
func Register[I any](h *Hub, name string, opts ...registry.Option) error {
	t := typeOf[I]()

	base := []registry.Option{registry.WithCapacity(h.cfg.CapacityFor(name))}
	if h.cfg.StrictIdents {
		base = append(base, registry.WithStrictIdents())
	}
	reg := registry.New[I](append(base, opts...)...)

	h.mu.Lock()
	defer h.mu.Unlock()

	if _, exists := h.regs[t]; exists {
		return errors.Newf(errors.ErrAlreadyExists,
			"a registry for element type %s is already initialized", t)
	}
	h.regs[t] = reg

	h.logger.Debug().
		Str("name", name).
		Str("type", t.String()).
		Int("capacity", h.cfg.CapacityFor(name)).
		Msg("Registry initialized")
	return nil
}

// Insert places a caller-constructed registry into the hub, for callers
// that pre-populate a registry before sharing it. Same uniqueness rule as
// Register.
func Insert[I any](h *Hub, reg *registry.Registry[I]) error {
	if reg == nil {
		return errors.New(errors.ErrInvalidInput, "cannot insert a nil registry")
	}
	t := typeOf[I]()

	h.mu.Lock()
	defer h.mu.Unlock()

	if _, exists := h.regs[t]; exists {
		return errors.Newf(errors.ErrAlreadyExists,
			"a registry for element type %s is already initialized", t)
	}
	h.regs[t] = reg
	return nil
}

// Handle is a typed view onto one hub-owned registry. Access goes through
// View and Update, which take the hub's reader/writer lock; entry pointers
// must not be retained past the callback.
type Handle[I any] struct {
	hub *Hub
	reg *registry.Registry[I]
}

// Get returns the handle for element type I, or ErrNotFound if no registry
// was initialized for it.
func Get[I any](h *Hub) (*Handle[I], error) {
	t := typeOf[I]()

	h.mu.RLock()
	raw, exists := h.regs[t]
	h.mu.RUnlock()

	if !exists {
		return nil, errors.Newf(errors.ErrNotFound,
			"no registry initialized for element type %s", t)
	}
	reg, ok := raw.(*registry.Registry[I])
	if !ok {
		// Unreachable as long as the map is only written through Register
		// and Insert, which key by the same typeOf.
		return nil, errors.Newf(errors.ErrInternal,
			"registry stored for element type %s has unexpected type %T", t, raw)
	}
	return &Handle[I]{hub: h, reg: reg}, nil
}

// MustGet returns the handle for element type I and panics if the registry
// was never initialized, which is a wiring bug.
func MustGet[I any](h *Hub) *Handle[I] {
	handle, err := Get[I](h)
	if err != nil {
		panic(err)
	}
	return handle
}

// View runs fn with shared (read) access to the registry. Any number of
// Views proceed concurrently; fn must not call Add, Reserve, or mutate
// entry payloads.
func (h *Handle[I]) View(fn func(*registry.Registry[I])) {
	h.hub.mu.RLock()
	defer h.hub.mu.RUnlock()
	fn(h.reg)
}

// Update runs fn with exclusive access to the registry, for insertion and
// in-place payload mutation.
func (h *Handle[I]) Update(fn func(*registry.Registry[I]) error) error {
	h.hub.mu.Lock()
	defer h.hub.mu.Unlock()
	return fn(h.reg)
}
