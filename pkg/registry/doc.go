// Package registry provides an insert-only container that keeps every item
// reachable by two key kinds with different stability guarantees.
//
// A GlobalKey is the hash of an item's identifier string. It is the same
// across runs, versions and platforms, which makes it the only key that may
// be persisted or sent over the network.
//
// A LocalKey is the item's insertion-order position. Lookups through it are
// a plain slice index, but the value is meaningless outside the registry
// instance that produced it and must never be serialized.
//
// Entries are created by Add and live as long as the registry does: there is
// no removal, keys are never reused, and positions are never renumbered.
// Payloads may be mutated in place through the pointer returned by Search or
// At.
//
// Typical usage:
//
//	reg := registry.New[int]()
//	key, _ := reg.Add("item:0", 0)
//	if e, ok := reg.Search(registry.GlobalKeyOf("item:0")); ok {
//		e.Item++
//	}
//	_ = reg.At(key) // same entry, O(1) by position
//
// The registry does no locking of its own. Concurrent reads are safe with
// each other; any write (Add, Reserve, payload mutation) must be serialized
// against all other access by the owner, for example through the hub package.
package registry
