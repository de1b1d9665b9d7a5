package registry

// Entry is the stored unit: an identifier string, the caller's payload, and
// the two keys fixed at insertion time.
type Entry[I any] struct {
	ident  string
	local  LocalKey
	global GlobalKey

	// Item is the caller's payload. It may be mutated in place through any
	// *Entry obtained from Search, At or Entries; the identifier and keys
	// are immutable once the entry exists.
	Item I
}

// Ident returns the identifier the entry was registered under.
func (e *Entry[I]) Ident() string { return e.ident }

// LocalKey returns the entry's position in its registry. Useful to turn a
// Search result into a key for cheaper repeated access via At.
func (e *Entry[I]) LocalKey() LocalKey { return e.local }

// GlobalKey returns the hash of the entry's identifier.
func (e *Entry[I]) GlobalKey() GlobalKey { return e.global }
