package resource

import "sort"

// Change describes a single quantity update
type Change struct {
	Kind     Kind
	Previous int
	Current  int
}

// Delta returns the signed difference carried by the change
func (c Change) Delta() int {
	return c.Current - c.Previous
}

// Store holds the quantity of every resource kind.
//
// Invariants:
// - Every quantity is >= 0
// - Kinds never seen read as 0
// - Mutation only through Add, Consume and Restore
//
// The store is not safe for concurrent use. All callers run on the
// simulation loop.
type Store struct {
	quantities  map[Kind]int
	subscribers map[int]func(Change)
	nextSubID   int
}

// NewStore creates a store seeded with every built-in kind at zero
func NewStore() *Store {
	s := &Store{
		quantities:  make(map[Kind]int),
		subscribers: make(map[int]func(Change)),
	}
	for _, k := range builtinKinds {
		s.quantities[k] = 0
	}
	return s
}

// Get returns the quantity of kind, 0 when the kind was never seen
func (s *Store) Get(kind Kind) int {
	return s.quantities[kind]
}

// Has reports whether at least amount of kind is available
func (s *Store) Has(kind Kind, amount int) bool {
	return s.quantities[kind] >= amount
}

// Add increases kind by amount. Negative amounts are ignored.
// A change is emitted on every call.
func (s *Store) Add(kind Kind, amount int) {
	if amount < 0 {
		amount = 0
	}
	prev := s.quantities[kind]
	s.quantities[kind] = prev + amount
	s.emit(Change{Kind: kind, Previous: prev, Current: prev + amount})
}

// Consume removes amount of kind if available. Nothing is removed on
// failure; a false return is an expected outcome, not an error.
func (s *Store) Consume(kind Kind, amount int) bool {
	if amount < 0 {
		return false
	}
	prev := s.quantities[kind]
	if prev < amount {
		return false
	}
	s.quantities[kind] = prev - amount
	s.emit(Change{Kind: kind, Previous: prev, Current: prev - amount})
	return true
}

// Restore sets kind to amount when applying a saved game
func (s *Store) Restore(kind Kind, amount int) {
	if amount < 0 {
		amount = 0
	}
	prev := s.quantities[kind]
	s.quantities[kind] = amount
	s.emit(Change{Kind: kind, Previous: prev, Current: amount})
}

// Kinds returns every known kind: built-ins first, then extras sorted by name
func (s *Store) Kinds() []Kind {
	kinds := AllKinds()
	var extra []Kind
	for k := range s.quantities {
		if !k.IsBuiltin() {
			extra = append(extra, k)
		}
	}
	sort.Slice(extra, func(i, j int) bool { return extra[i] < extra[j] })
	return append(kinds, extra...)
}

// Snapshot returns a copy of every known quantity
func (s *Store) Snapshot() map[Kind]int {
	out := make(map[Kind]int, len(s.quantities))
	for _, k := range s.Kinds() {
		out[k] = s.quantities[k]
	}
	return out
}

// Subscribe registers fn for every change. The returned func removes it.
func (s *Store) Subscribe(fn func(Change)) func() {
	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = fn
	return func() {
		delete(s.subscribers, id)
	}
}

func (s *Store) emit(c Change) {
	ids := make([]int, 0, len(s.subscribers))
	for id := range s.subscribers {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		if fn, ok := s.subscribers[id]; ok {
			fn(c)
		}
	}
}
