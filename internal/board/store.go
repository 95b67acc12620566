package board

import (
	"strings"
	"sync/atomic"
)

// Store holds the latest snapshot per league. Slots are created up front so
// the map itself is read-only; each slot is swapped atomically and the last
// Put wins.
type Store struct {
	order []string
	slots map[string]*atomic.Pointer[Snapshot]
}

// NewStore creates one empty slot per league key.
func NewStore(keys []string) *Store {
	s := &Store{slots: make(map[string]*atomic.Pointer[Snapshot], len(keys))}
	for _, k := range keys {
		k = strings.ToLower(k)
		if _, dup := s.slots[k]; dup {
			continue
		}
		s.order = append(s.order, k)
		s.slots[k] = &atomic.Pointer[Snapshot]{}
	}
	return s
}

// Put publishes snap. It reports false when the league has no slot.
func (s *Store) Put(snap Snapshot) bool {
	slot, ok := s.slots[strings.ToLower(snap.League)]
	if !ok {
		return false
	}
	slot.Store(&snap)
	return true
}

// Get returns the latest snapshot for key, if one was published.
func (s *Store) Get(key string) (*Snapshot, bool) {
	slot, ok := s.slots[strings.ToLower(key)]
	if !ok {
		return nil, false
	}
	snap := slot.Load()
	return snap, snap != nil
}

// Has reports whether key has a slot.
func (s *Store) Has(key string) bool {
	_, ok := s.slots[strings.ToLower(key)]
	return ok
}

// Latest returns every published snapshot in slot order.
func (s *Store) Latest() []*Snapshot {
	out := make([]*Snapshot, 0, len(s.order))
	for _, k := range s.order {
		if snap := s.slots[k].Load(); snap != nil {
			out = append(out, snap)
		}
	}
	return out
}
