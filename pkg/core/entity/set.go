package entity

import (
	"maps"
	"slices"
)

// Set is a set of identifiers.
type Set map[ID]struct{}

// NewSet returns a set holding ids.
func NewSet(ids ...ID) Set {
	s := make(Set, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Add inserts id and reports whether it was absent.
func (s Set) Add(id ID) bool {
	if _, ok := s[id]; ok {
		return false
	}
	s[id] = struct{}{}
	return true
}

// Has reports whether id is in the set.
func (s Set) Has(id ID) bool {
	_, ok := s[id]
	return ok
}

// Clone returns a copy of s.
func (s Set) Clone() Set { return maps.Clone(s) }

// Sorted returns the members ordered by [ID.Compare].
func (s Set) Sorted() []ID {
	return slices.SortedFunc(maps.Keys(s), ID.Compare)
}

// Equal reports whether s and other hold the same identifiers.
func (s Set) Equal(other Set) bool {
	if len(s) != len(other) {
		return false
	}
	for id := range s {
		if !other.Has(id) {
			return false
		}
	}
	return true
}
