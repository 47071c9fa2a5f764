// Package types holds small generic containers shared across packages.
package types

import (
	"iter"
	"maps"
	"slices"
)

// Set is an unordered collection of distinct values. The zero value is not
// usable; create sets with NewSet. A Set is not safe for concurrent use.
type Set[T comparable] map[T]struct{}

// NewSet returns a set holding values.
func NewSet[T comparable](values ...T) Set[T] {
	s := make(Set[T], len(values))
	s.Add(values...)
	return s
}

// Add inserts values, ignoring those already present.
func (s Set[T]) Add(values ...T) {
	for _, v := range values {
		s[v] = struct{}{}
	}
}

// Delete removes values. Missing values are ignored.
func (s Set[T]) Delete(values ...T) {
	for _, v := range values {
		delete(s, v)
	}
}

// Contains reports whether v is in the set.
func (s Set[T]) Contains(v T) bool {
	_, ok := s[v]
	return ok
}

// Len returns the number of values.
func (s Set[T]) Len() int {
	return len(s)
}

// All iterates over the values in no particular order.
func (s Set[T]) All() iter.Seq[T] {
	return maps.Keys(s)
}

// ToSlice returns the values in no particular order.
func (s Set[T]) ToSlice() []T {
	return slices.Collect(s.All())
}
