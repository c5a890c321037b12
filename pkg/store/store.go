// Package store provides a generic keyed collection that remembers insertion
// order. It backs every directory and ledger in the clinic engine.
package store

import "errors"

// ErrDuplicateKey is returned by Add when the key is already present.
var ErrDuplicateKey = errors.New("duplicate key")

// Store maps string keys to entities and iterates them in insertion order.
// The map and the order slice always hold the same keys.
//
// A Store is not safe for concurrent mutation; callers serialize access.
type Store[T any] struct {
	items map[string]T
	order []string
}

// New returns an empty store.
func New[T any]() *Store[T] {
	return &Store[T]{items: make(map[string]T)}
}

// Add inserts entity under key. An existing key is rejected with
// ErrDuplicateKey and the store is left untouched.
func (s *Store[T]) Add(key string, entity T) error {
	if _, ok := s.items[key]; ok {
		return ErrDuplicateKey
	}
	s.items[key] = entity
	s.order = append(s.order, key)
	return nil
}

// Get returns the entity stored under key.
func (s *Store[T]) Get(key string) (T, bool) {
	v, ok := s.items[key]
	return v, ok
}

// Exists reports whether key is present.
func (s *Store[T]) Exists(key string) bool {
	_, ok := s.items[key]
	return ok
}

// At returns the entity at position i in insertion order.
func (s *Store[T]) At(i int) (T, bool) {
	if i < 0 || i >= len(s.order) {
		var zero T
		return zero, false
	}
	return s.items[s.order[i]], true
}

// All returns every entity in insertion order. The returned slice is a copy.
func (s *Store[T]) All() []T {
	out := make([]T, 0, len(s.order))
	for _, k := range s.order {
		out = append(out, s.items[k])
	}
	return out
}

// Search returns the entities matching pred, in insertion order.
func (s *Store[T]) Search(pred func(T) bool) []T {
	out := []T{}
	for _, k := range s.order {
		if v := s.items[k]; pred(v) {
			out = append(out, v)
		}
	}
	return out
}

// Update replaces the entity under key, keeping its position. It reports
// false and does nothing when key is absent.
func (s *Store[T]) Update(key string, entity T) bool {
	if _, ok := s.items[key]; !ok {
		return false
	}
	s.items[key] = entity
	return true
}

// Delete removes key and reports whether it was present.
func (s *Store[T]) Delete(key string) bool {
	if _, ok := s.items[key]; !ok {
		return false
	}
	delete(s.items, key)
	for i, k := range s.order {
		if k == key {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

// Len returns the number of stored entities.
func (s *Store[T]) Len() int {
	return len(s.items)
}

// Clear removes every entity.
func (s *Store[T]) Clear() {
	s.items = make(map[string]T)
	s.order = nil
}
