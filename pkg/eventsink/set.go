package eventsink

import "reflect"

// orderedSet is a set of comparable values that iterates in insertion order.
// It is not safe for concurrent use; Sink guards it with its own lock.
type orderedSet[K comparable] struct {
	index map[K]int
	items []K
}

func newOrderedSet[K comparable]() *orderedSet[K] {
	return &orderedSet[K]{index: make(map[K]int)}
}

// hashable reports whether k can be used as a map key without panicking.
// Interface values holding funcs, maps or slices cannot.
func hashable[K comparable](k K) bool {
	return reflect.ValueOf(k).Comparable()
}

// add inserts k and reports whether it was absent. Unhashable values are
// never members.
func (s *orderedSet[K]) add(k K) bool {
	if !hashable(k) {
		return false
	}
	if _, ok := s.index[k]; ok {
		return false
	}
	s.index[k] = len(s.items)
	s.items = append(s.items, k)
	return true
}

// remove deletes k and reports whether it was present.
func (s *orderedSet[K]) remove(k K) bool {
	if !hashable(k) {
		return false
	}
	i, ok := s.index[k]
	if !ok {
		return false
	}
	delete(s.index, k)

	// Items are never shared with a snapshot, so shifting in place is safe.
	copy(s.items[i:], s.items[i+1:])
	var zero K
	s.items[len(s.items)-1] = zero
	s.items = s.items[:len(s.items)-1]
	for j := i; j < len(s.items); j++ {
		s.index[s.items[j]] = j
	}
	return true
}

func (s *orderedSet[K]) has(k K) bool {
	if !hashable(k) {
		return false
	}
	_, ok := s.index[k]
	return ok
}

func (s *orderedSet[K]) len() int {
	return len(s.items)
}

// snapshot returns a copy of the members in insertion order.
func (s *orderedSet[K]) snapshot() []K {
	out := make([]K, len(s.items))
	copy(out, s.items)
	return out
}
