package domain

import (
	"fmt"
	"sort"
)

// Sequence is an ordered list of record ids (bucket order, card order).
// A valid sequence has no empty ids and no duplicates.
type Sequence []string

// Contains reports whether id is in the sequence.
func (s Sequence) Contains(id string) bool {
	return s.IndexOf(id) >= 0
}

// IndexOf returns the position of id, or -1.
func (s Sequence) IndexOf(id string) int {
	for i, v := range s {
		if v == id {
			return i
		}
	}
	return -1
}

// Validate checks for empty and duplicate ids.
func (s Sequence) Validate() error {
	seen := make(map[string]struct{}, len(s))
	for i, id := range s {
		if id == "" {
			return fmt.Errorf("%w: empty id at position %d", ErrInvalidOrder, i)
		}
		if _, dup := seen[id]; dup {
			return fmt.Errorf("%w: duplicate id %q", ErrInvalidOrder, id)
		}
		seen[id] = struct{}{}
	}
	return nil
}

// Insert returns a copy with id placed at pos (clamped to the ends).
func (s Sequence) Insert(id string, pos int) (Sequence, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: empty id", ErrInvalidOrder)
	}
	if s.Contains(id) {
		return nil, fmt.Errorf("%w: id %q already present", ErrInvalidOrder, id)
	}
	if pos < 0 {
		pos = 0
	}
	if pos > len(s) {
		pos = len(s)
	}
	out := make(Sequence, 0, len(s)+1)
	out = append(out, s[:pos]...)
	out = append(out, id)
	out = append(out, s[pos:]...)
	return out, nil
}

// Append returns a copy with id at the tail.
func (s Sequence) Append(id string) (Sequence, error) {
	return s.Insert(id, len(s))
}

// PermutationOf checks that s holds exactly the ids of want, each once, in any order.
func (s Sequence) PermutationOf(want Sequence) error {
	if err := s.Validate(); err != nil {
		return err
	}
	if len(s) != len(want) {
		return fmt.Errorf("%w: expected %d ids, got %d", ErrInvalidOrder, len(want), len(s))
	}
	wantSet := make(map[string]struct{}, len(want))
	for _, id := range want {
		wantSet[id] = struct{}{}
	}
	for _, id := range s {
		if _, ok := wantSet[id]; !ok {
			return fmt.Errorf("%w: unknown id %q", ErrInvalidOrder, id)
		}
	}
	return nil
}

// Clone returns an independent copy; nil stays nil.
func (s Sequence) Clone() Sequence {
	if s == nil {
		return nil
	}
	out := make(Sequence, len(s))
	copy(out, s)
	return out
}

// Sorted returns a sorted copy. Used to take row locks in a stable order.
func (s Sequence) Sorted() Sequence {
	out := s.Clone()
	sort.Strings(out)
	return out
}
