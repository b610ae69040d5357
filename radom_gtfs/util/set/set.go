// SPDX-FileCopyrightText: 2026 Mikołaj Kuranowski
// SPDX-License-Identifier: MIT

package set

import (
	"cmp"
	"iter"
	"maps"
	"slices"
)

type Set[T comparable] map[T]struct{}

func Of[T comparable](elements ...T) Set[T] {
	s := make(Set[T], len(elements))
	for _, e := range elements {
		s.Add(e)
	}
	return s
}

func (s Set[T]) Add(e T) {
	s[e] = struct{}{}
}

func (s Set[T]) AddAll(other Set[T]) {
	for e := range other {
		s.Add(e)
	}
}

func (s Set[T]) Has(e T) bool {
	_, ok := s[e]
	return ok
}

func (s Set[T]) Len() int {
	return len(s)
}

func (s Set[T]) All() iter.Seq[T] {
	return maps.Keys(s)
}

// Sorted returns all elements of an ordered set in ascending order.
func Sorted[T cmp.Ordered](s Set[T]) []T {
	return slices.Sorted(maps.Keys(s))
}
