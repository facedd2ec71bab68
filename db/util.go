package db

import (
	"golang.org/x/exp/constraints"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// All returns true if all entries of `ar` return true from the predicate `pred`
func All[T any, A ~[]T](ar A, pred func(T) bool) bool {
	for _, a := range ar {
		if !pred(a) {
			return false
		}
	}
	return true
}

// SortedKeys returns the keys of m in ascending order, e.g. to visit the
// positions of a Record in a reproducible order.
func SortedKeys[K constraints.Ordered, V any, M ~map[K]V](m M) []K {
	keys := maps.Keys(m)
	slices.Sort(keys)
	return keys
}

// Bounds returns the smallest and largest coordinates of all positions in r.
// ok is false for a record without positions.
func (r *Record) Bounds() (minX, minY, maxX, maxY float64, ok bool) {
	for i, id := range SortedKeys(r.Pos) {
		p := r.Pos[id]
		if i == 0 {
			minX, minY, maxX, maxY = p.X, p.Y, p.X, p.Y
			continue
		}
		minX, maxX = min(minX, p.X), max(maxX, p.X)
		minY, maxY = min(minY, p.Y), max(maxY, p.Y)
	}
	return minX, minY, maxX, maxY, len(r.Pos) > 0
}
