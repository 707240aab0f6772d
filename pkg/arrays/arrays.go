// Package arrays holds small slice helpers that avoid map-based sets.
package arrays

import (
	"cmp"
	"slices"
)

// Unique returns the distinct elements of xs in ascending order.
// xs is left untouched.
func Unique[T cmp.Ordered](xs []T) []T {
	out := slices.Clone(xs)
	if len(out) == 0 {
		return out
	}
	slices.Sort(out)

	j := 0
	for i := 1; i < len(out); i++ {
		if out[i] != out[j] {
			j++
			out[j] = out[i]
		}
	}
	return out[:j+1]
}

// Common returns the elements of a that also occur in b, in a's order,
// each reported once.
func Common[T comparable](a, b []T) []T {
	out := make([]T, 0)
	for _, x := range a {
		if contains(b, x) && !contains(out, x) {
			out = append(out, x)
		}
	}
	return out
}

func contains[T comparable](xs []T, x T) bool {
	for _, y := range xs {
		if y == x {
			return true
		}
	}
	return false
}
