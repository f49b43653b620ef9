// Package primitive contains some primitives and helper functions.
package primitive

import "cmp"

// IfTrue returns second argument if the condition is true, otherwise, returns the third one.
// Same as C's ternary condition operator:
//
//	cond ? t : f;
func IfTrue[T any](cond bool, t T, f T) T {
	if cond {
		return t
	}
	return f
}

// Clamp returns v limited to the range [lo, hi].
func Clamp[T cmp.Ordered](v, lo, hi T) T {
	return max(min(v, hi), lo)
}
