// Package rng provides the injectable randomness abstraction for the
// Kope Quest battle engine. All combat variance, critical rolls, and
// NPC decisions draw from a Source so tests can pin outcomes.
package rng

// Source is the randomness provider for combat resolution.
//
// Implementations MUST be safe for concurrent use.
type Source interface {
	// Intn returns a non-negative random int in [0, n).
	//
	// Precondition: n > 0.
	Intn(n int) int
	// Float64 returns a random float64 in [0.0, 1.0).
	Float64() float64
}

// Uniform returns a value uniformly distributed in [lo, hi) drawn from src.
//
// Precondition: src must be non-nil; hi >= lo.
// Postcondition: lo <= result < hi (result == lo when hi == lo).
func Uniform(src Source, lo, hi float64) float64 {
	return lo + src.Float64()*(hi-lo)
}

// Chance reports whether an event with probability p occurred.
//
// Precondition: src must be non-nil.
// Postcondition: Always false for p <= 0; always true for p >= 1.
func Chance(src Source, p float64) bool {
	if p <= 0 {
		return false
	}
	if p >= 1 {
		return true
	}
	return src.Float64() < p
}

// Pick returns a uniformly chosen element of items.
//
// Precondition: src must be non-nil; items must be non-empty.
func Pick[T any](src Source, items []T) T {
	if len(items) == 0 {
		panic("rng: Pick called with empty slice")
	}
	return items[src.Intn(len(items))]
}

// IntBetween returns a uniform int in [lo, hi] inclusive.
//
// Precondition: src must be non-nil; hi >= lo.
func IntBetween(src Source, lo, hi int) int {
	if hi < lo {
		panic("rng: IntBetween called with hi < lo")
	}
	if hi == lo {
		return lo
	}
	return lo + src.Intn(hi-lo+1)
}
