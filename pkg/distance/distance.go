// Copyright 2025 MA-ISA Protocol
//
// Circular Distance over Z_2^256
// Modular subtraction, ordering, and minimum-arc distance between states
//
// Invariants:
// - Integer-only arithmetic, no floating point
// - Wraparound is handled by explicit borrow/carry propagation
// - Identical bytes on every platform for identical inputs

package distance

import (
	"github.com/maisa-protocol/integrity-accumulator/pkg/accumulator"
)

// Ordering is the result of comparing two 256-bit values.
type Ordering int

const (
	Less Ordering = iota - 1
	Equal
	Greater
)

// Compute returns (a - b) mod 2^256 over the little-endian byte
// representation, propagating borrows from the least significant byte up.
func Compute(a, b *accumulator.State256) accumulator.State256 {
	var result accumulator.State256
	borrow := uint16(0)

	for i := 0; i < accumulator.StateSize; i++ {
		diff := uint16(a[i]) - uint16(b[i]) - borrow
		result[i] = byte(diff)
		// high bits set iff the subtraction wrapped below zero
		borrow = (diff >> 8) & 1
	}

	return result
}

// Add returns (a + b) mod 2^256 with full carry propagation. This is the
// application half of the restoration law: for any states S and T,
// Add(S, Compute(T, S)) == T.
func Add(a, b *accumulator.State256) accumulator.State256 {
	var result accumulator.State256
	carry := uint16(0)

	for i := 0; i < accumulator.StateSize; i++ {
		sum := uint16(a[i]) + uint16(b[i]) + carry
		result[i] = byte(sum)
		carry = sum >> 8
	}

	return result
}

// Compare orders a and b as 256-bit unsigned integers. The most significant
// byte is the last index of the little-endian storage.
func Compare(a, b *accumulator.State256) Ordering {
	for i := accumulator.StateSize - 1; i >= 0; i-- {
		switch {
		case a[i] > b[i]:
			return Greater
		case a[i] < b[i]:
			return Less
		}
	}
	return Equal
}

// MinDistance returns the shorter arc between a and b on the modular circle:
// whichever of Compute(b, a) and Compute(a, b) is numerically smaller. An
// exact tie (both arcs equal 2^255) resolves to the forward direction.
func MinDistance(a, b *accumulator.State256) accumulator.State256 {
	forward := Compute(b, a)
	backward := Compute(a, b)

	if Compare(&forward, &backward) == Greater {
		return backward
	}
	return forward
}
