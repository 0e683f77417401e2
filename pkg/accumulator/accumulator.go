// Copyright 2025 MA-ISA Protocol
//
// Dimension Accumulator
// Irreversible 256-bit state that evolves with each recorded event
//
// Normative requirements:
// - All state transitions are deterministic
// - No randomness, time, or IO inside this package
// - Counter increments are wrapping (no overflow panics)

package accumulator

import (
	"crypto/subtle"
	"fmt"

	"github.com/maisa-protocol/integrity-accumulator/pkg/kdf"
)

// StateSize is the size of an accumulator state in bytes.
const StateSize = 32

// State256 is a 256-bit accumulator state. Arithmetic over states interprets
// the bytes as a little-endian unsigned integer.
type State256 = [StateSize]byte

// DimensionAccumulator maintains an irreversible cryptographic state for a
// single integrity dimension. The state evolves with each event; prior states
// are not recoverable from the current one.
type DimensionAccumulator struct {
	state   State256
	counter uint64
}

// New creates an accumulator seeded with the given state and counter zero.
func New(seed State256) *DimensionAccumulator {
	return &DimensionAccumulator{state: seed}
}

// FromState restores an accumulator from a previously observed state and
// counter without rehashing. Used by persistence and recovery only.
func FromState(state State256, counter uint64) *DimensionAccumulator {
	return &DimensionAccumulator{state: state, counter: counter}
}

// Accumulate mixes an event, an entropy sample, and an elapsed-time value
// into the state and advances the counter. Event and entropy may be empty;
// empty inputs still change the state deterministically.
func (a *DimensionAccumulator) Accumulate(event, entropy []byte, deltaT uint64) {
	a.state = kdf.MixState(&a.state, event, entropy, deltaT)
	a.counter++ // uint64 addition wraps at 2^64
}

// State returns a copy of the current state.
func (a *DimensionAccumulator) State() State256 {
	return a.state
}

// Counter returns the number of accumulated events modulo 2^64.
func (a *DimensionAccumulator) Counter() uint64 {
	return a.counter
}

// Equal compares two accumulators. The state comparison is constant-time so
// trusted-state comparisons do not leak through timing.
func (a *DimensionAccumulator) Equal(other *DimensionAccumulator) bool {
	if other == nil {
		return false
	}
	return subtle.ConstantTimeCompare(a.state[:], other.state[:]) == 1 &&
		a.counter == other.counter
}

// Zeroize clears the state bytes. Callers that drop an accumulator holding
// sensitive material should call this first; the counter is not sensitive.
func (a *DimensionAccumulator) Zeroize() {
	for i := range a.state {
		a.state[i] = 0
	}
}

// String redacts the state.
func (a *DimensionAccumulator) String() string {
	return fmt.Sprintf("DimensionAccumulator{state: [REDACTED], counter: %d}", a.counter)
}
