// Copyright 2025 MA-ISA Protocol
//
// Deterministic Key Derivation and State Mixing
// BLAKE3-based KDF with fixed framing for cross-library domain separation
//
// Invariants:
// - All derivations are deterministic
// - Context strings provide intra-library domain separation
// - No randomness, time, or IO inside this package

package kdf

import (
	"encoding/binary"

	"lukechampine.com/blake3"
)

// FramingString is absorbed first in every derivation. It separates MA-ISA
// derivations from any other BLAKE3 use in the same process or protocol.
// Changing it changes every derived value and requires a major version bump.
const FramingString = "MA-ISA-KDF-v1"

// MixContext is the context string for state mixing (vs. seed derivation).
const MixContext = "axis-accumulate"

// Kdf is an incremental derivation in progress. The framing string and
// context are absorbed at construction; inputs are absorbed in order.
type Kdf struct {
	hasher *blake3.Hasher
}

// New starts a derivation for the given context.
func New(context []byte) *Kdf {
	h := blake3.New(32, nil)
	h.Write([]byte(FramingString))
	h.Write(context)
	return &Kdf{hasher: h}
}

// Update absorbs data into the derivation.
func (k *Kdf) Update(data []byte) {
	k.hasher.Write(data)
}

// Finalize reads the 32-byte derived key.
func (k *Kdf) Finalize() [32]byte {
	var out [32]byte
	copy(out[:], k.hasher.Sum(nil))
	return out
}

// DeriveKey derives a 256-bit key from a context string and an ordered list
// of inputs. Cannot fail.
func DeriveKey(context []byte, inputs ...[]byte) [32]byte {
	k := New(context)
	for _, input := range inputs {
		k.Update(input)
	}
	return k.Finalize()
}

// MixState evolves a 256-bit state by mixing in an event, an entropy sample,
// and the elapsed time since the previous event. The delta is absorbed as
// 8 little-endian bytes.
func MixState(state *[32]byte, event, entropy []byte, deltaT uint64) [32]byte {
	var deltaBytes [8]byte
	binary.LittleEndian.PutUint64(deltaBytes[:], deltaT)
	return DeriveKey([]byte(MixContext), state[:], event, entropy, deltaBytes[:])
}
