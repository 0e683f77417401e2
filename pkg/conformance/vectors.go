// Copyright 2025 MA-ISA Protocol
//
// Canonical Test Vectors
// Frozen reference outputs for cross-implementation conformance
//
// Rules:
// - No randomness: fixed seeds, events, entropy, and time deltas
// - Expected values are frozen and treated as canonical
// - Never regenerate unless the math intentionally changes

package conformance

import "encoding/hex"

// AccumulationVector is one frozen single-accumulation case: starting from
// Seed, accumulating (Event, Entropy, DeltaT) must yield exactly Expected.
type AccumulationVector struct {
	Name     string
	Seed     byte // seed is the byte repeated 32 times
	Event    string
	Entropy  string
	DeltaT   uint64
	Expected string // hex of the 32-byte little-endian state
}

// AccumulationVectors are the frozen single-step cases.
var AccumulationVectors = []AccumulationVector{
	{
		Name:     "V001 basic accumulation",
		Seed:     0x00,
		Event:    "sale:1000",
		Entropy:  "device:pos_dakar_01",
		DeltaT:   1,
		Expected: "68c9a8830584b71046044df26986f3d531f4b71e274b37ef0c2cc83cf0e75b8b",
	},
	{
		Name:     "V007 cross-platform determinism",
		Seed:     0x42,
		Event:    "cross_platform_test",
		Entropy:  "fixed_entropy_source",
		DeltaT:   12345,
		Expected: "88f78a1be16d288f74d9470df247de5f45bdc6bafd587062d0404625a43c0d23",
	},
	{
		Name:     "V009 empty inputs",
		Seed:     0x00,
		Event:    "",
		Entropy:  "",
		DeltaT:   0,
		Expected: "4cf05c8006ef81a3c7e27920dd5a8e103fc47941c32616d2278ca2f00dfde1ed",
	},
	{
		Name:     "V010 large delta_t",
		Seed:     0x00,
		Event:    "event",
		Entropy:  "entropy",
		DeltaT:   ^uint64(0),
		Expected: "728cb5cbcfd0f9ad35722ef822f89f8928be9c4f95a96e46efb170e3eb6d8895",
	},
}

// SequentialStep is one accumulation in a multi-step vector.
type SequentialStep struct {
	Event    string
	Entropy  string
	DeltaT   uint64
	Expected string
}

// SequentialVector is the frozen two-step case V002: both intermediate
// states are canonical.
var SequentialVector = struct {
	Seed  byte
	Steps [2]SequentialStep
}{
	Seed: 0x00,
	Steps: [2]SequentialStep{
		{
			Event:    "event1",
			Entropy:  "entropy1",
			DeltaT:   100,
			Expected: "7b8da26af96e3364d905e49ac38255d43e1d95665886e2fcf72839c7c6fca35b",
		},
		{
			Event:    "event2",
			Entropy:  "entropy2",
			DeltaT:   200,
			Expected: "e552703cc9872d124140448e99aa0e729f4dad97176cbd174af3637e1b5f8cc1",
		},
	},
}

// MasterSeedVector is the frozen multi-dimension derivation case V003: the
// master seed 0x01 repeated, expanded into the canonical three dimensions.
var MasterSeedVector = struct {
	MasterSeed byte
	Expected   [3]string
}{
	MasterSeed: 0x01,
	Expected: [3]string{
		"2b75ef28cae31928ad9065b57879250805675e2b6b8cf8b6ae1d64abfaa4d3d0",
		"14f05879f27ddd321c76f0ba8a386c292855dcbeb23c3bdb271c4211f0a680f5",
		"d79988a165445131fcfb1d0cf1b7481c28bf96441e019d40ec38f872223dbe88",
	},
}

// MustDecodeState parses a 64-character hex vector into state bytes. Panics
// on malformed input: the vector table is compile-time constant.
func MustDecodeState(s string) [32]byte {
	b, err := hex.DecodeString(s)
	if err != nil || len(b) != 32 {
		panic("malformed canonical vector: " + s)
	}
	var out [32]byte
	copy(out[:], b)
	return out
}

// RepeatByte expands a vector's one-byte seed notation to a full state.
func RepeatByte(b byte) [32]byte {
	var out [32]byte
	for i := range out {
		out[i] = b
	}
	return out
}
