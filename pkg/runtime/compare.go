// Copyright 2025 MA-ISA Protocol
//
// State Comparison Helpers
// Library surface behind the operator-facing verify/show/compare commands

package runtime

import (
	"encoding/hex"
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/maisa-protocol/integrity-accumulator/pkg/accumulator"
	"github.com/maisa-protocol/integrity-accumulator/pkg/distance"
	"github.com/maisa-protocol/integrity-accumulator/pkg/state"
)

// MasterSeedHexLen is the required length of a master seed hex string.
const MasterSeedHexLen = 2 * accumulator.StateSize

// ParseMasterSeed decodes a 32-byte master seed from exactly 64 lowercase
// hex characters, no 0x prefix.
func ParseMasterSeed(s string) (accumulator.State256, error) {
	var seed accumulator.State256
	if len(s) != MasterSeedHexLen {
		return seed, fmt.Errorf("master seed must be %d hex characters, got %d", MasterSeedHexLen, len(s))
	}
	for _, c := range s {
		if c >= 'A' && c <= 'F' {
			return seed, fmt.Errorf("master seed must be lowercase hex")
		}
	}
	decoded, err := hex.DecodeString(s)
	if err != nil {
		return seed, fmt.Errorf("invalid master seed hex: %w", err)
	}
	copy(seed[:], decoded)
	return seed, nil
}

// DimensionComparison reports the directional distance between two persisted
// states on one dimension, plus a coarse magnitude heuristic.
type DimensionComparison struct {
	Distance  hexutil.Bytes `json:"distance"`
	Magnitude uint64        `json:"magnitude"`
}

// StateComparison is the result of comparing two persisted state files.
type StateComparison struct {
	Dimensions     [state.DimensionCount]DimensionComparison `json:"dimensions"`
	TotalMagnitude uint64                                    `json:"total_magnitude"`
}

// Classification is the coarse three-way verdict over a comparison.
type Classification string

const (
	// Identical: zero total magnitude, the states match byte for byte.
	Identical Classification = "identical"
	// Similar: nonzero but small total magnitude.
	Similar Classification = "similar"
	// Diverged: total magnitude at or above the similarity threshold.
	Diverged Classification = "diverged"
)

// similarityThreshold separates "very similar" from "diverged significantly"
// on the total magnitude heuristic.
const similarityThreshold = 1000

// Classification returns the three-way verdict for this comparison.
func (c *StateComparison) Classification() Classification {
	switch {
	case c.TotalMagnitude == 0:
		return Identical
	case c.TotalMagnitude < similarityThreshold:
		return Similar
	default:
		return Diverged
	}
}

// Identical reports whether the compared states carry zero total magnitude.
func (c *StateComparison) Identical() bool {
	return c.TotalMagnitude == 0
}

// magnitude sums the first 8 bytes of a distance as a rough size estimate.
func magnitude(d *accumulator.State256) uint64 {
	var sum uint64
	for _, b := range d[:8] {
		sum += uint64(b)
	}
	return sum
}

// CompareStates computes the per-dimension directional distance between two
// state vectors and the magnitude heuristic over each.
func CompareStates(a, b *state.DimensionVector) StateComparison {
	var out StateComparison
	for i := range a.Values {
		d := distance.Compute(&a.Values[i], &b.Values[i])
		out.Dimensions[i] = DimensionComparison{
			Distance:  append(hexutil.Bytes(nil), d[:]...),
			Magnitude: magnitude(&d),
		}
		out.TotalMagnitude += out.Dimensions[i].Magnitude
	}
	return out
}

// CompareStateFiles loads two persisted states and compares their vectors.
func CompareStateFiles(path1, path2 string) (StateComparison, error) {
	s1, err := NewFilePersistence(path1).Load()
	if err != nil {
		return StateComparison{}, fmt.Errorf("failed to load state from %s: %w", path1, err)
	}
	s2, err := NewFilePersistence(path2).Load()
	if err != nil {
		return StateComparison{}, fmt.Errorf("failed to load state from %s: %w", path2, err)
	}

	v1, v2 := s1.StateVector(), s2.StateVector()
	return CompareStates(&v1, &v2), nil
}
