// Copyright 2025 MA-ISA Protocol
//
// Multi-Dimensional Integrity State
// Canonical 3-dimension coordinator over independent accumulators
//
// The state is a vector in Z^N_{2^256}. Each dimension evolves independently;
// divergence between two states is computed element-wise using the circular
// distance metric.

package state

import (
	"github.com/maisa-protocol/integrity-accumulator/pkg/accumulator"
	"github.com/maisa-protocol/integrity-accumulator/pkg/distance"
	"github.com/maisa-protocol/integrity-accumulator/pkg/kdf"
)

// DimensionCount is the canonical number of dimensions. The 3-dimension
// configuration is the one whose serialization is standardized.
const DimensionCount = 3

// IntegrityState holds the canonical fixed set of dimensions plus the format
// version it was created under. Dimensions are owned exclusively by the
// state and mutated only through the accessor.
type IntegrityState struct {
	dimensions [DimensionCount]*accumulator.DimensionAccumulator
	version    Version
}

// deriveDimensionSeed derives the seed for dimension i from a master seed:
// seed_i = DeriveKey("isa.dim" || id(i), master).
func deriveDimensionSeed(master *accumulator.State256, index uint64) accumulator.State256 {
	label := DimensionIDFromIndex(index).KDFLabel()
	return kdf.DeriveKey(label[:], master[:])
}

// FromMasterSeed derives each dimension's seed from a single master seed.
// Seeds for distinct indices are pairwise distinct with overwhelming
// probability.
func FromMasterSeed(master accumulator.State256) *IntegrityState {
	s := &IntegrityState{version: CurrentVersion()}
	for i := range s.dimensions {
		seed := deriveDimensionSeed(&master, uint64(i))
		s.dimensions[i] = accumulator.New(seed)
	}
	return s
}

// NewFromSeeds uses the given seeds directly, without derivation.
func NewFromSeeds(seeds [DimensionCount]accumulator.State256) *IntegrityState {
	s := &IntegrityState{version: CurrentVersion()}
	for i, seed := range seeds {
		s.dimensions[i] = accumulator.New(seed)
	}
	return s
}

// fromDimensions assembles a state from restored accumulators. Used by the
// codec only.
func fromDimensions(dims [DimensionCount]*accumulator.DimensionAccumulator, version Version) *IntegrityState {
	return &IntegrityState{dimensions: dims, version: version}
}

// Dimension returns the accumulator at the given index.
func (s *IntegrityState) Dimension(index int) (*accumulator.DimensionAccumulator, error) {
	if index < 0 || index >= DimensionCount {
		return nil, ErrDimensionNotFound
	}
	return s.dimensions[index], nil
}

// Version returns the format version this state was created under.
func (s *IntegrityState) Version() Version {
	return s.version
}

// StateVector snapshots all dimension states.
func (s *IntegrityState) StateVector() DimensionVector {
	var v DimensionVector
	for i, dim := range s.dimensions {
		v.Values[i] = dim.State()
	}
	return v
}

// Divergence computes the element-wise minimum-arc circular distance between
// this state and another. The result is symmetric; for the directional form
// used to derive convergence constants, see the device runtime.
func (s *IntegrityState) Divergence(other *IntegrityState) DivergenceVector {
	var d DivergenceVector
	for i := range s.dimensions {
		a := s.dimensions[i].State()
		b := other.dimensions[i].State()
		d.Values[i] = distance.MinDistance(&a, &b)
	}
	return d
}

// ReplaceDimension swaps in a restored accumulator at the given index.
// Used by persistence and recovery only; normal evolution goes through
// Accumulate on the dimension itself.
func (s *IntegrityState) ReplaceDimension(index int, dim *accumulator.DimensionAccumulator) error {
	if index < 0 || index >= DimensionCount {
		return ErrDimensionNotFound
	}
	s.dimensions[index] = dim
	return nil
}

// Zeroize clears every dimension's state bytes.
func (s *IntegrityState) Zeroize() {
	for _, dim := range s.dimensions {
		dim.Zeroize()
	}
}
