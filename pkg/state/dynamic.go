// Copyright 2025 MA-ISA Protocol
//
// Dynamic Integrity State
// Runtime-configurable dimension count over the same accumulation core
//
// Dimensions may be appended or removed at the tail only: removing from the
// middle would shift indices and break seed reproducibility.

package state

import (
	"github.com/maisa-protocol/integrity-accumulator/pkg/accumulator"
	"github.com/maisa-protocol/integrity-accumulator/pkg/distance"
)

// DynamicIntegrityState stores a growable ordered sequence of dimensions.
type DynamicIntegrityState struct {
	dimensions []*accumulator.DimensionAccumulator
	version    Version
}

// NewDynamic creates a dynamic state with dimensionCount dimensions, each
// seeded from the master seed via the per-index KDF label.
func NewDynamic(dimensionCount int, master accumulator.State256) *DynamicIntegrityState {
	s := &DynamicIntegrityState{
		dimensions: make([]*accumulator.DimensionAccumulator, 0, dimensionCount),
		version:    CurrentVersion(),
	}
	for i := 0; i < dimensionCount; i++ {
		seed := deriveDimensionSeed(&master, uint64(i))
		s.dimensions = append(s.dimensions, accumulator.New(seed))
	}
	return s
}

// DimensionCount returns the current number of dimensions.
func (s *DynamicIntegrityState) DimensionCount() int {
	return len(s.dimensions)
}

// Dimension returns the accumulator at the given index.
func (s *DynamicIntegrityState) Dimension(index int) (*accumulator.DimensionAccumulator, error) {
	if index < 0 || index >= len(s.dimensions) {
		return nil, ErrDimensionNotFound
	}
	return s.dimensions[index], nil
}

// Version returns the format version this state was created under.
func (s *DynamicIntegrityState) Version() Version {
	return s.version
}

// StateVector snapshots all dimension states.
func (s *DynamicIntegrityState) StateVector() []accumulator.State256 {
	out := make([]accumulator.State256, len(s.dimensions))
	for i, dim := range s.dimensions {
		out[i] = dim.State()
	}
	return out
}

// Divergence computes the element-wise minimum-arc distance to another
// dynamic state. States with different dimension counts do not compare.
func (s *DynamicIntegrityState) Divergence(other *DynamicIntegrityState) ([]accumulator.State256, error) {
	if len(s.dimensions) != len(other.dimensions) {
		return nil, ErrDimensionCountMismatch
	}

	out := make([]accumulator.State256, len(s.dimensions))
	for i := range s.dimensions {
		a := s.dimensions[i].State()
		b := other.dimensions[i].State()
		out[i] = distance.MinDistance(&a, &b)
	}
	return out, nil
}

// AddDimension appends a new dimension at index = current count, seeded from
// the master seed exactly as construction would have seeded it.
func (s *DynamicIntegrityState) AddDimension(master accumulator.State256) {
	seed := deriveDimensionSeed(&master, uint64(len(s.dimensions)))
	s.dimensions = append(s.dimensions, accumulator.New(seed))
}

// RemoveDimension pops the tail dimension and returns it.
func (s *DynamicIntegrityState) RemoveDimension() (*accumulator.DimensionAccumulator, error) {
	if len(s.dimensions) == 0 {
		return nil, ErrNoDimensions
	}
	last := s.dimensions[len(s.dimensions)-1]
	s.dimensions = s.dimensions[:len(s.dimensions)-1]
	return last, nil
}

// Zeroize clears every dimension's state bytes.
func (s *DynamicIntegrityState) Zeroize() {
	for _, dim := range s.dimensions {
		dim.Zeroize()
	}
}
