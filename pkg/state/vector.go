// Copyright 2025 MA-ISA Protocol
//
// Dimension and Divergence Vectors

package state

import (
	"encoding/json"

	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/maisa-protocol/integrity-accumulator/pkg/accumulator"
)

// DimensionVector is a snapshot of all dimension states.
type DimensionVector struct {
	Values [DimensionCount]accumulator.State256
}

// Get returns the state for a dimension index.
func (v *DimensionVector) Get(index int) (accumulator.State256, error) {
	if index < 0 || index >= DimensionCount {
		return accumulator.State256{}, ErrDimensionNotFound
	}
	return v.Values[index], nil
}

// Equal reports whether two vectors hold identical bytes.
func (v *DimensionVector) Equal(other *DimensionVector) bool {
	return v.Values == other.Values
}

// MarshalJSON renders the vector as hex strings, one per dimension.
func (v DimensionVector) MarshalJSON() ([]byte, error) {
	out := make([]string, DimensionCount)
	for i := range v.Values {
		out[i] = hexutil.Encode(v.Values[i][:])
	}
	return json.Marshal(out)
}

// UnmarshalJSON parses the hex form produced by MarshalJSON.
func (v *DimensionVector) UnmarshalJSON(data []byte) error {
	var raw []string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw) != DimensionCount {
		return ErrDimensionCountMismatch
	}
	for i, s := range raw {
		b, err := hexutil.Decode(s)
		if err != nil {
			return err
		}
		if len(b) != accumulator.StateSize {
			return ErrDeserializationFailed
		}
		copy(v.Values[i][:], b)
	}
	return nil
}

// DivergenceVector holds one circular distance per dimension.
type DivergenceVector struct {
	Values [DimensionCount]accumulator.State256
}

// Get returns the divergence for a dimension index.
func (v *DivergenceVector) Get(index int) (accumulator.State256, error) {
	if index < 0 || index >= DimensionCount {
		return accumulator.State256{}, ErrDimensionNotFound
	}
	return v.Values[index], nil
}

// IsZero reports whether every dimension's divergence is zero.
func (v *DivergenceVector) IsZero() bool {
	return v.Values == [DimensionCount]accumulator.State256{}
}
