// Copyright 2025 MA-ISA Protocol
//
// Canonical State Serialization
// Versioned byte encoding for the standardized 3-dimension state
//
// Wire layout (132 bytes total, all integers little-endian):
//
//	envelope version  6 bytes
//	dimension 0       32-byte state || 8-byte counter
//	dimension 1       32-byte state || 8-byte counter
//	dimension 2       32-byte state || 8-byte counter
//	state version     6 bytes
//
// The envelope version is checked before any payload byte is interpreted;
// a major mismatch is rejected without inspecting the rest of the blob.

package state

import (
	"encoding/binary"

	"github.com/maisa-protocol/integrity-accumulator/pkg/accumulator"
)

const (
	dimensionEncodedSize = accumulator.StateSize + 8
	// EncodedSize is the exact length of a serialized IntegrityState.
	EncodedSize = VersionSize + DimensionCount*dimensionEncodedSize + VersionSize
)

// Serialize encodes the state in the canonical versioned form.
func (s *IntegrityState) Serialize() []byte {
	buf := make([]byte, 0, EncodedSize)

	envelope := CurrentVersion().Bytes()
	buf = append(buf, envelope[:]...)

	for _, dim := range s.dimensions {
		st := dim.State()
		buf = append(buf, st[:]...)
		buf = binary.LittleEndian.AppendUint64(buf, dim.Counter())
	}

	inner := s.version.Bytes()
	buf = append(buf, inner[:]...)
	return buf
}

// Deserialize reconstructs a state from its canonical byte form. Blobs from
// a different major version are rejected with IncompatibleVersionError;
// anything malformed fails with ErrDeserializationFailed.
func Deserialize(data []byte) (*IntegrityState, error) {
	if len(data) < VersionSize {
		return nil, ErrDeserializationFailed
	}

	var versionBytes [VersionSize]byte
	copy(versionBytes[:], data[:VersionSize])
	found := VersionFromBytes(versionBytes)

	if !found.IsCompatible(CurrentVersion()) {
		return nil, &IncompatibleVersionError{Found: found, Expected: CurrentVersion()}
	}

	if len(data) != EncodedSize {
		return nil, ErrDeserializationFailed
	}

	var dims [DimensionCount]*accumulator.DimensionAccumulator
	offset := VersionSize
	for i := 0; i < DimensionCount; i++ {
		var st accumulator.State256
		copy(st[:], data[offset:offset+accumulator.StateSize])
		counter := binary.LittleEndian.Uint64(data[offset+accumulator.StateSize : offset+dimensionEncodedSize])
		dims[i] = accumulator.FromState(st, counter)
		offset += dimensionEncodedSize
	}

	copy(versionBytes[:], data[offset:offset+VersionSize])
	inner := VersionFromBytes(versionBytes)

	return fromDimensions(dims, inner), nil
}
