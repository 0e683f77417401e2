// Copyright 2025 MA-ISA Protocol
//
// Opaque Dimension Identifiers
// KDF domain-separation labels for per-dimension seed derivation

package state

import "encoding/binary"

// DimensionIDSize is the size of a dimension identifier in bytes.
const DimensionIDSize = 16

// kdfLabelPrefix is the fixed prefix of every per-dimension KDF label. The
// 23-byte concatenation prefix || id is normative; changing it changes every
// derived seed.
const kdfLabelPrefix = "isa.dim"

// DimensionID is an opaque 16-byte identifier for a dimension. It carries no
// domain meaning at this layer.
type DimensionID [DimensionIDSize]byte

// DimensionIDFromIndex builds an identifier from a numeric dimension index:
// the index as a little-endian u64 in the first 8 bytes, zeros after.
func DimensionIDFromIndex(index uint64) DimensionID {
	var id DimensionID
	binary.LittleEndian.PutUint64(id[:8], index)
	return id
}

// DimensionIDFromBytes wraps raw bytes as an identifier.
func DimensionIDFromBytes(bytes [DimensionIDSize]byte) DimensionID {
	return DimensionID(bytes)
}

// Bytes returns the raw identifier bytes.
func (d DimensionID) Bytes() [DimensionIDSize]byte {
	return [DimensionIDSize]byte(d)
}

// KDFLabel returns the 23-byte label "isa.dim" || id used as the KDF context
// when deriving this dimension's seed from a master seed.
func (d DimensionID) KDFLabel() [23]byte {
	var label [23]byte
	copy(label[:7], kdfLabelPrefix)
	copy(label[7:], d[:])
	return label
}
