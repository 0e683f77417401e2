// Copyright 2025 MA-ISA Protocol
//
// State Format Versioning

package state

import "encoding/binary"

// Library version. The major field gates serialized-state compatibility.
const (
	VersionMajor uint16 = 0
	VersionMinor uint16 = 1
	VersionPatch uint16 = 0
)

// VersionSize is the encoded size of a Version in bytes.
const VersionSize = 6

// Version identifies the state format that produced a serialized blob.
type Version struct {
	Major uint16
	Minor uint16
	Patch uint16
}

// CurrentVersion returns the version of this library.
func CurrentVersion() Version {
	return Version{Major: VersionMajor, Minor: VersionMinor, Patch: VersionPatch}
}

// IsCompatible reports whether two versions can read each other's blobs.
// Compatibility is defined by the major field alone.
func (v Version) IsCompatible(other Version) bool {
	return v.Major == other.Major
}

// Bytes encodes the version as three little-endian u16 fields.
func (v Version) Bytes() [VersionSize]byte {
	var b [VersionSize]byte
	binary.LittleEndian.PutUint16(b[0:2], v.Major)
	binary.LittleEndian.PutUint16(b[2:4], v.Minor)
	binary.LittleEndian.PutUint16(b[4:6], v.Patch)
	return b
}

// VersionFromBytes decodes a version from its 6-byte form.
func VersionFromBytes(b [VersionSize]byte) Version {
	return Version{
		Major: binary.LittleEndian.Uint16(b[0:2]),
		Minor: binary.LittleEndian.Uint16(b[2:4]),
		Patch: binary.LittleEndian.Uint16(b[4:6]),
	}
}
