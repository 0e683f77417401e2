// Copyright 2025 MA-ISA Protocol
//
// Integrity State Tests

package state

import (
	"errors"
	"testing"

	"github.com/maisa-protocol/integrity-accumulator/pkg/accumulator"
)

func masterSeed(b byte) accumulator.State256 {
	var seed accumulator.State256
	for i := range seed {
		seed[i] = b
	}
	return seed
}

func TestFromMasterSeedSeedsDistinct(t *testing.T) {
	s := FromMasterSeed(masterSeed(1))

	var states [DimensionCount]accumulator.State256
	for i := 0; i < DimensionCount; i++ {
		dim, err := s.Dimension(i)
		if err != nil {
			t.Fatalf("dimension %d: %v", i, err)
		}
		if dim.Counter() != 0 {
			t.Errorf("dimension %d counter = %d, want 0", i, dim.Counter())
		}
		states[i] = dim.State()
	}

	for i := 0; i < DimensionCount; i++ {
		for j := i + 1; j < DimensionCount; j++ {
			if states[i] == states[j] {
				t.Errorf("dimensions %d and %d derived identical seeds", i, j)
			}
		}
	}
}

func TestDimensionOutOfRange(t *testing.T) {
	s := FromMasterSeed(masterSeed(1))
	if _, err := s.Dimension(DimensionCount); !errors.Is(err, ErrDimensionNotFound) {
		t.Errorf("err = %v, want ErrDimensionNotFound", err)
	}
	if _, err := s.Dimension(-1); !errors.Is(err, ErrDimensionNotFound) {
		t.Errorf("err = %v, want ErrDimensionNotFound", err)
	}
}

func TestNewFromSeedsUsesSeedsDirectly(t *testing.T) {
	seeds := [DimensionCount]accumulator.State256{masterSeed(1), masterSeed(2), masterSeed(3)}
	s := NewFromSeeds(seeds)

	for i := 0; i < DimensionCount; i++ {
		dim, _ := s.Dimension(i)
		if dim.State() != seeds[i] {
			t.Errorf("dimension %d state != seed", i)
		}
	}
}

func TestStateVectorSnapshot(t *testing.T) {
	s := FromMasterSeed(masterSeed(1))
	v := s.StateVector()

	for i := 0; i < DimensionCount; i++ {
		dim, _ := s.Dimension(i)
		if v.Values[i] != dim.State() {
			t.Errorf("vector[%d] != dimension state", i)
		}
	}
}

func TestDivergenceZeroForIdenticalStates(t *testing.T) {
	s1 := FromMasterSeed(masterSeed(1))
	s2 := FromMasterSeed(masterSeed(1))

	div := s1.Divergence(s2)
	if !div.IsZero() {
		t.Error("identical states must have zero divergence")
	}
}

func TestDivergenceNonzeroForDifferentSeeds(t *testing.T) {
	s1 := FromMasterSeed(masterSeed(1))
	s2 := FromMasterSeed(masterSeed(2))

	div := s1.Divergence(s2)
	for i, v := range div.Values {
		if v == (accumulator.State256{}) {
			t.Errorf("dimension %d divergence is zero for different seeds", i)
		}
	}
}

func TestSerializeRoundTrip(t *testing.T) {
	s1 := FromMasterSeed(masterSeed(1))
	dim, _ := s1.Dimension(0)
	dim.Accumulate([]byte("event"), []byte("entropy"), 42)

	blob := s1.Serialize()
	if len(blob) != EncodedSize {
		t.Fatalf("blob length = %d, want %d", len(blob), EncodedSize)
	}

	s2, err := Deserialize(blob)
	if err != nil {
		t.Fatalf("deserialize: %v", err)
	}

	v1, v2 := s1.StateVector(), s2.StateVector()
	if !v1.Equal(&v2) {
		t.Error("round trip changed the state vector")
	}

	dim2, _ := s2.Dimension(0)
	if dim2.Counter() != 1 {
		t.Errorf("round trip counter = %d, want 1", dim2.Counter())
	}
	if s2.Version() != s1.Version() {
		t.Error("round trip changed the version")
	}
}

func TestDeserializeRejectsMajorMismatch(t *testing.T) {
	blob := FromMasterSeed(masterSeed(1)).Serialize()
	blob[0] = byte(VersionMajor + 1)

	_, err := Deserialize(blob)
	var incompatible *IncompatibleVersionError
	if !errors.As(err, &incompatible) {
		t.Fatalf("err = %v, want IncompatibleVersionError", err)
	}
	if incompatible.Found.Major != VersionMajor+1 {
		t.Errorf("found major = %d, want %d", incompatible.Found.Major, VersionMajor+1)
	}
}

func TestDeserializeRejectsMalformed(t *testing.T) {
	for _, size := range []int{0, 5, 17, EncodedSize - 1, EncodedSize + 1} {
		if _, err := Deserialize(make([]byte, size)); !errors.Is(err, ErrDeserializationFailed) {
			t.Errorf("size %d: err = %v, want ErrDeserializationFailed", size, err)
		}
	}
}

func TestVersionRoundTrip(t *testing.T) {
	v := Version{Major: 1, Minor: 2, Patch: 3}
	if VersionFromBytes(v.Bytes()) != v {
		t.Error("version byte round trip failed")
	}
}

func TestVersionCompatibility(t *testing.T) {
	v1 := Version{Major: 1, Minor: 0, Patch: 0}
	v2 := Version{Major: 1, Minor: 9, Patch: 4}
	v3 := Version{Major: 2, Minor: 0, Patch: 0}

	if !v1.IsCompatible(v2) {
		t.Error("same major must be compatible")
	}
	if v1.IsCompatible(v3) {
		t.Error("different major must be incompatible")
	}
}

func TestDimensionIDLabel(t *testing.T) {
	label := DimensionIDFromIndex(1).KDFLabel()

	want := append([]byte("isa.dim"), 1, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0)
	if len(label) != 23 {
		t.Fatalf("label length = %d, want 23", len(label))
	}
	for i := range want {
		if label[i] != want[i] {
			t.Fatalf("label[%d] = %d, want %d", i, label[i], want[i])
		}
	}
}

func TestDynamicAddRemove(t *testing.T) {
	master := masterSeed(1)
	s := NewDynamic(3, master)
	if s.DimensionCount() != 3 {
		t.Fatalf("count = %d, want 3", s.DimensionCount())
	}

	s.AddDimension(master)
	if s.DimensionCount() != 4 {
		t.Fatalf("count after add = %d, want 4", s.DimensionCount())
	}

	if _, err := s.RemoveDimension(); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if s.DimensionCount() != 3 {
		t.Fatalf("count after remove = %d, want 3", s.DimensionCount())
	}
}

func TestDynamicReAddReproducesSeed(t *testing.T) {
	master := masterSeed(7)
	s := NewDynamic(3, master)

	dim2, _ := s.Dimension(2)
	original := dim2.State()

	if _, err := s.RemoveDimension(); err != nil {
		t.Fatal(err)
	}
	s.AddDimension(master)

	dim2again, _ := s.Dimension(2)
	if dim2again.State() != original {
		t.Error("re-added tail dimension must reproduce the original seed")
	}
}

func TestDynamicMatchesCanonicalDerivation(t *testing.T) {
	master := masterSeed(1)
	dynamic := NewDynamic(DimensionCount, master)
	fixed := FromMasterSeed(master)

	vec := fixed.StateVector()
	for i, st := range dynamic.StateVector() {
		if st != vec.Values[i] {
			t.Errorf("dimension %d: dynamic seed differs from canonical derivation", i)
		}
	}
}

func TestDynamicDivergenceCountMismatch(t *testing.T) {
	s1 := NewDynamic(3, masterSeed(1))
	s2 := NewDynamic(5, masterSeed(1))

	if _, err := s1.Divergence(s2); !errors.Is(err, ErrDimensionCountMismatch) {
		t.Errorf("err = %v, want ErrDimensionCountMismatch", err)
	}
}

func TestDynamicRemoveEmpty(t *testing.T) {
	s := NewDynamic(0, masterSeed(1))
	if _, err := s.RemoveDimension(); !errors.Is(err, ErrNoDimensions) {
		t.Errorf("err = %v, want ErrNoDimensions", err)
	}
}
