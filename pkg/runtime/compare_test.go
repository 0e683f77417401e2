// Copyright 2025 MA-ISA Protocol

package runtime

import (
	"path/filepath"
	"testing"

	"github.com/maisa-protocol/integrity-accumulator/pkg/state"
)

func TestParseMasterSeed(t *testing.T) {
	hexSeed := "0101010101010101010101010101010101010101010101010101010101010101"
	parsed, err := ParseMasterSeed(hexSeed)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if parsed != seed(1) {
		t.Errorf("parsed = %x", parsed)
	}

	bad := []string{
		"",
		"01",
		"0x0101010101010101010101010101010101010101010101010101010101010101",
		"FF01010101010101010101010101010101010101010101010101010101010101",
		"zz01010101010101010101010101010101010101010101010101010101010101",
	}
	for _, s := range bad {
		if _, err := ParseMasterSeed(s); err == nil {
			t.Errorf("ParseMasterSeed(%q) accepted invalid input", s)
		}
	}
}

func TestCompareStatesIdentical(t *testing.T) {
	v := state.FromMasterSeed(seed(1)).StateVector()

	cmp := CompareStates(&v, &v)
	if !cmp.Identical() {
		t.Errorf("total magnitude = %d, want 0", cmp.TotalMagnitude)
	}
	if cmp.Classification() != Identical {
		t.Errorf("classification = %q, want %q", cmp.Classification(), Identical)
	}
	for i, d := range cmp.Dimensions {
		if d.Magnitude != 0 {
			t.Errorf("dimension %d magnitude = %d, want 0", i, d.Magnitude)
		}
	}
}

func TestCompareStatesClassification(t *testing.T) {
	var base state.DimensionVector

	// a small offset in one dimension lands in the similar band
	similar := base
	similar.Values[0][0] = 5

	cmp := CompareStates(&similar, &base)
	if cmp.TotalMagnitude != 5 {
		t.Fatalf("total magnitude = %d, want 5", cmp.TotalMagnitude)
	}
	if cmp.Identical() {
		t.Error("nonzero magnitude must not be identical")
	}
	if cmp.Classification() != Similar {
		t.Errorf("classification = %q, want %q", cmp.Classification(), Similar)
	}

	// large low-byte offsets push the total past the threshold
	diverged := base
	for i := 0; i < 8; i++ {
		diverged.Values[0][i] = 200
	}

	cmp = CompareStates(&diverged, &base)
	if cmp.TotalMagnitude < 1000 {
		t.Fatalf("total magnitude = %d, want >= 1000", cmp.TotalMagnitude)
	}
	if cmp.Classification() != Diverged {
		t.Errorf("classification = %q, want %q", cmp.Classification(), Diverged)
	}
}

func TestCompareStateFiles(t *testing.T) {
	dir := t.TempDir()
	path1 := filepath.Join(dir, "a.state")
	path2 := filepath.Join(dir, "b.state")

	s1 := state.FromMasterSeed(seed(1))
	s2 := state.FromMasterSeed(seed(2))
	if err := NewFilePersistence(path1).Save(s1); err != nil {
		t.Fatal(err)
	}
	if err := NewFilePersistence(path2).Save(s2); err != nil {
		t.Fatal(err)
	}

	cmp, err := CompareStateFiles(path1, path2)
	if err != nil {
		t.Fatalf("compare: %v", err)
	}
	if cmp.Identical() {
		t.Error("different seeds must not compare identical")
	}

	same, err := CompareStateFiles(path1, path1)
	if err != nil {
		t.Fatal(err)
	}
	if !same.Identical() {
		t.Error("a file compared with itself must be identical")
	}
}
