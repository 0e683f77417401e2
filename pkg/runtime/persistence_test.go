// Copyright 2025 MA-ISA Protocol
//
// Persistence Tests

package runtime

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/maisa-protocol/integrity-accumulator/pkg/state"
)

func writeFileRaw(path string, data []byte) error {
	return os.WriteFile(path, data, 0o600)
}

func TestFilePersistenceRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "device.state")
	p := NewFilePersistence(path)

	s1 := state.FromMasterSeed(seed(1))

	if p.Exists() {
		t.Fatal("exists before save")
	}
	if err := p.Save(s1); err != nil {
		t.Fatalf("save: %v", err)
	}
	if !p.Exists() {
		t.Fatal("missing after save")
	}

	s2, err := p.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	v1, v2 := s1.StateVector(), s2.StateVector()
	if !v1.Equal(&v2) {
		t.Error("round trip changed the state")
	}
}

func TestFilePersistenceCreatesNestedDirs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "device.state")
	p := NewFilePersistence(path)

	if err := p.Save(state.FromMasterSeed(seed(1))); err != nil {
		t.Fatalf("save into nested dir: %v", err)
	}
	if !p.Exists() {
		t.Fatal("missing after save")
	}
}

func TestFilePersistenceAtomicOnDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "device.state")
	p := NewFilePersistence(path)

	s := state.FromMasterSeed(seed(1))
	if err := p.Save(s); err != nil {
		t.Fatal(err)
	}
	committed, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	// a stale temp file from an interrupted save must not affect the target
	if err := writeFileRaw(path+".tmp", []byte("partial write")); err != nil {
		t.Fatal(err)
	}

	loaded, err := p.Load()
	if err != nil {
		t.Fatalf("load with stale temp present: %v", err)
	}
	v1, v2 := s.StateVector(), loaded.StateVector()
	if !v1.Equal(&v2) {
		t.Error("prior committed blob must survive an interrupted save")
	}
	if len(committed) != state.EncodedSize {
		t.Errorf("committed blob length = %d, want %d", len(committed), state.EncodedSize)
	}
}

func TestFilePersistenceLoadMissing(t *testing.T) {
	p := NewFilePersistence(filepath.Join(t.TempDir(), "missing.state"))

	_, err := p.Load()
	var perr *PersistenceError
	if !errors.As(err, &perr) {
		t.Errorf("err = %v, want PersistenceError", err)
	}
}

func TestFilePersistenceLoadRejectsForeignMajor(t *testing.T) {
	path := filepath.Join(t.TempDir(), "device.state")
	p := NewFilePersistence(path)

	if err := p.Save(state.FromMasterSeed(seed(1))); err != nil {
		t.Fatal(err)
	}

	blob, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	blob[0]++
	if err := writeFileRaw(path, blob); err != nil {
		t.Fatal(err)
	}

	_, err = p.Load()
	var incompatible *state.IncompatibleVersionError
	if !errors.As(err, &incompatible) {
		t.Errorf("err = %v, want IncompatibleVersionError", err)
	}
}
