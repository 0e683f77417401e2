// Copyright 2025 MA-ISA Protocol
//
// State Persistence
// Atomic file-backed storage for versioned state blobs

package runtime

import (
	"os"
	"path/filepath"

	"github.com/maisa-protocol/integrity-accumulator/pkg/state"
)

// Persistence is the capability set a device runtime needs from its storage
// backend. Exists is advisory: a race is possible between Exists and Load,
// so callers treat Load failures as authoritative.
type Persistence interface {
	Save(s *state.IntegrityState) error
	Load() (*state.IntegrityState, error)
	Exists() bool
}

// FilePersistence stores the canonical state blob in a single file, written
// atomically: serialize to a sibling temp path, then rename over the target.
// A crash mid-save leaves either the prior committed blob or the new one,
// never a truncated file.
type FilePersistence struct {
	path string
}

// NewFilePersistence creates a file-backed store at the given path. By
// convention the file is named <device>.state.
func NewFilePersistence(path string) *FilePersistence {
	return &FilePersistence{path: path}
}

// Path returns the target file path.
func (p *FilePersistence) Path() string {
	return p.path
}

// Save implements Persistence.Save.
func (p *FilePersistence) Save(s *state.IntegrityState) error {
	if parent := filepath.Dir(p.path); parent != "." {
		if err := os.MkdirAll(parent, 0o755); err != nil {
			return persistenceErr("failed to create state directory", err)
		}
	}

	bytes := s.Serialize()
	defer wipe(bytes)

	tempPath := p.path + ".tmp"
	if err := os.WriteFile(tempPath, bytes, 0o600); err != nil {
		return persistenceErr("failed to write state file", err)
	}

	if err := os.Rename(tempPath, p.path); err != nil {
		return persistenceErr("failed to commit state file", err)
	}

	return nil
}

// Load implements Persistence.Load.
func (p *FilePersistence) Load() (*state.IntegrityState, error) {
	bytes, err := os.ReadFile(p.path)
	if err != nil {
		return nil, persistenceErr("failed to read state file", err)
	}
	defer wipe(bytes)

	loaded, err := state.Deserialize(bytes)
	if err != nil {
		return nil, err
	}
	return loaded, nil
}

// Exists implements Persistence.Exists.
func (p *FilePersistence) Exists() bool {
	_, err := os.Stat(p.path)
	return err == nil
}
