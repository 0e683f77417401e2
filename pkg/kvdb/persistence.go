// Copyright 2025 MA-ISA Protocol
//
// KV-Backed State Persistence
// Stores canonical state blobs in a CometBFT-compatible key-value database

package kvdb

import (
	dbm "github.com/cometbft/cometbft-db"

	"github.com/maisa-protocol/integrity-accumulator/pkg/runtime"
	"github.com/maisa-protocol/integrity-accumulator/pkg/state"
)

// KV is the minimal key-value capability the persistence layer needs.
type KV interface {
	Get(key []byte) ([]byte, error)
	Set(key, value []byte) error
	Has(key []byte) (bool, error)
}

// KVAdapter wraps a CometBFT dbm.DB and exposes the KV interface.
type KVAdapter struct {
	db dbm.DB
}

// NewKVAdapter creates an adapter for the given underlying DB.
func NewKVAdapter(db dbm.DB) *KVAdapter {
	return &KVAdapter{db: db}
}

// Get implements KV.Get. A missing key returns nil bytes, no error.
func (a *KVAdapter) Get(key []byte) ([]byte, error) {
	if a.db == nil {
		return nil, nil
	}
	return a.db.Get(key)
}

// Set implements KV.Set with a durable write.
func (a *KVAdapter) Set(key, value []byte) error {
	if a.db == nil {
		return nil
	}
	return a.db.SetSync(key, value)
}

// Has implements KV.Has.
func (a *KVAdapter) Has(key []byte) (bool, error) {
	if a.db == nil {
		return false, nil
	}
	return a.db.Has(key)
}

// ====== KV Key Layout ======

var keyStatePrefix = []byte("isa:state:")

// stateKey generates the KV key for a device's state blob.
func stateKey(deviceID string) []byte {
	return append(append([]byte(nil), keyStatePrefix...), deviceID...)
}

// Persistence stores one device's canonical state blob under its device ID.
// The underlying database provides durability; the blob itself is the same
// versioned encoding the file backend writes.
type Persistence struct {
	kv       KV
	deviceID string
}

// NewPersistence creates a KV-backed persistence handle for a device.
func NewPersistence(kv KV, deviceID string) *Persistence {
	return &Persistence{kv: kv, deviceID: deviceID}
}

// Save implements runtime.Persistence.Save.
func (p *Persistence) Save(s *state.IntegrityState) error {
	if err := p.kv.Set(stateKey(p.deviceID), s.Serialize()); err != nil {
		return &runtime.PersistenceError{Detail: "failed to write state to kv store: " + err.Error(), Err: err}
	}
	return nil
}

// Load implements runtime.Persistence.Load.
func (p *Persistence) Load() (*state.IntegrityState, error) {
	b, err := p.kv.Get(stateKey(p.deviceID))
	if err != nil {
		return nil, &runtime.PersistenceError{Detail: "failed to read state from kv store: " + err.Error(), Err: err}
	}
	if len(b) == 0 {
		return nil, &runtime.PersistenceError{Detail: "no state stored for device " + p.deviceID}
	}
	return state.Deserialize(b)
}

// Exists implements runtime.Persistence.Exists.
func (p *Persistence) Exists() bool {
	ok, err := p.kv.Has(stateKey(p.deviceID))
	return err == nil && ok
}
