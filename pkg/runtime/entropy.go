// Copyright 2025 MA-ISA Protocol
//
// Entropy Source
// OS-backed cryptographic randomness for the runtime layer
//
// The cryptographic core never touches this directly; entropy enters the
// accumulators only as caller-supplied bytes through the runtime.

package runtime

import (
	"crypto/rand"

	"github.com/maisa-protocol/integrity-accumulator/pkg/accumulator"
)

// EntropySource gathers unpredictable bytes from the OS CSPRNG.
type EntropySource struct{}

// NewEntropySource returns an entropy source backed by the OS random source.
func NewEntropySource() *EntropySource {
	return &EntropySource{}
}

// Gather returns size bytes of cryptographic randomness. The caller owns the
// buffer and should zeroize it once mixed.
func (e *EntropySource) Gather(size int) ([]byte, error) {
	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		return nil, ErrEntropyGenerationFailed
	}
	return buf, nil
}

// Gather32 returns a fixed 32-byte sample.
func (e *EntropySource) Gather32() (accumulator.State256, error) {
	var buf accumulator.State256
	if _, err := rand.Read(buf[:]); err != nil {
		return accumulator.State256{}, ErrEntropyGenerationFailed
	}
	return buf, nil
}

// wipe clears a byte slice that held entropy or key material.
func wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
