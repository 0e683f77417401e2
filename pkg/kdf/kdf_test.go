// Copyright 2025 MA-ISA Protocol
//
// KDF Tests

package kdf

import (
	"math/bits"
	"testing"
)

func TestDeriveKeyDeterministic(t *testing.T) {
	key1 := DeriveKey([]byte("test"), []byte("input1"), []byte("input2"))
	key2 := DeriveKey([]byte("test"), []byte("input1"), []byte("input2"))

	if key1 != key2 {
		t.Errorf("derivation not deterministic: %x vs %x", key1, key2)
	}
}

func TestDeriveKeyContextSeparation(t *testing.T) {
	key1 := DeriveKey([]byte("context1"), []byte("input"))
	key2 := DeriveKey([]byte("context2"), []byte("input"))

	if key1 == key2 {
		t.Error("different contexts produced identical keys")
	}
}

func TestDeriveKeyIncrementalMatchesOneShot(t *testing.T) {
	k := New([]byte("ctx"))
	k.Update([]byte("a"))
	k.Update([]byte("b"))
	incremental := k.Finalize()

	oneShot := DeriveKey([]byte("ctx"), []byte("a"), []byte("b"))
	if incremental != oneShot {
		t.Errorf("incremental %x != one-shot %x", incremental, oneShot)
	}
}

func TestMixStateDeterministic(t *testing.T) {
	state := [32]byte{}
	result1 := MixState(&state, []byte("sale_event"), []byte("entropy_source"), 1000)
	result2 := MixState(&state, []byte("sale_event"), []byte("entropy_source"), 1000)

	if result1 != result2 {
		t.Errorf("mix not deterministic: %x vs %x", result1, result2)
	}
}

func TestMixStateChangesState(t *testing.T) {
	state := [32]byte{}
	mixed := MixState(&state, nil, nil, 0)
	if mixed == state {
		t.Error("empty inputs did not change state")
	}
}

func TestMixStateAvalanche(t *testing.T) {
	state := [32]byte{}
	result1 := MixState(&state, []byte("sale_event"), []byte("entropy_source"), 1000)

	state2 := state
	state2[0] ^= 1
	result2 := MixState(&state2, []byte("sale_event"), []byte("entropy_source"), 1000)

	diffBits := 0
	for i := 0; i < 32; i++ {
		diffBits += bits.OnesCount8(result1[i] ^ result2[i])
	}

	if diffBits <= 100 {
		t.Errorf("avalanche effect insufficient: %d bits changed", diffBits)
	}
}
