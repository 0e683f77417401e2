// Copyright 2025 MA-ISA Protocol
//
// Merkle Tree over Device State Leaves
// Batch verification of fleet state snapshots with BLAKE3 hashing
//
// This implementation provides:
// - Binary Merkle tree construction from device state vectors
// - Inclusion proof generation for any leaf
// - Single and batch verification of inclusion proofs

package merkle

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"math/bits"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"lukechampine.com/blake3"

	"github.com/maisa-protocol/integrity-accumulator/pkg/state"
)

// Common errors
var (
	ErrEmptyTree      = errors.New("cannot build tree from empty leaves")
	ErrLeafOutOfRange = errors.New("leaf index out of range")
)

// StateLeaf binds a device identifier to its dimension snapshot. The hash is
// computed once at construction: BLAKE3(device_id || dim0 || dim1 || dim2).
type StateLeaf struct {
	DeviceID string
	State    state.DimensionVector
	hash     [32]byte
}

// NewStateLeaf creates a leaf for a device state.
func NewStateLeaf(deviceID string, stateVector state.DimensionVector) StateLeaf {
	return StateLeaf{
		DeviceID: deviceID,
		State:    stateVector,
		hash:     computeLeafHash(deviceID, &stateVector),
	}
}

// Hash returns the cached leaf hash.
func (l *StateLeaf) Hash() [32]byte {
	return l.hash
}

// Rehash recomputes the cached hash from the current fields. Needed after
// mutating the leaf, e.g. in tamper tests.
func (l *StateLeaf) Rehash() {
	l.hash = computeLeafHash(l.DeviceID, &l.State)
}

func computeLeafHash(deviceID string, v *state.DimensionVector) [32]byte {
	h := blake3.New(32, nil)
	h.Write([]byte(deviceID))
	for i := range v.Values {
		h.Write(v.Values[i][:])
	}
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

func hashPair(left, right *[32]byte) [32]byte {
	h := blake3.New(32, nil)
	h.Write(left[:])
	h.Write(right[:])
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

// Tree is a binary Merkle tree over device state leaves, stored as a flat
// array: node i's children are at 2i+1 and 2i+2, leaves occupy the last
// level starting at (1 << height) - 1. Non-power-of-two leaf sets pad the
// level with copies of the last leaf's hash so every slot verifies.
type Tree struct {
	leaves []StateLeaf
	nodes  [][32]byte
	height int
}

// NewTree builds a tree from device state leaves.
func NewTree(leaves []StateLeaf) (*Tree, error) {
	if len(leaves) == 0 {
		return nil, ErrEmptyTree
	}

	height := ceilLog2(len(leaves))
	nodeCount := (1 << (height + 1)) - 1
	nodes := make([][32]byte, nodeCount)

	leafStart := (1 << height) - 1
	for i := range leaves {
		nodes[leafStart+i] = leaves[i].hash
	}
	for i := len(leaves); i < (1 << height); i++ {
		nodes[leafStart+i] = leaves[len(leaves)-1].hash
	}

	for level := height - 1; level >= 0; level-- {
		levelStart := (1 << level) - 1
		childStart := (1 << (level + 1)) - 1
		for i := 0; i < (1 << level); i++ {
			left := nodes[childStart+2*i]
			right := nodes[childStart+2*i+1]
			nodes[levelStart+i] = hashPair(&left, &right)
		}
	}

	return &Tree{
		leaves: append([]StateLeaf(nil), leaves...),
		nodes:  nodes,
		height: height,
	}, nil
}

func ceilLog2(n int) int {
	if n <= 1 {
		return 0
	}
	return bits.Len(uint(n - 1))
}

// Root returns the root hash.
func (t *Tree) Root() [32]byte {
	return t.nodes[0]
}

// RootHex returns the root hash as a hex string.
func (t *Tree) RootHex() string {
	root := t.Root()
	return hexutil.Encode(root[:])
}

// LeafCount returns the number of real (non-padding) leaves.
func (t *Tree) LeafCount() int {
	return len(t.leaves)
}

// Leaf returns the leaf at the given index.
func (t *Tree) Leaf(index int) (StateLeaf, error) {
	if index < 0 || index >= len(t.leaves) {
		return StateLeaf{}, fmt.Errorf("%w: %d not in [0, %d)", ErrLeafOutOfRange, index, len(t.leaves))
	}
	return t.leaves[index], nil
}

// Proof is a Merkle inclusion proof for a single device state.
type Proof struct {
	Leaf     StateLeaf
	Siblings [][32]byte
	Index    int
}

// Prove generates the inclusion proof for the leaf at the given index by
// collecting the sibling hash at each level on the walk to the root.
func (t *Tree) Prove(index int) (*Proof, error) {
	if index < 0 || index >= len(t.leaves) {
		return nil, fmt.Errorf("%w: %d not in [0, %d)", ErrLeafOutOfRange, index, len(t.leaves))
	}

	siblings := make([][32]byte, 0, t.height)
	currentIndex := index

	for level := t.height - 1; level >= 0; level-- {
		childStart := (1 << (level + 1)) - 1

		var siblingIndex int
		if currentIndex%2 == 0 {
			siblingIndex = currentIndex + 1
		} else {
			siblingIndex = currentIndex - 1
		}
		siblings = append(siblings, t.nodes[childStart+siblingIndex])

		currentIndex /= 2
	}

	return &Proof{
		Leaf:     t.leaves[index],
		Siblings: siblings,
		Index:    index,
	}, nil
}

// VerifyAll proves and verifies every leaf against the tree's own root.
func (t *Tree) VerifyAll() bool {
	root := t.Root()
	for i := range t.leaves {
		proof, err := t.Prove(i)
		if err != nil || !proof.Verify(&root) {
			return false
		}
	}
	return true
}

// Verify checks this proof against an expected root. Starting from the leaf
// hash, combine with each sibling, (current, sibling) at even positions and
// (sibling, current) at odd, halving the index every level. The root
// comparison is constant-time.
func (p *Proof) Verify(root *[32]byte) bool {
	current := p.Leaf.hash
	currentIndex := p.Index

	for i := range p.Siblings {
		if currentIndex%2 == 0 {
			current = hashPair(&current, &p.Siblings[i])
		} else {
			current = hashPair(&p.Siblings[i], &current)
		}
		currentIndex /= 2
	}

	return subtle.ConstantTimeCompare(current[:], root[:]) == 1
}

// proofJSON is the interchange form of a Proof.
type proofJSON struct {
	DeviceID string                `json:"device_id"`
	State    state.DimensionVector `json:"state"`
	Siblings []hexutil.Bytes       `json:"siblings"`
	Index    int                   `json:"index"`
}

// MarshalJSON renders the proof with hex-encoded siblings.
func (p *Proof) MarshalJSON() ([]byte, error) {
	out := proofJSON{
		DeviceID: p.Leaf.DeviceID,
		State:    p.Leaf.State,
		Siblings: make([]hexutil.Bytes, len(p.Siblings)),
		Index:    p.Index,
	}
	for i := range p.Siblings {
		out.Siblings[i] = append(hexutil.Bytes(nil), p.Siblings[i][:]...)
	}
	return json.Marshal(out)
}

// UnmarshalJSON parses the form produced by MarshalJSON, recomputing the
// leaf hash from the decoded fields.
func (p *Proof) UnmarshalJSON(data []byte) error {
	var raw proofJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	p.Leaf = NewStateLeaf(raw.DeviceID, raw.State)
	p.Index = raw.Index
	p.Siblings = make([][32]byte, len(raw.Siblings))
	for i, s := range raw.Siblings {
		if len(s) != 32 {
			return fmt.Errorf("sibling %d: %d bytes, want 32", i, len(s))
		}
		copy(p.Siblings[i][:], s)
	}
	return nil
}

// BatchVerification summarizes a batch proof check.
type BatchVerification struct {
	Total         int
	Valid         int
	Invalid       int
	FailedDevices []string
}

// AllValid reports whether every proof verified.
func (b *BatchVerification) AllValid() bool {
	return b.Invalid == 0
}

// SuccessRate returns the verified fraction as a percentage.
func (b *BatchVerification) SuccessRate() float64 {
	if b.Total == 0 {
		return 0
	}
	return float64(b.Valid) / float64(b.Total) * 100
}

// VerifyBatch checks a batch of proofs against a root and reports totals and
// the device IDs that failed.
func VerifyBatch(proofs []*Proof, root *[32]byte) BatchVerification {
	result := BatchVerification{Total: len(proofs)}
	for _, proof := range proofs {
		if proof.Verify(root) {
			result.Valid++
		} else {
			result.FailedDevices = append(result.FailedDevices, proof.Leaf.DeviceID)
		}
	}
	result.Invalid = result.Total - result.Valid
	return result
}
