// Copyright 2017 Cameron Bergoon
// https://github.com/cbergoon/merkletree
// Licensed under the MIT License, see LICENCE file for details.
// This code has been cleaned up, refactored, and turned into generics.

// Package merkle provides a merkle tree over an ordered set of transactions.
// The tree exposes the root digest, inclusion proofs by leaf index, and the
// level-by-level pairing used to teach how the root is derived.
//
// Odd counts are handled by duplication: an odd number of leaves gets the
// last leaf duplicated, and an odd number of nodes at any upper level pairs
// the last node with itself. Both produce hash(h + h) for the unpaired node.
package merkle

import (
	"errors"
	"fmt"

	"github.com/MXmingxuan/blockchain-lab/foundation/blockchain/digest"
)

// ErrNoContent is returned when a tree is requested for zero transactions.
// A block always carries at least one transaction so an empty set is
// rejected rather than mapped to a zero root.
var ErrNoContent = errors.New("cannot construct tree with no content")

// Hashable represents the behavior concrete data must exhibit to be used in
// the merkle tree.
type Hashable[T any] interface {
	Hash() (digest.Digest, error)
	Equals(other T) bool
}

// Side indicates where a proof sibling sits relative to the running hash.
type Side int

// The two possible positions of a proof sibling.
const (
	Left  Side = iota // Sibling is concatenated before the running hash.
	Right             // Sibling is concatenated after the running hash.
)

// ProofEntry is one step of an inclusion proof, a sibling digest and the
// side it occupies in the pairing.
type ProofEntry struct {
	Hash digest.Digest `json:"hash"`
	Side Side          `json:"side"`
}

// =============================================================================

// Tree represents a merkle tree that uses data of some type T that exhibits
// the behavior defined by the Hashable constraint.
type Tree[T Hashable[T]] struct {
	Root       *Node[T]
	Leafs      []*Node[T]
	MerkleRoot digest.Digest
}

// NewTree constructs a merkle tree from the ordered set of values. A tree
// over a single value has the value's digest as its root with no pairing.
func NewTree[T Hashable[T]](values []T) (*Tree[T], error) {
	var t Tree[T]
	if err := t.Generate(values); err != nil {
		return nil, err
	}

	return &t, nil
}

// Generate constructs the leafs and nodes of the tree from the specified
// data. If the tree has been generated previously, the tree is re-generated
// from scratch.
func (t *Tree[T]) Generate(values []T) error {
	if len(values) == 0 {
		return ErrNoContent
	}

	var leafs []*Node[T]
	for _, value := range values {
		hash, err := value.Hash()
		if err != nil {
			return err
		}

		leafs = append(leafs, &Node[T]{
			Hash:  hash,
			Value: value,
			leaf:  true,
		})
	}

	if len(leafs) == 1 {
		t.Root = leafs[0]
		t.Leafs = leafs
		t.MerkleRoot = leafs[0].Hash
		return nil
	}

	if len(leafs)%2 == 1 {
		last := leafs[len(leafs)-1]
		leafs = append(leafs, &Node[T]{
			Hash:  last.Hash,
			Value: last.Value,
			leaf:  true,
			dup:   true,
		})
	}

	root := buildIntermediate(leafs)

	t.Root = root
	t.Leafs = leafs
	t.MerkleRoot = root.Hash

	return nil
}

// Rebuild reconstructs the tree reusing only the data it currently holds
// in the leaves.
func (t *Tree[T]) Rebuild() error {
	return t.Generate(t.Values())
}

// ProofByIndex returns the inclusion proof for the transaction at the
// specified index in the original ordering. The proof lists the sibling
// digest at every level from the leaf up to, but not including, the root.
// A self-paired node contributes its own digest as the sibling.
func (t *Tree[T]) ProofByIndex(index int) ([]ProofEntry, error) {
	if index < 0 || index >= len(t.Values()) {
		return nil, fmt.Errorf("no leaf at index %d", index)
	}

	proof := []ProofEntry{}

	node := t.Leafs[index]
	for parent := node.Parent; parent != nil; parent = node.Parent {
		if parent.Left == node {
			proof = append(proof, ProofEntry{Hash: parent.Right.Hash, Side: Right})
		} else {
			proof = append(proof, ProofEntry{Hash: parent.Left.Hash, Side: Left})
		}
		node = parent
	}

	return proof, nil
}

// Proof returns the inclusion proof for the first leaf whose value equals
// the specified data.
func (t *Tree[T]) Proof(data T) ([]ProofEntry, error) {
	for i, node := range t.Leafs {
		if node.dup || !node.Value.Equals(data) {
			continue
		}
		return t.ProofByIndex(i)
	}

	return nil, errors.New("unable to find data in tree")
}

// VerifyProof recomputes the path from a leaf digest through the specified
// proof and reports whether the result matches the expected root. A proof
// for a tree of one transaction is empty and the leaf digest is the root.
func VerifyProof(leafHash digest.Digest, proof []ProofEntry, expectedRoot digest.Digest) bool {
	hash := leafHash
	for _, entry := range proof {
		if entry.Side == Left {
			hash = digest.Sum(append(entry.Hash[:], hash[:]...))
			continue
		}
		hash = digest.Sum(append(hash[:], entry.Hash[:]...))
	}

	return hash.Equal(expectedRoot)
}

// Verify validates the hashes at each level of the tree and reports an
// error if the recomputed root no longer matches the stored root.
func (t *Tree[T]) Verify() error {
	calculated, err := t.Root.verify()
	if err != nil {
		return err
	}

	if !t.MerkleRoot.Equal(calculated) {
		return errors.New("root hash invalid")
	}

	return nil
}

// Levels returns the digests of every level of the tree with the root
// first and the leaf level last, including any duplicated padding leaf.
// This is the walk the visualizer renders when explaining the pairing.
func (t *Tree[T]) Levels() [][]digest.Digest {
	level := t.Leafs
	levels := [][]digest.Digest{hashesOf(level)}

	for len(level) > 1 {
		var next []*Node[T]
		for _, node := range level {
			if node.Parent != nil && (len(next) == 0 || next[len(next)-1] != node.Parent) {
				next = append(next, node.Parent)
			}
		}
		level = next
		levels = append(levels, hashesOf(level))
	}

	for i, j := 0, len(levels)-1; i < j; i, j = i+1, j-1 {
		levels[i], levels[j] = levels[j], levels[i]
	}

	return levels
}

// Values returns a slice of unique values stored in the tree, dropping the
// duplicated padding leaf if one was added.
func (t *Tree[T]) Values() []T {
	var values []T
	for _, node := range t.Leafs {
		if node.dup {
			continue
		}
		values = append(values, node.Value)
	}

	return values
}

// RootHex returns the hex encoded merkle root.
func (t *Tree[T]) RootHex() string {
	return t.MerkleRoot.String()
}

// MarshalText implements the TextMarshaler interface and produces a panic
// if anyone tries to marshal the Merkle tree. Use the Values function to
// return a slice that can be marshaled.
func (t *Tree[T]) MarshalText() (text []byte, err error) {
	panic("do not marshal the merkle tree, use Values")
}

// =============================================================================

// Node represents a node, root, or leaf in the tree. It stores pointers to
// its immediate relationships, a digest, and the data if it is a leaf.
type Node[T Hashable[T]] struct {
	Parent *Node[T]
	Left   *Node[T]
	Right  *Node[T]
	Hash   digest.Digest
	Value  T
	leaf   bool
	dup    bool
}

// verify walks down the tree until hitting a leaf, calculating the digest
// at each level and returning the resulting digest of the node.
func (n *Node[T]) verify() (digest.Digest, error) {
	if n.leaf {
		return n.Value.Hash()
	}

	left, err := n.Left.verify()
	if err != nil {
		return digest.Zero, err
	}

	right, err := n.Right.verify()
	if err != nil {
		return digest.Zero, err
	}

	return digest.Sum(append(left[:], right[:]...)), nil
}

// =============================================================================

// hashesOf collects the digests for one level of nodes.
func hashesOf[T Hashable[T]](nodes []*Node[T]) []digest.Digest {
	hashes := make([]digest.Digest, len(nodes))
	for i, node := range nodes {
		hashes[i] = node.Hash
	}

	return hashes
}

// buildIntermediate constructs the intermediate and root levels of the
// tree for a given list of leaf nodes. An unpaired node at the end of a
// level is paired with itself. Returns the resulting root node.
func buildIntermediate[T Hashable[T]](nl []*Node[T]) *Node[T] {
	var nodes []*Node[T]

	for i := 0; i < len(nl); i += 2 {
		left, right := i, i+1
		if i+1 == len(nl) {
			right = i
		}

		n := Node[T]{
			Left:  nl[left],
			Right: nl[right],
			Hash:  digest.Sum(append(nl[left].Hash[:], nl[right].Hash[:]...)),
		}

		nodes = append(nodes, &n)
		nl[left].Parent = &n
		nl[right].Parent = &n

		if len(nl) == 2 {
			return &n
		}
	}

	return buildIntermediate(nodes)
}
