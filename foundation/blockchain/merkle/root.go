package merkle

import (
	"bytes"
	"hash"
)

// Leaf is a precomputed hash used as tree content, for when only the hashes
// of the values are at hand.
type Leaf []byte

// Hash implements the Hashable interface.
func (l Leaf) Hash() ([]byte, error) {
	return l, nil
}

// Equals implements the Hashable interface.
func (l Leaf) Equals(other Leaf) bool {
	return bytes.Equal(l, other)
}

// Root computes the merkle root over an ordered list of hashes.
func Root(hashStrategy func() hash.Hash, hashes ...[]byte) ([]byte, error) {
	leafs := make([]Leaf, len(hashes))
	for i, h := range hashes {
		leafs[i] = h
	}

	tree, err := NewTree(leafs, WithHashStrategy[Leaf](hashStrategy))
	if err != nil {
		return nil, err
	}

	return tree.MerkleRoot, nil
}
