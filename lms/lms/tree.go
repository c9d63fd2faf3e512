// Package lms implements the LMS Merkle-tree composition layer.
//
// This file implements the node hasher (spec.md section 4.2) and the tree
// builder (spec.md section 4.3).
package lms

import (
	"encoding/binary"

	"github.com/go-lms/lms/lms/common"
	"github.com/go-lms/lms/lms/ots"
)

// merkleTree is the full 2^(H+1)-node array described in spec.md section
// 4.3. Index 0 is unused; node r lives at nodes[r], matching RFC 8554's
// 1-based node numbering so the authentication-path math in sign/verify
// reads as a direct transliteration of the spec.
type merkleTree struct {
	nodes [common.NodeCount][]byte
}

// root returns T[1].
func (t *merkleTree) root() []byte {
	return t.nodes[1]
}

// leafHash computes the leaf node value for node index r (spec.md section
// 4.2): H(I || r || D_LEAF || K_leaf), used when r >= 2^H.
func leafHash(id common.ID, r uint32, kLeaf []byte) ([]byte, error) {
	if len(kLeaf) != common.N {
		return nil, common.Errorf(common.InternalCryptoError, "leafHash(): OTS public key has unexpected length %d", len(kLeaf))
	}

	var rBytes [4]byte
	binary.BigEndian.PutUint32(rBytes[:], r)

	hasher := common.Sha256Hasher{}.New()
	common.HashWrite(hasher, id[:])
	common.HashWrite(hasher, rBytes[:])
	common.HashWrite(hasher, common.D_LEAF[:])
	common.HashWrite(hasher, kLeaf)

	return hasher.Sum(nil), nil
}

// internalHash computes an internal node value for node index r (spec.md
// section 4.2): H(I || r || D_INTR || T[left] || T[right]), used when
// 1 <= r < 2^H.
func internalHash(id common.ID, r uint32, left, right []byte) ([]byte, error) {
	if len(left) != common.N || len(right) != common.N {
		return nil, common.Errorf(common.InternalCryptoError, "internalHash(): child node has unexpected length")
	}

	var rBytes [4]byte
	binary.BigEndian.PutUint32(rBytes[:], r)

	hasher := common.Sha256Hasher{}.New()
	common.HashWrite(hasher, id[:])
	common.HashWrite(hasher, rBytes[:])
	common.HashWrite(hasher, common.D_INTR[:])
	common.HashWrite(hasher, left)
	common.HashWrite(hasher, right)

	return hasher.Sum(nil), nil
}

// buildTree constructs the full Merkle tree over LeafCount OTS public keys
// (spec.md section 4.3): leaves first, then internal nodes in descending
// index order so every child exists before its parent is computed.
func buildTree(id common.ID, pubKeys [common.LeafCount]ots.PublicKey) (*merkleTree, error) {
	tree := &merkleTree{}

	for i := 0; i < common.LeafCount; i++ {
		r := uint32(common.LeafCount + i)
		node, err := leafHash(id, r, pubKeys[i].Key())
		if err != nil {
			return nil, err
		}
		tree.nodes[r] = node
	}

	for r := uint32(common.LeafCount - 1); r >= 1; r-- {
		node, err := internalHash(id, r, tree.nodes[2*r], tree.nodes[2*r+1])
		if err != nil {
			return nil, err
		}
		tree.nodes[r] = node
	}

	return tree, nil
}

// authPath extracts the H sibling node values along the path from leaf q to
// the root, in ascending height order (spec.md section 4.4.3, step 6).
func (t *merkleTree) authPath(q uint32) [][]byte {
	path := make([][]byte, common.H)
	r := uint32(common.LeafCount) + q
	for i := 0; i < common.H; i++ {
		path[i] = t.nodes[r^1]
		r >>= 1
	}
	return path
}
