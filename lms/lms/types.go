// Package lms implements the LMS Merkle-tree composition layer of RFC 8554:
// deterministic tree construction, stateful signing, and verification over
// the LMOTS one-time signature primitive in package ots.
package lms

import (
	"github.com/go-lms/lms/lms/common"
	"github.com/go-lms/lms/lms/ots"
	"github.com/go-lms/lms/lms/statestore"
)

// PrivateKeyContext is the stateful private key context of spec.md section
// 3: the OTS key material (held here as a seed plus identifier, from which
// any leaf's OTS private key is re-derived per RFC 8554 Appendix A) and the
// monotonically advancing leaf counter q_next_usable_key.
//
// The zero value is not a usable context; construct one with
// GeneratePrivateKey.
type PrivateKeyContext struct {
	typecode common.LmsAlgorithmType
	otstype  common.LmsOtsAlgorithmType
	id       common.ID
	seed     []byte
	authtree *merkleTree

	q     uint32
	ctxID string
	store statestore.CounterStore
}

// PublicKeyContext is the immutable public key context of spec.md section
// 3: the parameter set, key identifier, and Merkle tree root.
type PublicKeyContext struct {
	typecode common.LmsAlgorithmType
	otstype  common.LmsOtsAlgorithmType
	id       common.ID
	root     []byte // T[1], the 32-byte Merkle tree root
}

// Signature represents a signature produced by a PrivateKeyContext which a
// PublicKeyContext can validate for a given message.
type Signature struct {
	typecode common.LmsAlgorithmType
	q        uint32
	ots      ots.Signature
	path     [][]byte
}
