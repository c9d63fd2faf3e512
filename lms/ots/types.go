package ots

import (
	"github.com/go-lms/lms/lms/common"
)

// A PrivateKey is used to sign exactly one message. Signing invalidates it:
// this is the LMOTS one-time-signature collaborator's half of the
// "q_next_usable_key" statefulness spec.md describes at the LMS layer.
type PrivateKey struct {
	typecode common.LmsOtsAlgorithmType
	q        uint32
	id       common.ID
	x        [][]byte
	valid    bool
}

// A PublicKey is used to verify exactly one message.
type PublicKey struct {
	typecode common.LmsOtsAlgorithmType
	q        uint32
	id       common.ID
	k        []byte
}

// A Signature is a signature of one message.
type Signature struct {
	typecode common.LmsOtsAlgorithmType
	c        []byte
	y        [][]byte
}
