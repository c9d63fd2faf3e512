// Package lms implements the LMS Merkle-tree composition layer.
//
// This file implements the public key context and signature verification
// logic (spec.md sections 4.5 and 3's public key context lifecycle).
package lms

import (
	"crypto/subtle"
	"encoding/binary"

	"github.com/go-lms/lms/lms/common"
)

// NewPublicKey returns a PublicKeyContext given the LMS typecode, LM-OTS
// typecode, key identifier, and Merkle tree root T[1] (calculate_public_key,
// when the caller already has the root rather than a PrivateKeyContext to
// derive it from).
func NewPublicKey(tc common.LmsAlgorithmType, otstc common.LmsOtsAlgorithmType, id common.ID, root []byte) (PublicKeyContext, error) {
	if len(root) != common.M {
		return PublicKeyContext{}, common.Errorf(common.BadInput, "NewPublicKey(): root must be %d bytes", common.M)
	}

	tc, err := tc.LmsType()
	if err != nil {
		return PublicKeyContext{}, err
	}
	otstc, err = otstc.LmsOtsType()
	if err != nil {
		return PublicKeyContext{}, err
	}

	return PublicKeyContext{
		typecode: tc,
		otstype:  otstc,
		id:       id,
		root:     root,
	}, nil
}

// ImportPublicKey decodes and validates a serialized public key
// (import_public_key, spec.md section 4.5.1). Steps, in order:
//  1. require len(b) >= 56
//  2. reject if the decoded lms_type isn't LMS_SHA256_M32_H10
//  3. reject if the decoded ots_type isn't LMOTS_SHA256_N32_W8
//  4. copy I and T[1]
func ImportPublicKey(b []byte) (PublicKeyContext, error) {
	if uint64(len(b)) < common.PublicKeyLen {
		return PublicKeyContext{}, common.Errorf(common.BufferTooSmall, "ImportPublicKey(): public key too short")
	}
	if uint64(len(b)) > common.PublicKeyLen {
		return PublicKeyContext{}, common.Errorf(common.BadInput, "ImportPublicKey(): public key too long")
	}

	typecode, err := common.Uint32ToLmsType(binary.BigEndian.Uint32(b[0:4])).LmsType()
	if err != nil {
		return PublicKeyContext{}, err
	}
	otstype, err := common.Uint32ToLmotsType(binary.BigEndian.Uint32(b[4:8])).LmsOtsType()
	if err != nil {
		return PublicKeyContext{}, err
	}

	id := common.ID(b[8:24])
	root := make([]byte, common.M)
	copy(root, b[24:24+common.M])

	return PublicKeyContext{
		typecode: typecode,
		otstype:  otstype,
		id:       id,
		root:     root,
	}, nil
}

// Verify reports whether sig is a valid signature of msg under pub
// (verify, spec.md section 4.5.2). It implements the ten ordered checks
// from the spec exactly, including the requirement that a parameter-set
// mismatch anywhere inside the signature be treated as VerifyFailed rather
// than a decode-time error — the embedded typecodes were decoded
// leniently by SignatureFromBytes for exactly this reason.
//
// Verify returns a bare bool, matching ots.PublicKey.Verify: a failed
// "have_public_key" precondition and a rejected signature are both just
// false to a caller.
func (pub *PublicKeyContext) Verify(msg []byte, sig Signature) bool {
	// Step 1: have_public_key. A PublicKeyContext only exists via
	// ImportPublicKey/NewPublicKey/PrivateKeyContext.Public, all of which
	// populate every field, so the zero value is the only "uninitialised"
	// state; check it by root length rather than a separate boolean flag.
	if len(pub.root) != common.M {
		return false
	}

	// Step 3: pub's own parameter set must be the accepted pair. This is
	// already enforced by every PublicKeyContext constructor, so this is
	// a defensive re-check rather than a reachable failure.
	if _, err := pub.typecode.LmsType(); err != nil {
		return false
	}
	if _, err := pub.otstype.LmsOtsType(); err != nil {
		return false
	}

	// Step 4: the ots_type embedded inside the OTS signature subrecord.
	if sig.ots.TypeValue() != common.LMOTS_SHA256_N32_W8.ToUint32() {
		return false
	}

	// Step 5: the lms_type field carried alongside the signature.
	if sig.typecode.ToUint32() != common.LMS_SHA256_M32_H10.ToUint32() {
		return false
	}

	// Step 6: q must be in range.
	if sig.q >= common.LeafCount {
		return false
	}

	// Step 7: recover the candidate OTS public key.
	candidate, ok := sig.ots.RecoverPublicKey(msg, pub.id, sig.q)
	if !ok {
		return false
	}

	// Step 8: the candidate leaf hash.
	r := common.LeafCount + sig.q
	node, err := leafHash(pub.id, r, candidate.Key())
	if err != nil {
		common.Logf("lms: Verify(): leaf hash failed: %v", err)
		return false
	}

	// Step 9: climb the tree using the supplied authentication path.
	if len(sig.path) != common.H {
		return false
	}
	for h := 0; h < common.H; h++ {
		s := sig.path[h]
		var parent []byte
		if r%2 == 1 {
			parent, err = internalHash(pub.id, r/2, s, node)
		} else {
			parent, err = internalHash(pub.id, r/2, node, s)
		}
		if err != nil {
			common.Logf("lms: Verify(): internal hash failed: %v", err)
			return false
		}
		node = parent
		r /= 2
	}

	// Step 10: constant-time root comparison.
	return subtle.ConstantTimeCompare(node, pub.root) == 1
}

// ExportPublicKey serializes pub into a byte string for transmission or
// storage (export_public_key, spec.md section 4.4.4): lms_type (4) ||
// ots_type (4) || I (16) || T[1] (32) = 56 bytes.
func (pub *PublicKeyContext) ExportPublicKey() []byte {
	var serialized []byte
	var u32 [4]byte

	typecode, _ := pub.typecode.LmsType()
	binary.BigEndian.PutUint32(u32[:], typecode.ToUint32())
	serialized = append(serialized, u32[:]...)

	otstype, _ := pub.otstype.LmsOtsType()
	binary.BigEndian.PutUint32(u32[:], otstype.ToUint32())
	serialized = append(serialized, u32[:]...)

	serialized = append(serialized, pub.id[:]...)
	serialized = append(serialized, pub.root...)

	return serialized
}

// ToBytes is an alias for ExportPublicKey, matching the teacher's naming.
func (pub *PublicKeyContext) ToBytes() []byte {
	return pub.ExportPublicKey()
}

// Key returns the 32-byte Merkle tree root T[1].
func (pub *PublicKeyContext) Key() []byte {
	return pub.root
}

// ID returns the public key's 16-byte key identifier.
func (pub *PublicKeyContext) ID() common.ID {
	return pub.id
}

// Zeroize overwrites pub's key material with zero bytes (spec.md section
// 9). pub must not be used afterwards.
func (pub *PublicKeyContext) Zeroize() {
	for i := range pub.root {
		pub.root[i] = 0
	}
	for i := range pub.id {
		pub.id[i] = 0
	}
	pub.root = nil
}
