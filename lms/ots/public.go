// Package ots implements the LM-OTS one-time signature primitive that LMS
// is built on.
//
// This file implements the public key and verification logic.
package ots

import (
	"crypto/subtle"
	"encoding/binary"

	"github.com/go-lms/lms/lms/common"
)

// Verify returns true if sig is valid for msg and this public key. It
// returns false otherwise; this method never returns an error because a
// failed verification and a malformed signature are the same outcome to a
// caller (VerifyFailed, per spec.md section 4.5.2).
func (pub *PublicKey) Verify(msg []byte, sig Signature) bool {
	if pub.typecode != sig.typecode {
		return false
	}

	kc, valid := sig.RecoverPublicKey(msg, pub.id, pub.q)

	// Short-circuits on valid == false; otherwise does the key comparison.
	return valid && subtle.ConstantTimeCompare(pub.k, kc.k) == 1
}

// RecoverPublicKey calculates the candidate public key for a given message
// and signature. This is the collaborator the LMS verifier calls to derive
// Kc (spec.md section 4.5.2, step 7).
func (sig *Signature) RecoverPublicKey(msg []byte, id common.ID, q uint32) (PublicKey, bool) {
	var be16 [2]byte
	var be32 [4]byte
	var tmp []byte
	params, err := sig.typecode.Params()
	if err != nil {
		return PublicKey{}, false
	}
	hasher := params.H.New()
	hash_len := hasher.Size()

	if len(sig.c) != hash_len {
		return PublicKey{}, false
	}

	if uint64(len(sig.y)) != params.P {
		return PublicKey{}, false
	}
	for i := uint64(0); i < params.P; i++ {
		if len(sig.y[i]) != hash_len {
			return PublicKey{}, false
		}
	}

	binary.BigEndian.PutUint32(be32[:], q)

	common.HashWrite(hasher, id[:])
	common.HashWrite(hasher, be32[:])
	common.HashWrite(hasher, common.D_MESG[:])
	common.HashWrite(hasher, sig.c)
	common.HashWrite(hasher, msg)

	Q := hasher.Sum(nil)
	expanded, err := common.Expand(Q, sig.typecode)
	if err != nil {
		return PublicKey{}, false
	}

	hasher.Reset()
	common.HashWrite(hasher, id[:])
	common.HashWrite(hasher, be32[:])
	common.HashWrite(hasher, common.D_PBLC[:])

	for i := uint64(0); i < params.P; i++ {
		a := uint64(expanded[i])
		tmp = make([]byte, len(sig.y[i]))
		copy(tmp, sig.y[i])

		for j := a; j < (uint64(1)<<int(params.W.Window()))-1; j++ {
			inner := params.H.New()

			binary.BigEndian.PutUint32(be32[:], q)
			binary.BigEndian.PutUint16(be16[:], uint16(i))

			common.HashWrite(inner, id[:])
			common.HashWrite(inner, be32[:])
			common.HashWrite(inner, be16[:])
			common.HashWrite(inner, []byte{byte(j)})
			common.HashWrite(inner, tmp)

			tmp = inner.Sum(nil)
		}

		common.HashWrite(hasher, tmp)
	}

	return PublicKey{
		typecode: sig.typecode,
		q:        q,
		id:       id,
		k:        hasher.Sum(nil),
	}, true
}

// Key returns the public key's 32-byte hash value, K. This is the value
// the LMS leaf hash (section 4.2) combines with the leaf's node index.
func (pub *PublicKey) Key() []byte {
	return pub.k[:]
}

// PublicKeyFromBytes returns a PublicKey represented by b. This is the
// inverse of ToBytes().
func PublicKeyFromBytes(b []byte) (PublicKey, error) {
	if uint64(len(b)) < 4+common.ID_LEN+4 {
		return PublicKey{}, common.WrapErrorf(common.BufferTooSmall, nil, "PublicKeyFromBytes(): OTS public key too short")
	}

	// The typecode is bytes 0-3 (4 bytes)
	typecode, err := common.Uint32ToLmotsType(binary.BigEndian.Uint32(b[0:4])).LmsOtsType()
	if err != nil {
		return PublicKey{}, err
	}
	params, err := typecode.Params()
	if err != nil {
		return PublicKey{}, err
	}

	want := 4 + common.ID_LEN + 4 + params.N
	if uint64(len(b)) < want {
		return PublicKey{}, common.Errorf(common.BufferTooSmall, "PublicKeyFromBytes(): OTS public key too short")
	} else if uint64(len(b)) > want {
		return PublicKey{}, common.Errorf(common.BadInput, "PublicKeyFromBytes(): OTS public key too long")
	}

	id := common.ID(b[4 : 4+common.ID_LEN])
	q := binary.BigEndian.Uint32(b[4+common.ID_LEN : 8+common.ID_LEN])
	k := b[8+common.ID_LEN:]

	return PublicKey{
		typecode: typecode,
		id:       id,
		q:        q,
		k:        k,
	}, nil
}

// ToBytes serializes the public key into a byte string for transmission or storage.
func (pub *PublicKey) ToBytes() []byte {
	var serialized []byte
	var u32_be [4]byte

	typecode, _ := pub.typecode.LmsOtsType()
	// This will never error on a validly constructed PublicKey.
	binary.BigEndian.PutUint32(u32_be[:], typecode.ToUint32())
	serialized = append(serialized, u32_be[:]...)

	serialized = append(serialized, pub.id[:]...)

	binary.BigEndian.PutUint32(u32_be[:], pub.q)
	serialized = append(serialized, u32_be[:]...)

	serialized = append(serialized, pub.k[:]...)

	return serialized
}
