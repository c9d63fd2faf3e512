// Package ots implements the LM-OTS one-time signature primitive that LMS
// is built on. Per spec.md section 1 this primitive is specified only at
// its collaborator interface from the LMS layer's point of view, but this
// package still ships a full, working implementation of it.
//
// This file implements the private key and signing logic.
package ots

import (
	"crypto/rand"
	"encoding/binary"

	"github.com/go-lms/lms/lms/common"
)

// NewPrivateKey returns a PrivateKey, seeded by a cryptographically secure
// random number generator.
func NewPrivateKey(tc common.LmsOtsAlgorithmType, q uint32, id common.ID) (PrivateKey, error) {
	params, err := tc.Params()
	if err != nil {
		return PrivateKey{}, err
	}

	seed := make([]byte, params.N)
	if _, err := rand.Read(seed); err != nil {
		return PrivateKey{}, common.WrapErrorf(common.InternalCryptoError, err, "NewPrivateKey(): failed to draw seed")
	}

	return NewPrivateKeyFromSeed(tc, q, id, seed)
}

// NewPrivateKeyFromSeed returns a new PrivateKey, using the algorithm from
// Appendix A of <https://datatracker.ietf.org/doc/html/rfc8554#appendix-A>
func NewPrivateKeyFromSeed(tc common.LmsOtsAlgorithmType, q uint32, id common.ID, seed []byte) (PrivateKey, error) {
	params, err := tc.Params()
	if err != nil {
		return PrivateKey{}, err
	}
	x := make([][]byte, params.P)

	for i := uint64(0); i < params.P; i++ {
		var q_be [4]byte
		var i_be [2]byte
		hasher := params.H.New()

		binary.BigEndian.PutUint32(q_be[:], q)
		binary.BigEndian.PutUint16(i_be[:], uint16(i))

		common.HashWrite(hasher, id[:])
		common.HashWrite(hasher, q_be[:])
		common.HashWrite(hasher, i_be[:])
		common.HashWrite(hasher, []byte{0xff})
		common.HashWrite(hasher, seed)

		x[i] = hasher.Sum(nil)
	}

	return PrivateKey{
		typecode: tc,
		q:        q,
		id:       id,
		x:        x,
		valid:    true,
	}, nil
}

// Public returns the PublicKey that validates signatures for this private key.
func (x *PrivateKey) Public() (PublicKey, error) {
	var be16 [2]byte
	var be32 [4]byte
	var tmp []byte
	params, err := x.typecode.Params()
	if err != nil {
		return PublicKey{}, err
	}
	hasher := params.H.New()
	binary.BigEndian.PutUint32(be32[:], x.q)

	common.HashWrite(hasher, x.id[:])
	common.HashWrite(hasher, be32[:])
	common.HashWrite(hasher, common.D_PBLC[:])

	for i := uint64(0); i < params.P; i++ {
		tmp = make([]byte, len(x.x[i]))
		copy(tmp, x.x[i])

		for j := uint64(0); j < (uint64(1)<<int(params.W.Window()))-1; j++ {
			inner := params.H.New()

			binary.BigEndian.PutUint32(be32[:], x.q)
			binary.BigEndian.PutUint16(be16[:], uint16(i))

			common.HashWrite(inner, x.id[:])
			common.HashWrite(inner, be32[:])
			common.HashWrite(inner, be16[:])
			common.HashWrite(inner, []byte{byte(j)})
			common.HashWrite(inner, tmp)

			tmp = inner.Sum(nil)
		}

		common.HashWrite(hasher, tmp)
	}

	return PublicKey{
		typecode: x.typecode,
		q:        x.q,
		id:       x.id,
		k:        hasher.Sum(nil),
	}, nil
}

// Sign calculates the LM-OTS signature of a chosen message. rng is
// optional; if nil, crypto/rand.Reader is used. Sign invalidates the
// private key: per RFC 8554, each LM-OTS key pair must sign exactly one
// message.
func (x *PrivateKey) Sign(msg []byte, rng common.RandReader) (Signature, error) {
	if rng == nil {
		rng = rand.Reader
	}
	if !x.valid {
		return Signature{}, common.Errorf(common.BadInput, "Sign(): private key has already signed a message")
	}

	var be16 [2]byte
	var be32 [4]byte
	params, err := x.typecode.Params()
	if err != nil {
		return Signature{}, err
	}
	hasher := params.H.New()
	c := make([]byte, params.N)

	if _, err := rng.Read(c); err != nil {
		return Signature{}, common.WrapErrorf(common.InternalCryptoError, err, "Sign(): failed to draw nonce")
	}

	binary.BigEndian.PutUint32(be32[:], x.q)

	common.HashWrite(hasher, x.id[:])
	common.HashWrite(hasher, be32[:])
	common.HashWrite(hasher, common.D_MESG[:])
	common.HashWrite(hasher, c)
	common.HashWrite(hasher, msg)

	q := hasher.Sum(nil)
	expanded, err := common.Expand(q, x.typecode)
	if err != nil {
		return Signature{}, err
	}

	y := make([][]byte, params.P)

	for i := uint64(0); i < params.P; i++ {
		a := uint64(expanded[i])
		y[i] = make([]byte, len(x.x[i]))
		copy(y[i], x.x[i])

		for j := uint64(0); j < a; j++ {
			inner := params.H.New()

			binary.BigEndian.PutUint32(be32[:], x.q)
			binary.BigEndian.PutUint16(be16[:], uint16(i))

			common.HashWrite(inner, x.id[:])
			common.HashWrite(inner, be32[:])
			common.HashWrite(inner, be16[:])
			common.HashWrite(inner, []byte{byte(j)})
			common.HashWrite(inner, y[i])

			y[i] = inner.Sum(nil)
		}
		// y[i] is now the correct value
	}

	// The private values have now been consumed; scrub and invalidate so a
	// caller cannot accidentally sign a second message with this key.
	for i := range x.x {
		for j := range x.x[i] {
			x.x[i][j] = 0
		}
	}
	x.x = nil
	x.valid = false

	return Signature{
		typecode: x.typecode,
		c:        c,
		y:        y,
	}, nil
}
