// Package ots implements the LM-OTS one-time signature primitive that LMS
// is built on.
//
// This file implements the Signature type, including serialization.
package ots

import (
	"encoding/binary"

	"github.com/go-lms/lms/lms/common"
)

// SignatureFromBytes returns a Signature represented by b.
func SignatureFromBytes(b []byte) (Signature, error) {
	if len(b) < 4 {
		return Signature{}, common.Errorf(common.BufferTooSmall, "SignatureFromBytes(): no typecode")
	}

	typecode, err := common.Uint32ToLmotsType(binary.BigEndian.Uint32(b[0:4])).LmsOtsType()
	if err != nil {
		return Signature{}, err
	}
	params, err := typecode.Params()
	if err != nil {
		return Signature{}, err
	}

	if uint64(len(b)) < params.SIG_LEN {
		return Signature{}, common.Errorf(common.BufferTooSmall, "SignatureFromBytes(): LM-OTS signature too short")
	} else if uint64(len(b)) > params.SIG_LEN {
		return Signature{}, common.Errorf(common.BadInput, "SignatureFromBytes(): LM-OTS signature too long")
	}

	c := b[4 : 4+int(params.N)]
	cur := uint64(4 + params.N)

	y := make([][]byte, params.P)
	for i := uint64(0); i < params.P; i++ {
		y[i] = b[cur : cur+params.N]
		cur += params.N
	}

	return Signature{
		typecode: typecode,
		c:        c,
		y:        y,
	}, nil
}

// SignatureFromBytesLenient decodes b using the fixed LMOTS_SHA256_N32_W8
// shape unconditionally, without validating that the embedded typecode
// field is actually that value. It exists only for the LMS layer's
// signature decode: RFC 8554 requires that a tampered embedded ots_type be
// rejected as a verification failure, not a decode error, so the LMS
// decoder must be able to produce a Signature carrying whatever raw
// typecode value b contained and let Verify reject it structurally (it
// will, since Params() on a non-accepted typecode always errors).
func SignatureFromBytesLenient(b []byte) (Signature, error) {
	params, err := common.LMOTS_SHA256_N32_W8.Params()
	if err != nil {
		return Signature{}, err
	}
	if uint64(len(b)) != params.SIG_LEN {
		return Signature{}, common.Errorf(common.BadInput, "SignatureFromBytesLenient(): LM-OTS signature segment has unexpected length")
	}

	rawType := binary.BigEndian.Uint32(b[0:4])
	typecode := common.Uint32ToLmotsType(rawType)

	c := b[4 : 4+int(params.N)]
	cur := uint64(4 + params.N)

	y := make([][]byte, params.P)
	for i := uint64(0); i < params.P; i++ {
		y[i] = b[cur : cur+params.N]
		cur += params.N
	}

	return Signature{
		typecode: typecode,
		c:        c,
		y:        y,
	}, nil
}

// TypeValue returns the raw typecode value embedded in this signature,
// whether or not it is LMOTS_SHA256_N32_W8.
func (sig *Signature) TypeValue() uint32 {
	return sig.typecode.ToUint32()
}

// ToBytes serializes the LM-OTS signature into a byte string for transmission or storage.
func (sig *Signature) ToBytes() ([]byte, error) {
	var serialized []byte
	var u32_be [4]byte
	params, err := sig.typecode.Params()
	if err != nil {
		return nil, err
	}

	typecode, err := sig.typecode.LmsOtsType()
	if err != nil {
		return nil, err
	}
	binary.BigEndian.PutUint32(u32_be[:], typecode.ToUint32())
	serialized = append(serialized, u32_be[:]...)

	serialized = append(serialized, sig.c...)

	for i := uint64(0); i < params.P; i++ {
		serialized = append(serialized, sig.y[i]...)
	}

	return serialized, nil
}
