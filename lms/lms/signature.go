// Package lms implements the LMS Merkle-tree composition layer.
//
// This file implements the Signature type, including wire (de)serialization
// (spec.md section 6.2).
package lms

import (
	"encoding/binary"

	"github.com/go-lms/lms/lms/common"
	"github.com/go-lms/lms/lms/ots"
)

// NewSignature returns a Signature, given an LMS algorithm type, internal
// counter, LM-OTS signature, and authentication path.
func NewSignature(tc common.LmsAlgorithmType, q uint32, otsig ots.Signature, path [][]byte) (Signature, error) {
	tc, err := tc.LmsType()
	if err != nil {
		return Signature{}, err
	}
	params, err := tc.LmsParams()
	if err != nil {
		return Signature{}, err
	}

	if q >= uint32(1)<<params.H {
		return Signature{}, common.Errorf(common.BadInput, "NewSignature(): q out of range")
	}
	if uint64(len(path)) != params.H {
		return Signature{}, common.Errorf(common.BadInput, "NewSignature(): wrong authentication path length")
	}

	return Signature{
		typecode: tc,
		q:        q,
		ots:      otsig,
		path:     path,
	}, nil
}

// SignatureFromBytes returns a Signature represented by b, the inverse of
// ToBytes. Per spec.md section 4.5.2 step 2, the only length-related
// rejection during decode is the exact total signature length; the
// embedded LMS and LM-OTS typecodes are decoded leniently (not validated)
// so that a tampered typecode surfaces as VerifyFailed from Verify, not a
// decode-time BadInput — RFC 8554 treats that as a verification failure,
// and spec.md's testable properties require it.
func SignatureFromBytes(b []byte) (Signature, error) {
	wantLen, err := common.LMS_SHA256_M32_H10.LmsSigLength(common.LMOTS_SHA256_N32_W8)
	if err != nil {
		return Signature{}, err
	}
	if uint64(len(b)) != wantLen {
		return Signature{}, common.Errorf(common.BadInput, "SignatureFromBytes(): signature has unexpected length")
	}

	otsSigLen, err := common.LMOTS_SHA256_N32_W8.LmsOtsSigLength()
	if err != nil {
		return Signature{}, err
	}

	q := binary.BigEndian.Uint32(b[0:4])

	otsSigEnd := uint64(4) + otsSigLen
	otsSig, err := ots.SignatureFromBytesLenient(b[4:otsSigEnd])
	if err != nil {
		return Signature{}, err
	}

	typeEnd := otsSigEnd + uint64(common.TypeLen)
	rawType := binary.BigEndian.Uint32(b[otsSigEnd:typeEnd])
	typecode := common.Uint32ToLmsType(rawType)

	path := make([][]byte, common.H)
	start := typeEnd
	for i := 0; i < common.H; i++ {
		end := start + common.M
		path[i] = b[start:end]
		start = end
	}

	return Signature{
		typecode: typecode,
		q:        q,
		ots:      otsSig,
		path:     path,
	}, nil
}

// ToBytes serializes the signature into a byte string for transmission or
// storage. A Signature decoded by SignatureFromBytes serializes back to the
// same bytes; if its embedded LMS or LM-OTS typecode is not the accepted
// one, ToBytes returns a BadInput error instead.
func (sig *Signature) ToBytes() ([]byte, error) {
	typecode, err := sig.typecode.LmsType()
	if err != nil {
		return nil, err
	}
	params, err := typecode.LmsParams()
	if err != nil {
		return nil, err
	}

	var serialized []byte
	var u32 [4]byte

	binary.BigEndian.PutUint32(u32[:], sig.q)
	serialized = append(serialized, u32[:]...)

	otsBytes, err := sig.ots.ToBytes()
	if err != nil {
		return nil, err
	}
	serialized = append(serialized, otsBytes...)

	binary.BigEndian.PutUint32(u32[:], typecode.ToUint32())
	serialized = append(serialized, u32[:]...)

	height := int(params.H)
	for i := 0; i < height; i++ {
		serialized = append(serialized, sig.path[i]...)
	}

	return serialized, nil
}

// Q returns the leaf index this signature consumed.
func (sig *Signature) Q() uint32 {
	return sig.q
}
