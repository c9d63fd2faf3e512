package common

import (
	"crypto/sha256"
	"hash"
	"io"
)

// ID is a fixed-length []byte used in LM-OTS and LMS.
type ID [ID_LEN]byte

type window uint8

const (
	WINDOW_W1 window = 1 << iota
	WINDOW_W2
	WINDOW_W4
	WINDOW_W8
)

// ByteWindow is the representation of bytes used in calculating LM-OTS signatures.
type ByteWindow interface {
	Window() window
	Mask() uint8
}

// Window returns the actual window value.
func (w window) Window() window {
	return w
}

// Mask returns a bit mask (uint8) to bitwise AND with some value.
func (w window) Mask() uint8 {
	switch w {
	case WINDOW_W1:
		return 0x01
	case WINDOW_W2:
		return 0x03
	case WINDOW_W4:
		return 0x0f
	case WINDOW_W8:
		return 0xff
	default:
		panic("invalid window")
	}
}

// RandReader is the RNG collaborator interface of section 6.4: anything
// that can fill a buffer with random bytes. crypto/rand.Reader satisfies it.
type RandReader = io.Reader

// lmsTypecode represents a typecode for LMS.
// See https://www.iana.org/assignments/leighton-micali-signatures/leighton-micali-signatures.xhtml#leighton-micali-signatures-1
//
// The full IANA registry is enumerated here so a rejected foreign code can
// be named precisely, but LmsParams only ever succeeds for
// LMS_SHA256_M32_H10: this module implements exactly one parameter set, a
// closed tagged variant that a future parameter set would widen rather than
// be bolted on as a runtime plug-in.
type lmsTypecode uint32

const (
	LMS_RESERVED       lmsTypecode = 0x00000000
	LMS_SHA256_M32_H5  lmsTypecode = 0x00000005
	LMS_SHA256_M32_H10 lmsTypecode = 0x00000006
	LMS_SHA256_M32_H15 lmsTypecode = 0x00000007
	LMS_SHA256_M32_H20 lmsTypecode = 0x00000008
	LMS_SHA256_M32_H25 lmsTypecode = 0x00000009
	LMS_SHA256_M24_H5  lmsTypecode = 0x0000000A
	LMS_SHA256_M24_H10 lmsTypecode = 0x0000000B
	LMS_SHA256_M24_H15 lmsTypecode = 0x0000000C
	LMS_SHA256_M24_H20 lmsTypecode = 0x0000000D
	LMS_SHA256_M24_H25 lmsTypecode = 0x0000000E
)

// lmotsTypecode represents a typecode for LM-OTS.
// See https://www.iana.org/assignments/leighton-micali-signatures/leighton-micali-signatures.xhtml#lm-ots-signatures
//
// As with lmsTypecode, only LMOTS_SHA256_N32_W8 is an accepted parameter
// set; the rest of the registry is retained as data.
type lmotsTypecode uint32

const (
	LMOTS_RESERVED      lmotsTypecode = 0x00000000
	LMOTS_SHA256_N32_W1 lmotsTypecode = 0x00000001
	LMOTS_SHA256_N32_W2 lmotsTypecode = 0x00000002
	LMOTS_SHA256_N32_W4 lmotsTypecode = 0x00000003
	LMOTS_SHA256_N32_W8 lmotsTypecode = 0x00000004
	LMOTS_SHA256_N24_W1 lmotsTypecode = 0x00000005
	LMOTS_SHA256_N24_W2 lmotsTypecode = 0x00000006
	LMOTS_SHA256_N24_W4 lmotsTypecode = 0x00000007
	LMOTS_SHA256_N24_W8 lmotsTypecode = 0x00000008
)

// LmsAlgorithmType represents a specific instance of LMS.
type LmsAlgorithmType interface {
	LmsType() (lmsTypecode, error)
	LmsParams() (LmsParam, error)
	ToUint32() uint32
}

// LmsOtsAlgorithmType represents a specific instance of LM-OTS.
type LmsOtsAlgorithmType interface {
	LmsOtsType() (lmotsTypecode, error)
	Params() (LmsOtsParam, error)
	ToUint32() uint32
}

// Hasher represents a streaming hash function.
type Hasher interface {
	New() hash.Hash
}

// Sha256Hasher is the Hasher used by this module's accepted parameter set.
type Sha256Hasher struct{}

func (Sha256Hasher) New() hash.Hash {
	return sha256.New()
}

// LmsParam represents the parameters for a given instance of the LMS algorithm.
type LmsParam struct {
	Hash Hasher // returns an instance of a hash function in streaming mode
	M    uint64 // number of bytes associated with each node
	H    uint64 // height of the tree
}

// LmsOtsParam represents the parameters for a given instance of the LM-OTS algorithm.
type LmsOtsParam struct {
	H       Hasher     // used for hashing
	N       uint64     // number of bytes of the output of H
	W       ByteWindow // width (in bits) of Winternitz coefficients
	P       uint64     // number of N-byte elements that make up the signature
	LS      uint64     // left-shift used in checksum calculation
	SIG_LEN uint64     // total byte length for a valid signature
}

// Uint32ToLmsType returns a lmsTypecode, given a uint32 of the same value.
func Uint32ToLmsType(x uint32) lmsTypecode {
	return lmsTypecode(x)
}

// ToUint32 returns a uint32 of the same value as the lmsTypecode.
func (x lmsTypecode) ToUint32() uint32 {
	return uint32(x)
}

// LmsType returns x if it is the one accepted LMS typecode; otherwise an error.
func (x lmsTypecode) LmsType() (lmsTypecode, error) {
	if x == LMS_SHA256_M32_H10 {
		return x, nil
	}
	return x, Errorf(BadInput, "LmsType(): unsupported LMS typecode 0x%08x, only LMS_SHA256_M32_H10 is accepted", uint32(x))
}

// LmsSigLength returns the expected signature length for an LMS type, given an associated LM-OTS type.
func (x lmsTypecode) LmsSigLength(otstc lmotsTypecode) (uint64, error) {
	params, err := x.LmsParams()
	if err != nil {
		return 0, err
	}
	otssiglen, err := otstc.LmsOtsSigLength()
	if err != nil {
		return 0, err
	}
	return uint64(TypeLen) + otssiglen + uint64(TypeLen) + (params.H * params.M), nil
}

// Uint32ToLmotsType returns a lmotsTypecode, given a uint32 of the same value.
func Uint32ToLmotsType(x uint32) lmotsTypecode {
	return lmotsTypecode(x)
}

// ToUint32 returns a uint32 of the same value as the lmotsTypecode.
func (x lmotsTypecode) ToUint32() uint32 {
	return uint32(x)
}

// LmsOtsType returns x if it is the one accepted LM-OTS typecode; otherwise an error.
func (x lmotsTypecode) LmsOtsType() (lmotsTypecode, error) {
	if x == LMOTS_SHA256_N32_W8 {
		return x, nil
	}
	return x, Errorf(BadInput, "LmsOtsType(): unsupported LM-OTS typecode 0x%08x, only LMOTS_SHA256_N32_W8 is accepted", uint32(x))
}

// LmsOtsSigLength returns the expected byte length of a given LM-OTS signature algorithm.
func (x lmotsTypecode) LmsOtsSigLength() (uint64, error) {
	params, err := x.Params()
	if err != nil {
		return 0, err
	}
	return params.SIG_LEN, nil
}

// LmsParams returns the LmsParam for x, which must be LMS_SHA256_M32_H10.
func (x lmsTypecode) LmsParams() (LmsParam, error) {
	if x != LMS_SHA256_M32_H10 {
		return LmsParam{}, Errorf(BadInput, "LmsParams(): unsupported LMS typecode 0x%08x", uint32(x))
	}
	return LmsParam{
		Hash: Sha256Hasher{},
		M:    M,
		H:    H,
	}, nil
}

// Params returns the LmsOtsParam for x, which must be LMOTS_SHA256_N32_W8.
func (x lmotsTypecode) Params() (LmsOtsParam, error) {
	if x != LMOTS_SHA256_N32_W8 {
		return LmsOtsParam{}, Errorf(BadInput, "Params(): unsupported LM-OTS typecode 0x%08x", uint32(x))
	}
	return LmsOtsParam{
		H:       Sha256Hasher{},
		N:       sha256.Size,
		W:       WINDOW_W8,
		P:       34,
		LS:      0,
		SIG_LEN: 1124,
	}, nil
}
