// Package common contains some data types and utilities used throughout
// the lms and ots packages.
//
// This file implements the fixed-width big-endian wire codec (encode_u /
// decode_u) used by every on-wire structure in this module.
package common

import "encoding/binary"

// EncodeUint writes n into out[:width] in big-endian (network) byte order.
// width must be 1, 2, or 4, and out must have length width; this is a
// caller precondition, not a checked error, matching the rest of the
// codec's contract.
func EncodeUint(n uint64, width int, out []byte) {
	switch width {
	case 1:
		out[0] = byte(n)
	case 2:
		binary.BigEndian.PutUint16(out, uint16(n))
	case 4:
		binary.BigEndian.PutUint32(out, uint32(n))
	default:
		panic("common.EncodeUint: width must be 1, 2, or 4")
	}
}

// DecodeUint reads a big-endian unsigned integer of the given width from
// in[:width].
func DecodeUint(width int, in []byte) uint64 {
	switch width {
	case 1:
		return uint64(in[0])
	case 2:
		return uint64(binary.BigEndian.Uint16(in))
	case 4:
		return uint64(binary.BigEndian.Uint32(in))
	default:
		panic("common.DecodeUint: width must be 1, 2, or 4")
	}
}

// EncodeUint32 appends the big-endian encoding of n to out.
func EncodeUint32(out []byte, n uint32) []byte {
	var buf [4]byte
	EncodeUint(uint64(n), 4, buf[:])
	return append(out, buf[:]...)
}

// DecodeUint32 reads a big-endian uint32 from the first 4 bytes of in.
func DecodeUint32(in []byte) uint32 {
	return uint32(DecodeUint(4, in))
}
