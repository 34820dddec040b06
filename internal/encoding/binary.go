// Package encoding provides binary encoding utilities for SMB protocol messages.
// All SMB2 messages use little-endian byte order; only the transport frame length
// is big-endian.
package encoding

import "encoding/binary"

// PutUint16LE writes a uint16 in little-endian format to the buffer.
func PutUint16LE(b []byte, v uint16) {
	binary.LittleEndian.PutUint16(b, v)
}

// PutUint32LE writes a uint32 in little-endian format to the buffer.
func PutUint32LE(b []byte, v uint32) {
	binary.LittleEndian.PutUint32(b, v)
}

// PutUint64LE writes a uint64 in little-endian format to the buffer.
func PutUint64LE(b []byte, v uint64) {
	binary.LittleEndian.PutUint64(b, v)
}

// Uint16LE reads a uint16 in little-endian format from the buffer.
func Uint16LE(b []byte) uint16 {
	return binary.LittleEndian.Uint16(b)
}

// Uint32LE reads a uint32 in little-endian format from the buffer.
func Uint32LE(b []byte) uint32 {
	return binary.LittleEndian.Uint32(b)
}

// Uint64LE reads a uint64 in little-endian format from the buffer.
func Uint64LE(b []byte) uint64 {
	return binary.LittleEndian.Uint64(b)
}

// LE16 returns v as a fresh 2-byte little-endian slice.
func LE16(v uint16) []byte {
	return binary.LittleEndian.AppendUint16(nil, v)
}

// LE32 returns v as a fresh 4-byte little-endian slice.
func LE32(v uint32) []byte {
	return binary.LittleEndian.AppendUint32(nil, v)
}

// LE64 returns v as a fresh 8-byte little-endian slice.
func LE64(v uint64) []byte {
	return binary.LittleEndian.AppendUint64(nil, v)
}

// PutUint24BE writes the low 24 bits of v big-endian into b[0:3].
func PutUint24BE(b []byte, v uint32) {
	b[0] = byte(v >> 16)
	b[1] = byte(v >> 8)
	b[2] = byte(v)
}

// Uint24BE reads a 24-bit big-endian value from b[0:3].
func Uint24BE(b []byte) uint32 {
	return uint32(b[0])<<16 | uint32(b[1])<<8 | uint32(b[2])
}

// Zeros returns a zero-filled buffer of length n.
func Zeros(n int) []byte {
	if n < 0 {
		n = 0
	}
	return make([]byte, n)
}
