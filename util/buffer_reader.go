package util

import (
	"bytes"
	"math"
)

// Cursor style readers. Every reader returns the advanced cursor followed by
// the decoded value; all multi-byte values are little-endian.

func ReadBytes(buff []byte, cursor int, offset int) (int, []byte) {
	if offset <= 0 {
		return cursor, nil
	}
	return cursor + offset, buff[cursor : cursor+offset]
}

func ReadByte(buff []byte, cursor int) (int, byte) {
	return cursor + 1, buff[cursor]
}

func ReadUB2(buff []byte, cursor int) (int, uint16) {
	i := uint16(buff[cursor])
	i |= uint16(buff[cursor+1]) << 8
	return cursor + 2, i
}

func ReadUB4(buff []byte, cursor int) (int, uint32) {
	i := uint32(buff[cursor])
	i |= uint32(buff[cursor+1]) << 8
	i |= uint32(buff[cursor+2]) << 16
	i |= uint32(buff[cursor+3]) << 24
	return cursor + 4, i
}

// ReadInt4 reads a signed 32 bit value, so -1 sentinels survive the round trip.
func ReadInt4(buff []byte, cursor int) (int, int32) {
	cursor, u := ReadUB4(buff, cursor)
	return cursor, int32(u)
}

func ReadFloat4(buff []byte, cursor int) (int, float32) {
	cursor, u := ReadUB4(buff, cursor)
	return cursor, math.Float32frombits(u)
}

func ReadUB8(buff []byte, cursor int) (int, uint64) {
	i := uint64(buff[cursor])
	i |= uint64(buff[cursor+1]) << 8
	i |= uint64(buff[cursor+2]) << 16
	i |= uint64(buff[cursor+3]) << 24
	i |= uint64(buff[cursor+4]) << 32
	i |= uint64(buff[cursor+5]) << 40
	i |= uint64(buff[cursor+6]) << 48
	i |= uint64(buff[cursor+7]) << 56
	return cursor + 8, i
}

// ReadFixedString reads a left-justified field of exactly size bytes and
// drops the zero padding. The field is not null terminated.
func ReadFixedString(buff []byte, cursor int, size int) (int, string) {
	cursor, raw := ReadBytes(buff, cursor, size)
	return cursor, string(bytes.TrimRight(raw, "\x00"))
}
