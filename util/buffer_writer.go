package util

import "math"

// Append style writers, mirroring the cursor readers in buffer_reader.go.

func WriteByte(buf []byte, b byte) []byte {
	return append(buf, b)
}

func WriteBytes(buf []byte, from []byte) []byte {
	return append(buf, from...)
}

func WriteUB2(buf []byte, i uint16) []byte {
	buf = append(buf, byte(i&0xFF))
	buf = append(buf, byte((i>>8)&0xFF))
	return buf
}

func WriteUB4(buf []byte, i uint32) []byte {
	buf = append(buf, byte(i&0xFF))
	buf = append(buf, byte((i>>8)&0xFF))
	buf = append(buf, byte((i>>16)&0xFF))
	buf = append(buf, byte((i>>24)&0xFF))
	return buf
}

func WriteInt4(buf []byte, i int32) []byte {
	return WriteUB4(buf, uint32(i))
}

func WriteFloat4(buf []byte, f float32) []byte {
	return WriteUB4(buf, math.Float32bits(f))
}

func WriteUB8(buf []byte, i uint64) []byte {
	buf = append(buf, byte(i&0xFF))
	buf = append(buf, byte((i>>8)&0xFF))
	buf = append(buf, byte((i>>16)&0xFF))
	buf = append(buf, byte((i>>24)&0xFF))
	buf = append(buf, byte((i>>32)&0xFF))
	buf = append(buf, byte((i>>40)&0xFF))
	buf = append(buf, byte((i>>48)&0xFF))
	buf = append(buf, byte((i>>56)&0xFF))
	return buf
}

// WriteFixedString appends s left-justified into a field of exactly size
// bytes. Longer input is cut, shorter input is padded with zero bytes.
func WriteFixedString(buf []byte, s string, size int) []byte {
	field := make([]byte, size)
	copy(field, s)
	return append(buf, field...)
}

// PutUB4 overwrites four bytes at offset in place.
func PutUB4(buf []byte, offset int, i uint32) {
	_ = buf[offset+3]
	buf[offset] = byte(i & 0xFF)
	buf[offset+1] = byte((i >> 8) & 0xFF)
	buf[offset+2] = byte((i >> 16) & 0xFF)
	buf[offset+3] = byte((i >> 24) & 0xFF)
}

func PutInt4(buf []byte, offset int, i int32) {
	PutUB4(buf, offset, uint32(i))
}
