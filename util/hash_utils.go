package util

import (
	"github.com/OneOfOne/xxhash"
)

// Checksum hashes several byte ranges as if they were one contiguous slice.
func Checksum(parts ...[]byte) uint64 {
	h := xxhash.New64()
	for _, p := range parts {
		h.Write(p)
	}
	return h.Sum64()
}
