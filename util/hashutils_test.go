package util

import (
	"testing"

	"github.com/OneOfOne/xxhash"
	"github.com/smartystreets/assertions"
)

func TestChecksumConcatenates(t *testing.T) {
	a := assertions.New(t)
	whole := Checksum([]byte("table info"))
	a.So(Checksum([]byte("table "), []byte("info")), assertions.ShouldEqual, whole)
	a.So(xxhash.Checksum64([]byte("table info")), assertions.ShouldEqual, whole)
	a.So(Checksum([]byte("page-1")), assertions.ShouldNotEqual, Checksum([]byte("page-2")))
}
