// This package manages the low-level, on-disk storage structures.

package ntfs

import (
	"encoding/binary"

	"github.com/dsoprea/go-logging"
)

// binReader helps read fields from a byte slice using an offset and a length
// instead of two offsets (as with a slice expression). Methods panic (via
// log.Panicf) when an offset or length falls outside of the underlying data;
// callers at package boundaries recover and translate the panic into a
// regular error, per this package's prevailing idiom.
type binReader struct {
	data []byte
	bo   binary.ByteOrder
}

// defaultByteOrder is the byte order every on-disk NTFS structure in this
// package is decoded with, including the fixed-layout structs handed to
// restruct.Unpack.
var defaultByteOrder binary.ByteOrder = binary.LittleEndian

// newBinReader returns a binReader over data using binary.LittleEndian, which
// is the byte-order NTFS uses for every on-disk structure this package
// decodes.
func newBinReader(data []byte) *binReader {
	return &binReader{
		data: data,
		bo:   binary.LittleEndian,
	}
}

// Len returns the length of the underlying data.
func (br *binReader) Len() int {
	return len(br.data)
}

func (br *binReader) checkBounds(offset, length int) {
	if offset < 0 || length < 0 || offset+length > len(br.data) {
		log.Panicf(
			"binReader: out of bounds: offset=(%d) length=(%d) data-len=(%d)",
			offset, length, len(br.data))
	}
}

// Read returns `length` bytes starting at `offset`.
func (br *binReader) Read(offset, length int) []byte {
	br.checkBounds(offset, length)
	return br.data[offset : offset+length]
}

// ReadFrom returns all bytes starting at `offset`.
func (br *binReader) ReadFrom(offset int) []byte {
	br.checkBounds(offset, 0)
	return br.data[offset:]
}

// Byte returns the byte at `offset`.
func (br *binReader) Byte(offset int) byte {
	return br.Read(offset, 1)[0]
}

// Uint16 reads a little-endian uint16 at `offset`.
func (br *binReader) Uint16(offset int) uint16 {
	return br.bo.Uint16(br.Read(offset, 2))
}

// Uint32 reads a little-endian uint32 at `offset`.
func (br *binReader) Uint32(offset int) uint32 {
	return br.bo.Uint32(br.Read(offset, 4))
}

// Uint64 reads a little-endian uint64 at `offset`.
func (br *binReader) Uint64(offset int) uint64 {
	return br.bo.Uint64(br.Read(offset, 8))
}

// Int8 reads a signed byte at `offset`.
func (br *binReader) Int8(offset int) int8 {
	return int8(br.Byte(offset))
}

// duplicate creates a full copy of the input byte slice.
func duplicate(in []byte) []byte {
	out := make([]byte, len(in))
	copy(out, in)
	return out
}

// isOnlyOneValue returns true when every byte in data equals the first byte
// (used to recognize an uninitialized/cleared MFT record, whatever filler
// value it was zeroed with).
func isOnlyOneValue(data []byte) bool {
	if len(data) == 0 {
		return true
	}

	first := data[0]
	for _, b := range data[1:] {
		if b != first {
			return false
		}
	}

	return true
}
