package ntfs

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecodeUtf16String(t *testing.T) {
	raw := []byte{0x24, 0x00, 0x53, 0x00, 0x44, 0x00, 0x53, 0x00}
	assert.Equal(t, "$SDS", decodeUtf16String(raw))
}

func TestDecodeUtf16String_OddLengthTruncates(t *testing.T) {
	raw := []byte{0x41, 0x00, 0x42}
	assert.Equal(t, "A", decodeUtf16String(raw))
}

func TestEncodeDecodeUtf16String_RoundTrip(t *testing.T) {
	original := "Documents"
	encoded := encodeUtf16String(original)
	assert.Equal(t, original, decodeUtf16String(encoded))
}

func TestDecodeUtf16String_Empty(t *testing.T) {
	assert.Equal(t, "", decodeUtf16String(nil))
}
