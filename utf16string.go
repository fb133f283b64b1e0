package ntfs

import (
	"unicode/utf16"
)

// decodeUtf16String decodes a UTF-16LE byte slice (as used by every variable-
// length name field in NTFS: $FILE_NAME, $VOLUME_NAME, attribute names,
// attribute-list entry names, reparse substitute/print names) into a Go
// string. An odd-length slice is truncated to the last whole code unit
// rather than treated as an error -- on-disk corruption here is common enough
// that callers (see mft_attribute.go's name decode) prefer a best-effort
// string over an aborted decode.
func decodeUtf16String(raw []byte) string {
	n := len(raw) / 2
	units := make([]uint16, n)

	for i := 0; i < n; i++ {
		units[i] = uint16(raw[i*2]) | uint16(raw[i*2+1])<<8
	}

	return string(utf16.Decode(units))
}

// encodeUtf16String is the inverse of decodeUtf16String, used by tests to
// round-trip names.
func encodeUtf16String(s string) []byte {
	units := utf16.Encode([]rune(s))
	raw := make([]byte, len(units)*2)

	for i, u := range units {
		raw[i*2] = byte(u)
		raw[i*2+1] = byte(u >> 8)
	}

	return raw
}
