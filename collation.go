package ntfs

import (
	"strings"
)

// equalNameAscii compares an attribute/entry name against an ASCII literal
// case-insensitively, using strings.EqualFold (Unicode simple case folding,
// not NTFS's $UpCase table).
// Per this spec's design notes, a naive case fold is sufficient for the
// fixed set of ASCII-only names this package ever compares against ($I30,
// $TXF_DATA, WofCompressedData, $SDS); the full Windows NLS upcase table is
// not implemented because nothing here needs to collate arbitrary Unicode
// file names.
func equalNameAscii(name, literal string) bool {
	return strings.EqualFold(name, literal)
}
