package ntfs

import (
	"fmt"
)

// fileReferenceEntryMask isolates the low 48 bits of a FileReference that
// name an MFT entry index.
const fileReferenceEntryMask = 0x0000ffffffffffff

// FileReference identifies an MFT record: the low 48 bits are the entry
// index, the high 16 bits are a sequence number incremented each time the
// slot is reused. Equality and lookups only ever consider the entry index;
// the sequence number is carried so callers can detect a stale reference
// (see ErrStaleFileReference).
type FileReference uint64

// NewFileReference builds a FileReference from a separate entry index and
// sequence number.
func NewFileReference(entryIndex uint64, sequence uint16) FileReference {
	return FileReference((entryIndex & fileReferenceEntryMask) | (uint64(sequence) << 48))
}

// EntryIndex returns the 48-bit MFT entry index this reference names.
func (fr FileReference) EntryIndex() uint64 {
	return uint64(fr) & fileReferenceEntryMask
}

// Sequence returns the 16-bit sequence number.
func (fr FileReference) Sequence() uint16 {
	return uint16(uint64(fr) >> 48)
}

// String renders the reference as "entry-sequence", e.g. "5-1".
func (fr FileReference) String() string {
	return fmt.Sprintf("%d-%d", fr.EntryIndex(), fr.Sequence())
}
