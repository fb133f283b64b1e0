package ntfs

import (
	"bytes"
	"reflect"

	"github.com/dsoprea/go-logging"
)

// sectorSize is the fixed sector size the update-sequence-array fix-up
// transform operates over. NTFS always fixes up in 512-byte units regardless
// of the volume's actual bytes-per-sector.
const sectorSize = 512

// FixupApplier reverses the per-sector update-sequence fix-up transform
// applied to every multi-sector on-disk record (MFT entries and index
// records). NTFS writes the last two bytes of each 512-byte sector as a
// "placeholder" value and stashes the real trailing bytes in a small array at
// the head of the record; this lets a reader detect a torn write (only some
// sectors of the record made it to disk) by checking that every sector still
// ends in the placeholder before the values are restored.
type FixupApplier struct{}

// NewFixupApplier returns a FixupApplier. It carries no state; the type
// exists so the operation reads as a named component, matching how this
// package structures its other single-operation decoders.
func NewFixupApplier() *FixupApplier {
	return &FixupApplier{}
}

// Apply reverses the fix-up transform in buf in place. fixupOffset is the
// byte offset (within buf) of the update-sequence array; fixupCount is the
// number of 2-byte values in that array, including the leading placeholder.
//
// placeholderMismatch is true when one or more sector tails did not equal the
// placeholder before being overwritten -- a sign of a torn write or other
// corruption. It is reported only through this return value (ParseMftEntry
// sets IsCorrupted from it; nothing is logged) and is not itself a failure: per this spec's
// propagation policy, the caller's own downstream validation (record
// signatures, attribute bounds) is what actually catches corruption; Apply
// restores the bytes regardless so the decode can proceed best-effort.
func (fa *FixupApplier) Apply(buf []byte, fixupOffset int, fixupCount int) (placeholderMismatch bool, err error) {
	defer func() {
		if errRaw := recover(); errRaw != nil {
			var ok bool
			if err, ok = errRaw.(error); ok == true {
				err = log.Wrap(err)
			} else {
				err = log.Errorf("Error not an error: [%s] [%v]", reflect.TypeOf(errRaw).Name(), errRaw)
			}
		}
	}()

	if fixupOffset < 0 || fixupOffset >= len(buf) {
		log.Panicf("fixup offset (%d) is outside of record (len=%d)", fixupOffset, len(buf))
	}

	if fixupCount <= 0 {
		log.Panicf("fixup count must be positive, got (%d)", fixupCount)
	}

	arrayByteCount := 2 + 2*fixupCount
	if arrayByteCount > len(buf)-fixupOffset {
		log.Panicf(
			"fixup array (offset=(%d) count=(%d)) extends past record (len=%d)",
			fixupOffset, fixupCount, len(buf))
	}

	sectorCount := fixupCount - 1
	if sectorCount <= 0 {
		log.Panicf("fixup count (%d) implies zero sectors to fix up", fixupCount)
	}

	if (sectorCount-1)*sectorSize+sectorSize > len(buf) {
		log.Panicf(
			"record (len=%d) is too small for (%d) fixed-up sectors",
			len(buf), sectorCount)
	}

	r := newBinReader(buf)
	placeholder := r.Read(fixupOffset, 2)
	values := r.Read(fixupOffset+2, 2*sectorCount)

	for i := 0; i < sectorCount; i++ {
		tailOffset := (i+1)*sectorSize - 2
		if bytes.Equal(buf[tailOffset:tailOffset+2], placeholder) != true {
			placeholderMismatch = true
		}

		copy(buf[tailOffset:tailOffset+2], values[i*2:i*2+2])
	}

	return placeholderMismatch, nil
}
