package ntfs

import (
	"bytes"
	"reflect"

	"github.com/dsoprea/go-logging"
)

// mftEntryHeaderSizeShort is the 42-byte NTFS-1.2 header layout.
const mftEntryHeaderSizeShort = 42

// mftEntryHeaderSizeLong is the 48-byte NTFS-3.x header layout, which adds a
// 16-bit unknown field at offset 42 and a 32-bit record index at offset 44.
const mftEntryHeaderSizeLong = 48

// MftEntryHeader flag bits.
const (
	// MftEntryFlagInUse marks the record as allocated (bit 0).
	MftEntryFlagInUse = 1 << 0

	// MftEntryFlagHasIndex marks the record as a directory (bit 1).
	MftEntryFlagHasIndex = 1 << 1
)

var mftSignatureFile = []byte("FILE")
var mftSignatureBad = []byte("BAAD")

// MftEntryHeader is the decoded fixed-size header of one MFT record.
type MftEntryHeader struct {
	IsBad                   bool
	FixupValuesOffset       uint16
	NumberOfFixupValues     uint16
	JournalSequenceNumber   uint64
	Sequence                uint16
	ReferenceCount          uint16
	AttributesOffset        uint16
	Flags                   uint16
	UsedEntrySize           uint32
	TotalEntrySize          uint32
	BaseRecordFileReference FileReference
	Index                   uint32

	// headerSize is the layout size selected while decoding (42 or 48); it
	// is exposed via HeaderSize rather than left for callers to recompute.
	headerSize int
}

// HeaderSize returns the byte length of the header layout this record used
// (42 for NTFS-1.2, 48 for NTFS-3.x).
func (meh *MftEntryHeader) HeaderSize() int {
	return meh.headerSize
}

// IsInUse reports whether the in-use flag is set.
func (meh *MftEntryHeader) IsInUse() bool {
	return meh.Flags&MftEntryFlagInUse != 0
}

// HasIndex reports whether the has-index (directory) flag is set.
func (meh *MftEntryHeader) HasIndex() bool {
	return meh.Flags&MftEntryFlagHasIndex != 0
}

// ReadMftEntryHeader decodes the fixed-size header of one MFT record from
// buf. It returns no header and no error when the buffer's signature is
// "BAAD" (isBad true) or is unrecognised (isBad false); callers (MftEntry) use this to
// silently skip uninitialized or unreadable slots rather than aborting the
// scan.
func ReadMftEntryHeader(buf []byte) (meh *MftEntryHeader, isBad bool, err error) {
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

	if len(buf) < 2 {
		log.Panicf("mft entry header buffer too small: (%d) bytes", len(buf))
	}

	r := newBinReader(buf)

	fixupValuesOffset := r.Uint16(4)

	headerSize := mftEntryHeaderSizeShort
	if fixupValuesOffset > 42 {
		headerSize = mftEntryHeaderSizeLong
	}

	if len(buf) < headerSize {
		log.Panicf("mft entry header buffer (%d bytes) smaller than selected layout (%d bytes)", len(buf), headerSize)
	}

	signature := r.Read(0, 4)

	if bytes.Equal(signature, mftSignatureBad) == true {
		return nil, true, nil
	}

	if bytes.Equal(signature, mftSignatureFile) != true {
		return nil, false, nil
	}

	meh = &MftEntryHeader{
		headerSize:            headerSize,
		FixupValuesOffset:     fixupValuesOffset,
		NumberOfFixupValues:   r.Uint16(6),
		JournalSequenceNumber: r.Uint64(8),
		Sequence:              r.Uint16(16),
		ReferenceCount:        r.Uint16(18),
		AttributesOffset:      r.Uint16(20),
		Flags:                 r.Uint16(22),
		UsedEntrySize:         r.Uint32(24),
		TotalEntrySize:        r.Uint32(28),
		BaseRecordFileReference: FileReference(r.Uint64(32)),
	}

	if headerSize > mftEntryHeaderSizeShort {
		meh.Index = r.Uint32(44)
	}

	if uint16(headerSize) > meh.FixupValuesOffset {
		log.Panicf(
			"fix-up values offset (%d) precedes header layout size (%d)",
			meh.FixupValuesOffset, headerSize)
	}

	if uint16(headerSize) > meh.AttributesOffset {
		log.Panicf(
			"attributes offset (%d) precedes header layout size (%d)",
			meh.AttributesOffset, headerSize)
	}

	return meh, false, nil
}
