package ntfs

import (
	"time"

	"github.com/dsoprea/go-logging"
)

// FileAttributeFlags mirrors the Windows FILE_ATTRIBUTE_* bit values stored
// in $STANDARD_INFORMATION and $FILE_NAME.
type FileAttributeFlags uint32

const (
	FileAttributeReadOnly          FileAttributeFlags = 0x0001
	FileAttributeHidden            FileAttributeFlags = 0x0002
	FileAttributeSystem            FileAttributeFlags = 0x0004
	FileAttributeArchive           FileAttributeFlags = 0x0020
	FileAttributeDevice            FileAttributeFlags = 0x0040
	FileAttributeNormal            FileAttributeFlags = 0x0080
	FileAttributeTemporary         FileAttributeFlags = 0x0100
	FileAttributeSparseFile        FileAttributeFlags = 0x0200
	FileAttributeReparsePoint      FileAttributeFlags = 0x0400
	FileAttributeCompressed        FileAttributeFlags = 0x0800
	FileAttributeOffline           FileAttributeFlags = 0x1000
	FileAttributeNotContentIndexed FileAttributeFlags = 0x2000
	FileAttributeEncrypted         FileAttributeFlags = 0x4000
)

// ntfsEpoch is the origin of Windows FILETIME values: midnight, January 1,
// 1601 UTC.
var ntfsEpoch = time.Date(1601, time.January, 1, 0, 0, 0, 0, time.UTC)

// convertFileTime converts a 64-bit Windows FILETIME (100-nanosecond
// intervals since ntfsEpoch) to a time.Time. The value is added to the
// epoch as 100 steps of timeValue nanoseconds each rather than scaled
// directly, because
// timeValue*100 overflows an int64 nanosecond count for valid dates well
// within the range NTFS actually uses, while time.Time's internal
// representation does not.
func convertFileTime(timeValue uint64) time.Time {
	t := ntfsEpoch
	step := time.Duration(int64(timeValue))

	for i := 0; i < 100; i++ {
		t = t.Add(step)
	}

	return t
}

// StandardInformationValues is the decoded $STANDARD_INFORMATION attribute:
// file timestamps, attribute flags, and (in the NTFS 3.x extension) quota
// and security bookkeeping.
type StandardInformationValues struct {
	CreationTime           time.Time
	LastModificationTime   time.Time
	LastMftChangeTime      time.Time
	LastAccessTime         time.Time
	FileAttributeFlags     FileAttributeFlags
	MaximumNumberOfVersions uint32
	VersionNumber          uint32
	ClassIdentifier        uint32
	OwnerIdentifier        uint32
	SecurityIdentifier     uint32
	QuotaCharged           uint64
	UpdateSequenceNumber   uint64
}

// IsCaseSensitive is a best-effort, derived signal for whether the file was
// created with case-sensitive name lookup: true iff MaximumNumberOfVersions
// is 0 and VersionNumber is 1. Neither field is documented as carrying this
// meaning; NTFS.sys is observed to write exactly this combination for
// case-sensitive files, so it is not a decoded field.
func (siv *StandardInformationValues) IsCaseSensitive() bool {
	return siv.MaximumNumberOfVersions == 0 && siv.VersionNumber == 1
}

// ReadStandardInformationValues decodes a $STANDARD_INFORMATION attribute.
// The NTFS 3.x fields (owner/security id, quota, USN) are optional; when
// the resident payload is the older, shorter 48-byte form, they read back
// as zero.
func ReadStandardInformationValues(attr *MftAttribute) (siv *StandardInformationValues, err error) {
	defer func() {
		if errRaw := recover(); errRaw != nil {
			var ok bool
			if err, ok = errRaw.(error); ok == true {
				err = log.Wrap(err)
			} else {
				err = log.Errorf("Error not an error: [%v]", errRaw)
			}
		}
	}()

	if attr.Type != AttributeTypeStandardInformation {
		log.Panicf("attribute is not $STANDARD_INFORMATION: %s", attr.Type.Name())
	}

	if attr.NonResident == true {
		log.Panicf("$STANDARD_INFORMATION must be resident")
	}

	buf := attr.ResidentData
	if len(buf) != 48 && len(buf) != 72 {
		log.Panicf("$STANDARD_INFORMATION value has unsupported size: (%d) bytes, expected 48 or 72", len(buf))
	}

	r := newBinReader(buf)

	siv = &StandardInformationValues{
		CreationTime:            convertFileTime(r.Uint64(0x00)),
		LastModificationTime:    convertFileTime(r.Uint64(0x08)),
		LastMftChangeTime:       convertFileTime(r.Uint64(0x10)),
		LastAccessTime:          convertFileTime(r.Uint64(0x18)),
		FileAttributeFlags:      FileAttributeFlags(r.Uint32(0x20)),
		MaximumNumberOfVersions: r.Uint32(0x24),
		VersionNumber:           r.Uint32(0x28),
		ClassIdentifier:         r.Uint32(0x2c),
	}

	if len(buf) >= 0x30+4 {
		siv.OwnerIdentifier = r.Uint32(0x30)
	}

	if len(buf) >= 0x34+4 {
		siv.SecurityIdentifier = r.Uint32(0x34)
	}

	if len(buf) >= 0x38+8 {
		siv.QuotaCharged = r.Uint64(0x38)
	}

	if len(buf) >= 0x40+8 {
		siv.UpdateSequenceNumber = r.Uint64(0x40)
	}

	return siv, nil
}
