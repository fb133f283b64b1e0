package ntfs

import (
	"github.com/dsoprea/go-logging"
)

// Well-known reparse point tags. Only the tags this package's typed decoder
// interprets are named; any other tag is carried as opaque TargetData.
const (
	ReparseTagMountPoint     uint32 = 0xa0000003
	ReparseTagSymbolicLink   uint32 = 0xa000000c
	ReparseTagWofCompressed  uint32 = 0x80000017
)

// reparsePointHeaderSize is the size of the fixed tag/size/padding header
// that precedes the tag-specific reparse data.
const reparsePointHeaderSize = 8

// mountPointReparseDataSize and symbolicLinkReparseDataSize are the sizes of
// the tag-specific sub-headers that precede the substitute/print name pairs.
const (
	mountPointReparseDataSize   = 8
	symbolicLinkReparseDataSize = 12
)

// ReparsePointValues is the decoded $REPARSE_POINT attribute. SubstituteName
// and PrintName are populated for the mount-point and symbolic-link tags;
// CompressionMethod is populated for the WOF-compressed tag. Any other tag
// leaves those fields empty and TargetData holds the raw reparse data.
type ReparsePointValues struct {
	Tag               uint32
	SubstituteName    string
	PrintName         string
	SymbolicLinkFlags uint32
	CompressionMethod uint32
	TargetData        []byte
}

// IsMountPoint reports whether this is a directory junction / mount point.
func (rpv *ReparsePointValues) IsMountPoint() bool {
	return rpv.Tag == ReparseTagMountPoint
}

// IsSymbolicLink reports whether this is an NTFS symbolic link.
func (rpv *ReparsePointValues) IsSymbolicLink() bool {
	return rpv.Tag == ReparseTagSymbolicLink
}

// IsWofCompressed reports whether this reparse point marks a Windows
// Overlay Filesystem compressed file.
func (rpv *ReparsePointValues) IsWofCompressed() bool {
	return rpv.Tag == ReparseTagWofCompressed
}

// ReadReparsePointValues decodes a $REPARSE_POINT attribute.
func ReadReparsePointValues(attr *MftAttribute) (rpv *ReparsePointValues, err error) {
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

	if attr.Type != AttributeTypeReparsePoint {
		log.Panicf("attribute is not $REPARSE_POINT: %s", attr.Type.Name())
	}

	if attr.NonResident == true {
		log.Panicf("$REPARSE_POINT must be resident")
	}

	buf := attr.ResidentData
	if len(buf) < reparsePointHeaderSize {
		log.Panicf("$REPARSE_POINT value too small: (%d) bytes, need at least (%d)", len(buf), reparsePointHeaderSize)
	}

	r := newBinReader(buf)

	tag := r.Uint32(0)
	reparseDataSize := int(r.Uint16(4))

	if reparsePointHeaderSize+reparseDataSize > len(buf) {
		log.Panicf("$REPARSE_POINT data size (%d) exceeds attribute value size (%d)", reparseDataSize, len(buf)-reparsePointHeaderSize)
	}

	reparseData := buf[reparsePointHeaderSize : reparsePointHeaderSize+reparseDataSize]

	rpv = &ReparsePointValues{
		Tag:        tag,
		TargetData: reparseData,
	}

	switch tag {
	case ReparseTagWofCompressed:
		if len(reparseData) < 16 {
			log.Panicf("WOF $REPARSE_POINT data too small: (%d) bytes, need at least 16", len(reparseData))
		}

		rpv.CompressionMethod = newBinReader(reparseData).Uint32(12)

	case ReparseTagMountPoint:
		decodeNamePairReparseData(rpv, reparseData, mountPointReparseDataSize)

	case ReparseTagSymbolicLink:
		decodeNamePairReparseData(rpv, reparseData, symbolicLinkReparseDataSize)

		if len(reparseData) >= symbolicLinkReparseDataSize {
			rpv.SymbolicLinkFlags = newBinReader(reparseData).Uint32(8)
		}
	}

	return rpv, nil
}

// decodeNamePairReparseData decodes the substitute/print name offset-size
// pairs shared by the mount-point and symbolic-link reparse data layouts.
// subHeaderSize is the size of the tag-specific sub-header that precedes
// the name data; the name offsets are relative to the end of that
// sub-header (i.e. they index reparseData[subHeaderSize:]).
func decodeNamePairReparseData(rpv *ReparsePointValues, reparseData []byte, subHeaderSize int) {
	if len(reparseData) < subHeaderSize {
		return
	}

	r := newBinReader(reparseData)

	substituteNameOffset := int(r.Uint16(0))
	substituteNameSize := int(r.Uint16(2))
	printNameOffset := int(r.Uint16(4))
	printNameSize := int(r.Uint16(6))

	nameData := reparseData[subHeaderSize:]

	if substituteNameOffset+substituteNameSize <= len(nameData) {
		rpv.SubstituteName = decodeUtf16String(nameData[substituteNameOffset : substituteNameOffset+substituteNameSize])
	}

	if printNameOffset+printNameSize <= len(nameData) {
		rpv.PrintName = decodeUtf16String(nameData[printNameOffset : printNameOffset+printNameSize])
	}
}
