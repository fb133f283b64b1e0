package ntfs

import (
	"reflect"

	"github.com/dsoprea/go-logging"
)

// AttributeType identifies the kind of an MftAttribute.
type AttributeType uint32

// Known attribute types. Values not in this list are still decoded (as an
// opaque attribute) but have no typed decoder.
const (
	AttributeTypeStandardInformation AttributeType = 0x10
	AttributeTypeAttributeList       AttributeType = 0x20
	AttributeTypeFileName            AttributeType = 0x30
	AttributeTypeObjectId            AttributeType = 0x40
	AttributeTypeSecurityDescriptor  AttributeType = 0x50
	AttributeTypeVolumeName          AttributeType = 0x60
	AttributeTypeVolumeInformation   AttributeType = 0x70
	AttributeTypeData                AttributeType = 0x80
	AttributeTypeIndexRoot           AttributeType = 0x90
	AttributeTypeIndexAllocation     AttributeType = 0xa0
	AttributeTypeBitmap              AttributeType = 0xb0
	AttributeTypeReparsePoint        AttributeType = 0xc0
	AttributeTypeEAInformation       AttributeType = 0xd0
	AttributeTypeEA                  AttributeType = 0xe0
	AttributeTypePropertySet         AttributeType = 0xf0
	AttributeTypeLoggedUtilityStream AttributeType = 0x100
	AttributeTypeTerminator          AttributeType = 0xffffffff
)

// Name returns the canonical "$..." name of a known attribute type, or
// "unknown" for anything this package doesn't recognize by number.
func (at AttributeType) Name() string {
	switch at {
	case AttributeTypeStandardInformation:
		return "$STANDARD_INFORMATION"
	case AttributeTypeAttributeList:
		return "$ATTRIBUTE_LIST"
	case AttributeTypeFileName:
		return "$FILE_NAME"
	case AttributeTypeObjectId:
		return "$OBJECT_ID"
	case AttributeTypeSecurityDescriptor:
		return "$SECURITY_DESCRIPTOR"
	case AttributeTypeVolumeName:
		return "$VOLUME_NAME"
	case AttributeTypeVolumeInformation:
		return "$VOLUME_INFORMATION"
	case AttributeTypeData:
		return "$DATA"
	case AttributeTypeIndexRoot:
		return "$INDEX_ROOT"
	case AttributeTypeIndexAllocation:
		return "$INDEX_ALLOCATION"
	case AttributeTypeBitmap:
		return "$BITMAP"
	case AttributeTypeReparsePoint:
		return "$REPARSE_POINT"
	case AttributeTypeEAInformation:
		return "$EA_INFORMATION"
	case AttributeTypeEA:
		return "$EA"
	case AttributeTypePropertySet:
		return "$PROPERTY_SET"
	case AttributeTypeLoggedUtilityStream:
		return "$LOGGED_UTILITY_STREAM"
	}

	return "unknown"
}

// Attribute data-flags bits.
const (
	AttributeDataFlagCompressed = 1 << 0
	AttributeDataFlagEncrypted  = 1 << 14
	AttributeDataFlagSparse     = 1 << 15
)

// DataRun is one extent of a non-resident attribute's content: `Length`
// clusters starting at logical cluster number `Offset`, or a sparse run (no
// allocated clusters) when IsSparse is true.
type DataRun struct {
	Offset   int64
	Length   uint64
	IsSparse bool
}

// MftAttribute is one decoded attribute header, covering both the resident
// and non-resident layouts. Attributes split across extension records are
// linked together via Next, in ascending VCN order, with Next pointing at
// the continuation.
type MftAttribute struct {
	Type        AttributeType
	NonResident bool
	Name        string
	DataFlags   uint16
	Identifier  uint16

	// Resident content, or nil for a non-resident attribute.
	ResidentData []byte
	IndexedFlag  bool

	// Non-resident fields; zero/nil for a resident attribute.
	DataFirstVcn        uint64
	DataLastVcn         uint64
	CompressionUnitSize uint32
	AllocatedDataSize   uint64
	DataSize            uint64
	ValidDataSize        uint64
	TotalDataSize       uint64
	DataRuns            []DataRun

	Next *MftAttribute
}

// IsCompressed reports whether the compressed data-flag bit is set.
func (ma *MftAttribute) IsCompressed() bool {
	return ma.DataFlags&AttributeDataFlagCompressed != 0
}

// IsEncrypted reports whether the encrypted data-flag bit is set.
func (ma *MftAttribute) IsEncrypted() bool {
	return ma.DataFlags&AttributeDataFlagEncrypted != 0
}

// IsSparse reports whether the sparse data-flag bit is set.
func (ma *MftAttribute) IsSparse() bool {
	return ma.DataFlags&AttributeDataFlagSparse != 0
}

// ParseMftAttributes decodes every attribute header in buf (the region of an
// MFT record starting at attributes_offset), stopping at the 0xffffffff
// terminator type or the end of buf, whichever comes first.
func ParseMftAttributes(buf []byte) (attrs []*MftAttribute, err error) {
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

	attrs = make([]*MftAttribute, 0)

	for len(buf) > 0 {
		if len(buf) < 4 {
			log.Panicf("attribute header truncated: (%d) bytes remain", len(buf))
		}

		r := newBinReader(buf)

		rawType := r.Uint32(0)
		if rawType == uint32(AttributeTypeTerminator) {
			break
		}

		if len(buf) < 8 {
			log.Panicf("attribute header truncated before size field: (%d) bytes remain", len(buf))
		}

		size := r.Uint32(4)
		if size == 0 {
			log.Panicf("attribute size must not be zero")
		}

		if uint64(size) > uint64(len(buf)) {
			log.Panicf("attribute size (%d) exceeds remaining record bounds (%d)", size, len(buf))
		}

		attribute, err := parseOneMftAttribute(r.Read(0, int(size)))
		log.PanicIf(err)

		attrs = append(attrs, attribute)

		buf = r.ReadFrom(int(size))
	}

	return attrs, nil
}

// parseOneMftAttribute decodes a single attribute (header, name, and either
// its resident payload or its data-run list) from its own record slice.
func parseOneMftAttribute(buf []byte) (ma *MftAttribute, err error) {
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

	if len(buf) < 16 {
		log.Panicf("attribute data too small to hold a header: (%d) bytes", len(buf))
	}

	r := newBinReader(buf)

	nonResident := r.Byte(8) != 0x00
	nameSize := int(r.Byte(9))
	nameOffset := int(r.Uint16(10))

	name := ""
	if nameSize > 0 {
		name = decodeUtf16String(r.Read(nameOffset, nameSize*2))
	}

	ma = &MftAttribute{
		Type:        AttributeType(r.Uint32(0)),
		NonResident: nonResident,
		Name:        name,
		DataFlags:   r.Uint16(12),
		Identifier:  r.Uint16(14),
	}

	if nonResident != true {
		dataSize := int(r.Uint32(16))
		dataOffset := int(r.Uint16(20))

		if dataOffset+dataSize > len(buf) {
			log.Panicf(
				"resident attribute data (offset=(%d) size=(%d)) exceeds attribute bounds (%d)",
				dataOffset, dataSize, len(buf))
		}

		ma.ResidentData = duplicate(r.Read(dataOffset, dataSize))
		ma.IndexedFlag = r.Byte(22) != 0x00

		return ma, nil
	}

	if len(buf) < 0x40 {
		log.Panicf("non-resident attribute header truncated: (%d) bytes", len(buf))
	}

	ma.DataFirstVcn = r.Uint64(0x10)
	ma.DataLastVcn = r.Uint64(0x18)
	dataRunsOffset := int(r.Uint16(0x20))

	if compressionUnitExponent := r.Uint16(0x22); compressionUnitExponent != 0 {
		ma.CompressionUnitSize = uint32(1) << compressionUnitExponent
	}

	ma.AllocatedDataSize = r.Uint64(0x28)
	ma.DataSize = r.Uint64(0x30)
	ma.ValidDataSize = r.Uint64(0x38)

	if ma.IsCompressed() || ma.IsSparse() {
		if len(buf) < 0x48 {
			log.Panicf("compressed/sparse non-resident attribute missing total-size field")
		}

		ma.TotalDataSize = r.Uint64(0x40)
	}

	if dataRunsOffset > len(buf) {
		log.Panicf("data-runs offset (%d) exceeds attribute bounds (%d)", dataRunsOffset, len(buf))
	}

	dataRuns, err := parseDataRuns(r.ReadFrom(dataRunsOffset))
	log.PanicIf(err)

	ma.DataRuns = dataRuns

	return ma, nil
}

// parseDataRuns decodes the compressed data-run list of a non-resident
// attribute: a sequence of (header byte, length bytes, offset bytes)
// triples terminated by a zero header byte. The offset field is a signed,
// sign-extended value relative to the previous run's absolute LCN (the first
// run is relative to zero); a zero-length offset field marks a sparse run.
func parseDataRuns(buf []byte) (runs []DataRun, err error) {
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

	runs = make([]DataRun, 0)

	var runningOffset int64

	for len(buf) > 0 {
		r := newBinReader(buf)

		header := r.Byte(0)
		if header == 0 {
			break
		}

		lengthFieldSize := int(header & 0x0f)
		offsetFieldSize := int(header >> 4)

		if lengthFieldSize < 1 || lengthFieldSize > 8 {
			log.Panicf("data run (header=0x%02x) has invalid length field size: (%d)", header, lengthFieldSize)
		}

		if offsetFieldSize > 8 {
			log.Panicf("data run (header=0x%02x) has invalid offset field size: (%d)", header, offsetFieldSize)
		}

		totalFieldSize := 1 + lengthFieldSize + offsetFieldSize
		if totalFieldSize > len(buf) {
			log.Panicf("data run (header=0x%02x) extends past its buffer (len=%d)", header, len(buf))
		}

		length := decodeUnsignedRunField(r.Read(1, lengthFieldSize))

		isSparse := offsetFieldSize == 0
		var offset int64

		if isSparse != true {
			offset = decodeSignedRunField(r.Read(1+lengthFieldSize, offsetFieldSize))
			runningOffset += offset
		}

		runs = append(runs, DataRun{
			Offset:   runningOffset,
			Length:   length,
			IsSparse: isSparse,
		})

		buf = r.ReadFrom(totalFieldSize)
	}

	return runs, nil
}

// decodeUnsignedRunField decodes a little-endian, variable-width unsigned
// data-run length field.
func decodeUnsignedRunField(raw []byte) uint64 {
	var v uint64

	for i := len(raw) - 1; i >= 0; i-- {
		v = (v << 8) | uint64(raw[i])
	}

	return v
}

// decodeSignedRunField decodes a little-endian, variable-width two's-
// complement data-run offset field, sign-extending from the most significant
// byte present.
func decodeSignedRunField(raw []byte) int64 {
	if len(raw) == 0 {
		return 0
	}

	var v uint64

	for i := len(raw) - 1; i >= 0; i-- {
		v = (v << 8) | uint64(raw[i])
	}

	if raw[len(raw)-1]&0x80 != 0 {
		for shift := len(raw); shift < 8; shift++ {
			v |= uint64(0xff) << (8 * shift)
		}
	}

	return int64(v)
}
