package ntfs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildResidentAttribute assembles one resident attribute (header, optional
// name, then payload) ready to be concatenated into an MFT record's
// attribute area.
func buildResidentAttribute(attrType AttributeType, name string, data []byte, identifier uint16) []byte {
	const headerSize = 24

	var nameBytes []byte
	if name != "" {
		nameBytes = encodeUtf16String(name)
	}

	nameOffset := headerSize
	dataOffset := headerSize + len(nameBytes)
	total := dataOffset + len(data)

	buf := make([]byte, total)
	putU32(buf, 0, uint32(attrType))
	putU32(buf, 4, uint32(total))
	buf[8] = 0 // resident
	buf[9] = byte(len(name))
	putU16(buf, 10, uint16(nameOffset))
	putU16(buf, 12, 0) // data flags
	putU16(buf, 14, identifier)
	putU32(buf, 16, uint32(len(data)))
	putU16(buf, 20, uint16(dataOffset))
	buf[22] = 0
	buf[23] = 0

	copy(buf[nameOffset:], nameBytes)
	copy(buf[dataOffset:], data)

	return buf
}

// buildMftEntryRaw assembles one full MFT record using the 48-byte (long)
// header layout, placing attrsBytes at a fixed attributes offset and a
// terminator right after.
func buildMftEntryRaw(attrsBytes []byte, totalSize int, index uint64, sequence uint16, flags uint16) []byte {
	const attributesOffset = 56

	raw := make([]byte, totalSize)

	copy(raw[0:4], []byte("FILE"))
	putU16(raw, 4, 48) // fixup values offset == header size (long layout, no fixups)
	putU16(raw, 6, 0)  // number of fixup values
	// journal sequence number @8 left zero
	putU16(raw, 16, sequence)
	putU16(raw, 18, 1) // reference count
	putU16(raw, 20, attributesOffset)
	putU16(raw, 22, flags)
	putU32(raw, 24, uint32(totalSize)) // used entry size
	putU32(raw, 28, uint32(totalSize)) // total entry size
	// base record file reference @32 left zero (not an extension record)
	putU32(raw, 44, uint32(index))

	copy(raw[attributesOffset:], attrsBytes)

	end := attributesOffset + len(attrsBytes)
	putU32(raw, end, uint32(AttributeTypeTerminator))

	return raw
}

func testVolumeHeaderForEntries() *VolumeHeader {
	return &VolumeHeader{
		bytesPerSector:   512,
		clusterBlockSize: 512,
		mftEntrySize:     1024,
		indexEntrySize:   4096,
		mftOffset:        512 * 4,
		mirrorMftOffset:  512 * 8,
	}
}

func TestParseMftEntry_EmptyRecord(t *testing.T) {
	raw := make([]byte, 1024)

	entry, err := ParseMftEntry(nil, testVolumeHeaderForEntries(), raw, 7, true)
	require.NoError(t, err)

	assert.True(t, entry.IsEmpty)
	assert.Equal(t, uint64(7), entry.Index)
	assert.False(t, entry.IsAllocated())
}

func TestParseMftEntry_BadSignature(t *testing.T) {
	raw := make([]byte, 1024)
	copy(raw[0:4], []byte("BAAD"))
	raw[10] = 0x01 // break uniform-byte detection

	entry, err := ParseMftEntry(nil, testVolumeHeaderForEntries(), raw, 3, true)
	require.NoError(t, err)

	assert.True(t, entry.IsEmpty)
	assert.True(t, entry.IsCorrupted)
}

func TestParseMftEntry_StandardInformationAndFileName(t *testing.T) {
	siAttr := buildResidentAttribute(AttributeTypeStandardInformation, "", buildStandardInformationValue(), 0)
	fnAttr := buildResidentAttribute(AttributeTypeFileName, "", make([]byte, 66), 1)

	attrsBytes := append(append([]byte{}, siAttr...), fnAttr...)

	raw := buildMftEntryRaw(attrsBytes, 1024, 42, 3, MftEntryFlagInUse)

	entry, err := ParseMftEntry(nil, testVolumeHeaderForEntries(), raw, 42, true)
	require.NoError(t, err)

	assert.False(t, entry.IsEmpty)
	assert.False(t, entry.IsCorrupted)
	assert.True(t, entry.IsAllocated())
	assert.Equal(t, uint64(42), entry.Index)
	assert.Equal(t, uint16(3), entry.FileReference.Sequence())
	assert.Equal(t, 2, entry.NumberOfAttributes())

	si, err := entry.StandardInformationAttribute()
	require.NoError(t, err)
	assert.Equal(t, AttributeTypeStandardInformation, si.Type)

	fn, err := entry.FirstFileNameAttribute()
	require.NoError(t, err)
	assert.Equal(t, AttributeTypeFileName, fn.Type)

	_, err = entry.VolumeNameAttribute()
	assert.ErrorIs(t, err, ErrNotPresent)
}

func TestParseMftEntry_DuplicateStandardInformationIsError(t *testing.T) {
	siAttr := buildResidentAttribute(AttributeTypeStandardInformation, "", buildStandardInformationValue(), 0)
	attrsBytes := append(append([]byte{}, siAttr...), siAttr...)

	raw := buildMftEntryRaw(attrsBytes, 1024, 42, 1, MftEntryFlagInUse)

	_, err := ParseMftEntry(nil, testVolumeHeaderForEntries(), raw, 42, true)
	assert.Error(t, err)
}

func TestParseMftEntry_IndexRootI30MarksDirectory(t *testing.T) {
	irAttr := buildResidentAttribute(AttributeTypeIndexRoot, "$I30", []byte{0x01, 0x02}, 0)

	raw := buildMftEntryRaw(irAttr, 1024, 5, 1, MftEntryFlagInUse|MftEntryFlagHasIndex)

	entry, err := ParseMftEntry(nil, testVolumeHeaderForEntries(), raw, 5, true)
	require.NoError(t, err)

	assert.True(t, entry.HasDirectoryEntriesIndex())
}

func TestParseMftEntry_UnnamedDataAttribute(t *testing.T) {
	dataAttr := buildResidentAttribute(AttributeTypeData, "", []byte("hello"), 0)

	raw := buildMftEntryRaw(dataAttr, 1024, 10, 1, MftEntryFlagInUse)

	entry, err := ParseMftEntry(nil, testVolumeHeaderForEntries(), raw, 10, true)
	require.NoError(t, err)

	attr, err := entry.DataAttribute()
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), attr.ResidentData)

	assert.Equal(t, 0, entry.NumberOfAlternateDataAttributes())
}

func TestParseMftEntry_NamedDataAttributeIsAlternate(t *testing.T) {
	adsAttr := buildResidentAttribute(AttributeTypeData, "stream", []byte("ads"), 0)

	raw := buildMftEntryRaw(adsAttr, 1024, 11, 1, MftEntryFlagInUse)

	entry, err := ParseMftEntry(nil, testVolumeHeaderForEntries(), raw, 11, true)
	require.NoError(t, err)

	_, err = entry.DataAttribute()
	assert.ErrorIs(t, err, ErrNotPresent)

	require.Equal(t, 1, entry.NumberOfAlternateDataAttributes())

	ada, err := entry.AlternateDataAttributeByName("stream")
	require.NoError(t, err)
	assert.Equal(t, []byte("ads"), ada.ResidentData)

	_, err = entry.AlternateDataAttributeByName("nope")
	assert.ErrorIs(t, err, ErrNotPresent)
}

func TestParseMftEntry_WofCompressedAlternateStreamIsTracked(t *testing.T) {
	wofAttr := buildResidentAttribute(AttributeTypeData, "WofCompressedData", []byte("cc"), 0)

	raw := buildMftEntryRaw(wofAttr, 1024, 12, 1, MftEntryFlagInUse)

	entry, err := ParseMftEntry(nil, testVolumeHeaderForEntries(), raw, 12, true)
	require.NoError(t, err)

	attr, err := entry.WofCompressedDataAttribute()
	require.NoError(t, err)
	assert.Equal(t, []byte("cc"), attr.ResidentData)
}

func TestParseMftEntry_RecordIndexMismatchUsesCallerIndex(t *testing.T) {
	raw := buildMftEntryRaw(nil, 1024, 99, 1, MftEntryFlagInUse)

	entry, err := ParseMftEntry(nil, testVolumeHeaderForEntries(), raw, 123, true)
	require.NoError(t, err)

	assert.Equal(t, uint64(123), entry.Index)
}

func TestParseMftEntry_AttributesOffsetOutOfBoundsIsError(t *testing.T) {
	raw := make([]byte, 1024)
	copy(raw[0:4], []byte("FILE"))
	putU16(raw, 4, 48)
	putU16(raw, 6, 0)
	putU16(raw, 20, 2000) // attributes offset past end of record
	putU32(raw, 24, 1024)
	putU32(raw, 28, 1024)

	_, err := ParseMftEntry(nil, testVolumeHeaderForEntries(), raw, 1, true)
	assert.Error(t, err)
}

func TestAppendToChain_RequiresAscendingVcn(t *testing.T) {
	head := &MftAttribute{NonResident: true, DataFirstVcn: 0, DataLastVcn: 9}
	next := &MftAttribute{NonResident: true, DataFirstVcn: 5, DataLastVcn: 19}

	assert.Panics(t, func() {
		appendToChain(head, next)
	})
}

func TestAppendToChain_AcceptsContiguousRun(t *testing.T) {
	head := &MftAttribute{NonResident: true, DataFirstVcn: 0, DataLastVcn: 9}
	next := &MftAttribute{NonResident: true, DataFirstVcn: 10, DataLastVcn: 19}

	result := appendToChain(head, next)
	assert.Same(t, head, result)
	assert.Same(t, next, head.Next)
}

func TestCloneMftAttribute_DeepCopiesResidentData(t *testing.T) {
	original := &MftAttribute{
		Type:         AttributeTypeData,
		ResidentData: []byte{1, 2, 3},
		DataRuns:     []DataRun{{Offset: 1, Length: 2}},
	}

	clone := cloneMftAttribute(original)

	require.NotSame(t, &original.ResidentData, &clone.ResidentData)
	assert.Equal(t, original.ResidentData, clone.ResidentData)
	assert.Equal(t, original.DataRuns, clone.DataRuns)

	clone.ResidentData[0] = 0xff
	assert.Equal(t, byte(1), original.ResidentData[0])
}
