package ntfs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func putU64Test(buf []byte, offset int, v uint64) {
	for i := 0; i < 8; i++ {
		buf[offset+i] = byte(v >> (8 * i))
	}
}

// buildNonResidentDataAttribute assembles a minimal non-resident $DATA
// attribute carrying a single data run, as the $MFT's own record 0 attribute
// that points OpenVolume at the rest of the MFT.
func buildNonResidentDataAttribute(lcnOffset, lengthInClusters uint64) []byte {
	const headerSize = 0x40

	dataRuns := []byte{0x11, byte(lengthInClusters), byte(lcnOffset), 0x00}

	buf := make([]byte, headerSize+len(dataRuns))

	putU32(buf, 0, uint32(AttributeTypeData))
	putU32(buf, 4, uint32(len(buf)))
	buf[8] = 1 // non-resident
	buf[9] = 0 // name size
	putU16(buf, 10, 0)
	putU16(buf, 12, 0)
	putU16(buf, 14, 0)

	putU64Test(buf, 0x10, 0)                       // first VCN
	putU64Test(buf, 0x18, lengthInClusters-1)      // last VCN
	putU16(buf, 0x20, headerSize)                  // data runs offset
	putU16(buf, 0x22, 0)                           // compression unit
	putU64Test(buf, 0x28, lengthInClusters*512)    // allocated size
	putU64Test(buf, 0x30, lengthInClusters*512)    // data size
	putU64Test(buf, 0x38, lengthInClusters*512)    // valid data size

	copy(buf[headerSize:], dataRuns)

	return buf
}

// buildTestVolumeImage lays out a minimal but structurally valid NTFS volume
// in memory: a 512-byte boot sector, the $MFT's own record at its declared
// offset (pointing, via a single data run, at a small run of MFT-sized
// clusters), and a root-directory ($I30) record at MFT index 5 within that
// run.
func buildTestVolumeImage(t *testing.T) []byte {
	t.Helper()

	const (
		bytesPerSector = 512
		clusterSize    = 512
		mftEntrySize   = 512
		mftOffset      = 512  // cluster 1
		runLcnOffset   = 2    // cluster 2
		runLength      = 8    // clusters -> 4096 bytes
		streamByteBase = runLcnOffset * clusterSize
		imageSize      = streamByteBase + runLength*clusterSize
	)

	buf := make([]byte, imageSize)

	copy(buf[3:11], []byte("NTFS    "))
	putU16(buf, 11, bytesPerSector)
	buf[13] = 1 // one sector per cluster block -> 512-byte clusters
	putU64Test(buf, 40, 64)            // total sectors (unchecked against image size)
	putU64Test(buf, 48, 1)             // mft cluster block number -> offset 512
	putU64Test(buf, 56, 3)             // mirror mft cluster block number
	putU32(buf, 64, 1)                 // mft entry size encoding -> 1 cluster = 512
	putU32(buf, 68, 1)                 // index entry size encoding -> 512
	putU64Test(buf, 72, 0xdeadbeef)    // volume serial number

	dataAttr := buildNonResidentDataAttribute(runLcnOffset, runLength)
	mftRecord0 := buildMftEntryRaw(dataAttr, mftEntrySize, 0, 1, MftEntryFlagInUse)
	copy(buf[mftOffset:mftOffset+mftEntrySize], mftRecord0)

	irAttr := buildResidentAttribute(AttributeTypeIndexRoot, "$I30", []byte{0x01, 0x02}, 0)
	rootRecord := buildMftEntryRaw(irAttr, mftEntrySize, 5, 1, MftEntryFlagInUse|MftEntryFlagHasIndex)

	rootStreamOffset := 5 * mftEntrySize
	rootVolumeOffset := streamByteBase + rootStreamOffset
	copy(buf[rootVolumeOffset:rootVolumeOffset+mftEntrySize], rootRecord)

	return buf
}

func TestOpenVolume_BootstrapsHeaderAndMft(t *testing.T) {
	image := buildTestVolumeImage(t)
	source := NewMemoryVolumeSource(image)

	v, err := OpenVolume(source)
	require.NoError(t, err)

	assert.Equal(t, uint16(512), v.Header().BytesPerSector())
	assert.Equal(t, uint32(512), v.Header().ClusterSize())
	assert.Equal(t, uint32(512), v.Header().MftEntrySize())
	assert.Equal(t, uint64(512), v.Header().MftOffset())
}

func TestOpenVolume_RootDirectoryEntryIsDirectory(t *testing.T) {
	image := buildTestVolumeImage(t)
	source := NewMemoryVolumeSource(image)

	v, err := OpenVolume(source)
	require.NoError(t, err)

	root, err := v.RootDirectoryEntry()
	require.NoError(t, err)

	assert.True(t, root.HasDirectoryEntriesIndex())
	assert.True(t, root.IsAllocated())
	assert.Equal(t, uint64(5), root.Index)
}

func TestOpenVolume_BadSignatureIsError(t *testing.T) {
	image := buildTestVolumeImage(t)
	copy(image[3:11], []byte("XXXX    "))

	_, err := OpenVolume(NewMemoryVolumeSource(image))
	assert.Error(t, err)
}
