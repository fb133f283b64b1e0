package ntfs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func putU32(buf []byte, offset int, v uint32) {
	buf[offset] = byte(v)
	buf[offset+1] = byte(v >> 8)
	buf[offset+2] = byte(v >> 16)
	buf[offset+3] = byte(v >> 24)
}

func putU16(buf []byte, offset int, v uint16) {
	buf[offset] = byte(v)
	buf[offset+1] = byte(v >> 8)
}

func buildSymbolicLinkReparseValue() []byte {
	substitute := encodeUtf16String(`\??\C:\Target`)
	print := encodeUtf16String(`C:\Target`)

	subHeader := 12
	nameData := append(append([]byte{}, substitute...), print...)
	reparseData := make([]byte, subHeader+len(nameData))

	putU16(reparseData, 0, 0)                           // substitute name offset
	putU16(reparseData, 2, uint16(len(substitute)))      // substitute name size
	putU16(reparseData, 4, uint16(len(substitute)))      // print name offset
	putU16(reparseData, 6, uint16(len(print)))           // print name size
	putU32(reparseData, 8, 0)                            // flags
	copy(reparseData[subHeader:], nameData)

	buf := make([]byte, 8+len(reparseData))
	putU32(buf, 0, ReparseTagSymbolicLink)
	putU16(buf, 4, uint16(len(reparseData)))
	copy(buf[8:], reparseData)

	return buf
}

func TestReadReparsePointValues_SymbolicLink(t *testing.T) {
	buf := buildSymbolicLinkReparseValue()

	attr := &MftAttribute{Type: AttributeTypeReparsePoint, ResidentData: buf}

	rpv, err := ReadReparsePointValues(attr)
	require.NoError(t, err)

	assert.True(t, rpv.IsSymbolicLink())
	assert.Equal(t, `\??\C:\Target`, rpv.SubstituteName)
	assert.Equal(t, `C:\Target`, rpv.PrintName)
}

func TestReadReparsePointValues_WofCompressed(t *testing.T) {
	reparseData := make([]byte, 16)
	putU32(reparseData, 12, 2) // compression method = XPRESS 8K, arbitrary value

	buf := make([]byte, 8+len(reparseData))
	putU32(buf, 0, ReparseTagWofCompressed)
	putU16(buf, 4, uint16(len(reparseData)))
	copy(buf[8:], reparseData)

	attr := &MftAttribute{Type: AttributeTypeReparsePoint, ResidentData: buf}

	rpv, err := ReadReparsePointValues(attr)
	require.NoError(t, err)

	assert.True(t, rpv.IsWofCompressed())
	assert.Equal(t, uint32(2), rpv.CompressionMethod)
}

func TestReadReparsePointValues_UnknownTagCarriesRawData(t *testing.T) {
	reparseData := []byte{0x01, 0x02, 0x03, 0x04}

	buf := make([]byte, 8+len(reparseData))
	putU32(buf, 0, 0x12345678)
	putU16(buf, 4, uint16(len(reparseData)))
	copy(buf[8:], reparseData)

	attr := &MftAttribute{Type: AttributeTypeReparsePoint, ResidentData: buf}

	rpv, err := ReadReparsePointValues(attr)
	require.NoError(t, err)

	assert.False(t, rpv.IsMountPoint())
	assert.False(t, rpv.IsSymbolicLink())
	assert.Equal(t, reparseData, rpv.TargetData)
}
