package ntfs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildFixupRecord(sectorCount int, placeholder [2]byte, realTails [][2]byte) []byte {
	buf := make([]byte, sectorCount*sectorSize)

	for i := 0; i < sectorCount; i++ {
		tailOffset := (i+1)*sectorSize - 2
		buf[tailOffset] = placeholder[0]
		buf[tailOffset+1] = placeholder[1]
	}

	fixupOffset := 42
	buf[fixupOffset] = placeholder[0]
	buf[fixupOffset+1] = placeholder[1]

	for i, tail := range realTails {
		buf[fixupOffset+2+i*2] = tail[0]
		buf[fixupOffset+2+i*2+1] = tail[1]
	}

	return buf
}

func TestFixupApplier_Apply_RestoresTails(t *testing.T) {
	placeholder := [2]byte{0xaa, 0xaa}
	realTails := [][2]byte{{0x01, 0x02}, {0x03, 0x04}}

	buf := buildFixupRecord(2, placeholder, realTails)

	fa := NewFixupApplier()

	mismatch, err := fa.Apply(buf, 42, 3)
	require.NoError(t, err)
	assert.False(t, mismatch)

	assert.Equal(t, byte(0x01), buf[sectorSize-2])
	assert.Equal(t, byte(0x02), buf[sectorSize-1])
	assert.Equal(t, byte(0x03), buf[2*sectorSize-2])
	assert.Equal(t, byte(0x04), buf[2*sectorSize-1])
}

func TestFixupApplier_Apply_DetectsPlaceholderMismatch(t *testing.T) {
	placeholder := [2]byte{0xaa, 0xaa}
	realTails := [][2]byte{{0x01, 0x02}}

	buf := buildFixupRecord(1, placeholder, realTails)
	buf[sectorSize-2] = 0xff // corrupt the sector tail before fix-up

	fa := NewFixupApplier()

	mismatch, err := fa.Apply(buf, 42, 2)
	require.NoError(t, err)
	assert.True(t, mismatch)

	// bytes are still restored despite the mismatch
	assert.Equal(t, byte(0x01), buf[sectorSize-2])
	assert.Equal(t, byte(0x02), buf[sectorSize-1])
}

func TestFixupApplier_Apply_OffsetOutOfBounds(t *testing.T) {
	buf := make([]byte, sectorSize)

	fa := NewFixupApplier()

	_, err := fa.Apply(buf, -1, 2)
	assert.Error(t, err)

	_, err = fa.Apply(buf, len(buf), 2)
	assert.Error(t, err)
}

func TestFixupApplier_Apply_RecordTooSmallForSectorCount(t *testing.T) {
	buf := make([]byte, sectorSize)

	fa := NewFixupApplier()

	_, err := fa.Apply(buf, 42, 3)
	assert.Error(t, err)
}
