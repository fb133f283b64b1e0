package ntfs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadObjectIdentifierValues_ShortForm(t *testing.T) {
	buf := make([]byte, 16)
	for i := range buf {
		buf[i] = byte(i + 1)
	}

	attr := &MftAttribute{Type: AttributeTypeObjectId, ResidentData: buf}

	oiv, err := ReadObjectIdentifierValues(attr)
	require.NoError(t, err)

	var expected Guid
	copy(expected[:], buf)

	assert.Equal(t, expected, oiv.DroidFileIdentifier)
	assert.Equal(t, Guid{}, oiv.BirthDroidVolumeIdentifier)
}

func TestReadObjectIdentifierValues_LongForm(t *testing.T) {
	buf := make([]byte, 64)
	for i := range buf {
		buf[i] = byte(i)
	}

	attr := &MftAttribute{Type: AttributeTypeObjectId, ResidentData: buf}

	oiv, err := ReadObjectIdentifierValues(attr)
	require.NoError(t, err)

	var wantFile, wantVol, wantF2, wantDomain Guid
	copy(wantFile[:], buf[0:16])
	copy(wantVol[:], buf[16:32])
	copy(wantF2[:], buf[32:48])
	copy(wantDomain[:], buf[48:64])

	assert.Equal(t, wantFile, oiv.DroidFileIdentifier)
	assert.Equal(t, wantVol, oiv.BirthDroidVolumeIdentifier)
	assert.Equal(t, wantF2, oiv.BirthDroidFileIdentifier)
	assert.Equal(t, wantDomain, oiv.BirthDroidDomainIdentifier)
}

func TestReadObjectIdentifierValues_InvalidSize(t *testing.T) {
	attr := &MftAttribute{Type: AttributeTypeObjectId, ResidentData: make([]byte, 20)}

	_, err := ReadObjectIdentifierValues(attr)
	assert.Error(t, err)
}
