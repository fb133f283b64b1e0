package ntfs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadVolumeNameValues(t *testing.T) {
	// "Data" in UTF-16LE.
	raw := []byte{0x44, 0x00, 0x61, 0x00, 0x74, 0x00, 0x61, 0x00}

	attr := &MftAttribute{
		Type:         AttributeTypeVolumeName,
		NonResident:  false,
		ResidentData: raw,
	}

	vnv, err := ReadVolumeNameValues(attr)
	require.NoError(t, err)

	assert.Equal(t, "Data", vnv.Name)
}

func TestReadVolumeNameValues_Empty(t *testing.T) {
	attr := &MftAttribute{
		Type:         AttributeTypeVolumeName,
		NonResident:  false,
		ResidentData: []byte{},
	}

	vnv, err := ReadVolumeNameValues(attr)
	require.NoError(t, err)

	assert.Equal(t, "", vnv.Name)
}

func TestReadVolumeNameValues_WrongType(t *testing.T) {
	attr := &MftAttribute{
		Type:         AttributeTypeStandardInformation,
		ResidentData: []byte{0x44, 0x00},
	}

	_, err := ReadVolumeNameValues(attr)
	assert.Error(t, err)
}

func TestReadVolumeNameValues_NonResidentIsError(t *testing.T) {
	attr := &MftAttribute{
		Type:        AttributeTypeVolumeName,
		NonResident: true,
	}

	_, err := ReadVolumeNameValues(attr)
	assert.Error(t, err)
}
