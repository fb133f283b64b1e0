package ntfs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttributeObject_Value_DecodesStandardInformation(t *testing.T) {
	attr := &MftAttribute{
		Type:         AttributeTypeStandardInformation,
		ResidentData: buildStandardInformationValue(),
	}

	ao := NewAttributeObject(attr)

	v, err := ao.Value()
	require.NoError(t, err)

	siv, ok := v.(*StandardInformationValues)
	require.True(t, ok)
	assert.True(t, siv.CreationTime.Equal(ntfsEpoch))
}

func TestAttributeObject_Value_CachesResult(t *testing.T) {
	attr := &MftAttribute{
		Type:         AttributeTypeStandardInformation,
		ResidentData: buildStandardInformationValue(),
	}

	ao := NewAttributeObject(attr)

	first, err := ao.Value()
	require.NoError(t, err)

	second, err := ao.Value()
	require.NoError(t, err)

	assert.Same(t, first, second)
}

func TestAttributeObject_Value_CachesDecodeFailure(t *testing.T) {
	attr := &MftAttribute{
		Type:         AttributeTypeStandardInformation,
		ResidentData: make([]byte, 4),
	}

	ao := NewAttributeObject(attr)

	_, err1 := ao.Value()
	require.Error(t, err1)

	_, err2 := ao.Value()
	require.Error(t, err2)

	assert.Equal(t, err1.Error(), err2.Error())
}

func TestAttributeObject_Value_UnregisteredTypeIsError(t *testing.T) {
	attr := &MftAttribute{Type: AttributeTypeIndexRoot, ResidentData: []byte{}}

	ao := NewAttributeObject(attr)

	_, err := ao.Value()
	assert.Error(t, err)
}

func TestAttributeObject_Attribute_ReturnsUnderlying(t *testing.T) {
	attr := &MftAttribute{Type: AttributeTypeVolumeName}
	ao := NewAttributeObject(attr)

	assert.Same(t, attr, ao.Attribute())
}
