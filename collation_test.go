package ntfs

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEqualNameAscii_CaseInsensitive(t *testing.T) {
	assert.True(t, equalNameAscii("$I30", "$I30"))
	assert.True(t, equalNameAscii("$i30", "$I30"))
	assert.True(t, equalNameAscii("WOFCOMPRESSEDDATA", "WofCompressedData"))
}

func TestEqualNameAscii_Mismatch(t *testing.T) {
	assert.False(t, equalNameAscii("$I30", "$SDS"))
	assert.False(t, equalNameAscii("$I3", "$I30"))
}

func TestEqualNameAscii_Empty(t *testing.T) {
	assert.True(t, equalNameAscii("", ""))
	assert.False(t, equalNameAscii("", "$I30"))
}
