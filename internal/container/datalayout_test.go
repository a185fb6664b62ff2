package container

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDataLayoutV3Chunked(t *testing.T) {
	data := []byte{3, 2, 3}
	data = append(data, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF) // B-tree address
	data = append(data, 10, 0, 0, 0)
	data = append(data, 20, 0, 0, 0)
	data = append(data, 8, 0, 0, 0) // element size dimension

	layout, err := parseDataLayout(data, testSuperblock())
	require.NoError(t, err)

	assert.Equal(t, uint8(3), layout.Version)
	assert.Equal(t, LayoutChunked, layout.Class)
	assert.Equal(t, []uint64{10, 20, 8}, layout.ChunkDims)
}

func TestParseDataLayoutV3Simple(t *testing.T) {
	for _, class := range []LayoutClass{LayoutCompact, LayoutContiguous} {
		layout, err := parseDataLayout([]byte{3, byte(class)}, testSuperblock())
		require.NoError(t, err)
		assert.Equal(t, class, layout.Class)
		assert.Empty(t, layout.ChunkDims)
	}
}

func TestParseDataLayoutV4Chunked(t *testing.T) {
	data := []byte{4, 2, 0, 2, 2} // flags, dimensionality, 2-byte dims
	data = append(data, 4, 0)
	data = append(data, 8, 0)

	layout, err := parseDataLayout(data, testSuperblock())
	require.NoError(t, err)

	assert.Equal(t, LayoutChunked, layout.Class)
	assert.Equal(t, []uint64{4, 8}, layout.ChunkDims)
}

func TestParseDataLayoutV4Virtual(t *testing.T) {
	layout, err := parseDataLayout([]byte{4, 3}, testSuperblock())
	require.NoError(t, err)
	assert.Equal(t, LayoutVirtual, layout.Class)
}

func TestParseDataLayoutErrors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"too short", []byte{3}},
		{"unsupported version", []byte{2, 1}},
		{"v3 virtual", []byte{3, 3}},
		{"v3 chunked truncated", []byte{3, 2, 2, 0, 0, 0, 0, 0, 0, 0, 0, 4, 0}},
		{"v4 bad encoding width", []byte{4, 2, 0, 1, 9}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseDataLayout(tt.data, testSuperblock())
			assert.Error(t, err)
		})
	}
}

func TestLayoutClassString(t *testing.T) {
	assert.Equal(t, "Compact", LayoutCompact.String())
	assert.Equal(t, "Chunked", LayoutChunked.String())
	assert.Equal(t, "Unknown(9)", LayoutClass(9).String())
}
