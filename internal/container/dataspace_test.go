package container

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDataspace(t *testing.T) {
	v2Simple := []byte{
		2, 2, 0, 1,
		12, 0, 0, 0, 0, 0, 0, 0,
		7, 0, 0, 0, 0, 0, 0, 0,
	}
	v2Scalar := []byte{2, 0, 0, 0}
	v1Simple := []byte{
		1, 1, 0, 0, 0, 0, 0, 0,
		5, 0, 0, 0, 0, 0, 0, 0,
	}

	tests := []struct {
		name      string
		data      []byte
		wantDims  []uint64
		wantTotal uint64
	}{
		{"v2 two dimensions", v2Simple, []uint64{12, 7}, 84},
		{"v2 scalar", v2Scalar, []uint64{}, 1},
		{"v1 one dimension", v1Simple, []uint64{5}, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ds, err := parseDataspace(tt.data)
			require.NoError(t, err)
			assert.Equal(t, tt.wantDims, ds.Dimensions)
			assert.Equal(t, tt.wantTotal, ds.TotalElements())
		})
	}
}

func TestTotalElementsSaturates(t *testing.T) {
	ds := &Dataspace{Dimensions: []uint64{1 << 40, 1 << 40}}
	assert.Equal(t, ^uint64(0), ds.TotalElements())

	zero := &Dataspace{Dimensions: []uint64{1 << 40, 0}}
	assert.Equal(t, uint64(0), zero.TotalElements())
}

func TestParseDataspaceErrors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"unsupported version", []byte{3, 0, 0, 0}},
		{"v1 too short", []byte{1, 0, 0, 0}},
		{"truncated dimensions", []byte{2, 2, 0, 1, 12, 0, 0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseDataspace(tt.data)
			assert.Error(t, err)
		})
	}
}
