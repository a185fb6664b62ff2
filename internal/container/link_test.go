package container

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSuperblock() *Superblock {
	return &Superblock{Version: 2, OffsetSize: 8, LengthSize: 8}
}

func TestParseLinkMessage(t *testing.T) {
	hard := []byte{
		1, 0x08, 0, 4, 'd', 'a', 't', 'a',
		0x30, 0, 0, 0, 0, 0, 0, 0,
	}
	// No type field: flags bit 3 clear means a hard link.
	implicitHard := []byte{
		1, 0x00, 2, 'h', 'i',
		0x40, 0, 0, 0, 0, 0, 0, 0,
	}
	soft := []byte{
		1, 0x08, 1, 5, 'a', 'l', 'i', 'a', 's',
		6, 0, '/', 'e', 'n', 't', 'r', 'y',
	}
	external := []byte{
		1, 0x08, 64, 3, 'e', 'x', 't',
		12, 0, // value length
		0, // version/flags
		's', 'i', 'd', 'e', 0,
		'/', 't', 'o', 'p', 0,
		0, // value padding
	}
	// flags bits 0-1 = 1: 2-byte name length field.
	wideName := []byte{
		1, 0x09, 0, 2, 0, 'o', 'k',
		0x50, 0, 0, 0, 0, 0, 0, 0,
	}
	withCreationOrder := []byte{
		1, 0x0C, 0,
		7, 0, 0, 0, 0, 0, 0, 0, // creation order, skipped
		1, 'c',
		0x60, 0, 0, 0, 0, 0, 0, 0,
	}

	tests := []struct {
		name string
		data []byte
		want Link
	}{
		{"hard", hard, Link{Name: "data", Type: LinkTypeHard, objectAddress: 0x30}},
		{"implicit hard", implicitHard, Link{Name: "hi", Type: LinkTypeHard, objectAddress: 0x40}},
		{"soft", soft, Link{Name: "alias", Type: LinkTypeSoft, target: "/entry"}},
		{"external", external, Link{Name: "ext", Type: LinkTypeExternal, targetFile: "side", targetPath: "/top"}},
		{"two-byte name length", wideName, Link{Name: "ok", Type: LinkTypeHard, objectAddress: 0x50}},
		{"creation order skipped", withCreationOrder, Link{Name: "c", Type: LinkTypeHard, objectAddress: 0x60}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			link, err := parseLinkMessage(tt.data, testSuperblock())
			require.NoError(t, err)
			assert.Equal(t, tt.want, *link)
		})
	}
}

func TestParseLinkMessageErrors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"bad version", []byte{2, 0}},
		{"truncated name", []byte{1, 0x08, 0, 10, 'x'}},
		{"truncated hard address", []byte{1, 0x08, 0, 1, 'x', 0x30}},
		{"truncated soft value", []byte{1, 0x08, 1, 1, 'x', 9, 0, '/'}},
		{"unsupported type", []byte{1, 0x08, 99, 1, 'x', 0, 0}},
		{"malformed external value", []byte{1, 0x08, 64, 1, 'x', 2, 0, 0, 'a'}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseLinkMessage(tt.data, testSuperblock())
			assert.Error(t, err)
		})
	}
}

func TestLinkInfoFractalHeap(t *testing.T) {
	defined := []byte{0, 0, 0, 4, 0, 0, 0, 0, 0, 0}
	defined = append(defined, make([]byte, 8)...) // name index address
	addr, err := linkInfoFractalHeap(defined, testSuperblock())
	require.NoError(t, err)
	assert.Equal(t, uint64(1024), addr)

	// Flags bit 0 inserts an 8-byte maximum creation index before the
	// heap address.
	withOrder := []byte{0, 1}
	withOrder = append(withOrder, make([]byte, 8)...)
	withOrder = append(withOrder, 0, 4, 0, 0, 0, 0, 0, 0)
	addr, err = linkInfoFractalHeap(withOrder, testSuperblock())
	require.NoError(t, err)
	assert.Equal(t, uint64(1024), addr)

	_, err = linkInfoFractalHeap([]byte{0}, testSuperblock())
	assert.Error(t, err)

	_, err = linkInfoFractalHeap(append([]byte{1, 0}, make([]byte, 16)...), testSuperblock())
	assert.Error(t, err)
}

func TestLinkTypeString(t *testing.T) {
	assert.Equal(t, "Hard", LinkTypeHard.String())
	assert.Equal(t, "Soft", LinkTypeSoft.String())
	assert.Equal(t, "External", LinkTypeExternal.String())
	assert.Equal(t, "Unknown(9)", LinkType(9).String())
}
