package container

import (
	"path/filepath"
	"testing"

	"github.com/scigolib/h5view/internal/testfile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openImage(t *testing.T, name string, image []byte) *File {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, testfile.Write(path, image))

	f, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })
	return f
}

func TestOpenBasicTree(t *testing.T) {
	image := testfile.BasicTree()
	f := openImage(t, "basic.h5", image)

	assert.Equal(t, uint64(len(image)), f.Size())
	require.NotNil(t, f.Root())
	assert.Equal(t, "/", f.Root().Name())

	links, err := f.Root().Links()
	require.NoError(t, err)
	require.Len(t, links, 2)
	assert.Equal(t, "entry", links[0].Name)
	assert.Equal(t, "data", links[1].Name)
	assert.Equal(t, LinkTypeHard, links[0].Type)
}

func TestOpenGroupAndAttributes(t *testing.T) {
	f := openImage(t, "basic.h5", testfile.BasicTree())

	entry, err := f.Root().OpenGroup("entry")
	require.NoError(t, err)
	assert.Equal(t, "entry", entry.Name())
	assert.Equal(t, uint64(48), entry.Address())

	links, err := entry.Links()
	require.NoError(t, err)
	assert.Empty(t, links)

	attrs := entry.Attributes()
	require.Len(t, attrs, 1)
	assert.Equal(t, "version", attrs[0].Name)

	value, err := attrs[0].Value()
	require.NoError(t, err)
	assert.Equal(t, int64(3), value)
}

func TestOpenDatasetMetadata(t *testing.T) {
	f := openImage(t, "basic.h5", testfile.BasicTree())

	data, err := f.Root().OpenDataset("data")
	require.NoError(t, err)

	shape, err := data.Shape()
	require.NoError(t, err)
	assert.Equal(t, []uint64{12}, shape)

	elem, err := data.ElementType()
	require.NoError(t, err)
	assert.Equal(t, ClassFixed, elem.Class)
	assert.Equal(t, uint32(8), elem.Size)
	assert.True(t, elem.Signed())

	layout, err := data.Layout()
	require.NoError(t, err)
	assert.Equal(t, LayoutChunked, layout.Class)
	assert.Equal(t, []uint64{4, 8}, layout.ChunkDims)

	// The trailing element-size dimension is stripped.
	chunk, err := data.ChunkShape()
	require.NoError(t, err)
	assert.Equal(t, []uint64{4}, chunk)

	filters, err := data.Filters()
	require.NoError(t, err)
	require.Len(t, filters, 1)
	assert.Equal(t, FilterDeflate, filters[0].ID)
	assert.Equal(t, []uint32{6}, filters[0].ClientData)
}

func TestOpenKindMismatch(t *testing.T) {
	f := openImage(t, "basic.h5", testfile.BasicTree())

	_, err := f.Root().OpenDataset("entry")
	assert.ErrorIs(t, err, ErrNotDataset)

	_, err = f.Root().OpenGroup("data")
	assert.ErrorIs(t, err, ErrNotGroup)

	_, err = f.Root().OpenGroup("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDenseLinkStorageIsReported(t *testing.T) {
	f := openImage(t, "dense.h5", testfile.TreeWithDenseLinks())

	// A defined fractal heap address means links this reader cannot
	// enumerate; the group must not pass itself off as empty.
	_, err := f.Root().Links()
	assert.ErrorIs(t, err, ErrDenseLinks)
}

func TestSoftLinkResolution(t *testing.T) {
	f := openImage(t, "alias.h5", testfile.TreeWithAlias())

	entry, err := f.Root().OpenGroup("entry")
	require.NoError(t, err)

	alias, err := f.Root().OpenGroup("alias")
	require.NoError(t, err)
	assert.Equal(t, entry.Address(), alias.Address())
}

func TestSoftLinkDepthLimit(t *testing.T) {
	f := openImage(t, "self.h5", testfile.TreeWithSelfLink())

	_, err := f.Root().OpenGroup("self")
	assert.ErrorIs(t, err, ErrLinkDepth)
}

func TestExternalLinkResolution(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, testfile.Write(filepath.Join(dir, "side.h5"), testfile.BasicTree()))
	mainPath := filepath.Join(dir, "main.h5")
	require.NoError(t, testfile.Write(mainPath, testfile.TreeWithExternal("side.h5")))

	f, err := Open(mainPath)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	remote, err := f.Root().OpenGroup("remote")
	require.NoError(t, err)
	assert.Equal(t, "remote", remote.Name())
	require.Len(t, remote.Attributes(), 1)
	assert.Equal(t, "version", remote.Attributes()[0].Name)
}

func TestExternalLinkMissingFile(t *testing.T) {
	f := openImage(t, "main.h5", testfile.TreeWithExternal("nowhere.h5"))

	_, err := f.Root().OpenGroup("remote")
	assert.Error(t, err)
}

func TestOpenErrors(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing.h5"))
	require.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.h5")
	require.NoError(t, testfile.Write(path, make([]byte, 64)))
	_, err = Open(path)
	assert.ErrorIs(t, err, ErrNotHDF5)
}

func TestCloseIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "basic.h5")
	require.NoError(t, testfile.Write(path, testfile.BasicTree()))

	f, err := Open(path)
	require.NoError(t, err)

	require.NoError(t, f.Close())
	require.NoError(t, f.Close())
}
