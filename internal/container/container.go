// Package container reads the structural metadata of HDF5 container files:
// superblocks, object headers, links, dataspaces, datatypes, data layouts,
// filter pipelines and attributes. It is a read-only layer; dataset payload
// bytes are never decoded here.
//
// Supported on-disk flavors: superblock versions 0, 2 and 3; object header
// versions 1 (with continuation blocks) and 2; compact link-message groups
// and old-style symbol-table groups; hard, soft and external links.
package container

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/scigolib/h5view/internal/utils"
)

// MaxLinkDepth bounds soft/external link resolution. Link values are plain
// paths, so a file can name itself; the depth guard turns such cycles into
// ErrLinkDepth instead of unbounded recursion.
const MaxLinkDepth = 100

// File is an open HDF5 container. It owns the underlying *os.File plus any
// external-link target files opened during resolution.
type File struct {
	path     string
	osFile   *os.File
	sb       *Superblock
	size     uint64
	root     *Group
	external map[string]*File
}

// Open opens the container at path for reading and loads its root group
// header. The returned File must be closed by the caller.
func Open(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, utils.WrapError("file open failed", err)
	}

	fi, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, utils.WrapError("file stat failed", err)
	}

	sb, err := readSuperblock(f)
	if err != nil {
		_ = f.Close()
		return nil, err
	}

	//nolint:gosec // G115: regular file sizes are non-negative
	size := uint64(fi.Size())
	if sb.RootAddress >= size {
		_ = f.Close()
		return nil, fmt.Errorf("root group address %d beyond file size %d", sb.RootAddress, size)
	}

	file := &File{
		path:   path,
		osFile: f,
		sb:     sb,
		size:   size,
	}

	header, err := readObjectHeader(f, sb.RootAddress, sb)
	if err != nil {
		_ = f.Close()
		return nil, utils.WrapError("root group load failed", err)
	}
	if header.Kind != KindGroup {
		_ = f.Close()
		return nil, errors.New("root object is not a group")
	}

	file.root = &Group{
		file:    file,
		name:    "/",
		address: sb.RootAddress,
		header:  header,
	}

	return file, nil
}

// Close closes the container and every external file it opened.
// It is safe to call Close multiple times.
func (f *File) Close() error {
	if f.osFile == nil {
		return nil
	}
	for _, ext := range f.external {
		_ = ext.Close()
	}
	f.external = nil

	err := f.osFile.Close()
	f.osFile = nil
	return err
}

// Size returns the file's total byte size as captured at open time.
func (f *File) Size() uint64 {
	return f.size
}

// Root returns the root group.
func (f *File) Root() *Group {
	return f.root
}

// Path returns the path the container was opened from.
func (f *File) Path() string {
	return f.path
}

func (f *File) reader() io.ReaderAt {
	return f.osFile
}

// openExternal opens (or returns a cached) external-link target file.
// Target paths are resolved relative to this file's directory.
func (f *File) openExternal(filename string) (*File, error) {
	if ext, ok := f.external[filename]; ok {
		return ext, nil
	}

	extPath := filepath.Join(filepath.Dir(f.path), filename)
	ext, err := Open(extPath)
	if err != nil {
		return nil, utils.WrapError("external file open failed", err)
	}

	if f.external == nil {
		f.external = make(map[string]*File)
	}
	f.external[filename] = ext
	return ext, nil
}
