// Package h5view loads the structure of an HDF5 file into an owned,
// immutable in-memory tree for browsing. Load walks the file's link
// graph once, depth-first, and materializes every group and dataset into
// GroupInfo and DatasetInfo nodes; the file is closed before Load
// returns, and the tree holds no reference into it.
//
// Dataset payload bytes are never read. Datasets are described by shape,
// storage layout (with chunk shape and filter pipeline for chunked
// storage), a structural element-type descriptor and their attributes.
package h5view

import (
	"path/filepath"

	"github.com/scigolib/h5view/internal/container"
	"github.com/scigolib/h5view/internal/utils"
)

// FileInfo is the materialized structure of one HDF5 file. Entities holds
// the root group's children; the root group itself is not retained, it
// only anchors traversal.
type FileInfo struct {
	Name     string
	Size     uint64
	Entities []Entity
}

// Load opens the HDF5 file at path, materializes its full structure and
// closes the file. The root group is traversed as if reached through a
// hard link, since the file itself has no incoming link.
func Load(path string) (*FileInfo, error) {
	name := filepath.Base(path)
	if name == "." || name == ".." || name == string(filepath.Separator) {
		return nil, ErrInvalidName
	}

	f, err := container.Open(path)
	if err != nil {
		return nil, utils.WrapError("container open failed", err)
	}
	defer func() { _ = f.Close() }()

	root, err := buildGroup(containerGroup{g: f.Root()}, "/", LinkHard)
	if err != nil {
		return nil, err
	}

	return &FileInfo{
		Name:     name,
		Size:     f.Size(),
		Entities: root.Entities,
	}, nil
}
