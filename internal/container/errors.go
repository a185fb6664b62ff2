package container

import "errors"

// Sentinel errors reported by the container layer.
var (
	ErrNotHDF5    = errors.New("not an HDF5 file")
	ErrNotFound   = errors.New("link not found")
	ErrNotGroup   = errors.New("object is not a group")
	ErrNotDataset = errors.New("object is not a dataset")
	ErrLinkDepth  = errors.New("maximum link depth exceeded")

	// ErrDenseLinks marks a group storing its links in a fractal heap.
	// Reporting it keeps such groups from silently appearing empty.
	ErrDenseLinks = errors.New("dense link storage not supported")
)
