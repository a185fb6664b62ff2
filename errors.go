package h5view

import "errors"

// Load-time errors.
var (
	// ErrInvalidName is returned by Load when the path has no extractable
	// file name component.
	ErrInvalidName = errors.New("path has no file name component")

	// ErrUnknownEntityKind is returned when a child link opens as neither a
	// group nor a dataset. It aborts the whole load.
	ErrUnknownEntityKind = errors.New("entity is neither group nor dataset")

	// ErrLinkCycle is returned when a soft or external link resolves to an
	// ancestor of the group being traversed.
	ErrLinkCycle = errors.New("link cycle detected")
)

// Path resolution errors. These are local to the query; the tree is never
// affected by a failed resolution.
var (
	ErrEmptyPath       = errors.New("empty entity path")
	ErrIndexOutOfRange = errors.New("entity index out of range")
	ErrNotIndexable    = errors.New("cannot index into a dataset")
)
