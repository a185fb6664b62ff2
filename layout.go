package h5view

import (
	"fmt"
	"strings"
)

// LayoutInfo is the storage layout of a dataset: one of CompactLayout,
// ContiguousLayout, ChunkedLayout or VirtualLayout. Only ChunkedLayout
// carries extra data.
type LayoutInfo interface {
	fmt.Stringer

	isLayout()
}

// CompactLayout marks data stored inside the object header.
type CompactLayout struct{}

func (CompactLayout) isLayout()      {}
func (CompactLayout) String() string { return "Compact" }

// ContiguousLayout marks data stored as a single contiguous block.
type ContiguousLayout struct{}

func (ContiguousLayout) isLayout()      {}
func (ContiguousLayout) String() string { return "Contiguous" }

// VirtualLayout marks data mapped from other datasets.
type VirtualLayout struct{}

func (VirtualLayout) isLayout()      {}
func (VirtualLayout) String() string { return "Virtual" }

// ChunkedLayout marks data stored in equally sized chunks, optionally run
// through a filter pipeline. ChunkShape has the same rank as the dataset's
// Shape; Filters preserves pipeline order.
type ChunkedLayout struct {
	ChunkShape []uint64
	Filters    []FilterInfo
}

func (ChunkedLayout) isLayout() {}

// String renders the chunk shape and filter names, e.g.
// "Chunked[4x8] deflate,shuffle".
func (l ChunkedLayout) String() string {
	var b strings.Builder
	b.WriteString("Chunked")
	b.WriteString(formatShape(l.ChunkShape))
	for i, f := range l.Filters {
		if i == 0 {
			b.WriteByte(' ')
		} else {
			b.WriteByte(',')
		}
		b.WriteString(f.Name)
	}
	return b.String()
}

// FilterID identifies a pipeline filter stage.
type FilterID uint16

// Registered filter identifiers.
const (
	FilterDeflate     FilterID = 1
	FilterShuffle     FilterID = 2
	FilterFletcher32  FilterID = 3
	FilterSzip        FilterID = 4
	FilterNbit        FilterID = 5
	FilterScaleOffset FilterID = 6
)

// String returns the filter name, falling back to the numeric ID.
func (id FilterID) String() string {
	switch id {
	case FilterDeflate:
		return "deflate"
	case FilterShuffle:
		return "shuffle"
	case FilterFletcher32:
		return "fletcher32"
	case FilterSzip:
		return "szip"
	case FilterNbit:
		return "nbit"
	case FilterScaleOffset:
		return "scaleoffset"
	default:
		return fmt.Sprintf("filter(%d)", uint16(id))
	}
}

// FilterInfo is one stage of a chunked dataset's filter pipeline.
type FilterInfo struct {
	ID         FilterID
	Name       string
	ClientData []uint32
}

// formatShape renders dimensions as "[4x8]"; rank 0 renders as "scalar".
func formatShape(dims []uint64) string {
	if len(dims) == 0 {
		return "scalar"
	}
	parts := make([]string, len(dims))
	for i, d := range dims {
		parts[i] = fmt.Sprintf("%d", d)
	}
	return "[" + strings.Join(parts, "x") + "]"
}
