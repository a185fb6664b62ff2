package container

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// LayoutClass is the dataset storage layout class.
type LayoutClass uint8

// Layout classes from the HDF5 specification. Virtual storage exists only
// in version 4 layout messages.
const (
	LayoutCompact    LayoutClass = 0
	LayoutContiguous LayoutClass = 1
	LayoutChunked    LayoutClass = 2
	LayoutVirtual    LayoutClass = 3
)

// String returns the layout class name.
func (c LayoutClass) String() string {
	switch c {
	case LayoutCompact:
		return "Compact"
	case LayoutContiguous:
		return "Contiguous"
	case LayoutChunked:
		return "Chunked"
	case LayoutVirtual:
		return "Virtual"
	default:
		return fmt.Sprintf("Unknown(%d)", uint8(c))
	}
}

// DataLayout is a parsed data layout message (type 0x0008). ChunkDims is
// populated for chunked layouts only. In version 3 messages the chunk
// dimensionality includes a trailing element-size dimension; version 4
// messages store the dataset rank directly.
type DataLayout struct {
	Version   uint8
	Class     LayoutClass
	ChunkDims []uint64
}

// parseDataLayout parses version 3 and 4 data layout messages.
func parseDataLayout(data []byte, sb *Superblock) (*DataLayout, error) {
	if len(data) < 2 {
		return nil, errors.New("data layout message too short")
	}

	version := data[0]
	layout := &DataLayout{Version: version, Class: LayoutClass(data[1])}

	switch version {
	case 3:
		return layout, parseLayoutV3(layout, data[2:], sb)
	case 4:
		return layout, parseLayoutV4(layout, data[2:])
	default:
		return nil, fmt.Errorf("unsupported data layout version: %d", version)
	}
}

// parseLayoutV3 parses version 3 properties. Chunked: dimensionality (1) +
// B-tree address (OffsetSize) + dimension sizes (4 each, the last being
// the element size in bytes).
func parseLayoutV3(layout *DataLayout, props []byte, sb *Superblock) error {
	switch layout.Class {
	case LayoutCompact, LayoutContiguous:
		return nil

	case LayoutChunked:
		if len(props) < 1 {
			return errors.New("chunked layout properties too short")
		}
		ndims := int(props[0])
		pos := 1 + int(sb.OffsetSize)
		if len(props) < pos+4*ndims {
			return errors.New("chunked layout dimensions truncated")
		}
		for i := 0; i < ndims; i++ {
			layout.ChunkDims = append(layout.ChunkDims,
				uint64(binary.LittleEndian.Uint32(props[pos+4*i:])))
		}
		return nil

	default:
		return fmt.Errorf("unsupported layout class for version 3: %d", layout.Class)
	}
}

// parseLayoutV4 parses version 4 properties. Chunked: flags (1) +
// dimensionality (1) + dimension size encoding width (1) + dimension
// sizes (encoded width each).
func parseLayoutV4(layout *DataLayout, props []byte) error {
	switch layout.Class {
	case LayoutCompact, LayoutContiguous, LayoutVirtual:
		return nil

	case LayoutChunked:
		if len(props) < 3 {
			return errors.New("chunked layout properties too short")
		}
		ndims := int(props[1])
		encSize := int(props[2])
		if encSize == 0 || encSize > 8 {
			return fmt.Errorf("invalid chunk dimension encoding width: %d", encSize)
		}
		pos := 3
		if len(props) < pos+encSize*ndims {
			return errors.New("chunked layout dimensions truncated")
		}
		for i := 0; i < ndims; i++ {
			var dim uint64
			for b := 0; b < encSize; b++ {
				dim |= uint64(props[pos+i*encSize+b]) << (8 * b)
			}
			layout.ChunkDims = append(layout.ChunkDims, dim)
		}
		return nil

	default:
		return fmt.Errorf("unsupported layout class for version 4: %d", layout.Class)
	}
}
