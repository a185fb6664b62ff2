package container

import (
	"errors"
	"fmt"

	"github.com/scigolib/h5view/internal/utils"
)

// Dataspace describes the extent of a dataset or attribute. A scalar
// dataspace has rank 0 and an empty Dimensions slice.
type Dataspace struct {
	Version    uint8
	Dimensions []uint64
}

// TotalElements returns the product of the dimensions, 1 for scalars.
// The product saturates at the maximum uint64 so corrupt dimension
// values cannot wrap around to a small count.
func (ds *Dataspace) TotalElements() uint64 {
	total := uint64(1)
	for _, d := range ds.Dimensions {
		if d != 0 && total > ^uint64(0)/d {
			return ^uint64(0)
		}
		total *= d
	}
	return total
}

// parseDataspace parses a dataspace message (type 0x0001).
//
// Version 1: version (1) + dimensionality (1) + flags (1) + reserved (5),
// then the dimension sizes. Version 2: version (1) + dimensionality (1) +
// flags (1) + type (1), then the dimension sizes. Each dimension is 8
// bytes; maximum sizes follow when flags bit 0 is set and are skipped.
func parseDataspace(data []byte) (*Dataspace, error) {
	if len(data) < 4 {
		return nil, errors.New("dataspace message too short")
	}

	version := data[0]
	rank := int(data[1])

	var offset int
	switch version {
	case 1:
		if len(data) < 8 {
			return nil, errors.New("dataspace v1 message too short")
		}
		offset = 8
	case 2:
		offset = 4
	default:
		return nil, fmt.Errorf("unsupported dataspace version: %d", version)
	}

	if len(data) < offset+rank*8 {
		return nil, errors.New("dataspace message truncated (dimensions)")
	}

	ds := &Dataspace{Version: version, Dimensions: make([]uint64, 0, rank)}
	for i := 0; i < rank; i++ {
		ds.Dimensions = append(ds.Dimensions, utils.ReadUint(data[offset+i*8:], 8))
	}
	return ds, nil
}
