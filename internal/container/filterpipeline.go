package container

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strings"

	"github.com/scigolib/h5view/internal/utils"
)

// FilterID identifies a filter in a dataset's I/O pipeline.
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

// String returns the filter name, falling back to the numeric ID for
// dynamically registered filters.
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

// Filter is one entry of a dataset's filter pipeline. The pipeline is
// reported for inspection only; payload bytes are never run through it.
type Filter struct {
	ID         FilterID
	Name       string
	Flags      uint16
	ClientData []uint32
}

// parseFilterPipeline parses a filter pipeline message (type 0x000B),
// versions 1 and 2.
//
// Version 1 entries carry a name length field even for registered filters
// and pad names and client data to 8 bytes; version 2 drops the padding
// and omits the name for filter IDs below 256.
func parseFilterPipeline(data []byte) ([]Filter, error) {
	if len(data) < 2 {
		return nil, errors.New("filter pipeline message too short")
	}

	version := data[0]
	count := int(data[1])

	var pos int
	switch version {
	case 1:
		pos = 8 // version + count + 2 reserved + 4 reserved
	case 2:
		pos = 2
	default:
		return nil, fmt.Errorf("unsupported filter pipeline version: %d", version)
	}

	filters := make([]Filter, 0, count)
	for i := 0; i < count; i++ {
		filter, next, err := parseFilterEntry(data, pos, version)
		if err != nil {
			return nil, utils.WrapError(fmt.Sprintf("filter %d parse failed", i), err)
		}
		filters = append(filters, filter)
		pos = next
	}
	return filters, nil
}

func parseFilterEntry(data []byte, pos int, version uint8) (Filter, int, error) {
	var filter Filter

	if len(data) < pos+4 {
		return filter, 0, errors.New("filter entry truncated")
	}
	filter.ID = FilterID(binary.LittleEndian.Uint16(data[pos:]))
	pos += 2

	nameLength := 0
	hasNameLength := version == 1 || filter.ID >= 256
	if hasNameLength {
		if len(data) < pos+2 {
			return filter, 0, errors.New("filter entry truncated (name length)")
		}
		nameLength = int(binary.LittleEndian.Uint16(data[pos:]))
		pos += 2
	}

	if len(data) < pos+4 {
		return filter, 0, errors.New("filter entry truncated (flags)")
	}
	filter.Flags = binary.LittleEndian.Uint16(data[pos:])
	cdCount := int(binary.LittleEndian.Uint16(data[pos+2:]))
	pos += 4

	if nameLength > 0 {
		if len(data) < pos+nameLength {
			return filter, 0, errors.New("filter entry truncated (name)")
		}
		filter.Name = strings.TrimRight(string(data[pos:pos+nameLength]), "\x00")
		pos += nameLength
	}
	if filter.Name == "" {
		filter.Name = filter.ID.String()
	}

	if len(data) < pos+4*cdCount {
		return filter, 0, errors.New("filter entry truncated (client data)")
	}
	for j := 0; j < cdCount; j++ {
		filter.ClientData = append(filter.ClientData,
			binary.LittleEndian.Uint32(data[pos+4*j:]))
	}
	pos += 4 * cdCount

	// Version 1 pads client data to an even value count.
	if version == 1 && cdCount%2 == 1 {
		pos += 4
	}

	return filter, pos, nil
}
