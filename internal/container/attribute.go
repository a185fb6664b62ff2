package container

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/scigolib/h5view/internal/utils"
)

// Attribute is a parsed attribute message (type 0x000C): name, type and
// shape metadata plus the raw value bytes. Value decodes the bytes on
// demand.
type Attribute struct {
	Name      string
	Datatype  *Datatype
	Dataspace *Dataspace
	Data      []byte
}

// parseAttribute parses attribute message versions 1, 2 and 3.
//
// Common prefix: version (1) + flags (1) + name size (2) + datatype size
// (2) + dataspace size (2). Version 3 inserts a name character set byte.
// In version 1 the name, datatype and dataspace regions are each padded
// to a multiple of 8 bytes; versions 2 and 3 pack them.
func parseAttribute(data []byte) (*Attribute, error) {
	if len(data) < 8 {
		return nil, errors.New("attribute message too short")
	}

	version := data[0]
	if version < 1 || version > 3 {
		return nil, fmt.Errorf("unsupported attribute message version: %d", version)
	}

	nameSize := int(binary.LittleEndian.Uint16(data[2:4]))
	datatypeSize := int(binary.LittleEndian.Uint16(data[4:6]))
	dataspaceSize := int(binary.LittleEndian.Uint16(data[6:8]))

	pos := 8
	if version == 3 {
		if len(data) < 9 {
			return nil, errors.New("attribute message truncated (character set)")
		}
		pos = 9
	}

	padded := version == 1
	advance := func(size int) int {
		if padded {
			return utils.Pad8(size)
		}
		return size
	}

	if len(data) < pos+nameSize {
		return nil, errors.New("attribute message truncated (name)")
	}
	name := strings.TrimRight(string(data[pos:pos+nameSize]), "\x00")
	pos += advance(nameSize)

	if len(data) < pos+datatypeSize {
		return nil, errors.New("attribute message truncated (datatype)")
	}
	dt, err := parseDatatype(data[pos : pos+datatypeSize])
	if err != nil {
		return nil, utils.WrapError("attribute datatype parse failed", err)
	}
	pos += advance(datatypeSize)

	if len(data) < pos+dataspaceSize {
		return nil, errors.New("attribute message truncated (dataspace)")
	}
	ds, err := parseDataspace(data[pos : pos+dataspaceSize])
	if err != nil {
		return nil, utils.WrapError("attribute dataspace parse failed", err)
	}
	pos += advance(dataspaceSize)

	if pos > len(data) {
		return nil, errors.New("attribute message truncated (value)")
	}

	return &Attribute{
		Name:      name,
		Datatype:  dt,
		Dataspace: ds,
		Data:      data[pos:],
	}, nil
}

// Value decodes the attribute's raw bytes. Scalar attributes yield a
// single Go value; one-dimensional attributes yield a slice. Fixed-point,
// float and fixed-size string types are supported.
func (a *Attribute) Value() (interface{}, error) {
	elemSize := int(a.Datatype.Size)
	if elemSize == 0 {
		return nil, errors.New("attribute element size is zero")
	}

	// Compare in uint64 before converting: corrupt dimension values can
	// claim element counts far beyond the stored bytes.
	want := a.Dataspace.TotalElements()
	if want > uint64(len(a.Data))/uint64(elemSize) {
		return nil, errors.New("attribute value truncated")
	}
	count := int(want)

	values := make([]interface{}, 0, count)
	for i := 0; i < count; i++ {
		v, err := decodeElement(a.Datatype, a.Data[i*elemSize:(i+1)*elemSize])
		if err != nil {
			return nil, err
		}
		values = append(values, v)
	}

	if len(a.Dataspace.Dimensions) == 0 {
		return values[0], nil
	}
	return values, nil
}

func decodeElement(dt *Datatype, raw []byte) (interface{}, error) {
	switch dt.Class {
	case ClassFixed:
		u := readOrdered(raw, dt.BigEndian())
		if dt.Signed() {
			return signExtend(u, len(raw)), nil
		}
		return u, nil

	case ClassFloat:
		u := readOrdered(raw, dt.BigEndian())
		switch len(raw) {
		case 4:
			return float64(math.Float32frombits(uint32(u))), nil
		case 8:
			return math.Float64frombits(u), nil
		default:
			return nil, fmt.Errorf("unsupported float size: %d", len(raw))
		}

	case ClassString:
		return strings.TrimRight(string(raw), "\x00"), nil

	default:
		return nil, fmt.Errorf("unsupported attribute datatype class: %s", dt.Class)
	}
}

func readOrdered(raw []byte, bigEndian bool) uint64 {
	var u uint64
	if bigEndian {
		for _, b := range raw {
			u = u<<8 | uint64(b)
		}
		return u
	}
	for i := len(raw) - 1; i >= 0; i-- {
		u = u<<8 | uint64(raw[i])
	}
	return u
}

func signExtend(u uint64, size int) int64 {
	shift := uint(64 - 8*size)
	//nolint:gosec // G115: intentional two's complement reinterpretation
	return int64(u<<shift) >> shift
}
