package container

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/scigolib/h5view/internal/utils"
)

// DatatypeClass is the HDF5 datatype class.
type DatatypeClass uint8

// Datatype classes from the HDF5 specification.
const (
	ClassFixed     DatatypeClass = 0
	ClassFloat     DatatypeClass = 1
	ClassTime      DatatypeClass = 2
	ClassString    DatatypeClass = 3
	ClassBitfield  DatatypeClass = 4
	ClassOpaque    DatatypeClass = 5
	ClassCompound  DatatypeClass = 6
	ClassReference DatatypeClass = 7
	ClassEnum      DatatypeClass = 8
	ClassVarLen    DatatypeClass = 9
	ClassArray     DatatypeClass = 10
)

// String returns the class name used in type renderings.
func (c DatatypeClass) String() string {
	switch c {
	case ClassFixed:
		return "fixed"
	case ClassFloat:
		return "float"
	case ClassTime:
		return "time"
	case ClassString:
		return "string"
	case ClassBitfield:
		return "bitfield"
	case ClassOpaque:
		return "opaque"
	case ClassCompound:
		return "compound"
	case ClassReference:
		return "reference"
	case ClassEnum:
		return "enum"
	case ClassVarLen:
		return "vlen"
	case ClassArray:
		return "array"
	default:
		return fmt.Sprintf("class(%d)", uint8(c))
	}
}

// Datatype class bit field flags used during value decoding.
const (
	dtFlagBigEndian = 0x01 // fixed/float bit 0: byte order
	dtFlagSigned    = 0x08 // fixed bit 3: two's complement
)

// Datatype is a parsed datatype message (type 0x0003). Members is set for
// compound types, Base for variable-length and array types, Dims for
// array types.
type Datatype struct {
	Version uint8
	Class   DatatypeClass
	Size    uint32
	Bits    uint32 // class bit field, bits 0-23 of the message header

	Members []CompoundMember
	Base    *Datatype
	Dims    []uint64
}

// CompoundMember is one field of a compound datatype.
type CompoundMember struct {
	Name   string
	Offset uint32
	Type   *Datatype
}

// BigEndian reports the byte order for fixed-point and float types.
func (dt *Datatype) BigEndian() bool {
	return dt.Bits&dtFlagBigEndian != 0
}

// Signed reports two's complement encoding for fixed-point types.
func (dt *Datatype) Signed() bool {
	return dt.Bits&dtFlagSigned != 0
}

// parseDatatype parses a datatype message.
//
// Header (8 bytes): class and version packed in byte 0 (version in the
// upper nibble), class bit field in bytes 1-3, size in bytes 4-7.
// Class-specific properties follow.
func parseDatatype(data []byte) (*Datatype, error) {
	dt, _, err := parseDatatypeAt(data)
	return dt, err
}

// parseDatatypeAt parses a datatype and additionally reports how many
// bytes it consumed, which compound member parsing needs to advance.
func parseDatatypeAt(data []byte) (*Datatype, int, error) {
	if len(data) < 8 {
		return nil, 0, errors.New("datatype message too short")
	}

	dt := &Datatype{
		Version: data[0] >> 4,
		Class:   DatatypeClass(data[0] & 0x0F),
		Bits:    uint32(data[1]) | uint32(data[2])<<8 | uint32(data[3])<<16,
		Size:    binary.LittleEndian.Uint32(data[4:8]),
	}
	if dt.Version < 1 || dt.Version > 3 {
		return nil, 0, fmt.Errorf("unsupported datatype version: %d", dt.Version)
	}

	props := data[8:]
	switch dt.Class {
	case ClassFixed, ClassBitfield:
		// Bit offset (2) + bit precision (2).
		return dt, 8 + 4, nil

	case ClassFloat:
		// Bit offset, precision, exponent/mantissa locations and sizes,
		// exponent bias: 12 property bytes.
		return dt, 8 + 12, nil

	case ClassTime:
		return dt, 8 + 2, nil

	case ClassString, ClassReference:
		return dt, 8, nil

	case ClassOpaque:
		// Tag, NUL-terminated and padded to a multiple of 8. Its padded
		// length is recorded in the class bit field.
		tagLen := int(dt.Bits & 0xFF)
		return dt, 8 + tagLen, nil

	case ClassCompound:
		consumed, err := parseCompoundMembers(dt, props)
		if err != nil {
			return nil, 0, err
		}
		return dt, 8 + consumed, nil

	case ClassVarLen:
		base, used, err := parseDatatypeAt(props)
		if err != nil {
			return nil, 0, utils.WrapError("vlen base type parse failed", err)
		}
		dt.Base = base
		return dt, 8 + used, nil

	case ClassArray:
		consumed, err := parseArrayProps(dt, props)
		if err != nil {
			return nil, 0, err
		}
		return dt, 8 + consumed, nil

	case ClassEnum:
		base, _, err := parseDatatypeAt(props)
		if err != nil {
			return nil, 0, utils.WrapError("enum base type parse failed", err)
		}
		dt.Base = base
		// Enum names and values follow the base type; skip them.
		return dt, 8 + len(props), nil

	default:
		return nil, 0, fmt.Errorf("unsupported datatype class: %d", dt.Class)
	}
}

// parseArrayProps parses array datatype properties.
//
// Version 2: dimensionality (1) + reserved (3) + dims (4 each) +
// permutations (4 each) + base type. Version 3 drops the reserved bytes
// and the permutation indices.
func parseArrayProps(dt *Datatype, props []byte) (int, error) {
	if len(props) < 1 {
		return 0, errors.New("array datatype properties too short")
	}
	ndims := int(props[0])
	pos := 1

	switch dt.Version {
	case 2:
		pos += 3 // reserved
		need := pos + 8*ndims
		if len(props) < need {
			return 0, errors.New("array datatype properties truncated")
		}
		for i := 0; i < ndims; i++ {
			dt.Dims = append(dt.Dims, uint64(binary.LittleEndian.Uint32(props[pos+4*i:])))
		}
		pos += 8 * ndims // dims + permutation indices
	case 3:
		need := pos + 4*ndims
		if len(props) < need {
			return 0, errors.New("array datatype properties truncated")
		}
		for i := 0; i < ndims; i++ {
			dt.Dims = append(dt.Dims, uint64(binary.LittleEndian.Uint32(props[pos+4*i:])))
		}
		pos += 4 * ndims
	default:
		return 0, fmt.Errorf("unsupported array datatype version: %d", dt.Version)
	}

	base, used, err := parseDatatypeAt(props[pos:])
	if err != nil {
		return 0, utils.WrapError("array base type parse failed", err)
	}
	dt.Base = base
	return pos + used, nil
}

// parseCompoundMembers parses the member list of a compound datatype. The
// member count sits in bits 0-15 of the class bit field.
func parseCompoundMembers(dt *Datatype, props []byte) (int, error) {
	count := int(dt.Bits & 0xFFFF)
	pos := 0

	for i := 0; i < count; i++ {
		member := CompoundMember{}

		switch dt.Version {
		case 1, 2:
			// Name is NUL-terminated and padded to a multiple of 8.
			nameLen := cstringLen(props[pos:])
			if nameLen < 0 {
				return 0, errors.New("compound member name truncated")
			}
			member.Name = string(props[pos : pos+nameLen])
			pos += utils.Pad8(nameLen + 1)

			if len(props) < pos+4 {
				return 0, errors.New("compound member offset truncated")
			}
			member.Offset = binary.LittleEndian.Uint32(props[pos:])
			pos += 4

			if dt.Version == 1 {
				// Dimensionality (1) + reserved (3) + permutation (4) +
				// reserved (4) + four dimension sizes (16).
				pos += 28
			}

		case 3:
			nameLen := cstringLen(props[pos:])
			if nameLen < 0 {
				return 0, errors.New("compound member name truncated")
			}
			member.Name = string(props[pos : pos+nameLen])
			pos += nameLen + 1

			offsetBytes := minBytesFor(dt.Size)
			if len(props) < pos+offsetBytes {
				return 0, errors.New("compound member offset truncated")
			}
			//nolint:gosec // G115: member offsets are bounded by the compound size
			member.Offset = uint32(utils.ReadUint(props[pos:], offsetBytes))
			pos += offsetBytes

		default:
			return 0, fmt.Errorf("unsupported compound datatype version: %d", dt.Version)
		}

		if len(props) < pos+8 {
			return 0, errors.New("compound member datatype truncated")
		}
		memberType, used, err := parseDatatypeAt(props[pos:])
		if err != nil {
			return 0, utils.WrapError(fmt.Sprintf("compound member %q parse failed", member.Name), err)
		}
		member.Type = memberType
		pos += used

		dt.Members = append(dt.Members, member)
	}

	return pos, nil
}

// cstringLen returns the length of the NUL-terminated string at the start
// of data, or -1 when no terminator is present.
func cstringLen(data []byte) int {
	for i, b := range data {
		if b == 0 {
			return i
		}
	}
	return -1
}

// minBytesFor returns the minimum number of bytes needed to encode values
// up to size, as used by version 3 compound member offsets.
func minBytesFor(size uint32) int {
	n := 1
	for limit := uint64(1) << 8; uint64(size) >= limit; limit <<= 8 {
		n++
	}
	return n
}
