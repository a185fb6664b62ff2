package container

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strings"

	"github.com/scigolib/h5view/internal/utils"
)

// LinkType is the native HDF5 link type enumeration.
type LinkType uint8

// Link type values from the HDF5 specification.
const (
	LinkTypeHard     LinkType = 0
	LinkTypeSoft     LinkType = 1
	LinkTypeExternal LinkType = 64
)

// String returns the link type name.
func (lt LinkType) String() string {
	switch lt {
	case LinkTypeHard:
		return "Hard"
	case LinkTypeSoft:
		return "Soft"
	case LinkTypeExternal:
		return "External"
	default:
		return fmt.Sprintf("Unknown(%d)", lt)
	}
}

// Link is a named reference from a group to a child object. The target
// fields are private to the container layer; callers resolve links through
// Group.OpenGroup and Group.OpenDataset.
type Link struct {
	Name string
	Type LinkType

	objectAddress uint64 // hard links
	target        string // soft links: path within this file
	targetFile    string // external links: file name
	targetPath    string // external links: path within the target file
}

// Link message flag bits (HDF5 spec IV.A.2.f).
const (
	linkFlagLengthMask    uint8 = 0x03 // bits 0-1: width of the name length field
	linkFlagCreationOrder uint8 = 0x04 // bit 2: creation order field present
	linkFlagTypeField     uint8 = 0x08 // bit 3: link type field present
	linkFlagCharSet       uint8 = 0x10 // bit 4: character set field present
)

// parseLinkMessage parses a link message (type 0x0006).
//
// Layout: version (1) + flags (1) + optional link type (1) + optional
// creation order (8) + optional character set (1) + name length (1/2/4/8
// per flags bits 0-1) + name + type-specific link value.
func parseLinkMessage(data []byte, sb *Superblock) (*Link, error) {
	if len(data) < 2 {
		return nil, errors.New("link message too short")
	}

	version := data[0]
	flags := data[1]
	if version != 1 {
		return nil, fmt.Errorf("unsupported link message version: %d", version)
	}

	link := &Link{Type: LinkTypeHard}
	offset := 2

	if flags&linkFlagTypeField != 0 {
		if len(data) < offset+1 {
			return nil, errors.New("link message truncated (link type)")
		}
		link.Type = LinkType(data[offset])
		offset++
	}
	if flags&linkFlagCreationOrder != 0 {
		if len(data) < offset+8 {
			return nil, errors.New("link message truncated (creation order)")
		}
		offset += 8
	}
	if flags&linkFlagCharSet != 0 {
		if len(data) < offset+1 {
			return nil, errors.New("link message truncated (character set)")
		}
		offset++
	}

	lengthSize := 1 << (flags & linkFlagLengthMask)
	if len(data) < offset+lengthSize {
		return nil, errors.New("link message truncated (name length)")
	}
	nameLength := utils.ReadUint(data[offset:], lengthSize)
	offset += lengthSize

	if nameLength > 1024*1024 {
		return nil, fmt.Errorf("link name length too large: %d", nameLength)
	}
	if len(data) < offset+int(nameLength) {
		return nil, errors.New("link message truncated (name)")
	}
	link.Name = string(data[offset : offset+int(nameLength)])
	offset += int(nameLength)

	if err := parseLinkValue(data[offset:], link, sb); err != nil {
		return nil, err
	}
	return link, nil
}

func parseLinkValue(data []byte, link *Link, sb *Superblock) error {
	switch link.Type {
	case LinkTypeHard:
		// Hard link value: the target's object header address.
		if len(data) < int(sb.OffsetSize) {
			return errors.New("link message truncated (hard link address)")
		}
		link.objectAddress = utils.ReadUint(data, int(sb.OffsetSize))
		return nil

	case LinkTypeSoft:
		value, err := lengthPrefixedValue(data)
		if err != nil {
			return err
		}
		link.target = strings.TrimRight(string(value), "\x00")
		return nil

	case LinkTypeExternal:
		// External link value: version/flags byte, then two NUL-terminated
		// strings: file name and object path (H5Lexternal.c).
		value, err := lengthPrefixedValue(data)
		if err != nil {
			return err
		}
		if len(value) < 1 {
			return errors.New("external link value empty")
		}
		parts := strings.SplitN(string(value[1:]), "\x00", 3)
		if len(parts) < 2 {
			return errors.New("external link value malformed")
		}
		link.targetFile = parts[0]
		link.targetPath = parts[1]
		return nil

	default:
		return fmt.Errorf("unsupported link type: %d", link.Type)
	}
}

// linkInfoFractalHeap reads the fractal heap address out of a link info
// message (type 0x0002).
//
// Layout: version (1) + flags (1) + optional maximum creation index (8,
// flags bit 0) + fractal heap address + name index B-tree address. An
// undefined heap address means the group's links are stored compactly as
// link messages.
func linkInfoFractalHeap(data []byte, sb *Superblock) (uint64, error) {
	if len(data) < 2 {
		return 0, errors.New("link info message too short")
	}
	if data[0] != 0 {
		return 0, fmt.Errorf("unsupported link info message version: %d", data[0])
	}

	offset := 2
	if data[1]&0x01 != 0 {
		offset += 8
	}
	if len(data) < offset+int(sb.OffsetSize) {
		return 0, errors.New("link info message truncated (fractal heap address)")
	}
	return utils.ReadUint(data[offset:], int(sb.OffsetSize)), nil
}

// lengthPrefixedValue reads the 2-byte length-prefixed link value used by
// soft and external links.
func lengthPrefixedValue(data []byte) ([]byte, error) {
	if len(data) < 2 {
		return nil, errors.New("link message truncated (value length)")
	}
	length := binary.LittleEndian.Uint16(data[0:2])
	if len(data) < 2+int(length) {
		return nil, errors.New("link message truncated (value)")
	}
	return data[2 : 2+int(length)], nil
}
