package container

import (
	"errors"
	"fmt"
	"io"

	"github.com/scigolib/h5view/internal/utils"
)

// signature is the 8-byte magic at offset 0 of every HDF5 file.
const signature = "\x89HDF\r\n\x1a\n"

// Supported superblock versions. Version 1 files are rare enough that the
// HDF5 tooling itself rewrites them; they are rejected here like the other
// unsupported versions.
const (
	superblockV0 = 0
	superblockV2 = 2
	superblockV3 = 3
)

// Superblock holds the file-level metadata needed to address the rest of
// the container. All superblock fields are little-endian on disk.
type Superblock struct {
	Version     uint8
	OffsetSize  uint8
	LengthSize  uint8
	BaseAddress uint64
	RootAddress uint64 // object header address of the root group
}

// readSuperblock reads and parses the superblock at offset 0.
func readSuperblock(r io.ReaderAt) (*Superblock, error) {
	buf := make([]byte, 128)
	n, err := r.ReadAt(buf, 0)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, utils.WrapError("superblock read failed", err)
	}
	if n < 48 {
		return nil, errors.New("file too small to contain a superblock")
	}
	buf = buf[:n]

	if string(buf[:8]) != signature {
		return nil, ErrNotHDF5
	}

	version := buf[8]
	switch version {
	case superblockV0:
		return parseSuperblockV0(buf)
	case superblockV2, superblockV3:
		return parseSuperblockV2(buf, version)
	default:
		return nil, fmt.Errorf("unsupported superblock version: %d", version)
	}
}

// parseSuperblockV0 parses the version 0 layout:
//
//	Byte 13:  size of offsets
//	Byte 14:  size of lengths
//	Offset 24 (for 8-byte offsets): base address, free-space address,
//	  end-of-file address, driver-info address, then the root group
//	  symbol table entry (link name offset, object header address, ...).
func parseSuperblockV0(buf []byte) (*Superblock, error) {
	offsetSize := buf[13]
	lengthSize := buf[14]
	if err := validateSizes(offsetSize, lengthSize); err != nil {
		return nil, err
	}

	o := int(offsetSize)

	// Root group symbol table entry starts after four file addresses.
	entry := 24 + 4*o
	rootOff := entry + o // skip link name offset, take object header address
	if rootOff+o > len(buf) {
		return nil, errors.New("superblock v0 truncated")
	}

	sb := &Superblock{
		Version:     superblockV0,
		OffsetSize:  offsetSize,
		LengthSize:  lengthSize,
		BaseAddress: utils.ReadUint(buf[24:], o),
		RootAddress: utils.ReadUint(buf[rootOff:], o),
	}
	if sb.RootAddress == 0 {
		// Old tools occasionally leave the object header address unset and
		// only populate the symbol-table scratch pad. Those files predate
		// every producer still in use.
		return nil, errors.New("superblock v0 has no root object header address")
	}
	return sb, nil
}

// parseSuperblockV2 parses the version 2/3 layout:
//
//	Byte 9:   size of offsets
//	Byte 10:  size of lengths
//	Byte 11:  file consistency flags
//	Offset 12: base address, superblock extension address,
//	  end-of-file address, root group object header address, checksum.
func parseSuperblockV2(buf []byte, version uint8) (*Superblock, error) {
	offsetSize := buf[9]
	lengthSize := buf[10]
	if err := validateSizes(offsetSize, lengthSize); err != nil {
		return nil, err
	}

	o := int(offsetSize)
	if 12+4*o > len(buf) {
		return nil, errors.New("superblock v2 truncated")
	}

	return &Superblock{
		Version:     version,
		OffsetSize:  offsetSize,
		LengthSize:  lengthSize,
		BaseAddress: utils.ReadUint(buf[12:], o),
		RootAddress: utils.ReadUint(buf[12+3*o:], o),
	}, nil
}

func validateSizes(offsetSize, lengthSize uint8) error {
	valid := map[uint8]bool{2: true, 4: true, 8: true}
	if !valid[offsetSize] || !valid[lengthSize] {
		return fmt.Errorf("invalid superblock sizes: offset=%d, length=%d", offsetSize, lengthSize)
	}
	return nil
}
