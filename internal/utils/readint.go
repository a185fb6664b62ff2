package utils

import "encoding/binary"

// ReadUint reads a little-endian unsigned integer of 1, 2, 4 or 8 bytes
// from the start of data. HDF5 metadata is always little-endian; only
// dataset and attribute payloads carry a per-type byte order.
// Shorter slices are zero-padded, matching the file format's treatment
// of truncated trailing fields.
func ReadUint(data []byte, size int) uint64 {
	if size > len(data) {
		size = len(data)
	}

	switch size {
	case 1:
		return uint64(data[0])
	case 2:
		return uint64(binary.LittleEndian.Uint16(data[:2]))
	case 4:
		return uint64(binary.LittleEndian.Uint32(data[:4]))
	case 8:
		return binary.LittleEndian.Uint64(data[:8])
	default:
		var buf [8]byte
		copy(buf[:], data[:size])
		return binary.LittleEndian.Uint64(buf[:])
	}
}

// Pad8 rounds n up to the next multiple of 8. Several HDF5 structures
// (v1 header messages, compound member names) are 8-byte aligned.
func Pad8(n int) int {
	if n%8 != 0 {
		n += 8 - n%8
	}
	return n
}
