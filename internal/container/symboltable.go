package container

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/scigolib/h5view/internal/utils"
)

// Old-style (pre-1.8) groups index their children through a v1 B-tree of
// symbol table nodes, with link names stored in a local heap.

// localHeap is an HDF5 local heap: a flat data segment of NUL-terminated
// strings addressed by offset.
type localHeap struct {
	data []byte
}

// readLocalHeap loads the local heap at address.
//
// Header: "HEAP" (4) + version (1) + reserved (3) + data segment size
// (LengthSize) + free list offset (LengthSize) + data segment address
// (OffsetSize).
func readLocalHeap(r io.ReaderAt, address uint64, sb *Superblock) (*localHeap, error) {
	headerSize := 8 + 2*int(sb.LengthSize) + int(sb.OffsetSize)
	header := make([]byte, headerSize)
	//nolint:gosec // G115: HDF5 addresses fit in int64 for io.ReaderAt
	if _, err := r.ReadAt(header, int64(address)); err != nil {
		return nil, utils.WrapError("local heap header read failed", err)
	}

	if string(header[0:4]) != "HEAP" {
		return nil, errors.New("invalid local heap signature")
	}

	pos := 8
	segmentSize := utils.ReadUint(header[pos:], int(sb.LengthSize))
	pos += 2 * int(sb.LengthSize) // skip free list offset
	segmentAddr := utils.ReadUint(header[pos:], int(sb.OffsetSize))

	if segmentSize > 1<<28 {
		return nil, fmt.Errorf("local heap segment too large: %d", segmentSize)
	}

	heap := &localHeap{data: make([]byte, segmentSize)}
	//nolint:gosec // G115: HDF5 addresses fit in int64 for io.ReaderAt
	if _, err := r.ReadAt(heap.data, int64(segmentAddr)); err != nil {
		return nil, utils.WrapError("local heap data read failed", err)
	}
	return heap, nil
}

// str returns the NUL-terminated string at offset within the data segment.
func (h *localHeap) str(offset uint64) (string, error) {
	if offset >= uint64(len(h.data)) {
		return "", errors.New("offset beyond heap data")
	}
	end := offset
	for end < uint64(len(h.data)) && h.data[end] != 0 {
		end++
	}
	if end >= uint64(len(h.data)) {
		return "", errors.New("heap string not NUL-terminated")
	}
	return string(h.data[offset:end]), nil
}

// Symbol table entry cache types. Type 2 marks a symbolic link whose
// target path offset sits in the first 4 scratch-pad bytes.
const cacheTypeSymlink = 2

// symbolEntry is one entry of a symbol table node.
type symbolEntry struct {
	nameOffset uint64 // link name offset in the local heap
	address    uint64 // object header address (hard entries)
	cacheType  uint32
	scratch    []byte // 16-byte cache scratch pad
}

// readSymbolNode parses a symbol table node (SNOD).
//
// Header: "SNOD" (4) + version (1) + reserved (1) + symbol count (2).
// Each entry: name offset (OffsetSize) + object address (OffsetSize) +
// cache type (4) + reserved (4) + scratch pad (16).
func readSymbolNode(r io.ReaderAt, address uint64, sb *Superblock) ([]symbolEntry, error) {
	header := make([]byte, 8)
	//nolint:gosec // G115: HDF5 addresses fit in int64 for io.ReaderAt
	if _, err := r.ReadAt(header, int64(address)); err != nil {
		return nil, utils.WrapError("symbol node header read failed", err)
	}

	if string(header[0:4]) != "SNOD" {
		return nil, fmt.Errorf("invalid symbol node signature: %q", header[0:4])
	}
	if header[4] != 1 {
		return nil, fmt.Errorf("unsupported symbol node version: %d", header[4])
	}

	count := binary.LittleEndian.Uint16(header[6:8])
	if count == 0 {
		return nil, nil
	}

	entrySize := 2*int(sb.OffsetSize) + 4 + 4 + 16
	data := make([]byte, int(count)*entrySize)
	//nolint:gosec // G115: HDF5 addresses fit in int64 for io.ReaderAt
	if _, err := r.ReadAt(data, int64(address)+8); err != nil {
		return nil, utils.WrapError("symbol node entries read failed", err)
	}

	entries := make([]symbolEntry, 0, count)
	offset := 0
	for i := uint16(0); i < count; i++ {
		entry := symbolEntry{
			nameOffset: utils.ReadUint(data[offset:], int(sb.OffsetSize)),
			address:    utils.ReadUint(data[offset+int(sb.OffsetSize):], int(sb.OffsetSize)),
		}
		offset += 2 * int(sb.OffsetSize)
		entry.cacheType = binary.LittleEndian.Uint32(data[offset : offset+4])
		offset += 8 // cache type + reserved
		entry.scratch = data[offset : offset+16]
		offset += 16
		entries = append(entries, entry)
	}
	return entries, nil
}

// readGroupBTree collects the symbol table entries indexed by the v1
// group B-tree ("TREE", node type 0) at address, in key order. Internal
// nodes are descended recursively.
//
// Node header: "TREE" (4) + node type (1) + node level (1) + entries
// used (2) + left sibling (OffsetSize) + right sibling (OffsetSize),
// followed by interleaved keys and child addresses.
func readGroupBTree(r io.ReaderAt, address uint64, sb *Superblock) ([]symbolEntry, error) {
	headerSize := 8 + 2*int(sb.OffsetSize)
	header := make([]byte, headerSize)
	//nolint:gosec // G115: HDF5 addresses fit in int64 for io.ReaderAt
	if _, err := r.ReadAt(header, int64(address)); err != nil {
		return nil, utils.WrapError("B-tree node read failed", err)
	}

	if string(header[0:4]) != "TREE" {
		return nil, fmt.Errorf("invalid B-tree signature: %q", header[0:4])
	}
	if header[4] != 0 {
		return nil, fmt.Errorf("expected group B-tree (type 0), got type %d", header[4])
	}

	level := header[5]
	used := binary.LittleEndian.Uint16(header[6:8])
	if used == 0 {
		return nil, nil
	}

	// Interleaved layout: key[0], child[0], key[1], ..., child[n-1], key[n].
	dataSize := (2*int(used) + 1) * int(sb.OffsetSize)
	data := make([]byte, dataSize)
	//nolint:gosec // G115: HDF5 addresses fit in int64 for io.ReaderAt
	if _, err := r.ReadAt(data, int64(address)+int64(headerSize)); err != nil {
		return nil, utils.WrapError("B-tree entries read failed", err)
	}

	var entries []symbolEntry
	pos := int(sb.OffsetSize) // skip key[0]
	for i := uint16(0); i < used; i++ {
		child := utils.ReadUint(data[pos:], int(sb.OffsetSize))
		pos += 2 * int(sb.OffsetSize) // child + next key

		if child == 0 || child == undefinedAddress {
			continue
		}

		var sub []symbolEntry
		var err error
		if level > 0 {
			sub, err = readGroupBTree(r, child, sb)
		} else {
			sub, err = readSymbolNode(r, child, sb)
		}
		if err != nil {
			return nil, err
		}
		entries = append(entries, sub...)
	}
	return entries, nil
}

// undefinedAddress marks unset file addresses in the HDF5 format.
const undefinedAddress = ^uint64(0)
