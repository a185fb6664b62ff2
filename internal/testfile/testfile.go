// Package testfile builds small, valid HDF5 byte images for tests. The
// images use a version 2 superblock with 8-byte offsets and version 2
// object headers, matching what current HDF5 writers emit with the 1.8
// file format.
package testfile

import (
	"encoding/binary"
	"os"
)

const undef = ^uint64(0)

// BasicTree returns an HDF5 image with two root links:
//
//	/entry  group carrying an int32 attribute "version" = 3
//	/data   chunked int64 dataset, shape [12], chunks [4], deflate filter,
//	        carrying a string attribute "units" = "m"
func BasicTree() []byte {
	return tree(false)
}

// TreeWithAlias returns the BasicTree image plus a third root link,
// a soft link "alias" targeting "/entry".
func TreeWithAlias() []byte {
	return tree(true)
}

// TreeWithExternal returns an image whose root holds a single external
// link "remote" targeting "/entry" inside fileName.
func TreeWithExternal(fileName string) []byte {
	return TreeWithExternalPath(fileName, "/entry")
}

// TreeWithExternalPath returns an image whose root holds a single
// external link "remote" targeting the given path inside fileName.
func TreeWithExternalPath(fileName, target string) []byte {
	root := objectHeader(message{6, externalLink("remote", fileName, target)})
	image := superblock(48, 48+uint64(len(root)))
	return append(image, root...)
}

// TreeWithDenseLinks returns an image whose root group records a defined
// fractal heap address in its link info message, i.e. dense link storage.
func TreeWithDenseLinks() []byte {
	root := objectHeader(message{2, denseLinkInfo(1024)})
	image := superblock(48, 48+uint64(len(root)))
	return append(image, root...)
}

// TreeWithCycle returns an image whose root holds a soft link "loop"
// targeting the root itself.
func TreeWithCycle() []byte {
	root := objectHeader(message{6, softLink("loop", "/")})
	image := superblock(48, 48+uint64(len(root)))
	return append(image, root...)
}

// TreeWithSelfLink returns an image whose root holds a soft link "self"
// targeting "/self", i.e. a link that resolves to itself.
func TreeWithSelfLink() []byte {
	root := objectHeader(message{6, softLink("self", "/self")})
	image := superblock(48, 48+uint64(len(root)))
	return append(image, root...)
}

// Write writes an image to path for tests that open files from disk.
func Write(path string, image []byte) error {
	return os.WriteFile(path, image, 0o600)
}

func tree(alias bool) []byte {
	sub := objectHeader(
		message{2, linkInfo()},
		message{12, int32Attribute("version", 3)},
	)
	dset := objectHeader(
		message{1, dataspace1D(12)},
		message{3, int64Type()},
		message{8, chunkedLayout([]uint32{4}, 8)},
		message{11, deflatePipeline(6)},
		message{12, stringAttribute("units", "m")},
	)

	subAddr := uint64(48)
	dsetAddr := subAddr + uint64(len(sub))
	rootAddr := dsetAddr + uint64(len(dset))

	rootMsgs := []message{
		{6, hardLink("entry", subAddr)},
		{6, hardLink("data", dsetAddr)},
	}
	if alias {
		rootMsgs = append(rootMsgs, message{6, softLink("alias", "/entry")})
	}
	root := objectHeader(rootMsgs...)

	total := rootAddr + uint64(len(root))

	image := superblock(rootAddr, total)
	image = append(image, sub...)
	image = append(image, dset...)
	image = append(image, root...)
	return image
}

// superblock emits a version 2 superblock: signature, version, offset and
// length sizes, flags, then base, extension, end-of-file and root group
// addresses, then a checksum (left zero; readers here do not verify it).
func superblock(rootAddr, eof uint64) []byte {
	buf := []byte("\x89HDF\r\n\x1a\n")
	buf = append(buf, 2, 8, 8, 0)
	buf = put64(buf, 0)
	buf = put64(buf, undef)
	buf = put64(buf, eof)
	buf = put64(buf, rootAddr)
	return append(buf, 0, 0, 0, 0)
}

type message struct {
	typ  byte
	data []byte
}

// objectHeader emits a version 2 object header with flags 0: no times, no
// phase-change limits, a 1-byte chunk size, no per-message creation order.
// The trailing checksum is left zero.
func objectHeader(msgs ...message) []byte {
	var body []byte
	for _, m := range msgs {
		body = append(body, m.typ)
		body = put16(body, uint16(len(m.data)))
		body = append(body, 0) // message flags
		body = append(body, m.data...)
	}
	if len(body) > 0xFF {
		panic("testfile: object header chunk exceeds 1-byte size")
	}

	buf := []byte("OHDR")
	buf = append(buf, 2, 0, byte(len(body)))
	buf = append(buf, body...)
	return append(buf, 0, 0, 0, 0)
}

// linkInfo emits a link info message with no creation order tracking and
// undefined fractal heap and name index addresses, i.e. a group whose
// links live directly in the header as link messages (none here).
func linkInfo() []byte {
	buf := []byte{0, 0}
	buf = put64(buf, undef)
	return put64(buf, undef)
}

// denseLinkInfo emits a link info message with a defined fractal heap
// address, marking a group that stores its links densely.
func denseLinkInfo(heapAddr uint64) []byte {
	buf := []byte{0, 0}
	buf = put64(buf, heapAddr)
	return put64(buf, undef)
}

// hardLink emits a version 1 link message with the link type field
// present (flags bit 3) and a 1-byte name length.
func hardLink(name string, addr uint64) []byte {
	buf := []byte{1, 0x08, 0, byte(len(name))}
	buf = append(buf, name...)
	return put64(buf, addr)
}

// softLink emits a version 1 soft link message targeting a path.
func softLink(name, target string) []byte {
	buf := []byte{1, 0x08, 1, byte(len(name))}
	buf = append(buf, name...)
	buf = put16(buf, uint16(len(target)))
	return append(buf, target...)
}

// externalLink emits a version 1 external link message. The link value is
// a version/flags byte followed by the NUL-terminated file name and
// object path.
func externalLink(name, file, target string) []byte {
	buf := []byte{1, 0x08, 64, byte(len(name))}
	buf = append(buf, name...)

	value := []byte{0}
	value = append(value, file...)
	value = append(value, 0)
	value = append(value, target...)
	value = append(value, 0)

	buf = put16(buf, uint16(len(value)))
	return append(buf, value...)
}

// dataspace1D emits a version 2 simple dataspace with one dimension.
func dataspace1D(dim uint64) []byte {
	buf := []byte{2, 1, 0, 1}
	return put64(buf, dim)
}

// scalarDataspace emits a version 2 scalar dataspace.
func scalarDataspace() []byte {
	return []byte{2, 0, 0, 0}
}

// int64Type emits a fixed-point datatype: little-endian, signed, 8 bytes.
func int64Type() []byte {
	return fixedType(8, 64)
}

func int32Type() []byte {
	return fixedType(4, 32)
}

func fixedType(size uint32, precision uint16) []byte {
	buf := []byte{0x10, 0x08, 0, 0}
	buf = put32(buf, size)
	buf = put16(buf, 0) // bit offset
	return put16(buf, precision)
}

// fixedStringType emits a fixed-size string datatype with NUL padding.
func fixedStringType(size uint32) []byte {
	buf := []byte{0x13, 0, 0, 0}
	return put32(buf, size)
}

// chunkedLayout emits a version 3 chunked data layout. The on-disk
// dimensionality is the chunk rank plus one, with the element byte size
// as the trailing dimension. The B-tree address is left undefined.
func chunkedLayout(chunkDims []uint32, elemSize uint32) []byte {
	buf := []byte{3, 2, byte(len(chunkDims) + 1)}
	buf = put64(buf, undef)
	for _, d := range chunkDims {
		buf = put32(buf, d)
	}
	return put32(buf, elemSize)
}

// deflatePipeline emits a version 2 filter pipeline holding a single
// deflate filter with the given compression level.
func deflatePipeline(level uint32) []byte {
	buf := []byte{2, 1}
	buf = put16(buf, 1) // filter ID: deflate
	buf = put16(buf, 0) // flags
	buf = put16(buf, 1) // client data count
	return put32(buf, level)
}

// int32Attribute emits a version 2 scalar int32 attribute message.
func int32Attribute(name string, value int32) []byte {
	//nolint:gosec // G115: test values are non-negative
	data := put32(nil, uint32(value))
	return attribute(name, int32Type(), scalarDataspace(), data)
}

// stringAttribute emits a version 2 scalar fixed-string attribute message.
// The string is stored NUL-padded to an even size.
func stringAttribute(name, value string) []byte {
	data := []byte(value)
	if len(data)%2 == 1 {
		data = append(data, 0)
	}
	return attribute(name, fixedStringType(uint32(len(data))), scalarDataspace(), data)
}

// attribute emits a version 2 attribute message: packed name (with NUL
// terminator), datatype, dataspace and raw value regions.
func attribute(name string, datatype, dataspace, value []byte) []byte {
	nameBytes := append([]byte(name), 0)

	buf := []byte{2, 0}
	buf = put16(buf, uint16(len(nameBytes)))
	buf = put16(buf, uint16(len(datatype)))
	buf = put16(buf, uint16(len(dataspace)))
	buf = append(buf, nameBytes...)
	buf = append(buf, datatype...)
	buf = append(buf, dataspace...)
	return append(buf, value...)
}

func put16(buf []byte, v uint16) []byte {
	return binary.LittleEndian.AppendUint16(buf, v)
}

func put32(buf []byte, v uint32) []byte {
	return binary.LittleEndian.AppendUint32(buf, v)
}

func put64(buf []byte, v uint64) []byte {
	return binary.LittleEndian.AppendUint64(buf, v)
}
