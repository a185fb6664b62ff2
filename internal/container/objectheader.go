package container

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/scigolib/h5view/internal/utils"
)

// MessageType identifies the type of message in an object header.
type MessageType uint16

// Header message types used by the metadata reader.
const (
	MsgNil            MessageType = 0
	MsgDataspace      MessageType = 1
	MsgLinkInfo       MessageType = 2
	MsgDatatype       MessageType = 3
	MsgLink           MessageType = 6
	MsgDataLayout     MessageType = 8
	MsgFilterPipeline MessageType = 11
	MsgAttribute      MessageType = 12
	MsgContinuation   MessageType = 16
	MsgSymbolTable    MessageType = 17
)

// ObjectKind classifies the object an object header describes.
type ObjectKind uint8

// Object kinds, derived from the messages present in the header.
const (
	KindUnknown ObjectKind = iota
	KindGroup
	KindDataset
	KindDatatype
)

// HeaderMessage is a single raw message within an object header.
type HeaderMessage struct {
	Type MessageType
	Data []byte
}

// ObjectHeader is a parsed HDF5 object header: the message list plus the
// attributes decoded from it.
type ObjectHeader struct {
	Version    uint8
	Kind       ObjectKind
	Messages   []HeaderMessage
	Attributes []*Attribute
}

// FindMessage returns the first message of the given type, or nil.
func (h *ObjectHeader) FindMessage(t MessageType) *HeaderMessage {
	for i := range h.Messages {
		if h.Messages[i].Type == t {
			return &h.Messages[i]
		}
	}
	return nil
}

// readObjectHeader reads and parses the object header at address. Both the
// version 1 layout (no signature, continuation blocks) and the version 2
// layout ("OHDR" signature) are supported.
func readObjectHeader(r io.ReaderAt, address uint64, sb *Superblock) (*ObjectHeader, error) {
	prefix := make([]byte, 8)
	//nolint:gosec // G115: HDF5 addresses fit in int64 for io.ReaderAt
	if _, err := r.ReadAt(prefix, int64(address)); err != nil {
		return nil, utils.WrapError("object header read failed", err)
	}

	header := &ObjectHeader{}

	var err error
	switch {
	case string(prefix[0:4]) == "OHDR":
		header.Version = prefix[4]
		if header.Version != 2 {
			return nil, fmt.Errorf("unsupported object header version: %d", header.Version)
		}
		header.Messages, err = parseV2Messages(r, address, prefix[5], sb)
	case prefix[0] == 1 && prefix[1] == 0:
		header.Version = 1
		header.Messages, err = parseV1Messages(r, address, sb)
	default:
		return nil, fmt.Errorf("invalid object header signature: % x", prefix[0:4])
	}
	if err != nil {
		return nil, utils.WrapError("object header parse failed", err)
	}

	header.Kind = classifyObject(header.Messages)

	// Attributes are metadata; a malformed attribute message is dropped
	// rather than failing the whole header.
	for _, msg := range header.Messages {
		if msg.Type != MsgAttribute {
			continue
		}
		attr, err := parseAttribute(msg.Data)
		if err != nil {
			continue
		}
		header.Attributes = append(header.Attributes, attr)
	}

	return header, nil
}

// classifyObject derives the object kind from the message set. A dataspace
// message is definitive for datasets; any of the three link-bearing
// messages marks a group; a lone datatype message is a committed datatype.
func classifyObject(messages []HeaderMessage) ObjectKind {
	for _, msg := range messages {
		switch msg.Type {
		case MsgSymbolTable, MsgLinkInfo, MsgLink:
			return KindGroup
		case MsgDataspace:
			return KindDataset
		}
	}
	for _, msg := range messages {
		if msg.Type == MsgDatatype {
			return KindDatatype
		}
	}
	return KindUnknown
}

// parseV2Messages parses the message blocks of a version 2 object header.
//
// Prefix: "OHDR" (4) + version (1) + flags (1), then optional time fields
// (flags bit 5), optional attribute phase-change limits (flags bit 4), then
// a chunk-0 size whose width is encoded in flags bits 0-1. Each message is
// type (1) + size (2) + flags (1), plus a 2-byte creation order when flags
// bit 2 is set on the header. Continuation messages chain further "OCHK"
// blocks holding more messages.
func parseV2Messages(r io.ReaderAt, address uint64, flags uint8, sb *Superblock) ([]HeaderMessage, error) {
	current := address + 6

	if flags&0x20 != 0 {
		current += 16 // access/modification/change/birth times
	}
	if flags&0x10 != 0 {
		current += 4 // max compact / min dense attribute counts
	}

	chunkSizeBytes := 1 << (flags & 0x03)
	sizeBuf := make([]byte, chunkSizeBytes)
	//nolint:gosec // G115: HDF5 addresses fit in int64 for io.ReaderAt
	if _, err := r.ReadAt(sizeBuf, int64(current)); err != nil {
		return nil, utils.WrapError("chunk size read failed", err)
	}
	chunkSize := utils.ReadUint(sizeBuf, chunkSizeBytes)
	current += uint64(chunkSizeBytes)

	msgHeaderSize := uint64(4)
	if flags&0x04 != 0 {
		msgHeaderSize += 2 // per-message creation order
	}

	messages, err := parseV2Block(r, current, current+chunkSize, msgHeaderSize)
	if err != nil {
		return nil, err
	}

	pending := findContinuations(messages, sb)
	for len(pending) > 0 {
		cont := pending[0]
		pending = pending[1:]

		more, err := parseV2Continuation(r, cont, msgHeaderSize)
		if err != nil {
			return nil, utils.WrapError("continuation block parse failed", err)
		}
		messages = append(messages, more...)
		pending = append(pending, findContinuations(more, sb)...)
	}

	return messages, nil
}

// parseV2Continuation parses one "OCHK" continuation block. The recorded
// size covers the 4-byte signature, the message stream and the trailing
// 4-byte checksum.
func parseV2Continuation(r io.ReaderAt, cont continuation, msgHeaderSize uint64) ([]HeaderMessage, error) {
	if cont.size < 8 {
		return nil, fmt.Errorf("continuation block too small: %d", cont.size)
	}

	sig := make([]byte, 4)
	//nolint:gosec // G115: HDF5 addresses fit in int64 for io.ReaderAt
	if _, err := r.ReadAt(sig, int64(cont.address)); err != nil {
		return nil, utils.WrapError("continuation signature read failed", err)
	}
	if string(sig) != "OCHK" {
		return nil, fmt.Errorf("invalid continuation block signature: % x", sig)
	}

	return parseV2Block(r, cont.address+4, cont.address+cont.size-4, msgHeaderSize)
}

func parseV2Block(r io.ReaderAt, start, end, msgHeaderSize uint64) ([]HeaderMessage, error) {
	var messages []HeaderMessage
	current := start
	for current+msgHeaderSize <= end {
		head := make([]byte, 4)
		//nolint:gosec // G115: HDF5 addresses fit in int64 for io.ReaderAt
		if _, err := r.ReadAt(head, int64(current)); err != nil {
			return nil, utils.WrapError("message header read failed", err)
		}
		msgType := MessageType(head[0])
		msgSize := binary.LittleEndian.Uint16(head[1:3])

		if msgSize == 0 {
			current += msgHeaderSize
			continue
		}
		if current+msgHeaderSize+uint64(msgSize) > end {
			break
		}

		data := make([]byte, msgSize)
		//nolint:gosec // G115: HDF5 addresses fit in int64 for io.ReaderAt
		if _, err := r.ReadAt(data, int64(current+msgHeaderSize)); err != nil {
			return nil, utils.WrapError("message data read failed", err)
		}

		messages = append(messages, HeaderMessage{Type: msgType, Data: data})
		current += msgHeaderSize + uint64(msgSize)
	}

	return messages, nil
}

// parseV1Messages parses a version 1 object header and all of its
// continuation blocks.
//
// Prefix (16 bytes): version (1) + reserved (1) + message count (2) +
// reference count (4) + header size (4) + padding (4). Messages follow,
// 8-byte aligned, each with an 8-byte header: type (2) + size (2) +
// flags (1) + reserved (3).
func parseV1Messages(r io.ReaderAt, address uint64, sb *Superblock) ([]HeaderMessage, error) {
	prefix := make([]byte, 16)
	//nolint:gosec // G115: HDF5 addresses fit in int64 for io.ReaderAt
	if _, err := r.ReadAt(prefix, int64(address)); err != nil {
		return nil, utils.WrapError("v1 header read failed", err)
	}

	numMessages := binary.LittleEndian.Uint16(prefix[2:4])
	headerSize := binary.LittleEndian.Uint32(prefix[8:12])

	messages, err := parseV1Block(r, address+16, address+16+uint64(headerSize), numMessages)
	if err != nil {
		return nil, err
	}

	// Continuation messages chain further blocks holding more messages.
	pending := findContinuations(messages, sb)
	for len(pending) > 0 {
		cont := pending[0]
		pending = pending[1:]

		more, err := parseV1Block(r, cont.address, cont.address+cont.size, 0xFFFF)
		if err != nil {
			return nil, utils.WrapError("continuation block parse failed", err)
		}
		messages = append(messages, more...)
		pending = append(pending, findContinuations(more, sb)...)
	}

	return messages, nil
}

type continuation struct {
	address uint64
	size    uint64
}

// findContinuations extracts continuation block locations from messages.
// Continuation data is an address (OffsetSize bytes) followed by a size
// (LengthSize bytes).
func findContinuations(messages []HeaderMessage, sb *Superblock) []continuation {
	var conts []continuation
	for _, msg := range messages {
		if msg.Type != MsgContinuation {
			continue
		}
		if len(msg.Data) < int(sb.OffsetSize)+int(sb.LengthSize) {
			continue
		}
		cont := continuation{
			address: utils.ReadUint(msg.Data, int(sb.OffsetSize)),
			size:    utils.ReadUint(msg.Data[sb.OffsetSize:], int(sb.LengthSize)),
		}
		if cont.size == 0 {
			continue
		}
		conts = append(conts, cont)
	}
	return conts
}

func parseV1Block(r io.ReaderAt, start, end uint64, maxMessages uint16) ([]HeaderMessage, error) {
	var messages []HeaderMessage
	current := start
	count := uint16(0)

	for current+8 <= end && count < maxMessages {
		head := make([]byte, 8)
		//nolint:gosec // G115: HDF5 addresses fit in int64 for io.ReaderAt
		if _, err := r.ReadAt(head, int64(current)); err != nil {
			if err == io.EOF {
				break
			}
			return nil, utils.WrapError("message header read failed", err)
		}

		msgType := MessageType(binary.LittleEndian.Uint16(head[0:2]))
		msgSize := binary.LittleEndian.Uint16(head[2:4])

		if msgSize == 0 {
			current += 8
			continue
		}
		if current+8+uint64(msgSize) > end {
			break
		}

		data := make([]byte, msgSize)
		//nolint:gosec // G115: HDF5 addresses fit in int64 for io.ReaderAt
		if _, err := r.ReadAt(data, int64(current+8)); err != nil {
			if err == io.EOF {
				break
			}
			return nil, utils.WrapError("message data read failed", err)
		}

		messages = append(messages, HeaderMessage{Type: msgType, Data: data})

		current += uint64(utils.Pad8(8 + int(msgSize)))
		count++
	}

	return messages, nil
}
