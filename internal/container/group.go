package container

import (
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/scigolib/h5view/internal/utils"
)

// Group is an open HDF5 group. Child links are enumerated through Links
// and resolved through OpenGroup and OpenDataset.
type Group struct {
	file    *File
	name    string
	address uint64
	header  *ObjectHeader

	links       []Link
	linksLoaded bool
}

// Name returns the link name this group was reached through. The root
// group is named "/".
func (g *Group) Name() string {
	return g.name
}

// Address returns the group's object header address, which uniquely
// identifies the object within its file.
func (g *Group) Address() uint64 {
	return g.address
}

// FilePath returns the path of the file holding this group. Groups
// reached through external links report the target file's path, so
// FilePath plus Address identifies an object across files.
func (g *Group) FilePath() string {
	return g.file.path
}

// Attributes returns the attributes decoded from the group's header.
func (g *Group) Attributes() []*Attribute {
	return g.header.Attributes
}

// Links returns the group's child links in storage order: message order
// for compact link-message groups, B-tree order for old-style
// symbol-table groups. The result is cached.
func (g *Group) Links() ([]Link, error) {
	if !g.linksLoaded {
		links, err := g.loadLinks()
		if err != nil {
			return nil, err
		}
		g.links = links
		g.linksLoaded = true
	}
	return g.links, nil
}

func (g *Group) loadLinks() ([]Link, error) {
	if st := g.header.FindMessage(MsgSymbolTable); st != nil {
		return g.loadSymbolTableLinks(st.Data)
	}

	var links []Link
	for _, msg := range g.header.Messages {
		if msg.Type != MsgLink {
			continue
		}
		link, err := parseLinkMessage(msg.Data, g.file.sb)
		if err != nil {
			return nil, utils.WrapError(fmt.Sprintf("group %q link parse failed", g.name), err)
		}
		links = append(links, *link)
	}

	// A link info message with a defined fractal heap address means the
	// group stores its links densely. The heap is not read, and pretending
	// the group is empty would yield a silently incomplete tree.
	if len(links) == 0 {
		if li := g.header.FindMessage(MsgLinkInfo); li != nil {
			heapAddr, err := linkInfoFractalHeap(li.Data, g.file.sb)
			if err != nil {
				return nil, utils.WrapError(fmt.Sprintf("group %q link info parse failed", g.name), err)
			}
			if heapAddr != undefinedAddress {
				return nil, fmt.Errorf("group %q: %w", g.name, ErrDenseLinks)
			}
		}
	}

	return links, nil
}

// loadSymbolTableLinks enumerates an old-style group. The symbol table
// message holds the v1 B-tree address and the local heap address, each
// OffsetSize bytes.
func (g *Group) loadSymbolTableLinks(data []byte) ([]Link, error) {
	sb := g.file.sb
	if len(data) < 2*int(sb.OffsetSize) {
		return nil, fmt.Errorf("group %q symbol table message too short", g.name)
	}
	btreeAddr := utils.ReadUint(data, int(sb.OffsetSize))
	heapAddr := utils.ReadUint(data[sb.OffsetSize:], int(sb.OffsetSize))

	heap, err := readLocalHeap(g.file.reader(), heapAddr, sb)
	if err != nil {
		return nil, utils.WrapError(fmt.Sprintf("group %q heap load failed", g.name), err)
	}

	entries, err := readGroupBTree(g.file.reader(), btreeAddr, sb)
	if err != nil {
		return nil, utils.WrapError(fmt.Sprintf("group %q B-tree load failed", g.name), err)
	}

	links := make([]Link, 0, len(entries))
	for _, entry := range entries {
		name, err := heap.str(entry.nameOffset)
		if err != nil {
			return nil, utils.WrapError(fmt.Sprintf("group %q entry name load failed", g.name), err)
		}

		link := Link{Name: name, Type: LinkTypeHard, objectAddress: entry.address}
		if entry.cacheType == cacheTypeSymlink {
			target, err := heap.str(uint64(binary.LittleEndian.Uint32(entry.scratch[0:4])))
			if err != nil {
				return nil, utils.WrapError(fmt.Sprintf("link %q target load failed", name), err)
			}
			link.Type = LinkTypeSoft
			link.target = target
		}
		links = append(links, link)
	}
	return links, nil
}

// OpenGroup resolves the named child link and opens it as a group. Soft
// and external links are followed.
func (g *Group) OpenGroup(name string) (*Group, error) {
	return g.openGroup(name, 0)
}

// OpenDataset resolves the named child link and opens it as a dataset.
// Soft and external links are followed.
func (g *Group) OpenDataset(name string) (*Dataset, error) {
	file, addr, err := g.lookup(name, 0)
	if err != nil {
		return nil, err
	}
	header, err := readObjectHeader(file.reader(), addr, file.sb)
	if err != nil {
		return nil, utils.WrapError(fmt.Sprintf("dataset %q load failed", name), err)
	}
	if header.Kind != KindDataset {
		return nil, fmt.Errorf("%q: %w", name, ErrNotDataset)
	}
	return &Dataset{file: file, name: name, address: addr, header: header}, nil
}

func (g *Group) openGroup(name string, depth int) (*Group, error) {
	file, addr, err := g.lookup(name, depth)
	if err != nil {
		return nil, err
	}
	return openGroupAt(file, addr, name)
}

func openGroupAt(file *File, addr uint64, name string) (*Group, error) {
	header, err := readObjectHeader(file.reader(), addr, file.sb)
	if err != nil {
		return nil, utils.WrapError(fmt.Sprintf("group %q load failed", name), err)
	}
	if header.Kind != KindGroup {
		return nil, fmt.Errorf("%q: %w", name, ErrNotGroup)
	}
	return &Group{file: file, name: name, address: addr, header: header}, nil
}

// lookup finds the named link and resolves it to a file and object header
// address. depth counts link indirections already taken.
func (g *Group) lookup(name string, depth int) (*File, uint64, error) {
	if depth > MaxLinkDepth {
		return nil, 0, ErrLinkDepth
	}

	links, err := g.Links()
	if err != nil {
		return nil, 0, err
	}
	for i := range links {
		if links[i].Name == name {
			return g.resolve(&links[i], depth)
		}
	}
	return nil, 0, fmt.Errorf("%q: %w", name, ErrNotFound)
}

func (g *Group) resolve(link *Link, depth int) (*File, uint64, error) {
	switch link.Type {
	case LinkTypeHard:
		return g.file, link.objectAddress, nil

	case LinkTypeSoft:
		return resolvePath(g, link.target, depth+1)

	case LinkTypeExternal:
		ext, err := g.file.openExternal(link.targetFile)
		if err != nil {
			return nil, 0, utils.WrapError(fmt.Sprintf("link %q resolution failed", link.Name), err)
		}
		return resolvePath(ext.root, link.targetPath, depth+1)

	default:
		return nil, 0, fmt.Errorf("link %q has unsupported type %d", link.Name, link.Type)
	}
}

// resolvePath walks a slash-separated link path. Absolute paths start at
// the root group of start's file.
func resolvePath(start *Group, path string, depth int) (*File, uint64, error) {
	if depth > MaxLinkDepth {
		return nil, 0, ErrLinkDepth
	}

	current := start
	if strings.HasPrefix(path, "/") {
		current = start.file.root
	}

	parts := make([]string, 0, 4)
	for _, part := range strings.Split(path, "/") {
		if part != "" && part != "." {
			parts = append(parts, part)
		}
	}
	if len(parts) == 0 {
		return current.file, current.address, nil
	}

	for i, part := range parts {
		file, addr, err := current.lookup(part, depth)
		if err != nil {
			return nil, 0, utils.WrapError(fmt.Sprintf("path %q resolution failed", path), err)
		}
		if i == len(parts)-1 {
			return file, addr, nil
		}
		current, err = openGroupAt(file, addr, part)
		if err != nil {
			return nil, 0, utils.WrapError(fmt.Sprintf("path %q resolution failed", path), err)
		}
	}
	return nil, 0, fmt.Errorf("%q: %w", path, ErrNotFound)
}
