package h5view

import (
	"fmt"

	"github.com/scigolib/h5view/internal/container"
	"github.com/scigolib/h5view/internal/utils"
)

// The traversal core consumes the format layer through narrow interfaces
// so tests can substitute in-memory fakes. Handles obtained from these
// interfaces are used only within the synchronous call that produced
// them; everything needed later is copied into owned structures.

type attributed interface {
	AttrNames() []string
	ReadAttr(name string) (interface{}, error)
}

type group interface {
	attributed
	ID() int64
	// Key identifies the object across files. Header addresses repeat
	// between files, so external-link targets need the file identity too.
	Key() string
	Links() ([]container.Link, error)
	OpenGroup(name string) (group, error)
	OpenDataset(name string) (dataset, error)
}

type dataset interface {
	attributed
	ID() int64
	Shape() ([]uint64, error)
	Layout() (*container.DataLayout, error)
	ChunkShape() ([]uint64, error)
	Filters() ([]container.Filter, error)
	ElementType() (*container.Datatype, error)
}

// buildGroup materializes a group and, depth-first, all of its
// descendants. Children are visited in the container's link iteration
// order. A child that opens as neither group nor dataset fails the whole
// build; no partial subtree is returned.
func buildGroup(g group, name string, kind LinkKind) (*GroupInfo, error) {
	return buildGroupGuarded(g, name, kind, make(map[string]bool))
}

// buildGroupGuarded tracks the object keys on the current traversal path.
// The container resolves soft and external links before handing back a
// handle, so a link targeting an ancestor would otherwise recurse without
// bound. Revisiting a key on the active path is a cycle; revisiting one
// on a sibling branch is legitimate sharing and materializes again.
func buildGroupGuarded(g group, name string, kind LinkKind, active map[string]bool) (*GroupInfo, error) {
	key := g.Key()
	if active[key] {
		return nil, fmt.Errorf("group %q: %w", name, ErrLinkCycle)
	}
	active[key] = true
	defer delete(active, key)

	info := &GroupInfo{
		Name:     name,
		ID:       g.ID(),
		LinkKind: kind,
		Attrs:    attributes(g),
	}

	links, err := g.Links()
	if err != nil {
		return nil, utils.WrapError(fmt.Sprintf("group %q child enumeration failed", name), err)
	}

	for _, link := range links {
		childKind := classifyLink(link.Type)

		if child, err := g.OpenGroup(link.Name); err == nil {
			sub, err := buildGroupGuarded(child, link.Name, childKind, active)
			if err != nil {
				return nil, err
			}
			info.Entities = append(info.Entities, sub)
			continue
		}

		if child, err := g.OpenDataset(link.Name); err == nil {
			ds, err := buildDataset(child, link.Name, childKind)
			if err != nil {
				return nil, err
			}
			info.Entities = append(info.Entities, ds)
			continue
		}

		return nil, fmt.Errorf("link %q: %w", link.Name, ErrUnknownEntityKind)
	}

	return info, nil
}

// buildDataset materializes a dataset descriptor. Shape, layout and
// element type are required; a format layer unable to expose any of them
// fails the build.
func buildDataset(d dataset, name string, kind LinkKind) (*DatasetInfo, error) {
	shape, err := d.Shape()
	if err != nil {
		return nil, utils.WrapError(fmt.Sprintf("dataset %q shape read failed", name), err)
	}

	layout, err := describeLayout(d)
	if err != nil {
		return nil, utils.WrapError(fmt.Sprintf("dataset %q layout read failed", name), err)
	}

	elem, err := d.ElementType()
	if err != nil {
		return nil, utils.WrapError(fmt.Sprintf("dataset %q element type read failed", name), err)
	}

	return &DatasetInfo{
		Name:     name,
		ID:       d.ID(),
		LinkKind: kind,
		Shape:    shape,
		Layout:   layout,
		Dtype:    describeType(elem),
		Attrs:    attributes(d),
	}, nil
}

// describeLayout reads the layout tag and, for chunked storage only, the
// chunk shape and the ordered filter pipeline.
func describeLayout(d dataset) (LayoutInfo, error) {
	layout, err := d.Layout()
	if err != nil {
		return nil, err
	}

	switch layout.Class {
	case container.LayoutCompact:
		return CompactLayout{}, nil
	case container.LayoutContiguous:
		return ContiguousLayout{}, nil
	case container.LayoutVirtual:
		return VirtualLayout{}, nil
	case container.LayoutChunked:
		chunk, err := d.ChunkShape()
		if err != nil {
			return nil, err
		}
		filters, err := d.Filters()
		if err != nil {
			return nil, err
		}
		info := ChunkedLayout{ChunkShape: chunk}
		for _, f := range filters {
			info.Filters = append(info.Filters, FilterInfo{
				ID:         FilterID(f.ID),
				Name:       f.Name,
				ClientData: f.ClientData,
			})
		}
		return info, nil
	default:
		return nil, fmt.Errorf("unknown layout class: %d", layout.Class)
	}
}

// attributes renders an entity's attributes to display strings. Reading
// an individual attribute can fail on unsupported value types; such
// attributes are dropped rather than failing the entity. Attributes are
// metadata and never affect the tree shape.
func attributes(e attributed) map[string]string {
	attrs := make(map[string]string)
	for _, name := range e.AttrNames() {
		value, err := e.ReadAttr(name)
		if err != nil {
			continue
		}
		attrs[name] = fmt.Sprintf("%v", value)
	}
	return attrs
}
