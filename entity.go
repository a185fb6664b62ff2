package h5view

import (
	"fmt"

	"github.com/scigolib/h5view/internal/container"
)

// LinkKind describes how a parent group references a child, independent
// of the child's own kind.
type LinkKind uint8

// Link kinds.
const (
	LinkHard LinkKind = iota
	LinkSoft
	LinkExternal
)

// String returns the link kind name.
func (k LinkKind) String() string {
	switch k {
	case LinkHard:
		return "Hard"
	case LinkSoft:
		return "Soft"
	case LinkExternal:
		return "External"
	default:
		return fmt.Sprintf("LinkKind(%d)", uint8(k))
	}
}

// classifyLink maps the container's native link type to a LinkKind. The
// mapping is total: the container layer rejects unknown link types before
// they reach traversal, so the default arm is a contract backstop, not an
// error path.
func classifyLink(t container.LinkType) LinkKind {
	switch t {
	case container.LinkTypeSoft:
		return LinkSoft
	case container.LinkTypeExternal:
		return LinkExternal
	default:
		return LinkHard
	}
}

// Entity is one node of the materialized tree: either a *GroupInfo or a
// *DatasetInfo. The tree is immutable once built and owns all descendant
// data; no node references the originating file.
type Entity interface {
	// EntityName returns the link name the entity was reached through.
	EntityName() string

	isEntity()
}

// GroupInfo describes a group and its materialized children. Entities
// preserves the container's link iteration order.
type GroupInfo struct {
	Name     string
	ID       int64 // object header address, display/debug only
	LinkKind LinkKind
	Entities []Entity
	Attrs    map[string]string
}

// EntityName returns the group's link name.
func (g *GroupInfo) EntityName() string { return g.Name }

func (g *GroupInfo) isEntity() {}

// DatasetInfo describes a dataset: shape, storage layout, element type
// and attributes. Datasets never have children.
type DatasetInfo struct {
	Name     string
	ID       int64
	LinkKind LinkKind
	Shape    []uint64
	Layout   LayoutInfo
	Dtype    TypeDescriptor
	Attrs    map[string]string
}

// EntityName returns the dataset's link name.
func (d *DatasetInfo) EntityName() string { return d.Name }

func (d *DatasetInfo) isEntity() {}
