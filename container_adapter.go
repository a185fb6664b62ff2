package h5view

import (
	"fmt"

	"github.com/scigolib/h5view/internal/container"
)

// Adapters binding the traversal interfaces to internal/container. Each
// adapter wraps one open handle; handles never escape the load call.

type containerGroup struct {
	g *container.Group
}

func (cg containerGroup) ID() int64 {
	//nolint:gosec // G115: header addresses fit in int64, display only
	return int64(cg.g.Address())
}

func (cg containerGroup) Key() string {
	return fmt.Sprintf("%s:%d", cg.g.FilePath(), cg.g.Address())
}

func (cg containerGroup) Links() ([]container.Link, error) {
	return cg.g.Links()
}

func (cg containerGroup) OpenGroup(name string) (group, error) {
	g, err := cg.g.OpenGroup(name)
	if err != nil {
		return nil, err
	}
	return containerGroup{g: g}, nil
}

func (cg containerGroup) OpenDataset(name string) (dataset, error) {
	d, err := cg.g.OpenDataset(name)
	if err != nil {
		return nil, err
	}
	return containerDataset{d: d}, nil
}

func (cg containerGroup) AttrNames() []string {
	return attributeNames(cg.g.Attributes())
}

func (cg containerGroup) ReadAttr(name string) (interface{}, error) {
	return readAttribute(cg.g.Attributes(), name)
}

type containerDataset struct {
	d *container.Dataset
}

func (cd containerDataset) ID() int64 {
	//nolint:gosec // G115: header addresses fit in int64, display only
	return int64(cd.d.Address())
}

func (cd containerDataset) Shape() ([]uint64, error) {
	return cd.d.Shape()
}

func (cd containerDataset) Layout() (*container.DataLayout, error) {
	return cd.d.Layout()
}

func (cd containerDataset) ChunkShape() ([]uint64, error) {
	return cd.d.ChunkShape()
}

func (cd containerDataset) Filters() ([]container.Filter, error) {
	return cd.d.Filters()
}

func (cd containerDataset) ElementType() (*container.Datatype, error) {
	return cd.d.ElementType()
}

func (cd containerDataset) AttrNames() []string {
	return attributeNames(cd.d.Attributes())
}

func (cd containerDataset) ReadAttr(name string) (interface{}, error) {
	return readAttribute(cd.d.Attributes(), name)
}

func attributeNames(attrs []*container.Attribute) []string {
	names := make([]string, 0, len(attrs))
	for _, a := range attrs {
		names = append(names, a.Name)
	}
	return names
}

func readAttribute(attrs []*container.Attribute, name string) (interface{}, error) {
	for _, a := range attrs {
		if a.Name == name {
			return a.Value()
		}
	}
	return nil, fmt.Errorf("attribute %q not found", name)
}
