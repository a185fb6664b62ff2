package container

import (
	"errors"

	"github.com/scigolib/h5view/internal/utils"
)

// Dataset is an open HDF5 dataset. Only structural metadata is exposed;
// payload bytes are never read.
type Dataset struct {
	file    *File
	name    string
	address uint64
	header  *ObjectHeader
}

// Name returns the link name this dataset was reached through.
func (d *Dataset) Name() string {
	return d.name
}

// Address returns the dataset's object header address.
func (d *Dataset) Address() uint64 {
	return d.address
}

// Attributes returns the attributes decoded from the dataset's header.
func (d *Dataset) Attributes() []*Attribute {
	return d.header.Attributes
}

// Shape returns the dataset's dimensions. Scalar datasets yield an empty
// slice.
func (d *Dataset) Shape() ([]uint64, error) {
	msg := d.header.FindMessage(MsgDataspace)
	if msg == nil {
		return nil, errors.New("dataset has no dataspace message")
	}
	ds, err := parseDataspace(msg.Data)
	if err != nil {
		return nil, utils.WrapError("dataspace parse failed", err)
	}
	return ds.Dimensions, nil
}

// ElementType returns the dataset's parsed datatype.
func (d *Dataset) ElementType() (*Datatype, error) {
	msg := d.header.FindMessage(MsgDatatype)
	if msg == nil {
		return nil, errors.New("dataset has no datatype message")
	}
	dt, err := parseDatatype(msg.Data)
	if err != nil {
		return nil, utils.WrapError("datatype parse failed", err)
	}
	return dt, nil
}

// Layout returns the dataset's parsed data layout message.
func (d *Dataset) Layout() (*DataLayout, error) {
	msg := d.header.FindMessage(MsgDataLayout)
	if msg == nil {
		return nil, errors.New("dataset has no data layout message")
	}
	layout, err := parseDataLayout(msg.Data, d.file.sb)
	if err != nil {
		return nil, utils.WrapError("data layout parse failed", err)
	}
	return layout, nil
}

// ChunkShape returns the chunk dimensions of a chunked dataset, with the
// same rank as Shape. Version 3 layout messages append the element size
// as an extra trailing dimension, which is stripped here. Non-chunked
// datasets yield nil.
func (d *Dataset) ChunkShape() ([]uint64, error) {
	layout, err := d.Layout()
	if err != nil {
		return nil, err
	}
	if layout.Class != LayoutChunked {
		return nil, nil
	}

	dims := layout.ChunkDims
	if layout.Version == 3 && len(dims) > 0 {
		dims = dims[:len(dims)-1]
	}

	out := make([]uint64, len(dims))
	copy(out, dims)
	return out, nil
}

// Filters returns the dataset's filter pipeline in application order, or
// an empty slice when no pipeline message is present.
func (d *Dataset) Filters() ([]Filter, error) {
	msg := d.header.FindMessage(MsgFilterPipeline)
	if msg == nil {
		return nil, nil
	}
	filters, err := parseFilterPipeline(msg.Data)
	if err != nil {
		return nil, utils.WrapError("filter pipeline parse failed", err)
	}
	return filters, nil
}
