package h5view

import (
	"errors"
	"strconv"
	"testing"

	"github.com/scigolib/h5view/internal/container"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAttr struct {
	name  string
	value interface{}
	err   error
}

type fakeEntity struct {
	id    int64
	attrs []fakeAttr
}

func (f *fakeEntity) ID() int64 { return f.id }

func (f *fakeEntity) AttrNames() []string {
	names := make([]string, 0, len(f.attrs))
	for _, a := range f.attrs {
		names = append(names, a.name)
	}
	return names
}

func (f *fakeEntity) ReadAttr(name string) (interface{}, error) {
	for _, a := range f.attrs {
		if a.name == name {
			return a.value, a.err
		}
	}
	return nil, errors.New("no such attribute")
}

type fakeGroup struct {
	fakeEntity
	key      string
	links    []container.Link
	linksErr error
	groups   map[string]group
	datasets map[string]dataset
}

func (f *fakeGroup) Key() string {
	if f.key != "" {
		return f.key
	}
	return strconv.FormatInt(f.id, 10)
}

func (f *fakeGroup) Links() ([]container.Link, error) {
	return f.links, f.linksErr
}

func (f *fakeGroup) OpenGroup(name string) (group, error) {
	if g, ok := f.groups[name]; ok {
		return g, nil
	}
	return nil, errors.New("not a group")
}

func (f *fakeGroup) OpenDataset(name string) (dataset, error) {
	if d, ok := f.datasets[name]; ok {
		return d, nil
	}
	return nil, errors.New("not a dataset")
}

type fakeDataset struct {
	fakeEntity
	shape     []uint64
	shapeErr  error
	layout    *container.DataLayout
	layoutErr error
	chunk     []uint64
	filters   []container.Filter
	elem      *container.Datatype
	elemErr   error
}

func (f *fakeDataset) Shape() ([]uint64, error) {
	return f.shape, f.shapeErr
}

func (f *fakeDataset) Layout() (*container.DataLayout, error) {
	if f.layout == nil && f.layoutErr == nil {
		return &container.DataLayout{Version: 3, Class: container.LayoutContiguous}, nil
	}
	return f.layout, f.layoutErr
}

func (f *fakeDataset) ChunkShape() ([]uint64, error) {
	return f.chunk, nil
}

func (f *fakeDataset) Filters() ([]container.Filter, error) {
	return f.filters, nil
}

func (f *fakeDataset) ElementType() (*container.Datatype, error) {
	if f.elem == nil && f.elemErr == nil {
		return &container.Datatype{Class: container.ClassFixed, Size: 8}, nil
	}
	return f.elem, f.elemErr
}

func hardTo(name string) container.Link {
	return container.Link{Name: name, Type: container.LinkTypeHard}
}

func TestBuildGroupPreservesSiblingOrder(t *testing.T) {
	root := &fakeGroup{
		fakeEntity: fakeEntity{id: 1},
		links:      []container.Link{hardTo("zeta"), hardTo("alpha"), hardTo("mid")},
		groups: map[string]group{
			"alpha": &fakeGroup{fakeEntity: fakeEntity{id: 2}},
		},
		datasets: map[string]dataset{
			"zeta": &fakeDataset{fakeEntity: fakeEntity{id: 3}, shape: []uint64{4}},
			"mid":  &fakeDataset{fakeEntity: fakeEntity{id: 4}, shape: []uint64{2}},
		},
	}

	info, err := buildGroup(root, "/", LinkHard)
	require.NoError(t, err)

	require.Len(t, info.Entities, 3)
	assert.Equal(t, "zeta", info.Entities[0].EntityName())
	assert.Equal(t, "alpha", info.Entities[1].EntityName())
	assert.Equal(t, "mid", info.Entities[2].EntityName())

	assert.IsType(t, &DatasetInfo{}, info.Entities[0])
	assert.IsType(t, &GroupInfo{}, info.Entities[1])
}

func TestBuildGroupUnknownKindAbortsLoad(t *testing.T) {
	root := &fakeGroup{
		fakeEntity: fakeEntity{id: 1},
		links: []container.Link{
			hardTo("good"),
			hardTo("ghost"), // opens as neither group nor dataset
		},
		groups: map[string]group{
			"good": &fakeGroup{fakeEntity: fakeEntity{id: 2}},
		},
	}

	info, err := buildGroup(root, "/", LinkHard)
	require.ErrorIs(t, err, ErrUnknownEntityKind)
	assert.Contains(t, err.Error(), "ghost")
	assert.Nil(t, info)
}

func TestBuildGroupDetectsLinkCycle(t *testing.T) {
	root := &fakeGroup{
		fakeEntity: fakeEntity{id: 1},
		links:      []container.Link{{Name: "loop", Type: container.LinkTypeSoft}},
	}
	root.groups = map[string]group{"loop": root}

	_, err := buildGroup(root, "/", LinkHard)
	require.ErrorIs(t, err, ErrLinkCycle)
}

func TestBuildGroupSharedSubtreeIsNotACycle(t *testing.T) {
	shared := &fakeGroup{fakeEntity: fakeEntity{id: 7}}
	root := &fakeGroup{
		fakeEntity: fakeEntity{id: 1},
		links: []container.Link{
			hardTo("a"),
			{Name: "b", Type: container.LinkTypeSoft},
		},
		groups: map[string]group{"a": shared, "b": shared},
	}

	info, err := buildGroup(root, "/", LinkHard)
	require.NoError(t, err)
	require.Len(t, info.Entities, 2)

	a := info.Entities[0].(*GroupInfo)
	b := info.Entities[1].(*GroupInfo)
	assert.Equal(t, LinkHard, a.LinkKind)
	assert.Equal(t, LinkSoft, b.LinkKind)
	assert.Equal(t, a.ID, b.ID)
}

func TestBuildGroupEqualAddressesAcrossFiles(t *testing.T) {
	// Header addresses repeat between files: an external link target can
	// sit at the same address as an ancestor in the referring file. Only
	// matching keys mark a cycle.
	remote := &fakeGroup{fakeEntity: fakeEntity{id: 48}, key: "side.h5:48"}
	root := &fakeGroup{
		fakeEntity: fakeEntity{id: 48},
		key:        "main.h5:48",
		links:      []container.Link{{Name: "remote", Type: container.LinkTypeExternal}},
		groups:     map[string]group{"remote": remote},
	}

	info, err := buildGroup(root, "/", LinkHard)
	require.NoError(t, err)
	require.Len(t, info.Entities, 1)
	assert.Equal(t, LinkExternal, info.Entities[0].(*GroupInfo).LinkKind)
}

func TestBuildGroupChildEnumerationFailure(t *testing.T) {
	root := &fakeGroup{
		fakeEntity: fakeEntity{id: 1},
		linksErr:   errors.New("corrupt b-tree"),
	}

	_, err := buildGroup(root, "/", LinkHard)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "corrupt b-tree")
}

func TestBuildDatasetChunked(t *testing.T) {
	d := &fakeDataset{
		fakeEntity: fakeEntity{id: 9},
		shape:      []uint64{100, 200},
		layout:     &container.DataLayout{Version: 3, Class: container.LayoutChunked},
		chunk:      []uint64{10, 20},
		filters: []container.Filter{
			{ID: container.FilterShuffle, Name: "shuffle"},
			{ID: container.FilterDeflate, Name: "deflate", ClientData: []uint32{6}},
		},
	}

	info, err := buildDataset(d, "grid", LinkHard)
	require.NoError(t, err)

	chunked, ok := info.Layout.(ChunkedLayout)
	require.True(t, ok)
	assert.Len(t, chunked.ChunkShape, len(info.Shape))
	assert.Equal(t, []uint64{10, 20}, chunked.ChunkShape)

	// Pipeline order is preserved.
	require.Len(t, chunked.Filters, 2)
	assert.Equal(t, FilterShuffle, chunked.Filters[0].ID)
	assert.Equal(t, FilterDeflate, chunked.Filters[1].ID)
	assert.Equal(t, []uint32{6}, chunked.Filters[1].ClientData)
}

func TestBuildDatasetLayoutVariants(t *testing.T) {
	tests := []struct {
		name  string
		class container.LayoutClass
		want  LayoutInfo
	}{
		{"compact", container.LayoutCompact, CompactLayout{}},
		{"contiguous", container.LayoutContiguous, ContiguousLayout{}},
		{"virtual", container.LayoutVirtual, VirtualLayout{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := &fakeDataset{
				shape:  []uint64{3},
				layout: &container.DataLayout{Version: 4, Class: tt.class},
			}
			info, err := buildDataset(d, "x", LinkHard)
			require.NoError(t, err)
			assert.Equal(t, tt.want, info.Layout)
		})
	}
}

func TestBuildDatasetShapeFailureIsFatal(t *testing.T) {
	d := &fakeDataset{shapeErr: errors.New("no dataspace")}

	_, err := buildDataset(d, "broken", LinkHard)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken")
}

func TestAttributesDropUnreadableValues(t *testing.T) {
	e := &fakeEntity{attrs: []fakeAttr{
		{name: "rate", value: int64(25)},
		{name: "blob", err: errors.New("unsupported class")},
		{name: "unit", value: "Hz"},
	}}

	attrs := attributes(e)
	assert.Equal(t, map[string]string{"rate": "25", "unit": "Hz"}, attrs)
}

func TestClassifyLink(t *testing.T) {
	assert.Equal(t, LinkHard, classifyLink(container.LinkTypeHard))
	assert.Equal(t, LinkSoft, classifyLink(container.LinkTypeSoft))
	assert.Equal(t, LinkExternal, classifyLink(container.LinkTypeExternal))
}
