package h5view

import (
	"fmt"

	"github.com/samber/lo"
)

// ViewNode is the presentation projection of an entity: a display label
// plus child view nodes. The projection is one-directional and lossy;
// attributes and identifiers are dropped.
type ViewNode struct {
	Label    string
	Children []ViewNode
}

// ViewNodes projects the tree's root-level entities into view nodes.
func (f *FileInfo) ViewNodes() []ViewNode {
	return lo.Map(f.Entities, func(e Entity, _ int) ViewNode {
		return viewNode(e)
	})
}

// viewNode projects one entity. Groups label with their name; datasets
// label with name, shape, element type and layout summary.
func viewNode(e Entity) ViewNode {
	switch v := e.(type) {
	case *GroupInfo:
		return ViewNode{
			Label: v.Name,
			Children: lo.Map(v.Entities, func(child Entity, _ int) ViewNode {
				return viewNode(child)
			}),
		}
	case *DatasetInfo:
		return ViewNode{
			Label: fmt.Sprintf("%s %s %s %s", v.Name, formatShape(v.Shape), v.Dtype, v.Layout),
		}
	default:
		return ViewNode{Label: e.EntityName()}
	}
}
