package h5view

import "fmt"

// Entity resolves a sequence of child-position indices against the tree:
// the first index selects among the root-level entities, each further
// index descends into the current group's children. The tree is never
// mutated; the returned node is a view into it.
//
// An empty path fails with ErrEmptyPath. An index outside the current
// child list fails with ErrIndexOutOfRange. Descending through a dataset
// fails with ErrNotIndexable.
func (f *FileInfo) Entity(path []int) (Entity, error) {
	if len(path) == 0 {
		return nil, ErrEmptyPath
	}

	entities := f.Entities
	var current Entity

	for step, index := range path {
		if step > 0 {
			g, ok := current.(*GroupInfo)
			if !ok {
				return nil, fmt.Errorf("%q at step %d: %w", current.EntityName(), step, ErrNotIndexable)
			}
			entities = g.Entities
		}

		if index < 0 || index >= len(entities) {
			return nil, fmt.Errorf("index %d at step %d (have %d entities): %w",
				index, step, len(entities), ErrIndexOutOfRange)
		}
		current = entities[index]
	}

	return current, nil
}
