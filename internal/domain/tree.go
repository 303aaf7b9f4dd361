package domain

import "slices"

// ChildIndex maps a parent id to the ids of its direct children. It is built
// on demand from parent-id fields; records never hold back-pointers.
type ChildIndex map[string][]string

// BuildChildIndex indexes the (id, parent) pairs of a self-referential tree.
// Entries with an empty parent are roots.
func BuildChildIndex(parents map[string]string) ChildIndex {
	idx := make(ChildIndex, len(parents))
	for id, parent := range parents {
		if parent != "" {
			idx[parent] = append(idx[parent], id)
		}
	}
	return idx
}

// Descendants returns every id reachable below root.
func (c ChildIndex) Descendants(root string) []string {
	var out []string
	seen := map[string]bool{root: true}
	stack := append([]string(nil), c[root]...)
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
		stack = append(stack, c[id]...)
	}
	return out
}

// Tree is a self-referential hierarchy (organisations, programmes) being
// edited. Parent links come from the records; the child index is derived.
type Tree struct {
	parents  map[string]string
	children ChildIndex
}

// NewTree builds a tree from id -> parent id pairs. The map is copied.
func NewTree(parents map[string]string) *Tree {
	cp := make(map[string]string, len(parents))
	for id, parent := range parents {
		cp[id] = parent
	}
	return &Tree{parents: cp, children: BuildChildIndex(cp)}
}

// SetParent moves id below parent. An empty parent makes id a root. The
// assignment is rejected when parent is id itself or one of its descendants.
func (t *Tree) SetParent(id, parent string) error {
	if parent != "" {
		if parent == id {
			return ErrValidation("%s cannot be its own parent", id)
		}
		if slices.Contains(t.children.Descendants(id), parent) {
			return ErrValidation("setting parent of %s to %s would create a cycle", id, parent)
		}
	}
	if old := t.parents[id]; old != "" {
		t.children[old] = slices.DeleteFunc(t.children[old], func(c string) bool { return c == id })
	}
	t.parents[id] = parent
	if parent != "" {
		t.children[parent] = append(t.children[parent], id)
	}
	return nil
}

// Parent returns the current parent of id, or "" for roots and unknown ids.
func (t *Tree) Parent(id string) string {
	return t.parents[id]
}
