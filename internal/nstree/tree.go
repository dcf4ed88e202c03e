// Package nstree groups top-level records and enums by namespace so that the
// renderer can emit one alias block per namespace segment.
package nstree

import (
	"strings"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"introspect/internal/model"
)

// Node is one namespace segment. The root node has no name.
type Node struct {
	Name     string
	parent   *Node
	children map[string]*Node
	records  map[string]*model.Record
	enums    map[string]*model.Enum
}

// New returns an empty root node.
func New() *Node {
	return newNode(nil, "")
}

func newNode(parent *Node, name string) *Node {
	return &Node{
		Name:     name,
		parent:   parent,
		children: make(map[string]*Node),
		records:  make(map[string]*model.Record),
		enums:    make(map[string]*model.Enum),
	}
}

// Insert attaches a record or enum below the root using its own namespace. Nested
// entities are reachable through their enclosing record and are skipped. It reports
// whether the entity was inserted.
func (n *Node) Insert(entity model.Type) bool {
	switch e := entity.(type) {
	case *model.Record:
		if e.IsNested() || e.Rejected() {
			return false
		}
		n.InsertRecord(e, e.Namespace)
	case *model.Enum:
		if e.IsNested() || e.Rejected() {
			return false
		}
		n.InsertEnum(e, e.Namespace)
	default:
		return false
	}
	return true
}

// InsertRecord attaches r to the node addressed by path, creating segments as
// needed.
func (n *Node) InsertRecord(r *model.Record, path string) {
	node := n.descend(path)
	// Specializations of one template share an alias.
	if _, ok := node.records[r.Name]; !ok {
		node.records[r.Name] = r
	}
}

// InsertEnum attaches e to the node addressed by path.
func (n *Node) InsertEnum(e *model.Enum, path string) {
	node := n.descend(path)
	if _, ok := node.enums[e.Name]; !ok {
		node.enums[e.Name] = e
	}
}

func (n *Node) descend(path string) *Node {
	node := n
	for path != "" {
		var outer string
		outer, path = split(path)
		child, ok := node.children[outer]
		if !ok {
			child = newNode(node, outer)
			node.children[outer] = child
		}
		node = child
	}
	return node
}

// split cuts the first segment off a namespace path, dropping an inline marker.
func split(path string) (outer, inner string) {
	path = strings.TrimPrefix(path, "inline ")
	outer, inner, _ = strings.Cut(path, "::")
	return outer, inner
}

// Children returns the child segments sorted by name.
func (n *Node) Children() []*Node {
	names := maps.Keys(n.children)
	slices.Sort(names)
	out := make([]*Node, len(names))
	for i, name := range names {
		out[i] = n.children[name]
	}
	return out
}

// Child returns the child segment called name.
func (n *Node) Child(name string) (*Node, bool) {
	c, ok := n.children[name]
	return c, ok
}

// Records returns the records attached to n sorted by name.
func (n *Node) Records() []*model.Record {
	names := maps.Keys(n.records)
	slices.Sort(names)
	out := make([]*model.Record, len(names))
	for i, name := range names {
		out[i] = n.records[name]
	}
	return out
}

// Enums returns the enums attached to n sorted by name.
func (n *Node) Enums() []*model.Enum {
	names := maps.Keys(n.enums)
	slices.Sort(names)
	out := make([]*model.Enum, len(names))
	for i, name := range names {
		out[i] = n.enums[name]
	}
	return out
}

// IsRoot reports whether n is the unnamed root.
func (n *Node) IsRoot() bool { return n.parent == nil }

// Depth is the number of segments between the root and n.
func (n *Node) Depth() int {
	d := 0
	for p := n.parent; p != nil; p = p.parent {
		d++
	}
	return d
}

// FullNamespace returns the absolute path of n, e.g. "::geo::detail". The root
// yields "".
func (n *Node) FullNamespace() string {
	if n.parent == nil {
		return ""
	}
	return n.parent.FullNamespace() + "::" + n.Name
}

// Walk visits n and its descendants depth first, children in sorted order.
// Returning false from fn skips the subtree.
func (n *Node) Walk(fn func(*Node) bool) {
	if !fn(n) {
		return
	}
	for _, c := range n.Children() {
		c.Walk(fn)
	}
}

// Len counts the entities attached to n and its descendants.
func (n *Node) Len() int {
	total := 0
	n.Walk(func(node *Node) bool {
		total += len(node.records) + len(node.enums)
		return true
	})
	return total
}
