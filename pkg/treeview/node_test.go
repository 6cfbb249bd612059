package treeview

import "testing"

func TestNewNodeWiresParents(t *testing.T) {
	a := NewNode("a", ValueOf(1))
	b := NewNode("b", ValueOf(2))
	p := NewNode("p", ValueOf(0), a, b)

	if a.Parent != p || b.Parent != p {
		t.Error("NewNode must set the parent back-reference on children")
	}
	if p.Parent != nil {
		t.Error("fresh node must have no parent")
	}
}

func TestNodePredicates(t *testing.T) {
	leaf := NewNode[int]("leaf", nil)
	root := NewNode[int]("root", nil, leaf)

	if !leaf.IsLeaf() || root.IsLeaf() {
		t.Error("IsLeaf mismatch")
	}
	if !root.IsRoot() || leaf.IsRoot() {
		t.Error("IsRoot mismatch")
	}
	if got := leaf.Depth(); got != 1 {
		t.Errorf("leaf depth = %d, want 1", got)
	}
	if got := root.Depth(); got != 0 {
		t.Errorf("root depth = %d, want 0", got)
	}
}

func TestVisibleChildren(t *testing.T) {
	a := NewNode[int]("a", nil)
	b := NewNode[int]("b", nil)
	c := NewNode[int]("c", nil)
	p := NewNode[int]("p", nil, a, b, c)

	b.Hidden = true
	vis := p.visibleChildren()
	if len(vis) != 2 || vis[0] != a || vis[1] != c {
		t.Errorf("visibleChildren returned %d nodes in wrong order", len(vis))
	}
}
