// Package treeview implements the state engine behind a checkable,
// expandable tree view: tri-state selection propagation between parents
// and descendants, predicate filtering with visibility-frozen subtrees,
// sibling sorting with original-order restore, and expansion state.
//
// The engine is the sole mutator of node state. A rendering layer (see
// pkg/ui) reads node fields between operations and forwards user input
// back into the engine; it must never write node fields directly.
//
// All operations are synchronous in-memory tree walks with no internal
// locking. The engine is not safe for concurrent mutation.
package treeview

// Node is one item in the hierarchy. The structure (Label, Value, Icon,
// Children, Parent) is fixed after the tree is attached to an engine;
// only the state flags change, and only through engine operations.
//
// Parent is a back-reference for upward walks, never an ownership edge.
// It is established once when the tree is attached and is not reassigned
// afterwards (the engine does not support structural edits).
type Node[V any] struct {
	// Label is the display text. The engine never inspects it.
	Label string

	// Value is the optional user payload returned by selection queries.
	// Nil-valued nodes are still selectable; they are skipped by
	// SelectedValues.
	Value *V

	// Icon is an opaque display reference, optional.
	Icon string

	// Children in sibling order. Order is mutated by Sort; the
	// construction-time order is recorded per node and restored by
	// Sort(nil).
	Children []*Node[V]

	// Parent points to the owning node, nil for roots.
	Parent *Node[V]

	// Expanded reports whether the children are currently visible.
	Expanded bool

	// Selected and PartiallySelected are mutually exclusive. Both false
	// means unselected; Selected means the node and every non-hidden
	// descendant is selected; PartiallySelected means a mix.
	Selected          bool
	PartiallySelected bool

	// Hidden is computed by the active filter. Hidden nodes stay in the
	// structure but are excluded from rendering, selection aggregation
	// and select-all.
	Hidden bool

	// originalIndex is the sibling position at attach time, used to
	// undo sorting. Immutable once assigned.
	originalIndex int
}

// NewNode creates a node with the given label, optional value and
// children. Children passed here get their Parent set immediately;
// nodes assembled by hand get their links confirmed when the tree is
// attached to an engine.
func NewNode[V any](label string, value *V, children ...*Node[V]) *Node[V] {
	n := &Node[V]{
		Label:    label,
		Value:    value,
		Children: children,
	}
	for _, c := range children {
		c.Parent = n
	}
	return n
}

// Value* helpers for literal payloads.

// ValueOf returns a pointer to v, for inline Node construction.
func ValueOf[V any](v V) *V { return &v }

// OriginalIndex returns the node's sibling position at attach time.
func (n *Node[V]) OriginalIndex() int { return n.originalIndex }

// IsLeaf reports whether the node has no children.
func (n *Node[V]) IsLeaf() bool { return len(n.Children) == 0 }

// IsRoot reports whether the node has no parent.
func (n *Node[V]) IsRoot() bool { return n.Parent == nil }

// Depth returns the node's depth, with roots at 0. Walks the parent
// chain, so it is proportional to depth, not tree size.
func (n *Node[V]) Depth() int {
	d := 0
	for p := n.Parent; p != nil; p = p.Parent {
		d++
	}
	return d
}

// visibleChildren returns the non-hidden children, reusing no storage.
// Selection aggregation is always computed over this set.
func (n *Node[V]) visibleChildren() []*Node[V] {
	vis := make([]*Node[V], 0, len(n.Children))
	for _, c := range n.Children {
		if !c.Hidden {
			vis = append(vis, c)
		}
	}
	return vis
}
