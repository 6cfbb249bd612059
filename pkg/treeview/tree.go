package treeview

import "sort"

// SelectionChangedFunc receives the complete current list of selected,
// non-hidden values in pre-order after every operation that can change
// the visible selection. It is not a diff.
type SelectionChangedFunc[V any] func(values []V)

// Config carries the construction-time options of a Tree.
type Config struct {
	// InitialExpandedLevels controls initial expansion. Nil leaves every
	// node collapsed. 0 expands every node at every depth. L>0 expands a
	// node at depth d (roots at 0) iff d < L, descending only through
	// nodes that were themselves expanded, so branches below the cutoff
	// keep their default collapsed state.
	InitialExpandedLevels *int

	// ShowSelectAll and ShowExpandCollapseButton are rendering hints for
	// the widget's header row. The engine carries them so the widget can
	// be driven from a single config value.
	ShowSelectAll            bool
	ShowExpandCollapseButton bool
}

// Levels is a convenience for Config.InitialExpandedLevels literals.
func Levels(n int) *int { return &n }

// Tree is the state engine over a fixed node structure. It aliases the
// root list it is given (the renderer holds the same node objects) and
// is the sole mutator of node state.
type Tree[V any] struct {
	roots     []*Node[V]
	onChanged SelectionChangedFunc[V]
	cfg       Config

	allSelected bool
	// allExpanded tracks the last bulk expand/collapse direction for the
	// header's single toggle affordance; it is not recomputed from
	// per-node state.
	allExpanded bool
}

// New attaches the engine to roots: assigns original sibling indices,
// confirms parent back-references, applies initial expansion and brings
// the selection aggregates into a consistent state. The roots slice is
// aliased, not copied.
//
// onChanged may be nil. An empty or nil roots list yields a working
// engine whose aggregates stay false.
func New[V any](roots []*Node[V], onChanged SelectionChangedFunc[V], cfg Config) *Tree[V] {
	t := &Tree[V]{roots: roots, onChanged: onChanged, cfg: cfg}
	t.attach()
	t.applyInitialExpansion()
	for _, r := range t.roots {
		refreshSubtreeSelection(r)
	}
	t.allSelected = t.computeAllSelected()
	if lv := cfg.InitialExpandedLevels; lv != nil && *lv == 0 {
		t.allExpanded = true
	}
	return t
}

// Roots returns the engine's root list. Callers must treat the nodes as
// read-only; all mutation goes through engine operations.
func (t *Tree[V]) Roots() []*Node[V] { return t.roots }

// Config returns the construction-time options.
func (t *Tree[V]) Config() Config { return t.cfg }

// AllSelected reports whether every non-hidden root is fully selected,
// recursively including every non-hidden descendant. False when there
// are no visible roots.
func (t *Tree[V]) AllSelected() bool { return t.allSelected }

// AllExpanded reports the last bulk expand/collapse direction.
func (t *Tree[V]) AllExpanded() bool { return t.allExpanded }

// Walk visits every node in pre-order (parents before children, current
// sibling order), including hidden ones.
func (t *Tree[V]) Walk(fn func(*Node[V])) {
	var walk func(n *Node[V])
	walk = func(n *Node[V]) {
		fn(n)
		for _, c := range n.Children {
			walk(c)
		}
	}
	for _, r := range t.roots {
		walk(r)
	}
}

// attach assigns originalIndex per sibling group and re-establishes
// parent links in a single top-down pass. Nodes may have been built by
// hand without NewNode, so the links are confirmed here rather than
// assumed.
func (t *Tree[V]) attach() {
	var walk func(nodes []*Node[V], parent *Node[V])
	walk = func(nodes []*Node[V], parent *Node[V]) {
		for i, n := range nodes {
			n.originalIndex = i
			n.Parent = parent
			walk(n.Children, n)
		}
	}
	walk(t.roots, nil)
}

func (t *Tree[V]) applyInitialExpansion() {
	lv := t.cfg.InitialExpandedLevels
	if lv == nil {
		return
	}
	if *lv == 0 {
		t.Walk(func(n *Node[V]) { n.Expanded = true })
		return
	}
	var walk func(nodes []*Node[V], depth int)
	walk = func(nodes []*Node[V], depth int) {
		for _, n := range nodes {
			if depth < *lv {
				n.Expanded = true
				walk(n.Children, depth+1)
			}
		}
	}
	walk(t.roots, 0)
}

// ── Selection ──

// ToggleSelection resolves the ambiguous tri-state click: a node that is
// currently selected or partially selected becomes unselected, anything
// else becomes selected. Use SetSelection when the caller knows the
// target state.
func (t *Tree[V]) ToggleSelection(n *Node[V]) {
	if n == nil {
		return
	}
	t.applySelection(n, !(n.Selected || n.PartiallySelected))
}

// SetSelection drives n and its visible subtree to the given state and
// re-aggregates the ancestor chain.
func (t *Tree[V]) SetSelection(n *Node[V], selected bool) {
	if n == nil {
		return
	}
	t.applySelection(n, selected)
}

func (t *Tree[V]) applySelection(n *Node[V], selected bool) {
	setSubtree(n, selected)
	for p := n.Parent; p != nil; p = p.Parent {
		recomputeFromChildren(p)
	}
	t.allSelected = t.computeAllSelected()
	t.notify()
}

// SetSelectAll drives every visible node in the tree to a single state.
// No upward recompute is needed since the whole tree ends uniform.
func (t *Tree[V]) SetSelectAll(selected bool) {
	for _, r := range t.roots {
		setSubtree(r, selected)
	}
	t.allSelected = t.computeAllSelected()
	t.notify()
}

// setSubtree applies the new state downward. Hidden nodes are left
// completely untouched, including their descendants: filtered-out
// subtrees are frozen until they are unfiltered.
func setSubtree[V any](n *Node[V], selected bool) {
	if n.Hidden {
		return
	}
	n.Selected = selected
	n.PartiallySelected = false
	for _, c := range n.Children {
		setSubtree(c, selected)
	}
}

// recomputeFromChildren re-derives n's selection flags from its
// non-hidden children. A node whose children are all hidden (or absent)
// cannot be evaluated and keeps its flags, behaving as a leaf.
func recomputeFromChildren[V any](n *Node[V]) {
	vis := n.visibleChildren()
	if len(vis) == 0 {
		return
	}
	all, any := true, false
	for _, c := range vis {
		if c.Selected {
			any = true
		} else {
			all = false
		}
		if c.PartiallySelected {
			any = true
		}
	}
	switch {
	case all:
		n.Selected, n.PartiallySelected = true, false
	case any:
		n.Selected, n.PartiallySelected = false, true
	default:
		n.Selected, n.PartiallySelected = false, false
	}
}

// refreshSubtreeSelection recomputes aggregation bottom-up for a whole
// subtree. Used at attach time and after the visible-children set
// changes under a filter.
func refreshSubtreeSelection[V any](n *Node[V]) {
	for _, c := range n.Children {
		refreshSubtreeSelection(c)
	}
	recomputeFromChildren(n)
}

// fullySelected reports whether n and, recursively, every non-hidden
// descendant carry the selected flag. This is the strict form of the
// aggregate: a bare Selected flag on an ancestor is not trusted during
// filter transitions.
func fullySelected[V any](n *Node[V]) bool {
	if !n.Selected {
		return false
	}
	for _, c := range n.Children {
		if c.Hidden {
			continue
		}
		if !fullySelected(c) {
			return false
		}
	}
	return true
}

func (t *Tree[V]) computeAllSelected() bool {
	visible := false
	for _, r := range t.roots {
		if r.Hidden {
			continue
		}
		visible = true
		if !fullySelected(r) {
			return false
		}
	}
	return visible
}

// ── Filtering ──

// Filter recomputes every node's Hidden flag: a node stays visible when
// the predicate accepts it or any descendant at any depth is accepted
// independently. A nil predicate clears the filter. Selection flags are
// never changed directly; only the aggregation over the now-different
// visible-children sets is recomputed.
func (t *Tree[V]) Filter(pred func(*Node[V]) bool) {
	if pred == nil {
		t.Walk(func(n *Node[V]) { n.Hidden = false })
	} else {
		for _, r := range t.roots {
			applyFilter(r, pred)
		}
	}
	for _, r := range t.roots {
		refreshSubtreeSelection(r)
	}
	t.allSelected = t.computeAllSelected()
	t.notify()
}

// applyFilter evaluates the predicate for every node in the subtree
// (no short-circuiting) and returns whether n remains visible.
func applyFilter[V any](n *Node[V], pred func(*Node[V]) bool) bool {
	show := pred(n)
	for _, c := range n.Children {
		if applyFilter(c, pred) {
			show = true
		}
	}
	n.Hidden = !show
	return show
}

// ── Sorting ──

// Sort reorders every sibling group at every depth with the same
// comparator. A nil comparator restores ascending original-index order.
// Selection, expansion and visibility are untouched.
func (t *Tree[V]) Sort(less func(a, b *Node[V]) bool) {
	if less == nil {
		less = func(a, b *Node[V]) bool { return a.originalIndex < b.originalIndex }
	}
	sortSiblings(t.roots, less)
}

func sortSiblings[V any](nodes []*Node[V], less func(a, b *Node[V]) bool) {
	if len(nodes) > 1 {
		sort.SliceStable(nodes, func(i, j int) bool { return less(nodes[i], nodes[j]) })
	}
	for _, n := range nodes {
		sortSiblings(n.Children, less)
	}
}

// ── Expansion ──

// ExpandAll expands every node, hidden ones included, so a later
// filter-clear reveals consistent state.
func (t *Tree[V]) ExpandAll() { t.setExpandedAll(true) }

// CollapseAll collapses every node, hidden ones included.
func (t *Tree[V]) CollapseAll() { t.setExpandedAll(false) }

// ToggleExpandAll alternates between ExpandAll and CollapseAll based on
// the last bulk direction.
func (t *Tree[V]) ToggleExpandAll() {
	if t.allExpanded {
		t.CollapseAll()
	} else {
		t.ExpandAll()
	}
}

func (t *Tree[V]) setExpandedAll(expanded bool) {
	t.Walk(func(n *Node[V]) { n.Expanded = expanded })
	t.allExpanded = expanded
}

// ToggleNode flips a single node's expansion.
func (t *Tree[V]) ToggleNode(n *Node[V]) {
	if n == nil {
		return
	}
	n.Expanded = !n.Expanded
}

// ── Queries ──

// SelectedNodes returns every selected, non-hidden node in pre-order.
// Partially selected nodes are never included. A hidden node's subtree
// is skipped entirely (a hidden node cannot have visible descendants).
func (t *Tree[V]) SelectedNodes() []*Node[V] {
	var out []*Node[V]
	var walk func(n *Node[V])
	walk = func(n *Node[V]) {
		if n.Hidden {
			return
		}
		if n.Selected {
			out = append(out, n)
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	for _, r := range t.roots {
		walk(r)
	}
	return out
}

// SelectedValues returns the payloads of the selected, non-hidden nodes
// in pre-order, skipping nodes without a value.
func (t *Tree[V]) SelectedValues() []V {
	nodes := t.SelectedNodes()
	out := make([]V, 0, len(nodes))
	for _, n := range nodes {
		if n.Value != nil {
			out = append(out, *n.Value)
		}
	}
	return out
}

func (t *Tree[V]) notify() {
	if t.onChanged == nil {
		return
	}
	t.onChanged(t.SelectedValues())
}
