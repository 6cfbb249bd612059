// Package ui renders a tri-state checkbox tree as an interactive
// terminal widget. The widget owns cursor and viewport state; all
// selection, filter, sort and expansion semantics live in the
// treeview engine underneath.
package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-runewidth"

	"github.com/monkeyWie/flutter-treeview/pkg/config"
	"github.com/monkeyWie/flutter-treeview/pkg/debug"
	"github.com/monkeyWie/flutter-treeview/pkg/treeview"
)

// TreeReloadedMsg replaces the widget's tree wholesale, e.g. after the
// backing file changed on disk. Cursor position is preserved
// best-effort by label path.
type TreeReloadedMsg[V any] struct {
	Tree *treeview.Tree[V]
}

// Model is the interactive tree widget. It implements tea.Model and can
// run standalone or be embedded in a larger program.
type Model[V any] struct {
	tree  *treeview.Tree[V]
	theme Theme
	title string

	// Flattened visible nodes for navigation. Rebuilt after every
	// operation that changes visibility.
	flatList       []*treeview.Node[V]
	cursor         int
	viewportOffset int
	width          int
	height         int

	// Filter state
	filterInput     textinput.Model
	filtering       bool
	filterAsYouType bool
	appliedQuery    string

	sortOrder string

	copyFn    func(values []V) error
	statusMsg string
	quitting  bool
}

// NewModel creates a tree widget over an already-built engine. The
// engine's Config decides which header affordances are shown.
func NewModel[V any](tr *treeview.Tree[V], theme Theme, uiCfg config.UIConfig) Model[V] {
	ti := textinput.New()
	ti.Prompt = "/"
	ti.Placeholder = "filter"
	ti.CharLimit = 128

	m := Model[V]{
		tree:            tr,
		theme:           theme,
		title:           "Tree",
		filterInput:     ti,
		filterAsYouType: uiCfg.FilterAsYouType,
		sortOrder:       config.SortNone,
		width:           80,
		height:          24,
	}
	if uiCfg.DefaultSort != "" && uiCfg.DefaultSort != config.SortNone {
		m.applySort(uiCfg.DefaultSort)
	}
	m.rebuildFlatList()
	return m
}

// SetTitle overrides the header title.
func (m *Model[V]) SetTitle(title string) {
	m.title = title
}

// SetCopyFunc installs the handler invoked by the copy key. The widget
// stays clipboard-agnostic; callers wire in export.CopyToClipboard or
// anything else.
func (m *Model[V]) SetCopyFunc(fn func(values []V) error) {
	m.copyFn = fn
}

// SetSize updates the available dimensions for the widget.
func (m *Model[V]) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.ensureCursorVisible()
}

// Tree returns the underlying engine.
func (m *Model[V]) Tree() *treeview.Tree[V] {
	return m.tree
}

// Quitting reports whether the user asked to exit.
func (m Model[V]) Quitting() bool { return m.quitting }

func (m Model[V]) Init() tea.Cmd {
	return nil
}

func (m Model[V]) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case TreeReloadedMsg[V]:
		m.reload(msg.Tree)
		return m, nil

	case tea.KeyMsg:
		if m.filtering {
			return m.updateFiltering(msg)
		}
		return m.updateBrowsing(msg)
	}
	return m, nil
}

// updateFiltering handles keys while the filter input is focused.
func (m Model[V]) updateFiltering(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.filtering = false
		m.filterInput.Blur()
		m.filterInput.SetValue("")
		m.applyFilterQuery("")
		return m, nil
	case "enter":
		m.filtering = false
		m.filterInput.Blur()
		m.applyFilterQuery(m.filterInput.Value())
		return m, nil
	}

	var cmd tea.Cmd
	m.filterInput, cmd = m.filterInput.Update(msg)
	if m.filterAsYouType {
		m.applyFilterQuery(m.filterInput.Value())
	}
	return m, cmd
}

// updateBrowsing handles keys in normal navigation mode.
func (m Model[V]) updateBrowsing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.statusMsg = ""

	switch msg.String() {
	case "q", "ctrl+c":
		m.quitting = true
		return m, tea.Quit

	case "up", "k":
		m.moveUp()
	case "down", "j":
		m.moveDown()
	case "g", "home":
		m.jumpToTop()
	case "G", "end":
		m.jumpToBottom()
	case "pgdown", "ctrl+d":
		m.pageDown()
	case "pgup", "ctrl+u":
		m.pageUp()

	case " ":
		if n := m.selectedNode(); n != nil {
			m.tree.ToggleSelection(n)
		}

	case "enter":
		m.toggleExpand()
	case "right", "l":
		m.expandOrMoveToChild()
	case "left", "h":
		m.collapseOrJumpToParent()

	case "a":
		if m.tree.Config().ShowSelectAll {
			m.tree.SetSelectAll(!m.tree.AllSelected())
		}
	case "e":
		if m.tree.Config().ShowExpandCollapseButton {
			m.tree.ToggleExpandAll()
			m.rebuildFlatList()
			m.ensureCursorVisible()
		}

	case "o":
		m.cycleSort()

	case "/":
		m.filtering = true
		m.filterInput.SetValue(m.appliedQuery)
		m.filterInput.Focus()
		return m, textinput.Blink

	case "c":
		m.copySelection()
	}

	return m, nil
}

// reload swaps in a freshly loaded tree, re-applying the active sort
// and filter so the view stays consistent with what the user set up.
func (m *Model[V]) reload(tr *treeview.Tree[V]) {
	prevPath := m.selectedPath()
	m.tree = tr
	if m.sortOrder != config.SortNone {
		m.applySort(m.sortOrder)
	}
	m.applyFilterQuery(m.appliedQuery)
	if prevPath != "" {
		m.selectByPath(prevPath)
	}
	m.ensureCursorVisible()
	m.statusMsg = "reloaded"
	debug.Log("ui: tree reloaded, %d visible rows", len(m.flatList))
}

// applyFilterQuery filters the tree by case-insensitive substring match
// on node labels. An empty query clears the filter.
func (m *Model[V]) applyFilterQuery(query string) {
	query = strings.TrimSpace(query)
	m.appliedQuery = query
	if query == "" {
		m.tree.Filter(nil)
	} else {
		q := strings.ToLower(query)
		m.tree.Filter(func(n *treeview.Node[V]) bool {
			return strings.Contains(strings.ToLower(n.Label), q)
		})
	}
	m.rebuildFlatList()
	m.ensureCursorVisible()
}

// cycleSort advances none -> label-asc -> label-desc -> none.
func (m *Model[V]) cycleSort() {
	switch m.sortOrder {
	case config.SortNone:
		m.applySort(config.SortLabelAsc)
	case config.SortLabelAsc:
		m.applySort(config.SortLabelDesc)
	default:
		m.applySort(config.SortNone)
	}
	m.statusMsg = "sort: " + m.sortOrder
}

func (m *Model[V]) applySort(order string) {
	m.sortOrder = order
	switch order {
	case config.SortLabelAsc:
		m.tree.Sort(func(a, b *treeview.Node[V]) bool { return a.Label < b.Label })
	case config.SortLabelDesc:
		m.tree.Sort(func(a, b *treeview.Node[V]) bool { return a.Label > b.Label })
	default:
		m.sortOrder = config.SortNone
		m.tree.Sort(nil)
	}
	m.rebuildFlatList()
	m.ensureCursorVisible()
}

func (m *Model[V]) copySelection() {
	if m.copyFn == nil {
		return
	}
	values := m.tree.SelectedValues()
	if err := m.copyFn(values); err != nil {
		m.statusMsg = "copy failed: " + err.Error()
		return
	}
	m.statusMsg = fmt.Sprintf("copied %d values", len(values))
}

// ── Cursor and viewport ──

func (m *Model[V]) selectedNode() *treeview.Node[V] {
	if m.cursor >= 0 && m.cursor < len(m.flatList) {
		return m.flatList[m.cursor]
	}
	return nil
}

func (m *Model[V]) moveDown() {
	if m.cursor < len(m.flatList)-1 {
		m.cursor++
		m.ensureCursorVisible()
	}
}

func (m *Model[V]) moveUp() {
	if m.cursor > 0 {
		m.cursor--
		m.ensureCursorVisible()
	}
}

func (m *Model[V]) jumpToTop() {
	m.cursor = 0
	m.ensureCursorVisible()
}

func (m *Model[V]) jumpToBottom() {
	if len(m.flatList) > 0 {
		m.cursor = len(m.flatList) - 1
		m.ensureCursorVisible()
	}
}

func (m *Model[V]) pageDown() {
	pageSize := m.height / 2
	if pageSize < 1 {
		pageSize = 5
	}
	m.cursor += pageSize
	if m.cursor >= len(m.flatList) {
		m.cursor = len(m.flatList) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	m.ensureCursorVisible()
}

func (m *Model[V]) pageUp() {
	pageSize := m.height / 2
	if pageSize < 1 {
		pageSize = 5
	}
	m.cursor -= pageSize
	if m.cursor < 0 {
		m.cursor = 0
	}
	m.ensureCursorVisible()
}

// toggleExpand expands or collapses the node under the cursor.
func (m *Model[V]) toggleExpand() {
	n := m.selectedNode()
	if n == nil || n.IsLeaf() {
		return
	}
	m.tree.ToggleNode(n)
	m.rebuildFlatList()
	m.ensureCursorVisible()
}

// expandOrMoveToChild handles the → / l key:
// collapsed branch: expand it; expanded branch: move to first child.
func (m *Model[V]) expandOrMoveToChild() {
	n := m.selectedNode()
	if n == nil || n.IsLeaf() {
		return
	}
	if !n.Expanded {
		m.tree.ToggleNode(n)
		m.rebuildFlatList()
		m.ensureCursorVisible()
		return
	}
	for i, row := range m.flatList {
		if row.Parent == n {
			m.cursor = i
			m.ensureCursorVisible()
			return
		}
	}
}

// collapseOrJumpToParent handles the ← / h key:
// expanded branch: collapse it; otherwise jump to the parent row.
func (m *Model[V]) collapseOrJumpToParent() {
	n := m.selectedNode()
	if n == nil {
		return
	}
	if !n.IsLeaf() && n.Expanded {
		m.tree.ToggleNode(n)
		m.rebuildFlatList()
		m.ensureCursorVisible()
		return
	}
	if n.Parent == nil {
		return
	}
	for i, row := range m.flatList {
		if row == n.Parent {
			m.cursor = i
			m.ensureCursorVisible()
			return
		}
	}
}

// selectedPath returns the slash-joined label chain of the cursor node,
// used to restore the cursor across reloads.
func (m *Model[V]) selectedPath() string {
	n := m.selectedNode()
	if n == nil {
		return ""
	}
	return labelPath(n)
}

func (m *Model[V]) selectByPath(path string) {
	for i, n := range m.flatList {
		if labelPath(n) == path {
			m.cursor = i
			return
		}
	}
}

// labelPath is the slash-joined label chain from the root.
func labelPath[V any](n *treeview.Node[V]) string {
	var parts []string
	for p := n; p != nil; p = p.Parent {
		parts = append(parts, p.Label)
	}
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return strings.Join(parts, "/")
}

// rebuildFlatList rebuilds the flattened list of visible nodes. Hidden
// nodes and collapsed subtrees are skipped.
func (m *Model[V]) rebuildFlatList() {
	m.flatList = m.flatList[:0]
	for _, root := range m.tree.Roots() {
		m.appendVisible(root)
	}
	if m.cursor >= len(m.flatList) {
		m.cursor = len(m.flatList) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *Model[V]) appendVisible(n *treeview.Node[V]) {
	if n.Hidden {
		return
	}
	m.flatList = append(m.flatList, n)
	if !n.Expanded {
		return
	}
	for _, child := range n.Children {
		m.appendVisible(child)
	}
}

// effectiveVisibleCount returns the number of node lines that can be
// displayed, accounting for the header row and position indicator.
func (m *Model[V]) effectiveVisibleCount() int {
	visibleCount := m.height - 2 // header + help line
	if visibleCount <= 0 {
		visibleCount = 18
	}
	if len(m.flatList) > visibleCount {
		visibleCount-- // reserve a line for the position indicator
	}
	if visibleCount < 1 {
		visibleCount = 1
	}
	return visibleCount
}

// visibleRange returns the [start, end) indices of rows to render.
func (m *Model[V]) visibleRange() (start, end int) {
	if len(m.flatList) == 0 {
		return 0, 0
	}
	visibleCount := m.effectiveVisibleCount()

	start = m.viewportOffset
	if start < 0 {
		start = 0
	}
	end = start + visibleCount
	if end > len(m.flatList) {
		end = len(m.flatList)
		start = end - visibleCount
		if start < 0 {
			start = 0
		}
	}
	return start, end
}

// ensureCursorVisible adjusts viewportOffset so the cursor stays inside
// the rendered window. Cursor-at-edge scrolling: the viewport moves
// just enough to keep the cursor visible.
func (m *Model[V]) ensureCursorVisible() {
	if len(m.flatList) == 0 {
		return
	}
	visibleCount := m.effectiveVisibleCount()

	if m.cursor < m.viewportOffset {
		m.viewportOffset = m.cursor
	}
	if m.cursor >= m.viewportOffset+visibleCount {
		m.viewportOffset = m.cursor - visibleCount + 1
	}

	maxOffset := len(m.flatList) - visibleCount
	if maxOffset < 0 {
		maxOffset = 0
	}
	if m.viewportOffset > maxOffset {
		m.viewportOffset = maxOffset
	}
	if m.viewportOffset < 0 {
		m.viewportOffset = 0
	}
}

// ── Rendering ──

func (m Model[V]) View() string {
	if m.quitting {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(m.renderHeader())
	sb.WriteString("\n")

	if len(m.flatList) == 0 {
		sb.WriteString(m.theme.MutedText.Render("No nodes match."))
		sb.WriteString("\n")
	}

	start, end := m.visibleRange()
	for i := start; i < end; i++ {
		line := m.renderNode(m.flatList[i], i == m.cursor)
		if i == m.cursor {
			line = m.theme.Selected.Render(line)
		}
		sb.WriteString(line)
		sb.WriteString("\n")
	}

	if len(m.flatList) > m.effectiveVisibleCount() {
		sb.WriteString(m.renderPositionIndicator(start, end))
		sb.WriteString("\n")
	}

	if m.filtering {
		sb.WriteString(m.filterInput.View())
		sb.WriteString("\n")
	} else {
		sb.WriteString(m.renderFooter())
	}

	return sb.String()
}

// renderHeader renders the title bar with the select-all and
// expand-all affordances that the engine config enables.
func (m Model[V]) renderHeader() string {
	cfg := m.tree.Config()

	parts := []string{m.title}
	if cfg.ShowSelectAll {
		mark := "[ ]"
		if m.tree.AllSelected() {
			mark = "[x]"
		}
		parts = append(parts, mark+" all")
	}
	if cfg.ShowExpandCollapseButton {
		if m.tree.AllExpanded() {
			parts = append(parts, "⊟")
		} else {
			parts = append(parts, "⊞")
		}
	}
	if m.appliedQuery != "" {
		parts = append(parts, "filter:"+m.appliedQuery)
	}
	if m.sortOrder != config.SortNone {
		parts = append(parts, "sort:"+m.sortOrder)
	}

	header := strings.Join(parts, "  ")
	width := m.width
	if width <= 0 {
		width = 80
	}
	return m.theme.Header.Width(width).Render(truncateRunesHelper(header, width-2, "…"))
}

// renderNode renders a single row:
// [branch prefix] [expand indicator] [checkbox] [icon] [label]
func (m Model[V]) renderNode(n *treeview.Node[V], isSelected bool) string {
	width := m.width
	if width <= 0 {
		width = 80
	}
	width-- // avoid wrapping on the exact edge

	var sb strings.Builder

	prefix := m.buildTreePrefix(n)
	sb.WriteString(m.theme.BranchText.Render(prefix))

	sb.WriteString(m.theme.SecondaryText.Render(expandIndicator(n)))
	sb.WriteString(" ")

	box := checkboxGlyph(n)
	switch {
	case n.Selected:
		sb.WriteString(m.theme.CheckedText.Render(box))
	case n.PartiallySelected:
		sb.WriteString(m.theme.PartialText.Render(box))
	default:
		sb.WriteString(m.theme.UncheckedText.Render(box))
	}
	sb.WriteString(" ")

	if n.Icon != "" {
		sb.WriteString(n.Icon)
		sb.WriteString(" ")
	}

	labelWidth := width - runewidth.StringWidth(prefix) - 8
	if labelWidth < 5 {
		labelWidth = 5
	}
	label := truncateRunesHelper(n.Label, labelWidth, "…")

	labelStyle := m.theme.Base
	if isSelected {
		labelStyle = m.theme.PrimaryBold
	} else if n.Selected || n.PartiallySelected {
		labelStyle = m.theme.Base.Bold(true)
	}
	sb.WriteString(labelStyle.Render(label))

	return sb.String()
}

// buildTreePrefix builds the indentation and branch characters for a
// node, skipping hidden siblings so connectors match what is drawn.
func (m Model[V]) buildTreePrefix(n *treeview.Node[V]) string {
	if n.Parent == nil {
		return ""
	}

	var ancestors []*treeview.Node[V]
	for p := n.Parent; p != nil; p = p.Parent {
		ancestors = append([]*treeview.Node[V]{p}, ancestors...)
	}

	var parts []string
	for _, ancestor := range ancestors {
		if m.hasVisibleSiblingsBelow(ancestor) {
			parts = append(parts, "│   ")
		} else {
			parts = append(parts, "    ")
		}
	}

	if m.isLastVisibleChild(n) {
		parts = append(parts, "└── ")
	} else {
		parts = append(parts, "├── ")
	}
	return strings.Join(parts, "")
}

func (m Model[V]) siblingsOf(n *treeview.Node[V]) []*treeview.Node[V] {
	if n.Parent == nil {
		return visibleSiblings(m.tree.Roots())
	}
	return visibleSiblings(n.Parent.Children)
}

func (m Model[V]) hasVisibleSiblingsBelow(n *treeview.Node[V]) bool {
	siblings := m.siblingsOf(n)
	for i, s := range siblings {
		if s == n {
			return i < len(siblings)-1
		}
	}
	return false
}

func (m Model[V]) isLastVisibleChild(n *treeview.Node[V]) bool {
	siblings := m.siblingsOf(n)
	return len(siblings) > 0 && siblings[len(siblings)-1] == n
}

// expandIndicator returns the expand/collapse marker for a node.
func expandIndicator[V any](n *treeview.Node[V]) string {
	if n.IsLeaf() {
		return "•"
	}
	if n.Expanded {
		return "▾"
	}
	return "▸"
}

// renderPositionIndicator shows "start-end of total" when the list is
// longer than the viewport.
func (m Model[V]) renderPositionIndicator(start, end int) string {
	return m.theme.MutedText.Render(
		fmt.Sprintf(" %d-%d of %d", start+1, end, len(m.flatList)))
}

func (m Model[V]) renderFooter() string {
	if m.statusMsg != "" {
		return m.theme.MutedText.Render(" " + m.statusMsg)
	}
	selected := len(m.tree.SelectedValues())
	help := fmt.Sprintf(" %d selected · space toggle · a all · e fold · / filter · o sort · q quit", selected)
	return m.theme.MutedText.Render(help)
}
