package ui

import (
	"regexp"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/monkeyWie/flutter-treeview/pkg/config"
	"github.com/monkeyWie/flutter-treeview/pkg/treeview"
)

// stripANSI removes ANSI escape sequences for plain-text comparison.
var ansiRe = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

func stripANSI(s string) string { return ansiRe.ReplaceAllString(s, "") }

func newTreeTestTheme() Theme {
	return DefaultTheme(lipgloss.NewRenderer(nil))
}

func newTestModel(t *testing.T) Model[string] {
	t.Helper()
	mk := func(label string, children ...*treeview.Node[string]) *treeview.Node[string] {
		return treeview.NewNode(label, treeview.ValueOf(label), children...)
	}
	roots := []*treeview.Node[string]{
		mk("Root1", mk("Child1.1"), mk("Child1.2")),
		mk("Root2", mk("Child2.1")),
	}
	tr := treeview.New(roots, nil, treeview.Config{
		InitialExpandedLevels:    treeview.Levels(0),
		ShowSelectAll:            true,
		ShowExpandCollapseButton: true,
	})
	m := NewModel(tr, newTreeTestTheme(), config.UIConfig{FilterAsYouType: true})
	m.SetSize(80, 24)
	return m
}

// press sends a single key to the model and returns the updated model.
func press(t *testing.T, m Model[string], key string) Model[string] {
	t.Helper()
	var msg tea.KeyMsg
	switch key {
	case " ":
		msg = tea.KeyMsg{Type: tea.KeySpace}
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		msg = tea.KeyMsg{Type: tea.KeyEsc}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
	}
	updated, _ := m.Update(msg)
	return updated.(Model[string])
}

func flatLabels(m Model[string]) []string {
	labels := make([]string, 0, len(m.flatList))
	for _, n := range m.flatList {
		labels = append(labels, n.Label)
	}
	return labels
}

func TestModelInitialFlatList(t *testing.T) {
	m := newTestModel(t)
	want := []string{"Root1", "Child1.1", "Child1.2", "Root2", "Child2.1"}
	got := flatLabels(m)
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("flat list = %v, want %v", got, want)
	}
}

func TestEnterCollapsesBranch(t *testing.T) {
	m := newTestModel(t)
	m = press(t, m, "enter") // collapse Root1 under cursor

	got := flatLabels(m)
	want := []string{"Root1", "Root2", "Child2.1"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("flat list after collapse = %v, want %v", got, want)
	}

	view := stripANSI(m.View())
	if strings.Contains(view, "Child1.1") {
		t.Error("collapsed child still rendered")
	}
	if !strings.Contains(view, "▸") {
		t.Error("collapsed branch missing indicator")
	}
}

func TestSpaceTogglesSelection(t *testing.T) {
	m := newTestModel(t)
	m = press(t, m, "j") // cursor on Child1.1
	m = press(t, m, " ")

	view := stripANSI(m.View())
	if !strings.Contains(view, "[x] Child1.1") {
		t.Errorf("selected leaf not checked:\n%s", view)
	}
	if !strings.Contains(view, "[~] Root1") {
		t.Errorf("parent of single selected child not partial:\n%s", view)
	}

	m = press(t, m, " ") // toggle off again
	if len(m.tree.SelectedValues()) != 0 {
		t.Error("second space did not clear selection")
	}
}

func TestSelectAllKey(t *testing.T) {
	m := newTestModel(t)
	m = press(t, m, "a")

	if !m.tree.AllSelected() {
		t.Fatal("a key did not select all")
	}
	header := stripANSI(m.View())
	if !strings.Contains(header, "[x] all") {
		t.Errorf("header does not reflect select-all:\n%s", header)
	}

	m = press(t, m, "a")
	if m.tree.AllSelected() || len(m.tree.SelectedValues()) != 0 {
		t.Error("second a did not deselect all")
	}
}

func TestExpandCollapseAllKey(t *testing.T) {
	m := newTestModel(t)
	m = press(t, m, "e") // everything starts expanded, so collapse all

	got := flatLabels(m)
	want := []string{"Root1", "Root2"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("flat list after collapse-all = %v, want %v", got, want)
	}

	m = press(t, m, "e")
	if len(m.flatList) != 5 {
		t.Errorf("expand-all restored %d rows, want 5", len(m.flatList))
	}
}

func TestFilterAsYouType(t *testing.T) {
	m := newTestModel(t)
	m = press(t, m, "/")
	if !m.filtering {
		t.Fatal("/ did not enter filter mode")
	}
	for _, ch := range "child1" {
		m = press(t, m, string(ch))
	}
	m = press(t, m, "enter")

	got := flatLabels(m)
	want := []string{"Root1", "Child1.1", "Child1.2"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("filtered flat list = %v, want %v", got, want)
	}

	// esc from a fresh filter session clears the filter entirely
	m = press(t, m, "/")
	m = press(t, m, "esc")
	if len(m.flatList) != 5 {
		t.Errorf("clearing filter left %d rows, want 5", len(m.flatList))
	}
}

func TestSortCycleKey(t *testing.T) {
	m := newTestModel(t)
	m = press(t, m, "o") // label-asc
	if m.sortOrder != config.SortLabelAsc {
		t.Fatalf("sort order = %q after first o", m.sortOrder)
	}

	m = press(t, m, "o") // label-desc
	got := flatLabels(m)
	if got[0] != "Root2" {
		t.Errorf("descending sort put %q first", got[0])
	}

	m = press(t, m, "o") // back to insertion order
	if m.sortOrder != config.SortNone {
		t.Fatalf("sort order = %q after third o", m.sortOrder)
	}
	if flatLabels(m)[0] != "Root1" {
		t.Error("insertion order not restored")
	}
}

func TestReloadPreservesCursorByPath(t *testing.T) {
	m := newTestModel(t)
	m = press(t, m, "j")
	m = press(t, m, "j") // cursor on Child1.2

	replacement := newTestModel(t)
	updated, _ := m.Update(TreeReloadedMsg[string]{Tree: replacement.tree})
	m = updated.(Model[string])

	if n := m.selectedNode(); n == nil || n.Label != "Child1.2" {
		t.Errorf("cursor after reload = %v, want Child1.2", n)
	}
}

func TestViewWindowing(t *testing.T) {
	m := newTestModel(t)
	m.SetSize(80, 5) // room for ~2 rows plus chrome

	view := stripANSI(m.View())
	if !strings.Contains(view, " of 5") {
		t.Errorf("position indicator missing from windowed view:\n%s", view)
	}

	m = press(t, m, "G")
	if n := m.selectedNode(); n == nil || n.Label != "Child2.1" {
		t.Error("G did not jump to bottom")
	}
	view = stripANSI(m.View())
	if !strings.Contains(view, "Child2.1") {
		t.Error("viewport did not follow cursor to bottom")
	}
}

func TestRenderPlainTree(t *testing.T) {
	m := newTestModel(t)
	m.tree.SetSelection(m.flatList[3], true) // Root2 subtree
	m.tree.ToggleNode(m.flatList[0])         // collapse Root1

	out := RenderPlainTree(m.tree)
	for _, want := range []string{"[ ] Root1 …", "[x] Root2", "└── [x] Child2.1"} {
		if !strings.Contains(out, want) {
			t.Errorf("plain render missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Child1.1") {
		t.Error("collapsed subtree rendered in plain output")
	}
}
