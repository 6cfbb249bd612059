package ui

import (
	"strings"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"

	"github.com/monkeyWie/flutter-treeview/pkg/treeview"
)

// truncateRunesHelper truncates a string to max visual width (cells), adding suffix if needed.
// Uses go-runewidth to handle wide characters correctly.
func truncateRunesHelper(s string, maxWidth int, suffix string) string {
	if maxWidth <= 0 {
		return ""
	}

	width := runewidth.StringWidth(s)
	if width <= maxWidth {
		return s
	}

	suffixWidth := runewidth.StringWidth(suffix)
	if suffixWidth > maxWidth {
		// Even suffix is too wide, truncate suffix
		return runewidth.Truncate(suffix, maxWidth, "")
	}

	targetWidth := maxWidth - suffixWidth
	return runewidth.Truncate(s, targetWidth, "") + suffix
}

// padRight pads string s with spaces on the right to length width
func padRight(s string, width int) string {
	runeCount := utf8.RuneCountInString(s)
	if runeCount >= width {
		return s
	}
	return s + strings.Repeat(" ", width-runeCount)
}

// truncate truncates string s to maxRunes
func truncate(s string, maxRunes int) string {
	return truncateRunesHelper(s, maxRunes, "…")
}

// checkboxGlyph returns the tri-state checkbox for a node.
func checkboxGlyph[V any](n *treeview.Node[V]) string {
	switch {
	case n.Selected:
		return "[x]"
	case n.PartiallySelected:
		return "[~]"
	default:
		return "[ ]"
	}
}

// RenderPlainTree renders the visible tree as unstyled text, one row per
// node with branch connectors and checkbox state. Used for non-TTY
// output and snapshots in tests.
func RenderPlainTree[V any](tr *treeview.Tree[V]) string {
	var sb strings.Builder
	roots := visibleSiblings(tr.Roots())
	for i, root := range roots {
		renderPlainNode(&sb, root, "", i == len(roots)-1, true)
	}
	return sb.String()
}

func renderPlainNode[V any](sb *strings.Builder, n *treeview.Node[V], prefix string, isLast, isRoot bool) {
	var connector string
	if !isRoot {
		if isLast {
			connector = "└── "
		} else {
			connector = "├── "
		}
	}

	marker := ""
	if !n.IsLeaf() && !n.Expanded {
		marker = " …"
	}
	sb.WriteString(prefix)
	sb.WriteString(connector)
	sb.WriteString(checkboxGlyph(n))
	sb.WriteString(" ")
	if n.Icon != "" {
		sb.WriteString(n.Icon)
		sb.WriteString(" ")
	}
	sb.WriteString(n.Label)
	sb.WriteString(marker)
	sb.WriteString("\n")

	if !n.Expanded {
		return
	}

	var childPrefix string
	if isRoot {
		childPrefix = ""
	} else if isLast {
		childPrefix = prefix + "    "
	} else {
		childPrefix = prefix + "│   "
	}

	children := visibleSiblings(n.Children)
	for i, child := range children {
		renderPlainNode(sb, child, childPrefix, i == len(children)-1, false)
	}
}

// visibleSiblings filters hidden nodes out of a sibling group.
func visibleSiblings[V any](nodes []*treeview.Node[V]) []*treeview.Node[V] {
	out := nodes[:0:0]
	for _, n := range nodes {
		if !n.Hidden {
			out = append(out, n)
		}
	}
	return out
}
