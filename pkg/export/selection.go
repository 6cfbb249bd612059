// Package export writes the current tree selection to external sinks:
// a JSON document, the system clipboard, an SVG snapshot of the visible
// tree, or a SQLite database.
package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	json "github.com/goccy/go-json"

	"github.com/monkeyWie/flutter-treeview/pkg/treeview"
)

// SelectionDocument is the JSON shape written by WriteJSON.
type SelectionDocument struct {
	ExportedAt time.Time `json:"exported_at"`
	Count      int       `json:"count"`
	Values     []string  `json:"values"`
}

// WriteJSON writes the selected values as an indented JSON document.
func WriteJSON(w io.Writer, values []string) error {
	doc := SelectionDocument{
		ExportedAt: time.Now().UTC(),
		Count:      len(values),
		Values:     values,
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal selection: %w", err)
	}
	data = append(data, '\n')
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write selection: %w", err)
	}
	return nil
}

// SaveJSON writes the selection document to a file, creating parent
// directories as needed.
func SaveJSON(path string, values []string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create parent dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create selection file: %w", err)
	}
	defer f.Close()
	return WriteJSON(f, values)
}

// CopyToClipboard places the selected values on the system clipboard,
// one value per line.
func CopyToClipboard(values []string) error {
	if err := clipboard.WriteAll(strings.Join(values, "\n")); err != nil {
		return fmt.Errorf("copy selection to clipboard: %w", err)
	}
	return nil
}

// visibleRows flattens the tree the same way the widget renders it:
// pre-order, hidden nodes skipped, children walked only under expanded
// parents.
func visibleRows[V any](tr *treeview.Tree[V]) []*treeview.Node[V] {
	var rows []*treeview.Node[V]
	var walk func(n *treeview.Node[V])
	walk = func(n *treeview.Node[V]) {
		if n.Hidden {
			return
		}
		rows = append(rows, n)
		if !n.Expanded {
			return
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	for _, r := range tr.Roots() {
		walk(r)
	}
	return rows
}
