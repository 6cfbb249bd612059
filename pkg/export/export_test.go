package export

import (
	"bytes"
	"database/sql"
	"path/filepath"
	"strings"
	"testing"

	json "github.com/goccy/go-json"

	"github.com/monkeyWie/flutter-treeview/pkg/treeview"
)

func sampleTree() *treeview.Tree[string] {
	mk := func(label string, children ...*treeview.Node[string]) *treeview.Node[string] {
		return treeview.NewNode(label, treeview.ValueOf(label), children...)
	}
	roots := []*treeview.Node[string]{
		mk("Fruits", mk("Banana"), mk("Cherry")),
		mk("Vegetables", mk("Carrot")),
	}
	return treeview.New(roots, nil, treeview.Config{InitialExpandedLevels: treeview.Levels(0)})
}

func TestWriteJSON(t *testing.T) {
	tr := sampleTree()
	tr.SetSelection(find(t, tr, "Fruits"), true)

	var buf bytes.Buffer
	if err := WriteJSON(&buf, tr.SelectedValues()); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}

	var doc SelectionDocument
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if doc.Count != 3 || len(doc.Values) != 3 {
		t.Errorf("count=%d values=%v, want 3 fruits", doc.Count, doc.Values)
	}
	if doc.Values[0] != "Fruits" || doc.Values[1] != "Banana" {
		t.Errorf("values not in pre-order: %v", doc.Values)
	}
	if doc.ExportedAt.IsZero() {
		t.Error("exported_at not stamped")
	}
}

func TestSaveJSONCreatesParents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "selection.json")
	if err := SaveJSON(path, []string{"a"}); err != nil {
		t.Fatalf("SaveJSON: %v", err)
	}
}

func TestWriteTreeSVG(t *testing.T) {
	tr := sampleTree()
	tr.SetSelection(find(t, tr, "Banana"), true)
	tr.Filter(func(n *treeview.Node[string]) bool { return n.Label != "Carrot" })
	tr.ToggleNode(find(t, tr, "Vegetables")) // collapse

	var buf bytes.Buffer
	if err := WriteTreeSVG(&buf, tr, "snapshot"); err != nil {
		t.Fatalf("WriteTreeSVG: %v", err)
	}
	out := buf.String()

	if !strings.Contains(out, "<svg") || !strings.Contains(out, "</svg>") {
		t.Fatal("output is not an SVG document")
	}
	for _, label := range []string{"snapshot", "Fruits", "Banana", "Cherry", "Vegetables"} {
		if !strings.Contains(out, label) {
			t.Errorf("SVG missing %q", label)
		}
	}
	if strings.Contains(out, "Carrot") {
		t.Error("hidden node rendered")
	}
}

func TestWriteTreeSVGFoldsCollapsed(t *testing.T) {
	tr := sampleTree()
	tr.ToggleNode(find(t, tr, "Fruits")) // collapse Fruits

	var buf bytes.Buffer
	if err := WriteTreeSVG(&buf, tr, ""); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(buf.String(), "Banana") {
		t.Error("children of a collapsed node must not be rendered")
	}
	if !strings.Contains(buf.String(), "Fruits …") {
		t.Error("collapsed branch should carry a fold marker")
	}
}

func TestExportSQLite(t *testing.T) {
	tr := sampleTree()
	tr.SetSelection(find(t, tr, "Fruits"), true)

	path := filepath.Join(t.TempDir(), "tree.sqlite3")
	if err := ExportSQLite(path, tr); err != nil {
		t.Fatalf("ExportSQLite: %v", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	var total, selected int
	if err := db.QueryRow(`SELECT COUNT(*) FROM nodes`).Scan(&total); err != nil {
		t.Fatal(err)
	}
	if total != 5 {
		t.Errorf("exported %d rows, want 5", total)
	}
	if err := db.QueryRow(`SELECT COUNT(*) FROM nodes WHERE selected = 1`).Scan(&selected); err != nil {
		t.Fatal(err)
	}
	if selected != 3 {
		t.Errorf("selected rows = %d, want 3", selected)
	}

	var path0 string
	if err := db.QueryRow(`SELECT path FROM nodes WHERE label = 'Banana'`).Scan(&path0); err != nil {
		t.Fatal(err)
	}
	if path0 != "Fruits/Banana" {
		t.Errorf("Banana path = %q", path0)
	}

	var version string
	if err := db.QueryRow(`SELECT value FROM meta WHERE key = 'schema_version'`).Scan(&version); err != nil {
		t.Fatal(err)
	}
	if version != "1" {
		t.Errorf("schema_version = %q", version)
	}
}

func find(t *testing.T, tr *treeview.Tree[string], label string) *treeview.Node[string] {
	t.Helper()
	var found *treeview.Node[string]
	tr.Walk(func(n *treeview.Node[string]) {
		if n.Label == label {
			found = n
		}
	})
	if found == nil {
		t.Fatalf("node %q not in tree", label)
	}
	return found
}
