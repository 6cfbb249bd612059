package export

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/monkeyWie/flutter-treeview/pkg/treeview"
)

// SchemaVersion tracks the exported database layout.
const SchemaVersion = 1

const nodesSchema = `
	CREATE TABLE IF NOT EXISTS nodes (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		path TEXT NOT NULL,
		label TEXT NOT NULL,
		value TEXT,
		depth INTEGER NOT NULL,
		selected INTEGER NOT NULL,
		partially_selected INTEGER NOT NULL,
		expanded INTEGER NOT NULL
	)
`

const metaSchema = `
	CREATE TABLE IF NOT EXISTS meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	)
`

// createSchema creates the nodes and meta tables.
func createSchema(db *sql.DB) error {
	if _, err := db.Exec(nodesSchema); err != nil {
		return fmt.Errorf("create nodes table: %w", err)
	}
	if _, err := db.Exec(metaSchema); err != nil {
		return fmt.Errorf("create meta table: %w", err)
	}
	if _, err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_nodes_selected ON nodes(selected)`); err != nil {
		return fmt.Errorf("create selected index: %w", err)
	}
	return nil
}

// ExportSQLite writes the visible tree rows and their selection state to
// a SQLite database at path, replacing any existing file. The path
// column is the slash-joined label chain from the root, so consumers can
// query subtrees with LIKE.
func ExportSQLite[V any](path string, tr *treeview.Tree[V]) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove existing database: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	if err := createSchema(db); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO nodes (path, label, value, depth, selected, partially_selected, expanded)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, n := range visibleRows(tr) {
		var value any
		if n.Value != nil {
			value = fmt.Sprintf("%v", *n.Value)
		}
		if _, err := stmt.Exec(nodePath(n), n.Label, value, n.Depth(),
			boolInt(n.Selected), boolInt(n.PartiallySelected), boolInt(n.Expanded)); err != nil {
			return fmt.Errorf("insert node %q: %w", n.Label, err)
		}
	}

	meta := map[string]string{
		"schema_version": fmt.Sprintf("%d", SchemaVersion),
		"exported_at":    time.Now().UTC().Format(time.RFC3339),
	}
	for k, v := range meta {
		if _, err := tx.Exec(`INSERT INTO meta (key, value) VALUES (?, ?)`, k, v); err != nil {
			return fmt.Errorf("insert meta %s: %w", k, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// nodePath returns the slash-joined label chain from the root.
func nodePath[V any](n *treeview.Node[V]) string {
	var parts []string
	for p := n; p != nil; p = p.Parent {
		parts = append(parts, p.Label)
	}
	// Reverse: collected leaf-to-root.
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return strings.Join(parts, "/")
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
