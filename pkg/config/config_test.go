package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFromMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if !cfg.UI.ShowSelectAll || !cfg.UI.ShowExpandCollapseButton {
		t.Error("defaults should enable the header controls")
	}
	if cfg.UI.DefaultSort != SortNone {
		t.Errorf("default sort = %q, want %q", cfg.UI.DefaultSort, SortNone)
	}
	if cfg.UI.InitialExpandedLevels != nil {
		t.Error("default should leave the tree collapsed")
	}
}

func TestLoadFromRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	levels := 2
	in := DefaultConfig()
	in.UI.InitialExpandedLevels = &levels
	in.UI.DefaultSort = SortLabelDesc
	in.UI.ShowSelectAll = false

	if err := SaveTo(in, path); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}
	out, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}

	if out.UI.InitialExpandedLevels == nil || *out.UI.InitialExpandedLevels != 2 {
		t.Errorf("InitialExpandedLevels = %v", out.UI.InitialExpandedLevels)
	}
	if out.UI.DefaultSort != SortLabelDesc {
		t.Errorf("DefaultSort = %q", out.UI.DefaultSort)
	}
	if out.UI.ShowSelectAll {
		t.Error("ShowSelectAll=false not persisted")
	}
}

func TestLoadFromRejectsBadSort(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("ui:\n  default_sort: sideways\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFrom(path); err == nil {
		t.Error("expected error for invalid default_sort")
	}
}

func TestConfigDirRespectsXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg-test")
	if got := ConfigDir(); got != filepath.Join("/tmp/xdg-test", "treeview") {
		t.Errorf("ConfigDir = %q", got)
	}
}
