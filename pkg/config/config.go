// Package config handles loading and saving treeview configuration.
//
// Configuration follows the XDG Base Directory specification:
//   - Config: ~/.config/treeview/config.yaml
//   - State:  ~/.local/state/treeview/
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Sort orders accepted by UI.DefaultSort.
const (
	SortNone      = "none"
	SortLabelAsc  = "label-asc"
	SortLabelDesc = "label-desc"
)

// UIConfig holds widget preference settings.
type UIConfig struct {
	// InitialExpandedLevels mirrors the engine option: nil means fully
	// collapsed, 0 expands everything, L>0 expands depths 0..L-1.
	InitialExpandedLevels *int `yaml:"initial_expanded_levels,omitempty"`

	ShowSelectAll            bool   `yaml:"show_select_all"`
	ShowExpandCollapseButton bool   `yaml:"show_expand_collapse_button"`
	FilterAsYouType          bool   `yaml:"filter_as_you_type"`
	DefaultSort              string `yaml:"default_sort,omitempty"` // none, label-asc, label-desc
}

// Config is the top-level configuration for treeview.
type Config struct {
	UI UIConfig `yaml:"ui,omitempty"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		UI: UIConfig{
			ShowSelectAll:            true,
			ShowExpandCollapseButton: true,
			FilterAsYouType:          true,
			DefaultSort:              SortNone,
		},
	}
}

// ConfigDir returns the XDG config directory for treeview.
func ConfigDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "treeview")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "treeview")
}

// StateDir returns the XDG state directory for treeview.
func StateDir() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, "treeview")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".local", "state", "treeview")
}

// ConfigPath returns the full path to config.yaml.
func ConfigPath() string {
	dir := ConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.yaml")
}

// Load reads the config file from the XDG config directory.
// Returns DefaultConfig if the file doesn't exist.
func Load() (Config, error) {
	path := ConfigPath()
	if path == "" {
		return DefaultConfig(), nil
	}
	return LoadFrom(path)
}

// LoadFrom reads config from a specific path.
// Returns DefaultConfig if the file doesn't exist.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	switch cfg.UI.DefaultSort {
	case SortNone, SortLabelAsc, SortLabelDesc:
	case "":
		cfg.UI.DefaultSort = SortNone
	default:
		return cfg, fmt.Errorf("invalid default_sort %q", cfg.UI.DefaultSort)
	}

	return cfg, nil
}

// Save writes the config to the XDG config directory.
func Save(cfg Config) error {
	path := ConfigPath()
	if path == "" {
		return fmt.Errorf("cannot determine config directory")
	}
	return SaveTo(cfg, path)
}

// SaveTo writes the config to a specific path.
func SaveTo(cfg Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}
