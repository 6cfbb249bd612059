// Package loader reads tree definition documents (JSON or YAML) and
// materializes them as treeview node trees.
//
// A definition is a list of node objects:
//
//	[
//	  {
//	    "label": "Fruits",
//	    "value": "fruits",
//	    "icon": "apple",
//	    "selected": false,
//	    "children": [ {"label": "Banana", "value": "banana"} ]
//	  }
//	]
//
// Only label is required. Values are opaque strings handed back by the
// engine's selection queries; a node without a value is a pure grouping
// node.
package loader

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/monkeyWie/flutter-treeview/pkg/treeview"
)

// NodeSpec is the on-disk shape of one node.
type NodeSpec struct {
	Label    string     `json:"label" yaml:"label"`
	Value    *string    `json:"value,omitempty" yaml:"value,omitempty"`
	Icon     string     `json:"icon,omitempty" yaml:"icon,omitempty"`
	Selected bool       `json:"selected,omitempty" yaml:"selected,omitempty"`
	Children []NodeSpec `json:"children,omitempty" yaml:"children,omitempty"`
}

// LoadFile reads a definition file, picking the format from the
// extension (.json, .yaml, .yml).
func LoadFile(path string) ([]*treeview.Node[string], error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading tree definition: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return ParseJSON(data)
	case ".yaml", ".yml":
		return ParseYAML(data)
	default:
		return nil, fmt.Errorf("unsupported tree definition extension %q (want .json, .yaml or .yml)", filepath.Ext(path))
	}
}

// ParseJSON parses a JSON definition document.
func ParseJSON(data []byte) ([]*treeview.Node[string], error) {
	var specs []NodeSpec
	if err := json.Unmarshal(data, &specs); err != nil {
		return nil, fmt.Errorf("parsing JSON tree definition: %w", err)
	}
	return build(specs, "")
}

// ParseYAML parses a YAML definition document.
func ParseYAML(data []byte) ([]*treeview.Node[string], error) {
	var specs []NodeSpec
	if err := yaml.Unmarshal(data, &specs); err != nil {
		return nil, fmt.Errorf("parsing YAML tree definition: %w", err)
	}
	return build(specs, "")
}

// build converts specs to nodes, validating as it goes. The path
// argument names the position for error messages ("[2].children[0]").
func build(specs []NodeSpec, path string) ([]*treeview.Node[string], error) {
	nodes := make([]*treeview.Node[string], 0, len(specs))
	for i, spec := range specs {
		at := fmt.Sprintf("%s[%d]", path, i)
		if strings.TrimSpace(spec.Label) == "" {
			return nil, fmt.Errorf("node %s: label is required", at)
		}
		children, err := build(spec.Children, at+".children")
		if err != nil {
			return nil, err
		}
		n := treeview.NewNode(spec.Label, spec.Value, children...)
		n.Icon = spec.Icon
		n.Selected = spec.Selected
		nodes = append(nodes, n)
	}
	return nodes, nil
}
