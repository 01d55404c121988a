package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// TreeNode is one declarative behavior-tree node.
//
//	kind: "select" — prioritized selector; children tried in listed order,
//	      first non-nil result wins
//	kind: "leaf"   — terminal node naming a registered action or ability
type TreeNode struct {
	Kind     string `yaml:"kind"`
	Children []int  `yaml:"children"`
	Action   string `yaml:"action"`
}

// TreeCollection is one node table; trees reference nodes by index into it.
type TreeCollection struct {
	Name  string     `yaml:"name"`
	Nodes []TreeNode `yaml:"nodes"`
}

// TreeTable holds all behavior-tree collections for a battle ruleset.
type TreeTable struct {
	Collections []TreeCollection
}

func (t *TreeTable) Count() int {
	return len(t.Collections)
}

// IndexByName returns the collection index for a named collection, or -1.
func (t *TreeTable) IndexByName(name string) int {
	for i, c := range t.Collections {
		if c.Name == name {
			return i
		}
	}
	return -1
}

type treeFile struct {
	Collections []TreeCollection `yaml:"collections"`
}

// LoadTreeTable loads behavior-tree collections from YAML.
func LoadTreeTable(path string) (*TreeTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read tree table %s: %w", path, err)
	}
	var f treeFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse tree table %s: %w", path, err)
	}
	return &TreeTable{Collections: f.Collections}, nil
}
