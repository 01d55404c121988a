package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// UnitDef is one unit template (content data, not code).
type UnitDef struct {
	ID            string             `yaml:"id"`
	Name          string             `yaml:"name"`
	MaxHP         int                `yaml:"max_hp"`
	MaxMP         int                `yaml:"max_mp"`
	Armor         int                `yaml:"armor"`
	Resist        map[string]float64 `yaml:"resist"`
	Speed         float64            `yaml:"speed"`
	BuildRange    float64            `yaml:"build_range"`
	AttackRange   float64            `yaml:"attack_range"`
	AttackDamage  int                `yaml:"attack_damage"`
	AttackElement string             `yaml:"attack_element"`
	Tree          string             `yaml:"tree"` // behavior-tree collection name
}

// UnitTable indexes unit templates by id.
type UnitTable struct {
	byID  map[string]*UnitDef
	order []string
}

// Get returns a unit template by id, or nil if not found.
func (t *UnitTable) Get(id string) *UnitDef {
	return t.byID[id]
}

// Count returns the number of unit templates loaded.
func (t *UnitTable) Count() int {
	return len(t.byID)
}

// IDs returns template ids in file order.
func (t *UnitTable) IDs() []string {
	return t.order
}

// Add appends a unit template built elsewhere (Lua-scripted units extend the
// YAML table at boot). Duplicate ids are boot errors.
func (t *UnitTable) Add(u *UnitDef) error {
	if u.ID == "" {
		return fmt.Errorf("unit table: unit missing id")
	}
	if _, dup := t.byID[u.ID]; dup {
		return fmt.Errorf("unit table: duplicate unit id %q", u.ID)
	}
	t.byID[u.ID] = u
	t.order = append(t.order, u.ID)
	return nil
}

type unitFile struct {
	Units []UnitDef `yaml:"units"`
}

// LoadUnitTable loads unit templates from YAML.
func LoadUnitTable(path string) (*UnitTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read unit table %s: %w", path, err)
	}
	var f unitFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse unit table %s: %w", path, err)
	}
	t := &UnitTable{byID: make(map[string]*UnitDef, len(f.Units))}
	for i := range f.Units {
		u := &f.Units[i]
		if u.ID == "" {
			return nil, fmt.Errorf("unit table %s: unit %d missing id", path, i)
		}
		if _, dup := t.byID[u.ID]; dup {
			return nil, fmt.Errorf("unit table %s: duplicate unit id %q", path, u.ID)
		}
		t.byID[u.ID] = u
		t.order = append(t.order, u.ID)
	}
	return t, nil
}
