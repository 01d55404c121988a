package data

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadUnitTable(t *testing.T) {
	path := writeTemp(t, "units.yaml", `
units:
  - id: worker
    name: 工人
    max_hp: 60
    armor: 1
    speed: 3.0
    build_range: 5.0
    tree: worker
  - id: mage
    name: 法師
    max_hp: 45
    max_mp: 80
    resist:
      fire: 0.25
      frost: 0.1
    tree: mage
`)
	table, err := LoadUnitTable(path)
	if err != nil {
		t.Fatalf("LoadUnitTable: %v", err)
	}
	if table.Count() != 2 {
		t.Fatalf("count = %d, want 2", table.Count())
	}
	if got := table.IDs(); got[0] != "worker" || got[1] != "mage" {
		t.Fatalf("IDs = %v, want file order", got)
	}
	mage := table.Get("mage")
	if mage == nil {
		t.Fatal("mage template missing")
	}
	if mage.MaxMP != 80 || mage.Resist["fire"] != 0.25 {
		t.Fatalf("mage = %+v, want max_mp 80 and fire resist 0.25", mage)
	}
	if table.Get("ghost") != nil {
		t.Fatal("unknown id returned a template")
	}
}

func TestLoadUnitTableErrors(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{"missing id", "units:\n  - name: nameless\n    max_hp: 10\n", "missing id"},
		{"duplicate id", "units:\n  - id: worker\n  - id: worker\n", "duplicate unit id"},
		{"malformed yaml", "units: [", "parse unit table"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeTemp(t, "units.yaml", tt.yaml)
			_, err := LoadUnitTable(path)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("err = %v, want containing %q", err, tt.wantErr)
			}
		})
	}

	if _, err := LoadUnitTable(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("missing file accepted")
	}
}

func TestUnitTableAdd(t *testing.T) {
	path := writeTemp(t, "units.yaml", "units:\n  - id: worker\n    max_hp: 60\n")
	table, err := LoadUnitTable(path)
	if err != nil {
		t.Fatalf("LoadUnitTable: %v", err)
	}

	if err := table.Add(&UnitDef{ID: "shaman", MaxHP: 50}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if table.Get("shaman") == nil {
		t.Fatal("added template not retrievable")
	}
	if got := table.IDs(); got[len(got)-1] != "shaman" {
		t.Fatalf("IDs = %v, want shaman appended", got)
	}

	if err := table.Add(&UnitDef{ID: "worker"}); err == nil {
		t.Fatal("duplicate id accepted")
	}
	if err := table.Add(&UnitDef{}); err == nil {
		t.Fatal("missing id accepted")
	}
}

func TestLoadTreeTable(t *testing.T) {
	path := writeTemp(t, "trees.yaml", `
collections:
  - name: worker
    nodes:
      - kind: select
        children: [1, 2]
      - kind: leaf
        action: mine
      - kind: leaf
        action: defend
  - name: footman
    nodes:
      - kind: leaf
        action: defend
`)
	table, err := LoadTreeTable(path)
	if err != nil {
		t.Fatalf("LoadTreeTable: %v", err)
	}
	if table.Count() != 2 {
		t.Fatalf("count = %d, want 2", table.Count())
	}
	if got := table.IndexByName("footman"); got != 1 {
		t.Fatalf("IndexByName(footman) = %d, want 1", got)
	}
	if got := table.IndexByName("dragon"); got != -1 {
		t.Fatalf("IndexByName(dragon) = %d, want -1", got)
	}
	root := table.Collections[0].Nodes[0]
	if root.Kind != "select" || len(root.Children) != 2 {
		t.Fatalf("root node = %+v, want select with 2 children", root)
	}
}

func TestLoadScenario(t *testing.T) {
	path := writeTemp(t, "scenario.yaml", `
name: 磨坊之戰
placements:
  - unit: worker
    team: 0
    x: 1.0
    y: 2.0
  - unit: footman
    team: 1
    x: 10.0
sites:
  - x: 3.0
    y: 3.0
    team: 0
    required: 5
mines:
  - x: 5.0
    y: 5.0
    reserves: 40
`)
	s, err := LoadScenario(path)
	if err != nil {
		t.Fatalf("LoadScenario: %v", err)
	}
	if s.Name != "磨坊之戰" || len(s.Placements) != 2 {
		t.Fatalf("scenario = %+v, want 2 placements", s)
	}
	if s.Placements[0].Unit != "worker" || s.Placements[0].Y != 2.0 {
		t.Fatalf("placement = %+v", s.Placements[0])
	}
	if len(s.Sites) != 1 || s.Sites[0].Required != 5 {
		t.Fatalf("sites = %+v", s.Sites)
	}
	if len(s.Mines) != 1 || s.Mines[0].Reserves != 40 {
		t.Fatalf("mines = %+v", s.Mines)
	}
}

func TestLoadScenarioErrors(t *testing.T) {
	t.Run("no placements", func(t *testing.T) {
		path := writeTemp(t, "scenario.yaml", "name: empty\nplacements: []\n")
		if _, err := LoadScenario(path); err == nil || !strings.Contains(err.Error(), "no placements") {
			t.Fatalf("err = %v, want no-placements error", err)
		}
	})
	t.Run("placement missing unit", func(t *testing.T) {
		path := writeTemp(t, "scenario.yaml", "placements:\n  - team: 0\n    x: 1.0\n")
		if _, err := LoadScenario(path); err == nil || !strings.Contains(err.Error(), "missing unit") {
			t.Fatalf("err = %v, want missing-unit error", err)
		}
	})
}
