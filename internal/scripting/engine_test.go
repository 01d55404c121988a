package scripting

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := NewEngine(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	t.Cleanup(e.Close)
	return e
}

func TestRegisterAbility(t *testing.T) {
	e := newTestEngine(t)
	err := e.DoString(`
register_ability{
  id = "fireball",
  effect = "splash",
  element = "fire",
  target = "enemy",
  amount = 30,
  mana_cost = 20,
  cooldown = 4.0,
  range = 8.0,
  cast_time = 1.0,
  radius = 3.0,
}
register_ability{
  id = "mend",
  effect = "heal",
  target = "ally",
  amount = 25,
  range = 6.0,
}
`)
	if err != nil {
		t.Fatalf("DoString: %v", err)
	}

	defs := e.Abilities()
	if len(defs) != 2 {
		t.Fatalf("abilities = %d, want 2", len(defs))
	}
	if defs[0].ID != "fireball" || defs[1].ID != "mend" {
		t.Fatalf("registration order lost: %v, %v", defs[0].ID, defs[1].ID)
	}
	fb := defs[0]
	if fb.Effect != "splash" || fb.Element != "fire" || fb.Amount != 30 ||
		fb.ManaCost != 20 || fb.Cooldown != 4.0 || fb.Radius != 3.0 {
		t.Fatalf("fireball = %+v", fb)
	}
}

func TestRegisterAbilityDefaultTarget(t *testing.T) {
	e := newTestEngine(t)
	if err := e.DoString(`register_ability{id = "jab", effect = "strike"}`); err != nil {
		t.Fatalf("DoString: %v", err)
	}
	if got := e.Abilities()[0].TargetType; got != "enemy" {
		t.Fatalf("default target = %q, want enemy", got)
	}
}

func TestRegisterAbilityValidation(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		wantErr string
	}{
		{"missing id", `register_ability{effect = "strike"}`, "missing id"},
		{"missing effect", `register_ability{id = "x"}`, "missing effect"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEngine(t)
			err := e.DoString(tt.src)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("err = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestRegisterUnit(t *testing.T) {
	e := newTestEngine(t)
	err := e.DoString(`
register_unit{
  id = "shaman",
  name = "薩滿",
  max_hp = 55,
  max_mp = 60,
  armor = 2,
  speed = 2.5,
  attack_range = 1.5,
  attack_damage = 4,
  attack_element = "physical",
  tree = "shaman",
  resist = { fire = 0.2, poison = 0.5 },
}
`)
	if err != nil {
		t.Fatalf("DoString: %v", err)
	}

	units := e.Units()
	if len(units) != 1 {
		t.Fatalf("units = %d, want 1", len(units))
	}
	u := units[0]
	if u.ID != "shaman" || u.MaxHP != 55 || u.MaxMP != 60 || u.Tree != "shaman" {
		t.Fatalf("unit = %+v", u)
	}
	if u.Resist["fire"] != 0.2 || u.Resist["poison"] != 0.5 {
		t.Fatalf("resist = %v, want fire 0.2 poison 0.5", u.Resist)
	}
}

func TestRegisterUnitValidation(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		wantErr string
	}{
		{"missing id", `register_unit{max_hp = 10}`, "missing id"},
		{"zero hp", `register_unit{id = "ghost"}`, "max_hp > 0"},
		{"negative hp", `register_unit{id = "ghost", max_hp = -5}`, "max_hp > 0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEngine(t)
			err := e.DoString(tt.src)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("err = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadScriptsFromDir(t *testing.T) {
	dir := t.TempDir()
	abilityDir := filepath.Join(dir, "abilities")
	if err := os.MkdirAll(abilityDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	script := `register_ability{id = "jab", effect = "strike", amount = 5}`
	if err := os.WriteFile(filepath.Join(abilityDir, "core.lua"), []byte(script), 0o644); err != nil {
		t.Fatalf("write script: %v", err)
	}
	// Non-lua files are ignored.
	if err := os.WriteFile(filepath.Join(abilityDir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write notes: %v", err)
	}

	e, err := NewEngine(dir, nil)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	defer e.Close()

	if len(e.Abilities()) != 1 || e.Abilities()[0].ID != "jab" {
		t.Fatalf("abilities = %+v, want jab from disk", e.Abilities())
	}
}

func TestLoadScriptError(t *testing.T) {
	dir := t.TempDir()
	contentDir := filepath.Join(dir, "content")
	if err := os.MkdirAll(contentDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(contentDir, "bad.lua"), []byte("this is not lua ("), 0o644); err != nil {
		t.Fatalf("write script: %v", err)
	}

	if _, err := NewEngine(dir, nil); err == nil {
		t.Fatal("syntax error in script accepted")
	}
}
