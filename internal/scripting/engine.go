package scripting

import (
	"fmt"
	"os"
	"path/filepath"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// Engine wraps a single gopher-lua VM used at boot to define battle content.
// Scripts call register_ability{...} / register_unit{...}; the collected
// definitions become the immutable content tables. Single-goroutine access
// only; nothing on the per-tick simulation path re-enters the VM, so content
// scripting cannot introduce nondeterminism.
type Engine struct {
	vm        *lua.LState
	log       *zap.Logger
	abilities []AbilityDef
	units     []UnitDef
}

// AbilityDef is one ability as declared from Lua. Content data, not code.
type AbilityDef struct {
	ID         string
	Effect     string // "strike" | "splash" | "heal" | "poison" | "buff"
	Element    string
	TargetType string // "enemy" | "ally" | "self"
	Amount     int
	ManaCost   int
	Priority   int
	Cooldown   float64
	Range      float64
	CastTime   float64
	Radius     float64
	Duration   float64
	BuffType   string
}

// UnitDef is one unit template as declared from Lua. Scripted units extend
// the YAML unit table at boot.
type UnitDef struct {
	ID            string
	Name          string
	MaxHP         int
	MaxMP         int
	Armor         int
	Resist        map[string]float64
	Speed         float64
	BuildRange    float64
	AttackRange   float64
	AttackDamage  int
	AttackElement string
	Tree          string
}

// NewEngine creates a Lua engine and loads all content scripts from the
// given directory.
func NewEngine(scriptsDir string, log *zap.Logger) (*Engine, error) {
	if log == nil {
		log = zap.NewNop()
	}
	vm := lua.NewState(lua.Options{
		SkipOpenLibs: false,
	})

	// Set API version global
	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	e := &Engine{vm: vm, log: log}
	vm.SetGlobal("register_ability", vm.NewFunction(e.luaRegisterAbility))
	vm.SetGlobal("register_unit", vm.NewFunction(e.luaRegisterUnit))

	for _, sub := range []string{"content", "abilities"} {
		p := filepath.Join(scriptsDir, sub)
		if err := e.loadDir(p); err != nil {
			vm.Close()
			return nil, fmt.Errorf("load %s scripts: %w", sub, err)
		}
	}

	return e, nil
}

// loadDir loads all .lua files in a directory, sorted by name (os.ReadDir
// order) so registration order is reproducible.
func (e *Engine) loadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // skip missing dirs
		}
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := e.vm.DoFile(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		e.log.Debug("loaded lua script", zap.String("file", path))
	}
	return nil
}

// DoString executes inline Lua. Tests define content this way.
func (e *Engine) DoString(src string) error {
	return e.vm.DoString(src)
}

// Abilities returns every ability registered so far, in registration order.
func (e *Engine) Abilities() []AbilityDef {
	return e.abilities
}

// Units returns every unit template registered so far, in registration order.
func (e *Engine) Units() []UnitDef {
	return e.units
}

func (e *Engine) Close() {
	e.vm.Close()
}

func (e *Engine) luaRegisterAbility(L *lua.LState) int {
	tbl := L.CheckTable(1)

	def := AbilityDef{
		ID:         tableString(tbl, "id"),
		Effect:     tableString(tbl, "effect"),
		Element:    tableString(tbl, "element"),
		TargetType: tableString(tbl, "target"),
		BuffType:   tableString(tbl, "buff"),
		Amount:     int(tableNumber(tbl, "amount")),
		ManaCost:   int(tableNumber(tbl, "mana_cost")),
		Priority:   int(tableNumber(tbl, "priority")),
		Cooldown:   tableNumber(tbl, "cooldown"),
		Range:      tableNumber(tbl, "range"),
		CastTime:   tableNumber(tbl, "cast_time"),
		Radius:     tableNumber(tbl, "radius"),
		Duration:   tableNumber(tbl, "duration"),
	}
	if def.ID == "" {
		L.RaiseError("register_ability: missing id")
		return 0
	}
	if def.Effect == "" {
		L.RaiseError("register_ability: ability %q missing effect", def.ID)
		return 0
	}
	if def.TargetType == "" {
		def.TargetType = "enemy"
	}
	e.abilities = append(e.abilities, def)
	e.log.Debug("registered ability", zap.String("id", def.ID), zap.String("effect", def.Effect))
	return 0
}

func (e *Engine) luaRegisterUnit(L *lua.LState) int {
	tbl := L.CheckTable(1)

	def := UnitDef{
		ID:            tableString(tbl, "id"),
		Name:          tableString(tbl, "name"),
		MaxHP:         int(tableNumber(tbl, "max_hp")),
		MaxMP:         int(tableNumber(tbl, "max_mp")),
		Armor:         int(tableNumber(tbl, "armor")),
		Speed:         tableNumber(tbl, "speed"),
		BuildRange:    tableNumber(tbl, "build_range"),
		AttackRange:   tableNumber(tbl, "attack_range"),
		AttackDamage:  int(tableNumber(tbl, "attack_damage")),
		AttackElement: tableString(tbl, "attack_element"),
		Tree:          tableString(tbl, "tree"),
	}
	if res, ok := tbl.RawGetString("resist").(*lua.LTable); ok {
		def.Resist = make(map[string]float64)
		res.ForEach(func(k, v lua.LValue) {
			ks, okk := k.(lua.LString)
			vn, okv := v.(lua.LNumber)
			if okk && okv {
				def.Resist[string(ks)] = float64(vn)
			}
		})
	}
	if def.ID == "" {
		L.RaiseError("register_unit: missing id")
		return 0
	}
	if def.MaxHP <= 0 {
		L.RaiseError("register_unit: unit %q needs max_hp > 0", def.ID)
		return 0
	}
	e.units = append(e.units, def)
	e.log.Debug("registered unit", zap.String("id", def.ID))
	return 0
}

func tableString(tbl *lua.LTable, key string) string {
	if v, ok := tbl.RawGetString(key).(lua.LString); ok {
		return string(v)
	}
	return ""
}

func tableNumber(tbl *lua.LTable, key string) float64 {
	if v, ok := tbl.RawGetString(key).(lua.LNumber); ok {
		return float64(v)
	}
	return 0
}
