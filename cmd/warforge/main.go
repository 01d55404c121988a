package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/warforge/server/internal/ability"
	"github.com/warforge/server/internal/behavior"
	"github.com/warforge/server/internal/behavior/actions"
	"github.com/warforge/server/internal/combat"
	"github.com/warforge/server/internal/config"
	"github.com/warforge/server/internal/core/event"
	"github.com/warforge/server/internal/core/sched"
	coresys "github.com/warforge/server/internal/core/system"
	"github.com/warforge/server/internal/data"
	"github.com/warforge/server/internal/persist"
	"github.com/warforge/server/internal/scripting"
	"github.com/warforge/server/internal/service"
	"github.com/warforge/server/internal/system"
	"github.com/warforge/server/internal/world"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// ── Startup display helpers ────────────────────────────────────────

func printBanner(serverName string, serverID int) {
	fmt.Println()
	fmt.Println("\033[36;1m  ┌───────────────────────────────────────────┐\033[0m")
	fmt.Println("\033[36;1m  │\033[0m            WarForge  v0.1.0               \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  │\033[0m      決定性戰鬥模擬核心 · Go              \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  └───────────────────────────────────────────┘\033[0m")
	fmt.Println()
	fmt.Printf("  \033[1m伺服器:\033[0m %s \033[90m(編號: %d)\033[0m\n\n", serverName, serverID)
}

func printSection(title string) {
	// Use rune count for CJK width calculation (each CJK char = 2 columns)
	displayWidth := 0
	for _, r := range title {
		if r > 0x7F {
			displayWidth += 2
		} else {
			displayWidth++
		}
	}
	lineLen := 46 - displayWidth - 1
	if lineLen < 3 {
		lineLen = 3
	}
	fmt.Printf("  \033[33m── %s %s\033[0m\n", title, strings.Repeat("─", lineLen))
}

func printStat(label string, count int) {
	numStr := fmt.Sprintf("%d", count)
	displayWidth := 0
	for _, r := range label {
		if r > 0x7F {
			displayWidth += 2
		} else {
			displayWidth++
		}
	}
	dotsLen := 42 - displayWidth - len(numStr)
	if dotsLen < 3 {
		dotsLen = 3
	}
	fmt.Printf("  %s \033[90m%s\033[0m \033[32m%s\033[0m\n", label, strings.Repeat("·", dotsLen), numStr)
}

func printOK(msg string) {
	fmt.Printf("  \033[32m✓\033[0m %s\n", msg)
}

func printReady(msg string) {
	fmt.Printf("  \033[32m▶\033[0m %s\n", msg)
}

// ── Main server logic ─────────────────────────────────────────────

func run() error {
	// 1. Load config
	cfgPath := "config/server.toml"
	if p := os.Getenv("WARFORGE_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Init logger
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	printBanner(cfg.Server.Name, cfg.Server.ID)

	// 3. Optional PostgreSQL journal (desync audit trail)
	var journalRepo *persist.JournalRepo
	if cfg.Database.Enabled {
		printSection("資料庫")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		db, err := persist.NewDB(ctx, cfg.Database, log)
		if err != nil {
			cancel()
			return fmt.Errorf("database: %w", err)
		}
		defer db.Close()
		printOK("PostgreSQL 連線成功")

		if err := persist.RunMigrations(ctx, db.Pool); err != nil {
			cancel()
			return fmt.Errorf("migrations: %w", err)
		}
		cancel()
		printOK("資料庫遷移完成")
		fmt.Println()

		journalRepo = persist.NewJournalRepo(db)
	}

	// 4. Lua content engine + data tables
	printSection("資料載入")

	luaEngine, err := scripting.NewEngine(cfg.Data.ScriptDir, log)
	if err != nil {
		return fmt.Errorf("lua engine: %w", err)
	}
	defer luaEngine.Close()
	printOK("Lua 腳本載入完成")

	unitTable, err := data.LoadUnitTable(filepath.Join(cfg.Data.Dir, "units.yaml"))
	if err != nil {
		return fmt.Errorf("load unit table: %w", err)
	}
	for _, u := range luaEngine.Units() {
		if err := unitTable.Add(luaUnitDef(u)); err != nil {
			return fmt.Errorf("scripted unit: %w", err)
		}
	}
	printStat("單位模板", unitTable.Count())

	treeTable, err := data.LoadTreeTable(filepath.Join(cfg.Data.Dir, "trees.yaml"))
	if err != nil {
		return fmt.Errorf("load tree table: %w", err)
	}
	printStat("行為樹", treeTable.Count())

	scenario, err := data.LoadScenario(filepath.Join(cfg.Data.Dir, "scenario.yaml"))
	if err != nil {
		return fmt.Errorf("load scenario: %w", err)
	}
	printStat("技能", len(luaEngine.Abilities()))
	fmt.Println()

	// 5. Simulation core
	ticksPerSecond := int64(time.Second / cfg.Simulation.TickRate)
	clock := sched.NewClock(ticksPerSecond)
	ws := world.NewState(clock)
	scheduler := sched.New(clock, log)
	bus := event.NewBus()
	services := service.NewRegistry(log)
	dmg := combat.NewDamage(ws, scheduler, bus, log)
	buffs := combat.NewBuffs(ws, scheduler, log)

	// 6. Action table: built-in leaves + Lua-defined abilities
	actionTable := behavior.NewActions()
	if err := actions.RegisterDefaults(actionTable); err != nil {
		return fmt.Errorf("register actions: %w", err)
	}
	abilityReg := ability.NewRegistry()
	if err := ability.BuildFromDefs(luaEngine.Abilities(), abilityReg, log); err != nil {
		return fmt.Errorf("build abilities: %w", err)
	}
	if err := abilityReg.InstallActions(actionTable); err != nil {
		return fmt.Errorf("install ability actions: %w", err)
	}

	proc, err := behavior.NewProcessor(treeTable.Collections, actionTable, log)
	if err != nil {
		return fmt.Errorf("compile behavior trees: %w", err)
	}
	behSys := behavior.NewSystem(ws, scheduler, proc, dmg, buffs, services, bus, log)

	// 7. Services: cross-cutting lookups resolved by name, fail-loud
	services.Register("unit.template", func(args ...any) (any, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("unit.template: want 1 arg, got %d", len(args))
		}
		id, ok := args[0].(string)
		if !ok {
			return nil, fmt.Errorf("unit.template: arg must be string")
		}
		def := unitTable.Get(id)
		if def == nil {
			return nil, fmt.Errorf("unit.template: unknown unit %q", id)
		}
		return def, nil
	})
	services.Register("tree.index", func(args ...any) (any, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("tree.index: want 1 arg, got %d", len(args))
		}
		name, ok := args[0].(string)
		if !ok {
			return nil, fmt.Errorf("tree.index: arg must be string")
		}
		idx := treeTable.IndexByName(name)
		if idx < 0 {
			return nil, fmt.Errorf("tree.index: unknown collection %q", name)
		}
		return idx, nil
	})

	// 8. Systems, phase-ordered
	runner := coresys.NewRunner()
	runner.Register(system.NewEventDispatchSystem(bus))
	runner.Register(system.NewSchedDrainSystem(scheduler))
	runner.Register(system.NewBehaviorUpdateSystem(behSys))
	runner.Register(system.NewPoisonTickSystem(ws, dmg))
	runner.Register(system.NewManaRegenSystem(ws))
	victory := system.NewVictorySystem(ws, bus)
	runner.Register(victory)
	runner.Register(system.NewDeathSystem(ws, buffs, dmg))
	journalSys := system.NewJournalSystem(ws, journalRepo, log)
	runner.Register(journalSys)
	runner.Register(system.NewCleanupSystem(ws))

	// 9. Battle setup: placement, spawn, then battle start
	behSys.OnPlacementPhaseStart()
	spawned, err := spawnScenario(ws, scenario, services)
	if err != nil {
		return fmt.Errorf("spawn scenario: %w", err)
	}
	printSection("戰場佈署")
	printStat("單位", spawned)
	printStat("工地", len(scenario.Sites))
	printStat("礦脈", len(scenario.Mines))
	fmt.Println()

	var outcome *event.BattleEnded
	event.Subscribe(bus, func(ev event.BattleEnded) {
		outcome = &ev
	})

	victory.Reset()
	journalSys.OnBattleStart(cfg.Simulation.Seed)
	behSys.OnBattleStart()

	// 10. Fixed-tick game loop
	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(cfg.Simulation.TickRate)
	defer ticker.Stop()

	printSection("伺服器就緒")
	printReady(fmt.Sprintf("戰役 %s 開打 (tick: %s)", scenario.Name, cfg.Simulation.TickRate))
	fmt.Println()

	for {
		select {
		case <-ticker.C:
			clock.Advance()
			runner.Tick()

			if outcome != nil {
				behSys.OnBattleEnd()
				journalSys.OnBattleEnd(outcome.Tick, outcome.WinningTeam)
				if outcome.WinningTeam >= 0 {
					log.Info("戰鬥結束",
						zap.Int("winner_team", outcome.WinningTeam),
						zap.Int64("tick", outcome.Tick))
				} else {
					log.Info("戰鬥結束（平手）", zap.Int64("tick", outcome.Tick))
				}
				return nil
			}
			if cfg.Simulation.MaxBattleTicks > 0 && clock.Tick() >= cfg.Simulation.MaxBattleTicks {
				behSys.OnBattleEnd()
				journalSys.OnBattleEnd(clock.Tick(), -1)
				log.Info("達到戰鬥 tick 上限，強制結束", zap.Int64("tick", clock.Tick()))
				return nil
			}
		case sig := <-shutdownCh:
			log.Info("收到關閉信號", zap.String("signal", sig.String()))
			behSys.OnBattleEnd()
			journalSys.OnBattleEnd(clock.Tick(), -1)
			log.Info("伺服器已停止")
			return nil
		}
	}
}

// spawnScenario materializes a scenario into world entities. Unit templates
// resolve through the service registry, so unknown unit ids fail loudly here
// instead of surfacing mid-battle.
func spawnScenario(ws *world.State, sc *data.Scenario, services *service.Registry) (int, error) {
	for _, p := range sc.Placements {
		v, err := services.Call("unit.template", p.Unit)
		if err != nil {
			return 0, err
		}
		def := v.(*data.UnitDef)

		v, err = services.Call("tree.index", def.Tree)
		if err != nil {
			return 0, fmt.Errorf("unit %q: %w", p.Unit, err)
		}
		collection := v.(int)

		elem := world.ElementPhysical
		if def.AttackElement != "" {
			e, ok := world.ElementByName(def.AttackElement)
			if !ok {
				return 0, fmt.Errorf("unit %q: unknown attack element %q", p.Unit, def.AttackElement)
			}
			elem = e
		}

		id := ws.CreateEntity()
		ws.Positions.Set(id, &world.Position{X: p.X, Y: p.Y})
		ws.Healths.Set(id, &world.Health{HP: def.MaxHP, MaxHP: def.MaxHP})
		ws.Combatants.Set(id, world.NewCombatant(p.Team))
		ws.Units.Set(id, &world.Unit{
			TypeID:        def.ID,
			Speed:         def.Speed,
			BuildRange:    def.BuildRange,
			AttackRange:   def.AttackRange,
			AttackDamage:  def.AttackDamage,
			AttackElement: elem,
		})
		// 根樹約定為節點表第 0 格。
		ws.AIStates.Set(id, world.NewAIState(collection, 0))

		if def.MaxMP > 0 {
			ws.Manas.Set(id, &world.Mana{MP: def.MaxMP, MaxMP: def.MaxMP})
		}
		defense := &world.Defense{Armor: def.Armor}
		for name, r := range def.Resist {
			e, ok := world.ElementByName(name)
			if !ok {
				return 0, fmt.Errorf("unit %q: unknown resist element %q", p.Unit, name)
			}
			defense.Resist[e] = r
		}
		ws.Defenses.Set(id, defense)
	}

	for _, s := range sc.Sites {
		id := ws.CreateEntity()
		ws.Positions.Set(id, &world.Position{X: s.X, Y: s.Y})
		ws.Sites.Set(id, world.NewBuildSite(s.Required))
	}
	for _, m := range sc.Mines {
		id := ws.CreateEntity()
		ws.Positions.Set(id, &world.Position{X: m.X, Y: m.Y})
		ws.Mines.Set(id, world.NewMine(m.Reserves))
	}

	return len(sc.Placements), nil
}

func luaUnitDef(u scripting.UnitDef) *data.UnitDef {
	return &data.UnitDef{
		ID:            u.ID,
		Name:          u.Name,
		MaxHP:         u.MaxHP,
		MaxMP:         u.MaxMP,
		Armor:         u.Armor,
		Resist:        u.Resist,
		Speed:         u.Speed,
		BuildRange:    u.BuildRange,
		AttackRange:   u.AttackRange,
		AttackDamage:  u.AttackDamage,
		AttackElement: u.AttackElement,
		Tree:          u.Tree,
	}
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
