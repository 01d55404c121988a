package behavior

import (
	"testing"

	"github.com/warforge/server/internal/combat"
	"github.com/warforge/server/internal/core/ecs"
	"github.com/warforge/server/internal/core/event"
	"github.com/warforge/server/internal/core/sched"
	"github.com/warforge/server/internal/data"
	"github.com/warforge/server/internal/service"
	"github.com/warforge/server/internal/world"
)

type sysEnv struct {
	world *world.State
	clock *sched.Clock
	sched *sched.Scheduler
	sys   *System
}

func newSysEnv(t *testing.T, collections []data.TreeCollection, acts ...*stubAction) *sysEnv {
	t.Helper()
	clock := sched.NewClock(5)
	ws := world.NewState(clock)
	sc := sched.New(clock, nil)
	bus := event.NewBus()
	dmg := combat.NewDamage(ws, sc, bus, nil)
	buffs := combat.NewBuffs(ws, sc, nil)
	services := service.NewRegistry(nil)

	table := NewActions()
	for _, a := range acts {
		if err := table.Register(a); err != nil {
			t.Fatalf("register %s: %v", a.name, err)
		}
	}
	proc, err := NewProcessor(collections, table, nil)
	if err != nil {
		t.Fatalf("NewProcessor: %v", err)
	}
	sys := NewSystem(ws, sc, proc, dmg, buffs, services, bus, nil)
	return &sysEnv{world: ws, clock: clock, sched: sc, sys: sys}
}

func (e *sysEnv) spawnAI(t *testing.T) ecs.EntityID {
	t.Helper()
	id := e.world.CreateEntity()
	e.world.Positions.Set(id, &world.Position{})
	e.world.Healths.Set(id, &world.Health{HP: 100, MaxHP: 100})
	e.world.Units.Set(id, &world.Unit{TypeID: "test", Speed: 1})
	e.world.AIStates.Set(id, world.NewAIState(0, 0))
	return id
}

func (e *sysEnv) tick() {
	e.clock.Advance()
	e.sched.RunDue()
	e.sys.Update()
}

func TestRunningSameActionSkipsHooks(t *testing.T) {
	a := &stubAction{name: "a"}
	a.execute = func(ecs.EntityID, *Context) *Result {
		return Running(NoAction, nil)
	}
	env := newSysEnv(t, selectTree("a"), a)
	env.spawnAI(t)
	env.sys.OnBattleStart()

	for i := 0; i < 5; i++ {
		env.tick()
	}
	if a.started != 1 {
		t.Fatalf("OnStart calls = %d, want 1 (continuation must not re-hook)", a.started)
	}
	if a.ended != 0 {
		t.Fatalf("OnEnd calls = %d, want 0", a.ended)
	}
}

func TestSuccessReentersSameAction(t *testing.T) {
	a := &stubAction{name: "a"}
	a.execute = func(ecs.EntityID, *Context) *Result {
		return Success(nil)
	}
	env := newSysEnv(t, selectTree("a"), a)
	env.spawnAI(t)
	env.sys.OnBattleStart()

	env.tick() // switch in
	env.tick() // success → OnEnd + OnStart (re-entry with same id)
	if a.started != 2 || a.ended != 1 {
		t.Fatalf("hooks = start:%d end:%d, want start:2 end:1", a.started, a.ended)
	}
}

func TestSwitchBetweenActions(t *testing.T) {
	useB := false
	a := &stubAction{name: "a", execute: func(ecs.EntityID, *Context) *Result {
		if useB {
			return nil
		}
		return Running(NoAction, nil)
	}}
	b := &stubAction{name: "b", execute: func(ecs.EntityID, *Context) *Result {
		if !useB {
			return nil
		}
		return Running(NoAction, nil)
	}}
	env := newSysEnv(t, selectTree("a", "b"), a, b)
	id := env.spawnAI(t)
	env.sys.OnBattleStart()

	env.tick()
	ai, _ := env.world.AIStates.Get(id)
	if ai.CurrentAction != 1 {
		t.Fatalf("current = %d, want leaf 1 (a)", ai.CurrentAction)
	}

	useB = true
	env.tick()
	if a.ended != 1 || b.started != 1 {
		t.Fatalf("switch hooks = aEnd:%d bStart:%d, want 1/1", a.ended, b.started)
	}
	if ai.CurrentAction != 2 {
		t.Fatalf("current = %d, want leaf 2 (b)", ai.CurrentAction)
	}
}

func TestMetaReplacedOnSwitchSharedSurvives(t *testing.T) {
	phase := "a"
	var a, b *stubAction
	a = &stubAction{name: "a", execute: func(e ecs.EntityID, ctx *Context) *Result {
		if phase != "a" {
			return nil
		}
		ctx.Shared(e)["memory"] = "kept"
		return Running(NoAction, map[string]any{"scratch": "a"})
	}}
	b = &stubAction{name: "b", execute: func(e ecs.EntityID, ctx *Context) *Result {
		if phase != "b" {
			return nil
		}
		return Running(NoAction, map[string]any{"scratch": "b"})
	}}
	env := newSysEnv(t, selectTree("a", "b"), a, b)
	id := env.spawnAI(t)
	env.sys.OnBattleStart()

	env.tick()
	phase = "b"
	env.tick()

	ctx := env.sys.Context()
	if got := ctx.Meta(id)["scratch"]; got != "b" {
		t.Fatalf("meta scratch = %v, want replaced wholesale with %q", got, "b")
	}
	if got := ctx.Shared(id)["memory"]; got != "kept" {
		t.Fatalf("shared memory = %v, want to survive the switch", got)
	}
}

func TestDelegateUnwrapDepthBound(t *testing.T) {
	depth := 3
	a := &stubAction{name: "a"}
	a.execute = func(ecs.EntityID, *Context) *Result {
		r := Running(ActionRef{Collection: 0, Index: 1}, nil)
		for i := 0; i < depth; i++ {
			r = Delegate(ActionRef{Collection: 0, Index: 1}, r)
		}
		return r
	}
	env := newSysEnv(t, selectTree("a"), a)
	env.spawnAI(t)
	env.sys.OnBattleStart()

	env.tick()
	if a.started != 1 {
		t.Fatalf("bounded chain: OnStart = %d, want 1", a.started)
	}

	// Past the bound the result resolves to failure: the in-progress action
	// ends and nothing re-enters (failure result carries no leaf identity).
	depth = 20
	env.tick()
	if a.ended != 1 {
		t.Fatalf("over-deep chain: OnEnd = %d, want 1", a.ended)
	}
	if a.started != 1 {
		t.Fatalf("over-deep chain: OnStart = %d, want no re-entry", a.started)
	}
}

func TestNoResultEndsCurrentAction(t *testing.T) {
	applicable := true
	a := &stubAction{name: "a", execute: func(ecs.EntityID, *Context) *Result {
		if !applicable {
			return nil
		}
		return Running(NoAction, nil)
	}}
	env := newSysEnv(t, selectTree("a"), a)
	id := env.spawnAI(t)
	env.sys.OnBattleStart()

	env.tick()
	applicable = false
	env.tick()

	if a.ended != 1 {
		t.Fatalf("OnEnd = %d, want 1 when no behavior applies", a.ended)
	}
	ai, _ := env.world.AIStates.Get(id)
	if ai.CurrentAction != world.NoActionIndex {
		t.Fatalf("current = %d, want idle sentinel", ai.CurrentAction)
	}
}

func TestUpdateFilters(t *testing.T) {
	a := &stubAction{name: "a"}
	calls := 0
	a.execute = func(ecs.EntityID, *Context) *Result {
		calls++
		return Running(NoAction, nil)
	}
	env := newSysEnv(t, selectTree("a"), a)
	id := env.spawnAI(t)

	t.Run("placement phase skips everyone", func(t *testing.T) {
		env.sys.OnPlacementPhaseStart()
		env.tick()
		if calls != 0 {
			t.Fatalf("evaluated during placement: %d", calls)
		}
	})

	env.sys.OnBattleStart()

	t.Run("incapacitated entity skipped", func(t *testing.T) {
		env.world.Incaps.Set(id, &world.Incapacitated{})
		env.tick()
		if calls != 0 {
			t.Fatalf("evaluated while incapacitated: %d", calls)
		}
		env.world.Incaps.Remove(id)
	})

	t.Run("dying entity skipped", func(t *testing.T) {
		hp, _ := env.world.Healths.Get(id)
		hp.State = world.StateDying
		env.tick()
		if calls != 0 {
			t.Fatalf("evaluated while dying: %d", calls)
		}
		hp.State = world.StateAlive
	})

	t.Run("alive entity evaluated", func(t *testing.T) {
		env.tick()
		if calls != 1 {
			t.Fatalf("calls = %d, want 1", calls)
		}
	})
}

func TestPanicInOneEntityDoesNotAbortOthers(t *testing.T) {
	a := &stubAction{name: "a"}
	var evaluated []ecs.EntityID
	a.execute = func(e ecs.EntityID, _ *Context) *Result {
		evaluated = append(evaluated, e)
		if e == 0 {
			panic("defective entity")
		}
		return Running(NoAction, nil)
	}
	env := newSysEnv(t, selectTree("a"), a)
	env.spawnAI(t) // id 0
	env.spawnAI(t) // id 1
	env.sys.OnBattleStart()

	env.tick()
	if len(evaluated) != 2 {
		t.Fatalf("evaluated = %v, want both entities despite the panic", evaluated)
	}
}

func TestBattleEndCallsHooksAndWipesState(t *testing.T) {
	a := &stubAction{name: "a"}
	a.execute = func(e ecs.EntityID, ctx *Context) *Result {
		ctx.Shared(e)["memory"] = true
		return Running(NoAction, nil)
	}
	env := newSysEnv(t, selectTree("a"), a)
	id := env.spawnAI(t)
	env.sys.OnBattleStart()
	env.tick()

	env.sys.OnBattleEnd()
	if a.ended != 1 || a.battle != 1 {
		t.Fatalf("hooks = end:%d battleEnd:%d, want 1/1", a.ended, a.battle)
	}
	if env.world.Phase != world.PhaseEnded {
		t.Fatalf("phase = %v, want ended", env.world.Phase)
	}
	if _, ok := env.sys.Context().Shared(id)["memory"]; ok {
		t.Fatal("shared blackboard survived the battle boundary")
	}
}

func TestEntityRemovalPurgesStateAndSchedules(t *testing.T) {
	fired := false
	a := &stubAction{name: "a"}
	a.execute = func(e ecs.EntityID, ctx *Context) *Result {
		if _, ok := ctx.Meta(e)["swing"]; !ok {
			ctx.Meta(e)["swing"] = ctx.Sched.Schedule(func() { fired = true }, 2.0, e)
		}
		return Running(NoAction, nil)
	}
	env := newSysEnv(t, selectTree("a"), a)
	id := env.spawnAI(t)
	env.sys.OnBattleStart()
	env.tick()

	env.world.MarkForDestruction(id)
	env.world.FlushDestroyQueue()

	if a.ended != 1 {
		t.Fatalf("OnEnd = %d, want 1 on removal", a.ended)
	}
	if env.sched.Pending() != 0 {
		t.Fatalf("pending schedules = %d, want owned entries cancelled", env.sched.Pending())
	}
	for i := 0; i < 15; i++ {
		env.tick()
	}
	if fired {
		t.Fatal("cancelled owned entry fired after removal")
	}
}
