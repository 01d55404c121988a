package behavior

import (
	"go.uber.org/zap"

	"github.com/warforge/server/internal/combat"
	"github.com/warforge/server/internal/core/ecs"
	"github.com/warforge/server/internal/core/event"
	"github.com/warforge/server/internal/core/sched"
	"github.com/warforge/server/internal/service"
	"github.com/warforge/server/internal/world"
)

// System 行為系統：持有每實體的 meta/shared 暫存，驅動動作切換狀態機，
// 呼叫生命週期掛鉤。每 tick 依 id 升冪處理符合條件的實體 —
// 排序是跨副本正確性不變量，不是最佳化。
//
// 切換規則：
//
//	無動作     | 任意結果        → 切入新動作
//	有動作     | running 同一動作 → 繼續，不呼叫掛鉤
//	有動作     | running 不同動作 → onEnd(舊) → onStart(新)
//	有動作     | success/failure → onEnd(舊) → onStart(新)（同 id 也允許重入）
type System struct {
	world  *world.State
	sched  *sched.Scheduler
	proc   *Processor
	states *stateStore
	ctx    *Context
	log    *zap.Logger
}

func NewSystem(ws *world.State, sc *sched.Scheduler, proc *Processor,
	dmg *combat.Damage, buffs *combat.Buffs, services *service.Registry,
	bus *event.Bus, log *zap.Logger) *System {
	if log == nil {
		log = zap.NewNop()
	}
	s := &System{
		world:  ws,
		sched:  sc,
		proc:   proc,
		states: newStateStore(),
		log:    log,
	}
	s.ctx = &Context{
		World:    ws,
		Sched:    sc,
		Damage:   dmg,
		Buffs:    buffs,
		Services: services,
		Bus:      bus,
		Log:      log,
		sys:      s,
	}
	// 實體銷毀時清除行為狀態並取消其所有排程項。
	ws.OnEntityRemoved(s.OnEntityRemoved)
	return s
}

// Context exposes the execution context (tests and ability wiring use it).
func (s *System) Context() *Context { return s.ctx }

// Update 每 tick 的主迴圈。只處理：戰鬥階段、持有 AIState+單位類型、
// 未死亡/垂死、未被外部失能的實體。單一實體的缺陷以 recover 攔截記錄，
// 不得中斷整個 tick。
func (s *System) Update() {
	if s.world.Phase != world.PhaseBattle {
		return
	}
	for _, id := range ecs.EntitiesWith2(s.world.AIStates, s.world.Units) {
		if !s.world.IsAlive(id) {
			// 死亡立即結束動作，釋放工地/礦脈等意圖欄位 —
			// 不等屍體移除，否則死者會佔住資源一整段停留時間。
			s.releaseDead(id)
			continue
		}
		if s.world.Incaps.Has(id) {
			continue
		}
		s.safeUpdate(id)
	}
}

func (s *System) releaseDead(id ecs.EntityID) {
	st, ok := s.states.peek(id)
	if !ok || st.current.IsNone() {
		return
	}
	ai, ok := s.world.AIStates.Get(id)
	if !ok {
		return
	}
	s.endAction(id, st, ai)
}

func (s *System) safeUpdate(id ecs.EntityID) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("behavior update panic",
				zap.Int64("entity", int64(id)),
				zap.Any("panic", r))
		}
	}()
	s.updateEntity(id)
}

func (s *System) updateEntity(id ecs.EntityID) {
	ai, ok := s.world.AIStates.Get(id)
	if !ok {
		return
	}
	st := s.states.get(id)

	res := s.proc.Evaluate(ai.RootCollection, ai.RootTree, id, s.ctx)
	if res == nil {
		// 無適用行為：結束當前動作，轉閒置。
		if !st.current.IsNone() {
			s.endAction(id, st, ai)
		}
		return
	}

	leaf, ok := unwrap(res)
	if !ok {
		s.log.Warn("delegate chain exceeds depth bound, treating as failure",
			zap.Int64("entity", int64(id)))
		leaf = Fail()
	}

	switch {
	case st.current.IsNone():
		s.startAction(id, st, ai, leaf)

	case leaf.Status == StatusRunning && leaf.Action == st.current:
		// 繼續：不呼叫掛鉤、不動 meta。

	default:
		// 不同動作的 running，或任何 success/failure（允許同 id 重入）。
		s.endAction(id, st, ai)
		s.startAction(id, st, ai, leaf)
	}
}

// startAction 切入動作：meta 整份替換、同步 AIState、呼叫 OnStart。
func (s *System) startAction(id ecs.EntityID, st *entityState, ai *world.AIState, r *Result) {
	if r.Action.IsNone() {
		return // 結果未綁定葉節點，保持閒置
	}
	st.current = r.Action
	if r.Payload != nil {
		st.meta = r.Payload
	} else {
		st.meta = make(map[string]any)
	}
	ai.CurrentCollection = r.Action.Collection
	ai.CurrentAction = r.Action.Index

	if act, ok := s.proc.ActionAt(r.Action); ok {
		if starter, ok := act.(Starter); ok {
			starter.OnStart(id, s.ctx)
		}
	}
}

// endAction 結束動作：呼叫 OnEnd、清空 meta、回閒置哨兵。
func (s *System) endAction(id ecs.EntityID, st *entityState, ai *world.AIState) {
	if act, ok := s.proc.ActionAt(st.current); ok {
		if ender, ok := act.(Ender); ok {
			ender.OnEnd(id, s.ctx)
		}
	}
	st.current = NoAction
	st.meta = make(map[string]any)
	ai.CurrentCollection = world.NoActionIndex
	ai.CurrentAction = world.NoActionIndex
}

// ==================== 階段邊界掛鉤 ====================

// OnBattleStart 戰鬥開始：清空全部行為狀態，所有實體回閒置。
func (s *System) OnBattleStart() {
	s.world.Phase = world.PhaseBattle
	s.states.reset()
	s.world.AIStates.EachSorted(func(_ ecs.EntityID, ai *world.AIState) {
		ai.CurrentCollection = world.NoActionIndex
		ai.CurrentAction = world.NoActionIndex
	})
	s.log.Info("戰鬥開始", zap.Int64("tick", s.world.Clock.Tick()))
}

// OnBattleEnd 戰鬥結束：對每個仍有動作的實體呼叫 OnEnd 與 OnBattleEnd，
// 然後清空行為狀態。
func (s *System) OnBattleEnd() {
	for _, id := range s.states.ids() {
		st, _ := s.states.peek(id)
		if st == nil || st.current.IsNone() {
			continue
		}
		if act, ok := s.proc.ActionAt(st.current); ok {
			if ender, ok := act.(Ender); ok {
				ender.OnEnd(id, s.ctx)
			}
			if be, ok := act.(BattleEnder); ok {
				be.OnBattleEnd(id, s.ctx)
			}
		}
		if ai, ok := s.world.AIStates.Get(id); ok {
			ai.CurrentCollection = world.NoActionIndex
			ai.CurrentAction = world.NoActionIndex
		}
	}
	s.states.reset()
	s.world.Phase = world.PhaseEnded
	s.log.Info("戰鬥結束", zap.Int64("tick", s.world.Clock.Tick()))
}

// OnPlacementPhaseStart 佈署階段開始：行為狀態歸零，等待戰鬥開始。
func (s *System) OnPlacementPhaseStart() {
	s.world.Phase = world.PhasePlacement
	s.states.reset()
}

// OnEntityRemoved 實體移除：結束其動作、清除行為狀態、取消其排程項。
func (s *System) OnEntityRemoved(id ecs.EntityID) {
	if st, ok := s.states.peek(id); ok && !st.current.IsNone() {
		if act, ok := s.proc.ActionAt(st.current); ok {
			if ender, ok := act.(Ender); ok {
				ender.OnEnd(id, s.ctx)
			}
		}
	}
	s.states.purge(id)
	s.sched.CancelOwned(id)
}
