package system

import (
	"github.com/warforge/server/internal/core/ecs"
	coresys "github.com/warforge/server/internal/core/system"
	"github.com/warforge/server/internal/world"
)

// regenIntervalTicks 魔力回復間隔（5 tick = 1 秒）。
const regenIntervalTicks = 5

// ManaRegenSystem 魔力回復（Phase 2）：每秒 +1 MP，封頂 MaxMP。
// 依 id 升冪處理 — 回復順序也是決定性契約的一部分。
type ManaRegenSystem struct {
	world *world.State
}

func NewManaRegenSystem(ws *world.State) *ManaRegenSystem {
	return &ManaRegenSystem{world: ws}
}

func (s *ManaRegenSystem) Phase() coresys.Phase { return coresys.PhasePostUpdate }

func (s *ManaRegenSystem) Update() {
	if s.world.Phase != world.PhaseBattle {
		return
	}
	tick := s.world.Clock.Tick()
	if tick == 0 || tick%regenIntervalTicks != 0 {
		return
	}
	s.world.Manas.EachSorted(func(id ecs.EntityID, m *world.Mana) {
		if !s.world.IsAlive(id) {
			return
		}
		if m.MP < m.MaxMP {
			m.MP++
		}
	})
}
