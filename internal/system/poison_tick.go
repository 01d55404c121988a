package system

import (
	"github.com/warforge/server/internal/combat"
	coresys "github.com/warforge/server/internal/core/system"
	"github.com/warforge/server/internal/world"
)

// PoisonTickSystem 毒週期結算（Phase 2）。
// ApplyDamage 疊毒不扣血；實際 DoT 由本系統每 PoisonTickIntervalTicks
// 對所有中毒實體結算一次，依 id 升冪。
type PoisonTickSystem struct {
	world *world.State
	dmg   *combat.Damage
}

func NewPoisonTickSystem(ws *world.State, dmg *combat.Damage) *PoisonTickSystem {
	return &PoisonTickSystem{world: ws, dmg: dmg}
}

func (s *PoisonTickSystem) Phase() coresys.Phase { return coresys.PhasePostUpdate }

func (s *PoisonTickSystem) Update() {
	if s.world.Phase != world.PhaseBattle {
		return
	}
	tick := s.world.Clock.Tick()
	if tick == 0 || tick%combat.PoisonTickIntervalTicks != 0 {
		return
	}
	for _, id := range s.world.Poisons.IDs() {
		s.dmg.TickPoison(id)
	}
}
