package system

import (
	"github.com/warforge/server/internal/combat"
	coresys "github.com/warforge/server/internal/core/system"
	"github.com/warforge/server/internal/world"
)

// DeathSystem 死亡轉換（Phase 2）：Dying → Dead，清除 buff 與毒。
// 屍體實體的延遲移除由傷害系統排程，本系統只推進死亡狀態。
type DeathSystem struct {
	world *world.State
	buffs *combat.Buffs
	dmg   *combat.Damage
}

func NewDeathSystem(ws *world.State, buffs *combat.Buffs, dmg *combat.Damage) *DeathSystem {
	return &DeathSystem{world: ws, buffs: buffs, dmg: dmg}
}

func (s *DeathSystem) Phase() coresys.Phase { return coresys.PhasePostUpdate }

func (s *DeathSystem) Update() {
	for _, id := range s.world.Healths.IDs() {
		h, _ := s.world.Healths.Get(id)
		if h.State != world.StateDying {
			continue
		}
		h.State = world.StateDead
		s.buffs.ClearAll(id)
		s.dmg.CurePoison(id)
	}
}
