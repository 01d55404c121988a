package system

import (
	"github.com/warforge/server/internal/core/ecs"
	"github.com/warforge/server/internal/core/event"
	coresys "github.com/warforge/server/internal/core/system"
	"github.com/warforge/server/internal/world"
)

// VictorySystem 勝負判定（Phase 2 末）：戰鬥階段中每 tick 清點各隊存活
// 戰鬥單位，只剩一隊（或全滅）時發出 BattleEnded 事件。事件只發一次，
// 戰鬥邊界重置閂鎖。全滅平手以 WinningTeam = -1 表示。
type VictorySystem struct {
	world   *world.State
	bus     *event.Bus
	emitted bool
}

func NewVictorySystem(ws *world.State, bus *event.Bus) *VictorySystem {
	return &VictorySystem{world: ws, bus: bus}
}

func (s *VictorySystem) Phase() coresys.Phase { return coresys.PhasePostUpdate }

// Reset re-arms the latch. Called at battle start.
func (s *VictorySystem) Reset() { s.emitted = false }

func (s *VictorySystem) Update() {
	if s.world.Phase != world.PhaseBattle || s.emitted {
		return
	}

	alive := make(map[int]int)
	s.world.Combatants.EachSorted(func(id ecs.EntityID, c *world.Combatant) {
		if s.world.IsAlive(id) {
			alive[c.Team]++
		}
	})
	if len(alive) > 1 {
		return
	}

	winner := -1
	for team := range alive {
		winner = team
	}
	s.emitted = true
	event.Emit(s.bus, event.BattleEnded{
		WinningTeam: winner,
		Tick:        s.world.Clock.Tick(),
	})
}
