package system

import (
	coresys "github.com/warforge/server/internal/core/system"
	"github.com/warforge/server/internal/core/sched"
)

// SchedDrainSystem fires all due scheduled callbacks at tick start (after
// event dispatch, before behavior). Cast deliveries, cooldown expiries, buff
// expiries and construction swings all run here, in (dueTick, seq) order.
type SchedDrainSystem struct {
	sched *sched.Scheduler
}

func NewSchedDrainSystem(sc *sched.Scheduler) *SchedDrainSystem {
	return &SchedDrainSystem{sched: sc}
}

func (s *SchedDrainSystem) Phase() coresys.Phase { return coresys.PhasePreUpdate }

func (s *SchedDrainSystem) Update() {
	s.sched.RunDue()
}
