package system

import (
	"github.com/warforge/server/internal/behavior"
	coresys "github.com/warforge/server/internal/core/system"
)

// BehaviorUpdateSystem 行為階段（Phase 1）：樹評估與動作執行。
type BehaviorUpdateSystem struct {
	beh *behavior.System
}

func NewBehaviorUpdateSystem(beh *behavior.System) *BehaviorUpdateSystem {
	return &BehaviorUpdateSystem{beh: beh}
}

func (s *BehaviorUpdateSystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *BehaviorUpdateSystem) Update() {
	s.beh.Update()
}
