package system

import (
	coresys "github.com/warforge/server/internal/core/system"
	"github.com/warforge/server/internal/world"
)

// CleanupSystem flushes the deferred entity destroy queue at tick end.
type CleanupSystem struct {
	world *world.State
}

func NewCleanupSystem(ws *world.State) *CleanupSystem {
	return &CleanupSystem{world: ws}
}

func (s *CleanupSystem) Phase() coresys.Phase { return coresys.PhaseCleanup }

func (s *CleanupSystem) Update() {
	s.world.FlushDestroyQueue()
}
