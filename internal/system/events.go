package system

import (
	"github.com/warforge/server/internal/core/event"
	coresys "github.com/warforge/server/internal/core/system"
)

// EventDispatchSystem swaps the bus buffers and delivers last tick's events.
// Registered first in Phase 0 so handlers observe a stable world.
type EventDispatchSystem struct {
	bus *event.Bus
}

func NewEventDispatchSystem(bus *event.Bus) *EventDispatchSystem {
	return &EventDispatchSystem{bus: bus}
}

func (s *EventDispatchSystem) Phase() coresys.Phase { return coresys.PhasePreUpdate }

func (s *EventDispatchSystem) Update() {
	s.bus.SwapBuffers()
	s.bus.DispatchAll()
}
