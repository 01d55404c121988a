package system

// Phase defines execution ordering within a single tick.
type Phase int

const (
	PhasePreUpdate  Phase = iota // 0: event dispatch + due scheduled callbacks
	PhaseUpdate                  // 1: behavior evaluation + action execution
	PhasePostUpdate              // 2: DoT ticks, regeneration
	PhasePersist                 // 3: journal flush
	PhaseCleanup                 // 4: destroy queued entities
)

// System is the interface every simulation system implements.
type System interface {
	Phase() Phase
	Update()
}
