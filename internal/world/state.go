package world

import (
	"math"

	"github.com/warforge/server/internal/core/ecs"
	"github.com/warforge/server/internal/core/sched"
)

// BattlePhase is the coarse battle lifecycle driven by the external phase
// manager through the core's boundary hooks.
type BattlePhase int

const (
	PhaseIdle BattlePhase = iota
	PhasePlacement
	PhaseBattle
	PhaseEnded
)

// State owns every component store plus the simulation clock. Single
// goroutine access only (game loop). Systems mutate components directly;
// cross-system ordering is the tick phase order, not locks.
type State struct {
	Clock *sched.Clock
	Phase BattlePhase

	pool         *ecs.Pool
	registry     *ecs.Registry
	destroyQueue []ecs.EntityID
	onRemoved    []func(ecs.EntityID)

	Positions  *ecs.Store[Position]
	Healths    *ecs.Store[Health]
	Defenses   *ecs.Store[Defense]
	Manas      *ecs.Store[Mana]
	Combatants *ecs.Store[Combatant]
	Units      *ecs.Store[Unit]
	AIStates   *ecs.Store[AIState]
	Poisons    *ecs.Store[PoisonState]
	Buffs      *ecs.Store[BuffState]
	Incaps     *ecs.Store[Incapacitated]
	Sites      *ecs.Store[BuildSite]
	Mines      *ecs.Store[Mine]
	Stockpiles *ecs.Store[Stockpile]
}

func NewState(clock *sched.Clock) *State {
	s := &State{
		Clock:        clock,
		pool:         ecs.NewPool(),
		registry:     ecs.NewRegistry(),
		destroyQueue: make([]ecs.EntityID, 0, 64),
		Positions:    ecs.NewStore[Position](),
		Healths:      ecs.NewStore[Health](),
		Defenses:     ecs.NewStore[Defense](),
		Manas:        ecs.NewStore[Mana](),
		Combatants:   ecs.NewStore[Combatant](),
		Units:        ecs.NewStore[Unit](),
		AIStates:     ecs.NewStore[AIState](),
		Poisons:      ecs.NewStore[PoisonState](),
		Buffs:        ecs.NewStore[BuffState](),
		Incaps:       ecs.NewStore[Incapacitated](),
		Sites:        ecs.NewStore[BuildSite](),
		Mines:        ecs.NewStore[Mine](),
		Stockpiles:   ecs.NewStore[Stockpile](),
	}
	for _, store := range []ecs.Removable{
		s.Positions, s.Healths, s.Defenses, s.Manas, s.Combatants, s.Units,
		s.AIStates, s.Poisons, s.Buffs, s.Incaps, s.Sites, s.Mines, s.Stockpiles,
	} {
		s.registry.Register(store)
	}
	return s
}

func (s *State) CreateEntity() ecs.EntityID {
	return s.pool.Create()
}

// Exists reports pool liveness (destroyed entities are gone even if a stale
// id is still held somewhere).
func (s *State) Exists(id ecs.EntityID) bool {
	return id.Valid() && s.pool.Alive(id)
}

// IsAlive reports whether the entity exists and its death-state is Alive.
// Entities without a Health component count as alive scenery.
func (s *State) IsAlive(id ecs.EntityID) bool {
	if !s.Exists(id) {
		return false
	}
	if h, ok := s.Healths.Get(id); ok {
		return h.State == StateAlive
	}
	return true
}

// AllEntities returns every live entity id, ascending.
func (s *State) AllEntities() []ecs.EntityID {
	return s.pool.AliveIDs()
}

// MarkForDestruction queues an entity for end-of-tick cleanup.
func (s *State) MarkForDestruction(id ecs.EntityID) {
	if !s.Exists(id) {
		return
	}
	s.destroyQueue = append(s.destroyQueue, id)
}

// OnEntityRemoved registers an observer fired during FlushDestroyQueue,
// before component data disappears. Behavior state purge and owned-entry
// cancellation hang off this.
func (s *State) OnEntityRemoved(fn func(ecs.EntityID)) {
	s.onRemoved = append(s.onRemoved, fn)
}

// FlushDestroyQueue destroys all queued entities and clears their
// components. Called by CleanupSystem at the end of each tick.
func (s *State) FlushDestroyQueue() {
	for _, id := range s.destroyQueue {
		if !s.pool.Alive(id) {
			continue // queued twice in one tick
		}
		for _, fn := range s.onRemoved {
			fn(id)
		}
		s.registry.RemoveAll(id)
		s.pool.Destroy(id)
	}
	s.destroyQueue = s.destroyQueue[:0]
}

// ResetForBattle wipes all entities and rewinds the clock. Both replicas
// enter every battle from identical allocator and component state.
func (s *State) ResetForBattle() {
	for _, id := range s.pool.AliveIDs() {
		s.registry.RemoveAll(id)
	}
	s.pool.Reset()
	s.destroyQueue = s.destroyQueue[:0]
	s.Clock.Reset()
}

// Distance returns the Euclidean distance between two positioned entities.
// Missing positions report an effectively infinite distance so range checks
// fail closed.
func (s *State) Distance(a, b ecs.EntityID) float64 {
	pa, oka := s.Positions.Get(a)
	pb, okb := s.Positions.Get(b)
	if !oka || !okb {
		return math.Inf(1)
	}
	return DistancePoints(*pa, *pb)
}

// DistanceFrom returns the distance from a point to a positioned entity.
func (s *State) DistanceFrom(origin Position, id ecs.EntityID) float64 {
	p, ok := s.Positions.Get(id)
	if !ok {
		return math.Inf(1)
	}
	return DistancePoints(origin, *p)
}

func DistancePoints(a, b Position) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	return math.Sqrt(dx*dx + dy*dy)
}
