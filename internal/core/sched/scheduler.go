package sched

import (
	"container/heap"

	"go.uber.org/zap"

	"github.com/warforge/server/internal/core/ecs"
)

// Scheduler is the deterministic deferred-execution queue: the sole
// mechanism for delays, cooldown expiry, buff/DoT choreography and
// multi-step ability effects. Entries fire in non-decreasing due tick;
// equal due ticks fire in insertion order. That total order is what keeps
// independently-running replicas bit-identical.
type Scheduler struct {
	clock   *Clock
	queue   entryHeap
	pending map[int64]*entry
	nextID  int64
	nextSeq uint64
	log     *zap.Logger
}

// Callback is a scheduled action body. It must re-validate its subject:
// the world may have changed arbitrarily between scheduling and firing.
type Callback func()

type entry struct {
	id        int64
	dueTick   int64
	seq       uint64
	owner     ecs.EntityID
	fn        Callback
	cancelled bool
}

func New(clock *Clock, log *zap.Logger) *Scheduler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Scheduler{
		clock:   clock,
		queue:   make(entryHeap, 0, 64),
		pending: make(map[int64]*entry, 64),
		nextID:  1,
		log:     log,
	}
}

// Schedule registers fn to fire when the simulation clock reaches
// now + delaySeconds. Returns the entry id for cancellation. owner may be
// ecs.None for world-level actions; owned entries are bulk-cancelled when
// their entity is removed.
func (s *Scheduler) Schedule(fn Callback, delaySeconds float64, owner ecs.EntityID) int64 {
	return s.ScheduleTicks(fn, s.clock.TicksFor(delaySeconds), owner)
}

// ScheduleTicks is the tick-exact variant used internally and by tests.
func (s *Scheduler) ScheduleTicks(fn Callback, delayTicks int64, owner ecs.EntityID) int64 {
	if fn == nil {
		return 0
	}
	if delayTicks < 0 {
		delayTicks = 0
	}
	e := &entry{
		id:      s.nextID,
		dueTick: s.clock.Tick() + delayTicks,
		seq:     s.nextSeq,
		owner:   owner,
		fn:      fn,
	}
	s.nextID++
	s.nextSeq++
	s.pending[e.id] = e
	heap.Push(&s.queue, e)
	return e.id
}

// Cancel removes a pending entry. No-op if the id already fired or is unknown.
func (s *Scheduler) Cancel(id int64) {
	if e, ok := s.pending[id]; ok {
		e.cancelled = true
		delete(s.pending, id)
	}
}

// CancelOwned cancels every pending entry owned by the given entity.
// Called from the entity-removed path.
func (s *Scheduler) CancelOwned(owner ecs.EntityID) {
	if !owner.Valid() {
		return
	}
	for id, e := range s.pending {
		if e.owner == owner {
			e.cancelled = true
			delete(s.pending, id)
		}
	}
}

// RunDue fires every entry due at or before the current tick. A callback may
// schedule further entries; a zero-delay entry scheduled mid-drain fires in
// this same drain, after everything that was already due.
func (s *Scheduler) RunDue() {
	now := s.clock.Tick()
	for s.queue.Len() > 0 && s.queue[0].dueTick <= now {
		e := heap.Pop(&s.queue).(*entry)
		if e.cancelled {
			continue
		}
		delete(s.pending, e.id)
		e.fn()
	}
}

// Pending returns the number of live (not yet fired, not cancelled) entries.
func (s *Scheduler) Pending() int { return len(s.pending) }

// Reset drops every pending entry. Battle-boundary path: a new battle starts
// with an empty queue and a fresh sequence counter on every replica.
func (s *Scheduler) Reset() {
	s.queue = s.queue[:0]
	s.pending = make(map[int64]*entry, 64)
	s.nextSeq = 0
	s.nextID = 1
}

// entryHeap orders by (dueTick, seq). seq is the insertion tiebreak.
type entryHeap []*entry

func (h entryHeap) Len() int { return len(h) }

func (h entryHeap) Less(i, j int) bool {
	if h[i].dueTick != h[j].dueTick {
		return h[i].dueTick < h[j].dueTick
	}
	return h[i].seq < h[j].seq
}

func (h entryHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *entryHeap) Push(x any) { *h = append(*h, x.(*entry)) }

func (h *entryHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return e
}
