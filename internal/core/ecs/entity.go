package ecs

import "sort"

// EntityID is a plain non-negative simulation entity id. Id 0 is a valid
// entity, so "no entity" is always the explicit None sentinel — never a
// zero-value or truthiness check.
type EntityID int64

// None is the universal unset-entity sentinel.
const None EntityID = -1

// Valid reports whether the id refers to a possible entity (it may still be
// destroyed; liveness is the Pool's call).
func (id EntityID) Valid() bool { return id >= 0 }

// Pool allocates entity ids sequentially and tracks liveness. Ids are never
// reused within a battle; allocation order is part of the deterministic
// replay contract, so the pool is driven only by simulation events.
type Pool struct {
	next  EntityID
	alive map[EntityID]struct{}
}

func NewPool() *Pool {
	return &Pool{alive: make(map[EntityID]struct{}, 256)}
}

func (p *Pool) Create() EntityID {
	id := p.next
	p.next++
	p.alive[id] = struct{}{}
	return id
}

func (p *Pool) Alive(id EntityID) bool {
	_, ok := p.alive[id]
	return ok
}

func (p *Pool) Destroy(id EntityID) {
	delete(p.alive, id)
}

// AliveIDs returns every live entity id in ascending order. Sorted output is
// an invariant consumed by every per-tick iteration, not an optimization.
func (p *Pool) AliveIDs() []EntityID {
	ids := make([]EntityID, 0, len(p.alive))
	for id := range p.alive {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Reset drops all live entities and restarts id allocation. Called at battle
// boundaries so replicas begin every battle from identical allocator state.
func (p *Pool) Reset() {
	p.next = 0
	p.alive = make(map[EntityID]struct{}, 256)
}
