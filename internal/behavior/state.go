package behavior

import (
	"sort"

	"github.com/warforge/server/internal/core/ecs"
)

// entityState is the per-entity transient behavior scratch, kept out of
// components so its shape can vary per action.
//
//	meta   — per-action scratch, replaced wholesale on every action switch
//	shared — cross-action blackboard, survives switches within one battle
//
// Both are wiped at battle start/end and on entity removal.
type entityState struct {
	current ActionRef
	meta    map[string]any
	shared  map[string]any
}

type stateStore struct {
	states map[ecs.EntityID]*entityState
}

func newStateStore() *stateStore {
	return &stateStore{states: make(map[ecs.EntityID]*entityState, 64)}
}

// get lazily creates state on first access.
func (s *stateStore) get(id ecs.EntityID) *entityState {
	st, ok := s.states[id]
	if !ok {
		st = &entityState{
			current: NoAction,
			meta:    make(map[string]any),
			shared:  make(map[string]any),
		}
		s.states[id] = st
	}
	return st
}

// peek returns state without creating it.
func (s *stateStore) peek(id ecs.EntityID) (*entityState, bool) {
	st, ok := s.states[id]
	return st, ok
}

func (s *stateStore) purge(id ecs.EntityID) {
	delete(s.states, id)
}

func (s *stateStore) reset() {
	s.states = make(map[ecs.EntityID]*entityState, 64)
}

// ids returns all entity ids with live behavior state, ascending.
func (s *stateStore) ids() []ecs.EntityID {
	out := make([]ecs.EntityID, 0, len(s.states))
	for id := range s.states {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
