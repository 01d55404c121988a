package behavior

import (
	"fmt"
	"sort"

	"github.com/warforge/server/internal/core/ecs"
)

// Action is the shared contract of every terminal executable behavior:
// leaf actions (Move, Build, Defend, Mine) and abilities alike. Execute must
// be free of wall-clock time, randomness, and unordered-map iteration.
//
// Returning nil means "not applicable here" and lets the selector fall
// through; Failure means the action was applicable but cannot proceed.
type Action interface {
	Name() string
	Execute(e ecs.EntityID, ctx *Context) *Result
}

// Lifecycle hooks are optional; the behavior system probes for them.
type Starter interface {
	OnStart(e ecs.EntityID, ctx *Context)
}

type Ender interface {
	OnEnd(e ecs.EntityID, ctx *Context)
}

type BattleEnder interface {
	OnBattleEnd(e ecs.EntityID, ctx *Context)
}

// Actions is the flat name-keyed action table. Built during boot, immutable
// during battle; there is no inheritance hierarchy behind it.
type Actions struct {
	byName map[string]Action
}

func NewActions() *Actions {
	return &Actions{byName: make(map[string]Action, 16)}
}

func (a *Actions) Register(action Action) error {
	name := action.Name()
	if name == "" {
		return fmt.Errorf("behavior: action with empty name")
	}
	if _, dup := a.byName[name]; dup {
		return fmt.Errorf("behavior: duplicate action %q", name)
	}
	a.byName[name] = action
	return nil
}

func (a *Actions) Get(name string) (Action, bool) {
	act, ok := a.byName[name]
	return act, ok
}

// Names returns all registered action names, sorted.
func (a *Actions) Names() []string {
	names := make([]string, 0, len(a.byName))
	for n := range a.byName {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
