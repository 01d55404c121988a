package behavior

import (
	"go.uber.org/zap"

	"github.com/warforge/server/internal/combat"
	"github.com/warforge/server/internal/core/ecs"
	"github.com/warforge/server/internal/core/event"
	"github.com/warforge/server/internal/core/sched"
	"github.com/warforge/server/internal/service"
	"github.com/warforge/server/internal/world"
)

// Context is what an executing action sees: the component state, the
// scheduler, damage resolution, buffs, the service registry, and its own
// meta/shared scratch. One Context is shared across all actions per tick;
// it carries no per-entity state itself.
type Context struct {
	World    *world.State
	Sched    *sched.Scheduler
	Damage   *combat.Damage
	Buffs    *combat.Buffs
	Services *service.Registry
	Bus      *event.Bus
	Log      *zap.Logger

	sys *System
}

// Meta returns the entity's per-action scratch map. Replaced wholesale on
// every action switch — nothing stored here outlives the current action.
func (c *Context) Meta(id ecs.EntityID) map[string]any {
	return c.sys.states.get(id).meta
}

// Shared returns the entity's cross-action blackboard. Survives switches,
// wiped at battle boundaries and entity removal.
func (c *Context) Shared(id ecs.EntityID) map[string]any {
	return c.sys.states.get(id).shared
}

// MetaInt reads an int64 meta field, def when absent or mistyped.
func (c *Context) MetaInt(id ecs.EntityID, key string, def int64) int64 {
	if v, ok := c.Meta(id)[key]; ok {
		if n, ok := v.(int64); ok {
			return n
		}
	}
	return def
}

// MetaString reads a string meta field, def when absent or mistyped.
func (c *Context) MetaString(id ecs.EntityID, key string, def string) string {
	if v, ok := c.Meta(id)[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return def
}

// MetaEntity reads an entity-id meta field; ecs.None when absent. Entity ids
// in meta are always stored as ecs.EntityID, never bare ints, so id 0 stays
// distinguishable from "unset".
func (c *Context) MetaEntity(id ecs.EntityID, key string) ecs.EntityID {
	if v, ok := c.Meta(id)[key]; ok {
		if e, ok := v.(ecs.EntityID); ok {
			return e
		}
	}
	return ecs.None
}

// SharedEntity reads an entity-id shared field; ecs.None when absent.
func (c *Context) SharedEntity(id ecs.EntityID, key string) ecs.EntityID {
	if v, ok := c.Shared(id)[key]; ok {
		if e, ok := v.(ecs.EntityID); ok {
			return e
		}
	}
	return ecs.None
}
