package actions

import (
	"github.com/warforge/server/internal/behavior"
	"github.com/warforge/server/internal/core/ecs"
)

// defendCooldownSeconds 反擊攻速（就緒 tick 存於 shared，戰鬥邊界歸零）。
const defendCooldownSeconds = 1.0

// Defend 守備動作：原地駐守，對最後攻擊者反擊。最低優先度的保底葉 —
// 永遠適用，沒有攻擊者時持續駐守。
type Defend struct{}

func (Defend) Name() string { return "defend" }

func (Defend) Execute(e ecs.EntityID, ctx *behavior.Context) *behavior.Result {
	unit, ok := ctx.World.Units.Get(e)
	if !ok {
		return nil
	}
	c, ok := ctx.World.Combatants.Get(e)
	if !ok {
		return nil
	}

	attacker := c.LastAttacker
	if attacker == ecs.None || !ctx.World.IsAlive(attacker) {
		if attacker != ecs.None {
			c.LastAttacker = ecs.None // 攻擊者已死，清除反擊目標
		}
		return behavior.Running(behavior.NoAction, map[string]any{"holding": true})
	}

	if ctx.World.Distance(e, attacker) > unit.AttackRange {
		// 不追擊：守備就是駐守原地。
		return behavior.Running(behavior.NoAction, map[string]any{"holding": true})
	}

	shared := ctx.Shared(e)
	now := ctx.World.Clock.Tick()
	if ready, ok := shared["defend_ready"].(int64); ok && now < ready {
		return behavior.Running(behavior.NoAction, map[string]any{"target": attacker})
	}
	shared["defend_ready"] = now + ctx.World.Clock.TicksFor(defendCooldownSeconds)

	ctx.Damage.ApplyDamage(e, attacker, unit.AttackDamage, unit.AttackElement)
	return behavior.Running(behavior.NoAction, map[string]any{"target": attacker})
}
