package actions

import (
	"github.com/warforge/server/internal/behavior"
	"github.com/warforge/server/internal/core/ecs"
	"github.com/warforge/server/internal/world"
)

// arriveRadius 視為抵達的距離。
const arriveRadius = 0.5

// Move 朝 shared 黑板上的目標點移動。目標由外部指令或其他動作寫入
// shared["objective_x"/"objective_y"]；沒有目標時不適用（回傳 nil 落下）。
type Move struct{}

func (Move) Name() string { return "move" }

func (Move) Execute(e ecs.EntityID, ctx *behavior.Context) *behavior.Result {
	shared := ctx.Shared(e)
	ox, okx := shared["objective_x"].(float64)
	oy, oky := shared["objective_y"].(float64)
	if !okx || !oky {
		return nil
	}

	pos, ok := ctx.World.Positions.Get(e)
	if !ok {
		return nil // 缺少位置元件 — 驗證失敗以落下處理，不擲出
	}
	unit, ok := ctx.World.Units.Get(e)
	if !ok {
		return nil
	}

	goal := world.Position{X: ox, Y: oy}
	dist := world.DistancePoints(*pos, goal)
	if dist <= arriveRadius {
		delete(shared, "objective_x")
		delete(shared, "objective_y")
		return behavior.Success(map[string]any{"x": goal.X, "y": goal.Y})
	}

	stepToward(pos, goal, stepLen(unit, ctx))
	return behavior.Running(behavior.NoAction, map[string]any{"x": goal.X, "y": goal.Y})
}

// stepLen 單 tick 移動距離（速度為每秒單位）。
func stepLen(unit *world.Unit, ctx *behavior.Context) float64 {
	return unit.Speed / float64(ctx.World.Clock.TicksPerSecond())
}

// stepToward 將 pos 朝 goal 前進最多 step 距離。
func stepToward(pos *world.Position, goal world.Position, step float64) {
	dist := world.DistancePoints(*pos, goal)
	if dist <= step || dist == 0 {
		pos.X = goal.X
		pos.Y = goal.Y
		return
	}
	pos.X += (goal.X - pos.X) / dist * step
	pos.Y += (goal.Y - pos.Y) / dist * step
}
