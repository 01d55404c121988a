package actions

import (
	"github.com/warforge/server/internal/behavior"
	"github.com/warforge/server/internal/core/ecs"
	"github.com/warforge/server/internal/world"
)

const (
	mineSwingSeconds = 2.0
	goldPerSwing     = 1
	mineReach        = 1.5
)

// Mine 採礦動作。礦脈的 CurrentMiner 是單寫者意圖欄位：一次只有一名
// 佔用者，其餘進等候佇列（先到先得）。產出經排程的敲擊鏈累加到
// 採礦者的儲存元件；每次敲擊回呼重新驗證佔用權。
type Mine struct{}

func (Mine) Name() string { return "mine" }

func (Mine) Execute(e ecs.EntityID, ctx *behavior.Context) *behavior.Result {
	pos, ok := ctx.World.Positions.Get(e)
	if !ok {
		return nil
	}
	unit, ok := ctx.World.Units.Get(e)
	if !ok {
		return nil
	}

	m := ctx.Meta(e)
	mine := metaEntity(m, "mine")
	if mine == ecs.None {
		m = make(map[string]any)
		mine = findMine(ctx, e)
		if mine == ecs.None {
			return nil // 沒有有礦可採的礦脈
		}
		m["mine"] = mine
	}

	mn, ok := ctx.World.Mines.Get(mine)
	if !ok || !ctx.World.Exists(mine) {
		delete(m, "mine")
		return behavior.Fail()
	}
	if mn.Reserves <= 0 {
		return behavior.Success(map[string]any{"mine": mine})
	}

	minePos, ok := ctx.World.Positions.Get(mine)
	if !ok {
		return behavior.Fail()
	}
	if world.DistancePoints(*pos, *minePos) > mineReach {
		stepToward(pos, *minePos, stepLen(unit, ctx))
		m["x"] = minePos.X
		m["y"] = minePos.Y
		return behavior.Running(behavior.NoAction, m)
	}

	// 佔用判定：空位或已是自己 → 佔用；否則排隊等候。
	if mn.CurrentMiner == ecs.None || mn.CurrentMiner == e {
		if mn.CurrentMiner == ecs.None {
			mn.CurrentMiner = e
			removeFromQueue(mn, e)
		}
		if _, swinging := m["swing"]; !swinging {
			m["swing"] = scheduleMineSwing(ctx, e, mine)
		}
		return behavior.Running(behavior.NoAction, m)
	}

	enqueue(mn, e)
	m["waiting"] = true
	return behavior.Running(behavior.NoAction, m)
}

// OnEnd 結束採礦：取消敲擊、釋放佔用、離開佇列、晉升下一位等候者。
func (Mine) OnEnd(e ecs.EntityID, ctx *behavior.Context) {
	m := ctx.Meta(e)
	if id, ok := m["swing"].(int64); ok {
		ctx.Sched.Cancel(id)
	}
	mine := metaEntity(m, "mine")
	if mine == ecs.None {
		return
	}
	if mn, ok := ctx.World.Mines.Get(mine); ok {
		releaseMine(mn, e)
	}
}

func scheduleMineSwing(ctx *behavior.Context, miner, mine ecs.EntityID) int64 {
	return ctx.Sched.Schedule(func() {
		if !ctx.World.IsAlive(miner) || !ctx.World.Exists(mine) {
			return
		}
		mn, ok := ctx.World.Mines.Get(mine)
		if !ok || mn.CurrentMiner != miner || mn.Reserves <= 0 {
			delete(ctx.Meta(miner), "swing")
			return
		}
		if ctx.World.Distance(miner, mine) > mineReach {
			// 中途被拉離：敲擊鏈到此中斷。清掉 meta 鍵，
			// Execute 回到射程後才會重啟新鏈。
			delete(ctx.Meta(miner), "swing")
			return
		}

		mn.Reserves -= goldPerSwing
		sp, ok := ctx.World.Stockpiles.Get(miner)
		if !ok {
			sp = &world.Stockpile{}
			ctx.World.Stockpiles.Set(miner, sp)
		}
		sp.Gold += goldPerSwing

		if mn.Reserves <= 0 {
			releaseMine(mn, miner)
			return
		}
		ctx.Meta(miner)["swing"] = scheduleMineSwing(ctx, miner, mine)
	}, mineSwingSeconds, miner)
}

// releaseMine 釋放佔用並晉升佇列頭。
func releaseMine(mn *world.Mine, e ecs.EntityID) {
	removeFromQueue(mn, e)
	if mn.CurrentMiner != e {
		return
	}
	mn.CurrentMiner = ecs.None
	if len(mn.Queue) > 0 {
		mn.CurrentMiner = mn.Queue[0]
		mn.Queue = mn.Queue[1:]
	}
}

func enqueue(mn *world.Mine, e ecs.EntityID) {
	for _, q := range mn.Queue {
		if q == e {
			return
		}
	}
	mn.Queue = append(mn.Queue, e)
}

func removeFromQueue(mn *world.Mine, e ecs.EntityID) {
	for i, q := range mn.Queue {
		if q == e {
			mn.Queue = append(mn.Queue[:i], mn.Queue[i+1:]...)
			return
		}
	}
}

// findMine 選最近的有礦礦脈；等距時 id 最小者獲勝。
func findMine(ctx *behavior.Context, e ecs.EntityID) ecs.EntityID {
	best := ecs.None
	bestDist := 0.0
	for _, id := range ctx.World.Mines.IDs() {
		mn, _ := ctx.World.Mines.Get(id)
		if mn.Reserves <= 0 {
			continue
		}
		d := ctx.World.Distance(e, id)
		if best == ecs.None || d < bestDist {
			best = id
			bestDist = d
		}
	}
	return best
}
