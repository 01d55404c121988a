package actions

import (
	"github.com/warforge/server/internal/behavior"
	"github.com/warforge/server/internal/core/ecs"
	"github.com/warforge/server/internal/core/event"
	"github.com/warforge/server/internal/world"
)

const (
	// buildSwingSeconds 每次敲擊的間隔；進度經排程鏈累加，不在 Execute 內累加。
	buildSwingSeconds = 1.0
	progressPerSwing  = 1
)

// 建造階段（存於 meta["phase"]）。
const (
	phaseTraveling = "traveling_to_building"
	phaseBuilding  = "building"
)

// Build 建造動作：traveling_to_building → building → done 三態機。
// 工地的 AssignedBuilder 是單寫者意圖欄位 — 已被他人認領的工地不適用。
// 進度由排程的敲擊鏈累加，每次敲擊回呼先重新驗證工人與工地。
type Build struct{}

func (Build) Name() string { return "build" }

func (Build) Execute(e ecs.EntityID, ctx *behavior.Context) *behavior.Result {
	unit, ok := ctx.World.Units.Get(e)
	if !ok || unit.BuildRange <= 0 {
		return nil // 非建造單位
	}
	pos, ok := ctx.World.Positions.Get(e)
	if !ok {
		return nil
	}

	// meta 已有工地 → 本動作進行中；否則建立全新提案 meta。
	m := ctx.Meta(e)
	site := metaEntity(m, "site")
	if site == ecs.None {
		m = make(map[string]any)
		site = findSite(ctx, e)
		if site == ecs.None {
			return nil // 沒有可認領的工地
		}
		m["site"] = site
		m["phase"] = phaseTraveling
	}

	sb, ok := ctx.World.Sites.Get(site)
	if !ok || !ctx.World.Exists(site) {
		delete(m, "site")
		return behavior.Fail() // 工地消失
	}
	if sb.Complete {
		return behavior.Success(map[string]any{"site": site})
	}
	if sb.AssignedBuilder.Valid() && sb.AssignedBuilder != e {
		return nil // 他人已認領
	}
	sb.AssignedBuilder = e

	sitePos, ok := ctx.World.Positions.Get(site)
	if !ok {
		return behavior.Fail()
	}

	if world.DistancePoints(*pos, *sitePos) > unit.BuildRange {
		// 趕路：回傳 running 並攜帶目標位置。
		m["phase"] = phaseTraveling
		stepToward(pos, *sitePos, stepLen(unit, ctx))
		m["x"] = sitePos.X
		m["y"] = sitePos.Y
		return behavior.Running(behavior.NoAction, m)
	}

	if m["phase"] != phaseBuilding {
		// 進入建造階段：以模擬時鐘蓋開工戳。
		m["phase"] = phaseBuilding
		m["buildStart"] = ctx.World.Clock.Tick()
	}
	// 敲擊鏈至多一條：還有未決敲擊就不再排程。
	if _, swinging := m["swing"]; !swinging {
		m["swing"] = scheduleSwing(ctx, e, site)
	}
	return behavior.Running(behavior.NoAction, m)
}

// OnEnd 動作結束：取消未決敲擊、釋放工地認領。
func (Build) OnEnd(e ecs.EntityID, ctx *behavior.Context) {
	m := ctx.Meta(e)
	if id, ok := m["swing"].(int64); ok {
		ctx.Sched.Cancel(id)
	}
	site := metaEntity(m, "site")
	if site == ecs.None {
		return
	}
	if sb, ok := ctx.World.Sites.Get(site); ok && sb.AssignedBuilder == e && !sb.Complete {
		sb.AssignedBuilder = ecs.None
	}
}

// scheduleSwing 排程下一次敲擊。回呼自我驗證：工人或工地失效即靜默失效。
func scheduleSwing(ctx *behavior.Context, builder, site ecs.EntityID) int64 {
	return ctx.Sched.Schedule(func() {
		if !ctx.World.IsAlive(builder) || !ctx.World.Exists(site) {
			return
		}
		sb, ok := ctx.World.Sites.Get(site)
		if !ok || sb.Complete || sb.AssignedBuilder != builder {
			return
		}
		// 工人中途走出範圍 → 敲擊鏈到此中斷。清掉 meta 鍵，
		// 回到範圍後由 Execute 重啟，不得留下兩條並行的鏈。
		if unit, ok := ctx.World.Units.Get(builder); ok {
			if ctx.World.Distance(builder, site) > unit.BuildRange {
				delete(ctx.Meta(builder), "swing")
				return
			}
		}
		sb.Progress += progressPerSwing
		if sb.Progress >= sb.Required {
			sb.Complete = true
			sb.AssignedBuilder = ecs.None
			if ctx.Bus != nil {
				event.Emit(ctx.Bus, event.BuildingCompleted{
					Site:    site,
					Builder: builder,
					Tick:    ctx.World.Clock.Tick(),
				})
			}
			return
		}
		ctx.Meta(builder)["swing"] = scheduleSwing(ctx, builder, site)
	}, buildSwingSeconds, builder)
}

// findSite 在未完成、未被他人認領的工地中選最近者；等距時 id 最小者獲勝。
func findSite(ctx *behavior.Context, e ecs.EntityID) ecs.EntityID {
	best := ecs.None
	bestDist := 0.0
	for _, id := range ctx.World.Sites.IDs() {
		sb, _ := ctx.World.Sites.Get(id)
		if sb.Complete {
			continue
		}
		if sb.AssignedBuilder.Valid() && sb.AssignedBuilder != e {
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

func metaEntity(m map[string]any, key string) ecs.EntityID {
	if v, ok := m[key]; ok {
		if id, ok := v.(ecs.EntityID); ok {
			return id
		}
	}
	return ecs.None
}
