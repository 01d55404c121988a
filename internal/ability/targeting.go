package ability

import (
	"github.com/warforge/server/internal/behavior"
	"github.com/warforge/server/internal/core/ecs"
)

// 目標選擇輔助。契約：候選清單先依 id 升冪排序，距離比較一律用嚴格小於 —
// 等距時排序靠前（id 最小）者獲勝。這個決勝規則是跨副本契約，不是巧合。

// candidates 回傳所有存活、有位置與陣營的實體，id 升冪。
func candidates(ctx *behavior.Context) []ecs.EntityID {
	ids := ecs.EntitiesWith2(ctx.World.Positions, ctx.World.Combatants)
	out := ids[:0]
	for _, id := range ids {
		if ctx.World.IsAlive(id) {
			out = append(out, id)
		}
	}
	return out
}

// NearestEnemy 回傳最近的敵方實體；無敵人時 (ecs.None, false)。
func NearestEnemy(ctx *behavior.Context, caster ecs.EntityID) (ecs.EntityID, bool) {
	casterTeam, ok := teamOf(ctx, caster)
	if !ok {
		return ecs.None, false
	}
	best := ecs.None
	bestDist := 0.0
	for _, id := range candidates(ctx) {
		if id == caster {
			continue
		}
		if t, _ := teamOf(ctx, id); t == casterTeam {
			continue
		}
		d := ctx.World.Distance(caster, id)
		if best == ecs.None || d < bestDist {
			best = id
			bestDist = d
		}
	}
	return best, best != ecs.None
}

// NearestEnemyWithin 最近且在 radius 內的敵人。
func NearestEnemyWithin(ctx *behavior.Context, caster ecs.EntityID, radius float64) (ecs.EntityID, bool) {
	id, ok := NearestEnemy(ctx, caster)
	if !ok || ctx.World.Distance(caster, id) > radius {
		return ecs.None, false
	}
	return id, true
}

// EnemiesWithin 回傳 radius 內所有敵人，id 升冪。
func EnemiesWithin(ctx *behavior.Context, caster ecs.EntityID, radius float64) []ecs.EntityID {
	casterTeam, ok := teamOf(ctx, caster)
	if !ok {
		return nil
	}
	var out []ecs.EntityID
	for _, id := range candidates(ctx) {
		if id == caster {
			continue
		}
		if t, _ := teamOf(ctx, id); t == casterTeam {
			continue
		}
		if ctx.World.Distance(caster, id) <= radius {
			out = append(out, id)
		}
	}
	return out
}

// AlliesWithin 回傳 radius 內所有友方（不含自己），id 升冪。
func AlliesWithin(ctx *behavior.Context, caster ecs.EntityID, radius float64) []ecs.EntityID {
	casterTeam, ok := teamOf(ctx, caster)
	if !ok {
		return nil
	}
	var out []ecs.EntityID
	for _, id := range candidates(ctx) {
		if id == caster {
			continue
		}
		if t, _ := teamOf(ctx, id); t != casterTeam {
			continue
		}
		if ctx.World.Distance(caster, id) <= radius {
			out = append(out, id)
		}
	}
	return out
}

// MostWoundedAllyWithin 回傳 radius 內失血最多（MaxHP−HP 最大）的友方，
// 包含施放者本人。平手時 id 最小者獲勝（嚴格大於比較）。
func MostWoundedAllyWithin(ctx *behavior.Context, caster ecs.EntityID, radius float64) (ecs.EntityID, bool) {
	casterTeam, ok := teamOf(ctx, caster)
	if !ok {
		return ecs.None, false
	}
	best := ecs.None
	bestMissing := 0
	for _, id := range candidates(ctx) {
		if t, _ := teamOf(ctx, id); t != casterTeam {
			continue
		}
		if id != caster && ctx.World.Distance(caster, id) > radius {
			continue
		}
		hp, ok := ctx.World.Healths.Get(id)
		if !ok {
			continue
		}
		missing := hp.MaxHP - hp.HP
		if missing <= 0 {
			continue
		}
		if best == ecs.None || missing > bestMissing {
			best = id
			bestMissing = missing
		}
	}
	return best, best != ecs.None
}

// ResolveTarget 依 Config 的 TargetType 與 Range 選出目標。
func ResolveTarget(ctx *behavior.Context, caster ecs.EntityID, cfg Config) ecs.EntityID {
	switch cfg.TargetType {
	case "self":
		return caster
	case "ally":
		if id, ok := MostWoundedAllyWithin(ctx, caster, cfg.Range); ok {
			return id
		}
	default: // "enemy"
		if id, ok := NearestEnemyWithin(ctx, caster, cfg.Range); ok {
			return id
		}
	}
	return ecs.None
}

func teamOf(ctx *behavior.Context, id ecs.EntityID) (int, bool) {
	if c, ok := ctx.World.Combatants.Get(id); ok {
		return c.Team, true
	}
	return 0, false
}
