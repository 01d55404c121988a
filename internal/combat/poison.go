package combat

import (
	"github.com/warforge/server/internal/core/ecs"
	"github.com/warforge/server/internal/world"
)

// PoisonTickIntervalTicks 毒週期結算間隔（15 tick = 3 秒）。
const PoisonTickIntervalTicks = 15

// addPoisonStack 疊一層毒。超過上限時逐出最舊一層（層刷新），
// 絕不無上限累積、也絕不靜默丟棄新層。回傳疊後層數。
func (d *Damage) addPoisonStack(target, source ecs.EntityID, damagePerTick int) int {
	ps, ok := d.world.Poisons.Get(target)
	if !ok {
		ps = &world.PoisonState{}
		d.world.Poisons.Set(target, ps)
	}
	stack := world.PoisonStack{
		AppliedTick:   d.world.Clock.Tick(),
		Source:        source,
		DamagePerTick: damagePerTick,
	}
	ps.Stacks = append(ps.Stacks, stack)
	if len(ps.Stacks) > MaxPoisonStacks {
		ps.Stacks = ps.Stacks[len(ps.Stacks)-MaxPoisonStacks:]
	}
	return len(ps.Stacks)
}

// PoisonStacks 回傳目標當前毒層數。
func (d *Damage) PoisonStacks(target ecs.EntityID) int {
	if ps, ok := d.world.Poisons.Get(target); ok {
		return len(ps.Stacks)
	}
	return 0
}

// CurePoison 清除目標所有毒層（解毒技能、死亡時呼叫）。
func (d *Damage) CurePoison(target ecs.EntityID) {
	d.world.Poisons.Remove(target)
}

// TickPoison 結算一個實體的毒週期傷害：每層各自扣血，無視護甲。
// 由 PoisonTickSystem 每 PoisonTickIntervalTicks 呼叫一次。
func (d *Damage) TickPoison(target ecs.EntityID) {
	ps, ok := d.world.Poisons.Get(target)
	if !ok || len(ps.Stacks) == 0 {
		return
	}
	hp, ok := d.world.Healths.Get(target)
	if !ok || hp.State != world.StateAlive {
		d.world.Poisons.Remove(target)
		return
	}

	total := 0
	lastSource := ecs.None
	for _, st := range ps.Stacks {
		total += st.DamagePerTick
		lastSource = st.Source
	}
	if total <= 0 {
		return
	}
	hp.HP -= total
	if hp.HP <= 0 {
		hp.HP = 0
		d.kill(target, lastSource)
	}
}
