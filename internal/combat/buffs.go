package combat

import (
	"go.uber.org/zap"

	"github.com/warforge/server/internal/core/ecs"
	"github.com/warforge/server/internal/core/sched"
	"github.com/warforge/server/internal/world"
)

// Buffs 增益管理：每個 buffType 同時至多一個存活實例。
// 重複施加刷新 EndTick/AppliedTick（非疊加）；疊加式效果（毒）走毒層系統。
// 到期由排程項驅動，回呼以單調遞增的世代戳自我驗證 —
// 被刷新過的 buff 其舊到期回呼必須靜默失效，同 tick 刷新也一樣。
type Buffs struct {
	world *world.State
	sched *sched.Scheduler
	log   *zap.Logger
	gen   int64
}

func NewBuffs(ws *world.State, sc *sched.Scheduler, log *zap.Logger) *Buffs {
	if log == nil {
		log = zap.NewNop()
	}
	return &Buffs{world: ws, sched: sc, log: log}
}

// Apply 施加或刷新一個 buff。回傳刷新前是否已存在。
func (b *Buffs) Apply(target ecs.EntityID, buffType string, durationSeconds float64, source ecs.EntityID) bool {
	if !b.world.IsAlive(target) || buffType == "" {
		return false
	}
	bs, ok := b.world.Buffs.Get(target)
	if !ok {
		bs = &world.BuffState{}
		b.world.Buffs.Set(target, bs)
	}

	now := b.world.Clock.Tick()
	end := now + b.world.Clock.TicksFor(durationSeconds)
	b.gen++
	gen := b.gen

	for i := range bs.Active {
		if bs.Active[i].Type == buffType {
			// 刷新：更新時間戳與世代，不疊加。舊到期回呼因世代不符而失效。
			bs.Active[i].AppliedTick = now
			bs.Active[i].EndTick = end
			bs.Active[i].Source = source
			bs.Active[i].Gen = gen
			b.scheduleExpiry(target, buffType, gen, durationSeconds)
			return true
		}
	}

	bs.Active = append(bs.Active, world.Buff{
		Type:        buffType,
		AppliedTick: now,
		EndTick:     end,
		Stacks:      1,
		Source:      source,
		Gen:         gen,
	})
	b.scheduleExpiry(target, buffType, gen, durationSeconds)
	return false
}

func (b *Buffs) scheduleExpiry(target ecs.EntityID, buffType string, gen int64, durationSeconds float64) {
	b.sched.Schedule(func() {
		bs, ok := b.world.Buffs.Get(target)
		if !ok {
			return
		}
		for i := range bs.Active {
			if bs.Active[i].Type == buffType {
				if bs.Active[i].Gen != gen {
					return // 期間被刷新，本回呼過期
				}
				bs.Active = append(bs.Active[:i], bs.Active[i+1:]...)
				return
			}
		}
	}, durationSeconds, target)
}

// Has 查詢目標是否持有指定 buff。
func (b *Buffs) Has(target ecs.EntityID, buffType string) bool {
	bs, ok := b.world.Buffs.Get(target)
	if !ok {
		return false
	}
	for _, bf := range bs.Active {
		if bf.Type == buffType {
			return true
		}
	}
	return false
}

// Remove 立即移除指定 buff（驅散）。
func (b *Buffs) Remove(target ecs.EntityID, buffType string) {
	bs, ok := b.world.Buffs.Get(target)
	if !ok {
		return
	}
	for i := range bs.Active {
		if bs.Active[i].Type == buffType {
			bs.Active = append(bs.Active[:i], bs.Active[i+1:]...)
			return
		}
	}
}

// ClearAll 清空目標全部 buff（戰鬥結束、死亡時）。
func (b *Buffs) ClearAll(target ecs.EntityID) {
	b.world.Buffs.Remove(target)
}
