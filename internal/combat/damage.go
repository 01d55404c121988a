package combat

import (
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/warforge/server/internal/core/ecs"
	"github.com/warforge/server/internal/core/event"
	"github.com/warforge/server/internal/core/sched"
	"github.com/warforge/server/internal/world"
)

const (
	// MinDamage 物理/屬性傷害下限：護甲再高也至少承受 1 點。
	MinDamage = 1
	// MaxResistance 屬性抗性上限：套用前夾在 [0, 0.9]。
	MaxResistance = 0.9
	// SplashFalloffFloor 濺射線性衰減下限（距離邊緣仍有 30%）。
	SplashFalloffFloor = 0.3
	// MaxPoisonStacks 毒層數上限；超過時逐出最舊一層（層刷新）。
	MaxPoisonStacks = 10
	// corpseDelaySeconds 死亡實體延遲移除（沿用 10 秒屍體停留）。
	corpseDelaySeconds = 10.0
	// resistEpsilon 取整前的浮點補償：1−0.9 在 float64 是 0.0999…98，
	// 直接 Floor 會把 100×0.1 算成 9 而非 10。
	resistEpsilon = 1e-9
)

// Result 單次傷害/治療結算的回傳值。
type Result struct {
	Damage    int
	Mitigated int
	Fatal     bool
	Prevented bool
	IsPoison  bool
	Stacks    int
}

// Damage 傷害結算系統：單次套用的純結算（減免、疊毒、濺射、延遲投遞）。
// 不做持續狀態管理 — 毒的週期傷害由 PoisonTickSystem 處理。
type Damage struct {
	world *world.State
	sched *sched.Scheduler
	bus   *event.Bus
	log   *zap.Logger
}

func NewDamage(ws *world.State, sc *sched.Scheduler, bus *event.Bus, log *zap.Logger) *Damage {
	if log == nil {
		log = zap.NewNop()
	}
	return &Damage{world: ws, sched: sc, bus: bus, log: log}
}

// ApplyDamage 對目標套用一次傷害。
// 死亡/垂死目標拒絕傷害（Prevented=true, Damage=0）。
// 物理：扣平坦護甲，下限 MinDamage。
// 屬性：抗性夾至 [0, 0.9] 後按百分比減免，結果向下取整。
// 毒：不直接扣血，改為疊一層毒（上限 10，最舊先逐出）。
func (d *Damage) ApplyDamage(attacker, target ecs.EntityID, amount int, elem world.Element) Result {
	hp, ok := d.world.Healths.Get(target)
	if !ok || !d.world.Exists(target) {
		return Result{Prevented: true}
	}
	if hp.State != world.StateAlive {
		return Result{Prevented: true}
	}
	if amount <= 0 {
		return Result{Prevented: true}
	}

	// 每次非被阻止的命中都記錄最後攻擊者（反擊邏輯用）。
	if c, ok := d.world.Combatants.Get(target); ok {
		c.LastAttacker = attacker
		c.LastAttackTick = d.world.Clock.Tick()
	}

	// 毒：疊層，不扣血。實際 DoT 由 PoisonTickSystem 週期結算。
	if elem == world.ElementPoison {
		stacks := d.addPoisonStack(target, attacker, amount)
		return Result{IsPoison: true, Stacks: stacks}
	}

	dealt, mitigated := mitigate(d.world, target, amount, elem)
	hp.HP -= dealt

	res := Result{Damage: dealt, Mitigated: mitigated}
	if hp.HP <= 0 {
		hp.HP = 0
		res.Fatal = true
		d.kill(target, attacker)
	}
	return res
}

// mitigate 計算減免後傷害與被減免量。
func mitigate(ws *world.State, target ecs.EntityID, amount int, elem world.Element) (dealt, mitigated int) {
	def, _ := ws.Defenses.Get(target)
	if elem == world.ElementPhysical {
		armor := 0
		if def != nil {
			armor = def.Armor
		}
		dealt = amount - armor
		if dealt < MinDamage {
			dealt = MinDamage
		}
		return dealt, amount - dealt
	}

	r := 0.0
	if def != nil {
		r = def.Resist[elem]
	}
	if r < 0 {
		r = 0
	}
	if r > MaxResistance {
		r = MaxResistance
	}
	dealt = int(math.Floor(float64(amount)*(1-r) + resistEpsilon))
	if dealt < MinDamage {
		dealt = MinDamage
	}
	return dealt, amount - dealt
}

// kill 轉入垂死狀態：發事件、清毒、排程屍體移除。
func (d *Damage) kill(target, attacker ecs.EntityID) {
	hp, ok := d.world.Healths.Get(target)
	if !ok {
		return
	}
	hp.State = world.StateDying
	d.world.Poisons.Remove(target)

	unitType := ""
	if u, ok := d.world.Units.Get(target); ok {
		unitType = u.TypeID
	}
	if d.bus != nil {
		event.Emit(d.bus, event.EntityKilled{
			Victim:   target,
			Killer:   attacker,
			Tick:     d.world.Clock.Tick(),
			Fatal:    true,
			UnitType: unitType,
		})
	}
	d.log.Info(fmt.Sprintf("實體陣亡  目標=%d  攻擊者=%d  單位=%s", target, attacker, unitType),
		zap.Int64("tick", d.world.Clock.Tick()))

	// 屍體延遲移除；回呼需自我驗證（期間可能已被外部移除）。
	victim := target
	d.sched.Schedule(func() {
		if !d.world.Exists(victim) {
			return
		}
		if h, ok := d.world.Healths.Get(victim); ok && h.State == world.StateAlive {
			return // 期間被復活
		}
		d.world.MarkForDestruction(victim)
	}, corpseDelaySeconds, victim)
}

// ApplySplashDamage 對原點半徑內所有存活非友方實體造成線性衰減傷害。
// 候選清單先依 id 升冪排序 — 結算順序是跨副本契約。
func (d *Damage) ApplySplashDamage(attacker ecs.EntityID, origin world.Position, base int, elem world.Element, radius float64) []Result {
	if radius <= 0 || base <= 0 {
		return nil
	}
	attackerTeam, hasTeam := teamOf(d.world, attacker)

	results := make([]Result, 0, 4)
	for _, id := range ecs.EntitiesWith2(d.world.Positions, d.world.Healths) {
		if !d.world.IsAlive(id) {
			continue
		}
		if hasTeam {
			if t, ok := teamOf(d.world, id); ok && t == attackerTeam {
				continue // 友方不受濺射
			}
		}
		dist := d.world.DistanceFrom(origin, id)
		if dist > radius {
			continue
		}
		mult := 1 - dist/radius
		if mult < SplashFalloffFloor {
			mult = SplashFalloffFloor
		}
		dmg := int(math.Floor(float64(base) * mult))
		if dmg <= 0 {
			continue
		}
		results = append(results, d.ApplyDamage(attacker, id, dmg, elem))
	}
	return results
}

// ScheduleDamage 延遲傷害投遞：到期回呼先重新驗證雙方存活再委派 ApplyDamage。
// 施放期間任一方死亡 → 靜默中止。
func (d *Damage) ScheduleDamage(attacker, target ecs.EntityID, amount int, elem world.Element, delaySeconds float64) int64 {
	return d.sched.Schedule(func() {
		if !d.world.Exists(attacker) || !d.world.IsAlive(target) {
			return
		}
		d.ApplyDamage(attacker, target, amount, elem)
	}, delaySeconds, attacker)
}

// Heal 治療：死亡目標不可治療，HP 不超過上限。
func (d *Damage) Heal(source, target ecs.EntityID, amount int) Result {
	hp, ok := d.world.Healths.Get(target)
	if !ok || !d.world.IsAlive(target) || amount <= 0 {
		return Result{Prevented: true}
	}
	healed := amount
	if hp.HP+healed > hp.MaxHP {
		healed = hp.MaxHP - hp.HP
	}
	hp.HP += healed
	return Result{Damage: -healed}
}

func teamOf(ws *world.State, id ecs.EntityID) (int, bool) {
	if c, ok := ws.Combatants.Get(id); ok {
		return c.Team, true
	}
	return 0, false
}
