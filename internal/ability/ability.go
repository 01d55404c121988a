package ability

import (
	"fmt"
	"sort"

	"github.com/warforge/server/internal/behavior"
	"github.com/warforge/server/internal/core/ecs"
)

// Config 技能靜態設定（內容資料）。Priority 只影響樹中的排列，不參與執行。
type Config struct {
	Cooldown   float64 // 秒
	Range      float64
	ManaCost   int
	TargetType string // "enemy" | "ally" | "self"
	CastTime   float64 // 秒；效果經排程延遲投遞
	Priority   int
}

// Ability 技能記錄：單一扁平介面取代繼承階層，以 id 鍵入註冊表。
// CanExecute 必須是無副作用的純查詢；Execute 負責消耗資源、蓋冷卻戳、
// 排程延遲效果。排程回呼必須重新驗證施放者與目標存活 —
// 施放期間任一方死亡時靜默中止。
type Ability struct {
	ID         string
	Config     Config
	CanExecute func(ctx *behavior.Context, caster ecs.EntityID) bool
	Execute    func(ctx *behavior.Context, caster, target ecs.EntityID) *behavior.Result
	OnStart    func(caster ecs.EntityID, ctx *behavior.Context)
	OnEnd      func(caster ecs.EntityID, ctx *behavior.Context)
}

// Registry 扁平 id 鍵入的技能表。啟動時建立，之後唯讀。
type Registry struct {
	byID  map[string]*Ability
	order []string
}

func NewRegistry() *Registry {
	return &Registry{byID: make(map[string]*Ability, 16)}
}

func (r *Registry) Register(a *Ability) error {
	if a.ID == "" {
		return fmt.Errorf("ability: empty id")
	}
	if _, dup := r.byID[a.ID]; dup {
		return fmt.Errorf("ability: duplicate id %q", a.ID)
	}
	r.byID[a.ID] = a
	r.order = append(r.order, a.ID)
	return nil
}

func (r *Registry) Get(id string) (*Ability, bool) {
	a, ok := r.byID[id]
	return a, ok
}

// IDs returns registered ability ids sorted.
func (r *Registry) IDs() []string {
	ids := append([]string(nil), r.order...)
	sort.Strings(ids)
	return ids
}

// Count returns the number of registered abilities.
func (r *Registry) Count() int { return len(r.byID) }

// InstallActions 將每個技能以 "ability:<id>" 名稱掛入行為動作表，
// 讓樹的葉節點可以直接引用。
func (r *Registry) InstallActions(actions *behavior.Actions) error {
	for _, id := range r.IDs() {
		if err := actions.Register(&actionAdapter{ability: r.byID[id]}); err != nil {
			return err
		}
	}
	return nil
}

// actionAdapter 把 Ability 接上 behavior.Action 契約。
// CanExecute 不通過 → 回傳 nil 讓選擇器落到下一個候選。
type actionAdapter struct {
	ability *Ability
}

func (a *actionAdapter) Name() string {
	return "ability:" + a.ability.ID
}

func (a *actionAdapter) Execute(e ecs.EntityID, ctx *behavior.Context) *behavior.Result {
	ab := a.ability
	if ab.CanExecute != nil && !ab.CanExecute(ctx, e) {
		return nil
	}
	target := ResolveTarget(ctx, e, ab.Config)
	if ab.Config.TargetType != "self" && target == ecs.None {
		return nil
	}
	return ab.Execute(ctx, e, target)
}

func (a *actionAdapter) OnStart(e ecs.EntityID, ctx *behavior.Context) {
	if a.ability.OnStart != nil {
		a.ability.OnStart(e, ctx)
	}
}

func (a *actionAdapter) OnEnd(e ecs.EntityID, ctx *behavior.Context) {
	if a.ability.OnEnd != nil {
		a.ability.OnEnd(e, ctx)
	}
}

// ==================== 冷卻（shared 黑板，戰鬥邊界自動歸零）====================

func cooldownKey(id string) string { return "cooldown:" + id }

// CooldownReady 查詢技能是否冷卻完畢。純查詢。
func CooldownReady(ctx *behavior.Context, caster ecs.EntityID, abilityID string) bool {
	v, ok := ctx.Shared(caster)[cooldownKey(abilityID)]
	if !ok {
		return true
	}
	ready, ok := v.(int64)
	if !ok {
		return true
	}
	return ctx.World.Clock.Tick() >= ready
}

// StampCooldown 蓋冷卻戳：記錄下次可用的 tick。
func StampCooldown(ctx *behavior.Context, caster ecs.EntityID, abilityID string, cooldownSeconds float64) {
	ready := ctx.World.Clock.Tick() + ctx.World.Clock.TicksFor(cooldownSeconds)
	ctx.Shared(caster)[cooldownKey(abilityID)] = ready
}

// SpendMana 扣除魔力。不足時回傳 false 且不扣。
func SpendMana(ctx *behavior.Context, caster ecs.EntityID, cost int) bool {
	if cost <= 0 {
		return true
	}
	m, ok := ctx.World.Manas.Get(caster)
	if !ok || m.MP < cost {
		return false
	}
	m.MP -= cost
	return true
}

// HasMana 純查詢魔力是否足夠。
func HasMana(ctx *behavior.Context, caster ecs.EntityID, cost int) bool {
	if cost <= 0 {
		return true
	}
	m, ok := ctx.World.Manas.Get(caster)
	return ok && m.MP >= cost
}
