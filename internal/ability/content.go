package ability

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/warforge/server/internal/behavior"
	"github.com/warforge/server/internal/core/ecs"
	"github.com/warforge/server/internal/scripting"
	"github.com/warforge/server/internal/world"
)

// BuildFromDefs 把 Lua 內容定義轉成技能記錄並註冊。
// 所有效果共用同一套施放骨架：純 CanExecute（冷卻+魔力）→ 扣資源 →
// 蓋冷卻戳 → 經排程在 CastTime 後投遞效果，回呼重新驗證存活。
func BuildFromDefs(defs []scripting.AbilityDef, reg *Registry, log *zap.Logger) error {
	if log == nil {
		log = zap.NewNop()
	}
	for _, def := range defs {
		a, err := buildOne(def, log)
		if err != nil {
			return err
		}
		if err := reg.Register(a); err != nil {
			return err
		}
	}
	return nil
}

func buildOne(def scripting.AbilityDef, log *zap.Logger) (*Ability, error) {
	cfg := Config{
		Cooldown:   def.Cooldown,
		Range:      def.Range,
		ManaCost:   def.ManaCost,
		TargetType: def.TargetType,
		CastTime:   def.CastTime,
		Priority:   def.Priority,
	}

	elem := world.ElementPhysical
	if def.Element != "" {
		e, ok := world.ElementByName(def.Element)
		if !ok {
			return nil, fmt.Errorf("ability %q: unknown element %q", def.ID, def.Element)
		}
		elem = e
	}
	if def.Effect == "poison" {
		elem = world.ElementPoison
	}

	id := def.ID
	effect := def.Effect
	amount := def.Amount
	radius := def.Radius
	duration := def.Duration
	buffType := def.BuffType

	switch effect {
	case "strike", "poison", "splash", "heal", "buff":
	default:
		return nil, fmt.Errorf("ability %q: unknown effect %q", id, effect)
	}
	if effect == "buff" && buffType == "" {
		return nil, fmt.Errorf("ability %q: buff effect without buff type", id)
	}

	return &Ability{
		ID:     id,
		Config: cfg,
		CanExecute: func(ctx *behavior.Context, caster ecs.EntityID) bool {
			return CooldownReady(ctx, caster, id) && HasMana(ctx, caster, cfg.ManaCost)
		},
		Execute: func(ctx *behavior.Context, caster, target ecs.EntityID) *behavior.Result {
			if !SpendMana(ctx, caster, cfg.ManaCost) {
				return behavior.Fail()
			}
			StampCooldown(ctx, caster, id, cfg.Cooldown)

			switch effect {
			case "strike", "poison":
				ctx.Damage.ScheduleDamage(caster, target, amount, elem, cfg.CastTime)

			case "splash":
				ctx.Sched.Schedule(func() {
					// 施放期間施放者或目標死亡 → 靜默中止。
					if !ctx.World.IsAlive(caster) || !ctx.World.IsAlive(target) {
						return
					}
					origin, ok := ctx.World.Positions.Get(target)
					if !ok {
						return
					}
					ctx.Damage.ApplySplashDamage(caster, *origin, amount, elem, radius)
				}, cfg.CastTime, caster)

			case "heal":
				ctx.Sched.Schedule(func() {
					if !ctx.World.IsAlive(caster) || !ctx.World.IsAlive(target) {
						return
					}
					ctx.Damage.Heal(caster, target, amount)
				}, cfg.CastTime, caster)

			case "buff":
				ctx.Sched.Schedule(func() {
					if !ctx.World.IsAlive(caster) || !ctx.World.IsAlive(target) {
						return
					}
					ctx.Buffs.Apply(target, buffType, duration, caster)
				}, cfg.CastTime, caster)
			}

			ctx.Log.Debug("ability cast",
				zap.String("ability", id),
				zap.Int64("caster", int64(caster)),
				zap.Int64("target", int64(target)),
				zap.Int64("tick", ctx.World.Clock.Tick()))

			return behavior.Success(map[string]any{
				"ability": id,
				"target":  target,
				"castAt":  ctx.World.Clock.Tick(),
			})
		},
	}, nil
}
