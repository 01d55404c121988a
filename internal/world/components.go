package world

import "github.com/warforge/server/internal/core/ecs"

// Element is the damage school of an attack or ability effect.
type Element int

const (
	ElementPhysical Element = iota
	ElementFire
	ElementFrost
	ElementLightning
	ElementPoison
	elementCount
)

var elementNames = [elementCount]string{"physical", "fire", "frost", "lightning", "poison"}

func (e Element) String() string {
	if e < 0 || e >= elementCount {
		return "unknown"
	}
	return elementNames[e]
}

// ElementByName resolves a content-data element name; ok=false for unknowns.
func ElementByName(name string) (Element, bool) {
	for i, n := range elementNames {
		if n == name {
			return Element(i), true
		}
	}
	return ElementPhysical, false
}

// DeathState gates damage intake: anything not Alive rejects damage.
type DeathState int

const (
	StateAlive DeathState = iota
	StateDying
	StateDead
)

// Position 位置元件（連續座標，由行為動作直接寫入）。
type Position struct {
	X, Y float64
}

// Health 生命元件。HP 歸零時 State 轉為 Dying，由清理系統轉 Dead。
type Health struct {
	HP    int
	MaxHP int
	State DeathState
}

// Defense 防禦元件：物理傷害扣平坦護甲，屬性傷害按抗性百分比減免。
// Resist 以固定陣列索引（非 map），雜湊與迭代順序才能跨副本一致。
type Defense struct {
	Armor  int
	Resist [elementCount]float64
}

// Mana 魔力元件。技能消耗由 CanExecute 檢查、Execute 扣除。
type Mana struct {
	MP    int
	MaxMP int
}

// Combatant 戰鬥歸屬元件。LastAttacker 供反擊邏輯使用，
// 未受擊時必須是 ecs.None（id 0 是合法實體）。
type Combatant struct {
	Team           int
	LastAttacker   ecs.EntityID
	LastAttackTick int64
}

// NewCombatant returns a Combatant with the attacker sentinel unset.
func NewCombatant(team int) *Combatant {
	return &Combatant{Team: team, LastAttacker: ecs.None, LastAttackTick: -1}
}

// Unit 單位類型元件：行為與戰鬥讀取的靜態屬性（內容資料，非程式碼）。
type Unit struct {
	TypeID        string
	Speed         float64 // 每秒移動距離
	BuildRange    float64
	AttackRange   float64
	AttackDamage  int
	AttackElement Element
}

// AIState 行為樹狀態：根樹與當前動作的節點表索引。
// 只有 BehaviorSystem 可以寫入 Current* 欄位；-1 為閒置哨兵。
type AIState struct {
	RootTree          int
	RootCollection    int
	CurrentAction     int
	CurrentCollection int
}

// NoActionIndex 閒置哨兵：尚未選定任何動作。
const NoActionIndex = -1

// NewAIState returns an AIState pointing at the given root tree, idle.
func NewAIState(collection, tree int) *AIState {
	return &AIState{
		RootTree:          tree,
		RootCollection:    collection,
		CurrentAction:     NoActionIndex,
		CurrentCollection: NoActionIndex,
	}
}

// Incapacitated 外部強制失能（擊暈、浮空等）：存在期間 BehaviorSystem 跳過該實體。
type Incapacitated struct {
	UntilTick int64
}

// PoisonStack 單層毒。層數上限由 combat 套用；最舊層先被逐出。
type PoisonStack struct {
	AppliedTick   int64
	Source        ecs.EntityID
	DamagePerTick int
}

// PoisonState 毒狀態元件：受毒實體的所有存活毒層。
type PoisonState struct {
	Stacks []PoisonStack
}

// Buff 增益/減益：每個 Type 同時至多一個實例，重複施加刷新時間而非疊加。
// Gen 是刷新世代戳，到期回呼憑它自我驗證 —
// 同一 tick 內刷新兩次時 AppliedTick 相同，分不出新舊。
type Buff struct {
	Type        string
	AppliedTick int64
	EndTick     int64
	Stacks      int
	Source      ecs.EntityID
	Gen         int64
}

// BuffState 實體身上所有存活 buff（依施加順序）。
type BuffState struct {
	Active []Buff
}

// BuildSite 建築工地。AssignedBuilder 是單寫者意圖欄位，取代鎖。
type BuildSite struct {
	Progress        int
	Required        int
	AssignedBuilder ecs.EntityID
	Complete        bool
}

// NewBuildSite returns an unclaimed site needing the given progress.
func NewBuildSite(required int) *BuildSite {
	return &BuildSite{Required: required, AssignedBuilder: ecs.None}
}

// Mine 礦脈。CurrentMiner 單寫者意圖欄位；Queue 為等候者（先到先得）。
type Mine struct {
	Reserves     int
	CurrentMiner ecs.EntityID
	Queue        []ecs.EntityID
}

// NewMine returns an unoccupied mine with the given reserves.
func NewMine(reserves int) *Mine {
	return &Mine{Reserves: reserves, CurrentMiner: ecs.None}
}

// Stockpile 資源儲存（採礦產出）。
type Stockpile struct {
	Gold int
}
