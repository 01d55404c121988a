package event

import "github.com/warforge/server/internal/core/ecs"

// Battle event types consumed by the journal and retaliation logic.

type EntityKilled struct {
	Victim   ecs.EntityID
	Killer   ecs.EntityID
	Tick     int64
	Fatal    bool
	UnitType string
}

type BuildingCompleted struct {
	Site    ecs.EntityID
	Builder ecs.EntityID
	Tick    int64
}

type BattleEnded struct {
	WinningTeam int
	Tick        int64
}
