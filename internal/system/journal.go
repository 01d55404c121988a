package system

import (
	"context"
	"time"

	"go.uber.org/zap"

	coresys "github.com/warforge/server/internal/core/system"
	"github.com/warforge/server/internal/persist"
	"github.com/warforge/server/internal/world"
)

const (
	journalFlushSize  = 50
	journalHashEvery  = 5 // ticks between recorded digests
	journalFlushLimit = 3 * time.Second
)

// JournalSystem 戰鬥日誌（Phase 4 持久化）：每隔固定 tick 記錄一次世界狀態雜湊，
// 批次寫入資料庫。跑模擬不需要資料庫，repo 為 nil 時本系統不做事。
type JournalSystem struct {
	world *world.State
	repo  *persist.JournalRepo
	log   *zap.Logger

	battleID int64
	buf      []persist.TickHash
}

func NewJournalSystem(ws *world.State, repo *persist.JournalRepo, log *zap.Logger) *JournalSystem {
	return &JournalSystem{world: ws, repo: repo, log: log}
}

func (s *JournalSystem) Phase() coresys.Phase { return coresys.PhasePersist }

func (s *JournalSystem) Update() {
	if s.repo == nil || s.battleID == 0 {
		return
	}
	if s.world.Phase != world.PhaseBattle {
		return
	}
	tick := s.world.Clock.Tick()
	if tick%journalHashEvery != 0 {
		return
	}
	hash := s.world.StateHash()
	s.buf = append(s.buf, persist.TickHash{
		BattleID: s.battleID,
		Tick:     tick,
		Hash:     hash[:],
	})
	if len(s.buf) >= journalFlushSize {
		s.Flush()
	}
}

// OnBattleStart opens a new battle row. Failures are logged and the journal
// stays disabled for this battle.
func (s *JournalSystem) OnBattleStart(seed int64) {
	if s.repo == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), journalFlushLimit)
	defer cancel()
	id, err := s.repo.OpenBattle(ctx, seed)
	if err != nil {
		s.log.Error("開啟戰鬥日誌失敗", zap.Error(err))
		s.battleID = 0
		return
	}
	s.battleID = id
	s.buf = s.buf[:0]
}

// OnBattleEnd flushes the remaining digests and closes the battle row.
func (s *JournalSystem) OnBattleEnd(endTick int64, winnerTeam int) {
	if s.repo == nil || s.battleID == 0 {
		return
	}
	s.Flush()
	ctx, cancel := context.WithTimeout(context.Background(), journalFlushLimit)
	defer cancel()
	if err := s.repo.CloseBattle(ctx, s.battleID, endTick, winnerTeam); err != nil {
		s.log.Error("關閉戰鬥日誌失敗", zap.Error(err))
	}
	s.battleID = 0
}

// Flush writes the buffered digests. On failure the batch is kept and
// retried on the next flush.
func (s *JournalSystem) Flush() {
	if s.repo == nil || len(s.buf) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), journalFlushLimit)
	defer cancel()
	if err := s.repo.WriteTickHashes(ctx, s.buf); err != nil {
		s.log.Error("寫入戰鬥日誌失敗", zap.Error(err), zap.Int("pending", len(s.buf)))
		return
	}
	s.buf = s.buf[:0]
}
