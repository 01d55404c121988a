package persist

import (
	"context"
	"fmt"
)

// TickHash is one per-tick state digest row.
type TickHash struct {
	BattleID int64
	Tick     int64
	Hash     []byte
}

type JournalRepo struct {
	db *DB
}

func NewJournalRepo(db *DB) *JournalRepo {
	return &JournalRepo{db: db}
}

// OpenBattle inserts a battle row and returns its id.
func (r *JournalRepo) OpenBattle(ctx context.Context, seed int64) (int64, error) {
	var id int64
	err := r.db.Pool.QueryRow(ctx,
		`INSERT INTO battle (seed) VALUES ($1) RETURNING id`,
		seed,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("journal open battle: %w", err)
	}
	return id, nil
}

// CloseBattle records the final outcome of a battle.
func (r *JournalRepo) CloseBattle(ctx context.Context, battleID, endTick int64, winnerTeam int) error {
	_, err := r.db.Pool.Exec(ctx,
		`UPDATE battle SET ended_at = now(), end_tick = $2, winner_team = $3 WHERE id = $1`,
		battleID, endTick, winnerTeam,
	)
	if err != nil {
		return fmt.Errorf("journal close battle: %w", err)
	}
	return nil
}

// WriteTickHashes atomically writes a batch of tick digests in a single
// transaction. Returns nil on success. If it fails, the caller keeps the
// batch and retries on the next flush.
func (r *JournalRepo) WriteTickHashes(ctx context.Context, entries []TickHash) error {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("journal begin: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, e := range entries {
		if _, err := tx.Exec(ctx,
			`INSERT INTO tick_hash (battle_id, tick, state_hash)
			 VALUES ($1, $2, $3)
			 ON CONFLICT (battle_id, tick) DO NOTHING`,
			e.BattleID, e.Tick, e.Hash,
		); err != nil {
			return fmt.Errorf("journal insert: %w", err)
		}
	}

	return tx.Commit(ctx)
}
