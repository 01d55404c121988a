package world

import (
	"encoding/binary"
	"math"

	"golang.org/x/crypto/blake2b"
)

// StateHash digests the full component state in canonical order: ascending
// entity id, fixed component order, fixed field order, little-endian. Two
// replicas that ran the same inputs must produce the same digest every tick;
// a mismatch is a desync and the journal keeps the audit trail.
func (s *State) StateHash() [32]byte {
	h, _ := blake2b.New256(nil)
	var buf [8]byte

	writeI64 := func(v int64) {
		binary.LittleEndian.PutUint64(buf[:], uint64(v))
		h.Write(buf[:])
	}
	writeF64 := func(v float64) {
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(v))
		h.Write(buf[:])
	}

	writeI64(s.Clock.Tick())
	writeI64(int64(s.Phase))

	for _, id := range s.pool.AliveIDs() {
		writeI64(int64(id))
		if p, ok := s.Positions.Get(id); ok {
			writeF64(p.X)
			writeF64(p.Y)
		}
		if hp, ok := s.Healths.Get(id); ok {
			writeI64(int64(hp.HP))
			writeI64(int64(hp.MaxHP))
			writeI64(int64(hp.State))
		}
		if d, ok := s.Defenses.Get(id); ok {
			writeI64(int64(d.Armor))
			for _, r := range d.Resist {
				writeF64(r)
			}
		}
		if m, ok := s.Manas.Get(id); ok {
			writeI64(int64(m.MP))
			writeI64(int64(m.MaxMP))
		}
		if c, ok := s.Combatants.Get(id); ok {
			writeI64(int64(c.Team))
			writeI64(int64(c.LastAttacker))
			writeI64(c.LastAttackTick)
		}
		if a, ok := s.AIStates.Get(id); ok {
			writeI64(int64(a.RootCollection))
			writeI64(int64(a.RootTree))
			writeI64(int64(a.CurrentCollection))
			writeI64(int64(a.CurrentAction))
		}
		if p, ok := s.Poisons.Get(id); ok {
			writeI64(int64(len(p.Stacks)))
			for _, st := range p.Stacks {
				writeI64(st.AppliedTick)
				writeI64(int64(st.Source))
				writeI64(int64(st.DamagePerTick))
			}
		}
		if b, ok := s.Buffs.Get(id); ok {
			writeI64(int64(len(b.Active)))
			for _, bf := range b.Active {
				h.Write([]byte(bf.Type))
				writeI64(bf.AppliedTick)
				writeI64(bf.EndTick)
				writeI64(int64(bf.Stacks))
				writeI64(int64(bf.Source))
			}
		}
		if site, ok := s.Sites.Get(id); ok {
			writeI64(int64(site.Progress))
			writeI64(int64(site.Required))
			writeI64(int64(site.AssignedBuilder))
			if site.Complete {
				writeI64(1)
			} else {
				writeI64(0)
			}
		}
		if m, ok := s.Mines.Get(id); ok {
			writeI64(int64(m.Reserves))
			writeI64(int64(m.CurrentMiner))
			writeI64(int64(len(m.Queue)))
			for _, q := range m.Queue {
				writeI64(int64(q))
			}
		}
		if st, ok := s.Stockpiles.Get(id); ok {
			writeI64(int64(st.Gold))
		}
	}

	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}
