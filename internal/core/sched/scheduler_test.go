package sched

import (
	"testing"

	"github.com/warforge/server/internal/core/ecs"
)

func advanceAndDrain(c *Clock, s *Scheduler, ticks int) {
	for i := 0; i < ticks; i++ {
		c.Advance()
		s.RunDue()
	}
}

func TestScheduleOrdering(t *testing.T) {
	clock := NewClock(5)
	s := New(clock, nil)

	var fired []string
	s.ScheduleTicks(func() { fired = append(fired, "A") }, 1, ecs.None)
	s.ScheduleTicks(func() { fired = append(fired, "B") }, 1, ecs.None)
	s.ScheduleTicks(func() { fired = append(fired, "C") }, 2, ecs.None)

	advanceAndDrain(clock, s, 2)

	want := "ABC"
	got := ""
	for _, f := range fired {
		got += f
	}
	if got != want {
		t.Fatalf("fire order = %q, want %q", got, want)
	}
}

func TestScheduleSecondsRoundsUp(t *testing.T) {
	tests := []struct {
		name    string
		seconds float64
		ticks   int64
	}{
		{"exact second", 1.0, 5},
		{"fraction rounds up", 0.1, 1},
		{"just over a tick", 0.21, 2},
		{"zero", 0, 0},
		{"negative clamps", -3, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clock := NewClock(5)
			if got := clock.TicksFor(tt.seconds); got != tt.ticks {
				t.Fatalf("TicksFor(%v) = %d, want %d", tt.seconds, got, tt.ticks)
			}
		})
	}
}

func TestCancel(t *testing.T) {
	clock := NewClock(5)
	s := New(clock, nil)

	fired := false
	id := s.ScheduleTicks(func() { fired = true }, 1, ecs.None)
	s.Cancel(id)
	advanceAndDrain(clock, s, 2)

	if fired {
		t.Fatal("cancelled entry fired")
	}
	if s.Pending() != 0 {
		t.Fatalf("pending = %d, want 0", s.Pending())
	}

	// Cancelling an unknown or already-fired id is a no-op.
	s.Cancel(9999)
	s.Cancel(id)
}

func TestCancelOwned(t *testing.T) {
	clock := NewClock(5)
	s := New(clock, nil)

	owner := ecs.EntityID(7)
	other := ecs.EntityID(8)
	var fired []ecs.EntityID
	s.ScheduleTicks(func() { fired = append(fired, owner) }, 1, owner)
	s.ScheduleTicks(func() { fired = append(fired, owner) }, 2, owner)
	s.ScheduleTicks(func() { fired = append(fired, other) }, 1, other)

	s.CancelOwned(owner)
	advanceAndDrain(clock, s, 3)

	if len(fired) != 1 || fired[0] != other {
		t.Fatalf("fired = %v, want only entries of entity %d", fired, other)
	}
}

func TestZeroDelayScheduledMidDrainFiresSameDrain(t *testing.T) {
	clock := NewClock(5)
	s := New(clock, nil)

	var fired []string
	s.ScheduleTicks(func() {
		fired = append(fired, "outer")
		s.ScheduleTicks(func() { fired = append(fired, "inner") }, 0, ecs.None)
	}, 1, ecs.None)
	s.ScheduleTicks(func() { fired = append(fired, "peer") }, 1, ecs.None)

	advanceAndDrain(clock, s, 1)

	// inner is due now but was inserted after everything already due,
	// so it runs last in this same drain.
	want := []string{"outer", "peer", "inner"}
	if len(fired) != len(want) {
		t.Fatalf("fired = %v, want %v", fired, want)
	}
	for i := range want {
		if fired[i] != want[i] {
			t.Fatalf("fired = %v, want %v", fired, want)
		}
	}
}

func TestFutureEntryScheduledMidDrainWaits(t *testing.T) {
	clock := NewClock(5)
	s := New(clock, nil)

	var fired []string
	s.ScheduleTicks(func() {
		fired = append(fired, "first")
		s.ScheduleTicks(func() { fired = append(fired, "later") }, 1, ecs.None)
	}, 1, ecs.None)

	advanceAndDrain(clock, s, 1)
	if len(fired) != 1 || fired[0] != "first" {
		t.Fatalf("after tick 1: fired = %v", fired)
	}
	advanceAndDrain(clock, s, 1)
	if len(fired) != 2 || fired[1] != "later" {
		t.Fatalf("after tick 2: fired = %v", fired)
	}
}

func TestReset(t *testing.T) {
	clock := NewClock(5)
	s := New(clock, nil)

	fired := false
	s.ScheduleTicks(func() { fired = true }, 1, ecs.None)
	s.Reset()
	advanceAndDrain(clock, s, 3)

	if fired {
		t.Fatal("entry survived Reset")
	}
	if s.Pending() != 0 {
		t.Fatalf("pending = %d after reset", s.Pending())
	}
}
