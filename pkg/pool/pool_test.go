package pool

import (
	"testing"
	"time"
)

// fakeClock advances manually.
type fakeClock struct {
	t time.Time
}

func (f *fakeClock) now() time.Time          { return f.t }
func (f *fakeClock) advance(d time.Duration) { f.t = f.t.Add(d) }

func newTestPool(baseline, interval int, targetRate float64) (*Pool, *fakeClock) {
	clock := &fakeClock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	return New(baseline, interval, targetRate, WithClock(clock.now)), clock
}

func TestBoundsDerivedFromBaseline(t *testing.T) {
	tests := []struct {
		baseline           int
		wantMin, wantMax   int
		wantStart          int
	}{
		{10, 2, 30, 10},
		{1, 2, 3, 2},
		{40, 10, 50, 40},
		{200, 50, 50, 50},
	}
	for _, tt := range tests {
		p, _ := newTestPool(tt.baseline, 10, 0.3)
		if p.Min() != tt.wantMin || p.Max() != tt.wantMax {
			t.Errorf("baseline %d: bounds [%d, %d], want [%d, %d]",
				tt.baseline, p.Min(), p.Max(), tt.wantMin, tt.wantMax)
		}
		if got := p.CurrentWorkers(); got != tt.wantStart {
			t.Errorf("baseline %d: start %d, want %d", tt.baseline, got, tt.wantStart)
		}
	}
}

func TestShrinkOnLowSuccessRate(t *testing.T) {
	p, clock := newTestPool(10, 10, 0.3)

	// All failures: rate 0 < 0.15 threshold.
	for i := 0; i < 10; i++ {
		p.RecordOutcome(false)
	}
	clock.advance(31 * time.Second)

	if got := p.CurrentWorkers(); got != 8 {
		t.Errorf("expected shrink 10 -> 8, got %d", got)
	}
}

func TestGrowOnHighSuccessRate(t *testing.T) {
	p, clock := newTestPool(10, 10, 0.3)

	// All successes: rate 1.0 > 0.36 threshold.
	for i := 0; i < 10; i++ {
		p.RecordOutcome(true)
	}
	clock.advance(31 * time.Second)

	if got := p.CurrentWorkers(); got != 12 {
		t.Errorf("expected growth 10 -> 12, got %d", got)
	}
}

func TestHoldInAcceptableBand(t *testing.T) {
	p, clock := newTestPool(10, 10, 0.3)

	// 3/10 = exactly the target rate: hold.
	for i := 0; i < 10; i++ {
		p.RecordOutcome(i < 3)
	}
	clock.advance(31 * time.Second)

	if got := p.CurrentWorkers(); got != 10 {
		t.Errorf("expected hold at 10, got %d", got)
	}
}

func TestCooldownPreventsAdaptation(t *testing.T) {
	p, clock := newTestPool(10, 10, 0.3)

	for i := 0; i < 10; i++ {
		p.RecordOutcome(false)
	}
	// Interval reached but not the 30s cooldown.
	clock.advance(10 * time.Second)

	if got := p.CurrentWorkers(); got != 10 {
		t.Errorf("expected no adaptation inside cooldown, got %d", got)
	}
}

func TestWorkersAlwaysWithinBounds(t *testing.T) {
	p, clock := newTestPool(10, 5, 0.3)

	for i := 0; i < 200; i++ {
		p.RecordOutcome(false)
		clock.advance(7 * time.Second)
		if got := p.CurrentWorkers(); got < p.Min() || got > p.Max() {
			t.Fatalf("workers %d outside [%d, %d] after %d completions", got, p.Min(), p.Max(), i+1)
		}
	}
	if got := p.CurrentWorkers(); got != p.Min() {
		t.Errorf("expected floor at min %d under total failure, got %d", p.Min(), got)
	}
}

func TestStopLatch(t *testing.T) {
	p, _ := newTestPool(10, 10, 0.3)
	if p.ShouldStop() {
		t.Error("expected fresh pool not stopped")
	}
	p.SignalStop()
	p.SignalStop() // idempotent
	if !p.ShouldStop() {
		t.Error("expected stop flag latched")
	}
}

func TestStats(t *testing.T) {
	p, _ := newTestPool(10, 10, 0.3)
	p.RecordOutcome(true)
	p.RecordOutcome(false)
	p.RecordOutcome(false)

	s := p.Stats()
	if s.CompletedTasks != 3 || s.SuccessfulTasks != 1 || s.FailedTasks != 2 {
		t.Errorf("unexpected stats %+v", s)
	}
	if s.SuccessRate < 0.33 || s.SuccessRate > 0.34 {
		t.Errorf("unexpected success rate %v", s.SuccessRate)
	}
}
