// Package pool provides an adaptive worker-count controller that raises or
// lowers target concurrency based on a rolling acceptance rate.
package pool

import (
	"log"
	"math"
	"sync"
	"time"

	"github.com/mathforge-ai/mathforge/pkg/models"
)

// adaptCooldown is the minimum wall-clock gap between adaptations. Together
// with the completion interval it damps oscillation.
const adaptCooldown = 30 * time.Second

// Pool tracks a target worker count bounded to [min, max]. It is a damped
// proportional controller: shrink by 20% when the success rate falls below
// half the target, grow by 20% when it exceeds 1.2x the target, hold
// otherwise.
type Pool struct {
	mu             sync.Mutex
	current        int
	min            int
	max            int
	interval       int
	targetRate     float64
	completed      int
	succeeded      int
	failed         int
	lastAdaptation time.Time
	now            func() time.Time

	stopOnce sync.Once
	stop     chan struct{}
}

// Option customizes a Pool.
type Option func(*Pool)

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(p *Pool) { p.now = now }
}

// New creates a Pool around a configured baseline worker count. Bounds are
// derived from the baseline: min = max(2, baseline/4), max = min(50,
// baseline*3); the starting target is the baseline clamped into bounds.
func New(baseline, interval int, targetRate float64, opts ...Option) *Pool {
	if baseline < 1 {
		baseline = 1
	}
	if interval < 1 {
		interval = 10
	}
	minWorkers := baseline / 4
	if minWorkers < 2 {
		minWorkers = 2
	}
	maxWorkers := baseline * 3
	if maxWorkers > 50 {
		maxWorkers = 50
	}
	if maxWorkers < minWorkers {
		maxWorkers = minWorkers
	}

	p := &Pool{
		current:    clamp(baseline, minWorkers, maxWorkers),
		min:        minWorkers,
		max:        maxWorkers,
		interval:   interval,
		targetRate: targetRate,
		now:        time.Now,
		stop:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.lastAdaptation = p.now()
	return p
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// RecordOutcome registers one completed attempt. Thread-safe; never fails.
func (p *Pool) RecordOutcome(success bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.completed++
	if success {
		p.succeeded++
	} else {
		p.failed++
	}
}

// CurrentWorkers returns the target concurrency, recomputing it when the
// adaptation interval has elapsed.
func (p *Pool) CurrentWorkers() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.shouldAdaptLocked() {
		p.current = p.adaptLocked()
	}
	return p.current
}

func (p *Pool) shouldAdaptLocked() bool {
	return p.completed > 0 &&
		p.completed%p.interval == 0 &&
		p.now().Sub(p.lastAdaptation) > adaptCooldown
}

func (p *Pool) adaptLocked() int {
	rate := p.successRateLocked()
	next := p.current
	switch {
	case rate < p.targetRate*0.5:
		next = clamp(int(float64(p.current)*0.8), p.min, p.max)
		if next != p.current {
			log.Printf("pool: low success rate (%.1f%%), shrinking workers %d -> %d",
				rate*100, p.current, next)
		}
	case rate > p.targetRate*1.2:
		next = clamp(int(math.Ceil(float64(p.current)*1.2)), p.min, p.max)
		if next != p.current {
			log.Printf("pool: good success rate (%.1f%%), growing workers %d -> %d",
				rate*100, p.current, next)
		}
	}
	p.lastAdaptation = p.now()
	return next
}

func (p *Pool) successRateLocked() float64 {
	if p.completed == 0 {
		return 0
	}
	return float64(p.succeeded) / float64(p.completed)
}

// SignalStop latches the cooperative stop flag. Irreversible for the run.
func (p *Pool) SignalStop() {
	p.stopOnce.Do(func() { close(p.stop) })
}

// ShouldStop reports whether the stop flag has been latched.
func (p *Pool) ShouldStop() bool {
	select {
	case <-p.stop:
		return true
	default:
		return false
	}
}

// Min returns the lower worker bound.
func (p *Pool) Min() int { return p.min }

// Max returns the upper worker bound.
func (p *Pool) Max() int { return p.max }

// Stats returns a snapshot of pool counters.
func (p *Pool) Stats() models.PoolStats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return models.PoolStats{
		CurrentWorkers:    p.current,
		CompletedTasks:    p.completed,
		SuccessfulTasks:   p.succeeded,
		FailedTasks:       p.failed,
		SuccessRate:       p.successRateLocked(),
		TargetSuccessRate: p.targetRate,
	}
}
