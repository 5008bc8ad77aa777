package pipeline

import (
	"context"
	"log"
	"sort"

	"github.com/mathforge-ai/mathforge/pkg/costs"
	"github.com/mathforge-ai/mathforge/pkg/models"
	"github.com/mathforge-ai/mathforge/pkg/pool"
)

// Orchestrator drives a batch run: it launches attempts against the
// worker pool's adaptive capacity and folds finished attempts into a
// RunResult. A single goroutine owns all launch and bookkeeping state;
// attempts themselves run concurrently.
type Orchestrator struct {
	runner  *Runner
	pool    *pool.Pool
	tracker *costs.Tracker
	source  TaskSource
}

func NewOrchestrator(r *Runner, p *pool.Pool, t *costs.Tracker, src TaskSource) *Orchestrator {
	return &Orchestrator{runner: r, pool: p, tracker: t, source: src}
}

// Run produces problems until target acceptances, the maxAttempts ceiling,
// or context cancellation. Every launched attempt lands in exactly one of
// the result's three lists. In-flight attempts are capped at twice the
// pool's current worker count so launch pressure follows adaptation.
func (o *Orchestrator) Run(ctx context.Context, target, maxAttempts int) (*models.RunResult, error) {
	result := &models.RunResult{}
	results := make(chan Attempt)

	launched := 0
	inFlight := 0
	accepted := 0

	launch := func() {
		seq := launched
		launched++
		inFlight++
		task := o.source(seq)
		go func() {
			results <- o.runner.Execute(ctx, seq, task)
		}()
	}

	collect := func(att Attempt) {
		inFlight--
		o.pool.RecordOutcome(att.Outcome == Accepted)
		switch att.Outcome {
		case Accepted:
			accepted++
			result.Accepted = append(result.Accepted, att.Record)
			log.Printf("pipeline: accepted problem %d (%d/%d)", att.Seq, accepted, target)
			if accepted >= target {
				o.pool.SignalStop()
			}
		case Discarded:
			result.Discarded = append(result.Discarded, att.Record)
		default:
			result.Errored = append(result.Errored, att.Record)
			log.Printf("pipeline: attempt %d errored at %s: %s", att.Seq, att.Record.Stage, att.Record.Error)
		}
	}

	var runErr error
loop:
	for accepted < target && !o.pool.ShouldStop() {
		for inFlight < o.pool.CurrentWorkers()*2 && launched < maxAttempts {
			launch()
		}
		if inFlight == 0 {
			// Ceiling reached with nothing outstanding.
			break
		}
		select {
		case <-ctx.Done():
			runErr = ctx.Err()
			break loop
		case att := <-results:
			collect(att)
		}
	}

	// Partition completeness: every launched attempt is accounted for,
	// including those still running when the run stops.
	for inFlight > 0 {
		collect(<-results)
	}

	o.finalize(result, launched, accepted)
	return result, runErr
}

// RunSequential is the single-threaded fallback used when enhanced
// concurrency is disabled: one attempt at a time, same stopping rules.
func (o *Orchestrator) RunSequential(ctx context.Context, target, maxAttempts int) (*models.RunResult, error) {
	result := &models.RunResult{}
	accepted := 0
	launched := 0

	var runErr error
	for accepted < target && launched < maxAttempts {
		if err := ctx.Err(); err != nil {
			runErr = err
			break
		}
		att := o.runner.Execute(ctx, launched, o.source(launched))
		launched++
		o.pool.RecordOutcome(att.Outcome == Accepted)
		switch att.Outcome {
		case Accepted:
			accepted++
			result.Accepted = append(result.Accepted, att.Record)
		case Discarded:
			result.Discarded = append(result.Discarded, att.Record)
		default:
			result.Errored = append(result.Errored, att.Record)
		}
	}

	o.finalize(result, launched, accepted)
	return result, runErr
}

func (o *Orchestrator) finalize(result *models.RunResult, launched, accepted int) {
	for _, list := range [][]models.ProblemRecord{result.Accepted, result.Discarded, result.Errored} {
		sort.Slice(list, func(i, j int) bool { return list[i].Seq < list[j].Seq })
	}
	if o.tracker != nil {
		result.TotalCost = o.tracker.TotalCost()
		result.Breakdown = o.tracker.Breakdown()
	}
	result.Metadata = models.RunMetadata{
		TotalAttempted: launched,
		TotalAccepted:  accepted,
	}
}
