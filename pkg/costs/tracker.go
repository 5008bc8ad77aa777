// Package costs tracks cumulative token usage and dollar spend per
// (provider, model) across a generation run.
package costs

import (
	"context"
	"log"
	"math"
	"sync"
	"time"

	"github.com/mathforge-ai/mathforge/pkg/models"
)

// Usage describes one completed model invocation. RawPrompt and RawOutput
// are used to estimate token counts when a provider does not report them.
type Usage struct {
	Provider  string
	Model     string
	TokensIn  int
	TokensOut int
	RawPrompt string
	RawOutput string
}

type stat struct {
	inputTokens  int
	outputTokens int
	cost         float64
}

// Tracker is a thread-safe accumulator of per-model token and cost totals.
// Totals are monotonically non-decreasing for the lifetime of a run.
type Tracker struct {
	mu     sync.Mutex
	total  float64
	stats  map[Key]*stat
	ledger *Ledger // optional durable mirror, best effort
}

// NewTracker creates an empty Tracker.
func NewTracker() *Tracker {
	return &Tracker{stats: make(map[Key]*stat)}
}

// NewTrackerWithLedger creates a Tracker that mirrors every logged usage
// record into the given ledger. Ledger failures degrade to warnings.
func NewTrackerWithLedger(l *Ledger) *Tracker {
	t := NewTracker()
	t.ledger = l
	return t
}

// estimateTokens approximates a token count from raw text length.
func estimateTokens(text string) int {
	return len(text) / 4
}

// Log records one completed invocation. Called exactly once per real model
// call; cache hits are never re-charged.
func (t *Tracker) Log(u Usage) {
	tokensIn := u.TokensIn
	tokensOut := u.TokensOut
	if tokensIn == 0 && u.RawPrompt != "" {
		tokensIn = estimateTokens(u.RawPrompt)
	}
	if tokensOut == 0 && u.RawOutput != "" {
		tokensOut = estimateTokens(u.RawOutput)
	}

	cost := Cost(u.Provider, u.Model, tokensIn, tokensOut)
	key := Key{Provider: u.Provider, Model: u.Model}

	t.mu.Lock()
	t.total += cost
	s, ok := t.stats[key]
	if !ok {
		s = &stat{}
		t.stats[key] = s
	}
	s.inputTokens += tokensIn
	s.outputTokens += tokensOut
	s.cost += cost
	t.mu.Unlock()

	if t.ledger != nil {
		rec := models.UsageRecord{
			Provider:         u.Provider,
			Model:            u.Model,
			PromptTokens:     tokensIn,
			CompletionTokens: tokensOut,
			CostUSD:          cost,
			CreatedAt:        time.Now().UTC(),
		}
		if err := t.ledger.Record(context.Background(), rec); err != nil {
			log.Printf("costs: ledger record failed: %v", err)
		}
	}
}

// TotalCost returns the cumulative dollar spend, rounded to micro-dollars.
func (t *Tracker) TotalCost() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return round6(t.total)
}

// Breakdown returns per-model totals keyed by "provider:model".
func (t *Tracker) Breakdown() map[string]models.CostRow {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make(map[string]models.CostRow, len(t.stats))
	for key, s := range t.stats {
		out[key.Provider+":"+key.Model] = models.CostRow{
			InputTokens:  s.inputTokens,
			OutputTokens: s.outputTokens,
			CostUSD:      round6(s.cost),
		}
	}
	return out
}

func round6(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}
