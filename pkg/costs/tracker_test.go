package costs

import (
	"math"
	"strings"
	"sync"
	"testing"
)

func TestLogKnownPricing(t *testing.T) {
	tr := NewTracker()
	tr.Log(Usage{Provider: "openai", Model: "gpt-4o", TokensIn: 1000, TokensOut: 2000})

	// 1000/1000*0.0025 + 2000/1000*0.01 = 0.0225
	if got := tr.TotalCost(); math.Abs(got-0.0225) > 1e-9 {
		t.Errorf("expected 0.0225, got %v", got)
	}

	row, ok := tr.Breakdown()["openai:gpt-4o"]
	if !ok {
		t.Fatal("expected breakdown row for openai:gpt-4o")
	}
	if row.InputTokens != 1000 || row.OutputTokens != 2000 {
		t.Errorf("unexpected token totals: %+v", row)
	}
}

func TestLogUnknownModelIsFree(t *testing.T) {
	tr := NewTracker()
	tr.Log(Usage{Provider: "acme", Model: "quantum-9", TokensIn: 5000, TokensOut: 5000})

	if got := tr.TotalCost(); got != 0 {
		t.Errorf("expected zero cost for unknown model, got %v", got)
	}
	row := tr.Breakdown()["acme:quantum-9"]
	if row.InputTokens != 5000 {
		t.Errorf("expected token totals tracked even when free, got %+v", row)
	}
}

func TestLogEstimatesMissingTokens(t *testing.T) {
	tr := NewTracker()
	prompt := strings.Repeat("a", 400)
	output := strings.Repeat("b", 100)
	tr.Log(Usage{Provider: "gemini", Model: "gemini-2.5-pro", RawPrompt: prompt, RawOutput: output})

	row := tr.Breakdown()["gemini:gemini-2.5-pro"]
	if row.InputTokens != 100 || row.OutputTokens != 25 {
		t.Errorf("expected estimated tokens 100/25, got %d/%d", row.InputTokens, row.OutputTokens)
	}
}

func TestTotalCostMonotonic(t *testing.T) {
	tr := NewTracker()
	prev := 0.0
	for i := 0; i < 50; i++ {
		tr.Log(Usage{Provider: "openai", Model: "o1", TokensIn: 100, TokensOut: 100})
		total := tr.TotalCost()
		if total < prev {
			t.Fatalf("total cost decreased: %v -> %v", prev, total)
		}
		prev = total
	}
}

func TestConcurrentLogging(t *testing.T) {
	tr := NewTracker()
	var wg sync.WaitGroup
	for g := 0; g < 10; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				tr.Log(Usage{Provider: "openai", Model: "gpt-4o", TokensIn: 10, TokensOut: 10})
			}
		}()
	}
	wg.Wait()

	row := tr.Breakdown()["openai:gpt-4o"]
	if row.InputTokens != 10000 || row.OutputTokens != 10000 {
		t.Errorf("lost updates under concurrency: %+v", row)
	}
}
