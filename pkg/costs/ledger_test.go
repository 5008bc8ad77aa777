package costs

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/mathforge-ai/mathforge/pkg/models"
)

func newTestLedger(t *testing.T) *Ledger {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	l, err := OpenLedger(dbPath)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = l.Close() })
	return l
}

func TestRecordAndSummary(t *testing.T) {
	l := newTestLedger(t)
	ctx := context.Background()
	now := time.Now().UTC()

	records := []models.UsageRecord{
		{Provider: "openai", Model: "gpt-4o", PromptTokens: 100, CompletionTokens: 50, CostUSD: 0.00075, CreatedAt: now},
		{Provider: "openai", Model: "gpt-4o", PromptTokens: 200, CompletionTokens: 100, CostUSD: 0.0015, CreatedAt: now},
		{Provider: "gemini", Model: "gemini-2.5-pro", PromptTokens: 300, CompletionTokens: 150, CostUSD: 0.003, CreatedAt: now},
	}
	for _, rec := range records {
		if err := l.Record(ctx, rec); err != nil {
			t.Fatal(err)
		}
	}

	reports, err := l.Summary(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(reports) != 2 {
		t.Fatalf("expected 2 summary rows, got %d", len(reports))
	}

	// Sorted by provider: gemini first.
	if reports[0].Provider != "gemini" || reports[0].RequestCount != 1 {
		t.Errorf("unexpected first row: %+v", reports[0])
	}
	if reports[1].Provider != "openai" || reports[1].RequestCount != 2 {
		t.Errorf("unexpected second row: %+v", reports[1])
	}
	if reports[1].PromptTokens != 300 || reports[1].CompletionTokens != 150 {
		t.Errorf("unexpected openai token totals: %+v", reports[1])
	}
}

func TestTrackerMirrorsToLedger(t *testing.T) {
	l := newTestLedger(t)
	tr := NewTrackerWithLedger(l)

	tr.Log(Usage{Provider: "openai", Model: "o1", TokensIn: 1000, TokensOut: 500})

	reports, err := l.Summary(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(reports) != 1 {
		t.Fatalf("expected 1 ledger row, got %d", len(reports))
	}
	if reports[0].PromptTokens != 1000 || reports[0].CompletionTokens != 500 {
		t.Errorf("unexpected mirrored record: %+v", reports[0])
	}
}
