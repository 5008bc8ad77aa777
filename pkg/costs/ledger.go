package costs

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/mathforge-ai/mathforge/pkg/models"
)

// Ledger journals per-invocation usage records in a SQLite database so spend
// can be inspected after a run.
type Ledger struct {
	db *sql.DB
}

const createUsageTable = `
CREATE TABLE IF NOT EXISTS usage_records (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	provider TEXT NOT NULL,
	model TEXT NOT NULL,
	prompt_tokens INTEGER NOT NULL,
	completion_tokens INTEGER NOT NULL,
	cost_usd REAL NOT NULL,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_usage_provider_model ON usage_records(provider, model);
`

// OpenLedger opens (creating if needed) the usage ledger at dbPath.
func OpenLedger(dbPath string) (*Ledger, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open ledger db: %w", err)
	}
	if _, err := db.Exec(createUsageTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate ledger db: %w", err)
	}
	return &Ledger{db: db}, nil
}

// Record stores one usage record.
func (l *Ledger) Record(ctx context.Context, rec models.UsageRecord) error {
	_, err := l.db.ExecContext(ctx,
		`INSERT INTO usage_records (provider, model, prompt_tokens, completion_tokens, cost_usd, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		rec.Provider, rec.Model, rec.PromptTokens, rec.CompletionTokens, rec.CostUSD, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("record usage: %w", err)
	}
	return nil
}

// Summary aggregates journaled usage per (provider, model).
func (l *Ledger) Summary(ctx context.Context) ([]models.CostReport, error) {
	rows, err := l.db.QueryContext(ctx,
		`SELECT provider, model, COUNT(*), SUM(prompt_tokens), SUM(completion_tokens), SUM(cost_usd)
		 FROM usage_records GROUP BY provider, model ORDER BY provider, model`)
	if err != nil {
		return nil, fmt.Errorf("ledger summary: %w", err)
	}
	defer rows.Close()

	var reports []models.CostReport
	for rows.Next() {
		var r models.CostReport
		if err := rows.Scan(&r.Provider, &r.Model, &r.RequestCount, &r.PromptTokens, &r.CompletionTokens, &r.CostUSD); err != nil {
			return nil, fmt.Errorf("scan summary: %w", err)
		}
		reports = append(reports, r)
	}
	return reports, rows.Err()
}

// Close releases the database connection.
func (l *Ledger) Close() error {
	return l.db.Close()
}
