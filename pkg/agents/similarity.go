package agents

import (
	"context"
	"fmt"

	"github.com/mathforge-ai/mathforge/pkg/config"
	"github.com/mathforge-ai/mathforge/pkg/llm"
	"github.com/mathforge-ai/mathforge/pkg/models"
)

// Similarity estimates how close an accepted problem is to commonly
// published problems. It is an advisory side call: failures leave the
// record without a score instead of failing the attempt.
type Similarity struct {
	client *llm.Client
	cfg    config.SimilarityConfig
}

func NewSimilarity(client *llm.Client, cfg config.SimilarityConfig) *Similarity {
	return &Similarity{client: client, cfg: cfg}
}

func (s *Similarity) Enabled() bool {
	return s != nil && s.cfg.Enabled
}

// Score returns a similarity score in [0, 1], or an error the caller is
// expected to log and discard.
func (s *Similarity) Score(ctx context.Context, p *models.Problem) (float64, error) {
	resp, err := s.client.Call(ctx, models.InvokeRequest{
		Provider:    s.cfg.Provider,
		Model:       s.cfg.Model,
		Prompt:      similarityMessage + "\n\nProblem:\n" + p.Problem,
		Temperature: 0.0,
	})
	if err != nil {
		return 0, fmt.Errorf("similarity invoke: %w", err)
	}
	var reply struct {
		Score *float64 `json:"similarity_score"`
	}
	if err := parseJSON("similarity", resp.Text, &reply); err != nil {
		return 0, err
	}
	if reply.Score == nil {
		return 0, &ValidationError{Role: "similarity", Detail: `response missing "similarity_score"`}
	}
	return *reply.Score, nil
}
