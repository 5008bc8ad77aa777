package agents

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mathforge-ai/mathforge/pkg/config"
	"github.com/mathforge-ai/mathforge/pkg/llm"
	"github.com/mathforge-ai/mathforge/pkg/models"
)

// checkerTemperature keeps validation judgments near-deterministic while
// leaving room to rephrase corrected hints.
const checkerTemperature = 0.2

// overrideConfidence is the numeric-verifier confidence above which its
// verdict overrides the checker model on equivalence.
const overrideConfidence = 0.8

// Checker validates drafted problems and judges whether the target's
// answer is mathematically equivalent to the reference answer.
type Checker struct {
	client *llm.Client
	role   config.RoleConfig
}

func NewChecker(client *llm.Client, role config.RoleConfig) *Checker {
	return &Checker{client: client, role: role}
}

type checkerReply struct {
	Valid          *bool             `json:"valid"`
	Reason         string            `json:"reason"`
	CorrectedHints map[string]string `json:"corrected_hints"`
	Confidence     *float64          `json:"equivalence_confidence"`
}

func (r *checkerReply) toResult(role string) (*models.CheckResult, error) {
	if r.Valid == nil {
		return nil, &ValidationError{Role: role, Detail: `response missing "valid" field`}
	}
	res := &models.CheckResult{
		Valid:          *r.Valid,
		Reason:         r.Reason,
		CorrectedHints: r.CorrectedHints,
	}
	if r.Confidence != nil {
		res.Confidence = *r.Confidence
	}
	return res, nil
}

// ValidateInitial checks that the draft's answer is justified by its hints.
// Corrected hints, when present, replace only the flawed entries.
func (c *Checker) ValidateInitial(ctx context.Context, p *models.Problem) (*models.CheckResult, error) {
	payload, err := json.Marshal(map[string]any{
		"problem":         p.Problem,
		"answer":          p.Answer,
		"hints":           p.Hints,
		"validation_type": "initial",
	})
	if err != nil {
		return nil, fmt.Errorf("checker payload: %w", err)
	}

	resp, err := c.client.Call(ctx, models.InvokeRequest{
		Provider:    c.role.Provider,
		Model:       c.role.Model,
		Prompt:      checkerMessage + "\n\n" + string(payload),
		Temperature: checkerTemperature,
		Options:     c.role.Options,
	})
	if err != nil {
		return nil, fmt.Errorf("checker invoke: %w", err)
	}

	var reply checkerReply
	if err := parseJSON("checker", resp.Text, &reply); err != nil {
		return nil, err
	}
	return reply.toResult("checker")
}

// CheckEquivalence judges whether the target's answer matches the reference
// answer. When the numeric verifier parses both answers with high
// confidence, its verdict overrides the model's in either direction.
func (c *Checker) CheckEquivalence(ctx context.Context, p *models.Problem) (*models.CheckResult, error) {
	payload, err := json.Marshal(map[string]any{
		"problem":         p.Problem,
		"true_answer":     p.Answer,
		"model_answer":    p.TargetAnswer,
		"validation_type": "equivalence",
	})
	if err != nil {
		return nil, fmt.Errorf("checker payload: %w", err)
	}

	resp, err := c.client.Call(ctx, models.InvokeRequest{
		Provider:    c.role.Provider,
		Model:       c.role.Model,
		Prompt:      checkerMessage + checkerEquivalenceAddendum + "\n\n" + string(payload),
		Temperature: checkerTemperature,
		Options:     c.role.Options,
	})
	if err != nil {
		return nil, fmt.Errorf("checker invoke: %w", err)
	}

	var reply checkerReply
	if err := parseJSON("checker", resp.Text, &reply); err != nil {
		return nil, err
	}
	result, err := reply.toResult("checker")
	if err != nil {
		return nil, err
	}

	if verdict := VerifyNumeric(p.Answer, p.TargetAnswer); verdict.Checked && verdict.Confidence > overrideConfidence {
		switch {
		case verdict.Equivalent && !result.Valid:
			result.Valid = true
			result.Reason = fmt.Sprintf("numeric verification (%s): answers are equivalent", verdict.Method)
			result.Confidence = verdict.Confidence
		case !verdict.Equivalent && result.Valid:
			result.Valid = false
			result.Reason = fmt.Sprintf("numeric verification (%s): answers differ", verdict.Method)
			result.Confidence = verdict.Confidence
		}
	}
	return result, nil
}
