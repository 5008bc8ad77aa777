package agents

import (
	"context"
	"fmt"
	"strings"

	"github.com/mathforge-ai/mathforge/pkg/config"
	"github.com/mathforge-ai/mathforge/pkg/llm"
	"github.com/mathforge-ai/mathforge/pkg/models"
)

const minHints = 3

// Engineer drafts candidate problems, either from scratch for a
// subject/topic pair or by hardening a seed problem.
type Engineer struct {
	client *llm.Client
	role   config.RoleConfig
}

func NewEngineer(client *llm.Client, role config.RoleConfig) *Engineer {
	return &Engineer{client: client, role: role}
}

// Generate asks the engineer model for one candidate problem. A non-empty
// seed switches to harden mode: the model modifies the seed instead of
// inventing a new problem. Drafting runs at high temperature.
func (e *Engineer) Generate(ctx context.Context, subject, topic, seed string) (*models.Problem, error) {
	system := engineerMessage
	var user string
	if strings.TrimSpace(seed) != "" {
		system = engineerSeedMessage
		user = fmt.Sprintf("Subject: %s\nTopic: %s\n\nOriginal problem:\n%s", subject, topic, seed)
	} else {
		user = fmt.Sprintf("Generate a problem with subject %q and topic %q.", subject, topic)
	}

	resp, err := e.client.Call(ctx, models.InvokeRequest{
		Provider:    e.role.Provider,
		Model:       e.role.Model,
		Prompt:      system + "\n\n" + user,
		Temperature: 1.0,
		Options:     e.role.Options,
	})
	if err != nil {
		return nil, fmt.Errorf("engineer invoke: %w", err)
	}

	var draft struct {
		Subject string            `json:"subject"`
		Topic   string            `json:"topic"`
		Problem string            `json:"problem"`
		Answer  string            `json:"answer"`
		Hints   map[string]string `json:"hints"`
	}
	if err := parseJSON("engineer", resp.Text, &draft); err != nil {
		return nil, err
	}
	for field, val := range map[string]string{
		"subject": draft.Subject,
		"topic":   draft.Topic,
		"problem": draft.Problem,
		"answer":  draft.Answer,
	} {
		if strings.TrimSpace(val) == "" {
			return nil, &ValidationError{Role: "engineer", Detail: fmt.Sprintf("missing required field %q", field)}
		}
	}
	if len(draft.Hints) < minHints {
		return nil, &ValidationError{Role: "engineer", Detail: fmt.Sprintf("got %d hints, need at least %d", len(draft.Hints), minHints)}
	}

	return &models.Problem{
		Subject:    draft.Subject,
		Topic:      draft.Topic,
		Problem:    draft.Problem,
		Answer:     draft.Answer,
		Hints:      draft.Hints,
		SeedPrompt: strings.TrimSpace(seed),
	}, nil
}
