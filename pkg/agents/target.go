package agents

import (
	"context"
	"fmt"
	"strings"

	"github.com/mathforge-ai/mathforge/pkg/config"
	"github.com/mathforge-ai/mathforge/pkg/llm"
	"github.com/mathforge-ai/mathforge/pkg/models"
)

// Target is the model under attack. It sees only the problem statement,
// never the hints or the reference answer, and solves deterministically.
type Target struct {
	client *llm.Client
	role   config.RoleConfig
}

func NewTarget(client *llm.Client, role config.RoleConfig) *Target {
	return &Target{client: client, role: role}
}

// Solve returns the target model's final answer for the problem text.
func (t *Target) Solve(ctx context.Context, problem string) (string, error) {
	resp, err := t.client.Call(ctx, models.InvokeRequest{
		Provider:    t.role.Provider,
		Model:       t.role.Model,
		Prompt:      targetMessage + "\n\n" + problem,
		Temperature: 0.0,
		Options:     t.role.Options,
	})
	if err != nil {
		return "", fmt.Errorf("target invoke: %w", err)
	}
	answer := strings.TrimSpace(resp.Text)
	if answer == "" {
		return "", &ValidationError{Role: "target", Detail: "empty answer"}
	}
	return answer, nil
}
