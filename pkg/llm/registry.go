package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/mathforge-ai/mathforge/pkg/config"
	"github.com/mathforge-ai/mathforge/pkg/models"
)

// Registry dispatches requests to provider invokers. The set of providers is
// closed at construction time; the pipeline never branches on provider names.
type Registry struct {
	providers map[string]Invoker
}

// NewRegistry builds invokers for every configured provider.
func NewRegistry(cfgs map[string]config.ProviderConfig) (*Registry, error) {
	providers := make(map[string]Invoker, len(cfgs))
	for name, pc := range cfgs {
		switch strings.ToLower(name) {
		case "openai":
			providers["openai"] = NewOpenAI(pc.APIKey, pc.URL)
		case "gemini":
			providers["gemini"] = NewGemini(pc.APIKey, pc.URL)
		case "deepseek":
			providers["deepseek"] = NewDeepSeek(pc.APIKey, pc.URL)
		default:
			return nil, fmt.Errorf("provider %q: %w", name, ErrUnknownProvider)
		}
	}
	return &Registry{providers: providers}, nil
}

// Invoke implements Invoker by routing on the request's provider.
func (r *Registry) Invoke(ctx context.Context, req models.InvokeRequest) (models.InvokeResponse, error) {
	p, ok := r.providers[strings.ToLower(req.Provider)]
	if !ok {
		return models.InvokeResponse{}, fmt.Errorf("provider %q: %w", req.Provider, ErrUnknownProvider)
	}
	return p.Invoke(ctx, req)
}
