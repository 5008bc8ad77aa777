// Package llm provides the model-invocation capability consumed by the
// generation pipeline: provider clients behind a single Invoker interface,
// a retry decorator, and a Client that composes caching and cost tracking.
package llm

import (
	"context"

	"github.com/mathforge-ai/mathforge/pkg/models"
)

// Invoker is the abstract model-invocation capability. Implementations block
// until the provider responds and must be safe for concurrent use.
type Invoker interface {
	Invoke(ctx context.Context, req models.InvokeRequest) (models.InvokeResponse, error)
}

// InvokerFunc adapts a function to the Invoker interface.
type InvokerFunc func(ctx context.Context, req models.InvokeRequest) (models.InvokeResponse, error)

// Invoke implements Invoker.
func (f InvokerFunc) Invoke(ctx context.Context, req models.InvokeRequest) (models.InvokeResponse, error) {
	return f(ctx, req)
}
