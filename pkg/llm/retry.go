package llm

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/mathforge-ai/mathforge/pkg/models"
)

const (
	defaultMaxRetries = 3
	defaultBaseDelay  = time.Second
)

// BackoffDelay computes the wait before retry number attempt (0-based):
// exponential in the attempt index plus up to 10% jitter. Pure function so
// the policy is testable without sleeping.
func BackoffDelay(attempt int, base time.Duration, jitter float64) time.Duration {
	d := base << uint(attempt)
	return d + time.Duration(float64(d)*0.1*jitter)
}

// RetryingInvoker wraps an Invoker with bounded retries and exponential
// backoff. Only InvocationErrors are retried; malformed responses fail the
// call immediately.
type RetryingInvoker struct {
	inner      Invoker
	maxRetries int
	baseDelay  time.Duration
	sleep      func(time.Duration)
	jitter     func() float64

	mu  sync.Mutex
	rng *rand.Rand
}

// RetryOption customizes a RetryingInvoker.
type RetryOption func(*RetryingInvoker)

// WithSleep overrides the sleep function, for tests.
func WithSleep(sleep func(time.Duration)) RetryOption {
	return func(r *RetryingInvoker) { r.sleep = sleep }
}

// WithJitter overrides the jitter source, for tests.
func WithJitter(jitter func() float64) RetryOption {
	return func(r *RetryingInvoker) { r.jitter = jitter }
}

// NewRetrying wraps inner with the given retry budget. maxRetries <= 0 and
// baseDelay <= 0 select the defaults (3 attempts, 1s base).
func NewRetrying(inner Invoker, maxRetries int, baseDelay time.Duration, opts ...RetryOption) *RetryingInvoker {
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}
	if baseDelay <= 0 {
		baseDelay = defaultBaseDelay
	}
	r := &RetryingInvoker{
		inner:      inner,
		maxRetries: maxRetries,
		baseDelay:  baseDelay,
		sleep:      time.Sleep,
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	r.jitter = r.randJitter
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *RetryingInvoker) randJitter() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.Float64()
}

// Invoke implements Invoker.
func (r *RetryingInvoker) Invoke(ctx context.Context, req models.InvokeRequest) (models.InvokeResponse, error) {
	var lastErr error
	for attempt := 0; attempt < r.maxRetries; attempt++ {
		resp, err := r.inner.Invoke(ctx, req)
		if err == nil {
			return resp, nil
		}
		if !retryable(err) {
			return models.InvokeResponse{}, err
		}
		lastErr = err

		if attempt < r.maxRetries-1 {
			delay := BackoffDelay(attempt, r.baseDelay, r.jitter())
			log.Printf("llm: %s/%s attempt %d/%d failed, retrying in %s: %v",
				req.Provider, req.Model, attempt+1, r.maxRetries, delay.Round(time.Millisecond), err)
			select {
			case <-ctx.Done():
				return models.InvokeResponse{}, ctx.Err()
			default:
			}
			r.sleep(delay)
		}
	}
	return models.InvokeResponse{}, fmt.Errorf("all %d attempts failed: %w", r.maxRetries, lastErr)
}
