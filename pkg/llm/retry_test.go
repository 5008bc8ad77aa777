package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mathforge-ai/mathforge/pkg/models"
)

// flakyInvoker fails with the queued errors before succeeding.
type flakyInvoker struct {
	failures []error
	calls    int
}

func (f *flakyInvoker) Invoke(ctx context.Context, req models.InvokeRequest) (models.InvokeResponse, error) {
	f.calls++
	if f.calls <= len(f.failures) {
		return models.InvokeResponse{}, f.failures[f.calls-1]
	}
	return models.InvokeResponse{Text: "ok"}, nil
}

func transientErr() error {
	return &InvocationError{Provider: "openai", Model: "gpt-4o", Err: errors.New("connection reset")}
}

func TestRetryRecoversFromTransientErrors(t *testing.T) {
	inner := &flakyInvoker{failures: []error{transientErr(), transientErr()}}
	var slept []time.Duration
	r := NewRetrying(inner, 3, time.Second,
		WithSleep(func(d time.Duration) { slept = append(slept, d) }),
		WithJitter(func() float64 { return 0 }),
	)

	resp, err := r.Invoke(context.Background(), models.InvokeRequest{Provider: "openai", Model: "gpt-4o"})
	if err != nil {
		t.Fatal(err)
	}
	if resp.Text != "ok" {
		t.Errorf("expected ok, got %q", resp.Text)
	}
	if inner.calls != 3 {
		t.Errorf("expected 3 calls, got %d", inner.calls)
	}
	want := []time.Duration{time.Second, 2 * time.Second}
	if len(slept) != 2 || slept[0] != want[0] || slept[1] != want[1] {
		t.Errorf("expected backoff %v, got %v", want, slept)
	}
}

func TestRetryExhaustionSurfacesTerminalError(t *testing.T) {
	inner := &flakyInvoker{failures: []error{transientErr(), transientErr(), transientErr()}}
	r := NewRetrying(inner, 3, time.Second, WithSleep(func(time.Duration) {}))

	_, err := r.Invoke(context.Background(), models.InvokeRequest{Provider: "openai", Model: "gpt-4o"})
	if err == nil {
		t.Fatal("expected error after exhausting retries")
	}
	var ie *InvocationError
	if !errors.As(err, &ie) {
		t.Errorf("expected wrapped InvocationError, got %v", err)
	}
	if inner.calls != 3 {
		t.Errorf("expected 3 calls, got %d", inner.calls)
	}
}

func TestRetryDoesNotRetryMalformedResponses(t *testing.T) {
	malformed := &MalformedResponseError{Provider: "openai", Model: "gpt-4o", Detail: "bad JSON"}
	inner := &flakyInvoker{failures: []error{malformed}}
	r := NewRetrying(inner, 3, time.Second, WithSleep(func(time.Duration) {
		t.Error("should not sleep for non-retryable error")
	}))

	_, err := r.Invoke(context.Background(), models.InvokeRequest{Provider: "openai", Model: "gpt-4o"})
	var me *MalformedResponseError
	if !errors.As(err, &me) {
		t.Fatalf("expected MalformedResponseError, got %v", err)
	}
	if inner.calls != 1 {
		t.Errorf("expected 1 call, got %d", inner.calls)
	}
}

func TestBackoffDelay(t *testing.T) {
	tests := []struct {
		attempt int
		jitter  float64
		want    time.Duration
	}{
		{0, 0, time.Second},
		{1, 0, 2 * time.Second},
		{2, 0, 4 * time.Second},
		{0, 1, 1100 * time.Millisecond},
		{2, 0.5, 4*time.Second + 200*time.Millisecond},
	}
	for _, tt := range tests {
		if got := BackoffDelay(tt.attempt, time.Second, tt.jitter); got != tt.want {
			t.Errorf("BackoffDelay(%d, 1s, %v) = %v, want %v", tt.attempt, tt.jitter, got, tt.want)
		}
	}
}
