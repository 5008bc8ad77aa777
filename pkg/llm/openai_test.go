package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mathforge-ai/mathforge/pkg/models"
)

func TestOpenAIInvoke(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sk-test" {
			t.Errorf("unexpected auth header %q", got)
		}

		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatal(err)
		}
		if body["model"] != "gpt-4o" {
			t.Errorf("unexpected model %v", body["model"])
		}
		if _, ok := body["temperature"]; !ok {
			t.Error("expected temperature for gpt model")
		}

		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"role": "assistant", "content": "  42  "}},
			},
			"usage": map[string]int{"prompt_tokens": 12, "completion_tokens": 3},
		})
	}))
	defer srv.Close()

	o := NewOpenAI("sk-test", srv.URL)
	resp, err := o.Invoke(context.Background(), models.InvokeRequest{
		Provider: "openai", Model: "gpt-4o", Prompt: "solve", Temperature: 0.2,
	})
	if err != nil {
		t.Fatal(err)
	}
	if resp.Text != "42" {
		t.Errorf("expected trimmed text 42, got %q", resp.Text)
	}
	if resp.TokensIn != 12 || resp.TokensOut != 3 {
		t.Errorf("unexpected usage %d/%d", resp.TokensIn, resp.TokensOut)
	}
}

func TestOpenAIServerErrorIsRetryable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream overloaded", http.StatusBadGateway)
	}))
	defer srv.Close()

	o := NewOpenAI("sk-test", srv.URL)
	_, err := o.Invoke(context.Background(), models.InvokeRequest{Provider: "openai", Model: "gpt-4o"})
	var ie *InvocationError
	if !errors.As(err, &ie) {
		t.Fatalf("expected InvocationError for 5xx, got %v", err)
	}
}

func TestOpenAIEmptyCompletionIsMalformed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"choices": []any{}})
	}))
	defer srv.Close()

	o := NewOpenAI("sk-test", srv.URL)
	_, err := o.Invoke(context.Background(), models.InvokeRequest{Provider: "openai", Model: "gpt-4o"})
	var me *MalformedResponseError
	if !errors.As(err, &me) {
		t.Fatalf("expected MalformedResponseError, got %v", err)
	}
}

func TestRegistryDispatch(t *testing.T) {
	reg := &Registry{providers: map[string]Invoker{
		"openai": InvokerFunc(func(ctx context.Context, req models.InvokeRequest) (models.InvokeResponse, error) {
			return models.InvokeResponse{Text: "from openai"}, nil
		}),
	}}

	resp, err := reg.Invoke(context.Background(), models.InvokeRequest{Provider: "OpenAI"})
	if err != nil {
		t.Fatal(err)
	}
	if resp.Text != "from openai" {
		t.Errorf("unexpected response %q", resp.Text)
	}

	_, err = reg.Invoke(context.Background(), models.InvokeRequest{Provider: "acme"})
	if !errors.Is(err, ErrUnknownProvider) {
		t.Errorf("expected ErrUnknownProvider, got %v", err)
	}
}
