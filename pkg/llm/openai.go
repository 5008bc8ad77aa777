package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mathforge-ai/mathforge/pkg/models"
)

const defaultOpenAIURL = "https://api.openai.com"

// chatMessage is an OpenAI-style chat message.
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatResponse is the subset of an OpenAI-compatible chat completion
// response this client needs.
type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
}

// OpenAI invokes OpenAI chat and reasoning models.
type OpenAI struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewOpenAI creates an OpenAI invoker. An empty baseURL selects the public API.
func NewOpenAI(apiKey, baseURL string) *OpenAI {
	if baseURL == "" {
		baseURL = defaultOpenAIURL
	}
	return &OpenAI{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 5 * time.Minute},
	}
}

// Invoke implements Invoker via the chat completions endpoint. Reasoning
// models (o-series) reject sampling parameters, so temperature is only sent
// for gpt-* models and reasoning effort is forwarded from options.
func (o *OpenAI) Invoke(ctx context.Context, req models.InvokeRequest) (models.InvokeResponse, error) {
	body := map[string]any{
		"model":    req.Model,
		"messages": []chatMessage{{Role: "user", Content: req.Prompt}},
	}
	if strings.HasPrefix(req.Model, "gpt") {
		body["temperature"] = req.Temperature
	} else if effort, ok := req.Options["effort"]; ok {
		body["reasoning_effort"] = effort
	}
	for k, v := range req.Options {
		if k == "effort" || volatileOption(k) {
			continue
		}
		body[k] = v
	}

	headers := map[string]string{"Authorization": "Bearer " + o.apiKey}
	raw, err := postJSON(ctx, o.client, o.baseURL+"/v1/chat/completions", headers, body, req)
	if err != nil {
		return models.InvokeResponse{}, err
	}

	var parsed chatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return models.InvokeResponse{}, &MalformedResponseError{
			Provider: req.Provider, Model: req.Model, Detail: "invalid JSON body",
		}
	}
	if len(parsed.Choices) == 0 || strings.TrimSpace(parsed.Choices[0].Message.Content) == "" {
		return models.InvokeResponse{}, &MalformedResponseError{
			Provider: req.Provider, Model: req.Model, Detail: "empty completion",
		}
	}

	return models.InvokeResponse{
		Text:      strings.TrimSpace(parsed.Choices[0].Message.Content),
		TokensIn:  parsed.Usage.PromptTokens,
		TokensOut: parsed.Usage.CompletionTokens,
	}, nil
}

// volatileOption reports request options that are retry controls rather than
// provider parameters.
func volatileOption(k string) bool {
	return k == "max_retries" || k == "retry_delay"
}

// postJSON sends a JSON POST and returns the response body. Network errors
// and 5xx/429 statuses surface as retryable InvocationErrors.
func postJSON(ctx context.Context, client *http.Client, url string, headers map[string]string, body any, req models.InvokeRequest) ([]byte, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		httpReq.Header.Set(k, v)
	}

	resp, err := client.Do(httpReq)
	if err != nil {
		return nil, &InvocationError{Provider: req.Provider, Model: req.Model, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &InvocationError{Provider: req.Provider, Model: req.Model, Err: err}
	}

	if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
		return nil, &InvocationError{
			Provider: req.Provider, Model: req.Model,
			Err: fmt.Errorf("status %d: %s", resp.StatusCode, truncate(raw, 200)),
		}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &MalformedResponseError{
			Provider: req.Provider, Model: req.Model,
			Detail: fmt.Sprintf("status %d: %s", resp.StatusCode, truncate(raw, 200)),
		}
	}
	return raw, nil
}

func truncate(b []byte, n int) string {
	s := string(b)
	if len(s) > n {
		return s[:n] + "..."
	}
	return s
}
