package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/mathforge-ai/mathforge/pkg/models"
)

const defaultFireworksURL = "https://api.fireworks.ai/inference"

// DeepSeek invokes DeepSeek models hosted on the Fireworks API, which speaks
// the OpenAI chat completions dialect.
type DeepSeek struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewDeepSeek creates a DeepSeek invoker. An empty baseURL selects Fireworks.
func NewDeepSeek(apiKey, baseURL string) *DeepSeek {
	if baseURL == "" {
		baseURL = defaultFireworksURL
	}
	return &DeepSeek{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 5 * time.Minute},
	}
}

// Invoke implements Invoker.
func (d *DeepSeek) Invoke(ctx context.Context, req models.InvokeRequest) (models.InvokeResponse, error) {
	body := map[string]any{
		"model":       req.Model,
		"max_tokens":  5120,
		"top_p":       1,
		"temperature": req.Temperature,
		"messages":    []chatMessage{{Role: "user", Content: req.Prompt}},
	}
	for k, v := range req.Options {
		if volatileOption(k) {
			continue
		}
		body[k] = v
	}

	headers := map[string]string{
		"Authorization": "Bearer " + d.apiKey,
		"Accept":        "application/json",
	}
	raw, err := postJSON(ctx, d.client, d.baseURL+"/v1/chat/completions", headers, body, req)
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
