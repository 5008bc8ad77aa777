package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/mathforge-ai/mathforge/pkg/models"
)

const defaultGeminiURL = "https://generativelanguage.googleapis.com"

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	UsageMetadata struct {
		PromptTokenCount     int `json:"promptTokenCount"`
		CandidatesTokenCount int `json:"candidatesTokenCount"`
	} `json:"usageMetadata"`
}

// Gemini invokes Google Gemini models via the generateContent endpoint.
// Some responses omit usage metadata; the cost tracker estimates missing
// token counts from text length.
type Gemini struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewGemini creates a Gemini invoker. An empty baseURL selects the public API.
func NewGemini(apiKey, baseURL string) *Gemini {
	if baseURL == "" {
		baseURL = defaultGeminiURL
	}
	return &Gemini{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 5 * time.Minute},
	}
}

// Invoke implements Invoker.
func (g *Gemini) Invoke(ctx context.Context, req models.InvokeRequest) (models.InvokeResponse, error) {
	body := map[string]any{
		"contents": []map[string]any{
			{"parts": []map[string]string{{"text": req.Prompt}}},
		},
		"generationConfig": map[string]any{"temperature": req.Temperature},
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", g.baseURL, req.Model, g.apiKey)
	raw, err := postJSON(ctx, g.client, url, nil, body, req)
	if err != nil {
		return models.InvokeResponse{}, err
	}

	var parsed geminiResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return models.InvokeResponse{}, &MalformedResponseError{
			Provider: req.Provider, Model: req.Model, Detail: "invalid JSON body",
		}
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return models.InvokeResponse{}, &MalformedResponseError{
			Provider: req.Provider, Model: req.Model, Detail: "no candidates returned",
		}
	}

	var text strings.Builder
	for _, part := range parsed.Candidates[0].Content.Parts {
		text.WriteString(part.Text)
	}
	out := strings.TrimSpace(text.String())
	if out == "" {
		return models.InvokeResponse{}, &MalformedResponseError{
			Provider: req.Provider, Model: req.Model, Detail: "empty candidate text",
		}
	}

	return models.InvokeResponse{
		Text:      out,
		TokensIn:  parsed.UsageMetadata.PromptTokenCount,
		TokensOut: parsed.UsageMetadata.CandidatesTokenCount,
	}, nil
}
