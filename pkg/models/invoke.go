package models

// InvokeRequest describes one model invocation. Options carries
// provider-specific parameters; volatile keys (retry controls) are excluded
// from cache fingerprints.
type InvokeRequest struct {
	Provider    string         `json:"provider"`
	Model       string         `json:"model"`
	Prompt      string         `json:"prompt"`
	Temperature float64        `json:"temperature"`
	Options     map[string]any `json:"options,omitempty"`
}

// InvokeResponse is the token-accounted result of a model invocation.
type InvokeResponse struct {
	Text      string `json:"text"`
	TokensIn  int    `json:"tokens_in"`
	TokensOut int    `json:"tokens_out"`
}
