package agents

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ValidationError reports a structurally invalid model response: missing
// required fields, malformed JSON, or content that fails role checks.
// Validation errors are never retried.
type ValidationError struct {
	Role   string
	Detail string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s validation failed: %s", e.Role, e.Detail)
}

// parseJSON decodes a model reply into v, tolerating markdown code fences
// and leading or trailing prose around the JSON object.
func parseJSON(role, raw string, v any) error {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		if i := strings.LastIndex(s, "```"); i >= 0 {
			s = s[:i]
		}
		s = strings.TrimSpace(s)
	}
	if err := json.Unmarshal([]byte(s), v); err == nil {
		return nil
	}
	// Salvage pass: take the outermost braces.
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start >= 0 && end > start {
		if err := json.Unmarshal([]byte(s[start:end+1]), v); err == nil {
			return nil
		}
	}
	return &ValidationError{Role: role, Detail: fmt.Sprintf("response is not valid JSON: %.120s", s)}
}
