package models

// Problem is a candidate adversarial math problem as it accumulates fields
// while moving through the generation pipeline.
type Problem struct {
	Subject            string            `json:"subject"`
	Topic              string            `json:"topic"`
	Problem            string            `json:"problem"`
	Answer             string            `json:"answer"`
	Hints              map[string]string `json:"hints"`
	SeedPrompt         string            `json:"seed_prompt,omitempty"`
	HintsWereCorrected bool              `json:"hints_were_corrected"`
	TargetAnswer       string            `json:"target_model_answer,omitempty"`
}

// ProblemRecord is the caller-facing form of a finished attempt.
type ProblemRecord struct {
	Seq             int               `json:"seq"`
	Subject         string            `json:"subject"`
	Topic           string            `json:"topic"`
	Problem         string            `json:"problem,omitempty"`
	Answer          string            `json:"answer,omitempty"`
	Hints           map[string]string `json:"hints,omitempty"`
	TargetAnswer    string            `json:"target_model_answer,omitempty"`
	RejectionReason string            `json:"rejection_reason,omitempty"`
	Error           string            `json:"error,omitempty"`
	Stage           string            `json:"stage,omitempty"`
	Similarity      *float64          `json:"similarity_score,omitempty"`
}

// CheckResult is the checker's verdict on a problem, in either mode.
type CheckResult struct {
	Valid          bool              `json:"valid"`
	Reason         string            `json:"reason"`
	CorrectedHints map[string]string `json:"corrected_hints,omitempty"`
	Confidence     float64           `json:"equivalence_confidence,omitempty"`
}
