package models

// RunMetadata summarizes a batch run.
type RunMetadata struct {
	TotalAttempted int `json:"total_attempted"`
	TotalAccepted  int `json:"total_accepted"`
}

// RunResult is the final output of a generation run. Every launched attempt
// lands in exactly one of the three lists.
type RunResult struct {
	Accepted  []ProblemRecord    `json:"accepted"`
	Discarded []ProblemRecord    `json:"discarded"`
	Errored   []ProblemRecord    `json:"errored"`
	TotalCost float64            `json:"total_cost"`
	Breakdown map[string]CostRow `json:"model_breakdown,omitempty"`
	Metadata  RunMetadata        `json:"metadata"`
}

// CostRow is the per-(provider, model) slice of a cost breakdown.
type CostRow struct {
	InputTokens  int     `json:"input_tokens"`
	OutputTokens int     `json:"output_tokens"`
	CostUSD      float64 `json:"cost_usd"`
}

// PoolStats is a snapshot of the adaptive worker pool.
type PoolStats struct {
	CurrentWorkers    int     `json:"current_workers"`
	CompletedTasks    int     `json:"completed_tasks"`
	SuccessfulTasks   int     `json:"successful_tasks"`
	FailedTasks       int     `json:"failed_tasks"`
	SuccessRate       float64 `json:"success_rate"`
	TargetSuccessRate float64 `json:"target_success_rate"`
}
