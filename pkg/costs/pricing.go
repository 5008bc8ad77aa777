package costs

// Key identifies a priced model.
type Key struct {
	Provider string
	Model    string
}

// rates are USD per 1K tokens (input, output).
type rates struct {
	Input  float64
	Output float64
}

// modelPricing is the static price table. Unknown pairs cost zero rather
// than failing, so new models degrade to untracked spend instead of errors.
var modelPricing = map[Key]rates{
	{"openai", "gpt-4o"}:      {0.0025, 0.01},
	{"openai", "gpt-4o-mini"}: {0.00015, 0.0006},
	{"openai", "gpt-4.1"}:     {0.002, 0.008},
	{"openai", "gpt-4.1-mini"}: {0.0004, 0.0016},
	{"openai", "gpt-4.1-nano"}: {0.0001, 0.0004},
	{"openai", "o3"}:          {0.01, 0.04},
	{"openai", "o3-mini"}:     {0.0011, 0.0044},
	{"openai", "o4-mini"}:     {0.0011, 0.0044},
	{"openai", "o1"}:          {0.0011, 0.0044},

	{"gemini", "gemini-2.5-pro-preview-03-25"}: {0.0025, 0.015},
	{"gemini", "gemini-2.5-pro"}:               {0.0025, 0.015},

	{"deepseek", "deepseek-reasoner"}: {0.0015, 0.0025},
	{"perplexity", "sonar-pro"}:       {0.01, 0.03},
}

// Rates returns the per-1K-token input and output rates for a model.
// Unknown (provider, model) pairs are free.
func Rates(provider, model string) (input, output float64) {
	r, ok := modelPricing[Key{Provider: provider, Model: model}]
	if !ok {
		return 0, 0
	}
	return r.Input, r.Output
}

// Cost computes the dollar cost of a single invocation.
func Cost(provider, model string, tokensIn, tokensOut int) float64 {
	in, out := Rates(provider, model)
	return (float64(tokensIn)/1000)*in + (float64(tokensOut)/1000)*out
}
