package agents

import (
	"math"
	"strconv"
	"strings"
)

// Verdict is the numeric verifier's opinion on two answer strings.
// Checked is false when either answer could not be parsed numerically,
// in which case the checker model's judgment stands alone.
type Verdict struct {
	Checked    bool
	Equivalent bool
	Confidence float64
	Method     string
}

const (
	numericConfidence = 0.95
	relTolerance      = 1e-9
	absTolerance      = 1e-12
)

// VerifyNumeric compares two answers numerically when both parse as
// numbers, fractions, percentages, or simple multiples of pi and e.
func VerifyNumeric(trueAnswer, modelAnswer string) Verdict {
	a, okA := parseNumber(trueAnswer)
	b, okB := parseNumber(modelAnswer)
	if !okA || !okB {
		return Verdict{}
	}
	return Verdict{
		Checked:    true,
		Equivalent: nearlyEqual(a, b),
		Confidence: numericConfidence,
		Method:     "numeric comparison",
	}
}

func nearlyEqual(a, b float64) bool {
	diff := math.Abs(a - b)
	if diff <= absTolerance {
		return true
	}
	return diff <= relTolerance*math.Max(math.Abs(a), math.Abs(b))
}

// parseNumber normalizes common answer notation and extracts a float.
// Recognized forms: plain numbers, thousands separators, currency and
// approximation prefixes, percentages, fractions, and k*pi or k*e.
func parseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(strings.ToLower(s))
	s = strings.Trim(s, ".")
	for _, prefix := range []string{"$", "≈", "~", "approx.", "approximately"} {
		s = strings.TrimSpace(strings.TrimPrefix(s, prefix))
	}
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}

	if strings.HasSuffix(s, "%") {
		v, ok := parseNumber(strings.TrimSuffix(s, "%"))
		if !ok {
			return 0, false
		}
		return v / 100, true
	}

	if v, ok := parseConstantTerm(s); ok {
		return v, true
	}

	if num, den, ok := strings.Cut(s, "/"); ok {
		n, okN := parseConstantOrFloat(num)
		d, okD := parseConstantOrFloat(den)
		if okN && okD && d != 0 {
			return n / d, true
		}
		return 0, false
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func parseConstantOrFloat(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if v, ok := parseConstantTerm(s); ok {
		return v, true
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// parseConstantTerm handles "pi", "π", "e", and coefficient forms such
// as "2pi", "2*pi", or "3e" (when not scientific notation).
func parseConstantTerm(s string) (float64, bool) {
	for name, value := range map[string]float64{"pi": math.Pi, "π": math.Pi, "e": math.E} {
		if s == name {
			return value, true
		}
		coeff, found := strings.CutSuffix(s, name)
		if !found {
			continue
		}
		coeff = strings.TrimSuffix(strings.TrimSpace(coeff), "*")
		if coeff == "" || coeff == "-" {
			continue
		}
		// "1e3" is scientific notation, not 1000*e.
		if name == "e" {
			if _, err := strconv.ParseFloat(s, 64); err == nil {
				continue
			}
		}
		k, err := strconv.ParseFloat(strings.TrimSpace(coeff), 64)
		if err != nil {
			continue
		}
		return k * value, true
	}
	return 0, false
}
