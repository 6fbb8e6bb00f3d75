package evaluation

import "fmt"

// GuardrailConfig sets the minimum quality a model must reach on the
// labelled dataset. Zero values disable a check.
type GuardrailConfig struct {
	MinAccuracy   float64
	MinRecall     float64
	MaxFailedRate float64
}

type Guardrails struct {
	config GuardrailConfig
}

func NewGuardrails(config GuardrailConfig) *Guardrails {
	return &Guardrails{config: config}
}

// Check returns one message per violated guardrail.
func (g *Guardrails) Check(s *EvalSummary) []string {
	var violations []string

	if g.config.MinAccuracy > 0 && s.Accuracy < g.config.MinAccuracy {
		violations = append(violations, fmt.Sprintf("accuracy %.4f below minimum %.4f", s.Accuracy, g.config.MinAccuracy))
	}
	// Recall on the depressed class matters most for a screening tool
	if g.config.MinRecall > 0 && s.Recall < g.config.MinRecall {
		violations = append(violations, fmt.Sprintf("recall %.4f below minimum %.4f", s.Recall, g.config.MinRecall))
	}
	if g.config.MaxFailedRate > 0 && s.TotalSamples > 0 {
		rate := float64(s.Failures) / float64(s.TotalSamples)
		if rate > g.config.MaxFailedRate {
			violations = append(violations, fmt.Sprintf("failure rate %.4f above maximum %.4f", rate, g.config.MaxFailedRate))
		}
	}

	return violations
}
