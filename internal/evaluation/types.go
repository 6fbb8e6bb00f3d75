package evaluation

import (
	"time"

	"github.com/zatekoja/srq20-api/internal/domain/entities"
)

// LabelledSample is one questionnaire with its reference diagnosis.
type LabelledSample struct {
	ID        string         `json:"id"`
	Responses map[string]int `json:"responses"`
	Label     *int           `json:"label"` // 1 = depressed, 0 = not depressed
}

// LabelValue returns the reference label. Call ValidateSamples first; a
// missing label reads as zero.
func (s LabelledSample) LabelValue() int {
	if s.Label == nil {
		return 0
	}
	return *s.Label
}

// Questionnaire converts the responses into the model input. Call
// ValidateSamples first; absent items read as zero.
func (s LabelledSample) Questionnaire() entities.Questionnaire {
	var answers [entities.FeatureCount]int
	for i, name := range entities.FeatureNames {
		answers[i] = s.Responses[name]
	}
	return entities.QuestionnaireFromAnswers(answers)
}

// EvalResult holds the evaluation outcome for a single sample.
type EvalResult struct {
	SampleID   string
	Label      int
	Prediction int
	Confidence float64
	FinalClass entities.Severity
	Latency    time.Duration
}

// EvalSummary holds aggregate metrics across all samples.
type EvalSummary struct {
	TotalSamples   int                       `json:"total_samples"`
	Failures       int                       `json:"failures"`
	Accuracy       float64                   `json:"accuracy"`
	Precision      float64                   `json:"precision"`
	Recall         float64                   `json:"recall"`
	F1             float64                   `json:"f1"`
	Confusion      ConfusionMatrix           `json:"confusion_matrix"`
	MeanConfidence float64                   `json:"mean_confidence"`
	AvgLatency     time.Duration             `json:"avg_latency_ns"`
	BySeverity     map[entities.Severity]int `json:"by_severity"`
}
