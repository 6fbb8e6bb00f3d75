package evaluation

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/zatekoja/srq20-api/internal/domain/entities"
)

// Predictor scores one questionnaire.
type Predictor interface {
	Predict(ctx context.Context, q *entities.Questionnaire) (*entities.PredictionResult, error)
}

// Runner runs evaluation across a labelled dataset.
type Runner struct {
	predictor Predictor
}

func NewRunner(predictor Predictor) *Runner {
	return &Runner{predictor: predictor}
}

func (r *Runner) Run(ctx context.Context, samples []LabelledSample) (*EvalSummary, error) {
	summary := &EvalSummary{
		TotalSamples: len(samples),
		BySeverity:   make(map[entities.Severity]int),
	}
	for _, severity := range entities.Severities() {
		summary.BySeverity[severity] = 0
	}

	for _, sample := range samples {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		q := sample.Questionnaire()
		start := time.Now()
		prediction, err := r.predictor.Predict(ctx, &q)
		duration := time.Since(start)

		if err != nil {
			log.Warn().Err(err).Str("sample_id", sample.ID).Msg("Prediction failed")
			summary.Failures++
			continue
		}

		r.updateSummary(summary, EvalResult{
			SampleID:   sample.ID,
			Label:      sample.LabelValue(),
			Prediction: prediction.Prediction,
			Confidence: prediction.Confidence,
			FinalClass: prediction.FinalClass,
			Latency:    duration,
		})
	}

	r.finalizeSummary(summary)
	return summary, nil
}

func (r *Runner) updateSummary(s *EvalSummary, res EvalResult) {
	s.Confusion.Add(res.Label, res.Prediction)
	s.MeanConfidence += res.Confidence
	s.AvgLatency += res.Latency
	s.BySeverity[res.FinalClass]++
}

func (r *Runner) finalizeSummary(s *EvalSummary) {
	scored := s.Confusion.Total()
	if scored > 0 {
		s.MeanConfidence /= float64(scored)
		s.AvgLatency /= time.Duration(scored)
	}

	s.Accuracy = s.Confusion.Accuracy()
	s.Precision = s.Confusion.Precision()
	s.Recall = s.Confusion.Recall()
	s.F1 = s.Confusion.F1()
}
