package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/zatekoja/srq20-api/internal/domain/entities"
	"github.com/zatekoja/srq20-api/internal/domain/providers"
	"github.com/zatekoja/srq20-api/internal/domain/repositories"
	"github.com/zatekoja/srq20-api/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/srq20-api/pkg/errors"
)

// PredictionService scores questionnaires with the loaded classifier.
type PredictionService struct {
	classifier  providers.Classifier
	assessments repositories.AssessmentRepository
	metrics     *observability.Metrics
	now         func() time.Time
}

// NewPredictionService creates a new prediction service. The classifier is
// shared by all requests and must not be nil.
func NewPredictionService(classifier providers.Classifier, metrics *observability.Metrics) *PredictionService {
	return &PredictionService{
		classifier: classifier,
		metrics:    metrics,
		now:        time.Now,
	}
}

// SetAssessmentRepository enables the audit log
func (s *PredictionService) SetAssessmentRepository(repo repositories.AssessmentRepository) {
	s.assessments = repo
}

// ModelVersion identifies the classifier behind the service
func (s *PredictionService) ModelVersion() string {
	return s.classifier.Version()
}

// Predict classifies a questionnaire and maps the result onto a severity label.
func (s *PredictionService) Predict(ctx context.Context, q *entities.Questionnaire) (*entities.PredictionResult, error) {
	ctx, span := observability.StartSpan(ctx, "PredictionService.Predict")
	defer span.End()

	start := time.Now()
	prediction, confidence, err := s.infer(q)
	inference := time.Since(start)
	if err != nil {
		observability.RecordError(span, err)
		return nil, apperrors.NewInferenceError("model prediction failed", err)
	}

	predictedClass := entities.ClassLabel(prediction)
	result := &entities.PredictionResult{
		Prediction:     prediction,
		PredictedClass: predictedClass,
		Confidence:     entities.RoundConfidence(confidence),
		FinalClass:     entities.ApplyThreshold(predictedClass, confidence),
	}

	observability.SetSpanAttributes(span,
		attribute.String("srq20.predicted_class", result.PredictedClass),
		attribute.String("srq20.final_class", string(result.FinalClass)),
		attribute.Float64("srq20.confidence", result.Confidence),
	)
	observability.RecordPrediction(ctx, s.metrics, result.PredictedClass, string(result.FinalClass), inference)

	s.audit(ctx, q, result)

	return result, nil
}

// infer runs the classifier and picks the probability of the predicted class.
// A panic inside the model is reported as an error.
func (s *PredictionService) infer(q *entities.Questionnaire) (prediction int, confidence float64, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%v", r)
		}
	}()

	features := q.Features()

	prediction, err = s.classifier.Predict(features)
	if err != nil {
		return 0, 0, err
	}

	proba, err := s.classifier.PredictProba(features)
	if err != nil {
		return 0, 0, err
	}

	idx := classIndex(s.classifier.Classes(), prediction)
	if idx < 0 || idx >= len(proba) {
		return 0, 0, fmt.Errorf("index %d is out of bounds for axis 0 with size %d", prediction, len(proba))
	}

	return prediction, proba[idx], nil
}

func classIndex(classes []int, class int) int {
	for i, c := range classes {
		if c == class {
			return i
		}
	}
	return -1
}

func (s *PredictionService) audit(ctx context.Context, q *entities.Questionnaire, result *entities.PredictionResult) {
	if s.assessments == nil {
		return
	}

	assessment := entities.NewAssessment(q, result, s.classifier.Version())
	assessment.ID = uuid.New().String()
	assessment.CreatedAt = s.now().UTC()

	if err := s.assessments.Create(ctx, assessment); err != nil {
		observability.LoggerFromContext(ctx).Warn().
			Err(err).
			Str("assessment_id", assessment.ID).
			Msg("Failed to record assessment")
	}
}
