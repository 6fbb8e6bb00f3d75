package database

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/zatekoja/srq20-api/internal/domain/entities"
	"github.com/zatekoja/srq20-api/internal/domain/repositories"
	"github.com/zatekoja/srq20-api/internal/infrastructure/clients/postgres"
	apperrors "github.com/zatekoja/srq20-api/pkg/errors"
)

const assessmentsTable = "assessments"

const createAssessmentsTable = `CREATE TABLE IF NOT EXISTS assessments (
	id              UUID PRIMARY KEY,
	model_version   TEXT NOT NULL,
	answers         JSONB NOT NULL,
	total_score     INTEGER NOT NULL,
	prediction      INTEGER NOT NULL,
	predicted_class TEXT NOT NULL,
	confidence      DOUBLE PRECISION NOT NULL,
	final_class     TEXT NOT NULL,
	created_at      TIMESTAMPTZ NOT NULL
)`

// AssessmentAdapter persists assessments in Postgres.
type AssessmentAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

var _ repositories.AssessmentRepository = (*AssessmentAdapter)(nil)

// NewAssessmentAdapter creates a new assessment adapter.
func NewAssessmentAdapter(client *postgres.Client) *AssessmentAdapter {
	return &AssessmentAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// EnsureSchema creates the assessments table when it does not exist yet.
func (a *AssessmentAdapter) EnsureSchema(ctx context.Context) error {
	if _, err := a.client.DB().ExecContext(ctx, createAssessmentsTable); err != nil {
		return apperrors.NewInternalError("failed to create assessments table", err)
	}
	return nil
}

// Create inserts an assessment record.
func (a *AssessmentAdapter) Create(ctx context.Context, assessment *entities.Assessment) error {
	if assessment == nil {
		return apperrors.NewInternalError("assessment is nil", fmt.Errorf("assessment is nil"))
	}

	answers, err := json.Marshal(assessment.AnswerMap())
	if err != nil {
		return apperrors.NewInternalError("failed to encode answers", err)
	}

	record := goqu.Record{
		"id":              assessment.ID,
		"model_version":   assessment.ModelVersion,
		"answers":         string(answers),
		"total_score":     assessment.TotalScore,
		"prediction":      assessment.Prediction,
		"predicted_class": assessment.PredictedClass,
		"confidence":      assessment.Confidence,
		"final_class":     string(assessment.FinalClass),
		"created_at":      assessment.CreatedAt,
	}

	query, args, err := a.db.Insert(assessmentsTable).Prepared(true).Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build assessment insert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to create assessment", err)
	}

	return nil
}
