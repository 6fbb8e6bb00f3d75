package repositories

import (
	"context"

	"github.com/zatekoja/srq20-api/internal/domain/entities"
)

// AssessmentRepository defines the interface for the assessment audit log.
type AssessmentRepository interface {
	Create(ctx context.Context, assessment *entities.Assessment) error
}
