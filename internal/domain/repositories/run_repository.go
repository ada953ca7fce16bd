package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/johnquangdev/meeting-reporter/internal/domain/entities"
)

// RunRepository keeps the state of pipeline runs
type RunRepository interface {
	Save(ctx context.Context, run *entities.PipelineRun) error
	Get(ctx context.Context, id uuid.UUID) (*entities.PipelineRun, error)
	ListBySession(ctx context.Context, sessionID string, limit int) ([]*entities.PipelineRun, error)
}
