package contract

import (
	"context"

	"portfolio-assistant-be/internal/entity"
	"portfolio-assistant-be/internal/repository/specification"

	"github.com/google/uuid"
)

type ProjectRepository interface {
	Create(ctx context.Context, project *entity.Project) error
	Update(ctx context.Context, project *entity.Project) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Project, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Project, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	// Titles returns every live project title; feeds the intent detector's cache.
	Titles(ctx context.Context) ([]string, error)
}

type ProjectImageRepository interface {
	Create(ctx context.Context, image *entity.ProjectImage) error
	Delete(ctx context.Context, id uuid.UUID) error
	// FindByProjectId returns gallery images ordered by sort_order.
	FindByProjectId(ctx context.Context, projectId uuid.UUID) ([]*entity.ProjectImage, error)
}
