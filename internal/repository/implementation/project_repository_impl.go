package implementation

import (
	"context"
	"errors"

	"portfolio-assistant-be/internal/entity"
	"portfolio-assistant-be/internal/mapper"
	"portfolio-assistant-be/internal/model"
	"portfolio-assistant-be/internal/repository/contract"
	"portfolio-assistant-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProjectRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ProjectMapper
}

func NewProjectRepository(db *gorm.DB) contract.ProjectRepository {
	return &ProjectRepositoryImpl{
		db:     db,
		mapper: mapper.NewProjectMapper(),
	}
}

func (r *ProjectRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *ProjectRepositoryImpl) Create(ctx context.Context, project *entity.Project) error {
	m := r.mapper.ToModel(project)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*project = *r.mapper.ToEntity(m)
	return nil
}

func (r *ProjectRepositoryImpl) Update(ctx context.Context, project *entity.Project) error {
	m := r.mapper.ToModel(project)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*project = *r.mapper.ToEntity(m)
	return nil
}

func (r *ProjectRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Project{}, id).Error
}

func (r *ProjectRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Project, error) {
	var m model.Project
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *ProjectRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Project, error) {
	var models []*model.Project
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.Project, len(models))
	for i, m := range models {
		entities[i] = r.mapper.ToEntity(m)
	}
	return entities, nil
}

func (r *ProjectRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.Project{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *ProjectRepositoryImpl) Titles(ctx context.Context) ([]string, error) {
	var titles []string
	err := r.db.WithContext(ctx).
		Model(&model.Project{}).
		Order("created_at ASC").
		Pluck("title", &titles).Error
	if err != nil {
		return nil, err
	}
	return titles, nil
}

type ProjectImageRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ProjectMapper
}

func NewProjectImageRepository(db *gorm.DB) contract.ProjectImageRepository {
	return &ProjectImageRepositoryImpl{
		db:     db,
		mapper: mapper.NewProjectMapper(),
	}
}

func (r *ProjectImageRepositoryImpl) Create(ctx context.Context, image *entity.ProjectImage) error {
	m := r.mapper.ImageToModel(image)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*image = *r.mapper.ImageToEntity(m)
	return nil
}

func (r *ProjectImageRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.ProjectImage{}, id).Error
}

func (r *ProjectImageRepositoryImpl) FindByProjectId(ctx context.Context, projectId uuid.UUID) ([]*entity.ProjectImage, error) {
	var models []*model.ProjectImage
	err := r.db.WithContext(ctx).
		Where("project_id = ?", projectId).
		Order("sort_order ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	entities := make([]*entity.ProjectImage, len(models))
	for i, m := range models {
		entities[i] = r.mapper.ImageToEntity(m)
	}
	return entities, nil
}
