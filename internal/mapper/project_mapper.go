package mapper

import (
	"encoding/json"
	"time"

	"portfolio-assistant-be/internal/entity"
	"portfolio-assistant-be/internal/model"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ProjectMapper struct{}

func NewProjectMapper() *ProjectMapper {
	return &ProjectMapper{}
}

func (m *ProjectMapper) ToEntity(p *model.Project) *entity.Project {
	if p == nil {
		return nil
	}

	var deletedAt *time.Time
	if p.DeletedAt.Valid {
		t := p.DeletedAt.Time
		deletedAt = &t
	}

	var updatedAt *time.Time
	if !p.UpdatedAt.IsZero() {
		t := p.UpdatedAt
		updatedAt = &t
	}

	return &entity.Project{
		Id:          p.Id,
		Title:       p.Title,
		Slug:        p.Slug,
		Summary:     p.Summary,
		Description: p.Description,
		Featured:    p.Featured,
		ImageUrl:    p.ImageUrl,
		Tools:       decodeStringList(p.Tools),
		Tags:        decodeStringList(p.Tags),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   updatedAt,
		DeletedAt:   deletedAt,
		IsDeleted:   p.DeletedAt.Valid,
	}
}

func (m *ProjectMapper) ToModel(p *entity.Project) *model.Project {
	if p == nil {
		return nil
	}

	var deletedAt gorm.DeletedAt
	if p.DeletedAt != nil {
		deletedAt = gorm.DeletedAt{Time: *p.DeletedAt, Valid: true}
	} else if p.IsDeleted {
		deletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	}

	var updatedAt time.Time
	if p.UpdatedAt != nil {
		updatedAt = *p.UpdatedAt
	}

	return &model.Project{
		Id:          p.Id,
		Title:       p.Title,
		Slug:        p.Slug,
		Summary:     p.Summary,
		Description: p.Description,
		Featured:    p.Featured,
		ImageUrl:    p.ImageUrl,
		Tools:       encodeStringList(p.Tools),
		Tags:        encodeStringList(p.Tags),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   updatedAt,
		DeletedAt:   deletedAt,
	}
}

func (m *ProjectMapper) ImageToEntity(img *model.ProjectImage) *entity.ProjectImage {
	if img == nil {
		return nil
	}
	return &entity.ProjectImage{
		Id:        img.Id,
		ProjectId: img.ProjectId,
		Url:       img.Url,
		SortOrder: img.SortOrder,
		CreatedAt: img.CreatedAt,
	}
}

func (m *ProjectMapper) ImageToModel(img *entity.ProjectImage) *model.ProjectImage {
	if img == nil {
		return nil
	}
	return &model.ProjectImage{
		Id:        img.Id,
		ProjectId: img.ProjectId,
		Url:       img.Url,
		SortOrder: img.SortOrder,
		CreatedAt: img.CreatedAt,
	}
}

func decodeStringList(raw datatypes.JSON) []string {
	if len(raw) == 0 {
		return nil
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil
	}
	return out
}

func encodeStringList(values []string) datatypes.JSON {
	if values == nil {
		return nil
	}
	raw, err := json.Marshal(values)
	if err != nil {
		return nil
	}
	return datatypes.JSON(raw)
}
