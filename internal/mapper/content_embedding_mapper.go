package mapper

import (
	"time"

	"portfolio-assistant-be/internal/entity"
	"portfolio-assistant-be/internal/model"

	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ContentEmbeddingMapper struct{}

func NewContentEmbeddingMapper() *ContentEmbeddingMapper {
	return &ContentEmbeddingMapper{}
}

func (m *ContentEmbeddingMapper) ToEntity(e *model.ContentEmbedding) *entity.ContentEmbedding {
	if e == nil {
		return nil
	}

	var deletedAt *time.Time
	if e.DeletedAt.Valid {
		t := e.DeletedAt.Time
		deletedAt = &t
	}

	var updatedAt *time.Time
	if !e.UpdatedAt.IsZero() {
		t := e.UpdatedAt
		updatedAt = &t
	}

	return &entity.ContentEmbedding{
		Id:          e.Id,
		ContentId:   e.ContentId,
		ContentType: e.ContentType,
		SearchText:  e.SearchText,
		Content:     []byte(e.Content),
		Embedding:   e.EmbeddingValue.Slice(),
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   updatedAt,
		DeletedAt:   deletedAt,
		IsDeleted:   e.DeletedAt.Valid,
	}
}

func (m *ContentEmbeddingMapper) ToModel(e *entity.ContentEmbedding) *model.ContentEmbedding {
	if e == nil {
		return nil
	}

	var deletedAt gorm.DeletedAt
	if e.DeletedAt != nil {
		deletedAt = gorm.DeletedAt{Time: *e.DeletedAt, Valid: true}
	} else if e.IsDeleted {
		deletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	}

	var updatedAt time.Time
	if e.UpdatedAt != nil {
		updatedAt = *e.UpdatedAt
	}

	return &model.ContentEmbedding{
		Id:             e.Id,
		ContentId:      e.ContentId,
		ContentType:    e.ContentType,
		SearchText:     e.SearchText,
		Content:        datatypes.JSON(e.Content),
		EmbeddingValue: pgvector.NewVector(e.Embedding),
		CreatedAt:      e.CreatedAt,
		UpdatedAt:      updatedAt,
		DeletedAt:      deletedAt,
	}
}
