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
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

// lexicalBoost is the similarity assigned to a verbatim text hit. It sits just
// below the direct-match score so deterministic matches still rank first.
const lexicalBoost = 0.95

type ContentEmbeddingRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ContentEmbeddingMapper
}

func NewContentEmbeddingRepository(db *gorm.DB) contract.ContentEmbeddingRepository {
	return &ContentEmbeddingRepositoryImpl{
		db:     db,
		mapper: mapper.NewContentEmbeddingMapper(),
	}
}

func (r *ContentEmbeddingRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *ContentEmbeddingRepositoryImpl) Create(ctx context.Context, embedding *entity.ContentEmbedding) error {
	m := r.mapper.ToModel(embedding)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*embedding = *r.mapper.ToEntity(m)
	return nil
}

func (r *ContentEmbeddingRepositoryImpl) CreateBulk(ctx context.Context, embeddings []*entity.ContentEmbedding) error {
	models := make([]*model.ContentEmbedding, len(embeddings))
	for i, e := range embeddings {
		models[i] = r.mapper.ToModel(e)
	}

	if err := r.db.WithContext(ctx).Create(models).Error; err != nil {
		return err
	}

	for i, m := range models {
		*embeddings[i] = *r.mapper.ToEntity(m)
	}
	return nil
}

func (r *ContentEmbeddingRepositoryImpl) Update(ctx context.Context, embedding *entity.ContentEmbedding) error {
	m := r.mapper.ToModel(embedding)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*embedding = *r.mapper.ToEntity(m)
	return nil
}

func (r *ContentEmbeddingRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.ContentEmbedding{}, id).Error
}

func (r *ContentEmbeddingRepositoryImpl) DeleteByContentId(ctx context.Context, contentId uuid.UUID) error {
	return r.db.WithContext(ctx).Where("content_id = ?", contentId).Delete(&model.ContentEmbedding{}).Error
}

func (r *ContentEmbeddingRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ContentEmbedding, error) {
	var m model.ContentEmbedding
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *ContentEmbeddingRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ContentEmbedding, error) {
	var models []*model.ContentEmbedding
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.ContentEmbedding, len(models))
	for i, m := range models {
		entities[i] = r.mapper.ToEntity(m)
	}
	return entities, nil
}

func (r *ContentEmbeddingRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.ContentEmbedding{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *ContentEmbeddingRepositoryImpl) FindByProjectTitle(ctx context.Context, title string) (*entity.ContentEmbedding, error) {
	var m model.ContentEmbedding
	err := r.db.WithContext(ctx).
		Joins("JOIN projects ON projects.id = content_embeddings.content_id").
		Where("content_embeddings.content_type = ?", "project").
		Where("LOWER(projects.title) = LOWER(?)", title).
		Where("projects.deleted_at IS NULL").
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *ContentEmbeddingRepositoryImpl) FindContentById(ctx context.Context, contentId uuid.UUID, contentType string) ([]byte, error) {
	var m model.ContentEmbedding
	err := r.db.WithContext(ctx).
		Where("content_id = ?", contentId).
		Where("content_type = ?", contentType).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return []byte(m.Content), nil
}

// HybridSearch scores each row as the better of its vector cosine similarity
// and a flat lexical boost for verbatim text hits, then applies the threshold,
// content-type filter, and count in a single round trip.
func (r *ContentEmbeddingRepositoryImpl) HybridSearch(ctx context.Context, params contract.HybridSearchParams) ([]*contract.ScoredContent, error) {
	if params.MatchCount <= 0 {
		params.MatchCount = 5
	}

	type row struct {
		ContentId   uuid.UUID
		ContentType string
		Content     []byte
		Similarity  float64
	}
	var rows []row

	queryVector := pgvector.NewVector(params.Embedding)

	err := r.db.WithContext(ctx).
		Table("content_embeddings").
		Select(`content_id, content_type, content,
			GREATEST(1 - (embedding_value <=> ?),
				CASE WHEN search_text ILIKE '%' || ? || '%' THEN ? ELSE 0 END) AS similarity`,
			queryVector, params.QueryText, lexicalBoost).
		Where("deleted_at IS NULL").
		Where("content_type IN ?", params.ContentTypes).
		Where(`GREATEST(1 - (embedding_value <=> ?),
			CASE WHEN search_text ILIKE '%' || ? || '%' THEN ? ELSE 0 END) >= ?`,
			queryVector, params.QueryText, lexicalBoost, params.MatchThreshold).
		Order("similarity DESC").
		Limit(params.MatchCount).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	results := make([]*contract.ScoredContent, len(rows))
	for i, res := range rows {
		results[i] = &contract.ScoredContent{
			ContentId:   res.ContentId,
			ContentType: res.ContentType,
			Similarity:  res.Similarity,
			Content:     res.Content,
		}
	}
	return results, nil
}
