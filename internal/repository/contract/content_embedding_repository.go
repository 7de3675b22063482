package contract

import (
	"context"

	"portfolio-assistant-be/internal/entity"
	"portfolio-assistant-be/internal/repository/specification"

	"github.com/google/uuid"
)

// ScoredContent is one ranked row from the combined lexical+vector search.
type ScoredContent struct {
	ContentId   uuid.UUID
	ContentType string
	Similarity  float64 // 0.0 to 1.0 (1.0 = identical)
	Content     []byte  // denormalized display object, raw JSON
}

// HybridSearchParams drives the single server-side ranking query.
type HybridSearchParams struct {
	Embedding      []float32
	QueryText      string
	MatchThreshold float64
	MatchCount     int
	ContentTypes   []string
}

type ContentEmbeddingRepository interface {
	Create(ctx context.Context, embedding *entity.ContentEmbedding) error
	CreateBulk(ctx context.Context, embeddings []*entity.ContentEmbedding) error
	Update(ctx context.Context, embedding *entity.ContentEmbedding) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByContentId(ctx context.Context, contentId uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ContentEmbedding, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ContentEmbedding, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	// FindByProjectTitle locates a project's precomputed embedding row by title (case-insensitive).
	FindByProjectTitle(ctx context.Context, title string) (*entity.ContentEmbedding, error)
	// FindContentById fetches the denormalized display object for one content row.
	FindContentById(ctx context.Context, contentId uuid.UUID, contentType string) ([]byte, error)
	// HybridSearch runs the combined lexical+vector ranking in a single query.
	HybridSearch(ctx context.Context, params HybridSearchParams) ([]*ScoredContent, error)
}
