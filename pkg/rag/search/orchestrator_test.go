package search

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portfolio-assistant-be/internal/constant"
	"portfolio-assistant-be/internal/entity"
	"portfolio-assistant-be/internal/pkg/logger"
	"portfolio-assistant-be/internal/repository/contract"
	"portfolio-assistant-be/internal/repository/specification"
	"portfolio-assistant-be/pkg/embedding"
	"portfolio-assistant-be/pkg/rag/intent"
)

type fakeClassifier struct {
	result intent.Intent
}

func (f *fakeClassifier) DetectProjectQuery(ctx context.Context, query string) intent.Intent {
	return f.result
}

type fakeEmbedder struct {
	lastText string
	err      error
}

func (f *fakeEmbedder) Generate(ctx context.Context, text string, taskType string) (*embedding.EmbeddingResponse, error) {
	f.lastText = text
	if f.err != nil {
		return nil, f.err
	}
	return &embedding.EmbeddingResponse{
		Embedding: embedding.EmbeddingResponseEmbedding{Values: []float32{0.1, 0.2}},
	}, nil
}

type fakeEmbeddingRepo struct {
	contract.ContentEmbeddingRepository

	titleRow  *entity.ContentEmbedding
	titleErr  error
	content   []byte
	searchOut []*contract.ScoredContent
	searchErr error
}

func (f *fakeEmbeddingRepo) FindByProjectTitle(ctx context.Context, title string) (*entity.ContentEmbedding, error) {
	return f.titleRow, f.titleErr
}

func (f *fakeEmbeddingRepo) FindContentById(ctx context.Context, contentId uuid.UUID, contentType string) ([]byte, error) {
	return f.content, nil
}

func (f *fakeEmbeddingRepo) HybridSearch(ctx context.Context, params contract.HybridSearchParams) ([]*contract.ScoredContent, error) {
	return f.searchOut, f.searchErr
}

type fakeProjectRepo struct {
	contract.ProjectRepository

	project  *entity.Project
	featured []*entity.Project
}

func (f *fakeProjectRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Project, error) {
	return f.project, nil
}

func (f *fakeProjectRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Project, error) {
	rows := append([]*entity.Project(nil), f.featured...)
	for _, spec := range specs {
		switch s := spec.(type) {
		case specification.OrderBy:
			if s.Field == "featured" {
				sort.SliceStable(rows, func(i, j int) bool {
					if s.Desc {
						return rows[i].Featured > rows[j].Featured
					}
					return rows[i].Featured < rows[j].Featured
				})
			}
		case specification.Limit:
			if len(rows) > s.N {
				rows = rows[:s.N]
			}
		}
	}
	return rows, nil
}

func newOrchestrator(c QueryClassifier, e *fakeEmbedder, er *fakeEmbeddingRepo, pr *fakeProjectRepo) *Orchestrator {
	return NewOrchestrator(c, e, er, pr, logger.NewNop())
}

func TestHybridSearchDirectMatchDeduplicates(t *testing.T) {
	contentId := uuid.New()
	classifier := &fakeClassifier{result: intent.Intent{
		IsProjectQuery: true,
		ProjectName:    "Modern Day Sniper",
		Confidence:     1.0,
		MatchPattern:   intent.PatternDirectMatch,
	}}
	embedder := &fakeEmbedder{}
	embeddingRepo := &fakeEmbeddingRepo{
		titleRow: &entity.ContentEmbedding{
			ContentId:   contentId,
			ContentType: constant.ContentTypeProject,
		},
		content: []byte(`{"name":"Modern Day Sniper","slug":"modern-day-sniper","summary":"Precision rifle training platform"}`),
		searchOut: []*contract.ScoredContent{
			{
				ContentId:   contentId,
				ContentType: constant.ContentTypeProject,
				Similarity:  0.82,
				Content:     []byte(`{"name":"modern day sniper","slug":"modern-day-sniper","summary":"dup"}`),
			},
			{
				ContentId:   uuid.New(),
				ContentType: constant.ContentTypeGeneralInfo,
				Similarity:  0.61,
				Content:     []byte(`{"title":"Background","content":"Jordan builds web products."}`),
			},
		},
	}
	projectRepo := &fakeProjectRepo{project: &entity.Project{Id: uuid.New(), Title: "Modern Day Sniper"}}

	docs, err := newOrchestrator(classifier, embedder, embeddingRepo, projectRepo).
		HybridSearch(context.Background(), "tell me about Modern Day Sniper", Options{})

	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, MatchDirectProject, docs[0].MatchType)
	assert.InDelta(t, 0.99, docs[0].Similarity, 0.0001)
	assert.Equal(t, "Modern Day Sniper", docs[0].Project.Name)
	// The lower-ranked duplicate of the same project is dropped.
	assert.Equal(t, constant.ContentTypeGeneralInfo, docs[1].ContentType)
}

func TestHybridSearchNarrowsQueryWhenDirectRowMissing(t *testing.T) {
	classifier := &fakeClassifier{result: intent.Intent{
		IsProjectQuery: true,
		ProjectName:    "Swyvvl",
		Confidence:     1.0,
		MatchPattern:   intent.PatternDirectMatch,
	}}
	embedder := &fakeEmbedder{}
	embeddingRepo := &fakeEmbeddingRepo{
		// No embedding row exists yet for this project.
		titleRow:  nil,
		searchOut: nil,
	}
	projectRepo := &fakeProjectRepo{
		project: &entity.Project{Id: uuid.New(), Title: "Swyvvl"},
		featured: []*entity.Project{
			{Id: uuid.New(), Title: "Modern Day Sniper", Slug: "modern-day-sniper", Featured: 2},
			{Id: uuid.New(), Title: "Swyvvl", Slug: "swyvvl", Featured: 1},
		},
	}

	docs, err := newOrchestrator(classifier, embedder, embeddingRepo, projectRepo).
		HybridSearch(context.Background(), "what was the hardest part of building Swyvvl?", Options{})

	require.NoError(t, err)
	assert.Equal(t, "Swyvvl", embedder.lastText)
	require.Len(t, docs, 2)
	for _, doc := range docs {
		assert.Equal(t, MatchFallbackProject, doc.MatchType)
		assert.InDelta(t, 0.3, doc.Similarity, 0.0001)
	}
}

func TestHybridSearchFallbackPrefersTopFeaturedRanks(t *testing.T) {
	classifier := &fakeClassifier{result: intent.Intent{
		IsProjectQuery: true,
		Confidence:     0.5,
		MatchPattern:   intent.PatternIntentWithoutMatch,
	}}
	embedder := &fakeEmbedder{}
	embeddingRepo := &fakeEmbeddingRepo{searchOut: nil}
	projectRepo := &fakeProjectRepo{
		featured: []*entity.Project{
			{Id: uuid.New(), Title: "Atlas CRM", Slug: "atlas-crm", Featured: 4},
			{Id: uuid.New(), Title: "Harvest Hosts", Slug: "harvest-hosts", Featured: 3},
			{Id: uuid.New(), Title: "Modern Day Sniper", Slug: "modern-day-sniper", Featured: 1},
			{Id: uuid.New(), Title: "Swyvvl", Slug: "swyvvl", Featured: 2},
		},
	}

	docs, err := newOrchestrator(classifier, embedder, embeddingRepo, projectRepo).
		HybridSearch(context.Background(), "tell me about your flagship project", Options{})

	require.NoError(t, err)
	require.Len(t, docs, 3)
	// Rank 1 is the most prominent; the lowest-ranked row falls outside the limit.
	assert.Equal(t, "Modern Day Sniper", docs[0].Project.Name)
	assert.Equal(t, "Swyvvl", docs[1].Project.Name)
	assert.Equal(t, "Harvest Hosts", docs[2].Project.Name)
	for _, doc := range docs {
		assert.Equal(t, MatchFallbackProject, doc.MatchType)
	}
}

func TestHybridSearchFallbackRequiresConfidence(t *testing.T) {
	classifier := &fakeClassifier{result: intent.Intent{
		IsProjectQuery: true,
		Confidence:     0.3,
		MatchPattern:   intent.PatternGeneralProjectIntent,
	}}
	embedder := &fakeEmbedder{}
	embeddingRepo := &fakeEmbeddingRepo{searchOut: nil}
	projectRepo := &fakeProjectRepo{featured: []*entity.Project{{Title: "Swyvvl"}}}

	docs, err := newOrchestrator(classifier, embedder, embeddingRepo, projectRepo).
		HybridSearch(context.Background(), "show me some work", Options{})

	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestHybridSearchGeneralQueryPassesThrough(t *testing.T) {
	classifier := &fakeClassifier{result: intent.Intent{
		IsProjectQuery: false,
		Confidence:     0.9,
		MatchPattern:   intent.PatternGeneralInfo,
	}}
	embedder := &fakeEmbedder{}
	embeddingRepo := &fakeEmbeddingRepo{
		searchOut: []*contract.ScoredContent{
			{
				ContentId:   uuid.New(),
				ContentType: constant.ContentTypeGeneralInfo,
				Similarity:  0.74,
				Content:     []byte(`{"title":"Skills","content":"Go, TypeScript, Postgres"}`),
			},
		},
	}
	projectRepo := &fakeProjectRepo{}

	orch := newOrchestrator(classifier, embedder, embeddingRepo, projectRepo)
	docs, err := orch.HybridSearch(context.Background(), "What technical skills does Jordan have?", Options{})

	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, MatchVector, docs[0].MatchType)
	assert.Equal(t, "Skills", docs[0].GeneralInfo.Title)
	// The original phrasing reaches the embedder untouched.
	assert.Equal(t, "What technical skills does Jordan have?", embedder.lastText)
}

func TestHybridSearchVectorErrorPropagates(t *testing.T) {
	classifier := &fakeClassifier{result: intent.Intent{}}
	embedder := &fakeEmbedder{}
	embeddingRepo := &fakeEmbeddingRepo{searchErr: errors.New("pgvector down")}

	_, err := newOrchestrator(classifier, embedder, embeddingRepo, &fakeProjectRepo{}).
		HybridSearch(context.Background(), "anything", Options{})

	require.Error(t, err)
	assert.ErrorContains(t, err, "hybrid search")
}
