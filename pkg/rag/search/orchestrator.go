package search

import (
	"context"
	"fmt"
	"strings"

	"portfolio-assistant-be/internal/constant"
	"portfolio-assistant-be/internal/pkg/logger"
	"portfolio-assistant-be/internal/repository/contract"
	"portfolio-assistant-be/internal/repository/specification"
	"portfolio-assistant-be/pkg/embedding"
	"portfolio-assistant-be/pkg/rag/intent"
)

const fallbackProjectLimit = 3

// Options tune one retrieval call. Zero values fall back to the defaults.
type Options struct {
	MatchThreshold float64
	MatchCount     int
	ContentTypes   []string
}

func DefaultOptions() Options {
	return Options{
		MatchThreshold: 0.5,
		MatchCount:     5,
		ContentTypes:   []string{constant.ContentTypeGeneralInfo, constant.ContentTypeProject},
	}
}

func (o Options) withDefaults() Options {
	defaults := DefaultOptions()
	if o.MatchThreshold <= 0 {
		o.MatchThreshold = defaults.MatchThreshold
	}
	if o.MatchCount <= 0 {
		o.MatchCount = defaults.MatchCount
	}
	if len(o.ContentTypes) == 0 {
		o.ContentTypes = defaults.ContentTypes
	}
	return o
}

// QueryClassifier is the slice of the intent detector the orchestrator needs.
type QueryClassifier interface {
	DetectProjectQuery(ctx context.Context, query string) intent.Intent
}

// Orchestrator combines the deterministic project-identity layer with the
// embedding layer. The cheap detector decides "which project"; vector search
// still always runs for supporting context.
type Orchestrator struct {
	classifier QueryClassifier
	embedder   embedding.EmbeddingProvider
	embeddings contract.ContentEmbeddingRepository
	projects   contract.ProjectRepository
	logger     logger.ILogger
}

func NewOrchestrator(
	classifier QueryClassifier,
	embedder embedding.EmbeddingProvider,
	embeddings contract.ContentEmbeddingRepository,
	projects contract.ProjectRepository,
	log logger.ILogger,
) *Orchestrator {
	return &Orchestrator{
		classifier: classifier,
		embedder:   embedder,
		embeddings: embeddings,
		projects:   projects,
		logger:     log,
	}
}

// HybridSearch retrieves ranked context for a query. A confident project
// identification is staged as a guaranteed top result; the vector stage runs
// regardless to add secondary context. Vector-store failures propagate, every
// other sub-step degrades silently.
func (o *Orchestrator) HybridSearch(ctx context.Context, query string, opts Options) ([]*Document, error) {
	opts = opts.withDefaults()
	detected := o.classifier.DetectProjectQuery(ctx, query)

	var direct *Document
	if detected.IsProjectQuery && detected.ProjectName != "" && detected.Confidence > 0.7 {
		direct = o.directLookup(ctx, detected.ProjectName)
	}

	// The intent layer already pinned the project identity; when the direct
	// row is missing, a tighter search text beats the user's noisy phrasing.
	searchText := query
	if direct == nil && detected.ProjectName != "" && detected.Confidence > 0.7 {
		searchText = detected.ProjectName
	}

	response, err := o.embedder.Generate(ctx, searchText, "RETRIEVAL_QUERY")
	if err != nil {
		o.logger.Error("search.Orchestrator", "query embedding failed", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, fmt.Errorf("generate query embedding: %w", err)
	}

	rows, err := o.embeddings.HybridSearch(ctx, contract.HybridSearchParams{
		Embedding:      response.Embedding.Values,
		QueryText:      searchText,
		MatchThreshold: opts.MatchThreshold,
		MatchCount:     opts.MatchCount,
		ContentTypes:   opts.ContentTypes,
	})
	if err != nil {
		o.logger.Error("search.Orchestrator", "vector search failed", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, fmt.Errorf("hybrid search: %w", err)
	}

	vector := make([]*Document, 0, len(rows))
	for _, row := range rows {
		doc, decodeErr := documentFromScored(row)
		if decodeErr != nil {
			o.logger.Warn("search.Orchestrator", "skipping undecodable content row", map[string]interface{}{
				"content_id": row.ContentId.String(),
				"error":      decodeErr.Error(),
			})
			continue
		}
		vector = append(vector, doc)
	}

	if direct != nil {
		merged := make([]*Document, 0, len(vector)+1)
		merged = append(merged, direct)
		for _, doc := range vector {
			if doc.ContentType == constant.ContentTypeProject && doc.Project != nil &&
				strings.EqualFold(doc.Project.Name, direct.Project.Name) {
				continue
			}
			merged = append(merged, doc)
		}
		return merged, nil
	}

	if len(vector) == 0 && detected.IsProjectQuery && detected.Confidence > 0.4 {
		return o.fallbackProjects(ctx), nil
	}

	return vector, nil
}

// directLookup resolves a detected project name to its precomputed content
// row. Every failure here falls through to the vector stage.
func (o *Orchestrator) directLookup(ctx context.Context, title string) *Document {
	project, err := o.projects.FindOne(ctx, specification.ByTitleInsensitive{Title: title})
	if err != nil || project == nil {
		o.logDirectMiss("project lookup", title, err)
		return nil
	}

	row, err := o.embeddings.FindByProjectTitle(ctx, project.Title)
	if err != nil || row == nil {
		o.logDirectMiss("embedding row lookup", title, err)
		return nil
	}

	content, err := o.embeddings.FindContentById(ctx, row.ContentId, row.ContentType)
	if err != nil || len(content) == 0 {
		o.logDirectMiss("content lookup", title, err)
		return nil
	}

	doc, err := documentFromScored(&contract.ScoredContent{
		ContentId:   row.ContentId,
		ContentType: row.ContentType,
		Content:     content,
	})
	if err != nil {
		o.logDirectMiss("content decode", title, err)
		return nil
	}

	doc.Similarity = 0.99
	doc.MatchType = MatchDirectProject
	return doc
}

func (o *Orchestrator) logDirectMiss(step, title string, err error) {
	details := map[string]interface{}{"step": step, "title": title}
	if err != nil {
		details["error"] = err.Error()
	}
	o.logger.Debug("search.Orchestrator", "direct lookup fell through", details)
}

// fallbackProjects guarantees project-shaped queries never get empty context.
func (o *Orchestrator) fallbackProjects(ctx context.Context) []*Document {
	// Featured rank 1 is the most prominent, so ascending keeps the top
	// projects inside the limit.
	projects, err := o.projects.FindAll(ctx,
		specification.FeaturedOnly{},
		specification.OrderBy{Field: "featured", Desc: false},
		specification.Limit{N: fallbackProjectLimit},
	)
	if err != nil {
		o.logger.Warn("search.Orchestrator", "featured fallback failed", map[string]interface{}{
			"error": err.Error(),
		})
		return []*Document{}
	}

	docs := make([]*Document, 0, len(projects))
	for _, project := range projects {
		docs = append(docs, documentFromProject(project))
	}
	return docs
}
