package search

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"portfolio-assistant-be/internal/constant"
	"portfolio-assistant-be/internal/entity"
	"portfolio-assistant-be/internal/repository/contract"
)

// How a document entered the result set.
const (
	MatchVector          = "vector_match"
	MatchDirectProject   = "direct_project_match"
	MatchFallbackProject = "fallback_project"
)

// ProjectContent is the denormalized display object for a project row.
type ProjectContent struct {
	Name     string   `json:"name"`
	Slug     string   `json:"slug"`
	Summary  string   `json:"summary"`
	Features []string `json:"features,omitempty"`
	Tools    []string `json:"tools,omitempty"`
	Tags     []string `json:"tags,omitempty"`
	ImageUrl string   `json:"image_url,omitempty"`
}

// GeneralInfoContent is the display object for a general-info row.
type GeneralInfoContent struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Document is one retrieved context entry. Exactly one of Project or
// GeneralInfo is set, depending on ContentType.
type Document struct {
	ContentId   uuid.UUID           `json:"content_id"`
	ContentType string              `json:"content_type"`
	Similarity  float64             `json:"similarity"`
	MatchType   string              `json:"match_type"`
	Project     *ProjectContent     `json:"project,omitempty"`
	GeneralInfo *GeneralInfoContent `json:"general_info,omitempty"`
}

func documentFromScored(row *contract.ScoredContent) (*Document, error) {
	doc := &Document{
		ContentId:   row.ContentId,
		ContentType: row.ContentType,
		Similarity:  row.Similarity,
		MatchType:   MatchVector,
	}
	switch row.ContentType {
	case constant.ContentTypeProject:
		var content ProjectContent
		if err := json.Unmarshal(row.Content, &content); err != nil {
			return nil, fmt.Errorf("decode project content: %w", err)
		}
		doc.Project = &content
	case constant.ContentTypeGeneralInfo:
		var content GeneralInfoContent
		if err := json.Unmarshal(row.Content, &content); err != nil {
			return nil, fmt.Errorf("decode general info content: %w", err)
		}
		doc.GeneralInfo = &content
	default:
		return nil, fmt.Errorf("unknown content type %q", row.ContentType)
	}
	return doc, nil
}

func documentFromProject(project *entity.Project) *Document {
	return &Document{
		ContentId:   project.Id,
		ContentType: constant.ContentTypeProject,
		Similarity:  0.3,
		MatchType:   MatchFallbackProject,
		Project: &ProjectContent{
			Name:     project.Title,
			Slug:     project.Slug,
			Summary:  project.Summary,
			Tools:    project.Tools,
			Tags:     project.Tags,
			ImageUrl: project.ImageUrl,
		},
	}
}
