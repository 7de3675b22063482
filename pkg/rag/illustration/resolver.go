package illustration

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"portfolio-assistant-be/internal/pkg/logger"
	"portfolio-assistant-be/internal/repository/contract"
	"portfolio-assistant-be/internal/repository/specification"
	"portfolio-assistant-be/pkg/rag/search"
)

const minImageURLLength = 12

// Resolver finds a representative image for an identified project. Every
// lookup is best-effort: an unresolvable or invalid image yields "" rather
// than an error.
type Resolver struct {
	projects contract.ProjectRepository
	images   contract.ProjectImageRepository
	logger   logger.ILogger
}

func NewResolver(
	projects contract.ProjectRepository,
	images contract.ProjectImageRepository,
	log logger.ILogger,
) *Resolver {
	return &Resolver{
		projects: projects,
		images:   images,
		logger:   log,
	}
}

// Resolve walks the priority chain: the document's own image field, the
// project row's image, the first gallery image by project id, then a slug
// re-resolve and gallery retry.
func (r *Resolver) Resolve(ctx context.Context, content *search.ProjectContent) string {
	if content == nil {
		return ""
	}

	if IsValidImageURL(content.ImageUrl) {
		return content.ImageUrl
	}

	if content.Name != "" {
		project, err := r.projects.FindOne(ctx, specification.ByTitleInsensitive{Title: content.Name})
		if err != nil {
			r.logger.Debug("illustration.Resolver", "title lookup failed", map[string]interface{}{
				"title": content.Name,
				"error": err.Error(),
			})
		} else if project != nil {
			if IsValidImageURL(project.ImageUrl) {
				return project.ImageUrl
			}
			if url := r.galleryImage(ctx, project.Id); url != "" {
				return url
			}
		}
	}

	// The title may not match a row exactly; the slug is the stable handle.
	if content.Slug != "" {
		project, err := r.projects.FindOne(ctx, specification.BySlug{Slug: content.Slug})
		if err != nil || project == nil {
			return ""
		}
		if IsValidImageURL(project.ImageUrl) {
			return project.ImageUrl
		}
		return r.galleryImage(ctx, project.Id)
	}

	return ""
}

func (r *Resolver) galleryImage(ctx context.Context, projectId uuid.UUID) string {
	images, err := r.images.FindByProjectId(ctx, projectId)
	if err != nil {
		r.logger.Debug("illustration.Resolver", "gallery lookup failed", map[string]interface{}{
			"project_id": projectId.String(),
			"error":      err.Error(),
		})
		return ""
	}
	for _, image := range images {
		if IsValidImageURL(image.Url) {
			return image.Url
		}
	}
	return ""
}

// IsValidImageURL rejects anything that is not an absolute http(s) URL of
// plausible length.
func IsValidImageURL(url string) bool {
	if len(url) < minImageURLLength {
		return false
	}
	return strings.HasPrefix(url, "http://") || strings.HasPrefix(url, "https://")
}
