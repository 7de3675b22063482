package illustration

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"portfolio-assistant-be/internal/entity"
	"portfolio-assistant-be/internal/pkg/logger"
	"portfolio-assistant-be/internal/repository/contract"
	"portfolio-assistant-be/internal/repository/specification"
	"portfolio-assistant-be/pkg/rag/search"
)

type fakeProjectRepo struct {
	contract.ProjectRepository

	byTitle *entity.Project
	bySlug  *entity.Project
	err     error
}

func (f *fakeProjectRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Project, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, spec := range specs {
		switch spec.(type) {
		case specification.ByTitleInsensitive:
			return f.byTitle, nil
		case specification.BySlug:
			return f.bySlug, nil
		}
	}
	return nil, nil
}

type fakeImageRepo struct {
	contract.ProjectImageRepository

	images []*entity.ProjectImage
	err    error
}

func (f *fakeImageRepo) FindByProjectId(ctx context.Context, projectId uuid.UUID) ([]*entity.ProjectImage, error) {
	return f.images, f.err
}

func newResolver(projects *fakeProjectRepo, images *fakeImageRepo) *Resolver {
	return NewResolver(projects, images, logger.NewNop())
}

func TestIsValidImageURL(t *testing.T) {
	assert.True(t, IsValidImageURL("https://cdn.example.com/a.png"))
	assert.True(t, IsValidImageURL("http://x.io/img.jpg"))
	assert.False(t, IsValidImageURL(""))
	assert.False(t, IsValidImageURL("https://a"))      // too short
	assert.False(t, IsValidImageURL("/uploads/a.png")) // relative
	assert.False(t, IsValidImageURL("ftp://cdn.example.com/a.png"))
}

func TestResolvePrefersDocumentImage(t *testing.T) {
	resolver := newResolver(&fakeProjectRepo{}, &fakeImageRepo{})

	url := resolver.Resolve(context.Background(), &search.ProjectContent{
		Name:     "Swyvvl",
		ImageUrl: "https://cdn.example.com/swyvvl.png",
	})

	assert.Equal(t, "https://cdn.example.com/swyvvl.png", url)
}

func TestResolveFallsBackToProjectRow(t *testing.T) {
	projects := &fakeProjectRepo{byTitle: &entity.Project{
		Id:       uuid.New(),
		Title:    "Swyvvl",
		ImageUrl: "https://cdn.example.com/row.png",
	}}
	resolver := newResolver(projects, &fakeImageRepo{})

	url := resolver.Resolve(context.Background(), &search.ProjectContent{Name: "Swyvvl"})

	assert.Equal(t, "https://cdn.example.com/row.png", url)
}

func TestResolveUsesFirstValidGalleryImage(t *testing.T) {
	projects := &fakeProjectRepo{byTitle: &entity.Project{Id: uuid.New(), Title: "Swyvvl"}}
	images := &fakeImageRepo{images: []*entity.ProjectImage{
		{Url: "/uploads/relative.png"},
		{Url: "https://cdn.example.com/gallery-1.png"},
	}}
	resolver := newResolver(projects, images)

	url := resolver.Resolve(context.Background(), &search.ProjectContent{Name: "Swyvvl"})

	assert.Equal(t, "https://cdn.example.com/gallery-1.png", url)
}

func TestResolveRetriesViaSlug(t *testing.T) {
	projects := &fakeProjectRepo{
		byTitle: nil, // name from the document does not match a row
		bySlug: &entity.Project{
			Id:       uuid.New(),
			ImageUrl: "https://cdn.example.com/by-slug.png",
		},
	}
	resolver := newResolver(projects, &fakeImageRepo{})

	url := resolver.Resolve(context.Background(), &search.ProjectContent{
		Name: "Swyvvl Platform",
		Slug: "swyvvl",
	})

	assert.Equal(t, "https://cdn.example.com/by-slug.png", url)
}

func TestResolveSilentOnFailure(t *testing.T) {
	projects := &fakeProjectRepo{err: errors.New("db down")}
	resolver := newResolver(projects, &fakeImageRepo{err: errors.New("db down")})

	url := resolver.Resolve(context.Background(), &search.ProjectContent{Name: "Swyvvl", Slug: "swyvvl"})

	assert.Equal(t, "", url)
}

func TestResolveNilContent(t *testing.T) {
	resolver := newResolver(&fakeProjectRepo{}, &fakeImageRepo{})
	assert.Equal(t, "", resolver.Resolve(context.Background(), nil))
}
