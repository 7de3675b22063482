package specification

import (
	"gorm.io/gorm"
)

// ByTitleInsensitive matches an exact title, ignoring case.
type ByTitleInsensitive struct {
	Title string
}

func (s ByTitleInsensitive) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("LOWER(title) = LOWER(?)", s.Title)
}

// BySlug filters by the project's URL slug.
type BySlug struct {
	Slug string
}

func (s BySlug) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("slug = ?", s.Slug)
}

// FeaturedOnly keeps rows with a featured rank assigned.
type FeaturedOnly struct{}

func (s FeaturedOnly) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("featured > 0")
}

// ByContentType filters embedding rows by content type.
type ByContentType struct {
	ContentType string
}

func (s ByContentType) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("content_type = ?", s.ContentType)
}
