package entity

import (
	"time"

	"github.com/google/uuid"
)

type Project struct {
	Id          uuid.UUID
	Title       string
	Slug        string
	Summary     string
	Description string
	Featured    int
	ImageUrl    string
	Tools       []string
	Tags        []string
	CreatedAt   time.Time
	UpdatedAt   *time.Time
	DeletedAt   *time.Time
	IsDeleted   bool
}

type ProjectImage struct {
	Id        uuid.UUID
	ProjectId uuid.UUID
	Url       string
	SortOrder int
	CreatedAt time.Time
}
