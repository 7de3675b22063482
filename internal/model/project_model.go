package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Project struct {
	Id          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Title       string    `gorm:"type:text;not null"`
	Slug        string    `gorm:"type:text;not null;uniqueIndex"`
	Summary     string    `gorm:"type:text"`
	Description string    `gorm:"type:text"`
	// Featured rank: 1 is most prominent, 0 means not featured.
	Featured  int            `gorm:"default:0;index"`
	ImageUrl  string         `gorm:"type:text"`
	Tools     datatypes.JSON `gorm:"type:jsonb"`
	Tags      datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt time.Time      `gorm:"autoCreateTime"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (Project) TableName() string {
	return "projects"
}

type ProjectImage struct {
	Id        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProjectId uuid.UUID `gorm:"type:uuid;not null;index"`
	Url       string    `gorm:"type:text;not null"`
	SortOrder int       `gorm:"default:0"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (ProjectImage) TableName() string {
	return "project_images"
}
