package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ContentEmbedding struct {
	Id          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ContentId   uuid.UUID `gorm:"type:uuid;not null;index:idx_content,unique,where:deleted_at IS NULL"`
	ContentType string    `gorm:"type:text;not null;index:idx_content,unique,where:deleted_at IS NULL"`
	// SearchText is the flattened text the lexical half of hybrid search matches against.
	SearchText string `gorm:"type:text;not null"`
	// Content is the denormalized display object handed to the prompt layer.
	Content        datatypes.JSON  `gorm:"type:jsonb"`
	EmbeddingValue pgvector.Vector `gorm:"type:vector(1536)"` // text-embedding dimension per store contract
	CreatedAt      time.Time       `gorm:"autoCreateTime"`
	UpdatedAt      time.Time       `gorm:"autoUpdateTime"`
	DeletedAt      gorm.DeletedAt  `gorm:"index"`
}

func (ContentEmbedding) TableName() string {
	return "content_embeddings"
}
