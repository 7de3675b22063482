package entity

import (
	"time"

	"github.com/google/uuid"
)

type ContentEmbedding struct {
	Id          uuid.UUID
	ContentId   uuid.UUID
	ContentType string
	SearchText  string
	Content     []byte // raw JSON display object
	Embedding   []float32
	CreatedAt   time.Time
	UpdatedAt   *time.Time
	DeletedAt   *time.Time
	IsDeleted   bool
}
