package entity

import (
	"time"

	"github.com/google/uuid"
)

type ChatSession struct {
	Id         uuid.UUID
	SessionKey string
	Title      string
	CreatedAt  time.Time
	UpdatedAt  *time.Time
}

type ChatMessage struct {
	Id            uuid.UUID
	ChatSessionId uuid.UUID
	Role          string
	Content       string
	CreatedAt     time.Time
}

type ChatAnalytics struct {
	Id            uuid.UUID
	Query         string
	Response      string
	ChatSessionId *uuid.UUID
	CreatedAt     time.Time
}
