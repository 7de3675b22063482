package model

import (
	"time"

	"github.com/google/uuid"
)

type ChatSession struct {
	Id uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	// SessionKey is the opaque client-held token; distinct from the server id.
	SessionKey string    `gorm:"type:text;not null;uniqueIndex"`
	Title      string    `gorm:"type:text;not null"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime"`
}

func (ChatSession) TableName() string {
	return "chat_sessions"
}

type ChatMessage struct {
	Id            uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ChatSessionId uuid.UUID `gorm:"type:uuid;not null;index"`
	Role          string    `gorm:"type:text;not null"` // "user" | "assistant"
	Content       string    `gorm:"type:text;not null"`
	CreatedAt     time.Time `gorm:"autoCreateTime"`
}

func (ChatMessage) TableName() string {
	return "chat_messages"
}

type ChatAnalytics struct {
	Id            uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Query         string     `gorm:"type:text;not null"`
	Response      string     `gorm:"type:text"`
	ChatSessionId *uuid.UUID `gorm:"type:uuid;index"`
	CreatedAt     time.Time  `gorm:"autoCreateTime"`
}

func (ChatAnalytics) TableName() string {
	return "chat_analytics"
}
