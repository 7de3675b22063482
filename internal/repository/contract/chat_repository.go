package contract

import (
	"context"

	"portfolio-assistant-be/internal/entity"
	"portfolio-assistant-be/internal/repository/specification"
)

type ChatSessionRepository interface {
	Create(ctx context.Context, session *entity.ChatSession) error
	Update(ctx context.Context, session *entity.ChatSession) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ChatSession, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}

type ChatMessageRepository interface {
	Create(ctx context.Context, message *entity.ChatMessage) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatMessage, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}

type ChatAnalyticsRepository interface {
	Create(ctx context.Context, row *entity.ChatAnalytics) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatAnalytics, error)
}
