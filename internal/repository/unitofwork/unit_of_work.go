package unitofwork

import (
	"context"

	"portfolio-assistant-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	ProjectRepository() contract.ProjectRepository
	ProjectImageRepository() contract.ProjectImageRepository
	ContentEmbeddingRepository() contract.ContentEmbeddingRepository

	ChatSessionRepository() contract.ChatSessionRepository
	ChatMessageRepository() contract.ChatMessageRepository
	ChatAnalyticsRepository() contract.ChatAnalyticsRepository
}
