package unitofwork

import (
	"context"
	"fmt"

	"portfolio-assistant-be/internal/repository/contract"
	"portfolio-assistant-be/internal/repository/implementation"

	"gorm.io/gorm"
)

type unitOfWorkImpl struct {
	db *gorm.DB
	tx *gorm.DB
}

func newUnitOfWork(db *gorm.DB) UnitOfWork {
	return &unitOfWorkImpl{db: db}
}

// conn returns the transaction when one is open, the base handle otherwise.
// Repositories built per call so they always see the current handle.
func (u *unitOfWorkImpl) conn() *gorm.DB {
	if u.tx != nil {
		return u.tx
	}
	return u.db
}

func (u *unitOfWorkImpl) Begin(ctx context.Context) error {
	if u.tx != nil {
		return fmt.Errorf("transaction already started")
	}
	tx := u.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return tx.Error
	}
	u.tx = tx
	return nil
}

func (u *unitOfWorkImpl) Commit() error {
	if u.tx == nil {
		return fmt.Errorf("no transaction to commit")
	}
	err := u.tx.Commit().Error
	u.tx = nil
	return err
}

func (u *unitOfWorkImpl) Rollback() error {
	if u.tx == nil {
		return nil
	}
	err := u.tx.Rollback().Error
	u.tx = nil
	return err
}

func (u *unitOfWorkImpl) ProjectRepository() contract.ProjectRepository {
	return implementation.NewProjectRepository(u.conn())
}

func (u *unitOfWorkImpl) ProjectImageRepository() contract.ProjectImageRepository {
	return implementation.NewProjectImageRepository(u.conn())
}

func (u *unitOfWorkImpl) ContentEmbeddingRepository() contract.ContentEmbeddingRepository {
	return implementation.NewContentEmbeddingRepository(u.conn())
}

func (u *unitOfWorkImpl) ChatSessionRepository() contract.ChatSessionRepository {
	return implementation.NewChatSessionRepository(u.conn())
}

func (u *unitOfWorkImpl) ChatMessageRepository() contract.ChatMessageRepository {
	return implementation.NewChatMessageRepository(u.conn())
}

func (u *unitOfWorkImpl) ChatAnalyticsRepository() contract.ChatAnalyticsRepository {
	return implementation.NewChatAnalyticsRepository(u.conn())
}
