package session

import (
	"context"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"

	"portfolio-assistant-be/internal/entity"
	"portfolio-assistant-be/internal/pkg/logger"
	"portfolio-assistant-be/internal/repository/contract"
	"portfolio-assistant-be/internal/repository/specification"
)

const (
	keyMemoTTL     = 30 * time.Minute
	redisKeyPrefix = "chat:session:"
)

// Store resolves session keys to session rows and appends chat history.
// Persistence here is an enhancement, not a prerequisite for answering, so
// every operation logs and swallows failures.
type Store struct {
	sessions contract.ChatSessionRepository
	messages contract.ChatMessageRepository
	memo     *gocache.Cache
	redis    *redis.Client // optional, nil disables the shared cache
	logger   logger.ILogger
}

func NewStore(
	sessions contract.ChatSessionRepository,
	messages contract.ChatMessageRepository,
	redisClient *redis.Client,
	log logger.ILogger,
) *Store {
	return &Store{
		sessions: sessions,
		messages: messages,
		memo:     gocache.New(keyMemoTTL, 2*keyMemoTTL),
		redis:    redisClient,
		logger:   log,
	}
}

// GetOrCreate resolves a session key to its session id, inserting a new row
// on first sight. A lost insert race is resolved by re-reading. Returns
// uuid.Nil when persistence is unavailable; the chat proceeds without a
// session.
func (s *Store) GetOrCreate(ctx context.Context, sessionKey string) uuid.UUID {
	if sessionKey == "" {
		return uuid.Nil
	}

	if cached, found := s.memo.Get(sessionKey); found {
		return cached.(uuid.UUID)
	}

	if id := s.redisLookup(ctx, sessionKey); id != uuid.Nil {
		s.memo.Set(sessionKey, id, keyMemoTTL)
		return id
	}

	existing, err := s.sessions.FindOne(ctx, specification.BySessionKey{SessionKey: sessionKey})
	if err != nil {
		s.logger.Warn("session.Store", "session lookup failed", map[string]interface{}{
			"session_key": sessionKey,
			"error":       err.Error(),
		})
		return uuid.Nil
	}
	if existing != nil {
		s.memoize(ctx, sessionKey, existing.Id)
		return existing.Id
	}

	created := &entity.ChatSession{
		Id:         uuid.New(),
		SessionKey: sessionKey,
	}
	if err := s.sessions.Create(ctx, created); err != nil {
		// Someone else inserted the same key first; take their row.
		winner, readErr := s.sessions.FindOne(ctx, specification.BySessionKey{SessionKey: sessionKey})
		if readErr == nil && winner != nil {
			s.memoize(ctx, sessionKey, winner.Id)
			return winner.Id
		}
		s.logger.Warn("session.Store", "session create failed", map[string]interface{}{
			"session_key": sessionKey,
			"error":       err.Error(),
		})
		return uuid.Nil
	}

	s.memoize(ctx, sessionKey, created.Id)
	return created.Id
}

// Messages returns up to limit prior messages, most recent first. Callers
// reverse when they need chronological order.
func (s *Store) Messages(ctx context.Context, sessionId uuid.UUID, limit int) []*entity.ChatMessage {
	if sessionId == uuid.Nil || limit <= 0 {
		return nil
	}

	messages, err := s.messages.FindAll(ctx,
		specification.ByChatSessionID{ChatSessionID: sessionId},
		specification.OrderBy{Field: "created_at", Desc: true},
		specification.Limit{N: limit},
	)
	if err != nil {
		s.logger.Warn("session.Store", "history load failed", map[string]interface{}{
			"session_id": sessionId.String(),
			"error":      err.Error(),
		})
		return nil
	}
	return messages
}

// SaveMessage appends one message to a session's history.
func (s *Store) SaveMessage(ctx context.Context, sessionId uuid.UUID, role, content string) {
	if sessionId == uuid.Nil {
		return
	}

	err := s.messages.Create(ctx, &entity.ChatMessage{
		Id:            uuid.New(),
		ChatSessionId: sessionId,
		Role:          role,
		Content:       content,
	})
	if err != nil {
		s.logger.Warn("session.Store", "message save failed", map[string]interface{}{
			"session_id": sessionId.String(),
			"role":       role,
			"error":      err.Error(),
		})
	}
}

// UpdateTitle sets the session title once, derived from the first exchange.
// Skipped when a title already exists.
func (s *Store) UpdateTitle(ctx context.Context, sessionId uuid.UUID, title string) {
	if sessionId == uuid.Nil || title == "" {
		return
	}

	session, err := s.sessions.FindOne(ctx, specification.ByID{ID: sessionId})
	if err != nil || session == nil {
		return
	}
	if session.Title != "" {
		return
	}

	session.Title = title
	if err := s.sessions.Update(ctx, session); err != nil {
		s.logger.Warn("session.Store", "title update failed", map[string]interface{}{
			"session_id": sessionId.String(),
			"error":      err.Error(),
		})
	}
}

func (s *Store) redisLookup(ctx context.Context, sessionKey string) uuid.UUID {
	if s.redis == nil {
		return uuid.Nil
	}

	value, err := s.redis.Get(ctx, redisKeyPrefix+sessionKey).Result()
	if err != nil {
		if err != redis.Nil {
			s.logger.Debug("session.Store", "redis lookup failed", map[string]interface{}{
				"error": err.Error(),
			})
		}
		return uuid.Nil
	}

	id, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil
	}
	return id
}

func (s *Store) memoize(ctx context.Context, sessionKey string, id uuid.UUID) {
	s.memo.Set(sessionKey, id, keyMemoTTL)
	if s.redis != nil {
		if err := s.redis.Set(ctx, redisKeyPrefix+sessionKey, id.String(), keyMemoTTL).Err(); err != nil {
			s.logger.Debug("session.Store", "redis memoize failed", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}
}
