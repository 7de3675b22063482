package mapper

import (
	"time"

	"portfolio-assistant-be/internal/entity"
	"portfolio-assistant-be/internal/model"
)

type ChatMapper struct{}

func NewChatMapper() *ChatMapper {
	return &ChatMapper{}
}

// Session Mappers

func (m *ChatMapper) ChatSessionToEntity(s *model.ChatSession) *entity.ChatSession {
	if s == nil {
		return nil
	}

	var updatedAt *time.Time
	if !s.UpdatedAt.IsZero() {
		t := s.UpdatedAt
		updatedAt = &t
	}

	return &entity.ChatSession{
		Id:         s.Id,
		SessionKey: s.SessionKey,
		Title:      s.Title,
		CreatedAt:  s.CreatedAt,
		UpdatedAt:  updatedAt,
	}
}

func (m *ChatMapper) ChatSessionToModel(s *entity.ChatSession) *model.ChatSession {
	if s == nil {
		return nil
	}

	var updatedAt time.Time
	if s.UpdatedAt != nil {
		updatedAt = *s.UpdatedAt
	}

	return &model.ChatSession{
		Id:         s.Id,
		SessionKey: s.SessionKey,
		Title:      s.Title,
		CreatedAt:  s.CreatedAt,
		UpdatedAt:  updatedAt,
	}
}

// Message Mappers

func (m *ChatMapper) ChatMessageToEntity(msg *model.ChatMessage) *entity.ChatMessage {
	if msg == nil {
		return nil
	}
	return &entity.ChatMessage{
		Id:            msg.Id,
		ChatSessionId: msg.ChatSessionId,
		Role:          msg.Role,
		Content:       msg.Content,
		CreatedAt:     msg.CreatedAt,
	}
}

func (m *ChatMapper) ChatMessageToModel(msg *entity.ChatMessage) *model.ChatMessage {
	if msg == nil {
		return nil
	}
	return &model.ChatMessage{
		Id:            msg.Id,
		ChatSessionId: msg.ChatSessionId,
		Role:          msg.Role,
		Content:       msg.Content,
		CreatedAt:     msg.CreatedAt,
	}
}

// Analytics Mappers

func (m *ChatMapper) AnalyticsToEntity(a *model.ChatAnalytics) *entity.ChatAnalytics {
	if a == nil {
		return nil
	}
	return &entity.ChatAnalytics{
		Id:            a.Id,
		Query:         a.Query,
		Response:      a.Response,
		ChatSessionId: a.ChatSessionId,
		CreatedAt:     a.CreatedAt,
	}
}

func (m *ChatMapper) AnalyticsToModel(a *entity.ChatAnalytics) *model.ChatAnalytics {
	if a == nil {
		return nil
	}
	return &model.ChatAnalytics{
		Id:            a.Id,
		Query:         a.Query,
		Response:      a.Response,
		ChatSessionId: a.ChatSessionId,
		CreatedAt:     a.CreatedAt,
	}
}
