package service

import (
	"context"
	"fmt"
	"strings"

	"portfolio-assistant-be/internal/constant"
	"portfolio-assistant-be/internal/dto"
	"portfolio-assistant-be/pkg/llm"
	"portfolio-assistant-be/pkg/rag/prompt"
	"portfolio-assistant-be/pkg/rag/search"
	"portfolio-assistant-be/pkg/rag/stream"
)

type IChatService interface {
	// Stream delivers one chat turn as typed SSE frames.
	Stream(ctx context.Context, request dto.StreamChatRequest) <-chan dto.StreamFrame
	// Chat answers in one blocking call; used by the non-streaming endpoint.
	Chat(ctx context.Context, request dto.StreamChatRequest) (*dto.ChatResponse, error)
}

type Retriever interface {
	HybridSearch(ctx context.Context, query string, opts search.Options) ([]*search.Document, error)
}

type chatService struct {
	coordinator *stream.Coordinator
	retriever   Retriever
	model       llm.LLMProvider
}

func NewChatService(coordinator *stream.Coordinator, retriever Retriever, model llm.LLMProvider) IChatService {
	return &chatService{
		coordinator: coordinator,
		retriever:   retriever,
		model:       model,
	}
}

func (s *chatService) Stream(ctx context.Context, request dto.StreamChatRequest) <-chan dto.StreamFrame {
	return s.coordinator.Stream(ctx, request)
}

func (s *chatService) Chat(ctx context.Context, request dto.StreamChatRequest) (*dto.ChatResponse, error) {
	if strings.TrimSpace(request.Prompt) == "" {
		return nil, fmt.Errorf("prompt is required")
	}

	documents, err := s.retriever.HybridSearch(ctx, request.Prompt, search.Options{})
	if err != nil {
		return nil, fmt.Errorf("retrieve context: %w", err)
	}

	system := prompt.NewSystemBuilder(documents).Build()
	response, err := s.model.Chat(ctx, []llm.Message{
		{Role: "system", Content: system},
		{Role: constant.ChatMessageRoleUser, Content: request.Prompt},
	})
	if err != nil {
		return nil, fmt.Errorf("generate response: %w", err)
	}

	relevantProject := ""
	for _, doc := range documents {
		if doc.Project != nil {
			relevantProject = doc.Project.Name
			break
		}
	}

	return &dto.ChatResponse{
		Response:        response,
		Context:         documents,
		Prompt:          request.Prompt,
		RelevantProject: relevantProject,
	}, nil
}
