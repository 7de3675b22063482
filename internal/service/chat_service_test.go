package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portfolio-assistant-be/internal/constant"
	"portfolio-assistant-be/internal/dto"
	"portfolio-assistant-be/pkg/llm"
	"portfolio-assistant-be/pkg/rag/search"
)

type stubRetriever struct {
	documents []*search.Document
	err       error
	lastQuery string
	calls     int
}

func (r *stubRetriever) HybridSearch(ctx context.Context, query string, opts search.Options) ([]*search.Document, error) {
	r.calls++
	r.lastQuery = query
	return r.documents, r.err
}

type stubModel struct {
	response    string
	err         error
	lastHistory []llm.Message
}

func (m *stubModel) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	m.lastHistory = history
	return m.response, m.err
}

func (m *stubModel) ChatStream(ctx context.Context, history []llm.Message, handler llm.StreamHandler, options ...llm.Option) error {
	return errors.New("not used")
}

func (m *stubModel) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return m.Chat(ctx, []llm.Message{{Role: constant.ChatMessageRoleUser, Content: prompt}})
}

func TestChatRejectsEmptyPrompt(t *testing.T) {
	retriever := &stubRetriever{}
	svc := NewChatService(nil, retriever, &stubModel{})

	_, err := svc.Chat(context.Background(), dto.StreamChatRequest{Prompt: "   "})

	require.Error(t, err)
	assert.Equal(t, 0, retriever.calls)
}

func TestChatWrapsRetrievalFailure(t *testing.T) {
	retriever := &stubRetriever{err: errors.New("connection refused")}
	svc := NewChatService(nil, retriever, &stubModel{})

	_, err := svc.Chat(context.Background(), dto.StreamChatRequest{Prompt: "What is Swyvvl?"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "retrieve context")
}

func TestChatWrapsModelFailure(t *testing.T) {
	svc := NewChatService(nil, &stubRetriever{}, &stubModel{err: errors.New("model offline")})

	_, err := svc.Chat(context.Background(), dto.StreamChatRequest{Prompt: "Hello"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "generate response")
}

func TestChatBuildsGroundedResponse(t *testing.T) {
	retriever := &stubRetriever{
		documents: []*search.Document{
			{
				ContentType: constant.ContentTypeGeneralInfo,
				GeneralInfo: &search.GeneralInfoContent{Title: "About Jordan", Content: "Full-stack developer."},
			},
			{
				ContentType: constant.ContentTypeProject,
				Project:     &search.ProjectContent{Name: "Swyvvl", Slug: "swyvvl"},
			},
		},
	}
	model := &stubModel{response: "<p>Swyvvl is a real estate platform.</p>"}
	svc := NewChatService(nil, retriever, model)

	resp, err := svc.Chat(context.Background(), dto.StreamChatRequest{Prompt: "Tell me about Swyvvl"})

	require.NoError(t, err)
	assert.Equal(t, "<p>Swyvvl is a real estate platform.</p>", resp.Response)
	assert.Equal(t, "Tell me about Swyvvl", resp.Prompt)

	// The response carries the retrieved documents, not their rendered text.
	require.Len(t, resp.Context, 2)
	assert.Equal(t, "About Jordan", resp.Context[0].GeneralInfo.Title)
	assert.Equal(t, "Swyvvl", resp.Context[1].Project.Name)

	// The first doc carrying project payload names the relevant project.
	assert.Equal(t, "Swyvvl", resp.RelevantProject)

	require.Len(t, model.lastHistory, 2)
	assert.Equal(t, "system", model.lastHistory[0].Role)
	assert.Contains(t, model.lastHistory[0].Content, "Swyvvl")
	assert.Equal(t, constant.ChatMessageRoleUser, model.lastHistory[1].Role)
}
