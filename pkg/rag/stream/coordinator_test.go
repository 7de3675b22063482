package stream

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portfolio-assistant-be/internal/constant"
	"portfolio-assistant-be/internal/dto"
	"portfolio-assistant-be/internal/entity"
	"portfolio-assistant-be/internal/pkg/logger"
	"portfolio-assistant-be/pkg/llm"
	"portfolio-assistant-be/pkg/rag/intent"
	"portfolio-assistant-be/pkg/rag/search"
)

type fakeClassifier struct {
	result intent.Intent
	calls  int
}

func (f *fakeClassifier) DetectProjectQuery(ctx context.Context, query string) intent.Intent {
	f.calls++
	return f.result
}

type fakeRetriever struct {
	docs     []*search.Document
	err      error
	calls    int
	lastOpts search.Options
}

func (f *fakeRetriever) HybridSearch(ctx context.Context, query string, opts search.Options) ([]*search.Document, error) {
	f.calls++
	f.lastOpts = opts
	return f.docs, f.err
}

type fakeSessions struct {
	id      uuid.UUID
	history []*entity.ChatMessage
	calls   int
}

func (f *fakeSessions) GetOrCreate(ctx context.Context, sessionKey string) uuid.UUID {
	f.calls++
	return f.id
}

func (f *fakeSessions) Messages(ctx context.Context, sessionId uuid.UUID, limit int) []*entity.ChatMessage {
	return f.history
}

type fakeImages struct {
	url string
}

func (f *fakeImages) Resolve(ctx context.Context, content *search.ProjectContent) string {
	return f.url
}

type fakeModel struct {
	chunks       []string
	err          error
	lastMessages []llm.Message
	calls        int
}

func (f *fakeModel) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	return "", errors.New("not used")
}

func (f *fakeModel) ChatStream(ctx context.Context, history []llm.Message, handler llm.StreamHandler, opts ...llm.Option) error {
	f.calls++
	f.lastMessages = history
	for _, chunk := range f.chunks {
		if err := handler(chunk); err != nil {
			return err
		}
	}
	return f.err
}

func (f *fakeModel) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return "", errors.New("not used")
}

type fakePublisher struct {
	published []*message.Message
	topic     string
}

func (f *fakePublisher) Publish(topic string, messages ...*message.Message) error {
	f.topic = topic
	f.published = append(f.published, messages...)
	return nil
}

func (f *fakePublisher) Close() error { return nil }

type fixture struct {
	classifier *fakeClassifier
	retriever  *fakeRetriever
	sessions   *fakeSessions
	images     *fakeImages
	model      *fakeModel
	publisher  *fakePublisher
	coord      *Coordinator
}

func newFixture() *fixture {
	f := &fixture{
		classifier: &fakeClassifier{},
		retriever:  &fakeRetriever{},
		sessions:   &fakeSessions{},
		images:     &fakeImages{},
		model:      &fakeModel{chunks: []string{"<p>Hi", " there</p>"}},
		publisher:  &fakePublisher{},
	}
	f.coord = NewCoordinator(
		f.classifier, f.retriever, f.sessions, f.images, f.model,
		f.publisher, "CHAT_EXCHANGE_COMPLETED", 5, logger.NewNop(),
	)
	return f
}

func collect(ch <-chan dto.StreamFrame) []dto.StreamFrame {
	var frames []dto.StreamFrame
	for frame := range ch {
		frames = append(frames, frame)
	}
	return frames
}

func TestStreamHappyPathFrameOrder(t *testing.T) {
	f := newFixture()
	f.sessions.id = uuid.New()

	frames := collect(f.coord.Stream(context.Background(), dto.StreamChatRequest{
		Prompt:     "tell me about swyvvl",
		SessionKey: "visitor-abc",
	}))

	require.Len(t, frames, 4)
	assert.Equal(t, dto.FrameTypeMetadata, frames[0].FrameType())
	assert.Equal(t, dto.FrameTypeContent, frames[1].FrameType())
	assert.Equal(t, dto.FrameTypeContent, frames[2].FrameType())
	assert.Equal(t, dto.FrameTypeDone, frames[3].FrameType())

	metadata := frames[0].(dto.MetadataFrame)
	require.NotNil(t, metadata.SessionId)
	assert.Equal(t, f.sessions.id.String(), *metadata.SessionId)

	// The completed exchange went to the background consumer.
	require.Len(t, f.publisher.published, 1)
	assert.Equal(t, "CHAT_EXCHANGE_COMPLETED", f.publisher.topic)
	var payload dto.PublishChatExchangeMessage
	require.NoError(t, json.Unmarshal(f.publisher.published[0].Payload, &payload))
	assert.Equal(t, "tell me about swyvvl", payload.Query)
	assert.Equal(t, "<p>Hi there</p>", payload.Response)
	assert.Equal(t, f.sessions.id, payload.SessionId)
}

func TestStreamEmptyPromptShortCircuits(t *testing.T) {
	f := newFixture()

	frames := collect(f.coord.Stream(context.Background(), dto.StreamChatRequest{Prompt: "   "}))

	require.Len(t, frames, 1)
	assert.Equal(t, dto.FrameTypeError, frames[0].FrameType())
	assert.Zero(t, f.classifier.calls)
	assert.Zero(t, f.retriever.calls)
	assert.Zero(t, f.model.calls)
	assert.Empty(t, f.publisher.published)
}

func TestStreamRetrievalFailureEmitsSingleError(t *testing.T) {
	f := newFixture()
	f.retriever.err = errors.New("pgvector down")

	frames := collect(f.coord.Stream(context.Background(), dto.StreamChatRequest{Prompt: "anything"}))

	require.Len(t, frames, 1)
	errorFrame := frames[0].(dto.ErrorFrame)
	assert.Equal(t, dto.FrameTypeError, errorFrame.Type)
	// User-safe generic message, no internals leaked.
	assert.NotContains(t, errorFrame.Message, "pgvector")
	assert.Zero(t, f.model.calls)
	assert.Empty(t, f.publisher.published)
}

func TestStreamModelFailureEndsWithErrorFrame(t *testing.T) {
	f := newFixture()
	f.model.chunks = []string{"partial"}
	f.model.err = errors.New("model crashed")

	frames := collect(f.coord.Stream(context.Background(), dto.StreamChatRequest{Prompt: "anything"}))

	require.NotEmpty(t, frames)
	last := frames[len(frames)-1]
	assert.Equal(t, dto.FrameTypeError, last.FrameType())
	for _, frame := range frames[:len(frames)-1] {
		assert.NotEqual(t, dto.FrameTypeError, frame.FrameType())
		assert.NotEqual(t, dto.FrameTypeDone, frame.FrameType())
	}
	assert.Empty(t, f.publisher.published)
}

func TestStreamProjectQueryTunesRetrieval(t *testing.T) {
	f := newFixture()
	f.classifier.result = intent.Intent{
		IsProjectQuery: true,
		ProjectName:    "Swyvvl",
		Confidence:     1.0,
	}

	collect(f.coord.Stream(context.Background(), dto.StreamChatRequest{Prompt: "tell me about swyvvl"}))

	assert.InDelta(t, 0.3, f.retriever.lastOpts.MatchThreshold, 0.0001)
	assert.Equal(t, 4, f.retriever.lastOpts.MatchCount)
}

func TestStreamGeneralQueryTunesRetrieval(t *testing.T) {
	f := newFixture()
	f.classifier.result = intent.Intent{IsProjectQuery: false}

	collect(f.coord.Stream(context.Background(), dto.StreamChatRequest{Prompt: "who are you"}))

	assert.InDelta(t, 0.5, f.retriever.lastOpts.MatchThreshold, 0.0001)
	assert.Equal(t, 5, f.retriever.lastOpts.MatchCount)
}

func TestStreamHistoryIsChronological(t *testing.T) {
	f := newFixture()
	f.sessions.id = uuid.New()
	// Store order is most-recent-first.
	f.sessions.history = []*entity.ChatMessage{
		{Role: constant.ChatMessageRoleAssistant, Content: "second"},
		{Role: constant.ChatMessageRoleUser, Content: "first"},
	}

	collect(f.coord.Stream(context.Background(), dto.StreamChatRequest{
		Prompt:         "and then?",
		SessionKey:     "visitor-abc",
		IncludeHistory: true,
	}))

	require.Len(t, f.model.lastMessages, 4)
	assert.Equal(t, "system", f.model.lastMessages[0].Role)
	assert.Equal(t, "first", f.model.lastMessages[1].Content)
	assert.Equal(t, "second", f.model.lastMessages[2].Content)
	assert.Equal(t, "and then?", f.model.lastMessages[3].Content)
}

func TestStreamMetadataCarriesIllustration(t *testing.T) {
	f := newFixture()
	f.classifier.result = intent.Intent{
		IsProjectQuery: true,
		ProjectName:    "Modern Day Sniper",
		Confidence:     1.0,
	}
	f.images.url = "https://cdn.example.com/mds.png"
	f.retriever.docs = []*search.Document{{
		ContentType: constant.ContentTypeProject,
		MatchType:   search.MatchDirectProject,
		Similarity:  0.99,
		Project:     &search.ProjectContent{Name: "Modern Day Sniper", Slug: "modern-day-sniper"},
	}}

	frames := collect(f.coord.Stream(context.Background(), dto.StreamChatRequest{
		Prompt: "tell me about Modern Day Sniper",
	}))

	metadata := frames[0].(dto.MetadataFrame)
	require.NotNil(t, metadata.ProjectImage)
	assert.Equal(t, "https://cdn.example.com/mds.png", *metadata.ProjectImage)
	require.NotNil(t, metadata.RelevantProject)
	assert.Equal(t, "Modern Day Sniper", *metadata.RelevantProject)
	assert.Nil(t, metadata.SessionId)
}

func TestStreamAnonymousChatSkipsSessionResolution(t *testing.T) {
	f := newFixture()

	frames := collect(f.coord.Stream(context.Background(), dto.StreamChatRequest{Prompt: "hello"}))

	assert.Zero(t, f.sessions.calls)
	metadata := frames[0].(dto.MetadataFrame)
	assert.Nil(t, metadata.SessionId)
}
