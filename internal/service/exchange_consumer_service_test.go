package service

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portfolio-assistant-be/internal/constant"
	"portfolio-assistant-be/internal/dto"
	"portfolio-assistant-be/internal/entity"
	"portfolio-assistant-be/internal/pkg/logger"
	"portfolio-assistant-be/internal/repository/contract"
	"portfolio-assistant-be/internal/repository/specification"
	"portfolio-assistant-be/internal/repository/unitofwork"
	"portfolio-assistant-be/pkg/events"
)

type recordingSessionRepo struct {
	session *entity.ChatSession
	updates []*entity.ChatSession
}

func (r *recordingSessionRepo) Create(ctx context.Context, session *entity.ChatSession) error {
	return nil
}

func (r *recordingSessionRepo) Update(ctx context.Context, session *entity.ChatSession) error {
	copied := *session
	r.updates = append(r.updates, &copied)
	return nil
}

func (r *recordingSessionRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ChatSession, error) {
	return r.session, nil
}

func (r *recordingSessionRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	return 0, nil
}

type recordingMessageRepo struct {
	created []*entity.ChatMessage
}

func (r *recordingMessageRepo) Create(ctx context.Context, msg *entity.ChatMessage) error {
	r.created = append(r.created, msg)
	return nil
}

func (r *recordingMessageRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatMessage, error) {
	return nil, nil
}

func (r *recordingMessageRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	return 0, nil
}

type recordingAnalyticsRepo struct {
	rows []*entity.ChatAnalytics
}

func (r *recordingAnalyticsRepo) Create(ctx context.Context, row *entity.ChatAnalytics) error {
	r.rows = append(r.rows, row)
	return nil
}

func (r *recordingAnalyticsRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatAnalytics, error) {
	return nil, nil
}

type recordingUow struct {
	sessions  *recordingSessionRepo
	messages  *recordingMessageRepo
	analytics *recordingAnalyticsRepo
}

func (u *recordingUow) Begin(ctx context.Context) error { return nil }
func (u *recordingUow) Commit() error                   { return nil }
func (u *recordingUow) Rollback() error                 { return nil }

func (u *recordingUow) ProjectRepository() contract.ProjectRepository           { return nil }
func (u *recordingUow) ProjectImageRepository() contract.ProjectImageRepository { return nil }
func (u *recordingUow) ContentEmbeddingRepository() contract.ContentEmbeddingRepository {
	return nil
}

func (u *recordingUow) ChatSessionRepository() contract.ChatSessionRepository {
	return u.sessions
}

func (u *recordingUow) ChatMessageRepository() contract.ChatMessageRepository {
	return u.messages
}

func (u *recordingUow) ChatAnalyticsRepository() contract.ChatAnalyticsRepository {
	return u.analytics
}

type recordingUowFactory struct {
	uow   *recordingUow
	calls int
}

func (f *recordingUowFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	f.calls++
	return f.uow
}

type recordingNotifier struct {
	published []events.Event
}

func (n *recordingNotifier) Publish(ctx context.Context, event events.Event) error {
	n.published = append(n.published, event)
	return nil
}

func newConsumerFixture(session *entity.ChatSession, notifier NatsNotifier) (*exchangeConsumerService, *recordingUowFactory) {
	factory := &recordingUowFactory{uow: &recordingUow{
		sessions:  &recordingSessionRepo{session: session},
		messages:  &recordingMessageRepo{},
		analytics: &recordingAnalyticsRepo{},
	}}
	cs := &exchangeConsumerService{
		topicName:  "CHAT_EXCHANGE_COMPLETED",
		uowFactory: factory,
		notifier:   notifier,
		logger:     logger.NewNop(),
	}
	return cs, factory
}

func exchangeMessage(t *testing.T, payload dto.PublishChatExchangeMessage) *message.Message {
	t.Helper()
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	return message.NewMessage(watermill.NewUUID(), raw)
}

func assertAcked(t *testing.T, msg *message.Message) {
	t.Helper()
	select {
	case <-msg.Acked():
	default:
		t.Fatal("message was not acked")
	}
}

func TestProcessMessagePersistsFullExchange(t *testing.T) {
	sessionId := uuid.New()
	notifier := &recordingNotifier{}
	cs, factory := newConsumerFixture(&entity.ChatSession{Id: sessionId}, notifier)

	msg := exchangeMessage(t, dto.PublishChatExchangeMessage{
		SessionId: sessionId,
		Query:     "What is Modern Day Sniper?",
		Response:  "<p>A precision rifle training platform.</p>",
	})
	cs.processMessage(context.Background(), msg)

	uow := factory.uow
	require.Len(t, uow.messages.created, 2)
	assert.Equal(t, constant.ChatMessageRoleUser, uow.messages.created[0].Role)
	assert.Equal(t, "What is Modern Day Sniper?", uow.messages.created[0].Content)
	assert.Equal(t, constant.ChatMessageRoleAssistant, uow.messages.created[1].Role)
	assert.Equal(t, sessionId, uow.messages.created[1].ChatSessionId)

	require.Len(t, uow.sessions.updates, 1)
	assert.Equal(t, "What is Modern Day Sniper?", uow.sessions.updates[0].Title)

	require.Len(t, uow.analytics.rows, 1)
	require.NotNil(t, uow.analytics.rows[0].ChatSessionId)
	assert.Equal(t, sessionId, *uow.analytics.rows[0].ChatSessionId)

	assert.Len(t, notifier.published, 1)
	assertAcked(t, msg)
}

func TestProcessMessageAnonymousExchange(t *testing.T) {
	notifier := &recordingNotifier{}
	cs, factory := newConsumerFixture(nil, notifier)

	msg := exchangeMessage(t, dto.PublishChatExchangeMessage{
		SessionId: uuid.Nil,
		Query:     "Who is Jordan?",
		Response:  "<p>A full-stack developer.</p>",
	})
	cs.processMessage(context.Background(), msg)

	uow := factory.uow
	assert.Empty(t, uow.messages.created)
	assert.Empty(t, uow.sessions.updates)

	require.Len(t, uow.analytics.rows, 1)
	assert.Nil(t, uow.analytics.rows[0].ChatSessionId)
	assert.Len(t, notifier.published, 1)
	assertAcked(t, msg)
}

func TestProcessMessageKeepsExistingTitle(t *testing.T) {
	sessionId := uuid.New()
	cs, factory := newConsumerFixture(&entity.ChatSession{Id: sessionId, Title: "First question"}, nil)

	msg := exchangeMessage(t, dto.PublishChatExchangeMessage{
		SessionId: sessionId,
		Query:     "A follow-up question",
		Response:  "<p>Sure.</p>",
	})
	cs.processMessage(context.Background(), msg)

	assert.Empty(t, factory.uow.sessions.updates)
	assertAcked(t, msg)
}

func TestProcessMessageAcksMalformedPayload(t *testing.T) {
	cs, factory := newConsumerFixture(nil, nil)

	msg := message.NewMessage(watermill.NewUUID(), []byte("{not json"))
	cs.processMessage(context.Background(), msg)

	assert.Equal(t, 0, factory.calls)
	assertAcked(t, msg)
}

func TestDeriveSessionTitle(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  string
	}{
		{
			name:  "short query passes through",
			query: "What is Swyvvl?",
			want:  "What is Swyvvl?",
		},
		{
			name:  "surrounding whitespace is trimmed",
			query: "  Who is Jordan?  ",
			want:  "Who is Jordan?",
		},
		{
			name:  "long query cut at a word boundary",
			query: "Can you explain how the Modern Day Sniper training platform was actually built?",
			want:  "Can you explain how the Modern Day Sniper training platform…",
		},
		{
			name:  "single long word cut hard",
			query: strings.Repeat("a", 70),
			want:  strings.Repeat("a", 60) + "…",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, deriveSessionTitle(tt.query))
		})
	}
}
