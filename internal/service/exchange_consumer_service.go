package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"

	"portfolio-assistant-be/internal/constant"
	"portfolio-assistant-be/internal/dto"
	"portfolio-assistant-be/internal/entity"
	"portfolio-assistant-be/internal/pkg/logger"
	"portfolio-assistant-be/internal/repository/specification"
	"portfolio-assistant-be/internal/repository/unitofwork"
	"portfolio-assistant-be/pkg/events"
)

const sessionTitleMaxLength = 60

// NatsNotifier is the optional external event sink. Nil disables it.
type NatsNotifier interface {
	Publish(ctx context.Context, event events.Event) error
}

type IExchangeConsumerService interface {
	Consume(ctx context.Context) error
}

// exchangeConsumerService persists completed chat exchanges off the request
// path: the message pair, a first-exchange session title, and an analytics
// row. Each task fails independently; none can fail the user-visible stream.
type exchangeConsumerService struct {
	pubSub     *gochannel.GoChannel
	topicName  string
	uowFactory unitofwork.RepositoryFactory
	notifier   NatsNotifier
	logger     logger.ILogger
}

func NewExchangeConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
	notifier NatsNotifier,
	log logger.ILogger,
) IExchangeConsumerService {
	return &exchangeConsumerService{
		pubSub:     pubSub,
		topicName:  topicName,
		uowFactory: uowFactory,
		notifier:   notifier,
		logger:     log,
	}
}

func (cs *exchangeConsumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *exchangeConsumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.PublishChatExchangeMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.logger.Error("service.ExchangeConsumer", "failed to unmarshal exchange message", map[string]interface{}{
			"error": err.Error(),
		})
		msg.Ack() // Malformed payloads never become valid; do not retry.
		return
	}

	uow := cs.uowFactory.NewUnitOfWork(ctx)

	if payload.SessionId != uuid.Nil {
		cs.saveMessagePair(ctx, uow, payload)
		cs.updateTitleOnFirstExchange(ctx, uow, payload)
	}
	cs.recordAnalytics(ctx, uow, payload)
	cs.notify(payload)

	msg.Ack()
}

func (cs *exchangeConsumerService) saveMessagePair(ctx context.Context, uow unitofwork.UnitOfWork, payload dto.PublishChatExchangeMessage) {
	pair := []*entity.ChatMessage{
		{
			Id:            uuid.New(),
			ChatSessionId: payload.SessionId,
			Role:          constant.ChatMessageRoleUser,
			Content:       payload.Query,
		},
		{
			Id:            uuid.New(),
			ChatSessionId: payload.SessionId,
			Role:          constant.ChatMessageRoleAssistant,
			Content:       payload.Response,
		},
	}
	for _, chatMessage := range pair {
		if err := uow.ChatMessageRepository().Create(ctx, chatMessage); err != nil {
			cs.logger.Error("service.ExchangeConsumer", "failed to save chat message", map[string]interface{}{
				"session_id": payload.SessionId.String(),
				"role":       chatMessage.Role,
				"error":      err.Error(),
			})
		}
	}
}

func (cs *exchangeConsumerService) updateTitleOnFirstExchange(ctx context.Context, uow unitofwork.UnitOfWork, payload dto.PublishChatExchangeMessage) {
	session, err := uow.ChatSessionRepository().FindOne(ctx, specification.ByID{ID: payload.SessionId})
	if err != nil || session == nil || session.Title != "" {
		return
	}

	session.Title = deriveSessionTitle(payload.Query)
	if err := uow.ChatSessionRepository().Update(ctx, session); err != nil {
		cs.logger.Warn("service.ExchangeConsumer", "failed to update session title", map[string]interface{}{
			"session_id": payload.SessionId.String(),
			"error":      err.Error(),
		})
	}
}

func (cs *exchangeConsumerService) recordAnalytics(ctx context.Context, uow unitofwork.UnitOfWork, payload dto.PublishChatExchangeMessage) {
	row := &entity.ChatAnalytics{
		Id:       uuid.New(),
		Query:    payload.Query,
		Response: payload.Response,
	}
	if payload.SessionId != uuid.Nil {
		sessionId := payload.SessionId
		row.ChatSessionId = &sessionId
	}

	if err := uow.ChatAnalyticsRepository().Create(ctx, row); err != nil {
		cs.logger.Error("service.ExchangeConsumer", "failed to record analytics", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

// notify pushes the event to NATS for external listeners, best-effort.
func (cs *exchangeConsumerService) notify(payload dto.PublishChatExchangeMessage) {
	if cs.notifier == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	event := events.NewChatExchangeCompleted(payload.SessionId, payload.Query, len(payload.Response))
	if err := cs.notifier.Publish(ctx, event); err != nil {
		cs.logger.Warn("service.ExchangeConsumer", "failed to publish NATS event", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

func deriveSessionTitle(query string) string {
	title := strings.TrimSpace(query)
	if len(title) <= sessionTitleMaxLength {
		return title
	}
	cut := strings.LastIndex(title[:sessionTitleMaxLength], " ")
	if cut <= 0 {
		cut = sessionTitleMaxLength
	}
	return title[:cut] + "…"
}
