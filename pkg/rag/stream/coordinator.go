package stream

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"

	"portfolio-assistant-be/internal/constant"
	"portfolio-assistant-be/internal/dto"
	"portfolio-assistant-be/internal/entity"
	"portfolio-assistant-be/internal/pkg/logger"
	"portfolio-assistant-be/pkg/llm"
	"portfolio-assistant-be/pkg/rag/intent"
	"portfolio-assistant-be/pkg/rag/prompt"
	"portfolio-assistant-be/pkg/rag/search"
)

// Budgets per query shape. Project lookups may walk the image-resolution
// chain, so they get more time; general queries get broader recall inside a
// tighter box.
const (
	projectQueryTimeout   = 12 * time.Second
	projectMatchThreshold = 0.3
	projectMatchCount     = 4

	generalQueryTimeout   = 8 * time.Second
	generalMatchThreshold = 0.5
	generalMatchCount     = 5
)

const genericErrorMessage = "Something went wrong while answering. Please try again."

// errClientGone marks a consumer that stopped reading frames; everything
// after it is a silent no-op.
var errClientGone = errors.New("stream consumer gone")

type Classifier interface {
	DetectProjectQuery(ctx context.Context, query string) intent.Intent
}

type Retriever interface {
	HybridSearch(ctx context.Context, query string, opts search.Options) ([]*search.Document, error)
}

type SessionResolver interface {
	GetOrCreate(ctx context.Context, sessionKey string) uuid.UUID
	Messages(ctx context.Context, sessionId uuid.UUID, limit int) []*entity.ChatMessage
}

type ImageResolver interface {
	Resolve(ctx context.Context, content *search.ProjectContent) string
}

// Coordinator drives one chat turn: classify, retrieve, illustrate, stream
// model tokens, then hand persistence to the exchange consumer.
type Coordinator struct {
	classifier   Classifier
	retriever    Retriever
	sessions     SessionResolver
	images       ImageResolver
	model        llm.LLMProvider
	publisher    message.Publisher
	topic        string
	historyLimit int
	logger       logger.ILogger
}

func NewCoordinator(
	classifier Classifier,
	retriever Retriever,
	sessions SessionResolver,
	images ImageResolver,
	model llm.LLMProvider,
	publisher message.Publisher,
	topic string,
	historyLimit int,
	log logger.ILogger,
) *Coordinator {
	return &Coordinator{
		classifier:   classifier,
		retriever:    retriever,
		sessions:     sessions,
		images:       images,
		model:        model,
		publisher:    publisher,
		topic:        topic,
		historyLimit: historyLimit,
		logger:       log,
	}
}

// Stream runs the turn asynchronously and returns the frame channel. The
// metadata frame always precedes content; the channel ends with exactly one
// done or error frame and is then closed.
func (c *Coordinator) Stream(ctx context.Context, request dto.StreamChatRequest) <-chan dto.StreamFrame {
	frames := make(chan dto.StreamFrame, 16)
	go c.run(ctx, request, frames)
	return frames
}

func (c *Coordinator) run(ctx context.Context, request dto.StreamChatRequest, frames chan<- dto.StreamFrame) {
	defer close(frames)

	if strings.TrimSpace(request.Prompt) == "" {
		c.emit(ctx, frames, dto.NewErrorFrame("invalid_request", "Prompt is required."))
		return
	}

	detected := c.classifier.DetectProjectQuery(ctx, request.Prompt)

	budget := generalQueryTimeout
	opts := search.Options{
		MatchThreshold: generalMatchThreshold,
		MatchCount:     generalMatchCount,
	}
	if detected.IsProjectQuery {
		budget = projectQueryTimeout
		opts.MatchThreshold = projectMatchThreshold
		opts.MatchCount = projectMatchCount
	}

	// Hard deadline on the foreground pipeline only; persistence runs on a
	// detached context.
	ctx, cancel := context.WithTimeout(ctx, budget)
	defer cancel()

	var sessionId uuid.UUID
	var history []llm.Message
	if request.SessionKey != "" {
		sessionId = c.sessions.GetOrCreate(ctx, request.SessionKey)
		if request.IncludeHistory && sessionId != uuid.Nil {
			history = c.loadHistory(ctx, sessionId)
		}
	}

	documents, err := c.retriever.HybridSearch(ctx, request.Prompt, opts)
	if err != nil {
		c.logger.Error("stream.Coordinator", "retrieval failed", map[string]interface{}{
			"error": err.Error(),
		})
		c.emit(ctx, frames, dto.NewErrorFrame("retrieval_failed", genericErrorMessage))
		return
	}

	relevantProject, projectContent := c.relevantProject(detected, documents)
	projectImage := ""
	if projectContent != nil {
		projectImage = c.images.Resolve(ctx, projectContent)
	}

	sessionIdText := ""
	if sessionId != uuid.Nil {
		sessionIdText = sessionId.String()
	}
	if !c.emit(ctx, frames, dto.NewMetadataFrame(projectImage, sessionIdText, relevantProject)) {
		return
	}

	messages := make([]llm.Message, 0, len(history)+2)
	messages = append(messages, llm.Message{
		Role:    "system",
		Content: prompt.NewSystemBuilder(documents).Build(),
	})
	messages = append(messages, history...)
	messages = append(messages, llm.Message{Role: constant.ChatMessageRoleUser, Content: request.Prompt})

	var full strings.Builder
	err = c.model.ChatStream(ctx, messages, func(chunk string) error {
		full.WriteString(chunk)
		if !c.emit(ctx, frames, dto.NewContentFrame(chunk)) {
			return errClientGone
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, errClientGone) {
			return
		}
		c.logger.Error("stream.Coordinator", "model stream failed", map[string]interface{}{
			"error": err.Error(),
		})
		c.emit(ctx, frames, dto.NewErrorFrame("generation_failed", genericErrorMessage))
		return
	}

	// Dispatch before the done frame so a late disconnect cannot lose the
	// exchange.
	c.dispatchPersistence(sessionId, request.Prompt, full.String())

	c.emit(ctx, frames, dto.NewDoneFrame())
}

func (c *Coordinator) emit(ctx context.Context, frames chan<- dto.StreamFrame, frame dto.StreamFrame) bool {
	select {
	case frames <- frame:
		return true
	case <-ctx.Done():
		return false
	}
}

// loadHistory converts the most-recent-first rows into chronological model
// messages.
func (c *Coordinator) loadHistory(ctx context.Context, sessionId uuid.UUID) []llm.Message {
	rows := c.sessions.Messages(ctx, sessionId, c.historyLimit)
	history := make([]llm.Message, 0, len(rows))
	for i := len(rows) - 1; i >= 0; i-- {
		history = append(history, llm.Message{
			Role:    rows[i].Role,
			Content: rows[i].Content,
		})
	}
	return history
}

// relevantProject picks the project for the metadata frame: the direct-match
// document when present, otherwise a confident intent identification.
func (c *Coordinator) relevantProject(detected intent.Intent, documents []*search.Document) (string, *search.ProjectContent) {
	for _, doc := range documents {
		if doc.MatchType == search.MatchDirectProject && doc.Project != nil {
			return doc.Project.Name, doc.Project
		}
	}
	if detected.ProjectName != "" && detected.Confidence > 0.7 {
		for _, doc := range documents {
			if doc.Project != nil && strings.EqualFold(doc.Project.Name, detected.ProjectName) {
				return doc.Project.Name, doc.Project
			}
		}
		return detected.ProjectName, &search.ProjectContent{Name: detected.ProjectName}
	}
	return "", nil
}

// dispatchPersistence publishes the completed exchange for the background
// consumer. Never blocks or fails the stream.
func (c *Coordinator) dispatchPersistence(sessionId uuid.UUID, query, response string) {
	payload, err := json.Marshal(dto.PublishChatExchangeMessage{
		SessionId: sessionId,
		Query:     query,
		Response:  response,
	})
	if err != nil {
		c.logger.Error("stream.Coordinator", "exchange payload marshal failed", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	if err := c.publisher.Publish(c.topic, msg); err != nil {
		c.logger.Error("stream.Coordinator", "exchange publish failed", map[string]interface{}{
			"error": err.Error(),
		})
	}
}
