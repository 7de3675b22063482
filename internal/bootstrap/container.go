package bootstrap

import (
	"context"
	"log"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"portfolio-assistant-be/internal/config"
	"portfolio-assistant-be/internal/controller"
	"portfolio-assistant-be/internal/pkg/logger"
	"portfolio-assistant-be/internal/repository/unitofwork"
	"portfolio-assistant-be/internal/service"
	"portfolio-assistant-be/pkg/embedding"
	"portfolio-assistant-be/pkg/llm/factory"
	pkgNats "portfolio-assistant-be/pkg/nats"
	"portfolio-assistant-be/pkg/rag/illustration"
	"portfolio-assistant-be/pkg/rag/intent"
	"portfolio-assistant-be/pkg/rag/search"
	"portfolio-assistant-be/pkg/rag/session"
	"portfolio-assistant-be/pkg/rag/stream"
)

type Container struct {
	// Controllers
	ChatController controller.IChatController

	// Background services (run by main.go)
	ExchangeConsumer service.IExchangeConsumerService

	Logger logger.ILogger
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Event bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermillLogger)

	// 3. AI providers
	var embeddingProvider embedding.EmbeddingProvider
	if cfg.Ai.EmbeddingProvider == "ollama" {
		embeddingProvider = embedding.NewOllamaProvider(cfg.Ai.OllamaBaseURL, cfg.Ai.OllamaModel)
		log.Printf("[INFO] Using Embedding Provider: OLLAMA (%s)", cfg.Ai.OllamaModel)
	} else {
		embeddingProvider = embedding.NewGeminiProvider(cfg.Keys.GoogleGemini)
		log.Printf("[INFO] Using Embedding Provider: GEMINI")
	}

	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.OllamaBaseURL,
		cfg.Keys.GoogleGemini,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	// 4. Infrastructure
	natsPub, err := pkgNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}

	var redisClient *redis.Client
	if cfg.App.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.App.RedisURL)
		if err != nil {
			log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
			opt = &redis.Options{Addr: cfg.App.RedisURL}
		}
		redisClient = redis.NewClient(opt)
		if _, err := redisClient.Ping(context.Background()).Result(); err != nil {
			log.Printf("[WARN] Failed to connect to Redis: %v", err)
		}
	}

	// 5. Retrieval pipeline
	// The factory's repositories share the pooled connection outside a tx.
	repos := uowFactory.NewUnitOfWork(context.Background())

	detector := intent.NewDetector(
		repos.ProjectRepository(),
		time.Duration(cfg.Chat.TitleCacheTTLMin)*time.Minute,
		sysLogger,
	)
	orchestrator := search.NewOrchestrator(
		detector,
		embeddingProvider,
		repos.ContentEmbeddingRepository(),
		repos.ProjectRepository(),
		sysLogger,
	)
	sessionStore := session.NewStore(
		repos.ChatSessionRepository(),
		repos.ChatMessageRepository(),
		redisClient,
		sysLogger,
	)
	imageResolver := illustration.NewResolver(
		repos.ProjectRepository(),
		repos.ProjectImageRepository(),
		sysLogger,
	)
	coordinator := stream.NewCoordinator(
		detector,
		orchestrator,
		sessionStore,
		imageResolver,
		llmProvider,
		pubSub,
		cfg.Keys.ExchangeTopic,
		cfg.Chat.HistoryLimit,
		sysLogger,
	)

	// 6. Services
	chatService := service.NewChatService(coordinator, orchestrator, llmProvider)

	var notifier service.NatsNotifier
	if natsPub != nil {
		notifier = natsPub
	}
	exchangeConsumer := service.NewExchangeConsumerService(
		pubSub,
		cfg.Keys.ExchangeTopic,
		uowFactory,
		notifier,
		sysLogger,
	)

	// 7. Controllers
	return &Container{
		ChatController:   controller.NewChatController(chatService),
		ExchangeConsumer: exchangeConsumer,
		Logger:           sysLogger,
	}
}
