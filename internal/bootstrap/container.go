package bootstrap

import (
	"context"
	"log"
	"time"

	"voicepad-be/internal/config"
	"voicepad-be/internal/controller"
	"voicepad-be/internal/pkg/logger"
	"voicepad-be/internal/pkg/ratelimit"
	"voicepad-be/internal/repository/memory"
	"voicepad-be/internal/repository/unitofwork"
	"voicepad-be/internal/service"
	"voicepad-be/internal/websocket"
	"voicepad-be/pkg/embedding"
	"voicepad-be/pkg/llm"
	"voicepad-be/pkg/llm/factory"
	"voicepad-be/pkg/voice/dispatch"
	"voicepad-be/pkg/voice/intent"

	pktNats "voicepad-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	TaskController      controller.ITaskController
	NoteController      controller.INoteController
	AssistantController controller.IAssistantController
	AiController        controller.IAiController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	// WebSockets
	WebSocketHub     *websocket.Hub
	AssistantService service.IAssistantService

	Logger *logger.ZapLogger
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. AI Providers
	var embeddingProvider embedding.EmbeddingProvider
	if cfg.Ai.EmbeddingProvider == "ollama" {
		embeddingProvider = embedding.NewOllamaProvider(
			cfg.Ai.OllamaBaseURL,
			cfg.Ai.EmbeddingModel,
		)
		log.Printf("[INFO] Using Embedding Provider: OLLAMA (%s)", cfg.Ai.EmbeddingModel)
	} else {
		embeddingProvider = embedding.NewGeminiProvider(cfg.Ai.GeminiAPIKey)
		log.Printf("[INFO] Using Embedding Provider: GEMINI")
	}

	apiKey := cfg.Ai.GeminiAPIKey
	if cfg.Ai.LLMProvider == "openai" {
		apiKey = cfg.Ai.OpenAIAPIKey
	}
	var llmProvider llm.LLMProvider
	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.OllamaBaseURL,
		apiKey,
	)
	if err != nil {
		// The whole voice stack degrades to the deterministic fallback; a
		// missing API key must not keep the server down.
		log.Printf("[WARN] LLM provider unavailable, running fallback-only: %v", err)
		llmProvider = nil
	} else {
		log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)
	}

	// 4. Infrastructure
	// NATS
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}
	natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
	}

	// Redis
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
	}

	// WebSocket Hub
	wsLogger := logger.NewIsolatedLogger("logs/assistant.log")
	wsHub := websocket.NewHub(rdb, wsLogger)
	go wsHub.Run()

	// 5. Services
	publisherService := service.NewPublisherService(pubSub, cfg.Ai.EmbedTopic)
	consumerService := service.NewConsumerService(
		pubSub,
		cfg.Ai.EmbedTopic,
		uowFactory,
		embeddingProvider,
	)

	taskService := service.NewTaskService(uowFactory, natsPub)
	noteService := service.NewNoteService(
		uowFactory,
		publisherService,
		embeddingProvider,
		natsPub,
	)

	// Voice assistant
	resolver := intent.NewResolver(llmProvider, sysLogger.Zap(), time.Now)
	sessionRepo := memory.NewAssistantSessionRepository(cfg.Voice.SessionTTL())
	var eventPublisher dispatch.EventPublisher
	if natsPub != nil {
		eventPublisher = natsPub
	}
	assistantService := service.NewAssistantService(
		sessionRepo,
		resolver,
		wsHub,
		eventPublisher,
		sysLogger.Zap(),
		cfg.Voice.Debounce(),
	)

	aiService := service.NewAiService(llmProvider, cfg.Ai.LLMProvider, cfg.Ai.LLMModel, sysLogger.Zap())
	aiLimiter := ratelimit.New(rdb, cfg.Ai.RateLimitPerMin, time.Minute, sysLogger.Zap())

	// Event push worker (bus -> websocket broadcast)
	eventPush := service.NewEventPushService(natsSub, wsHub, wsLogger)
	if natsSub != nil {
		go eventPush.Start()
	}

	return &Container{
		WebSocketHub:     wsHub,
		AssistantService: assistantService,

		TaskController:      controller.NewTaskController(taskService),
		NoteController:      controller.NewNoteController(noteService),
		AssistantController: controller.NewAssistantController(assistantService),
		AiController:        controller.NewAiController(aiService, aiLimiter),

		ConsumerService: consumerService,
		Logger:          sysLogger,
	}
}
