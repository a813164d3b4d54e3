package bootstrap

import (
	"context"
	"fmt"
	"log"

	"mindcare-rag-be/internal/config"
	"mindcare-rag-be/internal/controller"
	"mindcare-rag-be/internal/handler"
	"mindcare-rag-be/internal/metrics"
	"mindcare-rag-be/internal/pkg/logger"
	"mindcare-rag-be/internal/repository/cache"
	"mindcare-rag-be/internal/repository/contract"
	"mindcare-rag-be/internal/repository/implementation"
	"mindcare-rag-be/internal/repository/memory"
	"mindcare-rag-be/internal/service"
	"mindcare-rag-be/internal/websocket"
	"mindcare-rag-be/pkg/embedding"
	"mindcare-rag-be/pkg/events"
	"mindcare-rag-be/pkg/llm"
	"mindcare-rag-be/pkg/llm/factory"
	pktNats "mindcare-rag-be/pkg/nats"
	"mindcare-rag-be/pkg/rag/format"
	"mindcare-rag-be/pkg/rag/intent"
	"mindcare-rag-be/pkg/rag/pipeline"
	"mindcare-rag-be/pkg/rag/retriever"
	"mindcare-rag-be/pkg/rag/router"
	"mindcare-rag-be/pkg/rag/safety"
	"mindcare-rag-be/pkg/vectorstore"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// IngestTopic carries dto.IngestBatchMessage payloads to the consumer.
const IngestTopic = "ingest.documents"

type Container struct {
	// Controllers
	HealthController     controller.IHealthController
	ChatController       controller.IChatController
	CollectionController controller.ICollectionController

	// WebSockets
	ChatSocketHandler *handler.ChatSocketHandler
	WebSocketHub      *websocket.Hub

	// Background services (exposed for main.go to run)
	ConsumerService    service.IConsumerService
	CrisisAuditService service.ICrisisAuditService // nil without NATS

	ChatService   service.IChatService
	IngestService service.IIngestService
	VectorStore   vectorstore.Store
	Registry      *prometheus.Registry
	Logger        logger.ILogger

	closers []func()
}

// NewContainer wires every dependency. db may be nil, in which case passages
// live in memory for the life of the process. Misconfigured providers are
// returned as errors.
func NewContainer(db *gorm.DB, cfg *config.Config) (*Container, error) {
	c := &Container{}

	// 1. Core facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.IsProduction())
	c.Logger = sysLogger
	c.closers = append(c.closers, func() { _ = sysLogger.Sync() })

	c.Registry = prometheus.NewRegistry()
	c.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(c.Registry)

	routing, err := config.LoadRouting(cfg.App.RoutingFile)
	if err != nil {
		return nil, fmt.Errorf("load routing: %w", err)
	}

	// 2. Providers
	embeddingKey := cfg.Keys.GoogleGemini
	if cfg.Ai.EmbeddingProvider == "openai" {
		embeddingKey = cfg.Keys.OpenAI
	}
	embeddingProvider, err := embedding.NewEmbeddingProvider(embedding.ProviderConfig{
		Provider:   cfg.Ai.EmbeddingProvider,
		Model:      cfg.Ai.EmbeddingModel,
		BaseURL:    cfg.Ai.EmbeddingBaseURL,
		APIKey:     embeddingKey,
		Dimensions: cfg.Ai.EmbeddingDimensions,
	})
	if err != nil {
		return nil, fmt.Errorf("embedding provider: %w", err)
	}
	log.Printf("[INFO] Using Embedding Provider: %s", cfg.Ai.EmbeddingProvider)

	llmKey := cfg.Keys.GoogleGemini
	if cfg.Ai.LLMProvider == "openai" {
		llmKey = cfg.Keys.OpenAI
	}
	llmProvider, err := factory.NewLLMProvider(factory.ProviderConfig{
		Provider: cfg.Ai.LLMProvider,
		Model:    cfg.Ai.LLMModel,
		BaseURL:  cfg.Ai.LLMBaseURL,
		APIKey:   llmKey,
	})
	if err != nil {
		return nil, fmt.Errorf("llm provider: %w", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	// 3. Vector store
	var backend vectorstore.Backend
	if db != nil {
		backend = implementation.NewPassageRepository(db)
		log.Printf("[INFO] Using pgvector passage store")
	} else {
		backend = vectorstore.NewMemoryBackend()
		log.Printf("[WARN] No database configured, passages are kept in memory")
	}
	store := vectorstore.NewManager(backend, embeddingProvider, sysLogger)
	c.VectorStore = store

	// 4. Infrastructure
	var rdb *redis.Client
	if cfg.Session.Store == "redis" {
		rdb = newRedisClient(cfg.App.RedisURL)
		c.closers = append(c.closers, func() { _ = rdb.Close() })
	}

	var publisher events.Publisher
	if cfg.App.NatsEnabled {
		natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
		if err != nil {
			log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
		} else {
			publisher = natsPub
			c.closers = append(c.closers, natsPub.Close)
		}

		natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
		if err != nil {
			log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
		} else {
			auditLogger := logger.NewIsolatedLogger("logs/crisis_audit.log")
			c.CrisisAuditService = service.NewCrisisAuditService(natsSub, auditLogger)
			c.closers = append(c.closers, natsSub.Close)
		}
	}

	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{BlockPublishUntilSubscriberAck: true},
		watermillLogger,
	)
	c.closers = append(c.closers, func() { _ = pubSub.Close() })

	// WebSocket hub
	wsLogger := logger.NewIsolatedLogger("logs/websocket.log")
	c.WebSocketHub = websocket.NewHub(rdb, wsLogger)
	go c.WebSocketHub.Run()

	// 5. Pipeline
	chatPipeline, err := newPipeline(cfg, routing, store, llmProvider, sysLogger, m)
	if err != nil {
		return nil, err
	}

	var sessionRepo contract.ChatSessionRepository
	if rdb != nil {
		sessionRepo = cache.NewSessionRepository(rdb, cfg.Session.TTL)
		log.Printf("[INFO] Using Redis session store")
	} else {
		sessionRepo = memory.NewSessionRepository(cfg.Session.TTL)
	}

	// 6. Services
	c.ChatService = service.NewChatService(chatPipeline, sessionRepo, publisher, c.WebSocketHub, sysLogger, m)
	c.ConsumerService = service.NewConsumerService(pubSub, IngestTopic, store, sysLogger, m)
	c.IngestService = service.NewIngestService(service.NewPublisherService(IngestTopic, pubSub), c.ConsumerService, sysLogger)

	// 7. Controllers
	collections := append(routing.Table.Names(), service.CounselingCollection)
	c.HealthController = controller.NewHealthController()
	c.ChatController = controller.NewChatController(c.ChatService)
	c.CollectionController = controller.NewCollectionController(store, collections)
	c.ChatSocketHandler = handler.NewChatSocketHandler(c.WebSocketHub, c.ChatService, wsLogger)

	return c, nil
}

func newPipeline(
	cfg *config.Config,
	routing *config.Routing,
	store vectorstore.Searcher,
	llmProvider llm.LLMProvider,
	sysLogger logger.ILogger,
	m *metrics.Metrics,
) (*pipeline.Pipeline, error) {
	keywords := intent.NewKeywordClassifier(routing.Keywords)
	var classifier intent.Classifier = keywords
	switch cfg.Ai.IntentStrategy {
	case intent.StrategyKeyword:
	case intent.StrategyLLM:
		classifier = intent.NewDelegatedClassifier(llmProvider, keywords, sysLogger)
	default:
		return nil, fmt.Errorf("unsupported intent strategy: %s", cfg.Ai.IntentStrategy)
	}

	retrievalCfg := retriever.DefaultConfig()
	retrievalCfg.TopKPerDB = cfg.Retrieval.TopKPerDB
	retrievalCfg.FewShotExamples = cfg.Retrieval.FewShotExamples
	retrievalCfg.SimilarityThreshold = cfg.Retrieval.SimilarityThreshold
	retrievalCfg.MaxContextTokens = cfg.Retrieval.MaxContextTokens

	return pipeline.New(pipeline.Dependencies{
		Safety:    safety.NewFilter(routing.CrisisPhrases, ""),
		Router:    router.NewRouter(classifier, routing.Table),
		Retriever: retriever.New(store, retrievalCfg, sysLogger, m),
		Formatter: format.NewFormatter(cfg.Retrieval.MaxContextTokens),
		LLM:       llmProvider,
		Logger:    sysLogger,
		Metrics:   m,
	})
}

func newRedisClient(url string) *redis.Client {
	opt, err := redis.ParseURL(url)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: url,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
	}
	return rdb
}

// Close releases connections in reverse order of creation.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
}
