package container

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/hibiken/asynq"

	"designlab-backend/internal/config"
	designHandler "designlab-backend/internal/domains/design/handler"
	designJob "designlab-backend/internal/domains/design/job"
	designRepo "designlab-backend/internal/domains/design/repository"
	designService "designlab-backend/internal/domains/design/service"
	"designlab-backend/internal/domains/generation/gateway"
	"designlab-backend/internal/domains/generation/gateway/gemini"
	"designlab-backend/internal/domains/generation/gateway/mock"
	"designlab-backend/internal/domains/generation/gateway/openai"
	"designlab-backend/internal/domains/generation/gateway/placeholder"
	"designlab-backend/internal/domains/generation/gateway/replicate"
	"designlab-backend/internal/domains/generation/gateway/stability"
	"designlab-backend/internal/domains/generation/prompt"
	genService "designlab-backend/internal/domains/generation/service"
	infraCache "designlab-backend/internal/infrastructure/cache"
	"designlab-backend/internal/infrastructure/database"
	"designlab-backend/internal/infrastructure/retrieval"
	"designlab-backend/internal/infrastructure/secrets"
	"designlab-backend/internal/infrastructure/storage"
	"designlab-backend/pkg/cache"
)

// ========================================
// CONTAINER STRUCT
// ========================================

// Container holds every dependency of the application and is the root
// of the dependency graph. Both binaries build one; the API uses the
// handler layer, the worker uses the job layer.
type Container struct {
	// ========================================
	// INFRASTRUCTURE LAYER
	// ========================================
	// Shared singletons, one instance per process.

	Config      *config.Config
	DB          *database.PostgresDB // nil when running on the in-memory store
	Cache       cache.Cache
	Storage     *storage.MinIOStorage
	AsynqClient *asynq.Client
	Resolver    secrets.CredentialResolver
	Retriever   retrieval.FactRetriever

	// ========================================
	// GENERATION LAYER
	// ========================================

	PromptBuilder *prompt.Builder
	TextService   *genService.TextService
	ImageService  *genService.ImageService

	// ========================================
	// REPOSITORY LAYER
	// ========================================

	DesignRepo designRepo.DesignRepository

	// ========================================
	// SERVICE LAYER
	// ========================================

	DesignService designService.DesignService

	// ========================================
	// HANDLER LAYER (HTTP)
	// ========================================

	DesignHandler *designHandler.DesignHandler

	// ========================================
	// JOB LAYER (WORKER)
	// ========================================

	RenderPreviewHandler      *designJob.RenderPreviewHandler
	RefreshPreviewURLsHandler *designJob.RefreshPreviewURLsHandler
}

// ========================================
// CONSTRUCTOR: BUILD CONTAINER
// ========================================

// NewContainer initializes the full dependency graph in order:
// config, infrastructure, generation stack, repositories, services,
// handlers, jobs.
func NewContainer() (*Container, error) {
	log.Println("🔧 Initializing DI Container...")

	c := &Container{}

	// ========================================
	// STEP 1: LOAD CONFIGURATION
	// ========================================
	log.Println("📋 Loading configuration...")

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	c.Config = cfg
	log.Printf("✅ Config loaded (Environment: %s)", cfg.App.Environment)

	// ========================================
	// STEP 2: INITIALIZE DATABASE
	// ========================================
	// Outside production a missing database degrades to the in-memory
	// store instead of failing startup.
	log.Println("🗄️  Connecting to PostgreSQL...")

	db := database.NewPostgresDB(cfg.Database)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := db.Connect(ctx); err != nil {
		if cfg.App.Environment == "production" {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		log.Printf("⚠️  Database unavailable, falling back to in-memory store: %v", err)
		db = nil
	}
	c.DB = db
	if db != nil {
		log.Println("✅ Database connected")
	}

	// ========================================
	// STEP 3: INITIALIZE CACHE
	// ========================================
	log.Println("🔴 Connecting to Redis...")

	redisCache := infraCache.NewRedisCache(
		cfg.Redis.Host,
		cfg.Redis.Password,
		cfg.Redis.DB,
	)

	if rc, ok := redisCache.(*infraCache.RedisCache); ok {
		if err := rc.Connect(context.Background()); err != nil {
			log.Printf("⚠️  Redis connection failed (non-critical): %v", err)
		} else {
			log.Println("✅ Redis connected")
		}
	}
	c.Cache = redisCache

	// ========================================
	// STEP 4: INITIALIZE OBJECT STORAGE
	// ========================================
	log.Println("🪣 Connecting to MinIO...")

	minioStorage, err := storage.NewMinIOStorage(cfg.MinIO)
	if err != nil {
		return nil, fmt.Errorf("failed to init object storage: %w", err)
	}
	c.Storage = minioStorage
	log.Println("✅ Object storage ready")

	// ========================================
	// STEP 5: INITIALIZE QUEUE CLIENT
	// ========================================
	c.AsynqClient = asynq.NewClient(asynq.RedisClientOpt{
		Addr:     cfg.Redis.Host,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	// ========================================
	// STEP 6: INITIALIZE GENERATION STACK
	// ========================================
	log.Println("🎨 Initializing generation stack...")

	c.Resolver = secrets.NewEnvResolver()
	c.Retriever = retrieval.NewPerplexityClient(
		cfg.Retrieval.APIURL,
		cfg.Generation.PerplexityKeyName,
		cfg.Retrieval.MaxFacts,
		c.Resolver,
	)
	c.PromptBuilder = prompt.NewBuilder(cfg.Generation, c.Retriever)

	c.TextService = genService.NewTextService(
		gemini.NewTextClient(gemini.Config{KeyName: cfg.Generation.GeminiKeyName}, c.Resolver),
		openai.NewTextClient(openai.Config{KeyName: cfg.Generation.OpenAIKeyName}, c.Resolver),
		mock.NewTextProvider(),
	)
	c.ImageService = genService.NewImageService(
		c.imageProvider(),
		placeholder.NewGenerator(),
	)

	// ========================================
	// STEP 7: INITIALIZE REPOSITORIES
	// ========================================
	log.Println("📦 Initializing repositories...")

	if err := c.initRepositories(); err != nil {
		return nil, fmt.Errorf("failed to init repositories: %w", err)
	}

	// ========================================
	// STEP 8: INITIALIZE SERVICES
	// ========================================
	log.Println("⚙️  Initializing services...")

	if err := c.initServices(); err != nil {
		return nil, fmt.Errorf("failed to init services: %w", err)
	}

	// ========================================
	// STEP 9: INITIALIZE HANDLERS AND JOBS
	// ========================================
	log.Println("🎯 Initializing handlers...")

	if err := c.initHandlers(); err != nil {
		return nil, fmt.Errorf("failed to init handlers: %w", err)
	}

	log.Println("🎉 DI Container initialized successfully")
	return c, nil
}

// ========================================
// PRIVATE INITIALIZATION METHODS
// ========================================

// imageProvider builds the configured image adapter. Returns nil for
// the placeholder setting; the image service then renders locally.
func (c *Container) imageProvider() gateway.ImageProvider {
	gen := c.Config.Generation
	switch gen.ImageProvider {
	case "gemini":
		return gemini.NewImageClient(gemini.Config{KeyName: gen.GeminiKeyName}, c.Resolver)
	case "openai":
		return openai.NewImageClient(openai.Config{KeyName: gen.OpenAIKeyName}, c.Resolver)
	case "stability":
		return stability.NewClient(stability.Config{KeyName: gen.StabilityKeyName}, c.Resolver)
	case "replicate":
		return replicate.NewClient(replicate.Config{KeyName: gen.ReplicateKeyName}, c.Resolver)
	default:
		return nil
	}
}

func (c *Container) initRepositories() error {
	// ----------------------------------------
	// DESIGN REPOSITORY
	// ----------------------------------------
	// Postgres when connected, in-memory otherwise. Both sit behind
	// the read-through cache decorator.
	var repo designRepo.DesignRepository
	if c.DB != nil {
		repo = designRepo.NewPostgresDesignRepository(c.DB.Pool)
	} else {
		repo = designRepo.NewMemoryDesignRepository()
	}
	c.DesignRepo = designRepo.NewCachedDesignRepository(repo, c.Cache)

	return nil
}

func (c *Container) initServices() error {
	// ----------------------------------------
	// DESIGN SERVICE
	// ----------------------------------------
	c.DesignService = designService.NewDesignService(
		c.Config.Generation,
		c.PromptBuilder,
		c.TextService,
		c.DesignRepo,
		c.AsynqClient,
	)

	return nil
}

func (c *Container) initHandlers() error {
	// ----------------------------------------
	// DESIGN HANDLER
	// ----------------------------------------
	c.DesignHandler = designHandler.NewDesignHandler(c.DesignService)

	// ----------------------------------------
	// JOB HANDLERS
	// ----------------------------------------
	c.RenderPreviewHandler = designJob.NewRenderPreviewHandler(
		c.Config.Generation,
		c.ImageService,
		c.Storage,
		c.DesignRepo,
	)
	c.RefreshPreviewURLsHandler = designJob.NewRefreshPreviewURLsHandler(
		c.Config.Generation,
		c.Storage,
		c.DesignRepo,
	)

	return nil
}

// Cleanup releases container resources during graceful shutdown.
func (c *Container) Cleanup() {
	log.Println("🧹 Cleaning up container resources...")

	if c.AsynqClient != nil {
		if err := c.AsynqClient.Close(); err != nil {
			log.Printf("⚠️  Failed to close queue client: %v", err)
		}
	}

	if c.DB != nil && c.DB.Pool != nil {
		c.DB.Pool.Close()
		log.Println("✅ Database connections closed")
	}

	if c.Cache != nil {
		if rc, ok := c.Cache.(*infraCache.RedisCache); ok {
			if err := rc.Close(); err != nil {
				log.Printf("⚠️  Failed to close Redis: %v", err)
			} else {
				log.Println("✅ Redis connections closed")
			}
		}
	}

	log.Println("✅ Container cleanup completed")
}
