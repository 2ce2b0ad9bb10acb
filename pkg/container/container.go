package container

import (
	"context"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"

	authorHandler "bookshelf-backend/internal/domains/author/handler"
	authorRepo "bookshelf-backend/internal/domains/author/repository"
	authorService "bookshelf-backend/internal/domains/author/service"
	bookHandler "bookshelf-backend/internal/domains/book/handler"
	bookRepo "bookshelf-backend/internal/domains/book/repository"
	bookService "bookshelf-backend/internal/domains/book/service"

	"bookshelf-backend/internal/config"
	"bookshelf-backend/internal/infrastructure/database"
	"bookshelf-backend/internal/infrastructure/queue"
	"bookshelf-backend/internal/infrastructure/redis"
	"bookshelf-backend/internal/infrastructure/search"
	"bookshelf-backend/internal/shared"
	"bookshelf-backend/internal/shared/pagination"
	"bookshelf-backend/internal/shared/response"
	"bookshelf-backend/pkg/logger"
	"bookshelf-backend/pkg/metrics"
	"bookshelf-backend/pkg/tracing"
)

const poolMonitorInterval = 30 * time.Second

// Container is the root of the dependency graph shared by the API and the worker.
type Container struct {
	// ════════════════════════════════════════
	// INFRASTRUCTURE
	// ════════════════════════════════════════
	Config         *config.Config
	DB             *database.PostgresDB
	Redis          *redis.Client
	AsynqClient    *asynq.Client
	AsynqInspector *asynq.Inspector
	Enqueuer       queue.Enqueuer // nil when mirror repair is disabled
	Registry       *prometheus.Registry
	Metrics        *metrics.Metrics
	Alerts         *response.Alerts
	Breakers       map[string]*search.Breaker

	// ════════════════════════════════════════
	// REPOSITORIES
	// ════════════════════════════════════════
	AuthorRepo  authorRepo.RepositoryInterface
	AuthorIndex authorRepo.SearchIndex
	BookRepo    bookRepo.RepositoryInterface
	BookIndex   bookRepo.SearchIndex

	// ════════════════════════════════════════
	// SERVICES
	// ════════════════════════════════════════
	AuthorService authorService.ServiceInterface
	BookService   bookService.ServiceInterface

	// ════════════════════════════════════════
	// HANDLERS
	// ════════════════════════════════════════
	AuthorHandler *authorHandler.AuthorHandler
	BookHandler   *bookHandler.BookHandler

	shutdownTracing tracing.ShutdownFunc
	stopMonitor     context.CancelFunc
}

// NewContainer loads the configuration and builds everything in dependency
// order: infrastructure, repositories, services, handlers.
func NewContainer() (*Container, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(cfg.App.Environment)
	log.Info().Str("env", cfg.App.Environment).Str("app", cfg.App.Name).Msg("Initializing container")

	c := &Container{Config: cfg}

	if err := c.initInfrastructure(); err != nil {
		c.Cleanup()
		return nil, err
	}

	c.initRepositories()
	c.initServices()
	c.initHandlers()

	log.Info().Msg("Container initialized")
	return c, nil
}

// ════════════════════════════════════════
// INFRASTRUCTURE
// ════════════════════════════════════════
func (c *Container) initInfrastructure() error {
	cfg := c.Config

	shutdown, err := tracing.Init(context.Background(), cfg.App.Name, cfg.App.Version,
		cfg.App.Environment, cfg.Tracing.Endpoint, cfg.Tracing.SampleRatio)
	if err != nil {
		return fmt.Errorf("failed to init tracing: %w", err)
	}
	c.shutdownTracing = shutdown

	c.Registry = prometheus.NewRegistry()
	c.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	c.Metrics = metrics.New(c.Registry)

	// PostgreSQL
	dbConfig, err := config.LoadDatabaseConfig()
	if err != nil {
		return fmt.Errorf("failed to load database config: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db := database.NewPostgresDB(dbConfig)
	if err := db.Connect(ctx); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	c.DB = db

	if err := database.Migrate(ctx, db.Pool); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	monitorCtx, stop := context.WithCancel(context.Background())
	c.stopMonitor = stop
	go db.MonitorPoolHealth(monitorCtx, poolMonitorInterval, c.Metrics.ObservePool)

	// Redis backs the task queue and the rebuild lock
	c.Redis = redis.NewClient(cfg.Redis.Host, cfg.Redis.Password, cfg.Redis.DB)
	if err := c.Redis.Connect(ctx); err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}

	c.AsynqClient = asynq.NewClientFromRedisClient(c.Redis.Client)
	c.AsynqInspector = asynq.NewInspectorFromRedisClient(c.Redis.Client)
	if cfg.Queue.RepairEnabled {
		c.Enqueuer = queue.NewEnqueuer(c.AsynqClient, c.AsynqInspector)
	} else {
		log.Warn().Msg("Search index repair disabled, mirror failures are returned to the caller")
	}

	c.Alerts = response.NewAlerts(cfg.App.Name)

	c.Breakers = make(map[string]*search.Breaker, len(shared.Entities))
	for _, entity := range shared.Entities {
		c.Breakers[entity] = search.NewBreaker(search.BreakerConfig{
			Name:        "search-" + entity,
			MaxFailures: cfg.Search.BreakerMaxFailures,
			Timeout:     cfg.Search.BreakerTimeout,
		}, c.Metrics)
	}

	return nil
}

// ════════════════════════════════════════
// REPOSITORIES
// ════════════════════════════════════════
func (c *Container) initRepositories() {
	pool := c.DB.Pool
	lang := c.Config.Search.Language

	c.AuthorRepo = authorRepo.NewPostgresRepository(pool)
	c.AuthorIndex = authorRepo.NewSearchIndex(pool, lang, c.Breakers[shared.EntityAuthor], c.Metrics)

	c.BookRepo = bookRepo.NewPostgresRepository(pool)
	c.BookIndex = bookRepo.NewSearchIndex(pool, lang, c.Breakers[shared.EntityBook], c.Metrics)
}

// ════════════════════════════════════════
// SERVICES
// ════════════════════════════════════════
func (c *Container) initServices() {
	c.AuthorService = authorService.NewAuthorService(c.AuthorRepo, c.AuthorIndex, c.Enqueuer)
	c.BookService = bookService.NewBookService(c.BookRepo, c.BookIndex, c.Enqueuer)
}

// ════════════════════════════════════════
// HANDLERS
// ════════════════════════════════════════
func (c *Container) initHandlers() {
	defaults := pagination.Defaults{
		Size:    c.Config.Pagination.DefaultSize,
		MaxSize: c.Config.Pagination.MaxSize,
	}

	c.AuthorHandler = authorHandler.NewAuthorHandler(c.AuthorService, c.Alerts, defaults)
	c.BookHandler = bookHandler.NewBookHandler(c.BookService, c.Alerts, defaults)
}

// Rebuilders maps each indexed entity to the service that can rebuild it.
func (c *Container) Rebuilders() map[string]queue.Rebuilder {
	return map[string]queue.Rebuilder{
		shared.EntityAuthor: c.AuthorService,
		shared.EntityBook:   c.BookService,
	}
}

// Cleanup releases everything NewContainer acquired. Safe on a partially built container.
func (c *Container) Cleanup() {
	log.Info().Msg("Cleaning up container resources")

	if c.stopMonitor != nil {
		c.stopMonitor()
	}

	// AsynqClient and AsynqInspector share the redis connection; closing Redis releases them.
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close redis")
		}
	}

	if c.DB != nil {
		_ = c.DB.Close()
	}

	if c.shutdownTracing != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := c.shutdownTracing(ctx); err != nil {
			log.Warn().Err(err).Msg("Failed to flush traces")
		}
	}
}
