package container

import (
	"context"
	"fmt"
	"time"

	"inkwell-backend/internal/config"
	bookHandler "inkwell-backend/internal/domains/book/handler"
	bookRepo "inkwell-backend/internal/domains/book/repository"
	bookService "inkwell-backend/internal/domains/book/service"
	draftHandler "inkwell-backend/internal/domains/draft/handler"
	draftRepo "inkwell-backend/internal/domains/draft/repository"
	draftService "inkwell-backend/internal/domains/draft/service"
	exportHandler "inkwell-backend/internal/domains/export/handler"
	exportRepo "inkwell-backend/internal/domains/export/repository"
	exportService "inkwell-backend/internal/domains/export/service"
	ledgerHandler "inkwell-backend/internal/domains/ledger/handler"
	ledgerRepo "inkwell-backend/internal/domains/ledger/repository"
	ledgerService "inkwell-backend/internal/domains/ledger/service"
	infraCache "inkwell-backend/internal/infrastructure/cache"
	"inkwell-backend/internal/infrastructure/database"
	"inkwell-backend/internal/infrastructure/storage"
	"inkwell-backend/pkg/cache"
	"inkwell-backend/pkg/logger"

	"github.com/hibiken/asynq"
)

// Container wires the whole dependency graph: config, infrastructure,
// repositories, services, handlers. Built once at startup, torn down
// by Cleanup on shutdown.
type Container struct {
	Config *config.Config
	DB     *database.PostgresDB
	Cache  cache.Cache
	Store  storage.ObjectStore
	Queue  *asynq.Client

	DraftRepo  draftRepo.Repository
	BookRepo   bookRepo.Repository
	LedgerRepo ledgerRepo.Repository
	Profiles   exportRepo.ProfileDirectory

	DraftService   draftService.ServiceInterface
	LibraryService bookService.ServiceInterface
	LedgerService  ledgerService.ServiceInterface
	ExportService  exportService.ServiceInterface

	DraftHandler   *draftHandler.DraftHandler
	LibraryHandler *bookHandler.LibraryHandler
	LedgerHandler  *ledgerHandler.LedgerHandler
	ExportHandler  *exportHandler.ExportHandler
}

// NewContainer builds the dependency graph in layer order: config,
// then infrastructure, then repositories, services, handlers.
func NewContainer() (*Container, error) {
	c := &Container{}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	c.Config = cfg

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	c.DB = db

	redisCache := infraCache.NewRedisCache(cfg.Redis.Host, cfg.Redis.Password, cfg.Redis.DB)
	if err := redisCache.Ping(ctx); err != nil {
		// A down cache degrades reads but must not block startup.
		logger.Warn("Redis unavailable at startup", map[string]interface{}{
			"error": err.Error(),
		})
	}
	c.Cache = redisCache

	store, err := storage.NewMinIOStorage(cfg.MinIO)
	if err != nil {
		return nil, fmt.Errorf("failed to init object storage: %w", err)
	}
	c.Store = store

	c.Queue = asynq.NewClient(asynq.RedisClientOpt{
		Addr:     cfg.Redis.Host,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	c.initRepositories()
	c.initServices()
	c.initHandlers()

	return c, nil
}

func (c *Container) initRepositories() {
	pool := c.DB.Pool

	c.DraftRepo = draftRepo.NewDraftRepository(pool)
	c.BookRepo = bookRepo.NewBookRepository(pool)
	c.LedgerRepo = ledgerRepo.NewLedgerRepository(pool)
	c.Profiles = exportRepo.NewProfileDirectory(pool)
}

func (c *Container) initServices() {
	c.DraftService = draftService.NewService(c.DraftRepo)
	c.LibraryService = bookService.NewService(c.BookRepo, c.Cache)
	c.LedgerService = ledgerService.NewLedgerService(c.LedgerRepo)

	c.ExportService = exportService.NewExportService(
		c.DraftRepo,
		c.BookRepo,
		c.LedgerRepo,
		c.Profiles,
		c.Store,
		exportService.NewPoolTxManager(c.DB.Pool),
		c.Cache,
		c.Queue,
		c.Config.Export.FeeCredits,
		c.Config.Export.Language,
		c.Config.Export.FallbackAuthor,
	)
}

func (c *Container) initHandlers() {
	c.DraftHandler = draftHandler.NewDraftHandler(c.DraftService)
	c.LibraryHandler = bookHandler.NewLibraryHandler(c.LibraryService)
	c.LedgerHandler = ledgerHandler.NewLedgerHandler(c.LedgerService)
	c.ExportHandler = exportHandler.NewExportHandler(c.ExportService)
}

// Cleanup releases external connections. Called during graceful
// shutdown.
func (c *Container) Cleanup() {
	if c.Queue != nil {
		if err := c.Queue.Close(); err != nil {
			logger.Error("Failed to close task queue client", err)
		}
	}

	if c.Cache != nil {
		if rc, ok := c.Cache.(*infraCache.RedisCache); ok {
			if err := rc.Close(); err != nil {
				logger.Error("Failed to close Redis", err)
			}
		}
	}

	if c.DB != nil {
		c.DB.Close()
	}
}
