package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/directory-service/internal/api/http"
	"github.com/spec-kit/directory-service/internal/api/http/handlers"
	"github.com/spec-kit/directory-service/internal/config"
	"github.com/spec-kit/directory-service/internal/events"
	"github.com/spec-kit/directory-service/internal/observability"
	"github.com/spec-kit/directory-service/internal/persistence"
	"github.com/spec-kit/directory-service/internal/repository"
	"github.com/spec-kit/directory-service/internal/service"
	"github.com/spec-kit/directory-service/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if pg.Enabled() && cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), cfg.Postgres.MigrationsDir, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	var redis *persistence.Redis
	if cfg.Directory.Store == config.StoreRedis {
		redis = persistence.NewRedis(ctx, cfg.Redis, logger)
		defer redis.Close()
	}

	snapshot := snapshotStore(cfg, pg, redis)
	directoryRepo, err := repository.NewDirectoryRepository(ctx, snapshot)
	if err != nil {
		logger.Fatal("failed to load directory", zap.Error(err), zap.String("store", cfg.Directory.Store))
	}
	requestRepo := repository.NewRequestRepository()

	metrics := observability.NewMetrics()
	metrics.SetDirectorySize(directoryRepo.Count())
	dispatcher := events.NewInMemoryDispatcher(logger)

	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	notificationService.RegisterHandlers()

	provisioningWorker := worker.NewProvisioningWorker(cfg.Provisioning, logger)
	provisioner := service.NewProvisioner(service.ProvisionerDependencies{
		RequestRepo:   requestRepo,
		DirectoryRepo: directoryRepo,
		Delay:         service.FixedDelay(cfg.Provisioning.Delay()),
		Queue:         provisioningWorker,
		Dispatcher:    dispatcher,
		Metrics:       metrics,
		Logger:        logger,
		DefaultTitle:  cfg.Provisioning.DefaultTitle,
	})
	provisioningWorker.Start(ctx, provisioner)

	requestService := service.NewRequestService(service.RequestDependencies{
		RequestRepo: requestRepo,
		Provisioner: provisioner,
		Dispatcher:  dispatcher,
		Metrics:     metrics,
		Logger:      logger,
	})
	directoryService := service.NewDirectoryService(directoryRepo)
	syncService := service.NewSyncService(service.SyncDependencies{
		Delay:      service.FixedDelay(cfg.Sync.Delay()),
		Dispatcher: dispatcher,
		Logger:     logger,
	})

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	checks := map[string]handlers.HealthCheck{}
	if pg.Enabled() {
		checks["postgres"] = pg.Ping
	}
	if redis != nil {
		checks["redis"] = redis.Ping
	}

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:        handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, checks),
		Requests:      handlers.NewRequestsHandler(requestService),
		Directory:     handlers.NewDirectoryHandler(directoryService),
		Sync:          handlers.NewSyncHandler(syncService),
		Notifications: handlers.NewNotificationsHandler(notificationService),
		Metrics:       metrics,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
	provisioningWorker.Stop()
}

func snapshotStore(cfg *config.Config, pg *persistence.Postgres, redis *persistence.Redis) repository.SnapshotStore {
	switch cfg.Directory.Store {
	case config.StoreRedis:
		return persistence.NewRedisSnapshotStore(redis.Client, cfg.Directory.StorageKey)
	case config.StorePostgres:
		return persistence.NewPostgresSnapshotStore(pg.PoolHandle(), cfg.Directory.StorageKey)
	default:
		return repository.NewMemorySnapshotStore()
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
