package bootstrap

import (
	"context"
	"fmt"

	"github.com/gofiber/fiber/v2/log"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/ManuelReschke/IntegrationHub/app/models"
	"github.com/ManuelReschke/IntegrationHub/app/repository"
	"github.com/ManuelReschke/IntegrationHub/internal/pkg/archive"
	"github.com/ManuelReschke/IntegrationHub/internal/pkg/audit"
	"github.com/ManuelReschke/IntegrationHub/internal/pkg/cache"
	"github.com/ManuelReschke/IntegrationHub/internal/pkg/commission"
	"github.com/ManuelReschke/IntegrationHub/internal/pkg/database"
	"github.com/ManuelReschke/IntegrationHub/internal/pkg/directory"
	"github.com/ManuelReschke/IntegrationHub/internal/pkg/env"
	"github.com/ManuelReschke/IntegrationHub/internal/pkg/ingest"
	"github.com/ManuelReschke/IntegrationHub/internal/pkg/metrics/daily"
	"github.com/ManuelReschke/IntegrationHub/internal/pkg/notify"
)

// Container holds the wired service graph shared by the server and the CLI.
type Container struct {
	DB           *gorm.DB
	Cache        *redis.Client
	Repositories *repository.Repositories
	Audit        *audit.Logger
	Pipeline     *ingest.Pipeline
	Metrics      *daily.Aggregator
	Commissions  *commission.Engine
	Publisher    notify.Publisher
	// Directory is nil when DIRECTORY_API_BASE_URL is not configured.
	Directory *directory.Service
}

// Build connects to the database and cache and wires every component.
func Build(ctx context.Context) (*Container, error) {
	db, err := database.SetupDatabase()
	if err != nil {
		return nil, err
	}

	c := &Container{
		DB:           db,
		Cache:        cache.NewClient(ctx),
		Repositories: repository.NewFactory(db).GetRepositories(),
		Publisher:    notify.NewFromEnv(),
	}
	c.Audit = audit.NewLogger(c.Repositories.SecurityEvent)
	c.Metrics = daily.NewAggregator(c.Repositories.Metric, daily.LoadLocation())
	c.Commissions = commission.NewEngine(c.Repositories.Affiliate)

	c.Pipeline = ingest.NewPipeline(
		ingest.NewVerifierFromEnv(),
		c.Repositories.IntegrationEvent,
		c.Repositories.Transaction,
		c.Audit,
		ApprovedSaleHooks(c.Commissions, c.Metrics, c.Publisher)...,
	)

	archiveCfg, err := archive.LoadConfig()
	if err != nil {
		return nil, err
	}
	if archiveCfg.Enabled {
		archiver, err := archive.NewClient(ctx, archiveCfg)
		if err != nil {
			log.Warnf("[Bootstrap] Payload archive disabled: %v", err)
		} else {
			c.Pipeline.WithArchiver(archiver)
		}
	}

	c.Directory, err = buildDirectory(c)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func buildDirectory(c *Container) (*directory.Service, error) {
	if env.GetEnv("DIRECTORY_API_BASE_URL", "") == "" {
		log.Warn("[Bootstrap] DIRECTORY_API_BASE_URL not set, directory sync disabled")
		return nil, nil
	}
	cfg, err := directory.LoadConfig()
	if err != nil {
		return nil, err
	}
	svc := directory.NewService(cfg, directory.NewClient(cfg), c.Repositories, c.Publisher).
		WithLocker(cache.NewLocker(c.Cache))
	return svc, nil
}

// ApprovedSaleHooks returns the post-commit hooks in execution order.
func ApprovedSaleHooks(engine *commission.Engine, metrics *daily.Aggregator, publisher notify.Publisher) []ingest.Hook {
	return []ingest.Hook{
		ingest.NewHook("commission", func(ctx context.Context, tx *models.Transaction) error {
			_, err := engine.ComputeAndRecord(ctx, tx)
			return err
		}),
		ingest.NewHook("daily_metrics", metrics.RecordApprovedSale),
		ingest.NewHook("notify", publisher.ApprovedSale),
	}
}

// Close releases network resources.
func (c *Container) Close() {
	if err := c.Publisher.Close(); err != nil {
		log.Warnf("[Bootstrap] Failed to close publisher: %v", err)
	}
	if err := c.Cache.Close(); err != nil {
		log.Warnf("[Bootstrap] Failed to close cache client: %v", err)
	}
	if sqlDB, err := c.DB.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Warnf("[Bootstrap] Failed to close database: %v", err)
		}
	}
}

// Ready pings the database and the cache.
func (c *Container) Ready(ctx context.Context) error {
	sqlDB, err := c.DB.DB()
	if err != nil {
		return err
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := c.Cache.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("cache: %w", err)
	}
	return nil
}
