package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/ManuelReschke/IntegrationHub/internal/pkg/bootstrap"
	"github.com/ManuelReschke/IntegrationHub/internal/pkg/cache"
	"github.com/ManuelReschke/IntegrationHub/internal/pkg/env"
	"github.com/ManuelReschke/IntegrationHub/internal/pkg/jobqueue"
	"github.com/ManuelReschke/IntegrationHub/internal/pkg/router"
)

func main() {
	env.SetupEnvFile()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	container, err := bootstrap.Build(ctx)
	if err != nil {
		log.Fatalf("[Hub] Startup failed: %v", err)
	}
	defer container.Close()

	var manager *jobqueue.Manager
	if container.Directory != nil {
		interval := time.Duration(env.GetEnvInt("DIRECTORY_SYNC_INTERVAL_MINUTES", 360)) * time.Minute
		manager = jobqueue.NewManager(container.Directory, interval, time.Duration(env.GetEnvInt("DIRECTORY_SYNC_LOCK_TTL_MINUTES", 30))*time.Minute)
		manager.Start()
		defer manager.Stop()
	}

	app := NewApplication(container, manager)

	go func() {
		<-ctx.Done()
		log.Info("[Hub] Shutting down")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Errorf("[Hub] Shutdown error: %v", err)
		}
	}()

	addr := fmt.Sprintf("%s:%s", env.GetEnv("APP_HOST", "0.0.0.0"), env.GetEnv("APP_PORT", "4000"))
	if err := app.Listen(addr); err != nil {
		log.Errorf("[Hub] Server stopped: %v", err)
	}
}

// NewApplication builds the fiber app with every route installed.
func NewApplication(c *bootstrap.Container, manager *jobqueue.Manager) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:   "integration-hub",
		BodyLimit: 2 * 1024 * 1024,
	})
	app.Use(recover.New(), logger.New())

	// SWAGGER / OPENAPI
	app.Use(swagger.New(swagger.Config{
		BasePath: "/docs/api/",
		FilePath: env.GetEnv("OPENAPI_FILE", "./public/docs/v1/openapi.yml"),
		Path:     "v1",
	}))

	pingCtx, cancelPing := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancelPing()

	deps := router.Dependencies{
		Webhooks:       c.Pipeline,
		Metrics:        c.Metrics,
		AdminKeyHash:   env.GetEnv("ADMIN_API_KEY_HASH", ""),
		LimiterStorage: cache.NewFiberStorage(pingCtx, c.Cache),
		Ready: func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return c.Ready(ctx)
		},
	}
	if c.Directory != nil {
		deps.Directory = c.Directory
		deps.SyncTrigger = manager
	}

	router.InstallRouter(app, deps)
	return app
}
