package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/IntegrationHub/app/controllers"
)

type Router interface {
	InstallRouter(app *fiber.App)
}

// Dependencies carries everything the routers hand to controllers.
type Dependencies struct {
	Webhooks     controllers.WebhookProcessor
	Directory    controllers.DirectoryService
	SyncTrigger  controllers.SyncTrigger
	Metrics      controllers.MetricsReader
	AdminKeyHash string
	// LimiterStorage backs the webhook rate limiter. nil keeps counters in memory.
	LimiterStorage fiber.Storage
	// Ready reports dependency health for /healthz.
	Ready func() error
}

func InstallRouter(app *fiber.App, deps Dependencies) {
	// Ops routes are registered before the webhook and admin groups.
	setup(app, NewHttpRouter(deps), NewWebhookRouter(deps), NewApiRouter(deps))
}

func setup(app *fiber.App, router ...Router) {
	for _, r := range router {
		r.InstallRouter(app)
	}
}
