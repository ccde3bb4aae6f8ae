package router

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/ManuelReschke/IntegrationHub/app/controllers"
	"github.com/ManuelReschke/IntegrationHub/internal/pkg/env"
	"github.com/ManuelReschke/IntegrationHub/internal/pkg/ingest"
)

var webhookAllowHeaders = []string{
	"Content-Type",
	ingest.HeaderSource,
	ingest.HeaderHotmartToken,
	ingest.HeaderAsaasToken,
	ingest.HeaderRelayToken,
}

// WebhookRouter mounts the public ingestion endpoints.
type WebhookRouter struct {
	deps Dependencies
}

func (w WebhookRouter) InstallRouter(app *fiber.App) {
	if w.deps.Webhooks == nil {
		return
	}
	wc := controllers.NewWebhookController(w.deps.Webhooks)

	group := app.Group("/webhooks",
		cors.New(cors.Config{
			AllowOrigins: "*",
			AllowMethods: "POST,OPTIONS",
			AllowHeaders: strings.Join(webhookAllowHeaders, ", "),
		}),
		limiter.New(limiter.Config{
			Max:        env.GetEnvInt("WEBHOOK_RATE_LIMIT_PER_MINUTE", 600),
			Expiration: time.Minute,
			Storage:    w.deps.LimiterStorage,
			LimitReached: func(c *fiber.Ctx) error {
				return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"success": false, "error": "Too many requests"})
			},
		}),
	)
	group.Post("/integrations", wc.HandleWebhook)
	group.Post("/:source", wc.HandleWebhook)
}

func NewWebhookRouter(deps Dependencies) *WebhookRouter {
	return &WebhookRouter{deps: deps}
}
