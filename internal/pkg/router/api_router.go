package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/IntegrationHub/app/controllers"
	"github.com/ManuelReschke/IntegrationHub/internal/pkg/middleware"
)

// ApiRouter mounts the admin API behind the admin key.
type ApiRouter struct {
	deps Dependencies
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	admin := app.Group("/api/admin", middleware.AdminKeyMiddleware(h.deps.AdminKeyHash))

	if h.deps.Directory != nil {
		dc := controllers.NewAdminDirectoryController(h.deps.Directory, h.deps.SyncTrigger)
		admin.Post("/directory/sync", dc.HandleSync)
		admin.Get("/directory/status", dc.HandleStatus)
		admin.Get("/discrepancies", dc.HandleListDiscrepancies)
		admin.Post("/discrepancies/resolve", dc.HandleResolveDiscrepancy)
	}

	if h.deps.Metrics != nil {
		mc := controllers.NewAdminMetricsController(h.deps.Metrics)
		admin.Get("/metrics/daily", mc.HandleDailyMetrics)
	}
}

func NewApiRouter(deps Dependencies) *ApiRouter {
	return &ApiRouter{deps: deps}
}
