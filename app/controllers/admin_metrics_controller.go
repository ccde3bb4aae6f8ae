package controllers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/ManuelReschke/IntegrationHub/internal/pkg/metrics/daily"
)

const dateLayout = "2006-01-02"

// MetricsReader reads aggregated daily counters.
type MetricsReader interface {
	Range(ctx context.Context, from, to time.Time) ([]daily.Summary, error)
	Day(t time.Time) time.Time
}

// AdminMetricsController exposes daily revenue and sales counts.
type AdminMetricsController struct {
	metrics MetricsReader
	now     func() time.Time
}

// NewAdminMetricsController creates the controller.
func NewAdminMetricsController(metrics MetricsReader) *AdminMetricsController {
	return &AdminMetricsController{metrics: metrics, now: time.Now}
}

// HandleDailyMetrics serves GET /api/admin/metrics/daily?from=YYYY-MM-DD&to=YYYY-MM-DD.
// Without bounds the last 30 days up to today are returned.
func (mc *AdminMetricsController) HandleDailyMetrics(c *fiber.Ctx) error {
	to := mc.metrics.Day(mc.now())
	from := to.AddDate(0, 0, -30)

	if v := c.Query("from"); v != "" {
		t, err := time.Parse(dateLayout, v)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": "from must be YYYY-MM-DD"})
		}
		from = t
	}
	if v := c.Query("to"); v != "" {
		t, err := time.Parse(dateLayout, v)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": "to must be YYYY-MM-DD"})
		}
		to = t
	}

	rows, err := mc.metrics.Range(c.UserContext(), from, to)
	if err != nil {
		log.Errorf("[AdminMetrics] Failed to load daily metrics: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "error": "Failed to load metrics"})
	}
	return c.JSON(fiber.Map{"success": true, "days": rows})
}
