package controllers

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuelReschke/IntegrationHub/internal/pkg/metrics/daily"
)

type stubMetrics struct {
	from, to time.Time
}

func (s *stubMetrics) Range(_ context.Context, from, to time.Time) ([]daily.Summary, error) {
	s.from, s.to = from, to
	return []daily.Summary{{Date: "2024-03-15", Source: "hotmart", Revenue: 1990, SalesCount: 1}}, nil
}

func (s *stubMetrics) Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestHandleDailyMetrics(t *testing.T) {
	metrics := &stubMetrics{}
	mc := NewAdminMetricsController(metrics)
	mc.now = func() time.Time { return time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC) }

	app := fiber.New()
	app.Get("/daily", mc.HandleDailyMetrics)

	t.Run("defaults to last 30 days", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest("GET", "/daily", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.Equal(t, "2024-02-14", metrics.from.Format(dateLayout))
		assert.Equal(t, "2024-03-15", metrics.to.Format(dateLayout))
	})

	t.Run("explicit range", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest("GET", "/daily?from=2024-01-01&to=2024-01-31", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.Equal(t, "2024-01-01", metrics.from.Format(dateLayout))
		assert.Equal(t, "2024-01-31", metrics.to.Format(dateLayout))
	})

	t.Run("bad date", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest("GET", "/daily?from=15/03/2024", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})
}
