package middleware

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newAdminApp(t *testing.T, hash string) *fiber.App {
	t.Helper()
	app := fiber.New()
	app.Get("/admin", AdminKeyMiddleware(hash), func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	return app
}

func TestAdminKeyMiddleware(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)
	app := newAdminApp(t, string(hash))

	tests := []struct {
		name   string
		header string
		value  string
		want   int
	}{
		{"admin header", "X-Admin-Key", "s3cret", fiber.StatusOK},
		{"bearer", "Authorization", "Bearer s3cret", fiber.StatusOK},
		{"wrong key", "X-Admin-Key", "nope", fiber.StatusUnauthorized},
		{"missing key", "", "", fiber.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/admin", nil)
			if tt.header != "" {
				req.Header.Set(tt.header, tt.value)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}
}

func TestAdminKeyMiddleware_Unconfigured(t *testing.T) {
	app := newAdminApp(t, "")

	req := httptest.NewRequest("GET", "/admin", nil)
	req.Header.Set("X-Admin-Key", "anything")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
}
