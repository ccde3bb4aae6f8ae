package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"golang.org/x/crypto/bcrypt"
)

// AdminKeyMiddleware protects admin routes with a shared key whose bcrypt
// hash is configured. An empty hash disables the admin API.
func AdminKeyMiddleware(keyHash string) fiber.Handler {
	hash := []byte(strings.TrimSpace(keyHash))
	return func(c *fiber.Ctx) error {
		if len(hash) == 0 {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"success": false, "error": "Admin API is not configured"})
		}

		key := extractAdminKey(c)
		if key == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"success": false, "error": "Missing admin key"})
		}
		if err := bcrypt.CompareHashAndPassword(hash, []byte(key)); err != nil {
			log.Warnf("[Admin] Rejected admin request from %s to %s", c.IP(), c.Path())
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"success": false, "error": "Invalid admin key"})
		}
		return c.Next()
	}
}

func extractAdminKey(c *fiber.Ctx) string {
	if key := strings.TrimSpace(c.Get("X-Admin-Key")); key != "" {
		return key
	}
	auth := strings.TrimSpace(c.Get("Authorization"))
	if strings.HasPrefix(strings.ToLower(auth), "bearer ") {
		return strings.TrimSpace(auth[7:])
	}
	return ""
}
