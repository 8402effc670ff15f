package middleware

import (
	"log"

	"github.com/gofiber/fiber/v2"
)

// ServiceTokenMiddleware guards service-to-service routes: every request
// must carry the shared X-Service-Token. The store server mounts it
// globally so only the portal and the proxy can reach the canonical rows.
func ServiceTokenMiddleware(expectedToken string) fiber.Handler {
	if expectedToken == "" {
		log.Fatal("❌ Service token is not set — refusing to start without it")
	}

	return func(c *fiber.Ctx) error {
		token := c.Get("X-Service-Token")
		if token == "" {
			log.Printf("🚫 [SERVICE_AUTH] Missing X-Service-Token for %s", c.Path())
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "service authentication token missing",
			})
		}
		if token != expectedToken {
			log.Printf("❌ [SERVICE_AUTH] Invalid token for %s (got prefix: %.10s...)", c.Path(), token)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "invalid service authentication token",
			})
		}
		return c.Next()
	}
}
