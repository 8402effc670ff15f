package middleware

import (
	"fmt"
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// RequireAuth validates the Bearer session token and attaches the caller's
// identity to the request context: "role" ("team" or "admin"), "subject"
// (team id or admin username) and, for team sessions, "team_id".
func RequireAuth(jwtSecret []byte) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "missing Authorization header"})
		}
		raw := strings.TrimPrefix(authHeader, "Bearer ")

		token, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
			}
			return jwtSecret, nil
		})
		if err != nil || !token.Valid {
			log.Printf("🚫 [AUTH] Invalid session token for %s: %v", c.Path(), err)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid or expired session token"})
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid token claims"})
		}
		role, _ := claims["role"].(string)
		subject, _ := claims["sub"].(string)
		if role == "" || subject == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid token claims"})
		}

		c.Locals("role", role)
		c.Locals("subject", subject)
		if role == "team" {
			c.Locals("team_id", subject)
		}
		return c.Next()
	}
}

// RequireTeam gates routes to team sessions.
func RequireTeam() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if role, _ := c.Locals("role").(string); role != "team" {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "team session required"})
		}
		return c.Next()
	}
}

// RequireAdmin gates routes to admin sessions.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if role, _ := c.Locals("role").(string); role != "admin" {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "admin session required"})
		}
		return c.Next()
	}
}
