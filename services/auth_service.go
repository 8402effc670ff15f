package services

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"meet-registration-portal/config"
)

type AuthService struct {
	Cfg       *config.Config
	JWTSecret []byte
}

func NewAuthService(cfg *config.Config, jwtSecret []byte) *AuthService {
	return &AuthService{Cfg: cfg, JWTSecret: jwtSecret}
}

type loginInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login checks the credentials against the team roster first, then the
// admin roster, and issues a signed session token for whichever matched.
func (s *AuthService) Login(c *fiber.Ctx) error {
	var input loginInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if input.Username == "" || input.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "username and password are required"})
	}

	if team, ok := s.Cfg.AuthenticateTeam(input.Username, input.Password); ok {
		token, err := s.issueToken("team", team.TeamID)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to issue token"})
		}
		log.Printf("✅ [AUTH] Team login: %s", team.TeamID)
		return c.JSON(fiber.Map{
			"token":   token,
			"role":    "team",
			"team_id": team.TeamID,
		})
	}

	if admin, ok := s.Cfg.AuthenticateAdmin(input.Username, input.Password); ok {
		token, err := s.issueToken("admin", admin.Username)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to issue token"})
		}
		log.Printf("✅ [AUTH] Admin login: %s", admin.Username)
		return c.JSON(fiber.Map{
			"token": token,
			"role":  "admin",
			"admin": admin.Username,
		})
	}

	log.Printf("🚫 [AUTH] Failed login attempt for %q", input.Username)
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid credentials"})
}

func (s *AuthService) issueToken(role, subject string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  subject,
		"role": role,
		"iat":  now.Unix(),
		"exp":  now.Add(12 * time.Hour).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.JWTSecret)
}

// Me echoes the identity the auth middleware resolved from the token.
func (s *AuthService) Me(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"role":    c.Locals("role"),
		"subject": c.Locals("subject"),
	})
}
