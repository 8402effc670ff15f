package storeserver

import (
	"errors"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"meet-registration-portal/middleware"
)

// Server is the canonical participant store: a thin JSON API over Postgres
// plus a websocket change feed. It knows nothing about eligibility or fees;
// all validation happens in the portal before rows get here.
type Server struct {
	DB  *gorm.DB
	Hub *Hub
}

func NewServer(db *gorm.DB) (*Server, error) {
	if err := db.AutoMigrate(&ParticipantRow{}); err != nil {
		return nil, err
	}
	return &Server{DB: db, Hub: NewHub()}, nil
}

// SetupRoutes mounts the API behind the shared service token.
func (s *Server) SetupRoutes(app *fiber.App, serviceToken string) {
	app.Use(middleware.ServiceTokenMiddleware(serviceToken))

	app.Get("/participants", s.ListParticipants)
	app.Post("/participants", s.InsertParticipants)
	app.Patch("/participants/status", s.UpdateStatus)

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws", websocket.New(func(conn *websocket.Conn) {
		s.Hub.Serve(conn)
	}))
}

// ListParticipants returns rows newest first, optionally scoped to a team.
func (s *Server) ListParticipants(c *fiber.Ctx) error {
	q := s.DB.Order("timestamp DESC")
	if teamID := c.Query("team_id"); teamID != "" {
		q = q.Where("team_id = ?", teamID)
	}
	rows := []ParticipantRow{}
	if err := q.Find(&rows).Error; err != nil {
		log.Printf("❌ [STORE_SERVER] List failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch participants"})
	}
	return c.JSON(rows)
}

// InsertParticipants appends a batch, assigns ids, and echoes the stored
// rows back so callers learn their server identities.
func (s *Server) InsertParticipants(c *fiber.Ctx) error {
	var rows []ParticipantRow
	if err := c.BodyParser(&rows); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if len(rows) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "empty batch"})
	}

	now := time.Now().UTC()
	for i := range rows {
		if rows[i].TeamID == "" || rows[i].Name == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "team_id and name are required on every row"})
		}
		rows[i].ID = uuid.NewString()
		if rows[i].Timestamp.IsZero() {
			rows[i].Timestamp = now
		}
		if rows[i].Status == "" {
			rows[i].Status = "Active"
		}
	}

	if err := s.DB.Create(&rows).Error; err != nil {
		log.Printf("❌ [STORE_SERVER] Insert of %d row(s) failed: %v", len(rows), err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to insert participants"})
	}

	for _, row := range rows {
		s.Hub.Broadcast(ChangeFrame{Kind: "insert", Row: row})
	}
	log.Printf("✅ [STORE_SERVER] Inserted %d row(s) for team %s", len(rows), rows[0].TeamID)
	return c.Status(fiber.StatusCreated).JSON(rows)
}

type statusUpdateInput struct {
	ID        string     `json:"id"`
	TeamID    string     `json:"team_id"`
	Timestamp *time.Time `json:"timestamp"`
	Status    string     `json:"status"`
}

var allowedStatuses = map[string]bool{
	"Active":    true,
	"Requested": true,
	"Deleted":   true,
}

// UpdateStatus changes one row's status, matching by id when given,
// otherwise by team + creation timestamp (rows inserted offline have no id
// on the requesting side yet).
func (s *Server) UpdateStatus(c *fiber.Ctx) error {
	var input statusUpdateInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if !allowedStatuses[input.Status] {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid status (use: Active, Requested, Deleted)"})
	}

	var row ParticipantRow
	var err error
	switch {
	case input.ID != "":
		err = s.DB.First(&row, "id = ?", input.ID).Error
	case input.TeamID != "" && input.Timestamp != nil:
		err = s.DB.First(&row, "team_id = ? AND timestamp = ?", input.TeamID, *input.Timestamp).Error
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "id or team_id+timestamp required"})
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "participant not found"})
		}
		log.Printf("❌ [STORE_SERVER] Status lookup failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}

	row.Status = input.Status
	if err := s.DB.Save(&row).Error; err != nil {
		log.Printf("❌ [STORE_SERVER] Status update failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to update status"})
	}

	kind := "update"
	if input.Status == "Deleted" {
		kind = "delete"
	}
	s.Hub.Broadcast(ChangeFrame{Kind: kind, Row: row})
	log.Printf("✅ [STORE_SERVER] Row %s (team %s) -> %s", row.ID, row.TeamID, row.Status)
	return c.JSON(row)
}
