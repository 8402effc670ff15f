package services

import (
	"encoding/base64"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"meet-registration-portal/config"
	"meet-registration-portal/models"
	"meet-registration-portal/recon"
	"meet-registration-portal/rules"
	"meet-registration-portal/store"
	"meet-registration-portal/utils"
)

const maxPhotoBytes = 200 * 1024

// TeamService serves a team captain's view: draft slots, the merged
// submitted list, fee totals and the submit/delete operations. All remote
// interaction goes through the team's reconciliation engine.
type TeamService struct {
	Cfg      *config.Config
	Rules    *rules.Rules
	Registry *recon.Registry
	Local    *store.Store
}

func NewTeamService(cfg *config.Config, r *rules.Rules, reg *recon.Registry, local *store.Store) *TeamService {
	return &TeamService{Cfg: cfg, Rules: r, Registry: reg, Local: local}
}

func (s *TeamService) teamID(c *fiber.Ctx) string {
	id, _ := c.Locals("team_id").(string)
	return id
}

func (s *TeamService) engine(c *fiber.Ctx) *recon.Engine {
	return s.Registry.ForTeam(c.Context(), s.teamID(c))
}

// GetRegistration returns everything the registration screen needs in one
// call: submitted rows (newest first), draft slots, fee and sync state.
func (s *TeamService) GetRegistration(c *fiber.Ctx) error {
	teamID := s.teamID(c)
	e := s.engine(c)
	drafts := s.Local.LoadDrafts(teamID)
	fee := e.Fee()
	return c.JSON(fiber.Map{
		"team_id":       teamID,
		"participants":  e.Rows(),
		"drafts":        drafts,
		"fee":           fee,
		"fee_formatted": utils.FormatINR(fee.Total),
		"sync_state":    e.State(),
		"pending_count": s.Local.QueueLen(teamID),
	})
}

// GetCatalog returns the master lists plus, when gender/age are supplied,
// the age classes and sports the form should offer for that participant.
func (s *TeamService) GetCatalog(c *fiber.Ctx) error {
	gender := c.Query("gender")
	age := c.QueryInt("age", 0)
	ageClass := c.Query("age_class")

	resp := fiber.Map{
		"sports":        s.Cfg.Sports,
		"designations":  s.Cfg.Designations,
		"blood_types":   s.Cfg.BloodTypes,
		"max_team_size": s.Cfg.MaxTeamSize,
	}
	if gender != "" {
		resp["age_classes"] = s.Rules.AllowedAgeClasses(gender, age)
		resp["allowed_sports"] = s.Rules.AllowedSports(gender, ageClass)
	}
	return c.JSON(resp)
}

type generateSlotsInput struct {
	Count int `json:"count"`
}

// GenerateSlots appends empty draft slots, capped so drafts plus rows that
// still count toward the roster never exceed the team size limit.
func (s *TeamService) GenerateSlots(c *fiber.Ctx) error {
	var input generateSlotsInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if input.Count <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "count must be positive"})
	}

	teamID := s.teamID(c)
	e := s.engine(c)

	active := 0
	for _, row := range e.Rows() {
		if row.Status != models.StatusDeleted {
			active++
		}
	}
	drafts := s.Local.LoadDrafts(teamID)
	room := s.Cfg.MaxTeamSize - active - len(drafts)
	if room <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": fmt.Sprintf("team is full (%d participants max)", s.Cfg.MaxTeamSize),
		})
	}
	n := input.Count
	if n > room {
		n = room
	}

	for i := 0; i < n; i++ {
		drafts = append(drafts, models.Participant{
			TeamID: teamID,
			Sports: []string{"", "", ""},
			Status: models.StatusDraft,
		})
	}
	s.Local.SaveDrafts(teamID, drafts)

	return c.JSON(fiber.Map{
		"drafts":  drafts,
		"added":   n,
		"clamped": n != input.Count,
	})
}

// draftPatch carries a partial draft update. Pointer fields distinguish
// "leave alone" from "set to empty".
type draftPatch struct {
	Name        *string   `json:"name"`
	Gender      *string   `json:"gender"`
	Age         *int      `json:"age"`
	Designation *string   `json:"designation"`
	Phone       *string   `json:"phone"`
	Blood       *string   `json:"blood"`
	AgeClass    *string   `json:"age_class"`
	VegNon      *string   `json:"veg_non"`
	Sports      *[]string `json:"sports"`
}

// UpdateDraft patches one draft slot. Changing gender or age re-checks the
// chosen age class and resets it (and the sports) when it is no longer
// legal; changing the age class drops any sport the new class disallows.
func (s *TeamService) UpdateDraft(c *fiber.Ctx) error {
	idx, err := c.ParamsInt("index")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid draft index"})
	}
	var patch draftPatch
	if err := c.BodyParser(&patch); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	teamID := s.teamID(c)
	drafts := s.Local.LoadDrafts(teamID)
	if idx < 0 || idx >= len(drafts) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "draft not found"})
	}
	d := &drafts[idx]

	classChanged := false
	demographicsChanged := false

	if patch.Name != nil {
		d.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Gender != nil {
		d.Gender = *patch.Gender
		demographicsChanged = true
	}
	if patch.Age != nil {
		d.Age = *patch.Age
		demographicsChanged = true
	}
	if patch.Designation != nil {
		d.Designation = *patch.Designation
	}
	if patch.Phone != nil {
		d.Phone = *patch.Phone
	}
	if patch.Blood != nil {
		d.Blood = *patch.Blood
	}
	if patch.AgeClass != nil {
		d.AgeClass = *patch.AgeClass
		classChanged = true
	}
	if patch.VegNon != nil {
		d.VegNon = *patch.VegNon
	}
	if patch.Sports != nil {
		sports := make([]string, 3)
		copy(sports, *patch.Sports)
		d.Sports = sports
	}

	if demographicsChanged && d.AgeClass != "" {
		legal := false
		for _, cl := range s.Rules.AllowedAgeClasses(d.Gender, d.Age) {
			if cl.ID == d.AgeClass {
				legal = true
				break
			}
		}
		if !legal {
			d.AgeClass = ""
			d.Sports = []string{"", "", ""}
		}
	}
	if classChanged {
		allowed := make(map[string]bool)
		for _, sp := range s.Rules.AllowedSports(d.Gender, d.AgeClass) {
			allowed[sp] = true
		}
		for i, sp := range d.Sports {
			if sp != "" && !allowed[sp] {
				d.Sports[i] = ""
			}
		}
	}

	s.Local.SaveDrafts(teamID, drafts)
	return c.JSON(d)
}

// RemoveDraft discards one draft slot.
func (s *TeamService) RemoveDraft(c *fiber.Ctx) error {
	idx, err := c.ParamsInt("index")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid draft index"})
	}
	teamID := s.teamID(c)
	drafts := s.Local.LoadDrafts(teamID)
	if idx < 0 || idx >= len(drafts) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "draft not found"})
	}
	drafts = append(drafts[:idx], drafts[idx+1:]...)
	s.Local.SaveDrafts(teamID, drafts)
	return c.JSON(fiber.Map{"drafts": drafts})
}

// UploadPhoto attaches a profile photo to a draft slot. JPG or PNG only,
// 200KB cap, stored inline as a data URL so the row survives offline.
func (s *TeamService) UploadPhoto(c *fiber.Ctx) error {
	idx, err := c.ParamsInt("index")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid draft index"})
	}
	file, err := c.FormFile("photo")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "photo is required"})
	}
	if file.Size > maxPhotoBytes {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Profile photo required (JPG/PNG ≤200KB)"})
	}

	var mime string
	name := strings.ToLower(file.Filename)
	switch {
	case strings.HasSuffix(name, ".jpg"), strings.HasSuffix(name, ".jpeg"):
		mime = "image/jpeg"
	case strings.HasSuffix(name, ".png"):
		mime = "image/png"
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Profile photo required (JPG/PNG ≤200KB)"})
	}

	src, err := file.Open()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to read photo"})
	}
	defer src.Close()
	raw, err := io.ReadAll(src)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to read photo"})
	}

	teamID := s.teamID(c)
	drafts := s.Local.LoadDrafts(teamID)
	if idx < 0 || idx >= len(drafts) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "draft not found"})
	}
	drafts[idx].PhotoBase64 = fmt.Sprintf("data:%s;base64,%s", mime, base64.StdEncoding.EncodeToString(raw))
	s.Local.SaveDrafts(teamID, drafts)

	return c.JSON(fiber.Map{"message": "photo attached", "size": file.Size})
}

// SubmitAll validates and submits every draft slot as one batch.
func (s *TeamService) SubmitAll(c *fiber.Ctx) error {
	msg, err := s.engine(c).SubmitAll(c.Context())
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"message": msg})
}

type deleteRequestInput struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Reason    string    `json:"reason"`
}

// RequestDelete petitions for a participant's removal; the row is marked
// immediately, the final delete waits for admin approval.
func (s *TeamService) RequestDelete(c *fiber.Ctx) error {
	var input deleteRequestInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	msg, err := s.engine(c).RequestDelete(c.Context(), input.ID, input.Timestamp, input.Reason)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"message": msg})
}

// SyncNow forces a flush of queued writes followed by a full refetch.
func (s *TeamService) SyncNow(c *fiber.Ctx) error {
	e := s.engine(c)
	flushed, flushErr := e.FlushPending(c.Context())
	if flushErr != nil {
		log.Printf("⚠️ [TEAM:%s] Manual flush halted: %v", s.teamID(c), flushErr)
	}
	if err := e.Sync(c.Context()); err != nil {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error":   "sync failed",
			"details": err.Error(),
			"flushed": flushed,
		})
	}
	return c.JSON(fiber.Map{
		"message":       "synced",
		"flushed":       flushed,
		"participants":  e.Rows(),
		"sync_state":    e.State(),
		"pending_count": s.Local.QueueLen(s.teamID(c)),
	})
}

// GetFee prices the current registration.
func (s *TeamService) GetFee(c *fiber.Ctx) error {
	fee := s.engine(c).Fee()
	return c.JSON(fiber.Map{
		"fee":           fee,
		"fee_formatted": utils.FormatINR(fee.Total),
	})
}
