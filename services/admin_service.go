package services

import (
	"encoding/base64"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gosimple/slug"

	"meet-registration-portal/config"
	"meet-registration-portal/gateway"
	"meet-registration-portal/models"
	"meet-registration-portal/rules"
	"meet-registration-portal/store"
	"meet-registration-portal/utils"
)

// AdminService serves the organiser's view: the full participant list
// across teams, the CSV export, fee summaries and the delete-approval
// workflow. Admin reads go straight to the store server; the local
// delete-request log lives in the Store.
type AdminService struct {
	Cfg   *config.Config
	Rules *rules.Rules
	GW    gateway.Client
	Local *store.Store
}

func NewAdminService(cfg *config.Config, r *rules.Rules, gw gateway.Client, local *store.Store) *AdminService {
	return &AdminService{Cfg: cfg, Rules: r, GW: gw, Local: local}
}

// ListParticipants returns every row, optionally filtered by team, status
// or sport via query parameters.
func (s *AdminService) ListParticipants(c *fiber.Ctx) error {
	rows, err := s.GW.FetchAllParticipants(c.Context())
	if err != nil {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "failed to fetch participants", "details": err.Error()})
	}

	teamID := c.Query("team_id")
	status := c.Query("status")
	sport := c.Query("sport")

	filtered := rows[:0]
	for _, row := range rows {
		if teamID != "" && row.TeamID != teamID {
			continue
		}
		if status != "" && string(row.Status) != status {
			continue
		}
		if sport != "" && !row.PlaysSport(sport) {
			continue
		}
		filtered = append(filtered, row)
	}
	return c.JSON(fiber.Map{"participants": filtered, "count": len(filtered)})
}

// ExportCSV streams the full participant table as a CSV download. Photo
// payloads are replaced with a marker so the file stays spreadsheet-sized.
func (s *AdminService) ExportCSV(c *fiber.Ctx) error {
	rows, err := s.GW.FetchAllParticipants(c.Context())
	if err != nil {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "failed to fetch participants", "details": err.Error()})
	}
	teamID := c.Query("team_id")
	if teamID != "" {
		kept := rows[:0]
		for _, row := range rows {
			if row.TeamID == teamID {
				kept = append(kept, row)
			}
		}
		rows = kept
	}

	csv := utils.ParticipantsCSV(rows)
	filename := "participants_" + time.Now().Format("2006-01-02") + ".csv"
	if teamID != "" {
		filename = "participants_" + slug.Make(teamID) + "_" + time.Now().Format("2006-01-02") + ".csv"
	}
	c.Set("Content-Type", "text/csv; charset=utf-8")
	c.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	return c.SendString(csv)
}

// FeesSummary prices every team's current registration.
func (s *AdminService) FeesSummary(c *fiber.Ctx) error {
	rows, err := s.GW.FetchAllParticipants(c.Context())
	if err != nil {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "failed to fetch participants", "details": err.Error()})
	}

	counts := make(map[string]int)
	for _, row := range rows {
		if row.Status != models.StatusDeleted && row.Status != models.StatusRequested {
			counts[row.TeamID]++
		}
	}

	type teamFee struct {
		TeamID       string    `json:"team_id"`
		Participants int       `json:"participants"`
		Fee          rules.Fee `json:"fee"`
		FeeFormatted string    `json:"fee_formatted"`
	}
	var out []teamFee
	var grand int64
	for _, team := range s.Cfg.Teams {
		fee := s.Rules.ComputeFee(counts[team.TeamID], team.TeamID)
		grand += fee.Total
		out = append(out, teamFee{
			TeamID:       team.TeamID,
			Participants: counts[team.TeamID],
			Fee:          fee,
			FeeFormatted: utils.FormatINR(fee.Total),
		})
	}
	return c.JSON(fiber.Map{
		"teams":           out,
		"total":           grand,
		"total_formatted": utils.FormatINR(grand),
	})
}

// ListDeleteRequests returns the delete-request log, optionally filtered
// to pending ones.
func (s *AdminService) ListDeleteRequests(c *fiber.Ctx) error {
	reqs := s.Local.LoadDeleteRequests()
	if c.Query("status") != "" {
		status := c.Query("status")
		kept := reqs[:0]
		for _, r := range reqs {
			if r.Status == status {
				kept = append(kept, r)
			}
		}
		reqs = kept
	}
	return c.JSON(fiber.Map{"delete_requests": reqs, "count": len(reqs)})
}

func (s *AdminService) findDeleteRequest(reqID string) (models.DeleteRequest, bool) {
	for _, r := range s.Local.LoadDeleteRequests() {
		if r.ReqID == reqID {
			return r, true
		}
	}
	return models.DeleteRequest{}, false
}

// ApproveDelete finalises a pending deletion: the canonical row is marked
// Deleted on the store server and the request is resolved. The row itself
// is never removed, so team histories keep showing it.
func (s *AdminService) ApproveDelete(c *fiber.Ctx) error {
	reqID := c.Params("req_id")
	req, ok := s.findDeleteRequest(reqID)
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "delete request not found"})
	}
	if req.Status != models.DeleteReqPending {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "delete request already " + req.Status})
	}

	key := gateway.MatchKey{ID: req.RowID}
	if key.ID == "" {
		key.TeamID = req.TeamID
		key.Timestamp = req.Timestamp
	}
	if _, err := s.GW.UpdateParticipantStatus(c.Context(), key, models.StatusDeleted); err != nil {
		log.Printf("❌ [ADMIN] Approve delete %s failed: %v", reqID, err)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "failed to mark row deleted", "details": err.Error()})
	}

	s.Local.ResolveDeleteRequest(reqID, models.DeleteReqApproved)
	admin, _ := c.Locals("subject").(string)
	log.Printf("✅ [ADMIN] %s approved deletion of %q (team %s)", admin, req.Name, req.TeamID)
	return c.JSON(fiber.Map{"message": "deletion approved", "req_id": reqID})
}

// RejectDelete denies a pending deletion and restores the row to Active.
func (s *AdminService) RejectDelete(c *fiber.Ctx) error {
	reqID := c.Params("req_id")
	req, ok := s.findDeleteRequest(reqID)
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "delete request not found"})
	}
	if req.Status != models.DeleteReqPending {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "delete request already " + req.Status})
	}

	key := gateway.MatchKey{ID: req.RowID}
	if key.ID == "" {
		key.TeamID = req.TeamID
		key.Timestamp = req.Timestamp
	}
	if _, err := s.GW.UpdateParticipantStatus(c.Context(), key, models.StatusActive); err != nil {
		log.Printf("❌ [ADMIN] Reject delete %s failed: %v", reqID, err)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "failed to restore row", "details": err.Error()})
	}

	s.Local.ResolveDeleteRequest(reqID, models.DeleteReqRejected)
	admin, _ := c.Locals("subject").(string)
	log.Printf("✅ [ADMIN] %s rejected deletion of %q (team %s)", admin, req.Name, req.TeamID)
	return c.JSON(fiber.Map{"message": "deletion rejected", "req_id": reqID})
}

// DownloadPhoto serves one participant's photo as a proper image file,
// decoded from the inline data URL the rows carry.
func (s *AdminService) DownloadPhoto(c *fiber.Ctx) error {
	id := c.Params("id")
	rows, err := s.GW.FetchAllParticipants(c.Context())
	if err != nil {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "failed to fetch participants", "details": err.Error()})
	}

	var target *models.Participant
	for i := range rows {
		if rows[i].ID == id {
			target = &rows[i]
			break
		}
	}
	if target == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "participant not found"})
	}
	if target.PhotoBase64 == "" {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "participant has no photo"})
	}

	mime, raw, err := decodeDataURL(target.PhotoBase64)
	if err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "stored photo is not a valid data URL"})
	}
	ext := ".jpg"
	if mime == "image/png" {
		ext = ".png"
	}
	filename := slug.Make(target.TeamID+"-"+target.Name) + ext

	c.Set("Content-Type", mime)
	c.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	return c.Send(raw)
}

func decodeDataURL(dataURL string) (mime string, raw []byte, err error) {
	rest, ok := strings.CutPrefix(dataURL, "data:")
	if !ok {
		return "", nil, fmt.Errorf("missing data: prefix")
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, fmt.Errorf("missing payload separator")
	}
	mime = strings.TrimSuffix(meta, ";base64")
	raw, err = base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("decode payload: %w", err)
	}
	return mime, raw, nil
}
