package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"meet-registration-portal/config"
	"meet-registration-portal/gateway"
	"meet-registration-portal/models"
	"meet-registration-portal/recon"
	"meet-registration-portal/rules"
	"meet-registration-portal/store"
)

// stubGateway satisfies the gateway interface with canned responses; the
// handler tests here only exercise local draft state.
type stubGateway struct{}

type stubSub struct{}

func (stubSub) Unsubscribe() {}

func (stubGateway) FetchTeamParticipants(context.Context, string) ([]models.Participant, error) {
	return nil, nil
}
func (stubGateway) FetchAllParticipants(context.Context) ([]models.Participant, error) {
	return nil, nil
}
func (stubGateway) InsertParticipants(_ context.Context, rows []models.Participant) ([]models.Participant, error) {
	out := make([]models.Participant, len(rows))
	for i, r := range rows {
		r.ID = fmt.Sprintf("srv-%d", i+1)
		out[i] = r
	}
	return out, nil
}
func (stubGateway) UpdateParticipantStatus(_ context.Context, _ gateway.MatchKey, _ models.Status) (models.Participant, error) {
	return models.Participant{}, nil
}
func (stubGateway) SubscribeToTeamChanges(context.Context, string, func(models.ChangeEvent)) (gateway.Subscription, error) {
	return stubSub{}, nil
}
func (stubGateway) SubscribeToAllChanges(context.Context, func(models.ChangeEvent)) (gateway.Subscription, error) {
	return stubSub{}, nil
}

func testTeamApp(t *testing.T) (*fiber.App, *store.Store) {
	t.Helper()
	local, err := store.Open(t.TempDir())
	require.NoError(t, err)

	cfg := config.Default()
	r := rules.New(cfg)
	registry := recon.NewRegistry(stubGateway{}, local, r)
	svc := NewTeamService(cfg, r, registry, local)

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("role", "team")
		c.Locals("team_id", "Chamba")
		return c.Next()
	})
	app.Post("/team/drafts", svc.GenerateSlots)
	app.Patch("/team/drafts/:index", svc.UpdateDraft)
	app.Delete("/team/drafts/:index", svc.RemoveDraft)
	app.Post("/team/drafts/:index/photo", svc.UploadPhoto)
	app.Get("/team/registration", svc.GetRegistration)
	return app, local
}

func jsonReq(method, path string, body any) *http.Request {
	raw, _ := json.Marshal(body)
	req := httptest.NewRequest(method, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestGenerateSlotsClampsToTeamSize(t *testing.T) {
	app, local := testTeamApp(t)

	resp, err := app.Test(jsonReq(http.MethodPost, "/team/drafts", fiber.Map{"count": 100}), -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out struct {
		Added   int  `json:"added"`
		Clamped bool `json:"clamped"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, 80, out.Added)
	assert.True(t, out.Clamped)
	assert.Len(t, local.LoadDrafts("Chamba"), 80)

	// Full team: no more slots.
	resp, err = app.Test(jsonReq(http.MethodPost, "/team/drafts", fiber.Map{"count": 1}), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestUpdateDraftResetsClassWhenDemographicsChange(t *testing.T) {
	app, local := testTeamApp(t)
	_, err := app.Test(jsonReq(http.MethodPost, "/team/drafts", fiber.Map{"count": 1}), -1)
	require.NoError(t, err)

	// Male, 50, veteran class with a veteran-legal sport.
	resp, err := app.Test(jsonReq(http.MethodPatch, "/team/drafts/0", fiber.Map{
		"gender":    "Male",
		"age":       50,
		"age_class": "men_vet",
		"sports":    []string{"100 m", "", ""},
	}), -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// Dropping the age below 45 invalidates men_vet: class and sports reset.
	resp, err = app.Test(jsonReq(http.MethodPatch, "/team/drafts/0", fiber.Map{"age": 30}), -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	d := local.LoadDrafts("Chamba")[0]
	assert.Empty(t, d.AgeClass)
	assert.Equal(t, []string{"", "", ""}, d.Sports)
}

func TestUpdateDraftFiltersSportsOnClassChange(t *testing.T) {
	app, local := testTeamApp(t)
	_, err := app.Test(jsonReq(http.MethodPost, "/team/drafts", fiber.Map{"count": 1}), -1)
	require.NoError(t, err)

	_, err = app.Test(jsonReq(http.MethodPatch, "/team/drafts/0", fiber.Map{
		"gender":    "Male",
		"age":       60,
		"age_class": "men_open",
		"sports":    []string{"1500 m", "Chess", ""},
	}), -1)
	require.NoError(t, err)

	// men_vet disallows 1500 m but keeps Chess.
	resp, err := app.Test(jsonReq(http.MethodPatch, "/team/drafts/0", fiber.Map{"age_class": "men_vet"}), -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	d := local.LoadDrafts("Chamba")[0]
	assert.Equal(t, []string{"", "Chess", ""}, d.Sports)
}

func TestRemoveDraft(t *testing.T) {
	app, local := testTeamApp(t)
	_, err := app.Test(jsonReq(http.MethodPost, "/team/drafts", fiber.Map{"count": 2}), -1)
	require.NoError(t, err)

	resp, err := app.Test(httptest.NewRequest(http.MethodDelete, "/team/drafts/0", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, local.LoadDrafts("Chamba"), 1)

	resp, err = app.Test(httptest.NewRequest(http.MethodDelete, "/team/drafts/5", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func photoRequest(t *testing.T, path, filename string, payload []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("photo", filename)
	require.NoError(t, err)
	_, err = part.Write(payload)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func TestUploadPhotoValidation(t *testing.T) {
	app, local := testTeamApp(t)
	_, err := app.Test(jsonReq(http.MethodPost, "/team/drafts", fiber.Map{"count": 1}), -1)
	require.NoError(t, err)

	// Wrong extension rejected.
	resp, err := app.Test(photoRequest(t, "/team/drafts/0/photo", "photo.gif", []byte("gifgif")), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Oversized payload rejected.
	resp, err = app.Test(photoRequest(t, "/team/drafts/0/photo", "photo.jpg", bytes.Repeat([]byte("x"), 201*1024)), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Valid PNG lands as a data URL on the draft.
	resp, err = app.Test(photoRequest(t, "/team/drafts/0/photo", "photo.png", []byte("pngbytes")), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	d := local.LoadDrafts("Chamba")[0]
	assert.True(t, strings.HasPrefix(d.PhotoBase64, "data:image/png;base64,"))
}
