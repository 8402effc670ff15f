package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"meet-registration-portal/models"
)

func TestWireMappingRoundTrip(t *testing.T) {
	ts := time.Date(2025, 11, 3, 9, 30, 0, 0, time.UTC)
	p := models.Participant{
		ID:          "41",
		TeamID:      "Chamba",
		Name:        "Ramesh Kumar",
		Gender:      "Male",
		Age:         47,
		Designation: "RFO",
		Phone:       "9876543210",
		Blood:       "B+",
		AgeClass:    "men_vet",
		VegNon:      "Veg",
		Sports:      []string{"Chess", "", ""},
		PhotoBase64: "data:image/png;base64,abc",
		Timestamp:   ts,
		Status:      models.StatusActive,
	}

	w := toWire(p)
	assert.Equal(t, "Chamba", w.TeamID)
	assert.Equal(t, "men_vet", w.AgeClass)
	// Empty sport slots never cross the wire.
	assert.Equal(t, []string{"Chess"}, w.Sports)

	back := fromWire(w)
	assert.Equal(t, p.ID, back.ID)
	assert.Equal(t, p.AgeClass, back.AgeClass)
	assert.True(t, back.Timestamp.Equal(ts))
	assert.Equal(t, models.StatusActive, back.Status)
}

func TestWireMappingDefaults(t *testing.T) {
	// A draft being inserted becomes Active with a stamped timestamp.
	w := toWire(models.Participant{TeamID: "Solan"})
	assert.Equal(t, string(models.StatusActive), w.Status)
	assert.False(t, w.Timestamp.IsZero())

	// A row arriving without a status is treated as Active.
	back := fromWire(wireRow{TeamID: "Solan"})
	assert.Equal(t, models.StatusActive, back.Status)
}

func TestFetchTeamParticipants(t *testing.T) {
	var gotPath, gotToken, gotTeam string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotToken = r.Header.Get("X-Service-Token")
		gotTeam = r.URL.Query().Get("team_id")
		_ = json.NewEncoder(w).Encode([]wireRow{
			{ID: "2", TeamID: "Chamba", Name: "B", Status: "Active", Timestamp: time.Now().UTC()},
			{ID: "1", TeamID: "Chamba", Name: "A", Status: "Requested", Timestamp: time.Now().UTC()},
		})
	}))
	defer srv.Close()

	c := NewRESTClient(srv.URL, "secret")
	rows, err := c.FetchTeamParticipants(context.Background(), "Chamba")
	require.NoError(t, err)

	assert.Equal(t, "/participants", gotPath)
	assert.Equal(t, "secret", gotToken)
	assert.Equal(t, "Chamba", gotTeam)
	require.Len(t, rows, 2)
	assert.Equal(t, models.StatusRequested, rows[1].Status)
}

func TestInsertParticipantsReturnsServerIDs(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		var in []wireRow
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		for i := range in {
			in[i].ID = "srv-1"
		}
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(in)
	}))
	defer srv.Close()

	c := NewRESTClient(srv.URL, "secret")
	out, err := c.InsertParticipants(context.Background(), []models.Participant{{TeamID: "Kullu", Name: "N"}})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "srv-1", out[0].ID)
}

func TestRemoteErrorClassification(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "duplicate key", http.StatusConflict)
	}))
	defer srv.Close()

	c := NewRESTClient(srv.URL, "secret")
	_, err := c.InsertParticipants(context.Background(), []models.Participant{{}})
	require.Error(t, err)
	assert.True(t, IsPermanent(err))

	srv5xx := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "db down", http.StatusBadGateway)
	}))
	defer srv5xx.Close()

	c = NewRESTClient(srv5xx.URL, "secret")
	_, err = c.InsertParticipants(context.Background(), []models.Participant{{}})
	require.Error(t, err)
	assert.False(t, IsPermanent(err))

	// Plain network failure is transient too.
	c = NewRESTClient("http://127.0.0.1:1", "secret")
	_, err = c.FetchAllParticipants(context.Background())
	require.Error(t, err)
	assert.False(t, IsPermanent(err))
}

func TestUpdateParticipantStatusByTimestampKey(t *testing.T) {
	ts := time.Date(2025, 11, 3, 9, 30, 0, 0, time.UTC)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPatch, r.Method)
		var req statusUpdateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Empty(t, req.ID)
		assert.Equal(t, "Mandi", req.TeamID)
		require.NotNil(t, req.Timestamp)
		assert.True(t, req.Timestamp.Equal(ts))
		_ = json.NewEncoder(w).Encode(wireRow{ID: "9", TeamID: "Mandi", Status: req.Status, Timestamp: ts})
	}))
	defer srv.Close()

	c := NewRESTClient(srv.URL, "secret")
	row, err := c.UpdateParticipantStatus(context.Background(),
		MatchKey{TeamID: "Mandi", Timestamp: ts}, models.StatusRequested)
	require.NoError(t, err)
	assert.Equal(t, models.StatusRequested, row.Status)
	assert.Equal(t, "9", row.ID)
}
