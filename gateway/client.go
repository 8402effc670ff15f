package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"meet-registration-portal/models"
)

// MatchKey identifies a row for a status update: by server id when known,
// otherwise by team + creation timestamp.
type MatchKey struct {
	ID        string    `json:"id,omitempty"`
	TeamID    string    `json:"team_id,omitempty"`
	Timestamp time.Time `json:"timestamp,omitempty"`
}

// Subscription is a live change-feed attachment.
type Subscription interface {
	Unsubscribe()
}

// Client is the Data Access Gateway: everything the portal needs from the
// canonical store.
type Client interface {
	FetchTeamParticipants(ctx context.Context, teamID string) ([]models.Participant, error)
	FetchAllParticipants(ctx context.Context) ([]models.Participant, error)
	InsertParticipants(ctx context.Context, rows []models.Participant) ([]models.Participant, error)
	UpdateParticipantStatus(ctx context.Context, key MatchKey, status models.Status) (models.Participant, error)
	SubscribeToTeamChanges(ctx context.Context, teamID string, onChange func(models.ChangeEvent)) (Subscription, error)
	SubscribeToAllChanges(ctx context.Context, onChange func(models.ChangeEvent)) (Subscription, error)
}

// RESTClient talks to the store server (directly or through the proxy) over
// its JSON API.
type RESTClient struct {
	baseURL      string
	serviceToken string
	httpClient   *http.Client
}

func NewRESTClient(baseURL, serviceToken string) *RESTClient {
	return &RESTClient{
		baseURL:      baseURL,
		serviceToken: serviceToken,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (c *RESTClient) endpoint(path string, query url.Values) (string, error) {
	base, err := url.Parse(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid store base URL '%s': %w", c.baseURL, err)
	}
	u := base.JoinPath(path)
	if query != nil {
		u.RawQuery = query.Encode()
	}
	return u.String(), nil
}

// do runs one request and decodes the JSON response into out (when out is
// non-nil). Non-2xx responses become a *RemoteError with a bounded body.
func (c *RESTClient) do(ctx context.Context, method, rawURL string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, reader)
	if err != nil {
		return fmt.Errorf("create request to %s: %w", rawURL, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Service-Token", c.serviceToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("store request failed: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return &RemoteError{Status: resp.StatusCode, Body: string(raw)}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode store response: %w", err)
	}
	return nil
}

// FetchTeamParticipants returns the team's canonical rows, newest first.
func (c *RESTClient) FetchTeamParticipants(ctx context.Context, teamID string) ([]models.Participant, error) {
	u, err := c.endpoint("/participants", url.Values{"team_id": {teamID}})
	if err != nil {
		return nil, err
	}
	var rows []wireRow
	if err := c.do(ctx, http.MethodGet, u, nil, &rows); err != nil {
		return nil, err
	}
	return fromWireBatch(rows), nil
}

// FetchAllParticipants returns every canonical row (admin view).
func (c *RESTClient) FetchAllParticipants(ctx context.Context) ([]models.Participant, error) {
	u, err := c.endpoint("/participants", nil)
	if err != nil {
		return nil, err
	}
	var rows []wireRow
	if err := c.do(ctx, http.MethodGet, u, nil, &rows); err != nil {
		return nil, err
	}
	return fromWireBatch(rows), nil
}

// InsertParticipants appends a batch and returns the rows with their
// server-assigned ids.
func (c *RESTClient) InsertParticipants(ctx context.Context, rows []models.Participant) ([]models.Participant, error) {
	u, err := c.endpoint("/participants", nil)
	if err != nil {
		return nil, err
	}
	var inserted []wireRow
	if err := c.do(ctx, http.MethodPost, u, toWireBatch(rows), &inserted); err != nil {
		return nil, err
	}
	return fromWireBatch(inserted), nil
}

type statusUpdateRequest struct {
	ID        string     `json:"id,omitempty"`
	TeamID    string     `json:"team_id,omitempty"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
	Status    string     `json:"status"`
}

// UpdateParticipantStatus changes one row's status, matching by id or by
// teamId + timestamp.
func (c *RESTClient) UpdateParticipantStatus(ctx context.Context, key MatchKey, status models.Status) (models.Participant, error) {
	u, err := c.endpoint("/participants/status", nil)
	if err != nil {
		return models.Participant{}, err
	}
	req := statusUpdateRequest{ID: key.ID, TeamID: key.TeamID, Status: string(status)}
	if !key.Timestamp.IsZero() {
		ts := key.Timestamp
		req.Timestamp = &ts
	}
	var row wireRow
	if err := c.do(ctx, http.MethodPatch, u, req, &row); err != nil {
		return models.Participant{}, err
	}
	return fromWire(row), nil
}
