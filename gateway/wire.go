package gateway

import (
	"time"

	"meet-registration-portal/models"
)

// wireRow is the store's snake_case JSON shape. The rename between this and
// the canonical models.Participant happens here and nowhere else.
type wireRow struct {
	ID          string    `json:"id,omitempty"`
	TeamID      string    `json:"team_id"`
	Name        string    `json:"name"`
	Gender      string    `json:"gender"`
	Age         int       `json:"age"`
	Designation string    `json:"designation"`
	Phone       string    `json:"phone"`
	Blood       string    `json:"blood"`
	AgeClass    string    `json:"age_class"`
	VegNon      string    `json:"veg_non"`
	Sports      []string  `json:"sports"`
	PhotoBase64 string    `json:"photo_base64,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
	Status      string    `json:"status,omitempty"`
}

// wireChange is one change-feed frame as sent by the store server.
type wireChange struct {
	Kind string  `json:"kind"`
	Row  wireRow `json:"row"`
}

func toWire(p models.Participant) wireRow {
	status := string(p.Status)
	if status == "" {
		status = string(models.StatusActive)
	}
	ts := p.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	return wireRow{
		ID:          p.ID,
		TeamID:      p.TeamID,
		Name:        p.Name,
		Gender:      p.Gender,
		Age:         p.Age,
		Designation: p.Designation,
		Phone:       p.Phone,
		Blood:       p.Blood,
		AgeClass:    p.AgeClass,
		VegNon:      p.VegNon,
		Sports:      p.ChosenSports(),
		PhotoBase64: p.PhotoBase64,
		Timestamp:   ts,
		Status:      status,
	}
}

func fromWire(r wireRow) models.Participant {
	status := models.Status(r.Status)
	if status == "" {
		status = models.StatusActive
	}
	return models.Participant{
		ID:          r.ID,
		TeamID:      r.TeamID,
		Name:        r.Name,
		Gender:      r.Gender,
		Age:         r.Age,
		Designation: r.Designation,
		Phone:       r.Phone,
		Blood:       r.Blood,
		AgeClass:    r.AgeClass,
		VegNon:      r.VegNon,
		Sports:      r.Sports,
		PhotoBase64: r.PhotoBase64,
		Timestamp:   r.Timestamp,
		Status:      status,
	}
}

func toWireBatch(rows []models.Participant) []wireRow {
	out := make([]wireRow, len(rows))
	for i, p := range rows {
		out[i] = toWire(p)
	}
	return out
}

func fromWireBatch(rows []wireRow) []models.Participant {
	out := make([]models.Participant, len(rows))
	for i, r := range rows {
		out[i] = fromWire(r)
	}
	return out
}

func fromWireChange(c wireChange) models.ChangeEvent {
	return models.ChangeEvent{Kind: models.ChangeKind(c.Kind), Row: fromWire(c.Row)}
}
