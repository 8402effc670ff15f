package storeserver

import (
	"time"
)

// ParticipantRow is the canonical participant record. JSON tags match the
// wire shape the portal's gateway speaks; the table is append-mostly, the
// only mutation ever applied is a status change.
type ParticipantRow struct {
	ID          string    `gorm:"primaryKey" json:"id"`
	TeamID      string    `gorm:"index" json:"team_id"`
	Name        string    `json:"name"`
	Gender      string    `json:"gender"`
	Age         int       `json:"age"`
	Designation string    `json:"designation"`
	Phone       string    `json:"phone"`
	Blood       string    `json:"blood"`
	AgeClass    string    `json:"age_class"`
	VegNon      string    `json:"veg_non"`
	Sports      []string  `gorm:"serializer:json" json:"sports"`
	PhotoBase64 string    `json:"photo_base64,omitempty"`
	Timestamp   time.Time `gorm:"index" json:"timestamp"`
	Status      string    `json:"status"`

	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

// ChangeFrame is one change-feed message pushed to subscribed sockets.
type ChangeFrame struct {
	Kind string         `json:"kind"`
	Row  ParticipantRow `json:"row"`
}
