package models

import (
	"time"
)

// Participant is the single canonical in-memory shape for a registration row.
// The gateway maps it to and from the store's snake_case wire row at the
// boundary; everything else in the portal works with this struct only.
type Participant struct {
	// ID is assigned by the canonical store on first successful insert.
	// Empty for drafts and for rows still sitting in the pending queue.
	ID     string `json:"id,omitempty"`
	TeamID string `json:"teamId"`

	Name        string `json:"name"`
	Gender      string `json:"gender"` // "Male" or "Female"
	Age         int    `json:"age"`    // 0 = not filled in yet
	Designation string `json:"designation"`
	Phone       string `json:"phone"`
	Blood       string `json:"blood"`
	AgeClass    string `json:"ageClass"` // age-class id, e.g. "men_vet"
	VegNon      string `json:"vegNon"`   // "Veg" or "Non Veg"

	// Sports holds up to three slots; draft rows keep empty strings for
	// unpicked slots, submitted rows carry only the chosen names.
	Sports []string `json:"sports"`

	PhotoBase64 string `json:"photoBase64,omitempty"`

	// Timestamp is the creation time and doubles as the matching key for
	// rows that have no server id yet.
	Timestamp time.Time `json:"timestamp"`

	Status Status `json:"status"`
}

// ChosenSports returns the non-empty sport slots.
func (p Participant) ChosenSports() []string {
	out := make([]string, 0, len(p.Sports))
	for _, s := range p.Sports {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

// PlaysSport reports whether sport is among the participant's chosen sports.
func (p Participant) PlaysSport(sport string) bool {
	for _, s := range p.Sports {
		if s == sport {
			return true
		}
	}
	return false
}

// SameRow reports whether a and b refer to the same registration: matching
// server ids, or failing that, equal creation timestamps. The timestamp
// match applies even when both rows carry ids — a cached row can hold a
// different id than the canonical copy of the same registration, and the
// shared creation instant is what identifies them as one row.
func SameRow(a, b Participant) bool {
	if a.ID != "" && a.ID == b.ID {
		return true
	}
	return !a.Timestamp.IsZero() && a.Timestamp.Equal(b.Timestamp)
}
