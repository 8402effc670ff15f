package rules

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"meet-registration-portal/models"
)

func validCandidate(mutate ...func(*models.Participant)) models.Participant {
	p := models.Participant{
		TeamID:      "Chamba",
		Name:        "Ramesh Kumar",
		Gender:      "Male",
		Age:         30,
		Designation: "RFO",
		Phone:       "9876543210",
		Blood:       "B+",
		AgeClass:    "men_open",
		VegNon:      "Veg",
		Sports:      []string{"100 m", "", ""},
		PhotoBase64: "data:image/jpeg;base64,/9j/4AAQ",
		Timestamp:   time.Now(),
		Status:      models.StatusDraft,
	}
	for _, m := range mutate {
		m(&p)
	}
	return p
}

func rejectMessage(t *testing.T, err error) string {
	t.Helper()
	require.Error(t, err)
	var rej *RejectError
	require.ErrorAs(t, err, &rej)
	return rej.Message
}

func TestValidateAcceptsWellFormedCandidate(t *testing.T) {
	r := testRules()
	assert.NoError(t, r.Validate(validCandidate(), nil))
}

func TestValidateGateOrderAndMessages(t *testing.T) {
	r := testRules()

	cases := []struct {
		name   string
		mutate func(*models.Participant)
		want   string
	}{
		{"missing name", func(p *models.Participant) { p.Name = "  " }, "Name required"},
		{"bad gender", func(p *models.Participant) { p.Gender = "X" }, "Select gender (Male/Female)"},
		{"missing age", func(p *models.Participant) { p.Age = 0 }, "Age is required"},
		{"age too low", func(p *models.Participant) { p.Age = 11 }, "Enter valid age (12-120)"},
		{"age too high", func(p *models.Participant) { p.Age = 121 }, "Enter valid age (12-120)"},
		{"missing designation", func(p *models.Participant) { p.Designation = "" }, "Designation is required"},
		{"missing phone", func(p *models.Participant) { p.Phone = "" }, "Phone is required"},
		{"short phone", func(p *models.Participant) { p.Phone = "12345" }, "Enter a valid 10-digit phone number"},
		{"long phone", func(p *models.Participant) { p.Phone = "+91 98765 43210" }, "Enter a valid 10-digit phone number"},
		{"missing blood", func(p *models.Participant) { p.Blood = "" }, "Select blood type"},
		{"bad blood", func(p *models.Participant) { p.Blood = "C+" }, "Invalid blood type selected"},
		{"missing age class", func(p *models.Participant) { p.AgeClass = "" }, "Select age class"},
		{"wrong age class", func(p *models.Participant) { p.AgeClass = "men_vet" }, "Invalid age class for this participant's age/gender"},
		{"missing veg", func(p *models.Participant) { p.VegNon = "" }, "Select Veg or Non Veg"},
		{"missing photo", func(p *models.Participant) { p.PhotoBase64 = "" }, "Profile photo required (JPG/PNG ≤200KB)"},
		{"no sports", func(p *models.Participant) { p.Sports = []string{"", "", ""} }, "Choose at least one sport"},
		{"too many sports", func(p *models.Participant) {
			p.Sports = []string{"100 m", "200 m", "400 m", "800 m"}
		}, "Max 3 sports allowed"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := r.Validate(validCandidate(tc.mutate), nil)
			assert.Equal(t, tc.want, rejectMessage(t, err))
		})
	}
}

func TestValidateRejectsSportOutsideAgeClass(t *testing.T) {
	r := testRules()

	// 400 m walking is denied for men_open.
	p := validCandidate(func(p *models.Participant) {
		p.Sports = []string{"400 m walking", "", ""}
	})
	err := r.Validate(p, nil)
	assert.Equal(t,
		"Selected sport(s) not allowed for men open: 400 m walking",
		rejectMessage(t, err))
}

func TestValidatePhoneSeparatorsTolerated(t *testing.T) {
	r := testRules()
	p := validCandidate(func(p *models.Participant) { p.Phone = "98765-43210" })
	assert.NoError(t, r.Validate(p, nil))
}

func TestValidateIsIdempotent(t *testing.T) {
	r := testRules()
	existing := []models.Participant{
		validCandidate(func(p *models.Participant) { p.Sports = []string{"Chess"} }),
	}
	candidate := validCandidate(func(p *models.Participant) { p.Sports = []string{"Chess"} })

	first := r.Validate(candidate, existing)
	for i := 0; i < 5; i++ {
		again := r.Validate(candidate, existing)
		require.Equal(t, rejectMessage(t, first), rejectMessage(t, again))
	}
}

func existingWith(sport, gender, ageClass string, n int) []models.Participant {
	rows := make([]models.Participant, n)
	for i := range rows {
		rows[i] = validCandidate(func(p *models.Participant) {
			p.Name = fmt.Sprintf("Holder %d", i)
			p.Gender = gender
			p.AgeClass = ageClass
			p.Sports = []string{sport}
			p.Status = models.StatusActive
		})
	}
	return rows
}

func TestQuotaChessOnePerGenderPerAgeClass(t *testing.T) {
	r := testRules()
	candidate := validCandidate(func(p *models.Participant) { p.Sports = []string{"Chess"} })

	assert.NoError(t, r.Validate(candidate, nil))

	err := r.Validate(candidate, existingWith("Chess", "Male", "men_open", 1))
	assert.Equal(t, "Only one male player allowed in Chess for this age class", rejectMessage(t, err))

	// A female candidate still fits: the cell is per gender.
	female := validCandidate(func(p *models.Participant) {
		p.Gender = "Female"
		p.AgeClass = "women_open"
		p.Sports = []string{"Chess"}
	})
	assert.NoError(t, r.Validate(female, existingWith("Chess", "Male", "men_open", 1)))

	// A male holder in another age class does not consume this cell.
	assert.NoError(t, r.Validate(candidate, existingWith("Chess", "Male", "men_vet", 1)))
}

func TestQuotaSinglesTwoPerGenderPerAgeClass(t *testing.T) {
	r := testRules()

	for _, sport := range []string{"Badminton (Singles)", "Table Tennis(Singles)"} {
		candidate := validCandidate(func(p *models.Participant) { p.Sports = []string{sport} })
		assert.NoError(t, r.Validate(candidate, existingWith(sport, "Male", "men_open", 1)), sport)
		assert.Error(t, r.Validate(candidate, existingWith(sport, "Male", "men_open", 2)), sport)
	}
}

func TestQuotaDoublesTwoTotalPerAgeClass(t *testing.T) {
	r := testRules()
	sport := "Badminton (Doubles)"

	// Mixed genders in a doubles cell still count toward the same pair.
	existing := append(
		existingWith(sport, "Male", "men_open", 1),
		validCandidate(func(p *models.Participant) {
			p.Name = "Second"
			p.Gender = "Female"
			p.AgeClass = "men_open" // same cell on purpose: doubles counts all genders
			p.Sports = []string{sport}
		}))

	candidate := validCandidate(func(p *models.Participant) { p.Sports = []string{sport} })
	err := r.Validate(candidate, existing)
	assert.Equal(t,
		"Badminton doubles team already filled for this age class (max 2 participants / one team)",
		rejectMessage(t, err))
}

func TestQuotaFreedWhenHolderExcluded(t *testing.T) {
	r := testRules()
	candidate := validCandidate(func(p *models.Participant) { p.Sports = []string{"Chess"} })

	full := existingWith("Chess", "Male", "men_open", 1)
	require.Error(t, r.Validate(candidate, full))

	// The caller drops Deleted rows from the snapshot; the cell reopens.
	assert.NoError(t, r.Validate(candidate, nil))
}

func TestMixedDoublesComposition(t *testing.T) {
	r := testRules()
	sport := "Badminton (Mixed Doubles)"

	male := validCandidate(func(p *models.Participant) { p.Sports = []string{sport} })
	female := validCandidate(func(p *models.Participant) {
		p.Gender = "Female"
		p.AgeClass = "women_open"
		p.Sports = []string{sport}
	})

	assert.NoError(t, r.Validate(male, nil))
	assert.NoError(t, r.Validate(female, nil))

	// A second male is rejected even though total count is below two.
	oneMale := existingWith(sport, "Male", "men_open", 1)
	err := r.Validate(male, oneMale)
	assert.Equal(t, "Only one male allowed in Badminton mixed doubles for this age class", rejectMessage(t, err))

	oneFemale := existingWith(sport, "Female", "women_open", 1)
	err = r.Validate(female, oneFemale)
	assert.Equal(t, "Only one female allowed in Badminton mixed doubles for this age class", rejectMessage(t, err))
}

func TestMixedDoublesNotAllowedForSeniorVeterans(t *testing.T) {
	r := testRules()
	p := validCandidate(func(p *models.Participant) {
		p.Age = 60
		p.AgeClass = "men_sr_vet"
		p.Sports = []string{"Badminton (Mixed Doubles)"}
	})
	// The allow-list check fires first with the per-sport detail.
	err := r.Validate(p, nil)
	assert.Equal(t,
		"Selected sport(s) not allowed for men sr vet: Badminton (Mixed Doubles)",
		rejectMessage(t, err))
}
