package rules

import (
	"fmt"
	"strings"

	"meet-registration-portal/models"
)

// RejectError carries the human-readable reason a candidate failed
// validation. The message text is shown to team managers verbatim.
type RejectError struct {
	Message string
}

func (e *RejectError) Error() string { return e.Message }

func reject(format string, args ...any) error {
	return &RejectError{Message: fmt.Sprintf(format, args...)}
}

// Validate decides whether candidate may be registered given the rows the
// team already holds (submitted plus the other drafts in the same batch;
// Deleted rows are the caller's job to exclude). Checks run in a fixed order
// and stop at the first failure so the same bad input always produces the
// same message. Returns nil on accept, *RejectError on reject.
func (r *Rules) Validate(candidate models.Participant, existingForTeam []models.Participant) error {
	p := candidate

	if strings.TrimSpace(p.Name) == "" {
		return reject("Name required")
	}
	if p.Gender != "Male" && p.Gender != "Female" {
		return reject("Select gender (Male/Female)")
	}
	if p.Age == 0 {
		return reject("Age is required")
	}
	if p.Age < 12 || p.Age > 120 {
		return reject("Enter valid age (12-120)")
	}
	if strings.TrimSpace(p.Designation) == "" {
		return reject("Designation is required")
	}
	if strings.TrimSpace(p.Phone) == "" {
		return reject("Phone is required")
	}
	if !validPhone(p.Phone) {
		return reject("Enter a valid 10-digit phone number")
	}
	if strings.TrimSpace(p.Blood) == "" {
		return reject("Select blood type")
	}
	if !r.cfg.HasBloodType(p.Blood) {
		return reject("Invalid blood type selected")
	}
	if strings.TrimSpace(p.AgeClass) == "" {
		return reject("Select age class")
	}
	if !r.ageClassAllowed(p.Gender, p.Age, p.AgeClass) {
		return reject("Invalid age class for this participant's age/gender")
	}
	if p.VegNon != "Veg" && p.VegNon != "Non Veg" {
		return reject("Select Veg or Non Veg")
	}
	if strings.TrimSpace(p.PhotoBase64) == "" {
		return reject("Profile photo required (JPG/PNG ≤200KB)")
	}

	chosen := p.ChosenSports()
	if len(chosen) == 0 {
		return reject("Choose at least one sport")
	}
	if len(chosen) > 3 {
		return reject("Max 3 sports allowed")
	}

	allowed := setOf(r.AllowedSports(p.Gender, p.AgeClass)...)
	var invalid []string
	for _, s := range chosen {
		if !allowed[s] {
			invalid = append(invalid, s)
		}
	}
	if len(invalid) > 0 {
		return reject("Selected sport(s) not allowed for %s: %s",
			strings.ReplaceAll(p.AgeClass, "_", " "), strings.Join(invalid, ", "))
	}

	// Quotas are scoped to the candidate's age class within the team.
	var sameAgeClass []models.Participant
	for _, row := range existingForTeam {
		if row.AgeClass == p.AgeClass {
			sameAgeClass = append(sameAgeClass, row)
		}
	}

	has := func(sport string) bool {
		for _, s := range chosen {
			if s == sport {
				return true
			}
		}
		return false
	}
	countGender := func(sport, gender string) int {
		n := 0
		for _, row := range sameAgeClass {
			if row.Gender == gender && row.PlaysSport(sport) {
				n++
			}
		}
		return n
	}
	countAll := func(sport string) int {
		n := 0
		for _, row := range sameAgeClass {
			if row.PlaysSport(sport) {
				n++
			}
		}
		return n
	}

	gender := strings.ToLower(p.Gender)

	// Chess and Carrom singles: one player per gender per age class.
	if has("Chess") && countGender("Chess", p.Gender) >= 1 {
		return reject("Only one %s player allowed in Chess for this age class", gender)
	}
	if has("Carrom (Singles)") && countGender("Carrom (Singles)", p.Gender) >= 1 {
		return reject("Only one %s player allowed in Carrom (Singles) for this age class", gender)
	}

	// Badminton and table tennis singles: two per gender per age class.
	if has("Badminton (Singles)") && countGender("Badminton (Singles)", p.Gender) >= 2 {
		return reject("Only two %s badminton singles allowed for this age class", gender)
	}
	if has("Table Tennis(Singles)") && countGender("Table Tennis(Singles)", p.Gender) >= 2 {
		return reject("Only two %s table tennis singles allowed for this age class", gender)
	}

	// Doubles: two participants per age class, representing one pair.
	if has("Badminton (Doubles)") && countAll("Badminton (Doubles)") >= 2 {
		return reject("Badminton doubles team already filled for this age class (max 2 participants / one team)")
	}
	if has("Table Tennis(Doubles)") && countAll("Table Tennis(Doubles)") >= 2 {
		return reject("Table Tennis doubles team already filled for this age class (max 2 participants / one team)")
	}

	// Mixed doubles: composition must end up exactly one male + one female.
	if has("Badminton (Mixed Doubles)") {
		if err := r.checkMixed(p, sameAgeClass, allowed, "Badminton (Mixed Doubles)", "Badminton"); err != nil {
			return err
		}
	}
	if has("Table Tennis (Mix Doubles)") {
		if err := r.checkMixed(p, sameAgeClass, allowed, "Table Tennis (Mix Doubles)", "Table Tennis"); err != nil {
			return err
		}
	}

	return nil
}

func (r *Rules) checkMixed(p models.Participant, sameAgeClass []models.Participant, allowed map[string]bool, sport, label string) error {
	if !allowed[sport] {
		return reject("%s mixed doubles not allowed for this age class", label)
	}
	males, females := 0, 0
	for _, row := range sameAgeClass {
		if !row.PlaysSport(sport) {
			continue
		}
		if row.Gender == "Male" {
			males++
		} else if row.Gender == "Female" {
			females++
		}
	}
	if p.Gender == "Male" {
		if males >= 1 {
			return reject("Only one male allowed in %s mixed doubles for this age class", label)
		}
	} else {
		if females >= 1 {
			return reject("Only one female allowed in %s mixed doubles for this age class", label)
		}
	}
	if males+females >= 2 {
		return reject("%s mixed doubles team already filled for this age class", label)
	}
	return nil
}

// validPhone accepts any input whose digits form exactly a 10-digit number;
// separators and country-code punctuation are stripped first.
func validPhone(raw string) bool {
	digits := 0
	for _, c := range raw {
		if c >= '0' && c <= '9' {
			digits++
		}
	}
	return digits == 10
}
