package rules

import (
	"meet-registration-portal/config"
)

// Rules evaluates eligibility, quotas and fees against an immutable catalog.
// It holds no mutable state; every method is a pure function of its inputs.
type Rules struct {
	cfg *config.Config
}

func New(cfg *config.Config) *Rules {
	return &Rules{cfg: cfg}
}

// Catalog exposes the underlying configuration for handlers that need the
// master lists (designations, blood types, sport names).
func (r *Rules) Catalog() *config.Config {
	return r.cfg
}

// AllowedAgeClasses returns the age classes a participant may register in,
// ordered from the open class upward. Veteran opens at 45 for men and 40 for
// women, senior veteran at 53 (men only). An unfilled age (0) qualifies for
// the open class only; an unknown gender qualifies for nothing.
func (r *Rules) AllowedAgeClasses(gender string, age int) []config.AgeClass {
	switch gender {
	case "Male":
		classes := r.cfg.AgeClasses.Male
		switch {
		case age >= 53:
			return classes[:3]
		case age >= 45:
			return classes[:2]
		default:
			return classes[:1]
		}
	case "Female":
		classes := r.cfg.AgeClasses.Female
		if age >= 40 {
			return classes[:2]
		}
		return classes[:1]
	}
	return nil
}

// ageClassAllowed reports whether id is a legal class for (gender, age).
func (r *Rules) ageClassAllowed(gender string, age int, id string) bool {
	for _, c := range r.AllowedAgeClasses(gender, age) {
		if c.ID == id {
			return true
		}
	}
	return false
}

// Per-class sport tables. Senior-veteran and women's-veteran classes are
// allow-lists over the master catalog; every other class is a deny-list.
// Mixed doubles is granted to women_vet and withheld from men_sr_vet — that
// asymmetry is configured deliberately, keep the tables explicit.
var (
	menOpenDisallowed = setOf("400 m walking", "800 m walking")

	menVetDisallowed = setOf(
		"800 m", "1500 m", "5000 m", "4x100 m relay", "Triple Jump",
		"400 m walking", "800 m walking", "Carrom (Singles)", "Carrom (Doubles)",
	)

	menSrVetAllowed = setOf(
		"800 m walking",
		"Table Tennis(Singles)", "Table Tennis(Doubles)",
		"Badminton (Singles)", "Badminton (Doubles)",
		"Quiz", "10k Marathon",
	)

	womenOpenDisallowed = setOf("Football", "Lawn Tennis")

	womenVetAllowed = setOf(
		"800 m walking", "Quiz", "10k Marathon",
		"Badminton (Mixed Doubles)", "Table Tennis (Mix Doubles)",
	)
)

// AllowedSports returns the sports open to (gender, ageClass), in master
// catalog order. A missing gender or an unrecognised class falls back to the
// full catalog, matching how the registration form behaves before those
// fields are filled in.
func (r *Rules) AllowedSports(gender, ageClass string) []string {
	all := r.cfg.Sports
	if gender == "" {
		return append([]string(nil), all...)
	}
	if gender == "Male" {
		switch ageClass {
		case "men_open":
			return exclude(all, menOpenDisallowed)
		case "men_vet":
			return exclude(all, menVetDisallowed)
		case "men_sr_vet":
			return include(all, menSrVetAllowed)
		}
		return append([]string(nil), all...)
	}
	switch ageClass {
	case "women_open":
		return exclude(all, womenOpenDisallowed)
	case "women_vet":
		return include(all, womenVetAllowed)
	}
	return append([]string(nil), all...)
}

func setOf(names ...string) map[string]bool {
	m := make(map[string]bool, len(names))
	for _, n := range names {
		m[n] = true
	}
	return m
}

func exclude(all []string, deny map[string]bool) []string {
	out := make([]string, 0, len(all))
	for _, s := range all {
		if !deny[s] {
			out = append(out, s)
		}
	}
	return out
}

func include(all []string, allow map[string]bool) []string {
	out := make([]string, 0, len(allow))
	for _, s := range all {
		if allow[s] {
			out = append(out, s)
		}
	}
	return out
}
