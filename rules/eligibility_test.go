package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"meet-registration-portal/config"
)

func testRules() *Rules {
	return New(config.Default())
}

func classIDs(classes []config.AgeClass) []string {
	ids := make([]string, len(classes))
	for i, c := range classes {
		ids[i] = c.ID
	}
	return ids
}

func TestAllowedAgeClassesMaleThresholds(t *testing.T) {
	r := testRules()

	assert.Equal(t, []string{"men_open"}, classIDs(r.AllowedAgeClasses("Male", 44)))
	assert.Equal(t, []string{"men_open", "men_vet"}, classIDs(r.AllowedAgeClasses("Male", 45)))
	assert.Equal(t, []string{"men_open", "men_vet"}, classIDs(r.AllowedAgeClasses("Male", 52)))
	assert.Equal(t, []string{"men_open", "men_vet", "men_sr_vet"}, classIDs(r.AllowedAgeClasses("Male", 53)))
	assert.Equal(t, []string{"men_open", "men_vet", "men_sr_vet"}, classIDs(r.AllowedAgeClasses("Male", 90)))
}

func TestAllowedAgeClassesFemaleThresholds(t *testing.T) {
	r := testRules()

	assert.Equal(t, []string{"women_open"}, classIDs(r.AllowedAgeClasses("Female", 39)))
	assert.Equal(t, []string{"women_open", "women_vet"}, classIDs(r.AllowedAgeClasses("Female", 40)))
}

func TestAllowedAgeClassesGrowMonotonically(t *testing.T) {
	r := testRules()

	// Crossing an age threshold must never remove a class.
	for _, gender := range []string{"Male", "Female"} {
		prev := 0
		for age := 12; age <= 120; age++ {
			n := len(r.AllowedAgeClasses(gender, age))
			assert.GreaterOrEqual(t, n, prev, "gender=%s age=%d", gender, age)
			prev = n
		}
	}
}

func TestAllowedAgeClassesEdgeInputs(t *testing.T) {
	r := testRules()

	assert.Empty(t, r.AllowedAgeClasses("", 30))
	assert.Empty(t, r.AllowedAgeClasses("Other", 30))
	// Unfilled age qualifies for the open class only.
	assert.Equal(t, []string{"men_open"}, classIDs(r.AllowedAgeClasses("Male", 0)))
	assert.Equal(t, []string{"women_open"}, classIDs(r.AllowedAgeClasses("Female", 0)))
}

func TestAllowedSportsDenyLists(t *testing.T) {
	r := testRules()

	menOpen := r.AllowedSports("Male", "men_open")
	assert.NotContains(t, menOpen, "400 m walking")
	assert.NotContains(t, menOpen, "800 m walking")
	assert.Contains(t, menOpen, "Chess")
	assert.Contains(t, menOpen, "Badminton (Mixed Doubles)")

	menVet := r.AllowedSports("Male", "men_vet")
	assert.NotContains(t, menVet, "Carrom (Singles)")
	assert.NotContains(t, menVet, "5000 m")
	assert.Contains(t, menVet, "Chess")

	womenOpen := r.AllowedSports("Female", "women_open")
	assert.NotContains(t, womenOpen, "Football")
	assert.NotContains(t, womenOpen, "Lawn Tennis")
	assert.Contains(t, womenOpen, "Table Tennis (Mix Doubles)")
}

func TestAllowedSportsMixedDoublesAsymmetry(t *testing.T) {
	r := testRules()

	// Women's veteran class gets mixed doubles, men's senior veteran does
	// not. This is intentional configuration, not a derived rule.
	womenVet := r.AllowedSports("Female", "women_vet")
	assert.Contains(t, womenVet, "Badminton (Mixed Doubles)")
	assert.Contains(t, womenVet, "Table Tennis (Mix Doubles)")

	menSrVet := r.AllowedSports("Male", "men_sr_vet")
	assert.NotContains(t, menSrVet, "Badminton (Mixed Doubles)")
	assert.NotContains(t, menSrVet, "Table Tennis (Mix Doubles)")
	assert.ElementsMatch(t, []string{
		"800 m walking",
		"Table Tennis(Singles)", "Table Tennis(Doubles)",
		"Badminton (Singles)", "Badminton (Doubles)",
		"Quiz", "10k Marathon",
	}, menSrVet)
}

func TestAllowedSportsFallsBackToCatalog(t *testing.T) {
	r := testRules()

	require.Equal(t, r.Catalog().Sports, r.AllowedSports("", ""))
	assert.Equal(t, r.Catalog().Sports, r.AllowedSports("Male", ""))
}
