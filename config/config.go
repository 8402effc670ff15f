package config

import (
	"fmt"
	"log"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the immutable catalog the whole portal runs on: team roster,
// admin accounts, the sport master list and the fee table. It is loaded once
// at startup and passed explicitly to the rules engine and services; nothing
// mutates it afterwards.
type Config struct {
	Teams  []TeamAccount  `yaml:"teams"`
	Admins []AdminAccount `yaml:"admins"`

	Sports       []string `yaml:"sports"`
	Designations []string `yaml:"designations"`
	BloodTypes   []string `yaml:"blood_types"`

	AgeClasses AgeClassMaster `yaml:"age_classes"`

	Fees FeeTable `yaml:"fees"`

	// MaxTeamSize caps draft slots + active submitted rows per team.
	MaxTeamSize int `yaml:"max_team_size"`
}

type TeamAccount struct {
	TeamID   string `yaml:"team_id"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	// ReducedFee teams pay the lower base fee (historically Solan and Bilaspur).
	ReducedFee bool `yaml:"reduced_fee"`
}

type AdminAccount struct {
	Role     string `yaml:"role"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// AgeClass is one competition bucket (id is the stable key stored on rows,
// label is what the UI shows).
type AgeClass struct {
	ID    string `yaml:"id"`
	Label string `yaml:"label"`
}

type AgeClassMaster struct {
	Male   []AgeClass `yaml:"male"`
	Female []AgeClass `yaml:"female"`
}

type FeeTable struct {
	BaseFee        int64 `yaml:"base_fee"`
	ReducedBaseFee int64 `yaml:"reduced_base_fee"`
	FreePlayers    int   `yaml:"free_players"`
	ExtraPerPlayer int64 `yaml:"extra_per_player"`
}

// Load reads the catalog from path, or returns the embedded defaults when
// path is empty. A file that exists but fails to parse is a hard error —
// running with half a catalog would silently break validation.
func Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("parse catalog %s: %w", path, err)
	}
	log.Printf("✅ Catalog loaded from %s (%d teams, %d sports)", path, len(cfg.Teams), len(cfg.Sports))
	return cfg, nil
}

// FindTeam returns the account for teamID, if registered.
func (c *Config) FindTeam(teamID string) (TeamAccount, bool) {
	for _, t := range c.Teams {
		if t.TeamID == teamID {
			return t, true
		}
	}
	return TeamAccount{}, false
}

// AuthenticateTeam matches username/password against the team roster.
func (c *Config) AuthenticateTeam(username, password string) (TeamAccount, bool) {
	for _, t := range c.Teams {
		if t.Username == username && t.Password == password {
			return t, true
		}
	}
	return TeamAccount{}, false
}

// AuthenticateAdmin matches username/password against the admin accounts.
func (c *Config) AuthenticateAdmin(username, password string) (AdminAccount, bool) {
	for _, a := range c.Admins {
		if a.Username == username && a.Password == password {
			return a, true
		}
	}
	return AdminAccount{}, false
}

// HasSport reports whether name is in the master catalog.
func (c *Config) HasSport(name string) bool {
	for _, s := range c.Sports {
		if s == name {
			return true
		}
	}
	return false
}

// HasBloodType reports whether b is a recognised blood type.
func (c *Config) HasBloodType(b string) bool {
	for _, t := range c.BloodTypes {
		if t == b {
			return true
		}
	}
	return false
}
