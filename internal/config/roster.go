package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"heli-training/logbook/internal/constants"
)

// User is an account allowed to log in.
type User struct {
	Username string         `yaml:"username" json:"username"`
	Password string         `yaml:"password" json:"-"`
	Name     string         `yaml:"name" json:"name"`
	Role     constants.Role `yaml:"role" json:"role"`
}

// Roster holds the school's people and course layout.
type Roster struct {
	Users                  []User                       `yaml:"users"`
	Instructors            []string                     `yaml:"instructors"`
	Students               []string                     `yaml:"students"`
	Modules                []constants.CurriculumModule `yaml:"modules"`
	HourGoals              constants.HourGoals          `yaml:"hour_goals"`
	SimulatorRegistrations []string                     `yaml:"simulator_registrations"`
}

// DefaultRoster returns the built-in roster with a single admin account.
func DefaultRoster() Roster {
	return Roster{
		Users: []User{
			{Username: "admin", Password: "admin", Name: "Administrador", Role: constants.RoleAdmin},
		},
		Instructors:            append([]string(nil), constants.Instructors...),
		Students:               append([]string(nil), constants.Students...),
		Modules:                append([]constants.CurriculumModule(nil), constants.DefaultCurriculum...),
		HourGoals:              constants.DefaultHourGoals,
		SimulatorRegistrations: append([]string(nil), constants.SimulatorRegistrations...),
	}
}

// LoadRoster reads a YAML roster file. Sections missing from the file keep
// their defaults. An empty path returns DefaultRoster.
func LoadRoster(path string) (Roster, error) {
	roster := DefaultRoster()
	if path == "" {
		return roster, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Roster{}, fmt.Errorf("failed to read roster file: %w", err)
	}
	return ParseRoster(data)
}

// ParseRoster decodes YAML roster content over the defaults.
func ParseRoster(data []byte) (Roster, error) {
	var fromFile Roster
	if err := yaml.Unmarshal(data, &fromFile); err != nil {
		return Roster{}, fmt.Errorf("failed to unmarshal roster: %w", err)
	}

	roster := DefaultRoster()
	if len(fromFile.Users) > 0 {
		roster.Users = fromFile.Users
	}
	if len(fromFile.Instructors) > 0 {
		roster.Instructors = fromFile.Instructors
	}
	if len(fromFile.Students) > 0 {
		roster.Students = fromFile.Students
	}
	if len(fromFile.Modules) > 0 {
		roster.Modules = fromFile.Modules
	}
	if fromFile.HourGoals != (constants.HourGoals{}) {
		roster.HourGoals = fromFile.HourGoals
	}
	if len(fromFile.SimulatorRegistrations) > 0 {
		roster.SimulatorRegistrations = fromFile.SimulatorRegistrations
	}

	for i, u := range roster.Users {
		if u.Username == "" {
			return Roster{}, fmt.Errorf("roster user %d has no username", i)
		}
		switch u.Role {
		case constants.RoleAdmin, constants.RoleInstructor, constants.RoleStudent:
		default:
			return Roster{}, fmt.Errorf("roster user %q has unknown role %q", u.Username, u.Role)
		}
	}
	for _, m := range roster.Modules {
		if m.Code == "" || m.Required <= 0 {
			return Roster{}, fmt.Errorf("curriculum module %q needs a code and a positive session count", m.Code)
		}
	}
	return roster, nil
}

// FindUser looks a username up case-insensitively.
func (r Roster) FindUser(username string) (User, bool) {
	username = strings.TrimSpace(username)
	for _, u := range r.Users {
		if strings.EqualFold(u.Username, username) {
			return u, true
		}
	}
	return User{}, false
}

// IsSimulatorRegistration reports whether flights on this registration always log as simulator time.
func (r Roster) IsSimulatorRegistration(registration string) bool {
	registration = strings.TrimSpace(registration)
	for _, sim := range r.SimulatorRegistrations {
		if strings.EqualFold(sim, registration) {
			return true
		}
	}
	return false
}
