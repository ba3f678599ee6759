package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Profile describes the agency the assistant speaks for.
type Profile struct {
	Name        string      `yaml:"name"`
	Services    []string    `yaml:"services"`
	Timezone    string      `yaml:"timezone"`
	OfficeHours OfficeHours `yaml:"office_hours"`
	Contact     Contact     `yaml:"contact"`
}

// OfficeHours is a single daily opening window applied to the listed weekdays.
// Weekdays use time.Weekday numbering (0 = Sunday).
type OfficeHours struct {
	Open     int   `yaml:"open"`
	Close    int   `yaml:"close"`
	Weekdays []int `yaml:"weekdays"`
}

type Contact struct {
	Address string `yaml:"address"`
	Email   string `yaml:"email"`
	Phone   string `yaml:"phone"`
}

// DefaultProfile is used when no profile file is configured.
func DefaultProfile() *Profile {
	return &Profile{
		Name:     "Inmobiliaria",
		Services: []string{"Venta", "Alquiler", "Asesoramiento"},
		Timezone: "America/Montevideo",
		OfficeHours: OfficeHours{
			Open:     9,
			Close:    20,
			Weekdays: []int{1, 2, 3, 4, 5, 6},
		},
		Contact: Contact{
			Address: "[Dirección]",
			Email:   "[Email]",
		},
	}
}

// LoadProfile reads a YAML profile, filling unset fields from DefaultProfile.
// An empty path returns the defaults.
func LoadProfile(path string) (*Profile, error) {
	profile := DefaultProfile()
	if path == "" {
		return profile, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read profile: %w", err)
	}

	var loaded Profile
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		return nil, fmt.Errorf("failed to parse profile: %w", err)
	}

	if loaded.Name != "" {
		profile.Name = loaded.Name
	}
	if len(loaded.Services) > 0 {
		profile.Services = loaded.Services
	}
	if loaded.Timezone != "" {
		if _, err := time.LoadLocation(loaded.Timezone); err != nil {
			return nil, fmt.Errorf("invalid timezone %q: %w", loaded.Timezone, err)
		}
		profile.Timezone = loaded.Timezone
	}
	if loaded.OfficeHours.Close > loaded.OfficeHours.Open {
		profile.OfficeHours.Open = loaded.OfficeHours.Open
		profile.OfficeHours.Close = loaded.OfficeHours.Close
	}
	if len(loaded.OfficeHours.Weekdays) > 0 {
		profile.OfficeHours.Weekdays = loaded.OfficeHours.Weekdays
	}
	if loaded.Contact != (Contact{}) {
		profile.Contact = loaded.Contact
	}

	return profile, nil
}

// Location returns the profile timezone, UTC if it cannot be loaded.
func (p *Profile) Location() *time.Location {
	loc, err := time.LoadLocation(p.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// InOfficeHours reports whether t falls inside the opening window.
func (p *Profile) InOfficeHours(t time.Time) bool {
	local := t.In(p.Location())
	open := false
	for _, d := range p.OfficeHours.Weekdays {
		if time.Weekday(d) == local.Weekday() {
			open = true
			break
		}
	}
	return open && local.Hour() >= p.OfficeHours.Open && local.Hour() < p.OfficeHours.Close
}

// HoursLine renders the opening window, e.g. "Lunes a Sábado 9:00-20:00".
func (p *Profile) HoursLine() string {
	return fmt.Sprintf("%s %d:00-%d:00", weekdayRange(p.OfficeHours.Weekdays), p.OfficeHours.Open, p.OfficeHours.Close)
}

// BusinessInfo is the identity block embedded in the generation prompt.
func (p *Profile) BusinessInfo() string {
	var b strings.Builder
	b.WriteString(strings.ToUpper(p.Name))
	b.WriteString(":\n")
	b.WriteString("Horario: " + p.HoursLine() + "\n")
	b.WriteString("Servicios: " + strings.Join(p.Services, ", ") + "\n")
	return b.String()
}

var weekdayNames = []string{"Domingo", "Lunes", "Martes", "Miércoles", "Jueves", "Viernes", "Sábado"}

func weekdayRange(days []int) string {
	if len(days) == 0 {
		return ""
	}
	contiguous := true
	for i := 1; i < len(days); i++ {
		if days[i] != days[i-1]+1 {
			contiguous = false
			break
		}
	}
	valid := func(d int) bool { return d >= 0 && d < len(weekdayNames) }
	if contiguous && len(days) > 2 && valid(days[0]) && valid(days[len(days)-1]) {
		return weekdayNames[days[0]] + " a " + weekdayNames[days[len(days)-1]]
	}

	names := make([]string, 0, len(days))
	for _, d := range days {
		if valid(d) {
			names = append(names, weekdayNames[d])
		}
	}
	return strings.Join(names, ", ")
}
