package memory

import (
	"fmt"
	"os"

	"github.com/Domenick1991/slotbooking/internal/domain"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

type seedFile struct {
	Members []seedMember `yaml:"members"`
}

type seedMember struct {
	ID          string        `yaml:"id"`
	Username    string        `yaml:"username"`
	DisplayName string        `yaml:"display_name"`
	Role        string        `yaml:"role"`
	Calendar    *seedCalendar `yaml:"calendar"`
}

type seedCalendar struct {
	GoogleCalendarID string `yaml:"google_calendar_id"`
}

// LoadSeed reads members and their calendars from a yaml file. Nothing is
// stored unless the whole file is valid. It returns the number of members
// loaded.
func (s *Store) LoadSeed(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read seed file: %w", err)
	}
	var seed seedFile
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return 0, fmt.Errorf("parse seed file: %w", err)
	}

	members := make([]domain.Member, 0, len(seed.Members))
	var calendars []domain.Calendar
	for i, m := range seed.Members {
		id, err := uuid.Parse(m.ID)
		if err != nil || id == uuid.Nil {
			return 0, fmt.Errorf("seed member %d: invalid id %q", i, m.ID)
		}
		role := domain.Role(m.Role)
		if role != domain.RoleHost && role != domain.RoleGuest {
			return 0, fmt.Errorf("seed member %d: unknown role %q", i, m.Role)
		}
		members = append(members, domain.Member{ID: id, Username: m.Username, DisplayName: m.DisplayName, Role: role})
		if m.Calendar != nil {
			calendars = append(calendars, domain.Calendar{HostID: id, GoogleCalendarID: m.Calendar.GoogleCalendarID})
		}
	}

	for _, m := range members {
		s.PutMember(m)
	}
	for _, c := range calendars {
		s.PutCalendar(c)
	}
	return len(members), nil
}
