package domain

import "github.com/google/uuid"

type Role string

const (
	RoleHost  Role = "HOST"
	RoleGuest Role = "GUEST"
)

type Member struct {
	ID          uuid.UUID
	Username    string
	DisplayName string
	Role        Role
}

func (m Member) IsHost() bool {
	return m.Role == RoleHost
}

// Calendar is the host's linked calendar. GoogleCalendarID is empty when
// the host never connected Google Calendar.
type Calendar struct {
	HostID           uuid.UUID
	GoogleCalendarID string
}
