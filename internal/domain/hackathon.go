package domain

import "time"

// HackathonStatus enumerates lifecycle states for hackathons.
type HackathonStatus string

const (
	HackathonStatusNotStarted HackathonStatus = "NOT_STARTED"
	HackathonStatusStarted    HackathonStatus = "STARTED"
	HackathonStatusEnded      HackathonStatus = "ENDED"
)

// Hackathon is the organizer-owned event aggregate. Invited emails,
// participants and roles are loaded through the repository.
type Hackathon struct {
	ID              string
	CreatorID       string
	Name            string
	Description     string
	MinParticipants int
	MaxParticipants int
	Status          HackathonStatus
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Role is a named capacity within a hackathon that a participant picks
// at join time. Unique by (hackathon, name).
type Role struct {
	ID          string
	HackathonID string
	Name        string
}
