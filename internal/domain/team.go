package domain

import "time"

// Team belongs to one hackathon. The creator is always a member; a team
// that loses its last member is deleted.
type Team struct {
	ID          string
	HackathonID string
	CreatorID   string
	Name        string
	CreatedAt   time.Time
}

// Vacancy is an open position on a team, tagged with sought skill
// keywords.
type Vacancy struct {
	ID       string
	TeamID   string
	Name     string
	Keywords []string
}

// Apply is a pending application linking a candidate to a vacancy. It is
// deleted on accept or decline.
type Apply struct {
	ID          string
	TeamID      string
	VacancyID   string
	ApplicantID string
	CreatedAt   time.Time
}
