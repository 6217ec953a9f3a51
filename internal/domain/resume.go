package domain

import "time"

// Resume is the per-(user, hackathon) skills profile used for matching.
// HardSkills and SoftSkills are free-text tag sets.
type Resume struct {
	ID              string
	UserID          string
	HackathonID     string
	Bio             string
	PersonalWebsite string
	GitHub          string
	HHru            string
	Telegram        string
	HardSkills      []string
	SoftSkills      []string
	CreatedAt       time.Time
}

// Project is a portfolio item attached to a resume.
type Project struct {
	ID          string
	ResumeID    string
	Name        string
	Description string
	CreatedAt   time.Time
}
