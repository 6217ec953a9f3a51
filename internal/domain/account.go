package domain

import "time"

// Account is the domain model for every person on the platform, both
// organizers and participants.
type Account struct {
	ID             string
	Email          string
	Username       string
	PasswordHash   string
	IsOrganizer    bool
	IsActive       bool
	Age            *int
	City           string
	WorkExperience *int
	TelegramID     *string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Email is a standalone invitee address. It exists independently of
// Account so organizers can invite people who have not registered yet.
type Email struct {
	ID      string
	Address string
}

// ConfirmationCode is the one-time numeric code mailed at signup.
// At most one live code exists per account; a new request upserts over
// the previous one.
type ConfirmationCode struct {
	AccountID string
	Code      string
	ExpiresAt time.Time
}
