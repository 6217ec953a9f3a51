package dto

import (
	"time"

	"github.com/megazord/team-search/internal/domain"
)

// ProfileUpdateRequest payload for profile edits. Omitted fields stay
// unchanged.
type ProfileUpdateRequest struct {
	Username       *string `json:"username"`
	Age            *int    `json:"age"`
	City           *string `json:"city"`
	WorkExperience *int    `json:"work_experience"`
}

// LinkTelegramRequest payload for attaching a Telegram chat id.
type LinkTelegramRequest struct {
	TelegramID string `json:"telegram_id"`
}

// ProfileResponse is the serialized account view. The password hash
// never leaves the service.
type ProfileResponse struct {
	ID             string    `json:"id"`
	Email          string    `json:"email"`
	Username       string    `json:"username"`
	IsOrganizer    bool      `json:"is_organizer"`
	IsActive       bool      `json:"is_active"`
	Age            *int      `json:"age"`
	City           string    `json:"city"`
	WorkExperience *int      `json:"work_experience"`
	TelegramID     *string   `json:"telegram_id"`
	CreatedAt      time.Time `json:"created_at"`
}

// NewProfileResponse maps an account to its serialized view.
func NewProfileResponse(account domain.Account) ProfileResponse {
	return ProfileResponse{
		ID:             account.ID,
		Email:          account.Email,
		Username:       account.Username,
		IsOrganizer:    account.IsOrganizer,
		IsActive:       account.IsActive,
		Age:            account.Age,
		City:           account.City,
		WorkExperience: account.WorkExperience,
		TelegramID:     account.TelegramID,
		CreatedAt:      account.CreatedAt,
	}
}

// NewProfileResponses maps a slice of accounts.
func NewProfileResponses(accounts []domain.Account) []ProfileResponse {
	responses := make([]ProfileResponse, 0, len(accounts))
	for _, account := range accounts {
		responses = append(responses, NewProfileResponse(account))
	}
	return responses
}
