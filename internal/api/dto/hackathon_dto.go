package dto

import (
	"time"

	"github.com/megazord/team-search/internal/domain"
)

// CreateHackathonRequest payload for hackathon creation.
type CreateHackathonRequest struct {
	Name            string   `json:"name"`
	Description     string   `json:"description"`
	MinParticipants int      `json:"min_participants"`
	MaxParticipants int      `json:"max_participants"`
	Roles           []string `json:"roles"`
	InviteEmails    []string `json:"invite_emails"`
}

// UpdateHackathonRequest payload for hackathon edits.
type UpdateHackathonRequest struct {
	Name            *string `json:"name"`
	Description     *string `json:"description"`
	MinParticipants *int    `json:"min_participants"`
	MaxParticipants *int    `json:"max_participants"`
}

// InviteRequest payload for inviting an email address.
type InviteRequest struct {
	Email string `json:"email"`
}

// RemoveParticipantRequest payload for kicking a participant.
type RemoveParticipantRequest struct {
	UserID string `json:"user_id"`
}

// JoinHackathonRequest payload for redeeming a hackathon invite token.
type JoinHackathonRequest struct {
	Token  string `json:"token"`
	RoleID string `json:"role_id"`
}

// HackathonResponse is the serialized hackathon view.
type HackathonResponse struct {
	ID              string    `json:"id"`
	CreatorID       string    `json:"creator_id"`
	Name            string    `json:"name"`
	Description     string    `json:"description"`
	MinParticipants int       `json:"min_participants"`
	MaxParticipants int       `json:"max_participants"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"created_at"`
}

// NewHackathonResponse maps a hackathon to its serialized view.
func NewHackathonResponse(hackathon domain.Hackathon) HackathonResponse {
	return HackathonResponse{
		ID:              hackathon.ID,
		CreatorID:       hackathon.CreatorID,
		Name:            hackathon.Name,
		Description:     hackathon.Description,
		MinParticipants: hackathon.MinParticipants,
		MaxParticipants: hackathon.MaxParticipants,
		Status:          string(hackathon.Status),
		CreatedAt:       hackathon.CreatedAt,
	}
}

// NewHackathonResponses maps a slice of hackathons.
func NewHackathonResponses(hackathons []domain.Hackathon) []HackathonResponse {
	responses := make([]HackathonResponse, 0, len(hackathons))
	for _, hackathon := range hackathons {
		responses = append(responses, NewHackathonResponse(hackathon))
	}
	return responses
}
