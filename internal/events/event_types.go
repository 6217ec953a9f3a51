package events

import (
	"time"

	"github.com/megazord/team-search/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventHackathonStarted         EventType = "hackathon_started"
	EventHackathonEnded           EventType = "hackathon_ended"
	EventParticipantRemoved       EventType = "participant_removed"
	EventApplicationSubmitted     EventType = "application_submitted"
	EventApplicationAccepted      EventType = "application_accepted"
	EventTeamMemberJoined         EventType = "team_member_joined"
	EventTeamMemberLeft           EventType = "team_member_left"
	EventTeamOwnershipTransferred EventType = "team_ownership_transferred"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// Invitation pairs an invited address with its single-use join link.
type Invitation struct {
	Email    string `json:"email"`
	JoinLink string `json:"join_link"`
}

// HackathonStartedPayload payload.
type HackathonStartedPayload struct {
	Hackathon   domain.Hackathon `json:"hackathon"`
	Invitations []Invitation     `json:"invitations"`
}

// HackathonEndedPayload payload.
type HackathonEndedPayload struct {
	Hackathon    domain.Hackathon `json:"hackathon"`
	Participants []domain.Account `json:"participants"`
}

// ParticipantRemovedPayload payload.
type ParticipantRemovedPayload struct {
	Hackathon domain.Hackathon `json:"hackathon"`
	Removed   domain.Account   `json:"removed"`
}

// ApplicationSubmittedPayload payload.
type ApplicationSubmittedPayload struct {
	Team      domain.Team    `json:"team"`
	Vacancy   domain.Vacancy `json:"vacancy"`
	Applicant domain.Account `json:"applicant"`
	Creator   domain.Account `json:"creator"`
}

// ApplicationAcceptedPayload payload.
type ApplicationAcceptedPayload struct {
	Team      domain.Team    `json:"team"`
	Applicant domain.Account `json:"applicant"`
}

// TeamMemberJoinedPayload payload.
type TeamMemberJoinedPayload struct {
	Team    domain.Team    `json:"team"`
	Member  domain.Account `json:"member"`
	Creator domain.Account `json:"creator"`
}

// TeamMemberLeftPayload payload.
type TeamMemberLeftPayload struct {
	Team    domain.Team    `json:"team"`
	Member  domain.Account `json:"member"`
	Creator domain.Account `json:"creator"`
}

// TeamOwnershipTransferredPayload payload.
type TeamOwnershipTransferredPayload struct {
	Team       domain.Team    `json:"team"`
	NewCreator domain.Account `json:"new_creator"`
}
