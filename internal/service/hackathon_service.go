package service

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/megazord/team-search/internal/auth"
	"github.com/megazord/team-search/internal/domain"
	"github.com/megazord/team-search/internal/events"
	"github.com/megazord/team-search/internal/notify"
	"github.com/megazord/team-search/internal/repository"
	apperrors "github.com/megazord/team-search/pkg/util"
)

// CreateHackathonInput carries the fields accepted at hackathon
// creation. Roles and InviteEmails are written atomically with the
// hackathon itself.
type CreateHackathonInput struct {
	Name            string
	Description     string
	MinParticipants int
	MaxParticipants int
	Roles           []string
	InviteEmails    []string
}

// UpdateHackathonInput carries optional hackathon edits.
type UpdateHackathonInput struct {
	Name            *string
	Description     *string
	MinParticipants *int
	MaxParticipants *int
}

// JoinHackathonInput redeems a single-use invite token, optionally
// picking a role.
type JoinHackathonInput struct {
	Token  string
	RoleID string
}

// HackathonSummary is the analytics view returned by the summary
// endpoint.
type HackathonSummary struct {
	Hackathon        domain.Hackathon `json:"hackathon"`
	ParticipantCount int              `json:"participant_count"`
	TeamCount        int              `json:"team_count"`
	InvitedCount     int              `json:"invited_count"`
	PercentWithTeam  float64          `json:"percent_with_team"`
	PercentFullTeams float64          `json:"percent_full_teams"`
}

// CSVImportResult reports how many addresses a CSV upload added.
type CSVImportResult struct {
	Total int `json:"total"`
	Added int `json:"added"`
}

// HackathonService owns the hackathon lifecycle, invitations and
// roster import/export.
type HackathonService struct {
	hackathons repository.HackathonRepository
	teams      repository.TeamRepository
	resumes    repository.ResumeRepository
	invites    repository.InviteTokenRepository
	tokens     *auth.TokenManager
	notifier   NotificationSender
	dispatcher events.Dispatcher
	frontend   string
	logger     *zap.Logger
}

// NewHackathonService constructs a HackathonService.
func NewHackathonService(
	hackathons repository.HackathonRepository,
	teams repository.TeamRepository,
	resumes repository.ResumeRepository,
	invites repository.InviteTokenRepository,
	tokens *auth.TokenManager,
	notifier NotificationSender,
	dispatcher events.Dispatcher,
	frontendURL string,
	logger *zap.Logger,
) *HackathonService {
	return &HackathonService{
		hackathons: hackathons,
		teams:      teams,
		resumes:    resumes,
		invites:    invites,
		tokens:     tokens,
		notifier:   notifier,
		dispatcher: dispatcher,
		frontend:   frontendURL,
		logger:     logger,
	}
}

// Create registers a new hackathon owned by the caller.
func (s *HackathonService) Create(ctx context.Context, creator *domain.Account, input CreateHackathonInput) (*domain.Hackathon, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, apperrors.NewValidationError("Hackathon name is required")
	}
	if input.MaxParticipants <= 0 || input.MinParticipants < 0 || input.MinParticipants > input.MaxParticipants {
		return nil, apperrors.NewValidationError("Participant bounds are not valid")
	}

	hackathon := &domain.Hackathon{
		CreatorID:       creator.ID,
		Name:            strings.TrimSpace(input.Name),
		Description:     input.Description,
		MinParticipants: input.MinParticipants,
		MaxParticipants: input.MaxParticipants,
		Status:          domain.HackathonStatusNotStarted,
	}

	emails := make([]string, 0, len(input.InviteEmails))
	for _, address := range input.InviteEmails {
		address = strings.ToLower(strings.TrimSpace(address))
		if address == "" || strings.EqualFold(address, creator.Email) {
			continue
		}
		emails = append(emails, address)
	}

	if err := s.hackathons.Create(ctx, hackathon, input.Roles, emails); err != nil {
		return nil, apperrors.MapError(err)
	}
	return hackathon, nil
}

// Update edits a hackathon. Only the creator may edit.
func (s *HackathonService) Update(ctx context.Context, actor *domain.Account, id string, input UpdateHackathonInput) (*domain.Hackathon, error) {
	hackathon, err := s.requireCreator(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			return nil, apperrors.NewValidationError("Hackathon name is required")
		}
		hackathon.Name = strings.TrimSpace(*input.Name)
	}
	if input.Description != nil {
		hackathon.Description = *input.Description
	}
	if input.MinParticipants != nil {
		hackathon.MinParticipants = *input.MinParticipants
	}
	if input.MaxParticipants != nil {
		hackathon.MaxParticipants = *input.MaxParticipants
	}
	if hackathon.MaxParticipants <= 0 || hackathon.MinParticipants < 0 || hackathon.MinParticipants > hackathon.MaxParticipants {
		return nil, apperrors.NewValidationError("Participant bounds are not valid")
	}

	if err := s.hackathons.Update(ctx, hackathon); err != nil {
		return nil, apperrors.MapError(err)
	}
	return hackathon, nil
}

// Get returns a hackathon by id.
func (s *HackathonService) Get(ctx context.Context, id string) (*domain.Hackathon, error) {
	hackathon, err := s.hackathons.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return hackathon, nil
}

// List returns all hackathons.
func (s *HackathonService) List(ctx context.Context) ([]domain.Hackathon, error) {
	hackathons, err := s.hackathons.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return hackathons, nil
}

// ListForAccount returns hackathons the account created or joined.
func (s *HackathonService) ListForAccount(ctx context.Context, accountID string) ([]domain.Hackathon, error) {
	hackathons, err := s.hackathons.ListForAccount(ctx, accountID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return hackathons, nil
}

// Invite adds an email to the hackathon's invite set and mails a
// single-use join link. A failed mail send surfaces as 500 so the
// organizer knows the invitee never got the link.
func (s *HackathonService) Invite(ctx context.Context, actor *domain.Account, hackathonID, address string) error {
	hackathon, err := s.requireCreator(ctx, actor, hackathonID)
	if err != nil {
		return err
	}

	address = strings.ToLower(strings.TrimSpace(address))
	if address == "" || !strings.Contains(address, "@") {
		return apperrors.NewValidationError("A valid email is required")
	}
	if strings.EqualFold(address, actor.Email) {
		return apperrors.NewBadRequest("You can't invite yourself")
	}

	added, err := s.hackathons.InviteEmail(ctx, hackathonID, address)
	if err != nil {
		return apperrors.MapError(err)
	}
	if !added {
		return apperrors.NewBadRequest("This email is already invited")
	}

	joinLink, err := s.mintJoinLink(ctx, domain.InviteKindHackathon, hackathonID, address)
	if err != nil {
		return err
	}
	err = s.notifier.Send(ctx, notify.SendInput{
		Recipients: notify.RecipientsFromAddresses([]string{address}),
		Mail:       notify.TemplateHackathonInvite,
		Data: map[string]any{
			"HackathonName": hackathon.Name,
			"JoinLink":      joinLink,
		},
	})
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	return nil
}

// Start moves a hackathon from NOT_STARTED to STARTED and fans
// invitations out to every invited address, each with its own
// single-use join link.
func (s *HackathonService) Start(ctx context.Context, actor *domain.Account, hackathonID string) (*domain.Hackathon, error) {
	hackathon, err := s.requireCreator(ctx, actor, hackathonID)
	if err != nil {
		return nil, err
	}
	if hackathon.Status != domain.HackathonStatusNotStarted {
		return nil, apperrors.NewBadRequest("Hackathon is already started or ended")
	}

	if err := s.hackathons.SetStatus(ctx, hackathonID, domain.HackathonStatusStarted); err != nil {
		return nil, apperrors.MapError(err)
	}
	hackathon.Status = domain.HackathonStatusStarted

	invited, err := s.hackathons.ListInvitedEmails(ctx, hackathonID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	invitations := make([]events.Invitation, 0, len(invited))
	for _, email := range invited {
		joinLink, err := s.mintJoinLink(ctx, domain.InviteKindHackathon, hackathonID, email.Address)
		if err != nil {
			return nil, err
		}
		invitations = append(invitations, events.Invitation{Email: email.Address, JoinLink: joinLink})
	}

	s.publish(ctx, events.EventHackathonStarted, events.HackathonStartedPayload{
		Hackathon:   *hackathon,
		Invitations: invitations,
	})
	return hackathon, nil
}

// End moves a hackathon from STARTED to ENDED and notifies the
// current participants.
func (s *HackathonService) End(ctx context.Context, actor *domain.Account, hackathonID string) (*domain.Hackathon, error) {
	hackathon, err := s.requireCreator(ctx, actor, hackathonID)
	if err != nil {
		return nil, err
	}
	if hackathon.Status != domain.HackathonStatusStarted {
		return nil, apperrors.NewBadRequest("Hackathon is not started")
	}

	if err := s.hackathons.SetStatus(ctx, hackathonID, domain.HackathonStatusEnded); err != nil {
		return nil, apperrors.MapError(err)
	}
	hackathon.Status = domain.HackathonStatusEnded

	participants, err := s.hackathons.ListParticipants(ctx, hackathonID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	s.publish(ctx, events.EventHackathonEnded, events.HackathonEndedPayload{
		Hackathon:    *hackathon,
		Participants: participants,
	})
	return hackathon, nil
}

// Join redeems an invite token. The hackathon must be STARTED, the
// caller's email must be invited, and a role pick is mandatory when the
// hackathon defines roles. Joining twice is a no-op.
func (s *HackathonService) Join(ctx context.Context, account *domain.Account, input JoinHackathonInput) (*domain.Hackathon, error) {
	if _, err := s.tokens.ParseInviteToken(input.Token); err != nil {
		return nil, apperrors.NewUnauthorized("Provided token is not valid")
	}

	invite, err := s.invites.Claim(ctx, input.Token)
	if err != nil {
		if errors.Is(err, repository.ErrTokenInactive) {
			return nil, apperrors.NewBadRequest("Invite token has already been used")
		}
		return nil, apperrors.MapError(err)
	}
	if invite.Kind != domain.InviteKindHackathon {
		return nil, apperrors.NewBadRequest("Invite token is not for a hackathon")
	}

	hackathon, err := s.hackathons.GetByID(ctx, invite.TargetID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if hackathon.Status != domain.HackathonStatusStarted {
		return nil, apperrors.NewBadRequest("Hackathon is not started")
	}

	invited, err := s.hackathons.IsInvited(ctx, hackathon.ID, account.Email)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if !invited {
		return nil, apperrors.NewBadRequest("You are not invited to this hackathon")
	}

	roles, err := s.hackathons.ListRoles(ctx, hackathon.ID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if len(roles) > 0 && input.RoleID == "" {
		return nil, apperrors.NewBadRequest("Role is required for this hackathon")
	}

	if _, err := s.hackathons.AddParticipant(ctx, hackathon.ID, account.ID); err != nil {
		return nil, apperrors.MapError(err)
	}

	if input.RoleID != "" {
		role, err := s.hackathons.GetRole(ctx, input.RoleID)
		if err != nil {
			return nil, apperrors.MapError(err)
		}
		if role.HackathonID != hackathon.ID {
			return nil, apperrors.NewBadRequest("Role does not belong to this hackathon")
		}
		if err := s.hackathons.AssignRole(ctx, role.ID, hackathon.ID, account.ID); err != nil {
			return nil, apperrors.MapError(err)
		}
	}
	return hackathon, nil
}

// RemoveParticipant kicks a participant out. The removed account also
// loses its team membership and gets notified. Creators cannot remove
// themselves.
func (s *HackathonService) RemoveParticipant(ctx context.Context, actor *domain.Account, hackathonID, accountID string) error {
	hackathon, err := s.requireCreator(ctx, actor, hackathonID)
	if err != nil {
		return err
	}
	if accountID == actor.ID {
		return apperrors.NewBadRequest("You can't remove yourself")
	}

	participants, err := s.hackathons.ListParticipants(ctx, hackathonID)
	if err != nil {
		return apperrors.MapError(err)
	}
	var removed *domain.Account
	for i := range participants {
		if participants[i].ID == accountID {
			removed = &participants[i]
			break
		}
	}
	if removed == nil {
		return apperrors.NewNotFound("Participant")
	}

	team, err := s.teams.TeamForAccount(ctx, hackathonID, accountID)
	switch {
	case err == nil:
		if err := s.teams.RemoveMember(ctx, team.ID, accountID); err != nil {
			return apperrors.MapError(err)
		}
		if err := s.settleTeamAfterDeparture(ctx, team, accountID); err != nil {
			return err
		}
	case !errors.Is(err, pgx.ErrNoRows):
		return apperrors.MapError(err)
	}

	if err := s.hackathons.RemoveParticipant(ctx, hackathonID, accountID); err != nil {
		return apperrors.MapError(err)
	}

	s.publish(ctx, events.EventParticipantRemoved, events.ParticipantRemovedPayload{
		Hackathon: *hackathon,
		Removed:   *removed,
	})
	return nil
}

// TeamFor returns the caller's team within a hackathon.
func (s *HackathonService) TeamFor(ctx context.Context, account *domain.Account, hackathonID string) (*domain.Team, error) {
	team, err := s.teams.TeamForAccount(ctx, hackathonID, account.ID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("Team")
		}
		return nil, apperrors.MapError(err)
	}
	return team, nil
}

// Summary computes roster analytics for a hackathon. With zero
// participants the with-team share is defined as 100 percent; with zero
// teams the full-team share is 0 percent.
func (s *HackathonService) Summary(ctx context.Context, hackathonID string) (*HackathonSummary, error) {
	hackathon, err := s.hackathons.GetByID(ctx, hackathonID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	participants, err := s.hackathons.ListParticipants(ctx, hackathonID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	teams, err := s.teams.ListByHackathon(ctx, hackathonID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	invited, err := s.hackathons.ListInvitedEmails(ctx, hackathonID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	withTeam := make(map[string]struct{})
	fullTeams := 0
	for _, team := range teams {
		members, err := s.teams.ListMembers(ctx, team.ID)
		if err != nil {
			return nil, apperrors.MapError(err)
		}
		for _, member := range members {
			withTeam[member.ID] = struct{}{}
		}
		if len(members) == hackathon.MaxParticipants {
			fullTeams++
		}
	}

	percentWithTeam := 100.0
	if len(participants) > 0 {
		percentWithTeam = float64(len(withTeam)) / float64(len(participants)) * 100
	}
	percentFullTeams := 0.0
	if len(teams) > 0 {
		percentFullTeams = float64(fullTeams) / float64(len(teams)) * 100
	}

	return &HackathonSummary{
		Hackathon:        *hackathon,
		ParticipantCount: len(participants),
		TeamCount:        len(teams),
		InvitedCount:     len(invited),
		PercentWithTeam:  percentWithTeam,
		PercentFullTeams: percentFullTeams,
	}, nil
}

// ImportInviteCSV reads one email per line (first column, BOM and
// blanks tolerated) and adds each to the invite set.
func (s *HackathonService) ImportInviteCSV(ctx context.Context, actor *domain.Account, hackathonID string, r io.Reader) (*CSVImportResult, error) {
	if _, err := s.requireCreator(ctx, actor, hackathonID); err != nil {
		return nil, err
	}

	result := &CSVImportResult{}
	scanner := bufio.NewScanner(r)
	first := true
	for scanner.Scan() {
		line := scanner.Text()
		if first {
			line = strings.TrimPrefix(line, "\ufeff")
			first = false
		}
		address := line
		if i := strings.IndexByte(address, ','); i >= 0 {
			address = address[:i]
		}
		address = strings.ToLower(strings.TrimSpace(address))
		if address == "" || !strings.Contains(address, "@") {
			continue
		}
		result.Total++

		added, err := s.hackathons.InviteEmail(ctx, hackathonID, address)
		if err != nil {
			return nil, apperrors.MapError(err)
		}
		if added {
			result.Added++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, apperrors.NewValidationError("CSV file could not be read")
	}
	return result, nil
}

// ExportRosterCSV writes the roster: team members grouped by team
// first, then teamless participants under "No Team". GitHub and Role
// default to "N/A".
func (s *HackathonService) ExportRosterCSV(ctx context.Context, actor *domain.Account, hackathonID string, w io.Writer) error {
	if _, err := s.requireCreator(ctx, actor, hackathonID); err != nil {
		return err
	}

	teams, err := s.teams.ListByHackathon(ctx, hackathonID)
	if err != nil {
		return apperrors.MapError(err)
	}
	participants, err := s.hackathons.ListParticipants(ctx, hackathonID)
	if err != nil {
		return apperrors.MapError(err)
	}
	roleNames, err := s.hackathons.RoleNamesByAccount(ctx, hackathonID)
	if err != nil {
		return apperrors.MapError(err)
	}
	githubLinks, err := s.resumes.GitHubLinksByUser(ctx, hackathonID)
	if err != nil {
		return apperrors.MapError(err)
	}

	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"Team", "Email", "Full Name", "GitHub", "Role"}); err != nil {
		return apperrors.NewInternalError(err)
	}

	row := func(teamName string, account domain.Account) []string {
		github := githubLinks[account.ID]
		if github == "" {
			github = "N/A"
		}
		role := roleNames[account.ID]
		if role == "" {
			role = "N/A"
		}
		return []string{teamName, account.Email, account.Username, github, role}
	}

	inTeam := make(map[string]struct{})
	for _, team := range teams {
		members, err := s.teams.ListMembers(ctx, team.ID)
		if err != nil {
			return apperrors.MapError(err)
		}
		for _, member := range members {
			inTeam[member.ID] = struct{}{}
			if err := writer.Write(row(team.Name, member)); err != nil {
				return apperrors.NewInternalError(err)
			}
		}
	}
	for _, participant := range participants {
		if _, ok := inTeam[participant.ID]; ok {
			continue
		}
		if err := writer.Write(row("No Team", participant)); err != nil {
			return apperrors.NewInternalError(err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return apperrors.NewInternalError(err)
	}
	return nil
}

// settleTeamAfterDeparture keeps a team consistent after a member was
// removed: an emptied team is deleted, and a departed creator hands
// ownership to the first remaining member.
func (s *HackathonService) settleTeamAfterDeparture(ctx context.Context, team *domain.Team, departedID string) error {
	remaining, err := s.teams.ListMembers(ctx, team.ID)
	if err != nil {
		return apperrors.MapError(err)
	}
	if len(remaining) == 0 {
		return apperrors.MapError(s.teams.Delete(ctx, team.ID))
	}
	if team.CreatorID == departedID {
		newCreator := remaining[0]
		if err := s.teams.SetCreator(ctx, team.ID, newCreator.ID); err != nil {
			return apperrors.MapError(err)
		}
		team.CreatorID = newCreator.ID
		s.publish(ctx, events.EventTeamOwnershipTransferred, events.TeamOwnershipTransferredPayload{
			Team:       *team,
			NewCreator: newCreator,
		})
	}
	return nil
}

func (s *HackathonService) requireCreator(ctx context.Context, actor *domain.Account, hackathonID string) (*domain.Hackathon, error) {
	hackathon, err := s.hackathons.GetByID(ctx, hackathonID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if hackathon.CreatorID != actor.ID {
		return nil, apperrors.NewForbidden("You are not the creator of this hackathon")
	}
	return hackathon, nil
}

func (s *HackathonService) mintJoinLink(ctx context.Context, kind domain.InviteKind, targetID, address string) (string, error) {
	tokenStr, err := s.tokens.MintInviteToken(targetID, address)
	if err != nil {
		return "", apperrors.NewInternalError(err)
	}
	record := &domain.InviteToken{
		Token:    tokenStr,
		Kind:     kind,
		TargetID: targetID,
		Email:    address,
		IsActive: true,
	}
	if err := s.invites.Create(ctx, record); err != nil {
		return "", apperrors.MapError(err)
	}

	path := "hackathons"
	if kind == domain.InviteKindTeam {
		path = "teams"
	}
	return fmt.Sprintf("%s/%s/join?token=%s", s.frontend, path, tokenStr), nil
}

func (s *HackathonService) publish(ctx context.Context, eventType events.EventType, payload any) {
	err := s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now(),
		Payload:   payload,
	})
	if err != nil {
		s.logger.Error("failed to publish event", zap.String("type", string(eventType)), zap.Error(err))
	}
}
