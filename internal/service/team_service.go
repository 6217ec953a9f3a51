package service

import (
	"context"
	"errors"
	"sort"
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

// VacancyInput is a vacancy to create alongside a team.
type VacancyInput struct {
	Name     string
	Keywords []string
}

// CreateTeamInput carries the fields accepted at team creation.
type CreateTeamInput struct {
	HackathonID string
	Name        string
	Vacancies   []VacancyInput
}

// UpdateTeamInput carries optional team edits. A non-nil Vacancies
// replaces the whole vacancy set.
type UpdateTeamInput struct {
	Name      *string
	Vacancies *[]VacancyInput
}

// TeamView is a team with its members and open vacancies.
type TeamView struct {
	Team      domain.Team      `json:"team"`
	Members   []domain.Account `json:"members"`
	Vacancies []domain.Vacancy `json:"vacancies"`
}

// ApplyView pairs a pending application with the applicant account.
type ApplyView struct {
	Apply     domain.Apply   `json:"apply"`
	Applicant domain.Account `json:"applicant"`
}

// TeamAnalytics is the roster-level analytics view.
type TeamAnalytics struct {
	PercentWithTeam  float64 `json:"percent_with_team"`
	PercentFullTeams float64 `json:"percent_full_teams"`
}

// TeamExperience is the average work experience of one team's members.
type TeamExperience struct {
	Team              domain.Team `json:"team"`
	AverageExperience float64     `json:"average_experience"`
}

// SkillDemand is how many vacancies ask for a keyword.
type SkillDemand struct {
	Keyword string `json:"keyword"`
	Count   int    `json:"count"`
}

// TeamService owns teams, vacancies, applications and team analytics.
type TeamService struct {
	teams      repository.TeamRepository
	vacancies  repository.VacancyRepository
	hackathons repository.HackathonRepository
	accounts   repository.AccountRepository
	invites    repository.InviteTokenRepository
	tokens     *auth.TokenManager
	notifier   NotificationSender
	dispatcher events.Dispatcher
	frontend   string
	logger     *zap.Logger
}

// NewTeamService constructs a TeamService.
func NewTeamService(
	teams repository.TeamRepository,
	vacancies repository.VacancyRepository,
	hackathons repository.HackathonRepository,
	accounts repository.AccountRepository,
	invites repository.InviteTokenRepository,
	tokens *auth.TokenManager,
	notifier NotificationSender,
	dispatcher events.Dispatcher,
	frontendURL string,
	logger *zap.Logger,
) *TeamService {
	return &TeamService{
		teams:      teams,
		vacancies:  vacancies,
		hackathons: hackathons,
		accounts:   accounts,
		invites:    invites,
		tokens:     tokens,
		notifier:   notifier,
		dispatcher: dispatcher,
		frontend:   frontendURL,
		logger:     logger,
	}
}

// Create registers a team under a hackathon. The creator becomes the
// first member and the initial vacancies are written in the same
// transaction.
func (s *TeamService) Create(ctx context.Context, creator *domain.Account, input CreateTeamInput) (*TeamView, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, apperrors.NewValidationError("Team name is required")
	}

	hackathon, err := s.hackathons.GetByID(ctx, input.HackathonID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	isParticipant, err := s.hackathons.IsParticipant(ctx, hackathon.ID, creator.ID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if !isParticipant {
		return nil, apperrors.NewBadRequest("You are not a participant of this hackathon")
	}

	_, err = s.teams.TeamForAccount(ctx, hackathon.ID, creator.ID)
	if err == nil {
		return nil, apperrors.NewBadRequest("You are already in a team")
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.MapError(err)
	}

	team := &domain.Team{
		HackathonID: hackathon.ID,
		CreatorID:   creator.ID,
		Name:        strings.TrimSpace(input.Name),
	}
	vacancies, err := s.teams.CreateWithVacancies(ctx, team, buildVacancies(team.ID, input.Vacancies))
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	return &TeamView{
		Team:      *team,
		Members:   []domain.Account{*creator},
		Vacancies: vacancies,
	}, nil
}

// Get returns a team with its members and vacancies.
func (s *TeamService) Get(ctx context.Context, teamID string) (*TeamView, error) {
	team, err := s.teams.GetByID(ctx, teamID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	members, err := s.teams.ListMembers(ctx, teamID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	vacancies, err := s.vacancies.ListByTeam(ctx, teamID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return &TeamView{Team: *team, Members: members, Vacancies: vacancies}, nil
}

// ListByHackathon returns all teams of a hackathon.
func (s *TeamService) ListByHackathon(ctx context.Context, hackathonID string) ([]domain.Team, error) {
	teams, err := s.teams.ListByHackathon(ctx, hackathonID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return teams, nil
}

// ListVacancies returns the open vacancies of a team.
func (s *TeamService) ListVacancies(ctx context.Context, teamID string) ([]domain.Vacancy, error) {
	if _, err := s.teams.GetByID(ctx, teamID); err != nil {
		return nil, apperrors.MapError(err)
	}
	vacancies, err := s.vacancies.ListByTeam(ctx, teamID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return vacancies, nil
}

// Update edits a team. Only the creator may edit; a vacancy list in the
// input replaces the previous set atomically.
func (s *TeamService) Update(ctx context.Context, actor *domain.Account, teamID string, input UpdateTeamInput) (*TeamView, error) {
	team, err := s.requireTeamCreator(ctx, actor, teamID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, apperrors.NewValidationError("Team name is required")
		}
		if err := s.teams.Rename(ctx, teamID, name); err != nil {
			return nil, apperrors.MapError(err)
		}
		team.Name = name
	}
	if input.Vacancies != nil {
		if _, err := s.teams.ReplaceVacancies(ctx, teamID, buildVacancies(teamID, *input.Vacancies)); err != nil {
			return nil, apperrors.MapError(err)
		}
	}
	return s.Get(ctx, teamID)
}

// Delete removes a team. Only the creator may delete.
func (s *TeamService) Delete(ctx context.Context, actor *domain.Account, teamID string) error {
	if _, err := s.requireTeamCreator(ctx, actor, teamID); err != nil {
		return err
	}
	return apperrors.MapError(s.teams.Delete(ctx, teamID))
}

// Invite mails a single-use team join link to a hackathon participant.
// A failed mail send surfaces as 500.
func (s *TeamService) Invite(ctx context.Context, actor *domain.Account, teamID, address string) error {
	team, err := s.requireTeamCreator(ctx, actor, teamID)
	if err != nil {
		return err
	}

	address = strings.ToLower(strings.TrimSpace(address))
	if address == "" || !strings.Contains(address, "@") {
		return apperrors.NewValidationError("A valid email is required")
	}

	if err := s.checkCapacity(ctx, team, 1); err != nil {
		return err
	}

	tokenStr, err := s.tokens.MintInviteToken(team.ID, address)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	record := &domain.InviteToken{
		Token:    tokenStr,
		Kind:     domain.InviteKindTeam,
		TargetID: team.ID,
		Email:    address,
		IsActive: true,
	}
	if err := s.invites.Create(ctx, record); err != nil {
		return apperrors.MapError(err)
	}

	hackathon, err := s.hackathons.GetByID(ctx, team.HackathonID)
	if err != nil {
		return apperrors.MapError(err)
	}
	err = s.notifier.Send(ctx, notify.SendInput{
		Recipients: notify.RecipientsFromAddresses([]string{address}),
		Mail:       notify.TemplateTeamInvite,
		Data: map[string]any{
			"TeamName":      team.Name,
			"HackathonName": hackathon.Name,
			"JoinLink":      s.frontend + "/teams/join?token=" + tokenStr,
		},
	})
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	return nil
}

// JoinByToken redeems a single-use team invite token. Joining a team
// the caller already belongs to is a no-op.
func (s *TeamService) JoinByToken(ctx context.Context, account *domain.Account, tokenStr string) (*TeamView, error) {
	if _, err := s.tokens.ParseInviteToken(tokenStr); err != nil {
		return nil, apperrors.NewUnauthorized("Provided token is not valid")
	}

	invite, err := s.invites.Claim(ctx, tokenStr)
	if err != nil {
		if errors.Is(err, repository.ErrTokenInactive) {
			return nil, apperrors.NewBadRequest("Invite token has already been used")
		}
		return nil, apperrors.MapError(err)
	}
	if invite.Kind != domain.InviteKindTeam {
		return nil, apperrors.NewBadRequest("Invite token is not for a team")
	}

	team, err := s.teams.GetByID(ctx, invite.TargetID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return s.addMember(ctx, team, account)
}

// Leave removes the caller from a team. An emptied team is deleted;
// a departing creator hands ownership to the first remaining member.
func (s *TeamService) Leave(ctx context.Context, account *domain.Account, teamID string) error {
	team, err := s.teams.GetByID(ctx, teamID)
	if err != nil {
		return apperrors.MapError(err)
	}
	if err := s.requireMember(ctx, teamID, account.ID); err != nil {
		return err
	}

	if err := s.teams.RemoveMember(ctx, teamID, account.ID); err != nil {
		return apperrors.MapError(err)
	}

	remaining, err := s.teams.ListMembers(ctx, teamID)
	if err != nil {
		return apperrors.MapError(err)
	}
	if len(remaining) == 0 {
		return apperrors.MapError(s.teams.Delete(ctx, teamID))
	}

	if team.CreatorID == account.ID {
		newCreator := remaining[0]
		if err := s.teams.SetCreator(ctx, teamID, newCreator.ID); err != nil {
			return apperrors.MapError(err)
		}
		team.CreatorID = newCreator.ID
		s.publish(ctx, events.EventTeamOwnershipTransferred, events.TeamOwnershipTransferredPayload{
			Team:       *team,
			NewCreator: newCreator,
		})
		return nil
	}

	creator, err := s.accounts.GetByID(ctx, team.CreatorID)
	if err != nil {
		return apperrors.MapError(err)
	}
	s.publish(ctx, events.EventTeamMemberLeft, events.TeamMemberLeftPayload{
		Team:    *team,
		Member:  *account,
		Creator: *creator,
	})
	return nil
}

// RemoveMember lets the creator kick a member out. Creators leave
// through Leave, not here.
func (s *TeamService) RemoveMember(ctx context.Context, actor *domain.Account, teamID, accountID string) error {
	team, err := s.requireTeamCreator(ctx, actor, teamID)
	if err != nil {
		return err
	}
	if accountID == actor.ID {
		return apperrors.NewBadRequest("You can't remove yourself")
	}
	if err := s.requireMember(ctx, teamID, accountID); err != nil {
		return err
	}

	if err := s.teams.RemoveMember(ctx, teamID, accountID); err != nil {
		return apperrors.MapError(err)
	}

	removed, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return apperrors.MapError(err)
	}
	s.publish(ctx, events.EventTeamMemberLeft, events.TeamMemberLeftPayload{
		Team:    *team,
		Member:  *removed,
		Creator: *actor,
	})
	return nil
}

// Apply submits an application to a vacancy. The team creator is
// notified of every new application.
func (s *TeamService) Apply(ctx context.Context, applicant *domain.Account, vacancyID string) (*domain.Apply, error) {
	vacancy, err := s.vacancies.GetByID(ctx, vacancyID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	team, err := s.teams.GetByID(ctx, vacancy.TeamID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	isMember, err := s.isMember(ctx, team.ID, applicant.ID)
	if err != nil {
		return nil, err
	}
	if isMember {
		return nil, apperrors.NewBadRequest("You are already in this team")
	}
	if err := s.checkCapacity(ctx, team, 1); err != nil {
		return nil, err
	}

	apply := &domain.Apply{
		TeamID:      team.ID,
		VacancyID:   vacancy.ID,
		ApplicantID: applicant.ID,
	}
	if err := s.vacancies.CreateApply(ctx, apply); err != nil {
		return nil, apperrors.MapError(err)
	}

	creator, err := s.accounts.GetByID(ctx, team.CreatorID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	s.publish(ctx, events.EventApplicationSubmitted, events.ApplicationSubmittedPayload{
		Team:      *team,
		Vacancy:   *vacancy,
		Applicant: *applicant,
		Creator:   *creator,
	})
	return apply, nil
}

// AcceptApplication adds the applicant to the team and clears every
// pending application that user has to the team, not only the accepted
// one.
func (s *TeamService) AcceptApplication(ctx context.Context, actor *domain.Account, applyID string) (*TeamView, error) {
	apply, err := s.vacancies.GetApply(ctx, applyID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	team, err := s.requireTeamCreator(ctx, actor, apply.TeamID)
	if err != nil {
		return nil, err
	}

	applicant, err := s.accounts.GetByID(ctx, apply.ApplicantID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	view, err := s.addMember(ctx, team, applicant)
	if err != nil {
		return nil, err
	}
	if err := s.vacancies.DeleteAppliesForApplicant(ctx, team.ID, applicant.ID); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publish(ctx, events.EventApplicationAccepted, events.ApplicationAcceptedPayload{
		Team:      *team,
		Applicant: *applicant,
	})
	return view, nil
}

// DeclineApplication drops a pending application.
func (s *TeamService) DeclineApplication(ctx context.Context, actor *domain.Account, applyID string) error {
	apply, err := s.vacancies.GetApply(ctx, applyID)
	if err != nil {
		return apperrors.MapError(err)
	}
	if _, err := s.requireTeamCreator(ctx, actor, apply.TeamID); err != nil {
		return err
	}
	return apperrors.MapError(s.vacancies.DeleteApply(ctx, applyID))
}

// ListApplies returns the pending applications of a team with their
// applicants. Only the creator may list.
func (s *TeamService) ListApplies(ctx context.Context, actor *domain.Account, teamID string) ([]ApplyView, error) {
	if _, err := s.requireTeamCreator(ctx, actor, teamID); err != nil {
		return nil, err
	}

	applies, err := s.vacancies.ListAppliesByTeam(ctx, teamID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	views := make([]ApplyView, 0, len(applies))
	for _, apply := range applies {
		applicant, err := s.accounts.GetByID(ctx, apply.ApplicantID)
		if err != nil {
			return nil, apperrors.MapError(err)
		}
		views = append(views, ApplyView{Apply: apply, Applicant: *applicant})
	}
	return views, nil
}

// Merge folds the second team into the first. Only the hackathon
// creator may merge, and the combined roster must fit the capacity
// bound.
func (s *TeamService) Merge(ctx context.Context, actor *domain.Account, team1ID, team2ID string) (*TeamView, error) {
	if team1ID == team2ID {
		return nil, apperrors.NewBadRequest("Can't merge a team with itself")
	}

	team1, err := s.teams.GetByID(ctx, team1ID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	team2, err := s.teams.GetByID(ctx, team2ID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if team1.HackathonID != team2.HackathonID {
		return nil, apperrors.NewBadRequest("Teams belong to different hackathons")
	}

	hackathon, err := s.hackathons.GetByID(ctx, team1.HackathonID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if hackathon.CreatorID != actor.ID {
		return nil, apperrors.NewForbidden("You are not the creator of this hackathon")
	}

	members2, err := s.teams.ListMembers(ctx, team2ID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if err := s.checkCapacity(ctx, team1, len(members2)); err != nil {
		return nil, err
	}

	for _, member := range members2 {
		if _, err := s.teams.AddMember(ctx, team1ID, member.ID); err != nil {
			return nil, apperrors.MapError(err)
		}
	}
	if err := s.teams.Delete(ctx, team2ID); err != nil {
		return nil, apperrors.MapError(err)
	}
	return s.Get(ctx, team1ID)
}

// Analytics computes roster shares for a hackathon. Zero participants
// count as fully teamed; zero teams count as zero full teams.
func (s *TeamService) Analytics(ctx context.Context, hackathonID string) (*TeamAnalytics, error) {
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

	analytics := &TeamAnalytics{PercentWithTeam: 100}
	if len(participants) > 0 {
		analytics.PercentWithTeam = float64(len(withTeam)) / float64(len(participants)) * 100
	}
	if len(teams) > 0 {
		analytics.PercentFullTeams = float64(fullTeams) / float64(len(teams)) * 100
	}
	return analytics, nil
}

// ExperienceByTeam computes the average work experience of each team's
// members. Members without a recorded experience count as zero.
func (s *TeamService) ExperienceByTeam(ctx context.Context, hackathonID string) ([]TeamExperience, error) {
	teams, err := s.teams.ListByHackathon(ctx, hackathonID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	result := make([]TeamExperience, 0, len(teams))
	for _, team := range teams {
		members, err := s.teams.ListMembers(ctx, team.ID)
		if err != nil {
			return nil, apperrors.MapError(err)
		}
		total := 0
		for _, member := range members {
			if member.WorkExperience != nil {
				total += *member.WorkExperience
			}
		}
		avg := 0.0
		if len(members) > 0 {
			avg = float64(total) / float64(len(members))
		}
		result = append(result, TeamExperience{Team: team, AverageExperience: avg})
	}
	return result, nil
}

// TopDemandedSkills returns the most requested vacancy keywords of a
// hackathon, case-folded, most demanded first, capped at limit.
func (s *TeamService) TopDemandedSkills(ctx context.Context, hackathonID string, limit int) ([]SkillDemand, error) {
	vacancies, err := s.vacancies.ListByHackathon(ctx, hackathonID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	counts := make(map[string]int)
	order := make([]string, 0)
	for _, vacancy := range vacancies {
		for _, keyword := range vacancy.Keywords {
			keyword = strings.ToLower(strings.TrimSpace(keyword))
			if keyword == "" {
				continue
			}
			if _, ok := counts[keyword]; !ok {
				order = append(order, keyword)
			}
			counts[keyword]++
		}
	}

	demands := make([]SkillDemand, 0, len(order))
	for _, keyword := range order {
		demands = append(demands, SkillDemand{Keyword: keyword, Count: counts[keyword]})
	}
	sort.SliceStable(demands, func(i, j int) bool {
		return demands[i].Count > demands[j].Count
	})
	if limit > 0 && len(demands) > limit {
		demands = demands[:limit]
	}
	return demands, nil
}

func (s *TeamService) addMember(ctx context.Context, team *domain.Team, account *domain.Account) (*TeamView, error) {
	isMember, err := s.isMember(ctx, team.ID, account.ID)
	if err != nil {
		return nil, err
	}
	if !isMember {
		if err := s.checkCapacity(ctx, team, 1); err != nil {
			return nil, err
		}
		added, err := s.teams.AddMember(ctx, team.ID, account.ID)
		if err != nil {
			return nil, apperrors.MapError(err)
		}
		if added {
			if err := s.vacancies.DeleteAppliesForApplicant(ctx, team.ID, account.ID); err != nil {
				return nil, apperrors.MapError(err)
			}
			creator, err := s.accounts.GetByID(ctx, team.CreatorID)
			if err != nil {
				return nil, apperrors.MapError(err)
			}
			s.publish(ctx, events.EventTeamMemberJoined, events.TeamMemberJoinedPayload{
				Team:    *team,
				Member:  *account,
				Creator: *creator,
			})
		}
	}
	return s.Get(ctx, team.ID)
}

func (s *TeamService) checkCapacity(ctx context.Context, team *domain.Team, joining int) error {
	hackathon, err := s.hackathons.GetByID(ctx, team.HackathonID)
	if err != nil {
		return apperrors.MapError(err)
	}
	count, err := s.teams.CountMembers(ctx, team.ID)
	if err != nil {
		return apperrors.MapError(err)
	}
	if count+joining > hackathon.MaxParticipants {
		return apperrors.NewBadRequest("Team is full")
	}
	return nil
}

func (s *TeamService) isMember(ctx context.Context, teamID, accountID string) (bool, error) {
	members, err := s.teams.ListMembers(ctx, teamID)
	if err != nil {
		return false, apperrors.MapError(err)
	}
	for _, member := range members {
		if member.ID == accountID {
			return true, nil
		}
	}
	return false, nil
}

func (s *TeamService) requireMember(ctx context.Context, teamID, accountID string) error {
	isMember, err := s.isMember(ctx, teamID, accountID)
	if err != nil {
		return err
	}
	if !isMember {
		return apperrors.NewBadRequest("You are not a member of this team")
	}
	return nil
}

func (s *TeamService) requireTeamCreator(ctx context.Context, actor *domain.Account, teamID string) (*domain.Team, error) {
	team, err := s.teams.GetByID(ctx, teamID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if team.CreatorID != actor.ID {
		return nil, apperrors.NewForbidden("You are not the creator of this team")
	}
	return team, nil
}

func (s *TeamService) publish(ctx context.Context, eventType events.EventType, payload any) {
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

func buildVacancies(teamID string, inputs []VacancyInput) []domain.Vacancy {
	vacancies := make([]domain.Vacancy, 0, len(inputs))
	for _, input := range inputs {
		name := strings.TrimSpace(input.Name)
		if name == "" {
			continue
		}
		keywords := make([]string, 0, len(input.Keywords))
		for _, keyword := range input.Keywords {
			keyword = strings.TrimSpace(keyword)
			if keyword != "" {
				keywords = append(keywords, keyword)
			}
		}
		vacancies = append(vacancies, domain.Vacancy{
			TeamID:   teamID,
			Name:     name,
			Keywords: keywords,
		})
	}
	return vacancies
}
