package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/megazord/team-search/internal/auth"
	"github.com/megazord/team-search/internal/domain"
	"github.com/megazord/team-search/internal/events"
	apperrors "github.com/megazord/team-search/pkg/util"
)

type teamFixture struct {
	svc        *TeamService
	accounts   *fakeAccounts
	hackathons *fakeHackathons
	teams      *fakeTeams
	vacancies  *fakeVacancies
	invites    *fakeInvites
	tokens     *auth.TokenManager
	notifier   *fakeNotifier
	dispatcher events.Dispatcher
	hackathon  *domain.Hackathon
	organizer  *domain.Account
}

func newTeamFixture(t *testing.T, maxParticipants int) *teamFixture {
	t.Helper()
	accounts := newFakeAccounts()
	hackathons := newFakeHackathons(accounts)
	vacancies := newFakeVacancies()
	teams := newFakeTeams(accounts)
	teams.vacancies = vacancies
	invites := newFakeInvites()
	tokens := auth.NewTokenManager("test-secret", 4)
	notifier := &fakeNotifier{}
	dispatcher := events.NewInMemoryDispatcher(zap.NewNop())

	svc := NewTeamService(teams, vacancies, hackathons, accounts, invites, tokens, notifier, dispatcher, "http://front", zap.NewNop())

	organizer := accounts.add("org@example.com", "org")
	hackathon := &domain.Hackathon{
		CreatorID:       organizer.ID,
		Name:            "hack",
		MaxParticipants: maxParticipants,
		Status:          domain.HackathonStatusStarted,
	}
	require.NoError(t, hackathons.Create(context.Background(), hackathon, nil, nil))

	return &teamFixture{
		svc:        svc,
		accounts:   accounts,
		hackathons: hackathons,
		teams:      teams,
		vacancies:  vacancies,
		invites:    invites,
		tokens:     tokens,
		notifier:   notifier,
		dispatcher: dispatcher,
		hackathon:  hackathon,
		organizer:  organizer,
	}
}

func (f *teamFixture) participant(t *testing.T, email, username string) *domain.Account {
	t.Helper()
	account := f.accounts.add(email, username)
	_, err := f.hackathons.AddParticipant(context.Background(), f.hackathon.ID, account.ID)
	require.NoError(t, err)
	return account
}

func TestTeamCreate(t *testing.T) {
	ctx := context.Background()
	f := newTeamFixture(t, 5)
	creator := f.participant(t, "a@b.com", "a")

	view, err := f.svc.Create(ctx, creator, CreateTeamInput{
		HackathonID: f.hackathon.ID,
		Name:        "  alpha  ",
		Vacancies: []VacancyInput{
			{Name: "backend", Keywords: []string{"go", " postgres ", ""}},
			{Name: "   "},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "alpha", view.Team.Name)
	require.Len(t, view.Members, 1)
	assert.Equal(t, creator.ID, view.Members[0].ID)

	// the blank vacancy is dropped and keywords are trimmed
	require.Len(t, view.Vacancies, 1)
	assert.Equal(t, []string{"go", "postgres"}, view.Vacancies[0].Keywords)

	// one team per participant per hackathon
	_, err = f.svc.Create(ctx, creator, CreateTeamInput{HackathonID: f.hackathon.ID, Name: "another"})
	assertStatus(t, err, 400)
	assert.Equal(t, "You are already in a team", apperrors.ToDomainError(err).Detail)

	// non-participants cannot create teams
	outsider := f.accounts.add("out@b.com", "out")
	_, err = f.svc.Create(ctx, outsider, CreateTeamInput{HackathonID: f.hackathon.ID, Name: "nope"})
	assertStatus(t, err, 400)
	assert.Equal(t, "You are not a participant of this hackathon", apperrors.ToDomainError(err).Detail)
}

func TestTeamCapacity(t *testing.T) {
	ctx := context.Background()
	f := newTeamFixture(t, 2)
	creator := f.participant(t, "a@b.com", "a")
	second := f.participant(t, "b@b.com", "b")
	third := f.participant(t, "c@b.com", "c")

	view, err := f.svc.Create(ctx, creator, CreateTeamInput{
		HackathonID: f.hackathon.ID,
		Name:        "alpha",
		Vacancies:   []VacancyInput{{Name: "backend"}},
	})
	require.NoError(t, err)
	vacancyID := view.Vacancies[0].ID

	apply, err := f.svc.Apply(ctx, second, vacancyID)
	require.NoError(t, err)
	_, err = f.svc.AcceptApplication(ctx, creator, apply.ID)
	require.NoError(t, err)

	// the team is now at the hackathon's member cap
	_, err = f.svc.Apply(ctx, third, vacancyID)
	assertStatus(t, err, 400)
	assert.Equal(t, "Team is full", apperrors.ToDomainError(err).Detail)

	err = f.svc.Invite(ctx, creator, view.Team.ID, "x@y.com")
	assertStatus(t, err, 400)
	assert.Equal(t, "Team is full", apperrors.ToDomainError(err).Detail)
}

func TestAcceptClearsAllApplies(t *testing.T) {
	ctx := context.Background()
	f := newTeamFixture(t, 5)
	creator := f.participant(t, "a@b.com", "a")
	applicant := f.participant(t, "b@b.com", "b")

	view, err := f.svc.Create(ctx, creator, CreateTeamInput{
		HackathonID: f.hackathon.ID,
		Name:        "alpha",
		Vacancies:   []VacancyInput{{Name: "backend"}, {Name: "frontend"}},
	})
	require.NoError(t, err)

	first, err := f.svc.Apply(ctx, applicant, view.Vacancies[0].ID)
	require.NoError(t, err)
	_, err = f.svc.Apply(ctx, applicant, view.Vacancies[1].ID)
	require.NoError(t, err)

	accepted, err := f.svc.AcceptApplication(ctx, creator, first.ID)
	require.NoError(t, err)
	assert.Len(t, accepted.Members, 2)

	// both pending applications are gone, not just the accepted one
	applies, err := f.svc.ListApplies(ctx, creator, view.Team.ID)
	require.NoError(t, err)
	assert.Empty(t, applies)
}

func TestApplyWhileMember(t *testing.T) {
	ctx := context.Background()
	f := newTeamFixture(t, 5)
	creator := f.participant(t, "a@b.com", "a")

	view, err := f.svc.Create(ctx, creator, CreateTeamInput{
		HackathonID: f.hackathon.ID,
		Name:        "alpha",
		Vacancies:   []VacancyInput{{Name: "backend"}},
	})
	require.NoError(t, err)

	_, err = f.svc.Apply(ctx, creator, view.Vacancies[0].ID)
	assertStatus(t, err, 400)
	assert.Equal(t, "You are already in this team", apperrors.ToDomainError(err).Detail)
}

func TestLeaveDeletesEmptyTeam(t *testing.T) {
	ctx := context.Background()
	f := newTeamFixture(t, 5)
	creator := f.participant(t, "a@b.com", "a")

	view, err := f.svc.Create(ctx, creator, CreateTeamInput{HackathonID: f.hackathon.ID, Name: "alpha"})
	require.NoError(t, err)

	require.NoError(t, f.svc.Leave(ctx, creator, view.Team.ID))

	_, err = f.svc.Get(ctx, view.Team.ID)
	assertStatus(t, err, 404)
}

func TestLeaveTransfersOwnership(t *testing.T) {
	ctx := context.Background()
	f := newTeamFixture(t, 5)
	creator := f.participant(t, "a@b.com", "a")
	member := f.participant(t, "b@b.com", "b")

	view, err := f.svc.Create(ctx, creator, CreateTeamInput{HackathonID: f.hackathon.ID, Name: "alpha"})
	require.NoError(t, err)
	_, err = f.teams.AddMember(ctx, view.Team.ID, member.ID)
	require.NoError(t, err)

	var transferred events.TeamOwnershipTransferredPayload
	f.dispatcher.Subscribe(events.EventTeamOwnershipTransferred, func(_ context.Context, event events.Event) error {
		transferred = event.Payload.(events.TeamOwnershipTransferredPayload)
		return nil
	})

	require.NoError(t, f.svc.Leave(ctx, creator, view.Team.ID))

	team, err := f.teams.GetByID(ctx, view.Team.ID)
	require.NoError(t, err)
	assert.Equal(t, member.ID, team.CreatorID)
	assert.Equal(t, member.ID, transferred.NewCreator.ID)

	// leaving twice fails the membership check
	err = f.svc.Leave(ctx, creator, view.Team.ID)
	assertStatus(t, err, 400)
	assert.Equal(t, "You are not a member of this team", apperrors.ToDomainError(err).Detail)
}

func TestRemoveMember(t *testing.T) {
	ctx := context.Background()
	f := newTeamFixture(t, 5)
	creator := f.participant(t, "a@b.com", "a")
	member := f.participant(t, "b@b.com", "b")

	view, err := f.svc.Create(ctx, creator, CreateTeamInput{HackathonID: f.hackathon.ID, Name: "alpha"})
	require.NoError(t, err)
	_, err = f.teams.AddMember(ctx, view.Team.ID, member.ID)
	require.NoError(t, err)

	err = f.svc.RemoveMember(ctx, creator, view.Team.ID, creator.ID)
	assertStatus(t, err, 400)
	assert.Equal(t, "You can't remove yourself", apperrors.ToDomainError(err).Detail)

	err = f.svc.RemoveMember(ctx, member, view.Team.ID, creator.ID)
	assertStatus(t, err, 403)

	require.NoError(t, f.svc.RemoveMember(ctx, creator, view.Team.ID, member.ID))
	remaining, err := f.teams.ListMembers(ctx, view.Team.ID)
	require.NoError(t, err)
	assert.Len(t, remaining, 1)
}

func TestJoinByToken(t *testing.T) {
	ctx := context.Background()
	f := newTeamFixture(t, 5)
	creator := f.participant(t, "a@b.com", "a")
	joiner := f.participant(t, "b@b.com", "b")

	view, err := f.svc.Create(ctx, creator, CreateTeamInput{HackathonID: f.hackathon.ID, Name: "alpha"})
	require.NoError(t, err)

	require.NoError(t, f.svc.Invite(ctx, creator, view.Team.ID, joiner.Email))
	sends := f.notifier.sent()
	require.Len(t, sends, 1)
	joinLink, ok := sends[0].Data["JoinLink"].(string)
	require.True(t, ok)
	tokenStr := joinLink[len("http://front/teams/join?token="):]

	joined, err := f.svc.JoinByToken(ctx, joiner, tokenStr)
	require.NoError(t, err)
	assert.Len(t, joined.Members, 2)

	// single use
	another := f.participant(t, "c@b.com", "c")
	_, err = f.svc.JoinByToken(ctx, another, tokenStr)
	assertStatus(t, err, 400)
	assert.Equal(t, "Invite token has already been used", apperrors.ToDomainError(err).Detail)

	_, err = f.svc.JoinByToken(ctx, another, "garbage")
	assertStatus(t, err, 401)
}

func TestMerge(t *testing.T) {
	ctx := context.Background()
	f := newTeamFixture(t, 3)
	a := f.participant(t, "a@b.com", "a")
	b := f.participant(t, "b@b.com", "b")
	c := f.participant(t, "c@b.com", "c")

	team1, err := f.svc.Create(ctx, a, CreateTeamInput{HackathonID: f.hackathon.ID, Name: "one"})
	require.NoError(t, err)
	team2, err := f.svc.Create(ctx, b, CreateTeamInput{HackathonID: f.hackathon.ID, Name: "two"})
	require.NoError(t, err)
	_, err = f.teams.AddMember(ctx, team2.Team.ID, c.ID)
	require.NoError(t, err)

	// only the hackathon creator may merge
	_, err = f.svc.Merge(ctx, a, team1.Team.ID, team2.Team.ID)
	assertStatus(t, err, 403)

	_, err = f.svc.Merge(ctx, f.organizer, team1.Team.ID, team1.Team.ID)
	assertStatus(t, err, 400)

	merged, err := f.svc.Merge(ctx, f.organizer, team1.Team.ID, team2.Team.ID)
	require.NoError(t, err)
	assert.Len(t, merged.Members, 3)

	_, err = f.svc.Get(ctx, team2.Team.ID)
	assertStatus(t, err, 404)
}

func TestMergeRespectsCapacity(t *testing.T) {
	ctx := context.Background()
	f := newTeamFixture(t, 2)
	a := f.participant(t, "a@b.com", "a")
	b := f.participant(t, "b@b.com", "b")
	c := f.participant(t, "c@b.com", "c")

	team1, err := f.svc.Create(ctx, a, CreateTeamInput{HackathonID: f.hackathon.ID, Name: "one"})
	require.NoError(t, err)
	team2, err := f.svc.Create(ctx, b, CreateTeamInput{HackathonID: f.hackathon.ID, Name: "two"})
	require.NoError(t, err)
	_, err = f.teams.AddMember(ctx, team2.Team.ID, c.ID)
	require.NoError(t, err)

	_, err = f.svc.Merge(ctx, f.organizer, team1.Team.ID, team2.Team.ID)
	assertStatus(t, err, 400)
	assert.Equal(t, "Team is full", apperrors.ToDomainError(err).Detail)
}

func TestTeamAnalytics(t *testing.T) {
	ctx := context.Background()
	f := newTeamFixture(t, 2)

	// no participants at all
	analytics, err := f.svc.Analytics(ctx, f.hackathon.ID)
	require.NoError(t, err)
	assert.Equal(t, 100.0, analytics.PercentWithTeam)
	assert.Equal(t, 0.0, analytics.PercentFullTeams)

	a := f.participant(t, "a@b.com", "a")
	b := f.participant(t, "b@b.com", "b")
	f.participant(t, "c@b.com", "c")

	view, err := f.svc.Create(ctx, a, CreateTeamInput{HackathonID: f.hackathon.ID, Name: "one"})
	require.NoError(t, err)
	_, err = f.teams.AddMember(ctx, view.Team.ID, b.ID)
	require.NoError(t, err)

	analytics, err = f.svc.Analytics(ctx, f.hackathon.ID)
	require.NoError(t, err)
	assert.InDelta(t, 66.67, analytics.PercentWithTeam, 0.01)
	assert.Equal(t, 100.0, analytics.PercentFullTeams)
}

func TestExperienceByTeam(t *testing.T) {
	ctx := context.Background()
	f := newTeamFixture(t, 5)
	a := f.participant(t, "a@b.com", "a")
	b := f.participant(t, "b@b.com", "b")

	exp := 4
	a.WorkExperience = &exp
	require.NoError(t, f.accounts.Update(ctx, a))

	view, err := f.svc.Create(ctx, a, CreateTeamInput{HackathonID: f.hackathon.ID, Name: "one"})
	require.NoError(t, err)
	_, err = f.teams.AddMember(ctx, view.Team.ID, b.ID)
	require.NoError(t, err)

	result, err := f.svc.ExperienceByTeam(ctx, f.hackathon.ID)
	require.NoError(t, err)
	require.Len(t, result, 1)

	// b has no recorded experience and counts as zero
	assert.Equal(t, 2.0, result[0].AverageExperience)
}

func TestTopDemandedSkills(t *testing.T) {
	ctx := context.Background()
	f := newTeamFixture(t, 5)
	a := f.participant(t, "a@b.com", "a")

	_, err := f.svc.Create(ctx, a, CreateTeamInput{
		HackathonID: f.hackathon.ID,
		Name:        "one",
		Vacancies: []VacancyInput{
			{Name: "backend", Keywords: []string{"Go", "Postgres"}},
			{Name: "platform", Keywords: []string{"go", "Kafka"}},
			{Name: "data", Keywords: []string{"GO", "kafka", "python"}},
		},
	})
	require.NoError(t, err)

	demands, err := f.svc.TopDemandedSkills(ctx, f.hackathon.ID, 3)
	require.NoError(t, err)
	require.Len(t, demands, 3)
	assert.Equal(t, SkillDemand{Keyword: "go", Count: 3}, demands[0])
	assert.Equal(t, SkillDemand{Keyword: "kafka", Count: 2}, demands[1])
	assert.Equal(t, 1, demands[2].Count)
}
