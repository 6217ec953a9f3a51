package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/megazord/team-search/internal/auth"
	"github.com/megazord/team-search/internal/domain"
	"github.com/megazord/team-search/internal/events"
	apperrors "github.com/megazord/team-search/pkg/util"
)

type hackathonFixture struct {
	svc        *HackathonService
	accounts   *fakeAccounts
	hackathons *fakeHackathons
	teams      *fakeTeams
	resumes    *fakeResumes
	invites    *fakeInvites
	tokens     *auth.TokenManager
	notifier   *fakeNotifier
	dispatcher events.Dispatcher
	creator    *domain.Account
}

func newHackathonFixture() *hackathonFixture {
	accounts := newFakeAccounts()
	hackathons := newFakeHackathons(accounts)
	teams := newFakeTeams(accounts)
	teams.vacancies = newFakeVacancies()
	resumes := newFakeResumes()
	invites := newFakeInvites()
	tokens := auth.NewTokenManager("test-secret", 4)
	notifier := &fakeNotifier{}
	dispatcher := events.NewInMemoryDispatcher(zap.NewNop())

	svc := NewHackathonService(hackathons, teams, resumes, invites, tokens, notifier, dispatcher, "http://front", zap.NewNop())
	creator := accounts.add("org@example.com", "org")
	creator.IsOrganizer = true
	return &hackathonFixture{
		svc:        svc,
		accounts:   accounts,
		hackathons: hackathons,
		teams:      teams,
		resumes:    resumes,
		invites:    invites,
		tokens:     tokens,
		notifier:   notifier,
		dispatcher: dispatcher,
		creator:    creator,
	}
}

func (f *hackathonFixture) mustCreate(t *testing.T, input CreateHackathonInput) *domain.Hackathon {
	t.Helper()
	hackathon, err := f.svc.Create(context.Background(), f.creator, input)
	require.NoError(t, err)
	return hackathon
}

// mintToken issues a live invite token the way Invite and Start do.
func (f *hackathonFixture) mintToken(t *testing.T, hackathonID, email string) string {
	t.Helper()
	tokenStr, err := f.tokens.MintInviteToken(hackathonID, email)
	require.NoError(t, err)
	require.NoError(t, f.invites.Create(context.Background(), &domain.InviteToken{
		Token:    tokenStr,
		Kind:     domain.InviteKindHackathon,
		TargetID: hackathonID,
		Email:    email,
		IsActive: true,
	}))
	return tokenStr
}

func TestHackathonCreateFiltersCreatorEmail(t *testing.T) {
	ctx := context.Background()
	f := newHackathonFixture()

	hackathon := f.mustCreate(t, CreateHackathonInput{
		Name:            "hack",
		MaxParticipants: 5,
		InviteEmails:    []string{"Org@Example.com", " a@b.com ", ""},
	})

	invited, err := f.hackathons.ListInvitedEmails(ctx, hackathon.ID)
	require.NoError(t, err)
	require.Len(t, invited, 1)
	assert.Equal(t, "a@b.com", invited[0].Address)
}

func TestHackathonCreateValidation(t *testing.T) {
	ctx := context.Background()
	f := newHackathonFixture()

	_, err := f.svc.Create(ctx, f.creator, CreateHackathonInput{Name: " ", MaxParticipants: 5})
	assertStatus(t, err, 422)

	_, err = f.svc.Create(ctx, f.creator, CreateHackathonInput{Name: "h", MaxParticipants: 0})
	assertStatus(t, err, 422)

	_, err = f.svc.Create(ctx, f.creator, CreateHackathonInput{Name: "h", MinParticipants: 6, MaxParticipants: 5})
	assertStatus(t, err, 422)
}

func TestHackathonLifecycleGuards(t *testing.T) {
	ctx := context.Background()
	f := newHackathonFixture()
	hackathon := f.mustCreate(t, CreateHackathonInput{Name: "hack", MaxParticipants: 5})

	// ending before starting
	_, err := f.svc.End(ctx, f.creator, hackathon.ID)
	assertStatus(t, err, 400)

	started, err := f.svc.Start(ctx, f.creator, hackathon.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.HackathonStatusStarted, started.Status)

	// starting twice
	_, err = f.svc.Start(ctx, f.creator, hackathon.ID)
	assertStatus(t, err, 400)
	assert.Equal(t, "Hackathon is already started or ended", apperrors.ToDomainError(err).Detail)

	ended, err := f.svc.End(ctx, f.creator, hackathon.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.HackathonStatusEnded, ended.Status)

	_, err = f.svc.End(ctx, f.creator, hackathon.ID)
	assertStatus(t, err, 400)
}

func TestHackathonStartOnlyByCreator(t *testing.T) {
	ctx := context.Background()
	f := newHackathonFixture()
	hackathon := f.mustCreate(t, CreateHackathonInput{Name: "hack", MaxParticipants: 5})

	stranger := f.accounts.add("stranger@example.com", "stranger")
	_, err := f.svc.Start(ctx, stranger, hackathon.ID)
	assertStatus(t, err, 403)
}

func TestHackathonStartFansOutInvites(t *testing.T) {
	ctx := context.Background()
	f := newHackathonFixture()
	hackathon := f.mustCreate(t, CreateHackathonInput{
		Name:            "hack",
		MaxParticipants: 5,
		InviteEmails:    []string{"a@b.com", "c@d.com"},
	})

	var payload events.HackathonStartedPayload
	f.dispatcher.Subscribe(events.EventHackathonStarted, func(_ context.Context, event events.Event) error {
		payload = event.Payload.(events.HackathonStartedPayload)
		return nil
	})

	_, err := f.svc.Start(ctx, f.creator, hackathon.ID)
	require.NoError(t, err)

	require.Len(t, payload.Invitations, 2)
	seen := map[string]bool{}
	for _, invitation := range payload.Invitations {
		seen[invitation.Email] = true
		assert.Contains(t, invitation.JoinLink, "http://front/hackathons/join?token=")
	}
	assert.True(t, seen["a@b.com"])
	assert.True(t, seen["c@d.com"])
}

func TestHackathonJoin(t *testing.T) {
	ctx := context.Background()
	f := newHackathonFixture()
	hackathon := f.mustCreate(t, CreateHackathonInput{
		Name:            "hack",
		MaxParticipants: 5,
		Roles:           []string{"backend"},
		InviteEmails:    []string{"a@b.com"},
	})
	invitee := f.accounts.add("a@b.com", "a")
	roles, err := f.hackathons.ListRoles(ctx, hackathon.ID)
	require.NoError(t, err)
	roleID := roles[0].ID

	// garbage token fails signature validation
	_, err = f.svc.Join(ctx, invitee, JoinHackathonInput{Token: "garbage"})
	assertStatus(t, err, 401)
	assert.Equal(t, "Provided token is not valid", apperrors.ToDomainError(err).Detail)

	// hackathon not started yet
	token := f.mintToken(t, hackathon.ID, invitee.Email)
	_, err = f.svc.Join(ctx, invitee, JoinHackathonInput{Token: token, RoleID: roleID})
	assertStatus(t, err, 400)

	_, err = f.svc.Start(ctx, f.creator, hackathon.ID)
	require.NoError(t, err)

	// uninvited caller cannot join even with a valid token
	stranger := f.accounts.add("stranger@example.com", "stranger")
	strangerToken := f.mintToken(t, hackathon.ID, stranger.Email)
	_, err = f.svc.Join(ctx, stranger, JoinHackathonInput{Token: strangerToken, RoleID: roleID})
	assertStatus(t, err, 400)
	assert.Equal(t, "You are not invited to this hackathon", apperrors.ToDomainError(err).Detail)

	// role is mandatory when the hackathon defines roles
	token = f.mintToken(t, hackathon.ID, invitee.Email)
	_, err = f.svc.Join(ctx, invitee, JoinHackathonInput{Token: token})
	assertStatus(t, err, 400)
	assert.Equal(t, "Role is required for this hackathon", apperrors.ToDomainError(err).Detail)

	// the failed attempts above consumed their tokens
	_, err = f.svc.Join(ctx, invitee, JoinHackathonInput{Token: token, RoleID: roleID})
	assertStatus(t, err, 400)
	assert.Equal(t, "Invite token has already been used", apperrors.ToDomainError(err).Detail)

	token = f.mintToken(t, hackathon.ID, invitee.Email)
	joined, err := f.svc.Join(ctx, invitee, JoinHackathonInput{Token: token, RoleID: roleID})
	require.NoError(t, err)
	assert.Equal(t, hackathon.ID, joined.ID)

	ok, err := f.hackathons.IsParticipant(ctx, hackathon.ID, invitee.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	// joining again with a fresh token is a no-op
	token = f.mintToken(t, hackathon.ID, invitee.Email)
	_, err = f.svc.Join(ctx, invitee, JoinHackathonInput{Token: token, RoleID: roleID})
	require.NoError(t, err)
	participants, err := f.hackathons.ListParticipants(ctx, hackathon.ID)
	require.NoError(t, err)
	assert.Len(t, participants, 1)
}

func TestHackathonInvite(t *testing.T) {
	ctx := context.Background()
	f := newHackathonFixture()
	hackathon := f.mustCreate(t, CreateHackathonInput{Name: "hack", MaxParticipants: 5})

	err := f.svc.Invite(ctx, f.creator, hackathon.ID, f.creator.Email)
	assertStatus(t, err, 400)
	assert.Equal(t, "You can't invite yourself", apperrors.ToDomainError(err).Detail)

	require.NoError(t, f.svc.Invite(ctx, f.creator, hackathon.ID, " New@B.com "))
	sends := f.notifier.sent()
	require.Len(t, sends, 1)
	assert.Equal(t, "new@b.com", sends[0].Recipients[0].Email)
	assert.Contains(t, sends[0].Data["JoinLink"], "http://front/hackathons/join?token=")

	err = f.svc.Invite(ctx, f.creator, hackathon.ID, "new@b.com")
	assertStatus(t, err, 400)
	assert.Equal(t, "This email is already invited", apperrors.ToDomainError(err).Detail)
}

func TestHackathonRemoveParticipant(t *testing.T) {
	ctx := context.Background()
	f := newHackathonFixture()
	hackathon := f.mustCreate(t, CreateHackathonInput{Name: "hack", MaxParticipants: 5})

	member := f.accounts.add("m@b.com", "m")
	_, err := f.hackathons.AddParticipant(ctx, hackathon.ID, member.ID)
	require.NoError(t, err)
	team := &domain.Team{HackathonID: hackathon.ID, CreatorID: member.ID, Name: "alpha"}
	_, err = f.teams.CreateWithVacancies(ctx, team, nil)
	require.NoError(t, err)

	err = f.svc.RemoveParticipant(ctx, f.creator, hackathon.ID, f.creator.ID)
	assertStatus(t, err, 400)
	assert.Equal(t, "You can't remove yourself", apperrors.ToDomainError(err).Detail)

	require.NoError(t, f.svc.RemoveParticipant(ctx, f.creator, hackathon.ID, member.ID))

	ok, err := f.hackathons.IsParticipant(ctx, hackathon.ID, member.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	// the team membership went with it
	_, err = f.teams.TeamForAccount(ctx, hackathon.ID, member.ID)
	require.Error(t, err)
}

func TestRemoveParticipantDeletesEmptiedTeam(t *testing.T) {
	ctx := context.Background()
	f := newHackathonFixture()
	hackathon := f.mustCreate(t, CreateHackathonInput{Name: "hack", MaxParticipants: 5})

	member := f.accounts.add("m@b.com", "m")
	_, err := f.hackathons.AddParticipant(ctx, hackathon.ID, member.ID)
	require.NoError(t, err)
	team := &domain.Team{HackathonID: hackathon.ID, CreatorID: member.ID, Name: "solo"}
	_, err = f.teams.CreateWithVacancies(ctx, team, nil)
	require.NoError(t, err)

	require.NoError(t, f.svc.RemoveParticipant(ctx, f.creator, hackathon.ID, member.ID))

	// the sole member is gone, so the team row must not survive
	_, err = f.teams.GetByID(ctx, team.ID)
	require.Error(t, err)
}

func TestRemoveParticipantTransfersTeamOwnership(t *testing.T) {
	ctx := context.Background()
	f := newHackathonFixture()
	hackathon := f.mustCreate(t, CreateHackathonInput{Name: "hack", MaxParticipants: 5})

	owner := f.accounts.add("owner@b.com", "owner")
	mate := f.accounts.add("mate@b.com", "mate")
	for _, acc := range []*domain.Account{owner, mate} {
		_, err := f.hackathons.AddParticipant(ctx, hackathon.ID, acc.ID)
		require.NoError(t, err)
	}
	team := &domain.Team{HackathonID: hackathon.ID, CreatorID: owner.ID, Name: "duo"}
	_, err := f.teams.CreateWithVacancies(ctx, team, nil)
	require.NoError(t, err)
	_, err = f.teams.AddMember(ctx, team.ID, mate.ID)
	require.NoError(t, err)

	var transferred events.TeamOwnershipTransferredPayload
	f.dispatcher.Subscribe(events.EventTeamOwnershipTransferred, func(_ context.Context, event events.Event) error {
		transferred = event.Payload.(events.TeamOwnershipTransferredPayload)
		return nil
	})

	require.NoError(t, f.svc.RemoveParticipant(ctx, f.creator, hackathon.ID, owner.ID))

	kept, err := f.teams.GetByID(ctx, team.ID)
	require.NoError(t, err)
	assert.Equal(t, mate.ID, kept.CreatorID)
	assert.Equal(t, mate.ID, transferred.NewCreator.ID)
}

func TestHackathonSummary(t *testing.T) {
	ctx := context.Background()
	f := newHackathonFixture()

	// no participants and no teams
	empty := f.mustCreate(t, CreateHackathonInput{Name: "empty", MaxParticipants: 3})
	summary, err := f.svc.Summary(ctx, empty.ID)
	require.NoError(t, err)
	assert.Equal(t, 100.0, summary.PercentWithTeam)
	assert.Equal(t, 0.0, summary.PercentFullTeams)

	hackathon := f.mustCreate(t, CreateHackathonInput{Name: "hack", MaxParticipants: 2})
	a := f.accounts.add("a@b.com", "a")
	b := f.accounts.add("b@b.com", "b")
	c := f.accounts.add("c@b.com", "c")
	d := f.accounts.add("d@b.com", "d")
	for _, acc := range []*domain.Account{a, b, c, d} {
		_, err := f.hackathons.AddParticipant(ctx, hackathon.ID, acc.ID)
		require.NoError(t, err)
	}

	full := &domain.Team{HackathonID: hackathon.ID, CreatorID: a.ID, Name: "full"}
	_, err = f.teams.CreateWithVacancies(ctx, full, nil)
	require.NoError(t, err)
	_, err = f.teams.AddMember(ctx, full.ID, b.ID)
	require.NoError(t, err)

	solo := &domain.Team{HackathonID: hackathon.ID, CreatorID: c.ID, Name: "solo"}
	_, err = f.teams.CreateWithVacancies(ctx, solo, nil)
	require.NoError(t, err)

	summary, err = f.svc.Summary(ctx, hackathon.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, summary.ParticipantCount)
	assert.Equal(t, 2, summary.TeamCount)
	assert.Equal(t, 75.0, summary.PercentWithTeam)
	assert.Equal(t, 50.0, summary.PercentFullTeams)
}

func TestImportInviteCSV(t *testing.T) {
	ctx := context.Background()
	f := newHackathonFixture()
	hackathon := f.mustCreate(t, CreateHackathonInput{Name: "hack", MaxParticipants: 5})

	input := "\ufeffA@B.com,Alice\n\nnot-an-email\nc@d.com\na@b.com,dup\n"
	result, err := f.svc.ImportInviteCSV(ctx, f.creator, hackathon.ID, strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, 3, result.Total)
	assert.Equal(t, 2, result.Added)

	invited, err := f.hackathons.ListInvitedEmails(ctx, hackathon.ID)
	require.NoError(t, err)
	assert.Len(t, invited, 2)
}

func TestExportRosterCSV(t *testing.T) {
	ctx := context.Background()
	f := newHackathonFixture()
	hackathon := f.mustCreate(t, CreateHackathonInput{Name: "hack", MaxParticipants: 5, Roles: []string{"backend"}})

	a := f.accounts.add("a@b.com", "Alice")
	b := f.accounts.add("b@b.com", "Bob")
	c := f.accounts.add("c@b.com", "Carol")
	free := f.accounts.add("free@b.com", "Free")
	for _, acc := range []*domain.Account{a, b, c, free} {
		_, err := f.hackathons.AddParticipant(ctx, hackathon.ID, acc.ID)
		require.NoError(t, err)
	}

	roles, err := f.hackathons.ListRoles(ctx, hackathon.ID)
	require.NoError(t, err)
	require.NoError(t, f.hackathons.AssignRole(ctx, roles[0].ID, hackathon.ID, a.ID))
	require.NoError(t, f.resumes.Create(ctx, &domain.Resume{
		UserID: a.ID, HackathonID: hackathon.ID, GitHub: "https://github.com/alice",
	}))

	alpha := &domain.Team{HackathonID: hackathon.ID, CreatorID: a.ID, Name: "alpha"}
	_, err = f.teams.CreateWithVacancies(ctx, alpha, nil)
	require.NoError(t, err)
	_, err = f.teams.AddMember(ctx, alpha.ID, b.ID)
	require.NoError(t, err)

	beta := &domain.Team{HackathonID: hackathon.ID, CreatorID: c.ID, Name: "beta"}
	_, err = f.teams.CreateWithVacancies(ctx, beta, nil)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, f.svc.ExportRosterCSV(ctx, f.creator, hackathon.ID, &buf))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 5)
	assert.Equal(t, []string{"Team", "Email", "Full Name", "GitHub", "Role"}, rows[0])

	byEmail := map[string][]string{}
	for _, row := range rows[1:] {
		byEmail[row[1]] = row
	}
	assert.Equal(t, []string{"alpha", "a@b.com", "Alice", "https://github.com/alice", "backend"}, byEmail["a@b.com"])
	assert.Equal(t, []string{"alpha", "b@b.com", "Bob", "N/A", "N/A"}, byEmail["b@b.com"])
	assert.Equal(t, []string{"beta", "c@b.com", "Carol", "N/A", "N/A"}, byEmail["c@b.com"])
	assert.Equal(t, []string{"No Team", "free@b.com", "Free", "N/A", "N/A"}, byEmail["free@b.com"])
}
