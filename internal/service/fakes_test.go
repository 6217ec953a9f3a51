package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/megazord/team-search/internal/domain"
	"github.com/megazord/team-search/internal/notify"
	"github.com/megazord/team-search/internal/repository"
)

type idSeq struct {
	mu sync.Mutex
	n  int
}

func (s *idSeq) next(prefix string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	return fmt.Sprintf("%s-%d", prefix, s.n)
}

var ids idSeq

type fakeAccounts struct {
	accounts map[string]*domain.Account
}

func newFakeAccounts() *fakeAccounts {
	return &fakeAccounts{accounts: make(map[string]*domain.Account)}
}

func (f *fakeAccounts) add(email, username string) *domain.Account {
	account := &domain.Account{
		ID:        ids.next("acc"),
		Email:     email,
		Username:  username,
		IsActive:  true,
		CreatedAt: time.Now(),
	}
	f.accounts[account.ID] = account
	return account
}

func (f *fakeAccounts) Create(_ context.Context, account *domain.Account) error {
	for _, existing := range f.accounts {
		if existing.Email == account.Email {
			return fmt.Errorf("duplicate email %s", account.Email)
		}
	}
	account.ID = ids.next("acc")
	account.CreatedAt = time.Now()
	account.UpdatedAt = account.CreatedAt
	copied := *account
	f.accounts[account.ID] = &copied
	return nil
}

func (f *fakeAccounts) Update(_ context.Context, account *domain.Account) error {
	if _, ok := f.accounts[account.ID]; !ok {
		return pgx.ErrNoRows
	}
	copied := *account
	f.accounts[account.ID] = &copied
	return nil
}

func (f *fakeAccounts) GetByID(_ context.Context, id string) (*domain.Account, error) {
	account, ok := f.accounts[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *account
	return &copied, nil
}

func (f *fakeAccounts) GetByEmail(_ context.Context, email string) (*domain.Account, error) {
	for _, account := range f.accounts {
		if account.Email == email {
			copied := *account
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

type fakeCodes struct {
	codes map[string]domain.ConfirmationCode
}

func newFakeCodes() *fakeCodes {
	return &fakeCodes{codes: make(map[string]domain.ConfirmationCode)}
}

func (f *fakeCodes) Upsert(_ context.Context, code *domain.ConfirmationCode) error {
	f.codes[code.AccountID] = *code
	return nil
}

func (f *fakeCodes) Get(_ context.Context, accountID string) (*domain.ConfirmationCode, error) {
	code, ok := f.codes[accountID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &code, nil
}

func (f *fakeCodes) Delete(_ context.Context, accountID string) error {
	delete(f.codes, accountID)
	return nil
}

type fakeResets struct {
	tokens map[string]*repository.PasswordResetToken
}

func newFakeResets() *fakeResets {
	return &fakeResets{tokens: make(map[string]*repository.PasswordResetToken)}
}

func (f *fakeResets) Create(_ context.Context, token *repository.PasswordResetToken) error {
	token.ID = ids.next("reset")
	token.CreatedAt = time.Now()
	copied := *token
	f.tokens[token.Token] = &copied
	return nil
}

func (f *fakeResets) GetByToken(_ context.Context, tokenStr string) (*repository.PasswordResetToken, error) {
	token, ok := f.tokens[tokenStr]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *token
	return &copied, nil
}

func (f *fakeResets) MarkUsed(_ context.Context, id string) error {
	now := time.Now()
	for _, token := range f.tokens {
		if token.ID == id {
			token.UsedAt = &now
			return nil
		}
	}
	return pgx.ErrNoRows
}

type fakeHackathons struct {
	accounts     *fakeAccounts
	hackathons   map[string]*domain.Hackathon
	invited      map[string][]string
	participants map[string][]string
	roles        map[string][]domain.Role
	assignments  map[string]map[string]string // hackathonID -> accountID -> roleID
}

func newFakeHackathons(accounts *fakeAccounts) *fakeHackathons {
	return &fakeHackathons{
		accounts:     accounts,
		hackathons:   make(map[string]*domain.Hackathon),
		invited:      make(map[string][]string),
		participants: make(map[string][]string),
		roles:        make(map[string][]domain.Role),
		assignments:  make(map[string]map[string]string),
	}
}

func (f *fakeHackathons) Create(ctx context.Context, hackathon *domain.Hackathon, roles []string, inviteEmails []string) error {
	hackathon.ID = ids.next("hack")
	hackathon.CreatedAt = time.Now()
	hackathon.UpdatedAt = hackathon.CreatedAt
	copied := *hackathon
	f.hackathons[hackathon.ID] = &copied
	for _, name := range roles {
		f.roles[hackathon.ID] = append(f.roles[hackathon.ID], domain.Role{
			ID:          ids.next("role"),
			HackathonID: hackathon.ID,
			Name:        name,
		})
	}
	for _, address := range inviteEmails {
		_, _ = f.InviteEmail(ctx, hackathon.ID, address)
	}
	return nil
}

func (f *fakeHackathons) Update(_ context.Context, hackathon *domain.Hackathon) error {
	if _, ok := f.hackathons[hackathon.ID]; !ok {
		return pgx.ErrNoRows
	}
	copied := *hackathon
	f.hackathons[hackathon.ID] = &copied
	return nil
}

func (f *fakeHackathons) SetStatus(_ context.Context, id string, status domain.HackathonStatus) error {
	hackathon, ok := f.hackathons[id]
	if !ok {
		return pgx.ErrNoRows
	}
	hackathon.Status = status
	return nil
}

func (f *fakeHackathons) GetByID(_ context.Context, id string) (*domain.Hackathon, error) {
	hackathon, ok := f.hackathons[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *hackathon
	return &copied, nil
}

func (f *fakeHackathons) List(_ context.Context) ([]domain.Hackathon, error) {
	result := make([]domain.Hackathon, 0, len(f.hackathons))
	for _, hackathon := range f.hackathons {
		result = append(result, *hackathon)
	}
	return result, nil
}

func (f *fakeHackathons) ListForAccount(ctx context.Context, accountID string) ([]domain.Hackathon, error) {
	var result []domain.Hackathon
	for id, hackathon := range f.hackathons {
		if hackathon.CreatorID == accountID {
			result = append(result, *hackathon)
			continue
		}
		for _, pid := range f.participants[id] {
			if pid == accountID {
				result = append(result, *hackathon)
				break
			}
		}
	}
	return result, nil
}

func (f *fakeHackathons) InviteEmail(_ context.Context, hackathonID, address string) (bool, error) {
	for _, existing := range f.invited[hackathonID] {
		if existing == address {
			return false, nil
		}
	}
	f.invited[hackathonID] = append(f.invited[hackathonID], address)
	return true, nil
}

func (f *fakeHackathons) ListInvitedEmails(_ context.Context, hackathonID string) ([]domain.Email, error) {
	emails := make([]domain.Email, 0, len(f.invited[hackathonID]))
	for _, address := range f.invited[hackathonID] {
		emails = append(emails, domain.Email{ID: address, Address: address})
	}
	return emails, nil
}

func (f *fakeHackathons) IsInvited(_ context.Context, hackathonID, address string) (bool, error) {
	for _, existing := range f.invited[hackathonID] {
		if existing == address {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeHackathons) AddParticipant(_ context.Context, hackathonID, accountID string) (bool, error) {
	for _, existing := range f.participants[hackathonID] {
		if existing == accountID {
			return false, nil
		}
	}
	f.participants[hackathonID] = append(f.participants[hackathonID], accountID)
	return true, nil
}

func (f *fakeHackathons) RemoveParticipant(_ context.Context, hackathonID, accountID string) error {
	kept := f.participants[hackathonID][:0]
	for _, existing := range f.participants[hackathonID] {
		if existing != accountID {
			kept = append(kept, existing)
		}
	}
	f.participants[hackathonID] = kept
	return nil
}

func (f *fakeHackathons) ListParticipants(ctx context.Context, hackathonID string) ([]domain.Account, error) {
	result := make([]domain.Account, 0, len(f.participants[hackathonID]))
	for _, accountID := range f.participants[hackathonID] {
		account, err := f.accounts.GetByID(ctx, accountID)
		if err != nil {
			return nil, err
		}
		result = append(result, *account)
	}
	return result, nil
}

func (f *fakeHackathons) IsParticipant(_ context.Context, hackathonID, accountID string) (bool, error) {
	for _, existing := range f.participants[hackathonID] {
		if existing == accountID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeHackathons) ListRoles(_ context.Context, hackathonID string) ([]domain.Role, error) {
	return f.roles[hackathonID], nil
}

func (f *fakeHackathons) GetRole(_ context.Context, roleID string) (*domain.Role, error) {
	for _, roles := range f.roles {
		for _, role := range roles {
			if role.ID == roleID {
				copied := role
				return &copied, nil
			}
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeHackathons) AssignRole(_ context.Context, roleID, hackathonID, accountID string) error {
	if f.assignments[hackathonID] == nil {
		f.assignments[hackathonID] = make(map[string]string)
	}
	f.assignments[hackathonID][accountID] = roleID
	return nil
}

func (f *fakeHackathons) RoleNamesByAccount(ctx context.Context, hackathonID string) (map[string]string, error) {
	names := make(map[string]string)
	for accountID, roleID := range f.assignments[hackathonID] {
		role, err := f.GetRole(ctx, roleID)
		if err != nil {
			return nil, err
		}
		names[accountID] = role.Name
	}
	return names, nil
}

type fakeTeams struct {
	accounts  *fakeAccounts
	teams     map[string]*domain.Team
	members   map[string][]string
	vacancies *fakeVacancies
}

func newFakeTeams(accounts *fakeAccounts) *fakeTeams {
	return &fakeTeams{
		accounts: accounts,
		teams:    make(map[string]*domain.Team),
		members:  make(map[string][]string),
	}
}

func (f *fakeTeams) CreateWithVacancies(ctx context.Context, team *domain.Team, vacancies []domain.Vacancy) ([]domain.Vacancy, error) {
	team.ID = ids.next("team")
	team.CreatedAt = time.Now()
	copied := *team
	f.teams[team.ID] = &copied
	f.members[team.ID] = []string{team.CreatorID}

	created := make([]domain.Vacancy, 0, len(vacancies))
	for _, vacancy := range vacancies {
		vacancy.ID = ids.next("vac")
		vacancy.TeamID = team.ID
		if f.vacancies != nil {
			f.vacancies.put(vacancy)
		}
		created = append(created, vacancy)
	}
	return created, nil
}

func (f *fakeTeams) Rename(_ context.Context, teamID, name string) error {
	team, ok := f.teams[teamID]
	if !ok {
		return pgx.ErrNoRows
	}
	team.Name = name
	return nil
}

func (f *fakeTeams) ReplaceVacancies(_ context.Context, teamID string, vacancies []domain.Vacancy) ([]domain.Vacancy, error) {
	if f.vacancies != nil {
		f.vacancies.deleteByTeam(teamID)
	}
	created := make([]domain.Vacancy, 0, len(vacancies))
	for _, vacancy := range vacancies {
		vacancy.ID = ids.next("vac")
		vacancy.TeamID = teamID
		if f.vacancies != nil {
			f.vacancies.put(vacancy)
		}
		created = append(created, vacancy)
	}
	return created, nil
}

func (f *fakeTeams) Delete(_ context.Context, teamID string) error {
	delete(f.teams, teamID)
	delete(f.members, teamID)
	if f.vacancies != nil {
		f.vacancies.deleteByTeam(teamID)
	}
	return nil
}

func (f *fakeTeams) GetByID(_ context.Context, id string) (*domain.Team, error) {
	team, ok := f.teams[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *team
	return &copied, nil
}

func (f *fakeTeams) ListByHackathon(_ context.Context, hackathonID string) ([]domain.Team, error) {
	var result []domain.Team
	for _, team := range f.teams {
		if team.HackathonID == hackathonID {
			result = append(result, *team)
		}
	}
	return result, nil
}

func (f *fakeTeams) AddMember(_ context.Context, teamID, accountID string) (bool, error) {
	for _, existing := range f.members[teamID] {
		if existing == accountID {
			return false, nil
		}
	}
	f.members[teamID] = append(f.members[teamID], accountID)
	return true, nil
}

func (f *fakeTeams) RemoveMember(_ context.Context, teamID, accountID string) error {
	kept := f.members[teamID][:0]
	for _, existing := range f.members[teamID] {
		if existing != accountID {
			kept = append(kept, existing)
		}
	}
	f.members[teamID] = kept
	return nil
}

func (f *fakeTeams) ListMembers(ctx context.Context, teamID string) ([]domain.Account, error) {
	result := make([]domain.Account, 0, len(f.members[teamID]))
	for _, accountID := range f.members[teamID] {
		account, err := f.accounts.GetByID(ctx, accountID)
		if err != nil {
			return nil, err
		}
		result = append(result, *account)
	}
	return result, nil
}

func (f *fakeTeams) CountMembers(_ context.Context, teamID string) (int, error) {
	return len(f.members[teamID]), nil
}

func (f *fakeTeams) TeamForAccount(_ context.Context, hackathonID, accountID string) (*domain.Team, error) {
	for teamID, members := range f.members {
		team, ok := f.teams[teamID]
		if !ok || team.HackathonID != hackathonID {
			continue
		}
		for _, member := range members {
			if member == accountID {
				copied := *team
				return &copied, nil
			}
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeTeams) SetCreator(_ context.Context, teamID, accountID string) error {
	team, ok := f.teams[teamID]
	if !ok {
		return pgx.ErrNoRows
	}
	team.CreatorID = accountID
	return nil
}

type fakeVacancies struct {
	vacancies map[string]domain.Vacancy
	applies   map[string]domain.Apply
}

func newFakeVacancies() *fakeVacancies {
	return &fakeVacancies{
		vacancies: make(map[string]domain.Vacancy),
		applies:   make(map[string]domain.Apply),
	}
}

func (f *fakeVacancies) put(vacancy domain.Vacancy) {
	f.vacancies[vacancy.ID] = vacancy
}

func (f *fakeVacancies) deleteByTeam(teamID string) {
	for id, vacancy := range f.vacancies {
		if vacancy.TeamID == teamID {
			delete(f.vacancies, id)
		}
	}
}

func (f *fakeVacancies) GetByID(_ context.Context, id string) (*domain.Vacancy, error) {
	vacancy, ok := f.vacancies[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &vacancy, nil
}

func (f *fakeVacancies) ListByTeam(_ context.Context, teamID string) ([]domain.Vacancy, error) {
	var result []domain.Vacancy
	for _, vacancy := range f.vacancies {
		if vacancy.TeamID == teamID {
			result = append(result, vacancy)
		}
	}
	return result, nil
}

func (f *fakeVacancies) ListByHackathon(_ context.Context, _ string) ([]domain.Vacancy, error) {
	result := make([]domain.Vacancy, 0, len(f.vacancies))
	for _, vacancy := range f.vacancies {
		result = append(result, vacancy)
	}
	return result, nil
}

func (f *fakeVacancies) CreateApply(_ context.Context, apply *domain.Apply) error {
	apply.ID = ids.next("apply")
	apply.CreatedAt = time.Now()
	f.applies[apply.ID] = *apply
	return nil
}

func (f *fakeVacancies) GetApply(_ context.Context, id string) (*domain.Apply, error) {
	apply, ok := f.applies[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &apply, nil
}

func (f *fakeVacancies) DeleteApply(_ context.Context, id string) error {
	delete(f.applies, id)
	return nil
}

func (f *fakeVacancies) DeleteAppliesForApplicant(_ context.Context, teamID, applicantID string) error {
	for id, apply := range f.applies {
		if apply.TeamID == teamID && apply.ApplicantID == applicantID {
			delete(f.applies, id)
		}
	}
	return nil
}

func (f *fakeVacancies) ListAppliesByTeam(_ context.Context, teamID string) ([]domain.Apply, error) {
	var result []domain.Apply
	for _, apply := range f.applies {
		if apply.TeamID == teamID {
			result = append(result, apply)
		}
	}
	return result, nil
}

type fakeResumes struct {
	resumes  map[string]*domain.Resume
	projects map[string][]domain.Project
}

func newFakeResumes() *fakeResumes {
	return &fakeResumes{
		resumes:  make(map[string]*domain.Resume),
		projects: make(map[string][]domain.Project),
	}
}

func (f *fakeResumes) Create(_ context.Context, resume *domain.Resume) error {
	for _, existing := range f.resumes {
		if existing.UserID == resume.UserID && existing.HackathonID == resume.HackathonID {
			return fmt.Errorf("duplicate resume")
		}
	}
	resume.ID = ids.next("resume")
	resume.CreatedAt = time.Now()
	copied := *resume
	f.resumes[resume.ID] = &copied
	return nil
}

func (f *fakeResumes) Update(_ context.Context, resume *domain.Resume) error {
	if _, ok := f.resumes[resume.ID]; !ok {
		return pgx.ErrNoRows
	}
	copied := *resume
	f.resumes[resume.ID] = &copied
	return nil
}

func (f *fakeResumes) GetByID(_ context.Context, id string) (*domain.Resume, error) {
	resume, ok := f.resumes[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *resume
	return &copied, nil
}

func (f *fakeResumes) GetByUserAndHackathon(_ context.Context, userID, hackathonID string) (*domain.Resume, error) {
	for _, resume := range f.resumes {
		if resume.UserID == userID && resume.HackathonID == hackathonID {
			copied := *resume
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeResumes) GitHubLinksByUser(_ context.Context, hackathonID string) (map[string]string, error) {
	links := make(map[string]string)
	for _, resume := range f.resumes {
		if resume.HackathonID == hackathonID && resume.GitHub != "" {
			links[resume.UserID] = resume.GitHub
		}
	}
	return links, nil
}

func (f *fakeResumes) CreateProject(_ context.Context, project *domain.Project) error {
	project.ID = ids.next("proj")
	project.CreatedAt = time.Now()
	f.projects[project.ResumeID] = append(f.projects[project.ResumeID], *project)
	return nil
}

func (f *fakeResumes) ListProjects(_ context.Context, resumeID string) ([]domain.Project, error) {
	return f.projects[resumeID], nil
}

type fakeInvites struct {
	tokens map[string]*domain.InviteToken
}

func newFakeInvites() *fakeInvites {
	return &fakeInvites{tokens: make(map[string]*domain.InviteToken)}
}

func (f *fakeInvites) Create(_ context.Context, token *domain.InviteToken) error {
	token.ID = ids.next("invite")
	token.CreatedAt = time.Now()
	copied := *token
	f.tokens[token.Token] = &copied
	return nil
}

func (f *fakeInvites) Claim(_ context.Context, tokenStr string) (*domain.InviteToken, error) {
	token, ok := f.tokens[tokenStr]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	if !token.IsActive {
		return nil, repository.ErrTokenInactive
	}
	token.IsActive = false
	copied := *token
	copied.IsActive = false
	return &copied, nil
}

type fakeNotifier struct {
	mu    sync.Mutex
	sends []notify.SendInput
	err   error
}

func (f *fakeNotifier) Send(_ context.Context, input notify.SendInput) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sends = append(f.sends, input)
	return nil
}

func (f *fakeNotifier) sent() []notify.SendInput {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]notify.SendInput(nil), f.sends...)
}
