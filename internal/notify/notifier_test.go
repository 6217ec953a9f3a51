package notify

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/megazord/team-search/internal/domain"
)

type stubAccounts struct {
	byEmail map[string]*domain.Account
}

func (s *stubAccounts) Create(context.Context, *domain.Account) error { return nil }
func (s *stubAccounts) Update(context.Context, *domain.Account) error { return nil }
func (s *stubAccounts) GetByID(context.Context, string) (*domain.Account, error) {
	return nil, pgx.ErrNoRows
}

func (s *stubAccounts) GetByEmail(_ context.Context, email string) (*domain.Account, error) {
	account, ok := s.byEmail[email]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return account, nil
}

type stubStatuses struct {
	mu   sync.Mutex
	rows map[string]domain.NotificationStatus
}

func newStubStatuses() *stubStatuses {
	return &stubStatuses{rows: make(map[string]domain.NotificationStatus)}
}

func (s *stubStatuses) Record(_ context.Context, email string, emailSent, telegramSent bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if emailSent && telegramSent {
		delete(s.rows, email)
		return nil
	}
	s.rows[email] = domain.NotificationStatus{Email: email, EmailSent: emailSent, TelegramSent: telegramSent}
	return nil
}

func (s *stubStatuses) GetByEmail(_ context.Context, email string) (*domain.NotificationStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.rows[email]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &row, nil
}

type stubMailer struct {
	mu     sync.Mutex
	sent   []string
	failTo string
}

func (m *stubMailer) Send(_ context.Context, to, _, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if to == m.failTo {
		return errors.New("smtp refused")
	}
	m.sent = append(m.sent, to)
	return nil
}

type stubTelegram struct {
	mu   sync.Mutex
	sent []int64
	fail bool
}

func (t *stubTelegram) Send(_ context.Context, chatID int64, _ string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.fail {
		return errors.New("telegram down")
	}
	t.sent = append(t.sent, chatID)
	return nil
}

func TestSendRecordsPerRecipientOutcome(t *testing.T) {
	ctx := context.Background()

	chatID := "42"
	failing := &domain.Account{ID: "acc-2", Email: "fail@b.com", Username: "fail", TelegramID: &chatID}
	accounts := &stubAccounts{byEmail: map[string]*domain.Account{
		"fail@b.com": failing,
	}}
	statuses := newStubStatuses()
	mailer := &stubMailer{failTo: "fail@b.com"}
	telegram := &stubTelegram{}

	notifier := NewNotifier(accounts, statuses, mailer, telegram, zap.NewNop(), 4)

	err := notifier.Send(ctx, SendInput{
		Recipients: RecipientsFromAddresses([]string{"ok@b.com", "fail@b.com", "also-ok@b.com"}),
		Mail:       TemplateHackathonInvite,
		Telegram:   TemplateHackathonInvite,
		Data:       map[string]any{"HackathonName": "hack", "JoinLink": "http://front/join"},
	})
	require.NoError(t, err)

	// the failing address keeps a ledger row with the exact outcome
	row, err := statuses.GetByEmail(ctx, "fail@b.com")
	require.NoError(t, err)
	assert.False(t, row.EmailSent)
	assert.True(t, row.TelegramSent)

	// fully delivered recipients leave no row behind
	_, err = statuses.GetByEmail(ctx, "ok@b.com")
	assert.ErrorIs(t, err, pgx.ErrNoRows)
	_, err = statuses.GetByEmail(ctx, "also-ok@b.com")
	assert.ErrorIs(t, err, pgx.ErrNoRows)

	assert.ElementsMatch(t, []string{"ok@b.com", "also-ok@b.com"}, mailer.sent)
	assert.Equal(t, []int64{42}, telegram.sent)
}

func TestSendValidatesInput(t *testing.T) {
	notifier := NewNotifier(&stubAccounts{}, newStubStatuses(), &stubMailer{}, &stubTelegram{}, zap.NewNop(), 1)

	err := notifier.Send(context.Background(), SendInput{Mail: TemplateHackathonInvite})
	assert.ErrorIs(t, err, ErrNoRecipients)

	err = notifier.Send(context.Background(), SendInput{
		Recipients: RecipientsFromAddresses([]string{"a@b.com"}),
	})
	assert.ErrorIs(t, err, ErrNoTemplates)
}

func TestSendSkipsTelegramWithoutChatID(t *testing.T) {
	ctx := context.Background()
	statuses := newStubStatuses()
	telegram := &stubTelegram{fail: true}

	// recipient has no account at all, so the broken sender is never hit
	notifier := NewNotifier(&stubAccounts{}, statuses, &stubMailer{}, telegram, zap.NewNop(), 1)
	err := notifier.Send(ctx, SendInput{
		Recipients: RecipientsFromAddresses([]string{"ghost@b.com"}),
		Mail:       TemplateHackathonInvite,
		Telegram:   TemplateHackathonInvite,
		Data:       map[string]any{"HackathonName": "hack", "JoinLink": "x"},
	})
	require.NoError(t, err)

	_, err = statuses.GetByEmail(ctx, "ghost@b.com")
	assert.ErrorIs(t, err, pgx.ErrNoRows)
}

func TestSendTreatsBadTelegramIDAsSkipped(t *testing.T) {
	ctx := context.Background()
	badID := "not-a-number"
	account := &domain.Account{ID: "acc-1", Email: "a@b.com", Username: "a", TelegramID: &badID}
	statuses := newStubStatuses()

	notifier := NewNotifier(&stubAccounts{}, statuses, &stubMailer{}, &stubTelegram{fail: true}, zap.NewNop(), 1)
	err := notifier.Send(ctx, SendInput{
		Recipients: RecipientFromAccount(*account),
		Mail:       TemplateHackathonInvite,
		Telegram:   TemplateHackathonInvite,
		Data:       map[string]any{"HackathonName": "hack", "JoinLink": "x"},
	})
	require.NoError(t, err)

	// an unparsable chat id is not a delivery failure
	_, err = statuses.GetByEmail(ctx, "a@b.com")
	assert.ErrorIs(t, err, pgx.ErrNoRows)
}
