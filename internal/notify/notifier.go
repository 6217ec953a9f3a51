package notify

import (
	"context"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/megazord/team-search/internal/domain"
	"github.com/megazord/team-search/internal/repository"
)

// Recipient is a notification target. Account is optional; when nil the
// notifier resolves it by email so Telegram delivery and template data
// still work for addresses that belong to registered users.
type Recipient struct {
	Email   string
	Account *domain.Account
}

// RecipientsFromAccounts adapts a slice of accounts.
func RecipientsFromAccounts(accounts []domain.Account) []Recipient {
	recipients := make([]Recipient, 0, len(accounts))
	for i := range accounts {
		recipients = append(recipients, Recipient{Email: accounts[i].Email, Account: &accounts[i]})
	}
	return recipients
}

// RecipientFromAccount adapts a single account.
func RecipientFromAccount(account domain.Account) []Recipient {
	return []Recipient{{Email: account.Email, Account: &account}}
}

// RecipientsFromAddresses adapts bare email addresses.
func RecipientsFromAddresses(addresses []string) []Recipient {
	recipients := make([]Recipient, 0, len(addresses))
	for _, addr := range addresses {
		recipients = append(recipients, Recipient{Email: addr})
	}
	return recipients
}

// SendInput describes one fan-out. At least one of Mail and Telegram
// must be set; a nil channel template skips that channel and the skip
// does not count as a failure.
type SendInput struct {
	Recipients []Recipient
	Mail       *Template
	Telegram   *Template
	Data       map[string]any
}

var (
	ErrNoRecipients = errors.New("recipients have not been passed")
	ErrNoTemplates  = errors.New("templates have not been passed")
)

// Notifier fans a notification out to recipients. Each recipient is
// processed independently: one failed address never aborts the rest,
// and each delivery outcome lands in the notification status ledger.
type Notifier struct {
	accounts    repository.AccountRepository
	statuses    repository.NotificationStatusRepository
	mailer      Mailer
	telegram    TelegramSender
	logger      *zap.Logger
	concurrency int
}

// NewNotifier constructs a Notifier with the given fan-out width.
func NewNotifier(
	accounts repository.AccountRepository,
	statuses repository.NotificationStatusRepository,
	mailer Mailer,
	telegram TelegramSender,
	logger *zap.Logger,
	concurrency int,
) *Notifier {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &Notifier{
		accounts:    accounts,
		statuses:    statuses,
		mailer:      mailer,
		telegram:    telegram,
		logger:      logger,
		concurrency: concurrency,
	}
}

// Send delivers the notification to every recipient, at most
// concurrency recipients in flight at once. It returns an error only
// for invalid input; delivery failures are recorded per recipient.
func (n *Notifier) Send(ctx context.Context, input SendInput) error {
	if len(input.Recipients) == 0 {
		return ErrNoRecipients
	}
	if input.Mail == nil && input.Telegram == nil {
		return ErrNoTemplates
	}

	g := new(errgroup.Group)
	g.SetLimit(n.concurrency)
	for _, recipient := range input.Recipients {
		recipient := recipient
		g.Go(func() error {
			n.sendOne(ctx, recipient, input)
			return nil
		})
	}
	return g.Wait()
}

func (n *Notifier) sendOne(ctx context.Context, recipient Recipient, input SendInput) {
	account := recipient.Account
	if account == nil {
		found, err := n.accounts.GetByEmail(ctx, recipient.Email)
		switch {
		case err == nil:
			account = found
		case !errors.Is(err, pgx.ErrNoRows):
			n.logger.Warn("account lookup failed for notification",
				zap.String("email", recipient.Email), zap.Error(err))
		}
	}

	data := make(map[string]any, len(input.Data)+2)
	for k, v := range input.Data {
		data[k] = v
	}
	data["Email"] = recipient.Email
	if account != nil {
		data["CurrentUser"] = account
		data["Username"] = account.Username
	}

	emailSent := true
	if input.Mail != nil {
		emailSent = n.sendMail(ctx, recipient.Email, input.Mail, data)
	}

	telegramSent := true
	if input.Telegram != nil && account != nil && account.TelegramID != nil {
		telegramSent = n.sendTelegram(ctx, *account.TelegramID, input.Telegram, data)
	}

	if err := n.statuses.Record(ctx, recipient.Email, emailSent, telegramSent); err != nil {
		n.logger.Error("failed to record notification status",
			zap.String("email", recipient.Email), zap.Error(err))
	}
}

func (n *Notifier) sendMail(ctx context.Context, to string, tmpl *Template, data map[string]any) bool {
	subject, body, err := tmpl.Render(data)
	if err != nil {
		n.logger.Error("failed to render mail template",
			zap.String("template", tmpl.Name()), zap.Error(err))
		return false
	}
	if err := n.mailer.Send(ctx, to, subject, body); err != nil {
		n.logger.Warn("failed to send email",
			zap.String("to", to), zap.String("template", tmpl.Name()), zap.Error(err))
		return false
	}
	return true
}

func (n *Notifier) sendTelegram(ctx context.Context, telegramID string, tmpl *Template, data map[string]any) bool {
	chatID, err := strconv.ParseInt(telegramID, 10, 64)
	if err != nil {
		n.logger.Warn("invalid telegram id on account", zap.String("telegram_id", telegramID))
		return true
	}

	_, body, err := tmpl.Render(data)
	if err != nil {
		n.logger.Error("failed to render telegram template",
			zap.String("template", tmpl.Name()), zap.Error(err))
		return false
	}
	if err := n.telegram.Send(ctx, chatID, body); err != nil {
		n.logger.Warn("failed to send telegram message",
			zap.Int64("chat_id", chatID), zap.String("template", tmpl.Name()), zap.Error(err))
		return false
	}
	return true
}
