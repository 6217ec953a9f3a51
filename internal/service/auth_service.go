package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/megazord/team-search/internal/auth"
	"github.com/megazord/team-search/internal/config"
	"github.com/megazord/team-search/internal/domain"
	"github.com/megazord/team-search/internal/notify"
	"github.com/megazord/team-search/internal/repository"
	apperrors "github.com/megazord/team-search/pkg/util"
)

// SignupInput carries the fields accepted at registration.
type SignupInput struct {
	Email       string
	Username    string
	Password    string
	IsOrganizer bool
}

// Session is an issued access token with its expiry.
type Session struct {
	Token     string         `json:"token"`
	ExpiresAt time.Time      `json:"expires_at"`
	Account   domain.Account `json:"account"`
}

// AuthService owns signup, activation, signin and password reset.
type AuthService struct {
	accounts repository.AccountRepository
	codes    repository.ConfirmationCodeRepository
	resets   repository.PasswordResetRepository
	tokens   *auth.TokenManager
	notifier NotificationSender
	authCfg  config.AuthConfig
	frontend string
	logger   *zap.Logger
}

// NewAuthService constructs an AuthService.
func NewAuthService(
	accounts repository.AccountRepository,
	codes repository.ConfirmationCodeRepository,
	resets repository.PasswordResetRepository,
	tokens *auth.TokenManager,
	notifier NotificationSender,
	authCfg config.AuthConfig,
	frontendURL string,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		accounts: accounts,
		codes:    codes,
		resets:   resets,
		tokens:   tokens,
		notifier: notifier,
		authCfg:  authCfg,
		frontend: frontendURL,
		logger:   logger,
	}
}

// Signup registers an inactive account and mails a confirmation code.
func (s *AuthService) Signup(ctx context.Context, input SignupInput) (*domain.Account, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, apperrors.NewValidationError("A valid email is required")
	}
	if strings.TrimSpace(input.Username) == "" {
		return nil, apperrors.NewValidationError("Username is required")
	}
	if len(input.Password) < 8 {
		return nil, apperrors.NewValidationError("Password must be at least 8 characters")
	}

	hash, err := auth.HashPassword(input.Password, s.authCfg.BcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	account := &domain.Account{
		Email:        email,
		Username:     strings.TrimSpace(input.Username),
		PasswordHash: hash,
		IsOrganizer:  input.IsOrganizer,
		IsActive:     false,
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		return nil, apperrors.MapError(err)
	}

	if err := s.issueConfirmationCode(ctx, account); err != nil {
		return nil, err
	}
	return account, nil
}

// ResendCode regenerates the confirmation code for a not-yet-active
// account, invalidating any previous one.
func (s *AuthService) ResendCode(ctx context.Context, email string) error {
	account, err := s.accounts.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return apperrors.MapError(err)
	}
	if account.IsActive {
		return apperrors.NewBadRequest("Account is already activated")
	}
	return s.issueConfirmationCode(ctx, account)
}

// Activate consumes a confirmation code. The stored code is deleted
// whether or not the attempt succeeds, so a wrong guess burns it.
func (s *AuthService) Activate(ctx context.Context, email, code string) (*Session, error) {
	account, err := s.accounts.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	stored, err := s.codes.Get(ctx, account.ID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewBadRequest("Confirmation code is not valid")
		}
		return nil, apperrors.MapError(err)
	}
	if err := s.codes.Delete(ctx, account.ID); err != nil {
		return nil, apperrors.MapError(err)
	}
	if stored.Code != code || time.Now().After(stored.ExpiresAt) {
		return nil, apperrors.NewBadRequest("Confirmation code is not valid")
	}

	account.IsActive = true
	if err := s.accounts.Update(ctx, account); err != nil {
		return nil, apperrors.MapError(err)
	}
	return s.newSession(account)
}

// Signin checks the credentials and issues a session. All failure modes
// share one message so callers cannot probe which part was wrong.
func (s *AuthService) Signin(ctx context.Context, email, password string) (*Session, error) {
	account, err := s.accounts.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewUnauthorized("Invalid login credentials")
		}
		return nil, apperrors.MapError(err)
	}
	if !account.IsActive {
		return nil, apperrors.NewUnauthorized("Invalid login credentials")
	}
	if err := auth.ComparePassword(account.PasswordHash, password); err != nil {
		return nil, apperrors.NewUnauthorized("Invalid login credentials")
	}
	return s.newSession(account)
}

// RequestPasswordReset mails a reset link. Unknown addresses are
// acknowledged silently so the endpoint does not enumerate accounts.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	account, err := s.accounts.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			s.logger.Info("password reset requested for unknown email")
			return nil
		}
		return apperrors.MapError(err)
	}

	token := &repository.PasswordResetToken{
		AccountID: account.ID,
		Token:     uuid.NewString(),
		ExpiresAt: time.Now().Add(time.Duration(s.authCfg.PasswordResetTTLMinutes) * time.Minute),
	}
	if err := s.resets.Create(ctx, token); err != nil {
		return apperrors.MapError(err)
	}

	err = s.notifier.Send(ctx, notify.SendInput{
		Recipients: notify.RecipientFromAccount(*account),
		Mail:       notify.TemplatePasswordReset,
		Data: map[string]any{
			"Token":       token.Token,
			"FrontendURL": s.frontend,
		},
	})
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	return nil
}

// ConfirmPasswordReset redeems a reset token and stores a new password
// hash. Tokens are single use.
func (s *AuthService) ConfirmPasswordReset(ctx context.Context, tokenStr, newPassword string) error {
	if len(newPassword) < 8 {
		return apperrors.NewValidationError("Password must be at least 8 characters")
	}

	token, err := s.resets.GetByToken(ctx, tokenStr)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewBadRequest("Reset token is not valid")
		}
		return apperrors.MapError(err)
	}
	if token.UsedAt != nil || time.Now().After(token.ExpiresAt) {
		return apperrors.NewBadRequest("Reset token is not valid")
	}

	account, err := s.accounts.GetByID(ctx, token.AccountID)
	if err != nil {
		return apperrors.MapError(err)
	}
	hash, err := auth.HashPassword(newPassword, s.authCfg.BcryptCost)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	account.PasswordHash = hash
	if err := s.accounts.Update(ctx, account); err != nil {
		return apperrors.MapError(err)
	}
	return apperrors.MapError(s.resets.MarkUsed(ctx, token.ID))
}

func (s *AuthService) issueConfirmationCode(ctx context.Context, account *domain.Account) error {
	code, err := newConfirmationCode()
	if err != nil {
		return apperrors.NewInternalError(err)
	}

	ttl := time.Duration(s.authCfg.ConfirmationCodeTTLMinutes) * time.Minute
	record := &domain.ConfirmationCode{
		AccountID: account.ID,
		Code:      code,
		ExpiresAt: time.Now().Add(ttl),
	}
	if err := s.codes.Upsert(ctx, record); err != nil {
		return apperrors.MapError(err)
	}

	err = s.notifier.Send(ctx, notify.SendInput{
		Recipients: notify.RecipientFromAccount(*account),
		Mail:       notify.TemplateConfirmationCode,
		Data: map[string]any{
			"Code":       code,
			"TTLMinutes": s.authCfg.ConfirmationCodeTTLMinutes,
		},
	})
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	return nil
}

func (s *AuthService) newSession(account *domain.Account) (*Session, error) {
	token, expiresAt, err := s.tokens.GenerateToken(account.ID)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return &Session{Token: token, ExpiresAt: expiresAt, Account: *account}, nil
}
