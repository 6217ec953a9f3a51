package service

import (
	"context"
	"strings"
	"time"

	"github.com/megazord/team-search/internal/domain"
	"github.com/megazord/team-search/internal/repository"
	apperrors "github.com/megazord/team-search/pkg/util"
)

// ProfileUpdateInput carries optional profile edits; nil fields are
// left untouched.
type ProfileUpdateInput struct {
	Username       *string
	Age            *int
	City           *string
	WorkExperience *int
}

// ProfileService exposes account profile reads and edits.
type ProfileService struct {
	accounts repository.AccountRepository
}

// NewProfileService constructs a ProfileService.
func NewProfileService(accounts repository.AccountRepository) *ProfileService {
	return &ProfileService{accounts: accounts}
}

// Get returns an account by id.
func (s *ProfileService) Get(ctx context.Context, id string) (*domain.Account, error) {
	account, err := s.accounts.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return account, nil
}

// Update applies the provided edits to the caller's own account.
func (s *ProfileService) Update(ctx context.Context, account *domain.Account, input ProfileUpdateInput) (*domain.Account, error) {
	if input.Username != nil {
		username := strings.TrimSpace(*input.Username)
		if username == "" {
			return nil, apperrors.NewValidationError("Username must not be empty")
		}
		account.Username = username
	}
	if input.Age != nil {
		if *input.Age < 0 {
			return nil, apperrors.NewValidationError("Age must not be negative")
		}
		account.Age = input.Age
	}
	if input.City != nil {
		account.City = strings.TrimSpace(*input.City)
	}
	if input.WorkExperience != nil {
		if *input.WorkExperience < 0 {
			return nil, apperrors.NewValidationError("Work experience must not be negative")
		}
		account.WorkExperience = input.WorkExperience
	}

	account.UpdatedAt = time.Now()
	if err := s.accounts.Update(ctx, account); err != nil {
		return nil, apperrors.MapError(err)
	}
	return account, nil
}

// LinkTelegram stores the Telegram chat id used for notifications.
func (s *ProfileService) LinkTelegram(ctx context.Context, account *domain.Account, telegramID string) (*domain.Account, error) {
	telegramID = strings.TrimSpace(telegramID)
	if telegramID == "" {
		return nil, apperrors.NewValidationError("Telegram id must not be empty")
	}
	account.TelegramID = &telegramID
	account.UpdatedAt = time.Now()
	if err := s.accounts.Update(ctx, account); err != nil {
		return nil, apperrors.MapError(err)
	}
	return account, nil
}
