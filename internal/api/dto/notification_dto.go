package dto

import "github.com/megazord/team-search/internal/domain"

// NotificationStatusResponse is the serialized delivery-ledger view for
// one recipient email.
type NotificationStatusResponse struct {
	Email        string `json:"email"`
	EmailSent    bool   `json:"email_sent"`
	TelegramSent bool   `json:"telegram_sent"`
}

// NewNotificationStatusResponse maps a ledger entry to its serialized
// view.
func NewNotificationStatusResponse(status domain.NotificationStatus) NotificationStatusResponse {
	return NotificationStatusResponse{
		Email:        status.Email,
		EmailSent:    status.EmailSent,
		TelegramSent: status.TelegramSent,
	}
}
