package domain

import "time"

// NotificationStatus records the last known delivery failure state for a
// recipient email. A row exists only while at least one channel is
// failing; a fully successful send removes it.
type NotificationStatus struct {
	Email        string
	EmailSent    bool
	TelegramSent bool
	UpdatedAt    time.Time
}
