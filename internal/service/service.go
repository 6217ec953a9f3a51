package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/megazord/team-search/internal/notify"
)

// NotificationSender is the slice of the notifier the services need.
type NotificationSender interface {
	Send(ctx context.Context, input notify.SendInput) error
}

// newConfirmationCode draws a random six digit code.
func newConfirmationCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
