package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/megazord/team-search/internal/domain"
	"github.com/megazord/team-search/internal/events"
	"github.com/megazord/team-search/internal/notify"
	"github.com/megazord/team-search/internal/repository"
	apperrors "github.com/megazord/team-search/pkg/util"
)

// NotificationService turns domain events into outbound notifications.
// Every handler is best effort: a delivery failure is logged and
// recorded in the status ledger, never propagated back to the request
// that published the event.
type NotificationService struct {
	notifier NotificationSender
	statuses repository.NotificationStatusRepository
	logger   *zap.Logger
}

// NewNotificationService constructs a NotificationService.
func NewNotificationService(notifier NotificationSender, statuses repository.NotificationStatusRepository, logger *zap.Logger) *NotificationService {
	return &NotificationService{notifier: notifier, statuses: statuses, logger: logger}
}

// DeliveryStatus reports the delivery ledger entry for an address. The
// ledger only keeps rows for undelivered channels, so a missing row
// means everything went out.
func (s *NotificationService) DeliveryStatus(ctx context.Context, email string) (*domain.NotificationStatus, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, apperrors.NewValidationError("A valid email is required")
	}

	status, err := s.statuses.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &domain.NotificationStatus{Email: email, EmailSent: true, TelegramSent: true}, nil
		}
		return nil, apperrors.MapError(err)
	}
	return status, nil
}

// Register wires the handlers into the dispatcher.
func (s *NotificationService) Register(dispatcher events.Dispatcher) {
	dispatcher.Subscribe(events.EventHackathonStarted, s.handleHackathonStarted)
	dispatcher.Subscribe(events.EventHackathonEnded, s.handleHackathonEnded)
	dispatcher.Subscribe(events.EventParticipantRemoved, s.handleParticipantRemoved)
	dispatcher.Subscribe(events.EventApplicationSubmitted, s.handleApplicationSubmitted)
	dispatcher.Subscribe(events.EventApplicationAccepted, s.handleApplicationAccepted)
	dispatcher.Subscribe(events.EventTeamMemberJoined, s.handleTeamMemberJoined)
	dispatcher.Subscribe(events.EventTeamMemberLeft, s.handleTeamMemberLeft)
	dispatcher.Subscribe(events.EventTeamOwnershipTransferred, s.handleOwnershipTransferred)
}

func (s *NotificationService) handleHackathonStarted(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.HackathonStartedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload type %T", event.Payload)
	}

	// Join links are per invitee, so each invitation is its own send.
	for _, invitation := range payload.Invitations {
		err := s.notifier.Send(ctx, notify.SendInput{
			Recipients: notify.RecipientsFromAddresses([]string{invitation.Email}),
			Mail:       notify.TemplateHackathonInvite,
			Telegram:   notify.TemplateHackathonInvite,
			Data: map[string]any{
				"HackathonName": payload.Hackathon.Name,
				"JoinLink":      invitation.JoinLink,
			},
		})
		if err != nil {
			s.logger.Error("failed to fan out hackathon invitation", zap.Error(err))
		}
	}
	return nil
}

func (s *NotificationService) handleHackathonEnded(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.HackathonEndedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload type %T", event.Payload)
	}
	if len(payload.Participants) == 0 {
		return nil
	}
	return s.notifier.Send(ctx, notify.SendInput{
		Recipients: notify.RecipientsFromAccounts(payload.Participants),
		Mail:       notify.TemplateHackathonEnded,
		Telegram:   notify.TemplateHackathonEnded,
		Data: map[string]any{
			"HackathonName": payload.Hackathon.Name,
		},
	})
}

func (s *NotificationService) handleParticipantRemoved(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.ParticipantRemovedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload type %T", event.Payload)
	}
	return s.notifier.Send(ctx, notify.SendInput{
		Recipients: notify.RecipientFromAccount(payload.Removed),
		Mail:       notify.TemplateParticipantRemoved,
		Telegram:   notify.TemplateParticipantRemoved,
		Data: map[string]any{
			"HackathonName": payload.Hackathon.Name,
		},
	})
}

func (s *NotificationService) handleApplicationSubmitted(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.ApplicationSubmittedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload type %T", event.Payload)
	}
	return s.notifier.Send(ctx, notify.SendInput{
		Recipients: notify.RecipientFromAccount(payload.Creator),
		Mail:       notify.TemplateApplicationSubmitted,
		Telegram:   notify.TemplateApplicationSubmitted,
		Data: map[string]any{
			"TeamName":       payload.Team.Name,
			"VacancyName":    payload.Vacancy.Name,
			"ApplicantEmail": payload.Applicant.Email,
		},
	})
}

func (s *NotificationService) handleApplicationAccepted(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.ApplicationAcceptedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload type %T", event.Payload)
	}
	return s.notifier.Send(ctx, notify.SendInput{
		Recipients: notify.RecipientFromAccount(payload.Applicant),
		Mail:       notify.TemplateApplicationAccepted,
		Telegram:   notify.TemplateApplicationAccepted,
		Data: map[string]any{
			"TeamName": payload.Team.Name,
		},
	})
}

func (s *NotificationService) handleTeamMemberJoined(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TeamMemberJoinedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload type %T", event.Payload)
	}
	return s.notifier.Send(ctx, notify.SendInput{
		Recipients: notify.RecipientFromAccount(payload.Creator),
		Mail:       notify.TemplateTeamMemberJoined,
		Telegram:   notify.TemplateTeamMemberJoined,
		Data: map[string]any{
			"TeamName":    payload.Team.Name,
			"MemberEmail": payload.Member.Email,
		},
	})
}

func (s *NotificationService) handleTeamMemberLeft(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TeamMemberLeftPayload)
	if !ok {
		return fmt.Errorf("unexpected payload type %T", event.Payload)
	}
	return s.notifier.Send(ctx, notify.SendInput{
		Recipients: notify.RecipientFromAccount(payload.Creator),
		Mail:       notify.TemplateTeamMemberLeft,
		Telegram:   notify.TemplateTeamMemberLeft,
		Data: map[string]any{
			"TeamName":    payload.Team.Name,
			"MemberEmail": payload.Member.Email,
		},
	})
}

func (s *NotificationService) handleOwnershipTransferred(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TeamOwnershipTransferredPayload)
	if !ok {
		return fmt.Errorf("unexpected payload type %T", event.Payload)
	}
	return s.notifier.Send(ctx, notify.SendInput{
		Recipients: notify.RecipientFromAccount(payload.NewCreator),
		Mail:       notify.TemplateOwnershipTransferred,
		Telegram:   notify.TemplateOwnershipTransferred,
		Data: map[string]any{
			"TeamName": payload.Team.Name,
		},
	})
}
