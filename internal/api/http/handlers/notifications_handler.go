package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/megazord/team-search/internal/api/dto"
	"github.com/megazord/team-search/internal/service"
)

// NotificationsHandler exposes the delivery-status ledger.
type NotificationsHandler struct {
	notifications *service.NotificationService
}

// NewNotificationsHandler constructs handler.
func NewNotificationsHandler(notifications *service.NotificationService) *NotificationsHandler {
	return &NotificationsHandler{notifications: notifications}
}

// DeliveryStatus handles GET /notifications/status.
func (h *NotificationsHandler) DeliveryStatus(c *fiber.Ctx) error {
	status, err := h.notifications.DeliveryStatus(c.UserContext(), c.Query("email"))
	if err != nil {
		return err
	}
	return c.JSON(dto.NewNotificationStatusResponse(*status))
}
