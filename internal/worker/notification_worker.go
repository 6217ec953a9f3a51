package worker

import (
	"github.com/megazord/team-search/internal/events"
	"github.com/megazord/team-search/internal/service"
)

// StartNotificationWorker subscribes the notification handlers to the
// event dispatcher.
func StartNotificationWorker(notificationService *service.NotificationService, dispatcher events.Dispatcher) {
	if notificationService == nil || dispatcher == nil {
		return
	}
	notificationService.Register(dispatcher)
}
