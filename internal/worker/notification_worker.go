package worker

import (
	"context"

	"github.com/hirelane/recruitment-service/internal/service"
)

// StartNotificationWorker starts mail delivery and subscribes the notification handlers.
func StartNotificationWorker(ctx context.Context, notificationService *service.NotificationService, queue *MailQueue) {
	if queue != nil {
		queue.Start(ctx)
	}
	if notificationService == nil {
		return
	}
	notificationService.RegisterHandlers()
}
