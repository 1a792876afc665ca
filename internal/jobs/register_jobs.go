package jobs

import (
	"github.com/veripath/backend/internal/queue"
	"github.com/veripath/backend/internal/services/notification"
	"github.com/veripath/backend/internal/services/screening"
)

// RegisterAllJobHandlers registers all job handlers with the queue
func RegisterAllJobHandlers(
	q queue.QueueInterface,
	screeningSvc *screening.ScreeningService,
	notificationSvc *notification.NotificationService,
) {
	RegisterBackgroundCheckJobHandlers(q, screeningSvc)
	RegisterWelcomeEmailJobHandlers(q, notificationSvc)
}
