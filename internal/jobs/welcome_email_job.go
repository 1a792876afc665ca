package jobs

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/veripath/backend/internal/queue"
	kycsvc "github.com/veripath/backend/internal/services/kyc"
	"github.com/veripath/backend/internal/services/notification"
)

// WelcomeEmailJob finalizes a profile after a passed background check: promo
// code where due, welcome notification, and the move to completed.
type WelcomeEmailJob struct {
	notificationSvc *notification.NotificationService
}

// NewWelcomeEmailJob creates a new welcome email job handler
func NewWelcomeEmailJob(notificationSvc *notification.NotificationService) *WelcomeEmailJob {
	return &WelcomeEmailJob{notificationSvc: notificationSvc}
}

// RegisterWelcomeEmailJobHandlers registers the welcome email job handler
func RegisterWelcomeEmailJobHandlers(q queue.QueueInterface, notificationSvc *notification.NotificationService) {
	handler := NewWelcomeEmailJob(notificationSvc)
	q.RegisterHandler(queue.JobTypeWelcomeEmail, handler.Process)
}

// Process parses the payload and runs the welcome flow
func (j *WelcomeEmailJob) Process(ctx context.Context, job queue.Job) (interface{}, error) {
	var payload kycsvc.WelcomeEmailJobPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return nil, fmt.Errorf("failed to unmarshal welcome email payload: %w", err)
	}

	if err := j.notificationSvc.SendWelcomeNotification(ctx, payload.ProfileID); err != nil {
		return nil, err
	}

	return map[string]interface{}{"profile_id": payload.ProfileID}, nil
}
