package jobs

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/veripath/backend/internal/queue"
	kycsvc "github.com/veripath/backend/internal/services/kyc"
	"github.com/veripath/backend/internal/services/screening"
)

// BackgroundCheckJob runs the sanctions/PEP screening for a freshly confirmed
// profile. The job fails (and is retried with backoff) when a check cannot be
// completed; the profile status is only written after the checks finish.
type BackgroundCheckJob struct {
	screeningSvc *screening.ScreeningService
}

// NewBackgroundCheckJob creates a new background check job handler
func NewBackgroundCheckJob(screeningSvc *screening.ScreeningService) *BackgroundCheckJob {
	return &BackgroundCheckJob{screeningSvc: screeningSvc}
}

// RegisterBackgroundCheckJobHandlers registers the background check job handler
func RegisterBackgroundCheckJobHandlers(q queue.QueueInterface, screeningSvc *screening.ScreeningService) {
	handler := NewBackgroundCheckJob(screeningSvc)
	q.RegisterHandler(queue.JobTypeBackgroundCheck, handler.Process)
}

// Process parses the payload and runs the screening
func (j *BackgroundCheckJob) Process(ctx context.Context, job queue.Job) (interface{}, error) {
	var payload kycsvc.BackgroundCheckJobPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return nil, fmt.Errorf("failed to unmarshal background check payload: %w", err)
	}

	if err := j.screeningSvc.RunBackgroundCheck(ctx, payload.ProfileID); err != nil {
		return nil, err
	}

	return map[string]interface{}{"profile_id": payload.ProfileID}, nil
}
