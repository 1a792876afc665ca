package queue

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// JobType defines the type of job
type JobType string

const (
	// JobTypeBackgroundCheck runs the sanctions/PEP screening for a profile
	// whose identity was just confirmed.
	JobTypeBackgroundCheck JobType = "run_background_check"

	// JobTypeWelcomeEmail sends the welcome notification and finalizes the
	// profile after a passed background check.
	JobTypeWelcomeEmail JobType = "send_welcome_email"
)

// JobStatus defines the status of a job
type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

// Job represents a background job. The row in the jobs table is the source of
// truth for status and retry bookkeeping; Redis only carries the work signal.
type Job struct {
	ID         uuid.UUID       `json:"id" gorm:"type:uuid;primaryKey"`
	Type       JobType         `json:"type"`
	Payload    json.RawMessage `json:"payload"`
	Status     JobStatus       `json:"status"`
	RetryCount int             `json:"retry_count" gorm:"default:0"`
	MaxRetries int             `json:"max_retries" gorm:"default:3"`
	NextRetry  *time.Time      `json:"next_retry,omitempty"`
	Error      string          `json:"error,omitempty"`
	Result     json.RawMessage `json:"result,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// JobHandler is a function that processes a job
type JobHandler func(ctx context.Context, job Job) (interface{}, error)

// Enqueuer is the narrow interface services use to hand work to the queue
type Enqueuer interface {
	Enqueue(jobType JobType, payload interface{}) (string, error)
}

// QueueInterface defines the full set of job queue operations
type QueueInterface interface {
	Enqueuer
	RegisterHandler(jobType JobType, handler JobHandler)
}
