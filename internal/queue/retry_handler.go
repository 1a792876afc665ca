package queue

import (
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"
)

// RetryConfig defines the configuration for job retries
type RetryConfig struct {
	InitialInterval time.Duration // Initial retry interval
	MaxInterval     time.Duration // Maximum retry interval
	Multiplier      float64       // Backoff multiplier for subsequent retries
}

// RetryHandler manages job retries with exponential backoff. A failed
// screening or notification job is retried as a whole: the target status was
// never written, so re-running it is safe.
type RetryHandler struct {
	db    *gorm.DB
	queue *RedisQueue
	conf  RetryConfig
}

// NewRetryHandler creates a new retry handler with the default backoff policy
func NewRetryHandler(db *gorm.DB, queue *RedisQueue) *RetryHandler {
	return &RetryHandler{
		db:    db,
		queue: queue,
		conf: RetryConfig{
			InitialInterval: 30 * time.Second,
			MaxInterval:     1 * time.Hour,
			Multiplier:      2.0,
		},
	}
}

// HandleFailedJob processes a failed job and schedules a retry if attempts remain
func (h *RetryHandler) HandleFailedJob(job *Job, jobErr error) {
	retryCount := job.RetryCount + 1

	if retryCount > job.MaxRetries {
		log.Printf("Job %s (%s) exceeded maximum retry attempts (%d): %v", job.ID, job.Type, job.MaxRetries, jobErr)
		h.updateJob(job, map[string]interface{}{
			"status":     JobStatusFailed,
			"error":      fmt.Sprintf("exceeded max retries: %v", jobErr),
			"updated_at": time.Now(),
		})
		return
	}

	nextRetryDelay := h.calculateBackoff(retryCount)
	nextRetryTime := time.Now().Add(nextRetryDelay)

	log.Printf("Scheduling retry %d/%d for job %s in %v: %v", retryCount, job.MaxRetries, job.ID, nextRetryDelay, jobErr)

	h.updateJob(job, map[string]interface{}{
		"status":      JobStatusPending,
		"retry_count": retryCount,
		"next_retry":  nextRetryTime,
		"error":       jobErr.Error(),
		"updated_at":  time.Now(),
	})
}

// calculateBackoff calculates the backoff duration for a retry attempt
func (h *RetryHandler) calculateBackoff(attempt int) time.Duration {
	interval := h.conf.InitialInterval
	for i := 1; i < attempt; i++ {
		interval = time.Duration(float64(interval) * h.conf.Multiplier)
		if interval > h.conf.MaxInterval {
			return h.conf.MaxInterval
		}
	}
	return interval
}

func (h *RetryHandler) updateJob(job *Job, updates map[string]interface{}) {
	if err := h.db.Model(&Job{}).Where("id = ?", job.ID).Updates(updates).Error; err != nil {
		log.Printf("Failed to update job %s after failure: %v", job.ID, err)
	}
}
