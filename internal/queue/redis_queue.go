package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	// queueKeyPrefix namespaces the per-type Redis lists
	queueKeyPrefix = "veripath:jobs:"

	// DefaultMaxRetries is applied to jobs that don't specify their own limit
	DefaultMaxRetries = 3
)

// RedisQueue is a job queue backed by Redis lists, with job state mirrored to
// the jobs table so retries and failures survive a restart.
type RedisQueue struct {
	client   *redis.Client
	db       *gorm.DB
	ctx      context.Context
	handlers map[JobType]JobHandler
	retry    *RetryHandler
}

// NewRedisQueue creates a new Redis-backed queue
func NewRedisQueue(client *redis.Client, db *gorm.DB) *RedisQueue {
	q := &RedisQueue{
		client:   client,
		db:       db,
		ctx:      context.Background(),
		handlers: make(map[JobType]JobHandler),
	}
	q.retry = NewRetryHandler(db, q)
	return q
}

// RegisterHandler registers a handler for a job type
func (q *RedisQueue) RegisterHandler(jobType JobType, handler JobHandler) {
	q.handlers[jobType] = handler
}

// Handler returns the registered handler for a job type, if any
func (q *RedisQueue) Handler(jobType JobType) (JobHandler, bool) {
	h, ok := q.handlers[jobType]
	return h, ok
}

// JobTypes returns the job types that currently have a handler registered
func (q *RedisQueue) JobTypes() []JobType {
	types := make([]JobType, 0, len(q.handlers))
	for t := range q.handlers {
		types = append(types, t)
	}
	return types
}

// Enqueue persists a job record and pushes the job id onto the Redis list for
// its type. Returns the job id.
func (q *RedisQueue) Enqueue(jobType JobType, payload interface{}) (string, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal job payload: %w", err)
	}

	job := Job{
		ID:         uuid.New(),
		Type:       jobType,
		Payload:    payloadBytes,
		Status:     JobStatusPending,
		MaxRetries: DefaultMaxRetries,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}

	if err := q.db.Create(&job).Error; err != nil {
		return "", fmt.Errorf("failed to persist job: %w", err)
	}

	if err := q.client.LPush(q.ctx, queueKey(jobType), job.ID.String()).Err(); err != nil {
		return "", fmt.Errorf("failed to push job to redis: %w", err)
	}

	return job.ID.String(), nil
}

// Dequeue blocks up to timeout waiting for a job on the given type's list.
// Returns nil when the timeout expires with no work.
func (q *RedisQueue) Dequeue(jobType JobType, timeout time.Duration) (*Job, error) {
	res, err := q.client.BRPop(q.ctx, timeout, queueKey(jobType)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to pop job from redis: %w", err)
	}

	// BRPop returns [key, value]
	jobID, err := uuid.Parse(res[1])
	if err != nil {
		return nil, fmt.Errorf("invalid job id on queue: %w", err)
	}

	var job Job
	if err := q.db.First(&job, "id = ?", jobID).Error; err != nil {
		return nil, fmt.Errorf("failed to load job %s: %w", jobID, err)
	}

	if err := q.markProcessing(&job); err != nil {
		return nil, err
	}

	return &job, nil
}

// Complete marks a job as successfully finished
func (q *RedisQueue) Complete(job *Job, result interface{}) error {
	updates := map[string]interface{}{
		"status":     JobStatusCompleted,
		"updated_at": time.Now(),
	}
	if result != nil {
		resultBytes, err := json.Marshal(result)
		if err != nil {
			return fmt.Errorf("failed to marshal job result: %w", err)
		}
		updates["result"] = resultBytes
	}
	return q.db.Model(&Job{}).Where("id = ?", job.ID).Updates(updates).Error
}

// Fail records a job failure and hands it to the retry handler
func (q *RedisQueue) Fail(job *Job, jobErr error) {
	q.retry.HandleFailedJob(job, jobErr)
}

// Requeue pushes an existing job back onto its Redis list
func (q *RedisQueue) Requeue(job *Job) error {
	if err := q.db.Model(&Job{}).Where("id = ?", job.ID).Updates(map[string]interface{}{
		"status":     JobStatusPending,
		"next_retry": nil,
		"updated_at": time.Now(),
	}).Error; err != nil {
		return fmt.Errorf("failed to reset job %s: %w", job.ID, err)
	}
	return q.client.LPush(q.ctx, queueKey(job.Type), job.ID.String()).Err()
}

// SweepDueRetries requeues jobs whose retry time has arrived, jobs that have
// been stuck in processing longer than stuckAfter (worker died mid-job), and
// pending jobs that never reached their Redis list (the push failed after the
// row was written). Requeueing an already-listed job at worst delivers it
// twice; every handler re-validates the transition, so a duplicate is a no-op.
func (q *RedisQueue) SweepDueRetries(stuckAfter time.Duration) {
	due, err := q.dueForRequeue(stuckAfter)
	if err != nil {
		log.Printf("Error sweeping jobs for retry: %v", err)
		return
	}

	for i := range due {
		if err := q.Requeue(&due[i]); err != nil {
			log.Printf("Error requeueing job %s: %v", due[i].ID, err)
		} else {
			log.Printf("Requeued job %s (%s) for retry %d/%d", due[i].ID, due[i].Type, due[i].RetryCount, due[i].MaxRetries)
		}
	}
}

// dueForRequeue selects the jobs SweepDueRetries should push back onto their
// lists: due retries, stale processing rows, and orphaned pending rows with no
// retry scheduled that have sat untouched longer than stuckAfter.
func (q *RedisQueue) dueForRequeue(stuckAfter time.Duration) ([]Job, error) {
	now := time.Now()
	var due []Job
	err := q.db.
		Where("status = ? AND next_retry IS NOT NULL AND next_retry <= ?", JobStatusPending, now).
		Or("status = ? AND next_retry IS NULL AND updated_at < ?", JobStatusPending, now.Add(-stuckAfter)).
		Or("status = ? AND updated_at < ?", JobStatusProcessing, now.Add(-stuckAfter)).
		Find(&due).Error
	return due, err
}

func (q *RedisQueue) markProcessing(job *Job) error {
	job.Status = JobStatusProcessing
	return q.db.Model(&Job{}).Where("id = ?", job.ID).Updates(map[string]interface{}{
		"status":     JobStatusProcessing,
		"updated_at": time.Now(),
	}).Error
}

func queueKey(jobType JobType) string {
	return queueKeyPrefix + string(jobType)
}
