package queue

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
)

// JobProcessor runs a pool of workers draining the Redis lists and a gocron
// scheduler that periodically requeues due retries and stuck jobs.
type JobProcessor struct {
	queue       *RedisQueue
	workerCount int
	stopChan    chan struct{}
	wg          sync.WaitGroup
	scheduler   *gocron.Scheduler
}

// NewJobProcessor creates a new JobProcessor
func NewJobProcessor(queue *RedisQueue, workerCount int) *JobProcessor {
	return &JobProcessor{
		queue:       queue,
		workerCount: workerCount,
		stopChan:    make(chan struct{}),
		scheduler:   gocron.NewScheduler(time.UTC),
	}
}

// Start starts the workers and the retry sweep
func (p *JobProcessor) Start() {
	log.Printf("Starting job processor with %d workers", p.workerCount)

	for i := 0; i < p.workerCount; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}

	if _, err := p.scheduler.Every(1).Minute().Do(func() {
		p.queue.SweepDueRetries(10 * time.Minute)
	}); err != nil {
		log.Printf("Failed to schedule retry sweep: %v", err)
	}
	p.scheduler.StartAsync()
}

// Stop stops the job processor and waits for in-flight jobs to finish
func (p *JobProcessor) Stop() {
	log.Println("Stopping job processor")
	close(p.stopChan)
	p.scheduler.Stop()
	p.wg.Wait()
	log.Println("Job processor stopped")
}

// worker polls each registered job type in turn and executes handlers
func (p *JobProcessor) worker(id int) {
	defer p.wg.Done()

	jobTypes := p.queue.JobTypes()
	if len(jobTypes) == 0 {
		log.Printf("Worker %d exiting: no handlers registered", id)
		return
	}

	log.Printf("Worker %d started", id)

	for {
		select {
		case <-p.stopChan:
			log.Printf("Worker %d stopped", id)
			return
		default:
			for _, jobType := range jobTypes {
				job, err := p.queue.Dequeue(jobType, 1*time.Second)
				if err != nil {
					log.Printf("Worker %d: error dequeueing from %s: %v", id, jobType, err)
					time.Sleep(1 * time.Second)
					continue
				}
				if job == nil {
					continue
				}
				p.process(job)
			}
		}
	}
}

func (p *JobProcessor) process(job *Job) {
	handler, ok := p.queue.Handler(job.Type)
	if !ok {
		log.Printf("No handler registered for job type %s", job.Type)
		return
	}

	result, err := handler(context.Background(), *job)
	if err != nil {
		p.queue.Fail(job, err)
		return
	}

	if err := p.queue.Complete(job, result); err != nil {
		log.Printf("Failed to mark job %s completed: %v", job.ID, err)
	}
}
