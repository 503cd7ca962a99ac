package inmemory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dvloznov/finance-ledger/internal/jobs"
	"github.com/dvloznov/finance-ledger/internal/logger"
	"github.com/google/uuid"
)

// Queue is an in-memory implementation of job publisher and consumer.
// It uses Go channels for job distribution and is safe for concurrent use.
// Jobs don't survive a restart, so it suits single-instance deployments and tests.
type Queue struct {
	jobChan    chan *jobs.ImportFileJob
	closeChan  chan struct{}
	wg         sync.WaitGroup
	mu         sync.RWMutex
	store      jobs.JobStore
	workers    int
	retryDelay time.Duration
	closed     bool
}

// NewQueue creates a new in-memory job queue.
// bufferSize determines how many jobs can be queued before PublishImportFile blocks;
// workers is the number of jobs processed concurrently.
func NewQueue(bufferSize, workers int, store jobs.JobStore) *Queue {
	if workers <= 0 {
		workers = 1
	}
	return &Queue{
		jobChan:    make(chan *jobs.ImportFileJob, bufferSize),
		closeChan:  make(chan struct{}),
		store:      store,
		workers:    workers,
		retryDelay: time.Second,
	}
}

// PublishImportFile implements the Publisher interface.
func (q *Queue) PublishImportFile(ctx context.Context, job *jobs.ImportFileJob) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return fmt.Errorf("queue is closed")
	}

	if job.JobID == "" {
		job.JobID = uuid.New().String()
	}
	if job.Status == "" {
		job.Status = jobs.JobStatusPending
	}
	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now()
	}
	if job.MaxRetries == 0 {
		job.MaxRetries = jobs.DefaultMaxRetries
	}

	if q.store != nil {
		if err := q.store.SaveJob(ctx, job); err != nil {
			return fmt.Errorf("failed to save job: %w", err)
		}
	}

	select {
	case q.jobChan <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-q.closeChan:
		return fmt.Errorf("queue is closed")
	}
}

// Start implements the Consumer interface. It starts the configured number of
// workers, each calling handler for the jobs it receives.
func (q *Queue) Start(ctx context.Context, handler jobs.JobHandler) error {
	q.mu.RLock()
	if q.closed {
		q.mu.RUnlock()
		return fmt.Errorf("queue is closed")
	}
	q.mu.RUnlock()

	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.worker(ctx, handler)
	}

	return nil
}

func (q *Queue) worker(ctx context.Context, handler jobs.JobHandler) {
	defer q.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case <-q.closeChan:
			return
		case job := <-q.jobChan:
			if job == nil {
				return
			}

			q.processJob(ctx, job, handler)
		}
	}
}

// processJob executes a single job with retry logic. Errors marked with
// jobs.Permanent fail the job immediately.
func (q *Queue) processJob(ctx context.Context, job *jobs.ImportFileJob, handler jobs.JobHandler) {
	log := logger.FromContext(ctx).With().
		Str("job_id", job.JobID).
		Str("gcs_uri", job.GCSURI).
		Logger()

	job.Status = jobs.JobStatusRunning
	now := time.Now()
	job.StartedAt = &now

	if q.store != nil {
		_ = q.store.SaveJob(ctx, job)
	}

	err := handler(logger.WithContext(ctx, log), job)

	completedAt := time.Now()
	job.CompletedAt = &completedAt

	switch {
	case err == nil:
		job.Status = jobs.JobStatusCompleted
		job.Error = ""
		log.Info().Int("imported", job.ImportedCount).Msg("Job completed")

	case !jobs.IsPermanent(err) && job.RetryCount < job.MaxRetries:
		job.Error = err.Error()
		job.RetryCount++
		job.Status = jobs.JobStatusRetrying
		log.Warn().Err(err).Int("retry", job.RetryCount).Msg("Job failed, retrying")

	default:
		job.Error = err.Error()
		job.Status = jobs.JobStatusFailed
		log.Error().Err(err).Bool("permanent", jobs.IsPermanent(err)).Msg("Job failed")
	}

	if q.store != nil {
		_ = q.store.SaveJob(ctx, job)
	}

	if job.Status != jobs.JobStatusRetrying {
		return
	}

	// Re-enqueue with linear backoff once the retrying state is stored.
	backoff := time.Duration(job.RetryCount) * q.retryDelay
	retry := *job
	time.AfterFunc(backoff, func() {
		retry.Status = jobs.JobStatusPending
		retry.StartedAt = nil
		retry.CompletedAt = nil
		if err := q.PublishImportFile(ctx, &retry); err != nil {
			log.Error().Err(err).Msg("Failed to re-enqueue job")
		}
	})
}

// Stop implements the Consumer interface.
// It stops the queue and waits for all in-flight jobs to complete.
func (q *Queue) Stop(ctx context.Context) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.closed = true
	close(q.closeChan)
	q.mu.Unlock()

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close implements the Publisher interface.
func (q *Queue) Close() error {
	return q.Stop(context.Background())
}

// Ensure Queue implements both Publisher and Consumer interfaces.
var _ jobs.Publisher = (*Queue)(nil)
var _ jobs.Consumer = (*Queue)(nil)
