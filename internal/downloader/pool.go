// Package downloader runs batch downloads through a bounded worker
// pool. Workers share nothing but the injected collaborators; history
// recording and rate limiting happen per job.
package downloader

import (
	"context"
	"fmt"
	"sync"
	"time"

	"smd/pkg/history"
	"smd/pkg/logger"
	"smd/pkg/ratelimit"
)

// DefaultWorkers is the batch concurrency used when nothing else is
// configured.
const DefaultWorkers = 3

// Job represents a single URL to download.
type Job struct {
	URL string
	// Choice optionally overrides the configured default format.
	Choice string
}

// Result represents the outcome of one job.
type Result struct {
	Job      Job
	Path     string
	Success  bool
	Error    error
	Duration time.Duration
}

// Downloader performs the actual transfer for one URL.
type Downloader interface {
	DownloadURL(ctx context.Context, url, choice string) (string, error)
}

// WorkerPool manages concurrent download workers.
type WorkerPool struct {
	numWorkers  int
	jobQueue    chan Job
	resultQueue chan Result
	wg          sync.WaitGroup
	ctx         context.Context
	cancel      context.CancelFunc
	client      Downloader
	hist        *history.Log
	rateLimiter ratelimit.Limiter
	logger      logger.Logger
}

// NewWorkerPool creates a download worker pool.
func NewWorkerPool(
	numWorkers int,
	client Downloader,
	hist *history.Log,
	rateLimiter ratelimit.Limiter,
	log logger.Logger,
) *WorkerPool {
	ctx, cancel := context.WithCancel(context.Background())

	if numWorkers <= 0 {
		numWorkers = DefaultWorkers
	}
	if log == nil {
		log = logger.GetLogger()
	}

	return &WorkerPool{
		numWorkers:  numWorkers,
		jobQueue:    make(chan Job, numWorkers*2),
		resultQueue: make(chan Result, numWorkers),
		ctx:         ctx,
		cancel:      cancel,
		client:      client,
		hist:        hist,
		rateLimiter: rateLimiter,
		logger:      log,
	}
}

// Start launches all workers.
func (wp *WorkerPool) Start() {
	wp.logger.InfoWithFields("starting worker pool", map[string]interface{}{
		"num_workers": wp.numWorkers,
	})

	for i := 0; i < wp.numWorkers; i++ {
		wp.wg.Add(1)
		go wp.worker(i)
	}
}

// Stop closes the queue, waits for in-flight jobs, then closes the
// result channel.
func (wp *WorkerPool) Stop() {
	close(wp.jobQueue)
	wp.wg.Wait()
	close(wp.resultQueue)
	wp.cancel()

	wp.logger.Info("worker pool stopped")
}

// Submit adds a job to the queue.
func (wp *WorkerPool) Submit(job Job) error {
	select {
	case wp.jobQueue <- job:
		wp.logger.DebugWithFields("job submitted", map[string]interface{}{
			"url": job.URL,
		})
		return nil
	case <-wp.ctx.Done():
		return fmt.Errorf("worker pool is shutting down")
	}
}

// Results returns the channel download results arrive on.
func (wp *WorkerPool) Results() <-chan Result {
	return wp.resultQueue
}

func (wp *WorkerPool) worker(id int) {
	defer wp.wg.Done()

	for job := range wp.jobQueue {
		select {
		case <-wp.ctx.Done():
			return
		default:
		}

		result := wp.processJob(job, id)

		select {
		case wp.resultQueue <- result:
		case <-wp.ctx.Done():
			return
		}
	}
}

func (wp *WorkerPool) processJob(job Job, workerID int) Result {
	start := time.Now()
	result := Result{Job: job}

	wp.logger.DebugWithFields("worker processing job", map[string]interface{}{
		"worker_id": workerID,
		"url":       job.URL,
	})

	if wp.rateLimiter != nil && !wp.rateLimiter.Allow() {
		wp.rateLimiter.Wait()
	}

	path, err := wp.client.DownloadURL(wp.ctx, job.URL, job.Choice)
	result.Duration = time.Since(start)

	if err != nil {
		result.Error = fmt.Errorf("download failed: %w", err)
		wp.hist.Record(job.URL, fmt.Sprintf("Failed: %v", err))

		wp.logger.ErrorWithFields("worker failed to download", map[string]interface{}{
			"worker_id": workerID,
			"url":       job.URL,
			"error":     err.Error(),
			"duration":  result.Duration,
		})
		return result
	}

	result.Path = path
	result.Success = true
	wp.hist.Record(job.URL, "Success")

	wp.logger.DebugWithFields("worker completed job", map[string]interface{}{
		"worker_id": workerID,
		"url":       job.URL,
		"duration":  result.Duration,
	})
	return result
}

// QueueSize returns the number of queued jobs.
func (wp *WorkerPool) QueueSize() int {
	return len(wp.jobQueue)
}
