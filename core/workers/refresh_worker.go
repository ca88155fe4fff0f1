// ABOUTME: Tracking refresh worker pool polling the courier for AWB status changes
// ABOUTME: Bounded goroutine pool fed through a buffered job queue

package workers

import (
	"context"
	"sync"
	"time"

	"bluehand-admin-api/core/domain"
	"bluehand-admin-api/core/interfaces"
)

// RefreshResult is the outcome of refreshing one AWB
type RefreshResult struct {
	AWB     *domain.AWBData
	Skipped bool
	Err     error
}

// refreshJob asks a worker to refresh a single AWB
type refreshJob struct {
	ctx    context.Context
	awb    *domain.AWBData
	result chan<- RefreshResult
}

// WorkerConfig holds configuration for the refresh worker
type WorkerConfig struct {
	MaxWorkers int
	QueueSize  int

	// SubmitTimeout bounds how long Refresh waits for queue space
	SubmitTimeout time.Duration
}

// DefaultWorkerConfig returns the default worker configuration
func DefaultWorkerConfig() WorkerConfig {
	return WorkerConfig{
		MaxWorkers:    4,
		QueueSize:     100,
		SubmitTimeout: 5 * time.Second,
	}
}

// RefreshWorker refreshes AWB tracking state in the background
type RefreshWorker struct {
	refresher     interfaces.AWBRefresher
	logger        interfaces.Logger
	jobQueue      chan *refreshJob
	maxWorkers    int
	submitTimeout time.Duration
	wg            sync.WaitGroup
	ctx           context.Context
	cancel        context.CancelFunc
	mu            sync.Mutex
	running       bool
}

// NewRefreshWorker creates a new refresh worker
func NewRefreshWorker(refresher interfaces.AWBRefresher, logger interfaces.Logger, config WorkerConfig) *RefreshWorker {
	defaults := DefaultWorkerConfig()
	if config.MaxWorkers <= 0 {
		config.MaxWorkers = defaults.MaxWorkers
	}
	if config.QueueSize <= 0 {
		config.QueueSize = defaults.QueueSize
	}
	if config.SubmitTimeout <= 0 {
		config.SubmitTimeout = defaults.SubmitTimeout
	}
	if logger == nil {
		logger = interfaces.NopLogger{}
	}

	return &RefreshWorker{
		refresher:     refresher,
		logger:        logger,
		jobQueue:      make(chan *refreshJob, config.QueueSize),
		maxWorkers:    config.MaxWorkers,
		submitTimeout: config.SubmitTimeout,
	}
}

// Start starts the worker pool
func (rw *RefreshWorker) Start() error {
	rw.mu.Lock()
	defer rw.mu.Unlock()

	if rw.running {
		return nil
	}

	rw.ctx, rw.cancel = context.WithCancel(context.Background())
	for i := 0; i < rw.maxWorkers; i++ {
		rw.wg.Add(1)
		go rw.run(rw.ctx)
	}

	rw.running = true
	return nil
}

// Stop stops the worker pool and waits for in-flight refreshes
func (rw *RefreshWorker) Stop() error {
	rw.mu.Lock()
	defer rw.mu.Unlock()

	if !rw.running {
		return nil
	}

	rw.cancel()
	rw.wg.Wait()

	rw.running = false
	return nil
}

// Running reports whether the pool accepts jobs
func (rw *RefreshWorker) Running() bool {
	rw.mu.Lock()
	defer rw.mu.Unlock()
	return rw.running
}

// Refresh refreshes every AWB through the pool and returns one result per
// input, in input order. AWBs already in a final state are skipped.
func (rw *RefreshWorker) Refresh(ctx context.Context, awbs []*domain.AWBData) ([]RefreshResult, error) {
	rw.mu.Lock()
	if !rw.running {
		rw.mu.Unlock()
		return nil, ErrWorkerNotRunning
	}
	poolCtx := rw.ctx
	rw.mu.Unlock()

	results := make([]RefreshResult, len(awbs))
	pending := make([]chan RefreshResult, len(awbs))

	for i, awb := range awbs {
		if awb == nil || awb.Status.IsFinal() {
			results[i] = RefreshResult{AWB: awb, Skipped: true}
			continue
		}

		ch := make(chan RefreshResult, 1)
		job := &refreshJob{ctx: ctx, awb: awb, result: ch}

		select {
		case rw.jobQueue <- job:
			pending[i] = ch
		case <-time.After(rw.submitTimeout):
			results[i] = RefreshResult{AWB: awb, Err: ErrQueueFull}
		case <-poolCtx.Done():
			results[i] = RefreshResult{AWB: awb, Err: ErrWorkerNotRunning}
		case <-ctx.Done():
			results[i] = RefreshResult{AWB: awb, Err: ctx.Err()}
		}
	}

	for i, ch := range pending {
		if ch == nil {
			continue
		}
		select {
		case results[i] = <-ch:
		case <-poolCtx.Done():
			results[i] = RefreshResult{AWB: awbs[i], Err: ErrWorkerNotRunning}
		case <-ctx.Done():
			results[i] = RefreshResult{AWB: awbs[i], Err: ctx.Err()}
		}
	}

	return results, nil
}

// run is the main loop for each worker
func (rw *RefreshWorker) run(ctx context.Context) {
	defer rw.wg.Done()

	for {
		select {
		case job := <-rw.jobQueue:
			rw.process(job)
		case <-ctx.Done():
			return
		}
	}
}

func (rw *RefreshWorker) process(job *refreshJob) {
	if err := job.ctx.Err(); err != nil {
		job.result <- RefreshResult{AWB: job.awb, Err: err}
		return
	}

	err := rw.refresher.RefreshAWB(job.ctx, job.awb)
	if err != nil {
		rw.logger.Warn("AWB refresh failed", map[string]interface{}{
			"awb":   job.awb.AWBNumber,
			"error": err.Error(),
		})
	}
	job.result <- RefreshResult{AWB: job.awb, Err: err}
}

// Error definitions
var (
	ErrWorkerNotRunning = &WorkerError{Message: "worker pool is not running"}
	ErrQueueFull        = &WorkerError{Message: "job queue is full"}
)

// WorkerError represents a worker-specific error
type WorkerError struct {
	Message string
}

func (e *WorkerError) Error() string {
	return e.Message
}
