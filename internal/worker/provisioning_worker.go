package worker

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/spec-kit/directory-service/internal/config"
)

var (
	ErrQueueFull     = errors.New("provisioning queue full")
	ErrWorkerStopped = errors.New("provisioning worker stopped")

	// ErrWorkerNotStarted is returned by Enqueue before Start; nothing would drain the job.
	ErrWorkerNotStarted = errors.New("provisioning worker not started")
)

// Runner executes one provisioning job.
type Runner interface {
	Run(ctx context.Context, requestID int64) error
}

// ProvisioningWorker runs provisioning jobs on a fixed set of goroutines.
type ProvisioningWorker struct {
	jobs    chan int64
	workers int
	logger  *zap.Logger

	mu      sync.Mutex
	stopped bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewProvisioningWorker creates an idle worker; call Start to begin consuming jobs.
func NewProvisioningWorker(cfg config.ProvisioningConfig, logger *zap.Logger) *ProvisioningWorker {
	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}
	queueSize := cfg.QueueSize
	if queueSize <= 0 {
		queueSize = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProvisioningWorker{
		jobs:    make(chan int64, queueSize),
		workers: workers,
		logger:  logger,
	}
}

// Start launches the worker goroutines. Jobs run with a context derived from ctx.
func (w *ProvisioningWorker) Start(ctx context.Context, runner Runner) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped || w.cancel != nil {
		return
	}
	ctx, w.cancel = context.WithCancel(ctx)
	for i := 0; i < w.workers; i++ {
		w.wg.Add(1)
		go w.loop(ctx, runner, i)
	}
	w.logger.Info("provisioning worker started", zap.Int("workers", w.workers), zap.Int("queue_size", cap(w.jobs)))
}

// Enqueue schedules a job without blocking.
func (w *ProvisioningWorker) Enqueue(requestID int64) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return ErrWorkerStopped
	}
	if w.cancel == nil {
		return ErrWorkerNotStarted
	}
	select {
	case w.jobs <- requestID:
		return nil
	default:
		return ErrQueueFull
	}
}

// Stop interrupts running jobs, drains the queue and waits for the goroutines to exit.
// Interrupted and drained jobs are rolled back by the runner.
func (w *ProvisioningWorker) Stop() {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return
	}
	w.stopped = true
	if w.cancel != nil {
		w.cancel()
	}
	close(w.jobs)
	w.mu.Unlock()

	w.wg.Wait()
	w.logger.Info("provisioning worker stopped")
}

func (w *ProvisioningWorker) loop(ctx context.Context, runner Runner, n int) {
	defer w.wg.Done()
	for id := range w.jobs {
		if err := runner.Run(ctx, id); err != nil {
			w.logger.Warn("provisioning job failed",
				zap.Int("worker", n),
				zap.Int64("request_id", id),
				zap.Error(err))
		}
	}
}
