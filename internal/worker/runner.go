// Package worker runs the background work around round generation: a pool
// that persists freshly generated questions off the request path, and a
// warmer that keeps the question bank stocked for popular topics. The round
// package holds a round.Persister interface and calls Enqueue; it never
// imports the concrete Runner.
package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/coder/quartz"

	"github.com/nyashahama/balance-cup-backend/internal/metrics"
	"github.com/nyashahama/balance-cup-backend/internal/round"
)

// ErrQueueFull is returned by Enqueue when the buffer is saturated. The batch
// is dropped.
var ErrQueueFull = errors.New("worker: persistence queue is full")

var _ round.Persister = (*Runner)(nil)

// ─── RUNNER ───────────────────────────────────────────────────────────────────

// RunnerConfig holds tuning parameters for the Runner. All fields have
// sensible defaults if zero-valued; call DefaultRunnerConfig() to get them.
type RunnerConfig struct {
	// Workers is the number of concurrent save goroutines. Default: 3.
	Workers int

	// QueueSize is the channel buffer. Enqueue drops batches beyond it.
	// Default: 64.
	QueueSize int

	// JobTimeout is the per-attempt context deadline. Default: 30s.
	JobTimeout time.Duration

	// MaxRetries is the number of attempts per batch before it is dropped.
	// Default: 3.
	MaxRetries int

	// BaseBackoff is doubled per failed attempt: 2×, 4×, 8× … Default: 1s.
	BaseBackoff time.Duration
}

// DefaultRunnerConfig returns safe production defaults.
func DefaultRunnerConfig() RunnerConfig {
	return RunnerConfig{
		Workers:     3,
		QueueSize:   64,
		JobTimeout:  30 * time.Second,
		MaxRetries:  3,
		BaseBackoff: time.Second,
	}
}

// Runner manages a pool of worker goroutines fed by an in-process channel.
// Persistence is best effort: nothing survives a restart, and a full queue
// drops the batch.
type Runner struct {
	job    *Job
	cfg    RunnerConfig
	clock  quartz.Clock
	logger *slog.Logger

	queue chan round.Batch
	wg    sync.WaitGroup
}

// NewRunner constructs a Runner. Call Start() to begin processing. A nil
// clock means the real one.
func NewRunner(job *Job, cfg RunnerConfig, clock quartz.Clock, logger *slog.Logger) *Runner {
	def := DefaultRunnerConfig()
	if cfg.Workers <= 0 {
		cfg.Workers = def.Workers
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = def.QueueSize
	}
	if cfg.JobTimeout <= 0 {
		cfg.JobTimeout = def.JobTimeout
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = def.MaxRetries
	}
	if cfg.BaseBackoff <= 0 {
		cfg.BaseBackoff = def.BaseBackoff
	}

	if clock == nil {
		clock = quartz.NewReal()
	}

	return &Runner{
		job:    job,
		cfg:    cfg,
		clock:  clock,
		logger: logger,
		queue:  make(chan round.Batch, cfg.QueueSize),
	}
}

// Enqueue pushes a batch onto the in-process channel without blocking. It
// satisfies round.Persister.
func (r *Runner) Enqueue(_ context.Context, b round.Batch) error {
	select {
	case r.queue <- b:
		r.logger.Debug("worker: enqueued batch", "topic", b.Topic, "items", len(b.Items))
		return nil
	default:
		metrics.PersistJobs.WithLabelValues("dropped").Inc()
		return ErrQueueFull
	}
}

// Start launches the worker pool. It blocks until ctx is cancelled and every
// worker has returned. Call it in a goroutine from main:
//
//	go runner.Start(ctx)
func (r *Runner) Start(ctx context.Context) {
	r.logger.Info("worker: starting", "workers", r.cfg.Workers, "queue", r.cfg.QueueSize)

	for i := range r.cfg.Workers {
		r.wg.Add(1)
		go r.work(ctx, i)
	}

	r.wg.Wait()
	r.logger.Info("worker: stopped", "abandoned", len(r.queue))
}

// work is the inner loop for each worker goroutine.
func (r *Runner) work(ctx context.Context, id int) {
	defer r.wg.Done()
	log := r.logger.With("worker_id", id)
	log.Debug("worker: goroutine started")

	for {
		select {
		case <-ctx.Done():
			log.Debug("worker: goroutine stopping")
			return
		case b := <-r.queue:
			r.runWithRetry(ctx, b, log)
		}
	}
}

// runWithRetry executes the job up to MaxRetries times with exponential
// back-off between attempts. A batch that exhausts its retries is dropped.
func (r *Runner) runWithRetry(ctx context.Context, b round.Batch, log *slog.Logger) {
	var lastErr error

	for attempt := 1; attempt <= r.cfg.MaxRetries; attempt++ {
		jobCtx, cancel := context.WithTimeout(ctx, r.cfg.JobTimeout)
		lastErr = r.job.Run(jobCtx, b)
		cancel()

		if lastErr == nil {
			metrics.PersistJobs.WithLabelValues("saved").Inc()
			return
		}

		log.Warn("worker: save attempt failed",
			"topic", b.Topic,
			"attempt", attempt,
			"max", r.cfg.MaxRetries,
			"error", lastErr,
		)

		if attempt < r.cfg.MaxRetries {
			backoff := time.Duration(1<<attempt) * r.cfg.BaseBackoff
			timer := r.clock.NewTimer(backoff, "runner", "backoff")
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case <-timer.C:
			}
		}
	}

	metrics.PersistJobs.WithLabelValues("failed").Inc()
	log.Error("worker: batch dropped after retries", "topic", b.Topic, "items", len(b.Items), "error", lastErr)
}
