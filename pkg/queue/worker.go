package queue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// Worker polls a backend for due jobs and hands them to a single handler.
// Failed jobs go back through Backend.Fail for redelivery; panics in the
// handler are treated as failures rather than crashing the process.
type Worker struct {
	backend Backend
	handler Handler
	sem     chan struct{}
	wg      sync.WaitGroup
	mu      sync.Mutex
	stopMu  sync.Mutex

	pullInterval time.Duration
	jobTimeout   time.Duration
	logger       *slog.Logger

	ctx      context.Context
	cancel   context.CancelFunc
	stopping atomic.Bool
}

// NewWorker creates a worker over the given backend and handler.
func NewWorker(backend Backend, handler Handler, opts ...WorkerOption) (*Worker, error) {
	if backend == nil {
		return nil, ErrBackendNil
	}
	if handler == nil {
		return nil, ErrHandlerNil
	}

	options := &workerOptions{
		pullInterval:      5 * time.Second,
		jobTimeout:        time.Minute,
		maxConcurrentJobs: 1,
		logger:            slog.Default(),
	}
	for _, opt := range opts {
		opt(options)
	}

	return &Worker{
		backend:      backend,
		handler:      handler,
		sem:          make(chan struct{}, options.maxConcurrentJobs),
		pullInterval: options.pullInterval,
		jobTimeout:   options.jobTimeout,
		logger:       options.logger,
	}, nil
}

// Start begins polling in the background.
func (w *Worker) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.cancel != nil {
		w.mu.Unlock()
		return ErrWorkerStarted
	}
	w.ctx, w.cancel = context.WithCancel(ctx)
	w.mu.Unlock()

	w.stopping.Store(false)
	go w.run()

	w.logger.Info("queue worker started",
		slog.Duration("pull_interval", w.pullInterval),
		slog.Int("max_concurrent", cap(w.sem)))
	return nil
}

// Stop cancels polling and waits for in-flight jobs to finish.
func (w *Worker) Stop() error {
	w.mu.Lock()
	if w.cancel == nil {
		w.mu.Unlock()
		return ErrWorkerNotStarted
	}

	w.stopMu.Lock()
	w.stopping.Store(true)
	w.stopMu.Unlock()

	cancel := w.cancel
	w.cancel = nil
	w.mu.Unlock()

	cancel()
	w.wg.Wait()

	w.logger.Info("queue worker stopped")
	return nil
}

// Run returns a function suitable for errgroup: it starts the worker,
// blocks until the context is cancelled, then stops it.
func (w *Worker) Run(ctx context.Context) func() error {
	return func() error {
		if err := w.Start(ctx); err != nil {
			return err
		}
		<-ctx.Done()
		return w.Stop()
	}
}

func (w *Worker) run() {
	ticker := time.NewTicker(w.pullInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			return
		case <-ticker.C:
			w.drain()
		}
	}
}

// drain claims jobs until the backend runs dry or all slots are busy.
func (w *Worker) drain() {
	for {
		select {
		case w.sem <- struct{}{}:
		default:
			return
		}

		job, err := w.backend.Claim(w.ctx, time.Now())
		if err != nil {
			<-w.sem
			if !errors.Is(err, ErrNoJobReady) && !errors.Is(err, context.Canceled) {
				w.logger.Error("failed to claim job", slog.String("error", err.Error()))
			}
			return
		}

		w.stopMu.Lock()
		if w.stopping.Load() {
			w.stopMu.Unlock()
			// Hand the claimed job back so it isn't lost on shutdown.
			if failErr := w.backend.Enqueue(context.Background(), job); failErr != nil {
				w.logger.Error("failed to return job on shutdown",
					slog.String("job_id", job.ID.String()),
					slog.String("error", failErr.Error()))
			}
			<-w.sem
			return
		}
		w.wg.Add(1)
		w.stopMu.Unlock()

		go func(job *Job) {
			defer w.wg.Done()
			defer func() { <-w.sem }()
			w.process(job)
		}(job)
	}
}

func (w *Worker) process(job *Job) {
	start := time.Now()

	// Detached from the worker context so graceful shutdown lets the
	// in-flight job finish.
	ctx, cancel := context.WithTimeout(context.Background(), w.jobTimeout)
	defer cancel()

	err := w.safeHandle(ctx, job)
	if err == nil {
		w.logger.Info("job processed",
			slog.String("job_id", job.ID.String()),
			slog.String("item_id", job.ItemID.String()),
			slog.String("platform", job.Platform),
			slog.Duration("duration", time.Since(start)))
		return
	}

	w.logger.Error("job failed",
		slog.String("job_id", job.ID.String()),
		slog.String("item_id", job.ItemID.String()),
		slog.String("platform", job.Platform),
		slog.Int("attempts", int(job.Attempts)),
		slog.String("error", err.Error()))

	if failErr := w.backend.Fail(ctx, job, err.Error()); failErr != nil {
		w.logger.Error("failed to record job failure",
			slog.String("job_id", job.ID.String()),
			slog.String("error", failErr.Error()))
	}
}

func (w *Worker) safeHandle(ctx context.Context, job *Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in job handler: %v", r)
		}
	}()
	return w.handler(ctx, job)
}
