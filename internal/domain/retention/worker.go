package retention

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/rpggio/folio/internal/metrics"
)

// Checker runs one retention check.
type Checker interface {
	Check(ctx context.Context) (Result, error)
}

type flushResult struct {
	result Result
	err    error
}

// Worker runs retention checks on a background goroutine so writers never
// wait on rotation. Triggers that arrive while one is pending coalesce into
// a single check.
type Worker struct {
	checker Checker
	logger  *slog.Logger
	metrics *metrics.Metrics

	triggerCh chan struct{}
	flushCh   chan chan flushResult
	closeCh   chan struct{}
	doneCh    chan struct{}

	started   atomic.Bool
	closeOnce sync.Once
}

// NewWorker creates a worker. Call Start to begin processing triggers.
func NewWorker(checker Checker, logger *slog.Logger, m *metrics.Metrics) *Worker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Worker{
		checker:   checker,
		logger:    logger.With(slog.String("component", "retention_worker")),
		metrics:   m,
		triggerCh: make(chan struct{}, 1),
		flushCh:   make(chan chan flushResult),
		closeCh:   make(chan struct{}),
		doneCh:    make(chan struct{}),
	}
}

// Start launches the worker goroutine. It stops when ctx is cancelled or
// Close is called. Calling Start more than once has no effect.
func (w *Worker) Start(ctx context.Context) {
	if !w.started.CompareAndSwap(false, true) {
		return
	}
	go w.run(ctx)
}

// Trigger schedules a check and returns immediately.
func (w *Worker) Trigger() {
	select {
	case w.triggerCh <- struct{}{}:
	default:
		w.metrics.IncrementCoalesced()
	}
}

// Flush runs a check through the worker and waits for its result. A pending
// trigger is absorbed by the flush. Before Start it checks inline.
func (w *Worker) Flush(ctx context.Context) (Result, error) {
	if !w.started.Load() {
		return w.checker.Check(ctx)
	}

	resultCh := make(chan flushResult, 1)
	select {
	case w.flushCh <- resultCh:
	case <-w.doneCh:
		return Result{}, ErrWorkerClosed
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}

	select {
	case res := <-resultCh:
		return res.result, res.err
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}

// Close stops the worker after running any pending check, and waits for it
// to exit. Safe to call multiple times.
func (w *Worker) Close() {
	w.closeOnce.Do(func() {
		close(w.closeCh)
	})
	if w.started.Load() {
		<-w.doneCh
	}
}

func (w *Worker) run(ctx context.Context) {
	defer close(w.doneCh)

	for {
		select {
		case <-w.closeCh:
			select {
			case <-w.triggerCh:
				w.check(ctx)
			default:
			}
			w.logger.Debug("retention worker shutting down")
			return

		case <-ctx.Done():
			return

		case <-w.triggerCh:
			w.check(ctx)

		case resultCh := <-w.flushCh:
			select {
			case <-w.triggerCh:
			default:
			}
			result, err := w.check(ctx)
			resultCh <- flushResult{result: result, err: err}
		}
	}
}

func (w *Worker) check(ctx context.Context) (Result, error) {
	result, err := w.checker.Check(ctx)
	if err != nil {
		// The next trigger re-evaluates from scratch.
		w.metrics.IncrementRetentionFailures()
		w.logger.Warn("retention check failed", slog.Any("error", err))
	}
	return result, err
}
