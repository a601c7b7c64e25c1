package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ChristianDVillar/Stream-Schedule-sub001/pkg/async"
	"github.com/ChristianDVillar/Stream-Schedule-sub001/pkg/content"
	"github.com/ChristianDVillar/Stream-Schedule-sub001/pkg/logger"
	"github.com/ChristianDVillar/Stream-Schedule-sub001/pkg/notify"
	"github.com/ChristianDVillar/Stream-Schedule-sub001/pkg/queue"
)

const (
	// DefaultTickInterval is how often the orchestrator polls for due items.
	DefaultTickInterval = time.Minute

	// DefaultConcurrency bounds how many items one tick dispatches at once.
	DefaultConcurrency = 5
)

// tickResult carries one item's dispatch outcome back through the batch
// fan-out.
type tickResult struct {
	item   *content.Item
	status content.Status
}

// Orchestrator drives the publish loop: every tick it selects the due
// batch, fans items out to the dispatcher with bounded concurrency, and
// handles the aftermath of each outcome (notifications, recurrence
// expansion). One item's failure never aborts the rest of the batch, and
// tick-level errors only log; the loop itself never stops on its own.
type Orchestrator struct {
	dispatcher  *Dispatcher
	selector    *Selector
	expander    *Expander
	notifier    notify.Notifier
	interval    time.Duration
	concurrency int
	logger      *slog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// OrchestratorOption configures an Orchestrator.
type OrchestratorOption func(*Orchestrator)

// WithTickInterval overrides the polling interval (default 1 minute).
func WithTickInterval(d time.Duration) OrchestratorOption {
	return func(o *Orchestrator) {
		if d > 0 {
			o.interval = d
		}
	}
}

// WithConcurrency overrides the per-tick item fan-out (default 5).
func WithConcurrency(n int) OrchestratorOption {
	return func(o *Orchestrator) {
		if n > 0 {
			o.concurrency = n
		}
	}
}

// WithNotifier wires an outcome notifier (default: log sink).
func WithNotifier(n notify.Notifier) OrchestratorOption {
	return func(o *Orchestrator) {
		if n != nil {
			o.notifier = n
		}
	}
}

// WithExpander wires the recurrence expander. Without one, recurring items
// simply never produce a next occurrence.
func WithExpander(e *Expander) OrchestratorOption {
	return func(o *Orchestrator) { o.expander = e }
}

// WithOrchestratorLogger sets the orchestrator's logger.
func WithOrchestratorLogger(log *slog.Logger) OrchestratorOption {
	return func(o *Orchestrator) {
		if log != nil {
			o.logger = log
		}
	}
}

// NewOrchestrator creates an Orchestrator over a dispatcher and selector.
func NewOrchestrator(dispatcher *Dispatcher, selector *Selector, opts ...OrchestratorOption) (*Orchestrator, error) {
	if dispatcher == nil {
		return nil, ErrDispatcherNil
	}
	if selector == nil {
		return nil, ErrStoreNil
	}

	o := &Orchestrator{
		dispatcher:  dispatcher,
		selector:    selector,
		notifier:    notify.NewLogNotifier(nil),
		interval:    DefaultTickInterval,
		concurrency: DefaultConcurrency,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o, nil
}

// Start launches the tick loop. The first tick runs immediately so a
// freshly started scheduler does not sit idle for a full interval.
func (o *Orchestrator) Start(ctx context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.cancel != nil {
		return ErrAlreadyStarted
	}

	loopCtx, cancel := context.WithCancel(ctx)
	o.cancel = cancel

	o.wg.Add(1)
	go o.run(loopCtx)

	o.logger.Info("orchestrator started",
		slog.Duration("tick_interval", o.interval),
		slog.Int("concurrency", o.concurrency))
	return nil
}

// Stop halts the tick loop and waits for the in-flight tick to finish.
// Publishes already in flight are allowed to complete.
func (o *Orchestrator) Stop() error {
	o.mu.Lock()
	if o.cancel == nil {
		o.mu.Unlock()
		return ErrNotStarted
	}
	cancel := o.cancel
	o.cancel = nil
	o.mu.Unlock()

	cancel()
	o.wg.Wait()

	o.logger.Info("orchestrator stopped")
	return nil
}

// Run returns a function suitable for errgroup: it starts the loop, blocks
// until the context is cancelled, then stops it.
func (o *Orchestrator) Run(ctx context.Context) func() error {
	return func() error {
		if err := o.Start(ctx); err != nil {
			return err
		}
		<-ctx.Done()
		return o.Stop()
	}
}

func (o *Orchestrator) run(ctx context.Context) {
	defer o.wg.Done()

	o.Tick(ctx)

	ticker := time.NewTicker(o.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			o.Tick(ctx)
		}
	}
}

// Tick runs one scheduling pass: select due items, dispatch them with
// bounded concurrency, then handle each settled outcome. Errors are logged
// and the pass continues; a broken item never takes the batch down.
func (o *Orchestrator) Tick(ctx context.Context) {
	items, err := o.selector.SelectDue(ctx, time.Now().UTC())
	if err != nil {
		o.logger.LogAttrs(ctx, slog.LevelError, "due item selection failed", logger.Error(err))
		return
	}
	if len(items) == 0 {
		return
	}

	o.logger.LogAttrs(ctx, slog.LevelDebug, "tick started", slog.Int("due_items", len(items)))

	sem := make(chan struct{}, o.concurrency)
	futures := make([]*async.Future[tickResult], 0, len(items))
	for _, item := range items {
		futures = append(futures, async.Async(ctx, item, func(ctx context.Context, item *content.Item) (tickResult, error) {
			sem <- struct{}{}
			defer func() { <-sem }()

			status, err := o.dispatcher.DispatchItem(ctx, item)
			return tickResult{item: item, status: status}, err
		}))
	}

	for _, settled := range async.SettleAll(futures...) {
		if settled.Err != nil {
			var id any
			if settled.Value.item != nil {
				id = settled.Value.item.ID
			}
			o.logger.LogAttrs(ctx, slog.LevelError, "item dispatch failed",
				logger.ItemID(id),
				logger.Error(settled.Err),
			)
			continue
		}
		o.settle(ctx, settled.Value)
	}
}

// settle handles the aftermath of one item's dispatch: notifications for
// terminal outcomes and recurrence expansion on publish.
func (o *Orchestrator) settle(ctx context.Context, res tickResult) {
	item := res.item

	switch res.status {
	case content.StatusPublished:
		if err := o.notifier.NotifyPublished(ctx, item); err != nil {
			o.logger.LogAttrs(ctx, slog.LevelWarn, "publish notification failed",
				logger.ItemID(item.ID),
				logger.Error(err),
			)
		}
		if o.expander != nil {
			if _, err := o.expander.Expand(ctx, item); err != nil {
				o.logger.LogAttrs(ctx, slog.LevelError, "recurrence expansion failed",
					logger.ItemID(item.ID),
					logger.Error(err),
				)
			}
		}
	case content.StatusFailed:
		if err := o.notifier.NotifyFailed(ctx, item, item.PublishError); err != nil {
			o.logger.LogAttrs(ctx, slog.LevelWarn, "failure notification failed",
				logger.ItemID(item.ID),
				logger.Error(err),
			)
		}
	}
}

// HandleQueueJob is the queue.Handler for deferred publish jobs. The whole
// item is re-dispatched: platforms that already published are screened out
// by the idempotency guard, and a still-exhausted quota re-queues a fresh
// job while this one completes.
func (o *Orchestrator) HandleQueueJob(ctx context.Context, job *queue.Job) error {
	item, err := o.dispatcher.store.Get(ctx, job.ItemID)
	if err != nil {
		return fmt.Errorf("failed to load queued item: %w", err)
	}
	if item.Status.Terminal() {
		o.logger.LogAttrs(ctx, slog.LevelInfo, "queued item already settled",
			logger.ItemID(item.ID),
			logger.Status(string(item.Status)),
		)
		return nil
	}

	status, err := o.dispatcher.DispatchItem(ctx, item)
	if err != nil {
		return err
	}

	o.settle(ctx, tickResult{item: item, status: status})
	return nil
}
