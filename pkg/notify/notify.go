package notify

import (
	"context"
	"log/slog"

	"github.com/ChristianDVillar/Stream-Schedule-sub001/pkg/content"
	"github.com/ChristianDVillar/Stream-Schedule-sub001/pkg/logger"
)

// Notifier receives terminal item outcomes. Notification is strictly
// best-effort: implementations must not assume their errors influence
// dispatch, and the orchestrator never fails an item because a notifier did.
type Notifier interface {
	NotifyPublished(ctx context.Context, item *content.Item) error
	NotifyFailed(ctx context.Context, item *content.Item, reason string) error
}

// LogNotifier writes outcomes to the structured log. It is the default sink
// when no external notification channel is configured.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier creates a notifier that logs outcomes. A nil logger falls
// back to slog.Default().
func NewLogNotifier(log *slog.Logger) *LogNotifier {
	if log == nil {
		log = slog.Default()
	}
	return &LogNotifier{logger: log}
}

// NotifyPublished implements Notifier.
func (n *LogNotifier) NotifyPublished(ctx context.Context, item *content.Item) error {
	n.logger.LogAttrs(ctx, slog.LevelInfo, "item published",
		logger.ItemID(item.ID),
		logger.OwnerID(item.OwnerID),
		slog.Int("platforms", len(item.Platforms)),
	)
	return nil
}

// NotifyFailed implements Notifier.
func (n *LogNotifier) NotifyFailed(ctx context.Context, item *content.Item, reason string) error {
	n.logger.LogAttrs(ctx, slog.LevelWarn, "item failed",
		logger.ItemID(item.ID),
		logger.OwnerID(item.OwnerID),
		slog.String("reason", reason),
	)
	return nil
}

// MultiNotifier fans an outcome out to several sinks. Each sink is invoked
// regardless of earlier failures; errors are logged and swallowed so one
// broken channel never silences the others.
type MultiNotifier struct {
	sinks  []Notifier
	logger *slog.Logger
}

// NewMultiNotifier composes notifiers into one. Nil sinks are skipped.
func NewMultiNotifier(log *slog.Logger, sinks ...Notifier) *MultiNotifier {
	if log == nil {
		log = slog.Default()
	}

	kept := make([]Notifier, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			kept = append(kept, s)
		}
	}
	return &MultiNotifier{sinks: kept, logger: log}
}

// NotifyPublished implements Notifier.
func (n *MultiNotifier) NotifyPublished(ctx context.Context, item *content.Item) error {
	for _, sink := range n.sinks {
		if err := sink.NotifyPublished(ctx, item); err != nil {
			n.logger.LogAttrs(ctx, slog.LevelWarn, "notification sink failed",
				logger.ItemID(item.ID),
				logger.Error(err),
			)
		}
	}
	return nil
}

// NotifyFailed implements Notifier.
func (n *MultiNotifier) NotifyFailed(ctx context.Context, item *content.Item, reason string) error {
	for _, sink := range n.sinks {
		if err := sink.NotifyFailed(ctx, item, reason); err != nil {
			n.logger.LogAttrs(ctx, slog.LevelWarn, "notification sink failed",
				logger.ItemID(item.ID),
				logger.Error(err),
			)
		}
	}
	return nil
}
