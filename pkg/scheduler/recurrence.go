package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ChristianDVillar/Stream-Schedule-sub001/pkg/content"
	"github.com/ChristianDVillar/Stream-Schedule-sub001/pkg/logger"
)

// Expander creates the next occurrence of a recurring series once the
// current one has published. The published item is never mutated into its
// successor; each occurrence is a fresh scheduled row.
type Expander struct {
	store  content.Store
	logger *slog.Logger
}

// NewExpander creates an Expander.
func NewExpander(store content.Store, log *slog.Logger) (*Expander, error) {
	if store == nil {
		return nil, ErrStoreNil
	}
	if log == nil {
		log = slog.Default()
	}
	return &Expander{store: store, logger: log}, nil
}

// Expand creates and persists the next occurrence for a just-published
// recurring item. It returns nil without error when the item does not
// recur or the series has reached its occurrence cap.
func (e *Expander) Expand(ctx context.Context, item *content.Item) (*content.Item, error) {
	if !item.Recurring() {
		return nil, nil
	}

	if item.Recurrence.Count > 0 {
		published, err := e.store.CountPublishedInSeries(ctx, item)
		if err != nil {
			return nil, fmt.Errorf("failed to count series occurrences: %w", err)
		}
		if published >= item.Recurrence.Count {
			e.logger.LogAttrs(ctx, slog.LevelInfo, "recurring series complete",
				logger.ItemID(item.ID),
				slog.Int("occurrences", published),
			)
			return nil, nil
		}
	}

	at, err := nextTime(item)
	if err != nil {
		return nil, err
	}

	next := item.NextOccurrence(at)
	if err := e.store.Create(ctx, next); err != nil {
		return nil, fmt.Errorf("failed to create next occurrence: %w", err)
	}

	e.logger.LogAttrs(ctx, slog.LevelInfo, "next occurrence scheduled",
		logger.ItemID(next.ID),
		slog.Time("scheduled_for", next.ScheduledFor),
		slog.String("frequency", string(item.Recurrence.Frequency)),
	)
	return next, nil
}

// nextTime advances the schedule by one period. Monthly recurrence follows
// calendar months, clamped so a month-end schedule never rolls over.
func nextTime(item *content.Item) (t time.Time, err error) {
	switch item.Recurrence.Frequency {
	case content.FrequencyDaily:
		return item.ScheduledFor.AddDate(0, 0, 1), nil
	case content.FrequencyWeekly:
		return item.ScheduledFor.AddDate(0, 0, 7), nil
	case content.FrequencyMonthly:
		return addMonthClamped(item.ScheduledFor), nil
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrUnknownFrequency, item.Recurrence.Frequency)
}

// addMonthClamped advances one calendar month, pinning the day to the target
// month's last day when the source day does not exist there. AddDate would
// normalize Aug 31 into Oct 1 and skip September entirely.
func addMonthClamped(t time.Time) time.Time {
	year, month, day := t.Date()
	// Day zero of the month after next is the last day of the target month.
	if last := time.Date(year, month+2, 0, 0, 0, 0, 0, t.Location()).Day(); day > last {
		day = last
	}
	hour, min, sec := t.Clock()
	return time.Date(year, month+1, day, hour, min, sec, t.Nanosecond(), t.Location())
}
