package scheduler

import "github.com/ChristianDVillar/Stream-Schedule-sub001/pkg/content"

// Outcome is the result of one platform dispatch attempt.
type Outcome int8

const (
	// OutcomePublished means the platform accepted the post.
	OutcomePublished Outcome = iota

	// OutcomeSkipped means the attempt was a duplicate of one already
	// recorded for this scheduled time. Counts as success for aggregation.
	OutcomeSkipped

	// OutcomeQueued means the owner's platform quota was exhausted and the
	// attempt was deferred to the queue.
	OutcomeQueued

	// OutcomeRetrying means a transient failure consumed a retry and the
	// item will be attempted again after the backoff.
	OutcomeRetrying

	// OutcomeFailed means the attempt failed permanently: a fatal error or
	// an exhausted retry budget.
	OutcomeFailed
)

// String implements fmt.Stringer.
func (o Outcome) String() string {
	switch o {
	case OutcomePublished:
		return "published"
	case OutcomeSkipped:
		return "skipped"
	case OutcomeQueued:
		return "queued"
	case OutcomeRetrying:
		return "retrying"
	case OutcomeFailed:
		return "failed"
	}
	return "unknown"
}

// Aggregate folds per-platform outcomes into the item's overall status:
// any queued platform keeps the whole item queued, a clean sweep of
// published/skipped platforms publishes it, any remaining retry budget
// keeps it retrying, and otherwise it has failed.
func Aggregate(outcomes []Outcome) content.Status {
	var queued, retrying, settled int
	for _, o := range outcomes {
		switch o {
		case OutcomeQueued:
			queued++
		case OutcomeRetrying:
			retrying++
		case OutcomePublished, OutcomeSkipped:
			settled++
		}
	}

	switch {
	case queued > 0:
		return content.StatusQueued
	case settled == len(outcomes):
		return content.StatusPublished
	case retrying > 0:
		return content.StatusRetrying
	default:
		return content.StatusFailed
	}
}
