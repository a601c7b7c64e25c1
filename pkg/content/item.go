package content

import (
	"time"

	"github.com/google/uuid"
)

// Platform identifies an external publishing target.
type Platform string

const (
	PlatformTwitter   Platform = "twitter"
	PlatformDiscord   Platform = "discord"
	PlatformInstagram Platform = "instagram"
	PlatformYouTube   Platform = "youtube"
	PlatformTwitch    Platform = "twitch"
)

// KnownPlatforms returns the full platform universe this engine dispatches to.
func KnownPlatforms() []Platform {
	return []Platform{
		PlatformTwitter,
		PlatformDiscord,
		PlatformInstagram,
		PlatformYouTube,
		PlatformTwitch,
	}
}

// Valid reports whether the platform is part of the known universe.
func (p Platform) Valid() bool {
	switch p {
	case PlatformTwitter, PlatformDiscord, PlatformInstagram, PlatformYouTube, PlatformTwitch:
		return true
	}
	return false
}

// Status represents the lifecycle state of a scheduled item.
type Status string

const (
	StatusScheduled  Status = "scheduled"
	StatusQueued     Status = "queued"
	StatusPublishing Status = "publishing"
	StatusRetrying   Status = "retrying"
	StatusPublished  Status = "published"
	StatusFailed     Status = "failed"
)

// allowedTransitions is the item status state machine. Transitions are
// monotonic except for the retrying/publishing cycle, and terminal states
// have no outgoing edges.
var allowedTransitions = map[Status][]Status{
	StatusScheduled:  {StatusQueued, StatusPublishing},
	StatusQueued:     {StatusPublishing},
	StatusPublishing: {StatusPublished, StatusRetrying, StatusFailed, StatusQueued},
	StatusRetrying:   {StatusPublishing, StatusQueued},
}

// CanTransition reports whether moving from s to next is a legal status
// change. Same-state updates are always allowed so aggregate re-evaluation
// on every tick does not need special casing.
func (s Status) CanTransition(next Status) bool {
	if s == next {
		return true
	}
	for _, to := range allowedTransitions[s] {
		if to == next {
			return true
		}
	}
	return false
}

// Terminal reports whether the status admits no further mutation by the engine.
func (s Status) Terminal() bool {
	return s == StatusPublished || s == StatusFailed
}

// Frequency is the unit a recurring schedule advances by.
type Frequency string

const (
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
)

// Recurrence describes a repeating schedule attached to an item.
type Recurrence struct {
	Enabled   bool      `json:"enabled"`
	Frequency Frequency `json:"frequency"`
	// Count caps the number of published occurrences in the series.
	// Zero means unbounded.
	Count int `json:"count"`
	// SeriesID ties occurrences of one logical series together. When empty,
	// series membership falls back to owner+title+body equality, matching
	// the historical behavior.
	SeriesID string `json:"series_id,omitempty"`
}

// Item is a piece of content scheduled for publication to one or more
// external platforms.
type Item struct {
	ID          uuid.UUID  `json:"id"`
	OwnerID     uuid.UUID  `json:"owner_id"`
	Title       string     `json:"title"`
	Body        string     `json:"body"`
	ContentType string     `json:"content_type"`
	Hashtags    string     `json:"hashtags,omitempty"`
	Mentions    string     `json:"mentions,omitempty"`
	Attachments []string   `json:"attachments,omitempty"`
	Platforms   []Platform `json:"platforms"`

	ScheduledFor time.Time `json:"scheduled_for"`
	Status       Status    `json:"status"`

	RetryCount   int8       `json:"retry_count"`
	LastRetryAt  *time.Time `json:"last_retry_at,omitempty"`
	PublishError string     `json:"publish_error,omitempty"`

	// IdempotencyKeys maps platform to the attempt fingerprint recorded once
	// a publish was attempted for the current ScheduledFor value. Cleared
	// whenever the item is rescheduled.
	IdempotencyKeys map[Platform]string `json:"idempotency_keys,omitempty"`

	Recurrence  *Recurrence `json:"recurrence,omitempty"`
	PublishedAt *time.Time  `json:"published_at,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
}

// Recurring reports whether the item carries an enabled recurrence rule.
func (i *Item) Recurring() bool {
	return i.Recurrence != nil && i.Recurrence.Enabled
}

// Clone returns a deep copy of the item.
func (i *Item) Clone() *Item {
	clone := *i

	clone.Platforms = append([]Platform(nil), i.Platforms...)
	clone.Attachments = append([]string(nil), i.Attachments...)

	if i.IdempotencyKeys != nil {
		clone.IdempotencyKeys = make(map[Platform]string, len(i.IdempotencyKeys))
		for p, k := range i.IdempotencyKeys {
			clone.IdempotencyKeys[p] = k
		}
	}
	if i.LastRetryAt != nil {
		t := *i.LastRetryAt
		clone.LastRetryAt = &t
	}
	if i.PublishedAt != nil {
		t := *i.PublishedAt
		clone.PublishedAt = &t
	}
	if i.Recurrence != nil {
		r := *i.Recurrence
		clone.Recurrence = &r
	}

	return &clone
}

// NextOccurrence builds a fresh SCHEDULED item for the next run of a
// recurring series. The receiver is never mutated; a recurring item always
// produces a brand-new row for its successor.
func (i *Item) NextOccurrence(at time.Time) *Item {
	next := i.Clone()
	next.ID = uuid.New()
	next.ScheduledFor = at
	next.Status = StatusScheduled
	next.RetryCount = 0
	next.LastRetryAt = nil
	next.PublishError = ""
	next.IdempotencyKeys = nil
	next.PublishedAt = nil
	next.CreatedAt = time.Now().UTC()
	return next
}

// SameSeries reports whether other belongs to the same recurring series as
// the receiver. An explicit SeriesID wins; otherwise membership is inferred
// from owner+title+body equality.
func (i *Item) SameSeries(other *Item) bool {
	if i.Recurrence != nil && i.Recurrence.SeriesID != "" &&
		other.Recurrence != nil && other.Recurrence.SeriesID != "" {
		return i.Recurrence.SeriesID == other.Recurrence.SeriesID
	}
	return i.OwnerID == other.OwnerID && i.Title == other.Title && i.Body == other.Body
}
