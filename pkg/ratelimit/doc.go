// Package ratelimit enforces per-(owner, platform) posting quotas with a
// sliding window of recorded attempt timestamps.
//
// The limiter is check-then-record: Allow never consumes a slot, and
// RecordAttempt is called only after a publish actually went out. Windows
// are pruned lazily on read. Two stores are provided: an in-memory store for
// a single scheduler process, and a Redis sorted-set store for deployments
// that need the window to survive restarts. Store failures resolve via an
// explicit FailurePolicy, defaulting to fail-open so a broken limiter never
// silently drops user content.
package ratelimit
