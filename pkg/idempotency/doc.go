// Package idempotency guards the dispatch pipeline against duplicate
// publish attempts.
//
// Each attempt is fingerprinted by a deterministic key over (item id,
// platform, scheduled time). Once a platform's attempt is recorded, a second
// dispatch under the same scheduled time is detected and skipped; changing
// the scheduled time produces a new key, so a manual reschedule is
// publishable again. The guard's behavior when its own lookup fails is an
// explicit FailurePolicy rather than an implicit catch.
package idempotency
