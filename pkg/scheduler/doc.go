// Package scheduler is the engine's core: it decides which items are due,
// pushes them through their per-platform publish pipeline, and keeps the
// loop alive across failures.
//
// The pipeline is split into three collaborators:
//
//   - Selector bounds the due-item batch pulled from storage each pass.
//   - Dispatcher runs one item through its platforms sequentially: platform
//     toggle, duplicate guard, integration lookup, rate limit, then the
//     publish call, with retry bookkeeping for transient failures and
//     immediate permanent failure for fatal ones. Rate-limited platforms
//     are deferred to the queue instead of consuming a retry.
//   - Orchestrator owns the tick loop: a fixed-interval ticker (first tick
//     immediate) fans the batch out through pkg/async with bounded
//     concurrency, settles every item regardless of individual failures,
//     notifies on terminal outcomes, and expands recurring series on
//     publish.
//
// The orchestrator also serves as the queue worker's handler, re-running
// deferred items once their quota window frees up.
package scheduler
