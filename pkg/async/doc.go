// Package async provides small Future-based helpers for concurrent fan-out.
//
// The scheduler's orchestrator dispatches a batch of due items in parallel
// and must not let one item's failure abort the rest; SettleAll is the
// settle-everything combinator backing that guarantee. Async/Await cover the
// simple run-in-background cases.
package async
