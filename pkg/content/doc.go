// Package content defines the ScheduledItem domain model, its status state
// machine, and the Store abstraction that persists items and answers the
// due-item selection query.
//
// Two stores ship with the engine: MemoryStore for tests and single-process
// development, and PostgresStore (pgx) for durable deployments. Both enforce
// the same status transition table and the same three-clause due-item
// eligibility rules, so the orchestrator behaves identically against either.
package content
