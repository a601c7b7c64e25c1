// Package pg bootstraps the PostgreSQL layer backing durable item storage:
// a pgx/v5 connection pool with startup retries, goose schema migrations
// routed through the application logger, and a ping-based healthcheck probe
// for the ops endpoints.
package pg
