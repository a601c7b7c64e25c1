// Package redis connects the scheduler to Redis, which backs the shared
// sliding-window rate limiter and the durable publish queue. It provides
// env-driven configuration, connection with startup retries, and a
// healthcheck probe.
package redis
