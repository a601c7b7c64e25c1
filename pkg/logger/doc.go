// Package logger builds configured log/slog loggers for the scheduler.
//
// It provides JSON and text handlers behind functional options, environment
// presets (development/production) and a small set of attribute helpers for
// the identifiers that recur throughout the dispatch pipeline (item, owner,
// platform, status).
package logger
