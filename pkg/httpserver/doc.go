// Package httpserver runs the scheduler's ops HTTP surface (health and
// stats endpoints) with graceful shutdown on context cancellation or
// termination signals.
package httpserver
