// Package notify delivers terminal publish outcomes to interested sinks.
// Delivery is best-effort by contract: the scheduling engine treats
// notification failures as log lines, never as dispatch failures.
package notify
