package scheduler

import "time"

// Config carries the scheduling loop's tunables, loaded from the
// environment via pkg/config.
type Config struct {
	TickInterval time.Duration `env:"SCHEDULER_TICK_INTERVAL" envDefault:"1m"`
	BatchLimit   int           `env:"SCHEDULER_BATCH_LIMIT" envDefault:"50"`
	Concurrency  int           `env:"SCHEDULER_CONCURRENCY" envDefault:"5"`
	MaxRetries   int8          `env:"SCHEDULER_MAX_RETRIES" envDefault:"3"`
	RetryBackoff time.Duration `env:"SCHEDULER_RETRY_BACKOFF" envDefault:"5m"`
}
