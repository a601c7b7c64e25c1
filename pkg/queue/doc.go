// Package queue holds publish requests that could not be dispatched
// immediately, most commonly because an owner's platform quota was
// exhausted.
//
// A Backend stores jobs ordered by their next attempt time; a Worker polls
// the backend and feeds due jobs to a handler. Failed jobs are redelivered
// with a linearly growing delay until their attempt budget runs out, after
// which they are dead-lettered.
//
// Two backends are provided: MemoryBackend for single-process deployments
// and tests, and RedisBackend, which keeps jobs in a sorted set scored by
// next attempt time so several scheduler processes can share one queue.
//
// Usage:
//
//	backend := queue.NewMemoryBackend()
//	worker, err := queue.NewWorker(backend, func(ctx context.Context, job *queue.Job) error {
//		return dispatchAgain(ctx, job.ItemID, job.Platform)
//	}, queue.WithMaxConcurrentJobs(5))
//	if err != nil {
//		return err
//	}
//	if err := worker.Start(ctx); err != nil {
//		return err
//	}
//	defer worker.Stop()
package queue
