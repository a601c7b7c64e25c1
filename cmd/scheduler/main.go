package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/ChristianDVillar/Stream-Schedule-sub001/pkg/config"
	"github.com/ChristianDVillar/Stream-Schedule-sub001/pkg/content"
	"github.com/ChristianDVillar/Stream-Schedule-sub001/pkg/httpserver"
	"github.com/ChristianDVillar/Stream-Schedule-sub001/pkg/idempotency"
	"github.com/ChristianDVillar/Stream-Schedule-sub001/pkg/logger"
	"github.com/ChristianDVillar/Stream-Schedule-sub001/pkg/pg"
	"github.com/ChristianDVillar/Stream-Schedule-sub001/pkg/publisher"
	"github.com/ChristianDVillar/Stream-Schedule-sub001/pkg/queue"
	"github.com/ChristianDVillar/Stream-Schedule-sub001/pkg/ratelimit"
	"github.com/ChristianDVillar/Stream-Schedule-sub001/pkg/redis"
	"github.com/ChristianDVillar/Stream-Schedule-sub001/pkg/scheduler"
)

const serviceName = "scheduler"

// appConfig selects the storage backends; component tunables live in their
// packages' own Config structs.
type appConfig struct {
	Environment  string `env:"APP_ENV" envDefault:"development"`
	StoreBackend string `env:"STORE_BACKEND" envDefault:"memory"` // memory | postgres
	QueueBackend string `env:"QUEUE_BACKEND" envDefault:"memory"` // memory | redis
}

func main() {
	var cfg appConfig
	config.MustLoad(&cfg)

	var schedCfg scheduler.Config
	config.MustLoad(&schedCfg)

	var httpCfg httpserver.Config
	config.MustLoad(&httpCfg)

	log := logger.New(logger.WithEnvironment(cfg.Environment, serviceName))
	logger.SetAsDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, schedCfg, httpCfg, log); err != nil {
		log.Error("scheduler exited", logger.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg appConfig, schedCfg scheduler.Config, httpCfg httpserver.Config, log *slog.Logger) error {
	probes := make([]func(context.Context) error, 0, 2)

	// Item storage.
	var store content.Store
	if cfg.StoreBackend == "postgres" {
		var pgCfg pg.Config
		config.MustLoad(&pgCfg)

		pool, err := pg.Connect(ctx, pgCfg)
		if err != nil {
			return err
		}
		defer pool.Close()

		if err := pg.Migrate(ctx, pool, pgCfg, log); err != nil {
			return err
		}

		store, err = content.NewPostgresStore(pool)
		if err != nil {
			return err
		}
		probes = append(probes, pg.Healthcheck(pool))
		log.Info("using postgres item store")
	} else {
		store = content.NewMemoryStore(content.WithRetryBackoff(schedCfg.RetryBackoff))
		log.Info("using in-memory item store")
	}

	// Rate-limit window and deferred-publish queue.
	var (
		rlStore ratelimit.Store
		backend queue.Backend
	)
	if cfg.QueueBackend == "redis" {
		var redisCfg redis.Config
		config.MustLoad(&redisCfg)

		client, err := redis.Connect(ctx, redisCfg)
		if err != nil {
			return err
		}
		defer client.Close() //nolint:errcheck

		rlStore, err = ratelimit.NewRedisStore(client)
		if err != nil {
			return err
		}
		backend, err = queue.NewRedisBackend(client)
		if err != nil {
			return err
		}
		probes = append(probes, redis.Healthcheck(client))
		log.Info("using redis rate-limit window and queue")
	} else {
		rlStore = ratelimit.NewMemoryStore()
		backend = queue.NewMemoryBackend(queue.WithRetryDelay(schedCfg.RetryBackoff))
		log.Info("using in-memory rate-limit window and queue")
	}
	defer backend.Close() //nolint:errcheck

	limiter, err := ratelimit.NewLimiter(rlStore, ratelimit.WithLogger(log))
	if err != nil {
		return err
	}

	// Dry-run publishers until real platform credentials are wired in.
	pubs := make(map[content.Platform]publisher.Publisher)
	for _, platform := range content.KnownPlatforms() {
		pubs[platform] = publisher.NewDryRun(publisher.WithLogger(log))
	}
	registry, err := publisher.NewRegistry(pubs)
	if err != nil {
		return err
	}

	dispatcher, err := scheduler.NewDispatcher(store, registry,
		idempotency.NewGuard(idempotency.WithLogger(log)),
		limiter,
		backend,
		scheduler.WithMaxRetries(schedCfg.MaxRetries),
		scheduler.WithDispatcherLogger(log),
	)
	if err != nil {
		return err
	}

	selector, err := scheduler.NewSelector(store, schedCfg.BatchLimit)
	if err != nil {
		return err
	}

	expander, err := scheduler.NewExpander(store, log)
	if err != nil {
		return err
	}

	orchestrator, err := scheduler.NewOrchestrator(dispatcher, selector,
		scheduler.WithTickInterval(schedCfg.TickInterval),
		scheduler.WithConcurrency(schedCfg.Concurrency),
		scheduler.WithExpander(expander),
		scheduler.WithOrchestratorLogger(log),
	)
	if err != nil {
		return err
	}

	worker, err := queue.NewWorker(backend, orchestrator.HandleQueueJob,
		queue.WithMaxConcurrentJobs(schedCfg.Concurrency),
		queue.WithWorkerLogger(log),
	)
	if err != nil {
		return err
	}

	srv := httpserver.NewFromConfig(httpCfg, httpserver.WithLogger(log))
	router := opsRouter(ctx, log, backend, probes)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(orchestrator.Run(ctx))
	g.Go(worker.Run(ctx))
	g.Go(func() error { return srv.Run(ctx, router) })

	return g.Wait()
}

// opsRouter exposes the operational surface: health probes and queue depth.
func opsRouter(ctx context.Context, log *slog.Logger, backend queue.Backend, probes []func(context.Context) error) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/health", httpserver.HealthCheckHandler(ctx, log, probes...))
	r.Get("/stats", func(w http.ResponseWriter, req *http.Request) {
		stats, err := backend.Stats(req.Context())
		if err != nil {
			log.ErrorContext(req.Context(), "failed to read queue stats", logger.Error(err))
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(stats); err != nil {
			log.ErrorContext(req.Context(), "failed to encode queue stats", logger.Error(err))
		}
	})

	return r
}
