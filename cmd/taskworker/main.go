// Command taskworker runs the durable task queue's worker process: it
// serves the health probe contract over HTTP and claims, executes, and
// reports outcomes for tasks registered in-process.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"

	"github.com/taskforge/core/config"
	"github.com/taskforge/core/internal/bootstrap"
	"github.com/taskforge/core/internal/pgstore"
	"github.com/taskforge/core/internal/worker"
	"github.com/taskforge/core/pkg/cache"
	"github.com/taskforge/core/pkg/db"
	"github.com/taskforge/core/pkg/dispatcher"
	"github.com/taskforge/core/pkg/health"
	"github.com/taskforge/core/pkg/id"
	"github.com/taskforge/core/pkg/identity"
	"github.com/taskforge/core/pkg/logger"
	"github.com/taskforge/core/pkg/redis"
	"github.com/taskforge/core/pkg/taskqueue"
)

func main() {
	log := logger.Default().With("instance_id", id.NewULID())

	if err := run(log); err != nil {
		log.Error("taskworker exited with error", "error", err)
		os.Exit(1)
	}
}

func run(log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	pool, err := db.Open(ctx, cfg.DatabaseURL,
		db.WithMigrations(pgstore.Migrations),
		db.WithLogger(log),
		db.WithMaxConns(cfg.DatabaseMaxConns),
		db.WithMinConns(cfg.DatabaseMinConns),
		db.WithRetry(cfg.DatabaseConnRetry, cfg.DatabaseRetryWait),
	)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer pool.Close()

	store := pgstore.New(pool)
	claimStore := pgstore.NewDispatch(pool)

	if err := bootstrap.EnsureInitialAdmin(ctx, store, bootstrap.Config{
		Email:    cfg.InitialAdminEmail,
		Password: cfg.InitialAdminPassword,
	}, log); err != nil {
		return fmt.Errorf("bootstrap initial admin: %w", err)
	}

	// The per-worker registry presence cache defaults to in-process memory.
	// When REDIS_URL is set, workers share one Redis-backed cache instead, so
	// a task type learned by one worker is immediately visible to the rest of
	// the fleet rather than waiting out each process's own TTL.
	var (
		existsCache  cache.Cache[bool]
		redisClient  goredis.UniversalClient
		redisChecker func(context.Context) error
	)
	if cfg.RedisURL != "" {
		redisClient, err = redis.Open(ctx, cfg.RedisURL, redis.WithRetry(cfg.DatabaseConnRetry, cfg.DatabaseRetryWait))
		if err != nil {
			return fmt.Errorf("open redis: %w", err)
		}
		defer func() { _ = redis.Shutdown(redisClient)(context.Background()) }()
		existsCache = cache.NewRedis[bool](redisClient, nil, cache.WithPrefix("taskforge:task-types"), cache.WithRedisDefaultTTL(30*time.Second))
		redisChecker = redis.Healthcheck(redisClient)
	} else {
		existsCache = cache.NewMemory[bool](cache.WithDefaultTTL(30 * time.Second))
	}
	registry := taskqueue.NewRegistry(store, existsCache)

	// taskSvc is the authorization-gated collaborator surface the (out of
	// scope) HTTP API calls for create/list/cancel/retry/delete/stats;
	// constructing it here keeps the registry, store, and C4 wiring in one
	// place for that future caller.
	_ = taskqueue.NewGuarded(taskqueue.NewService(store, registry, taskqueue.WithDefaultMaxAttempts(cfg.DefaultMaxAttempts)))
	_ = identity.NewService(store, identity.WithSessionTTL(cfg.SessionTTL))

	d := dispatcher.New(claimStore, cfg.LeaseDuration, taskqueue.BackoffPolicy{
		Base:          cfg.BackoffBase,
		Cap:           cfg.BackoffCap,
		DisableJitter: cfg.DisableJitter,
	})

	rt := worker.New(d, registry, worker.Config{
		WorkerID:              cfg.WorkerID,
		Concurrency:           cfg.MaxConcurrentTasks,
		PollInterval:          cfg.PollInterval,
		DrainTimeout:          cfg.DrainTimeout,
		CancelGracePeriodMult: cfg.CancelGracePeriodMult,
	}, log)

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.ServerHost, cfg.ServerPort),
		Handler: healthRouter(pool, store, cfg.DeadLetterBacklogMax, redisChecker, log),
	}

	errCh := make(chan error, 2)
	go func() {
		log.Info("health endpoint listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("health server: %w", err)
		}
	}()
	go func() {
		errCh <- rt.Run(ctx)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, draining worker runtime")
	case err := <-errCh:
		stop()
		if err != nil {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// healthRouter exposes the health contract's basic/liveness/readiness/
// startup surface; "detailed" is the same readiness response requested
// with ?format=json, handled by pkg/health's own content negotiation. The
// "dead_letter" check is this repo's own readiness dimension on top of the
// generic postgres/redis round-trips.
func healthRouter(pool *pgxpool.Pool, store *pgstore.Store, deadLetterMax int, redisCheck func(context.Context) error, log *slog.Logger) http.Handler {
	checks := health.Checks{
		"postgres":    func(ctx context.Context) error { return pool.Ping(ctx) },
		"pool":        poolSaturationCheck(pool),
		"dead_letter": health.DeadLetterBacklogCheck(store, deadLetterMax),
	}
	if redisCheck != nil {
		checks["redis"] = redisCheck
	}

	r := chi.NewRouter()
	r.Use(requestIDMiddleware(log))
	r.Get("/health", health.LivenessHandler())
	r.Get("/health/live", health.LivenessHandler())
	r.Get("/health/ready", health.ReadinessHandler(checks))
	r.Get("/health/startup", health.ReadinessHandler(checks, health.WithTimeout(10*time.Second)))
	return r
}

// poolSaturationCheck reports unhealthy once every connection the database
// pool may open is acquired, so exhaustion shows up as a failed readiness
// probe instead of as creeping claim latency.
func poolSaturationCheck(pool *pgxpool.Pool) health.CheckFunc {
	return func(_ context.Context) error {
		s := db.Stats(pool)
		if s.AcquiredConns >= s.MaxConns {
			return fmt.Errorf("connection pool saturated: %d/%d acquired", s.AcquiredConns, s.MaxConns)
		}
		return nil
	}
}

// requestIDMiddleware tags each health request with a short, sortable
// correlation ID so a probe failure can be traced back to one log line
// without pulling in a full tracing dependency.
func requestIDMiddleware(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqID := id.NewShortID()
			w.Header().Set("X-Request-ID", reqID)
			log.Debug("health request", "request_id", reqID, "path", r.URL.Path)
			next.ServeHTTP(w, r)
		})
	}
}
