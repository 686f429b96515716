// Package redis wraps [github.com/redis/go-redis/v9] with the same
// connect-with-retry, health check, and graceful-shutdown shape pkg/db
// gives Postgres.
//
// cmd/taskworker opens a client only when REDIS_URL is set, to back the
// task-type registry's presence cache with a Redis instance shared across
// the worker fleet instead of each process's own in-memory TTL:
//
//	client, err := redis.Open(ctx, cfg.RedisURL,
//		redis.WithRetry(cfg.DatabaseConnRetry, cfg.DatabaseRetryWait),
//	)
//	if err != nil {
//		return fmt.Errorf("open redis: %w", err)
//	}
//	defer redis.Shutdown(client)(context.Background())
//
// # Health checks
//
// [Healthcheck] returns a closure suitable for [pkg/health.Checks]; when a
// client was opened, cmd/taskworker registers it under the "redis" check
// name alongside "postgres" and "dead_letter".
//
// # Errors
//
//   - [ErrEmptyConnectionURL]: REDIS_URL was blank
//   - [ErrFailedToParseURL]: the URL was not a valid redis:// or rediss:// URL
//   - [ErrConnectionFailed]: every retry attempt failed to connect
//   - [ErrHealthcheckFailed]: a health check ping failed
package redis
