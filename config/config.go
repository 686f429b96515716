// Package config loads the application configuration from the environment.
package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is the single configuration object populated from environment
// variables. Unknown environment variables are ignored.
type Config struct {
	// Database connection parameters.
	DatabaseURL       string        `env:"DATABASE_CONN_URL,required"`
	DatabaseMaxConns  int32         `env:"DATABASE_MAX_OPEN_CONNS" envDefault:"10"`
	DatabaseMinConns  int32         `env:"DATABASE_MIN_CONNS" envDefault:"5"`
	DatabaseConnRetry int           `env:"DATABASE_RETRY_ATTEMPTS" envDefault:"3"`
	DatabaseRetryWait time.Duration `env:"DATABASE_RETRY_INTERVAL" envDefault:"5s"`

	// Server bind address. cmd/taskworker serves its health endpoints on it;
	// the setting also lets the (out-of-scope) HTTP collaborator's transport
	// be configured from the same object.
	ServerHost string `env:"SERVER_HOST" envDefault:"0.0.0.0"`
	ServerPort int    `env:"SERVER_PORT" envDefault:"8080"`

	// Identity & session core (C3).
	SessionTTL time.Duration `env:"SESSION_TTL" envDefault:"720h"`

	// RedisURL, when set, backs the task-type existence cache with a shared
	// Redis instance instead of an in-process one, so multiple worker
	// processes reuse the same cache entries. Empty means in-memory.
	RedisURL string `env:"REDIS_URL"`

	// Dispatcher / worker runtime (C7, C8).
	WorkerID              string        `env:"WORKER_ID" envDefault:"0"`
	LeaseDuration         time.Duration `env:"TASK_LEASE_DURATION" envDefault:"60s"`
	PollInterval          time.Duration `env:"TASK_POLL_INTERVAL" envDefault:"1s"`
	MaxConcurrentTasks    int           `env:"TASK_MAX_CONCURRENCY" envDefault:"1"`
	DrainTimeout          time.Duration `env:"TASK_DRAIN_TIMEOUT" envDefault:"30s"`
	CancelGracePeriodMult int           `env:"TASK_CANCEL_GRACE_MULTIPLIER" envDefault:"2"`

	// Retry & dead-letter policy (C9).
	BackoffBase        time.Duration `env:"TASK_BACKOFF_BASE" envDefault:"10s"`
	BackoffCap         time.Duration `env:"TASK_BACKOFF_CAP" envDefault:"10m"`
	DefaultMaxAttempts int           `env:"TASK_DEFAULT_MAX_ATTEMPTS" envDefault:"5"`
	DisableJitter      bool          `env:"TASK_DISABLE_JITTER" envDefault:"false"`

	// DeadLetterBacklogMax bounds the detailed readiness check: once more
	// than this many tasks sit in DeadLetter, /health/ready?format=json
	// reports unhealthy so an operator notices before the queue silently
	// accumulates unattended failures.
	DeadLetterBacklogMax int `env:"TASK_DEAD_LETTER_BACKLOG_MAX" envDefault:"100"`

	// Bootstrap (C10). Empty means "do not create an initial admin".
	InitialAdminPassword string `env:"INITIAL_ADMIN_PASSWORD"`
	InitialAdminEmail    string `env:"INITIAL_ADMIN_EMAIL" envDefault:"admin@example.com"`
}

// Load reads configuration from the process environment.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
