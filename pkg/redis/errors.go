package redis

import "errors"

// Sentinel errors for opening and checking a Redis connection.
// cmd/taskworker only opens one when REDIS_URL is set, to back the
// task-type registry's existence cache with a fleet-shared store.
var (
	ErrEmptyConnectionURL = errors.New("redis: empty connection URL")
	ErrFailedToParseURL   = errors.New("redis: failed to parse connection URL")
	ErrConnectionFailed   = errors.New("redis: failed to establish connection")
	ErrHealthcheckFailed  = errors.New("redis: healthcheck failed")
)
