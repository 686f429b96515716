// Package health provides the HTTP handlers behind this repository's
// health contract: basic, liveness, readiness, and startup probes,
// compatible with Docker and Kubernetes.
//
// [LivenessHandler] always reports OK once the process is up.
// [ReadinessHandler] runs a set of [Checks] and aggregates the result; the
// worker process wires it with a postgres round-trip, a connection-pool
// saturation check ("pool"), an optional redis round-trip (only when the
// shared registry cache is configured), and
// [DeadLetterBacklogCheck], which fails readiness once the dead-letter
// queue grows past an operator-configured threshold.
//
// # Quick start
//
//	r.Get("/health/live", health.LivenessHandler())
//	r.Get("/health/ready", health.ReadinessHandler(health.Checks{
//	    "postgres":    func(ctx context.Context) error { return pool.Ping(ctx) },
//	    "dead_letter": health.DeadLetterBacklogCheck(store, 100),
//	}))
//
// # Response formats
//
// Handlers respond with plain text by default, for compatibility with
// probes that only check the status code. Request JSON with an
// Accept: application/json header or ?format=json:
//
//	curl http://localhost:8080/health/ready?format=json
//	{"checks":{"dead_letter":{"status":"unhealthy","error":"dead-letter backlog at 142 exceeds 100"},"postgres":{"status":"healthy"}},"status":"unhealthy"}
//
// # Startup vs readiness
//
// /health/startup reuses the same Checks as /health/ready but with a
// longer timeout (via WithTimeout), since a fresh process may still be
// running migrations or warming the registry cache when Kubernetes
// first probes it.
package health
