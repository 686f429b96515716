package db

import "github.com/jackc/pgx/v5/pgxpool"

// PoolStats is a snapshot of a connection pool's utilization.
type PoolStats struct {
	AcquiredConns int32
	IdleConns     int32
	MaxConns      int32
}

// Stats returns pool's current utilization snapshot, for readiness checks
// that want to catch pool exhaustion before it shows up as claim latency.
func Stats(pool *pgxpool.Pool) PoolStats {
	s := pool.Stat()
	return PoolStats{
		AcquiredConns: s.AcquiredConns(),
		IdleConns:     s.IdleConns(),
		MaxConns:      s.MaxConns(),
	}
}
