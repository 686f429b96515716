// Package db wraps [github.com/jackc/pgx/v5/pgxpool] with the connection
// pooling, retry, migration, and transaction conventions this repository's
// command binaries share.
//
// # Opening a pool
//
// cmd/taskworker opens its pool with migrations and pool limits sourced
// from its loaded config:
//
//	pool, err := db.Open(ctx, cfg.DatabaseURL,
//		db.WithMigrations(pgstore.Migrations),
//		db.WithLogger(log),
//		db.WithMaxConns(cfg.DatabaseMaxConns),
//		db.WithMinConns(cfg.DatabaseMinConns),
//		db.WithRetry(cfg.DatabaseConnRetry, cfg.DatabaseRetryWait),
//	)
//
// Open retries a transiently failed connection attempt before giving up, so
// a worker started alongside a still-starting Postgres container doesn't
// need its own restart loop.
//
// # Transactions
//
// [WithTx] commits on success and rolls back on error or panic. internal/pgstore
// uses it for its multi-statement writes, e.g. locking a task row and
// updating its status in the same transaction:
//
//	err := db.WithTx(ctx, pool, func(tx pgx.Tx) error {
//		var current string
//		if err := tx.QueryRow(ctx, `SELECT status FROM tasks WHERE id = $1 FOR UPDATE`, id).Scan(&current); err != nil {
//			return err
//		}
//		_, err := tx.Exec(ctx, `UPDATE tasks SET status = $1 WHERE id = $2`, status, id)
//		return err
//	})
//
// # Migrations
//
// [Migrate] applies the goose migrations embedded by internal/pgstore;
// db.Open calls it automatically when [WithMigrations] is set.
//
// # Pool stats
//
// [Stats] snapshots the pool's current utilization. cmd/taskworker's
// readiness check uses it to fail once every connection is acquired, ahead
// of that exhaustion surfacing as slow task claims.
//
// # Errors
//
//   - [ErrFailedToParseDBConfig]: the connection string could not be parsed
//   - [ErrFailedToOpenDBConnection]: every retry attempt failed
//   - [ErrSetDialect], [ErrApplyMigrations]: migration setup or execution failed
package db
