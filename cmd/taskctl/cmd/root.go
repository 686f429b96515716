package cmd

import (
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/taskforge/core/config"
	"github.com/taskforge/core/internal/pgstore"
	"github.com/taskforge/core/pkg/db"
)

var (
	pool  *pgxpool.Pool
	store *pgstore.Store
)

var rootCmd = &cobra.Command{
	Use:   "taskctl",
	Short: "Administrative CLI for the task queue store",
	Long: `taskctl reads and writes the task store directly, bypassing the
authentication and authorization layers the HTTP API enforces. It is meant
for operators running maintenance queries, not for application traffic.`,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		pool, err = db.Open(cmd.Context(), cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		store = pgstore.New(pool)
		return nil
	},
	PersistentPostRun: func(*cobra.Command, []string) {
		if pool != nil {
			pool.Close()
		}
	},
}

// Execute runs the CLI's root command and returns any error, so main can
// translate it into a non-zero exit code.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(statsCmd, listCmd, clearCompletedCmd)
}
