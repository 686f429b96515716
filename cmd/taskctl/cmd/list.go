package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/taskforge/core/pkg/taskqueue"
)

var (
	listVerbose bool
	listLimit   int
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent tasks",
	RunE: func(cmd *cobra.Command, _ []string) error {
		tasks, err := store.List(cmd.Context(), taskqueue.ListFilter{Limit: listLimit})
		if err != nil {
			return fmt.Errorf("list tasks: %w", err)
		}

		for _, t := range tasks {
			if listVerbose {
				fmt.Printf("%s\t%s\t%s\tattempts=%d/%d\tcreated=%s\tlast_error=%s\n",
					t.ID, t.TaskType, t.Status, t.Attempts, t.MaxAttempts,
					t.CreatedAt.Format("2006-01-02T15:04:05Z"), t.LastError)
				continue
			}
			fmt.Printf("%s\t%s\t%s\n", t.ID, t.TaskType, t.Status)
		}
		return nil
	},
}

func init() {
	listCmd.Flags().BoolVarP(&listVerbose, "verbose", "v", false, "include attempts, timestamps, and last error")
	listCmd.Flags().IntVar(&listLimit, "limit", 50, "maximum number of tasks to list")
}
