package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/taskforge/core/pkg/taskqueue"
)

var (
	clearOlderThan time.Duration
	clearDryRun    bool
)

var clearCompletedCmd = &cobra.Command{
	Use:   "clear-completed",
	Short: "Delete Completed tasks whose completion is older than a threshold",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		cutoff := time.Now().UTC().Add(-clearOlderThan)
		status := taskqueue.StatusCompleted

		// Collect every candidate before deleting anything: deleting rows
		// mid-scan would shift later pages of the same offset-ordered query
		// and cause some tasks to be skipped.
		var candidates []taskqueue.Task
		for offset := 0; ; offset += 100 {
			page, err := store.List(ctx, taskqueue.ListFilter{Status: &status, Limit: 100, Offset: offset})
			if err != nil {
				return fmt.Errorf("list completed tasks: %w", err)
			}
			if len(page) == 0 {
				break
			}
			for _, t := range page {
				if t.CompletedAt != nil && t.CompletedAt.Before(cutoff) {
					candidates = append(candidates, t)
				}
			}
			if len(page) < 100 {
				break
			}
		}

		deleted := 0
		for _, t := range candidates {
			if clearDryRun {
				fmt.Printf("would delete\t%s\t%s\tcompleted=%s\n", t.ID, t.TaskType, t.CompletedAt.Format("2006-01-02T15:04:05Z"))
				continue
			}
			if err := store.Delete(ctx, t.ID); err != nil {
				return fmt.Errorf("delete task %s: %w", t.ID, err)
			}
			fmt.Printf("deleted\t%s\t%s\n", t.ID, t.TaskType)
			deleted++
		}

		if !clearDryRun {
			fmt.Printf("deleted %d task(s)\n", deleted)
		}
		return nil
	},
}

func init() {
	clearCompletedCmd.Flags().DurationVar(&clearOlderThan, "older-than", 7*24*time.Hour, "delete tasks completed longer ago than this")
	clearCompletedCmd.Flags().BoolVar(&clearDryRun, "dry-run", false, "print what would be deleted without deleting")
}
