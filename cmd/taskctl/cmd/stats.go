package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/taskforge/core/pkg/taskqueue"
)

var statsTag string

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print task counts grouped by status",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		if statsTag != "" {
			counts := map[taskqueue.Status]int{}
			for offset := 0; ; offset += 100 {
				tasks, err := store.List(ctx, taskqueue.ListFilter{Tag: statsTag, Limit: 100, Offset: offset})
				if err != nil {
					return fmt.Errorf("list tasks tagged %q: %w", statsTag, err)
				}
				for _, t := range tasks {
					counts[t.Status]++
				}
				if len(tasks) < 100 {
					break
				}
			}
			for status, n := range counts {
				fmt.Printf("%s\t%d\n", status, n)
			}
			return nil
		}

		stats, err := store.Stats(ctx)
		if err != nil {
			return fmt.Errorf("stats: %w", err)
		}
		for status, n := range stats {
			fmt.Printf("%s\t%d\n", status, n)
		}
		return nil
	},
}

func init() {
	statsCmd.Flags().StringVar(&statsTag, "tag", "", "restrict counts to tasks carrying this tag")
}
