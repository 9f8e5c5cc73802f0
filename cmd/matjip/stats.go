// ABOUTME: Stats command
// ABOUTME: Summarizes counts, average rating, and categories

package main

import (
	"fmt"
	"strings"

	"github.com/harper/matjip/internal/ui"
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarize your bookmarks",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		summary, err := svc.Stats()
		if err != nil {
			return fmt.Errorf("failed to compute stats: %w", err)
		}
		categories, err := svc.Categories()
		if err != nil {
			return fmt.Errorf("failed to list categories: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, ui.FormatStats(summary))
		if len(categories) > 0 {
			fmt.Fprintf(out, "Categories: %s\n", strings.Join(categories, ", "))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
