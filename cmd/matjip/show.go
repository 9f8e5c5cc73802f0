// ABOUTME: Restaurant show command
// ABOUTME: Prints every stored field of one bookmark

package main

import (
	"fmt"

	"github.com/harper/matjip/internal/ui"
	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one restaurant in detail",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}

		r, err := svc.Get(id)
		if err != nil {
			return fmt.Errorf("restaurant #%d: %w", id, err)
		}

		fmt.Fprintln(cmd.OutOrStdout(), ui.FormatRestaurantDetail(r))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
}
