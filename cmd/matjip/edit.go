// ABOUTME: Restaurant edit command
// ABOUTME: Changes only the fields named on the command line

package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/harper/matjip/internal/bookmarks"
	"github.com/harper/matjip/internal/ui"
	"github.com/spf13/cobra"
)

var editCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Edit a bookmarked restaurant",
	Long: `Edit a bookmarked restaurant. Unset flags keep their current values.

Changing --address without --lat/--lon geocodes the new address.

Examples:
  matjip edit 3 --rating 4
  matjip edit 3 --name "을지면옥 본점" --memo "평양냉면"
  matjip edit 3 --address "서울특별시 중구 충무로14길 2-1"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}

		current, err := svc.Get(id)
		if err != nil {
			return fmt.Errorf("restaurant #%d: %w", id, err)
		}

		d := applyDraftFlags(cmd, bookmarks.DraftFrom(current))
		if cmd.Flags().Changed("name") {
			d.Name, _ = cmd.Flags().GetString("name")
		}

		r, err := svc.Update(cmd.Context(), id, d)
		if err != nil {
			return explainSaveError(err, d)
		}

		color.Green("✓ Updated %s", r.Name)
		fmt.Fprintln(cmd.OutOrStdout(), ui.FormatRestaurantLine(r))
		return nil
	},
}

func init() {
	editCmd.Flags().StringP("name", "n", "", "new name")
	registerDraftFlags(editCmd)

	rootCmd.AddCommand(editCmd)
}
