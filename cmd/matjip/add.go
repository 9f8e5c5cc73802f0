// ABOUTME: Restaurant add command
// ABOUTME: Bookmarks a restaurant by coordinates or by geocoding its address

package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/harper/matjip/internal/bookmarks"
	"github.com/harper/matjip/internal/ui"
	"github.com/spf13/cobra"
)

var addCmd = &cobra.Command{
	Use:     "add <name>",
	Aliases: []string{"a"},
	Short:   "Bookmark a restaurant",
	Long: `Bookmark a restaurant.

Pass --lat and --lon to place it directly, or --address to look the
coordinates up. Explicit coordinates always win over the address.

Examples:
  matjip add 김밥천국 --address "서울특별시 중구 세종대로 110"
  matjip add 을지면옥 --lat 37.5663 --lon 126.9911 --category 한식 --rating 4.5
  matjip add "Tartine" --lat 37.7614 --lon -122.4241 --price 2 --tags "bakery,brunch"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d := applyDraftFlags(cmd, bookmarks.Draft{Name: args[0]})

		r, err := svc.Add(cmd.Context(), d)
		if err != nil {
			return explainSaveError(err, d)
		}

		color.Green("✓ Added %s", r.Name)
		fmt.Fprintln(cmd.OutOrStdout(), ui.FormatRestaurantLine(r))
		return nil
	},
}

func init() {
	registerDraftFlags(addCmd)

	rootCmd.AddCommand(addCmd)
}
