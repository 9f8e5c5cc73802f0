// ABOUTME: Favorite command
// ABOUTME: Toggles or explicitly sets the favorite mark on a restaurant

package main

import (
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/harper/matjip/internal/models"
	"github.com/spf13/cobra"
)

var favoriteCmd = &cobra.Command{
	Use:     "favorite <id>",
	Aliases: []string{"fav"},
	Short:   "Toggle a restaurant's favorite mark",
	Long: `Toggle a restaurant's favorite mark, or set it with --on / --off.

Examples:
  matjip favorite 3
  matjip favorite 3 --off`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}

		on, _ := cmd.Flags().GetBool("on")
		off, _ := cmd.Flags().GetBool("off")
		if on && off {
			return errors.New("--on and --off are mutually exclusive")
		}

		var r *models.Restaurant
		switch {
		case on:
			r, err = svc.SetFavorite(id, true)
		case off:
			r, err = svc.SetFavorite(id, false)
		default:
			r, err = svc.ToggleFavorite(id)
		}
		if err != nil {
			return fmt.Errorf("restaurant #%d: %w", id, err)
		}

		if r.Favorite {
			color.Green("✓ %s is a favorite", r.Name)
		} else {
			color.Green("✓ %s is no longer a favorite", r.Name)
		}
		return nil
	},
}

func init() {
	favoriteCmd.Flags().Bool("on", false, "mark as favorite")
	favoriteCmd.Flags().Bool("off", false, "clear favorite")

	rootCmd.AddCommand(favoriteCmd)
}
