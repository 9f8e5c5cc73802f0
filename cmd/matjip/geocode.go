// ABOUTME: Geocode command
// ABOUTME: Looks up the coordinates for an address without saving anything

package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/harper/matjip/internal/ui"
	"github.com/spf13/cobra"
)

var geocodeCmd = &cobra.Command{
	Use:   "geocode <address>",
	Short: "Look up the coordinates of an address",
	Long: `Look up the coordinates of an address.

Examples:
  matjip geocode "서울특별시 중구 세종대로 110"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		address := strings.TrimSpace(strings.Join(args, " "))
		if address == "" {
			return errors.New("address is required")
		}

		coords, ok := svc.Geocode(cmd.Context(), address)
		if !ok {
			color.Yellow("⚠ No location found for %q", address)
			return nil
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, ui.FormatCoordinates(coords.Lat, coords.Lon))
		if coords.DisplayName != "" {
			fmt.Fprintln(out, coords.DisplayName)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(geocodeCmd)
}
