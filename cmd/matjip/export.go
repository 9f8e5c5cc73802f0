// ABOUTME: Export command for CSV, YAML backup, markdown, and GeoJSON output
// ABOUTME: Writes to stdout or to a file given with --output

package main

import (
	"bytes"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/harper/matjip/internal/query"
	"github.com/spf13/cobra"
)

var exportFormats = []string{"csv", "yaml", "markdown", "geojson"}

var exportCmd = &cobra.Command{
	Use:     "export",
	Aliases: []string{"e"},
	Short:   "Export restaurants in various formats",
	Long: `Export restaurants as CSV, a YAML backup, a markdown table, or GeoJSON.

CSV and YAML exports can be read back with 'matjip import'.

Examples:
  matjip export --format csv --output matjip.csv
  matjip export --format yaml -o ~/backups/matjip.yaml
  matjip export --format markdown
  matjip export --format geojson --category 한식 -o map.geojson`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		output, _ := cmd.Flags().GetString("output")

		data, err := renderExport(cmd, format)
		if err != nil {
			return err
		}

		if output == "" {
			_, err := cmd.OutOrStdout().Write(data)
			return err
		}

		if err := os.WriteFile(output, data, 0644); err != nil { //nolint:gosec // exports are meant to be shared
			return fmt.Errorf("failed to write export: %w", err)
		}
		color.Green("✓ Exported to %s", output)
		return nil
	},
}

func renderExport(cmd *cobra.Command, format string) ([]byte, error) {
	switch format {
	case "csv":
		var buf bytes.Buffer
		if err := svc.ExportCSV(&buf); err != nil {
			return nil, fmt.Errorf("failed to export CSV: %w", err)
		}
		return buf.Bytes(), nil
	case "yaml":
		data, err := svc.ExportBackup()
		if err != nil {
			return nil, fmt.Errorf("failed to create backup: %w", err)
		}
		return data, nil
	case "markdown":
		data, err := svc.ExportMarkdown()
		if err != nil {
			return nil, fmt.Errorf("failed to export markdown: %w", err)
		}
		return data, nil
	case "geojson":
		category, _ := cmd.Flags().GetString("category")
		favorites, _ := cmd.Flags().GetBool("favorites")
		fc, err := svc.MapFeatures(query.Filter{Category: category, FavoritesOnly: favorites}, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to build GeoJSON: %w", err)
		}
		data, err := fc.ToJSONIndent()
		if err != nil {
			return nil, fmt.Errorf("failed to encode GeoJSON: %w", err)
		}
		return append(data, '\n'), nil
	default:
		return nil, fmt.Errorf("unsupported format: %s (use one of %v)", format, exportFormats)
	}
}

func init() {
	exportCmd.Flags().StringP("format", "f", "csv", "output format: csv, yaml, markdown, or geojson")
	exportCmd.Flags().StringP("output", "o", "", "output file (default: stdout)")
	exportCmd.Flags().StringP("category", "c", "", "geojson only: limit to this category")
	exportCmd.Flags().Bool("favorites", false, "geojson only: limit to favorites")

	rootCmd.AddCommand(exportCmd)
}
