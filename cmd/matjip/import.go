// ABOUTME: Import command for CSV files and YAML backups
// ABOUTME: Adds every row as a new restaurant, or nothing if any row is invalid

package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import restaurants from CSV or a YAML backup",
	Long: `Import restaurants from a CSV file or a YAML backup.

The format is taken from the file extension unless --format is given.
Every row becomes a new restaurant; existing bookmarks are never merged.
If any row is invalid nothing is imported.

Examples:
  matjip import matjip.csv
  matjip import ~/backups/matjip.yaml --confirm
  matjip import export.txt --format csv`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		filename := args[0]

		format, _ := cmd.Flags().GetString("format")
		if format == "" {
			format = formatFromExtension(filename)
		}
		if format != "csv" && format != "yaml" {
			return fmt.Errorf("unsupported format: %q (use 'csv' or 'yaml')", format)
		}

		confirm, _ := cmd.Flags().GetBool("confirm")
		if !confirm {
			fmt.Printf("Import restaurants from '%s'? [y/N] ", filename)
			reader := bufio.NewReader(os.Stdin)
			response, _ := reader.ReadString('\n')
			response = strings.TrimSpace(strings.ToLower(response))
			if response != "y" && response != "yes" {
				fmt.Println("Cancelled.")
				return nil
			}
		}

		var n int
		switch format {
		case "csv":
			f, err := os.Open(filename) //nolint:gosec // user-supplied import path
			if err != nil {
				return fmt.Errorf("failed to read file: %w", err)
			}
			defer func() { _ = f.Close() }()
			n, err = svc.ImportCSV(f)
			if err != nil {
				return fmt.Errorf("failed to import: %w", err)
			}
		case "yaml":
			data, err := os.ReadFile(filename) //nolint:gosec // user-supplied import path
			if err != nil {
				return fmt.Errorf("failed to read file: %w", err)
			}
			n, err = svc.ImportBackup(data)
			if err != nil {
				return fmt.Errorf("failed to import: %w", err)
			}
		}

		color.Green("✓ Imported %d restaurants", n)
		return nil
	},
}

func formatFromExtension(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		return "yaml"
	case ".csv":
		return "csv"
	default:
		return ""
	}
}

func init() {
	importCmd.Flags().String("format", "", "csv or yaml (default: from file extension)")
	importCmd.Flags().Bool("confirm", false, "skip confirmation prompt")

	rootCmd.AddCommand(importCmd)
}
