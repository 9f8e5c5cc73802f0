// ABOUTME: MCP serve command
// ABOUTME: Exposes the bookmark commands to AI agents over stdio

package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/harper/matjip/internal/mcp"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP server for AI agents",
	Long: `Start an MCP server on stdio.

Tools: add_restaurant, update_restaurant, delete_restaurant, toggle_favorite,
list_restaurants, geocode_address. Resource: matjip://restaurants.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		server, err := mcp.NewServer(svc)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		logger.Info("mcp server starting", slog.String("db", db.Path()))
		return server.Serve(ctx)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
