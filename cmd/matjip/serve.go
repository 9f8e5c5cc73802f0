// ABOUTME: HTTP serve command
// ABOUTME: Runs the JSON API, GeoJSON map feed, and websocket change stream

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/harper/matjip/internal/server"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API and map feed",
	Long: `Start the HTTP API, the GeoJSON map feed, and the websocket change stream.

When jwt_secret is configured every /api and /ws request needs a bearer
token; create one with 'matjip token'.

Examples:
  matjip serve
  matjip serve --addr 0.0.0.0:8080`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, _ := cmd.Flags().GetString("addr")
		if addr == "" {
			addr = cfg.GetAddr()
		}

		srv := server.New(svc, server.Options{
			JWTSecret: cfg.JWTSecret,
			Logger:    logger,
		})

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		color.Green("✓ Listening on http://%s", addr)
		if cfg.JWTSecret == "" {
			color.Yellow("⚠ No jwt_secret configured; the API is open to anyone who can reach %s", addr)
		}
		return srv.Start(ctx, addr)
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default: config addr or 127.0.0.1:8080)")

	rootCmd.AddCommand(serveCmd)
}
