// ABOUTME: API token command
// ABOUTME: Issues HS256 bearer tokens signed with the configured jwt_secret

package main

import (
	"errors"
	"fmt"

	"github.com/harper/matjip/internal/server"
	"github.com/spf13/cobra"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue a bearer token for the HTTP API",
	Long: `Issue a bearer token for the HTTP API.

Requires jwt_secret in the config file or MATJIP_JWT_SECRET.

Examples:
  matjip token
  matjip token --ttl 720h --subject phone`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg == nil || cfg.JWTSecret == "" {
			return errors.New("jwt_secret is not configured; set it in the config file or MATJIP_JWT_SECRET")
		}

		subject, _ := cmd.Flags().GetString("subject")
		ttl, _ := cmd.Flags().GetDuration("ttl")
		if ttl < 0 {
			return fmt.Errorf("--ttl must not be negative, got %s", ttl)
		}

		token, err := server.NewAuthenticator(cfg.JWTSecret).Issue(subject, ttl)
		if err != nil {
			return fmt.Errorf("failed to issue token: %w", err)
		}

		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func init() {
	tokenCmd.Flags().String("subject", "matjip", "token subject")
	tokenCmd.Flags().Duration("ttl", 0, "token lifetime, e.g. 24h (0 never expires)")

	rootCmd.AddCommand(tokenCmd)
}
