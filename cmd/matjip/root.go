// ABOUTME: Root Cobra command and global flags
// ABOUTME: Loads config, opens the SQLite database, and builds the bookmark service

package main

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/harper/matjip/internal/bookmarks"
	"github.com/harper/matjip/internal/config"
	"github.com/harper/matjip/internal/geocode"
	"github.com/harper/matjip/internal/logging"
	"github.com/harper/matjip/internal/storage"
	"github.com/spf13/cobra"
)

var (
	db     *storage.SQLiteDB
	cfg    *config.Config
	logger *slog.Logger
	svc    *bookmarks.Service
)

var rootCmd = &cobra.Command{
	Use:   "matjip",
	Short: "Personal restaurant bookmark map",
	Long: `
███╗   ███╗ █████╗ ████████╗     ██╗██╗██████╗
████╗ ████║██╔══██╗╚══██╔══╝     ██║██║██╔══██╗
██╔████╔██║███████║   ██║        ██║██║██████╔╝
██║╚██╔╝██║██╔══██║   ██║   ██   ██║██║██╔═══╝
██║ ╚═╝ ██║██║  ██║   ██║   ╚█████╔╝██║██║
╚═╝     ╚═╝╚═╝  ╚═╝   ╚═╝    ╚════╝ ╚═╝╚═╝

        맛집지도: bookmark the places worth going back to

Examples:
  matjip add 김밥천국 --address "서울특별시 중구 세종대로 110" --category 분식
  matjip add 스시오마카세 --lat 37.5665 --lon 126.978 --rating 4.5 --price 4
  matjip list --category 한식 --sort rating
  matjip favorite 3
  matjip serve`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.LoadEnvFile(); err != nil {
			return err
		}

		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		logger = logging.New(nil, logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

		if dbPath, _ := cmd.Flags().GetString("db"); dbPath != "" {
			db, err = storage.NewSQLiteDB(config.ExpandPath(dbPath))
		} else {
			db, err = cfg.OpenStorage()
		}
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}

		svc, err = newService(db, cfg, logger)
		return err
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if db != nil {
			return db.Close()
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "database path (default: <data_dir>/matjip.db)")
}

// newService wires the repository, geocoder, and search settings together.
func newService(repo storage.RestaurantRepository, c *config.Config, l *slog.Logger) (*bookmarks.Service, error) {
	fields, err := c.GetSearchFields()
	if err != nil {
		return nil, fmt.Errorf("invalid search_fields: %w", err)
	}

	var resolver geocode.Resolver = geocode.Disabled{}
	if c.GeocoderEnabled() {
		opts, err := c.GeocoderOptions()
		if err != nil {
			return nil, err
		}
		opts.Logger = l
		resolver = geocode.NewNominatimClient(opts)
	}

	return bookmarks.New(repo, resolver,
		bookmarks.WithSearchFields(fields),
		bookmarks.WithLogger(l),
		bookmarks.WithNotifier(bookmarks.NotifierFunc(func(c bookmarks.Change) {
			l.Debug("restaurants changed", slog.String("action", c.Action), slog.Int64("id", c.ID))
		})),
	), nil
}

// parseID reads a restaurant id argument.
func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimPrefix(strings.TrimSpace(arg), "#"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid restaurant id %q", arg)
	}
	return id, nil
}
