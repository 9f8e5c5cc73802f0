// ABOUTME: matjip configuration management
// ABOUTME: JSON config at XDG paths, .env loading, and MATJIP_* environment overrides

package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/harper/matjip/internal/geocode"
	"github.com/harper/matjip/internal/query"
	"github.com/harper/matjip/internal/storage"
	"github.com/joho/godotenv"
)

// DefaultAddr is where `matjip serve` listens unless configured otherwise.
const DefaultAddr = "127.0.0.1:8080"

// dbFilename is the SQLite database filename inside the data directory.
const dbFilename = "matjip.db"

// EnvPrefix prefixes every environment override.
const EnvPrefix = "MATJIP_"

// Config stores matjip configuration.
type Config struct {
	// DataDir is the root directory for data storage; matjip.db lives here.
	// Supports ~ expansion for home directory. Defaults to ~/.local/share/matjip.
	DataDir string `json:"data_dir,omitempty"`

	// GeocoderURL is the base URL of a Nominatim-compatible API. Set it to
	// "off" to disable address lookup.
	GeocoderURL string `json:"geocoder_url,omitempty"`
	// GeocoderTimeout is a Go duration string such as "5s".
	GeocoderTimeout string `json:"geocoder_timeout,omitempty"`
	// GeocoderCountryCodes biases lookups, e.g. "kr".
	GeocoderCountryCodes string `json:"geocoder_country_codes,omitempty"`
	UserAgent            string `json:"user_agent,omitempty"`

	// Addr is the listen address for the HTTP server.
	Addr string `json:"addr,omitempty"`
	// JWTSecret enables bearer token auth on the HTTP API when set.
	JWTSecret string `json:"jwt_secret,omitempty"`

	LogLevel  string `json:"log_level,omitempty"`
	LogFormat string `json:"log_format,omitempty"`

	// SearchFields is a comma separated list of keyword search fields.
	SearchFields string `json:"search_fields,omitempty"`
}

// GetDataDir returns the configured data directory with ~ expanded,
// defaulting to the standard XDG data directory.
func (c *Config) GetDataDir() string {
	if c.DataDir == "" {
		return defaultDataDir()
	}
	return ExpandPath(c.DataDir)
}

// GetDBPath returns the SQLite database path inside the data directory.
func (c *Config) GetDBPath() string {
	return filepath.Join(c.GetDataDir(), dbFilename)
}

// GeocoderEnabled reports whether address lookup is configured.
func (c *Config) GeocoderEnabled() bool {
	return !strings.EqualFold(strings.TrimSpace(c.GeocoderURL), "off")
}

// GetGeocoderURL returns the geocoder base URL, defaulting to public Nominatim.
func (c *Config) GetGeocoderURL() string {
	if strings.TrimSpace(c.GeocoderURL) == "" {
		return geocode.DefaultBaseURL
	}
	return strings.TrimSpace(c.GeocoderURL)
}

// GetGeocoderTimeout parses GeocoderTimeout, defaulting to 5 seconds.
func (c *Config) GetGeocoderTimeout() (time.Duration, error) {
	raw := strings.TrimSpace(c.GeocoderTimeout)
	if raw == "" {
		return geocode.DefaultTimeout, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("parse geocoder_timeout: %w", err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("geocoder_timeout must be positive, got %s", raw)
	}
	return d, nil
}

// GetAddr returns the HTTP listen address.
func (c *Config) GetAddr() string {
	if strings.TrimSpace(c.Addr) == "" {
		return DefaultAddr
	}
	return strings.TrimSpace(c.Addr)
}

// GetSearchFields parses SearchFields, defaulting to every searchable field.
func (c *Config) GetSearchFields() ([]query.Field, error) {
	return query.ParseSearchFields(c.SearchFields)
}

// GeocoderOptions builds client options from the geocoder settings.
func (c *Config) GeocoderOptions() (geocode.Options, error) {
	timeout, err := c.GetGeocoderTimeout()
	if err != nil {
		return geocode.Options{}, err
	}
	return geocode.Options{
		BaseURL:      c.GetGeocoderURL(),
		Timeout:      timeout,
		UserAgent:    c.UserAgent,
		CountryCodes: c.GeocoderCountryCodes,
	}, nil
}

// OpenStorage opens the SQLite database in the data directory.
func (c *Config) OpenStorage() (*storage.SQLiteDB, error) {
	return storage.NewSQLiteDB(c.GetDBPath())
}

// defaultDataDir returns the default XDG data directory for matjip.
func defaultDataDir() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			home = "."
		}
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "matjip")
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) string {
	if path == "" {
		return ""
	}
	if path == "~" {
		home, _ := os.UserHomeDir()
		return home
	}
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[2:])
	}
	return path
}

// envOverrides maps MATJIP_* variable suffixes to config fields.
func (c *Config) envOverrides() map[string]*string {
	return map[string]*string{
		"DATA_DIR":               &c.DataDir,
		"GEOCODER_URL":           &c.GeocoderURL,
		"GEOCODER_TIMEOUT":       &c.GeocoderTimeout,
		"GEOCODER_COUNTRY_CODES": &c.GeocoderCountryCodes,
		"USER_AGENT":             &c.UserAgent,
		"ADDR":                   &c.Addr,
		"JWT_SECRET":             &c.JWTSecret,
		"LOG_LEVEL":              &c.LogLevel,
		"LOG_FORMAT":             &c.LogFormat,
		"SEARCH_FIELDS":          &c.SearchFields,
	}
}

// ApplyEnv overrides fields from non-empty MATJIP_* environment variables.
func (c *Config) ApplyEnv() {
	for suffix, field := range c.envOverrides() {
		if v, ok := os.LookupEnv(EnvPrefix + suffix); ok && strings.TrimSpace(v) != "" {
			*field = strings.TrimSpace(v)
		}
	}
}

// LoadEnvFile loads variables from .env files into the process environment.
// Variables already set are kept. Missing files are not an error.
func LoadEnvFile(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	var existing []string
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			existing = append(existing, p)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	if err := godotenv.Load(existing...); err != nil {
		return fmt.Errorf("load env file: %w", err)
	}
	return nil
}

// GetConfigPath returns the config file path.
func GetConfigPath() string {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, _ := os.UserHomeDir()
		configDir = filepath.Join(homeDir, ".config")
	}
	return filepath.Join(configDir, "matjip", "config.json")
}

// Load reads config from disk, creating a default file on first run, then
// applies environment overrides.
func Load() (*Config, error) {
	path := GetConfigPath()
	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		cfg := &Config{}
		if saveErr := cfg.Save(); saveErr != nil {
			fmt.Fprintf(os.Stderr, "warning: could not save default config: %v\n", saveErr)
		}
		cfg.ApplyEnv()
		return cfg, nil
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	cfg.ApplyEnv()
	return &cfg, nil
}

// Save writes config to disk atomically.
func (c *Config) Save() error {
	path := GetConfigPath()
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return atomicWrite(path, data)
}

// atomicWrite writes data to a temp file next to path and renames it into place.
func atomicWrite(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil { //nolint:gosec // user config directory
		return fmt.Errorf("create config directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".config-*.json")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, 0600); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	return os.Rename(tmpName, path)
}
