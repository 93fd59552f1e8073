package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
)

// Config holds all reefboard configuration.
type Config struct {
	Server     ServerConfig     `toml:"server"`
	Sources    SourcesConfig    `toml:"sources"`
	Data       DataConfig       `toml:"data"`
	Cache      CacheConfig      `toml:"cache"`
	Appearance AppearanceConfig `toml:"appearance"`
}

// ServerConfig holds HTTP API settings.
type ServerConfig struct {
	Addr           string   `toml:"addr"`
	AllowedOrigins []string `toml:"allowed_origins,omitempty"`
}

// SourcesConfig points at the external tools and files the dashboard reads.
type SourcesConfig struct {
	OpenClawBin    string `toml:"openclaw_bin"`
	GogBin         string `toml:"gog_bin"`
	GogAccount     string `toml:"gog_account,omitempty"`
	AgentsDir      string `toml:"agents_dir,omitempty"`
	PricingFile    string `toml:"pricing_file,omitempty"`
	SessionSource  string `toml:"session_source"` // "cli" or "files"
	PolymarketURL  string `toml:"polymarket_url,omitempty"`
	CommandTimeout int    `toml:"command_timeout_sec"`
}

// DataConfig locates the ledgers, task list and bet database.
type DataConfig struct {
	Dir string `toml:"dir,omitempty"`
}

// CacheConfig holds per-endpoint cache windows in seconds.
type CacheConfig struct {
	StatusSec   int `toml:"status_sec"`
	ActivitySec int `toml:"activity_sec"`
	BriefSec    int `toml:"brief_sec"`
	MarketsSec  int `toml:"markets_sec"`
}

// AppearanceConfig holds theme settings.
type AppearanceConfig struct {
	Theme string `toml:"theme"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	home, _ := os.UserHomeDir()
	return Config{
		Server: ServerConfig{
			Addr:           "127.0.0.1:3001",
			AllowedOrigins: []string{"http://localhost:3000"},
		},
		Sources: SourcesConfig{
			OpenClawBin:    "openclaw",
			GogBin:         "gog",
			AgentsDir:      filepath.Join(home, ".openclaw", "agents"),
			PricingFile:    filepath.Join(home, ".openclaw", "openclaw.json"),
			SessionSource:  "cli",
			PolymarketURL:  "https://gamma-api.polymarket.com",
			CommandTimeout: 10,
		},
		Data: DataConfig{
			Dir: filepath.Join(home, ".local", "share", "reefboard"),
		},
		Cache: CacheConfig{
			StatusSec:   60,
			ActivitySec: 30,
			BriefSec:    60,
			MarketsSec:  300,
		},
		Appearance: AppearanceConfig{
			Theme: "flexoki-dark",
		},
	}
}

// Seconds converts a whole-second setting to a duration, falling back to def
// for non-positive values.
func Seconds(n int, def time.Duration) time.Duration {
	if n <= 0 {
		return def
	}
	return time.Duration(n) * time.Second
}

// ConfigDir returns the XDG-compliant config directory.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "reefboard")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "reefboard")
}

// ConfigPath returns the full path to the config file.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// Load reads the config file at path (ConfigPath when empty), returning
// defaults if it doesn't exist. Environment overrides are applied last.
func Load(path string) (Config, error) {
	if path == "" {
		path = ConfigPath()
	}
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			ApplyEnv(&cfg)
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	ApplyEnv(&cfg)
	return cfg, nil
}

// ApplyEnv overlays REEFBOARD_* environment variables onto cfg.
func ApplyEnv(cfg *Config) {
	setString := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	setString("REEFBOARD_ADDR", &cfg.Server.Addr)
	setString("REEFBOARD_OPENCLAW_BIN", &cfg.Sources.OpenClawBin)
	setString("REEFBOARD_GOG_BIN", &cfg.Sources.GogBin)
	setString("REEFBOARD_GOG_ACCOUNT", &cfg.Sources.GogAccount)
	setString("REEFBOARD_AGENTS_DIR", &cfg.Sources.AgentsDir)
	setString("REEFBOARD_PRICING_FILE", &cfg.Sources.PricingFile)
	setString("REEFBOARD_SESSION_SOURCE", &cfg.Sources.SessionSource)
	setString("REEFBOARD_DATA_DIR", &cfg.Data.Dir)

	if v := os.Getenv("REEFBOARD_COMMAND_TIMEOUT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Sources.CommandTimeout = n
		}
	}
}

// Save writes the config to path (ConfigPath when empty).
func Save(path string, cfg Config) error {
	if path == "" {
		path = ConfigPath()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	enc := toml.NewEncoder(f)
	return enc.Encode(cfg)
}

// Exists returns true if a config file exists at path (ConfigPath when empty).
func Exists(path string) bool {
	if path == "" {
		path = ConfigPath()
	}
	_, err := os.Stat(path)
	return err == nil
}
