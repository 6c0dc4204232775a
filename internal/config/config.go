package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config represents the application configuration. Values come from the
// TOML file and are then overridden by environment variables.
type Config struct {
	API       APIConfig       `toml:"api"`
	Cache     CacheConfig     `toml:"cache"`
	Server    ServerConfig    `toml:"server"`
	Log       LogConfig       `toml:"log"`
	Tracing   TracingConfig   `toml:"tracing"`
	Display   DisplayConfig   `toml:"display"`
	Interface InterfaceConfig `toml:"interface"`
}

// APIConfig contains BGG API client configuration.
type APIConfig struct {
	Token              string   `toml:"token" envconfig:"BGG_TOKEN"`
	BaseURL            string   `toml:"base_url" envconfig:"BGG_BASE_URL"`
	Timeout            Duration `toml:"timeout" envconfig:"BGG_TIMEOUT"`
	MinRequestInterval Duration `toml:"min_request_interval" envconfig:"BGG_MIN_REQUEST_INTERVAL"`
	HourlyLimit        int      `toml:"hourly_limit" envconfig:"BGG_HOURLY_LIMIT"`
	BatchSize          int      `toml:"batch_size" envconfig:"BGG_BATCH_SIZE"`
	TopK               int      `toml:"top_k" envconfig:"BGG_SEARCH_TOP_K"`
}

// CacheConfig contains cache configuration. An empty RedisAddr keeps game
// details in memory only.
type CacheConfig struct {
	MaxEntries    int      `toml:"max_entries" envconfig:"CACHE_MAX_ENTRIES"`
	SearchTTL     Duration `toml:"search_ttl" envconfig:"CACHE_SEARCH_TTL"`
	DetailsTTL    Duration `toml:"details_ttl" envconfig:"CACHE_DETAILS_TTL"`
	MetadataTTL   Duration `toml:"metadata_ttl" envconfig:"CACHE_METADATA_TTL"`
	SweepInterval Duration `toml:"sweep_interval" envconfig:"CACHE_SWEEP_INTERVAL"`
	RedisAddr     string   `toml:"redis_addr" envconfig:"REDIS_ADDR"`
	RedisPassword string   `toml:"redis_password" envconfig:"REDIS_PASSWORD"`
	RedisDB       int      `toml:"redis_db" envconfig:"REDIS_DB"`
}

// ServerConfig contains HTTP API configuration.
type ServerConfig struct {
	Addr            string   `toml:"addr" envconfig:"SERVER_ADDR"`
	ReadTimeout     Duration `toml:"read_timeout" envconfig:"SERVER_READ_TIMEOUT"`
	WriteTimeout    Duration `toml:"write_timeout" envconfig:"SERVER_WRITE_TIMEOUT"`
	ShutdownTimeout Duration `toml:"shutdown_timeout" envconfig:"SERVER_SHUTDOWN_TIMEOUT"`
	CORSOrigins     []string `toml:"cors_origins" envconfig:"SERVER_CORS_ORIGINS"`
}

// LogConfig contains logging configuration.
type LogConfig struct {
	Level  string `toml:"level" envconfig:"LOG_LEVEL"`   // "debug", "info", "warn", "error"
	Format string `toml:"format" envconfig:"LOG_FORMAT"` // "text", "json"
}

// TracingConfig contains OpenTelemetry configuration. Tracing is off when
// Endpoint is empty.
type TracingConfig struct {
	Endpoint string `toml:"endpoint" envconfig:"OTEL_EXPORTER_OTLP_ENDPOINT"`
}

// DisplayConfig contains display-related configuration.
type DisplayConfig struct {
	ListWidth   int `toml:"list_width"`
	DetailWidth int `toml:"detail_width"`
}

// InterfaceConfig contains interface-related configuration.
type InterfaceConfig struct {
	Transition    string `toml:"transition"`     // "none", "fade", "glitch", "sweep"
	Selection     string `toml:"selection"`      // "none", "wave", "blink", "glitch"
	ListDensity   string `toml:"list_density"`   // "compact", "normal", "relaxed"
	BorderStyle   string `toml:"border_style"`   // "none", "rounded", "thick", "double", "block"
	DefaultFilter string `toml:"default_filter"` // "", "base-game", "expansion"
}

// Duration is a time.Duration written as "15s" in TOML and in the environment.
type Duration struct {
	time.Duration
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}
	d.Duration = v
	return nil
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:            "https://boardgamegeek.com/xmlapi2",
			Timeout:            Duration{15 * time.Second},
			MinRequestInterval: Duration{time.Second},
			HourlyLimit:        800,
			BatchSize:          15,
			TopK:               15,
		},
		Cache: CacheConfig{
			MaxEntries:    1000,
			SearchTTL:     Duration{30 * time.Minute},
			DetailsTTL:    Duration{24 * time.Hour},
			MetadataTTL:   Duration{7 * 24 * time.Hour},
			SweepInterval: Duration{time.Hour},
		},
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     Duration{15 * time.Second},
			WriteTimeout:    Duration{60 * time.Second},
			ShutdownTimeout: Duration{30 * time.Second},
			CORSOrigins:     []string{"*"},
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Display: DisplayConfig{
			ListWidth:   90,
			DetailWidth: 100,
		},
		Interface: InterfaceConfig{
			Transition:  "fade",
			Selection:   "wave",
			ListDensity: "normal",
			BorderStyle: "rounded",
		},
	}
}

// ConfigPath returns the path to the configuration file.
func ConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "bgg-tui", "config.toml"), nil
}

// Load loads the configuration file from the default path, a .env file from
// the working directory if present, and then the environment.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	cfg, err := LoadFromPath(path)
	if err != nil {
		return nil, err
	}

	// .env is optional
	_ = godotenv.Load()

	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromPath loads the configuration from the specified path.
func LoadFromPath(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		// Corrupt file: keep a backup and fall back to defaults.
		raw, readErr := os.ReadFile(path)
		if readErr == nil {
			_ = os.Rename(path, path+".bak")
			if token := extractToken(raw); token != "" {
				cfg.API.Token = token
			}
		}
		return DefaultConfigWithToken(cfg.API.Token), nil
	}

	return cfg, nil
}

// DefaultConfigWithToken returns the defaults with the given API token.
func DefaultConfigWithToken(token string) *Config {
	cfg := DefaultConfig()
	cfg.API.Token = token
	return cfg
}

// ApplyEnv overrides configuration values with any environment variables
// that are set. Unset variables leave the current value untouched.
func (c *Config) ApplyEnv() error {
	if err := envconfig.Process("", c); err != nil {
		return fmt.Errorf("failed to load config from environment: %w", err)
	}
	return nil
}

// extractToken attempts to extract the API token from raw config bytes
// using regex when TOML parsing has failed.
func extractToken(raw []byte) string {
	re := regexp.MustCompile(`(?m)^\s*token\s*=\s*"([^"]*)"`)
	if m := re.FindSubmatch(raw); len(m) > 1 {
		return string(m[1])
	}
	return ""
}

// Save saves the configuration to the default path.
func (c *Config) Save() error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return c.SaveToPath(path)
}

// SaveToPath saves the configuration to the specified path.
func (c *Config) SaveToPath(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	encoder := toml.NewEncoder(f)
	return encoder.Encode(c)
}

// HasToken returns true if a token is configured.
func (c *Config) HasToken() bool {
	return c.API.Token != ""
}

// UsesRedis reports whether a shared Redis details store is configured.
func (c *Config) UsesRedis() bool {
	return c.Cache.RedisAddr != ""
}
