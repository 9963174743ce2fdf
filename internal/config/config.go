package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/Dem-News/demnews/internal/news"
)

// Config is the persistent application configuration
type Config struct {
	// Backend connection
	API APIConfig `json:"api"`

	// Feed defaults
	Feed FeedConfig `json:"feed"`

	// UI Preferences
	UI UIConfig `json:"ui"`
}

// APIConfig holds backend connection settings
type APIConfig struct {
	BaseURL   string `json:"base_url"`
	TimeoutMs int    `json:"timeout_ms"`
}

// Timeout returns the request timeout as a duration.
func (a APIConfig) Timeout() time.Duration {
	return time.Duration(a.TimeoutMs) * time.Millisecond
}

// FeedConfig holds defaults for scoped fetches
type FeedConfig struct {
	RadiusKm float64 `json:"radius_km"`
	// FallbackLatitude/Longitude are used when no device location has
	// ever been recorded (fresh install, location denied).
	FallbackLatitude  float64 `json:"fallback_latitude"`
	FallbackLongitude float64 `json:"fallback_longitude"`
	VerifiedOnly      bool    `json:"verified_only"`
}

// Fallback returns the configured fallback coordinates.
func (f FeedConfig) Fallback() news.GeoPoint {
	return news.GeoPoint{Latitude: f.FallbackLatitude, Longitude: f.FallbackLongitude}
}

// UIConfig holds UI preferences
type UIConfig struct {
	Theme       string `json:"theme"`
	DensityMode string `json:"density_mode"` // "comfortable" or "compact"
	ShowTrust   bool   `json:"show_trust"`
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:   "http://localhost:3000/api",
			TimeoutMs: 10000,
		},
		Feed: FeedConfig{
			RadiusKm: 10,
			// Kathmandu city center.
			FallbackLatitude:  27.7172,
			FallbackLongitude: 85.3240,
			VerifiedOnly:      false,
		},
		UI: UIConfig{
			Theme:       "dark",
			DensityMode: "comfortable",
			ShowTrust:   true,
		},
	}
}

// ConfigPath returns the path to the config file
func ConfigPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".demnews", "config.json")
}

// DataDir returns the directory holding the session database and logs.
func DataDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".demnews")
}

// Load reads config from disk, or returns defaults
func Load() (*Config, error) {
	return loadFrom(ConfigPath())
}

func loadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, err
	}

	// Unmarshal over the defaults so new fields pick up default values
	// when an older config file omits them.
	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return DefaultConfig(), nil
	}
	if cfg.API.BaseURL == "" {
		cfg.API.BaseURL = DefaultConfig().API.BaseURL
	}
	if cfg.API.TimeoutMs <= 0 {
		cfg.API.TimeoutMs = DefaultConfig().API.TimeoutMs
	}
	if cfg.Feed.RadiusKm <= 0 {
		cfg.Feed.RadiusKm = DefaultConfig().Feed.RadiusKm
	}

	return cfg, nil
}

// Save writes config to disk
func (c *Config) Save() error {
	return c.saveTo(ConfigPath())
}

func (c *Config) saveTo(path string) error {
	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0600)
}
