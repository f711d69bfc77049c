// Package config provides configuration loading from YAML or TOML files.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server" toml:"server"`
	Catalog  CatalogConfig  `yaml:"catalog" toml:"catalog"`
	Embed    EmbedConfig    `yaml:"embed" toml:"embed"`
	Playback PlaybackConfig `yaml:"playback" toml:"playback"`
	Spotify  SpotifyConfig  `yaml:"spotify" toml:"spotify"`
}

// ServerConfig represents server configuration.
type ServerConfig struct {
	Addr               string      `yaml:"addr" toml:"addr" default:":8080" validate:"required"`
	Token              string      `yaml:"token" toml:"token"`
	DispatchRate       float64     `yaml:"dispatch_rate" toml:"dispatch_rate" default:"50" validate:"gt=0"`
	DispatchBurst      int         `yaml:"dispatch_burst" toml:"dispatch_burst" default:"100" validate:"gte=1"`
	SessionIdleMinutes int         `yaml:"session_idle_minutes" toml:"session_idle_minutes" default:"30" validate:"gte=1,lte=1440"`
	MaxSessions        int         `yaml:"max_sessions" toml:"max_sessions" default:"1000" validate:"gte=1"`
	Hooks              HooksConfig `yaml:"hooks" toml:"hooks"`
}

// HooksConfig represents lifecycle hooks configuration.
type HooksConfig struct {
	OnStarted []string `yaml:"on_started" toml:"on_started"`
	OnStopped []string `yaml:"on_stopped" toml:"on_stopped"`
}

// CatalogConfig represents where song records come from.
type CatalogConfig struct {
	Path            string `yaml:"path" toml:"path"`
	SpotifyPlaylist string `yaml:"spotify_playlist" toml:"spotify_playlist"`
}

// EmbedConfig represents video embed configuration.
type EmbedConfig struct {
	VideoHost string `yaml:"video_host" toml:"video_host" default:"www.youtube.com" validate:"hostname"`
	Mute      bool   `yaml:"mute" toml:"mute"`
}

// PlaybackConfig represents playback controller configuration.
type PlaybackConfig struct {
	UpdateBuffer int `yaml:"update_buffer" toml:"update_buffer" default:"16" validate:"gte=1,lte=1024"`
}

// SpotifyConfig represents Spotify API configuration.
// Credentials are only needed when the catalog reads a Spotify playlist.
type SpotifyConfig struct {
	ClientID     string `yaml:"client_id" toml:"client_id"`
	ClientSecret string `yaml:"client_secret" toml:"client_secret"`
	RefreshToken string `yaml:"refresh_token" toml:"refresh_token"`
	Market       string `yaml:"market" toml:"market" validate:"omitempty,len=2" default:"JP"`
}

// Load loads configuration from a file.
// Files ending in .toml are read as TOML, anything else as YAML.
// Environment variables take precedence over file values for sensitive fields.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config file")
	}

	cfg, err := Parse(data, filepath.Ext(path))
	if err != nil {
		return nil, err
	}

	// Relative catalog paths are resolved against the config file
	if cfg.Catalog.Path != "" && !filepath.IsAbs(cfg.Catalog.Path) {
		cfg.Catalog.Path = filepath.Join(filepath.Dir(path), cfg.Catalog.Path)
	}
	return cfg, nil
}

// Parse decodes, completes and validates configuration data.
// ext selects the format the way a file extension would.
func Parse(data []byte, ext string) (*Config, error) {
	var cfg Config
	if strings.EqualFold(ext, ".toml") {
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return nil, errors.Wrap(err, "failed to parse toml config")
		}
	} else if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(err, "failed to parse config file")
	}

	cfg.overrideFromEnv()

	if err := defaults.Set(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to set defaults")
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "config validation failed")
	}

	return &cfg, nil
}

// overrideFromEnv overrides config values with environment variables.
func (c *Config) overrideFromEnv() {
	if v := os.Getenv("SPOTIFY_CLIENT_ID"); v != "" {
		c.Spotify.ClientID = v
	}
	if v := os.Getenv("SPOTIFY_CLIENT_SECRET"); v != "" {
		c.Spotify.ClientSecret = v
	}
	if v := os.Getenv("SPOTIFY_REFRESH_TOKEN"); v != "" {
		c.Spotify.RefreshToken = v
	}
	if v := os.Getenv("VERSIONBOX_TOKEN"); v != "" {
		c.Server.Token = v
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(err, "struct validation failed")
	}

	if c.Catalog.Path == "" && c.Catalog.SpotifyPlaylist == "" {
		return errors.New("catalog requires a path or a spotify_playlist")
	}
	if c.Catalog.SpotifyPlaylist != "" && !c.HasSpotifyCredentials() {
		return errors.Newf("spotify_playlist %s requires spotify client_id, client_secret and refresh_token",
			c.Catalog.SpotifyPlaylist)
	}

	return nil
}

// HasSpotifyCredentials reports whether all Spotify credentials are set.
func (c *Config) HasSpotifyCredentials() bool {
	return c.Spotify.ClientID != "" && c.Spotify.ClientSecret != "" && c.Spotify.RefreshToken != ""
}

// SessionIdle returns how long a session may stay silent before it is reaped.
func (c *Config) SessionIdle() time.Duration {
	return time.Duration(c.Server.SessionIdleMinutes) * time.Minute
}
