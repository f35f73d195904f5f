// Package config loads and saves the orthoroute TOML configuration.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"orthoroute/routing"
)

// Config holds orthoroute configuration.
type Config struct {
	Grid      GridConfig      `toml:"grid"`
	Routing   RoutingConfig   `toml:"routing"`
	Clearance ClearanceConfig `toml:"clearance"`
	Render    RenderConfig    `toml:"render"`
	Log       LogConfig       `toml:"log"`
}

// GridConfig controls snapping.
type GridConfig struct {
	Size float64 `toml:"size"`
}

// RoutingConfig controls route synthesis.
type RoutingConfig struct {
	MinLength      float64 `toml:"min_length"`
	MinStartLength float64 `toml:"min_start_length"`
	MaxSteps       int     `toml:"max_steps"`
}

// ClearanceConfig controls overlap removal.
type ClearanceConfig struct {
	Distance       float64 `toml:"distance"`
	LeftMargin     float64 `toml:"left_margin"`
	TopMargin      float64 `toml:"top_margin"`
	MaxCoordinate  float64 `toml:"max_coordinate"`
	VerticalWindow float64 `toml:"vertical_window"`
	MaxPasses      int     `toml:"max_passes"`
}

// RenderConfig controls PNG output.
type RenderConfig struct {
	Scale  float64 `toml:"scale"`
	Labels bool    `toml:"labels"`
}

// LogConfig controls logging.
type LogConfig struct {
	Level string `toml:"level"` // "debug", "info", "warn", "error"
}

// Default returns the default configuration.
func Default() *Config {
	opts := routing.DefaultOptions()
	return &Config{
		Grid: GridConfig{Size: opts.GridSize},
		Routing: RoutingConfig{
			MinLength:      opts.MinLength,
			MinStartLength: opts.MinStartLength,
			MaxSteps:       opts.MaxSteps,
		},
		Clearance: ClearanceConfig{
			Distance:       opts.Clearance,
			LeftMargin:     opts.LeftMargin,
			TopMargin:      opts.TopMargin,
			MaxCoordinate:  opts.MaxCoordinate,
			VerticalWindow: opts.VerticalWindow,
			MaxPasses:      opts.MaxPasses,
		},
		Render: RenderConfig{Scale: 2, Labels: true},
		Log:    LogConfig{Level: "info"},
	}
}

// ConfigDir returns the orthoroute config directory path.
func ConfigDir() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "orthoroute")
}

// Path returns the default config file path.
func Path() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// Load reads the config file at path, or the default path when path is
// empty. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		path = Path()
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the config to path, or the default path when path is empty.
func Save(path string, cfg *Config) error {
	if path == "" {
		path = Path()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}

// EnsureExists creates the config file with defaults if it doesn't exist.
func EnsureExists(path string) error {
	if path == "" {
		path = Path()
	}
	if _, err := os.Stat(path); err == nil {
		return nil // already exists
	}
	return Save(path, Default())
}

// RoutingOptions converts the config to engine options.
func (c *Config) RoutingOptions() routing.Options {
	return routing.Options{
		GridSize:       c.Grid.Size,
		MinLength:      c.Routing.MinLength,
		MinStartLength: c.Routing.MinStartLength,
		MaxSteps:       c.Routing.MaxSteps,
		Clearance:      c.Clearance.Distance,
		LeftMargin:     c.Clearance.LeftMargin,
		TopMargin:      c.Clearance.TopMargin,
		MaxCoordinate:  c.Clearance.MaxCoordinate,
		VerticalWindow: c.Clearance.VerticalWindow,
		MaxPasses:      c.Clearance.MaxPasses,
	}
}

// LogLevel parses the configured log level. Unknown names fall back to info.
func (c *Config) LogLevel() slog.Level {
	switch strings.ToLower(c.Log.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
