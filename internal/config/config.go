package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// ViewMode selects how a diff is laid out
type ViewMode string

const (
	// SideBySide shows the old and new text in two aligned columns
	SideBySide ViewMode = "side-by-side"
	// Unified interleaves removed and added lines in a single column
	Unified ViewMode = "unified"
)

// ParseViewMode accepts the canonical names plus the short aliases "sbs" and "split".
func ParseViewMode(s string) (ViewMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case string(SideBySide), "sbs", "split":
		return SideBySide, nil
	case string(Unified):
		return Unified, nil
	default:
		return "", fmt.Errorf("invalid view mode %q (want %q or %q)", s, SideBySide, Unified)
	}
}

// Config holds all configuration options for kori
type Config struct {
	// Rendering
	View        ViewMode `mapstructure:"view"`
	Width       int      `mapstructure:"width"` // total terminal columns for side-by-side output
	LineNumbers bool     `mapstructure:"line_numbers"`
	Color       bool     `mapstructure:"color"`

	// Number of (old, new) pairs whose diff is memoized
	CacheSize int `mapstructure:"cache_size"`

	// Logging configuration
	Debug   bool   `mapstructure:"debug"`
	LogFile string `mapstructure:"log_file"`
}

const (
	DefaultView        = SideBySide
	DefaultWidth       = 120
	DefaultLineNumbers = true
	DefaultColor       = true
	DefaultCacheSize   = 64
	DefaultConfigDir   = ".kori"
	EnvPrefix          = "KORI"
)

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		View:        DefaultView,
		Width:       DefaultWidth,
		LineNumbers: DefaultLineNumbers,
		Color:       DefaultColor,
		CacheSize:   DefaultCacheSize,
	}
}

// Load reads ~/.kori/config.yaml and KORI_* environment variables on top of the
// defaults. A missing config file is not an error. Flags are applied by the caller.
func Load() (*Config, error) {
	cfg := Default()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(getConfigDir())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	// Keys must be known to viper for AutomaticEnv to reach Unmarshal.
	v.SetDefault("view", string(cfg.View))
	v.SetDefault("width", cfg.Width)
	v.SetDefault("line_numbers", cfg.LineNumbers)
	v.SetDefault("color", cfg.Color)
	v.SetDefault("cache_size", cfg.CacheSize)
	v.SetDefault("debug", cfg.Debug)
	v.SetDefault("log_file", cfg.LogFile)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	mode, err := ParseViewMode(string(cfg.View))
	if err != nil {
		return nil, fmt.Errorf("error in config: %w", err)
	}
	cfg.View = mode

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that cannot be rendered.
func (c *Config) Validate() error {
	if _, err := ParseViewMode(string(c.View)); err != nil {
		return err
	}
	if c.Width <= 0 {
		return fmt.Errorf("invalid width %d: must be positive", c.Width)
	}
	if c.CacheSize < 0 {
		return fmt.Errorf("invalid cache_size %d: must not be negative", c.CacheSize)
	}
	return nil
}

// ConfigDir returns the directory holding config.yaml.
func ConfigDir() string {
	return getConfigDir()
}

func getConfigDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(homeDir, DefaultConfigDir)
}
