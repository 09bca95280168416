// Package config provides configuration loading and validation for the
// animation agent.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all service settings. Values come from (in order of
// precedence) environment variables, a JSON or YAML config file, and
// defaults mirroring the reference deployment.
type Config struct {
	// Server
	Port int `json:"port,omitempty" yaml:"port,omitempty"`

	// Pipeline
	Workers              int    `json:"workers,omitempty" yaml:"workers,omitempty"`
	QueueSize            int    `json:"queue_size,omitempty" yaml:"queue_size,omitempty"`
	RenderTimeoutSeconds int    `json:"render_timeout_seconds,omitempty" yaml:"render_timeout_seconds,omitempty"`
	ManimBinary          string `json:"manim_binary,omitempty" yaml:"manim_binary,omitempty"`
	ManimQuality         string `json:"manim_quality,omitempty" yaml:"manim_quality,omitempty"`

	// Files
	AnimationsDir string `json:"animations_dir,omitempty" yaml:"animations_dir,omitempty"`
	MediaDir      string `json:"media_dir,omitempty" yaml:"media_dir,omitempty"`
	MaxFileSizeMB int    `json:"max_file_size_mb,omitempty" yaml:"max_file_size_mb,omitempty"`

	// Cleanup
	CleanupTTLMinutes int    `json:"cleanup_ttl_minutes,omitempty" yaml:"cleanup_ttl_minutes,omitempty"`
	JanitorSchedule   string `json:"janitor_schedule,omitempty" yaml:"janitor_schedule,omitempty"`

	// Integrations
	APIKey      string `json:"api_key,omitempty" yaml:"api_key,omitempty"`
	DatabaseURL string `json:"database_url,omitempty" yaml:"database_url,omitempty"`

	// Logging
	LogLevel  string `json:"log_level,omitempty" yaml:"log_level,omitempty"`
	LogFormat string `json:"log_format,omitempty" yaml:"log_format,omitempty"`
}

// Default returns the reference configuration.
func Default() Config {
	return Config{
		Port:                 8000,
		Workers:              4,
		QueueSize:            64,
		RenderTimeoutSeconds: 30,
		ManimBinary:          "manim",
		ManimQuality:         "low",
		AnimationsDir:        "animations",
		MediaDir:             "media",
		MaxFileSizeMB:        100,
		CleanupTTLMinutes:    0, // janitor disabled unless configured
		JanitorSchedule:      "@every 10m",
		LogLevel:             "info",
		LogFormat:            "text",
	}
}

// Load reads a config file (JSON or YAML, by extension) and fills unset
// fields with defaults, then applies environment overrides. An empty path
// yields defaults plus environment.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		var fileCfg Config
		switch strings.ToLower(filepath.Ext(path)) {
		case ".yaml", ".yml":
			if err := yaml.Unmarshal(data, &fileCfg); err != nil {
				return nil, fmt.Errorf("failed to parse config YAML: %w", err)
			}
		default:
			if err := json.Unmarshal(data, &fileCfg); err != nil {
				return nil, fmt.Errorf("failed to parse config JSON: %w", err)
			}
		}
		cfg = cfg.merge(fileCfg)
	}

	cfg.applyEnv()
	return &cfg, nil
}

// merge overlays non-zero fields of other onto c.
func (c Config) merge(other Config) Config {
	result := c
	if other.Port != 0 {
		result.Port = other.Port
	}
	if other.Workers != 0 {
		result.Workers = other.Workers
	}
	if other.QueueSize != 0 {
		result.QueueSize = other.QueueSize
	}
	if other.RenderTimeoutSeconds != 0 {
		result.RenderTimeoutSeconds = other.RenderTimeoutSeconds
	}
	if other.ManimBinary != "" {
		result.ManimBinary = other.ManimBinary
	}
	if other.ManimQuality != "" {
		result.ManimQuality = other.ManimQuality
	}
	if other.AnimationsDir != "" {
		result.AnimationsDir = other.AnimationsDir
	}
	if other.MediaDir != "" {
		result.MediaDir = other.MediaDir
	}
	if other.MaxFileSizeMB != 0 {
		result.MaxFileSizeMB = other.MaxFileSizeMB
	}
	if other.CleanupTTLMinutes != 0 {
		result.CleanupTTLMinutes = other.CleanupTTLMinutes
	}
	if other.JanitorSchedule != "" {
		result.JanitorSchedule = other.JanitorSchedule
	}
	if other.APIKey != "" {
		result.APIKey = other.APIKey
	}
	if other.DatabaseURL != "" {
		result.DatabaseURL = other.DatabaseURL
	}
	if other.LogLevel != "" {
		result.LogLevel = other.LogLevel
	}
	if other.LogFormat != "" {
		result.LogFormat = other.LogFormat
	}
	return result
}

// applyEnv overrides fields from environment variables. Names follow the
// reference deployment (PORT, ANIMATIONS_DIR, MANIM_QUALITY, ...).
func (c *Config) applyEnv() {
	setString(&c.AnimationsDir, "ANIMATIONS_DIR")
	setString(&c.MediaDir, "MEDIA_DIR")
	setString(&c.ManimBinary, "MANIM_BINARY")
	setString(&c.ManimQuality, "MANIM_QUALITY")
	setString(&c.APIKey, "GEMINI_API_KEY")
	setString(&c.DatabaseURL, "DATABASE_URL")
	setString(&c.LogLevel, "LOG_LEVEL")
	setString(&c.LogFormat, "LOG_FORMAT")
	setString(&c.JanitorSchedule, "JANITOR_SCHEDULE")
	setInt(&c.Port, "PORT")
	setInt(&c.Workers, "WORKERS")
	setInt(&c.QueueSize, "QUEUE_SIZE")
	setInt(&c.RenderTimeoutSeconds, "RENDER_TIMEOUT_SECONDS")
	setInt(&c.MaxFileSizeMB, "MAX_FILE_SIZE_MB")
	setInt(&c.CleanupTTLMinutes, "CLEANUP_TTL_MINUTES")
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

// Validate checks that the configuration has usable values.
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("config error: 'port' must be between 1 and 65535")
	}
	if c.Workers <= 0 {
		return fmt.Errorf("config error: 'workers' must be positive")
	}
	if c.RenderTimeoutSeconds <= 0 {
		return fmt.Errorf("config error: 'render_timeout_seconds' must be positive")
	}
	switch strings.ToLower(c.ManimQuality) {
	case "low", "medium", "high":
	default:
		return fmt.Errorf("config error: 'manim_quality' must be low, medium or high")
	}
	if c.MaxFileSizeMB < 0 {
		return fmt.Errorf("config error: 'max_file_size_mb' must be non-negative")
	}
	if c.CleanupTTLMinutes < 0 {
		return fmt.Errorf("config error: 'cleanup_ttl_minutes' must be non-negative")
	}
	return nil
}

// RenderTimeout returns the render timeout as a duration.
func (c *Config) RenderTimeout() time.Duration {
	return time.Duration(c.RenderTimeoutSeconds) * time.Second
}

// CleanupTTL returns the janitor retention window; zero disables sweeping.
func (c *Config) CleanupTTL() time.Duration {
	return time.Duration(c.CleanupTTLMinutes) * time.Minute
}

// MaxArtifactBytes returns the artifact size limit in bytes; zero disables
// the check.
func (c *Config) MaxArtifactBytes() int64 {
	return int64(c.MaxFileSizeMB) * 1024 * 1024
}
