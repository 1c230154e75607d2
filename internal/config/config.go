package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds all affect configuration.
// Defaults come from Default(); Load() overlays AFFECT_* environment variables.
type Config struct {
	Server   ServerConfig   `toml:"server" envPrefix:"SERVER_"`
	Database DatabaseConfig `toml:"database" envPrefix:"DATABASE_"`
	Engine   EngineConfig   `toml:"engine" envPrefix:"ENGINE_"`
	Params   ParamsConfig   `toml:"params" envPrefix:"PARAMS_"`
	Log      LogConfig      `toml:"log" envPrefix:"LOG_"`
}

type ServerConfig struct {
	Bind string `toml:"bind" env:"BIND"`
	Port int    `toml:"port" env:"PORT"`
}

type DatabaseConfig struct {
	Path string `toml:"path" env:"PATH"`
}

type EngineConfig struct {
	GeneratePeriod    time.Duration `toml:"generate_period" env:"GENERATE_PERIOD"`
	DecayPeriod       time.Duration `toml:"decay_period" env:"DECAY_PERIOD"`
	DecayRate         float64       `toml:"decay_rate" env:"DECAY_RATE"` // must be in [0,1]
	Namespace         string        `toml:"namespace" env:"NAMESPACE"`
	Node              string        `toml:"node" env:"NODE"`
	Debug             bool          `toml:"debug" env:"DEBUG"`
	DebugEmotions     []string      `toml:"debug_emotions" env:"DEBUG_EMOTIONS"`
	DebugDesires      []string      `toml:"debug_desires" env:"DEBUG_DESIRES"`
	SnapshotRetention int           `toml:"snapshot_retention" env:"SNAPSHOT_RETENTION"` // 0 keeps everything
}

type ParamsConfig struct {
	Timeout  time.Duration `toml:"timeout" env:"TIMEOUT"`
	Attempts int           `toml:"attempts" env:"ATTEMPTS"`
	Rate     float64       `toml:"rate" env:"RATE"`
	Burst    int           `toml:"burst" env:"BURST"`
}

type LogConfig struct {
	Level     string `toml:"level" env:"LEVEL"` // "debug", "info", "warn", "error"
	File      string `toml:"file" env:"FILE"`   // empty logs to stderr only
	MaxSizeMB int    `toml:"max_size_mb" env:"MAX_SIZE_MB"`
}

// Default returns a Config with sensible defaults.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Bind: "127.0.0.1",
			Port: 37780,
		},
		Database: DatabaseConfig{
			Path: "", // resolved at runtime via DefaultDBPath()
		},
		Engine: EngineConfig{
			GeneratePeriod:    time.Second,
			DecayPeriod:       2 * time.Second,
			DecayRate:         0.01,
			Namespace:         "/",
			Node:              "emotion_generator",
			DebugEmotions:     []string{"Anger", "Joy"},
			DebugDesires:      []string{"GoTo"},
			SnapshotRetention: 3600,
		},
		Params: ParamsConfig{
			Timeout:  250 * time.Millisecond,
			Attempts: 3,
			Rate:     50,
			Burst:    10,
		},
		Log: LogConfig{
			Level:     "info",
			MaxSizeMB: 20,
		},
	}
}

// Load returns Default() overlaid with AFFECT_* environment variables.
// A .env file in the working directory is read first if present.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: "AFFECT_"}); err != nil {
		return cfg, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}

// ListenAddr returns the bind:port address string.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Bind, c.Server.Port)
}

// DBPath returns the configured database path or the default one.
func (c *Config) DBPath() (string, error) {
	if c.Database.Path != "" {
		return c.Database.Path, nil
	}
	return DefaultDBPath()
}

// DefaultDBPath returns the default database path: ~/.affect/affect.db
func DefaultDBPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".affect", "affect.db"), nil
}
