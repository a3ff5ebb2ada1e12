// FILE: internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	yaml "gopkg.in/yaml.v3"
)

const envPrefix = "CHESS_"

type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Game    GameConfig    `yaml:"game"`
	Storage StorageConfig `yaml:"storage"`
	Log     LogConfig     `yaml:"log"`
}

type ServerConfig struct {
	Host string `yaml:"host" validate:"required"`
	Port int    `yaml:"port" validate:"min=1,max=65535"`
	Dev  bool   `yaml:"dev"`
}

type GameConfig struct {
	ClockSeconds      int           `yaml:"clock_seconds" validate:"min=1,max=86400"`
	TickInterval      time.Duration `yaml:"tick_interval" validate:"min=0"` // 0 disables the automatic clock
	MaxGames          int           `yaml:"max_games" validate:"min=0"`     // 0 means unlimited
	FinishedTTL       time.Duration `yaml:"finished_ttl" validate:"min=0"`
	CleanupInterval   time.Duration `yaml:"cleanup_interval" validate:"min=0"`
	RequireSeatTokens bool          `yaml:"require_seat_tokens"`
	SeatTokenTTL      time.Duration `yaml:"seat_token_ttl" validate:"min=0"`
	SeatSecret        string        `yaml:"seat_secret" validate:"omitempty,min=32"` // random per process when empty
}

type StorageConfig struct {
	Path string `yaml:"path"` // empty disables the archive
	WAL  bool   `yaml:"wal"`
}

type LogConfig struct {
	Level   string `yaml:"level" validate:"oneof=debug info warn error"`
	Format  string `yaml:"format" validate:"oneof=console json legacy"`
	File    string `yaml:"file"`
	Console bool   `yaml:"console"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "localhost",
			Port: 8080,
		},
		Game: GameConfig{
			ClockSeconds:    600,
			TickInterval:    time.Second,
			MaxGames:        100,
			FinishedTTL:     30 * time.Minute,
			CleanupInterval: time.Minute,
			SeatTokenTTL:    24 * time.Hour,
		},
		Log: LogConfig{
			Level:   "info",
			Format:  "console",
			Console: true,
		},
	}
}

// Load builds the configuration from defaults, the optional YAML file at
// path, and CHESS_* environment variables, in that order
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

var validate = validator.New()

// Validate checks field constraints and reports every violation
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("invalid config: %w", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %s=%s (got %v)", fe.Namespace(), fe.Tag(), fe.Param(), fe.Value()))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

// Addr is the listen address
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func applyEnv(cfg *Config) error {
	var errs []error

	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok {
			*dst = v
		}
	}
	integer := func(key string, dst *int) {
		if v, ok := lookup(key); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", envPrefix, key, err))
				return
			}
			*dst = n
		}
	}
	boolean := func(key string, dst *bool) {
		if v, ok := lookup(key); ok {
			b, err := strconv.ParseBool(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", envPrefix, key, err))
				return
			}
			*dst = b
		}
	}
	duration := func(key string, dst *time.Duration) {
		if v, ok := lookup(key); ok {
			d, err := time.ParseDuration(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", envPrefix, key, err))
				return
			}
			*dst = d
		}
	}

	str("HOST", &cfg.Server.Host)
	integer("PORT", &cfg.Server.Port)
	boolean("DEV", &cfg.Server.Dev)

	integer("CLOCK_SECONDS", &cfg.Game.ClockSeconds)
	duration("TICK_INTERVAL", &cfg.Game.TickInterval)
	integer("MAX_GAMES", &cfg.Game.MaxGames)
	duration("FINISHED_TTL", &cfg.Game.FinishedTTL)
	duration("CLEANUP_INTERVAL", &cfg.Game.CleanupInterval)
	boolean("REQUIRE_SEAT_TOKENS", &cfg.Game.RequireSeatTokens)
	duration("SEAT_TOKEN_TTL", &cfg.Game.SeatTokenTTL)
	str("SEAT_SECRET", &cfg.Game.SeatSecret)

	str("STORAGE_PATH", &cfg.Storage.Path)
	boolean("STORAGE_WAL", &cfg.Storage.WAL)

	str("LOG_LEVEL", &cfg.Log.Level)
	str("LOG_FORMAT", &cfg.Log.Format)
	str("LOG_FILE", &cfg.Log.File)
	boolean("LOG_CONSOLE", &cfg.Log.Console)

	return errors.Join(errs...)
}

func lookup(key string) (string, bool) {
	v, ok := os.LookupEnv(envPrefix + key)
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}
