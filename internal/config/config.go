// Package config loads the service configuration from an optional YAML file
// with environment-variable overrides.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joeshaw/envdecode"
	"gopkg.in/yaml.v3"

	"github.com/agenciazeta/quiniela/internal/app/domain/schedule"
)

// DefaultConfigEnv names the environment variable holding the config path.
const DefaultConfigEnv = "QUINIELA_CONFIG"

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Host            string        `yaml:"host" env:"SERVER_HOST"`
	Port            int           `yaml:"port" env:"SERVER_PORT"`
	ReadTimeout     time.Duration `yaml:"read_timeout" env:"SERVER_READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env:"SERVER_WRITE_TIMEOUT"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT"`
	RateLimit       float64       `yaml:"rate_limit" env:"SERVER_RATE_LIMIT"`
	RateBurst       int           `yaml:"rate_burst" env:"SERVER_RATE_BURST"`
}

// StorageConfig selects the persistence backend.
type StorageConfig struct {
	// Backend is one of "memory", "postgres" or "redis".
	Backend string `yaml:"backend" env:"STORAGE_BACKEND"`
}

// DatabaseConfig holds the PostgreSQL settings.
type DatabaseConfig struct {
	DSN             string        `yaml:"dsn" env:"DATABASE_DSN"`
	MaxOpenConns    int           `yaml:"max_open_conns" env:"DATABASE_MAX_OPEN_CONNS"`
	MaxIdleConns    int           `yaml:"max_idle_conns" env:"DATABASE_MAX_IDLE_CONNS"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" env:"DATABASE_CONN_MAX_LIFETIME"`
	Migrate         bool          `yaml:"migrate" env:"DATABASE_MIGRATE"`
}

// RedisConfig holds the Redis settings.
type RedisConfig struct {
	Addr     string `yaml:"addr" env:"REDIS_ADDR"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"REDIS_DB"`
}

// LoggingConfig holds the logger settings.
type LoggingConfig struct {
	Level  string `yaml:"level" env:"LOG_LEVEL"`
	Format string `yaml:"format" env:"LOG_FORMAT"`
	Output string `yaml:"output" env:"LOG_OUTPUT"`
}

// AgencyConfig holds the business parameters of the point of sale.
type AgencyConfig struct {
	// PayoutMultiplier scales a winning bet's amount into its prize.
	PayoutMultiplier float64 `yaml:"payout_multiplier" env:"AGENCY_PAYOUT_MULTIPLIER"`
	// DrawNumberBase anchors the deterministic draw-number sequence.
	DrawNumberBase int `yaml:"draw_number_base" env:"AGENCY_DRAW_NUMBER_BASE"`
	// TickSpec is the scheduler cadence in cron syntax.
	TickSpec string `yaml:"tick_spec" env:"AGENCY_TICK_SPEC"`
	// Draws overrides the built-in schedule when non-empty.
	Draws []DrawConfig `yaml:"draws"`
	// Lotteries overrides the built-in lottery codes when non-empty.
	Lotteries []string `yaml:"lotteries"`
}

// DrawConfig is one schedule entry.
type DrawConfig struct {
	Name string `yaml:"name"`
	Time string `yaml:"time"`
}

// Config is the root configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Storage  StorageConfig  `yaml:"storage"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Logging  LoggingConfig  `yaml:"logging"`
	Agency   AgencyConfig   `yaml:"agency"`
}

// Default returns the built-in configuration: in-memory storage, JSON logs,
// the standard schedule and payout.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			RateLimit:       50,
			RateBurst:       100,
		},
		Storage: StorageConfig{Backend: "memory"},
		Database: DatabaseConfig{
			MaxOpenConns:    10,
			MaxIdleConns:    5,
			ConnMaxLifetime: 30 * time.Minute,
			Migrate:         true,
		},
		Redis:   RedisConfig{Addr: "localhost:6379"},
		Logging: LoggingConfig{Level: "info", Format: "json", Output: "stdout"},
		Agency: AgencyConfig{
			PayoutMultiplier: 7,
			DrawNumberBase:   schedule.DefaultDrawNumberBase,
			TickSpec:         "@every 30s",
		},
	}
}

// Load reads the YAML file named by QUINIELA_CONFIG (when set), then applies
// environment overrides on top. A missing variable leaves the file value (or
// the default) in place.
func Load() (*Config, error) {
	return LoadFromPath(os.Getenv(DefaultConfigEnv))
}

// LoadFromPath loads configuration from an explicit file path. An empty path
// skips the file layer.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	if err := envdecode.Decode(cfg); err != nil && err != envdecode.ErrNoTargetFieldsAreSet {
		return nil, fmt.Errorf("decode environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case "memory", "redis":
	case "postgres":
		if c.Database.DSN == "" {
			return fmt.Errorf("storage backend %q requires database.dsn", c.Storage.Backend)
		}
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	if c.Agency.PayoutMultiplier <= 0 {
		return fmt.Errorf("agency.payout_multiplier must be positive")
	}
	for _, d := range c.Agency.Draws {
		if d.Name == "" || d.Time == "" {
			return fmt.Errorf("agency.draws entries require both name and time")
		}
		if _, err := time.Parse("15:04", d.Time); err != nil {
			return fmt.Errorf("agency.draws %q: invalid time %q", d.Name, d.Time)
		}
	}
	return nil
}

// ScheduleDraws converts the configured schedule override into domain draws.
// An empty override yields nil so the schedule service falls back to the
// defaults.
func (c *Config) ScheduleDraws() []schedule.Draw {
	if len(c.Agency.Draws) == 0 {
		return nil
	}
	out := make([]schedule.Draw, 0, len(c.Agency.Draws))
	for _, d := range c.Agency.Draws {
		out = append(out, schedule.Draw{Name: d.Name, Time: d.Time})
	}
	return out
}
