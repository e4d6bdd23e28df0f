package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g. DELEGATION_SERVER_PORT.
const EnvPrefix = "DELEGATION"

// Config represents the complete service configuration
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
}

// ServerConfig controls the HTTP listener
type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// DatabaseConfig selects the gorm dialector
type DatabaseConfig struct {
	// Driver is one of "sqlite", "mysql", "postgres"
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
	// LogLevel is the gorm logger level: "silent", "error", "warn", "info"
	LogLevel string `mapstructure:"log_level"`
}

// AuthConfig holds JWT settings
type AuthConfig struct {
	JWTSecret   string        `mapstructure:"jwt_secret"`
	JWTIssuer   string        `mapstructure:"jwt_issuer"`
	JWTAudience string        `mapstructure:"jwt_audience"`
	TokenTTL    time.Duration `mapstructure:"token_ttl"`
}

// LoggingConfig controls the slog handler
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // "json" or "text"
}

// SchedulerConfig controls the overdue sweep
type SchedulerConfig struct {
	Enabled bool `mapstructure:"enabled"`
	// OverdueSpec is a standard 5-field cron expression
	OverdueSpec string `mapstructure:"overdue_spec"`
}

// Default returns the configuration used when nothing is overridden.
func Default() *Config {
	return &Config{
		Server: ServerConfig{Port: 8008},
		Database: DatabaseConfig{
			Driver:   "sqlite",
			DSN:      "tasks-delegation.db",
			LogLevel: "warn",
		},
		Auth: AuthConfig{
			JWTSecret:   "development-insecure-secret-change-me",
			JWTIssuer:   "delegation-api",
			JWTAudience: "delegation-clients",
			TokenTTL:    24 * time.Hour,
		},
		Logging: LoggingConfig{Level: "info", Format: "json"},
		Scheduler: SchedulerConfig{
			Enabled:     true,
			OverdueSpec: "5 0 * * *",
		},
	}
}

// SetDefaults registers every default with viper so env overrides are picked up by Unmarshal.
func SetDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("server.port", d.Server.Port)

	v.SetDefault("database.driver", d.Database.Driver)
	v.SetDefault("database.dsn", d.Database.DSN)
	v.SetDefault("database.log_level", d.Database.LogLevel)

	v.SetDefault("auth.jwt_secret", d.Auth.JWTSecret)
	v.SetDefault("auth.jwt_issuer", d.Auth.JWTIssuer)
	v.SetDefault("auth.jwt_audience", d.Auth.JWTAudience)
	v.SetDefault("auth.token_ttl", d.Auth.TokenTTL)

	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)

	v.SetDefault("scheduler.enabled", d.Scheduler.Enabled)
	v.SetDefault("scheduler.overdue_spec", d.Scheduler.OverdueSpec)
}

// Load reads an optional .env file, an optional config file and DELEGATION_* environment
// variables, in increasing order of precedence. An empty path searches for config.yaml in
// the working directory.
func Load(path string) (*Config, error) {
	// .env is optional; a missing file is not an error
	_ = godotenv.Load()

	v := viper.New()
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values viper cannot type-check.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "sqlite", "mysql", "postgres":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	if c.Auth.JWTSecret == "" {
		return errors.New("auth.jwt_secret must not be empty")
	}
	if c.Auth.TokenTTL <= 0 {
		return errors.New("auth.token_ttl must be positive")
	}
	return nil
}

// Addr returns the listen address for gin.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}
